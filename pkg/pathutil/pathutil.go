// Package pathutil provides helpers for URL path segments and dot-separated
// field paths inside JSON-like documents.
//
// Documents are plain map[string]any values. Get, Set, Remove and OmitKeys
// operate on the map in place; callers that need the original untouched must
// copy it first.
package pathutil

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// ToPathSegment converts an identifier such as "getUserById" into a URL path
// segment such as "get-user-by-id". The name is split before every upper-case
// ASCII letter and each word is lower-cased.
func ToPathSegment(name string) string {
	words := make([]string, 0, 4)
	start := 0
	for i, r := range name {
		if i > start && r >= 'A' && r <= 'Z' {
			words = append(words, name[start:i])
			start = i
		}
	}
	words = append(words, name[start:])

	// Casers keep state, so each call gets its own.
	lower := cases.Lower(language.Und)
	for i, w := range words {
		words[i] = lower.String(w)
	}
	return strings.Join(words, "-")
}

// Get returns the value stored at path. A missing intermediate map or leaf
// yields (nil, false). Get never modifies obj.
func Get(obj map[string]any, path string) (any, bool) {
	parent, leaf, ok := walk(obj, path, false)
	if !ok {
		return nil, false
	}
	v, ok := parent[leaf]
	return v, ok
}

// Set stores value at path and returns it. Missing intermediate maps are
// created; an intermediate value that is not a map is replaced by one.
// Setting into a nil map is a no-op.
func Set(obj map[string]any, path string, value any) any {
	parent, leaf, ok := walk(obj, path, true)
	if ok {
		parent[leaf] = value
	}
	return value
}

// Remove deletes the value at path and returns obj. A path that does not
// exist leaves obj unchanged.
func Remove(obj map[string]any, path string) map[string]any {
	parent, leaf, ok := walk(obj, path, false)
	if ok {
		delete(parent, leaf)
	}
	return obj
}

// OmitKeys removes every key (top-level or dot-path) from obj and returns the
// same map. Nil maps and absent keys are ignored.
func OmitKeys(obj map[string]any, keys ...string) map[string]any {
	if obj == nil {
		return obj
	}
	for _, k := range keys {
		Remove(obj, k)
	}
	return obj
}

// walk descends to the map holding the last segment of path.
func walk(obj map[string]any, path string, create bool) (map[string]any, string, bool) {
	if obj == nil {
		return nil, "", false
	}

	segments := strings.Split(path, ".")
	cur := obj
	for _, seg := range segments[:len(segments)-1] {
		next, ok := AsMap(cur[seg])
		if !ok {
			if !create {
				return nil, "", false
			}
			next = make(map[string]any)
			cur[seg] = next
		}
		cur = next
	}
	return cur, segments[len(segments)-1], true
}

// AsMap reports whether v is a JSON object and returns it.
func AsMap(v any) (map[string]any, bool) {
	m, ok := v.(map[string]any)
	return m, ok && m != nil
}
