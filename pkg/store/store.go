// Package store defines the contract between REST resources and the document
// store behind them.
//
// A Model is one collection of JSON-like documents. Resources only ever reach
// the store through this interface, so any backend that can find, save and
// remove documents by an "_id" field can serve a resource. Two backends ship
// with restkit: store/memory and store/mongo.
package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// IDField is the document field holding the identifier.
const IDField = "_id"

// Sentinel errors matched with errors.Is.
var (
	// ErrNotFound is returned by FindByID when no document has the given id.
	ErrNotFound = errors.New("document not found")
	// ErrDuplicateID is returned by Insert when the id is already taken.
	ErrDuplicateID = errors.New("duplicate document id")
)

// Document is a JSON-like document.
type Document = map[string]any

// Model is a collection of documents.
type Model interface {
	// Name identifies the model. Resources derive their default path from it.
	Name() string

	// Find starts a query matching every field of filter exactly.
	// A nil or empty filter matches all documents.
	Find(filter Document) Query

	// FindByID loads one document. It returns an error wrapping ErrNotFound
	// when the id is unknown.
	FindByID(ctx context.Context, id string) (Document, error)

	// New builds an unsaved document from fields, assigning an id when the
	// fields carry none.
	New(fields Document) Document

	// Insert stores doc as a new document. It returns an error wrapping
	// ErrDuplicateID when a document with the same id exists.
	Insert(ctx context.Context, doc Document) (Document, error)

	// Save inserts doc or replaces the stored document with the same id.
	Save(ctx context.Context, doc Document) (Document, error)

	// Remove deletes every document matching filter and reports how many were
	// removed. A nil or empty filter removes the whole collection.
	Remove(ctx context.Context, filter Document) (int64, error)
}

// Query is a chainable find operation.
type Query interface {
	Sort(spec string) Query
	Limit(n int) Query
	Skip(n int) Query
	Exec(ctx context.Context) ([]Document, error)
}

// StaticProvider is implemented by models that expose named static values,
// such as the list of private fields or a set of custom handlers.
type StaticProvider interface {
	Static(key string) (any, bool)
}

// NotFoundError reports a missing document.
type NotFoundError struct {
	Model string
	ID    string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Model, e.ID)
}

// Unwrap makes NotFoundError match ErrNotFound.
func (e *NotFoundError) Unwrap() error {
	return ErrNotFound
}

// DuplicateIDError reports an insert whose id is already stored.
type DuplicateIDError struct {
	Model string
	ID    string
}

func (e *DuplicateIDError) Error() string {
	return fmt.Sprintf("%s %q already exists", e.Model, e.ID)
}

// Unwrap makes DuplicateIDError match ErrDuplicateID.
func (e *DuplicateIDError) Unwrap() error {
	return ErrDuplicateID
}

// SortField is one key of a parsed sort spec.
type SortField struct {
	Field      string
	Descending bool
}

// ParseSort parses a sort spec: space separated field names, each optionally
// prefixed with "-" for descending or "+" for ascending order.
func ParseSort(spec string) []SortField {
	parts := strings.Fields(spec)
	fields := make([]SortField, 0, len(parts))
	for _, p := range parts {
		f := SortField{Field: p}
		switch p[0] {
		case '-':
			f.Field, f.Descending = p[1:], true
		case '+':
			f.Field = p[1:]
		}
		if f.Field == "" {
			continue
		}
		fields = append(fields, f)
	}
	return fields
}

// Static looks up a named static on m. Models that do not implement
// StaticProvider have no statics.
func Static(m Model, key string) (any, bool) {
	if key == "" {
		return nil, false
	}
	sp, ok := m.(StaticProvider)
	if !ok {
		return nil, false
	}
	return sp.Static(key)
}

// StringList converts a static value into a list of strings. It accepts
// []string and []any holding only strings; anything else yields nil.
func StringList(v any) []string {
	switch list := v.(type) {
	case []string:
		return list
	case []any:
		out := make([]string, 0, len(list))
		for _, item := range list {
			s, ok := item.(string)
			if !ok {
				return nil
			}
			out = append(out, s)
		}
		return out
	default:
		return nil
	}
}
