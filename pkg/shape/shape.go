// Package shape normalizes accumulated handler results into the JSON response
// body and strips private fields from documents.
package shape

import (
	"github.com/mohae/deepcopy"

	"github.com/getmockd/restkit/pkg/pathutil"
)

// Redact returns docs with every path removed from each document. Documents
// are copied before removal; non-document elements pass through untouched.
// With no docs or no paths the input is returned as is.
func Redact(docs []any, paths []string) []any {
	if len(docs) == 0 || len(paths) == 0 {
		return docs
	}

	out := make([]any, len(docs))
	for i, d := range docs {
		m, ok := pathutil.AsMap(d)
		if !ok {
			out[i] = d
			continue
		}
		cp, _ := deepcopy.Copy(m).(map[string]any)
		out[i] = pathutil.OmitKeys(cp, paths...)
	}
	return out
}

// Shape collapses a collection holding exactly one element into that element.
// Any other collection, including an empty one, is returned as a list.
func Shape(collection []any) any {
	if len(collection) == 1 {
		return collection[0]
	}
	if collection == nil {
		return []any{}
	}
	return collection
}

// Batch turns one accumulated entry into a list of documents. Slices are
// batches already; any other value is a batch of one.
func Batch(entry any) []any {
	switch v := entry.(type) {
	case []any:
		return v
	case []map[string]any:
		out := make([]any, len(v))
		for i, d := range v {
			out[i] = d
		}
		return out
	default:
		return []any{v}
	}
}
