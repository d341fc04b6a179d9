package memory

import (
	"cmp"
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/getmockd/restkit/pkg/pathutil"
	"github.com/getmockd/restkit/pkg/store"
)

type query struct {
	model  *Model
	filter store.Document
	sort   string
	limit  int
	skip   int
}

func (q *query) Sort(spec string) store.Query {
	q.sort = spec
	return q
}

func (q *query) Limit(n int) store.Query {
	q.limit = n
	return q
}

func (q *query) Skip(n int) store.Query {
	q.skip = n
	return q
}

// Exec runs the query: filter, sort, skip, then limit. A zero limit returns
// every remaining document; a negative limit counts as its absolute value.
func (q *query) Exec(ctx context.Context) ([]store.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	docs := q.model.snapshot(q.filter)
	SortDocuments(docs, store.ParseSort(q.sort))
	return Paginate(docs, q.skip, q.limit), nil
}

// Matches reports whether every filter field equals the document's value at
// that path. Values are compared by their string form.
func Matches(doc store.Document, filter store.Document) bool {
	for field, want := range filter {
		got, ok := pathutil.Get(doc, field)
		if !ok {
			return false
		}
		if fmt.Sprintf("%v", got) != fmt.Sprintf("%v", want) {
			return false
		}
	}
	return true
}

// SortDocuments orders docs by the given keys. The sort is stable, so
// documents equal on every key keep insertion order.
func SortDocuments(docs []store.Document, keys []store.SortField) {
	if len(keys) == 0 {
		return
	}
	sort.SliceStable(docs, func(i, j int) bool {
		for _, k := range keys {
			vi, _ := pathutil.Get(docs[i], k.Field)
			vj, _ := pathutil.Get(docs[j], k.Field)
			c := CompareValues(vi, vj)
			if c == 0 {
				continue
			}
			if k.Descending {
				return c > 0
			}
			return c < 0
		}
		return false
	})
}

// CompareValues compares two document values. Missing values sort first.
// Numbers compare numerically, strings and times naturally; mixed or unknown
// types fall back to comparing their string form.
func CompareValues(a, b any) int {
	if a == nil || b == nil {
		switch {
		case a == nil && b == nil:
			return 0
		case a == nil:
			return -1
		default:
			return 1
		}
	}

	if fa, ok := toFloat(a); ok {
		if fb, ok := toFloat(b); ok {
			return cmp.Compare(fa, fb)
		}
	}

	switch va := a.(type) {
	case string:
		if vb, ok := b.(string); ok {
			return cmp.Compare(va, vb)
		}
	case time.Time:
		if vb, ok := b.(time.Time); ok {
			return va.Compare(vb)
		}
	case bool:
		if vb, ok := b.(bool); ok {
			switch {
			case va == vb:
				return 0
			case !va:
				return -1
			default:
				return 1
			}
		}
	}

	return cmp.Compare(fmt.Sprintf("%v", a), fmt.Sprintf("%v", b))
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	default:
		return 0, false
	}
}

// Paginate skips the first skip documents and returns at most limit of the
// rest. Negative skip counts as zero.
func Paginate(docs []store.Document, skip, limit int) []store.Document {
	if skip < 0 {
		skip = 0
	}
	if skip > len(docs) {
		skip = len(docs)
	}
	docs = docs[skip:]

	if limit < 0 {
		limit = -limit
	}
	if limit > 0 && limit < len(docs) {
		docs = docs[:limit]
	}
	return docs
}
