package computed

import (
	"context"
	"maps"

	"github.com/getmockd/restkit/pkg/resource"
	"github.com/getmockd/restkit/pkg/store"
)

// SavedQuery is a fixed list query served by a static route.
type SavedQuery struct {
	Filter map[string]any
	// Sort falls back to the resource's default sort when empty.
	Sort string
	// Limit of 0 returns every match.
	Limit int
}

// Operation returns a static handler running q against m. The route id, when
// present, narrows the filter to that document.
func (q SavedQuery) Operation(m store.Model) resource.Operation {
	return func(ctx context.Context, rc *resource.RequestContext) (any, error) {
		filter := maps.Clone(q.Filter)
		if filter == nil {
			filter = make(store.Document)
		}
		if rc.ID != "" {
			filter[store.IDField] = rc.ID
		}

		sort := q.Sort
		if sort == "" && rc.Resource != nil {
			sort = rc.Resource.Config().SortBy
		}

		docs, err := m.Find(filter).Sort(sort).Limit(q.Limit).Exec(ctx)
		if err != nil {
			return nil, err
		}
		if docs == nil {
			docs = []store.Document{}
		}
		return docs, nil
	}
}

// Statics builds the handler map for a set of saved queries, ready to be
// registered as a model static.
func Statics(m store.Model, queries map[string]SavedQuery) map[string]resource.Operation {
	if len(queries) == 0 {
		return nil
	}
	out := make(map[string]resource.Operation, len(queries))
	for name, q := range queries {
		out[name] = q.Operation(m)
	}
	return out
}
