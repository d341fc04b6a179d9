package resource

import (
	"context"
	"slices"

	"github.com/getmockd/restkit/pkg/pathutil"
	"github.com/getmockd/restkit/pkg/store"
)

type staticRoute struct {
	name     string
	path     string
	pipeline *pipeline
}

// staticRoutes builds one pipeline per handler in the model static named by
// Config.Statics, in key order.
func (r *Resource) staticRoutes() []staticRoute {
	handlers := r.statics()
	if len(handlers) == 0 {
		return nil
	}

	names := make([]string, 0, len(handlers))
	for name := range handlers {
		names = append(names, name)
	}
	slices.Sort(names)

	routes := make([]staticRoute, 0, len(names))
	for _, name := range names {
		routes = append(routes, staticRoute{
			name: name,
			path: r.cfg.Path + "/" + pathutil.ToPathSegment(name),
			pipeline: r.newPipeline(Target{
				Kind:    TargetStatic,
				Name:    name,
				Handler: handlers[name],
			}),
		})
	}
	return routes
}

// statics reads the handler map from the model. Unknown value types and nil
// handlers are ignored.
func (r *Resource) statics() map[string]Operation {
	v, ok := store.Static(r.cfg.Model, r.cfg.Statics)
	if !ok {
		return nil
	}

	out := make(map[string]Operation)
	switch handlers := v.(type) {
	case map[string]Operation:
		for k, h := range handlers {
			if h != nil {
				out[k] = h
			}
		}
	case map[string]func(context.Context, *RequestContext) (any, error):
		for k, h := range handlers {
			if h != nil {
				out[k] = h
			}
		}
	default:
		r.log.Warn("ignoring statics with unsupported type", "key", r.cfg.Statics)
	}
	return out
}
