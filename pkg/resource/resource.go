package resource

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"slices"
	"strings"

	"github.com/gorilla/mux"

	"github.com/getmockd/restkit/pkg/logging"
	"github.com/getmockd/restkit/pkg/query"
	"github.com/getmockd/restkit/pkg/store"
)

// Resource serves one model over HTTP.
type Resource struct {
	cfg        Config
	supports   map[string]struct{}
	operations map[string]Operation
	builder    query.Builder
	log        *slog.Logger
}

// New validates cfg, applies defaults and returns the resource.
func New(cfg Config) (*Resource, error) {
	if cfg.Model == nil {
		return nil, errors.New("resource model cannot be nil")
	}

	if cfg.Path == "" {
		cfg.Path = "/" + strings.ToLower(cfg.Model.Name())
	}
	if !strings.HasPrefix(cfg.Path, "/") {
		return nil, fmt.Errorf("resource path %q must start with /", cfg.Path)
	}
	if cfg.Path != "/" {
		cfg.Path = strings.TrimSuffix(cfg.Path, "/")
	}
	if cfg.Path == "/" {
		return nil, errors.New("resource path cannot be the root path")
	}

	if cfg.Key == "" {
		cfg.Key = DefaultKey
	}
	if cfg.PrivatesKey == "" {
		cfg.PrivatesKey = DefaultPrivatesKey
	}
	if cfg.PageSizeMax == 0 {
		cfg.PageSizeMax = DefaultPageSizeMax
	}
	if cfg.PageSizeDefault == 0 {
		cfg.PageSizeDefault = DefaultPageSizeDefault
	}
	if cfg.SortBy == "" {
		cfg.SortBy = DefaultSortBy
	}
	if cfg.Supports == nil {
		cfg.Supports = DefaultSupports
	}
	if cfg.Logger == nil {
		cfg.Logger = logging.Nop()
	}

	// Copies keep the config immutable once built.
	cfg.Initializers = slices.Clone(cfg.Initializers)
	cfg.Mutators = slices.Clone(cfg.Mutators)
	cfg.Supports = slices.Clone(cfg.Supports)

	r := &Resource{
		cfg:      cfg,
		supports: make(map[string]struct{}, len(cfg.Supports)),
		builder:  query.NewBuilder(cfg.PageSizeMax, cfg.PageSizeDefault, cfg.SortBy),
		log:      cfg.Logger.With("resource", cfg.Model.Name()),
	}
	for _, m := range cfg.Supports {
		r.supports[strings.ToLower(m)] = struct{}{}
	}
	r.operations = map[string]Operation{
		MethodGet:    r.get,
		MethodPost:   r.post,
		MethodPut:    r.put,
		MethodPatch:  r.put,
		MethodDelete: r.delete,
	}

	return r, nil
}

// Path returns the base path of the resource.
func (r *Resource) Path() string {
	return r.cfg.Path
}

// Name returns the model name.
func (r *Resource) Name() string {
	return r.cfg.Model.Name()
}

// Config returns a copy of the effective configuration.
func (r *Resource) Config() Config {
	return r.cfg
}

// operation resolves the default operation for a lower-cased verb.
func (r *Resource) operation(method string) (Operation, bool) {
	if _, ok := r.supports[method]; !ok {
		return nil, false
	}
	op, ok := r.operations[method]
	return op, ok
}

// privateFields reads the redaction list from the model. It is looked up on
// every request so that changes to the model static apply immediately.
func (r *Resource) privateFields() []string {
	v, ok := store.Static(r.cfg.Model, r.cfg.PrivatesKey)
	if !ok {
		return nil
	}
	return store.StringList(v)
}

// Route is one mounted URL pattern.
type Route struct {
	Pattern string `json:"pattern"`
	// Static is the handler name for generated static routes.
	Static string `json:"static,omitempty"`
}

// Routes lists the patterns Mount registers, in registration order.
func (r *Resource) Routes() []Route {
	var routes []Route
	for _, s := range r.staticRoutes() {
		routes = append(routes,
			Route{Pattern: s.path, Static: s.name},
			Route{Pattern: s.path + "/{id}", Static: s.name},
		)
	}
	return append(routes,
		Route{Pattern: r.cfg.Path},
		Route{Pattern: r.cfg.Path + "/{id}"},
	)
}

// Mount registers the resource on router. Static routes are registered first
// so that they win over the default "{path}/{id}" route.
func (r *Resource) Mount(router *mux.Router) {
	for _, s := range r.staticRoutes() {
		router.Handle(s.path, s.pipeline)
		router.Handle(s.path+"/{id}", s.pipeline)
		r.log.Debug("mounted static route", "path", s.path, "handler", s.name)
	}

	p := r.newPipeline(Target{Kind: TargetMethod})
	router.Handle(r.cfg.Path, p)
	router.Handle(r.cfg.Path+"/{id}", p)
	r.log.Debug("mounted resource", "name", r.Name(), "path", r.cfg.Path)
}

// Handler returns a router serving only this resource.
func (r *Resource) Handler() http.Handler {
	router := mux.NewRouter()
	r.Mount(router)
	return router
}
