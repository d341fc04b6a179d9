// Package app assembles a running restkit server from a config.Config: it
// opens the store, builds one resource per configured entry and mounts them.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"slices"

	"github.com/getmockd/restkit/pkg/computed"
	"github.com/getmockd/restkit/pkg/config"
	"github.com/getmockd/restkit/pkg/logging"
	"github.com/getmockd/restkit/pkg/ratelimit"
	"github.com/getmockd/restkit/pkg/resource"
	"github.com/getmockd/restkit/pkg/server"
	"github.com/getmockd/restkit/pkg/store"
	"github.com/getmockd/restkit/pkg/store/file"
	"github.com/getmockd/restkit/pkg/store/memory"
	"github.com/getmockd/restkit/pkg/store/mongo"
)

// StaticsKey is the model static holding a resource's saved queries.
const StaticsKey = "statics"

// Model is a store.Model whose statics can be set at startup.
type Model interface {
	store.Model
	SetStatic(key string, value any)
}

// App is an assembled server and the store connections behind it.
type App struct {
	Config *config.Config
	Server *server.Server

	log     *slog.Logger
	closers []func(context.Context) error
}

type options struct {
	log    *slog.Logger
	output io.Writer
}

// Option configures Build.
type Option func(*options)

// WithLogger overrides the logger built from the server config.
func WithLogger(log *slog.Logger) Option {
	return func(o *options) {
		o.log = log
	}
}

// WithOutput sets where the logger built from the server config writes.
// Defaults to stderr.
func WithOutput(w io.Writer) Option {
	return func(o *options) {
		o.output = w
	}
}

// Build opens the configured store and mounts every resource on a new
// server. The config must already be validated.
func Build(ctx context.Context, cfg *config.Config, opts ...Option) (*App, error) {
	o := options{output: os.Stderr}
	for _, opt := range opts {
		opt(&o)
	}
	log := o.log
	if log == nil {
		log = logging.FromStrings(cfg.Server.LogLevel, cfg.Server.LogFormat, o.output)
	}

	a := &App{Config: cfg, log: log}

	newModel, err := a.modelFactory(ctx)
	if err != nil {
		return nil, err
	}

	a.Server = server.New(server.Config{
		Port:         cfg.Server.Port,
		ReadTimeout:  cfg.Server.ReadTimeoutDuration(),
		WriteTimeout: cfg.Server.WriteTimeoutDuration(),
		Metrics:      cfg.Server.Metrics,
		RateLimit: ratelimit.Config{
			Rate:           cfg.Server.RateLimit.RPS,
			Burst:          cfg.Server.RateLimit.Burst,
			TrustedProxies: cfg.Server.RateLimit.TrustedProxies,
		},
	}, server.WithLogger(log))

	if cfg.Server.OpenAPI {
		a.Server.HandleFunc(OpenAPIJSONPath, "openapi", a.handleOpenAPI)
		a.Server.HandleFunc(OpenAPIYAMLPath, "openapi-yaml", a.handleOpenAPI)
	}

	for i, rc := range cfg.Resources {
		res, err := a.buildResource(rc, newModel)
		if err == nil {
			err = a.Server.Mount(res)
		}
		if err != nil {
			_ = a.Close(ctx)
			return nil, fmt.Errorf("resources[%d] %s: %w", i, rc.Name, err)
		}
	}

	return a, nil
}

type modelFactory func(rc config.ResourceConfig) (Model, error)

func (a *App) modelFactory(ctx context.Context) (modelFactory, error) {
	switch a.Config.Store.Driver {
	case config.DriverMongo:
		client, err := mongo.Connect(ctx, a.Config.Store.URI)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, client.Disconnect)
		db := client.Database(a.Config.Store.Database)
		a.log.Info("connected to mongo", "database", a.Config.Store.Database)
		return func(rc config.ResourceConfig) (Model, error) {
			return mongo.New(db, rc.Name), nil
		}, nil

	case config.DriverFile:
		dir := a.Config.Store.Dir
		a.log.Info("using file store", "dir", dir)
		return func(rc config.ResourceConfig) (Model, error) {
			m, err := file.Open(dir, rc.Name, file.WithLogger(a.log))
			if err != nil {
				return nil, err
			}
			a.closers = append(a.closers, m.Close)
			if m.Created() && len(rc.Seed) > 0 {
				if err := m.Seed(rc.Seed); err != nil {
					return nil, err
				}
			}
			return m, nil
		}, nil

	case config.DriverMemory, "":
		return func(rc config.ResourceConfig) (Model, error) {
			m := memory.New(rc.Name)
			if len(rc.Seed) > 0 {
				if err := m.Seed(rc.Seed); err != nil {
					return nil, err
				}
			}
			return m, nil
		}, nil

	default:
		return nil, fmt.Errorf("unknown store driver %q", a.Config.Store.Driver)
	}
}

func (a *App) buildResource(rc config.ResourceConfig, newModel modelFactory) (*resource.Resource, error) {
	m, err := newModel(rc)
	if err != nil {
		return nil, err
	}

	cfg := resource.Config{
		Path:            rc.ResolvedPath(),
		Key:             rc.Key,
		PrivatesKey:     rc.PrivatesKey,
		Model:           m,
		PageSizeMax:     rc.PageSizeMax,
		PageSizeDefault: rc.PageSizeDefault,
		SortBy:          rc.SortBy,
		Supports:        rc.Supports,
		Logger:          a.log,
	}

	if len(rc.PrivateFields) > 0 {
		key := rc.PrivatesKey
		if key == "" {
			key = resource.DefaultPrivatesKey
		}
		m.SetStatic(key, slices.Clone(rc.PrivateFields))
	}

	if len(rc.Statics) > 0 {
		queries := make(map[string]computed.SavedQuery, len(rc.Statics))
		for name, q := range rc.Statics {
			queries[name] = computed.SavedQuery{Filter: q.Filter, Sort: q.Sort, Limit: q.Limit}
		}
		m.SetStatic(StaticsKey, computed.Statics(m, queries))
		cfg.Statics = StaticsKey
	}

	if len(rc.Computed) > 0 {
		fields, err := computed.Compile(rc.Computed)
		if err != nil {
			return nil, err
		}
		cfg.Mutators = append(cfg.Mutators, fields.Mutator(a.log))
	}

	return resource.New(cfg)
}

// Logger returns the logger the app was built with.
func (a *App) Logger() *slog.Logger {
	return a.log
}

// Run serves until ctx is cancelled, then closes the store connections.
func (a *App) Run(ctx context.Context) error {
	err := a.Server.Run(ctx)
	closeCtx, cancel := context.WithTimeout(context.Background(), server.DefaultShutdownTimeout)
	defer cancel()
	return errors.Join(err, a.Close(closeCtx))
}

// Close releases store connections. It is safe to call more than once.
func (a *App) Close(ctx context.Context) error {
	var errs []error
	for _, c := range a.closers {
		if err := c(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}
