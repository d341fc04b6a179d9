// Package server hosts resources on a gorilla/mux router with request
// logging, metrics, a health probe and graceful shutdown.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/mux"

	"github.com/getmockd/restkit/pkg/httputil"
	"github.com/getmockd/restkit/pkg/logging"
	"github.com/getmockd/restkit/pkg/metrics"
	"github.com/getmockd/restkit/pkg/ratelimit"
	"github.com/getmockd/restkit/pkg/resource"
)

// Default server settings.
const (
	DefaultPort            = 3000
	DefaultReadTimeout     = 30 * time.Second
	DefaultWriteTimeout    = 30 * time.Second
	DefaultShutdownTimeout = 5 * time.Second
)

// Well-known endpoints.
const (
	HealthPath  = "/health"
	MetricsPath = "/metrics"
)

// ErrAlreadyRunning is returned by Start on a running server.
var ErrAlreadyRunning = errors.New("server is already running")

// Config holds the HTTP listener settings.
type Config struct {
	// Port to listen on. 0 picks a free port.
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	// Metrics serves /metrics and records request metrics.
	Metrics bool
	// RateLimit throttles resource requests per client. Zero Rate disables it.
	RateLimit ratelimit.Config
}

// Server serves mounted resources.
type Server struct {
	cfg      Config
	log      *slog.Logger
	router   *mux.Router
	registry *metrics.Registry
	metrics  *metrics.HTTP

	mu         sync.RWMutex
	resources  []*resource.Resource
	patterns   map[string]string
	httpServer *http.Server
	listener   net.Listener
	running    bool
	startTime  time.Time
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the operational logger.
func WithLogger(log *slog.Logger) Option {
	return func(s *Server) {
		if log != nil {
			s.log = log
		}
	}
}

// WithRegistry records metrics on an existing registry.
func WithRegistry(r *metrics.Registry) Option {
	return func(s *Server) {
		s.registry = r
	}
}

// New builds a server. Resources are added with Mount before Start.
func New(cfg Config, opts ...Option) *Server {
	if cfg.ReadTimeout == 0 {
		cfg.ReadTimeout = DefaultReadTimeout
	}
	if cfg.WriteTimeout == 0 {
		cfg.WriteTimeout = DefaultWriteTimeout
	}

	s := &Server{
		cfg:      cfg,
		log:      logging.Nop(),
		router:   mux.NewRouter(),
		patterns: make(map[string]string),
	}
	for _, opt := range opts {
		opt(s)
	}

	if cfg.Metrics {
		if s.registry == nil {
			s.registry = metrics.NewRegistry()
		}
		s.metrics = metrics.NewHTTP(s.registry)
		s.router.Handle(MetricsPath, s.registry.Handler()).Methods(http.MethodGet).Name("metrics")
	}
	s.router.HandleFunc(HealthPath, s.handleHealth).Methods(http.MethodGet).Name("health")
	s.router.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		httputil.WriteNotFound(w, "Not found")
	})
	s.router.Use(s.tagResource)
	s.router.Use(s.resourcesOnly(ratelimit.Middleware(ratelimit.New(cfg.RateLimit), s.log)))

	return s
}

// Mount adds a resource. Two resources cannot share a base path.
func (s *Server) Mount(res *resource.Resource) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.resources {
		if existing.Path() == res.Path() {
			return fmt.Errorf("resource %q: path %s already used by %q", res.Name(), res.Path(), existing.Name())
		}
	}

	res.Mount(s.router)
	for _, r := range res.Routes() {
		s.patterns[r.Pattern] = res.Name()
	}
	s.resources = append(s.resources, res)
	return nil
}

// Resources returns the mounted resources in mount order.
func (s *Server) Resources() []*resource.Resource {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*resource.Resource, len(s.resources))
	copy(out, s.resources)
	return out
}

// HandleFunc registers a named GET route next to the health probe. Named
// routes bypass rate limiting. Register them before mounting resources.
func (s *Server) HandleFunc(path, name string, h http.HandlerFunc) {
	s.router.HandleFunc(path, h).Methods(http.MethodGet).Name(name)
}

// Handler returns the full handler chain.
func (s *Server) Handler() http.Handler {
	return s.observe(s.router)
}

// Start listens and serves in the background.
func (s *Server) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return ErrAlreadyRunning
	}

	//nolint:gosec // G102: binding to all interfaces is intended
	ln, err := net.Listen("tcp", fmt.Sprintf(":%d", s.cfg.Port))
	if err != nil {
		return fmt.Errorf("listen on port %d: %w", s.cfg.Port, err)
	}

	s.listener = ln
	s.httpServer = &http.Server{
		Handler:           s.Handler(),
		ReadTimeout:       s.cfg.ReadTimeout,
		ReadHeaderTimeout: s.cfg.ReadTimeout,
		WriteTimeout:      s.cfg.WriteTimeout,
	}

	srv := s.httpServer
	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.log.Error("HTTP server error", "error", err)
		}
	}()

	s.running = true
	s.startTime = time.Now()
	s.log.Info("server started", "addr", ln.Addr().String(), "resources", len(s.resources), "metrics", s.cfg.Metrics)
	return nil
}

// Addr returns the listening address, or "" when stopped.
func (s *Server) Addr() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// Uptime returns how long the server has been running.
func (s *Server) Uptime() time.Duration {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.running {
		return 0
	}
	return time.Since(s.startTime)
}

// Stop shuts the server down, waiting for in-flight requests until ctx ends.
func (s *Server) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return nil
	}
	srv := s.httpServer
	s.running = false
	s.listener = nil
	s.httpServer = nil
	s.mu.Unlock()

	// In-flight handlers take the read lock, so shut down without holding it.
	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("HTTP shutdown: %w", err)
	}
	s.log.Info("server stopped")
	return nil
}

// Run starts the server and blocks until ctx is canceled, then shuts down.
func (s *Server) Run(ctx context.Context) error {
	if err := s.Start(); err != nil {
		return err
	}
	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), DefaultShutdownTimeout)
	defer cancel()
	return s.Stop(shutdownCtx)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	httputil.WriteOK(w, map[string]any{
		"status":    "ok",
		"resources": len(s.Resources()),
	})
}
