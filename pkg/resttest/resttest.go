// Package resttest runs restkit resources behind a real HTTP listener for
// use in Go tests.
//
// # Basic Usage
//
//	func TestUsersAPI(t *testing.T) {
//	    srv := resttest.New(t, config.ResourceConfig{
//	        Name: "users",
//	        Seed: []map[string]any{{"_id": "1", "name": "ada"}},
//	    })
//
//	    srv.Get("/users/1").AssertStatus(t, http.StatusOK)
//	    srv.Post("/users", map[string]any{"name": "grace"}).
//	        AssertJSONField(t, "name", "grace")
//	}
//
// Every server uses in-memory stores and is closed when the test ends.
package resttest

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/getmockd/restkit/pkg/app"
	"github.com/getmockd/restkit/pkg/config"
	"github.com/getmockd/restkit/pkg/logging"
)

// Server is a running restkit test server.
type Server struct {
	t      testing.TB
	app    *app.App
	http   *httptest.Server
	client *http.Client
}

// New starts a server mounting resources over memory stores.
// The server is stopped by t.Cleanup.
func New(t testing.TB, resources ...config.ResourceConfig) *Server {
	t.Helper()

	cfg := config.Default()
	cfg.Resources = resources
	return NewWithConfig(t, cfg)
}

// NewWithConfig starts a server for a full configuration. The store driver
// is forced to memory.
func NewWithConfig(t testing.TB, cfg *config.Config) *Server {
	t.Helper()

	cfg.ApplyDefaults()
	cfg.Store = config.StoreConfig{Driver: config.DriverMemory}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("invalid test configuration: %v", err)
	}

	a, err := app.Build(context.Background(), cfg, app.WithLogger(logging.Nop()))
	if err != nil {
		t.Fatalf("failed to build server: %v", err)
	}

	s := &Server{t: t, app: a, http: httptest.NewServer(a.Server.Handler())}
	s.client = s.http.Client()
	t.Cleanup(s.Close)
	return s
}

// URL returns the base URL.
func (s *Server) URL() string {
	return s.http.URL
}

// App returns the assembled application.
func (s *Server) App() *app.App {
	return s.app
}

// Close stops the server. It is called automatically at cleanup.
func (s *Server) Close() {
	s.http.Close()
	_ = s.app.Close(context.Background())
}

// Get sends a GET request.
func (s *Server) Get(path string) *Response {
	s.t.Helper()
	return s.Do(http.MethodGet, path, nil)
}

// Post sends body as JSON.
func (s *Server) Post(path string, body any) *Response {
	s.t.Helper()
	return s.Do(http.MethodPost, path, body)
}

// Put sends body as JSON.
func (s *Server) Put(path string, body any) *Response {
	s.t.Helper()
	return s.Do(http.MethodPut, path, body)
}

// Patch sends body as JSON.
func (s *Server) Patch(path string, body any) *Response {
	s.t.Helper()
	return s.Do(http.MethodPatch, path, body)
}

// Delete sends a DELETE request.
func (s *Server) Delete(path string) *Response {
	s.t.Helper()
	return s.Do(http.MethodDelete, path, nil)
}

// Do sends a request. A string or []byte body is sent as is; anything else
// non-nil is encoded as JSON.
func (s *Server) Do(method, path string, body any) *Response {
	s.t.Helper()

	var r io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		r = bytes.NewBufferString(b)
	case []byte:
		r = bytes.NewReader(b)
	default:
		data, err := json.Marshal(b)
		if err != nil {
			s.t.Fatalf("failed to encode request body: %v", err)
		}
		r = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(context.Background(), method, s.http.URL+path, r)
	if err != nil {
		s.t.Fatalf("failed to build request: %v", err)
	}
	if r != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := s.client.Do(req)
	if err != nil {
		s.t.Fatalf("%s %s: %v", method, path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		s.t.Fatalf("failed to read response: %v", err)
	}
	return &Response{Status: resp.StatusCode, Header: resp.Header, Body: data}
}
