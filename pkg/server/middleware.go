package server

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
)

// statusWriter captures the status code written by the handler.
type statusWriter struct {
	http.ResponseWriter
	statusCode int
	written    bool
}

func newStatusWriter(w http.ResponseWriter) *statusWriter {
	return &statusWriter{ResponseWriter: w, statusCode: http.StatusOK}
}

func (w *statusWriter) WriteHeader(code int) {
	if !w.written {
		w.statusCode = code
		w.written = true
	}
	w.ResponseWriter.WriteHeader(code)
}

func (w *statusWriter) Write(b []byte) (int, error) {
	w.written = true
	return w.ResponseWriter.Write(b)
}

// Flush implements http.Flusher if the underlying ResponseWriter supports it.
func (w *statusWriter) Flush() {
	if f, ok := w.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

// Unwrap lets http.ResponseController reach the underlying writer.
func (w *statusWriter) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}

// routeInfo is filled in by tagResource once the router has matched.
type routeInfo struct {
	name string
}

type routeInfoKey struct{}

const unmatchedRoute = "unmatched"

// observe logs every request and records request metrics.
func (s *Server) observe(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		if s.metrics != nil {
			defer s.metrics.Track()()
		}

		info := &routeInfo{name: unmatchedRoute}
		sw := newStatusWriter(w)
		next.ServeHTTP(sw, r.WithContext(context.WithValue(r.Context(), routeInfoKey{}, info)))

		duration := time.Since(start)
		if s.metrics != nil {
			s.metrics.Observe(r.Method, info.name, strconv.Itoa(sw.statusCode), duration)
		}

		level := levelFor(sw.statusCode)
		s.log.Log(r.Context(), level, "request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", sw.statusCode,
			"duration", duration,
			"resource", info.name,
		)
	})
}

func levelFor(status int) slog.Level {
	switch {
	case status >= http.StatusInternalServerError:
		return slog.LevelError
	case status >= http.StatusBadRequest:
		return slog.LevelWarn
	default:
		return slog.LevelInfo
	}
}

// tagResource records which resource (or named route) matched the request.
func (s *Server) tagResource(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		info, ok := r.Context().Value(routeInfoKey{}).(*routeInfo)
		if ok {
			if route := mux.CurrentRoute(r); route != nil {
				if name := route.GetName(); name != "" {
					info.name = name
				} else if tpl, err := route.GetPathTemplate(); err == nil {
					s.mu.RLock()
					if res, found := s.patterns[tpl]; found {
						info.name = res
					}
					s.mu.RUnlock()
				}
			}
		}
		next.ServeHTTP(w, r)
	})
}

// resourcesOnly applies mw to resource routes. Named routes such as the
// health probe and metrics skip it.
func (s *Server) resourcesOnly(mw mux.MiddlewareFunc) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		guarded := mw(next)
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if route := mux.CurrentRoute(r); route != nil && route.GetName() != "" {
				next.ServeHTTP(w, r)
				return
			}
			guarded.ServeHTTP(w, r)
		})
	}
}
