// Package metrics collects Prometheus-compatible metrics and serves them in
// the text exposition format (text/plain; version=0.0.4).
//
// Counters, gauges and histograms are safe for concurrent use. Each metric
// keeps one value per label combination, created on first use.
//
// Usage:
//
//	registry := metrics.NewRegistry()
//	m := metrics.NewHTTP(registry)
//	m.Observe("GET", "users", "200", 12*time.Millisecond)
//
//	http.Handle("/metrics", registry.Handler())
package metrics
