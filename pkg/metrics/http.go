package metrics

import "time"

// HTTP holds the request metrics recorded by the server.
//
//   - restkit_requests_total{method,resource,status}
//   - restkit_request_duration_seconds{method,resource}
//   - restkit_requests_in_flight
type HTTP struct {
	RequestsTotal    *Counter
	RequestDuration  *Histogram
	RequestsInFlight *Gauge
}

// NewHTTP registers the request metrics on r.
func NewHTTP(r *Registry) *HTTP {
	return &HTTP{
		RequestsTotal: r.NewCounter(
			"restkit_requests_total",
			"Total number of resource requests",
			"method", "resource", "status",
		),
		RequestDuration: r.NewHistogram(
			"restkit_request_duration_seconds",
			"Duration of resource requests in seconds",
			DefaultBuckets,
			"method", "resource",
		),
		RequestsInFlight: r.NewGauge(
			"restkit_requests_in_flight",
			"Number of requests being served",
		),
	}
}

// Observe records one finished request. Label errors cannot happen with the
// fixed label sets above and are ignored.
func (m *HTTP) Observe(method, resource, status string, d time.Duration) {
	if vec, err := m.RequestsTotal.WithLabels(method, resource, status); err == nil {
		_ = vec.Inc()
	}
	if vec, err := m.RequestDuration.WithLabels(method, resource); err == nil {
		vec.Observe(d.Seconds())
	}
}

// Track marks a request as started and returns the function that ends it.
func (m *HTTP) Track() func() {
	vec, err := m.RequestsInFlight.WithLabels()
	if err != nil {
		return func() {}
	}
	vec.Inc()
	return vec.Dec
}
