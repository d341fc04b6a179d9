// Package ratelimit limits request rates per client with token buckets.
//
// Each client (by remote IP, or by forwarded IP behind a trusted proxy) gets
// a bucket holding up to Burst tokens, refilled at Rate tokens per second.
// Idle buckets are swept on access; the limiter runs no goroutines.
package ratelimit

import (
	"math"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"
)

// DefaultIdleTTL is how long a client's bucket survives without requests.
const DefaultIdleTTL = time.Minute

// Config configures a Limiter.
type Config struct {
	// Rate is the sustained number of requests per second per client.
	Rate float64
	// Burst is the bucket capacity. Defaults to twice Rate, at least 1.
	Burst int
	// TrustedProxies are CIDRs or single IPs allowed to set X-Forwarded-For
	// and X-Real-IP.
	TrustedProxies []string
	// IdleTTL defaults to DefaultIdleTTL.
	IdleTTL time.Duration
}

// Decision is the outcome of one Allow call.
type Decision struct {
	Allowed   bool
	Remaining int
	// Reset is the time until the bucket is full again when allowed, or
	// until the next token when denied. Never below one second.
	Reset time.Duration
}

type bucket struct {
	tokens float64
	last   time.Time
}

// Limiter is a per-client token bucket limiter. It is safe for concurrent use.
type Limiter struct {
	rate    float64
	burst   int
	ttl     time.Duration
	proxies []*net.IPNet
	now     func() time.Time

	mu        sync.Mutex
	buckets   map[string]*bucket
	lastSweep time.Time
}

// New returns a limiter, or nil when cfg.Rate is not positive.
// A nil *Limiter allows everything.
func New(cfg Config) *Limiter {
	if cfg.Rate <= 0 {
		return nil
	}
	burst := cfg.Burst
	if burst <= 0 {
		burst = max(1, int(math.Ceil(cfg.Rate*2)))
	}
	ttl := cfg.IdleTTL
	if ttl <= 0 {
		ttl = DefaultIdleTTL
	}

	l := &Limiter{
		rate:    cfg.Rate,
		burst:   burst,
		ttl:     ttl,
		now:     time.Now,
		buckets: make(map[string]*bucket),
	}
	for _, p := range cfg.TrustedProxies {
		if n := parseNetwork(p); n != nil {
			l.proxies = append(l.proxies, n)
		}
	}
	l.lastSweep = l.now()
	return l
}

// Burst returns the bucket capacity.
func (l *Limiter) Burst() int {
	if l == nil {
		return 0
	}
	return l.burst
}

// Allow takes one token from client's bucket.
func (l *Limiter) Allow(client string) Decision {
	if l == nil {
		return Decision{Allowed: true}
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	l.sweep(now)

	b, ok := l.buckets[client]
	if !ok {
		b = &bucket{tokens: float64(l.burst), last: now}
		l.buckets[client] = b
	}
	b.tokens = min(float64(l.burst), b.tokens+now.Sub(b.last).Seconds()*l.rate)
	b.last = now

	if b.tokens >= 1 {
		b.tokens--
		return Decision{
			Allowed:   true,
			Remaining: int(b.tokens),
			Reset:     l.wait(float64(l.burst) - b.tokens),
		}
	}
	return Decision{Reset: l.wait(1 - b.tokens)}
}

// Clients returns the number of tracked clients.
func (l *Limiter) Clients() int {
	if l == nil {
		return 0
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.buckets)
}

// wait converts a token deficit into a duration, rounded up to whole seconds.
func (l *Limiter) wait(tokens float64) time.Duration {
	secs := math.Ceil(tokens / l.rate)
	return time.Duration(max(1, secs)) * time.Second
}

// sweep drops idle buckets at most once per TTL. Caller holds l.mu.
func (l *Limiter) sweep(now time.Time) {
	if now.Sub(l.lastSweep) < l.ttl {
		return
	}
	cutoff := now.Add(-l.ttl)
	for k, b := range l.buckets {
		if b.last.Before(cutoff) {
			delete(l.buckets, k)
		}
	}
	l.lastSweep = now
}

// ClientIP returns the address a request is limited by. Forwarding headers
// are honored only when the direct peer is a trusted proxy.
func (l *Limiter) ClientIP(r *http.Request) string {
	remote := r.RemoteAddr
	if host, _, err := net.SplitHostPort(remote); err == nil {
		remote = host
	}
	if l == nil || !l.trusted(remote) {
		return remote
	}

	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		if ip := strings.TrimSpace(first); net.ParseIP(ip) != nil {
			return ip
		}
	}
	if ip := strings.TrimSpace(r.Header.Get("X-Real-IP")); net.ParseIP(ip) != nil {
		return ip
	}
	return remote
}

func (l *Limiter) trusted(ip string) bool {
	parsed := net.ParseIP(ip)
	if parsed == nil {
		return false
	}
	for _, n := range l.proxies {
		if n.Contains(parsed) {
			return true
		}
	}
	return false
}

func parseNetwork(s string) *net.IPNet {
	if _, n, err := net.ParseCIDR(s); err == nil {
		return n
	}
	ip := net.ParseIP(s)
	if ip == nil {
		return nil
	}
	bits := 128
	if ip.To4() != nil {
		ip, bits = ip.To4(), 32
	}
	return &net.IPNet{IP: ip, Mask: net.CIDRMask(bits, bits)}
}
