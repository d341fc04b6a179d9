package ratelimit

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/getmockd/restkit/pkg/httputil"
)

// MsgTooManyRequests is the message of a rejected request.
const MsgTooManyRequests = "Too many requests"

// Middleware enforces l on every request. A nil limiter passes everything
// through untouched.
func Middleware(l *Limiter, log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if l == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			client := l.ClientIP(r)
			d := l.Allow(client)

			reset := strconv.Itoa(int(d.Reset.Seconds()))
			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(l.Burst()))
			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(d.Remaining))
			w.Header().Set("X-RateLimit-Reset", reset)

			if !d.Allowed {
				w.Header().Set("Retry-After", reset)
				if log != nil {
					log.Debug("rate limited", "client", client, "path", r.URL.Path)
				}
				httputil.WriteMessage(w, http.StatusTooManyRequests, MsgTooManyRequests)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
