package server

import (
	"net"
	"net/http"
	"strconv"

	"github.com/chasedovey/tokencounter/internal/domain"
	"github.com/chasedovey/tokencounter/internal/ratelimit"
)

// RateLimitMiddleware gates requests through the per-client limiter and
// writes normalized x-ratelimit-* headers on every response. It runs
// after authentication so probing with bad credentials cannot observe
// rate-limit state.
func RateLimitMiddleware(limiter *ratelimit.ClientLimiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := ClientKey(r)
			allowed, snap := limiter.Admit(key)

			h := w.Header()
			h.Set("x-ratelimit-limit-requests", strconv.Itoa(snap.Limit))
			h.Set("x-ratelimit-remaining-requests", strconv.Itoa(snap.Remaining))
			h.Set("x-ratelimit-reset-requests", snap.Reset.UTC().Format(http.TimeFormat))

			if !allowed {
				err := domain.ErrRateLimit("rate limit exceeded")
				AddError(r.Context(), err)
				AddLogField(r.Context(), "client_key", key)
				WriteError(w, err)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// ClientKey derives the rate-limit key from the caller's remote address.
// The port is stripped so one client maps to one key across connections.
func ClientKey(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
