package api

import (
	"net"
	"net/http"
	"sync"

	"golang.org/x/time/rate"

	"fantoken-intel/internal/observability"
)

// RateLimiter enforces a per-client request rate, keyed by remote IP.
type RateLimiter struct {
	mu       sync.RWMutex
	limiters map[string]*rate.Limiter

	limit rate.Limit
	burst int
}

// NewRateLimiter creates a rate limiter allowing rps requests per second per
// client with the given burst.
func NewRateLimiter(rps, burst int) *RateLimiter {
	return &RateLimiter{
		limiters: make(map[string]*rate.Limiter),
		limit:    rate.Limit(rps),
		burst:    burst,
	}
}

// getLimiter returns the limiter for a client, creating it on first sight.
func (rl *RateLimiter) getLimiter(key string) *rate.Limiter {
	rl.mu.RLock()
	limiter, exists := rl.limiters[key]
	rl.mu.RUnlock()
	if exists {
		return limiter
	}

	rl.mu.Lock()
	defer rl.mu.Unlock()
	if limiter, exists := rl.limiters[key]; exists {
		return limiter
	}
	limiter = rate.NewLimiter(rl.limit, rl.burst)
	rl.limiters[key] = limiter
	return limiter
}

// RateLimitMiddleware rejects clients exceeding their request rate.
func RateLimitMiddleware(rl *RateLimiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key, _, err := net.SplitHostPort(r.RemoteAddr)
			if err != nil {
				key = r.RemoteAddr
			}

			if !rl.getLimiter(key).Allow() {
				observability.DefaultMetrics.RateLimitedReqs.Inc()
				respondError(w, http.StatusTooManyRequests, ErrCodeRateLimited,
					"rate limit exceeded, try again later")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
