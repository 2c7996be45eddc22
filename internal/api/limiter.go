package api

import (
	"net/http"
	"sync"

	"arenabook/internal/config"

	"golang.org/x/time/rate"
)

// limiter applies a token bucket per caller. Authenticated requests are
// keyed by bearer token, anonymous ones by client address.
type limiter struct {
	cfg     config.RateLimitConfig
	buckets sync.Map // map[string]*rate.Limiter
}

func newLimiter(cfg config.RateLimitConfig) *limiter {
	return &limiter{cfg: cfg}
}

func (l *limiter) Wrap(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if l.cfg.RPS <= 0 {
			next.ServeHTTP(w, r)
			return
		}

		key := bearerToken(r)
		if key == "" {
			key = clientHost(r)
		}
		if !l.bucket(key).Allow() {
			writeError(w, http.StatusTooManyRequests, "rate limit exceeded")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (l *limiter) bucket(key string) *rate.Limiter {
	if v, ok := l.buckets.Load(key); ok {
		return v.(*rate.Limiter)
	}

	burst := l.cfg.Burst
	if burst <= 0 {
		burst = 5
	}
	lim := rate.NewLimiter(rate.Limit(l.cfg.RPS), burst)
	actual, loaded := l.buckets.LoadOrStore(key, lim)
	if loaded {
		return actual.(*rate.Limiter)
	}
	return lim
}
