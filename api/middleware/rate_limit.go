package middleware

import (
	"net/http"
	"sync"

	"github.com/amanagarwal0602/randomcafe-sub001/api/responses"
	"github.com/amanagarwal0602/randomcafe-sub001/pkg/config"
	pkgerrors "github.com/amanagarwal0602/randomcafe-sub001/pkg/errors"
	"github.com/amanagarwal0602/randomcafe-sub001/pkg/logger"
	"golang.org/x/time/rate"
)

// limiterCache hands out one token bucket per key.
type limiterCache struct {
	mu       sync.RWMutex
	limiters map[string]*rate.Limiter
	rate     rate.Limit
	burst    int
	maxSize  int
}

func newLimiterCache(rps float64, burst, maxSize int) *limiterCache {
	return &limiterCache{
		limiters: make(map[string]*rate.Limiter),
		rate:     rate.Limit(rps),
		burst:    burst,
		maxSize:  maxSize,
	}
}

func (lc *limiterCache) get(key string) *rate.Limiter {
	lc.mu.RLock()
	limiter, ok := lc.limiters[key]
	lc.mu.RUnlock()
	if ok {
		return limiter
	}

	lc.mu.Lock()
	defer lc.mu.Unlock()
	if limiter, ok = lc.limiters[key]; ok {
		return limiter
	}
	if lc.maxSize > 0 && len(lc.limiters) >= lc.maxSize {
		lc.limiters = make(map[string]*rate.Limiter)
	}
	limiter = rate.NewLimiter(lc.rate, lc.burst)
	lc.limiters[key] = limiter
	return limiter
}

func (lc *limiterCache) size() int {
	lc.mu.RLock()
	defer lc.mu.RUnlock()
	return len(lc.limiters)
}

// RateLimit throttles requests per client IP with an in-process token bucket.
// It guards public write endpoints such as coupon checks and order placement.
func RateLimit(cfg config.RateLimitConfig, logg *logger.Logger) func(http.Handler) http.Handler {
	if cfg.RequestsPerSecond <= 0 || cfg.Burst <= 0 {
		return func(next http.Handler) http.Handler { return next }
	}
	cache := newLimiterCache(cfg.RequestsPerSecond, cfg.Burst, cfg.MaxTrackedClients)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := clientIP(r)
			if cache.get(ip).Allow() {
				next.ServeHTTP(w, r)
				return
			}
			ctx := r.Context()
			if logg != nil {
				logg.Warn(logg.WithFields(ctx, map[string]any{"ip": ip, "path": r.URL.Path}), "rate_limit.blocked")
			}
			responses.WriteError(ctx, nil, w, pkgerrors.New(pkgerrors.CodeRateLimit, "too many requests, slow down"))
		})
	}
}
