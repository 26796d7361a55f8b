package ratelimit

import (
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/sonirghv/Gemini-backend/internal/infrastructure/memstore"
	"go.uber.org/zap"
)

// RateLimiter throttles requests per client IP using a sliding window
type RateLimiter struct {
	limiter *memstore.RateLimiter
	limit   int
	window  time.Duration
	logger  *zap.Logger
}

func NewRateLimiter(limiter *memstore.RateLimiter, limit int, window time.Duration, logger *zap.Logger) *RateLimiter {
	return &RateLimiter{
		limiter: limiter,
		limit:   limit,
		window:  window,
		logger:  logger,
	}
}

func (rl *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		identifier := clientIP(r)
		if identifier == "" {
			// Without a usable identifier, let the request through rather
			// than throttling unrelated clients under one bucket.
			next.ServeHTTP(w, r)
			return
		}

		if rl.limiter.IsRateLimited(identifier, rl.limit, rl.window) {
			info := rl.limiter.Info(identifier, rl.window)
			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(rl.limit))
			w.Header().Set("X-RateLimit-Remaining", "0")
			w.Header().Set("Retry-After", strconv.Itoa(info.RemainingTime))
			rl.logger.Warn("request rate limited",
				zap.String("client", identifier),
				zap.Int("retry_after", info.RemainingTime))
			http.Error(w, "Too many requests", http.StatusTooManyRequests)
			return
		}

		info := rl.limiter.Info(identifier, rl.window)
		remaining := rl.limit - info.Current
		if remaining < 0 {
			remaining = 0
		}
		w.Header().Set("X-RateLimit-Limit", strconv.Itoa(rl.limit))
		w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(remaining))
		next.ServeHTTP(w, r)
	})
}

// Stats exposes the underlying limiter counters
func (rl *RateLimiter) Stats() memstore.LimiterStats {
	return rl.limiter.Stats()
}

// clientIP trusts chi's RealIP middleware to have rewritten RemoteAddr
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		// RemoteAddr may already be a bare IP when RealIP rewrote it
		if ip := net.ParseIP(r.RemoteAddr); ip != nil {
			return ip.String()
		}
		return ""
	}
	return host
}
