package middleware

import (
	"math"
	"net"
	"net/http"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"github.com/iho/orderledger/internal/domain"
	"github.com/iho/orderledger/internal/infrastructure/metrics"
	"github.com/iho/orderledger/internal/usecase"
)

// RateLimiter throttles callers against a counter shared by all instances.
type RateLimiter struct {
	limiter usecase.RateLimiter
	metrics *metrics.Metrics
	logger  zerolog.Logger
}

// NewRateLimiter creates a new rate limiting middleware.
func NewRateLimiter(limiter usecase.RateLimiter, m *metrics.Metrics, logger zerolog.Logger) *RateLimiter {
	return &RateLimiter{limiter: limiter, metrics: m, logger: logger}
}

// Limit enforces the limit per authenticated user, or per client IP for
// anonymous requests. When the counter store is down requests are let through.
func (rl *RateLimiter) Limit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		scope, key := "ip", "ip:"+getIP(r)
		if p, ok := domain.PrincipalFromContext(r.Context()); ok {
			scope, key = "user", "user:"+p.UserID
		}

		allowed, retryAfter, err := rl.limiter.Allow(r.Context(), key)
		if err != nil {
			rl.logger.Warn().Err(err).Str("key", key).Msg("rate limiter unavailable")
			next.ServeHTTP(w, r)
			return
		}

		if !allowed {
			if rl.metrics != nil {
				rl.metrics.RateLimitHits.WithLabelValues(scope).Inc()
			}
			seconds := int(math.Ceil(retryAfter.Seconds()))
			if seconds < 1 {
				seconds = 1
			}
			w.Header().Set("Retry-After", strconv.Itoa(seconds))
			writeError(w, http.StatusTooManyRequests, "rate limit exceeded", "")
			return
		}

		next.ServeHTTP(w, r)
	})
}

// getIP extracts the client IP from the request
func getIP(r *http.Request) string {
	// First hop of X-Forwarded-For is the original client
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		first, _, _ := strings.Cut(forwarded, ",")
		return strings.TrimSpace(first)
	}

	if realIP := r.Header.Get("X-Real-IP"); realIP != "" {
		return realIP
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
