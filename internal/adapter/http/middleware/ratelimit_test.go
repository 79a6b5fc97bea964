package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"

	"github.com/iho/orderledger/internal/domain"
	"github.com/iho/orderledger/internal/infrastructure/metrics"
)

type fakeLimiter struct {
	allowed    bool
	retryAfter time.Duration
	err        error
	keys       []string
}

func (f *fakeLimiter) Allow(ctx context.Context, key string) (bool, time.Duration, error) {
	f.keys = append(f.keys, key)
	return f.allowed, f.retryAfter, f.err
}

func TestRateLimiter_Limit(t *testing.T) {
	tests := []struct {
		name       string
		limiter    *fakeLimiter
		principal  *domain.Principal
		wantStatus int
		wantKey    string
		wantHits   float64
	}{
		{
			name:       "admitted anonymous",
			limiter:    &fakeLimiter{allowed: true},
			wantStatus: http.StatusOK,
			wantKey:    "ip:192.0.2.1",
		},
		{
			name:       "admitted user",
			limiter:    &fakeLimiter{allowed: true},
			principal:  &domain.Principal{UserID: "u1", Role: domain.RoleClient},
			wantStatus: http.StatusOK,
			wantKey:    "user:u1",
		},
		{
			name:       "throttled user",
			limiter:    &fakeLimiter{allowed: false, retryAfter: 1500 * time.Millisecond},
			principal:  &domain.Principal{UserID: "u1", Role: domain.RoleClient},
			wantStatus: http.StatusTooManyRequests,
			wantKey:    "user:u1",
			wantHits:   1,
		},
		{
			name:       "store down lets request through",
			limiter:    &fakeLimiter{err: errors.New("redis down")},
			wantStatus: http.StatusOK,
			wantKey:    "ip:192.0.2.1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := metrics.NewWithRegisterer(prometheus.NewRegistry())
			rl := NewRateLimiter(tt.limiter, m, zerolog.Nop())

			req := httptest.NewRequest(http.MethodGet, "/api/v1/orders", nil)
			req.RemoteAddr = "192.0.2.1:5555"
			if tt.principal != nil {
				req = req.WithContext(domain.ContextWithPrincipal(req.Context(), *tt.principal))
			}
			rr := httptest.NewRecorder()

			rl.Limit(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusOK)
			})).ServeHTTP(rr, req)

			if rr.Code != tt.wantStatus {
				t.Fatalf("expected %d, got %d", tt.wantStatus, rr.Code)
			}
			if len(tt.limiter.keys) != 1 || tt.limiter.keys[0] != tt.wantKey {
				t.Fatalf("expected key %q, got %v", tt.wantKey, tt.limiter.keys)
			}
			if tt.wantStatus == http.StatusTooManyRequests && rr.Header().Get("Retry-After") != "2" {
				t.Fatalf("expected Retry-After 2, got %q", rr.Header().Get("Retry-After"))
			}
			if got := testutil.ToFloat64(m.RateLimitHits.WithLabelValues("user")); got != tt.wantHits {
				t.Fatalf("expected %v rate limit hits, got %v", tt.wantHits, got)
			}
		})
	}
}

func TestGetIP(t *testing.T) {
	tests := []struct {
		name    string
		headers map[string]string
		remote  string
		want    string
	}{
		{name: "forwarded chain", headers: map[string]string{"X-Forwarded-For": "203.0.113.7, 10.0.0.1"}, remote: "10.0.0.1:80", want: "203.0.113.7"},
		{name: "real ip", headers: map[string]string{"X-Real-IP": "203.0.113.8"}, remote: "10.0.0.1:80", want: "203.0.113.8"},
		{name: "remote addr", remote: "198.51.100.2:4444", want: "198.51.100.2"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remote
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			if got := getIP(req); got != tt.want {
				t.Fatalf("getIP() = %q, want %q", got, tt.want)
			}
		})
	}
}
