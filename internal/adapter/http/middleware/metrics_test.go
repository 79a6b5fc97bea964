package middleware

import (
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/iho/orderledger/internal/infrastructure/metrics"
)

func TestMetricsMiddlewareRecordsRequest(t *testing.T) {
	testCases := []struct {
		name       string
		method     string
		path       string
		statusCode int
	}{
		{
			name:       "normalizes order path",
			method:     http.MethodGet,
			path:       "/api/v1/orders/01ABC123",
			statusCode: http.StatusTeapot,
		},
		{
			name:       "keeps non-matching path as-is",
			method:     http.MethodPost,
			path:       "/health",
			statusCode: http.StatusCreated,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			m := metrics.NewWithRegisterer(prometheus.NewRegistry())

			handlerCalled := false
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				handlerCalled = true
				if got := testutil.ToFloat64(m.HTTPInFlight); got != 1 {
					t.Errorf("expected one request in flight, got %v", got)
				}
				w.WriteHeader(tc.statusCode)
			})

			req := httptest.NewRequest(tc.method, tc.path, nil)
			rr := httptest.NewRecorder()

			Metrics(m)(next).ServeHTTP(rr, req)

			if !handlerCalled {
				t.Fatalf("next handler was not invoked")
			}

			if got := testutil.ToFloat64(m.HTTPInFlight); got != 0 {
				t.Fatalf("expected in-flight gauge to return to 0, got %v", got)
			}

			normalized := normalizePath(tc.path)
			counter := m.HTTPRequests.WithLabelValues(tc.method, normalized, strconv.Itoa(tc.statusCode))
			if got := testutil.ToFloat64(counter); got != 1 {
				t.Fatalf("expected counter to be 1, got %v", got)
			}
		})
	}
}

func TestNormalizePath(t *testing.T) {
	testCases := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "order path without suffix",
			input:    "/api/v1/orders/ABC123",
			expected: "/api/v1/orders/:id",
		},
		{
			name:     "order path with suffix",
			input:    "/api/v1/orders/ABC123/cancel",
			expected: "/api/v1/orders/:id/cancel",
		},
		{
			name:     "venue order path",
			input:    "/api/v1/venue/orders/XYZ789/ack",
			expected: "/api/v1/venue/orders/:id/ack",
		},
		{
			name:     "collection path",
			input:    "/api/v1/orders/",
			expected: "/api/v1/orders/",
		},
		{
			name:     "non-matching path",
			input:    "/api/v1/wallets",
			expected: "/api/v1/wallets",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := normalizePath(tc.input); got != tc.expected {
				t.Fatalf("normalizePath(%q) = %q, expected %q", tc.input, got, tc.expected)
			}
		})
	}
}
