package middleware

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/iho/orderledger/internal/infrastructure/metrics"
)

// Metrics records request counts and latency on m.
func Metrics(m *metrics.Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			m.HTTPInFlight.Inc()
			defer m.HTTPInFlight.Dec()

			// Wrap response writer to capture status code
			wrapped := &metricsRecorder{ResponseWriter: w, statusCode: http.StatusOK}
			next.ServeHTTP(wrapped, r)

			duration := time.Since(start).Seconds()
			path := normalizePath(r.URL.Path)

			m.HTTPRequests.WithLabelValues(r.Method, path, strconv.Itoa(wrapped.statusCode)).Inc()
			m.HTTPDuration.WithLabelValues(r.Method, path).Observe(duration)
		})
	}
}

type metricsRecorder struct {
	http.ResponseWriter

	statusCode int
}

func (r *metricsRecorder) WriteHeader(code int) {
	r.statusCode = code
	r.ResponseWriter.WriteHeader(code)
}

// idCollections are the path prefixes followed by an entity ID.
var idCollections = []string{
	"/api/v1/venue/orders/",
	"/api/v1/orders/",
}

// normalizePath replaces IDs with :id to keep label cardinality bounded.
// /api/v1/orders/01ABC123/cancel -> /api/v1/orders/:id/cancel
func normalizePath(path string) string {
	for _, prefix := range idCollections {
		if !strings.HasPrefix(path, prefix) {
			continue
		}
		rest := path[len(prefix):]
		if rest == "" || rest[0] == '/' {
			return path
		}

		suffix := ""
		if i := strings.IndexByte(rest, '/'); i >= 0 {
			suffix = rest[i:]
		}
		return prefix + ":id" + suffix
	}

	return path
}
