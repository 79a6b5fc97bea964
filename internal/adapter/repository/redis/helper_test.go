package redis

import (
	"testing"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/prometheus/client_golang/prometheus"
	redislib "github.com/redis/go-redis/v9"

	"github.com/iho/orderledger/internal/infrastructure/metrics"
)

// newTestRedisClient starts an in-memory Redis for one test. Retries are off
// so a stopped server fails the next call immediately.
func newTestRedisClient(t *testing.T) (*redislib.Client, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redislib.NewClient(&redislib.Options{
		Addr:       mr.Addr(),
		MaxRetries: -1,
	})

	return client, mr
}

func newTestMetrics(t *testing.T) *metrics.Metrics {
	t.Helper()
	return metrics.NewWithRegisterer(prometheus.NewRegistry())
}
