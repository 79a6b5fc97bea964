package redis

import (
	"errors"

	"github.com/redis/go-redis/v9"

	"github.com/iho/orderledger/internal/infrastructure/metrics"
)

// observe counts a Redis call. A cache miss is not an error.
func observe(m *metrics.Metrics, op string, err error) {
	if m == nil {
		return
	}
	m.RedisOperations.WithLabelValues(op).Inc()
	if err != nil && !errors.Is(err, redis.Nil) {
		m.RedisErrors.WithLabelValues(op).Inc()
	}
}
