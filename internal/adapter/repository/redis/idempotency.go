package redis

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/iho/orderledger/internal/infrastructure/metrics"
)

// ProcessingPlaceholder marks a key whose first request is still running.
const ProcessingPlaceholder = "processing"

// IdempotencyStore implements usecase.IdempotencyStore using Redis.
type IdempotencyStore struct {
	client  *redis.Client
	prefix  string
	metrics *metrics.Metrics
}

// NewIdempotencyStore creates a new IdempotencyStore.
func NewIdempotencyStore(client *redis.Client, m *metrics.Metrics) *IdempotencyStore {
	return &IdempotencyStore{
		client:  client,
		prefix:  "idempotency:",
		metrics: m,
	}
}

// CheckAndSet claims key with response, or with the processing placeholder
// when response is nil. If the key is already claimed it returns the stored
// value instead.
func (s *IdempotencyStore) CheckAndSet(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error) {
	fullKey := s.prefix + key

	value := []byte(ProcessingPlaceholder)
	if response != nil {
		value = response
	}

	set, err := s.client.SetNX(ctx, fullKey, value, ttl).Result()
	observe(s.metrics, "idempotency_setnx", err)
	if err != nil {
		return false, nil, err
	}
	if set {
		return false, nil, nil
	}

	// Another request got there first
	existing, err := s.client.Get(ctx, fullKey).Bytes()
	observe(s.metrics, "idempotency_get", err)
	if errors.Is(err, redis.Nil) {
		// Expired between the two calls; treat as claimed so the caller backs off.
		return true, nil, nil
	}
	if err != nil {
		return false, nil, err
	}

	return true, existing, nil
}

// Update updates an existing idempotency key with the final response.
func (s *IdempotencyStore) Update(ctx context.Context, key string, response []byte, ttl time.Duration) error {
	fullKey := s.prefix + key
	err := s.client.Set(ctx, fullKey, response, ttl).Err()
	observe(s.metrics, "idempotency_set", err)
	return err
}

// Release drops a claim so a failed request can be retried with the same key.
func (s *IdempotencyStore) Release(ctx context.Context, key string) error {
	err := s.client.Del(ctx, s.prefix+key).Err()
	observe(s.metrics, "idempotency_del", err)
	return err
}
