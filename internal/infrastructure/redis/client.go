package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/redis/go-redis/v9"
)

// NewClient creates a Redis client and waits up to connectTimeout for the
// server to answer PING. A zero connectTimeout pings once.
func NewClient(ctx context.Context, redisURL string, connectTimeout time.Duration) (*redis.Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis URL: %w", err)
	}

	client := redis.NewClient(opts)

	var policy backoff.BackOff = &backoff.StopBackOff{}
	if connectTimeout > 0 {
		exp := backoff.NewExponentialBackOff()
		exp.InitialInterval = 100 * time.Millisecond
		exp.MaxElapsedTime = connectTimeout
		policy = exp
	}

	ping := func() error {
		return client.Ping(ctx).Err()
	}
	if err := backoff.Retry(ping, backoff.WithContext(policy, ctx)); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}

	return client, nil
}
