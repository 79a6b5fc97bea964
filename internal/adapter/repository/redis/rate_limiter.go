package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/iho/orderledger/internal/infrastructure/metrics"
)

// fixedWindowScript counts hits in a window that starts with the first hit.
var fixedWindowScript = redis.NewScript(`
local key = KEYS[1]
local limit = tonumber(ARGV[1])
local window_ms = tonumber(ARGV[2])

local current = redis.call("INCR", key)
if current == 1 then
  redis.call("PEXPIRE", key, window_ms)
end

local ttl = redis.call("PTTL", key)
if ttl < 0 then
  ttl = window_ms
end

if current > limit then
  return {0, ttl}
end
return {1, ttl}
`)

// RateLimiter implements usecase.RateLimiter with a counter shared by every
// server instance.
type RateLimiter struct {
	client  *redis.Client
	limit   int
	window  time.Duration
	prefix  string
	metrics *metrics.Metrics
}

// NewRateLimiter admits limit requests per key per window.
func NewRateLimiter(client *redis.Client, limit int, window time.Duration, m *metrics.Metrics) *RateLimiter {
	return &RateLimiter{
		client:  client,
		limit:   limit,
		window:  window,
		prefix:  "ratelimit:",
		metrics: m,
	}
}

// Allow consumes one unit for key.
func (l *RateLimiter) Allow(ctx context.Context, key string) (bool, time.Duration, error) {
	windowMS := l.window.Milliseconds()
	if windowMS <= 0 {
		return false, 0, fmt.Errorf("invalid rate limit window %s", l.window)
	}

	res, err := fixedWindowScript.Run(ctx, l.client, []string{l.prefix + key}, l.limit, windowMS).Result()
	observe(l.metrics, "ratelimit", err)
	if err != nil {
		return false, 0, err
	}

	vals, ok := res.([]interface{})
	if !ok || len(vals) != 2 {
		return false, 0, fmt.Errorf("unexpected rate limit response %v", res)
	}
	allowed, ok1 := vals[0].(int64)
	ttlMS, ok2 := vals[1].(int64)
	if !ok1 || !ok2 {
		return false, 0, fmt.Errorf("unexpected rate limit response %v", res)
	}

	retryAfter := time.Duration(ttlMS) * time.Millisecond
	if retryAfter < 0 {
		retryAfter = 0
	}

	return allowed == 1, retryAfter, nil
}
