package usecase

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// Transaction represents a database transaction.
type Transaction interface {
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// TransactionManager handles transaction lifecycle.
type TransactionManager interface {
	Begin(ctx context.Context) (Transaction, error)
}

// Retrier re-runs an operation on transient storage conflicts.
type Retrier interface {
	Retry(ctx context.Context, operation func() error) error
}

// IDGenerator generates unique IDs.
type IDGenerator interface {
	Generate() string
}

// PriceProvider supplies the current reference price of an asset.
type PriceProvider interface {
	ReferencePrice(ctx context.Context, assetID string) (decimal.Decimal, error)
}

// IdempotencyStore handles idempotency key storage.
type IdempotencyStore interface {
	// CheckAndSet atomically checks if key exists, sets if not.
	// Returns (exists, existingValue, error).
	CheckAndSet(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error)
	// Update updates an existing key with the final response.
	Update(ctx context.Context, key string, response []byte, ttl time.Duration) error
}

// RateLimiter is a client of a shared counter store.
type RateLimiter interface {
	// Allow consumes one unit for key and returns whether it was admitted and
	// how long until the window resets.
	Allow(ctx context.Context, key string) (bool, time.Duration, error)
}
