package usecase

import "time"

const (
	// DefaultTransactionTimeout is the maximum duration for a database transaction
	// This prevents long-running transactions from blocking tables
	DefaultTransactionTimeout = 10 * time.Second

	// IdempotencyKeyTTL is how long idempotency keys are cached
	IdempotencyKeyTTL = 24 * time.Hour

	// DefaultCommissionRate is charged on executed notional.
	DefaultCommissionRate = "0.001"

	// DefaultMarketBuffer pads the reference price when sizing market buys.
	DefaultMarketBuffer = "0.05"

	// ExpiryBatchSize caps how many orders one sweep expires.
	ExpiryBatchSize = 100

	systemActorID = "system"
)
