package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	"github.com/iho/orderledger/internal/domain"
	"github.com/iho/orderledger/internal/infrastructure/metrics"
)

// PriceStore implements usecase.PriceProvider over Redis. Prices are
// written by the market data feed with a TTL so a stalled feed surfaces as
// ErrPriceUnavailable rather than a stale quote.
type PriceStore struct {
	client  *redis.Client
	prefix  string
	metrics *metrics.Metrics
}

// NewPriceStore creates a new PriceStore.
func NewPriceStore(client *redis.Client, m *metrics.Metrics) *PriceStore {
	return &PriceStore{
		client:  client,
		prefix:  "price:",
		metrics: m,
	}
}

// ReferencePrice returns the last published price of assetID.
func (s *PriceStore) ReferencePrice(ctx context.Context, assetID string) (decimal.Decimal, error) {
	val, err := s.client.Get(ctx, s.prefix+assetID).Result()
	observe(s.metrics, "price_get", err)
	if errors.Is(err, redis.Nil) {
		return decimal.Zero, domain.ErrPriceUnavailable
	}
	if err != nil {
		return decimal.Zero, err
	}

	price, err := decimal.NewFromString(val)
	if err != nil {
		return decimal.Zero, fmt.Errorf("price of %s: %w", assetID, err)
	}
	if !price.IsPositive() {
		return decimal.Zero, domain.ErrPriceUnavailable
	}

	return price, nil
}

// SetPrice publishes price for assetID. A zero ttl keeps it until replaced.
func (s *PriceStore) SetPrice(ctx context.Context, assetID string, price decimal.Decimal, ttl time.Duration) error {
	if !price.IsPositive() {
		return domain.ErrInvalidAmount
	}
	err := s.client.Set(ctx, s.prefix+assetID, price.String(), ttl).Err()
	observe(s.metrics, "price_set", err)
	return err
}
