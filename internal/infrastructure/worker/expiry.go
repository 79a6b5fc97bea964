package worker

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// OrderExpirer expires DAY orders whose session has closed.
type OrderExpirer interface {
	ExpireDueOrders(ctx context.Context, now time.Time) (int, error)
}

// ExpirySweeper periodically expires DAY orders.
type ExpirySweeper struct {
	orders   OrderExpirer
	logger   zerolog.Logger
	interval time.Duration
	now      func() time.Time
}

// NewExpirySweeper creates a sweeper running every interval.
func NewExpirySweeper(orders OrderExpirer, interval time.Duration, logger zerolog.Logger) *ExpirySweeper {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	return &ExpirySweeper{
		orders:   orders,
		logger:   logger.With().Str("component", "expiry_sweeper").Logger(),
		interval: interval,
		now:      time.Now,
	}
}

// Start sweeps until ctx is cancelled.
func (s *ExpirySweeper) Start(ctx context.Context) error {
	s.logger.Info().Dur("interval", s.interval).Msg("expiry sweeper started")

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.sweep(ctx)

	for {
		select {
		case <-ctx.Done():
			s.logger.Info().Msg("expiry sweeper shutting down")
			return ctx.Err()
		case <-ticker.C:
			s.sweep(ctx)
		}
	}
}

func (s *ExpirySweeper) sweep(ctx context.Context) {
	n, err := s.orders.ExpireDueOrders(ctx, s.now())
	if err != nil {
		s.logger.Error().Err(err).Int("expired", n).Msg("expiry sweep finished with errors")
		return
	}
	if n > 0 {
		s.logger.Info().Int("expired", n).Msg("expired day orders")
	}
}
