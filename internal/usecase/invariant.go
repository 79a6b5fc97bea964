package usecase

import (
	"errors"

	"github.com/rs/zerolog"

	"github.com/iho/orderledger/internal/domain"
	"github.com/iho/orderledger/internal/infrastructure/metrics"
)

// reportInvariant logs ledger corruption at the highest severity and counts
// it. The process keeps running; the failed operation has already rolled back.
func reportInvariant(logger zerolog.Logger, m *metrics.Metrics, operation string, err error) error {
	if err == nil || !errors.Is(err, domain.ErrInvariantViolation) {
		return err
	}

	logger.WithLevel(zerolog.FatalLevel).
		Err(err).
		Str("operation", operation).
		Msg("ledger invariant violation")

	if m != nil {
		m.InvariantViolations.WithLabelValues(operation).Inc()
	}
	return err
}
