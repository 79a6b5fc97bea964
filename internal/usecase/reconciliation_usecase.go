package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/iho/orderledger/internal/infrastructure/metrics"
)

var (
	// ErrInconsistentLedger is returned when stored reservations disagree with live orders.
	ErrInconsistentLedger = errors.New("ledger is inconsistent: reservations do not match live orders")
)

// ReconciliationUseCase cross-checks wallet and holding reservations against
// the encumbrance recorded on live orders.
type ReconciliationUseCase struct {
	ledgerRepo LedgerRepository
	metrics    *metrics.Metrics
	logger     zerolog.Logger
}

// NewReconciliationUseCase creates a new reconciliation use case
func NewReconciliationUseCase(ledgerRepo LedgerRepository, metrics *metrics.Metrics, logger zerolog.Logger) *ReconciliationUseCase {
	return &ReconciliationUseCase{
		ledgerRepo: ledgerRepo,
		metrics:    metrics,
		logger:     logger.With().Str("component", "reconciliation").Logger(),
	}
}

// ReconciliationReport represents a full reconciliation report
type ReconciliationReport struct {
	WalletDrift  []ReservationDrift
	HoldingDrift []ReservationDrift
	Consistent   bool
	CheckedAt    time.Time
}

// GenerateReport runs every consistency query. Drift is reported, not returned
// as an error; each mismatch is logged at the highest severity.
func (uc *ReconciliationUseCase) GenerateReport(ctx context.Context) (*ReconciliationReport, error) {
	wallets, err := uc.ledgerRepo.WalletDrift(ctx)
	if err != nil {
		return nil, err
	}
	holdings, err := uc.ledgerRepo.HoldingDrift(ctx)
	if err != nil {
		return nil, err
	}

	report := &ReconciliationReport{
		WalletDrift:  wallets,
		HoldingDrift: holdings,
		Consistent:   len(wallets) == 0 && len(holdings) == 0,
		CheckedAt:    time.Now().UTC(),
	}

	uc.logDrift("wallet", wallets)
	uc.logDrift("holding", holdings)
	return report, nil
}

// CheckConsistency returns ErrInconsistentLedger when any drift exists.
func (uc *ReconciliationUseCase) CheckConsistency(ctx context.Context) (bool, error) {
	report, err := uc.GenerateReport(ctx)
	if err != nil {
		return false, err
	}
	if !report.Consistent {
		return false, ErrInconsistentLedger
	}
	return true, nil
}

func (uc *ReconciliationUseCase) logDrift(resource string, drift []ReservationDrift) {
	for _, d := range drift {
		uc.logger.WithLevel(zerolog.FatalLevel).
			Str("resource", resource).
			Str("resource_id", d.ResourceID).
			Str("recorded", d.Recorded.String()).
			Str("expected", d.Expected.String()).
			Msg("reservation drift detected")
		if uc.metrics != nil {
			uc.metrics.InvariantViolations.WithLabelValues("reconcile." + resource).Inc()
		}
	}
}
