package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/iho/orderledger/internal/domain"
	"github.com/iho/orderledger/internal/infrastructure/metrics"
)

// HoldingUseCase guards sell-side quantity with the same reserve, release and
// settle discipline the wallet applies to funds.
type HoldingUseCase struct {
	txManager   TransactionManager
	holdingRepo HoldingRepository
	prices      PriceProvider
	audit       *AuditRecorder
	idGen       IDGenerator
	retrier     Retrier
	metrics     *metrics.Metrics
	logger      zerolog.Logger
}

func NewHoldingUseCase(
	txManager TransactionManager,
	holdingRepo HoldingRepository,
	prices PriceProvider,
	audit *AuditRecorder,
	idGen IDGenerator,
	retrier Retrier,
	metrics *metrics.Metrics,
	logger zerolog.Logger,
) *HoldingUseCase {
	return &HoldingUseCase{
		txManager:   txManager,
		holdingRepo: holdingRepo,
		prices:      prices,
		audit:       audit,
		idGen:       idGen,
		retrier:     retrier,
		metrics:     metrics,
		logger:      logger.With().Str("component", "holding").Logger(),
	}
}

// CheckAndEncumber reserves qty of the user's position in assetID.
func (uc *HoldingUseCase) CheckAndEncumber(ctx context.Context, userID, assetID string, qty decimal.Decimal) (*domain.Holding, error) {
	var holding *domain.Holding
	err := runInTx(ctx, uc.txManager, uc.retrier, func(ctx context.Context, tx Transaction) error {
		var err error
		holding, err = uc.CheckAndEncumberTx(ctx, tx, userID, assetID, qty, "")
		return err
	})
	return holding, reportInvariant(uc.logger, uc.metrics, "holding.encumber", err)
}

// CheckAndEncumberTx fails with ErrInsufficientHoldings unless the free
// quantity covers qty, then reserves it under the row lock.
func (uc *HoldingUseCase) CheckAndEncumberTx(ctx context.Context, tx Transaction, userID, assetID string, qty decimal.Decimal, orderID string) (*domain.Holding, error) {
	holding, err := uc.holdingRepo.GetByUserAssetForUpdate(ctx, tx, userID, assetID)
	if errors.Is(err, domain.ErrHoldingNotFound) {
		return nil, domain.ErrInsufficientHoldings
	}
	if err != nil {
		return nil, err
	}

	before := holding.QuantityState()
	if err := holding.Encumber(qty, time.Now().UTC()); err != nil {
		return nil, err
	}
	if err := uc.holdingRepo.Update(ctx, tx, holding); err != nil {
		return nil, err
	}
	return holding, uc.record(ctx, tx, domain.AuditHoldingEncumbered, "quantity encumbered for sell order", holding, before, orderID)
}

// ReleaseTx returns qty reserved by orderID to the free pool.
func (uc *HoldingUseCase) ReleaseTx(ctx context.Context, tx Transaction, userID, assetID string, qty decimal.Decimal, orderID string) (*domain.Holding, error) {
	holding, err := uc.lock(ctx, tx, userID, assetID)
	if err != nil {
		return nil, err
	}

	before := holding.QuantityState()
	if err := holding.Release(qty, time.Now().UTC()); err != nil {
		return nil, err
	}
	if err := uc.holdingRepo.Update(ctx, tx, holding); err != nil {
		return nil, err
	}
	return holding, uc.record(ctx, tx, domain.AuditHoldingReleased, "encumbrance released", holding, before, orderID)
}

// SettleTx removes qty sold at price. A position sold down to zero is deleted.
func (uc *HoldingUseCase) SettleTx(ctx context.Context, tx Transaction, userID, assetID string, qty, price decimal.Decimal, orderID string) (*domain.Holding, error) {
	holding, err := uc.lock(ctx, tx, userID, assetID)
	if err != nil {
		return nil, err
	}

	before := holding.QuantityState()
	if err := holding.Settle(qty, price, time.Now().UTC()); err != nil {
		return nil, err
	}
	if holding.IsEmpty() {
		err = uc.holdingRepo.Delete(ctx, tx, holding.ID)
	} else {
		err = uc.holdingRepo.Update(ctx, tx, holding)
	}
	if err != nil {
		return nil, err
	}
	return holding, uc.record(ctx, tx, domain.AuditHoldingSettled, "sold quantity settled", holding, before, orderID)
}

// AcquireTx books qty bought for cost, creating the position on first buy.
func (uc *HoldingUseCase) AcquireTx(ctx context.Context, tx Transaction, userID, assetID string, qty, cost decimal.Decimal, orderID string) (*domain.Holding, error) {
	now := time.Now().UTC()
	created := false

	holding, err := uc.holdingRepo.GetByUserAssetForUpdate(ctx, tx, userID, assetID)
	if errors.Is(err, domain.ErrHoldingNotFound) {
		holding = domain.NewHolding(uc.idGen.Generate(), userID, assetID, now)
		holding.Version = 1
		created, err = true, nil
	}
	if err != nil {
		return nil, err
	}

	before := holding.QuantityState()
	if err := holding.Acquire(qty, cost, now); err != nil {
		return nil, err
	}
	if created {
		err = uc.holdingRepo.Create(ctx, tx, holding)
	} else {
		err = uc.holdingRepo.Update(ctx, tx, holding)
	}
	if err != nil {
		return nil, err
	}
	return holding, uc.record(ctx, tx, domain.AuditHoldingAcquired, "bought quantity booked", holding, before, orderID)
}

// ListHoldings returns the user's positions marked to the reference price.
// Positions without a known price keep their last stored valuation.
func (uc *HoldingUseCase) ListHoldings(ctx context.Context, userID string) ([]*domain.Holding, error) {
	holdings, err := uc.holdingRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if uc.prices == nil {
		return holdings, nil
	}

	for _, h := range holdings {
		price, err := uc.prices.ReferencePrice(ctx, h.AssetID)
		if err != nil {
			uc.logger.Debug().Err(err).Str("asset_id", h.AssetID).Msg("no reference price, keeping stored valuation")
			continue
		}
		h.MarkToMarket(price)
	}
	return holdings, nil
}

func (uc *HoldingUseCase) lock(ctx context.Context, tx Transaction, userID, assetID string) (*domain.Holding, error) {
	holding, err := uc.holdingRepo.GetByUserAssetForUpdate(ctx, tx, userID, assetID)
	if errors.Is(err, domain.ErrHoldingNotFound) {
		// A live sell order always has an encumbered holding behind it.
		return nil, &domain.InvariantError{Entity: "holding", ID: userID + "/" + assetID, Detail: "encumbered holding missing"}
	}
	return holding, err
}

func (uc *HoldingUseCase) record(ctx context.Context, tx Transaction, event domain.AuditEventType, description string, h *domain.Holding, before domain.JSON, orderID string) error {
	extra := domain.JSON{"asset_id": h.AssetID}
	if orderID != "" {
		extra["order_id"] = orderID
	}
	after := h.QuantityState()
	if h.IsEmpty() {
		after["deleted"] = true
	}

	err := uc.audit.Append(ctx, tx, &domain.AuditEntry{
		EventType:    event,
		Category:     domain.AuditCategoryHolding,
		Description:  description,
		ResourceType: "holding",
		ResourceID:   h.ID,
		Metadata:     domain.AuditMetadata{Before: before, After: after, Extra: extra},
	})
	if err != nil {
		return err
	}

	if uc.metrics != nil {
		uc.metrics.ReservationOps.WithLabelValues("holding", strings.TrimPrefix(string(event), "holding.")).Inc()
	}
	return nil
}
