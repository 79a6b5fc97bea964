package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/iho/orderledger/internal/domain"
	"github.com/iho/orderledger/internal/infrastructure/metrics"
)

// KycStatusReader answers the KYC gate.
type KycStatusReader interface {
	Status(ctx context.Context, userID string) (domain.KycStatus, error)
}

// OrderConfig holds the pricing and calendar policy of the controller.
type OrderConfig struct {
	CommissionRate decimal.Decimal
	MarketBuffer   decimal.Decimal
	// Calendar gates placement and sets DAY expiry. Nil disables the gate.
	Calendar *domain.MarketCalendar
	Now      func() time.Time
}

// DefaultOrderConfig returns the standard commission and market buffer.
func DefaultOrderConfig() OrderConfig {
	return OrderConfig{
		CommissionRate: decimal.RequireFromString(DefaultCommissionRate),
		MarketBuffer:   decimal.RequireFromString(DefaultMarketBuffer),
		Now:            time.Now,
	}
}

// PlaceOrderInput is a client order request.
type PlaceOrderInput struct {
	AssetID     string
	Side        domain.OrderSide
	Type        domain.OrderType
	Quantity    decimal.Decimal
	LimitPrice  *decimal.Decimal
	StopPrice   *decimal.Decimal
	TimeInForce domain.TimeInForce
}

// FillInput is an execution report from the venue.
type FillInput struct {
	OrderID     string
	ExecutionID string
	Quantity    decimal.Decimal
	Price       decimal.Decimal
	ExecutedAt  time.Time
}

// FillResult reports the order after a fill. Duplicate is set when the
// execution had already been applied and nothing changed.
type FillResult struct {
	Order     *domain.Order
	Fill      *domain.Fill
	Duplicate bool
}

// OrderUseCase is the order lifecycle controller.
type OrderUseCase struct {
	txManager  TransactionManager
	orderRepo  OrderRepository
	fillRepo   FillRepository
	assetRepo  AssetRepository
	outboxRepo OutboxRepository
	wallets    *WalletUseCase
	holdings   *HoldingUseCase
	kyc        KycStatusReader
	prices     PriceProvider
	audit      *AuditRecorder
	idGen      IDGenerator
	retrier    Retrier
	metrics    *metrics.Metrics
	logger     zerolog.Logger
	cfg        OrderConfig
}

func NewOrderUseCase(
	txManager TransactionManager,
	orderRepo OrderRepository,
	fillRepo FillRepository,
	assetRepo AssetRepository,
	outboxRepo OutboxRepository,
	wallets *WalletUseCase,
	holdings *HoldingUseCase,
	kyc KycStatusReader,
	prices PriceProvider,
	audit *AuditRecorder,
	idGen IDGenerator,
	retrier Retrier,
	metrics *metrics.Metrics,
	logger zerolog.Logger,
	cfg OrderConfig,
) *OrderUseCase {
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &OrderUseCase{
		txManager:  txManager,
		orderRepo:  orderRepo,
		fillRepo:   fillRepo,
		assetRepo:  assetRepo,
		outboxRepo: outboxRepo,
		wallets:    wallets,
		holdings:   holdings,
		kyc:        kyc,
		prices:     prices,
		audit:      audit,
		idGen:      idGen,
		retrier:    retrier,
		metrics:    metrics,
		logger:     logger.With().Str("component", "order").Logger(),
		cfg:        cfg,
	}
}

func (uc *OrderUseCase) now() time.Time {
	return uc.cfg.Now().UTC()
}

// PlaceOrder validates, gates, reserves and persists a new pending order.
// Nothing is written unless every check passes.
func (uc *OrderUseCase) PlaceOrder(ctx context.Context, principal domain.Principal, in PlaceOrderInput) (*domain.Order, error) {
	start := time.Now()

	order, err := uc.placeOrder(ctx, principal, in)
	if err != nil {
		uc.countRejected(err)
		return nil, reportInvariant(uc.logger, uc.metrics, "order.place", err)
	}

	if uc.metrics != nil {
		uc.metrics.OrdersPlaced.WithLabelValues(string(order.Side), string(order.Type())).Inc()
		uc.metrics.OrderDuration.WithLabelValues("place").Observe(time.Since(start).Seconds())
	}
	uc.logger.Info().
		Str("order_id", order.ID).
		Str("user_id", order.UserID).
		Str("side", string(order.Side)).
		Str("type", string(order.Type())).
		Str("quantity", order.Quantity.String()).
		Msg("order placed")
	return order, nil
}

func (uc *OrderUseCase) placeOrder(ctx context.Context, principal domain.Principal, in PlaceOrderInput) (*domain.Order, error) {
	if principal.UserID == "" {
		return nil, domain.ErrUnauthorized
	}

	spec, asset, err := uc.validatePlacement(ctx, in)
	if err != nil {
		return nil, err
	}

	if principal.Restricted {
		return nil, domain.ErrAccountRestricted
	}

	status, err := uc.kyc.Status(ctx, principal.UserID)
	if err != nil {
		return nil, err
	}
	if err := domain.CheckKyc(status); err != nil {
		return nil, err
	}

	now := uc.now()
	if uc.cfg.Calendar != nil {
		if err := uc.cfg.Calendar.Check(now); err != nil {
			return nil, err
		}
	}

	// External lookups stay outside the transaction.
	var estimate decimal.Decimal
	if in.Side == domain.OrderSideBuy {
		estimate, err = uc.estimateBuy(ctx, spec, asset.ID, in.Quantity)
		if err != nil {
			return nil, err
		}
	}

	var order *domain.Order
	err = runInTx(ctx, uc.txManager, uc.retrier, func(ctx context.Context, tx Transaction) error {
		order = &domain.Order{
			ID:                uc.idGen.Generate(),
			UserID:            principal.UserID,
			AssetID:           asset.ID,
			Side:              in.Side,
			Spec:              spec,
			Status:            domain.OrderStatusPending,
			TimeInForce:       in.TimeInForce,
			Quantity:          in.Quantity,
			FilledQuantity:    decimal.Zero,
			RemainingQuantity: in.Quantity,
			Version:           1,
			PlacedAt:          now,
			UpdatedAt:         now,
			ExpiresAt:         uc.expiry(in.TimeInForce, now),
		}

		if in.Side == domain.OrderSideBuy {
			wallet, err := uc.wallets.ReserveForUserTx(ctx, tx, principal.UserID, asset.QuoteCurrency, estimate, order.ID)
			if err != nil {
				return err
			}
			order.WalletID = wallet.ID
			order.ReservedAmount = estimate
		} else {
			if _, err := uc.holdings.CheckAndEncumberTx(ctx, tx, principal.UserID, asset.ID, in.Quantity, order.ID); err != nil {
				return err
			}
			order.ReservedAmount = in.Quantity
		}

		if err := uc.orderRepo.Create(ctx, tx, order); err != nil {
			return err
		}

		extra := domain.JSON{"estimated_cost": estimate.String()}
		limitPrice, stopPrice := domain.SpecPrices(spec)
		if limitPrice != nil {
			extra["limit_price"] = limitPrice.String()
		}
		if stopPrice != nil {
			extra["stop_price"] = stopPrice.String()
		}
		return uc.recordTransition(ctx, tx, order, nil, domain.AuditOrderPlaced, domain.EventTypeOrderPlaced, "order placed", extra)
	})
	if err != nil {
		return nil, err
	}
	return order, nil
}

func (uc *OrderUseCase) validatePlacement(ctx context.Context, in PlaceOrderInput) (domain.OrderSpec, *domain.Asset, error) {
	verr := &domain.ValidationError{}
	if in.AssetID == "" {
		verr.Add("asset_id", "is required")
	}
	if !in.Side.IsValid() {
		verr.Add("side", "must be buy or sell")
	}
	if !in.TimeInForce.IsValid() {
		verr.Add("time_in_force", "must be day or gtc")
	}
	mergeFields(verr, domain.ValidateAmount("quantity", in.Quantity))

	spec, err := domain.NewOrderSpec(in.Type, in.LimitPrice, in.StopPrice)
	mergeFields(verr, err)
	if err := verr.OrNil(); err != nil {
		return nil, nil, err
	}

	asset, err := uc.assetRepo.GetByID(ctx, in.AssetID)
	if errors.Is(err, domain.ErrAssetNotFound) {
		return nil, nil, domain.NewValidationError("asset_id", "unknown asset")
	}
	if err != nil {
		return nil, nil, err
	}
	if !asset.Tradable {
		return nil, nil, domain.NewValidationError("asset_id", "asset is not tradable")
	}
	if ferr := asset.CheckQuantity(in.Quantity); ferr != nil {
		return nil, nil, &domain.ValidationError{Fields: []domain.FieldError{*ferr}}
	}
	return spec, asset, nil
}

// estimateBuy sizes the reservation: price basis × quantity × (1 + commission).
func (uc *OrderUseCase) estimateBuy(ctx context.Context, spec domain.OrderSpec, assetID string, qty decimal.Decimal) (decimal.Decimal, error) {
	reference := decimal.Zero
	if domain.NeedsReferencePrice(spec) {
		if uc.prices == nil {
			return decimal.Zero, domain.ErrPriceUnavailable
		}
		price, err := uc.prices.ReferencePrice(ctx, assetID)
		if err != nil {
			return decimal.Zero, fmt.Errorf("%w: %v", domain.ErrPriceUnavailable, err)
		}
		reference = price
	}

	basis := domain.PriceBasis(spec, reference, uc.cfg.MarketBuffer)
	one := decimal.NewFromInt(1)
	return basis.Mul(qty).Mul(one.Add(uc.cfg.CommissionRate)).RoundCeil(domain.MaxScale), nil
}

// expiry returns the session close for DAY orders. Without a calendar a DAY
// order lives until the end of the UTC day.
func (uc *OrderUseCase) expiry(tif domain.TimeInForce, now time.Time) *time.Time {
	if tif != domain.TimeInForceDay {
		return nil
	}
	var at time.Time
	if uc.cfg.Calendar != nil {
		at = uc.cfg.Calendar.SessionClose(now).UTC()
	} else {
		y, m, d := now.Date()
		at = time.Date(y, m, d, 0, 0, 0, 0, time.UTC).AddDate(0, 0, 1)
	}
	return &at
}

// AcknowledgeOrder moves a pending order to open once the venue accepts it.
// Repeated acknowledgements of an open order are no-ops.
func (uc *OrderUseCase) AcknowledgeOrder(ctx context.Context, orderID string) (*domain.Order, error) {
	var order *domain.Order
	err := runInTx(ctx, uc.txManager, uc.retrier, func(ctx context.Context, tx Transaction) error {
		var err error
		order, err = uc.orderRepo.GetByIDForUpdate(ctx, tx, orderID)
		if err != nil {
			return err
		}
		if order.Status == domain.OrderStatusOpen {
			return nil
		}

		before := order.State()
		if err := order.TransitionTo(domain.OrderStatusOpen, uc.now()); err != nil {
			return err
		}
		if err := uc.orderRepo.Update(ctx, tx, order); err != nil {
			return err
		}
		return uc.recordTransition(ctx, tx, order, before, domain.AuditOrderAcknowledged, domain.EventTypeOrderAcknowledged, "order acknowledged by venue", nil)
	})
	if err != nil {
		return nil, reportInvariant(uc.logger, uc.metrics, "order.acknowledge", err)
	}
	return order, nil
}

// RejectOrder marks a pending order rejected by the venue and frees its encumbrance.
func (uc *OrderUseCase) RejectOrder(ctx context.Context, orderID, reason string) (*domain.Order, error) {
	reason = domain.TruncateReason(reason)

	var order *domain.Order
	err := runInTx(ctx, uc.txManager, uc.retrier, func(ctx context.Context, tx Transaction) error {
		var err error
		order, err = uc.orderRepo.GetByIDForUpdate(ctx, tx, orderID)
		if err != nil {
			return err
		}

		before := order.State()
		if err := order.TransitionTo(domain.OrderStatusRejected, uc.now()); err != nil {
			return err
		}
		order.RejectReason = reason
		if err := uc.releaseRemainder(ctx, tx, order); err != nil {
			return err
		}
		if err := uc.orderRepo.Update(ctx, tx, order); err != nil {
			return err
		}
		return uc.recordTransition(ctx, tx, order, before, domain.AuditOrderRejected, domain.EventTypeOrderRejected, "order rejected by venue", domain.JSON{"reason": reason})
	})
	if err != nil {
		return nil, reportInvariant(uc.logger, uc.metrics, "order.reject", err)
	}

	if uc.metrics != nil {
		uc.metrics.OrdersRejected.WithLabelValues("venue").Inc()
	}
	return order, nil
}

// CancelOrder cancels a live order owned by userID and releases what it still
// holds. An empty userID is an operator cancel. Trading hours do not apply.
func (uc *OrderUseCase) CancelOrder(ctx context.Context, orderID, userID string) (*domain.Order, error) {
	var order *domain.Order
	err := runInTx(ctx, uc.txManager, uc.retrier, func(ctx context.Context, tx Transaction) error {
		var err error
		order, err = uc.orderRepo.GetByIDForUpdate(ctx, tx, orderID)
		if err != nil {
			return err
		}
		if userID != "" && order.UserID != userID {
			return domain.ErrOrderNotFound
		}

		before := order.State()
		if err := order.TransitionTo(domain.OrderStatusCancelled, uc.now()); err != nil {
			return err
		}
		if err := uc.releaseRemainder(ctx, tx, order); err != nil {
			return err
		}
		if err := uc.orderRepo.Update(ctx, tx, order); err != nil {
			return err
		}
		return uc.recordTransition(ctx, tx, order, before, domain.AuditOrderCancelled, domain.EventTypeOrderCancelled, "order cancelled", nil)
	})
	if err != nil {
		return nil, reportInvariant(uc.logger, uc.metrics, "order.cancel", err)
	}

	if uc.metrics != nil {
		uc.metrics.OrdersCancelled.Inc()
	}
	return order, nil
}

// ApplyFill applies one execution. A redelivered execution ID returns the
// current order with Duplicate set and changes nothing.
func (uc *OrderUseCase) ApplyFill(ctx context.Context, in FillInput) (*FillResult, error) {
	start := time.Now()

	verr := &domain.ValidationError{}
	if in.OrderID == "" {
		verr.Add("order_id", "is required")
	}
	mergeFields(verr, domain.ValidateAmount("quantity", in.Quantity))
	mergeFields(verr, domain.ValidateAmount("price", in.Price))
	if in.ExecutionID == "" && in.ExecutedAt.IsZero() {
		verr.Add("execution_id", "is required when executed_at is missing")
	}
	if len(in.ExecutionID) > domain.MaxExecutionIDLn {
		verr.Add("execution_id", "is too long")
	}
	if err := verr.OrNil(); err != nil {
		return nil, err
	}
	if in.ExecutionID == "" {
		in.ExecutionID = domain.DeriveExecutionID(in.OrderID, in.Quantity, in.Price, in.ExecutedAt)
	}
	if in.ExecutedAt.IsZero() {
		in.ExecutedAt = uc.now()
	}

	var result *FillResult
	err := runInTx(ctx, uc.txManager, uc.retrier, func(ctx context.Context, tx Transaction) error {
		var err error
		result, err = uc.applyFillTx(ctx, tx, in)
		return err
	})
	if err != nil {
		return nil, reportInvariant(uc.logger, uc.metrics, "order.fill", err)
	}

	if uc.metrics != nil {
		if result.Duplicate {
			uc.metrics.FillsDuplicated.Inc()
		} else {
			uc.metrics.FillsApplied.Inc()
			notional, _ := in.Quantity.Mul(in.Price).Float64()
			uc.metrics.FillNotional.Observe(notional)
			uc.metrics.OrderDuration.WithLabelValues("fill").Observe(time.Since(start).Seconds())
		}
	}
	return result, nil
}

func (uc *OrderUseCase) applyFillTx(ctx context.Context, tx Transaction, in FillInput) (*FillResult, error) {
	// The order lock serializes every fill of this order, so the execution
	// lookup below cannot race with a concurrent insert of the same report.
	order, err := uc.orderRepo.GetByIDForUpdate(ctx, tx, in.OrderID)
	if err != nil {
		return nil, err
	}

	existing, err := uc.fillRepo.GetByExecutionID(ctx, tx, in.ExecutionID)
	switch {
	case err == nil:
		if existing.OrderID != order.ID {
			return nil, domain.NewValidationError("execution_id", "already applied to another order")
		}
		uc.logger.Info().Str("order_id", order.ID).Str("execution_id", in.ExecutionID).Msg("duplicate execution ignored")
		return &FillResult{Order: order, Fill: existing, Duplicate: true}, nil
	case !errors.Is(err, domain.ErrFillNotFound):
		return nil, err
	}

	asset, err := uc.assetRepo.GetByID(ctx, order.AssetID)
	if err != nil {
		return nil, err
	}

	now := uc.now()
	notional := in.Quantity.Mul(in.Price)
	commission := notional.Mul(uc.cfg.CommissionRate).Round(domain.MaxScale)
	share := order.ReleaseShare(in.Quantity)
	before := order.State()

	if err := order.ApplyFill(in.Quantity, in.Price, commission, share, now); err != nil {
		return nil, err
	}

	if order.Side == domain.OrderSideBuy {
		if _, err := uc.wallets.SettleTx(ctx, tx, order.WalletID, share, notional.Add(commission), order.ID); err != nil {
			return nil, err
		}
		if _, err := uc.holdings.AcquireTx(ctx, tx, order.UserID, order.AssetID, in.Quantity, notional, order.ID); err != nil {
			return nil, err
		}
	} else {
		if _, err := uc.holdings.SettleTx(ctx, tx, order.UserID, order.AssetID, in.Quantity, in.Price, order.ID); err != nil {
			return nil, err
		}
		if proceeds := notional.Sub(commission); proceeds.IsPositive() {
			if _, err := uc.wallets.DepositTx(ctx, tx, order.UserID, asset.QuoteCurrency, proceeds, order.ID); err != nil {
				return nil, err
			}
		}
	}

	fill := &domain.Fill{
		ID:          uc.idGen.Generate(),
		OrderID:     order.ID,
		ExecutionID: in.ExecutionID,
		Quantity:    in.Quantity,
		Price:       in.Price,
		Commission:  commission,
		ExecutedAt:  in.ExecutedAt,
		CreatedAt:   now,
	}
	if err := uc.fillRepo.Create(ctx, tx, fill); err != nil {
		return nil, err
	}
	if err := uc.orderRepo.Update(ctx, tx, order); err != nil {
		return nil, err
	}

	extra := domain.JSON{
		"execution_id": fill.ExecutionID,
		"quantity":     fill.Quantity.String(),
		"price":        fill.Price.String(),
		"commission":   fill.Commission.String(),
	}
	if err := uc.recordTransition(ctx, tx, order, before, domain.AuditOrderFilled, domain.EventTypeOrderFilled, "execution applied", extra); err != nil {
		return nil, err
	}
	return &FillResult{Order: order, Fill: fill}, nil
}

// ExpireDueOrders expires live DAY orders whose session has closed. Each order
// expires in its own transaction; failures are logged and the sweep continues.
func (uc *OrderUseCase) ExpireDueOrders(ctx context.Context, now time.Time) (int, error) {
	ids, err := uc.orderRepo.ListExpired(ctx, now, ExpiryBatchSize)
	if err != nil {
		return 0, err
	}

	expired := 0
	var errs []error
	for _, id := range ids {
		ok, err := uc.expireOrder(ctx, id, now)
		if err != nil {
			err = reportInvariant(uc.logger, uc.metrics, "order.expire", err)
			uc.logger.Error().Err(err).Str("order_id", id).Msg("failed to expire order")
			errs = append(errs, fmt.Errorf("order %s: %w", id, err))
			continue
		}
		if ok {
			expired++
		}
	}

	if uc.metrics != nil && expired > 0 {
		uc.metrics.OrdersExpired.Add(float64(expired))
	}
	return expired, errors.Join(errs...)
}

func (uc *OrderUseCase) expireOrder(ctx context.Context, orderID string, now time.Time) (bool, error) {
	expired := false
	err := runInTx(ctx, uc.txManager, uc.retrier, func(ctx context.Context, tx Transaction) error {
		order, err := uc.orderRepo.GetByIDForUpdate(ctx, tx, orderID)
		if err != nil {
			return err
		}
		// Re-check under the lock: a fill or cancel may have won the race.
		if order.TimeInForce != domain.TimeInForceDay || order.ExpiresAt == nil || order.ExpiresAt.After(now) {
			return nil
		}
		if !domain.CanTransition(order.Status, domain.OrderStatusExpired) {
			return nil
		}

		before := order.State()
		if err := order.TransitionTo(domain.OrderStatusExpired, now.UTC()); err != nil {
			return err
		}
		if err := uc.releaseRemainder(ctx, tx, order); err != nil {
			return err
		}
		if err := uc.orderRepo.Update(ctx, tx, order); err != nil {
			return err
		}
		expired = true
		return uc.recordTransition(ctx, tx, order, before, domain.AuditOrderExpired, domain.EventTypeOrderExpired, "day order expired at session close", nil)
	})
	return expired, err
}

// GetOrder returns an order. A non-empty userID restricts it to its owner.
func (uc *OrderUseCase) GetOrder(ctx context.Context, orderID, userID string) (*domain.Order, error) {
	order, err := uc.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if userID != "" && order.UserID != userID {
		return nil, domain.ErrOrderNotFound
	}
	return order, nil
}

// ListOrders returns orders matching filter, newest first.
func (uc *OrderUseCase) ListOrders(ctx context.Context, filter domain.OrderFilter) ([]*domain.Order, error) {
	if err := validateOrderFilter(filter); err != nil {
		return nil, err
	}
	filter.Limit, filter.Offset = domain.ValidatePagination(filter.Limit, filter.Offset)
	return uc.orderRepo.List(ctx, filter)
}

// CountOrders counts every order matching filter, across all pages.
func (uc *OrderUseCase) CountOrders(ctx context.Context, filter domain.OrderFilter) (int64, error) {
	if err := validateOrderFilter(filter); err != nil {
		return 0, err
	}
	return uc.orderRepo.Count(ctx, filter)
}

func validateOrderFilter(filter domain.OrderFilter) error {
	if filter.Status != "" && !filter.Status.IsValid() {
		return domain.NewValidationError("status", "unknown order status")
	}
	if filter.Side != "" && !filter.Side.IsValid() {
		return domain.NewValidationError("side", "must be buy or sell")
	}
	return nil
}

// ListFills returns the executions applied to an order.
func (uc *OrderUseCase) ListFills(ctx context.Context, orderID, userID string) ([]*domain.Fill, error) {
	if _, err := uc.GetOrder(ctx, orderID, userID); err != nil {
		return nil, err
	}
	return uc.fillRepo.ListByOrder(ctx, orderID)
}

// releaseRemainder frees whatever the order still encumbers.
func (uc *OrderUseCase) releaseRemainder(ctx context.Context, tx Transaction, order *domain.Order) error {
	if !order.ReservedAmount.IsPositive() {
		return nil
	}

	var err error
	if order.Side == domain.OrderSideBuy {
		_, err = uc.wallets.ReleaseTx(ctx, tx, order.WalletID, order.ReservedAmount, order.ID)
	} else {
		_, err = uc.holdings.ReleaseTx(ctx, tx, order.UserID, order.AssetID, order.ReservedAmount, order.ID)
	}
	if err != nil {
		return err
	}
	order.ReservedAmount = decimal.Zero
	return nil
}

// recordTransition appends the order audit entry and the outbox event.
func (uc *OrderUseCase) recordTransition(
	ctx context.Context,
	tx Transaction,
	order *domain.Order,
	before domain.JSON,
	auditEvent domain.AuditEventType,
	eventType string,
	description string,
	extra domain.JSON,
) error {
	severity := domain.AuditSeverityInfo
	if auditEvent == domain.AuditOrderRejected {
		severity = domain.AuditSeverityWarning
	}

	if err := uc.audit.Append(ctx, tx, &domain.AuditEntry{
		EventType:    auditEvent,
		Category:     domain.AuditCategoryOrder,
		Severity:     severity,
		Description:  description,
		ResourceType: "order",
		ResourceID:   order.ID,
		Metadata: domain.AuditMetadata{
			Before: before,
			After:  order.State(),
			Extra:  extra,
		},
	}); err != nil {
		return err
	}

	return uc.outboxRepo.Create(ctx, tx, &domain.OutboxEvent{
		ID:            uc.idGen.Generate(),
		AggregateID:   order.ID,
		AggregateType: domain.AggregateTypeOrder,
		EventType:     eventType,
		Payload:       domain.NewOrderEvent(order, uc.now()),
		CreatedAt:     uc.now(),
	})
}

// mergeFields folds the field errors of err into verr. Only validation
// errors can reach it.
func mergeFields(verr *domain.ValidationError, err error) {
	var fe *domain.ValidationError
	if errors.As(err, &fe) {
		verr.Fields = append(verr.Fields, fe.Fields...)
	}
}

func (uc *OrderUseCase) countRejected(err error) {
	if uc.metrics == nil {
		return
	}
	reason := "error"
	switch {
	case errors.Is(err, domain.ErrValidation):
		reason = "validation"
	case errors.Is(err, domain.ErrInsufficientBalance):
		reason = "insufficient_balance"
	case errors.Is(err, domain.ErrInsufficientHoldings):
		reason = "insufficient_holdings"
	case errors.Is(err, domain.ErrKycRequired):
		reason = "kyc"
	case errors.Is(err, domain.ErrMarketClosed):
		reason = "market_closed"
	case errors.Is(err, domain.ErrAccountRestricted):
		reason = "restricted"
	}
	uc.metrics.OrdersRejected.WithLabelValues(reason).Inc()
}
