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

// WalletUseCase is the wallet reservation manager. The Tx methods join the
// caller's transaction; the rest open their own.
type WalletUseCase struct {
	txManager  TransactionManager
	walletRepo WalletRepository
	outboxRepo OutboxRepository
	audit      *AuditRecorder
	idGen      IDGenerator
	retrier    Retrier
	metrics    *metrics.Metrics
	logger     zerolog.Logger
}

func NewWalletUseCase(
	txManager TransactionManager,
	walletRepo WalletRepository,
	outboxRepo OutboxRepository,
	audit *AuditRecorder,
	idGen IDGenerator,
	retrier Retrier,
	metrics *metrics.Metrics,
	logger zerolog.Logger,
) *WalletUseCase {
	return &WalletUseCase{
		txManager:  txManager,
		walletRepo: walletRepo,
		outboxRepo: outboxRepo,
		audit:      audit,
		idGen:      idGen,
		retrier:    retrier,
		metrics:    metrics,
		logger:     logger.With().Str("component", "wallet").Logger(),
	}
}

// Reserve moves amount from available to reserved.
func (uc *WalletUseCase) Reserve(ctx context.Context, walletID string, amount decimal.Decimal) (*domain.Wallet, error) {
	var wallet *domain.Wallet
	err := runInTx(ctx, uc.txManager, uc.retrier, func(ctx context.Context, tx Transaction) error {
		var err error
		wallet, err = uc.ReserveTx(ctx, tx, walletID, amount, "")
		return err
	})
	return wallet, reportInvariant(uc.logger, uc.metrics, "wallet.reserve", err)
}

// Release moves amount from reserved back to available.
func (uc *WalletUseCase) Release(ctx context.Context, walletID string, amount decimal.Decimal) (*domain.Wallet, error) {
	var wallet *domain.Wallet
	err := runInTx(ctx, uc.txManager, uc.retrier, func(ctx context.Context, tx Transaction) error {
		var err error
		wallet, err = uc.ReleaseTx(ctx, tx, walletID, amount, "")
		return err
	})
	return wallet, reportInvariant(uc.logger, uc.metrics, "wallet.release", err)
}

// Settle finalizes reservedAmount against actualCost.
func (uc *WalletUseCase) Settle(ctx context.Context, walletID string, reservedAmount, actualCost decimal.Decimal) (*domain.Wallet, error) {
	var wallet *domain.Wallet
	err := runInTx(ctx, uc.txManager, uc.retrier, func(ctx context.Context, tx Transaction) error {
		var err error
		wallet, err = uc.SettleTx(ctx, tx, walletID, reservedAmount, actualCost, "")
		return err
	})
	return wallet, reportInvariant(uc.logger, uc.metrics, "wallet.settle", err)
}

// Deposit credits a funding event, creating the wallet on first use.
func (uc *WalletUseCase) Deposit(ctx context.Context, userID, currency string, amount decimal.Decimal) (*domain.Wallet, error) {
	if userID == "" {
		return nil, domain.NewValidationError("user_id", "is required")
	}
	if err := domain.ValidateCurrency(currency); err != nil {
		return nil, err
	}
	if err := domain.ValidateAmount("amount", amount); err != nil {
		return nil, err
	}

	var wallet *domain.Wallet
	err := runInTx(ctx, uc.txManager, uc.retrier, func(ctx context.Context, tx Transaction) error {
		var err error
		wallet, err = uc.DepositTx(ctx, tx, userID, currency, amount, "")
		return err
	})
	return wallet, reportInvariant(uc.logger, uc.metrics, "wallet.deposit", err)
}

// ReserveTx locks the wallet and reserves amount for orderID.
func (uc *WalletUseCase) ReserveTx(ctx context.Context, tx Transaction, walletID string, amount decimal.Decimal, orderID string) (*domain.Wallet, error) {
	return uc.mutate(ctx, tx, walletID, domain.AuditWalletReserved, "funds reserved", orderID, func(w *domain.Wallet, now time.Time) error {
		return w.Reserve(amount, now)
	})
}

// ReserveForUserTx reserves amount in the user's wallet for currency. A user
// without a wallet has no funds.
func (uc *WalletUseCase) ReserveForUserTx(ctx context.Context, tx Transaction, userID, currency string, amount decimal.Decimal, orderID string) (*domain.Wallet, error) {
	wallet, err := uc.walletRepo.GetByUserCurrencyForUpdate(ctx, tx, userID, strings.ToUpper(currency))
	if errors.Is(err, domain.ErrWalletNotFound) {
		return nil, domain.ErrInsufficientBalance
	}
	if err != nil {
		return nil, err
	}
	return uc.ReserveTx(ctx, tx, wallet.ID, amount, orderID)
}

// ReleaseTx locks the wallet and releases amount reserved for orderID.
func (uc *WalletUseCase) ReleaseTx(ctx context.Context, tx Transaction, walletID string, amount decimal.Decimal, orderID string) (*domain.Wallet, error) {
	return uc.mutate(ctx, tx, walletID, domain.AuditWalletReleased, "reservation released", orderID, func(w *domain.Wallet, now time.Time) error {
		return w.Release(amount, now)
	})
}

// SettleTx locks the wallet and settles part of orderID's reservation.
func (uc *WalletUseCase) SettleTx(ctx context.Context, tx Transaction, walletID string, reservedAmount, actualCost decimal.Decimal, orderID string) (*domain.Wallet, error) {
	return uc.mutate(ctx, tx, walletID, domain.AuditWalletSettled, "reservation settled against execution", orderID, func(w *domain.Wallet, now time.Time) error {
		return w.Settle(reservedAmount, actualCost, now)
	})
}

// DepositTx credits amount to the user's wallet in currency, creating it if needed.
func (uc *WalletUseCase) DepositTx(ctx context.Context, tx Transaction, userID, currency string, amount decimal.Decimal, orderID string) (*domain.Wallet, error) {
	currency = strings.ToUpper(currency)
	now := time.Now().UTC()

	wallet, err := uc.walletRepo.GetByUserCurrencyForUpdate(ctx, tx, userID, currency)
	if errors.Is(err, domain.ErrWalletNotFound) {
		wallet = domain.NewWallet(uc.idGen.Generate(), userID, currency, now)
		wallet.Version = 1
		err = uc.walletRepo.Create(ctx, tx, wallet)
	}
	if err != nil {
		return nil, err
	}

	before := wallet.BalanceState()
	if err := wallet.Credit(amount, now); err != nil {
		return nil, err
	}
	if err := uc.walletRepo.Update(ctx, tx, wallet); err != nil {
		return nil, err
	}

	event := &domain.OutboxEvent{
		ID:            uc.idGen.Generate(),
		AggregateID:   wallet.ID,
		AggregateType: domain.AggregateTypeWallet,
		EventType:     domain.EventTypeWalletDeposited,
		Payload: domain.MarshalState(domain.WalletDepositedEvent{
			WalletID: wallet.ID,
			UserID:   wallet.UserID,
			Amount:   amount.String(),
			Currency: wallet.Currency,
		}),
		CreatedAt: now,
	}
	if err := uc.outboxRepo.Create(ctx, tx, event); err != nil {
		return nil, err
	}

	if err := uc.audit.Append(ctx, tx, walletAuditEntry(domain.AuditWalletDeposited, "funds credited", wallet, before, orderID, amount)); err != nil {
		return nil, err
	}
	uc.countOp("deposit")
	return wallet, nil
}

// GetWallet retrieves a wallet by ID.
func (uc *WalletUseCase) GetWallet(ctx context.Context, id string) (*domain.Wallet, error) {
	return uc.walletRepo.GetByID(ctx, id)
}

// ListWallets returns all wallets owned by userID.
func (uc *WalletUseCase) ListWallets(ctx context.Context, userID string) ([]*domain.Wallet, error) {
	return uc.walletRepo.ListByUser(ctx, userID)
}

func (uc *WalletUseCase) mutate(
	ctx context.Context,
	tx Transaction,
	walletID string,
	event domain.AuditEventType,
	description string,
	orderID string,
	apply func(w *domain.Wallet, now time.Time) error,
) (*domain.Wallet, error) {
	wallet, err := uc.walletRepo.GetByIDForUpdate(ctx, tx, walletID)
	if err != nil {
		return nil, err
	}

	before := wallet.BalanceState()
	if err := apply(wallet, time.Now().UTC()); err != nil {
		return nil, err
	}
	if err := uc.walletRepo.Update(ctx, tx, wallet); err != nil {
		return nil, err
	}

	if err := uc.audit.Append(ctx, tx, walletAuditEntry(event, description, wallet, before, orderID, decimal.Zero)); err != nil {
		return nil, err
	}
	uc.countOp(strings.TrimPrefix(string(event), "wallet."))
	return wallet, nil
}

func (uc *WalletUseCase) countOp(op string) {
	if uc.metrics != nil {
		uc.metrics.ReservationOps.WithLabelValues("wallet", op).Inc()
	}
}

func walletAuditEntry(event domain.AuditEventType, description string, w *domain.Wallet, before domain.JSON, orderID string, amount decimal.Decimal) *domain.AuditEntry {
	extra := domain.JSON{"currency": w.Currency}
	if orderID != "" {
		extra["order_id"] = orderID
	}
	if amount.IsPositive() {
		extra["amount"] = amount.String()
	}
	return &domain.AuditEntry{
		EventType:    event,
		Category:     domain.AuditCategoryWallet,
		Description:  description,
		ResourceType: "wallet",
		ResourceID:   w.ID,
		Metadata: domain.AuditMetadata{
			Before: before,
			After:  w.BalanceState(),
			Extra:  extra,
		},
	}
}
