package usecase

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/orderledger/internal/domain"
)

// WalletRepository defines data access for wallets.
type WalletRepository interface {
	Create(ctx context.Context, tx Transaction, wallet *domain.Wallet) error
	GetByID(ctx context.Context, id string) (*domain.Wallet, error)
	GetByIDForUpdate(ctx context.Context, tx Transaction, id string) (*domain.Wallet, error)
	GetByUserCurrencyForUpdate(ctx context.Context, tx Transaction, userID, currency string) (*domain.Wallet, error)
	// Update persists balances when the stored version still matches
	// wallet.Version and increments wallet.Version on success. A stale
	// version returns ErrConcurrentModification.
	Update(ctx context.Context, tx Transaction, wallet *domain.Wallet) error
	ListByUser(ctx context.Context, userID string) ([]*domain.Wallet, error)
}

// HoldingRepository defines data access for holdings.
type HoldingRepository interface {
	Create(ctx context.Context, tx Transaction, holding *domain.Holding) error
	GetByID(ctx context.Context, id string) (*domain.Holding, error)
	GetByIDForUpdate(ctx context.Context, tx Transaction, id string) (*domain.Holding, error)
	GetByUserAssetForUpdate(ctx context.Context, tx Transaction, userID, assetID string) (*domain.Holding, error)
	// Update follows the same version contract as WalletRepository.Update.
	Update(ctx context.Context, tx Transaction, holding *domain.Holding) error
	Delete(ctx context.Context, tx Transaction, id string) error
	ListByUser(ctx context.Context, userID string) ([]*domain.Holding, error)
}

// OrderRepository defines data access for orders.
type OrderRepository interface {
	Create(ctx context.Context, tx Transaction, order *domain.Order) error
	GetByID(ctx context.Context, id string) (*domain.Order, error)
	GetByIDForUpdate(ctx context.Context, tx Transaction, id string) (*domain.Order, error)
	// Update follows the same version contract as WalletRepository.Update.
	Update(ctx context.Context, tx Transaction, order *domain.Order) error
	List(ctx context.Context, filter domain.OrderFilter) ([]*domain.Order, error)
	Count(ctx context.Context, filter domain.OrderFilter) (int64, error)
	// ListExpired returns IDs of live DAY orders whose expiry is at or before cutoff.
	ListExpired(ctx context.Context, cutoff time.Time, limit int) ([]string, error)
}

// FillRepository defines data access for applied executions.
type FillRepository interface {
	Create(ctx context.Context, tx Transaction, fill *domain.Fill) error
	GetByExecutionID(ctx context.Context, tx Transaction, executionID string) (*domain.Fill, error)
	ListByOrder(ctx context.Context, orderID string) ([]*domain.Fill, error)
}

// AssetRepository defines data access for instruments.
type AssetRepository interface {
	Create(ctx context.Context, asset *domain.Asset) error
	GetByID(ctx context.Context, id string) (*domain.Asset, error)
	List(ctx context.Context) ([]*domain.Asset, error)
}

// AuditRepository is append-only: entries are never updated or deleted.
type AuditRepository interface {
	Append(ctx context.Context, tx Transaction, entry *domain.AuditEntry) error
	List(ctx context.Context, filter domain.AuditFilter) ([]*domain.AuditEntry, error)
}

// KycRepository stores the last notified verification status per user.
type KycRepository interface {
	Get(ctx context.Context, userID string) (*domain.KycRecord, error)
	Upsert(ctx context.Context, tx Transaction, record *domain.KycRecord) error
}

// OutboxRepository defines data access for outbox events.
type OutboxRepository interface {
	Create(ctx context.Context, tx Transaction, event *domain.OutboxEvent) error
	GetUnpublished(ctx context.Context, limit int) ([]*domain.OutboxEvent, error)
	MarkPublished(ctx context.Context, id string, publishedAt time.Time) error
	DeletePublished(ctx context.Context, before time.Time) error
}

// LedgerRepository runs ledger-wide consistency queries.
type LedgerRepository interface {
	// WalletDrift lists wallets whose reserved balance differs from the
	// encumbrance of their live buy orders, or whose total is off.
	WalletDrift(ctx context.Context) ([]ReservationDrift, error)
	// HoldingDrift lists holdings whose reserved quantity differs from the
	// encumbrance of their live sell orders.
	HoldingDrift(ctx context.Context) ([]ReservationDrift, error)
}

// ReservationDrift is one mismatch found by a consistency check.
type ReservationDrift struct {
	ResourceID string
	Recorded   decimal.Decimal
	Expected   decimal.Decimal
}
