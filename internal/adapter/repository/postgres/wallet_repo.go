package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/iho/orderledger/internal/domain"
	"github.com/iho/orderledger/internal/infrastructure/postgres/generated"
	"github.com/iho/orderledger/internal/usecase"
)

// WalletRepository implements usecase.WalletRepository.
type WalletRepository struct {
	queries *generated.Queries
}

// NewWalletRepository creates a new WalletRepository.
func NewWalletRepository(db generated.DBTX) *WalletRepository {
	return &WalletRepository{queries: generated.New(db)}
}

// Create inserts a new wallet. A second wallet for the same user and
// currency reports a concurrent modification so the caller can retry.
func (r *WalletRepository) Create(ctx context.Context, tx usecase.Transaction, wallet *domain.Wallet) error {
	err := queriesFor(tx).CreateWallet(ctx, generated.CreateWalletParams{
		ID:                wallet.ID,
		UserID:            wallet.UserID,
		Currency:          wallet.Currency,
		Available:         decimalToNumeric(wallet.Available),
		Reserved:          decimalToNumeric(wallet.Reserved),
		Total:             decimalToNumeric(wallet.Total),
		Version:           wallet.Version,
		LastTransactionAt: timePtrToPgTimestamptz(wallet.LastTransactionAt),
		CreatedAt:         timeToPgTimestamptz(wallet.CreatedAt),
		UpdatedAt:         timeToPgTimestamptz(wallet.UpdatedAt),
	})
	if isUniqueViolation(err) {
		return domain.ErrConcurrentModification
	}

	return err
}

// GetByID retrieves a wallet by ID.
func (r *WalletRepository) GetByID(ctx context.Context, id string) (*domain.Wallet, error) {
	row, err := r.queries.GetWalletByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrWalletNotFound
		}

		return nil, err
	}

	return rowToWallet(row), nil
}

// GetByIDForUpdate retrieves a wallet by ID with a FOR UPDATE lock.
func (r *WalletRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, id string) (*domain.Wallet, error) {
	row, err := queriesFor(tx).GetWalletByIDForUpdate(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrWalletNotFound
		}

		return nil, err
	}

	return rowToWallet(row), nil
}

// GetByUserCurrencyForUpdate locks the user's wallet in currency.
func (r *WalletRepository) GetByUserCurrencyForUpdate(ctx context.Context, tx usecase.Transaction, userID, currency string) (*domain.Wallet, error) {
	row, err := queriesFor(tx).GetWalletByUserCurrencyForUpdate(ctx, generated.GetWalletByUserCurrencyForUpdateParams{
		UserID:   userID,
		Currency: currency,
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrWalletNotFound
		}

		return nil, err
	}

	return rowToWallet(row), nil
}

// Update writes balances guarded by the wallet's version.
func (r *WalletRepository) Update(ctx context.Context, tx usecase.Transaction, wallet *domain.Wallet) error {
	affected, err := queriesFor(tx).UpdateWalletBalances(ctx, generated.UpdateWalletBalancesParams{
		ID:                wallet.ID,
		Available:         decimalToNumeric(wallet.Available),
		Reserved:          decimalToNumeric(wallet.Reserved),
		Total:             decimalToNumeric(wallet.Total),
		LastTransactionAt: timePtrToPgTimestamptz(wallet.LastTransactionAt),
		UpdatedAt:         timeToPgTimestamptz(wallet.UpdatedAt),
		Version:           wallet.Version,
	})
	if err != nil {
		return err
	}
	if affected == 0 {
		return domain.ErrConcurrentModification
	}

	wallet.Version++

	return nil
}

// ListByUser lists a user's wallets ordered by currency.
func (r *WalletRepository) ListByUser(ctx context.Context, userID string) ([]*domain.Wallet, error) {
	rows, err := r.queries.ListWalletsByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	wallets := make([]*domain.Wallet, 0, len(rows))
	for _, row := range rows {
		wallets = append(wallets, rowToWallet(row))
	}

	return wallets, nil
}

func rowToWallet(row generated.Wallet) *domain.Wallet {
	return &domain.Wallet{
		ID:                row.ID,
		UserID:            row.UserID,
		Currency:          row.Currency,
		Available:         numericToDecimal(row.Available),
		Reserved:          numericToDecimal(row.Reserved),
		Total:             numericToDecimal(row.Total),
		Version:           row.Version,
		LastTransactionAt: pgTimestamptzToTimePtr(row.LastTransactionAt),
		CreatedAt:         row.CreatedAt.Time,
		UpdatedAt:         row.UpdatedAt.Time,
	}
}
