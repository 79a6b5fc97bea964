package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/iho/orderledger/internal/domain"
	"github.com/iho/orderledger/internal/infrastructure/postgres/generated"
)

// AssetRepository implements usecase.AssetRepository.
type AssetRepository struct {
	queries *generated.Queries
}

// NewAssetRepository creates a new AssetRepository.
func NewAssetRepository(db generated.DBTX) *AssetRepository {
	return &AssetRepository{queries: generated.New(db)}
}

// Create registers an instrument.
func (r *AssetRepository) Create(ctx context.Context, asset *domain.Asset) error {
	return r.queries.CreateAsset(ctx, generated.CreateAssetParams{
		ID:            asset.ID,
		Symbol:        asset.Symbol,
		Name:          asset.Name,
		QuoteCurrency: asset.QuoteCurrency,
		Tradable:      asset.Tradable,
		MinQuantity:   decimalToNumeric(asset.MinQuantity),
		MaxQuantity:   decimalToNumeric(asset.MaxQuantity),
		CreatedAt:     timeToPgTimestamptz(asset.CreatedAt),
	})
}

// GetByID retrieves an instrument by ID.
func (r *AssetRepository) GetByID(ctx context.Context, id string) (*domain.Asset, error) {
	row, err := r.queries.GetAssetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrAssetNotFound
		}

		return nil, err
	}

	return rowToAsset(row), nil
}

// List lists every instrument by symbol.
func (r *AssetRepository) List(ctx context.Context) ([]*domain.Asset, error) {
	rows, err := r.queries.ListAssets(ctx)
	if err != nil {
		return nil, err
	}

	assets := make([]*domain.Asset, 0, len(rows))
	for _, row := range rows {
		assets = append(assets, rowToAsset(row))
	}

	return assets, nil
}

func rowToAsset(row generated.Asset) *domain.Asset {
	return &domain.Asset{
		ID:            row.ID,
		Symbol:        row.Symbol,
		Name:          row.Name,
		QuoteCurrency: row.QuoteCurrency,
		Tradable:      row.Tradable,
		MinQuantity:   numericToDecimal(row.MinQuantity),
		MaxQuantity:   numericToDecimal(row.MaxQuantity),
		CreatedAt:     row.CreatedAt.Time,
	}
}
