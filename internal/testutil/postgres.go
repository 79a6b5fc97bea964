// Package testutil provides database fixtures for integration tests.
package testutil

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/iho/orderledger/internal/domain"
	"github.com/iho/orderledger/internal/infrastructure/postgres"
	"github.com/iho/orderledger/internal/infrastructure/postgres/generated"
)

// TestDB provides isolated test database connections.
type TestDB struct {
	Pool    *pgxpool.Pool
	Queries *generated.Queries
	t       *testing.T
}

// NewTestDB connects to DATABASE_URL and migrates it. The test is skipped
// when no database is configured or -short is set.
func NewTestDB(t *testing.T) *TestDB {
	t.Helper()

	if testing.Short() {
		t.Skip("skipping integration test")
	}

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		t.Skip("DATABASE_URL not set")
	}

	if err := postgres.RunMigrations(dbURL, MigrationsPath(), zerolog.Nop()); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := postgres.NewPoolWithConfig(ctx, postgres.PoolConfig{DatabaseURL: dbURL, MaxConns: 20})
	if err != nil {
		t.Fatalf("failed to connect to test database: %v", err)
	}
	t.Cleanup(pool.Close)

	return &TestDB{
		Pool:    pool,
		Queries: generated.New(pool),
		t:       t,
	}
}

// MigrationsPath locates the migrations directory relative to this file.
func MigrationsPath() string {
	_, file, _, _ := runtime.Caller(0)
	return filepath.Join(filepath.Dir(file), "..", "infrastructure", "postgres", "migrations")
}

// TruncateAll removes all mutable data. Seeded assets and the append-only
// audit table are left alone.
func (db *TestDB) TruncateAll(ctx context.Context) {
	db.t.Helper()

	_, err := db.Pool.Exec(ctx, `
		TRUNCATE TABLE fills, orders, holdings, wallets, kyc_records, outbox_events CASCADE;
	`)
	if err != nil {
		db.t.Fatalf("failed to truncate tables: %v", err)
	}
}

// CreateWallet inserts a funded wallet directly.
func (db *TestDB) CreateWallet(ctx context.Context, userID, currency string, available decimal.Decimal) *domain.Wallet {
	db.t.Helper()

	now := time.Now().UTC()
	w := domain.NewWallet(GenerateID(), userID, currency, now)
	w.Available = available
	w.Total = available
	w.Version = 1

	_, err := db.Pool.Exec(ctx, `
		INSERT INTO wallets (id, user_id, currency, available, reserved, total, version, created_at, updated_at)
		VALUES ($1, $2, $3, $4, 0, $4, 1, $5, $5)
	`, w.ID, userID, currency, available.String(), now)
	if err != nil {
		db.t.Fatalf("failed to create test wallet: %v", err)
	}

	return w
}

// ApproveKyc marks userID as verified.
func (db *TestDB) ApproveKyc(ctx context.Context, userID string) {
	db.t.Helper()

	_, err := db.Pool.Exec(ctx, `
		INSERT INTO kyc_records (user_id, status, updated_at) VALUES ($1, 'approved', $2)
		ON CONFLICT (user_id) DO UPDATE SET status = 'approved'
	`, userID, time.Now().UTC())
	if err != nil {
		db.t.Fatalf("failed to approve kyc: %v", err)
	}
}

// GenerateID generates a new ULID.
func GenerateID() string {
	return ulid.Make().String()
}
