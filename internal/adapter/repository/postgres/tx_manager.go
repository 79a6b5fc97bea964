package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/iho/orderledger/internal/usecase"
)

type pgxPool interface {
	BeginTx(context.Context, pgx.TxOptions) (pgx.Tx, error)
}

// TxManager implements usecase.TransactionManager. Every ledger transaction
// is opened with the same options.
//
// Default is READ COMMITTED. Repositories lock wallet, holding and order rows
// with SELECT ... FOR UPDATE and version-check every update. Under
// SERIALIZABLE, 40001 failures are replayed by the Retrier.
type TxManager struct {
	pool pgxPool
	opts pgx.TxOptions
}

// NewTxManager creates a TxManager beginning transactions at isolation.
func NewTxManager(pool *pgxpool.Pool, isolation pgx.TxIsoLevel) *TxManager {
	return newTxManagerWithPool(pool, isolation)
}

func newTxManagerWithPool(pool pgxPool, isolation pgx.TxIsoLevel) *TxManager {
	if isolation == "" {
		isolation = pgx.ReadCommitted
	}
	return &TxManager{pool: pool, opts: pgx.TxOptions{IsoLevel: isolation}}
}

// ParseIsolation maps a config value such as "serializable" to a pgx level.
func ParseIsolation(s string) (pgx.TxIsoLevel, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "read committed", "read_committed":
		return pgx.ReadCommitted, nil
	case "repeatable read", "repeatable_read":
		return pgx.RepeatableRead, nil
	case "serializable":
		return pgx.Serializable, nil
	default:
		return "", fmt.Errorf("unsupported transaction isolation %q", s)
	}
}

// Isolation reports the level transactions are opened with.
func (m *TxManager) Isolation() pgx.TxIsoLevel {
	return m.opts.IsoLevel
}

// Begin starts a ledger transaction.
func (m *TxManager) Begin(ctx context.Context) (usecase.Transaction, error) {
	tx, err := m.pool.BeginTx(ctx, m.opts)
	if err != nil {
		return nil, fmt.Errorf("begin %s transaction: %w", m.opts.IsoLevel, err)
	}

	return &Tx{tx: tx}, nil
}

// Tx wraps a pgx transaction.
type Tx struct {
	tx pgx.Tx
}

// Commit commits the transaction.
func (t *Tx) Commit(ctx context.Context) error {
	return t.tx.Commit(ctx)
}

// Rollback rolls back the transaction.
func (t *Tx) Rollback(ctx context.Context) error {
	return t.tx.Rollback(ctx)
}

// PgxTx returns the underlying pgx.Tx.
func (t *Tx) PgxTx() pgx.Tx {
	return t.tx
}
