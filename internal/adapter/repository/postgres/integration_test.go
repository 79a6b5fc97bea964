package postgres_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iho/orderledger/internal/adapter/repository/postgres"
	"github.com/iho/orderledger/internal/domain"
	"github.com/iho/orderledger/internal/testutil"
	"github.com/iho/orderledger/internal/usecase"
	"github.com/iho/orderledger/internal/usecase/mocks"
)

type ledger struct {
	wallets  *postgres.WalletRepository
	holdings *postgres.HoldingRepository
	orders   *usecase.OrderUseCase
	recon    *usecase.ReconciliationUseCase
}

func newLedger(t *testing.T, db *testutil.TestDB) *ledger {
	t.Helper()

	pool := db.Pool
	logger := zerolog.Nop()
	txManager := postgres.NewTxManager(pool, pgx.ReadCommitted)
	retrier := postgres.NewRetrier(logger, nil)
	idGen := postgres.NewULIDGenerator()

	walletRepo := postgres.NewWalletRepository(pool)
	holdingRepo := postgres.NewHoldingRepository(pool)
	outboxRepo := postgres.NewOutboxRepository(pool)
	prices := mocks.PriceTable{"AAPL": decimal.NewFromInt(100)}

	audit := usecase.NewAuditRecorder(postgres.NewAuditRepository(pool), idGen, nil)
	wallets := usecase.NewWalletUseCase(txManager, walletRepo, outboxRepo, audit, idGen, retrier, nil, logger)
	holdings := usecase.NewHoldingUseCase(txManager, holdingRepo, prices, audit, idGen, retrier, nil, logger)
	kyc := usecase.NewKycUseCase(txManager, postgres.NewKycRepository(pool), outboxRepo, audit, idGen, logger)

	orders := usecase.NewOrderUseCase(
		txManager,
		postgres.NewOrderRepository(pool),
		postgres.NewFillRepository(pool),
		postgres.NewAssetRepository(pool),
		outboxRepo,
		wallets, holdings, kyc, prices, audit, idGen, retrier, nil, logger,
		usecase.DefaultOrderConfig(),
	)

	return &ledger{
		wallets:  walletRepo,
		holdings: holdingRepo,
		orders:   orders,
		recon:    usecase.NewReconciliationUseCase(postgres.NewLedgerRepository(pool), nil, logger),
	}
}

func TestConcurrentBuysNeverOverReserve(t *testing.T) {
	db := testutil.NewTestDB(t)
	ctx := context.Background()
	db.TruncateAll(ctx)

	l := newLedger(t, db)
	userID := testutil.GenerateID()
	db.ApproveKyc(ctx, userID)
	wallet := db.CreateWallet(ctx, userID, "USD", decimal.NewFromInt(1000))

	principal := domain.Principal{UserID: userID, Role: domain.RoleClient}
	price := decimal.NewFromInt(100)
	in := usecase.PlaceOrderInput{
		AssetID:     "AAPL",
		Side:        domain.OrderSideBuy,
		Type:        domain.OrderTypeLimit,
		Quantity:    decimal.NewFromInt(1),
		LimitPrice:  &price,
		TimeInForce: domain.TimeInForceGTC,
	}

	// Each order reserves 100.1, so only nine fit into 1000.
	const attempts = 20
	var (
		wg       sync.WaitGroup
		accepted atomic.Int32
		refused  atomic.Int32
	)
	wg.Add(attempts)
	for range attempts {
		go func() {
			defer wg.Done()
			_, err := l.orders.PlaceOrder(ctx, principal, in)
			switch {
			case err == nil:
				accepted.Add(1)
			case errors.Is(err, domain.ErrInsufficientBalance):
				refused.Add(1)
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(9), accepted.Load())
	assert.Equal(t, int32(attempts-9), refused.Load())

	got, err := l.wallets.GetByID(ctx, wallet.ID)
	require.NoError(t, err)
	assert.True(t, got.Reserved.Equal(decimal.RequireFromString("900.9")), "reserved = %s", got.Reserved)
	assert.True(t, got.Total.Equal(decimal.NewFromInt(1000)), "total = %s", got.Total)

	ok, err := l.recon.CheckConsistency(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestFillLifecycleAgainstPostgres(t *testing.T) {
	db := testutil.NewTestDB(t)
	ctx := context.Background()
	db.TruncateAll(ctx)

	l := newLedger(t, db)
	userID := testutil.GenerateID()
	db.ApproveKyc(ctx, userID)
	wallet := db.CreateWallet(ctx, userID, "USD", decimal.NewFromInt(1000))

	price := decimal.NewFromInt(100)
	order, err := l.orders.PlaceOrder(ctx, domain.Principal{UserID: userID, Role: domain.RoleClient}, usecase.PlaceOrderInput{
		AssetID:     "AAPL",
		Side:        domain.OrderSideBuy,
		Type:        domain.OrderTypeLimit,
		Quantity:    decimal.NewFromInt(2),
		LimitPrice:  &price,
		TimeInForce: domain.TimeInForceGTC,
	})
	require.NoError(t, err)

	_, err = l.orders.AcknowledgeOrder(ctx, order.ID)
	require.NoError(t, err)

	fill := usecase.FillInput{
		OrderID:     order.ID,
		ExecutionID: "exec-" + order.ID,
		Quantity:    decimal.NewFromInt(2),
		Price:       decimal.NewFromInt(99),
		ExecutedAt:  time.Now().UTC(),
	}
	result, err := l.orders.ApplyFill(ctx, fill)
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusFilled, result.Order.Status)

	again, err := l.orders.ApplyFill(ctx, fill)
	require.NoError(t, err)
	assert.True(t, again.Duplicate)

	// 198 notional plus 0.198 commission.
	got, err := l.wallets.GetByID(ctx, wallet.ID)
	require.NoError(t, err)
	assert.True(t, got.Available.Equal(decimal.RequireFromString("801.802")), "available = %s", got.Available)
	assert.True(t, got.Reserved.IsZero(), "reserved = %s", got.Reserved)

	ok, err := l.recon.CheckConsistency(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
}
