package usecase_test

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/iho/orderledger/internal/domain"
	"github.com/iho/orderledger/internal/usecase"
	"github.com/iho/orderledger/internal/usecase/mocks"
)

var testNow = time.Date(2026, 10, 14, 15, 0, 0, 0, time.UTC)

type harness struct {
	store    *mocks.Store
	idGen    *mocks.MockIDGenerator
	audit    *usecase.AuditRecorder
	wallets  *usecase.WalletUseCase
	holdings *usecase.HoldingUseCase
	kyc      *usecase.KycUseCase
	orders   *usecase.OrderUseCase
}

type harnessOptions struct {
	prices    usecase.PriceProvider
	auditRepo usecase.AuditRepository
	calendar  *domain.MarketCalendar
	now       time.Time
}

type harnessOption func(*harnessOptions)

func withPrices(p usecase.PriceProvider) harnessOption {
	return func(o *harnessOptions) { o.prices = p }
}

func withAuditRepo(r usecase.AuditRepository) harnessOption {
	return func(o *harnessOptions) { o.auditRepo = r }
}

func withCalendar(c *domain.MarketCalendar, now time.Time) harnessOption {
	return func(o *harnessOptions) {
		o.calendar = c
		o.now = now
	}
}

// newHarness wires every use case over one in-memory store seeded with a
// tradable asset AAPL, a halted asset HALT, and an approved user u1 holding
// 1000 USD.
func newHarness(t *testing.T, opts ...harnessOption) *harness {
	t.Helper()

	o := harnessOptions{prices: mocks.PriceTable{}, now: testNow}
	for _, opt := range opts {
		opt(&o)
	}

	store := mocks.NewStore()
	idGen := mocks.NewMockIDGenerator()
	logger := zerolog.Nop()

	auditRepo := o.auditRepo
	if auditRepo == nil {
		auditRepo = store.Audit()
	}
	audit := usecase.NewAuditRecorder(auditRepo, idGen, nil)

	wallets := usecase.NewWalletUseCase(store, store.Wallets(), store.Outbox(), audit, idGen, nil, nil, logger)
	holdings := usecase.NewHoldingUseCase(store, store.Holdings(), o.prices, audit, idGen, nil, nil, logger)
	kyc := usecase.NewKycUseCase(store, store.Kyc(), store.Outbox(), audit, idGen, logger)

	cfg := usecase.DefaultOrderConfig()
	cfg.Calendar = o.calendar
	now := o.now
	cfg.Now = func() time.Time { return now }

	orders := usecase.NewOrderUseCase(
		store, store.Orders(), store.Fills(), store.Assets(), store.Outbox(),
		wallets, holdings, kyc, o.prices, audit, idGen, nil, nil, logger, cfg,
	)

	store.PutAsset(&domain.Asset{ID: "AAPL", Symbol: "AAPL", QuoteCurrency: "USD", Tradable: true})
	store.PutAsset(&domain.Asset{ID: "HALT", Symbol: "HALT", QuoteCurrency: "USD", Tradable: false})
	store.PutKyc("u1", domain.KycApproved)
	seedWallet(store, "w-u1", "u1", "USD", "1000")

	return &harness{
		store:    store,
		idGen:    idGen,
		audit:    audit,
		wallets:  wallets,
		holdings: holdings,
		kyc:      kyc,
		orders:   orders,
	}
}

func seedWallet(store *mocks.Store, id, userID, currency, available string) {
	w := domain.NewWallet(id, userID, currency, testNow)
	w.Available = decimal.RequireFromString(available)
	w.Total = w.Available
	store.PutWallet(w)
}

func seedHolding(store *mocks.Store, id, userID, assetID, qty, avgPrice string) {
	h := domain.NewHolding(id, userID, assetID, testNow)
	h.Quantity = decimal.RequireFromString(qty)
	h.AveragePurchasePrice = decimal.RequireFromString(avgPrice)
	h.TotalInvested = h.Quantity.Mul(h.AveragePurchasePrice)
	store.PutHolding(h)
}

func client(userID string) domain.Principal {
	return domain.Principal{UserID: userID, Role: domain.RoleClient}
}

func venueCtx() context.Context {
	return domain.ContextWithPrincipal(context.Background(), domain.Principal{UserID: "venue-1", Role: domain.RoleVenue})
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func decPtr(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func limitBuy(qty, price string) usecase.PlaceOrderInput {
	return usecase.PlaceOrderInput{
		AssetID:     "AAPL",
		Side:        domain.OrderSideBuy,
		Type:        domain.OrderTypeLimit,
		Quantity:    dec(qty),
		LimitPrice:  decPtr(price),
		TimeInForce: domain.TimeInForceGTC,
	}
}

func limitSell(qty, price string) usecase.PlaceOrderInput {
	in := limitBuy(qty, price)
	in.Side = domain.OrderSideSell
	return in
}

// assertDecimal fails when got != want numerically.
func assertDecimal(t *testing.T, field string, want string, got decimal.Decimal) {
	t.Helper()
	if !got.Equal(dec(want)) {
		t.Errorf("%s: expected %s, got %s", field, want, got)
	}
}
