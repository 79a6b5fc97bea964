package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/iho/orderledger/internal/adapter/http/handler"
	apimiddleware "github.com/iho/orderledger/internal/adapter/http/middleware"
	"github.com/iho/orderledger/internal/domain"
	"github.com/iho/orderledger/internal/infrastructure/auth"
	"github.com/iho/orderledger/internal/infrastructure/metrics"
	"github.com/iho/orderledger/internal/usecase"
)

func TestNewRouter_HealthEndpointAvailable(t *testing.T) {
	router := NewRouter(newRouterConfig())

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected /health to return 200, got %d", rec.Code)
	}
	if rec.Header().Get(apimiddleware.RequestIDHeader) == "" {
		t.Fatalf("expected a request id on every response")
	}
}

func TestNewRouter_MetricsEndpointServesRegistry(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.NewWithRegisterer(reg)
	router := NewRouter(newRouterConfig(func(cfg *RouterConfig) {
		cfg.Metrics = m
		cfg.MetricsHandler = promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
	}))

	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/health", nil))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected /metrics to return 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "orderledger_http_requests_total") {
		t.Fatalf("expected http metrics to be exported")
	}
}

func TestNewRouter_RateLimiterBlocksExcessRequests(t *testing.T) {
	limiter := &countingLimiter{limit: 1}
	rl := apimiddleware.NewRateLimiter(limiter, nil, zerolog.Nop())
	router := NewRouter(newRouterConfig(func(cfg *RouterConfig) {
		cfg.RateLimiter = rl
	}))

	send := func() int {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/wallets", nil)
		req.Header.Set(apimiddleware.UserIDHeader, "u1")
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		return rec.Code
	}

	if code := send(); code != http.StatusOK {
		t.Fatalf("expected first request to succeed, got %d", code)
	}
	if code := send(); code != http.StatusTooManyRequests {
		t.Fatalf("expected second request to be throttled, got %d", code)
	}
	if limiter.lastKey != "user:u1" {
		t.Fatalf("expected per-user key, got %q", limiter.lastKey)
	}
}

func TestNewRouter_IdempotencyMiddlewareInvokesStore(t *testing.T) {
	store := &stubIdempotencyStore{}
	router := NewRouter(newRouterConfig(func(cfg *RouterConfig) {
		cfg.IdempotencyStore = store
	}))

	body := `{"asset_id":"AAPL","side":"buy","type":"market","quantity":"1"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/orders", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(apimiddleware.IdempotencyKeyHeader, "key-123")
	req.Header.Set(apimiddleware.UserIDHeader, "u1")
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	if store.checkedKey != "u1:key-123" {
		t.Fatalf("expected idempotency store to be used with a scoped key, got %q", store.checkedKey)
	}
}

func TestNewRouter_RoleGates(t *testing.T) {
	tests := []struct {
		name   string
		method string
		path   string
		role   string
		status int
	}{
		{name: "anonymous client route", method: http.MethodGet, path: "/api/v1/wallets", status: http.StatusUnauthorized},
		{name: "client reads wallets", method: http.MethodGet, path: "/api/v1/wallets", role: "client", status: http.StatusOK},
		{name: "venue cannot trade", method: http.MethodGet, path: "/api/v1/orders", role: "venue", status: http.StatusForbidden},
		{name: "client cannot report fills", method: http.MethodPost, path: "/api/v1/venue/orders/o-1/ack", role: "client", status: http.StatusForbidden},
		{name: "venue acknowledges", method: http.MethodPost, path: "/api/v1/venue/orders/o-1/ack", role: "venue", status: http.StatusOK},
		{name: "client cannot deposit", method: http.MethodPost, path: "/api/v1/admin/deposits", role: "client", status: http.StatusForbidden},
		{name: "admin checks consistency", method: http.MethodGet, path: "/api/v1/ledger/consistency", role: "admin", status: http.StatusOK},
	}

	router := NewRouter(newRouterConfig())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, nil)
			if tt.role != "" {
				req.Header.Set(apimiddleware.UserIDHeader, "caller")
				req.Header.Set(apimiddleware.RoleHeader, tt.role)
			}
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			if rec.Code != tt.status {
				t.Fatalf("expected %d, got %d: %s", tt.status, rec.Code, rec.Body.String())
			}
		})
	}
}

func TestNewRouter_JWTRequiredWhenConfigured(t *testing.T) {
	manager := auth.NewJWTManager("router-secret", time.Hour)
	router := NewRouter(newRouterConfig(func(cfg *RouterConfig) {
		cfg.JWTManager = manager
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/wallets", nil)
	req.Header.Set(apimiddleware.UserIDHeader, "u1")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected identity headers to be ignored, got %d", rec.Code)
	}

	token, err := manager.Generate(domain.Principal{UserID: "u1", Role: domain.RoleClient})
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}
	req = httptest.NewRequest(http.MethodGet, "/api/v1/wallets", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected bearer token to be accepted, got %d", rec.Code)
	}
}

func TestNewRouter_RegistersKeyRoutes(t *testing.T) {
	router := NewRouter(newRouterConfig())

	chiRoutes, ok := router.(chi.Router)
	if !ok {
		t.Fatal("router does not implement chi.Routes")
	}

	seen := map[string]bool{}
	if err := chi.Walk(chiRoutes, func(method string, route string, _ http.Handler, _ ...func(http.Handler) http.Handler) error {
		seen[method+" "+route] = true
		return nil
	}); err != nil {
		t.Fatalf("walk failed: %v", err)
	}

	expected := []string{
		"GET /health",
		"GET /ready",
		"POST /api/v1/orders",
		"GET /api/v1/orders",
		"GET /api/v1/orders/{id}",
		"POST /api/v1/orders/{id}/cancel",
		"GET /api/v1/orders/{id}/fills",
		"GET /api/v1/wallets",
		"GET /api/v1/holdings",
		"POST /api/v1/venue/orders/{id}/ack",
		"POST /api/v1/venue/orders/{id}/reject",
		"POST /api/v1/venue/fills",
		"POST /api/v1/admin/deposits",
		"POST /api/v1/admin/kyc/notifications",
		"GET /api/v1/admin/audit",
		"GET /api/v1/ledger/consistency",
	}

	for _, route := range expected {
		if !seen[route] {
			t.Fatalf("expected route %s to be registered", route)
		}
	}
}

func newRouterConfig(opts ...func(*RouterConfig)) RouterConfig {
	cfg := RouterConfig{
		OrderHandler:   handler.NewOrderHandler(stubOrderService{}),
		WalletHandler:  handler.NewWalletHandler(stubWalletService{}, stubWalletService{}),
		AdminHandler:   handler.NewAdminHandler(stubAdminService{}, stubAdminService{}, stubAdminService{}),
		HealthHandler:  &handler.HealthHandler{},
		MetricsHandler: http.NotFoundHandler(),
		Logger:         zerolog.Nop(),
	}

	for _, opt := range opts {
		opt(&cfg)
	}

	return cfg
}

func stubOrder(id string) *domain.Order {
	return &domain.Order{
		ID:          id,
		UserID:      "u1",
		AssetID:     "AAPL",
		Side:        domain.OrderSideBuy,
		Spec:        domain.MarketSpec{},
		Status:      domain.OrderStatusOpen,
		TimeInForce: domain.TimeInForceDay,
		Quantity:    decimal.NewFromInt(1),
	}
}

type stubOrderService struct{}

func (stubOrderService) PlaceOrder(ctx context.Context, p domain.Principal, in usecase.PlaceOrderInput) (*domain.Order, error) {
	return stubOrder("o-1"), nil
}

func (stubOrderService) CancelOrder(ctx context.Context, orderID, userID string) (*domain.Order, error) {
	return stubOrder(orderID), nil
}

func (stubOrderService) GetOrder(ctx context.Context, orderID, userID string) (*domain.Order, error) {
	return stubOrder(orderID), nil
}

func (stubOrderService) ListOrders(ctx context.Context, filter domain.OrderFilter) ([]*domain.Order, error) {
	return []*domain.Order{}, nil
}

func (stubOrderService) CountOrders(ctx context.Context, filter domain.OrderFilter) (int64, error) {
	return 0, nil
}

func (stubOrderService) ListFills(ctx context.Context, orderID, userID string) ([]*domain.Fill, error) {
	return []*domain.Fill{}, nil
}

func (stubOrderService) AcknowledgeOrder(ctx context.Context, orderID string) (*domain.Order, error) {
	return stubOrder(orderID), nil
}

func (stubOrderService) RejectOrder(ctx context.Context, orderID, reason string) (*domain.Order, error) {
	return stubOrder(orderID), nil
}

func (stubOrderService) ApplyFill(ctx context.Context, in usecase.FillInput) (*usecase.FillResult, error) {
	return &usecase.FillResult{Order: stubOrder(in.OrderID)}, nil
}

type stubWalletService struct{}

func (stubWalletService) ListWallets(ctx context.Context, userID string) ([]*domain.Wallet, error) {
	return []*domain.Wallet{}, nil
}

func (stubWalletService) Deposit(ctx context.Context, userID, currency string, amount decimal.Decimal) (*domain.Wallet, error) {
	return &domain.Wallet{UserID: userID, Currency: currency, Available: amount, Total: amount}, nil
}

func (stubWalletService) ListHoldings(ctx context.Context, userID string) ([]*domain.Holding, error) {
	return []*domain.Holding{}, nil
}

type stubAdminService struct{}

func (stubAdminService) HandleStatusChange(ctx context.Context, userID string, status domain.KycStatus, at time.Time) (*domain.KycRecord, error) {
	return &domain.KycRecord{UserID: userID, Status: status, UpdatedAt: at}, nil
}

func (stubAdminService) List(ctx context.Context, filter domain.AuditFilter) ([]*domain.AuditEntry, error) {
	return []*domain.AuditEntry{}, nil
}

func (stubAdminService) GenerateReport(ctx context.Context) (*usecase.ReconciliationReport, error) {
	return &usecase.ReconciliationReport{Consistent: true, CheckedAt: time.Now()}, nil
}

type countingLimiter struct {
	limit   int
	count   int
	lastKey string
}

func (l *countingLimiter) Allow(ctx context.Context, key string) (bool, time.Duration, error) {
	l.count++
	l.lastKey = key
	return l.count <= l.limit, time.Second, nil
}

type stubIdempotencyStore struct {
	checkedKey string
}

func (s *stubIdempotencyStore) CheckAndSet(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error) {
	s.checkedKey = key
	return false, nil, nil
}

func (s *stubIdempotencyStore) Update(ctx context.Context, key string, response []byte, ttl time.Duration) error {
	return nil
}
