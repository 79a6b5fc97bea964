package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/iho/orderledger/internal/adapter/http/handler"
	"github.com/iho/orderledger/internal/adapter/http/middleware"
	"github.com/iho/orderledger/internal/domain"
	"github.com/iho/orderledger/internal/infrastructure/auth"
	"github.com/iho/orderledger/internal/infrastructure/metrics"
	"github.com/iho/orderledger/internal/usecase"
)

// RouterConfig holds dependencies for the router.
type RouterConfig struct {
	OrderHandler  *handler.OrderHandler
	WalletHandler *handler.WalletHandler
	AdminHandler  *handler.AdminHandler
	HealthHandler *handler.HealthHandler

	IdempotencyStore usecase.IdempotencyStore
	IdempotencyTTL   time.Duration
	RateLimiter      *middleware.RateLimiter

	// JWTManager verifies bearer tokens. When nil the caller is taken from
	// the X-User-ID and X-User-Role headers.
	JWTManager *auth.JWTManager

	Metrics        *metrics.Metrics
	MetricsHandler http.Handler
	Logger         zerolog.Logger
}

// NewRouter creates a new HTTP router.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.Recovery)
	r.Use(middleware.NewLoggingMiddleware(cfg.Logger).Wrap)
	if cfg.Metrics != nil {
		r.Use(middleware.Metrics(cfg.Metrics))
	}

	// Health endpoints
	r.Get("/health", cfg.HealthHandler.Liveness)
	r.Get("/ready", cfg.HealthHandler.Readiness)

	metricsHandler := cfg.MetricsHandler
	if metricsHandler == nil {
		metricsHandler = promhttp.Handler()
	}
	r.Handle("/metrics", metricsHandler)

	// API v1
	r.Route("/api/v1", func(r chi.Router) {
		if cfg.JWTManager != nil {
			r.Use(middleware.AuthMiddleware(cfg.JWTManager, cfg.Metrics))
		} else {
			r.Use(middleware.HeaderPrincipal)
		}

		if cfg.RateLimiter != nil {
			r.Use(cfg.RateLimiter.Limit)
		}

		// Idempotency keys are scoped to the caller, so this runs after auth
		if cfg.IdempotencyStore != nil {
			idempotencyMiddleware := middleware.NewIdempotencyMiddleware(cfg.IdempotencyStore, cfg.IdempotencyTTL)
			r.Use(idempotencyMiddleware.Wrap)
		}

		// Client trading and positions
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireRole(domain.Role.CanTrade))

			r.Post("/orders", cfg.OrderHandler.Place)
			r.Get("/orders", cfg.OrderHandler.List)
			r.Get("/orders/{id}", cfg.OrderHandler.Get)
			r.Post("/orders/{id}/cancel", cfg.OrderHandler.Cancel)
			r.Get("/orders/{id}/fills", cfg.OrderHandler.ListFills)

			r.Get("/wallets", cfg.WalletHandler.ListWallets)
			r.Get("/holdings", cfg.WalletHandler.ListHoldings)
		})

		// Execution venue callbacks
		r.Route("/venue", func(r chi.Router) {
			r.Use(middleware.RequireRole(domain.Role.CanReportExecutions))

			r.Post("/orders/{id}/ack", cfg.OrderHandler.Acknowledge)
			r.Post("/orders/{id}/reject", cfg.OrderHandler.Reject)
			r.Post("/fills", cfg.OrderHandler.ApplyFill)
		})

		// Operator endpoints
		r.Route("/admin", func(r chi.Router) {
			r.Use(middleware.RequireRole(domain.Role.CanOperate))

			r.Post("/deposits", cfg.WalletHandler.Deposit)
			r.Post("/kyc/notifications", cfg.AdminHandler.KycNotification)
			r.Get("/audit", cfg.AdminHandler.ListAudit)
		})

		r.With(middleware.RequireRole(domain.Role.CanOperate)).
			Get("/ledger/consistency", cfg.AdminHandler.Consistency)
	})

	return r
}
