package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	_ "time/tzdata" // market calendars must load on images without zoneinfo

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	httpAdapter "github.com/iho/orderledger/internal/adapter/http"
	"github.com/iho/orderledger/internal/adapter/http/handler"
	"github.com/iho/orderledger/internal/adapter/http/middleware"
	kafkaAdapter "github.com/iho/orderledger/internal/adapter/kafka"
	postgresRepo "github.com/iho/orderledger/internal/adapter/repository/postgres"
	redisRepo "github.com/iho/orderledger/internal/adapter/repository/redis"
	"github.com/iho/orderledger/internal/infrastructure/auth"
	"github.com/iho/orderledger/internal/infrastructure/config"
	"github.com/iho/orderledger/internal/infrastructure/eventpublisher"
	"github.com/iho/orderledger/internal/infrastructure/kafka"
	"github.com/iho/orderledger/internal/infrastructure/logger"
	"github.com/iho/orderledger/internal/infrastructure/metrics"
	"github.com/iho/orderledger/internal/infrastructure/postgres"
	"github.com/iho/orderledger/internal/infrastructure/redis"
	"github.com/iho/orderledger/internal/infrastructure/worker"
	"github.com/iho/orderledger/internal/usecase"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	appLogger := logger.New(logger.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})
	log.Logger = appLogger

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, appLogger); err != nil {
		log.Fatal().Err(err).Msg("server exited with error")
	}
	log.Info().Msg("server stopped")
}

func run(ctx context.Context, cfg *config.Config, appLogger zerolog.Logger) error {
	orderCfg, err := buildOrderConfig(cfg)
	if err != nil {
		return err
	}

	// Connect to PostgreSQL
	pool, err := postgres.NewPoolWithConfig(ctx, postgres.PoolConfig{
		DatabaseURL:     cfg.DatabaseURL,
		MaxConns:        cfg.DatabaseMaxConns,
		MinConns:        cfg.DatabaseMinConns,
		MaxConnLifetime: cfg.DatabaseMaxConnLifetime,
	})
	if err != nil {
		return fmt.Errorf("connect to postgres: %w", err)
	}
	defer pool.Close()
	appLogger.Info().Msg("connected to postgres")

	if err := postgres.RunMigrations(cfg.DatabaseURL, cfg.MigrationsPath, appLogger); err != nil {
		return err
	}

	// Connect to Redis
	redisClient, err := redis.NewClient(ctx, cfg.RedisURL, cfg.RedisConnectTimeout)
	if err != nil {
		return fmt.Errorf("connect to redis: %w", err)
	}
	defer redisClient.Close()
	appLogger.Info().Msg("connected to redis")

	m := metrics.New()

	// Initialize repositories
	isolation, err := postgresRepo.ParseIsolation(cfg.DatabaseIsolation)
	if err != nil {
		return err
	}
	txManager := postgresRepo.NewTxManager(pool, isolation)
	retrier := postgresRepo.NewRetrier(appLogger, m)
	idGen := postgresRepo.NewULIDGenerator()
	walletRepo := postgresRepo.NewWalletRepository(pool)
	holdingRepo := postgresRepo.NewHoldingRepository(pool)
	orderRepo := postgresRepo.NewOrderRepository(pool)
	fillRepo := postgresRepo.NewFillRepository(pool)
	assetRepo := postgresRepo.NewAssetRepository(pool)
	kycRepo := postgresRepo.NewKycRepository(pool)
	auditRepo := postgresRepo.NewAuditRepository(pool)
	outboxRepo := postgresRepo.NewOutboxRepository(pool)
	ledgerRepo := postgresRepo.NewLedgerRepository(pool)

	idempotencyStore := redisRepo.NewIdempotencyStore(redisClient, m)
	priceStore := redisRepo.NewPriceStore(redisClient, m)
	rateLimiter := redisRepo.NewRateLimiter(redisClient, cfg.RateLimit, cfg.RateLimitWindow, m)

	// Initialize use cases
	auditUC := usecase.NewAuditRecorder(auditRepo, idGen, m)
	walletUC := usecase.NewWalletUseCase(txManager, walletRepo, outboxRepo, auditUC, idGen, retrier, m, appLogger)
	holdingUC := usecase.NewHoldingUseCase(txManager, holdingRepo, priceStore, auditUC, idGen, retrier, m, appLogger)
	kycUC := usecase.NewKycUseCase(txManager, kycRepo, outboxRepo, auditUC, idGen, appLogger)
	orderUC := usecase.NewOrderUseCase(
		txManager, orderRepo, fillRepo, assetRepo, outboxRepo,
		walletUC, holdingUC, kycUC, priceStore, auditUC, idGen, retrier,
		m, appLogger, orderCfg,
	)
	reconUC := usecase.NewReconciliationUseCase(ledgerRepo, m, appLogger)

	// Create router
	routerCfg := httpAdapter.RouterConfig{
		OrderHandler:     handler.NewOrderHandler(orderUC),
		WalletHandler:    handler.NewWalletHandler(walletUC, holdingUC),
		AdminHandler:     handler.NewAdminHandler(kycUC, auditUC, reconUC),
		HealthHandler:    handler.NewHealthHandler(pool, redisClient),
		IdempotencyStore: idempotencyStore,
		IdempotencyTTL:   cfg.IdempotencyTTL,
		RateLimiter:      middleware.NewRateLimiter(rateLimiter, m, appLogger),
		Metrics:          m,
		Logger:           appLogger,
	}
	if cfg.AuthEnabled {
		if cfg.JWTSecret == "" {
			return errors.New("AUTH_ENABLED requires JWT_SECRET")
		}
		routerCfg.JWTManager = auth.NewJWTManager(cfg.JWTSecret, cfg.JWTExpiration)
	} else {
		appLogger.Warn().Msg("token auth disabled, trusting X-User-ID and X-User-Role headers")
	}

	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.HTTPPort),
		Handler:      httpAdapter.NewRouter(routerCfg),
		ReadTimeout:  cfg.HTTPReadTimeout,
		WriteTimeout: cfg.HTTPWriteTimeout,
		IdleTimeout:  cfg.HTTPIdleTimeout,
	}

	// Outbox relay: Kafka when brokers are configured, the log otherwise
	publisher, closePublisher, err := newPublisher(cfg, appLogger)
	if err != nil {
		return err
	}
	defer closePublisher()

	relay := eventpublisher.NewEventPublisher(eventpublisher.Config{
		OutboxRepo: outboxRepo,
		Publisher:  publisher,
		Logger:     appLogger,
		Metrics:    m,
		BatchSize:  cfg.OutboxBatchSize,
		Interval:   cfg.OutboxInterval,
		Retention:  cfg.OutboxRetention,
	})
	sweeper := worker.NewExpirySweeper(orderUC, cfg.ExpirySweepInterval, appLogger)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		appLogger.Info().Str("port", cfg.HTTPPort).Msg("starting server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		appLogger.Info().Msg("shutting down server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPShutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})
	g.Go(func() error { return ignoreCancel(relay.Start(gctx)) })
	g.Go(func() error { return ignoreCancel(sweeper.Start(gctx)) })

	if cfg.KafkaEnabled() {
		dlqProducer, err := kafka.NewSyncProducer(cfg.KafkaBrokers, appLogger)
		if err != nil {
			return err
		}
		defer dlqProducer.Close()

		consumer, err := kafka.NewConsumer(cfg.KafkaBrokers, cfg.KafkaConsumerGroup, appLogger)
		if err != nil {
			return err
		}
		defer consumer.Close()
		consumer.WithDeadLetter(dlqProducer, cfg.KafkaDLQTopic)

		executions := kafkaAdapter.NewExecutionHandler(orderUC, cfg.KafkaVenueID, m, appLogger)
		g.Go(func() error {
			return ignoreCancel(consumer.Consume(gctx, []string{cfg.KafkaExecutionsTopic}, executions))
		})
	}

	return g.Wait()
}

// buildOrderConfig applies the trading settings and market calendar.
func buildOrderConfig(cfg *config.Config) (usecase.OrderConfig, error) {
	calendar, err := config.LoadCalendar(cfg.CalendarFile)
	if err != nil {
		return usecase.OrderConfig{}, err
	}

	orderCfg := usecase.DefaultOrderConfig()
	orderCfg.CommissionRate = cfg.CommissionRate
	orderCfg.MarketBuffer = cfg.MarketBuffer
	orderCfg.Calendar = calendar
	return orderCfg, nil
}

func newPublisher(cfg *config.Config, appLogger zerolog.Logger) (eventpublisher.Publisher, func(), error) {
	if !cfg.KafkaEnabled() {
		return eventpublisher.NewLogPublisher(appLogger), func() {}, nil
	}

	producer, err := kafka.NewSyncProducer(cfg.KafkaBrokers, appLogger)
	if err != nil {
		return nil, nil, err
	}
	closeFn := func() {
		if err := producer.Close(); err != nil {
			appLogger.Error().Err(err).Msg("failed to close kafka producer")
		}
	}
	return eventpublisher.NewKafkaPublisher(producer, cfg.KafkaEventsTopic), closeFn, nil
}

func ignoreCancel(err error) error {
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
