package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/crypto/bcrypt"

	"github.com/RodolfoDevApp/eventshop-storefront-go/internal/api"
	"github.com/RodolfoDevApp/eventshop-storefront-go/internal/application"
	"github.com/RodolfoDevApp/eventshop-storefront-go/internal/config"
	"github.com/RodolfoDevApp/eventshop-storefront-go/internal/infrastructure/db"
	"github.com/RodolfoDevApp/eventshop-storefront-go/internal/infrastructure/messaging"
	outboxinfra "github.com/RodolfoDevApp/eventshop-storefront-go/internal/infrastructure/outbox"
	"github.com/RodolfoDevApp/eventshop-storefront-go/internal/infrastructure/security"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "storefront-api: %v\n", err)
		os.Exit(1)
	}
}

func newLogger(level string) (*zap.Logger, error) {
	zcfg := zap.NewProductionConfig()
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("LOG_LEVEL: %w", err)
	}
	zcfg.Level = zap.NewAtomicLevelAt(lvl)
	return zcfg.Build()
}

func run() error {
	// A missing .env is normal outside local development.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	dbConn, err := sql.Open("pgx", cfg.PgDsn)
	if err != nil {
		return fmt.Errorf("open postgres: %w", err)
	}
	defer dbConn.Close()

	if err := dbConn.PingContext(ctx); err != nil {
		return fmt.Errorf("ping postgres: %w", err)
	}
	if cfg.MigrateOnStart {
		if err := db.ApplySchema(ctx, dbConn); err != nil {
			return fmt.Errorf("apply schema: %w", err)
		}
		logger.Info("schema applied")
	}

	// Repos
	userRepo := db.NewPgUserRepository(dbConn)
	productRepo := db.NewPgProductRepository(dbConn)
	orderRepo := db.NewPgOrderRepository(dbConn)
	outboxRepo := db.NewPgOutboxRepository(dbConn)

	// Application services
	outboxWriter := application.NewOutboxWriter(outboxRepo)
	authSvc := application.NewAuthService(
		userRepo,
		security.NewBcryptHasher(bcrypt.DefaultCost),
		security.NewJwtTokens(cfg.JwtSecret, cfg.JwtExpires),
		logger,
	)
	orderSvc := application.NewOrderService(productRepo, orderRepo, outboxWriter, logger)

	// Messaging is optional; without a broker orders stay PENDING and the
	// outbox keeps them until one is configured.
	var schedulerDone <-chan struct{}
	if cfg.MessagingEnabled() {
		buses := messaging.NewBuses(cfg.RabbitUri)

		dispatcher := outboxinfra.NewDispatcher(
			outboxRepo,
			buses.Producer,
			cfg.OutboxMaxRetry,
			cfg.OutboxBatchSize,
			logger,
		)
		scheduler := outboxinfra.NewScheduler(dispatcher, time.Duration(cfg.OutboxIntervalSec)*time.Second)
		schedulerDone = scheduler.Start(ctx)

		if err := messaging.RegisterCatalogSubscriptions(
			ctx,
			buses.CatalogConsumer,
			application.NewProductCreatedHandler(productRepo, logger),
			logger,
		); err != nil {
			return err
		}
		if err := messaging.RegisterInventorySubscriptions(
			ctx,
			buses.InventoryConsumer,
			application.NewStockReservedHandler(orderSvc, logger),
			application.NewStockReservationFailedHandler(orderSvc, logger),
			logger,
		); err != nil {
			return err
		}
	} else {
		logger.Warn("RABBITMQ_URI not set, messaging disabled")
	}

	// HTTP API
	apiServer := api.NewServer(cfg, authSvc, orderSvc, productRepo, logger)
	httpSrv := &http.Server{
		Addr:              ":" + cfg.HttpPort,
		Handler:           apiServer.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("http listening", zap.String("addr", httpSrv.Addr))
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
	case <-ctx.Done():
		logger.Info("shutting down")
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http shutdown", zap.Error(err))
	}
	cancel()
	if schedulerDone != nil {
		<-schedulerDone
	}
	return nil
}
