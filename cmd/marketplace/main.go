package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/partline/marketplace/internal/httpapi"
	"github.com/partline/marketplace/internal/integration"
	"github.com/partline/marketplace/internal/logger"
	"github.com/partline/marketplace/internal/metrics"
	"github.com/partline/marketplace/internal/notify"
	"github.com/partline/marketplace/internal/repository"
	"github.com/partline/marketplace/internal/service"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := NewConfig()

	if err := logger.Initialize(cfg.logLevel, cfg.env); err != nil {
		log.Fatalf("logger init: %s", err)
	}
	defer logger.Log.Sync() //nolint:errcheck

	if cfg.dsn == "" {
		logger.Log.Fatal("database dsn is required, set -d or DATABASE_URI")
	}

	if err := repository.RunMigrations(cfg.dsn); err != nil {
		logger.Log.Fatal("migrations", zap.Error(err))
	}

	pool, err := pgxpool.New(ctx, cfg.dsn)
	if err != nil {
		logger.Log.Fatal("pgxpool.New", zap.Error(err))
	}
	defer pool.Close()

	publisher := notify.NewKafkaPublisher(cfg.kafkaBrokers, cfg.notificationsTopic)
	defer publisher.Close() //nolint:errcheck

	lifecycle := service.NewLifecycle(
		repository.NewStore(pool),
		integration.NewDocumentClient(cfg.documentsEndpoint, logger.Log),
		integration.NewAcquiringClient(cfg.acquiringEndpoint),
		publisher,
		service.Config{SpecialOrgINN: cfg.specialOrgINN},
		logger.Log,
		metrics.NewLifecycle(prometheus.DefaultRegisterer),
	)

	go runOfferExpiryScan(ctx, lifecycle, cfg.offerExpiryInterval)

	server := &http.Server{
		Addr:    cfg.endpoint,
		Handler: httpapi.NewRouter(lifecycle),
	}

	go func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Log.Error("server shutdown", zap.Error(err))
		}
	}()

	logger.Log.Info("starting server", zap.String("address", cfg.endpoint))

	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Log.Fatal("server", zap.Error(err))
	}
}

const expiryScanBatch = 100

// runOfferExpiryScan periodically notifies sellers whose offers ran past
// their validity window.
func runOfferExpiryScan(ctx context.Context, lifecycle *service.Lifecycle, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := lifecycle.ExpireOffers(ctx, expiryScanBatch); err != nil {
				logger.Log.Error("offer expiry scan", zap.Error(err))
			}
		}
	}
}
