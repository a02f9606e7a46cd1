package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	appcheckout "github.com/portal/backend/internal/application/checkout"
	apporder "github.com/portal/backend/internal/application/order"
	domaincheckout "github.com/portal/backend/internal/domain/checkout"
	"github.com/portal/backend/internal/domain/shared"
	"github.com/portal/backend/internal/infrastructure/cache"
	infracommerce "github.com/portal/backend/internal/infrastructure/commerce"
	"github.com/portal/backend/internal/infrastructure/config"
	"github.com/portal/backend/internal/infrastructure/logger"
	"github.com/portal/backend/internal/infrastructure/persistence"
	"github.com/portal/backend/internal/infrastructure/telemetry"
	"github.com/portal/backend/internal/interfaces/http/handler"
	"github.com/portal/backend/internal/interfaces/http/middleware"
	"github.com/portal/backend/internal/interfaces/http/router"
)

func main() {
	configPath := flag.String("config", "", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		panic(err)
	}

	log, err := logger.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		panic(err)
	}
	defer func() { _ = log.Sync() }()

	tracer, err := telemetry.NewTracerProvider(context.Background(), telemetry.Config{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		ServiceName:       cfg.App.Name,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("tracer init failed", zap.Error(err))
	}
	defer func() {
		if err := tracer.Shutdown(context.Background()); err != nil {
			log.Error("tracer shutdown failed", zap.Error(err))
		}
	}()

	db, err := persistence.NewDatabase(cfg.Database, log)
	if err != nil {
		log.Fatal("database connection failed", zap.Error(err))
	}
	if err := telemetry.RegisterGormTracing(db, cfg.Telemetry.Enabled, log); err != nil {
		log.Fatal("database tracing init failed", zap.Error(err))
	}

	var idempotency shared.IdempotencyStore
	if cfg.Redis.Enabled {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr(),
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := redisClient.Ping(context.Background()).Err(); err != nil {
			log.Fatal("redis connection failed", zap.Error(err))
		}
		idempotency = cache.NewRedisIdempotencyStore(redisClient)
	} else {
		store := cache.NewInMemoryIdempotencyStore()
		defer store.Close()
		idempotency = store
	}

	storefront, err := infracommerce.NewStorefrontAdapter(infracommerce.StorefrontConfig{
		BaseURL:   cfg.Commerce.BaseURL,
		APIKey:    cfg.Commerce.APIKey,
		APISecret: cfg.Commerce.APISecret,
		Timeout:   cfg.Commerce.Timeout,
	}, log)
	if err != nil {
		log.Fatal("storefront client init failed", zap.Error(err))
	}

	sessionRepo := persistence.NewSessionRepository(db)
	orderRepo := persistence.NewOrderRepository(db)
	partnerRepo := persistence.NewSalesRepRepository(db)

	lifecycle := apporder.NewLifecycleService(orderRepo, partnerRepo, log)

	executor := appcheckout.NewRetryExecutor(domaincheckout.RetryPolicy{
		MaxRetries: cfg.Checkout.MaxRetries,
		BaseDelay:  cfg.Checkout.RetryBaseDelay,
	}, log)
	orchestrator := appcheckout.NewOrchestratorService(
		sessionRepo, storefront, lifecycle, executor, idempotency,
		appcheckout.PricingPolicy{
			TaxRate:      decimal.NewFromFloat(cfg.Checkout.TaxRate),
			FlatShipping: decimal.NewFromFloat(cfg.Checkout.FlatShippingFee),
		}, log)
	recovery := appcheckout.NewRecoveryService(orchestrator, sessionRepo, log)

	engine := router.New(log, cfg.IsProduction(),
		middleware.Tracing(cfg.App.Name, cfg.Telemetry.Enabled),
		handler.NewSystemHandler(db, log),
		handler.NewCheckoutHandler(orchestrator, recovery, log),
		handler.NewOrderHandler(lifecycle, log),
	)

	server := &http.Server{
		Addr:         cfg.HTTP.Addr(),
		Handler:      engine,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
	}

	go func() {
		log.Info("server starting", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("server shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Error("forced shutdown", zap.Error(err))
	}
	log.Info("server stopped")
}
