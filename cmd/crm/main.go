package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/boddenberg/strike-crm/internal/config"
	"github.com/boddenberg/strike-crm/internal/domain"
	"github.com/boddenberg/strike-crm/internal/handler"
	"github.com/boddenberg/strike-crm/internal/infra/cache"
	"github.com/boddenberg/strike-crm/internal/infra/mongo"
	"github.com/boddenberg/strike-crm/internal/infra/observability"
	"github.com/boddenberg/strike-crm/internal/infra/resilience"
	"github.com/boddenberg/strike-crm/internal/service"

	"go.uber.org/zap"
)

func main() {
	// --- Load .env file (for local development) ---
	_ = config.LoadDotEnv(".env")

	// --- Config ---
	cfg := config.Load()

	// --- Logger ---
	logger := observability.NewLogger(cfg.LogLevel)
	defer logger.Sync()

	if err := cfg.Validate(); err != nil {
		logger.Fatal("invalid configuration", zap.Error(err))
	}

	logger.Info("configuration loaded",
		zap.Int("port", cfg.Port),
		zap.String("log_level", cfg.LogLevel),
		zap.String("db_name", cfg.DBName),
		zap.Duration("db_timeout", cfg.DBTimeout),
		zap.Duration("cache_ttl", cfg.CacheTTL),
		zap.Int("max_retries", cfg.MaxRetries),
		zap.Duration("initial_backoff", cfg.InitialBackoff),
		zap.Int("max_concurrency", cfg.MaxConcurrency),
		zap.Strings("cors_allowed_origins", cfg.CORSAllowedOrigins),
	)

	// --- Tracing ---
	shutdownTracer, err := observability.InitTracer(cfg.OTLPEndpoint, "strike-crm")
	if err != nil {
		logger.Fatal("failed to init tracer", zap.Error(err))
	}
	defer shutdownTracer(context.Background())

	// --- Metrics ---
	metrics := observability.NewMetrics()

	// --- Store ---
	connectCtx, cancelConnect := context.WithTimeout(context.Background(), time.Minute)
	store, err := mongo.Connect(connectCtx, mongo.Options{
		URL:      cfg.MongoURL,
		Database: cfg.DBName,
		Timeout:  cfg.DBTimeout,
		Resilience: resilience.Config{
			MaxRetries:     cfg.MaxRetries,
			InitialBackoff: cfg.InitialBackoff,
			MaxConcurrency: cfg.MaxConcurrency,
		},
	}, metrics, logger)
	if err != nil {
		cancelConnect()
		logger.Fatal("failed to connect to mongodb", zap.Error(err))
	}
	if err := store.EnsureIndexes(connectCtx); err != nil {
		cancelConnect()
		logger.Fatal("failed to create indexes", zap.Error(err))
	}
	cancelConnect()

	// --- Cache ---
	userCache := cache.New[*domain.User](cfg.CacheTTL)
	defer userCache.Close()

	// --- Services ---
	authSvc := service.NewAuthService(store, service.NewCredentials(cfg.JWTSecret), userCache, metrics, logger)
	leadSvc := service.NewLeadService(store, metrics, logger)

	// --- Router ---
	router := handler.NewRouter(handler.Services{
		Auth:       authSvc,
		Leads:      leadSvc,
		Activities: service.NewActivityService(store, leadSvc, metrics, logger),
		Cards:      service.NewBusinessCardService(store, logger),
		Dashboard:  service.NewDashboardService(store, store, metrics),
		Store:      store,
	}, cfg.CORSAllowedOrigins, metrics, logger)

	// --- Server ---
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// --- Graceful shutdown ---
	go func() {
		logger.Info("server starting", zap.Int("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("server shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server forced shutdown", zap.Error(err))
	}
	if err := store.Disconnect(ctx); err != nil {
		logger.Error("mongodb disconnect failed", zap.Error(err))
	}

	logger.Info("server stopped")
}
