package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"payment-webhook-engine/config"
	httpHandler "payment-webhook-engine/internal/adapter/http/handler"
	pgStorage "payment-webhook-engine/internal/adapter/storage/postgres"
	redisStorage "payment-webhook-engine/internal/adapter/storage/redis"
	"payment-webhook-engine/internal/core/ports"
	"payment-webhook-engine/internal/service"
	"payment-webhook-engine/pkg/logger"
)

func main() {
	// Load configuration
	cfg, err := config.Load("")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log := logger.New(cfg.Log.Level, cfg.Log.Pretty)

	log.Info().
		Str("mode", cfg.Server.Mode).
		Int("port", cfg.Server.Port).
		Msg("Starting Payment Webhook Engine")

	ctx := context.Background()

	// Initialize PostgreSQL pool
	pool, err := pgStorage.NewPool(ctx, cfg.Database, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()
	log.Info().Msg("PostgreSQL connected")

	// Initialize Redis client
	rdb, err := redisStorage.NewClient(ctx, cfg.Redis, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer rdb.Close()
	log.Info().Msg("Redis connected")

	// Initialize repositories
	orgRepo := pgStorage.NewOrganizationRepo(pool)
	cfgRepo := pgStorage.NewGatewayConfigRepo(pool)
	txRepo := pgStorage.NewTransactionRepo(pool)
	orderRepo := pgStorage.NewOrderRepo(pool)
	notificationLogRepo := pgStorage.NewNotificationLogRepo(pool)
	transactor := pgStorage.NewTransactor(pool)

	// Initialize Redis stores
	eventCache := redisStorage.NewEventCache(rdb)
	rateLimitStore := redisStorage.NewRateLimitStore(rdb)

	// Initialize core services
	cipher, err := service.NewAESSecretCipher(cfg.AES.Key)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize secret cipher")
	}
	tokenSvc := service.NewJWTTokenService(cfg.JWT.Secret, cfg.JWT.Expiry, cfg.JWT.Issuer)
	adapters := service.NewAdapterRegistry(cipher)

	// Initialize business services
	reconciler := service.NewOrderReconciler(orderRepo, log)
	notifier := service.NewSaleNotifier(
		orgRepo,
		notificationLogRepo,
		cipher,
		&http.Client{Timeout: cfg.Notification.Timeout},
		cfg.Notification.Timeout,
		log,
	)
	processor := service.NewWebhookProcessor(
		orgRepo,
		cfgRepo,
		txRepo,
		orderRepo,
		reconciler,
		notifier,
		adapters,
		eventCache,
		transactor,
		log,
	)
	reportingSvc := service.NewReportingService(txRepo, notificationLogRepo)

	// Initialize health checkers
	pgHealth := pgStorage.NewHealthCheck(pool)
	redisHealth := redisStorage.NewHealthCheck(rdb)

	// Setup Gin router with all routes
	router := httpHandler.SetupRouter(httpHandler.RouterDeps{
		Processor:      processor,
		ReportingSvc:   reportingSvc,
		TokenSvc:       tokenSvc,
		RateLimitStore: rateLimitStore,
		HealthCheckers: []ports.HealthChecker{pgHealth, redisHealth},
		Logger:         log,
	})

	// HTTP Server with graceful shutdown
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	// Start server in goroutine
	go func() {
		log.Info().Str("addr", addr).Msg("HTTP server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("HTTP server failed")
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited")
}
