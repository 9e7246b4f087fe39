package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	adminapp "github.com/relove/backend/internal/application/admin"
	escrowapp "github.com/relove/backend/internal/application/escrow"
	orderapp "github.com/relove/backend/internal/application/order"
	paymentapp "github.com/relove/backend/internal/application/payment"
	"github.com/relove/backend/internal/application/reconciliation"
	"github.com/relove/backend/internal/domain/shared"
	"github.com/relove/backend/internal/infrastructure/auth"
	"github.com/relove/backend/internal/infrastructure/cache"
	"github.com/relove/backend/internal/infrastructure/config"
	"github.com/relove/backend/internal/infrastructure/event"
	"github.com/relove/backend/internal/infrastructure/logger"
	"github.com/relove/backend/internal/infrastructure/marketplace"
	"github.com/relove/backend/internal/infrastructure/payment"
	"github.com/relove/backend/internal/infrastructure/persistence"
	"github.com/relove/backend/internal/infrastructure/scheduler"
	"github.com/relove/backend/internal/interfaces/http/handler"
	"github.com/relove/backend/internal/interfaces/http/middleware"
	"github.com/relove/backend/internal/interfaces/http/router"
)

//	@title			Relove Escrow API
//	@version		1.0
//	@description	Escrow-backed order lifecycle engine for the Relove marketplace

//	@host		localhost:8080
//	@BasePath	/api/v1

//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Bearer token authentication. Format: "Bearer {token}"

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	log := logger.New(cfg.Log)
	defer func() {
		_ = log.Sync()
	}()

	log.Info("Starting Relove escrow engine",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	// Create GORM logger backed by zap
	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level))

	// Initialize database connection
	db, err := persistence.NewDatabaseWithLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected successfully")

	// Initialize repositories
	orderRepo := persistence.NewGormOrderRepository(db.DB)
	historyRepo := persistence.NewGormStatusHistoryRepository(db.DB)
	releaseLogRepo := persistence.NewGormEscrowReleaseRepository(db.DB)

	// Idempotency store: Redis-backed with in-memory fallback for
	// development environments without a Redis instance
	idempotencyStore, err := cache.NewIdempotencyStoreFactory(cfg.Redis,
		cache.WithLogger(log),
		cache.WithInMemoryFallback(cfg.App.Env != "production"),
	).CreateStore()
	if err != nil {
		log.Fatal("Failed to create idempotency store", zap.Error(err))
	}
	defer func() {
		if err := idempotencyStore.Close(); err != nil {
			log.Error("Error closing idempotency store", zap.Error(err))
		}
	}()

	// Marketplace client backing the listing and seller ports
	marketplaceClient, err := marketplace.NewClient(cfg.Marketplace, log)
	if err != nil {
		log.Fatal("Failed to create marketplace client", zap.Error(err))
	}

	// Payment gateway
	gateway, err := payment.NewStripeAdapter(cfg.Payment, log)
	if err != nil {
		log.Fatal("Failed to create payment gateway", zap.Error(err))
	}

	// JWT authentication
	jwtService := auth.NewJWTService(cfg.JWT)

	// Initialize application services
	orderService := orderapp.NewService(
		orderRepo, marketplaceClient, marketplaceClient, gateway,
		cfg.Escrow.DisputeWindow, log)
	confirmationService := paymentapp.NewConfirmationService(
		orderRepo, gateway, idempotencyStore,
		shared.IdempotencyConfig{TTL: 24 * time.Hour, Enabled: true}, log)
	releaseService := escrowapp.NewReleaseService(
		orderRepo, marketplaceClient, gateway, cfg.Escrow.BatchSize, log)
	sweeperService := reconciliation.NewSweeperService(
		orderRepo, marketplaceClient, gateway, idempotencyStore,
		cfg.Sweeper.PendingExpiry, cfg.Sweeper.BatchSize, log)
	adminService := adminapp.NewService(
		orderRepo, historyRepo, releaseLogRepo, gateway, releaseService, sweeperService, log)

	// Event bus with audit logging of lifecycle events
	eventBus := event.NewInMemoryEventBus(log)
	event.RegisterAuditLogger(eventBus, log)
	orderService.SetEventPublisher(eventBus)
	confirmationService.SetEventPublisher(eventBus)
	releaseService.SetEventPublisher(eventBus)
	adminService.SetEventPublisher(eventBus)

	// Background lifecycle loops: unpaid-order sweeper and escrow release scan
	lifecycleScheduler := scheduler.NewLifecycleScheduler(sweeperService, releaseService, scheduler.Config{
		SweepEnabled:    cfg.Sweeper.Enabled,
		SweepInterval:   cfg.Sweeper.Interval,
		ReleaseInterval: cfg.Escrow.ReleaseCheckInterval,
		RunTimeout:      10 * time.Minute,
	}, log)
	if err := lifecycleScheduler.Start(context.Background()); err != nil {
		log.Fatal("Failed to start lifecycle scheduler", zap.Error(err))
	}
	defer func() {
		stopCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := lifecycleScheduler.Stop(stopCtx); err != nil {
			log.Error("Error stopping lifecycle scheduler", zap.Error(err))
		}
	}()

	// Initialize HTTP handlers
	orderHandler := handler.NewOrderHandler(orderService)
	fulfillmentHandler := handler.NewFulfillmentHandler(orderService)
	paymentHandler := handler.NewPaymentHandler(confirmationService)
	webhookHandler := handler.NewWebhookHandler(confirmationService, log)
	adminHandler := handler.NewAdminHandler(adminService)

	// Set Gin mode based on environment
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Register custom binding validations
	middleware.SetupValidator()

	engine := gin.New()

	// Configure trusted proxies
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))

	corsConfig := middleware.DefaultCORSConfig()
	corsConfig.AllowOrigins = cfg.HTTP.CORSAllowOrigins
	engine.Use(middleware.CORS(corsConfig))

	// Webhooks stay public: the gateway authenticates itself through the
	// signature header, not a bearer token
	r := router.NewRouter(engine,
		router.WithAPIVersion("v1"),
		router.WithAuthMiddleware(middleware.Authentication(jwtService)),
	)
	r.RegisterPublic(webhookHandler)
	r.Register(orderHandler).
		Register(fulfillmentHandler).
		Register(paymentHandler).
		Register(adminHandler)
	r.Setup()

	// Create HTTP server with config
	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	// Start server in goroutine
	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}
