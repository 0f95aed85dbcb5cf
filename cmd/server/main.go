package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	billingapp "github.com/erp/ledger/internal/application/billing"
	ledgerapp "github.com/erp/ledger/internal/application/ledger"
	"github.com/erp/ledger/internal/infrastructure/config"
	"github.com/erp/ledger/internal/infrastructure/logger"
	"github.com/erp/ledger/internal/infrastructure/persistence"
	"github.com/erp/ledger/internal/infrastructure/telemetry"
	"github.com/erp/ledger/internal/interfaces/http/handler"
	"github.com/erp/ledger/internal/interfaces/http/middleware"
	"github.com/erp/ledger/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

//	@title			Ledger Engine API
//	@version		1.0
//	@description	Double-entry ledger posting, balance maintenance and payment reconciliation service

//	@host		localhost:8080
//	@BasePath	/api/v1

// version is set at build time via -ldflags "-X main.version=..."
var version = "dev"

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	log, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	log.Info("Starting ledger engine",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
		zap.String("version", version),
	)

	// Initialize tracing
	tracerProvider, err := telemetry.NewTracerProvider(context.Background(), telemetry.Config{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize tracer provider", zap.Error(err))
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tracerProvider.Shutdown(shutdownCtx); err != nil {
			log.Error("Error shutting down tracer provider", zap.Error(err))
		}
	}()

	// Create GORM logger backed by zap
	gormLogLevel := logger.MapGormLogLevel(cfg.Log.Level)
	gormLog := logger.NewGormLogger(log, gormLogLevel)

	// Initialize database connection with custom logger
	db, err := persistence.NewDatabaseWithCustomLogger(&cfg.Database, gormLog)
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
	accountRepo := persistence.NewGormAccountRepository(db.DB)
	lineRepo := persistence.NewGormLedgerLineRepository(db.DB)
	entryRepo := persistence.NewGormJournalEntryRepository(db.DB)
	sequenceRepo := persistence.NewGormSequenceRepository(db.DB)
	invoiceRepo := persistence.NewGormInvoiceRepository(db.DB)
	incomingInvoiceRepo := persistence.NewGormIncomingInvoiceRepository(db.DB)
	movementRepo := persistence.NewGormMoneyMovementRepository(db.DB)
	txManager := persistence.NewGormTxManager(db.DB)

	// Initialize application services
	accountService := ledgerapp.NewAccountService(accountRepo, log)
	lineService := ledgerapp.NewLineService(txManager, lineRepo, accountRepo, log)
	postingService := ledgerapp.NewPostingService(txManager, entryRepo, lineRepo, sequenceRepo, log)
	letteringService := ledgerapp.NewLetteringService(txManager, lineRepo, accountRepo, movementRepo, sequenceRepo, log)
	orphanService := ledgerapp.NewOrphanService(txManager, lineRepo, accountRepo, postingService, log)
	balanceService := billingapp.NewBalanceService(invoiceRepo, incomingInvoiceRepo, movementRepo, log)
	documentService := billingapp.NewDocumentService(txManager, invoiceRepo, incomingInvoiceRepo, lineRepo, entryRepo, log)
	settlementService := billingapp.NewSettlementService(
		txManager,
		invoiceRepo,
		incomingInvoiceRepo,
		movementRepo,
		accountRepo,
		sequenceRepo,
		postingService,
		balanceService,
		letteringService,
		log,
	)
	treasuryService := billingapp.NewTreasuryService(txManager, movementRepo, accountRepo, sequenceRepo, postingService, log)

	// Initialize HTTP handlers
	accountHandler := handler.NewAccountHandler(accountService)
	lineHandler := handler.NewLineHandler(lineService)
	journalHandler := handler.NewJournalHandler(postingService, entryRepo, lineRepo)
	orphanHandler := handler.NewOrphanHandler(orphanService)
	invoiceHandler := handler.NewInvoiceHandler(documentService, settlementService, balanceService)
	incomingInvoiceHandler := handler.NewIncomingInvoiceHandler(documentService, settlementService, balanceService)
	treasuryHandler := handler.NewTreasuryHandler(treasuryService, letteringService)
	systemHandler := handler.NewSystemHandler(db, version)

	// Set Gin mode based on environment
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Register custom validation rules before serving requests
	middleware.SetupValidator()

	engine := gin.New()

	// Configure trusted proxies
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	// Apply middleware stack in order:
	// 1. RequestID - Generate/propagate request ID
	// 2. Recovery - Catch panics
	// 3. Logger - Log requests
	// 4. Tracing - Propagate OpenTelemetry spans
	// 5. Security - Add security headers
	// 6. CORS - Handle cross-origin requests
	// 7. BodyLimit - Limit request body size
	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))
	engine.Use(middleware.TracingWithConfig(middleware.TracingConfig{
		ServiceName: cfg.Telemetry.ServiceName,
		Enabled:     cfg.Telemetry.Enabled,
	}))
	engine.Use(middleware.Secure())

	corsConfig := middleware.CORSConfig{
		AllowOrigins:     cfg.HTTP.CORSAllowOrigins,
		AllowMethods:     cfg.HTTP.CORSAllowMethods,
		AllowHeaders:     cfg.HTTP.CORSAllowHeaders,
		ExposeHeaders:    []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	engine.Use(middleware.CORSWithConfig(corsConfig))

	engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))

	// Health and readiness probes live outside API versioning
	systemHandler.RegisterRoutes(&engine.RouterGroup)

	// Setup API routes
	r := router.NewRouter(engine, router.WithAPIVersion("v1"))
	r.Register(accountHandler).
		Register(lineHandler).
		Register(journalHandler).
		Register(orphanHandler).
		Register(invoiceHandler).
		Register(incomingInvoiceHandler).
		Register(treasuryHandler)
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
