package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	invoiceapp "github.com/invoicer/backend/internal/application/invoice"
	reportapp "github.com/invoicer/backend/internal/application/report"
	"github.com/invoicer/backend/internal/domain/invoice"
	"github.com/invoicer/backend/internal/infrastructure/auth"
	"github.com/invoicer/backend/internal/infrastructure/cache"
	"github.com/invoicer/backend/internal/infrastructure/config"
	"github.com/invoicer/backend/internal/infrastructure/logger"
	"github.com/invoicer/backend/internal/infrastructure/persistence"
	"github.com/invoicer/backend/internal/infrastructure/printing"
	"github.com/invoicer/backend/internal/infrastructure/storage"
	"github.com/invoicer/backend/internal/infrastructure/telemetry"
	"github.com/invoicer/backend/internal/interfaces/http/handler"
	"github.com/invoicer/backend/internal/interfaces/http/middleware"
	"github.com/invoicer/backend/internal/interfaces/http/router"
	"go.uber.org/zap"

	_ "github.com/invoicer/backend/docs"
)

// version is set at build time with -ldflags "-X main.version=..."
var version = "dev"

//	@title			Invoicer API
//	@version		1.0
//	@description	Invoice management backend: invoices with GST totals, numbering, search, PDF export and revenue reports.

//	@contact.name	API Support
//	@contact.url	https://github.com/invoicer/backend

//	@license.name	Apache 2.0
//	@license.url	http://www.apache.org/licenses/LICENSE-2.0.html

//	@host		localhost:8080
//	@BasePath	/api/v1

//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Bearer token from /auth/sign-in. Format: "Bearer {token}"

func main() {
	// Missing store settings end the process here
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	logCfg := logger.ForEnvironment(cfg.App.Env, cfg.Log.Level)
	if cfg.Log.Format != "" {
		logCfg.Format = cfg.Log.Format
	}
	if cfg.Log.Output != "" {
		logCfg.Output = cfg.Log.Output
	}
	logCfg.Service = cfg.App.Name
	log, err := logger.New(logCfg)
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = log.Sync()
	}()
	zap.ReplaceGlobals(log)

	log.Info("Starting invoicer backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
		zap.String("version", version),
	)

	ctx := context.Background()
	location := cfg.App.Location()

	// Telemetry (no-op providers when disabled)
	tracerProvider, err := telemetry.NewTracerProvider(ctx, cfg.Telemetry, log)
	if err != nil {
		log.Fatal("Failed to initialize tracing", zap.Error(err))
	}
	defer shutdown(log, "tracer provider", tracerProvider.Shutdown)

	meterProvider, err := telemetry.NewMeterProvider(ctx, cfg.Telemetry, log)
	if err != nil {
		log.Fatal("Failed to initialize metrics", zap.Error(err))
	}
	defer shutdown(log, "meter provider", meterProvider.Shutdown)

	// Database
	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level), 200*time.Millisecond)
	db, err := persistence.NewDatabase(ctx, &cfg.Database, gormLog, log)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected successfully")

	dbTracing := telemetry.DefaultDBTracingConfig()
	dbTracing.Enabled = cfg.Telemetry.Enabled && cfg.Telemetry.DBTraceEnabled
	dbTracing.LogFullSQL = cfg.Telemetry.DBLogFullSQL
	if err := telemetry.RegisterDBTracing(db.DB, dbTracing, log); err != nil {
		log.Warn("Failed to register database tracing", zap.Error(err))
	}

	// Payment info cache; the redis client is shared with the token blacklist
	paymentCache, redisClient := cache.NewPaymentInfoCacheFactory(cfg.Redis, cache.WithLogger(log)).CreateCache(ctx)
	if redisClient != nil {
		defer func() {
			if err := redisClient.Close(); err != nil {
				log.Error("Error closing redis", zap.Error(err))
			}
		}()
	}

	if tiered, ok := paymentCache.(*cache.TieredPaymentInfoCache); ok {
		subCtx, stopSubscription := context.WithCancel(ctx)
		defer stopSubscription()
		go func() {
			if err := tiered.StartInvalidationSubscription(subCtx); err != nil && !errors.Is(err, context.Canceled) {
				log.Warn("Payment info invalidation subscription ended", zap.Error(err))
			}
		}()
	}

	// Repositories
	invoiceRepo := persistence.NewGormInvoiceRepository(db.DB)
	paymentInfoRepo := persistence.NewGormPaymentInfoRepository(db.DB)
	revenueRepo := persistence.NewGormRevenueReportRepository(db.DB)

	// PDF rendering
	renderer, err := printing.NewRenderer(cfg.PDF, log)
	if err != nil {
		log.Fatal("Failed to initialize PDF renderer", zap.Error(err))
	}
	defer func() {
		if err := renderer.Close(); err != nil {
			log.Error("Error closing PDF renderer", zap.Error(err))
		}
	}()

	invoiceMetrics, err := telemetry.NewInvoiceMetrics(meterProvider.Meter("invoicer/invoice"))
	if err != nil {
		log.Fatal("Failed to create invoice metrics", zap.Error(err))
	}

	// Application services
	numberer := invoiceapp.NewNumberer(invoiceRepo,
		invoiceapp.WithNumbererLocation(location),
		invoiceapp.WithNumbererLogger(log),
	)
	paymentInfoService := invoiceapp.NewPaymentInfoService(paymentInfoRepo, paymentCache, invoice.PaymentInfo{
		AccountName:   cfg.Payment.AccountName,
		AccountNumber: cfg.Payment.AccountNumber,
		IFSC:          cfg.Payment.IFSC,
	}, log)

	serviceOpts := []invoiceapp.Option{
		invoiceapp.WithLogger(log),
		invoiceapp.WithLocation(location),
		invoiceapp.WithMetrics(invoiceMetrics),
		invoiceapp.WithIssuer(printing.Issuer{
			Company: cfg.Issuer.Company,
			Address: cfg.Issuer.Address,
			Phone:   cfg.Issuer.Phone,
			Email:   cfg.Issuer.Email,
			Website: cfg.Issuer.Website,
			GSTIN:   cfg.Issuer.GSTIN,
		}, cfg.Issuer.Footer),
	}
	if cfg.Storage.Enabled {
		archive, err := storage.NewS3ObjectStorage(&cfg.Storage,
			storage.WithLogger(log),
			storage.WithPresignExpiration(cfg.Storage.PresignExpiration),
		)
		if err != nil {
			log.Fatal("Failed to initialize PDF archive storage", zap.Error(err))
		}
		if err := archive.EnsureBucket(ctx); err != nil {
			log.Warn("PDF archive bucket check failed", zap.Error(err))
		}
		serviceOpts = append(serviceOpts, invoiceapp.WithArchive(archive, cfg.Storage.PresignExpiration))
		log.Info("PDF archive enabled", zap.String("bucket", archive.GetBucket()))
	}
	invoiceService := invoiceapp.NewService(invoiceRepo, numberer, paymentInfoService, renderer, serviceOpts...)
	reportService := reportapp.NewReportService(revenueRepo,
		reportapp.WithLocation(location),
		reportapp.WithLogger(log),
	)

	// Hosted auth
	var blacklist auth.TokenBlacklist = auth.NewInMemoryTokenBlacklist()
	if redisClient != nil {
		blacklist = auth.NewRedisTokenBlacklist(redisClient)
	}
	authenticator, err := auth.NewAuthenticator(cfg.Supabase,
		auth.WithBlacklist(blacklist),
		auth.WithAuthLogger(log),
	)
	if err != nil {
		log.Fatal("Failed to initialize authentication", zap.Error(err))
	}

	// HTTP
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	middleware.SetupValidator()

	meter := meterProvider.Meter("invoicer/http")
	if !meterProvider.IsEnabled() {
		meter = nil
	}
	engine := router.NewEngine(router.EngineConfig{
		Config:   cfg,
		Logger:   log,
		Verifier: authenticator,
		Meter:    meter,
	}, router.Handlers{
		Invoice:     handler.NewInvoiceHandler(invoiceService),
		PaymentInfo: handler.NewPaymentInfoHandler(paymentInfoService),
		Report:      handler.NewReportHandler(reportService),
		Auth:        handler.NewAuthHandler(authenticator),
		System:      handler.NewSystemHandler(cfg.App.Name, version, db),
	})

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
		return
	}

	log.Info("Server exited gracefully")
}

// shutdown flushes a telemetry provider with a bounded wait
func shutdown(log *zap.Logger, name string, fn func(context.Context) error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := fn(ctx); err != nil {
		log.Error("Error shutting down "+name, zap.Error(err))
	}
}
