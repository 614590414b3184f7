package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	sfaapp "github.com/erp/sfa/internal/application/sfa"
	"github.com/erp/sfa/internal/domain/shared"
	"github.com/erp/sfa/internal/infrastructure/cache"
	"github.com/erp/sfa/internal/infrastructure/config"
	"github.com/erp/sfa/internal/infrastructure/export"
	"github.com/erp/sfa/internal/infrastructure/logger"
	"github.com/erp/sfa/internal/infrastructure/persistence"
	"github.com/erp/sfa/internal/infrastructure/telemetry"
	"github.com/erp/sfa/internal/interfaces/http/handler"
	"github.com/erp/sfa/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const version = "1.0.0"

//	@title			SFA Revenue API
//	@version		1.0
//	@description	Revenue records, payment entries and team allocations

//	@contact.name	API Support

//	@license.name	Apache 2.0
//	@license.url	http://www.apache.org/licenses/LICENSE-2.0.html

//	@BasePath	/api/v1

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	log, err := logger.New(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = log.Sync()
	}()

	ctx := context.Background()

	// Telemetry
	tp, err := telemetry.NewTracerProvider(ctx, telemetry.Config{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize tracer provider", zap.Error(err))
	}
	if cfg.Telemetry.ProfilingEnabled {
		tp.EnableSpanProfiles()
	}

	mp, err := telemetry.NewMeterProvider(ctx, telemetry.MetricsConfig{
		Enabled:           cfg.Telemetry.MetricsEnabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		ExportInterval:    cfg.Telemetry.MetricsInterval,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize meter provider", zap.Error(err))
	}

	lp, err := telemetry.NewLoggerProvider(ctx, telemetry.LogsConfig{
		Enabled:           cfg.Telemetry.LogsEnabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize logger provider", zap.Error(err))
	}
	log = lp.Bridge(log, logger.ParseLevel(cfg.Log.Level))

	profiler, err := telemetry.NewProfiler(telemetry.ProfilerConfig{
		Enabled:         cfg.Telemetry.ProfilingEnabled,
		ServerAddress:   cfg.Telemetry.ProfilingAddress,
		ApplicationName: cfg.Telemetry.ServiceName,
	}, log)
	if err != nil {
		log.Fatal("Failed to start profiler", zap.Error(err))
	}

	log.Info("Starting SFA server",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	// Database
	db, err := persistence.NewDatabase(&cfg.Database, log)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	if err := telemetry.RegisterDBTracing(db.DB, telemetry.DBTracingConfig{
		Enabled:  cfg.Telemetry.DBTraceEnabled,
		DBSystem: db.DBSystem(),
	}, log); err != nil {
		log.Fatal("Failed to register database tracing", zap.Error(err))
	}
	if cfg.Database.Driver == "sqlite" {
		if err := db.AutoMigrate(); err != nil {
			log.Fatal("Failed to migrate sqlite database", zap.Error(err))
		}
	}
	log.Info("Database connected successfully", zap.String("driver", cfg.Database.Driver))

	// Service
	revenueService := sfaapp.NewRevenueService(
		persistence.NewGormRevenueRepository(db.DB),
		persistence.NewGormPaymentRepository(db.DB),
		persistence.NewGormCodeRepository(db.DB),
		persistence.NewGormTeamRepository(db.DB),
		persistence.NewGormCustomerRepository(db.DB),
		log,
	)
	lockerFactory := cache.NewLockerFactory(cfg.Redis,
		cache.WithLogger(log),
		cache.WithInMemoryFallback(cfg.App.Env != "production"),
	)
	locker, err := lockerFactory.CreateLocker(cfg.Submission.LockBackend)
	if err != nil {
		log.Fatal("Failed to create payment locker", zap.Error(err))
	}
	revenueService.SetLocker(locker, shared.LockConfig{
		TTL:     cfg.Submission.LockTTL,
		Enabled: cfg.Submission.LockEnabled,
	})
	revenueService.SetExporter(export.NewXLSXExporter())

	// HTTP
	mode := gin.DebugMode
	if cfg.App.Env == "production" {
		mode = gin.ReleaseMode
	}
	engine := router.NewEngine(router.EngineConfig{
		ServiceName:      cfg.Telemetry.ServiceName,
		Mode:             mode,
		MaxBodySize:      cfg.HTTP.MaxBodySize,
		RequestTimeout:   cfg.HTTP.RequestTimeout,
		TracingEnabled:   cfg.Telemetry.Enabled,
		ProfilingEnabled: cfg.Telemetry.ProfilingEnabled,
		MeterProvider:    mp,
	}, handler.NewSystemHandler(cfg.App.Name, version, db), log)
	r := router.RegisterSFARoutes(router.NewRouter(engine), handler.NewSFAHandler(revenueService))
	r.Setup()
	for _, route := range r.Routes() {
		log.Debug("Route registered", zap.String("method", route.Method), zap.String("path", route.Path))
	}

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    2 * cfg.HTTP.WriteTimeout,
		MaxHeaderBytes: 1 << 20,
	}

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

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}
	if err := profiler.Stop(); err != nil {
		log.Warn("Profiler stop failed", zap.Error(err))
	}
	if err := mp.Shutdown(shutdownCtx); err != nil {
		log.Warn("Meter provider shutdown failed", zap.Error(err))
	}
	if err := tp.Shutdown(shutdownCtx); err != nil {
		log.Warn("Tracer provider shutdown failed", zap.Error(err))
	}
	if err := lp.Shutdown(shutdownCtx); err != nil {
		log.Warn("Logger provider shutdown failed", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}
