package router

import (
	"time"

	"github.com/erp/sfa/internal/infrastructure/logger"
	"github.com/erp/sfa/internal/infrastructure/telemetry"
	"github.com/erp/sfa/internal/interfaces/http/handler"
	"github.com/erp/sfa/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/erp/sfa/docs"
)

// EngineConfig holds the settings of the HTTP engine
type EngineConfig struct {
	ServiceName      string
	Mode             string // gin mode: debug, release or test
	MaxBodySize      int64
	RequestTimeout   time.Duration
	TracingEnabled   bool
	ProfilingEnabled bool
	MeterProvider    *telemetry.MeterProvider
}

// NewEngine creates a gin engine with the standard middleware chain, the
// health endpoints and the swagger UI. API routes are added through a Router on the returned
// engine.
func NewEngine(cfg EngineConfig, system *handler.SystemHandler, log *zap.Logger) *gin.Engine {
	if cfg.Mode != "" {
		gin.SetMode(cfg.Mode)
	}

	engine := gin.New()
	engine.Use(
		middleware.RequestID(),
		middleware.Tracing(middleware.TracingConfig{
			ServiceName: cfg.ServiceName,
			Enabled:     cfg.TracingEnabled,
		}),
		middleware.SpanEnricher(),
		middleware.HTTPMetrics(cfg.MeterProvider, log),
		middleware.Profiling(cfg.ProfilingEnabled, "/health", "/ping"),
		logger.GinMiddleware(log),
		logger.Recovery(log),
		middleware.Secure(),
		middleware.BodyLimit(cfg.MaxBodySize),
		middleware.Timeout(cfg.RequestTimeout),
	)
	engine.NoRoute(middleware.NoRoute())

	engine.GET("/health", system.Health)
	engine.GET("/ping", system.Ping)
	engine.GET("/api/v1/system/info", system.GetSystemInfo)
	engine.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	return engine
}
