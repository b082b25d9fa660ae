package router

import (
	"github.com/gin-gonic/gin"
	"github.com/invoicer/backend/internal/infrastructure/config"
	"github.com/invoicer/backend/internal/infrastructure/logger"
	"github.com/invoicer/backend/internal/interfaces/http/handler"
	"github.com/invoicer/backend/internal/interfaces/http/middleware"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

// EngineConfig carries what the HTTP engine needs besides the route handlers
type EngineConfig struct {
	Config   *config.Config
	Logger   *zap.Logger
	Verifier middleware.SessionVerifier
	// Meter records HTTP metrics; nil disables them
	Meter metric.Meter
}

// Handlers are the route handlers served under the API base path
type Handlers struct {
	Invoice     *handler.InvoiceHandler
	PaymentInfo *handler.PaymentInfoHandler
	Report      *handler.ReportHandler
	Auth        *handler.AuthHandler
	System      *handler.SystemHandler
}

// NewEngine builds the gin engine with the middleware stack, the operational
// endpoints and every API route.
//
// Middleware order:
//  1. Recovery - catch panics
//  2. RequestID - generate or propagate X-Request-ID
//  3. Logger - request logging with request_id
//  4. Secure, CORS, BodyLimit
//  5. Tracing and HTTP metrics (when enabled)
//  6. SessionAuth - resolve the bearer token (API routes only)
func NewEngine(cfg EngineConfig, h Handlers) *gin.Engine {
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}
	appCfg := cfg.Config

	engine := gin.New()
	if len(appCfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(appCfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	engine.Use(logger.Recovery(log))
	engine.Use(middleware.RequestID())
	engine.Use(logger.GinMiddleware(log))
	engine.Use(middleware.Secure())
	engine.Use(middleware.CORSWithConfig(middleware.CORSConfigFromHTTP(appCfg.HTTP)))
	engine.Use(middleware.BodyLimit(appCfg.HTTP.MaxBodySize))

	if appCfg.Telemetry.Enabled {
		tracing := middleware.DefaultTracingConfig()
		if appCfg.Telemetry.ServiceName != "" {
			tracing.ServiceName = appCfg.Telemetry.ServiceName
		}
		engine.Use(middleware.TracingWithConfig(tracing))
		engine.Use(middleware.SpanErrorMarker())
	}
	engine.Use(middleware.HTTPMetrics(cfg.Meter))

	if h.System != nil {
		engine.GET("/health", h.System.Health)
	}
	engine.GET("/swagger/*any",
		middleware.SwaggerProtection(appCfg.Swagger),
		ginSwagger.WrapHandler(swaggerFiles.Handler))

	r := NewRouter(engine, WithAPIVersion("v1"))
	r.Use(middleware.SessionAuth(cfg.Verifier, log))
	if appCfg.Telemetry.Enabled {
		r.Use(middleware.TracingAttributeInjector())
	}

	for _, group := range apiGroups(h) {
		r.Register(group)
		log.Debug("Routes registered",
			zap.String("group", group.Name()),
			zap.Strings("routes", group.Routes()),
		)
	}
	r.Setup()

	return engine
}

func apiGroups(h Handlers) []*DomainGroup {
	var groups []*DomainGroup
	if h.Invoice != nil {
		groups = append(groups, InvoiceRoutes(h.Invoice))
	}
	if h.PaymentInfo != nil {
		groups = append(groups, PaymentInfoRoutes(h.PaymentInfo))
	}
	if h.Report != nil {
		groups = append(groups, ReportRoutes(h.Report))
	}
	if h.Auth != nil {
		groups = append(groups, AuthRoutes(h.Auth))
	}
	if h.System != nil {
		groups = append(groups, SystemRoutes(h.System))
	}
	return groups
}
