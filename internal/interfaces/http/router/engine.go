package router

import (
	"github.com/gin-gonic/gin"
	"github.com/portfolio/backend/internal/infrastructure/logger"
	"github.com/portfolio/backend/internal/infrastructure/ratelimit"
	"github.com/portfolio/backend/internal/interfaces/http/dto"
	"github.com/portfolio/backend/internal/interfaces/http/middleware"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

// EngineConfig describes the global middleware chain
type EngineConfig struct {
	Logger         *zap.Logger
	TrustedProxies []string
	CORS           middleware.CORSConfig
	Security       middleware.SecurityConfig
	MaxBodySize    int64
	GlobalLimiter  *ratelimit.Keyed // nil disables the global limit
	Tracing        middleware.TracingConfig
	Meter          metric.Meter // nil disables HTTP metrics
	Profiling      middleware.ProfilingConfig
}

// NewEngine builds a gin engine with the global middleware chain in this order:
// request ID, panic recovery, access log, tracing, HTTP metrics, profiling
// labels, security headers, CORS, body limit, global rate limit.
// Per-route auth is attached by RegisterRoutes.
func NewEngine(cfg EngineConfig) (*gin.Engine, error) {
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}

	middleware.SetupValidator()

	engine := gin.New()
	if len(cfg.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.TrustedProxies); err != nil {
			return nil, err
		}
	} else if err := engine.SetTrustedProxies(nil); err != nil {
		return nil, err
	}

	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log, dto.InternalServerError))
	engine.Use(logger.GinMiddleware(log))
	if cfg.Tracing.Enabled {
		engine.Use(middleware.Tracing(cfg.Tracing), middleware.SpanEnricher())
	}
	if cfg.Meter != nil {
		engine.Use(middleware.HTTPMetrics(cfg.Meter, log))
	}
	if cfg.Profiling.Enabled {
		engine.Use(middleware.Profiling(cfg.Profiling))
	}
	engine.Use(middleware.SecureWithConfig(cfg.Security))
	engine.Use(middleware.CORSWithConfig(cfg.CORS))
	if cfg.MaxBodySize > 0 {
		engine.Use(middleware.BodyLimit(cfg.MaxBodySize))
	}
	if cfg.GlobalLimiter != nil {
		engine.Use(middleware.RateLimit(cfg.GlobalLimiter))
	}

	engine.NoRoute(func(c *gin.Context) {
		dto.NotFound(c, "Route not found", dto.ErrorInfo{Code: dto.ErrCodeNotFound, RequestID: middleware.GetRequestID(c)})
	})
	return engine, nil
}
