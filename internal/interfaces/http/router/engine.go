package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/heoquay/backend/internal/infrastructure/config"
	"github.com/heoquay/backend/internal/infrastructure/logger"
	"github.com/heoquay/backend/internal/infrastructure/telemetry"
	"github.com/heoquay/backend/internal/interfaces/http/dto"
	"github.com/heoquay/backend/internal/interfaces/http/middleware"
	"go.uber.org/zap"
)

// Engine is the configured gin engine and the resources it owns
type Engine struct {
	*gin.Engine
	limiters []*middleware.RateLimiter
}

// Close stops the rate limiter cleanup goroutines
func (e *Engine) Close() {
	for _, l := range e.limiters {
		l.Close()
	}
}

// NewEngine builds the engine. metrics may be nil, which disables both
// request metrics and the scrape endpoint.
func NewEngine(cfg *config.Config, log *zap.Logger, metrics *telemetry.Metrics, h Handlers) *Engine {
	middleware.SetupValidator()

	e := &Engine{Engine: gin.New()}
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := e.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	// RequestID must run first: recovery, logging and tracing all read it
	e.Use(middleware.RequestID())
	e.Use(logger.Recovery(log))
	e.Use(logger.GinMiddleware(log))
	e.Use(middleware.TracingWithConfig(middleware.TracingConfig{
		ServiceName: cfg.Telemetry.ServiceName,
		Enabled:     cfg.Telemetry.Enabled,
	}))
	e.Use(middleware.SpanErrorMarker())
	if metrics != nil && cfg.Metrics.Enabled {
		e.Use(middleware.HTTPMetrics(metrics, cfg.Metrics.Path, "/health"))
	}
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     cfg.HTTP.CORSAllowOrigins,
		AllowMethods:     cfg.HTTP.CORSAllowMethods,
		AllowHeaders:     cfg.HTTP.CORSAllowHeaders,
		ExposeHeaders:    []string{middleware.RequestIDHeader, "X-RateLimit-Limit", "X-RateLimit-Remaining"},
		AllowCredentials: true,
		MaxAge:           middleware.DefaultCORSConfig().MaxAge,
	}))
	e.Use(middleware.Secure())
	e.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))
	e.Use(middleware.Timeout(cfg.HTTP.RequestTimeout))

	var loginGuard []gin.HandlerFunc
	if cfg.HTTP.RateLimitEnabled {
		general := middleware.NewRateLimiter(cfg.HTTP.RateLimitRequests, cfg.HTTP.RateLimitWindow)
		login := middleware.NewRateLimiter(cfg.HTTP.LoginRateLimit, cfg.HTTP.RateLimitWindow)
		e.limiters = append(e.limiters, general, login)
		e.Use(middleware.RateLimit(general))
		loginGuard = append(loginGuard, middleware.LoginRateLimit(login))
		log.Info("Rate limiting enabled",
			zap.Int("requests", cfg.HTTP.RateLimitRequests),
			zap.Int("login_requests", cfg.HTTP.LoginRateLimit),
			zap.Duration("window", cfg.HTTP.RateLimitWindow),
		)
	}

	e.GET("/health", h.System.Health)
	e.GET("/ping", h.System.Ping)
	if metrics != nil && cfg.Metrics.Enabled {
		e.GET(cfg.Metrics.Path, gin.WrapH(metrics.Handler()))
	}

	r := NewRouter(e.Engine)
	r.Use(middleware.Credentials(cfg.Upstream.RoleHeader), middleware.SpanAttributes())
	for _, g := range DomainGroups(h, loginGuard...) {
		r.Register(g)
	}
	r.Setup()

	e.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, dto.NewErrorResponseWithRequestID(dto.MsgRouteNotFound, middleware.GetRequestID(c)))
	})
	return e
}
