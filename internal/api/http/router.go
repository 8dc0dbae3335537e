package http

import (
	"github.com/GriffinCanCode/AgentOS/media/internal/api/middleware"
	"github.com/GriffinCanCode/AgentOS/media/internal/infrastructure/monitoring"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// RouterConfig configures the debug router
type RouterConfig struct {
	CORS middleware.CORSConfig
	// RateLimit applies per client IP, GlobalLimit to the whole surface.
	RateLimit   middleware.RateLimitConfig
	GlobalLimit middleware.RateLimitConfig
	// Gatherer backs /metrics; nil means the default registry.
	Gatherer prometheus.Gatherer
}

// NewRouter builds the gin engine serving h
func NewRouter(h *Handlers, cfg RouterConfig, metrics *monitoring.Metrics, logger *zap.Logger) *gin.Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	gatherer := cfg.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.Logger(logger))
	if metrics != nil {
		router.Use(monitoring.Middleware(metrics))
	}
	router.Use(middleware.CORS(cfg.CORS))
	router.Use(middleware.GlobalRateLimit(cfg.GlobalLimit))
	router.Use(middleware.RateLimit(cfg.RateLimit))

	router.GET("/", h.Root)
	router.GET("/healthz", h.Health)
	router.GET("/sessions", h.ListSessions)
	router.GET("/sessions/:id", h.GetSession)
	router.GET("/discovery", h.Breakers)
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))
	router.GET("/metrics/summary", h.MetricsSummary)

	return router
}
