package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/nastassia-sauchanka/faceted-product-search/internal/urlstate"
	"github.com/nastassia-sauchanka/faceted-product-search/pkg/health"
	"github.com/nastassia-sauchanka/faceted-product-search/pkg/middleware"
)

// ServiceName labels metrics and spans emitted by the router.
const ServiceName = "storefront"

// RouterConfig tunes the router's middleware.
type RouterConfig struct {
	RequestTimeout time.Duration
	RateLimitRPS   float64
	RateLimitBurst int
	TrustProxy     bool

	// Registerer and Gatherer default to the prometheus default registry.
	Registerer prometheus.Registerer
	Gatherer   prometheus.Gatherer
}

// NewRouter creates a chi router with all storefront routes registered.
func NewRouter(
	searchHandler *SearchHandler,
	healthHandler *health.Handler,
	cfg RouterConfig,
	logger *slog.Logger,
) http.Handler {
	if cfg.Registerer == nil {
		cfg.Registerer = prometheus.DefaultRegisterer
	}
	if cfg.Gatherer == nil {
		cfg.Gatherer = prometheus.DefaultGatherer
	}
	metrics := middleware.NewHTTPMetrics(cfg.Registerer, ServiceName)

	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.Recovery(logger))
	r.Use(chimw.Compress(5))
	if cfg.RequestTimeout > 0 {
		r.Use(chimw.Timeout(cfg.RequestTimeout))
	}
	r.Use(middleware.Tracing(middleware.TracingConfig{
		ServiceName: ServiceName,
		StateParams: []string{urlstate.ParamQuery, urlstate.ParamBrands, urlstate.ParamCategories, urlstate.ParamPage},
	}))
	r.Use(middleware.RequestLogging(logger))
	r.Use(middleware.RequestLogger(logger))
	r.Use(metrics.Handler)

	// Health check endpoints
	r.Get("/health/live", healthHandler.LivenessHandler())
	r.Get("/health/ready", healthHandler.ReadinessHandler())
	r.Handle("/metrics", promhttp.HandlerFor(cfg.Gatherer, promhttp.HandlerOpts{}))

	// Storefront
	r.Group(func(r chi.Router) {
		r.Use(middleware.RateLimit(middleware.RateLimitConfig{
			RPS:               cfg.RateLimitRPS,
			Burst:             cfg.RateLimitBurst,
			TrustProxyHeaders: cfg.TrustProxy,
		}, logger))

		r.Get(SearchPath, searchHandler.Page)
		r.Post(SearchPath, searchHandler.Submit)
		r.Get(SearchPath+"/brands/{id}/toggle", searchHandler.ToggleBrand)
		r.Get(SearchPath+"/categories/{id}/toggle", searchHandler.ToggleCategory)
		r.Get(SearchPath+"/page/prev", searchHandler.PrevPage)
		r.Get(SearchPath+"/page/next", searchHandler.NextPage)

		r.Get("/api/v1/search", searchHandler.API)
	})

	r.Get("/", RedirectToSearch)
	r.NotFound(RedirectToSearch)

	return r
}
