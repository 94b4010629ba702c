package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/text/language"

	"github.com/nastassia-sauchanka/faceted-product-search/internal/catalog"
	"github.com/nastassia-sauchanka/faceted-product-search/internal/catalog/postgres"
	"github.com/nastassia-sauchanka/faceted-product-search/internal/catalog/postgrest"
	"github.com/nastassia-sauchanka/faceted-product-search/internal/config"
	handler "github.com/nastassia-sauchanka/faceted-product-search/internal/handler/http"
	"github.com/nastassia-sauchanka/faceted-product-search/internal/service"
	"github.com/nastassia-sauchanka/faceted-product-search/pkg/database"
	"github.com/nastassia-sauchanka/faceted-product-search/pkg/health"
	"github.com/nastassia-sauchanka/faceted-product-search/pkg/httpclient"
	"github.com/nastassia-sauchanka/faceted-product-search/pkg/tracing"
)

// App wires together all dependencies and runs the storefront.
type App struct {
	cfg            *config.Config
	logger         *slog.Logger
	pool           *pgxpool.Pool
	httpServer     *http.Server
	tracerShutdown func(context.Context) error
}

// NewApp creates a new application instance, initializing all dependencies.
func NewApp(cfg *config.Config, logger *slog.Logger) (*App, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	// Initialize OpenTelemetry tracing.
	tracerShutdown, err := tracing.InitTracer(ctx, tracing.Config{
		ServiceName:    handler.ServiceName,
		ServiceVersion: "0.1.0",
		Environment:    cfg.Environment,
		OTLPEndpoint:   cfg.OTelEndpoint,
		SampleRate:     cfg.OTelSampleRate,
		Enabled:        cfg.OTelEnabled,
	})
	if err != nil {
		return nil, fmt.Errorf("init tracer: %w", err)
	}

	a := &App{
		cfg:            cfg,
		logger:         logger,
		tracerShutdown: tracerShutdown,
	}

	client, err := a.newCatalogClient(ctx)
	if err != nil {
		_ = tracerShutdown(context.Background())
		return nil, err
	}

	// Health checks.
	healthHandler := health.NewHandler()
	if pinger, ok := client.(catalog.Pinger); ok {
		healthHandler.Register("catalog", pinger.Ping)
	}

	// Build the dependency graph.
	searchService := service.NewSearchService(catalog.WithTimeout(client, cfg.CatalogTimeout), logger)

	renderer, err := handler.NewRenderer(language.English)
	if err != nil {
		a.closePool()
		_ = tracerShutdown(context.Background())
		return nil, err
	}
	searchHandler := handler.NewSearchHandler(searchService, renderer, logger)

	// HTTP router.
	router := handler.NewRouter(searchHandler, healthHandler, handler.RouterConfig{
		RequestTimeout: cfg.RequestTimeout,
		RateLimitRPS:   cfg.RateLimitRPS,
		RateLimitBurst: cfg.RateLimitBurst,
		TrustProxy:     cfg.TrustProxyHeaders,
	}, logger)

	a.httpServer = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           router,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      cfg.RequestTimeout + 5*time.Second,
		IdleTimeout:       60 * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return a, nil
}

// newCatalogClient builds the configured catalog backend.
func (a *App) newCatalogClient(ctx context.Context) (catalog.Client, error) {
	switch a.cfg.CatalogBackend {
	case config.BackendPostgres:
		pgCfg := database.DefaultPostgresConfig(a.cfg.DatabaseURL)
		pgCfg.MaxConns = a.cfg.DatabaseMaxConns

		pool, err := database.NewPostgresPool(ctx, pgCfg, a.logger)
		if err != nil {
			return nil, fmt.Errorf("connect to postgres: %w", err)
		}
		a.pool = pool
		a.logger.Info("connected to PostgreSQL",
			slog.String("host", pool.Config().ConnConfig.Host),
			slog.String("database", pool.Config().ConnConfig.Database),
		)

		if err := database.RegisterPoolMetrics(prometheus.DefaultRegisterer, pool, handler.ServiceName); err != nil {
			a.logger.Warn("pool metrics not registered", slog.String("error", err.Error()))
		}
		if a.cfg.SlowQueryThreshold > 0 {
			database.SetSlowQueryLogging(a.cfg.SlowQueryThreshold, a.logger)
		}
		return postgres.New(pool), nil

	default:
		baseClient := httpclient.New(httpclient.Config{
			Timeout:         a.cfg.CatalogTimeout,
			MaxConnsPerHost: 100,
			UserAgent:       httpclient.DefaultConfig().UserAgent,
		})
		cbClient := httpclient.NewCircuitBreakerClient(baseClient,
			httpclient.DefaultCircuitBreakerConfig(postgrest.ServiceName), a.logger)
		a.logger.Info("catalog client initialized",
			slog.String("backend", config.BackendPostgREST),
			slog.String("url", a.cfg.SupabaseURL),
		)
		return postgrest.New(cbClient, a.cfg.SupabaseURL, a.cfg.SupabaseAnonKey), nil
	}
}

// Run starts the HTTP server and blocks until the context is canceled.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)

	go func() {
		a.logger.Info("starting HTTP server",
			slog.String("addr", a.httpServer.Addr),
		)
		if err := a.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		a.logger.Info("shutdown signal received")
	case err := <-errCh:
		_ = a.Shutdown()
		return err
	}

	return a.Shutdown()
}

// Shutdown drains HTTP requests, then flushes spans, then closes the pool.
func (a *App) Shutdown() error {
	a.logger.Info("shutting down application...")

	var errs []error

	httpCtx, httpCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer httpCancel()
	if err := a.httpServer.Shutdown(httpCtx); err != nil {
		a.logger.Error("http server shutdown error", slog.String("error", err.Error()))
		errs = append(errs, err)
	}

	if a.tracerShutdown != nil {
		tracerCtx, tracerCancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer tracerCancel()
		if err := a.tracerShutdown(tracerCtx); err != nil {
			a.logger.Error("tracer shutdown error", slog.String("error", err.Error()))
			errs = append(errs, err)
		}
	}

	a.closePool()

	a.logger.Info("application shutdown complete")
	return errors.Join(errs...)
}

func (a *App) closePool() {
	if a.pool != nil {
		a.pool.Close()
	}
}
