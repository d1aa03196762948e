package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/shophub/storefront/internal/catalog"
	"github.com/shophub/storefront/internal/config"
	"github.com/shophub/storefront/internal/domain"
	"github.com/shophub/storefront/internal/event"
	handler "github.com/shophub/storefront/internal/handler/http"
	"github.com/shophub/storefront/internal/repository/memory"
	"github.com/shophub/storefront/internal/service"
	"github.com/shophub/storefront/internal/view"
	"github.com/shophub/storefront/pkg/health"
	"github.com/shophub/storefront/pkg/middleware"
	"github.com/shophub/storefront/pkg/tracing"
)

// Version is stamped at build time.
var Version = "dev"

// ServiceName names the storefront in logs and traces.
const ServiceName = "storefront"

// App wires together all dependencies and runs the storefront.
type App struct {
	cfg            *config.Config
	logger         *slog.Logger
	store          *memory.CartStore
	httpServer     *http.Server
	shutdownTracer func(context.Context) error
}

// NewApp creates a new application instance, initializing all dependencies.
func NewApp(cfg *config.Config, logger *slog.Logger) (*App, error) {
	return newApp(cfg, logger, prometheus.DefaultRegisterer, prometheus.DefaultGatherer)
}

func newApp(cfg *config.Config, logger *slog.Logger, reg prometheus.Registerer, gatherer prometheus.Gatherer) (*App, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	shutdownTracer, err := tracing.InitTracer(ctx, tracing.Config{
		ServiceName:    ServiceName,
		ServiceVersion: Version,
		Environment:    cfg.Environment,
		OTLPEndpoint:   cfg.OTELEndpoint,
		SampleRate:     cfg.OTELSampleRate,
		Insecure:       cfg.OTELInsecure,
		Enabled:        cfg.OTELEnabled,
	})
	if err != nil {
		return nil, fmt.Errorf("init tracing: %w", err)
	}

	cat, err := loadCatalog(cfg.CatalogPath)
	if err != nil {
		return nil, err
	}
	logger.Info("catalog loaded",
		slog.String("source", catalogSource(cfg.CatalogPath)),
		slog.Any("sections", cat.Stats()),
	)

	renderer, err := view.NewRenderer()
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}

	// Cart events feed the metrics and the audit log.
	bus := event.NewBus()
	if err := event.NewMetrics(reg).Register(bus); err != nil {
		return nil, fmt.Errorf("register cart metrics: %w", err)
	}
	if err := event.NewAudit(logger).Register(bus); err != nil {
		return nil, fmt.Errorf("register cart audit: %w", err)
	}

	// Build the dependency graph. The store reports evictions to the service
	// that owns it.
	var cartService *service.CartService
	store := memory.NewCartStore(cfg.CartMaxViews, cfg.CartViewTTL(), func(c *domain.Cart, expired bool) {
		cartService.Evicted(c, expired)
	})
	cartService = service.NewCartService(store, cat, event.NewPublisher(bus, logger), logger)
	contactService := service.NewContactService(logger)
	money := view.NewMoney(cfg.Currency())

	// Health checks.
	healthHandler := health.NewHandler()
	healthHandler.RegisterCritical("catalog", func(context.Context) error {
		if len(cat.Featured()) == 0 || len(cat.Products()) == 0 {
			return errors.New("catalog has no products")
		}
		return nil
	})
	healthHandler.RegisterNonCritical("cart_store", func(context.Context) error {
		if n := store.Len(); n >= store.Capacity() {
			return fmt.Errorf("cart store full: %d views, oldest are being evicted", n)
		}
		return nil
	})
	logger.Debug("health checks registered", slog.Any("checks", healthHandler.Names()))

	sessions := handler.NewSessions(handler.SessionConfig{
		Secret: cfg.SessionSecret,
		MaxAge: cfg.SessionMaxAgeSeconds,
		Secure: cfg.IsProduction(),
	}, logger)

	cors := middleware.DefaultCORSConfig()
	cors.AllowedOrigins = cfg.CORSAllowedOrigins

	// HTTP router.
	router := handler.NewRouter(handler.RouterDeps{
		Pages: handler.NewPageHandler(handler.PageDeps{
			Carts:     cartService,
			Contact:   contactService,
			Catalog:   cat,
			Renderer:  renderer,
			Money:     money,
			Sessions:  sessions,
			StoreName: cfg.StoreName,
			Logger:    logger,
		}),
		Carts:      handler.NewCartHandler(cartService, money, logger),
		Sessions:   sessions,
		Health:     healthHandler,
		Metrics:    promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}),
		Logger:     logger,
		PprofCIDRs: cfg.PprofAllowedCIDRs,
		CORS:       cors,
		RateLimit: middleware.RateLimitConfig{
			RPS:     cfg.RateLimitRPS,
			Burst:   cfg.RateLimitBurst,
			Clients: cfg.CartMaxViews,
		},
	})

	httpServer := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return &App{
		cfg:            cfg,
		logger:         logger,
		store:          store,
		httpServer:     httpServer,
		shutdownTracer: shutdownTracer,
	}, nil
}

func loadCatalog(path string) (*catalog.Catalog, error) {
	if path == "" {
		cat, err := catalog.Default()
		if err != nil {
			return nil, fmt.Errorf("load embedded catalog: %w", err)
		}
		return cat, nil
	}
	cat, err := catalog.LoadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load catalog %s: %w", path, err)
	}
	return cat, nil
}

func catalogSource(path string) string {
	if path == "" {
		return "embedded"
	}
	return path
}

// Handler returns the HTTP handler the server runs.
func (a *App) Handler() http.Handler {
	return a.httpServer.Handler
}

// Run starts the HTTP server and blocks until the context is canceled.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)

	go func() {
		a.logger.Info("starting HTTP server",
			slog.String("addr", a.httpServer.Addr),
			slog.String("store", a.cfg.StoreName),
		)
		if err := a.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		a.logger.Info("shutdown signal received")
	case err := <-errCh:
		return err
	}

	return a.Shutdown()
}

// Shutdown gracefully stops all components. Mounted cart views are dropped.
func (a *App) Shutdown() error {
	a.logger.Info("shutting down application...")

	// Graceful HTTP server shutdown with a 10-second deadline.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := a.httpServer.Shutdown(shutdownCtx); err != nil {
		a.logger.Error("http server shutdown error", slog.String("error", err.Error()))
	}

	a.logger.Info("dropping cart views", slog.Int("views", a.store.Len()))
	a.store.Purge()

	if err := a.shutdownTracer(shutdownCtx); err != nil {
		a.logger.Error("tracer shutdown error", slog.String("error", err.Error()))
	}

	a.logger.Info("application shutdown complete")
	return nil
}
