package http

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/shophub/storefront/internal/view"
	"github.com/shophub/storefront/pkg/health"
	"github.com/shophub/storefront/pkg/middleware"
)

// staticMaxAge is the browser cache lifetime of /static assets, in seconds.
const staticMaxAge = 86400

// RouterDeps are the handlers and settings the router wires together.
type RouterDeps struct {
	Pages      *PageHandler
	Carts      *CartHandler
	Sessions   *Sessions
	Health     *health.Handler
	Metrics    http.Handler
	Logger     *slog.Logger
	PprofCIDRs []string
	CORS       middleware.CORSConfig
	RateLimit  middleware.RateLimitConfig
}

// NewRouter creates a chi router with every storefront route registered.
func NewRouter(d RouterDeps) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.Recovery(d.Logger))
	r.Use(chimw.RealIP)
	r.Use(chimw.Compress(5))
	r.Use(chimw.Timeout(30 * time.Second))
	r.Use(middleware.RequestLogging(d.Logger, "/health/live", "/health/ready", "/metrics"))
	r.Use(middleware.PrometheusMetrics())
	r.Use(middleware.Tracing())

	// Health check endpoints
	r.Get("/health/live", d.Health.LivenessHandler())
	r.Get("/health/ready", d.Health.ReadinessHandler())
	r.Method(http.MethodGet, "/metrics", d.Metrics)

	// Pprof debug endpoints with IP allowlist.
	middleware.RegisterPprof(r, d.PprofCIDRs, d.Logger)

	r.With(middleware.CacheControl(staticMaxAge)).
		Handle("/static/*", http.StripPrefix("/static/", view.Static()))

	// Pages and the cart forms they post.
	r.Group(func(r chi.Router) {
		r.Use(d.Sessions.Middleware)
		r.Use(middleware.RequestLogger(d.Logger))
		r.Use(middleware.NoStore())

		r.Get("/", d.Pages.Store)
		r.Get("/products", d.Pages.Products)
		r.Get("/products/{id}", d.Pages.ProductDetail)
		r.Get("/categories", d.Pages.Categories)
		r.Get("/about", d.Pages.About)
		r.Get("/contact", d.Pages.Contact)

		limit := middleware.RateLimit(d.RateLimit, d.Pages.renderError, d.Logger)
		r.With(limit).Post("/contact", d.Pages.SubmitContact)

		r.Route("/cart/{view}/items", func(r chi.Router) {
			r.Use(limit)
			r.Use(pageCartView)
			r.Post("/", d.Pages.AddToCart)
			r.Post("/{productID}/quantity", d.Pages.SetCartQuantity)
			r.Post("/{productID}/remove", d.Pages.RemoveFromCart)
		})
	})

	// Cart API endpoints
	r.Route("/api/v1/carts", func(r chi.Router) {
		r.Use(middleware.CORS(d.CORS))
		r.Use(ContentTypeJSON)
		r.Use(middleware.RequestLogger(d.Logger))
		r.Use(middleware.RateLimit(d.RateLimit, nil, d.Logger))

		r.Post("/", d.Carts.Mount)
		r.Route("/{id}", func(r chi.Router) {
			r.Use(apiCartView)
			r.Get("/", d.Carts.Get)
			r.Delete("/", d.Carts.Unmount)
			r.Post("/items", d.Carts.AddItem)
			r.Put("/items/{productID}", d.Carts.UpdateItemQuantity)
			r.Delete("/items/{productID}", d.Carts.RemoveItem)
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.URL.Path, "/api/") {
			apiNotFound(w, r)
			return
		}
		d.Pages.NotFound(w, r)
	})

	return r
}
