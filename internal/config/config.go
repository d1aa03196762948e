package config

import (
	"fmt"
	"strings"
	"time"

	"golang.org/x/text/currency"

	pkgconfig "github.com/shophub/storefront/pkg/config"
)

const minSessionSecretLen = 32

// Config holds all configuration for the storefront.
type Config struct {
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`

	// HTTP server
	HTTPPort int `env:"STOREFRONT_HTTP_PORT" envDefault:"8080"`

	// Store
	StoreName     string `env:"STORE_NAME" envDefault:"ShopHub"`
	StoreCurrency string `env:"STORE_CURRENCY" envDefault:"USD"`
	// CatalogPath overrides the embedded catalog with a YAML file.
	CatalogPath string `env:"CATALOG_PATH"`

	// Visitor sessions
	SessionSecret        string `env:"SESSION_SECRET" envDefault:"development-only-storefront-session-key"`
	SessionMaxAgeSeconds int    `env:"SESSION_MAX_AGE_SECONDS" envDefault:"604800"`

	// Cart views
	CartViewTTLMinutes int `env:"CART_VIEW_TTL_MINUTES" envDefault:"30"`
	CartMaxViews       int `env:"CART_MAX_VIEWS" envDefault:"10000"`

	// Per-client limits on form posts and the cart API. Zero RPS disables.
	RateLimitRPS   float64 `env:"RATE_LIMIT_RPS" envDefault:"10"`
	RateLimitBurst int     `env:"RATE_LIMIT_BURST" envDefault:"30"`

	// OpenTelemetry
	OTELEnabled    bool    `env:"OTEL_ENABLED" envDefault:"false"`
	OTELEndpoint   string  `env:"OTEL_EXPORTER_OTLP_ENDPOINT" envDefault:"localhost:4318"`
	OTELSampleRate float64 `env:"OTEL_SAMPLE_RATE" envDefault:"1.0"`
	OTELInsecure   bool    `env:"OTEL_EXPORTER_OTLP_INSECURE" envDefault:"true"`

	// Pprof debug endpoints (IP allowlist in CIDR notation)
	PprofAllowedCIDRs []string `env:"PPROF_ALLOWED_CIDRS" envDefault:"10.0.0.0/8,172.16.0.0/12,192.168.0.0/16,127.0.0.0/8,::1/128" envSeparator:","`

	// Cross-origin callers of the JSON cart API. Empty allows none.
	CORSAllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envSeparator:","`

	currency currency.Unit
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := pkgconfig.Load(cfg); err != nil {
		return nil, fmt.Errorf("load storefront config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFrom reads configuration from environ instead of the process
// environment.
func LoadFrom(environ map[string]string) (*Config, error) {
	cfg := &Config{}
	if err := pkgconfig.LoadFrom(environ, cfg); err != nil {
		return nil, fmt.Errorf("load storefront config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// validate checks configuration invariants.
func (c *Config) validate() error {
	if c.HTTPPort < 1 || c.HTTPPort > 65535 {
		return fmt.Errorf("invalid HTTP port: %d", c.HTTPPort)
	}
	if strings.TrimSpace(c.StoreName) == "" {
		return fmt.Errorf("STORE_NAME is required")
	}
	unit, err := currency.ParseISO(strings.ToUpper(strings.TrimSpace(c.StoreCurrency)))
	if err != nil {
		return fmt.Errorf("STORE_CURRENCY %q is not an ISO 4217 code: %w", c.StoreCurrency, err)
	}
	c.currency = unit
	if c.IsProduction() && len(c.SessionSecret) < minSessionSecretLen {
		return fmt.Errorf("SESSION_SECRET must be at least %d bytes in production", minSessionSecretLen)
	}
	if c.SessionMaxAgeSeconds < 0 {
		return fmt.Errorf("SESSION_MAX_AGE_SECONDS must not be negative, got %d", c.SessionMaxAgeSeconds)
	}
	if c.CartViewTTLMinutes < 1 {
		return fmt.Errorf("CART_VIEW_TTL_MINUTES must be at least 1, got %d", c.CartViewTTLMinutes)
	}
	if c.CartMaxViews < 1 {
		return fmt.Errorf("CART_MAX_VIEWS must be at least 1, got %d", c.CartMaxViews)
	}
	if c.RateLimitRPS < 0 {
		return fmt.Errorf("RATE_LIMIT_RPS must not be negative, got %f", c.RateLimitRPS)
	}
	if c.RateLimitRPS > 0 && c.RateLimitBurst < 1 {
		return fmt.Errorf("RATE_LIMIT_BURST must be at least 1, got %d", c.RateLimitBurst)
	}
	if c.OTELSampleRate < 0 || c.OTELSampleRate > 1.0 {
		return fmt.Errorf("OTEL_SAMPLE_RATE must be between 0.0 and 1.0, got %f", c.OTELSampleRate)
	}
	return nil
}

// IsProduction reports whether the storefront runs in production.
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Environment, "production")
}

// Currency returns the parsed store currency.
func (c *Config) Currency() currency.Unit { return c.currency }

// CartViewTTL is how long an idle cart view is kept.
func (c *Config) CartViewTTL() time.Duration {
	return time.Duration(c.CartViewTTLMinutes) * time.Minute
}

// Addr is the HTTP listen address.
func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.HTTPPort)
}
