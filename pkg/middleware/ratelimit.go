package middleware

import (
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"golang.org/x/time/rate"

	apperrors "github.com/shophub/storefront/pkg/errors"
	"github.com/shophub/storefront/pkg/httputil"
)

// RateLimitConfig sets the token bucket each client IP gets. A non-positive
// RPS disables limiting.
type RateLimitConfig struct {
	RPS     float64
	Burst   int
	Clients int
	IdleTTL time.Duration
}

// RejectFunc writes the response for a request refused by RateLimit.
type RejectFunc func(w http.ResponseWriter, r *http.Request, err error)

// clientLimiters holds one limiter per client. Clients idle for longer than
// the TTL, or pushed out by newer ones, start again with a full bucket.
type clientLimiters struct {
	mu       sync.Mutex
	limiters *expirable.LRU[string, *rate.Limiter]
	limit    rate.Limit
	burst    int
}

func newClientLimiters(cfg RateLimitConfig) *clientLimiters {
	return &clientLimiters{
		limiters: expirable.NewLRU[string, *rate.Limiter](cfg.Clients, nil, cfg.IdleTTL),
		limit:    rate.Limit(cfg.RPS),
		burst:    cfg.Burst,
	}
}

func (c *clientLimiters) get(ip string) *rate.Limiter {
	c.mu.Lock()
	defer c.mu.Unlock()

	if l, ok := c.limiters.Get(ip); ok {
		return l
	}
	l := rate.NewLimiter(c.limit, c.burst)
	c.limiters.Add(ip, l)
	return l
}

// RateLimit refuses requests from a client IP once its token bucket is
// empty. Refusals go to reject, or to a JSON 429 when reject is nil. Mount
// it after chi's RealIP so proxied clients are told apart.
func RateLimit(cfg RateLimitConfig, reject RejectFunc, l *slog.Logger) func(http.Handler) http.Handler {
	if cfg.RPS <= 0 {
		return func(next http.Handler) http.Handler { return next }
	}
	if cfg.Burst < 1 {
		cfg.Burst = 1
	}
	if cfg.Clients <= 0 {
		cfg.Clients = 10000
	}
	if cfg.IdleTTL <= 0 {
		cfg.IdleTTL = 3 * time.Minute
	}
	if reject == nil {
		reject = func(w http.ResponseWriter, r *http.Request, err error) {
			httputil.WriteError(w, r, err, l)
		}
	}
	clients := newClientLimiters(cfg)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := clientIP(r)
			if !clients.get(ip).Allow() {
				l.Warn("rate limit exceeded",
					slog.String("ip", ip),
					slog.String("method", r.Method),
					slog.String("path", r.URL.Path),
				)
				reject(w, r, apperrors.RateLimited())
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
