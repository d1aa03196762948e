package event

import (
	"context"
	"fmt"
	"log/slog"

	evbus "github.com/asaskevich/EventBus"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/shophub/storefront/pkg/logger"
)

// Metrics counts cart activity and tracks the number of mounted views.
type Metrics struct {
	operations *prometheus.CounterVec
	unmounts   *prometheus.CounterVec
	views      prometheus.Gauge
}

// NewMetrics registers the cart collectors with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		operations: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "storefront",
				Name:      "cart_operations_total",
				Help:      "Cart operations by page and operation",
			},
			[]string{"page", "op"},
		),
		unmounts: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "storefront",
				Name:      "cart_unmounts_total",
				Help:      "Cart views unmounted, by reason",
			},
			[]string{"reason"},
		),
		views: f.NewGauge(
			prometheus.GaugeOpts{
				Namespace: "storefront",
				Name:      "cart_views",
				Help:      "Cart views currently mounted",
			},
		),
	}
}

// Register subscribes the collectors to every cart topic.
func (m *Metrics) Register(bus evbus.Bus) error {
	return subscribeAll(bus, map[string]Handler{
		TopicCartMounted: func(_ context.Context, e CartEvent) {
			m.views.Inc()
			m.operations.WithLabelValues(string(e.Page), "mount").Inc()
		},
		TopicCartUpdated: func(_ context.Context, e CartEvent) {
			m.operations.WithLabelValues(string(e.Page), string(e.Op)).Inc()
		},
		TopicCartUnmounted: func(_ context.Context, e CartEvent) {
			m.views.Dec()
			m.unmounts.WithLabelValues(string(e.Reason)).Inc()
		},
	})
}

// Audit writes one structured log line per cart event.
type Audit struct {
	logger *slog.Logger
}

// NewAudit creates an audit subscriber. Records carry the request's
// correlation and trace IDs when the event has a request context.
func NewAudit(l *slog.Logger) *Audit {
	return &Audit{logger: l}
}

// Register subscribes the audit log to every cart topic.
func (a *Audit) Register(bus evbus.Bus) error {
	return subscribeAll(bus, map[string]Handler{
		TopicCartMounted: func(ctx context.Context, e CartEvent) {
			a.with(ctx, e).InfoContext(ctx, "cart view mounted",
				slog.String("page", string(e.Page)),
			)
		},
		TopicCartUpdated: func(ctx context.Context, e CartEvent) {
			a.with(ctx, e).InfoContext(ctx, "cart updated",
				slog.String("page", string(e.Page)),
				slog.String("op", string(e.Op)),
				slog.String("product_id", e.ProductID),
				slog.Int("quantity", e.Quantity),
				slog.Int("item_count", e.ItemCount),
				slog.String("total", e.Total.StringFixed(2)),
			)
		},
		TopicCartUnmounted: func(ctx context.Context, e CartEvent) {
			a.with(ctx, e).InfoContext(ctx, "cart view unmounted",
				slog.String("page", string(e.Page)),
				slog.String("reason", string(e.Reason)),
				slog.Int("item_count", e.ItemCount),
			)
		},
	})
}

func (a *Audit) with(ctx context.Context, e CartEvent) *slog.Logger {
	l := logger.WithContext(ctx, a.logger)
	if logger.CartViewFromContext(ctx) == "" {
		l = l.With(slog.String("cart_view", e.CartID))
	}
	return l
}

func subscribeAll(bus evbus.Bus, handlers map[string]Handler) error {
	for _, topic := range []string{TopicCartMounted, TopicCartUpdated, TopicCartUnmounted} {
		h, ok := handlers[topic]
		if !ok {
			continue
		}
		if err := Subscribe(bus, topic, h); err != nil {
			return fmt.Errorf("subscribe %s: %w", topic, err)
		}
	}
	return nil
}
