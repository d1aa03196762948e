package event

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shophub/storefront/internal/domain"
	"github.com/shophub/storefront/pkg/logger"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(&bytes.Buffer{}, &slog.HandlerOptions{Level: slog.LevelError}))
}

func cartWith(page domain.Page, qty int) *domain.Cart {
	c := domain.NewCart("view-1", "visitor-1", page, time.Now())
	c.AddQuantity(domain.Product{
		ID:       "1",
		Name:     "Wireless Bluetooth Headphones",
		Price:    decimal.RequireFromString("100"),
		Discount: 20,
	}, qty)
	return c
}

func metricValue(t *testing.T, c prometheus.Collector, labels map[string]string) float64 {
	t.Helper()
	ch := make(chan prometheus.Metric, 16)
	c.Collect(ch)
	close(ch)
	for m := range ch {
		d := &dto.Metric{}
		require.NoError(t, m.Write(d))
		match := true
		for _, lp := range d.GetLabel() {
			if want, ok := labels[lp.GetName()]; ok && want != lp.GetValue() {
				match = false
			}
		}
		if !match {
			continue
		}
		if d.GetGauge() != nil {
			return d.GetGauge().GetValue()
		}
		return d.GetCounter().GetValue()
	}
	return 0
}

// ============================================================================
// Publisher
// ============================================================================

func TestPublisher_CartUpdatedCarriesLineState(t *testing.T) {
	bus := NewBus()
	var got []CartEvent
	require.NoError(t, Subscribe(bus, TopicCartUpdated, func(_ context.Context, e CartEvent) {
		got = append(got, e)
	}))
	p := NewPublisher(bus, discardLogger())

	cart := cartWith(domain.PageStore, 3)
	p.CartUpdated(context.Background(), cart, OpAdd, "1")
	cart.Remove("1")
	p.CartUpdated(context.Background(), cart, OpRemove, "1")

	require.Len(t, got, 2)
	assert.Equal(t, OpAdd, got[0].Op)
	assert.Equal(t, 3, got[0].Quantity)
	assert.Equal(t, 3, got[0].ItemCount)
	assert.Equal(t, "240.00", got[0].Total.StringFixed(2))
	assert.Equal(t, domain.PageStore, got[0].Page)

	assert.Equal(t, OpRemove, got[1].Op)
	assert.Zero(t, got[1].Quantity)
	assert.True(t, got[1].Total.IsZero())
}

func TestPublisher_TopicsAreIndependent(t *testing.T) {
	bus := NewBus()
	var topics []string
	for _, topic := range []string{TopicCartMounted, TopicCartUnmounted} {
		topic := topic
		require.NoError(t, Subscribe(bus, topic, func(_ context.Context, e CartEvent) {
			topics = append(topics, topic+":"+string(e.Reason))
		}))
	}
	p := NewPublisher(bus, discardLogger())
	cart := domain.NewCart("view-1", "", domain.PageProducts, time.Now())

	p.CartMounted(context.Background(), cart)
	p.CartUpdated(context.Background(), cart, OpAdd, "1")
	p.CartUnmounted(context.Background(), cart, ReasonExpired)

	assert.Equal(t, []string{"cart:mounted:", "cart:unmounted:expired"}, topics)
}

func TestPublisher_NoSubscribers(t *testing.T) {
	p := NewPublisher(NewBus(), discardLogger())

	assert.NotPanics(t, func() {
		p.CartMounted(context.Background(), domain.NewCart("view-1", "", domain.PageStore, time.Now()))
	})
}

// ============================================================================
// Subscribers
// ============================================================================

func TestMetrics_TracksViewsAndOperations(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)
	bus := NewBus()
	require.NoError(t, m.Register(bus))
	p := NewPublisher(bus, discardLogger())
	ctx := context.Background()

	a := domain.NewCart("a", "", domain.PageStore, time.Now())
	b := domain.NewCart("b", "", domain.PageProductDetail, time.Now())
	p.CartMounted(ctx, a)
	p.CartMounted(ctx, b)
	p.CartUpdated(ctx, a, OpAdd, "1")
	p.CartUpdated(ctx, a, OpAdd, "2")
	p.CartUpdated(ctx, b, OpSetQuantity, "1")
	p.CartUnmounted(ctx, a, ReasonEvicted)

	assert.Equal(t, 1.0, metricValue(t, m.views, nil))
	assert.Equal(t, 2.0, metricValue(t, m.operations, map[string]string{"page": "store", "op": "add"}))
	assert.Equal(t, 1.0, metricValue(t, m.operations, map[string]string{"page": "product-detail", "op": "set_quantity"}))
	assert.Equal(t, 1.0, metricValue(t, m.operations, map[string]string{"page": "store", "op": "mount"}))
	assert.Equal(t, 1.0, metricValue(t, m.unmounts, map[string]string{"reason": "evicted"}))
}

func TestAudit_LogsWithRequestContext(t *testing.T) {
	var buf bytes.Buffer
	bus := NewBus()
	require.NoError(t, NewAudit(logger.NewWithWriter("storefront", "info", &buf)).Register(bus))
	p := NewPublisher(bus, discardLogger())

	ctx := logger.WithCorrelationID(context.Background(), "corr-1")
	p.CartUpdated(ctx, cartWith(domain.PageProducts, 2), OpAdd, "1")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 1)
	var rec map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &rec))
	assert.Equal(t, "cart updated", rec["msg"])
	assert.Equal(t, "corr-1", rec["correlation_id"])
	assert.Equal(t, "view-1", rec["cart_view"])
	assert.Equal(t, "add", rec["op"])
	assert.Equal(t, "160.00", rec["total"])
	assert.Equal(t, float64(2), rec["item_count"])
}

func TestAudit_UnmountWithoutRequest(t *testing.T) {
	var buf bytes.Buffer
	bus := NewBus()
	require.NoError(t, NewAudit(logger.NewWithWriter("storefront", "info", &buf)).Register(bus))
	p := NewPublisher(bus, discardLogger())

	p.CartUnmounted(context.Background(), cartWith(domain.PageStore, 1), ReasonExpired)

	var rec map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &rec))
	assert.Equal(t, "cart view unmounted", rec["msg"])
	assert.Equal(t, "expired", rec["reason"])
	assert.Equal(t, "view-1", rec["cart_view"])
	assert.NotContains(t, rec, "correlation_id")
}
