package event

import (
	"context"
	"log/slog"
	"time"

	evbus "github.com/asaskevich/EventBus"
	"github.com/shopspring/decimal"

	"github.com/shophub/storefront/internal/domain"
)

// Bus topics for cart view events.
const (
	TopicCartMounted   = "cart:mounted"
	TopicCartUpdated   = "cart:updated"
	TopicCartUnmounted = "cart:unmounted"
)

// Op names the mutation behind a cart:updated event.
type Op string

// Cart mutations.
const (
	OpAdd         Op = "add"
	OpSetQuantity Op = "set_quantity"
	OpRemove      Op = "remove"
)

// Reason tells why a view's cart went away.
type Reason string

// Unmount reasons.
const (
	ReasonDeleted Reason = "deleted"
	ReasonExpired Reason = "expired"
	ReasonEvicted Reason = "evicted"
)

// CartEvent is the payload of every cart topic. Op and ProductID are set on
// cart:updated only; Reason on cart:unmounted only.
type CartEvent struct {
	CartID     string
	Page       domain.Page
	Op         Op
	ProductID  string
	Quantity   int // resulting quantity of the touched line, 0 when removed
	ItemCount  int
	Total      decimal.Decimal
	Reason     Reason
	OccurredAt time.Time
}

// Handler receives cart events. Handlers run synchronously on the publishing
// goroutine and must not publish or subscribe themselves.
type Handler func(ctx context.Context, e CartEvent)

// Publisher turns cart lifecycle changes into bus events.
type Publisher struct {
	bus    evbus.Bus
	logger *slog.Logger
}

// NewPublisher creates a publisher on bus.
func NewPublisher(bus evbus.Bus, logger *slog.Logger) *Publisher {
	return &Publisher{bus: bus, logger: logger}
}

// NewBus returns an empty in-process bus.
func NewBus() evbus.Bus {
	return evbus.New()
}

// Subscribe registers h for topic.
func Subscribe(bus evbus.Bus, topic string, h Handler) error {
	return bus.Subscribe(topic, func(ctx context.Context, e CartEvent) { h(ctx, e) })
}

// CartMounted announces a new view and its empty cart.
func (p *Publisher) CartMounted(ctx context.Context, cart *domain.Cart) {
	p.publish(ctx, TopicCartMounted, snapshot(cart))
}

// CartUpdated announces a mutation of productID's line.
func (p *Publisher) CartUpdated(ctx context.Context, cart *domain.Cart, op Op, productID string) {
	e := snapshot(cart)
	e.Op = op
	e.ProductID = productID
	if line, ok := cart.Line(productID); ok {
		e.Quantity = line.Quantity
	}
	p.publish(ctx, TopicCartUpdated, e)
}

// CartUnmounted announces that a view's cart is gone.
func (p *Publisher) CartUnmounted(ctx context.Context, cart *domain.Cart, reason Reason) {
	e := snapshot(cart)
	e.Reason = reason
	p.publish(ctx, TopicCartUnmounted, e)
}

func (p *Publisher) publish(ctx context.Context, topic string, e CartEvent) {
	if !p.bus.HasCallback(topic) {
		return
	}
	p.bus.Publish(topic, ctx, e)
	p.logger.DebugContext(ctx, "published cart event",
		slog.String("topic", topic),
		slog.String("cart_view", e.CartID),
	)
}

func snapshot(cart *domain.Cart) CartEvent {
	return CartEvent{
		CartID:     cart.ID,
		Page:       cart.Page,
		ItemCount:  cart.ItemCount(),
		Total:      cart.Total(),
		OccurredAt: time.Now().UTC(),
	}
}
