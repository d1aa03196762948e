package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/shophub/storefront/internal/catalog"
	"github.com/shophub/storefront/internal/domain"
	"github.com/shophub/storefront/internal/event"
	"github.com/shophub/storefront/internal/repository"
	apperrors "github.com/shophub/storefront/pkg/errors"
	"github.com/shophub/storefront/pkg/tracing"
)

// MaxLineQuantity caps the quantity of a single cart line.
const MaxLineQuantity = 999

// Notice titles.
const (
	TitleAdded   = "Added to cart"
	TitleRemoved = "Removed from cart"
)

// CartService implements the cart operations of a page view.
type CartService struct {
	repo    repository.CartRepository
	catalog *catalog.Catalog
	events  *event.Publisher
	logger  *slog.Logger
	tracer  trace.Tracer
	now     func() time.Time
}

// NewCartService creates a new cart service.
func NewCartService(repo repository.CartRepository, cat *catalog.Catalog, events *event.Publisher, logger *slog.Logger) *CartService {
	return &CartService{
		repo:    repo,
		catalog: cat,
		events:  events,
		logger:  logger,
		tracer:  tracing.Tracer("storefront/service"),
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// Mount creates the empty cart of a new view of page, owned by ownerID.
func (s *CartService) Mount(ctx context.Context, page domain.Page, ownerID string) (_ *domain.Cart, err error) {
	ctx, span := s.tracer.Start(ctx, "cart.mount")
	defer func() { tracing.End(span, err, attribute.String("storefront.page", string(page))) }()

	if !domain.IsValidPage(string(page)) {
		return nil, apperrors.InvalidInput(fmt.Sprintf("unknown page %q", page))
	}
	if !page.SellsProducts() {
		return nil, apperrors.InvalidInput(fmt.Sprintf("page %q does not keep a cart", page))
	}
	if page == domain.PageProductDetail {
		return nil, apperrors.InvalidInput("a product detail view needs a product id")
	}

	return s.save(ctx, domain.NewCart(uuid.New().String(), ownerID, page, s.now()))
}

// MountProduct creates the empty cart of a new view of productID's detail
// page. Only that product can be added to it.
func (s *CartService) MountProduct(ctx context.Context, productID, ownerID string) (_ *domain.Cart, err error) {
	ctx, span := s.tracer.Start(ctx, "cart.mount")
	defer func() {
		tracing.End(span, err,
			attribute.String("storefront.page", string(domain.PageProductDetail)),
			attribute.String("storefront.product_id", productID),
		)
	}()

	if _, err := s.catalog.Detail(productID); err != nil {
		return nil, err
	}

	cart := domain.NewCart(uuid.New().String(), ownerID, domain.PageProductDetail, s.now())
	cart.ProductID = productID
	return s.save(ctx, cart)
}

func (s *CartService) save(ctx context.Context, cart *domain.Cart) (*domain.Cart, error) {
	if err := s.repo.Save(ctx, cart); err != nil {
		return nil, fmt.Errorf("save cart: %w", err)
	}

	s.events.CartMounted(ctx, cart)
	return cart, nil
}

// Get returns the cart of a view. Views owned by someone else are forbidden.
func (s *CartService) Get(ctx context.Context, viewID, ownerID string) (*domain.Cart, error) {
	if viewID == "" {
		return nil, apperrors.InvalidInput("cart view id is required")
	}

	cart, err := s.repo.Get(ctx, viewID)
	if err != nil {
		return nil, fmt.Errorf("get cart: %w", err)
	}
	if err := checkOwner(cart, ownerID); err != nil {
		return nil, err
	}
	return cart, nil
}

// Add puts one unit of productID in the cart.
func (s *CartService) Add(ctx context.Context, viewID, ownerID, productID string) (*domain.Cart, domain.Notice, error) {
	return s.AddQuantity(ctx, viewID, ownerID, productID, 1)
}

// AddQuantity merges n units of productID into the cart. The product is
// looked up in the list of the page that mounted the view. Pages that track
// stock clamp n to [1, stock] and refuse sold-out products.
func (s *CartService) AddQuantity(ctx context.Context, viewID, ownerID, productID string, n int) (_ *domain.Cart, _ domain.Notice, err error) {
	ctx, span := s.tracer.Start(ctx, "cart.add")
	defer func() {
		tracing.End(span, err,
			attribute.String("storefront.cart_view", viewID),
			attribute.String("storefront.product_id", productID),
		)
	}()

	if productID == "" {
		return nil, domain.Notice{}, apperrors.InvalidInput("product id is required")
	}
	var (
		added   domain.Product
		qty     int
		existed bool
	)
	cart, err := s.repo.Update(ctx, viewID, func(c *domain.Cart) error {
		if err := checkOwner(c, ownerID); err != nil {
			return err
		}
		if c.ProductID != "" && c.ProductID != productID {
			return apperrors.NotFound("product", productID)
		}
		offer, err := s.catalog.Offer(c.Page, productID)
		if err != nil {
			return err
		}

		qty = n
		if offer.Tracked {
			if !offer.InStock {
				return apperrors.OutOfStock(offer.Product.Name)
			}
			qty = clamp(n, 1, offer.StockCount)
		}
		if qty < 1 {
			return apperrors.InvalidInput("quantity must be at least 1")
		}
		held := 0
		if line, ok := c.Line(productID); ok {
			held = line.Quantity
		}
		if qty > MaxLineQuantity-held {
			return apperrors.InvalidInput(fmt.Sprintf("quantity must not exceed %d", MaxLineQuantity))
		}

		existed = c.AddQuantity(offer.Product, qty)
		c.UpdatedAt = s.now()
		added = offer.Product
		return nil
	})
	if err != nil {
		return nil, domain.Notice{}, fmt.Errorf("add to cart: %w", err)
	}

	s.events.CartUpdated(ctx, cart, event.OpAdd, productID)
	s.logger.InfoContext(ctx, "item added to cart",
		slog.String("cart_view", viewID),
		slog.String("product_id", productID),
		slog.Int("quantity", qty),
	)

	return cart, addedNotice(cart.Page, added.Name, qty, existed), nil
}

// SetQuantity sets the quantity of productID's line; n <= 0 removes it.
// Unknown products leave the cart unchanged. The store page answers a
// removal with a notice.
func (s *CartService) SetQuantity(ctx context.Context, viewID, ownerID, productID string, n int) (_ *domain.Cart, _ domain.Notice, err error) {
	ctx, span := s.tracer.Start(ctx, "cart.set_quantity")
	defer func() {
		tracing.End(span, err,
			attribute.String("storefront.cart_view", viewID),
			attribute.String("storefront.product_id", productID),
			attribute.Int("storefront.quantity", n),
		)
	}()

	if n > MaxLineQuantity {
		return nil, domain.Notice{}, apperrors.InvalidInput(fmt.Sprintf("quantity must not exceed %d", MaxLineQuantity))
	}

	cart, err := s.repo.Update(ctx, viewID, func(c *domain.Cart) error {
		if err := checkOwner(c, ownerID); err != nil {
			return err
		}
		c.SetQuantity(productID, n)
		c.UpdatedAt = s.now()
		return nil
	})
	if err != nil {
		return nil, domain.Notice{}, fmt.Errorf("set cart quantity: %w", err)
	}

	op := event.OpSetQuantity
	var notice domain.Notice
	if n <= 0 {
		op = event.OpRemove
		notice = removedNotice(cart.Page)
	}
	s.events.CartUpdated(ctx, cart, op, productID)
	s.logger.InfoContext(ctx, "cart item quantity updated",
		slog.String("cart_view", viewID),
		slog.String("product_id", productID),
		slog.Int("quantity", n),
	)

	return cart, notice, nil
}

// Remove deletes productID's line. Removing an absent product is a no-op.
func (s *CartService) Remove(ctx context.Context, viewID, ownerID, productID string) (_ *domain.Cart, _ domain.Notice, err error) {
	ctx, span := s.tracer.Start(ctx, "cart.remove")
	defer func() {
		tracing.End(span, err,
			attribute.String("storefront.cart_view", viewID),
			attribute.String("storefront.product_id", productID),
		)
	}()

	cart, err := s.repo.Update(ctx, viewID, func(c *domain.Cart) error {
		if err := checkOwner(c, ownerID); err != nil {
			return err
		}
		c.Remove(productID)
		c.UpdatedAt = s.now()
		return nil
	})
	if err != nil {
		return nil, domain.Notice{}, fmt.Errorf("remove from cart: %w", err)
	}

	s.events.CartUpdated(ctx, cart, event.OpRemove, productID)
	s.logger.InfoContext(ctx, "item removed from cart",
		slog.String("cart_view", viewID),
		slog.String("product_id", productID),
	)

	return cart, removedNotice(cart.Page), nil
}

// Unmount discards the cart of a view.
func (s *CartService) Unmount(ctx context.Context, viewID, ownerID string) error {
	cart, err := s.Get(ctx, viewID, ownerID)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, viewID); err != nil {
		return fmt.Errorf("delete cart: %w", err)
	}

	s.events.CartUnmounted(ctx, cart, event.ReasonDeleted)
	s.logger.InfoContext(ctx, "cart view unmounted", slog.String("cart_view", viewID))
	return nil
}

// Evicted reports a cart the store dropped on its own. It is meant to be
// the store's eviction callback.
func (s *CartService) Evicted(cart *domain.Cart, expired bool) {
	reason := event.ReasonEvicted
	if expired {
		reason = event.ReasonExpired
	}
	s.events.CartUnmounted(context.Background(), cart, reason)
}

func checkOwner(cart *domain.Cart, ownerID string) error {
	if cart.OwnerID != ownerID {
		return apperrors.Forbidden("cart view belongs to another visitor")
	}
	return nil
}

func clamp(n, lo, hi int) int {
	return max(lo, min(n, hi))
}

func addedNotice(page domain.Page, name string, qty int, existed bool) domain.Notice {
	n := domain.Notice{Title: TitleAdded}
	switch page {
	case domain.PageStore:
		if existed {
			n.Description = name + " quantity updated"
		} else {
			n.Description = name + " has been added to your cart"
		}
	case domain.PageProductDetail:
		n.Description = fmt.Sprintf("%d %s added to your cart.", qty, name)
	default:
		n.Description = name + " has been added to your cart."
	}
	return n
}

func removedNotice(page domain.Page) domain.Notice {
	if page != domain.PageStore {
		return domain.Notice{}
	}
	return domain.Notice{Title: TitleRemoved, Description: "Item has been removed from your cart"}
}
