package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// CartLine pairs a product with the quantity the shopper wants.
type CartLine struct {
	Product  Product `json:"product"`
	Quantity int     `json:"quantity"`
}

// UnitPrice returns the discounted price of one unit.
func (l CartLine) UnitPrice() decimal.Decimal {
	return l.Product.DiscountedPrice()
}

// Subtotal returns quantity × discounted unit price.
func (l CartLine) Subtotal() decimal.Decimal {
	return l.UnitPrice().Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// Cart is the shopping cart owned by a single page view. Lines keep insertion
// order and hold at most one line per product ID, each with quantity >= 1.
type Cart struct {
	ID      string `json:"id"`
	OwnerID string `json:"-"`
	Page    Page   `json:"page"`
	// ProductID is the product a detail view was mounted for; its cart
	// takes no other product. Empty on listing pages.
	ProductID string     `json:"product_id,omitempty"`
	Lines     []CartLine `json:"lines"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// NewCart returns an empty cart for the given page view.
func NewCart(id, ownerID string, page Page, now time.Time) *Cart {
	return &Cart{
		ID:        id,
		OwnerID:   ownerID,
		Page:      page,
		Lines:     []CartLine{},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Add puts one unit of the product in the cart. It reports whether a line for
// the product already existed.
func (c *Cart) Add(p Product) bool {
	return c.AddQuantity(p, 1)
}

// AddQuantity merges n units of the product into the cart: an existing line
// grows by n, otherwise a new line is appended. n <= 0 leaves the cart as is.
func (c *Cart) AddQuantity(p Product, n int) bool {
	i := c.indexOf(p.ID)
	if n <= 0 {
		return i >= 0
	}
	if i >= 0 {
		c.Lines[i].Quantity += n
		return true
	}
	c.Lines = append(c.Lines, CartLine{Product: p, Quantity: n})
	return false
}

// SetQuantity sets the quantity of the line for productID. A quantity of zero
// or less removes the line. Unknown product IDs are ignored.
func (c *Cart) SetQuantity(productID string, n int) {
	if n <= 0 {
		c.Remove(productID)
		return
	}
	if i := c.indexOf(productID); i >= 0 {
		c.Lines[i].Quantity = n
	}
}

// Remove deletes the line for productID and reports whether one was present.
func (c *Cart) Remove(productID string) bool {
	i := c.indexOf(productID)
	if i < 0 {
		return false
	}
	c.Lines = append(c.Lines[:i], c.Lines[i+1:]...)
	return true
}

// Line returns the line for productID, if any.
func (c *Cart) Line(productID string) (CartLine, bool) {
	if i := c.indexOf(productID); i >= 0 {
		return c.Lines[i], true
	}
	return CartLine{}, false
}

// ItemCount returns the sum of all line quantities.
func (c *Cart) ItemCount() int {
	var count int
	for _, l := range c.Lines {
		count += l.Quantity
	}
	return count
}

// Total returns the sum of all line subtotals at discounted prices.
func (c *Cart) Total() decimal.Decimal {
	total := decimal.Zero
	for _, l := range c.Lines {
		total = total.Add(l.Subtotal())
	}
	return total
}

// IsEmpty reports whether the cart has no lines.
func (c *Cart) IsEmpty() bool {
	return len(c.Lines) == 0
}

// Clone returns a copy of the cart that shares no slices with the original.
func (c *Cart) Clone() *Cart {
	cp := *c
	cp.Lines = make([]CartLine, len(c.Lines))
	copy(cp.Lines, c.Lines)
	return &cp
}

func (c *Cart) indexOf(productID string) int {
	for i := range c.Lines {
		if c.Lines[i].Product.ID == productID {
			return i
		}
	}
	return -1
}
