package domain

import (
	"math"

	"github.com/shopspring/decimal"
)

// MaxRating is the top of the star rating scale.
const MaxRating = 5

// Product represents a catalog entry as shown on a product card.
type Product struct {
	ID          string          `json:"id" yaml:"id" validate:"required"`
	Name        string          `json:"name" yaml:"name" validate:"required"`
	Price       decimal.Decimal `json:"price" yaml:"price" validate:"gt=0"`
	Image       string          `json:"image" yaml:"image" validate:"required,url"`
	Rating      float64         `json:"rating" yaml:"rating" validate:"gte=0,lte=5"`
	ReviewCount int             `json:"review_count" yaml:"review_count" validate:"gte=0"`
	Discount    int             `json:"discount,omitempty" yaml:"discount" validate:"gte=0,lte=100"`
	Badge       string          `json:"badge,omitempty" yaml:"badge"`
	CategoryID  string          `json:"category_id,omitempty" yaml:"category_id"`
}

// HasDiscount reports whether the product carries a percentage reduction.
func (p Product) HasDiscount() bool {
	return p.Discount > 0
}

// DiscountedPrice returns price × (1 − discount/100), or the list price when
// the product has no discount. The result is exact; rounding happens only when
// the amount is displayed.
func (p Product) DiscountedPrice() decimal.Decimal {
	if !p.HasDiscount() {
		return p.Price
	}
	return p.Price.Mul(decimal.NewFromInt(int64(100 - p.Discount))).Shift(-2)
}

// FilledStars returns how many of the five rating stars are filled.
func (p Product) FilledStars() int {
	n := int(math.Floor(p.Rating))
	switch {
	case n < 0:
		return 0
	case n > MaxRating:
		return MaxRating
	}
	return n
}
