package repository

import (
	"context"

	"github.com/shophub/storefront/internal/domain"
)

// CartRepository stores the carts of mounted page views.
type CartRepository interface {
	// Get returns a copy of the cart for a view, or a NotFound error.
	Get(ctx context.Context, viewID string) (*domain.Cart, error)

	// Save stores a copy of cart under cart.ID, replacing any previous cart.
	Save(ctx context.Context, cart *domain.Cart) error

	// Update applies fn to the stored cart atomically and saves the result.
	// If fn returns an error nothing is saved.
	Update(ctx context.Context, viewID string, fn func(*domain.Cart) error) (*domain.Cart, error)

	// Delete removes the cart for a view, or returns a NotFound error.
	Delete(ctx context.Context, viewID string) error

	// Len reports how many carts are stored.
	Len() int
}
