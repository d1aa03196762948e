package memory

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/shophub/storefront/internal/domain"
	apperrors "github.com/shophub/storefront/pkg/errors"
)

// EvictFunc is told about carts dropped for idleness (expired is true) or
// capacity. It runs while the store's cache is locked and must not call back
// into the store.
type EvictFunc func(cart *domain.Cart, expired bool)

type entry struct {
	cart    *domain.Cart
	savedAt time.Time
	deleted atomic.Bool
}

// CartStore keeps carts in a size-bounded LRU whose entries expire after a
// period without writes. Callers only ever see copies.
type CartStore struct {
	mu       sync.Mutex
	carts    *expirable.LRU[string, *entry]
	capacity int
	ttl      time.Duration
	onEvict  EvictFunc
}

// NewCartStore creates a store holding at most size carts, each dropped ttl
// after its last save. onEvict may be nil.
func NewCartStore(size int, ttl time.Duration, onEvict EvictFunc) *CartStore {
	s := &CartStore{capacity: size, ttl: ttl, onEvict: onEvict}
	s.carts = expirable.NewLRU[string, *entry](size, s.evicted, ttl)
	return s
}

func (s *CartStore) evicted(_ string, e *entry) {
	if e.deleted.Load() || s.onEvict == nil {
		return
	}
	s.onEvict(e.cart.Clone(), time.Since(e.savedAt) >= s.ttl)
}

// Get returns a copy of the cart for a view.
func (s *CartStore) Get(_ context.Context, viewID string) (*domain.Cart, error) {
	e, ok := s.carts.Get(viewID)
	if !ok {
		return nil, apperrors.NotFound("cart view", viewID)
	}
	return e.cart.Clone(), nil
}

// Save stores a copy of cart and restarts its idle timer.
func (s *CartStore) Save(_ context.Context, cart *domain.Cart) error {
	if cart == nil || cart.ID == "" {
		return apperrors.InvalidInput("cart id is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.carts.Add(cart.ID, &entry{cart: cart.Clone(), savedAt: time.Now()})
	return nil
}

// Update runs fn on a copy of the stored cart and saves it if fn succeeds.
// Updates to the same store are serialized.
func (s *CartStore) Update(_ context.Context, viewID string, fn func(*domain.Cart) error) (*domain.Cart, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.carts.Get(viewID)
	if !ok {
		return nil, apperrors.NotFound("cart view", viewID)
	}

	cart := e.cart.Clone()
	if err := fn(cart); err != nil {
		return nil, err
	}
	s.carts.Add(viewID, &entry{cart: cart.Clone(), savedAt: time.Now()})
	return cart, nil
}

// Delete removes a cart. Deleted carts are not reported to the EvictFunc.
func (s *CartStore) Delete(_ context.Context, viewID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.carts.Peek(viewID)
	if !ok {
		return apperrors.NotFound("cart view", viewID)
	}
	e.deleted.Store(true)
	s.carts.Remove(viewID)
	return nil
}

// Len reports how many carts are stored.
func (s *CartStore) Len() int {
	return s.carts.Len()
}

// Capacity is the most carts the store holds before evicting.
func (s *CartStore) Capacity() int {
	return s.capacity
}

// Purge drops every cart without reporting evictions.
func (s *CartStore) Purge() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range s.carts.Values() {
		e.deleted.Store(true)
	}
	s.carts.Purge()
}
