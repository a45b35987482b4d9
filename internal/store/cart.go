package store

import (
	"context"
	"log/slog"
	"maps"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/utafrali/storefront/internal/domain"
	"github.com/utafrali/storefront/internal/kvstore"
	"github.com/utafrali/storefront/internal/metrics"
	apperrors "github.com/utafrali/storefront/pkg/errors"
	"github.com/utafrali/storefront/pkg/validator"
)

// CartObserver receives the cart lines after every notifying mutation.
type CartObserver func(items []domain.CartItem)

// CartStore is the single source of truth for the local cart.
type CartStore struct {
	mu      sync.Mutex
	cart    domain.Cart
	loading bool

	kv        *kvstore.Store
	opts      options
	observers observers[[]domain.CartItem]
}

// NewCartStore creates an empty cart persisted through kv.
func NewCartStore(kv *kvstore.Store, opts ...Option) *CartStore {
	return &CartStore{
		cart: domain.NewCart(nil),
		kv:   kv,
		opts: buildOptions("cart", opts),
	}
}

// AddToCart adds quantity of product with the given variant selection. A line
// with the same identity has its quantity increased and keeps its DateAdded.
func (s *CartStore) AddToCart(ctx context.Context, product domain.Product, quantity int, selected map[string]string) error {
	if err := validator.Var("productId", product.ID, "required"); err != nil {
		return apperrors.InvalidInput(err.Error())
	}
	if err := validator.Var("quantity", quantity, "gte=1"); err != nil {
		return apperrors.InvalidInput(err.Error())
	}

	selected = maps.Clone(selected)
	if selected == nil {
		selected = map[string]string{}
	}
	id := domain.ItemID(product.ID, selected)

	items := s.mutate(ctx, "add", func(c *domain.Cart) {
		if i := c.Index(id); i >= 0 {
			c.Items[i].Quantity += quantity
			return
		}
		c.Items = append(c.Items, domain.CartItem{
			ID:               id,
			Product:          product,
			Quantity:         quantity,
			SelectedVariants: selected,
			DateAdded:        s.opts.now(),
		})
	})

	s.opts.logger.DebugContext(ctx, "added to cart",
		slog.String("item_id", id),
		slog.Int("quantity", quantity),
	)
	s.observers.notify(items)
	return nil
}

// RemoveFromCart drops the line with itemID. Unknown ids leave the items
// unchanged but still persist and notify.
func (s *CartStore) RemoveFromCart(ctx context.Context, itemID string) {
	items := s.mutate(ctx, "remove", func(c *domain.Cart) {
		if i := c.Index(itemID); i >= 0 {
			c.Items = append(c.Items[:i:i], c.Items[i+1:]...)
		}
	})
	s.observers.notify(items)
}

// UpdateQuantity sets the quantity of itemID. A quantity of zero or less
// removes the line.
func (s *CartStore) UpdateQuantity(ctx context.Context, itemID string, quantity int) {
	if quantity <= 0 {
		s.RemoveFromCart(ctx, itemID)
		return
	}

	items := s.mutate(ctx, "update", func(c *domain.Cart) {
		if i := c.Index(itemID); i >= 0 {
			c.Items[i].Quantity = quantity
		}
	})
	s.observers.notify(items)
}

// ClearCart empties the cart and deletes the persisted snapshot.
func (s *CartStore) ClearCart(ctx context.Context) {
	s.mu.Lock()
	s.cart = domain.NewCart(nil)
	s.kv.Clear(ctx, kvstore.KeyCart)
	s.record("clear")
	s.mu.Unlock()

	s.observers.notify([]domain.CartItem{})
}

// LoadCart restores the persisted snapshot as stored. Missing fields default
// to empty; an absent or unreadable snapshot leaves the state unchanged.
func (s *CartStore) LoadCart(ctx context.Context) {
	s.mu.Lock()
	s.loading = true
	s.mu.Unlock()

	var saved domain.Cart
	ok := s.kv.Load(ctx, kvstore.KeyCart, &saved)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.loading = false
	if !ok {
		return
	}
	if saved.Items == nil {
		saved.Items = []domain.CartItem{}
	}
	s.cart = saved
	metrics.CartItems.Set(float64(saved.TotalItems))
}

// SetCartDirect replaces the cart with state from the backend and persists it
// without notifying observers. Totals are recomputed from the items.
func (s *CartStore) SetCartDirect(ctx context.Context, cart domain.Cart) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := cart.Clone()
	next.Recompute()
	s.cart = next
	s.kv.Save(ctx, kvstore.KeyCart, s.cart)
	s.record("set_direct")
}

// SetCartChangeCallback installs the primary observer, replacing any previous
// one. A nil fn removes it.
func (s *CartStore) SetCartChangeCallback(fn CartObserver) {
	s.observers.setPrimary(fn)
}

// Subscribe adds an observer alongside the primary one and returns a function
// that removes it.
func (s *CartStore) Subscribe(fn CartObserver) (unsubscribe func()) {
	return s.observers.subscribe(fn)
}

// ItemCount returns the total quantity across all lines.
func (s *CartStore) ItemCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cart.TotalItems
}

// TotalPrice returns the sum of quantity times unit price.
func (s *CartStore) TotalPrice() decimal.Decimal {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cart.TotalPrice
}

// Items returns a copy of the cart lines.
func (s *CartStore) Items() []domain.CartItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cart.Clone().Items
}

// Snapshot returns a copy of the whole cart.
func (s *CartStore) Snapshot() domain.Cart {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cart.Clone()
}

// IsLoading reports whether LoadCart is in progress.
func (s *CartStore) IsLoading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loading
}

// mutate applies fn, recomputes totals and persists under the lock, and
// returns a copy of the resulting items for notification.
func (s *CartStore) mutate(ctx context.Context, op string, fn func(c *domain.Cart)) []domain.CartItem {
	s.mu.Lock()
	defer s.mu.Unlock()

	fn(&s.cart)
	s.cart.Recompute()
	s.kv.Save(ctx, kvstore.KeyCart, s.cart)
	s.record(op)

	return s.cart.Clone().Items
}

func (s *CartStore) record(op string) {
	metrics.StoreMutations.WithLabelValues("cart", op).Inc()
	metrics.CartItems.Set(float64(s.cart.TotalItems))
}
