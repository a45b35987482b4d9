package store

import (
	"context"
	"slices"
	"sync"

	"github.com/utafrali/storefront/internal/domain"
	"github.com/utafrali/storefront/internal/kvstore"
	"github.com/utafrali/storefront/internal/metrics"
	apperrors "github.com/utafrali/storefront/pkg/errors"
)

// WishlistObserver receives the wishlist after every notifying mutation.
type WishlistObserver func(products []domain.Product)

// WishlistStore is an insertion-ordered set of products keyed by product id.
type WishlistStore struct {
	mu    sync.Mutex
	items []domain.Product

	kv        *kvstore.Store
	opts      options
	observers observers[[]domain.Product]
}

// NewWishlistStore creates an empty wishlist persisted through kv.
func NewWishlistStore(kv *kvstore.Store, opts ...Option) *WishlistStore {
	return &WishlistStore{
		items: []domain.Product{},
		kv:    kv,
		opts:  buildOptions("wishlist", opts),
	}
}

// AddToWishlist appends product unless a product with the same id is present,
// in which case nothing happens.
func (s *WishlistStore) AddToWishlist(ctx context.Context, product domain.Product) error {
	if product.ID == "" {
		return apperrors.InvalidInput("product id is required")
	}

	s.mu.Lock()
	if s.indexLocked(product.ID) >= 0 {
		s.mu.Unlock()
		return nil
	}
	s.items = append(s.items, product)
	items := s.commitLocked(ctx, "add")
	s.mu.Unlock()

	s.observers.notify(items)
	return nil
}

// RemoveFromWishlist removes the product with productID.
func (s *WishlistStore) RemoveFromWishlist(ctx context.Context, productID string) {
	s.mu.Lock()
	s.items = slices.DeleteFunc(slices.Clone(s.items), func(p domain.Product) bool {
		return p.ID == productID
	})
	items := s.commitLocked(ctx, "remove")
	s.mu.Unlock()

	s.observers.notify(items)
}

// IsInWishlist reports whether productID is in the wishlist.
func (s *WishlistStore) IsInWishlist(productID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.indexLocked(productID) >= 0
}

// ClearWishlist empties the wishlist and deletes the persisted snapshot.
func (s *WishlistStore) ClearWishlist(ctx context.Context) {
	s.mu.Lock()
	s.items = []domain.Product{}
	s.kv.Clear(ctx, kvstore.KeyWishlist)
	s.record("clear")
	s.mu.Unlock()

	s.observers.notify([]domain.Product{})
}

// LoadWishlist restores the persisted list. An absent or unreadable snapshot
// leaves the state unchanged.
func (s *WishlistStore) LoadWishlist(ctx context.Context) {
	var saved []domain.Product
	if !s.kv.Load(ctx, kvstore.KeyWishlist, &saved) {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = dedupe(saved)
	metrics.WishlistItems.Set(float64(len(s.items)))
}

// SetWishlistDirect replaces the wishlist with server state and persists it
// without notifying observers. Duplicate ids keep their first occurrence.
func (s *WishlistStore) SetWishlistDirect(ctx context.Context, products []domain.Product) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.items = dedupe(products)
	s.kv.Save(ctx, kvstore.KeyWishlist, s.items)
	s.record("set_direct")
}

// SetWishlistChangeCallback installs the primary observer, replacing any
// previous one. A nil fn removes it.
func (s *WishlistStore) SetWishlistChangeCallback(fn WishlistObserver) {
	s.observers.setPrimary(fn)
}

// Subscribe adds an observer and returns a function that removes it.
func (s *WishlistStore) Subscribe(fn WishlistObserver) (unsubscribe func()) {
	return s.observers.subscribe(fn)
}

// Items returns a copy of the wishlist in insertion order.
func (s *WishlistStore) Items() []domain.Product {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.items)
}

// Count returns the number of products in the wishlist.
func (s *WishlistStore) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

func (s *WishlistStore) indexLocked(productID string) int {
	return slices.IndexFunc(s.items, func(p domain.Product) bool { return p.ID == productID })
}

func (s *WishlistStore) commitLocked(ctx context.Context, op string) []domain.Product {
	s.kv.Save(ctx, kvstore.KeyWishlist, s.items)
	s.record(op)
	return slices.Clone(s.items)
}

func (s *WishlistStore) record(op string) {
	metrics.StoreMutations.WithLabelValues("wishlist", op).Inc()
	metrics.WishlistItems.Set(float64(len(s.items)))
}

func dedupe(products []domain.Product) []domain.Product {
	out := make([]domain.Product, 0, len(products))
	seen := make(map[string]struct{}, len(products))
	for _, p := range products {
		if _, ok := seen[p.ID]; ok {
			continue
		}
		seen[p.ID] = struct{}{}
		out = append(out, p)
	}
	return out
}
