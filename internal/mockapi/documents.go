package mockapi

import (
	"slices"
	"sync"

	"github.com/utafrali/storefront/internal/domain"
)

// Documents holds per-user cart and wishlist documents.
type Documents struct {
	mu        sync.RWMutex
	carts     map[string][]domain.WireCartItem
	wishlists map[string][]string
}

// NewDocuments creates an empty document set.
func NewDocuments() *Documents {
	return &Documents{
		carts:     make(map[string][]domain.WireCartItem),
		wishlists: make(map[string][]string),
	}
}

// Cart returns the user's cart and whether one was ever stored.
func (d *Documents) Cart(userID string) ([]domain.WireCartItem, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	items, ok := d.carts[userID]
	return slices.Clone(items), ok
}

// PutCart replaces the user's cart.
func (d *Documents) PutCart(userID string, items []domain.WireCartItem) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.carts[userID] = slices.Clone(items)
}

// Wishlist returns the user's wishlist and whether one was ever stored.
func (d *Documents) Wishlist(userID string) ([]string, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	ids, ok := d.wishlists[userID]
	return slices.Clone(ids), ok
}

// PutWishlist replaces the user's wishlist.
func (d *Documents) PutWishlist(userID string, ids []string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.wishlists[userID] = slices.Clone(ids)
}
