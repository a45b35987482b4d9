package domain

import (
	"maps"
	"slices"
	"time"

	"github.com/shopspring/decimal"
)

// CartItem is one cart line. ID always equals ItemID(Product.ID, SelectedVariants).
type CartItem struct {
	ID               string            `json:"id"`
	Product          Product           `json:"product"`
	Quantity         int               `json:"quantity"`
	SelectedVariants map[string]string `json:"selectedVariants"`
	DateAdded        time.Time         `json:"dateAdded"`
}

// Clone returns a copy that shares no maps or slices with it.
func (i CartItem) Clone() CartItem {
	i.SelectedVariants = maps.Clone(i.SelectedVariants)
	if i.SelectedVariants == nil {
		i.SelectedVariants = map[string]string{}
	}
	i.Product.Variants = slices.Clone(i.Product.Variants)
	i.Product.Images = slices.Clone(i.Product.Images)
	return i
}

// Cart is the persisted cart snapshot.
type Cart struct {
	Items      []CartItem      `json:"items"`
	TotalItems int             `json:"totalItems"`
	TotalPrice decimal.Decimal `json:"totalPrice"`
}

// NewCart builds a cart from items with totals computed from scratch.
func NewCart(items []CartItem) Cart {
	c := Cart{Items: items}
	c.Recompute()
	return c
}

// Recompute sets TotalItems to the sum of quantities and TotalPrice to the sum
// of quantity times current unit price. OriginalPrice is never used.
func (c *Cart) Recompute() {
	if c.Items == nil {
		c.Items = []CartItem{}
	}

	total := 0
	price := decimal.Zero
	for _, it := range c.Items {
		total += it.Quantity
		price = price.Add(it.Product.Price.Mul(decimal.NewFromInt(int64(it.Quantity))))
	}
	c.TotalItems = total
	c.TotalPrice = price
}

// Clone deep-copies the cart.
func (c Cart) Clone() Cart {
	items := make([]CartItem, len(c.Items))
	for i, it := range c.Items {
		items[i] = it.Clone()
	}
	c.Items = items
	return c
}

// Index returns the position of the item with id, or -1.
func (c Cart) Index(id string) int {
	return slices.IndexFunc(c.Items, func(it CartItem) bool { return it.ID == id })
}
