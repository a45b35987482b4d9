package domain

// WireCartItem is the compact cart line exchanged with the backend. Variant
// selections travel as a VariantKey string.
type WireCartItem struct {
	ProductID  string `json:"productId" validate:"required"`
	Quantity   int    `json:"quantity" validate:"gte=1"`
	VariantKey string `json:"variantKey"`
}

// WireCart is the body of GET/PUT /users/{id}/cart.
type WireCart struct {
	Items []WireCartItem `json:"items" validate:"dive"`
}

// WireWishlist is the body of GET/PUT /users/{id}/wishlist.
type WireWishlist struct {
	ProductIDs []string `json:"productIds" validate:"dive,required"`
}

// ToWire converts cart items to their wire form.
func ToWire(items []CartItem) []WireCartItem {
	out := make([]WireCartItem, 0, len(items))
	for _, it := range items {
		out = append(out, WireCartItem{
			ProductID:  it.Product.ID,
			Quantity:   it.Quantity,
			VariantKey: VariantKey(it.SelectedVariants),
		})
	}
	return out
}

// ProductIDs lists the ids of products in order.
func ProductIDs(products []Product) []string {
	ids := make([]string, 0, len(products))
	for _, p := range products {
		ids = append(ids, p.ID)
	}
	return ids
}
