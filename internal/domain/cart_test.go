package domain

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func item(id string, price string, qty int) CartItem {
	return CartItem{
		ID:               ItemID(id, nil),
		Product:          Product{ID: id, Price: decimal.RequireFromString(price)},
		Quantity:         qty,
		SelectedVariants: map[string]string{},
		DateAdded:        time.Unix(0, 0).UTC(),
	}
}

func TestNewCart_ComputesTotals(t *testing.T) {
	c := NewCart([]CartItem{item("a", "10", 3), item("b", "2.50", 2)})

	assert.Equal(t, 5, c.TotalItems)
	assert.True(t, decimal.RequireFromString("35").Equal(c.TotalPrice), c.TotalPrice.String())
}

func TestRecompute_IgnoresOriginalPrice(t *testing.T) {
	it := item("a", "8", 1)
	it.Product.OriginalPrice = Price("10")

	c := NewCart([]CartItem{it})
	assert.Equal(t, "8", c.TotalPrice.String())
}

func TestNewCart_EmptyHasNonNilItems(t *testing.T) {
	c := NewCart(nil)
	assert.NotNil(t, c.Items)
	assert.Equal(t, 0, c.TotalItems)
	assert.True(t, c.TotalPrice.IsZero())
}

func TestCart_CloneIsIndependent(t *testing.T) {
	it := item("a", "1", 1)
	it.SelectedVariants["size"] = "M"
	c := NewCart([]CartItem{it})

	cp := c.Clone()
	cp.Items[0].Quantity = 9
	cp.Items[0].SelectedVariants["size"] = "L"

	assert.Equal(t, 1, c.Items[0].Quantity)
	assert.Equal(t, "M", c.Items[0].SelectedVariants["size"])
}

func TestCart_Index(t *testing.T) {
	c := NewCart([]CartItem{item("a", "1", 1), item("b", "1", 1)})
	assert.Equal(t, 1, c.Index("b_"))
	assert.Equal(t, -1, c.Index("zzz"))
}

func TestToWire(t *testing.T) {
	it := item("p1", "20", 2)
	it.SelectedVariants = map[string]string{"size": "M", "color": "red"}

	wire := ToWire([]CartItem{it})
	require.Len(t, wire, 1)
	assert.Equal(t, WireCartItem{ProductID: "p1", Quantity: 2, VariantKey: "color:red|size:M"}, wire[0])
}

func TestProductSections(t *testing.T) {
	products := make([]Product, 14)
	for i := range products {
		products[i] = Product{ID: string(rune('a' + i))}
	}

	sections := ProductSections(products)
	require.Len(t, sections, 3)
	assert.Equal(t, "new-arrivals", sections[0].Key)
	assert.Len(t, sections[0].Products, 6)
	assert.Equal(t, "popular", sections[1].Key)
	assert.Len(t, sections[1].Products, 6)
	assert.Equal(t, "trending", sections[2].Key)
	assert.Len(t, sections[2].Products, 2)

	assert.Empty(t, ProductSections(nil))
	assert.Len(t, ProductSections(products[:6]), 1)
}

func TestProductFilters_Validate(t *testing.T) {
	assert.NoError(t, ProductFilters{}.Validate())
	assert.NoError(t, ProductFilters{MinPrice: Price("5"), MaxPrice: Price("50"), Sort: SortRating}.Validate())

	assert.Error(t, ProductFilters{Sort: "cheapest"}.Validate())
	assert.Error(t, ProductFilters{MinPrice: Price("-1")}.Validate())
	assert.Error(t, ProductFilters{MinPrice: Price("50"), MaxPrice: Price("5")}.Validate())
}

func TestProduct_PriceEncodesAsNumber(t *testing.T) {
	b, err := Product{ID: "p", Price: decimal.RequireFromString("9.99")}.Price.MarshalJSON()
	require.NoError(t, err)
	assert.Equal(t, "9.99", string(b))
}
