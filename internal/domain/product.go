package domain

import (
	"github.com/shopspring/decimal"
)

func init() {
	// The backend contract carries prices as JSON numbers.
	decimal.MarshalJSONWithoutQuotes = true
}

// Variant is a selectable product option such as size or color.
type Variant struct {
	ID     string   `json:"id"`
	Name   string   `json:"name"`
	Values []string `json:"values"`
}

// Product is a catalog entry. The engine only relies on ID and Price; the
// remaining fields are carried through for display.
type Product struct {
	ID              string           `json:"id"`
	Name            string           `json:"name"`
	Description     string           `json:"description,omitempty"`
	Price           decimal.Decimal  `json:"price"`
	OriginalPrice   *decimal.Decimal `json:"originalPrice,omitempty"`
	Discount        *int             `json:"discount,omitempty"`
	Variants        []Variant        `json:"variants,omitempty"`
	Images          []string         `json:"images,omitempty"`
	CategorySlug    string           `json:"categorySlug,omitempty"`
	SubcategorySlug string           `json:"subcategorySlug,omitempty"`
	Rating          float64          `json:"rating,omitempty"`
	Stock           int              `json:"stock,omitempty"`
}

// Category is a node of the catalog tree. Subcategories carry ParentSlug.
type Category struct {
	Name       string `json:"name"`
	Slug       string `json:"slug"`
	ImageURL   string `json:"imageUrl,omitempty"`
	ParentSlug string `json:"parentSlug,omitempty"`
}

// ProductPage is one page of a product listing plus the total match count.
type ProductPage struct {
	Items []Product `json:"items"`
	Total int       `json:"total"`
}
