package domain

import (
	"strings"

	"github.com/shopspring/decimal"

	apperrors "github.com/utafrali/storefront/pkg/errors"
	"github.com/utafrali/storefront/pkg/validator"
)

// SortKey orders product listings on the backend.
type SortKey string

// Empty sort means relevance when searching and name otherwise.
const (
	SortDefault   SortKey = ""
	SortPriceAsc  SortKey = "price_asc"
	SortPriceDesc SortKey = "price_desc"
	SortName      SortKey = "name"
	SortRating    SortKey = "rating"
	SortNewest    SortKey = "newest"
)

// ProductFilters narrows a product listing. Zero values mean "no constraint".
type ProductFilters struct {
	Search      string           `json:"search,omitempty"`
	Category    string           `json:"category,omitempty"`
	Subcategory string           `json:"subcategory,omitempty"`
	MinPrice    *decimal.Decimal `json:"minPrice,omitempty" validate:"omitempty,gte=0"`
	MaxPrice    *decimal.Decimal `json:"maxPrice,omitempty" validate:"omitempty,gte=0"`
	Sort        SortKey          `json:"sort,omitempty" validate:"omitempty,oneof=price_asc price_desc name rating newest"`
}

// Validate checks bounds and the sort key.
func (f ProductFilters) Validate() error {
	if err := validator.Validate(f); err != nil {
		return apperrors.InvalidInput(err.Error())
	}
	if f.MinPrice != nil && f.MaxPrice != nil && f.MaxPrice.LessThan(*f.MinPrice) {
		return apperrors.InvalidInput("maxPrice must not be below minPrice")
	}
	return nil
}

// Normalized returns f with a trimmed search term.
func (f ProductFilters) Normalized() ProductFilters {
	f.Search = strings.TrimSpace(f.Search)
	return f
}

// Price is a convenience for building filter bounds.
func Price(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}
