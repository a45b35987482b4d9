package search

import (
	"context"

	"github.com/utafrali/storefront/internal/domain"
	apperrors "github.com/utafrali/storefront/pkg/errors"
	"github.com/utafrali/storefront/pkg/pagination"
	"github.com/utafrali/storefront/pkg/slug"
)

// ProductLister pages products on the backend.
type ProductLister interface {
	GetProductsPaged(ctx context.Context, filters domain.ProductFilters, page, pageSize int) (domain.ProductPage, error)
}

// CategoryLister returns the full category list.
type CategoryLister interface {
	GetCategories(ctx context.Context) ([]domain.Category, error)
}

// ProductFetcher pages products on the server with the query merged into
// the filters.
func ProductFetcher(api ProductLister) Fetcher[domain.Product] {
	return func(ctx context.Context, q Query, page, pageSize int) (Page[domain.Product], error) {
		res, err := api.GetProductsPaged(ctx, q.Filters, page, pageSize)
		if err != nil {
			return Page[domain.Product]{}, err
		}
		return Page[domain.Product]{Items: res.Items, Total: res.Total}, nil
	}
}

// CategoryFetcher loads every category, keeps those whose name or slug
// contains the query and returns the requested page of the matches.
func CategoryFetcher(api CategoryLister) Fetcher[domain.Category] {
	return func(ctx context.Context, q Query, page, pageSize int) (Page[domain.Category], error) {
		all, err := api.GetCategories(ctx)
		if err != nil {
			return Page[domain.Category]{}, err
		}

		matched := make([]domain.Category, 0, len(all))
		for _, c := range all {
			if slug.Matches(c.Name, c.Slug, q.Text) {
				matched = append(matched, c)
			}
		}

		start, end := pagination.Window(page, pageSize, len(matched))
		return Page[domain.Category]{Items: matched[start:end], Total: len(matched)}, nil
	}
}

// ProductKey identifies products by id.
func ProductKey(p domain.Product) string { return p.ID }

// CategoryKey identifies categories by slug.
func CategoryKey(c domain.Category) string { return c.Slug }

// NewProductController builds a controller over server-side product paging.
func NewProductController(api ProductLister, cfg Config) *Controller[domain.Product] {
	return NewController(ProductFetcher(api), ProductKey, cfg)
}

// NewCategoryController builds a controller over client-side category
// filtering.
func NewCategoryController(api CategoryLister, cfg Config) *Controller[domain.Category] {
	if cfg.ErrorContext == "" {
		cfg.ErrorContext = apperrors.ContextCategoryFetch
	}
	return NewController(CategoryFetcher(api), CategoryKey, cfg)
}
