// Package mockapi is an in-memory implementation of the storefront backend
// contract used for local development and end-to-end tests.
package mockapi

import (
	"cmp"
	"fmt"
	"slices"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/utafrali/storefront/internal/domain"
	"github.com/utafrali/storefront/pkg/pagination"
	"github.com/utafrali/storefront/pkg/slug"
)

type entry struct {
	seq         int
	product     domain.Product
	category    string
	subcategory string
}

// Catalog is a read-only product and category set.
type Catalog struct {
	entries       []entry
	byID          map[string]int
	categories    []domain.Category
	subcategories []domain.Category
}

// NewCatalog builds a catalog. Products refer to categories by slug; category
// names are resolved for search.
func NewCatalog(categories []domain.Category, products []domain.Product) *Catalog {
	c := &Catalog{byID: make(map[string]int, len(products))}

	names := make(map[string]string, len(categories))
	for _, cat := range categories {
		names[cat.Slug] = cat.Name
		if cat.ParentSlug == "" {
			c.categories = append(c.categories, cat)
		} else {
			c.subcategories = append(c.subcategories, cat)
		}
	}

	for i, p := range products {
		c.byID[p.ID] = len(c.entries)
		c.entries = append(c.entries, entry{
			seq:         i + 1,
			product:     p,
			category:    names[p.CategorySlug],
			subcategory: names[p.SubcategorySlug],
		})
	}
	return c
}

var seedTree = []struct {
	name string
	subs []string
}{
	{"Clothing", []string{"T-Shirts", "Jackets", "Jeans"}},
	{"Shoes", []string{"Sneakers", "Boots"}},
	{"Accessories", []string{"Bags", "Hats", "Watches"}},
	{"Home & Living", []string{"Kitchen", "Décor"}},
}

var seedAdjectives = []string{"Classic", "Urban", "Vintage", "Sport", "Essential", "Premium"}

// SeedCatalog generates n deterministic products spread over a fixed
// category tree. Apparel gets size and color variants.
func SeedCatalog(n int) *Catalog {
	var categories []domain.Category
	type leaf struct{ parent, slug, name string }
	var leaves []leaf

	for _, top := range seedTree {
		topSlug := slug.Generate(top.name)
		categories = append(categories, domain.Category{Name: top.name, Slug: topSlug})
		for _, sub := range top.subs {
			subSlug := slug.Generate(sub)
			categories = append(categories, domain.Category{Name: sub, Slug: subSlug, ParentSlug: topSlug})
			leaves = append(leaves, leaf{parent: topSlug, slug: subSlug, name: sub})
		}
	}

	products := make([]domain.Product, 0, n)
	for i := 0; i < n; i++ {
		lf := leaves[i%len(leaves)]
		adj := seedAdjectives[(i/len(leaves))%len(seedAdjectives)]
		name := fmt.Sprintf("%s %s %d", adj, strings.TrimSuffix(lf.name, "s"), i+1)

		price := decimal.NewFromInt(int64(10 + (i*37)%190)).Add(decimal.RequireFromString("0.99"))
		p := domain.Product{
			ID:              fmt.Sprintf("prod-%03d", i+1),
			Name:            name,
			Description:     fmt.Sprintf("%s from our %s collection.", name, lf.name),
			Price:           price,
			CategorySlug:    lf.parent,
			SubcategorySlug: lf.slug,
			Rating:          float64(30+(i*7)%21) / 10,
			Stock:           (i * 13) % 50,
			Images:          []string{fmt.Sprintf("https://img.example.com/%s.jpg", slug.Generate(name))},
		}
		if i%4 == 0 {
			original := price.Mul(decimal.RequireFromString("1.25")).Round(2)
			discount := 20
			p.OriginalPrice = &original
			p.Discount = &discount
		}
		if lf.parent == "clothing" || lf.parent == "shoes" {
			p.Variants = []domain.Variant{
				{ID: "size", Name: "Size", Values: []string{"S", "M", "L", "XL"}},
				{ID: "color", Name: "Color", Values: []string{"black", "white", "navy"}},
			}
		}
		products = append(products, p)
	}

	return NewCatalog(categories, products)
}

// Product returns the product with id.
func (c *Catalog) Product(id string) (domain.Product, bool) {
	i, ok := c.byID[id]
	if !ok {
		return domain.Product{}, false
	}
	return c.entries[i].product, true
}

// Categories returns the top-level categories.
func (c *Catalog) Categories() []domain.Category {
	return slices.Clone(c.categories)
}

// Subcategories returns the children of parent.
func (c *Catalog) Subcategories(parent string) []domain.Category {
	out := []domain.Category{}
	for _, s := range c.subcategories {
		if s.ParentSlug == parent {
			out = append(out, s)
		}
	}
	return out
}

// Products filters, orders and pages the catalog.
func (c *Catalog) Products(f domain.ProductFilters, page, pageSize int) domain.ProductPage {
	term := strings.ToLower(strings.TrimSpace(f.Search))

	matched := make([]entry, 0, len(c.entries))
	for _, e := range c.entries {
		if f.Category != "" && e.product.CategorySlug != f.Category {
			continue
		}
		if f.Subcategory != "" && e.product.SubcategorySlug != f.Subcategory {
			continue
		}
		if f.MinPrice != nil && e.product.Price.LessThan(*f.MinPrice) {
			continue
		}
		if f.MaxPrice != nil && e.product.Price.GreaterThan(*f.MaxPrice) {
			continue
		}
		if term != "" && relevance(e, term) == 0 {
			continue
		}
		matched = append(matched, e)
	}

	sortEntries(matched, f.Sort, term)

	start, end := pagination.Window(page, pageSize, len(matched))
	items := make([]domain.Product, 0, end-start)
	for _, e := range matched[start:end] {
		items = append(items, e.product)
	}
	return domain.ProductPage{Items: items, Total: len(matched)}
}

// relevance ranks the best field term occurs in: name 4, category 3,
// subcategory 2, description 1, none 0.
func relevance(e entry, term string) int {
	has := func(s string) bool { return strings.Contains(strings.ToLower(s), term) }
	switch {
	case has(e.product.Name):
		return 4
	case has(e.category):
		return 3
	case e.subcategory != "" && has(e.subcategory):
		return 2
	case has(e.product.Description):
		return 1
	default:
		return 0
	}
}

func sortEntries(es []entry, sort domain.SortKey, term string) {
	byName := func(a, b entry) int { return cmp.Compare(a.product.Name, b.product.Name) }

	switch sort {
	case domain.SortPriceAsc:
		slices.SortStableFunc(es, func(a, b entry) int { return a.product.Price.Cmp(b.product.Price) })
	case domain.SortPriceDesc:
		slices.SortStableFunc(es, func(a, b entry) int { return b.product.Price.Cmp(a.product.Price) })
	case domain.SortRating:
		slices.SortStableFunc(es, func(a, b entry) int {
			return cmp.Or(cmp.Compare(b.product.Rating, a.product.Rating), byName(a, b))
		})
	case domain.SortNewest:
		slices.SortStableFunc(es, func(a, b entry) int { return cmp.Compare(b.seq, a.seq) })
	case domain.SortName:
		slices.SortStableFunc(es, byName)
	default:
		if term == "" {
			slices.SortStableFunc(es, byName)
			return
		}
		slices.SortStableFunc(es, func(a, b entry) int {
			return cmp.Or(cmp.Compare(relevance(b, term), relevance(a, term)), byName(a, b))
		})
	}
}
