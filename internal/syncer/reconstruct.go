package syncer

import (
	"context"
	"log/slog"
	"time"

	"github.com/utafrali/storefront/internal/domain"
	"github.com/utafrali/storefront/pkg/logger"
)

// ProductLookup resolves a product id. A nil product with a nil error means
// the product does not exist.
type ProductLookup interface {
	GetProductByID(ctx context.Context, id string) (*domain.Product, error)
}

// Reconstruct rebuilds cart lines from their wire form. Lines whose product
// cannot be resolved are skipped. Ids are recomputed from the parsed variant
// selection and DateAdded is the reconstruction time. Lines that resolve to
// the same identity are merged.
func Reconstruct(ctx context.Context, lookup ProductLookup, wire []domain.WireCartItem) []domain.CartItem {
	return reconstructAt(ctx, lookup, wire, time.Now())
}

func reconstructAt(ctx context.Context, lookup ProductLookup, wire []domain.WireCartItem, now time.Time) []domain.CartItem {
	l := logger.FromContext(ctx)
	items := make([]domain.CartItem, 0, len(wire))
	index := make(map[string]int, len(wire))

	for _, w := range wire {
		if w.Quantity <= 0 {
			l.WarnContext(ctx, "skipping cart line with non-positive quantity",
				slog.String("product_id", w.ProductID),
				slog.Int("quantity", w.Quantity),
			)
			continue
		}

		p, ok := resolve(ctx, lookup, w.ProductID)
		if !ok {
			continue
		}

		selected := domain.ParseVariantKey(w.VariantKey)
		id := domain.ItemID(p.ID, selected)
		if i, dup := index[id]; dup {
			items[i].Quantity += w.Quantity
			continue
		}
		index[id] = len(items)
		items = append(items, domain.CartItem{
			ID:               id,
			Product:          *p,
			Quantity:         w.Quantity,
			SelectedVariants: selected,
			DateAdded:        now,
		})
	}
	return items
}

// ResolveProducts looks up ids in order, skipping those that cannot be
// resolved.
func ResolveProducts(ctx context.Context, lookup ProductLookup, ids []string) []domain.Product {
	products := make([]domain.Product, 0, len(ids))
	for _, id := range ids {
		if p, ok := resolve(ctx, lookup, id); ok {
			products = append(products, *p)
		}
	}
	return products
}

func resolve(ctx context.Context, lookup ProductLookup, id string) (*domain.Product, bool) {
	p, err := lookup.GetProductByID(ctx, id)
	if err != nil {
		logger.FromContext(ctx).WarnContext(ctx, "skipping unresolvable product",
			slog.String("product_id", id),
			slog.String("error", err.Error()),
		)
		return nil, false
	}
	if p == nil {
		logger.FromContext(ctx).WarnContext(ctx, "skipping unknown product",
			slog.String("product_id", id),
		)
		return nil, false
	}
	return p, true
}
