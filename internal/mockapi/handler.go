package mockapi

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/utafrali/storefront/internal/domain"
	apperrors "github.com/utafrali/storefront/pkg/errors"
	"github.com/utafrali/storefront/pkg/httputil"
	"github.com/utafrali/storefront/pkg/pagination"
	"github.com/utafrali/storefront/pkg/validator"
)

// Handler serves the backend contract.
type Handler struct {
	catalog *Catalog
	docs    *Documents
	logger  *slog.Logger
}

// NewHandler creates a handler over catalog and docs.
func NewHandler(catalog *Catalog, docs *Documents, logger *slog.Logger) *Handler {
	return &Handler{catalog: catalog, docs: docs, logger: logger}
}

// ListProducts handles GET /products
func (h *Handler) ListProducts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filters := domain.ProductFilters{
		Search:      q.Get("search"),
		Category:    q.Get("category"),
		Subcategory: q.Get("subcategory"),
		Sort:        domain.SortKey(q.Get("sort")),
	}

	var err error
	if filters.MinPrice, err = parsePrice(q.Get("minPrice")); err != nil {
		httputil.WriteError(w, r, apperrors.InvalidInput("minPrice must be a number"), h.logger)
		return
	}
	if filters.MaxPrice, err = parsePrice(q.Get("maxPrice")); err != nil {
		httputil.WriteError(w, r, apperrors.InvalidInput("maxPrice must be a number"), h.logger)
		return
	}
	if err := filters.Validate(); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	params := pagination.FromRequest(r)
	page := h.catalog.Products(filters, params.Page, params.PageSize)
	httputil.WriteData(w, http.StatusOK, page)
}

// GetProduct handles GET /products/{id}
func (h *Handler) GetProduct(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	p, ok := h.catalog.Product(id)
	if !ok {
		httputil.WriteError(w, r, apperrors.NotFound("product", id), h.logger)
		return
	}
	httputil.WriteData(w, http.StatusOK, p)
}

// ListCategories handles GET /categories
func (h *Handler) ListCategories(w http.ResponseWriter, r *http.Request) {
	httputil.WriteData(w, http.StatusOK, h.catalog.Categories())
}

// ListSubcategories handles GET /categories/{slug}/subcategories
func (h *Handler) ListSubcategories(w http.ResponseWriter, r *http.Request) {
	httputil.WriteData(w, http.StatusOK, h.catalog.Subcategories(chi.URLParam(r, "slug")))
}

// GetCart handles GET /users/{id}/cart
func (h *Handler) GetCart(w http.ResponseWriter, r *http.Request) {
	items, ok := h.docs.Cart(chi.URLParam(r, "id"))
	if !ok {
		items = []domain.WireCartItem{}
	}
	httputil.WriteData(w, http.StatusOK, domain.WireCart{Items: nonNil(items)})
}

// PutCart handles PUT /users/{id}/cart
func (h *Handler) PutCart(w http.ResponseWriter, r *http.Request) {
	var doc domain.WireCart
	if err := decode(r, &doc); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	userID := chi.URLParam(r, "id")
	h.docs.PutCart(userID, doc.Items)
	h.logger.InfoContext(r.Context(), "cart stored",
		slog.String("user_id", userID),
		slog.Int("lines", len(doc.Items)),
	)
	w.WriteHeader(http.StatusNoContent)
}

// GetWishlist handles GET /users/{id}/wishlist
func (h *Handler) GetWishlist(w http.ResponseWriter, r *http.Request) {
	ids, _ := h.docs.Wishlist(chi.URLParam(r, "id"))
	httputil.WriteData(w, http.StatusOK, domain.WireWishlist{ProductIDs: nonNil(ids)})
}

// PutWishlist handles PUT /users/{id}/wishlist
func (h *Handler) PutWishlist(w http.ResponseWriter, r *http.Request) {
	var doc domain.WireWishlist
	if err := decode(r, &doc); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	userID := chi.URLParam(r, "id")
	h.docs.PutWishlist(userID, doc.ProductIDs)
	h.logger.InfoContext(r.Context(), "wishlist stored",
		slog.String("user_id", userID),
		slog.Int("products", len(doc.ProductIDs)),
	)
	w.WriteHeader(http.StatusNoContent)
}

// decode reports malformed bodies as invalid input and keeps field-level
// validation errors intact.
func decode(r *http.Request, dst any) error {
	err := validator.DecodeAndValidate(r, dst)
	var valErr *validator.ValidationError
	if err == nil || errors.As(err, &valErr) {
		return err
	}
	return apperrors.InvalidInput("malformed JSON body")
}

func parsePrice(s string) (*decimal.Decimal, error) {
	if s == "" {
		return nil, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
