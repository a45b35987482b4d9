// Package api is the HTTP client for the storefront backend: catalog reads
// and per-user cart and wishlist documents.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	"github.com/utafrali/storefront/internal/auth"
	"github.com/utafrali/storefront/internal/domain"
	"github.com/utafrali/storefront/internal/metrics"
	apperrors "github.com/utafrali/storefront/pkg/errors"
	"github.com/utafrali/storefront/pkg/httpclient"
	"github.com/utafrali/storefront/pkg/logger"
	"github.com/utafrali/storefront/pkg/middleware"
	"github.com/utafrali/storefront/pkg/tracing"
	"github.com/utafrali/storefront/pkg/validator"
)

const serviceName = "storefront-api"

// HTTPDoer executes HTTP requests.
// Both httpclient.Client and httpclient.CircuitBreakerClient satisfy this.
type HTTPDoer interface {
	Do(ctx context.Context, req *http.Request) (*http.Response, error)
}

// CircuitOpenFallback answers with a retry hint while the breaker is open.
func CircuitOpenFallback(_ context.Context, _ error) (*http.Response, error) {
	return nil, apperrors.Unavailable("storefront backend is temporarily unavailable, please retry shortly")
}

// Client talks to the backend over HTTP.
type Client struct {
	baseURL string
	http    HTTPDoer
	auth    auth.Provider
	logger  *slog.Logger
	tracer  trace.Tracer
}

// New creates a client for baseURL. A nil provider sends no credentials.
func New(baseURL string, doer HTTPDoer, provider auth.Provider, l *slog.Logger) *Client {
	if provider == nil {
		provider = auth.Anonymous{}
	}
	if l == nil {
		l = logger.Nop()
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    doer,
		auth:    provider,
		logger:  logger.Component(l, "api"),
		tracer:  tracing.Tracer("storefront/api"),
	}
}

// NewWithBreaker builds the production client: retrying transport behind a
// circuit breaker with the open-circuit fallback.
func NewWithBreaker(baseURL string, httpCfg httpclient.Config, provider auth.Provider, l *slog.Logger) *Client {
	if l == nil {
		l = logger.Nop()
	}
	breaker := httpclient.NewCircuitBreakerClient(
		httpclient.New(httpCfg),
		httpclient.DefaultCircuitBreakerConfig(serviceName),
		l,
	).WithFallback(CircuitOpenFallback)
	return New(baseURL, breaker, provider, l)
}

// GetProductByID returns the product with id, or nil when the backend does
// not know it.
func (c *Client) GetProductByID(ctx context.Context, id string) (*domain.Product, error) {
	var p domain.Product
	err := c.do(ctx, "product", http.MethodGet, "/products/"+url.PathEscape(id), nil, nil, &p)
	if errors.Is(err, apperrors.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// GetProductsPaged returns one page of products matching filters.
func (c *Client) GetProductsPaged(ctx context.Context, filters domain.ProductFilters, page, pageSize int) (domain.ProductPage, error) {
	q := url.Values{}
	setIf(q, "search", filters.Search)
	setIf(q, "category", filters.Category)
	setIf(q, "subcategory", filters.Subcategory)
	if filters.MinPrice != nil {
		q.Set("minPrice", filters.MinPrice.String())
	}
	if filters.MaxPrice != nil {
		q.Set("maxPrice", filters.MaxPrice.String())
	}
	setIf(q, "sort", string(filters.Sort))
	q.Set("page", strconv.Itoa(page))
	q.Set("pageSize", strconv.Itoa(pageSize))

	var res domain.ProductPage
	if err := c.do(ctx, "products", http.MethodGet, "/products", q, nil, &res); err != nil {
		return domain.ProductPage{}, err
	}
	if res.Items == nil {
		res.Items = []domain.Product{}
	}
	return res, nil
}

// GetCategories returns every top-level category.
func (c *Client) GetCategories(ctx context.Context) ([]domain.Category, error) {
	var cats []domain.Category
	if err := c.do(ctx, "categories", http.MethodGet, "/categories", nil, nil, &cats); err != nil {
		return nil, err
	}
	return nonNil(cats), nil
}

// GetSubcategories returns the children of parentSlug.
func (c *Client) GetSubcategories(ctx context.Context, parentSlug string) ([]domain.Category, error) {
	var cats []domain.Category
	path := "/categories/" + url.PathEscape(parentSlug) + "/subcategories"
	if err := c.do(ctx, "subcategories", http.MethodGet, path, nil, nil, &cats); err != nil {
		return nil, err
	}
	return nonNil(cats), nil
}

// FetchCart returns the user's remote cart. A user without a cart document
// has an empty cart.
func (c *Client) FetchCart(ctx context.Context, userID string) ([]domain.WireCartItem, error) {
	var doc domain.WireCart
	err := c.do(ctx, "cart", http.MethodGet, userPath(userID, "cart"), nil, nil, &doc)
	if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
		return nil, err
	}
	return nonNil(doc.Items), nil
}

// SyncCart replaces the user's remote cart with items.
func (c *Client) SyncCart(ctx context.Context, userID string, items []domain.WireCartItem) error {
	doc := domain.WireCart{Items: nonNil(items)}
	if err := validator.Validate(doc); err != nil {
		return apperrors.InvalidInput(err.Error())
	}
	return c.do(ctx, "cart_sync", http.MethodPut, userPath(userID, "cart"), nil, doc, nil)
}

// FetchWishlist returns the product ids in the user's remote wishlist.
func (c *Client) FetchWishlist(ctx context.Context, userID string) ([]string, error) {
	var doc domain.WireWishlist
	err := c.do(ctx, "wishlist", http.MethodGet, userPath(userID, "wishlist"), nil, nil, &doc)
	if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
		return nil, err
	}
	return nonNil(doc.ProductIDs), nil
}

// SyncWishlist replaces the user's remote wishlist with productIDs.
func (c *Client) SyncWishlist(ctx context.Context, userID string, productIDs []string) error {
	doc := domain.WireWishlist{ProductIDs: nonNil(productIDs)}
	if err := validator.Validate(doc); err != nil {
		return apperrors.InvalidInput(err.Error())
	}
	return c.do(ctx, "wishlist_sync", http.MethodPut, userPath(userID, "wishlist"), nil, doc, nil)
}

// Health pings the backend.
func (c *Client) Health(ctx context.Context) error {
	return c.do(ctx, "health", http.MethodGet, "/health", nil, nil, nil)
}

// do sends one request and decodes the (optionally data-wrapped) response
// body into out. Non-2xx responses become AppErrors.
func (c *Client) do(ctx context.Context, resource, method, path string, query url.Values, body, out any) (err error) {
	ctx, span := c.tracer.Start(ctx, "api."+resource, trace.WithSpanKind(trace.SpanKindClient))
	start := time.Now()
	defer func() {
		metrics.Fetches.WithLabelValues(resource, metrics.Outcome(err)).Inc()
		metrics.FetchDuration.WithLabelValues(resource).Observe(time.Since(start).Seconds())
		tracing.End(span, err)
	}()

	req, err := c.newRequest(ctx, method, path, query, body)
	if err != nil {
		return err
	}

	c.logger.DebugContext(ctx, "backend request",
		slog.String("method", method),
		slog.String("path", path),
	)

	resp, err := c.http.Do(ctx, req)
	if err != nil {
		return httpclient.FromTransportError(fmt.Errorf("call %s: %w", resource, err), serviceName)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return httpclient.ParseResponseError(resp, serviceName)
	}
	defer resp.Body.Close()

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read %s response: %w", resource, err)
	}
	if err := json.Unmarshal(unwrapData(raw), out); err != nil {
		return fmt.Errorf("decode %s response: %w", resource, err)
	}
	return nil
}

func (c *Client) newRequest(ctx context.Context, method, path string, query url.Values, body any) (*http.Request, error) {
	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	var reader io.Reader = http.NoBody
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	correlationID := logger.CorrelationIDFromContext(ctx)
	if correlationID == "" {
		correlationID = uuid.NewString()
	}
	req.Header.Set(middleware.CorrelationHeader, correlationID)

	if _, ok := c.auth.CurrentUser(); ok {
		token, err := c.auth.IDToken(ctx)
		if err != nil {
			return nil, apperrors.Classify(err, apperrors.ContextUserAuth, apperrors.SeverityHigh)
		}
		req.Header.Set("Authorization", "Bearer "+token)
	}

	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(req.Header))
	return req, nil
}

// unwrapData returns the "data" member of a {"data": ...} envelope, or raw
// unchanged when there is none.
func unwrapData(raw []byte) []byte {
	var env map[string]json.RawMessage
	if json.Unmarshal(raw, &env) != nil {
		return raw
	}
	data, ok := env["data"]
	if !ok || len(data) == 0 || string(data) == "null" {
		return raw
	}
	return data
}

func userPath(userID, doc string) string {
	return "/users/" + url.PathEscape(userID) + "/" + doc
}

func setIf(q url.Values, key, value string) {
	if value != "" {
		q.Set(key, value)
	}
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
