// Package search drives paginated, filterable listings: a debounced text
// query, immediate filter changes, incremental loading and refresh.
package search

import (
	"context"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/utafrali/storefront/internal/debounce"
	"github.com/utafrali/storefront/internal/domain"
	apperrors "github.com/utafrali/storefront/pkg/errors"
	"github.com/utafrali/storefront/pkg/logger"
	"github.com/utafrali/storefront/pkg/pagination"
)

// DefaultDebounce is the quiet interval before a typed query is fetched.
const DefaultDebounce = 650 * time.Millisecond

// Query is what a fetch is issued for. Filters.Search always equals Text.
type Query struct {
	Text    string
	Filters domain.ProductFilters
}

// Page is one page returned by a Fetcher.
type Page[T any] struct {
	Items []T
	Total int
}

// Fetcher loads one 1-based page of results for q.
type Fetcher[T any] func(ctx context.Context, q Query, page, pageSize int) (Page[T], error)

// KeyFunc identifies an item for de-duplication across pages.
type KeyFunc[T any] func(T) string

// State is a snapshot of a controller.
type State[T any] struct {
	Query   string
	Filters domain.ProductFilters
	Items   []T
	Page    int
	Total   int
	HasMore bool
	Loading bool
	Err     *apperrors.AppError
}

// Config tunes a Controller.
type Config struct {
	PageSize     int
	Debounce     time.Duration
	ErrorContext apperrors.Context
	Logger       *slog.Logger
}

// DefaultConfig returns the listing defaults.
func DefaultConfig() Config {
	return Config{
		PageSize:     pagination.DefaultPageSize,
		Debounce:     DefaultDebounce,
		ErrorContext: apperrors.ContextProductFetch,
		Logger:       logger.Nop(),
	}
}

// Controller owns the state of one listing screen.
type Controller[T any] struct {
	fetch Fetcher[T]
	key   KeyFunc[T]
	cfg   Config

	debouncer *debounce.Debouncer
	// base is cancelled by Close; debounced fetches run under it.
	base context.Context
	stop context.CancelFunc

	mu       sync.Mutex
	pending  string
	settled  string
	filters  domain.ProductFilters
	items    []T
	seen     map[string]struct{}
	page     int
	total    int
	hasMore  bool
	loading  bool
	err      *apperrors.AppError
	gen      uint64
	cancel   context.CancelFunc
	closed   bool
	onChange func(State[T])
}

// NewController creates a controller. key may be nil to disable
// de-duplication. Zero config fields take their defaults.
func NewController[T any](fetch Fetcher[T], key KeyFunc[T], cfg Config) *Controller[T] {
	def := DefaultConfig()
	if cfg.PageSize <= 0 {
		cfg.PageSize = def.PageSize
	}
	if cfg.Debounce <= 0 {
		cfg.Debounce = def.Debounce
	}
	if cfg.ErrorContext == "" {
		cfg.ErrorContext = def.ErrorContext
	}
	if cfg.Logger == nil {
		cfg.Logger = def.Logger
	}
	cfg.Logger = logger.Component(cfg.Logger, "search")

	base, stop := context.WithCancel(context.Background())
	return &Controller[T]{
		fetch:     fetch,
		key:       key,
		cfg:       cfg,
		debouncer: debounce.New(cfg.Debounce),
		base:      base,
		stop:      stop,
		items:     []T{},
		seen:      map[string]struct{}{},
		hasMore:   true,
	}
}

// OnChange installs an observer that receives a snapshot after every state
// change. It is called outside the controller lock.
func (c *Controller[T]) OnChange(fn func(State[T])) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onChange = fn
}

// SetQuery records text and arms the debounce timer. When it expires the
// list is reset and page 1 is fetched for the settled text.
func (c *Controller[T]) SetQuery(text string) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.pending = strings.TrimSpace(text)
	state := c.stateLocked()
	c.mu.Unlock()

	c.publish(state)
	c.debouncer.Trigger(func() {
		_ = c.reset(c.base, nil)
	})
}

// SetFilters replaces the filters and refetches immediately. A pending
// debounced query is settled now instead of on expiry.
func (c *Controller[T]) SetFilters(ctx context.Context, filters domain.ProductFilters) error {
	if err := filters.Validate(); err != nil {
		return err
	}
	c.debouncer.Cancel()
	return c.reset(ctx, &filters)
}

// UpdateFilters applies fn to a copy of the current filters and refetches.
func (c *Controller[T]) UpdateFilters(ctx context.Context, fn func(*domain.ProductFilters)) error {
	c.mu.Lock()
	filters := c.filters
	c.mu.Unlock()

	fn(&filters)
	return c.SetFilters(ctx, filters)
}

// LoadMore fetches and appends the next page. It does nothing while a fetch
// is in flight or when the listing is exhausted.
func (c *Controller[T]) LoadMore(ctx context.Context) error {
	c.mu.Lock()
	if c.closed || c.loading || !c.hasMore {
		c.mu.Unlock()
		return nil
	}
	next := c.page + 1
	c.mu.Unlock()

	return c.run(ctx, next, false)
}

// Refresh refetches page 1 and replaces the list once it arrives. Any fetch
// in flight is cancelled and its result discarded.
func (c *Controller[T]) Refresh(ctx context.Context) error {
	return c.run(ctx, 1, false)
}

// State returns a snapshot.
func (c *Controller[T]) State() State[T] {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stateLocked()
}

// Close stops the debounce timer and cancels any fetch in flight. Results
// arriving afterwards and later calls are ignored.
func (c *Controller[T]) Close() {
	c.debouncer.Close()

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
	c.stop()
}

// reset settles the pending query, optionally replaces the filters, clears
// the list and fetches page 1.
func (c *Controller[T]) reset(ctx context.Context, filters *domain.ProductFilters) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.settled = c.pending
	if filters != nil {
		c.filters = *filters
	}
	c.items = []T{}
	c.seen = map[string]struct{}{}
	c.page = 0
	c.total = 0
	c.hasMore = true
	c.mu.Unlock()

	return c.run(ctx, 1, true)
}

func (c *Controller[T]) run(ctx context.Context, page int, cleared bool) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	if c.cancel != nil {
		c.cancel()
	}
	c.gen++
	gen := c.gen
	fctx, cancel := context.WithCancel(ctx)
	c.cancel = cancel
	c.loading = true
	c.err = nil

	filters := c.filters.Normalized()
	filters.Search = c.settled
	q := Query{Text: c.settled, Filters: filters}
	started := c.stateLocked()
	c.mu.Unlock()

	c.publish(started)

	c.cfg.Logger.DebugContext(ctx, "fetching page",
		slog.String("query", q.Text),
		slog.Int("page", page),
		slog.Bool("reset", cleared),
	)
	res, err := c.fetch(fctx, q, page, c.cfg.PageSize)
	cancel()

	c.mu.Lock()
	if c.closed || gen != c.gen {
		c.mu.Unlock()
		return nil
	}
	c.cancel = nil
	c.loading = false

	if err != nil {
		appErr := apperrors.Classify(err, c.cfg.ErrorContext, apperrors.SeverityMedium)
		c.err = appErr
		state := c.stateLocked()
		c.mu.Unlock()

		apperrors.Log(ctx, c.cfg.Logger, appErr)
		c.publish(state)
		return appErr
	}

	if page == 1 {
		c.items = []T{}
		c.seen = map[string]struct{}{}
	}
	c.appendLocked(res.Items)
	c.page = page
	c.total = res.Total
	c.hasMore = pagination.HasMore(page, c.cfg.PageSize, res.Total)
	state := c.stateLocked()
	c.mu.Unlock()

	c.publish(state)
	return nil
}

func (c *Controller[T]) appendLocked(items []T) {
	for _, it := range items {
		if c.key != nil {
			k := c.key(it)
			if _, dup := c.seen[k]; dup {
				continue
			}
			c.seen[k] = struct{}{}
		}
		c.items = append(c.items, it)
	}
}

func (c *Controller[T]) stateLocked() State[T] {
	return State[T]{
		Query:   c.pending,
		Filters: c.filters,
		Items:   slices.Clone(c.items),
		Page:    c.page,
		Total:   c.total,
		HasMore: c.hasMore,
		Loading: c.loading,
		Err:     c.err,
	}
}

func (c *Controller[T]) publish(s State[T]) {
	c.mu.Lock()
	fn := c.onChange
	c.mu.Unlock()

	if fn != nil {
		fn(s)
	}
}
