package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/utafrali/storefront/internal/api"
	"github.com/utafrali/storefront/internal/auth"
	"github.com/utafrali/storefront/internal/domain"
	"github.com/utafrali/storefront/internal/kvstore"
	"github.com/utafrali/storefront/internal/search"
	"github.com/utafrali/storefront/internal/store"
	"github.com/utafrali/storefront/internal/syncer"
	apperrors "github.com/utafrali/storefront/pkg/errors"
	"github.com/utafrali/storefront/pkg/logger"
)

// homeSectionProducts is how many products the home screen groups into
// sections.
const homeSectionProducts = 18

// EngineConfig tunes the engine's listing and sync behaviour.
type EngineConfig struct {
	Search search.Config
	Sync   syncer.Config
}

// Engine is the per-session context. It owns exactly one cart store, one
// wishlist store and the adapters around them; nothing in the engine is a
// package-level singleton.
type Engine struct {
	KV       *kvstore.Store
	Cart     *store.CartStore
	Wishlist *store.WishlistStore
	API      *api.Client
	Session  *auth.Session
	Syncer   *syncer.Syncer

	search search.Config
	logger *slog.Logger
}

// NewEngine builds an engine over backend with empty stores. Call Start to
// rehydrate them.
func NewEngine(backend kvstore.Backend, client *api.Client, session *auth.Session, cfg EngineConfig, l *slog.Logger) *Engine {
	if l == nil {
		l = logger.Nop()
	}

	kv := kvstore.New(backend, l)
	cart := store.NewCartStore(kv, store.WithLogger(l))
	wishlist := store.NewWishlistStore(kv, store.WithLogger(l))

	syncCfg := cfg.Sync
	if syncCfg.Logger == nil {
		syncCfg.Logger = l
	}

	searchCfg := cfg.Search
	if searchCfg.Logger == nil {
		searchCfg.Logger = l
	}

	return &Engine{
		KV:       kv,
		Cart:     cart,
		Wishlist: wishlist,
		API:      client,
		Session:  session,
		Syncer:   syncer.New(client, cart, wishlist, syncCfg),
		search:   searchCfg,
		logger:   logger.Component(l, "engine"),
	}
}

// Start rehydrates both stores from the KV store.
func (e *Engine) Start(ctx context.Context) {
	e.Cart.LoadCart(ctx)
	e.Wishlist.LoadWishlist(ctx)

	cart := e.Cart.Snapshot()
	e.logger.InfoContext(ctx, "stores rehydrated",
		slog.Int("cart_lines", len(cart.Items)),
		slog.Int("cart_items", cart.TotalItems),
		slog.Int("wishlist_items", e.Wishlist.Count()),
	)
}

// SignIn starts a session for user and attaches the syncer. A failed initial
// pull is returned; the user stays signed in with local state.
func (e *Engine) SignIn(ctx context.Context, user auth.User) error {
	if err := e.Session.SignIn(user); err != nil {
		return err
	}
	ctx = logger.WithUserID(ctx, user.ID)
	if err := e.Syncer.Attach(ctx, user); err != nil {
		return fmt.Errorf("sign in %s: %w", user.ID, err)
	}
	e.logger.InfoContext(ctx, "signed in", slog.String("user_id", user.ID))
	return nil
}

// SignOut flushes pending pushes, detaches the syncer and ends the session.
// Local stores are cleared by the detach.
func (e *Engine) SignOut(ctx context.Context) {
	if _, ok := e.Syncer.UserID(); ok {
		if err := e.Syncer.Flush(ctx); err != nil {
			apperrors.Log(ctx, e.logger, apperrors.Classify(err, apperrors.ContextCartOperation, apperrors.SeverityMedium))
		}
	}
	e.Syncer.Detach(ctx)
	e.Session.SignOut()
	e.logger.InfoContext(ctx, "signed out")
}

// Products opens a product listing controller. The caller closes it.
func (e *Engine) Products() *search.Controller[domain.Product] {
	return search.NewProductController(e.API, e.search)
}

// Categories opens a category listing controller. The caller closes it.
func (e *Engine) Categories() *search.Controller[domain.Category] {
	cfg := e.search
	cfg.ErrorContext = apperrors.ContextCategoryFetch
	return search.NewCategoryController(e.API, cfg)
}

// HomeSections loads the first products of the catalog and groups them into
// home screen sections.
func (e *Engine) HomeSections(ctx context.Context) ([]domain.ProductSection, error) {
	page, err := e.API.GetProductsPaged(ctx, domain.ProductFilters{}, 1, homeSectionProducts)
	if err != nil {
		return nil, apperrors.Classify(err, apperrors.ContextProductFetch, apperrors.SeverityMedium)
	}
	return domain.ProductSections(page.Items), nil
}
