// Package syncer keeps the local cart and wishlist in step with the signed-in
// user's documents on the backend.
package syncer

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/utafrali/storefront/internal/auth"
	"github.com/utafrali/storefront/internal/domain"
	"github.com/utafrali/storefront/internal/metrics"
	"github.com/utafrali/storefront/internal/store"
	apperrors "github.com/utafrali/storefront/pkg/errors"
	"github.com/utafrali/storefront/pkg/logger"
)

// DefaultPushInterval is the minimum gap between pushes of the same kind.
const DefaultPushInterval = 2 * time.Second

// Remote is the slice of the backend client the syncer needs.
type Remote interface {
	ProductLookup
	FetchCart(ctx context.Context, userID string) ([]domain.WireCartItem, error)
	SyncCart(ctx context.Context, userID string, items []domain.WireCartItem) error
	FetchWishlist(ctx context.Context, userID string) ([]string, error)
	SyncWishlist(ctx context.Context, userID string, productIDs []string) error
}

// ErrNotAttached is returned when an operation needs a signed-in user.
var ErrNotAttached = errors.New("syncer: no user attached")

// Config tunes a Syncer.
type Config struct {
	PushInterval time.Duration
	Logger       *slog.Logger
	Now          func() time.Time
}

// Syncer pulls remote state into the stores with their direct setters and
// pushes local changes back, coalesced and rate limited.
type Syncer struct {
	remote   Remote
	cart     *store.CartStore
	wishlist *store.WishlistStore
	logger   *slog.Logger
	now      func() time.Time
	limiter  *rate.Limiter
	wake     chan struct{}

	mu        sync.Mutex
	userID    string
	unsubs    []func()
	dirtyCart bool
	dirtyWish bool
}

// New creates a detached Syncer.
func New(remote Remote, cart *store.CartStore, wishlist *store.WishlistStore, cfg Config) *Syncer {
	if cfg.PushInterval <= 0 {
		cfg.PushInterval = DefaultPushInterval
	}
	if cfg.Logger == nil {
		cfg.Logger = logger.Nop()
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &Syncer{
		remote:   remote,
		cart:     cart,
		wishlist: wishlist,
		logger:   logger.Component(cfg.Logger, "syncer"),
		now:      cfg.Now,
		limiter:  rate.NewLimiter(rate.Every(cfg.PushInterval), 1),
		wake:     make(chan struct{}, 1),
	}
}

// Attach signs user in: remote state is pulled into the stores and later
// local changes are queued for pushing. A failed pull is returned but the
// syncer stays attached with the local state.
func (s *Syncer) Attach(ctx context.Context, user auth.User) error {
	if user.ID == "" {
		return apperrors.InvalidInput("user id is required")
	}

	s.mu.Lock()
	s.detachLocked()
	s.userID = user.ID
	s.mu.Unlock()

	s.logger.InfoContext(ctx, "user attached", slog.String("user_id", user.ID))
	err := s.Pull(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.userID != user.ID {
		return err
	}
	s.unsubs = append(s.unsubs,
		s.cart.Subscribe(func([]domain.CartItem) { s.markDirty(true, false) }),
		s.wishlist.Subscribe(func([]domain.Product) { s.markDirty(false, true) }),
	)
	return err
}

// Detach signs the user out: subscriptions are dropped, pending pushes are
// discarded and both stores are cleared locally without pushing.
func (s *Syncer) Detach(ctx context.Context) {
	s.mu.Lock()
	userID := s.userID
	s.detachLocked()
	s.mu.Unlock()

	s.cart.ClearCart(ctx)
	s.wishlist.ClearWishlist(ctx)

	if userID != "" {
		s.logger.InfoContext(ctx, "user detached", slog.String("user_id", userID))
	}
}

// UserID returns the attached user, if any.
func (s *Syncer) UserID() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.userID, s.userID != ""
}

// Pull replaces the local cart and wishlist with the remote documents. Items
// that cannot be resolved are dropped; a failed fetch leaves that store
// untouched and is reported.
func (s *Syncer) Pull(ctx context.Context) error {
	userID, ok := s.UserID()
	if !ok {
		return ErrNotAttached
	}
	ctx = logger.NewContext(logger.WithUserID(ctx, userID), s.logger)

	var errs []error

	wire, err := s.remote.FetchCart(ctx, userID)
	if err != nil {
		errs = append(errs, s.report(ctx, err, apperrors.ContextCartOperation))
	} else {
		items := reconstructAt(ctx, s.remote, wire, s.now())
		s.cart.SetCartDirect(ctx, domain.NewCart(items))
		if dropped := len(wire) - len(items); dropped > 0 {
			s.logger.WarnContext(ctx, "remote cart partially reconstructed",
				slog.Int("received", len(wire)),
				slog.Int("kept", len(items)),
			)
		}
	}

	ids, err := s.remote.FetchWishlist(ctx, userID)
	if err != nil {
		errs = append(errs, s.report(ctx, err, apperrors.ContextWishlistOperation))
	} else {
		s.wishlist.SetWishlistDirect(ctx, ResolveProducts(ctx, s.remote, ids))
	}

	return errors.Join(errs...)
}

// PushCart sends the current cart to the backend.
func (s *Syncer) PushCart(ctx context.Context) error {
	userID, ok := s.UserID()
	if !ok {
		return ErrNotAttached
	}
	err := s.remote.SyncCart(ctx, userID, domain.ToWire(s.cart.Items()))
	metrics.SyncPushes.WithLabelValues("cart", metrics.Outcome(err)).Inc()
	if err != nil {
		return s.report(ctx, err, apperrors.ContextCartOperation)
	}
	return nil
}

// PushWishlist sends the current wishlist to the backend.
func (s *Syncer) PushWishlist(ctx context.Context) error {
	userID, ok := s.UserID()
	if !ok {
		return ErrNotAttached
	}
	err := s.remote.SyncWishlist(ctx, userID, domain.ProductIDs(s.wishlist.Items()))
	metrics.SyncPushes.WithLabelValues("wishlist", metrics.Outcome(err)).Inc()
	if err != nil {
		return s.report(ctx, err, apperrors.ContextWishlistOperation)
	}
	return nil
}

// Run pushes queued changes until ctx is done, at most once per push
// interval. Changes made while a push is waiting are coalesced into it.
func (s *Syncer) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-s.wake:
		}

		if err := s.limiter.Wait(ctx); err != nil {
			return nil
		}
		_ = s.Flush(ctx)
	}
}

// Flush pushes whatever is queued now. Failed pushes stay queued for the
// next change or flush.
func (s *Syncer) Flush(ctx context.Context) error {
	s.mu.Lock()
	cart, wish := s.dirtyCart, s.dirtyWish
	s.dirtyCart, s.dirtyWish = false, false
	s.mu.Unlock()

	var errs []error
	if cart {
		if err := s.PushCart(ctx); err != nil {
			errs = append(errs, err)
			s.requeue(true, false)
		}
	}
	if wish {
		if err := s.PushWishlist(ctx); err != nil {
			errs = append(errs, err)
			s.requeue(false, true)
		}
	}
	return errors.Join(errs...)
}

func (s *Syncer) markDirty(cart, wish bool) {
	s.requeue(cart, wish)
	select {
	case s.wake <- struct{}{}:
	default:
	}
}

func (s *Syncer) requeue(cart, wish bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.userID == "" {
		return
	}
	s.dirtyCart = s.dirtyCart || cart
	s.dirtyWish = s.dirtyWish || wish
}

func (s *Syncer) detachLocked() {
	for _, unsub := range s.unsubs {
		unsub()
	}
	s.unsubs = nil
	s.userID = ""
	s.dirtyCart, s.dirtyWish = false, false
}

func (s *Syncer) report(ctx context.Context, err error, tag apperrors.Context) error {
	appErr := apperrors.Classify(err, tag, apperrors.SeverityHigh)
	apperrors.Log(ctx, logger.WithContext(ctx, s.logger), appErr)
	return appErr
}
