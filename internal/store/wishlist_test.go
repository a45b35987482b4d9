package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/utafrali/storefront/internal/domain"
	"github.com/utafrali/storefront/internal/kvstore"
)

func newTestWishlistStore(t *testing.T) (*WishlistStore, *kvstore.Store) {
	t.Helper()
	kv := kvstore.New(kvstore.NewMemoryBackend(), nil)
	return NewWishlistStore(kv), kv
}

func TestAddToWishlist_IsUnique(t *testing.T) {
	s, _ := newTestWishlistStore(t)
	ctx := context.Background()

	calls := 0
	s.SetWishlistChangeCallback(func([]domain.Product) { calls++ })

	require.NoError(t, s.AddToWishlist(ctx, product("A", "1")))
	require.NoError(t, s.AddToWishlist(ctx, product("B", "2")))
	require.NoError(t, s.AddToWishlist(ctx, product("A", "1")))

	assert.Equal(t, 2, s.Count())
	assert.Equal(t, []string{"A", "B"}, domain.ProductIDs(s.Items()))
	assert.Equal(t, 2, calls, "adding a present product is a no-op")
}

func TestAddToWishlist_RequiresID(t *testing.T) {
	s, _ := newTestWishlistStore(t)
	assert.Error(t, s.AddToWishlist(context.Background(), domain.Product{}))
	assert.Zero(t, s.Count())
}

func TestIsInWishlist(t *testing.T) {
	s, _ := newTestWishlistStore(t)
	ctx := context.Background()
	require.NoError(t, s.AddToWishlist(ctx, product("A", "1")))

	assert.True(t, s.IsInWishlist("A"))
	assert.False(t, s.IsInWishlist("B"))
	assert.False(t, s.IsInWishlist("a"))

	s.RemoveFromWishlist(ctx, "A")
	assert.False(t, s.IsInWishlist("A"))
}

func TestRemoveFromWishlist_KeepsOrder(t *testing.T) {
	s, _ := newTestWishlistStore(t)
	ctx := context.Background()
	for _, id := range []string{"A", "B", "C"} {
		require.NoError(t, s.AddToWishlist(ctx, product(id, "1")))
	}

	s.RemoveFromWishlist(ctx, "B")

	assert.Equal(t, []string{"A", "C"}, domain.ProductIDs(s.Items()))
}

func TestClearWishlist(t *testing.T) {
	s, kv := newTestWishlistStore(t)
	ctx := context.Background()
	require.NoError(t, s.AddToWishlist(ctx, product("A", "1")))

	var got []domain.Product
	s.SetWishlistChangeCallback(func(p []domain.Product) { got = p })
	s.ClearWishlist(ctx)

	assert.NotNil(t, got)
	assert.Empty(t, got)
	assert.Zero(t, s.Count())

	var saved []domain.Product
	assert.False(t, kv.Load(ctx, kvstore.KeyWishlist, &saved))
}

func TestLoadWishlist_RoundTrip(t *testing.T) {
	kv := kvstore.New(kvstore.NewMemoryBackend(), nil)
	ctx := context.Background()

	first := NewWishlistStore(kv)
	require.NoError(t, first.AddToWishlist(ctx, product("A", "1")))
	require.NoError(t, first.AddToWishlist(ctx, product("B", "2")))

	second := NewWishlistStore(kv)
	second.LoadWishlist(ctx)

	assert.Equal(t, []string{"A", "B"}, domain.ProductIDs(second.Items()))
}

func TestLoadWishlist_AbsentLeavesStateUnchanged(t *testing.T) {
	backend := kvstore.NewMemoryBackend()
	s := NewWishlistStore(kvstore.New(backend, nil))
	ctx := context.Background()
	require.NoError(t, s.AddToWishlist(ctx, product("A", "1")))
	require.NoError(t, backend.Delete(ctx, kvstore.KeyWishlist))

	s.LoadWishlist(ctx)

	assert.Equal(t, 1, s.Count())
}

func TestSetWishlistDirect_DedupesAndDoesNotNotify(t *testing.T) {
	s, kv := newTestWishlistStore(t)
	ctx := context.Background()

	calls := 0
	s.SetWishlistChangeCallback(func([]domain.Product) { calls++ })
	unsubscribe := s.Subscribe(func([]domain.Product) { calls++ })
	defer unsubscribe()

	first := product("A", "1")
	dup := product("A", "99")
	s.SetWishlistDirect(ctx, []domain.Product{first, product("B", "2"), dup})

	assert.Zero(t, calls)
	items := s.Items()
	assert.Equal(t, []string{"A", "B"}, domain.ProductIDs(items))
	assert.Equal(t, first.Price.String(), items[0].Price.String())

	var saved []domain.Product
	require.True(t, kv.Load(ctx, kvstore.KeyWishlist, &saved))
	assert.Len(t, saved, 2)

	s.RemoveFromWishlist(ctx, "B")
	assert.Equal(t, 2, calls)
}

func TestWishlistPersistenceFailure_DoesNotRollBack(t *testing.T) {
	s := NewWishlistStore(kvstore.New(failingBackend{}, nil))
	require.NoError(t, s.AddToWishlist(context.Background(), product("A", "1")))
	assert.True(t, s.IsInWishlist("A"))
}
