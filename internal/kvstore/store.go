package kvstore

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/utafrali/storefront/internal/metrics"
	"github.com/utafrali/storefront/pkg/logger"
)

// Keys used by the engine.
const (
	KeyCart     = "cart"
	KeyWishlist = "wishlist"
)

// Store is a best-effort JSON layer over a Backend. Failures are logged and
// counted but never returned: persistence must not block a state change.
type Store struct {
	backend Backend
	logger  *slog.Logger
}

// New wraps backend. A nil logger discards output.
func New(backend Backend, l *slog.Logger) *Store {
	if l == nil {
		l = logger.Nop()
	}
	return &Store{backend: backend, logger: l}
}

// Save encodes value as JSON and writes it under key.
func (s *Store) Save(ctx context.Context, key string, value any) {
	data, err := json.Marshal(value)
	if err != nil {
		s.fail(ctx, "save", key, err)
		return
	}
	if err := s.backend.Set(ctx, key, data); err != nil {
		s.fail(ctx, "save", key, err)
	}
}

// Load decodes the value under key into dst and reports whether it did.
// A missing key, a backend error and a decode error all report false.
func (s *Store) Load(ctx context.Context, key string, dst any) bool {
	data, err := s.backend.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			s.fail(ctx, "load", key, err)
		}
		return false
	}
	if err := json.Unmarshal(data, dst); err != nil {
		s.fail(ctx, "load", key, err)
		return false
	}
	return true
}

// Clear deletes key. Clearing a missing key is not an error.
func (s *Store) Clear(ctx context.Context, key string) {
	if err := s.backend.Delete(ctx, key); err != nil && !errors.Is(err, ErrNotFound) {
		s.fail(ctx, "clear", key, err)
	}
}

func (s *Store) fail(ctx context.Context, op, key string, err error) {
	metrics.PersistenceFailures.WithLabelValues(op).Inc()
	logger.WithContext(ctx, s.logger).ErrorContext(ctx, "kv store "+op+" failed",
		slog.String("key", key),
		slog.String("error", err.Error()),
	)
}
