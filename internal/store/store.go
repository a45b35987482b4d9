// Package store holds the client-side cart and wishlist state. Each mutation
// recomputes derived fields, persists a snapshot to the key-value store and
// then notifies observers. Direct setters apply server state without
// notifying, so a sync adapter can install remote data without echoing it
// back.
package store

import (
	"log/slog"
	"sync"
	"time"

	"github.com/utafrali/storefront/pkg/logger"
)

// Option configures a store.
type Option func(*options)

type options struct {
	logger *slog.Logger
	now    func() time.Time
}

// WithLogger sets the logger used for store diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithClock overrides the time source for DateAdded.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

func buildOptions(component string, opts []Option) options {
	o := options{logger: logger.Nop(), now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	o.logger = logger.Component(o.logger, component)
	return o
}

// observers is a primary callback plus any number of subscriptions.
type observers[T any] struct {
	mu      sync.Mutex
	primary func(T)
	subs    map[int]func(T)
	next    int
}

func (o *observers[T]) setPrimary(fn func(T)) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.primary = fn
}

func (o *observers[T]) subscribe(fn func(T)) func() {
	if fn == nil {
		return func() {}
	}

	o.mu.Lock()
	defer o.mu.Unlock()

	if o.subs == nil {
		o.subs = make(map[int]func(T))
	}
	id := o.next
	o.next++
	o.subs[id] = fn

	var once sync.Once
	return func() {
		once.Do(func() {
			o.mu.Lock()
			defer o.mu.Unlock()
			delete(o.subs, id)
		})
	}
}

func (o *observers[T]) snapshot() []func(T) {
	o.mu.Lock()
	defer o.mu.Unlock()

	fns := make([]func(T), 0, len(o.subs)+1)
	if o.primary != nil {
		fns = append(fns, o.primary)
	}
	for i := 0; i < o.next; i++ {
		if fn, ok := o.subs[i]; ok {
			fns = append(fns, fn)
		}
	}
	return fns
}

func (o *observers[T]) notify(v T) {
	for _, fn := range o.snapshot() {
		fn(v)
	}
}
