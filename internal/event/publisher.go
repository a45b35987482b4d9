package event

import (
	"context"
	"log/slog"

	"github.com/utafrali/storefront/internal/domain"
	"github.com/utafrali/storefront/internal/metrics"
	"github.com/utafrali/storefront/internal/store"
	"github.com/utafrali/storefront/pkg/kafka"
	"github.com/utafrali/storefront/pkg/logger"
)

const queueSize = 64

// Publisher sends an event to a topic. *kafka.Producer satisfies it.
type Publisher interface {
	Publish(ctx context.Context, topic string, event *kafka.Event) error
}

// UserFunc reports the signed-in user, if any.
type UserFunc func() (string, bool)

type outgoing struct {
	topic string
	event *kafka.Event
}

// StorePublisher observes the stores and publishes their changes. Events are
// queued so store mutations never wait on the broker; a full queue drops the
// event.
type StorePublisher struct {
	pub    Publisher
	user   UserFunc
	logger *slog.Logger
	queue  chan outgoing
}

// NewStorePublisher creates a publisher. user may be nil.
func NewStorePublisher(pub Publisher, user UserFunc, l *slog.Logger) *StorePublisher {
	if user == nil {
		user = func() (string, bool) { return "", false }
	}
	if l == nil {
		l = logger.Nop()
	}
	return &StorePublisher{
		pub:    pub,
		user:   user,
		logger: logger.Component(l, "events"),
		queue:  make(chan outgoing, queueSize),
	}
}

// Watch subscribes to both stores and returns a function that stops watching.
func (p *StorePublisher) Watch(cart *store.CartStore, wishlist *store.WishlistStore) (stop func()) {
	unsubCart := cart.Subscribe(p.CartChanged)
	unsubWish := wishlist.Subscribe(p.WishlistChanged)
	return func() {
		unsubCart()
		unsubWish()
	}
}

// CartChanged queues a cart change event.
func (p *StorePublisher) CartChanged(items []domain.CartItem) {
	userID, _ := p.user()
	cart := domain.NewCart(items)
	p.enqueue(TopicCartChanged, TypeCartChanged, "cart", userID, CartChanged{
		UserID:     userID,
		Items:      domain.ToWire(items),
		TotalItems: cart.TotalItems,
		TotalPrice: cart.TotalPrice,
	})
}

// WishlistChanged queues a wishlist change event.
func (p *StorePublisher) WishlistChanged(products []domain.Product) {
	userID, _ := p.user()
	p.enqueue(TopicWishlistChanged, TypeWishlistChanged, "wishlist", userID, WishlistChanged{
		UserID:     userID,
		ProductIDs: domain.ProductIDs(products),
	})
}

// Run publishes queued events until ctx is done.
func (p *StorePublisher) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case out := <-p.queue:
			err := p.pub.Publish(ctx, out.topic, out.event)
			metrics.EventsPublished.WithLabelValues(out.topic, metrics.Outcome(err)).Inc()
			if err != nil {
				p.logger.ErrorContext(ctx, "failed to publish event",
					slog.String("topic", out.topic),
					slog.String("event_id", out.event.EventID),
					slog.String("error", err.Error()),
				)
			}
		}
	}
}

func (p *StorePublisher) enqueue(topic, eventType, aggregateType, aggregateID string, data any) {
	evt, err := kafka.NewEvent(context.Background(), eventType, aggregateID, aggregateType, source, data)
	if err != nil {
		p.logger.Error("failed to build event",
			slog.String("event_type", eventType),
			slog.String("error", err.Error()),
		)
		return
	}

	select {
	case p.queue <- outgoing{topic: topic, event: evt}:
	default:
		metrics.EventsPublished.WithLabelValues(topic, "dropped").Inc()
		p.logger.Warn("event queue full, dropping event",
			slog.String("topic", topic),
			slog.String("event_type", eventType),
		)
	}
}
