package event

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/utafrali/storefront/pkg/kafka"
	"github.com/utafrali/storefront/pkg/logger"
)

// Puller reconciles local state with the backend.
type Puller interface {
	Pull(ctx context.Context) error
}

// UserSyncedHandler pulls when the attached user's documents changed
// elsewhere. Events for other users and unknown types are ignored.
func UserSyncedHandler(p Puller, user UserFunc, l *slog.Logger) kafka.Handler {
	if l == nil {
		l = logger.Nop()
	}
	l = logger.Component(l, "events")

	return func(ctx context.Context, evt *kafka.Event) error {
		if evt.EventType != TypeUserSynced {
			return nil
		}

		var payload UserSynced
		if err := evt.UnmarshalData(&payload); err != nil {
			return fmt.Errorf("decode %s: %w", evt.EventType, err)
		}

		current, ok := user()
		if !ok || current != payload.UserID {
			return nil
		}

		l.InfoContext(ctx, "remote change for attached user, pulling",
			slog.String("user_id", current),
			slog.String("event_id", evt.EventID),
		)
		return p.Pull(ctx)
	}
}
