package notify

import (
	"context"

	"scrimtime/pkg/model"
)

// Notifier carries the engine's outbound signals to the presentation layer.
// Delivery and formatting are not the engine's concern; implementations may
// drop, batch or fan out events as they see fit.
type Notifier interface {
	Notify(ctx context.Context, event model.NotificationEvent) error
}

// Nop discards all events. Used by the migration binary and in tests.
type Nop struct{}

func (Nop) Notify(context.Context, model.NotificationEvent) error {
	return nil
}
