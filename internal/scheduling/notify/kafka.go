package notify

import (
	"context"
	"fmt"

	"scrimtime/pkg/kafka"
	"scrimtime/pkg/model"
)

// KafkaNotifier publishes notification events keyed by session key, so all
// events of one negotiation stay ordered on a single partition.
type KafkaNotifier struct {
	producer *kafka.Producer
	source   string
}

func NewKafkaNotifier(producer *kafka.Producer, source string) *KafkaNotifier {
	return &KafkaNotifier{
		producer: producer,
		source:   source,
	}
}

func (n *KafkaNotifier) Notify(ctx context.Context, event model.NotificationEvent) error {
	msg, err := kafka.NewMessage().
		WithKey(event.SessionKey).
		WithValue(event).
		WithEventType(string(event.Type)).
		WithSource(n.source).
		Build()
	if err != nil {
		return fmt.Errorf("failed to build notification message: %w", err)
	}

	return n.producer.Publish(ctx, msg)
}
