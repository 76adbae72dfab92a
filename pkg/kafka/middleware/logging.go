package kafka_middleware

import (
	"context"
	"time"

	"scrimtime/pkg/kafka"
	"scrimtime/pkg/logger"
)

// LoggingProducerMiddleware logs every publish with timing.
func LoggingProducerMiddleware(log *logger.Logger) kafka.ProducerMiddleware {
	return func(ctx context.Context, msg kafka.Message, next func(ctx context.Context, msg kafka.Message) error) error {
		start := time.Now()
		err := next(ctx, msg)

		if err != nil {
			log.Error("Failed to publish message",
				"key", msg.Key,
				"event_id", msg.GetEventID(),
				"event_type", msg.GetEventType(),
				"duration_ms", time.Since(start).Milliseconds(),
				"error", err,
			)
			return err
		}

		log.Info("Published message",
			"key", msg.Key,
			"event_id", msg.GetEventID(),
			"event_type", msg.GetEventType(),
			"duration_ms", time.Since(start).Milliseconds(),
		)
		return nil
	}
}

// LoggingConsumerMiddleware logs every consumed message with timing.
func LoggingConsumerMiddleware(log *logger.Logger) kafka.ConsumerMiddleware {
	return func(ctx context.Context, msg kafka.Message, next kafka.MessageHandler) error {
		start := time.Now()
		err := next(ctx, msg)

		if err != nil {
			log.Error("Failed to process message",
				"topic", msg.Topic,
				"key", msg.Key,
				"event_id", msg.GetEventID(),
				"event_type", msg.GetEventType(),
				"offset", msg.Offset,
				"duration_ms", time.Since(start).Milliseconds(),
				"error", err,
			)
			return err
		}

		log.Info("Processed message",
			"topic", msg.Topic,
			"key", msg.Key,
			"event_id", msg.GetEventID(),
			"event_type", msg.GetEventType(),
			"offset", msg.Offset,
			"duration_ms", time.Since(start).Milliseconds(),
		)
		return nil
	}
}
