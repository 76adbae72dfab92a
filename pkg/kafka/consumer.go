package kafka

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/segmentio/kafka-go"

	kafka_config "scrimtime/pkg/kafka/config"
)

// Consumer reads messages, retries transient handler failures and parks
// everything else on the DLQ so one poisoned command cannot wedge the group.
type Consumer struct {
	reader     *kafka.Reader
	dlqWriter  *kafka.Writer
	topic      string
	groupID    string
	maxRetries int
	handler    MessageHandler
	middleware []ConsumerMiddleware
	closed     bool
	mu         sync.RWMutex
}

type ConsumerMiddleware func(ctx context.Context, msg Message, next MessageHandler) error

func NewConsumer(cfg *kafka_config.Config, topic, groupID, dlqTopic string, handler MessageHandler) (*Consumer, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}
	if len(cfg.Brokers) == 0 {
		return nil, fmt.Errorf("at least one broker is required")
	}
	if topic == "" {
		return nil, fmt.Errorf("topic cannot be empty")
	}
	if groupID == "" {
		return nil, fmt.Errorf("group ID cannot be empty")
	}
	if handler == nil {
		return nil, fmt.Errorf("message handler cannot be nil")
	}

	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:        cfg.Brokers,
		Topic:          topic,
		GroupID:        groupID,
		MinBytes:       cfg.ConsumerMinBytes,
		MaxBytes:       cfg.ConsumerMaxBytes,
		MaxWait:        cfg.ConsumerMaxWait,
		CommitInterval: cfg.ConsumerCommitInterval,
		Logger:         kafka.LoggerFunc(func(msg string, args ...any) {}),
	})

	c := &Consumer{
		reader:     reader,
		topic:      topic,
		groupID:    groupID,
		maxRetries: cfg.ConsumerMaxRetries,
		handler:    handler,
	}

	if dlqTopic != "" {
		c.dlqWriter = &kafka.Writer{
			Addr:         kafka.TCP(cfg.Brokers...),
			Topic:        dlqTopic,
			Balancer:     &kafka.Hash{},
			RequiredAcks: kafka.RequireAll,
			MaxAttempts:  3,
			Logger:       kafka.LoggerFunc(func(msg string, args ...any) {}),
		}
	}

	return c, nil
}

func (c *Consumer) Use(middleware ConsumerMiddleware) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.middleware = append(c.middleware, middleware)
}

// Start consumes until the context is cancelled or the consumer is closed.
func (c *Consumer) Start(ctx context.Context) error {
	c.mu.RLock()
	if c.closed {
		c.mu.RUnlock()
		return ErrConsumerClosed
	}
	c.mu.RUnlock()

	for {
		kafkaMsg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return err
			}
			c.mu.RLock()
			closed := c.closed
			c.mu.RUnlock()
			if closed {
				return ErrConsumerClosed
			}
			continue
		}

		msg := fromKafkaMessage(kafkaMsg)
		if err := c.process(ctx, msg); err != nil {
			if dlqErr := c.sendToDLQ(ctx, msg, err); dlqErr != nil {
				// Leave the message uncommitted; the group will redeliver.
				continue
			}
		}

		_ = c.reader.CommitMessages(ctx, kafkaMsg)
	}
}

func (c *Consumer) process(ctx context.Context, msg Message) error {
	handler := c.handler
	c.mu.RLock()
	for i := len(c.middleware) - 1; i >= 0; i-- {
		mw := c.middleware[i]
		next := handler
		handler = func(ctx context.Context, m Message) error {
			return mw(ctx, m, next)
		}
	}
	c.mu.RUnlock()

	var err error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		err = handler(ctx, msg)
		if err == nil {
			return nil
		}
		if !IsTransient(err) {
			return err
		}
	}
	return err
}

func (c *Consumer) sendToDLQ(ctx context.Context, msg Message, cause error) error {
	if c.dlqWriter == nil {
		return fmt.Errorf("no DLQ configured: %w", cause)
	}

	msg.IncrementRetryCount()
	msg.Headers[HeaderOriginalTopic] = c.topic
	msg.Headers["failure-reason"] = cause.Error()

	kafkaMsg := kafka.Message{
		Key:   []byte(msg.Key),
		Value: msg.Value,
	}
	for k, v := range msg.Headers {
		kafkaMsg.Headers = append(kafkaMsg.Headers, kafka.Header{Key: k, Value: []byte(v)})
	}

	return c.dlqWriter.WriteMessages(ctx, kafkaMsg)
}

func (c *Consumer) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil
	}
	c.closed = true

	err := c.reader.Close()
	if c.dlqWriter != nil {
		if dlqErr := c.dlqWriter.Close(); err == nil {
			err = dlqErr
		}
	}
	return err
}

func fromKafkaMessage(kafkaMsg kafka.Message) Message {
	msg := Message{
		Key:       string(kafkaMsg.Key),
		Value:     kafkaMsg.Value,
		Headers:   make(map[string]string, len(kafkaMsg.Headers)),
		Topic:     kafkaMsg.Topic,
		Partition: kafkaMsg.Partition,
		Offset:    kafkaMsg.Offset,
		Timestamp: kafkaMsg.Time,
	}
	for _, h := range kafkaMsg.Headers {
		msg.Headers[h.Key] = string(h.Value)
	}
	return msg
}
