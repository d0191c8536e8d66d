package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-kafka/v2/pkg/kafka"
	"github.com/ThreeDotsLabs/watermill/message"
)

// SessionEventHandler receives one decoded event. Returning an error nacks
// the message so the broker redelivers it.
type SessionEventHandler func(ctx context.Context, event *SessionEvent, data json.RawMessage) error

// SubscriberConfig holds configuration for a Kafka session event consumer
type SubscriberConfig struct {
	KafkaBrokers  []string
	ConsumerGroup string
	Logger        *slog.Logger
}

// NewKafkaSubscriber creates a consumer-group subscriber for session events
func NewKafkaSubscriber(config SubscriberConfig) (message.Subscriber, error) {
	subscriber, err := kafka.NewSubscriber(kafka.SubscriberConfig{
		Brokers:       config.KafkaBrokers,
		ConsumerGroup: config.ConsumerGroup,
		Unmarshaler:   kafka.DefaultMarshaler{},
	}, watermill.NewSlogLogger(config.Logger))
	if err != nil {
		return nil, fmt.Errorf("failed to create Kafka subscriber: %w", err)
	}
	return subscriber, nil
}

// ConsumeSessionEvents feeds every message on topic to handle until ctx is
// done. Messages that cannot be decoded are logged and acked.
func ConsumeSessionEvents(ctx context.Context, subscriber message.Subscriber, topic string, logger *slog.Logger, handle SessionEventHandler) error {
	if logger == nil {
		logger = slog.Default()
	}

	messages, err := subscriber.Subscribe(ctx, topic)
	if err != nil {
		return fmt.Errorf("failed to subscribe to %s: %w", topic, err)
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-messages:
			if !ok {
				return nil
			}

			event, data, err := DecodeSessionEvent(msg)
			if err != nil {
				logger.Warn("Dropping undecodable session event", "message_id", msg.UUID, "error", err)
				msg.Ack()
				continue
			}

			if err := handle(msg.Context(), event, data); err != nil {
				logger.Error("Failed to handle session event",
					"event_id", event.ID,
					"event_type", event.Type,
					"session_id", event.SessionID,
					"error", err)
				msg.Nack()
				continue
			}
			msg.Ack()
		}
	}
}
