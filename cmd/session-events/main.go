// Command session-events tails the session event topic and logs every
// lifecycle event. It is the starting point for downstream consumers such as
// notifications and reporting.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/SAP-F-2025/exam-session-service/internal/config"
	"github.com/SAP-F-2025/exam-session-service/internal/events"
	"github.com/SAP-F-2025/exam-session-service/internal/utils"
)

const consumerGroup = "exam-session-events-log"

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "session-events: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	logger := utils.ToSlogLogger(utils.NewLogger(cfg.Environment))

	subscriber, err := events.NewKafkaSubscriber(events.SubscriberConfig{
		KafkaBrokers:  cfg.Events.GetKafkaBrokers(),
		ConsumerGroup: consumerGroup,
		Logger:        logger,
	})
	if err != nil {
		return err
	}
	defer subscriber.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Info("Consuming session events", "topic", cfg.Events.SessionTopic, "brokers", cfg.Events.KafkaBrokers)

	return events.ConsumeSessionEvents(ctx, subscriber, cfg.Events.SessionTopic, logger,
		func(ctx context.Context, event *events.SessionEvent, data json.RawMessage) error {
			logger.InfoContext(ctx, "Session event",
				"event_id", event.ID,
				"event_type", event.Type,
				"session_id", event.SessionID,
				"timestamp", event.Timestamp,
				"data", string(data))
			return nil
		})
}
