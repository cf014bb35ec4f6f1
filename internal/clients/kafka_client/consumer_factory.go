package kafka_client

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/confluentinc/confluent-kafka-go/kafka"
)

// ConsumerFunc processes messages until ctx is done.
type ConsumerFunc func(ctx context.Context, consumer *kafka.Consumer)

var consumerRegistry = make(map[string]ConsumerFunc)

func RegisterConsumer(topic string, consumerFunc ConsumerFunc) {
	consumerRegistry[topic] = consumerFunc
}

// StartConsumer runs the consumer registered for the tickets topic and blocks
// until it returns.
func StartConsumer(ctx context.Context, cfg KafkaConfig) error {
	cfg = cfg.withDefaults()
	consumerFunc, exists := consumerRegistry[cfg.TicketsTopic]
	if !exists {
		return fmt.Errorf("[ConsumerFactory] No consumer found for topic: %s", cfg.TicketsTopic)
	}

	consumer, err := NewConsumer(cfg)
	if err != nil {
		return fmt.Errorf("[ConsumerFactory] Failed to initialize Kafka consumer: %w", err)
	}
	defer consumer.Close()

	slog.Info("[ConsumerFactory] Starting consumer for topic...", slog.String("topic", cfg.TicketsTopic))
	consumerFunc(ctx, consumer)

	return nil
}
