package kafka_client

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/confluentinc/confluent-kafka-go/kafka"

	"github.com/spacesedan/sentiwatch/internal/clients/kafka_client/utils"
	"github.com/spacesedan/sentiwatch/internal/models"
)

// Producer publishes analyzed-ticket events. It is safe for concurrent use.
type Producer struct {
	producer *kafka.Producer
	topic    string
}

func NewProducer(cfg KafkaConfig) (*Producer, error) {
	cfg = cfg.withDefaults()
	slog.Info("[KafkaClient] Initializing Kafka Producer...",
		slog.String("broker", cfg.Broker),
		slog.String("topic", cfg.ResultsTopic))

	p, err := kafka.NewProducer(&kafka.ConfigMap{
		"bootstrap.servers":   cfg.Broker,
		"security.protocol":   "PLAINTEXT",
		"api.version.request": "true",
		"enable.idempotence":  true,
		"acks":                "all",
	})
	if err != nil {
		return nil, fmt.Errorf("[KafkaClient] Failed to create producer: %w", err)
	}

	go logProducerEvents(p)

	slog.Info("[KafkaClient] Kafka Producer initialized successfully")
	return &Producer{producer: p, topic: cfg.ResultsTopic}, nil
}

// logProducerEvents drains the events channel, which only carries errors and
// stats since every Produce call uses its own delivery channel.
func logProducerEvents(p *kafka.Producer) {
	for ev := range p.Events() {
		if kerr, ok := ev.(kafka.Error); ok {
			slog.Warn("[KafkaClient] Producer error event",
				slog.String("error", kerr.Error()))
		}
	}
}

func (p *Producer) Close() {
	slog.Info("[KafkaClient] Flushing Kafka producer before shutdown...")
	if remaining := p.producer.Flush(FLUSH_TIMEOUT); remaining > 0 {
		slog.Warn("[KafkaClient] Not all messages were delivered before shutdown",
			slog.Int("remaining", remaining))
	}
	p.producer.Close()
	slog.Info("[KafkaClient] Kafka producer shut down")
}

// Publish sends events keyed by event id and waits until every one of them has
// been acknowledged or ctx is done.
func (p *Producer) Publish(ctx context.Context, events ...models.TicketAnalyzedEvent) error {
	if len(events) == 0 {
		return nil
	}

	deliveries := make(chan kafka.Event, len(events))
	for _, event := range events {
		value, err := utils.SerializeToJSON(event)
		if err != nil {
			return err
		}

		msg := &kafka.Message{
			TopicPartition: kafka.TopicPartition{Topic: &p.topic, Partition: kafka.PartitionAny},
			Key:            []byte(event.EventID),
			Value:          value,
		}

		for i := 0; i < 3; i++ {
			err = p.producer.Produce(msg, deliveries)
			if err == nil {
				break
			}
			slog.Warn("[KafkaClient] Failed to produce message, retrying...",
				slog.Int("attempt", i+1),
				slog.String("error", err.Error()))
		}
		if err != nil {
			return fmt.Errorf("[KafkaClient] failed to produce event %s: %w", event.EventID, err)
		}
	}

	for range events {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev := <-deliveries:
			m, ok := ev.(*kafka.Message)
			if !ok {
				continue
			}
			if m.TopicPartition.Error != nil {
				return fmt.Errorf("[KafkaClient] delivery failed: %w", m.TopicPartition.Error)
			}
		}
	}

	slog.Info("[KafkaClient] Published analyzed tickets",
		slog.String("topic", p.topic),
		slog.Int("count", len(events)))
	return nil
}
