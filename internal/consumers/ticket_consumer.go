package consumers

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/confluentinc/confluent-kafka-go/kafka"

	"github.com/spacesedan/sentiwatch/internal/clients/kafka_client"
	kafkautils "github.com/spacesedan/sentiwatch/internal/clients/kafka_client/utils"
	"github.com/spacesedan/sentiwatch/internal/models"
	"github.com/spacesedan/sentiwatch/internal/processing"
	"github.com/spacesedan/sentiwatch/internal/utils"
)

const (
	publishAttempts = 3
	shutdownTimeout = 10 * time.Second
)

type MessageIterator interface {
	Next() (*kafka.Message, error)
}

type Committer interface {
	Commit(msg *kafka.Message) error
}

// TicketAnalyzer is the part of the ticket pipeline the consumer drives.
type TicketAnalyzer interface {
	Analyze(ctx context.Context, req processing.AnalyzeRequest) (models.TicketAnalysis, error)
}

// pending is a consumed message awaiting publish and commit. event is nil for
// messages that were skipped but still need their offset committed.
type pending struct {
	msg   *kafka.Message
	event *models.TicketAnalyzedEvent
}

// TicketConsumer analyzes incoming tickets, publishes the results in batches
// and commits offsets once a batch is out.
type TicketConsumer struct {
	iterator      MessageIterator
	committer     Committer
	analyzer      TicketAnalyzer
	publisher     processing.Publisher
	buffer        *utils.BatchBuffer[pending]
	flushInterval time.Duration
	retryDelay    time.Duration
	healthy       *atomic.Bool
}

func NewTicketConsumer(iterator MessageIterator, committer Committer, analyzer TicketAnalyzer, publisher processing.Publisher) *TicketConsumer {
	return &TicketConsumer{
		iterator:      iterator,
		committer:     committer,
		analyzer:      analyzer,
		publisher:     publisher,
		buffer:        utils.NewBatchBuffer[pending](),
		flushInterval: utils.BATCH_TIMEOUT,
		retryDelay:    kafka_client.RETRY_DELAY,
	}
}

// WithHealthCheck pauses consumption while healthy is false. A nil flag never
// pauses.
func (c *TicketConsumer) WithHealthCheck(healthy *atomic.Bool) *TicketConsumer {
	c.healthy = healthy
	return c
}

// TicketConsumerFunc adapts the consumer to the kafka_client registry. healthy
// may be nil.
func TicketConsumerFunc(analyzer TicketAnalyzer, publisher processing.Publisher, healthy *atomic.Bool) kafka_client.ConsumerFunc {
	return func(ctx context.Context, consumer *kafka.Consumer) {
		iterator := kafka_client.NewKafkaMessageIterator(ctx, consumer)
		committer := kafka_client.NewCommitHandler(ctx, consumer)
		NewTicketConsumer(iterator, committer, analyzer, publisher).
			WithHealthCheck(healthy).
			Run(ctx)
	}
}

// Run consumes until ctx is done, then flushes whatever is buffered.
func (c *TicketConsumer) Run(ctx context.Context) {
	ticker := time.NewTicker(c.flushInterval)
	defer ticker.Stop()

	paused := false
	for {
		select {
		case <-ctx.Done():
			slog.Warn("[TicketConsumer] Consumer shutting down...")
			flushCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
			c.flush(flushCtx)
			cancel()
			return
		case <-ticker.C:
			c.flush(ctx)
		default:
			if c.healthy != nil && !c.healthy.Load() {
				if !paused {
					slog.Warn("[TicketConsumer] Translator unhealthy, pausing consumption")
					c.flush(ctx)
					paused = true
				}
				select {
				case <-ctx.Done():
				case <-time.After(c.retryDelay):
				}
				continue
			}
			if paused {
				slog.Info("[TicketConsumer] Translator healthy, resuming consumption")
				paused = false
			}

			msg, err := c.iterator.Next()
			if err != nil {
				if !errors.Is(err, kafka_client.ErrNoMessage) && !errors.Is(err, context.Canceled) {
					kafkautils.HandleConsumerError(err)
				}
				continue
			}

			c.buffer.Add(c.handle(ctx, msg))
			if c.buffer.Full() {
				c.flush(ctx)
			}
		}
	}
}

func (c *TicketConsumer) handle(ctx context.Context, msg *kafka.Message) pending {
	var ticket models.NewTicket
	if err := kafkautils.DeserializeFromJSON(msg.Value, &ticket); err != nil {
		slog.Warn("[TicketConsumer] Skipping undecodable ticket",
			slog.Int64("offset", int64(msg.TopicPartition.Offset)),
			slog.String("error", err.Error()))
		return pending{msg: msg}
	}

	analysis, err := c.analyzer.Analyze(ctx, processing.AnalyzeRequest{
		Message:  ticket.Message,
		Author:   ticket.Author,
		Priority: ticket.Priority,
		Save:     true,
	})
	if err != nil {
		slog.Warn("[TicketConsumer] Skipping ticket",
			slog.Int64("offset", int64(msg.TopicPartition.Offset)),
			slog.String("error", err.Error()))
		return pending{msg: msg}
	}

	event := processing.NewEvent(analysis)
	return pending{msg: msg, event: &event}
}

// flush publishes buffered events and commits the highest offset seen per
// partition. A batch that cannot be published goes back into the buffer.
func (c *TicketConsumer) flush(ctx context.Context) {
	batch := c.buffer.GetAndClear()
	if len(batch) == 0 {
		return
	}

	events := make([]models.TicketAnalyzedEvent, 0, len(batch))
	for _, p := range batch {
		if p.event != nil {
			events = append(events, *p.event)
		}
	}

	if err := c.publish(ctx, events); err != nil {
		slog.Error("[TicketConsumer] Failed to publish batch, keeping it for the next flush",
			slog.Int("batch_size", len(batch)),
			slog.String("error", err.Error()))
		for _, p := range batch {
			c.buffer.Add(p)
		}
		return
	}

	for _, msg := range highestOffsets(batch) {
		if err := c.committer.Commit(msg); err != nil {
			slog.Warn("[TicketConsumer] Failed to commit offset",
				slog.String("error", err.Error()))
		}
	}

	slog.Info("[TicketConsumer] Flushed batch",
		slog.Int("messages", len(batch)),
		slog.Int("events", len(events)))
}

func (c *TicketConsumer) publish(ctx context.Context, events []models.TicketAnalyzedEvent) error {
	if c.publisher == nil || len(events) == 0 {
		return nil
	}

	var err error
	for i := 0; i < publishAttempts; i++ {
		if err = c.publisher.Publish(ctx, events...); err == nil {
			return nil
		}
		slog.Warn("[TicketConsumer] Batch publishing failed",
			slog.Int("attempt", i+1),
			slog.String("error", err.Error()))

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(c.retryDelay):
		}
	}
	return err
}

type topicPartition struct {
	topic     string
	partition int32
}

func highestOffsets(batch []pending) []*kafka.Message {
	latest := make(map[topicPartition]*kafka.Message)
	order := make([]topicPartition, 0)
	for _, p := range batch {
		tp := p.msg.TopicPartition
		key := topicPartition{partition: tp.Partition}
		if tp.Topic != nil {
			key.topic = *tp.Topic
		}
		cur, ok := latest[key]
		if !ok {
			order = append(order, key)
		}
		if !ok || tp.Offset > cur.TopicPartition.Offset {
			latest[key] = p.msg
		}
	}

	msgs := make([]*kafka.Message, 0, len(order))
	for _, key := range order {
		msgs = append(msgs, latest[key])
	}
	return msgs
}
