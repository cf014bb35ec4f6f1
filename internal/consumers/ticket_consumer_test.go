package consumers

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/confluentinc/confluent-kafka-go/kafka"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spacesedan/sentiwatch/internal/clients/kafka_client"
	"github.com/spacesedan/sentiwatch/internal/models"
	"github.com/spacesedan/sentiwatch/internal/processing"
	"github.com/spacesedan/sentiwatch/internal/sentiment"
)

var ticketsTopic = "tickets.incoming"

func message(partition int32, offset int64, value string) *kafka.Message {
	return &kafka.Message{
		TopicPartition: kafka.TopicPartition{
			Topic:     &ticketsTopic,
			Partition: partition,
			Offset:    kafka.Offset(offset),
		},
		Value: []byte(value),
	}
}

// sliceIterator hands out its messages and cancels the run once drained.
type sliceIterator struct {
	mu     sync.Mutex
	msgs   []*kafka.Message
	cancel context.CancelFunc
}

func (it *sliceIterator) Next() (*kafka.Message, error) {
	it.mu.Lock()
	defer it.mu.Unlock()
	if len(it.msgs) == 0 {
		it.cancel()
		return nil, kafka_client.ErrNoMessage
	}
	msg := it.msgs[0]
	it.msgs = it.msgs[1:]
	return msg, nil
}

func (it *sliceIterator) remaining() int {
	it.mu.Lock()
	defer it.mu.Unlock()
	return len(it.msgs)
}

type recordingCommitter struct {
	mu        sync.Mutex
	committed []*kafka.Message
}

func (c *recordingCommitter) Commit(msg *kafka.Message) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.committed = append(c.committed, msg)
	return nil
}

func (c *recordingCommitter) offsets() map[int32]kafka.Offset {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make(map[int32]kafka.Offset)
	for _, m := range c.committed {
		out[m.TopicPartition.Partition] = m.TopicPartition.Offset
	}
	return out
}

type echoAnalyzer struct{}

func (echoAnalyzer) Analyze(_ context.Context, req processing.AnalyzeRequest) (models.TicketAnalysis, error) {
	if req.Message == "" {
		return models.TicketAnalysis{}, processing.ErrEmptyMessage
	}
	return models.TicketAnalysis{
		OriginalMessage: req.Message,
		Verdict:         sentiment.Verdict{Sentiment: sentiment.Neutral},
		Ticket:          &models.Ticket{ID: 7, Message: req.Message, Author: req.Author},
	}, nil
}

type flakyPublisher struct {
	mu       sync.Mutex
	failures int
	calls    int
	events   []models.TicketAnalyzedEvent
}

func (p *flakyPublisher) Publish(_ context.Context, events ...models.TicketAnalyzedEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls++
	if p.failures > 0 {
		p.failures--
		return errors.New("broker unavailable")
	}
	p.events = append(p.events, events...)
	return nil
}

func runConsumer(t *testing.T, msgs []*kafka.Message, pub processing.Publisher) *recordingCommitter {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	it := &sliceIterator{msgs: msgs, cancel: cancel}
	committer := &recordingCommitter{}
	c := NewTicketConsumer(it, committer, echoAnalyzer{}, pub)
	c.flushInterval = time.Hour
	c.retryDelay = time.Millisecond

	done := make(chan struct{})
	go func() {
		c.Run(ctx)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("consumer did not stop")
	}
	return committer
}

func TestTicketConsumer_PublishesAndCommitsOnShutdown(t *testing.T) {
	pub := &flakyPublisher{}
	committer := runConsumer(t, []*kafka.Message{
		message(0, 10, `{"message":"App keeps crashing","author":"Ana"}`),
		message(0, 11, `{"message":"Thanks for the fix"}`),
		message(1, 4, `{"message":"Login is slow"}`),
	}, pub)

	require.Len(t, pub.events, 3)
	assert.Equal(t, "App keeps crashing", pub.events[0].OriginalMessage)
	assert.NotEmpty(t, pub.events[0].EventID)

	assert.Equal(t, map[int32]kafka.Offset{0: 11, 1: 4}, committer.offsets())
}

func TestTicketConsumer_SkippedMessagesAreCommitted(t *testing.T) {
	pub := &flakyPublisher{}
	committer := runConsumer(t, []*kafka.Message{
		message(0, 1, `{"message":"Works now"}`),
		message(0, 2, `not json`),
		message(0, 3, `{"message":""}`),
	}, pub)

	assert.Len(t, pub.events, 1)
	assert.Equal(t, map[int32]kafka.Offset{0: 3}, committer.offsets())
}

func TestTicketConsumer_RetriesPublish(t *testing.T) {
	pub := &flakyPublisher{failures: 2}
	committer := runConsumer(t, []*kafka.Message{
		message(0, 5, `{"message":"Export is broken"}`),
	}, pub)

	assert.Equal(t, 3, pub.calls)
	assert.Len(t, pub.events, 1)
	assert.Equal(t, map[int32]kafka.Offset{0: 5}, committer.offsets())
}

func TestTicketConsumer_FailedPublishIsNotCommitted(t *testing.T) {
	pub := &flakyPublisher{failures: publishAttempts}
	committer := runConsumer(t, []*kafka.Message{
		message(0, 5, `{"message":"Export is broken"}`),
	}, pub)

	assert.Empty(t, pub.events)
	assert.Empty(t, committer.offsets())
}

func TestTicketConsumer_PausesWhileTranslatorUnhealthy(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	healthy := &atomic.Bool{}
	it := &sliceIterator{
		msgs:   []*kafka.Message{message(0, 1, `{"message":"Hola, no funciona"}`)},
		cancel: cancel,
	}
	pub := &flakyPublisher{}
	c := NewTicketConsumer(it, &recordingCommitter{}, echoAnalyzer{}, pub).WithHealthCheck(healthy)
	c.flushInterval = time.Hour
	c.retryDelay = time.Millisecond

	done := make(chan struct{})
	go func() {
		c.Run(ctx)
		close(done)
	}()

	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, 1, it.remaining(), "nothing is read while the translator is down")

	healthy.Store(true)
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("consumer did not resume")
	}

	assert.Zero(t, it.remaining())
	require.Len(t, pub.events, 1)
	assert.Equal(t, "Hola, no funciona", pub.events[0].OriginalMessage)
}

func TestHighestOffsets(t *testing.T) {
	batch := []pending{
		{msg: message(0, 3, "")},
		{msg: message(1, 9, "")},
		{msg: message(0, 7, "")},
		{msg: message(0, 5, "")},
	}

	msgs := highestOffsets(batch)
	require.Len(t, msgs, 2)
	assert.Equal(t, kafka.Offset(7), msgs[0].TopicPartition.Offset)
	assert.Equal(t, kafka.Offset(9), msgs[1].TopicPartition.Offset)
}
