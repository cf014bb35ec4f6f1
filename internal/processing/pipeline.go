// Package processing runs support tickets through language preparation,
// sentiment scoring, keyword extraction, persistence and event publishing.
package processing

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/spacesedan/sentiwatch/internal/db"
	"github.com/spacesedan/sentiwatch/internal/metrics"
	"github.com/spacesedan/sentiwatch/internal/models"
	"github.com/spacesedan/sentiwatch/internal/sentiment"
	"github.com/spacesedan/sentiwatch/internal/translate"
)

var ErrEmptyMessage = errors.New("message cannot be empty")

// Preparer detects the language of a message and translates it if needed.
type Preparer interface {
	Prepare(ctx context.Context, text string) translate.Prepared
}

// Publisher delivers analyzed-ticket events.
type Publisher interface {
	Publish(ctx context.Context, events ...models.TicketAnalyzedEvent) error
}

// AnalyzeRequest is one message to analyze. Method may be empty for the
// pipeline default.
type AnalyzeRequest struct {
	Message  string
	Author   string
	Priority string
	Save     bool
	Method   sentiment.Method
}

// Pipeline is the ticket workflow shared by the HTTP API and the Kafka worker.
type Pipeline struct {
	engine      *sentiment.Engine
	preparer    Preparer
	store       db.TicketRepository
	publisher   Publisher
	method      sentiment.Method
	stripMarkup bool
	now         func() time.Time
}

type Option func(*Pipeline)

// WithPublisher publishes an event after every analysis.
func WithPublisher(p Publisher) Option {
	return func(pl *Pipeline) {
		pl.publisher = p
	}
}

// WithDefaultMethod sets the method used when a request names none.
func WithDefaultMethod(m sentiment.Method) Option {
	return func(pl *Pipeline) {
		pl.method = m
	}
}

// WithMarkupStripping renders markdown to plain text before analysis.
func WithMarkupStripping(enabled bool) Option {
	return func(pl *Pipeline) {
		pl.stripMarkup = enabled
	}
}

func NewPipeline(engine *sentiment.Engine, preparer Preparer, store db.TicketRepository, opts ...Option) *Pipeline {
	p := &Pipeline{
		engine:   engine,
		preparer: preparer,
		store:    store,
		method:   sentiment.MethodCombined,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Engine exposes the scoring engine.
func (p *Pipeline) Engine() *sentiment.Engine {
	return p.engine
}

// Analyze runs one message through the pipeline. Scoring failures come back as
// degraded verdicts; a failed save leaves Ticket nil and is only logged.
func (p *Pipeline) Analyze(ctx context.Context, req AnalyzeRequest) (models.TicketAnalysis, error) {
	message := strings.TrimSpace(req.Message)
	if message == "" {
		return models.TicketAnalysis{}, ErrEmptyMessage
	}

	start := time.Now()
	method := req.Method
	if method == "" {
		method = p.method
	}

	prepared := p.preparer.Prepare(ctx, p.clean(message))
	verdict := p.analyze(prepared.Text, method)

	analysis := models.TicketAnalysis{
		OriginalMessage:   message,
		TranslatedMessage: prepared.Text,
		LanguageDetected:  prepared.Language,
		Verdict:           verdict,
		Keywords:          sentiment.ExtractKeywords(prepared.Text, verdict.Sentiment),
		AnalyzedAt:        p.now(),
	}

	if req.Save {
		ticket, err := p.store.Create(ctx, models.NewTicket{
			Message:  message,
			Author:   req.Author,
			Priority: req.Priority,
		})
		if err != nil {
			slog.Error("[Pipeline] Failed to save ticket",
				slog.String("error", err.Error()))
		} else {
			metrics.TicketsSaved.Inc()
			analysis.Ticket = &ticket
		}
	}

	metrics.AnalysisDuration.Observe(time.Since(start).Seconds())

	if p.publisher != nil {
		if err := p.publisher.Publish(ctx, NewEvent(analysis)); err != nil {
			metrics.EventsPublished.WithLabelValues("failed").Inc()
			slog.Warn("[Pipeline] Failed to publish analysis event",
				slog.String("error", err.Error()))
		} else {
			metrics.EventsPublished.WithLabelValues("ok").Inc()
		}
	}

	return analysis, nil
}

// ListTickets analyzes every stored ticket, keeps those matching filter (nil
// for all), truncates to limit when limit > 0 and summarizes the result.
func (p *Pipeline) ListTickets(ctx context.Context, filter *sentiment.Label, limit int) ([]models.AnalyzedTicket, sentiment.Summary, error) {
	tickets, err := p.store.List(ctx)
	if err != nil {
		return nil, sentiment.Summary{}, fmt.Errorf("list tickets: %w", err)
	}

	analyzed := make([]models.AnalyzedTicket, 0, len(tickets))
	for _, t := range tickets {
		v := p.analyze(p.clean(t.Message), sentiment.MethodCombined)
		if filter != nil && v.Sentiment != *filter {
			continue
		}
		analyzed = append(analyzed, models.AnalyzedTicket{Ticket: t, SentimentAnalysis: &v})
	}

	if limit > 0 && len(analyzed) > limit {
		analyzed = analyzed[:limit]
	}

	verdicts := make([]sentiment.Verdict, 0, len(analyzed))
	for _, t := range analyzed {
		verdicts = append(verdicts, *t.SentimentAnalysis)
	}

	return analyzed, sentiment.Summarize(verdicts), nil
}

// GetTicket returns one ticket with its analysis. Unknown ids wrap
// db.ErrTicketNotFound.
func (p *Pipeline) GetTicket(ctx context.Context, id int) (models.AnalyzedTicket, error) {
	t, err := p.store.Get(ctx, id)
	if err != nil {
		return models.AnalyzedTicket{}, err
	}
	v := p.analyze(p.clean(t.Message), sentiment.MethodCombined)
	return models.AnalyzedTicket{Ticket: t, SentimentAnalysis: &v}, nil
}

// Summarize aggregates precomputed verdicts followed by raw messages, which are
// analyzed on the fly.
func (p *Pipeline) Summarize(messages []string, verdicts []sentiment.Verdict) sentiment.Summary {
	items := make([]sentiment.Item, 0, len(verdicts)+len(messages))
	for i := range verdicts {
		items = append(items, sentiment.Item{Verdict: &verdicts[i]})
	}
	for _, m := range messages {
		items = append(items, sentiment.Item{Message: p.clean(m)})
	}
	return p.engine.SummarizeItems(items)
}

// Keywords extracts keywords for label, or for the message's own verdict when
// label is nil.
func (p *Pipeline) Keywords(message string, label *sentiment.Label) (sentiment.Label, []string) {
	text := p.clean(message)
	var l sentiment.Label
	if label != nil {
		l = *label
	} else {
		l = p.analyze(text, sentiment.MethodCombined).Sentiment
	}
	return l, sentiment.ExtractKeywords(text, l)
}

// NewEvent wraps an analysis with a fresh event id.
func NewEvent(a models.TicketAnalysis) models.TicketAnalyzedEvent {
	return models.TicketAnalyzedEvent{
		EventID:        uuid.NewString(),
		TicketAnalysis: a,
	}
}

func (p *Pipeline) analyze(text string, method sentiment.Method) sentiment.Verdict {
	v := p.engine.Analyze(text, method)
	if v.Failed() {
		metrics.DegradedTotal.WithLabelValues(degradedReason(v.Err())).Inc()
	} else {
		metrics.AnalysesTotal.WithLabelValues(string(v.Method), string(v.Sentiment)).Inc()
	}
	return v
}

// clean renders markup to plain text when enabled, keeping the original if
// nothing would be left.
func (p *Pipeline) clean(text string) string {
	if !p.stripMarkup {
		return text
	}
	if plain := sentiment.PlainText(text); plain != "" {
		return plain
	}
	return text
}

func degradedReason(err error) string {
	switch {
	case errors.Is(err, sentiment.ErrEmptyInput):
		return "empty_input"
	case errors.Is(err, sentiment.ErrEmptyAfterNormalization):
		return "empty_after_normalization"
	case errors.Is(err, sentiment.ErrInternalScoring):
		return "internal_error"
	case errors.Is(err, sentiment.ErrUnknownMethod):
		return "unknown_method"
	default:
		return "unknown"
	}
}
