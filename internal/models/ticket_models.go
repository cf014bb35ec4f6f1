package models

import (
	"time"

	"github.com/spacesedan/sentiwatch/internal/sentiment"
)

// TimestampLayout is the wall-clock format tickets are stored with.
const TimestampLayout = "2006-01-02T15:04:05"

const (
	DefaultAuthor   = "Anonymous"
	DefaultPriority = "medium"
)

type Ticket struct {
	ID        int    `json:"id" dynamodbav:"id"`
	Message   string `json:"message" dynamodbav:"message"`
	Timestamp string `json:"timestamp" dynamodbav:"timestamp"`
	Author    string `json:"author" dynamodbav:"author"`
	Priority  string `json:"priority,omitempty" dynamodbav:"priority,omitempty"`
}

// NewTicket is a ticket that has not been persisted yet.
type NewTicket struct {
	Message  string `json:"message"`
	Author   string `json:"author,omitempty"`
	Priority string `json:"priority,omitempty"`
}

// Build assigns id and timestamp and fills in the default author and priority.
func (n NewTicket) Build(id int, now time.Time) Ticket {
	author := n.Author
	if author == "" {
		author = DefaultAuthor
	}
	priority := n.Priority
	if priority == "" {
		priority = DefaultPriority
	}
	return Ticket{
		ID:        id,
		Message:   n.Message,
		Timestamp: now.Format(TimestampLayout),
		Author:    author,
		Priority:  priority,
	}
}

type AnalyzedTicket struct {
	Ticket
	SentimentAnalysis *sentiment.Verdict `json:"sentiment_analysis,omitempty"`
}

// TicketAnalysis is the outcome of running one message through the ticket
// pipeline: language preparation, scoring, keywords and optional persistence.
type TicketAnalysis struct {
	OriginalMessage   string            `json:"original_message"`
	TranslatedMessage string            `json:"translated_message"`
	LanguageDetected  string            `json:"language_detected"`
	Verdict           sentiment.Verdict `json:"verdict"`
	Keywords          []string          `json:"keywords"`
	Ticket            *Ticket           `json:"ticket,omitempty"`
	AnalyzedAt        time.Time         `json:"analyzed_at"`
}

// TicketAnalyzedEvent is published to Kafka after every analysis.
type TicketAnalyzedEvent struct {
	EventID string `json:"event_id"`
	TicketAnalysis
}
