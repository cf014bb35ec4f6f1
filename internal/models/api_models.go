package models

import "github.com/spacesedan/sentiwatch/internal/sentiment"

type AnalyzeTicketRequest struct {
	Message    string `json:"message"`
	Author     string `json:"author,omitempty"`
	Priority   string `json:"priority,omitempty"`
	SaveTicket bool   `json:"save_ticket,omitempty"`
	Method     string `json:"method,omitempty"`
}

type AnalyzeTicketResponse struct {
	OriginalMessage   string           `json:"original_message"`
	TranslatedMessage string           `json:"translated_message"`
	LanguageDetected  string           `json:"language_detected"`
	Sentiment         sentiment.Label  `json:"sentiment"`
	Score             float64          `json:"score"`
	Confidence        float64          `json:"confidence"`
	Method            sentiment.Method `json:"method,omitempty"`
	Keywords          []string         `json:"keywords"`
	TicketSaved       bool             `json:"ticket_saved"`
	TicketID          *int             `json:"ticket_id,omitempty"`
	Error             string           `json:"error,omitempty"`
	AnalysisTimestamp string           `json:"analysis_timestamp"`
}

type TicketsResponse struct {
	Tickets     []AnalyzedTicket  `json:"tickets"`
	TotalCount  int               `json:"total_count"`
	Summary     sentiment.Summary `json:"summary"`
	RetrievedAt string            `json:"retrieved_at"`
}

type TicketResponse struct {
	Ticket      AnalyzedTicket `json:"ticket"`
	RetrievedAt string         `json:"retrieved_at"`
}

type SummaryRequest struct {
	Messages []string            `json:"messages,omitempty"`
	Verdicts []sentiment.Verdict `json:"verdicts,omitempty"`
}

type KeywordsRequest struct {
	Message   string `json:"message"`
	Sentiment string `json:"sentiment,omitempty"`
}

type KeywordsResponse struct {
	Sentiment sentiment.Label `json:"sentiment"`
	Keywords  []string        `json:"keywords"`
}

type HealthResponse struct {
	Status            string `json:"status"`
	Message           string `json:"message"`
	TranslatorHealthy bool   `json:"translator_healthy"`
	VaderAvailable    bool   `json:"vader_available"`
}

type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}
