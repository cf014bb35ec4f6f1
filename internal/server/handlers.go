package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/spacesedan/sentiwatch/internal/db"
	"github.com/spacesedan/sentiwatch/internal/models"
	"github.com/spacesedan/sentiwatch/internal/processing"
	"github.com/spacesedan/sentiwatch/internal/sentiment"
)

// timestampLayout matches the microsecond ISO format clients already parse.
const timestampLayout = "2006-01-02T15:04:05.000000"

func (s *Server) handleRoot(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]any{
		"service": ServiceName,
		"version": ServiceVersion,
		"endpoints": map[string]string{
			"analyze_ticket": "/api/analyze-ticket (POST)",
			"get_tickets":    "/api/tickets (GET)",
			"get_ticket":     "/api/tickets/:id (GET)",
			"summary":        "/api/summary (POST)",
			"keywords":       "/api/keywords (POST)",
			"health":         "/health (GET)",
			"metrics":        "/metrics (GET)",
		},
	})
}

func (s *Server) handleHealth(c echo.Context) error {
	translatorHealthy := true
	if s.opts.TranslatorHealthy != nil {
		translatorHealthy = s.opts.TranslatorHealthy.Load()
	}

	return c.JSON(http.StatusOK, models.HealthResponse{
		Status:            "healthy",
		Message:           ServiceName + " is running!",
		TranslatorHealthy: translatorHealthy,
		VaderAvailable:    s.opts.VaderAvailable,
	})
}

func (s *Server) handleAnalyzeTicket(c echo.Context) error {
	var req models.AnalyzeTicketRequest
	if err := decodeJSON(c, &req); err != nil {
		return err
	}

	message := strings.TrimSpace(req.Message)
	if message == "" {
		return badRequest(CodeEmptyMessage, "Message cannot be empty")
	}

	var method sentiment.Method
	if req.Method != "" {
		m, err := sentiment.ParseMethod(req.Method)
		if err != nil {
			return badRequest(CodeInvalidMethod, fmt.Sprintf("Unknown analysis method %q", req.Method))
		}
		method = m
	}

	analysis, err := s.service.Analyze(c.Request().Context(), processing.AnalyzeRequest{
		Message:  message,
		Author:   req.Author,
		Priority: req.Priority,
		Save:     req.SaveTicket,
		Method:   method,
	})
	if errors.Is(err, processing.ErrEmptyMessage) {
		return badRequest(CodeEmptyMessage, "Message cannot be empty")
	}
	if err != nil {
		return internalError(CodeAnalysisError, "Internal server error during sentiment analysis", err)
	}

	resp := models.AnalyzeTicketResponse{
		OriginalMessage:   analysis.OriginalMessage,
		TranslatedMessage: analysis.TranslatedMessage,
		LanguageDetected:  analysis.LanguageDetected,
		Sentiment:         analysis.Verdict.Sentiment,
		Score:             analysis.Verdict.Score,
		Confidence:        analysis.Verdict.Confidence,
		Method:            analysis.Verdict.Method,
		Keywords:          analysis.Keywords,
		Error:             analysis.Verdict.Error,
		AnalysisTimestamp: analysis.AnalyzedAt.Format(timestampLayout),
	}
	if analysis.Ticket != nil {
		id := analysis.Ticket.ID
		resp.TicketSaved = true
		resp.TicketID = &id
	}

	return c.JSON(http.StatusOK, resp)
}

// handleListTickets ignores an unknown sentiment filter and a non-numeric limit.
func (s *Server) handleListTickets(c echo.Context) error {
	var filter *sentiment.Label
	if raw := c.QueryParam("sentiment"); raw != "" {
		if label, ok := sentiment.ParseLabel(strings.ToLower(raw)); ok {
			filter = &label
		}
	}

	limit, _ := strconv.Atoi(c.QueryParam("limit"))

	tickets, summary, err := s.service.ListTickets(c.Request().Context(), filter, limit)
	if err != nil {
		return internalError(CodeRetrievalError, "Internal server error while retrieving tickets", err)
	}

	return c.JSON(http.StatusOK, models.TicketsResponse{
		Tickets:     tickets,
		TotalCount:  len(tickets),
		Summary:     summary,
		RetrievedAt: s.now().Format(timestampLayout),
	})
}

func (s *Server) handleGetTicket(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return badRequest(CodeInvalidID, "Ticket ID must be an integer")
	}

	ticket, err := s.service.GetTicket(c.Request().Context(), id)
	if errors.Is(err, db.ErrTicketNotFound) {
		return notFound(CodeTicketNotFound, fmt.Sprintf("Ticket with ID %d not found", id))
	}
	if err != nil {
		return internalError(CodeRetrievalError, "Internal server error while retrieving ticket", err)
	}

	return c.JSON(http.StatusOK, models.TicketResponse{
		Ticket:      ticket,
		RetrievedAt: s.now().Format(timestampLayout),
	})
}

func (s *Server) handleSummary(c echo.Context) error {
	var req models.SummaryRequest
	if err := decodeJSON(c, &req); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, s.service.Summarize(req.Messages, req.Verdicts))
}

func (s *Server) handleKeywords(c echo.Context) error {
	var req models.KeywordsRequest
	if err := decodeJSON(c, &req); err != nil {
		return err
	}
	if strings.TrimSpace(req.Message) == "" {
		return badRequest(CodeEmptyMessage, "Message cannot be empty")
	}

	var label *sentiment.Label
	if req.Sentiment != "" {
		l, ok := sentiment.ParseLabel(strings.ToLower(req.Sentiment))
		if !ok {
			return badRequest(CodeInvalidSentiment, fmt.Sprintf("Unknown sentiment %q", req.Sentiment))
		}
		label = &l
	}

	l, keywords := s.service.Keywords(req.Message, label)
	return c.JSON(http.StatusOK, models.KeywordsResponse{Sentiment: l, Keywords: keywords})
}

// decodeJSON requires a JSON content type and a well-formed body.
func decodeJSON(c echo.Context, v any) error {
	ct := c.Request().Header.Get(echo.HeaderContentType)
	if !strings.HasPrefix(ct, echo.MIMEApplicationJSON) {
		return badRequest(CodeInvalidFormat, "Invalid request format. JSON required.")
	}
	if err := json.NewDecoder(c.Request().Body).Decode(v); err != nil {
		var httpErr *echo.HTTPError
		if errors.As(err, &httpErr) {
			return httpErr
		}
		return badRequest(CodeInvalidFormat, "Invalid request format. JSON required.")
	}
	return nil
}
