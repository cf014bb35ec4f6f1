package server

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/spacesedan/sentiwatch/internal/models"
	"github.com/spacesedan/sentiwatch/internal/processing"
	"github.com/spacesedan/sentiwatch/internal/sentiment"
)

type mockTicketService struct {
	analyzeFn     func(ctx context.Context, req processing.AnalyzeRequest) (models.TicketAnalysis, error)
	listTicketsFn func(ctx context.Context, filter *sentiment.Label, limit int) ([]models.AnalyzedTicket, sentiment.Summary, error)
	getTicketFn   func(ctx context.Context, id int) (models.AnalyzedTicket, error)
	summarizeFn   func(messages []string, verdicts []sentiment.Verdict) sentiment.Summary
	keywordsFn    func(message string, label *sentiment.Label) (sentiment.Label, []string)
}

func (m *mockTicketService) Analyze(ctx context.Context, req processing.AnalyzeRequest) (models.TicketAnalysis, error) {
	if m.analyzeFn != nil {
		return m.analyzeFn(ctx, req)
	}
	return models.TicketAnalysis{}, errors.New("not implemented")
}

func (m *mockTicketService) ListTickets(ctx context.Context, filter *sentiment.Label, limit int) ([]models.AnalyzedTicket, sentiment.Summary, error) {
	if m.listTicketsFn != nil {
		return m.listTicketsFn(ctx, filter, limit)
	}
	return nil, sentiment.Summary{}, errors.New("not implemented")
}

func (m *mockTicketService) GetTicket(ctx context.Context, id int) (models.AnalyzedTicket, error) {
	if m.getTicketFn != nil {
		return m.getTicketFn(ctx, id)
	}
	return models.AnalyzedTicket{}, errors.New("not implemented")
}

func (m *mockTicketService) Summarize(messages []string, verdicts []sentiment.Verdict) sentiment.Summary {
	if m.summarizeFn != nil {
		return m.summarizeFn(messages, verdicts)
	}
	return sentiment.Summary{}
}

func (m *mockTicketService) Keywords(message string, label *sentiment.Label) (sentiment.Label, []string) {
	if m.keywordsFn != nil {
		return m.keywordsFn(message, label)
	}
	return sentiment.Neutral, []string{}
}

var fixedNow = time.Date(2025, 7, 19, 8, 30, 0, 123456000, time.UTC)

func newTestServer(t *testing.T, svc ticketService, opts ...func(*Options)) *Server {
	t.Helper()
	o := Options{Port: "0", VaderAvailable: true}
	for _, opt := range opts {
		opt(&o)
	}
	srv := NewServer(svc, o)
	srv.now = func() time.Time { return fixedNow }
	return srv
}

func withTranslatorHealth(healthy bool) func(*Options) {
	return func(o *Options) {
		var b atomic.Bool
		b.Store(healthy)
		o.TranslatorHealthy = &b
	}
}

func doRequest(srv *Server, method, target, contentType string, body string) *httptest.ResponseRecorder {
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, r)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	return rec
}

func postJSON(srv *Server, target, body string) *httptest.ResponseRecorder {
	return doRequest(srv, http.MethodPost, target, "application/json", body)
}
