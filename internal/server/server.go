// Package server exposes the ticket pipeline over HTTP.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/spacesedan/sentiwatch/internal/models"
	"github.com/spacesedan/sentiwatch/internal/processing"
	"github.com/spacesedan/sentiwatch/internal/sentiment"
)

const (
	ServiceName    = "Sentiment Watchdog Backend"
	ServiceVersion = "1.0.0"
)

type ticketService interface {
	Analyze(ctx context.Context, req processing.AnalyzeRequest) (models.TicketAnalysis, error)
	ListTickets(ctx context.Context, filter *sentiment.Label, limit int) ([]models.AnalyzedTicket, sentiment.Summary, error)
	GetTicket(ctx context.Context, id int) (models.AnalyzedTicket, error)
	Summarize(messages []string, verdicts []sentiment.Verdict) sentiment.Summary
	Keywords(message string, label *sentiment.Label) (sentiment.Label, []string)
}

type Options struct {
	Port string
	// TranslatorHealthy is updated by the translator health monitor. Nil means
	// there is no translator to watch.
	TranslatorHealthy *atomic.Bool
	VaderAvailable    bool
}

type Server struct {
	echo    *echo.Echo
	service ticketService
	opts    Options
	now     func() time.Time
}

func NewServer(service ticketService, opts Options) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	srv := &Server{
		echo:    e,
		service: service,
		opts:    opts,
		now:     time.Now,
	}
	srv.registerRoutes()

	return srv
}

// ServeHTTP lets the server be mounted or exercised with httptest.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.echo.ServeHTTP(w, r)
}

func (s *Server) Start() error {
	slog.Info("[Server] Starting server", slog.String("port", s.opts.Port))
	if err := s.echo.Start(":" + s.opts.Port); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("failed to start server: %w", err)
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	if err := s.echo.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shutdown server: %w", err)
	}
	return nil
}
