package metrics

import (
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Sentiment analysis metrics
var (
	// AnalysesTotal counts verdicts by method and label
	AnalysesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sentiment_analyses_total",
			Help: "Total sentiment analyses by method and resulting sentiment",
		},
		[]string{"method", "sentiment"},
	)

	// DegradedTotal counts analyses that fell back to a neutral verdict
	DegradedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sentiment_degraded_total",
			Help: "Total degraded sentiment analyses by reason",
		},
		[]string{"reason"},
	)

	AnalysisDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "sentiment_analysis_duration_seconds",
			Help:    "Duration of the ticket analysis pipeline in seconds",
			Buckets: []float64{.0005, .001, .0025, .005, .01, .025, .05, .1, .25, .5, 1, 2.5},
		},
	)
)

// Translation metrics
var (
	// TranslationRequests counts translation attempts by outcome
	// (translated, skipped, failed, cache_hit)
	TranslationRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "translation_requests_total",
			Help: "Total translation requests by outcome",
		},
		[]string{"outcome"},
	)
)

// Ticket pipeline metrics
var (
	TicketsSaved = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "tickets_saved_total",
			Help: "Total tickets persisted",
		},
	)

	EventsPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ticket_events_published_total",
			Help: "Total analyzed-ticket events published to Kafka by status",
		},
		[]string{"status"},
	)
)

// HTTP metrics
var (
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route", "status_code"},
	)

	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "status_code"},
	)
)

// Middleware records request metrics for every route except /metrics.
func Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			route := c.Path()
			if route == "/metrics" {
				return next(c)
			}

			start := time.Now()
			err := next(c)

			status := c.Response().Status
			if he, ok := err.(*echo.HTTPError); ok {
				status = he.Code
			}
			code := strconv.Itoa(status)
			HTTPRequestDuration.WithLabelValues(c.Request().Method, route, code).Observe(time.Since(start).Seconds())
			HTTPRequestsTotal.WithLabelValues(c.Request().Method, route, code).Inc()
			return err
		}
	}
}
