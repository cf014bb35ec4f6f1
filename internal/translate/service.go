package translate

import (
	"context"
	"log/slog"
	"strings"

	"github.com/spacesedan/sentiwatch/internal/metrics"
)

// Prepared is text ready for scoring. Text is the translation when one
// succeeded and the original otherwise.
type Prepared struct {
	Original     string
	Text         string
	Language     string
	Confidence   float64
	Translated   bool
	DetectErr    error
	TranslateErr error
}

// Service runs detection and, for non-English text, translation to English.
// Failures never surface as errors; they are recorded on Prepared.
type Service struct {
	detector   Detector
	translator Translator
}

// NewService builds a service. A nil translator disables translation.
func NewService(detector Detector, translator Translator) *Service {
	return &Service{detector: detector, translator: translator}
}

func (s *Service) Prepare(ctx context.Context, text string) Prepared {
	p := Prepared{Original: text, Text: text, Language: DefaultLanguage}

	det := s.detector.Detect(text)
	p.Language = det.Language
	p.Confidence = det.Confidence
	p.DetectErr = det.Err
	if det.Err != nil {
		slog.Debug("[Translate] Language detection fell back to default",
			slog.String("language", det.Language),
			slog.String("error", det.Err.Error()))
	}

	if p.Language == DefaultLanguage {
		return p
	}
	if s.translator == nil {
		metrics.TranslationRequests.WithLabelValues("skipped").Inc()
		return p
	}

	out, err := s.translator.Translate(ctx, text, p.Language, DefaultLanguage)
	if err == nil && strings.TrimSpace(out) == "" {
		err = ErrEmptyTranslation
	}
	if err != nil {
		metrics.TranslationRequests.WithLabelValues("failed").Inc()
		slog.Warn("[Translate] Translation failed, scoring original text",
			slog.String("language", p.Language),
			slog.String("error", err.Error()))
		p.TranslateErr = err
		return p
	}

	metrics.TranslationRequests.WithLabelValues("translated").Inc()
	p.Text = out
	p.Translated = true
	return p
}

// TranslationEnabled reports whether a backend is configured.
func (s *Service) TranslationEnabled() bool {
	return s.translator != nil
}

// HealthCheck probes the translation backend. Without a backend, or with one
// that cannot be probed, the service is healthy.
func (s *Service) HealthCheck(ctx context.Context) bool {
	if s.translator == nil {
		return true
	}
	if hc, ok := s.translator.(HealthChecker); ok {
		return hc.HealthCheck(ctx)
	}
	return true
}
