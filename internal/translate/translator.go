package translate

import (
	"context"
	"errors"
	"time"
)

const (
	maxRetries     = 3
	initialBackoff = 500 * time.Millisecond
	userAgent      = "sentiwatch-client/1.0 (+https://github.com/spacesedan/sentiwatch)"
)

var (
	ErrEmptyTranslation = errors.New("translation returned empty text")
	ErrTranslateFailed  = errors.New("translation failed")
)

type Translator interface {
	Translate(ctx context.Context, text, source, target string) (string, error)
}

// HealthChecker is implemented by translators that can probe their backend.
type HealthChecker interface {
	HealthCheck(ctx context.Context) bool
}

// sleepCtx waits for d or until ctx is done.
func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
