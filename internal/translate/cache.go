package translate

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"log/slog"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/spacesedan/sentiwatch/internal/metrics"
)

const (
	cacheKeyPrefix = "translation:"

	// sharedTranslateTimeout bounds a backend call shared by several callers.
	sharedTranslateTimeout = 30 * time.Second
)

// Cache stores translated text. Get reports false on a miss.
type Cache interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
}

// CachedTranslator memoizes a backend in a Cache and collapses concurrent
// identical requests into one backend call. Cache errors never fail a
// translation.
type CachedTranslator struct {
	next  Translator
	cache Cache
	ttl   time.Duration
	group singleflight.Group
}

func NewCachedTranslator(next Translator, cache Cache, ttl time.Duration) *CachedTranslator {
	return &CachedTranslator{next: next, cache: cache, ttl: ttl}
}

func (c *CachedTranslator) Translate(ctx context.Context, text, source, target string) (string, error) {
	key := cacheKey(source, target, text)

	cached, ok, err := c.cache.Get(ctx, key)
	if err != nil {
		slog.Warn("[TranslationCache] Cache lookup failed",
			slog.String("key", key),
			slog.String("error", err.Error()))
	} else if ok {
		metrics.TranslationRequests.WithLabelValues("cache_hit").Inc()
		return cached, nil
	}

	// The backend call is detached from any one caller; each caller waits only
	// as long as its own ctx allows.
	ch := c.group.DoChan(key, func() (any, error) {
		sharedCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), sharedTranslateTimeout)
		defer cancel()

		out, err := c.next.Translate(sharedCtx, text, source, target)
		if err != nil {
			return "", err
		}
		if err := c.cache.Set(sharedCtx, key, out, c.ttl); err != nil {
			slog.Warn("[TranslationCache] Cache store failed",
				slog.String("key", key),
				slog.String("error", err.Error()))
		}
		return out, nil
	})

	var res singleflight.Result
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case res = <-ch:
	}
	if res.Err != nil {
		return "", res.Err
	}
	if res.Shared {
		slog.Debug("[TranslationCache] Shared in-flight translation", slog.String("key", key))
	}

	return res.Val.(string), nil
}

// HealthCheck delegates to the wrapped backend.
func (c *CachedTranslator) HealthCheck(ctx context.Context) bool {
	if hc, ok := c.next.(HealthChecker); ok {
		return hc.HealthCheck(ctx)
	}
	return true
}

func cacheKey(source, target, text string) string {
	sum := sha256.Sum256([]byte(source + "\x00" + target + "\x00" + text))
	return cacheKeyPrefix + hex.EncodeToString(sum[:])
}
