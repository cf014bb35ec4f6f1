package translate

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

type libreRequest struct {
	Q      string `json:"q"`
	Source string `json:"source"`
	Target string `json:"target"`
	Format string `json:"format"`
	APIKey string `json:"api_key,omitempty"`
}

type libreResponse struct {
	TranslatedText string `json:"translatedText"`
	Error          string `json:"error,omitempty"`
}

// LibreTranslator talks to a LibreTranslate-compatible HTTP API.
type LibreTranslator struct {
	Client         *http.Client
	baseURL        string
	apiKey         string
	maxRetries     int
	initialBackoff time.Duration
}

// LibreOption configures a LibreTranslator.
type LibreOption func(*LibreTranslator)

// WithRetry overrides the retry count and the first backoff delay.
func WithRetry(retries int, backoff time.Duration) LibreOption {
	return func(l *LibreTranslator) {
		l.maxRetries = retries
		l.initialBackoff = backoff
	}
}

func NewLibreTranslator(baseURL, apiKey string, timeout time.Duration, opts ...LibreOption) *LibreTranslator {
	slog.Info("[LibreTranslator] Initializing Client",
		slog.String("base_url", baseURL),
		slog.Duration("timeout", timeout))

	l := &LibreTranslator{
		Client:         &http.Client{Timeout: timeout},
		baseURL:        strings.TrimRight(baseURL, "/"),
		apiKey:         apiKey,
		maxRetries:     maxRetries,
		initialBackoff: initialBackoff,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

func (l *LibreTranslator) Translate(ctx context.Context, text, source, target string) (string, error) {
	var result libreResponse
	start := time.Now()

	err := l.postJSON(ctx, l.baseURL+"/translate", libreRequest{
		Q:      text,
		Source: source,
		Target: target,
		Format: "text",
		APIKey: l.apiKey,
	}, &result)
	if err != nil {
		slog.Error("[LibreTranslator] Translation request failed",
			slog.String("source", source),
			slog.Duration("elapsed", time.Since(start)))
		return "", fmt.Errorf("%w: %w", ErrTranslateFailed, err)
	}

	if strings.TrimSpace(result.TranslatedText) == "" {
		return "", ErrEmptyTranslation
	}

	slog.Debug("[LibreTranslator] Translation request successful",
		slog.String("source", source),
		slog.Duration("elapsed", time.Since(start)))
	return result.TranslatedText, nil
}

// HealthCheck reports whether the languages endpoint answers with 200.
func (l *LibreTranslator) HealthCheck(ctx context.Context) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, l.baseURL+"/languages", nil)
	if err != nil {
		return false
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := l.Client.Do(req)
	if err != nil {
		slog.Warn("[LibreTranslator] Health check failed", slog.String("error", err.Error()))
		return false
	}
	defer resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}

// DoWithRetry retries transport errors and 5xx answers with a doubling backoff.
// newReq is called once per attempt so that request bodies can be replayed.
func (l *LibreTranslator) DoWithRetry(ctx context.Context, newReq func() (*http.Request, error)) (*http.Response, error) {
	var (
		resp    *http.Response
		err     error
		backoff = l.initialBackoff
	)

	for attempt := 0; attempt < l.maxRetries; attempt++ {
		var req *http.Request
		req, err = newReq()
		if err != nil {
			return nil, err
		}

		resp, err = l.Client.Do(req)
		if err == nil && resp.StatusCode < 500 {
			return resp, nil
		}

		msg := errMsg(err, resp)
		if resp != nil {
			resp.Body.Close()
			if err == nil {
				err = fmt.Errorf("upstream returned %s", msg)
			}
			resp = nil
		}

		if attempt == l.maxRetries-1 {
			break
		}

		slog.Warn("[LibreTranslator] Request failed, will retry",
			slog.Int("attempt", attempt+1),
			slog.String("error", msg))

		if sleepErr := sleepCtx(ctx, backoff); sleepErr != nil {
			return nil, sleepErr
		}
		backoff *= 2
	}

	return resp, err
}

func (l *LibreTranslator) postJSON(ctx context.Context, endpoint string, input any, output any) error {
	body, err := json.Marshal(input)
	if err != nil {
		return fmt.Errorf("failed to marshal input: %w", err)
	}

	resp, err := l.DoWithRetry(ctx, func() (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
		if err != nil {
			return nil, fmt.Errorf("failed to build request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("User-Agent", userAgent)
		return req, nil
	})
	if err != nil {
		return fmt.Errorf("request failed after retries: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var apiErr libreResponse
		if json.Unmarshal(respBody, &apiErr) == nil && apiErr.Error != "" {
			return fmt.Errorf("status code %d: %s", resp.StatusCode, apiErr.Error)
		}
		return fmt.Errorf("status code %d", resp.StatusCode)
	}

	if err := json.Unmarshal(respBody, output); err != nil {
		slog.Error("[LibreTranslator] Failed to unmarshal response",
			slog.String("endpoint", endpoint),
			slog.String("error", err.Error()),
			getPreview(respBody))
		return fmt.Errorf("failed to unmarshal response: %w", err)
	}

	return nil
}

func getPreview(respBody []byte) slog.Attr {
	raw := string(respBody)
	if len(raw) > 50 {
		raw = raw[:50]
	}
	return slog.String("raw_response", raw)
}

func errMsg(err error, resp *http.Response) string {
	if err != nil {
		return err.Error()
	}
	if resp != nil {
		return fmt.Sprintf("status code %d", resp.StatusCode)
	}
	return "unknown error"
}
