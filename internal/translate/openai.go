package translate

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

const translatePrompt = "You translate customer support messages. Translate the user's message from %s to %s. " +
	"Reply with the translation only, keeping tone and punctuation."

// OpenAITranslator translates with a chat completion model.
type OpenAITranslator struct {
	Client *openai.Client
	model  string
}

// NewOpenAITranslator builds a client with its own HTTP timeout. baseURL may be
// empty to use the public API.
func NewOpenAITranslator(apiKey, model, baseURL string, timeout time.Duration) *OpenAITranslator {
	config := openai.DefaultConfig(apiKey)
	config.HTTPClient = &http.Client{Timeout: timeout}
	if baseURL != "" {
		config.BaseURL = baseURL
	}
	if model == "" {
		model = openai.GPT4oMini
	}

	slog.Info("[OpenAITranslator] OpenAI client initialized",
		slog.String("model", model),
		slog.Duration("timeout", timeout))

	return &OpenAITranslator{
		Client: openai.NewClientWithConfig(config),
		model:  model,
	}
}

func (o *OpenAITranslator) Translate(ctx context.Context, text, source, target string) (string, error) {
	resp, err := o.Client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: o.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: fmt.Sprintf(translatePrompt, source, target)},
			{Role: openai.ChatMessageRoleUser, Content: text},
		},
	})
	if err != nil {
		slog.Error("[OpenAITranslator] Chat completion failed",
			slog.String("source", source),
			slog.String("error", err.Error()))
		return "", fmt.Errorf("%w: %w", ErrTranslateFailed, err)
	}

	if len(resp.Choices) == 0 {
		return "", ErrEmptyTranslation
	}
	out := strings.TrimSpace(resp.Choices[0].Message.Content)
	if out == "" {
		return "", ErrEmptyTranslation
	}
	return out, nil
}

// HealthCheck lists models as a cheap authenticated round trip.
func (o *OpenAITranslator) HealthCheck(ctx context.Context) bool {
	if _, err := o.Client.ListModels(ctx); err != nil {
		slog.Warn("[OpenAITranslator] Health check failed", slog.String("error", err.Error()))
		return false
	}
	return true
}
