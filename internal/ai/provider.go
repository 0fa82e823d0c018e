package ai

import (
	"context"
	"fmt"
	"strings"
	"time"
)

const (
	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"
	ProviderMock   = "mock"
)

// Settings select and configure the upstream provider.
type Settings struct {
	Provider string

	OpenAIKey     string
	OpenAIModel   string
	OpenAIBaseURL string

	GeminiKey   string
	GeminiModel string

	Timeout time.Duration
}

// NewCompleter builds the Completer for s.Provider. A missing credential is not
// an error here; the client reports ErrNotConfigured per request.
func NewCompleter(ctx context.Context, s Settings) (Completer, error) {
	switch strings.ToLower(strings.TrimSpace(s.Provider)) {
	case "", ProviderOpenAI:
		return New(s.OpenAIKey, s.OpenAIModel, s.OpenAIBaseURL, s.Timeout), nil
	case ProviderGemini:
		return NewGemini(ctx, s.GeminiKey, s.GeminiModel)
	case ProviderMock:
		return NewMock(), nil
	default:
		return nil, fmt.Errorf("unknown llm provider %q", s.Provider)
	}
}
