package ai

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/genai"

	"thinkclear-backend/internal/sanitize"
)

const DefaultGeminiModel = "gemini-2.5-flash"

// GeminiClient is a Completer backed by the Gemini API.
type GeminiClient struct {
	client *genai.Client
	model  string
}

// NewGemini creates the client. Without an API key it still returns a client
// whose every call fails with ErrNotConfigured.
func NewGemini(ctx context.Context, apiKey, model string) (*GeminiClient, error) {
	if model == "" {
		model = DefaultGeminiModel
	}
	if apiKey == "" {
		return &GeminiClient{model: model}, nil
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("creating gemini client: %w", err)
	}
	return &GeminiClient{client: client, model: model}, nil
}

func (g *GeminiClient) Complete(ctx context.Context, p Prompt) (sanitize.Raw, error) {
	if g.client == nil {
		return sanitize.Raw{}, ErrNotConfigured
	}

	temp := float32(temperature)
	cfg := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(p.System, genai.RoleUser),
		Temperature:       &temp,
		ResponseMIMEType:  "application/json",
	}
	contents := []*genai.Content{genai.NewContentFromText(p.User, genai.RoleUser)}

	res, err := g.client.Models.GenerateContent(ctx, g.model, contents, cfg)
	if err != nil {
		return sanitize.Raw{}, &Error{Op: "generate content", Cause: err}
	}

	text := res.Text()
	if text == "" {
		return sanitize.Raw{}, &Error{Op: "generate content", Cause: errors.New("empty text")}
	}
	return sanitize.RawText(text), nil
}
