package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"thinkclear-backend/internal/sanitize"
)

const (
	DefaultOpenAIBaseURL = "https://api.openai.com"
	DefaultOpenAIModel   = "gpt-4o-mini"
	DefaultTimeout       = 30 * time.Second

	temperature = 0.3
)

// Completer returns the raw, untrusted reply of an upstream model.
type Completer interface {
	Complete(ctx context.Context, p Prompt) (sanitize.Raw, error)
}

// OpenAIClient talks to the chat completions endpoint.
type OpenAIClient struct {
	APIKey  string
	Model   string
	BaseURL string
	HTTP    *http.Client
}

func New(apiKey, model, baseURL string, timeout time.Duration) *OpenAIClient {
	if model == "" {
		model = DefaultOpenAIModel
	}
	if baseURL == "" {
		baseURL = DefaultOpenAIBaseURL
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &OpenAIClient{
		APIKey:  apiKey,
		Model:   model,
		BaseURL: strings.TrimRight(baseURL, "/"),
		HTTP:    &http.Client{Timeout: timeout},
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model          string         `json:"model"`
	Messages       []chatMessage  `json:"messages"`
	ResponseFormat map[string]any `json:"response_format"`
	Temperature    float64        `json:"temperature"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content json.RawMessage `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

func (c *OpenAIClient) Complete(ctx context.Context, p Prompt) (sanitize.Raw, error) {
	if c.APIKey == "" {
		return sanitize.Raw{}, ErrNotConfigured
	}

	body, err := json.Marshal(chatRequest{
		Model: c.Model,
		Messages: []chatMessage{
			{Role: "system", Content: p.System},
			{Role: "user", Content: p.User},
		},
		ResponseFormat: map[string]any{"type": "json_object"},
		Temperature:    temperature,
	})
	if err != nil {
		return sanitize.Raw{}, &Error{Op: "encode request", Cause: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/v1/chat/completions", bytes.NewReader(body))
	if err != nil {
		return sanitize.Raw{}, &Error{Op: "build request", Cause: err}
	}
	req.Header.Set("Authorization", "Bearer "+c.APIKey)
	req.Header.Set("Content-Type", "application/json")

	res, err := c.HTTP.Do(req)
	if err != nil {
		return sanitize.Raw{}, &Error{Op: "send request", Cause: err}
	}
	defer res.Body.Close()

	// ответ модели небольшой, но лимит всё равно нужен
	buf, err := io.ReadAll(io.LimitReader(res.Body, 1<<20))
	if err != nil {
		return sanitize.Raw{}, &Error{Op: "read response", Status: res.StatusCode, Cause: err}
	}
	if res.StatusCode < 200 || res.StatusCode > 299 {
		return sanitize.Raw{}, &Error{Op: "chat completion", Status: res.StatusCode, Cause: fmt.Errorf("upstream status %s", res.Status)}
	}

	var out chatResponse
	if err := json.Unmarshal(buf, &out); err != nil {
		return sanitize.Raw{}, &Error{Op: "decode response", Status: res.StatusCode, Cause: err}
	}
	if len(out.Choices) == 0 {
		return sanitize.Raw{}, &Error{Op: "decode response", Status: res.StatusCode, Cause: errors.New("no choices")}
	}

	content := bytes.TrimSpace(out.Choices[0].Message.Content)
	if len(content) == 0 || bytes.Equal(content, []byte("null")) {
		return sanitize.Raw{}, &Error{Op: "decode response", Status: res.StatusCode, Cause: errors.New("message content is missing")}
	}
	return sanitize.RawContent(content), nil
}
