package llm

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"DailyDigest/internal/config"
	"DailyDigest/internal/ports"
)

const defaultTimeout = 90 * time.Second

// completer is the slice of *openai.Client the pipeline relies on.
type completer interface {
	CreateChatCompletion(ctx context.Context, request openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// OpenAIClient implements ports.ChatClient over any OpenAI-compatible endpoint.
type OpenAIClient struct {
	inner   completer
	model   string
	timeout time.Duration
}

var _ ports.ChatClient = (*OpenAIClient)(nil)

// NewOpenAIClient builds a client from configuration.
func NewOpenAIClient(cfg config.OpenAIConfig) *OpenAIClient {
	transport := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		transport.BaseURL = cfg.BaseURL
	}
	transport.HTTPClient = &http.Client{}

	return newClient(openai.NewClientWithConfig(transport), cfg.Model, cfg.Timeout)
}

func newClient(inner completer, model string, timeout time.Duration) *OpenAIClient {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &OpenAIClient{inner: inner, model: model, timeout: timeout}
}

// Complete sends a single user message and returns the first choice.
func (c *OpenAIClient) Complete(ctx context.Context, req ports.Completion) (string, error) {
	if c == nil || c.inner == nil {
		return "", fmt.Errorf("openai client is nil")
	}

	model := req.Model
	if model == "" {
		model = c.model
	}
	if model == "" {
		return "", fmt.Errorf("openai client misconfigured: no model")
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	resp, err := c.inner.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: req.Prompt},
		},
		Temperature: req.Temperature,
	})
	if err != nil {
		return "", fmt.Errorf("chat completion %s: %w", model, err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("chat completion %s: no choices", model)
	}

	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}
