package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"DailyDigest/internal/config"
	"DailyDigest/internal/ports"
)

type capturingCompleter struct {
	last     openai.ChatCompletionRequest
	deadline bool
	resp     openai.ChatCompletionResponse
	err      error
}

func (c *capturingCompleter) CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
	c.last = req
	_, c.deadline = ctx.Deadline()
	return c.resp, c.err
}

func TestCompleteBuildsRequest(t *testing.T) {
	t.Parallel()

	inner := &capturingCompleter{resp: openai.ChatCompletionResponse{
		Choices: []openai.ChatCompletionChoice{{
			Message: openai.ChatCompletionMessage{Role: openai.ChatMessageRoleAssistant, Content: " done \n"},
		}},
	}}
	client := newClient(inner, "default-model", time.Second)

	out, err := client.Complete(context.Background(), ports.Completion{Prompt: "hello", Temperature: 0.7})
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if out != "done" {
		t.Fatalf("unexpected output %q", out)
	}
	if inner.last.Model != "default-model" {
		t.Fatalf("expected default model, got %s", inner.last.Model)
	}
	if len(inner.last.Messages) != 1 || inner.last.Messages[0].Role != openai.ChatMessageRoleUser || inner.last.Messages[0].Content != "hello" {
		t.Fatalf("unexpected messages: %+v", inner.last.Messages)
	}
	if !inner.deadline {
		t.Fatalf("expected a bounded context")
	}
}

func TestCompleteErrors(t *testing.T) {
	t.Parallel()

	client := newClient(&capturingCompleter{err: errors.New("boom")}, "m", 0)
	if _, err := client.Complete(context.Background(), ports.Completion{Prompt: "x"}); err == nil {
		t.Fatalf("expected transport error")
	}

	client = newClient(&capturingCompleter{}, "m", 0)
	if _, err := client.Complete(context.Background(), ports.Completion{Prompt: "x"}); err == nil {
		t.Fatalf("expected no-choices error")
	}

	client = newClient(&capturingCompleter{}, "", 0)
	if _, err := client.Complete(context.Background(), ports.Completion{Prompt: "x"}); err == nil {
		t.Fatalf("expected missing model error")
	}
}

func TestOpenAIClientAgainstServer(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/chat/completions" {
			http.NotFound(w, r)
			return
		}
		if got := r.Header.Get("Authorization"); got != "Bearer sk-test" {
			t.Errorf("unexpected auth header %q", got)
		}
		var req openai.ChatCompletionRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(openai.ChatCompletionResponse{
			Model: req.Model,
			Choices: []openai.ChatCompletionChoice{{
				Message: openai.ChatCompletionMessage{Role: openai.ChatMessageRoleAssistant, Content: "summary from " + req.Model},
			}},
		})
	}))
	defer server.Close()

	client := NewOpenAIClient(config.OpenAIConfig{
		APIKey:  "sk-test",
		BaseURL: server.URL + "/v1",
		Model:   "gpt-4o",
		Timeout: 5 * time.Second,
	})

	out, err := client.Complete(context.Background(), ports.Completion{Prompt: "hi"})
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if out != "summary from gpt-4o" {
		t.Fatalf("unexpected output %q", out)
	}
}
