package rewrite

import (
	"context"
	"fmt"
	"strings"

	"DailyDigest/internal/ports"
)

const DefaultCommentaryLength = "200-300 characters"

const expandPrompt = `Here is an article summary:
%s

Reference notes (optional):
%s

Based on the summary and the notes, write a commentary or analysis of %s in %s:`

// ExpanderOptions tunes the commentary prompt.
type ExpanderOptions struct {
	Model       string
	Temperature float32
	Length      string
	Language    string
}

// Expander produces long-form commentary from a summary.
type Expander struct {
	chat ports.ChatClient
	opts ExpanderOptions
}

var _ ports.Expander = (*Expander)(nil)

func NewExpander(chat ports.ChatClient, opts ExpanderOptions) *Expander {
	if strings.TrimSpace(opts.Length) == "" {
		opts.Length = DefaultCommentaryLength
	}
	if strings.TrimSpace(opts.Language) == "" {
		opts.Language = DefaultLanguage
	}
	return &Expander{chat: chat, opts: opts}
}

// Expand issues exactly one model call; callers decide how to degrade on error.
func (e *Expander) Expand(ctx context.Context, summary, extra string) (string, error) {
	if e == nil || e.chat == nil {
		return "", fmt.Errorf("expander is not configured")
	}

	prompt := fmt.Sprintf(expandPrompt, summary, extra, e.opts.Length, e.opts.Language)
	out, err := e.chat.Complete(ctx, ports.Completion{
		Model:       e.opts.Model,
		Prompt:      prompt,
		Temperature: e.opts.Temperature,
	})
	if err != nil {
		return "", fmt.Errorf("expand summary: %w", err)
	}

	out = strings.TrimSpace(out)
	if out == "" {
		return "", ErrEmptyCompletion
	}
	return out, nil
}
