package rewrite

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"DailyDigest/internal/domain"
	"DailyDigest/internal/ports"
)

const (
	DefaultChunkSize     = 3000
	DefaultSummaryLength = 80
	DefaultLanguage      = "English"
)

// ErrEmptyCompletion is returned when the model answers with blank text.
var ErrEmptyCompletion = errors.New("empty completion")

const chunkPrompt = `This is part %d of %d of an article. Write a summary of about %d characters in %s.

%s`

const mergePrompt = `Below are summaries of consecutive parts of one article. Merge them into a single fluent summary of about %d characters in %s.

%s`

// SummarizerOptions tunes prompts and model parameters.
type SummarizerOptions struct {
	Model         string
	Temperature   float32
	ChunkSize     int
	SummaryLength int
	Language      string
}

// Summarizer maps article chunks through the model and merges multi-chunk results.
type Summarizer struct {
	chat ports.ChatClient
	opts SummarizerOptions
}

var _ ports.Summarizer = (*Summarizer)(nil)

// NewSummarizer fills zero options with defaults.
func NewSummarizer(chat ports.ChatClient, opts SummarizerOptions) *Summarizer {
	if opts.ChunkSize <= 0 {
		opts.ChunkSize = DefaultChunkSize
	}
	if opts.SummaryLength <= 0 {
		opts.SummaryLength = DefaultSummaryLength
	}
	if strings.TrimSpace(opts.Language) == "" {
		opts.Language = DefaultLanguage
	}
	return &Summarizer{chat: chat, opts: opts}
}

// Summarize returns "" for empty content without calling the model.
func (s *Summarizer) Summarize(ctx context.Context, article domain.Article) (string, error) {
	if s == nil || s.chat == nil {
		return "", fmt.Errorf("summarizer is not configured")
	}

	chunks, err := Split(article.Content, s.opts.ChunkSize)
	if err != nil {
		return "", err
	}

	summaries := make([]string, 0, len(chunks))
	for i, chunk := range chunks {
		prompt := fmt.Sprintf(chunkPrompt, i+1, len(chunks), s.opts.SummaryLength, s.opts.Language, chunk)
		summary, err := s.complete(ctx, prompt)
		if err != nil {
			return "", fmt.Errorf("summarize chunk %d/%d: %w", i+1, len(chunks), err)
		}
		summaries = append(summaries, summary)
	}

	switch len(summaries) {
	case 0:
		return "", nil
	case 1:
		return summaries[0], nil
	}

	prompt := fmt.Sprintf(mergePrompt, s.opts.SummaryLength, s.opts.Language, strings.Join(summaries, "\n"))
	merged, err := s.complete(ctx, prompt)
	if err != nil {
		return "", fmt.Errorf("merge %d summaries: %w", len(summaries), err)
	}
	return merged, nil
}

func (s *Summarizer) complete(ctx context.Context, prompt string) (string, error) {
	out, err := s.chat.Complete(ctx, ports.Completion{
		Model:       s.opts.Model,
		Prompt:      prompt,
		Temperature: s.opts.Temperature,
	})
	if err != nil {
		return "", err
	}
	out = strings.TrimSpace(out)
	if out == "" {
		return "", ErrEmptyCompletion
	}
	return out, nil
}
