package ports

import (
	"context"
	"time"

	"DailyDigest/internal/domain"
)

// LinkSource yields the article URLs for a run.
type LinkSource interface {
	Links(ctx context.Context) ([]string, error)
}

// ArticleFetcher downloads and extracts a single article.
type ArticleFetcher interface {
	Fetch(ctx context.Context, rawURL string) (domain.Article, error)
}

// SeenStore persists processed URLs for cross-run deduplication.
type SeenStore interface {
	AlreadyProcessed(ctx context.Context, urls []string) (map[string]bool, error)
	MarkProcessed(ctx context.Context, url string) error
}

// Completion is a single-turn prompt for the language model.
type Completion struct {
	Model       string
	Prompt      string
	Temperature float32
}

// ChatClient sends prompts to an OpenAI-compatible API.
type ChatClient interface {
	Complete(ctx context.Context, req Completion) (string, error)
}

// Summarizer condenses article content.
type Summarizer interface {
	Summarize(ctx context.Context, article domain.Article) (string, error)
}

// Expander turns a summary into longer commentary.
type Expander interface {
	Expand(ctx context.Context, summary, extra string) (string, error)
}

// HTMLRenderer converts digest Markdown into publishable HTML.
type HTMLRenderer interface {
	Render(markdown string) (string, error)
}

// DigestWriter stores the rendered digest and returns the written paths.
type DigestWriter interface {
	Write(ctx context.Context, markdown, html string) (mdPath, htmlPath string, err error)
}

// Publisher pushes the rendered digest to the social platform.
type Publisher interface {
	Publish(ctx context.Context, html string) domain.PublishResult
}

// Notifier streams a short run report to a chat channel.
type Notifier interface {
	PublishDigest(ctx context.Context, digest string) error
}

// Scheduler controls when pipelines execute.
type Scheduler interface {
	Start(ctx context.Context, job func(time.Time)) error
	Stop(ctx context.Context) error
}
