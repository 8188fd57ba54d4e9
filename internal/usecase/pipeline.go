package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"DailyDigest/internal/domain"
	"DailyDigest/internal/ports"
	"DailyDigest/internal/render"

	"github.com/google/uuid"
)

// PipelineDeps wires all driven adapters into the orchestration pipeline.
type PipelineDeps struct {
	Source     ports.LinkSource
	Fetcher    ports.ArticleFetcher
	Seen       ports.SeenStore
	Summarizer ports.Summarizer
	Expander   ports.Expander
	HTML       ports.HTMLRenderer
	Writer     ports.DigestWriter
	Publisher  ports.Publisher
	Notifier   ports.Notifier
	Logger     *slog.Logger

	Title     string
	Labels    []string
	ExtraInfo string
	// Force reprocesses URLs that are already in the seen set.
	Force bool
}

// Pipeline implements the fetch, rewrite, render and publish workflow.
type Pipeline struct {
	deps   PipelineDeps
	logger *slog.Logger
	newID  func() string
}

// NewPipeline constructs the orchestration component.
func NewPipeline(deps PipelineDeps) *Pipeline {
	logger := deps.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Pipeline{
		deps:   deps,
		logger: logger,
		newID:  func() string { return uuid.NewString() },
	}
}

// Run executes one digest run. Per-article failures are logged and skipped;
// only link collection, the seen store, rendering and writing abort the run.
func (p *Pipeline) Run(ctx context.Context) (domain.RunReport, error) {
	report := domain.RunReport{
		RunID:   p.newID(),
		Publish: domain.PublishResult{Status: domain.PublishSkipped},
	}
	log := p.logger.With("run_id", report.RunID)

	if p.deps.Source == nil || p.deps.Fetcher == nil || p.deps.Summarizer == nil {
		return report, fmt.Errorf("pipeline misconfigured: source, fetcher and summarizer are required")
	}

	links, err := p.deps.Source.Links(ctx)
	if err != nil {
		return report, fmt.Errorf("collect links: %w", err)
	}
	report.Considered = len(links)
	log.Info("run started", "links", len(links), "force", p.deps.Force)

	seen := map[string]bool{}
	if p.deps.Seen != nil && !p.deps.Force && len(links) > 0 {
		seen, err = p.deps.Seen.AlreadyProcessed(ctx, links)
		if err != nil {
			return report, fmt.Errorf("load seen urls: %w", err)
		}
	}

	var records []domain.Article
	done := make(map[string]bool, len(links))
	for _, link := range links {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		if seen[link] || done[link] {
			report.SkippedSeen++
			log.Debug("already processed", "url", link)
			continue
		}
		done[link] = true

		article, ok := p.process(ctx, log, link)
		if !ok {
			report.Failed++
			continue
		}
		records = append(records, article)
		report.Included = append(report.Included, article.Title)
	}

	if len(records) == 0 {
		log.Info("no new articles, nothing to publish",
			"considered", report.Considered, "skipped_seen", report.SkippedSeen, "failed", report.Failed)
		return report, nil
	}

	digest := render.Distribute(p.deps.Title, records, p.deps.Labels)
	markdown := render.Markdown(digest)

	html := markdown
	if p.deps.HTML != nil {
		html, err = p.deps.HTML.Render(markdown)
		if err != nil {
			return report, fmt.Errorf("render html: %w", err)
		}
	}

	if p.deps.Writer != nil {
		report.MarkdownPath, report.HTMLPath, err = p.deps.Writer.Write(ctx, markdown, html)
		if err != nil {
			return report, fmt.Errorf("write digest: %w", err)
		}
		log.Info("digest written", "markdown", report.MarkdownPath, "html", report.HTMLPath, "articles", digest.Count())
	}

	// URLs become seen only once their article is in the written digest.
	if p.deps.Seen != nil {
		for _, record := range records {
			if err := p.deps.Seen.MarkProcessed(ctx, record.URL); err != nil {
				return report, fmt.Errorf("mark %s processed: %w", record.URL, err)
			}
		}
	}

	if p.deps.Publisher != nil {
		report.Publish = p.deps.Publisher.Publish(ctx, html)
		log.Info("publish finished", "status", report.Publish.Status, "media_id", report.Publish.MediaID)
	}

	if p.deps.Notifier != nil {
		if err := p.deps.Notifier.PublishDigest(ctx, buildRunMessage(p.deps.Title, report)); err != nil {
			log.Warn("run notification failed", "error", err)
		}
	}

	log.Info("run finished",
		"included", len(report.Included), "skipped_seen", report.SkippedSeen, "failed", report.Failed)
	return report, nil
}

// process fetches and rewrites one URL; false means the article is dropped from this run.
func (p *Pipeline) process(ctx context.Context, log *slog.Logger, link string) (domain.Article, bool) {
	article, err := p.deps.Fetcher.Fetch(ctx, link)
	if err != nil {
		log.Error("fetch failed", "url", link, "error", err)
		return domain.Article{}, false
	}
	article.URL = link
	log.Info("article fetched", "url", link, "title", article.Title, "source", article.Source)

	article.Summary, err = p.deps.Summarizer.Summarize(ctx, article)
	if err != nil {
		log.Error("summarize failed", "url", link, "error", err)
		return domain.Article{}, false
	}

	article.Commentary = article.Summary
	if p.deps.Expander != nil {
		commentary, err := p.deps.Expander.Expand(ctx, article.Summary, p.deps.ExtraInfo)
		if err != nil {
			log.Warn("expand failed, using summary", "url", link, "error", err)
		} else {
			article.Commentary = commentary
		}
	}

	return article, true
}

func buildRunMessage(title string, report domain.RunReport) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s\n", title)
	fmt.Fprintf(&b, "articles: %d, skipped: %d, failed: %d\n",
		len(report.Included), report.SkippedSeen, report.Failed)
	for _, t := range report.Included {
		fmt.Fprintf(&b, "- %s\n", t)
	}
	fmt.Fprintf(&b, "publish: %s", report.Publish.Status)
	if report.Publish.MediaID != "" {
		fmt.Fprintf(&b, " (%s)", report.Publish.MediaID)
	}
	return b.String()
}
