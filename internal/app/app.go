package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"DailyDigest/internal/config"
	"DailyDigest/internal/domain"
	"DailyDigest/internal/infrastructure/llm"
	"DailyDigest/internal/infrastructure/output"
	"DailyDigest/internal/infrastructure/parser"
	"DailyDigest/internal/infrastructure/scheduler"
	"DailyDigest/internal/infrastructure/storage"
	"DailyDigest/internal/infrastructure/telegram"
	"DailyDigest/internal/infrastructure/wechat"
	"DailyDigest/internal/logging"
	"DailyDigest/internal/ports"
	"DailyDigest/internal/render"
	"DailyDigest/internal/rewrite"
	"DailyDigest/internal/scanner"
	"DailyDigest/internal/usecase"
)

// shutdownTimeout bounds how long Serve waits for an in-flight run.
const shutdownTimeout = 10 * time.Minute

// Options selects the run mode chosen on the command line.
type Options struct {
	// Manual reads links from the URL file instead of the news index.
	Manual bool
	// Force ignores the seen set.
	Force bool
}

// Application wires configs to use cases and lifecycle orchestration.
type Application struct {
	cfg      config.Config
	logger   *slog.Logger
	pipeline *usecase.Pipeline
	closers  []io.Closer
}

// New builds a runnable application instance from configuration.
func New(ctx context.Context, cfg config.Config, baseLogger *slog.Logger, opts Options) (*Application, error) {
	if baseLogger == nil {
		baseLogger = logging.New(cfg.Logging.Level)
	}
	a := &Application{cfg: cfg, logger: baseLogger}

	httpClient := parser.NewHTTPClient(cfg.Fetch.ConnectTimeout, cfg.Fetch.ReadTimeout)

	registry := scanner.NewRegistry(parser.NewGenericScanner(httpClient, cfg.Fetch.UserAgent,
		baseLogger.With("component", "scanner.generic")))
	registry.Register(cfg.Fetch.PlatformHost, parser.NewWeChatScanner(httpClient, cfg.Fetch.UserAgent,
		cfg.Scheduler.Location(), baseLogger.With("component", "scanner.wechat")))

	var source ports.LinkSource
	if opts.Manual {
		source = parser.NewFileSource(cfg.Sources.URLsFile)
	} else {
		source = parser.NewNewsSource(httpClient, cfg.Fetch.UserAgent, cfg.Sources.NewsURL,
			cfg.Sources.BaseURL, cfg.Sources.LinkPrefix, baseLogger.With("component", "source.news"))
	}

	seen, err := a.openSeenStore(ctx)
	if err != nil {
		return nil, err
	}

	chat := llm.NewOpenAIClient(cfg.OpenAI)
	summarizer := rewrite.NewSummarizer(chat, rewrite.SummarizerOptions{
		Model:         cfg.Rewrite.SummaryModel,
		Temperature:   cfg.Rewrite.SummaryTemperature,
		ChunkSize:     cfg.Rewrite.ChunkSize,
		SummaryLength: cfg.Rewrite.SummaryLength,
		Language:      cfg.Rewrite.Language,
	})
	expander := rewrite.NewExpander(chat, rewrite.ExpanderOptions{
		Model:       cfg.Rewrite.ExpandModel,
		Temperature: cfg.Rewrite.ExpandTemperature,
		Length:      cfg.Rewrite.CommentaryLength,
		Language:    cfg.Rewrite.Language,
	})

	var publisher ports.Publisher
	if cfg.WeChat.Enabled() {
		publisher = wechat.NewPublisher(wechat.Options{
			AppID:         cfg.WeChat.AppID,
			AppSecret:     cfg.WeChat.AppSecret,
			PreviewOpenID: cfg.WeChat.PreviewOpenID,
			Mode:          cfg.WeChat.PublishMode,
			ThumbPath:     cfg.WeChat.ThumbPath,
			Title:         cfg.WeChat.Title,
			Author:        cfg.WeChat.Author,
			Digest:        cfg.WeChat.Digest,
			APIBase:       cfg.WeChat.APIBase,
		}, nil, baseLogger.With("component", "publisher.wechat"))
	} else {
		baseLogger.Info("wechat credentials not configured, publishing disabled")
	}

	var notifier ports.Notifier
	if cfg.Telegram.Enabled() {
		notifier = telegram.NewNotifier(cfg.Telegram.APIBase, cfg.Telegram.BotToken, cfg.Telegram.ChatID)
	}

	a.pipeline = usecase.NewPipeline(usecase.PipelineDeps{
		Source:     source,
		Fetcher:    registry,
		Seen:       seen,
		Summarizer: summarizer,
		Expander:   expander,
		HTML:       render.NewHTMLRenderer(),
		Writer:     output.NewFileWriter(cfg.Output.Dir, cfg.Output.MarkdownFile, cfg.Output.HTMLFile),
		Publisher:  publisher,
		Notifier:   notifier,
		Logger:     baseLogger.With("component", "pipeline"),
		Title:      cfg.Digest.Title,
		Labels:     cfg.Digest.Labels,
		ExtraInfo:  cfg.ExtraInfo,
		Force:      opts.Force,
	})
	return a, nil
}

func (a *Application) openSeenStore(ctx context.Context) (ports.SeenStore, error) {
	switch a.cfg.Seen.Backend {
	case "json":
		store, err := storage.OpenJSONStore(a.cfg.Seen.Path, a.logger.With("component", "seen.json"))
		if err != nil {
			return nil, fmt.Errorf("open seen file: %w", err)
		}
		a.logger.Info("seen set loaded", "path", a.cfg.Seen.Path, "urls", store.Len())
		return store, nil
	case "sqlite", "postgres":
		dsn := a.cfg.Seen.DSN
		if dsn == "" && a.cfg.Seen.Backend == "sqlite" {
			dsn = a.cfg.Seen.Path
		}
		store, err := storage.OpenSQLStore(ctx, a.cfg.Seen.Backend, dsn)
		if err != nil {
			return nil, fmt.Errorf("open seen database: %w", err)
		}
		a.closers = append(a.closers, store)
		return store, nil
	default:
		return nil, fmt.Errorf("unknown seen backend %q", a.cfg.Seen.Backend)
	}
}

// RunOnce performs a single pipeline execution.
func (a *Application) RunOnce(ctx context.Context) (domain.RunReport, error) {
	return a.pipeline.Run(ctx)
}

// Serve runs the pipeline every day at the configured time until ctx is cancelled.
func (a *Application) Serve(ctx context.Context) error {
	driver, err := scheduler.NewDailyScheduler(a.cfg.Scheduler.At, a.cfg.Scheduler.Location())
	if err != nil {
		return err
	}
	sched := usecase.NewScheduler(driver, a.pipeline, a.logger.With("component", "scheduler"))
	if err := sched.Start(ctx); err != nil {
		return fmt.Errorf("start scheduler: %w", err)
	}
	a.logger.Info("scheduler started", "at", a.cfg.Scheduler.At,
		"timezone", a.cfg.Scheduler.Location().String(),
		"next_run", driver.NextRun(time.Now()))

	<-ctx.Done()
	a.logger.Info("shutting down scheduler")

	stopCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return sched.Stop(stopCtx)
}

// Close releases database handles.
func (a *Application) Close() error {
	var errs []error
	for _, c := range a.closers {
		if err := c.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
