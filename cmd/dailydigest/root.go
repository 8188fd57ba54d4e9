package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/spf13/cobra"

	"DailyDigest/internal/app"
	"DailyDigest/internal/config"
	"DailyDigest/internal/logging"
)

type rootOptions struct {
	configPath string
	once       bool
	manual     bool
	force      bool
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "dailydigest",
		Short: "Fetch, rewrite and publish a daily news digest",
		Long: `dailydigest collects article links, summarizes each article with an
OpenAI-compatible model, renders a Markdown and HTML digest and optionally
creates a WeChat official-account draft.

Example usage:
  dailydigest                  # run every day at scheduler.at
  dailydigest --once           # single run over the news index
  dailydigest --manual         # single run over sources.urlsFile
  dailydigest --once --force   # reprocess already seen articles`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd.Context(), opts)
		},
	}

	cmd.Flags().StringVar(&opts.configPath, "config", "", "settings file (default $DAILY_DIGEST_CONFIG or config/settings.yaml)")
	cmd.Flags().BoolVar(&opts.once, "once", false, "run the automatic pipeline once and exit")
	cmd.Flags().BoolVar(&opts.manual, "manual", false, "run once over the URL list file and exit")
	cmd.Flags().BoolVar(&opts.force, "force", false, "ignore the seen set")

	cmd.AddCommand(newVersionCmd())
	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "dailydigest version %s (%s)\n", version, runtime.Version())
		},
	}
}

func run(ctx context.Context, opts *rootOptions) error {
	if ctx == nil {
		ctx = context.Background()
	}

	cfg := config.Load(config.ResolvePath(opts.configPath), ".env")
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger, closer, err := logging.Setup(cfg.Logging.Level, cfg.Logging.Dir)
	if err != nil {
		return err
	}
	defer closer.Close()

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	application, err := app.New(ctx, cfg, logger, app.Options{Manual: opts.manual, Force: opts.force})
	if err != nil {
		return err
	}
	defer application.Close()

	if !opts.once && !opts.manual {
		return application.Serve(ctx)
	}

	report, err := application.RunOnce(ctx)
	if err != nil {
		logger.Error("run failed", "run_id", report.RunID, "error", err)
		return err
	}
	logger.Info("run complete", "run_id", report.RunID,
		"articles", len(report.Included), "publish", report.Publish.Status,
		"markdown", report.MarkdownPath, "html", report.HTMLPath)
	return nil
}
