package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"NewsDesk/internal/app"
	"NewsDesk/internal/config"
	"NewsDesk/internal/infrastructure/storage"
	"NewsDesk/internal/logging"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "newsdesk",
		Short:         "Ingest social posts and feeds, rewrite them and publish posts",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(newServeCmd(), newIngestCmd(), newWorkCmd(), newMigrateCmd())
	return root
}

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the ingestion and worker jobs on their cron schedules",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd.Context(), func(ctx context.Context, a *app.Application, _ *slog.Logger) error {
				return a.Serve(ctx)
			})
		},
	}
}

func newIngestCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ingest",
		Short: "Run one ingestion cycle over all configured sources",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd.Context(), func(ctx context.Context, a *app.Application, logger *slog.Logger) error {
				reports, err := a.RunIngest(ctx)
				for _, r := range reports {
					logger.Info("source report", "source", r.Source, "fetched", r.Fetched, "enqueued", r.Enqueued, "error", r.Err)
				}
				return err
			})
		},
	}
}

func newWorkCmd() *cobra.Command {
	var maxItems int
	cmd := &cobra.Command{
		Use:   "work",
		Short: "Process one batch of queued items",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd.Context(), func(ctx context.Context, a *app.Application, logger *slog.Logger) error {
				processed, err := a.RunWorker(ctx, maxItems)
				logger.Info("worker batch finished", "processed", processed)
				return err
			})
		},
	}
	cmd.Flags().IntVar(&maxItems, "max", 0, "maximum items to process (default: worker.batchSize)")
	return cmd
}

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply the database schema",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd.Context(), func(ctx context.Context, a *app.Application, logger *slog.Logger) error {
				if err := a.Migrate(ctx); err != nil {
					return err
				}
				logger.Info("schema applied")
				return nil
			})
		},
	}
}

func withApp(ctx context.Context, run func(context.Context, *app.Application, *slog.Logger) error) error {
	cfg := config.Load()
	logger := logging.NewWithFormat(cfg.Logging.Level, cfg.Logging.Format, os.Stdout)

	db, err := storage.Open(ctx, cfg.Database.DSN)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer db.Close()

	return run(ctx, app.New(cfg, db, logger), logger)
}
