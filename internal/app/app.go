package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"NewsDesk/internal/config"
	"NewsDesk/internal/infrastructure/assets"
	"NewsDesk/internal/infrastructure/llm"
	"NewsDesk/internal/infrastructure/pacing"
	"NewsDesk/internal/infrastructure/parser"
	"NewsDesk/internal/infrastructure/scheduler"
	"NewsDesk/internal/infrastructure/scrape"
	"NewsDesk/internal/infrastructure/storage"
	"NewsDesk/internal/infrastructure/telegram"
	"NewsDesk/internal/logging"
	"NewsDesk/internal/scanner"
	"NewsDesk/internal/usecase"
)

const (
	httpTimeout     = 20 * time.Second
	shutdownTimeout = 30 * time.Second
)

// ErrGeneratorDisabled is returned by worker entry points when no generator key is configured.
var ErrGeneratorDisabled = errors.New("generator is not configured: set CHATGPT_API_KEY")

// Application wires configs to use cases and lifecycle orchestration.
type Application struct {
	cfg         config.Config
	db          *sql.DB
	logger      *slog.Logger
	coordinator *usecase.Coordinator
	worker      *usecase.Worker
}

// New builds the application on top of an open database handle.
func New(cfg config.Config, db *sql.DB, baseLogger *slog.Logger) *Application {
	if baseLogger == nil {
		baseLogger = logging.New(cfg.Logging.Level)
	}

	client := &http.Client{Timeout: httpTimeout}

	registry := scanner.NewRegistry()
	registry.Register(parser.NewSocialScanner(cfg.Social.BaseURL, cfg.Social.BearerToken, client,
		baseLogger.With("component", "scanner.social")))
	registry.Register(parser.NewRSSScanner(client, baseLogger.With("component", "scanner.rss")))

	for _, src := range cfg.Sources {
		if _, err := registry.Resolve(src.Adapter); err != nil {
			baseLogger.Warn("source will be skipped", "source", src.Name, "error", err)
		}
	}

	source := parser.NewStrategySource(registry, cfg.Sources, baseLogger.With("component", "source"))

	queue := storage.NewQueueRepository(db, baseLogger.With("component", "queue"))
	posts := storage.NewPostRepository(db)

	coordinator := usecase.NewCoordinator(usecase.CoordinatorDeps{
		Source:              source,
		Queue:               queue,
		Posts:               posts,
		Logger:              baseLogger.With("component", "ingest"),
		RecencyHorizon:      cfg.Dedup.RecencyHorizon,
		SimilarityThreshold: cfg.Dedup.SimilarityThreshold,
		PendingScanLimit:    cfg.Dedup.PendingScanLimit,
	})

	application := &Application{cfg: cfg, db: db, logger: baseLogger, coordinator: coordinator}

	if cfg.ChatGPT.APIKey == "" {
		baseLogger.Warn("chatgpt api key missing, worker disabled")
		return application
	}

	deps := usecase.WorkerDeps{
		Queue:           queue,
		Posts:           posts,
		Tags:            usecase.NewTagRegistry(storage.NewTagRepository(db), baseLogger.With("component", "tags")),
		Generator:       llm.NewChatGPTClient(cfg.ChatGPT, cfg.Worker.GenerateTimeout),
		Pacer:           pacing.NewGate(cfg.Worker.ItemDelay),
		Logger:          baseLogger.With("component", "worker"),
		GenerateTimeout: cfg.Worker.GenerateTimeout,
	}

	if cfg.Scrape.Enabled {
		deps.Pages = scrape.NewReadabilityFetcher(client, cfg.Scrape.Timeout, baseLogger)
	}

	if cfg.Assets.Enabled && cfg.Assets.UploadURL != "" {
		deps.Assets = assets.NewHTTPStore(cfg.Assets.UploadURL, cfg.Assets.APIKey, client)
		deps.Downloader = assets.NewHTTPDownloader(client)
	}

	if tg := cfg.Notifications.Telegram; tg.BotToken != "" && tg.ChatID != "" {
		deps.Notifier = telegram.NewNotifier(tg.BotToken, tg.ChatID)
	}

	application.worker = usecase.NewWorker(deps)
	return application
}

// Migrate applies the database schema.
func (a *Application) Migrate(ctx context.Context) error {
	return storage.Migrate(ctx, a.db)
}

// RunIngest performs one ingestion cycle over every configured source.
func (a *Application) RunIngest(ctx context.Context) ([]usecase.SourceReport, error) {
	return a.coordinator.RunCycle(ctx)
}

// RunWorker processes up to maxItems queued items. Zero uses the configured batch size.
func (a *Application) RunWorker(ctx context.Context, maxItems int) (int, error) {
	if a.worker == nil {
		return 0, ErrGeneratorDisabled
	}
	if maxItems <= 0 {
		maxItems = a.cfg.Worker.BatchSize
	}
	return a.worker.ProcessBatch(ctx, maxItems)
}

// Serve runs the recurring jobs until ctx is cancelled.
func (a *Application) Serve(ctx context.Context) error {
	driver := scheduler.NewCronScheduler(a.cfg.Scheduler.Location(), a.logger)

	schedule := usecase.ScheduleConfig{
		IngestSpec: a.cfg.Scheduler.IngestCron,
		WorkerSpec: a.cfg.Scheduler.WorkerCron,
		BatchSize:  a.cfg.Worker.BatchSize,
	}
	jobs := usecase.NewScheduler(driver, a.coordinator, a.worker, schedule, a.logger.With("component", "jobs"))

	if err := jobs.Start(ctx); err != nil {
		return fmt.Errorf("start scheduler: %w", err)
	}
	a.logger.Info("newsdesk running", "ingest", schedule.IngestSpec, "worker", schedule.WorkerSpec,
		"worker_enabled", a.worker != nil, "sources", len(a.cfg.Sources))

	<-ctx.Done()

	stopCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := jobs.Stop(stopCtx); err != nil {
		return fmt.Errorf("stop scheduler: %w", err)
	}
	a.logger.Info("newsdesk stopped")
	return nil
}
