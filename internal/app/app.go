package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"NewsBridge/internal/config"
	"NewsBridge/internal/infrastructure/httpapi"
	"NewsBridge/internal/infrastructure/llm"
	"NewsBridge/internal/infrastructure/notify"
	"NewsBridge/internal/infrastructure/scheduler"
	"NewsBridge/internal/infrastructure/scraper"
	"NewsBridge/internal/infrastructure/storage"
	"NewsBridge/internal/logging"
	"NewsBridge/internal/ports"
	"NewsBridge/internal/usecase"
)

// Application wires configuration to adapters, use cases and the HTTP server.
type Application struct {
	cfg          config.Config
	logger       *slog.Logger
	server       *httpapi.Server
	scheduler    ports.Scheduler
	scrapeRunner *usecase.ScrapeRunner
	orchestrator *usecase.Orchestrator
}

// New builds a fully wired application instance.
func New(cfg config.Config, baseLogger *slog.Logger) (*Application, error) {
	if baseLogger == nil {
		baseLogger = logging.New(cfg.Logging.Level)
	}

	db, err := storage.Connect(cfg.Database.DSN)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	articles := storage.NewArticleRepository(db)
	posts := storage.NewPostRepository(db)
	directory := storage.NewDirectoryRepository(db)

	source := scraper.New(nil, cfg.Scraper, baseLogger.With("component", "scraper"))
	chat := llm.NewDeepSeekClient(cfg.Translator)

	fanout := usecase.NewFanout(baseLogger.With("component", "fanout"), buildNotifiers(cfg, baseLogger)...)

	processor := usecase.NewProcessor(usecase.ProcessorDeps{
		Articles:    articles,
		Posts:       posts,
		Directory:   directory,
		Chat:        chat,
		Fanout:      fanout,
		Logger:      baseLogger.With("component", "processor"),
		MaxAttempts: cfg.Pipeline.MaxAttempts,
		BackoffStep: cfg.Pipeline.BackoffStep.Std(),
		Temperature: cfg.Translator.Temperature,
	})

	orchestrator := usecase.NewOrchestrator(articles, processor,
		cfg.Pipeline.InterItemDelay.Std(), baseLogger.With("component", "batch"))

	ingestor := usecase.NewIngestor(articles, cfg.Scraper.SourceTag,
		baseLogger.With("component", "ingest"))
	scrapeRunner := usecase.NewScrapeRunner(source, ingestor, cfg.Scraper.Limit,
		baseLogger.With("component", "scrape"))

	server := httpapi.NewServer(httpapi.Deps{
		Articles:     articles,
		Ingestor:     ingestor,
		Processor:    processor,
		Orchestrator: orchestrator,
		Scraper:      scrapeRunner,
		Logger:       baseLogger,
	})

	return &Application{
		cfg:          cfg,
		logger:       baseLogger,
		server:       server,
		scheduler:    scheduler.NewCronScheduler(cfg.Scheduler.Location()),
		scrapeRunner: scrapeRunner,
		orchestrator: orchestrator,
	}, nil
}

// Run starts the scheduler (when enabled) and serves HTTP until ctx ends.
func (a *Application) Run(ctx context.Context) error {
	if a.cfg.Scheduler.Enabled {
		err := a.scheduler.Start(ctx, a.cfg.Scheduler.CronExpression, func(now time.Time) {
			a.runScheduledCycle(ctx, now)
		})
		if err != nil {
			return fmt.Errorf("start scheduler: %w", err)
		}
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- a.server.Run(a.cfg.Server.Addr)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := a.scheduler.Stop(shutdownCtx); err != nil {
		a.logger.Warn("scheduler stop", "error", err)
	}
	return a.server.Shutdown(shutdownCtx)
}

// runScheduledCycle scrapes new articles and processes everything pending.
func (a *Application) runScheduledCycle(ctx context.Context, now time.Time) {
	a.logger.Info("scheduled cycle started", "at", now)

	stats, _ := a.scrapeRunner.Run(ctx, 0)
	a.logger.Info("scheduled scrape finished",
		"received", stats.Received, "saved", stats.Saved,
		"duplicates", stats.Duplicates, "errors", stats.Errors)

	count, err := a.orchestrator.Trigger(ctx)
	if err != nil {
		a.logger.Error("scheduled batch trigger failed", "error", err)
		return
	}
	a.logger.Info("scheduled batch started", "count", count)
}

// buildNotifiers instantiates every channel that has credentials configured.
func buildNotifiers(cfg config.Config, logger *slog.Logger) []ports.Notifier {
	var notifiers []ports.Notifier
	siteURL := cfg.Server.SiteURL

	if cfg.Notifications.Telegram.BotToken != "" && cfg.Notifications.Telegram.ChatID != "" {
		tg, err := notify.NewTelegramNotifier(cfg.Notifications.Telegram, siteURL, logger)
		if err != nil {
			logger.Warn("telegram notifier disabled", "error", err)
		} else {
			notifiers = append(notifiers, tg)
		}
	}

	if cfg.Notifications.OneSignal.AppID != "" && cfg.Notifications.OneSignal.APIKey != "" {
		notifiers = append(notifiers,
			notify.NewOneSignalNotifier(cfg.Notifications.OneSignal, siteURL, nil, logger))
	}

	if cfg.Notifications.Social.Endpoint != "" {
		notifiers = append(notifiers,
			notify.NewSocialNotifier(cfg.Notifications.Social, siteURL, nil, logger))
	}

	return notifiers
}
