package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"contentpulse/internal/config"
	"contentpulse/internal/controller"
	"contentpulse/internal/infrastructure/indexcheck"
	"contentpulse/internal/infrastructure/memstore"
	"contentpulse/internal/infrastructure/metadata"
	"contentpulse/internal/infrastructure/plausible"
	"contentpulse/internal/infrastructure/scheduler"
	"contentpulse/internal/infrastructure/storage"
	"contentpulse/internal/infrastructure/telegram"
	"contentpulse/internal/logging"
	"contentpulse/internal/ports"
	"contentpulse/internal/usecase"
)

const pushSweepInterval = 5 * time.Minute

// Application wires configs to use cases and lifecycle orchestration.
type Application struct {
	cfg       config.Config
	logger    *slog.Logger
	engine    *gin.Engine
	schedules *usecase.Schedules
	archive   *storage.PostgresArchive
}

// New builds a runnable application instance.
func New(cfg config.Config, baseLogger *slog.Logger) (*Application, error) {
	if baseLogger == nil {
		baseLogger = logging.New(cfg.Logging.Level)
	}

	domains := memstore.NewDomainStore()
	sessions := memstore.NewSessionStore()
	cache := memstore.NewAnalyticsCache()
	settings := memstore.NewSettings(cfg.Plausible.APIKey)

	provider := plausible.NewClient(cfg.Plausible.BaseURL, cfg.Scheduler.Location())
	fetcher := metadata.NewFetcher(nil)
	checker := indexcheck.NewChecker(nil)

	var archive *storage.PostgresArchive
	if cfg.Database.DSN != "" {
		opened, err := storage.Open(cfg.Database.DSN)
		if err != nil {
			return nil, fmt.Errorf("open snapshot archive: %w", err)
		}
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := opened.EnsureSchema(ctx); err != nil {
			_ = opened.Close()
			return nil, fmt.Errorf("prepare snapshot archive: %w", err)
		}
		archive = opened
	}

	content := usecase.NewContent(usecase.ContentDeps{
		Domains:  domains,
		Sessions: sessions,
		Cache:    cache,
		Metadata: fetcher,
		Indexer:  checker,
		Logger:   baseLogger.With("component", "content"),
	})

	var archivePort ports.SnapshotArchive
	if archive != nil {
		archivePort = archive
	}

	analytics := usecase.NewAnalytics(usecase.AnalyticsDeps{
		Domains:  domains,
		Sessions: sessions,
		Cache:    cache,
		Provider: provider,
		Creds:    settings,
		Archive:  archivePort,
		Logger:   baseLogger.With("component", "analytics"),
	})

	var watcher *usecase.PushWatcher
	var pushDriver ports.Scheduler
	if cfg.Notifications.Telegram.BotToken != "" && cfg.Notifications.Telegram.ChatID != "" {
		notifier := telegram.NewNotifier(cfg.Notifications.Telegram.BotToken, cfg.Notifications.Telegram.ChatID)
		watcher = usecase.NewPushWatcher(domains, sessions, notifier, baseLogger.With("component", "pushwatch"))
		pushDriver = scheduler.NewInterval(pushSweepInterval)
	}

	schedules := usecase.NewSchedules(
		scheduler.NewCronScheduler(cfg.Scheduler.RefreshCron, cfg.Scheduler.Location()),
		scheduler.NewHourly(),
		pushDriver,
		analytics,
		watcher,
	)

	engine := gin.Default()
	handler := controller.NewHandler(content, analytics, settings, baseLogger.With("component", "http"))
	controller.RegisterRoutes(engine, handler)

	return &Application{
		cfg:       cfg,
		logger:    baseLogger,
		engine:    engine,
		schedules: schedules,
		archive:   archive,
	}, nil
}

// Run starts the schedulers and serves HTTP until the context is canceled.
func (a *Application) Run(ctx context.Context) error {
	if err := a.schedules.Start(ctx); err != nil {
		return fmt.Errorf("start schedules: %w", err)
	}
	defer func() { _ = a.schedules.Stop(context.Background()) }()

	if a.archive != nil {
		defer func() { _ = a.archive.Close() }()
	}

	srv := &http.Server{Addr: a.cfg.Server.Addr, Handler: a.engine}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()

	a.logger.Info("server listening",
		"addr", a.cfg.Server.Addr,
		"refresh_cron", a.cfg.Scheduler.RefreshCron,
		"has_api_key", a.cfg.Plausible.APIKey != "")

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
