package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"Cadence/internal/affect"
	"Cadence/internal/articulation"
	"Cadence/internal/config"
	"Cadence/internal/infrastructure/appraisal"
	"Cadence/internal/infrastructure/llm"
	"Cadence/internal/infrastructure/markup"
	"Cadence/internal/infrastructure/scheduler"
	"Cadence/internal/infrastructure/storage"
	"Cadence/internal/infrastructure/telegram"
	"Cadence/internal/infrastructure/webchat"
	"Cadence/internal/logging"
	"Cadence/internal/ports"
	"Cadence/internal/session"
	"Cadence/internal/usecase"
)

// Application wires configs to use cases and lifecycle orchestration.
type Application struct {
	logger   *slog.Logger
	pipeline *usecase.Pipeline
	repo     *storage.SQLiteRepository
	reaper   *usecase.Reaper
	web      *http.Server
	poller   *telegram.Poller
}

// New builds a runnable application instance.
func New(ctx context.Context, cfg config.Config, baseLogger *slog.Logger) (*Application, error) {
	if baseLogger == nil {
		baseLogger = logging.New(cfg.Logging.Level)
	}

	repo, err := storage.Open(ctx, cfg.Storage.Path)
	if err != nil {
		return nil, fmt.Errorf("open journal: %w", err)
	}

	segCfg := articulation.DefaultSegmentationConfig()
	segCfg.MinSegmentLength = cfg.Engine.MinSegmentLength
	segCfg.MaxSegmentLength = cfg.Engine.MaxSegmentLength

	rhythmCfg := articulation.RhythmConfig{
		BaseWordsPerMinute:   cfg.Engine.BaseWordsPerMinute,
		HesitationBase:       cfg.Engine.HesitationBase,
		HesitationMultiplier: cfg.Engine.HesitationMultiplier,
	}

	articulator, err := articulation.New(segCfg, rhythmCfg)
	if err != nil {
		_ = repo.Close()
		return nil, fmt.Errorf("build articulator: %w", err)
	}

	registry := llm.NewRegistry()
	registry.Register(llm.NewMockResponder())
	registry.Register(llm.NewOpenAIResponder(cfg.LLM))

	responder, err := registry.Resolve(cfg.LLM.Provider)
	if err != nil {
		_ = repo.Close()
		return nil, fmt.Errorf("select llm provider: %w", err)
	}

	var appraiser ports.Appraiser
	switch cfg.Appraisal.Mode {
	case "", "local":
		appraiser = affect.NewKeywordAppraiser(nil)
	case "remote":
		appraiser = appraisal.NewClient(cfg.Appraisal.InferenceURL, cfg.Appraisal.APIKey)
	default:
		baseLogger.Warn("unknown appraisal mode, using local", "mode", cfg.Appraisal.Mode)
		appraiser = affect.NewKeywordAppraiser(nil)
	}

	sessions := session.NewManager(cfg.Session.HistoryLimit)

	pipeline := usecase.NewPipeline(usecase.PipelineDeps{
		Sessions:      sessions,
		Appraiser:     appraiser,
		Responder:     responder,
		Flattener:     markup.New(),
		Repository:    repo,
		Articulator:   articulator,
		Logger:        baseLogger.With("component", "pipeline"),
		EnableTiming:  !cfg.Engine.DisableTiming,
		LogDeliveries: cfg.Engine.LogDeliveries,
	})

	app := &Application{
		logger:   baseLogger,
		pipeline: pipeline,
		repo:     repo,
	}

	driver := scheduler.NewCronScheduler(cfg.Scheduler.CronExpression, cfg.Scheduler.Location())
	app.reaper = usecase.NewReaper(driver, sessions, cfg.Session.TTL(), baseLogger.With("component", "reaper"))

	webHandler := webchat.NewHandler(app.runTurn, baseLogger.With("component", "webchat"))
	app.web = &http.Server{Addr: cfg.Webchat.Addr, Handler: webHandler.Routes()}

	if cfg.Telegram.BotToken != "" {
		client := telegram.NewClient(cfg.Telegram.BotToken)
		app.poller = telegram.NewPoller(client, app.telegramHandler(client), baseLogger.With("component", "telegram"))
	}

	return app, nil
}

func (a *Application) runTurn(ctx context.Context, sessionID, text string, sink articulation.Sink) error {
	_, err := a.pipeline.ProcessTurn(ctx, sessionID, text, sink)
	return err
}

// telegramHandler binds one incoming chat line to a pipeline turn. The
// indicator is armed up front so the first composing phase is visible.
func (a *Application) telegramHandler(client *telegram.Client) telegram.Handler {
	return func(ctx context.Context, chatID int64, text string) {
		sessionID := fmt.Sprintf("tg-%d", chatID)
		if err := client.SendChatAction(ctx, chatID, "typing"); err != nil {
			a.logger.Debug("chat action failed", "chat", chatID, "error", err)
		}

		sink := telegram.NewSink(client, chatID)
		if _, err := a.pipeline.ProcessTurn(ctx, sessionID, text, sink); err != nil {
			a.logger.Error("telegram turn failed", "chat", chatID, "error", err)
		}
	}
}

// Run starts the chat surfaces and the session reaper, blocks until ctx is
// cancelled or a surface fails, then shuts everything down.
func (a *Application) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if err := a.reaper.Start(ctx); err != nil {
		return fmt.Errorf("start reaper: %w", err)
	}

	errs := make(chan error, 2)

	go func() {
		a.logger.Info("webchat listening", "addr", a.web.Addr)
		if err := a.web.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errs <- fmt.Errorf("webchat server: %w", err)
		}
	}()

	if a.poller != nil {
		go func() {
			a.logger.Info("telegram poller started")
			if err := a.poller.Run(ctx); err != nil && ctx.Err() == nil {
				errs <- fmt.Errorf("telegram poller: %w", err)
			}
		}()
	}

	var runErr error
	select {
	case <-ctx.Done():
	case runErr = <-errs:
		cancel()
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := a.web.Shutdown(shutdownCtx); err != nil {
		a.logger.Error("webchat shutdown failed", "error", err)
	}
	if err := a.reaper.Stop(shutdownCtx); err != nil {
		a.logger.Error("reaper stop failed", "error", err)
	}

	return runErr
}

// Close releases resources held by the application.
func (a *Application) Close() error {
	return a.repo.Close()
}
