package app

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/DuneReaper/dune-reapers-bot/internal/api"
	"github.com/DuneReaper/dune-reapers-bot/internal/config"
	"github.com/DuneReaper/dune-reapers-bot/internal/engine"
	"github.com/DuneReaper/dune-reapers-bot/internal/notify"
	"github.com/DuneReaper/dune-reapers-bot/internal/store"
	"github.com/DuneReaper/dune-reapers-bot/internal/sweeper"
)

type App struct {
	cfg  config.Config
	log  *zap.Logger
	repo store.Repo
}

func New(cfg config.Config, log *zap.Logger) *App {
	return &App{cfg: cfg, log: log}
}

func (a *App) Run(ctx context.Context) error {
	a.log.Info("starting activity engine",
		zap.String("http", a.cfg.HTTPAddr),
		zap.Duration("sweep_interval", a.cfg.SweepInterval),
	)

	// Open SQLite and run migrations.
	repo, err := store.OpenSQLite(ctx, a.cfg.DBPath)
	if err != nil {
		a.log.Error("open sqlite failed", zap.Error(err))
		return err
	}
	a.repo = repo
	a.log.Info("sqlite ready", zap.String("path", a.cfg.DBPath))

	var notifier notify.Notifier = notify.Nop{}
	if a.cfg.ReviewWebhookURL != "" {
		notifier = notify.NewWebhook(a.cfg.ReviewWebhookURL)
	}

	eng := engine.New(repo, notifier, a.log)
	handler := &api.Handler{Engine: eng, Log: a.log}
	router := api.NewRouter(handler, a.cfg.RateLimitPerMinute)

	httpSrv := &http.Server{
		Addr:         a.cfg.HTTPAddr,
		Handler:      router,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.log.Error("http server error", zap.Error(err))
		}
	}()

	sw := sweeper.New(repo, a.log, a.cfg.SweepInterval)
	go sw.Run(ctx)

	<-ctx.Done()
	a.log.Info("shutdown signal received")

	// Create a short-lived shutdown context and cancel it immediately after use.
	shCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	err = httpSrv.Shutdown(shCtx)
	cancel()

	if err != nil {
		a.log.Warn("http server shutdown error", zap.Error(err))
	}
	if a.repo != nil {
		_ = a.repo.Close()
	}
	return nil
}
