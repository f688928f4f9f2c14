package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"

	"github.com/MrJamesThe3rd/closer/internal/app"
	"github.com/MrJamesThe3rd/closer/internal/auth"
	"github.com/MrJamesThe3rd/closer/internal/backup"
	"github.com/MrJamesThe3rd/closer/internal/backup/s3"
	"github.com/MrJamesThe3rd/closer/internal/config"
	closerHttp "github.com/MrJamesThe3rd/closer/internal/http"
	activityHandler "github.com/MrJamesThe3rd/closer/internal/http/activity"
	backupHandler "github.com/MrJamesThe3rd/closer/internal/http/backup"
	dealHandler "github.com/MrJamesThe3rd/closer/internal/http/deal"
	demoHandler "github.com/MrJamesThe3rd/closer/internal/http/demo"
	expenseHandler "github.com/MrJamesThe3rd/closer/internal/http/expense"
	exportHandler "github.com/MrJamesThe3rd/closer/internal/http/export"
	importHandler "github.com/MrJamesThe3rd/closer/internal/http/importcsv"
	kpiHandler "github.com/MrJamesThe3rd/closer/internal/http/kpi"
	matchingHandler "github.com/MrJamesThe3rd/closer/internal/http/matching"
	settingsHandler "github.com/MrJamesThe3rd/closer/internal/http/settings"
	"github.com/MrJamesThe3rd/closer/internal/metrics"
)

func main() {
	if err := run(); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}

func run() error {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	provider, closeStorage, err := app.OpenStorage(ctx, cfg)
	if err != nil {
		return fmt.Errorf("opening storage: %w", err)
	}
	defer closeStorage()

	m := metrics.New()

	a, err := app.New(ctx, provider, app.Options{DemoActive: cfg.Demo.Enabled, Observer: m})
	if err != nil {
		return err
	}

	handlers := closerHttp.Handlers{
		Deals:      dealHandler.NewHandler(a.Tracker),
		Expenses:   expenseHandler.NewHandler(a.Tracker),
		Activities: activityHandler.NewHandler(a.Tracker),
		KPI:        kpiHandler.NewHandler(a.Tracker, a.Settings),
		Settings:   settingsHandler.NewHandler(a.Settings),
		Demo:       demoHandler.NewHandler(a.Demo),
		Import:     importHandler.NewHandler(a.Importer),
		Matching:   matchingHandler.NewHandler(a.Matching),
		Export:     exportHandler.NewHandler(a.Export),
	}

	opts := closerHttp.Options{CORSOrigins: cfg.Server.CORSOrigins, Metrics: m}

	if cfg.Auth.Secret != "" {
		if opts.Auth, err = auth.New(cfg.Auth.Secret, time.Now); err != nil {
			return fmt.Errorf("configuring auth: %w", err)
		}
	} else {
		slog.Warn("AUTH_SECRET not set, API is unauthenticated")
	}

	if cfg.BackupsEnabled() {
		backups, err := newBackupService(ctx, cfg, a)
		if err != nil {
			return err
		}

		handlers.Backups = backupHandler.NewHandler(backups)

		if cfg.Backup.Schedule != "" {
			scheduler, err := scheduleBackups(cfg.Backup.Schedule, backups)
			if err != nil {
				return err
			}

			scheduler.Start()
			defer scheduler.Stop()
		}
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           closerHttp.New(handlers, opts),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       cfg.Server.Timeout,
		WriteTimeout:      cfg.Server.Timeout,
	}

	errCh := make(chan error, 1)

	go func() {
		slog.Info("starting server", "addr", srv.Addr, "storage", cfg.Storage.Driver, "demo", a.Demo.Active())
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
	case <-ctx.Done():
		slog.Info("shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	return srv.Shutdown(shutdownCtx)
}

func newBackupService(ctx context.Context, cfg *config.Config, a *app.App) (*backup.Service, error) {
	store, err := s3.New(ctx, s3.Config{
		Bucket:          cfg.Backup.Bucket,
		Region:          cfg.Backup.Region,
		Endpoint:        cfg.Backup.Endpoint,
		AccessKeyID:     cfg.Backup.AccessKeyID,
		SecretAccessKey: cfg.Backup.SecretAccessKey,
		PathStyle:       cfg.Backup.PathStyle,
	})
	if err != nil {
		return nil, fmt.Errorf("configuring backup bucket: %w", err)
	}

	return backup.NewService(store, a.Tracker, a.Settings, time.Now), nil
}

func scheduleBackups(spec string, backups *backup.Service) (*cron.Cron, error) {
	c := cron.New()

	_, err := c.AddFunc(spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()

		key, err := backups.Backup(ctx)
		if err != nil {
			slog.Error("scheduled backup failed", "error", err)
			return
		}

		slog.Info("scheduled backup written", "key", key)
	})
	if err != nil {
		return nil, fmt.Errorf("invalid backup schedule %q: %w", spec, err)
	}

	return c, nil
}
