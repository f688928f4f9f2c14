// Package app assembles the services shared by the API server, the TUI and closerctl.
package app

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/MrJamesThe3rd/closer/internal/config"
	"github.com/MrJamesThe3rd/closer/internal/database"
	"github.com/MrJamesThe3rd/closer/internal/demo"
	"github.com/MrJamesThe3rd/closer/internal/export"
	"github.com/MrJamesThe3rd/closer/internal/importer"
	"github.com/MrJamesThe3rd/closer/internal/importer/statement"
	"github.com/MrJamesThe3rd/closer/internal/matching"
	matchingStore "github.com/MrJamesThe3rd/closer/internal/matching/store"
	"github.com/MrJamesThe3rd/closer/internal/settings"
	"github.com/MrJamesThe3rd/closer/internal/storage"
	"github.com/MrJamesThe3rd/closer/internal/storage/memory"
	"github.com/MrJamesThe3rd/closer/internal/storage/postgres"
	"github.com/MrJamesThe3rd/closer/internal/storage/sqlite"
	"github.com/MrJamesThe3rd/closer/internal/tracker"
)

type App struct {
	Demo     *demo.Mode
	Tracker  *tracker.Service
	Settings *settings.Service
	Matching *matching.Service
	Importer *importer.Service
	Export   *export.Service
}

type Options struct {
	DemoActive bool
	Observer   tracker.Observer
	Now        func() time.Time
}

// New wires the services over base and loads the collections.
func New(ctx context.Context, base storage.Provider, opts Options) (*App, error) {
	if opts.Now == nil {
		opts.Now = time.Now
	}

	sw := demo.NewSwitch(opts.DemoActive)
	provider := demo.NewProvider(base, sw, opts.Now)

	settingsSvc := settings.NewService(provider)

	trackerOpts := []tracker.Option{tracker.WithSettings(settingsSvc)}
	if opts.Observer != nil {
		trackerOpts = append(trackerOpts, tracker.WithObserver(opts.Observer))
	}

	trackerSvc := tracker.NewService(provider, trackerOpts...)
	if err := trackerSvc.Load(ctx); err != nil {
		return nil, fmt.Errorf("loading collections: %w", err)
	}

	matchingSvc := matching.NewService(matchingStore.New(provider, opts.Now))

	return &App{
		Demo:     demo.NewMode(sw, trackerSvc),
		Tracker:  trackerSvc,
		Settings: settingsSvc,
		Matching: matchingSvc,
		Importer: importer.NewService(statement.NewParser(), matchingSvc, trackerSvc),
		Export:   export.NewService(trackerSvc),
	}, nil
}

// OpenStorage opens and migrates the provider selected by cfg. The returned
// close function releases the database, if any.
func OpenStorage(ctx context.Context, cfg *config.Config) (storage.Provider, func() error, error) {
	var (
		db      *sql.DB
		err     error
		migrate func(context.Context) error
		p       storage.Provider
	)

	switch cfg.Storage.Driver {
	case config.DriverMemory:
		slog.Warn("using in-memory storage, data is lost on exit")
		return memory.New(), func() error { return nil }, nil
	case config.DriverSQLite:
		db, err = database.NewSQLite(cfg.Storage.SQLitePath)
		if err != nil {
			return nil, nil, err
		}

		s := sqlite.New(db)
		p, migrate = s, s.Migrate
	case config.DriverPostgres:
		db, err = database.New(cfg.ConnectionString())
		if err != nil {
			return nil, nil, err
		}

		s := postgres.New(db)
		p, migrate = s, s.Migrate
	default:
		return nil, nil, fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
	}

	if err := migrate(ctx); err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("migrating storage: %w", err)
	}

	return p, db.Close, nil
}
