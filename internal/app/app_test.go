package app_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/closer/internal/app"
	"github.com/MrJamesThe3rd/closer/internal/config"
	"github.com/MrJamesThe3rd/closer/internal/deal"
	"github.com/MrJamesThe3rd/closer/internal/storage/memory"
	"github.com/MrJamesThe3rd/closer/internal/tracker"
)

func TestNew_DemoActive(t *testing.T) {
	ctx := context.Background()

	a, err := app.New(ctx, memory.New(), app.Options{DemoActive: true})
	require.NoError(t, err)

	assert.True(t, a.Demo.Active())
	assert.NotEmpty(t, a.Tracker.ListDeals(ctx, tracker.DealFilter{}))

	require.NoError(t, a.Demo.Disable(ctx))
	assert.Empty(t, a.Tracker.ListDeals(ctx, tracker.DealFilter{}))
}

func TestOpenStorage_SQLite(t *testing.T) {
	ctx := context.Background()

	cfg := &config.Config{}
	cfg.Storage.Driver = config.DriverSQLite
	cfg.Storage.SQLitePath = filepath.Join(t.TempDir(), "nested", "closer.db")

	provider, closeFn, err := app.OpenStorage(ctx, cfg)
	require.NoError(t, err)

	a, err := app.New(ctx, provider, app.Options{})
	require.NoError(t, err)

	_, err = a.Tracker.CreateDeal(ctx, tracker.DealParams{
		Name:     "Sam Ortiz",
		Property: "3 Pine Road",
		Side:     deal.SideBuyer,
	})
	require.NoError(t, err)
	require.NoError(t, closeFn())

	provider, closeFn, err = app.OpenStorage(ctx, cfg)
	require.NoError(t, err)
	defer closeFn()

	reopened, err := app.New(ctx, provider, app.Options{})
	require.NoError(t, err)
	assert.Len(t, reopened.Tracker.ListDeals(ctx, tracker.DealFilter{}), 1)
}

func TestOpenStorage_UnknownDriver(t *testing.T) {
	cfg := &config.Config{}
	cfg.Storage.Driver = "mongo"

	_, _, err := app.OpenStorage(context.Background(), cfg)
	assert.Error(t, err)
}
