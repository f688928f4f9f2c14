package sqlite_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/closer/internal/database"
	"github.com/MrJamesThe3rd/closer/internal/storage"
	"github.com/MrJamesThe3rd/closer/internal/storage/sqlite"
	"github.com/MrJamesThe3rd/closer/internal/storage/storagetest"
)

func newStore(t *testing.T, path string) *sqlite.Store {
	t.Helper()

	db, err := database.NewSQLite(path)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	s := sqlite.New(db)
	require.NoError(t, s.Migrate(context.Background()))

	return s
}

func TestStore(t *testing.T) {
	storagetest.Run(t, newStore(t, filepath.Join(t.TempDir(), "closer.db")))
}

func TestStore_SurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "closer.db")
	ctx := context.Background()

	first := newStore(t, path)
	require.NoError(t, first.Save(ctx, map[storage.Collection][]byte{
		storage.Activities: []byte(`[{"id":"a1"}]`),
	}))

	second := newStore(t, path)
	got, err := second.Load(ctx, storage.Activities)
	require.NoError(t, err)
	assert.JSONEq(t, `[{"id":"a1"}]`, string(got))
}

func TestStore_CanceledSaveCommitsNothing(t *testing.T) {
	s := newStore(t, filepath.Join(t.TempDir(), "closer.db"))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := s.Save(ctx, map[storage.Collection][]byte{
		storage.Deals:    []byte(`[{"id":"d1"}]`),
		storage.Expenses: []byte(`[]`),
	})
	require.Error(t, err)

	got, err := s.Load(context.Background(), storage.Deals)
	require.NoError(t, err)
	assert.Nil(t, got)
}
