// Package storagetest holds the behaviour every storage.Provider must show.
package storagetest

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/closer/internal/storage"
)

// Run exercises p against the provider contract. p must start empty.
func Run(t *testing.T, p storage.Provider) {
	t.Helper()

	ctx := context.Background()

	t.Run("LoadMissing", func(t *testing.T) {
		got, err := p.Load(ctx, storage.Deals)
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("SaveAndLoad", func(t *testing.T) {
		err := p.Save(ctx, map[storage.Collection][]byte{
			storage.Deals:    []byte(`[{"id":"d1"}]`),
			storage.Expenses: []byte(`[{"id":"e1"}]`),
		})
		require.NoError(t, err)

		got, err := p.Load(ctx, storage.Deals)
		require.NoError(t, err)
		assert.JSONEq(t, `[{"id":"d1"}]`, string(got))

		got, err = p.Load(ctx, storage.Expenses)
		require.NoError(t, err)
		assert.JSONEq(t, `[{"id":"e1"}]`, string(got))
	})

	t.Run("SaveReplacesOnlyGivenCollections", func(t *testing.T) {
		err := p.Save(ctx, map[storage.Collection][]byte{
			storage.Deals: []byte(`[]`),
		})
		require.NoError(t, err)

		got, err := p.Load(ctx, storage.Deals)
		require.NoError(t, err)
		assert.JSONEq(t, `[]`, string(got))

		got, err = p.Load(ctx, storage.Expenses)
		require.NoError(t, err)
		assert.JSONEq(t, `[{"id":"e1"}]`, string(got))
	})

	t.Run("SettingsIndependent", func(t *testing.T) {
		err := p.Save(ctx, map[storage.Collection][]byte{
			storage.Settings: []byte(`{"annual_gci_goal":100}`),
		})
		require.NoError(t, err)

		got, err := p.Load(ctx, storage.Activities)
		require.NoError(t, err)
		assert.Nil(t, got)
	})
}
