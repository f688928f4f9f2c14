package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/closer/internal/expense"
	"github.com/MrJamesThe3rd/closer/internal/matching/store"
	"github.com/MrJamesThe3rd/closer/internal/storage/memory"
)

func TestStore_FindMatch(t *testing.T) {
	ctx := context.Background()

	clock := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	now := func() time.Time {
		clock = clock.Add(time.Minute)
		return clock
	}

	s := store.New(memory.New(), now)

	_, ok, err := s.FindMatch(ctx, "anything")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.CreateMapping(ctx, "shell", expense.CategoryMileage))
	require.NoError(t, s.CreateMapping(ctx, "shell oil", expense.CategoryOther))
	require.NoError(t, s.CreateMapping(ctx, "oil", expense.CategoryFood))

	tests := []struct {
		raw    string
		want   expense.Category
		wantOK bool
	}{
		{raw: "SHELL OIL 5521", want: expense.CategoryOther, wantOK: true},
		{raw: "Shell Station", want: expense.CategoryMileage, wantOK: true},
		{raw: "OLIVE OIL SHOP", want: expense.CategoryFood, wantOK: true},
		{raw: "HOME DEPOT", wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, ok, err := s.FindMatch(ctx, tt.raw)
			require.NoError(t, err)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestStore_RelearnReplaces(t *testing.T) {
	ctx := context.Background()
	s := store.New(memory.New(), nil)

	require.NoError(t, s.CreateMapping(ctx, "Acme Photo", expense.CategoryPhotography))
	require.NoError(t, s.CreateMapping(ctx, "ACME PHOTO", expense.CategoryPhotoVideo))

	got, ok, err := s.FindMatch(ctx, "acme photo studio")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, expense.CategoryPhotoVideo, got)
}
