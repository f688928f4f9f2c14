package backup_test

import (
	"context"
	"errors"
	"maps"
	"slices"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MrJamesThe3rd/closer/internal/backup"
	"github.com/MrJamesThe3rd/closer/internal/deal"
	"github.com/MrJamesThe3rd/closer/internal/expense"
	"github.com/MrJamesThe3rd/closer/internal/settings"
	"github.com/MrJamesThe3rd/closer/internal/storage/memory"
	"github.com/MrJamesThe3rd/closer/internal/tracker"
	"github.com/MrJamesThe3rd/closer/internal/validation"
)

type bucket map[string][]byte

func (b bucket) Put(_ context.Context, key string, payload []byte) error {
	b[key] = payload
	return nil
}

func (b bucket) Get(_ context.Context, key string) ([]byte, error) {
	payload, ok := b[key]
	if !ok {
		return nil, backup.ErrNotFound
	}

	return payload, nil
}

func (b bucket) List(context.Context, string) ([]string, error) {
	return slices.Collect(maps.Keys(b)), nil
}

type clock struct{ now time.Time }

func (c *clock) Now() time.Time { return c.now }

func TestService_BackupRestore(t *testing.T) {
	ctx := context.Background()
	c := &clock{now: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}

	store := memory.New()
	settingsSvc := settings.NewService(store)
	trackerSvc := tracker.NewService(store, tracker.WithClock(c))
	require.NoError(t, trackerSvc.Load(ctx))

	d, err := trackerSvc.CreateDeal(ctx, tracker.DealParams{
		Name:               "Jordan Lee",
		Property:           "4 Birch Court",
		Side:               deal.SideBuyer,
		Stage:              deal.StageUnderContract,
		ExpectedCommission: 900_000,
	})
	require.NoError(t, err)

	_, err = trackerSvc.CreateExpense(ctx, tracker.ExpenseParams{
		DealID:      &d.ID,
		Kind:        expense.KindStandard,
		Category:    expense.CategoryStaging,
		Date:        c.now,
		Quantity:    2,
		CostPerUnit: 12_500,
	})
	require.NoError(t, err)

	custom := settings.Defaults()
	custom.AnnualGCIGoal = 15_000_000
	require.NoError(t, settingsSvc.Update(ctx, custom))

	b := bucket{}
	svc := backup.NewService(b, trackerSvc, settingsSvc, c.Now)

	key, err := svc.Backup(ctx)
	require.NoError(t, err)
	assert.Equal(t, "backups/20250601T120000Z.msgpack", key)

	require.NoError(t, trackerSvc.Clear(ctx))
	require.NoError(t, settingsSvc.Update(ctx, settings.Defaults()))

	require.NoError(t, svc.Restore(ctx, key))

	deals := trackerSvc.ListDeals(ctx, tracker.DealFilter{})
	require.Len(t, deals, 1)
	assert.Equal(t, d.ID, deals[0].ID)
	assert.Equal(t, deal.StageUnderContract, deals[0].Stage)
	assert.Equal(t, int64(900_000), deals[0].ExpectedCommission)
	assert.True(t, c.now.Equal(deals[0].StageEnteredAt))

	expenses := trackerSvc.ExpensesForDeal(ctx, d.ID)
	require.Len(t, expenses, 1)
	assert.Equal(t, int64(25_000), expenses[0].TotalCost)

	st, err := settingsSvc.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, custom, st)
}

func TestService_List(t *testing.T) {
	b := bucket{
		"backups/20250101T000000Z.msgpack": nil,
		"backups/20250301T000000Z.msgpack": nil,
		"backups/notes.txt":                nil,
		"backups/20250201T000000Z.msgpack": nil,
	}

	svc := backup.NewService(b, nil, nil, nil)

	keys, err := svc.List(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{
		"backups/20250301T000000Z.msgpack",
		"backups/20250201T000000Z.msgpack",
		"backups/20250101T000000Z.msgpack",
	}, keys)
}

func TestService_Errors(t *testing.T) {
	ctx := context.Background()
	now := func() time.Time { return time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC) }

	t.Run("UploadFailure", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		store := backup.NewMockStore(ctrl)
		tr := backup.NewMockTracker(ctrl)
		st := backup.NewMockSettingsStore(ctrl)

		st.EXPECT().Get(gomock.Any()).Return(settings.Defaults(), nil)
		tr.EXPECT().Snapshot(gomock.Any()).Return(tracker.Snapshot{})
		store.EXPECT().Put(gomock.Any(), "backups/20250601T000000Z.msgpack", gomock.Any()).Return(errors.New("denied"))

		_, err := backup.NewService(store, tr, st, now).Backup(ctx)
		assert.ErrorContains(t, err, "uploading backup")
	})

	t.Run("MissingKey", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		store := backup.NewMockStore(ctrl)
		store.EXPECT().Get(gomock.Any(), "backups/x.msgpack").Return(nil, backup.ErrNotFound)

		err := backup.NewService(store, nil, nil, now).Restore(ctx, "backups/x.msgpack")
		assert.ErrorIs(t, err, backup.ErrNotFound)
	})

	t.Run("CorruptPayload", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		store := backup.NewMockStore(ctrl)
		store.EXPECT().Get(gomock.Any(), "k").Return([]byte{0xc1}, nil)

		err := backup.NewService(store, nil, nil, now).Restore(ctx, "k")
		assert.ErrorContains(t, err, "decoding backup")
	})

	t.Run("InvalidSettingsWriteNothing", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		bad := settings.Defaults()
		bad.TargetCloseRate = 250

		b := bucket{}
		tr := backup.NewMockTracker(ctrl)
		st := backup.NewMockSettingsStore(ctrl)

		st.EXPECT().Get(gomock.Any()).Return(bad, nil)
		tr.EXPECT().Snapshot(gomock.Any()).Return(tracker.Snapshot{})

		svc := backup.NewService(b, tr, st, now)

		key, err := svc.Backup(ctx)
		require.NoError(t, err)

		err = svc.Restore(ctx, key)
		assert.ErrorIs(t, err, validation.ErrInvalid)
	})
}
