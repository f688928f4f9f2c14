package demo_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MrJamesThe3rd/closer/internal/deal"
	"github.com/MrJamesThe3rd/closer/internal/demo"
	"github.com/MrJamesThe3rd/closer/internal/storage"
	"github.com/MrJamesThe3rd/closer/internal/storage/memory"
	"github.com/MrJamesThe3rd/closer/internal/tracker"
)

var now = time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

func fixedNow() time.Time { return now }

func TestSeed(t *testing.T) {
	snap, err := demo.Seed(now)
	require.NoError(t, err)

	assert.Len(t, snap.Deals, 31)
	assert.Len(t, snap.Expenses, 2)
	assert.Len(t, snap.Activities, 1)

	byID := map[string]*deal.Deal{}
	for _, d := range snap.Deals {
		byID[d.ID] = d
		assert.NoError(t, d.Validate(), d.ID)
	}

	seller := byID["demo-seller-1"]
	require.NotNil(t, seller)
	assert.Equal(t, int64(2_850_000), seller.ExpectedCommission)
	assert.Equal(t, now.AddDate(0, 0, -30), *seller.ListingDate)

	closed := byID["demo-closed-2"]
	require.NotNil(t, closed)
	assert.Equal(t, 105, *closed.DaysOnMarket)
	assert.Equal(t, int64(1_600_000), *closed.PriceVariance)

	lead := byID["demo-buyer-lead-1"]
	require.NotNil(t, lead)
	assert.Equal(t, "Realtor.com", lead.LeadSource)
	assert.False(t, lead.CreatedAt.After(lead.StageEnteredAt))

	assert.Equal(t, int64(18_550), snap.Expenses[1].TotalCost)
}

func TestProvider_PassThroughWhenInactive(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	ctx := context.Background()
	next := storage.NewMockProvider(ctrl)
	p := demo.NewProvider(next, demo.NewSwitch(false), fixedNow)

	next.EXPECT().Load(gomock.Any(), storage.Deals).Return([]byte(`[]`), nil)
	next.EXPECT().Save(gomock.Any(), map[storage.Collection][]byte{storage.Deals: []byte(`[]`)}).Return(nil)

	payload, err := p.Load(ctx, storage.Deals)
	require.NoError(t, err)
	assert.Equal(t, []byte(`[]`), payload)

	require.NoError(t, p.Save(ctx, map[storage.Collection][]byte{storage.Deals: []byte(`[]`)}))
}

func TestProvider_ActiveSubstitutesSeed(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	ctx := context.Background()
	next := storage.NewMockProvider(ctrl)
	p := demo.NewProvider(next, demo.NewSwitch(true), fixedNow)

	next.EXPECT().Load(gomock.Any(), storage.Settings).Return([]byte(`{}`), nil)
	next.EXPECT().Save(gomock.Any(), map[storage.Collection][]byte{storage.Settings: []byte(`{}`)}).Return(nil)

	payload, err := p.Load(ctx, storage.Deals)
	require.NoError(t, err)
	assert.Contains(t, string(payload), "demo-seller-1")

	settings, err := p.Load(ctx, storage.Settings)
	require.NoError(t, err)
	assert.Equal(t, []byte(`{}`), settings)

	require.NoError(t, p.Save(ctx, map[storage.Collection][]byte{
		storage.Deals:    []byte(`[]`),
		storage.Expenses: []byte(`[]`),
	}), "writes to seeded collections are dropped")

	require.NoError(t, p.Save(ctx, map[storage.Collection][]byte{
		storage.Deals:    []byte(`[]`),
		storage.Settings: []byte(`{}`),
	}))
}

func TestMode(t *testing.T) {
	ctx := context.Background()
	backing := memory.New()
	sw := demo.NewSwitch(false)

	svc := tracker.NewService(demo.NewProvider(backing, sw, fixedNow))
	require.NoError(t, svc.Load(ctx))

	_, err := svc.CreateDeal(ctx, tracker.DealParams{Name: "Real", Property: "1 Real St", Side: deal.SideBuyer})
	require.NoError(t, err)

	mode := demo.NewMode(sw, svc)

	require.NoError(t, mode.Enable(ctx))
	assert.True(t, mode.Active())
	assert.Len(t, svc.ListDeals(ctx, tracker.DealFilter{}), 31)

	_, err = svc.CreateDeal(ctx, tracker.DealParams{Name: "Scratch", Property: "2 Demo St", Side: deal.SideBuyer})
	require.NoError(t, err, "demo writes succeed without being persisted")

	require.NoError(t, mode.Clear(ctx), "clear in demo mode leaves demo mode")
	assert.False(t, mode.Active())

	deals := svc.ListDeals(ctx, tracker.DealFilter{})
	require.Len(t, deals, 1)
	assert.Equal(t, "Real", deals[0].Name)

	require.NoError(t, mode.Clear(ctx))
	assert.Empty(t, svc.ListDeals(ctx, tracker.DealFilter{}))
}
