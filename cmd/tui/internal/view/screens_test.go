package view_test

import (
	"context"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/closer/cmd/tui/internal/view"
	"github.com/MrJamesThe3rd/closer/internal/activity"
	"github.com/MrJamesThe3rd/closer/internal/deal"
	"github.com/MrJamesThe3rd/closer/internal/settings"
	"github.com/MrJamesThe3rd/closer/internal/storage/memory"
	"github.com/MrJamesThe3rd/closer/internal/tracker"
)

// run feeds the message produced by cmd back into the model.
func run(t *testing.T, m tea.Model, cmd tea.Cmd) tea.Model {
	t.Helper()
	require.NotNil(t, cmd)

	m, _ = m.Update(cmd())

	return m
}

func TestSettingsModel(t *testing.T) {
	ctx := context.Background()
	svc := settings.NewService(memory.New())

	s := settings.Defaults()
	s.AnnualGCIGoal = 12_345_600
	require.NoError(t, svc.Update(ctx, s))

	m := view.NewSettingsModel(svc)
	loaded := run(t, m, m.Init())

	out := loaded.View()
	assert.Contains(t, out, "Annual GCI Goal")
	assert.Contains(t, out, "123456.00")

	_, cmd := loaded.Update(tea.KeyMsg{Type: tea.KeyEsc})
	require.NotNil(t, cmd)
	assert.Equal(t, view.BackMsg{}, cmd())
}

func TestActivitiesModel(t *testing.T) {
	ctx := context.Background()

	svc := tracker.NewService(memory.New())
	require.NoError(t, svc.Load(ctx))

	d, err := svc.CreateDeal(ctx, tracker.DealParams{
		Name:               "Jordan Lee",
		Property:           "14 Harbor Road",
		Side:               deal.SideBuyer,
		Stage:              deal.StageShowingOrActive,
		ExpectedCommission: 900_000,
		LeadSource:         "Zillow",
	})
	require.NoError(t, err)

	_, err = svc.CreateActivity(ctx, tracker.ActivityParams{
		DealID:   &d.ID,
		Date:     time.Date(2025, 6, 7, 0, 0, 0, 0, time.UTC),
		Category: activity.CategoryShowing,
		Notes:    "Saturday tour",
	})
	require.NoError(t, err)

	m := view.NewActivitiesModel(svc)
	loaded := run(t, m, m.Init())

	out := loaded.View()
	assert.Contains(t, out, "2025-06-07")
	assert.Contains(t, out, "Showing")
	assert.Contains(t, out, "Jordan Lee")
	assert.Contains(t, out, "1 logged")

	filtered, cmd := loaded.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("c")})
	filtered = run(t, filtered, cmd)

	out = filtered.View()
	assert.Contains(t, out, activity.Categories[0].Label())
	assert.Contains(t, out, "0 logged")
}

func TestParseNumber(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    *float64
		wantErr bool
	}{
		{name: "blank", input: "", want: nil},
		{name: "rate with percent sign", input: "2.5%", want: new(2.5)},
		{name: "thousands separator", input: "1,200", want: new(1200.0)},
		{name: "garbage", input: "fast", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := view.ParseNumber(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseDate(t *testing.T) {
	now := time.Date(2025, time.March, 10, 22, 30, 0, 0, time.FixedZone("EST", -5*3600))

	got, err := view.ParseDate(" ", now)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, time.March, 10, 0, 0, 0, 0, time.UTC), got)

	got, err = view.ParseDate("2024-12-31", now)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, time.December, 31, 0, 0, 0, 0, time.UTC), got)

	_, err = view.ParseDate("12/31/2024", now)
	assert.Error(t, err)
}

func TestAmountInput(t *testing.T) {
	assert.Empty(t, view.AmountInput(nil))

	cents := int64(1_234_505)
	in := view.AmountInput(&cents)
	assert.Equal(t, "12345.05", in)

	back, err := view.ParseAmount(in)
	require.NoError(t, err)
	assert.Equal(t, &cents, back)
}
