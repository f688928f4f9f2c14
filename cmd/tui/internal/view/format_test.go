package view_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/closer/cmd/tui/internal/view"
)

func TestFormatAmount(t *testing.T) {
	tests := []struct {
		cents int64
		want  string
	}{
		{cents: 0, want: "$0.00"},
		{cents: 5, want: "$0.05"},
		{cents: 123_450, want: "$1,234.50"},
		{cents: 123_456_789, want: "$1,234,567.89"},
		{cents: -250_000, want: "-$2,500.00"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, view.FormatAmount(tt.cents))
		})
	}
}

func TestParseAmount(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    *int64
		wantErr bool
	}{
		{name: "blank", input: "  ", want: nil},
		{name: "whole dollars", input: "12500", want: new(int64(1_250_000))},
		{name: "dollar sign and separators", input: "$1,234.5", want: new(int64(123_450))},
		{name: "rounds sub-cent", input: "0.005", want: new(int64(1))},
		{name: "garbage", input: "abc", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := view.ParseAmount(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTimeframePeriod(t *testing.T) {
	now := time.Date(2025, time.March, 10, 15, 0, 0, 0, time.UTC)

	tests := []struct {
		tf        view.Timeframe
		wantLabel string
		wantStart time.Time
		wantEnd   time.Time
	}{
		{
			tf:        view.TimeframeThisMonth,
			wantLabel: "March 2025",
			wantStart: time.Date(2025, time.March, 1, 0, 0, 0, 0, time.UTC),
			wantEnd:   time.Date(2025, time.March, 31, 0, 0, 0, 0, time.UTC),
		},
		{
			tf:        view.TimeframeLastMonth,
			wantLabel: "February 2025",
			wantStart: time.Date(2025, time.February, 1, 0, 0, 0, 0, time.UTC),
			wantEnd:   time.Date(2025, time.February, 28, 0, 0, 0, 0, time.UTC),
		},
		{
			tf:        view.TimeframeThisQuarter,
			wantLabel: "Q1 2025",
			wantStart: time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC),
			wantEnd:   time.Date(2025, time.March, 31, 0, 0, 0, 0, time.UTC),
		},
		{
			tf:        view.TimeframeLastYear,
			wantLabel: "2024",
			wantStart: time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC),
			wantEnd:   time.Date(2024, time.December, 31, 0, 0, 0, 0, time.UTC),
		},
	}

	for _, tt := range tests {
		t.Run(tt.tf.String(), func(t *testing.T) {
			p := tt.tf.Period(now)
			assert.Equal(t, tt.wantLabel, p.Label)
			assert.True(t, tt.wantStart.Equal(p.Start), p.Start)
			assert.True(t, tt.wantEnd.Equal(p.End), p.End)
		})
	}
}
