package cli

import (
	"bytes"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/closer/internal/auth"
)

func TestPeriodFromFlags(t *testing.T) {
	year := time.Now().Year()

	tests := []struct {
		name      string
		flags     map[string]string
		wantLabel string
		wantErr   bool
	}{
		{name: "default year", flags: nil, wantLabel: strconv.Itoa(year)},
		{name: "quarter", flags: map[string]string{"period": "quarter", "year": "2024", "quarter": "3"}, wantLabel: "Q3 2024"},
		{name: "month", flags: map[string]string{"period": "month", "year": "2025", "month": "2"}, wantLabel: "February 2025"},
		{
			name:      "custom",
			flags:     map[string]string{"period": "custom", "start": "2025-01-15", "end": "2025-02-15"},
			wantLabel: "2025-01-15 to 2025-02-15",
		},
		{name: "quarter out of range", flags: map[string]string{"period": "quarter", "quarter": "5"}, wantErr: true},
		{name: "custom without dates", flags: map[string]string{"period": "custom"}, wantErr: true},
		{name: "unknown kind", flags: map[string]string{"period": "decade"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd := &cobra.Command{}
			addPeriodFlags(cmd)

			for k, v := range tt.flags {
				require.NoError(t, cmd.Flags().Set(k, v))
			}

			p, err := periodFromFlags(cmd)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.wantLabel, p.Label)
		})
	}
}

func TestMoney(t *testing.T) {
	assert.Equal(t, "$1,250.00", money(125_000))
	assert.Equal(t, "-$3.05", money(-305))
	assert.Equal(t, "n/a", optMoney(nil))
	assert.Equal(t, "n/a", optPct(nil))
	assert.Equal(t, "12.5%", optPct(new(12.5)))
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()

	var out bytes.Buffer

	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)

	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
	})

	err := rootCmd.Execute()

	return out.String(), err
}

func TestTokenCommand(t *testing.T) {
	const secret = "0123456789abcdef0123456789abcdef"

	t.Setenv("AUTH_SECRET", secret)

	out, err := execute(t, "token", "--subject", "laptop", "--ttl", "1h")
	require.NoError(t, err)

	a, err := auth.New(secret, time.Now)
	require.NoError(t, err)

	subject, err := a.Verify(strings.TrimSpace(out))
	require.NoError(t, err)
	assert.Equal(t, "laptop", subject)
}

func TestDashboardCommand(t *testing.T) {
	t.Setenv("STORAGE_DRIVER", "memory")

	out, err := execute(t, "dashboard", "--year", "2024")
	require.NoError(t, err)

	assert.Contains(t, out, "Dashboard 2024")
	assert.Contains(t, out, "Weighted pipeline")
	assert.Contains(t, out, "Dec")
}

func TestClearRequiresConfirmation(t *testing.T) {
	t.Setenv("STORAGE_DRIVER", "memory")

	_, err := execute(t, "clear")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--yes")
}
