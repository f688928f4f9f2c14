// Package cli implements closerctl, the operator command line for Closer.
package cli

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/MrJamesThe3rd/closer/internal/app"
	"github.com/MrJamesThe3rd/closer/internal/config"
	"github.com/MrJamesThe3rd/closer/internal/export"
	kpiHandler "github.com/MrJamesThe3rd/closer/internal/http/kpi"
	"github.com/MrJamesThe3rd/closer/internal/kpi"
)

var rootCmd = &cobra.Command{
	Use:          "closerctl",
	Short:        "Operate a Closer commission tracker from the command line",
	SilenceUsage: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		_ = godotenv.Load()
	},
}

func Execute() error {
	return rootCmd.Execute()
}

// runWithApp opens the configured storage, runs fn against the assembled
// services and closes the storage afterwards.
func runWithApp(fn func(cmd *cobra.Command, args []string, a *app.App) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}

		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}

		provider, closeStorage, err := app.OpenStorage(ctx, cfg)
		if err != nil {
			return err
		}
		defer closeStorage()

		a, err := app.New(ctx, provider, app.Options{DemoActive: cfg.Demo.Enabled})
		if err != nil {
			return err
		}

		return fn(cmd, args, a)
	}
}

func addPeriodFlags(cmd *cobra.Command) {
	cmd.Flags().String("period", "year", "Period kind: year, quarter, month or custom")
	cmd.Flags().Int("year", 0, "Year of the period (defaults to the current year)")
	cmd.Flags().Int("quarter", 0, "Quarter 1-4 for --period quarter")
	cmd.Flags().Int("month", 0, "Month 1-12 for --period month")
	cmd.Flags().String("start", "", "Start date YYYY-MM-DD for --period custom")
	cmd.Flags().String("end", "", "End date YYYY-MM-DD for --period custom")
}

// periodFromFlags resolves the period flags the same way the API resolves its query string.
func periodFromFlags(cmd *cobra.Command) (kpi.Period, error) {
	q := url.Values{}

	period, _ := cmd.Flags().GetString("period")
	q.Set("period", period)

	for _, name := range []string{"year", "quarter", "month"} {
		if v, _ := cmd.Flags().GetInt(name); v != 0 {
			q.Set(name, strconv.Itoa(v))
		}
	}

	for _, name := range []string{"start", "end"} {
		if v, _ := cmd.Flags().GetString(name); v != "" {
			q.Set(name, v)
		}
	}

	return kpiHandler.PeriodFromQuery(q, time.Now())
}

func money(cents int64) string {
	if cents < 0 {
		return "-$" + export.FormatAmount(-cents)
	}

	return "$" + export.FormatAmount(cents)
}

func optMoney(cents *int64) string {
	if cents == nil {
		return "n/a"
	}

	return money(*cents)
}

func optPct(p *float64) string {
	if p == nil {
		return "n/a"
	}

	return fmt.Sprintf("%.1f%%", *p)
}

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("240"))).
		Headers(headers...)
}

var heading = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205"))
