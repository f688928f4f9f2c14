package cli

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/MrJamesThe3rd/closer/internal/app"
	"github.com/MrJamesThe3rd/closer/internal/kpi"
	"github.com/MrJamesThe3rd/closer/internal/tracker"
)

func init() {
	rootCmd.AddCommand(dashboardCmd)
	rootCmd.AddCommand(goalsCmd)
	rootCmd.AddCommand(reportCmd)

	dashboardCmd.Flags().Int("year", 0, "Year to show (defaults to the current year)")
	addPeriodFlags(reportCmd)
}

var dashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Show the yearly income dashboard",
	Args:  cobra.NoArgs,
	RunE:  runWithApp(runDashboard),
}

func runDashboard(cmd *cobra.Command, _ []string, a *app.App) error {
	year, _ := cmd.Flags().GetInt("year")
	if year == 0 {
		year = time.Now().Year()
	}

	ctx := cmd.Context()

	st, err := a.Settings.Get(ctx)
	if err != nil {
		return err
	}

	d := kpi.Dashboard(
		a.Tracker.ListDeals(ctx, tracker.DealFilter{}),
		a.Tracker.ListExpenses(ctx, tracker.ExpenseFilter{}),
		st,
		kpi.Year(year),
	)

	figures := newTable("Figure", "Value").Rows(
		[]string{"GCI", money(d.GCI)},
		[]string{"Expenses", money(d.TotalExpenses)},
		[]string{"Net income", money(d.NetIncome)},
		[]string{"Estimated tax", money(d.EstimatedTax)},
		[]string{"Closed deals", strconv.Itoa(d.ClosedDeals)},
		[]string{"Open deals", strconv.Itoa(d.OpenDeals)},
		[]string{"Average commission", optMoney(d.AverageCommission)},
		[]string{"Close rate", optPct(d.CloseRatePct)},
		[]string{"Goal progress", optPct(d.GoalProgressPct)},
		[]string{"Weighted pipeline", money(d.PipelineValue)},
	)

	monthly := newTable("Month", "GCI")
	for _, m := range d.MonthlyGCI {
		monthly.Row(m.Month.Format("Jan"), money(m.GCI))
	}

	fmt.Fprintln(cmd.OutOrStdout(), heading.Render("Dashboard "+d.Period.Label))
	fmt.Fprintln(cmd.OutOrStdout(), figures)
	fmt.Fprintln(cmd.OutOrStdout(), monthly)

	return nil
}

var goalsCmd = &cobra.Command{
	Use:   "goals",
	Short: "Show the deals and appointments needed to reach the annual goal",
	Args:  cobra.NoArgs,
	RunE:  runWithApp(runGoals),
}

func runGoals(cmd *cobra.Command, _ []string, a *app.App) error {
	st, err := a.Settings.Get(cmd.Context())
	if err != nil {
		return err
	}

	g := kpi.Goals(st)

	optInt := func(v *int) string {
		if v == nil {
			return "n/a"
		}

		return strconv.Itoa(*v)
	}

	optFloat := func(v *float64) string {
		if v == nil {
			return "n/a"
		}

		return fmt.Sprintf("%.2f", *v)
	}

	t := newTable("Goal", "Value").Rows(
		[]string{"Annual GCI goal", money(st.AnnualGCIGoal)},
		[]string{"Average commission", money(int64(g.AverageCommission))},
		[]string{"Deals per year", optFloat(g.DealsPerYear)},
		[]string{"Deals per year (rounded)", optInt(g.DealsPerYearRounded)},
		[]string{"Deals per month", optFloat(g.DealsPerMonth)},
		[]string{"Appointments per year", optFloat(g.AppointmentsPerYear)},
		[]string{"Appointments per year (rounded)", optInt(g.AppointmentsPerYearRounded)},
		[]string{"Appointments per month", optInt(g.AppointmentsPerMonth)},
	)

	fmt.Fprintln(cmd.OutOrStdout(), t)

	return nil
}

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Summarise closings, expenses and activities for a period",
	Args:  cobra.NoArgs,
	RunE:  runWithApp(runReport),
}

func runReport(cmd *cobra.Command, _ []string, a *app.App) error {
	p, err := periodFromFlags(cmd)
	if err != nil {
		return err
	}

	ctx := cmd.Context()

	r := kpi.Report(
		a.Tracker.ListDeals(ctx, tracker.DealFilter{}),
		a.Tracker.ListExpenses(ctx, tracker.ExpenseFilter{}),
		a.Tracker.ListActivities(ctx, tracker.ActivityFilter{}),
		p,
	)

	out := cmd.OutOrStdout()

	fmt.Fprintln(out, heading.Render("Report "+r.Period.Label))
	fmt.Fprintln(out, newTable("Figure", "Value").Rows(
		[]string{"Closed deals", strconv.Itoa(len(r.ClosedDeals))},
		[]string{"GCI", money(r.GCI)},
		[]string{"Expenses", money(r.TotalExpenses)},
		[]string{"Net income", money(r.NetIncome)},
		[]string{"Average commission", optMoney(r.AverageCommission)},
		[]string{"Activities", strconv.Itoa(r.ActivityTotal)},
	))

	if len(r.ExpensesByCategory) > 0 {
		t := newTable("Category", "Count", "Total")
		for _, c := range r.ExpensesByCategory {
			t.Row(c.Category.Label(), strconv.Itoa(c.Count), money(c.Total))
		}

		fmt.Fprintln(out, t)
	}

	if len(r.ActivitiesByType) > 0 {
		t := newTable("Activity", "Count")
		for _, c := range r.ActivitiesByType {
			t.Row(c.Category.Label(), strconv.Itoa(c.Count))
		}

		fmt.Fprintln(out, t)
	}

	return nil
}
