package view

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/closer/internal/kpi"
	"github.com/MrJamesThe3rd/closer/internal/settings"
	"github.com/MrJamesThe3rd/closer/internal/tracker"
)

const barWidth = 30

type DashboardModel struct {
	CommonModel
	tracker  *tracker.Service
	settings *settings.Service

	year  int
	data  kpi.DashboardData
	goals kpi.GoalsData
	err   error
}

func NewDashboardModel(t *tracker.Service, st *settings.Service) DashboardModel {
	return DashboardModel{
		tracker:  t,
		settings: st,
		year:     time.Now().Year(),
	}
}

func (m DashboardModel) Title() string { return "Dashboard" }

func (m DashboardModel) ShortHelp() string {
	return "Esc: back | ←/→: change year | r: refresh"
}

func (m DashboardModel) Init() tea.Cmd {
	return m.loadCmd()
}

func (m DashboardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case dashboardMsg:
		m.err = msg.err
		m.data = msg.data
		m.goals = msg.goals

		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "esc":
			return m, Back
		case "left", "h":
			m.year--
			return m, m.loadCmd()
		case "right", "l":
			m.year++
			return m, m.loadCmd()
		case "r":
			return m, m.loadCmd()
		}
	}

	return m, nil
}

func (m DashboardModel) View() string {
	if m.err != nil {
		return lipgloss.NewStyle().Padding(2).Render(fmt.Sprintf("Error: %v", m.err))
	}

	title := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205")).Render("Year " + m.data.Period.Label)

	avg := "n/a"
	if m.data.AverageCommission != nil {
		avg = FormatAmount(*m.data.AverageCommission)
	}

	figures := strings.Join([]string{
		fmt.Sprintf("GCI:               %s", FormatAmount(m.data.GCI)),
		fmt.Sprintf("Expenses:          %s", FormatAmount(m.data.TotalExpenses)),
		fmt.Sprintf("Net Income:        %s", FormatAmount(m.data.NetIncome)),
		fmt.Sprintf("Estimated Tax:     %s", FormatAmount(m.data.EstimatedTax)),
		fmt.Sprintf("Closed / Open:     %d / %d", m.data.ClosedDeals, m.data.OpenDeals),
		fmt.Sprintf("Average Comm.:     %s", avg),
		fmt.Sprintf("Close Rate:        %s", FormatPct(m.data.CloseRatePct)),
		fmt.Sprintf("Goal Progress:     %s", FormatPct(m.data.GoalProgressPct)),
		fmt.Sprintf("Weighted Pipeline: %s", FormatAmount(m.data.PipelineValue)),
	}, "\n")

	box := lipgloss.NewStyle().
		Padding(1, 2).
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("63"))

	return lipgloss.NewStyle().Padding(1).Render(lipgloss.JoinVertical(lipgloss.Left,
		title,
		"",
		lipgloss.JoinHorizontal(lipgloss.Top,
			box.Render(figures),
			box.Render(m.viewGoals()),
		),
		box.Render(m.viewMonthly()),
	))
}

func (m DashboardModel) viewGoals() string {
	g := m.goals

	lines := []string{
		lipgloss.NewStyle().Bold(true).Render("To Reach Goal"),
		"",
		fmt.Sprintf("Average Commission: %s", FormatAmount(int64(g.AverageCommission))),
	}

	if g.DealsPerYearRounded == nil {
		return strings.Join(append(lines, "Set an annual goal and average commissions."), "\n")
	}

	lines = append(lines,
		fmt.Sprintf("Deals / Year:       %d", *g.DealsPerYearRounded),
		fmt.Sprintf("Deals / Month:      %.1f", *g.DealsPerMonth),
	)

	if g.AppointmentsPerYearRounded != nil {
		lines = append(lines,
			fmt.Sprintf("Appts / Year:       %d", *g.AppointmentsPerYearRounded),
			fmt.Sprintf("Appts / Month:      %d", *g.AppointmentsPerMonth),
		)
	}

	return strings.Join(lines, "\n")
}

func (m DashboardModel) viewMonthly() string {
	var peak int64
	for _, mg := range m.data.MonthlyGCI {
		peak = max(peak, mg.GCI)
	}

	bar := lipgloss.NewStyle().Foreground(lipgloss.Color("46"))

	lines := make([]string, 0, len(m.data.MonthlyGCI)+1)
	lines = append(lines, lipgloss.NewStyle().Bold(true).Render("Monthly GCI"))

	for _, mg := range m.data.MonthlyGCI {
		n := 0
		if peak > 0 {
			n = int(mg.GCI * barWidth / peak)
		}

		lines = append(lines, fmt.Sprintf("%s %-*s %s",
			mg.Month.Format("Jan"),
			barWidth, bar.Render(strings.Repeat("█", n)),
			FormatAmount(mg.GCI),
		))
	}

	return strings.Join(lines, "\n")
}

type dashboardMsg struct {
	data  kpi.DashboardData
	goals kpi.GoalsData
	err   error
}

func (m DashboardModel) loadCmd() tea.Cmd {
	year := m.year

	return func() tea.Msg {
		ctx, cancel := StoreCtx()
		defer cancel()

		st, err := m.settings.Get(ctx)
		if err != nil {
			return dashboardMsg{err: err}
		}

		deals := m.tracker.ListDeals(ctx, tracker.DealFilter{})
		expenses := m.tracker.ListExpenses(ctx, tracker.ExpenseFilter{})

		return dashboardMsg{
			data:  kpi.Dashboard(deals, expenses, st, kpi.Year(year)),
			goals: kpi.Goals(st),
		}
	}
}
