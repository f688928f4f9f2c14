package main

import (
	"context"
	"log/slog"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/joho/godotenv"

	"github.com/MrJamesThe3rd/closer/cmd/tui/internal/view"
	"github.com/MrJamesThe3rd/closer/internal/app"
	"github.com/MrJamesThe3rd/closer/internal/config"
)

type model struct {
	app *app.App

	currentView View

	dashboardView view.DashboardModel
	dealsView     view.DealsModel
	expensesView  view.ExpensesModel
	importView    view.ImportModel
	exportView    view.ExportModel
	activityView  view.ActivitiesModel
	settingsView  view.SettingsModel

	status string
}

type View int

const (
	ViewMenu      View = 0
	ViewDashboard View = 1
	ViewDeals     View = 2
	ViewExpenses  View = 3
	ViewImport    View = 4
	ViewExport    View = 5
	ViewActivity  View = 6
	ViewSettings  View = 7
)

func initialModel(a *app.App) model {
	return model{
		app:           a,
		currentView:   ViewMenu,
		dashboardView: view.NewDashboardModel(a.Tracker, a.Settings),
		dealsView:     view.NewDealsModel(a.Tracker),
		expensesView:  view.NewExpensesModel(a.Tracker, a.Matching),
		importView:    view.NewImportModel(a.Tracker, a.Importer, a.Matching),
		exportView:    view.NewExportModel(a.Export),
		activityView:  view.NewActivitiesModel(a.Tracker),
		settingsView:  view.NewSettingsModel(a.Settings),
	}
}

func (m model) Init() tea.Cmd {
	return nil
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.currentView == ViewMenu {
			switch msg.String() {
			case "ctrl+c", "q":
				return m, tea.Quit
			case "1":
				m.currentView = ViewDashboard
				m.dashboardView = view.NewDashboardModel(m.app.Tracker, m.app.Settings)

				return m, m.dashboardView.Init()
			case "2":
				m.currentView = ViewDeals
				m.dealsView = view.NewDealsModel(m.app.Tracker)

				return m, m.dealsView.Init()
			case "3":
				m.currentView = ViewExpenses
				m.expensesView = view.NewExpensesModel(m.app.Tracker, m.app.Matching)

				return m, m.expensesView.Init()
			case "4":
				m.currentView = ViewImport
				m.importView = view.NewImportModel(m.app.Tracker, m.app.Importer, m.app.Matching)

				return m, m.importView.Init()
			case "5":
				m.currentView = ViewExport
				m.exportView = view.NewExportModel(m.app.Export)

				return m, m.exportView.Init()
			case "6":
				m.currentView = ViewActivity
				m.activityView = view.NewActivitiesModel(m.app.Tracker)

				return m, m.activityView.Init()
			case "7":
				m.currentView = ViewSettings
				m.settingsView = view.NewSettingsModel(m.app.Settings)

				return m, m.settingsView.Init()
			case "d":
				return m, m.toggleDemoCmd()
			}
		}
	case demoToggledMsg:
		m.status = msg.status
		return m, nil
	case view.BackMsg:
		m.currentView = ViewMenu
		return m, nil
	}

	switch m.currentView {
	case ViewDashboard:
		var newModel tea.Model
		newModel, cmd = m.dashboardView.Update(msg)
		m.dashboardView = newModel.(view.DashboardModel)
	case ViewDeals:
		var newModel tea.Model
		newModel, cmd = m.dealsView.Update(msg)
		m.dealsView = newModel.(view.DealsModel)
	case ViewExpenses:
		var newModel tea.Model
		newModel, cmd = m.expensesView.Update(msg)
		m.expensesView = newModel.(view.ExpensesModel)
	case ViewImport:
		var newModel tea.Model
		newModel, cmd = m.importView.Update(msg)
		m.importView = newModel.(view.ImportModel)
	case ViewExport:
		var newModel tea.Model
		newModel, cmd = m.exportView.Update(msg)
		m.exportView = newModel.(view.ExportModel)
	case ViewActivity:
		var newModel tea.Model
		newModel, cmd = m.activityView.Update(msg)
		m.activityView = newModel.(view.ActivitiesModel)
	case ViewSettings:
		var newModel tea.Model
		newModel, cmd = m.settingsView.Update(msg)
		m.settingsView = newModel.(view.SettingsModel)
	}

	return m, cmd
}

func (m model) View() string {
	switch m.currentView {
	case ViewMenu:
		demo := "off"
		if m.app.Demo.Active() {
			demo = lipgloss.NewStyle().Foreground(lipgloss.Color("205")).Render("ON (sample data)")
		}

		menu := "Closer TUI\n\n" +
			"1. Dashboard\n" +
			"2. Deals\n" +
			"3. Expenses\n" +
			"4. Import Bank Statement\n" +
			"5. Accountant Export\n" +
			"6. Activity Log\n" +
			"7. Settings\n\n" +
			"d. Toggle demo mode (" + demo + ")\n" +
			"q. Quit"

		if m.status != "" {
			menu += "\n\n" + lipgloss.NewStyle().Faint(true).Render(m.status)
		}

		return lipgloss.NewStyle().Padding(2).Render(menu)
	case ViewDashboard:
		return m.dashboardView.View()
	case ViewDeals:
		return m.dealsView.View()
	case ViewExpenses:
		return m.expensesView.View()
	case ViewImport:
		return m.importView.View()
	case ViewExport:
		return m.exportView.View()
	case ViewActivity:
		return m.activityView.View()
	case ViewSettings:
		return m.settingsView.View()
	}

	return "Unknown View"
}

type demoToggledMsg struct {
	status string
}

func (m model) toggleDemoCmd() tea.Cmd {
	mode := m.app.Demo

	return func() tea.Msg {
		ctx, cancel := view.StoreCtx()
		defer cancel()

		toggle := mode.Enable
		if mode.Active() {
			toggle = mode.Disable
		}

		if err := toggle(ctx); err != nil {
			return demoToggledMsg{status: "Error: " + err.Error()}
		}

		return demoToggledMsg{}
	}
}

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()

	provider, closeStorage, err := app.OpenStorage(ctx, cfg)
	if err != nil {
		slog.Error("failed to open storage", "error", err)
		os.Exit(1)
	}
	defer closeStorage()

	a, err := app.New(ctx, provider, app.Options{DemoActive: cfg.Demo.Enabled})
	if err != nil {
		slog.Error("failed to start", "error", err)
		os.Exit(1)
	}

	p := tea.NewProgram(initialModel(a))
	if _, err := p.Run(); err != nil {
		slog.Error("failed to run TUI", "error", err)
		os.Exit(1)
	}
}
