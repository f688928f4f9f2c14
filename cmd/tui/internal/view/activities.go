package view

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/closer/internal/activity"
	"github.com/MrJamesThe3rd/closer/internal/tracker"
)

type activitiesState int

const (
	activitiesStateBrowse activitiesState = iota
	activitiesStateCreate
	activitiesStateDelete
)

type activityInput struct {
	category activity.Category
	date     string
	dealID   string
	notes    string
	confirm  bool
}

type ActivitiesModel struct {
	CommonModel
	tracker *tracker.Service

	state      activitiesState
	table      table.Model
	activities []*activity.Activity
	form       *huh.Form
	input      *activityInput

	categoryFilterIdx int

	status string
}

func NewActivitiesModel(t *tracker.Service) ActivitiesModel {
	tbl := table.New(
		table.WithColumns([]table.Column{
			{Title: "Date", Width: 12},
			{Title: "Activity", Width: 20},
			{Title: "Deal", Width: 24},
			{Title: "Notes", Width: 40},
		}),
		table.WithFocused(true),
		table.WithHeight(15),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(false)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57")).
		Bold(false)
	tbl.SetStyles(s)

	return ActivitiesModel{
		tracker: t,
		table:   tbl,
		input:   &activityInput{},
	}
}

func (m ActivitiesModel) Title() string { return "Activity Log" }

func (m ActivitiesModel) ShortHelp() string {
	if m.state != activitiesStateBrowse {
		return "Navigate form | Esc: cancel"
	}

	return "Esc: back | n: log activity | x: delete | c: category filter"
}

func (m ActivitiesModel) Init() tea.Cmd {
	return m.loadCmd()
}

func (m ActivitiesModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case loadActivitiesMsg:
		m.activities = msg.activities
		m.table.SetRows(msg.rows)

		return m, nil

	case activitySavedMsg:
		m.status = ""
		if msg.err != nil {
			m.status = fmt.Sprintf("Error: %v", msg.err)
		}

		m.state = activitiesStateBrowse
		m.form = nil
		m.table.Focus()

		return m, m.loadCmd()

	case tea.WindowSizeMsg:
		m.table.SetHeight(msg.Height - 10)
		return m, nil
	}

	if m.state == activitiesStateBrowse {
		return m.updateBrowse(msg)
	}

	return m.updateForm(msg)
}

func (m ActivitiesModel) updateBrowse(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.String() {
		case "esc":
			return m, Back
		case "n":
			return m.openForm(activitiesStateCreate, m.createForm())
		case "x":
			if a := m.current(); a != nil {
				m.input.confirm = false

				return m.openForm(activitiesStateDelete, m.deleteForm(a))
			}
		case "c":
			m.categoryFilterIdx = (m.categoryFilterIdx + 1) % (len(activity.Categories) + 1)
			return m, m.loadCmd()
		}
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)

	return m, cmd
}

func (m ActivitiesModel) openForm(state activitiesState, form *huh.Form) (tea.Model, tea.Cmd) {
	m.state = state
	m.form = form
	m.table.Blur()

	return m, m.form.Init()
}

func (m ActivitiesModel) updateForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.Type == tea.KeyEsc {
		m.state = activitiesStateBrowse
		m.form = nil
		m.table.Focus()

		return m, nil
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State != huh.StateCompleted {
		return m, cmd
	}

	if m.state == activitiesStateDelete {
		return m, m.deleteCmd(m.current())
	}

	return m, m.createCmd()
}

func (m ActivitiesModel) current() *activity.Activity {
	idx := m.table.Cursor()
	if idx < 0 || idx >= len(m.activities) {
		return nil
	}

	return m.activities[idx]
}

func (m *ActivitiesModel) createForm() *huh.Form {
	ctx, cancel := StoreCtx()
	deals := m.tracker.ListDeals(ctx, tracker.DealFilter{})
	cancel()

	*m.input = activityInput{
		category: activity.CategoryShowing,
		date:     FormatDate(time.Now()),
	}

	categories := make([]huh.Option[activity.Category], len(activity.Categories))
	for i, c := range activity.Categories {
		categories[i] = huh.NewOption(c.Label(), c)
	}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[activity.Category]().Title("Activity").Options(categories...).Value(&m.input.category),
			huh.NewInput().Title("Date").Placeholder("YYYY-MM-DD").Value(&m.input.date).Validate(validDate),
			huh.NewSelect[string]().Title("Deal").Options(dealOptions(deals)...).Value(&m.input.dealID),
			huh.NewInput().Title("Notes").Value(&m.input.notes),
		),
	).WithWidth(50).WithShowHelp(false)
}

func (m *ActivitiesModel) deleteForm(a *activity.Activity) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(fmt.Sprintf("Delete %s on %s?", a.Category.Label(), FormatDate(a.Date))).
				Value(&m.input.confirm),
		),
	).WithWidth(50).WithShowHelp(false)
}

func (m ActivitiesModel) View() string {
	filter := "All"
	if m.categoryFilterIdx > 0 {
		filter = activity.Categories[m.categoryFilterIdx-1].Label()
	}

	tableView := lipgloss.NewStyle().
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		Render(m.table.View())

	content := lipgloss.JoinVertical(lipgloss.Left,
		lipgloss.NewStyle().PaddingBottom(1).Render(
			fmt.Sprintf("Filter: [c] Activity: %s | %d logged", activeStyle(filter), len(m.activities)),
		),
		tableView,
	)

	if m.state != activitiesStateBrowse && m.form != nil {
		panel := lipgloss.NewStyle().
			Padding(1, 2).
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("63")).
			Width(54).
			Render(m.form.View())

		content = lipgloss.JoinHorizontal(lipgloss.Top, content, panel)
	}

	if m.status != "" {
		content = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Render(m.status) + "\n" + content
	}

	return lipgloss.NewStyle().Padding(1).Render(content)
}

// Messages

type loadActivitiesMsg struct {
	activities []*activity.Activity
	rows       []table.Row
}

type activitySavedMsg struct {
	err error
}

func (m ActivitiesModel) loadCmd() tea.Cmd {
	var f tracker.ActivityFilter
	if m.categoryFilterIdx > 0 {
		f.Category = activity.Categories[m.categoryFilterIdx-1]
	}

	return func() tea.Msg {
		ctx, cancel := StoreCtx()
		defer cancel()

		names := make(map[string]string)
		for _, d := range m.tracker.ListDeals(ctx, tracker.DealFilter{}) {
			names[d.ID] = d.Name
		}

		activities := m.tracker.ListActivities(ctx, f)

		rows := make([]table.Row, len(activities))
		for i, a := range activities {
			dealName := ""
			if a.DealID != nil {
				dealName = names[*a.DealID]
			}

			rows[i] = table.Row{FormatDate(a.Date), a.Category.Label(), dealName, a.Notes}
		}

		return loadActivitiesMsg{activities: activities, rows: rows}
	}
}

func (m ActivitiesModel) createCmd() tea.Cmd {
	in := *m.input

	return func() tea.Msg {
		date, err := ParseDate(in.date, time.Now())
		if err != nil {
			return activitySavedMsg{err: err}
		}

		p := tracker.ActivityParams{
			Category: in.category,
			Date:     date,
			Notes:    strings.TrimSpace(in.notes),
		}

		if in.dealID != "" {
			p.DealID = &in.dealID
		}

		ctx, cancel := StoreCtx()
		defer cancel()

		_, err = m.tracker.CreateActivity(ctx, p)

		return activitySavedMsg{err: err}
	}
}

func (m ActivitiesModel) deleteCmd(a *activity.Activity) tea.Cmd {
	if a == nil || !m.input.confirm {
		return func() tea.Msg { return activitySavedMsg{} }
	}

	id := a.ID

	return func() tea.Msg {
		ctx, cancel := StoreCtx()
		defer cancel()

		return activitySavedMsg{err: m.tracker.DeleteActivity(ctx, id)}
	}
}
