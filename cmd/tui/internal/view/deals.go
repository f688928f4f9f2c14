package view

import (
	"errors"
	"fmt"
	"math"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/closer/internal/deal"
	"github.com/MrJamesThe3rd/closer/internal/tracker"
)

type dealsState int

const (
	dealsStateBrowse dealsState = iota
	dealsStateCreate
	dealsStateEdit
	dealsStateStage
	dealsStateDelete
)

// dealInput holds the form bindings. It lives behind a pointer so the
// bindings survive the model being copied between updates.
type dealInput struct {
	name       string
	property   string
	side       deal.Side
	leadSource string
	expected   string
	listPrice  string
	rate       string
	notes      string
	// probability is a percentage; blank keeps the current value.
	probability string

	stage       deal.Stage
	realized    string
	closedPrice string

	confirm bool
}

type DealsModel struct {
	CommonModel
	tracker *tracker.Service

	state dealsState
	table table.Model
	deals []*deal.Deal
	form  *huh.Form
	input *dealInput

	stageFilterIdx int
	sideFilterIdx  int

	status string
}

func NewDealsModel(t *tracker.Service) DealsModel {
	columns := []table.Column{
		{Title: "Client", Width: 20},
		{Title: "Property", Width: 26},
		{Title: "Side", Width: 7},
		{Title: "Stage", Width: 17},
		{Title: "Prob", Width: 6},
		{Title: "Expected", Width: 13},
		{Title: "Weighted", Width: 13},
		{Title: "Realized", Width: 13},
		{Title: "DOM", Width: 5},
	}

	tbl := table.New(
		table.WithColumns(columns),
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

	return DealsModel{
		tracker: t,
		table:   tbl,
		input:   &dealInput{},
	}
}

func (m DealsModel) Title() string { return "Deals" }

func (m DealsModel) ShortHelp() string {
	if m.state != dealsStateBrowse {
		return "Navigate form | Esc: cancel"
	}

	return "Esc: back | n: new | e: edit | enter: move stage | x: delete | s: stage filter | d: side filter"
}

func (m DealsModel) Init() tea.Cmd {
	return m.loadCmd()
}

func (m DealsModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case loadDealsMsg:
		m.deals = msg.deals
		m.refreshTable()

		return m, nil

	case dealSavedMsg:
		m.status = ""
		if msg.err != nil {
			m.status = fmt.Sprintf("Error: %v", msg.err)
		}

		m.state = dealsStateBrowse
		m.form = nil
		m.table.Focus()

		return m, m.loadCmd()

	case tea.WindowSizeMsg:
		m.table.SetHeight(msg.Height - 10)
		return m, nil
	}

	if m.state == dealsStateBrowse {
		return m.updateBrowse(msg)
	}

	return m.updateForm(msg)
}

func (m DealsModel) updateBrowse(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.String() {
		case "esc":
			return m, Back
		case "r":
			return m, m.loadCmd()
		case "n":
			return m.openForm(dealsStateCreate, m.createForm())
		case "e":
			if d := m.current(); d != nil {
				return m.openForm(dealsStateEdit, m.editForm(d))
			}
		case "enter":
			if d := m.current(); d != nil {
				m.input.stage = d.Stage
				m.input.realized, m.input.closedPrice = "", ""

				return m.openForm(dealsStateStage, m.stageForm(d))
			}
		case "x":
			if d := m.current(); d != nil {
				m.input.confirm = false

				return m.openForm(dealsStateDelete, m.deleteForm(d))
			}
		case "s":
			m.stageFilterIdx = (m.stageFilterIdx + 1) % (len(deal.Stages) + 1)
			return m, m.loadCmd()
		case "d":
			m.sideFilterIdx = (m.sideFilterIdx + 1) % 3
			return m, m.loadCmd()
		}
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)

	return m, cmd
}

func (m DealsModel) openForm(state dealsState, form *huh.Form) (tea.Model, tea.Cmd) {
	m.state = state
	m.form = form
	m.table.Blur()

	return m, m.form.Init()
}

func (m DealsModel) updateForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.Type == tea.KeyEsc {
		m.state = dealsStateBrowse
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

	switch m.state {
	case dealsStateCreate:
		return m, m.createCmd()
	case dealsStateEdit:
		return m, m.editCmd(m.current())
	case dealsStateStage:
		return m, m.stageCmd(m.current())
	case dealsStateDelete:
		return m, m.deleteCmd(m.current())
	}

	return m, nil
}

func (m DealsModel) current() *deal.Deal {
	idx := m.table.Cursor()
	if idx < 0 || idx >= len(m.deals) {
		return nil
	}

	return m.deals[idx]
}

func (m *DealsModel) createForm() *huh.Form {
	*m.input = dealInput{side: deal.SideBuyer}

	sources := make([]huh.Option[string], 0, len(deal.LeadSources)+1)
	sources = append(sources, huh.NewOption("(none)", ""))

	for _, s := range deal.LeadSources {
		sources = append(sources, huh.NewOption(s, s))
	}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Client").Value(&m.input.name).Validate(nonEmpty("client")),
			huh.NewInput().Title("Property").Value(&m.input.property).Validate(nonEmpty("property")),
			huh.NewSelect[deal.Side]().
				Title("Side").
				Options(
					huh.NewOption("Buyer", deal.SideBuyer),
					huh.NewOption("Seller", deal.SideSeller),
				).
				Value(&m.input.side),
			huh.NewSelect[string]().Title("Lead Source").Options(sources...).Value(&m.input.leadSource),
		),
		huh.NewGroup(
			huh.NewInput().
				Title("Expected Commission").
				Description("Buyers only. Seller commission derives from the listing.").
				Placeholder("0.00").
				Value(&m.input.expected).
				Validate(validAmount),
			huh.NewInput().Title("List Price").Placeholder("0.00").Value(&m.input.listPrice).Validate(validAmount),
			huh.NewInput().Title("Commission Rate %").Placeholder("2.5").Value(&m.input.rate).Validate(validRate),
		),
	).WithWidth(50).WithShowHelp(false)
}

func (m *DealsModel) editForm(d *deal.Deal) *huh.Form {
	*m.input = dealInput{
		name:       d.Name,
		property:   d.Property,
		side:       d.Side,
		leadSource: d.LeadSource,
		expected:   AmountInput(&d.ExpectedCommission),
		listPrice:  AmountInput(d.ListPrice),
		notes:      d.Notes,
	}

	if d.CommissionRatePct != nil {
		m.input.rate = fmt.Sprintf("%g", *d.CommissionRatePct)
	}

	sources := []huh.Option[string]{huh.NewOption("(none)", "")}
	for _, s := range deal.LeadSources {
		sources = append(sources, huh.NewOption(s, s))
	}

	// Keep a free-text source from the API selectable.
	if d.LeadSource != "" && !slices.Contains(deal.LeadSources, d.LeadSource) {
		sources = append(sources, huh.NewOption(d.LeadSource, d.LeadSource))
	}

	details := huh.NewGroup(
		huh.NewInput().Title("Client").Value(&m.input.name).Validate(nonEmpty("client")),
		huh.NewInput().Title("Property").Value(&m.input.property).Validate(nonEmpty("property")),
		huh.NewSelect[string]().Title("Lead Source").Options(sources...).Value(&m.input.leadSource),
		huh.NewText().Title("Notes").Value(&m.input.notes),
	)

	commission := huh.NewGroup(
		huh.NewInput().Title("Expected Commission").Value(&m.input.expected).Validate(validAmount),
	)

	if d.IsSeller() {
		commission = huh.NewGroup(
			huh.NewInput().Title("List Price").Value(&m.input.listPrice).Validate(validAmount),
			huh.NewInput().Title("Commission Rate %").Value(&m.input.rate).Validate(validRate),
		)
	}

	probability := huh.NewGroup(
		huh.NewInput().
			Title("Close Probability %").
			Description(fmt.Sprintf("Currently %d%%. Blank keeps it.", d.CloseProbabilityBps/100)).
			Value(&m.input.probability).
			Validate(validRate),
	)

	return huh.NewForm(details, commission, probability).WithWidth(50).WithShowHelp(false)
}

func (m *DealsModel) stageForm(d *deal.Deal) *huh.Form {
	options := make([]huh.Option[deal.Stage], len(deal.Stages))
	for i, st := range deal.Stages {
		options[i] = huh.NewOption(st.Label(), st)
	}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[deal.Stage]().
				Title("Move "+d.Name+" to").
				Options(options...).
				Value(&m.input.stage),
		),
		huh.NewGroup(
			huh.NewInput().
				Title("Realized Commission").
				Description("Required to close.").
				Value(&m.input.realized).
				Validate(validAmount),
			huh.NewInput().
				Title("Closed Price").
				Description("Sellers only.").
				Value(&m.input.closedPrice).
				Validate(validAmount),
		).WithHideFunc(func() bool { return m.input.stage != deal.StageClosed }),
	).WithWidth(50).WithShowHelp(false)
}

func (m *DealsModel) deleteForm(d *deal.Deal) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title("Delete " + d.Name + "?").
				Description("Linked expenses and activities are deleted too.").
				Value(&m.input.confirm),
		),
	).WithWidth(50).WithShowHelp(false)
}

func nonEmpty(field string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("%s cannot be empty", field)
		}

		return nil
	}
}

func validRate(s string) error {
	pct, err := ParseNumber(s)
	if err != nil {
		return errors.New("invalid percentage")
	}

	if pct != nil && (*pct < 0 || *pct > 100) {
		return errors.New("must be between 0 and 100")
	}

	return nil
}

func (m DealsModel) View() string {
	stageLabel := "All"
	if m.stageFilterIdx > 0 {
		stageLabel = deal.Stages[m.stageFilterIdx-1].Label()
	}

	sideLabels := []string{"All", "Buyer", "Seller"}

	header := fmt.Sprintf(
		"Filter: [s] Stage: %s | [d] Side: %s",
		activeStyle(stageLabel),
		activeStyle(sideLabels[m.sideFilterIdx]),
	)

	tableView := lipgloss.NewStyle().
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		Render(m.table.View())

	content := lipgloss.JoinVertical(lipgloss.Left,
		lipgloss.NewStyle().PaddingBottom(1).Render(header),
		tableView,
	)

	if m.state != dealsStateBrowse && m.form != nil {
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

func activeStyle(s string) string {
	return lipgloss.NewStyle().Foreground(lipgloss.Color("205")).Render(s)
}

func (m DealsModel) filter() tracker.DealFilter {
	var f tracker.DealFilter

	if m.stageFilterIdx > 0 {
		f.Stage = deal.Stages[m.stageFilterIdx-1]
	}

	switch m.sideFilterIdx {
	case 1:
		f.Side = deal.SideBuyer
	case 2:
		f.Side = deal.SideSeller
	}

	return f
}

func (m *DealsModel) refreshTable() {
	now := time.Now()
	rows := make([]table.Row, 0, len(m.deals))

	for _, d := range m.deals {
		realized := ""
		if d.RealizedCommission != nil {
			realized = FormatAmount(*d.RealizedCommission)
		}

		rows = append(rows, table.Row{
			d.Name,
			d.Property,
			strings.ToLower(string(d.Side)),
			d.Stage.Label(),
			fmt.Sprintf("%d%%", d.CloseProbabilityBps/100),
			FormatAmount(d.ExpectedCommission),
			FormatAmount(deal.WeightedValue(d)),
			realized,
			listingAge(d, now),
		})
	}

	m.table.SetRows(rows)
}

// Messages

type loadDealsMsg struct {
	deals []*deal.Deal
}

type dealSavedMsg struct {
	err error
}

func (m DealsModel) loadCmd() tea.Cmd {
	f := m.filter()

	return func() tea.Msg {
		ctx, cancel := StoreCtx()
		defer cancel()

		return loadDealsMsg{deals: m.tracker.ListDeals(ctx, f)}
	}
}

func (m DealsModel) createCmd() tea.Cmd {
	in := *m.input

	return func() tea.Msg {
		p := tracker.DealParams{
			Name:       strings.TrimSpace(in.name),
			Property:   strings.TrimSpace(in.property),
			Side:       in.side,
			LeadSource: in.leadSource,
		}

		expected, _ := ParseAmount(in.expected)
		if expected != nil {
			p.ExpectedCommission = *expected
		}

		if in.side == deal.SideSeller {
			p.ListPrice, _ = ParseAmount(in.listPrice)
			p.CommissionRatePct, _ = ParseNumber(in.rate)
		}

		ctx, cancel := StoreCtx()
		defer cancel()

		_, err := m.tracker.CreateDeal(ctx, p)

		return dealSavedMsg{err: err}
	}
}

func (m DealsModel) editCmd(d *deal.Deal) tea.Cmd {
	if d == nil {
		return nil
	}

	in := *m.input
	p := tracker.ParamsFromDeal(d)
	id := d.ID

	return func() tea.Msg {
		p.Name = strings.TrimSpace(in.name)
		p.Property = strings.TrimSpace(in.property)
		p.LeadSource = in.leadSource
		p.Notes = in.notes

		if p.Side == deal.SideSeller {
			p.ListPrice, _ = ParseAmount(in.listPrice)
			p.CommissionRatePct, _ = ParseNumber(in.rate)
		} else if expected, _ := ParseAmount(in.expected); expected != nil {
			p.ExpectedCommission = *expected
		} else {
			p.ExpectedCommission = 0
		}

		if pct, _ := ParseNumber(in.probability); pct != nil {
			p.CloseProbabilityBps = new(int(math.Round(*pct * 100)))
		}

		ctx, cancel := StoreCtx()
		defer cancel()

		_, err := m.tracker.UpdateDeal(ctx, id, p)

		return dealSavedMsg{err: err}
	}
}

func (m DealsModel) stageCmd(d *deal.Deal) tea.Cmd {
	if d == nil {
		return nil
	}

	in := *m.input
	id := d.ID

	return func() tea.Msg {
		var p tracker.StageParams
		if in.stage == deal.StageClosed {
			p.RealizedCommission, _ = ParseAmount(in.realized)
			p.ClosedPrice, _ = ParseAmount(in.closedPrice)
		}

		ctx, cancel := StoreCtx()
		defer cancel()

		_, err := m.tracker.SetStage(ctx, id, in.stage, p)

		return dealSavedMsg{err: err}
	}
}

func (m DealsModel) deleteCmd(d *deal.Deal) tea.Cmd {
	if d == nil || !m.input.confirm {
		return func() tea.Msg { return dealSavedMsg{} }
	}

	id := d.ID

	return func() tea.Msg {
		ctx, cancel := StoreCtx()
		defer cancel()

		return dealSavedMsg{err: m.tracker.DeleteDeal(ctx, id)}
	}
}

// listingAge renders the days an open listing has been on the market.
func listingAge(d *deal.Deal, now time.Time) string {
	if d.DaysOnMarket != nil {
		return fmt.Sprintf("%dd", *d.DaysOnMarket)
	}

	if days, ok := deal.ComputeDaysOnMarket(d, now); ok {
		return fmt.Sprintf("%dd", days)
	}

	return ""
}
