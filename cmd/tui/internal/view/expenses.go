package view

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/closer/internal/expense"
	"github.com/MrJamesThe3rd/closer/internal/kpi"
	"github.com/MrJamesThe3rd/closer/internal/matching"
	"github.com/MrJamesThe3rd/closer/internal/tracker"
)

type expensesState int

const (
	expensesStateTimeframe expensesState = iota
	expensesStateList
	expensesStateEditing
	expensesStateCreating
)

// expenseItem wraps an expense to implement list.Item.
type expenseItem struct {
	e        *expense.Expense
	dealName string
}

func (i expenseItem) Title() string {
	category := lipgloss.NewStyle().Faint(true).Render(fmt.Sprintf("[%s]", i.e.Category.Label()))

	return fmt.Sprintf("%s  %12s  %s  %s", FormatDate(i.e.Date), FormatAmount(i.e.TotalCost), category, i.e.Notes)
}

func (i expenseItem) Description() string {
	parts := make([]string, 0, 2)

	if i.e.Kind == expense.KindMileage {
		parts = append(parts, fmt.Sprintf("%.1f mi at %.1f mpg", i.e.MilesDriven, i.e.MilesPerGallon))
	}

	if i.dealName != "" {
		parts = append(parts, "Deal: "+i.dealName)
	}

	return strings.Join(parts, "  |  ")
}

func (i expenseItem) FilterValue() string {
	return i.e.Notes + " " + i.dealName
}

// expenseInput holds the form bindings behind a pointer so they survive model copies.
type expenseInput struct {
	category expense.Category
	notes    string
	learn    bool
	remove   bool

	kind        expense.Kind
	date        string
	dealID      string
	quantity    string
	costPerUnit string
	miles       string
	mpg         string
	gasPrice    string
}

type ExpensesModel struct {
	CommonModel
	tracker         *tracker.Service
	matchingService *matching.Service

	state           expensesState
	timeframePicker TimeframePicker
	period          kpi.Period
	list            list.Model
	form            *huh.Form
	input           *expenseInput
	selected        *expense.Expense

	status string
}

func NewExpensesModel(t *tracker.Service, matchSvc *matching.Service) ExpensesModel {
	l := list.New([]list.Item{}, expenseItemDelegate{}, 0, 0)
	l.Title = "Expenses"
	l.SetShowStatusBar(true)
	l.SetFilteringEnabled(true)
	l.SetShowHelp(true)

	return ExpensesModel{
		tracker:         t,
		matchingService: matchSvc,
		timeframePicker: NewTimeframePicker(TimeframeThisMonth),
		list:            l,
		input:           &expenseInput{},
	}
}

func (m ExpensesModel) Title() string { return "Expenses" }

func (m ExpensesModel) ShortHelp() string {
	switch m.state {
	case expensesStateTimeframe:
		return "Esc: back | Enter: select"
	case expensesStateList:
		return "Esc: back | Enter: edit | n: new | /: filter"
	case expensesStateEditing, expensesStateCreating:
		return "Esc: cancel | Enter/Tab: navigate form"
	}

	return ""
}

func (m ExpensesModel) Init() tea.Cmd {
	return nil
}

func (m ExpensesModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case TimeframeSelectedMsg:
		m.period = msg.Period
		m.state = expensesStateList
		m.list.Title = "Expenses: " + msg.Period.Label

		return m, m.loadCmd()

	case loadExpensesMsg:
		m.list.SetItems(msg.items)

		m.status = ""
		if len(msg.items) == 0 {
			m.status = "No expenses in this period."
		}

		return m, nil

	case saveExpenseMsg:
		m.state = expensesStateList
		m.form = nil

		if msg.err != nil {
			m.status = fmt.Sprintf("Error saving: %v", msg.err)
			return m, nil
		}

		m.status = "Saved."

		return m, m.loadCmd()

	case tea.WindowSizeMsg:
		m.list.SetSize(msg.Width-4, msg.Height-8)
		return m, nil
	}

	switch m.state {
	case expensesStateTimeframe:
		return m.updateTimeframe(msg)
	case expensesStateList:
		return m.updateList(msg)
	case expensesStateEditing, expensesStateCreating:
		return m.updateEditing(msg)
	}

	return m, nil
}

func (m ExpensesModel) updateTimeframe(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		if keyMsg.Type == tea.KeyEsc && m.timeframePicker.IsSelecting() {
			return m, Back
		}
	}

	var cmd tea.Cmd
	m.timeframePicker, cmd = m.timeframePicker.Update(msg)

	return m, cmd
}

func (m ExpensesModel) updateList(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok && m.list.FilterState() != list.Filtering {
		switch keyMsg.Type {
		case tea.KeyEsc:
			return m, Back
		case tea.KeyEnter:
			return m.startEditing()
		}

		if keyMsg.String() == "n" {
			return m.startCreating()
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)

	return m, cmd
}

func (m ExpensesModel) startEditing() (tea.Model, tea.Cmd) {
	selected, ok := m.list.SelectedItem().(expenseItem)
	if !ok {
		return m, nil
	}

	m.selected = selected.e
	*m.input = expenseInput{category: selected.e.Category, notes: selected.e.Notes}

	options := make([]huh.Option[expense.Category], len(expense.Categories))
	for i, c := range expense.Categories {
		options[i] = huh.NewOption(c.Label(), c)
	}

	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[expense.Category]().
				Title("Category").
				Options(options...).
				Value(&m.input.category),

			huh.NewInput().
				Title("Notes").
				Value(&m.input.notes),

			huh.NewConfirm().
				Title("Use this category for future imports with these notes?").
				Affirmative("Yes").
				Negative("No").
				Value(&m.input.learn),

			huh.NewConfirm().
				Title("Delete this expense?").
				Affirmative("Delete").
				Negative("Keep").
				Value(&m.input.remove),
		),
	).WithWidth(50).WithShowHelp(false)

	m.state = expensesStateEditing

	return m, m.form.Init()
}

func (m ExpensesModel) startCreating() (tea.Model, tea.Cmd) {
	ctx, cancel := StoreCtx()
	deals := m.tracker.ListDeals(ctx, tracker.DealFilter{})
	cancel()

	m.selected = nil
	*m.input = expenseInput{
		kind:     expense.KindStandard,
		category: expense.CategoryOther,
		date:     FormatDate(time.Now()),
		quantity: "1",
	}

	categories := make([]huh.Option[expense.Category], 0, len(expense.Categories))
	for _, c := range expense.Categories {
		if c != expense.CategoryMileage {
			categories = append(categories, huh.NewOption(c.Label(), c))
		}
	}

	isMileage := func() bool { return m.input.kind == expense.KindMileage }

	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[expense.Kind]().
				Title("Kind").
				Options(
					huh.NewOption("Standard", expense.KindStandard),
					huh.NewOption("Mileage", expense.KindMileage),
				).
				Value(&m.input.kind),
			huh.NewInput().Title("Date").Placeholder("YYYY-MM-DD").Value(&m.input.date).Validate(validDate),
			huh.NewSelect[string]().Title("Deal").Options(dealOptions(deals)...).Value(&m.input.dealID),
			huh.NewInput().Title("Notes").Value(&m.input.notes),
		),
		huh.NewGroup(
			huh.NewSelect[expense.Category]().Title("Category").Options(categories...).Value(&m.input.category),
			huh.NewInput().Title("Quantity").Value(&m.input.quantity).Validate(validNumber),
			huh.NewInput().Title("Cost per Unit").Placeholder("0.00").Value(&m.input.costPerUnit).Validate(validAmount),
		).WithHideFunc(isMileage),
		huh.NewGroup(
			huh.NewInput().Title("Miles Driven").Value(&m.input.miles).Validate(validNumber),
			huh.NewInput().
				Title("Miles per Gallon").
				Description("Blank uses the default from settings.").
				Value(&m.input.mpg).
				Validate(validNumber),
			huh.NewInput().
				Title("Gas Price per Gallon").
				Description("Blank uses the default from settings.").
				Value(&m.input.gasPrice).
				Validate(validAmount),
		).WithHideFunc(func() bool { return !isMileage() }),
	).WithWidth(50).WithShowHelp(false)

	m.state = expensesStateCreating

	return m, m.form.Init()
}

func (m ExpensesModel) updateEditing(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.Type == tea.KeyEsc {
		m.state = expensesStateList
		m.form = nil

		return m, nil
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State != huh.StateCompleted {
		return m, cmd
	}

	if m.state == expensesStateCreating {
		return m, m.createCmd()
	}

	return m, m.saveCmd()
}

func (m ExpensesModel) View() string {
	switch m.state {
	case expensesStateTimeframe:
		return lipgloss.NewStyle().Padding(1).Render(m.timeframePicker.View())

	case expensesStateList:
		statusLine := ""
		if m.status != "" {
			statusLine = lipgloss.NewStyle().Faint(true).Render(m.status) + "\n"
		}

		return lipgloss.NewStyle().Padding(1).Render(statusLine + m.list.View())

	case expensesStateEditing, expensesStateCreating:
		if m.form == nil {
			return ""
		}

		return lipgloss.NewStyle().Padding(1).Render(m.infoView() + "\n" + m.form.View())
	}

	return ""
}

func (m ExpensesModel) infoView() string {
	if m.selected == nil {
		return ""
	}

	return lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("240")).
		Padding(0, 1).
		Render(fmt.Sprintf(
			"Date: %s  |  Kind: %s  |  Total: %s",
			FormatDate(m.selected.Date),
			strings.ToLower(string(m.selected.Kind)),
			FormatAmount(m.selected.TotalCost),
		))
}

// Messages

type loadExpensesMsg struct {
	items []list.Item
}

func (m ExpensesModel) loadCmd() tea.Cmd {
	p := m.period

	return func() tea.Msg {
		ctx, cancel := StoreCtx()
		defer cancel()

		names := make(map[string]string)
		for _, d := range m.tracker.ListDeals(ctx, tracker.DealFilter{}) {
			names[d.ID] = d.Name
		}

		expenses := m.tracker.ListExpenses(ctx, tracker.ExpenseFilter{Start: p.Start, End: p.End})

		items := make([]list.Item, len(expenses))
		for i, e := range expenses {
			item := expenseItem{e: e}
			if e.DealID != nil {
				item.dealName = names[*e.DealID]
			}

			items[i] = item
		}

		return loadExpensesMsg{items: items}
	}
}

type saveExpenseMsg struct {
	err error
}

func (m ExpensesModel) saveCmd() tea.Cmd {
	e := m.selected
	in := *m.input

	return func() tea.Msg {
		ctx, cancel := StoreCtx()
		defer cancel()

		if in.remove {
			return saveExpenseMsg{err: m.tracker.DeleteExpense(ctx, e.ID)}
		}

		if in.learn && strings.TrimSpace(in.notes) != "" {
			if err := m.matchingService.Learn(ctx, in.notes, in.category); err != nil {
				return saveExpenseMsg{err: err}
			}
		}

		p := tracker.ParamsFromExpense(e)
		p.Category = in.category
		p.Notes = in.notes

		_, err := m.tracker.UpdateExpense(ctx, e.ID, p)

		return saveExpenseMsg{err: err}
	}
}

func (m ExpensesModel) createCmd() tea.Cmd {
	in := *m.input

	return func() tea.Msg {
		date, err := ParseDate(in.date, time.Now())
		if err != nil {
			return saveExpenseMsg{err: err}
		}

		p := tracker.ExpenseParams{
			Kind:     in.kind,
			Category: in.category,
			Date:     date,
			Notes:    strings.TrimSpace(in.notes),
		}

		if in.dealID != "" {
			p.DealID = &in.dealID
		}

		if in.kind == expense.KindMileage {
			if miles, _ := ParseNumber(in.miles); miles != nil {
				p.MilesDriven = *miles
			}

			p.MilesPerGallon, _ = ParseNumber(in.mpg)
			p.GasPricePerGallon, _ = ParseAmount(in.gasPrice)
		} else {
			if qty, _ := ParseNumber(in.quantity); qty != nil {
				p.Quantity = *qty
			}

			if cost, _ := ParseAmount(in.costPerUnit); cost != nil {
				p.CostPerUnit = *cost
			}
		}

		ctx, cancel := StoreCtx()
		defer cancel()

		_, err = m.tracker.CreateExpense(ctx, p)

		return saveExpenseMsg{err: err}
	}
}

// expenseItemDelegate renders items in the list.
type expenseItemDelegate struct{}

func (d expenseItemDelegate) Height() int                             { return 2 }
func (d expenseItemDelegate) Spacing() int                            { return 0 }
func (d expenseItemDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd { return nil }

func (d expenseItemDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	i, ok := item.(expenseItem)
	if !ok {
		return
	}

	title := i.Title()
	if index == m.Index() {
		title = lipgloss.NewStyle().Foreground(lipgloss.Color("205")).Bold(true).Render("> " + title)
	}

	fmt.Fprintf(w, "  %s\n", title)

	desc := i.Description()
	if desc == "" {
		fmt.Fprintln(w)
		return
	}

	fmt.Fprintf(w, "    %s\n", lipgloss.NewStyle().Faint(true).Render(desc))
}
