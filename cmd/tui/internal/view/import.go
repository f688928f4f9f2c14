package view

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"time"

	"github.com/charmbracelet/bubbles/filepicker"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/closer/internal/expense"
	"github.com/MrJamesThe3rd/closer/internal/importer"
	"github.com/MrJamesThe3rd/closer/internal/matching"
	"github.com/MrJamesThe3rd/closer/internal/tracker"
)

const importTimeout = 2 * time.Minute

type importState int

const (
	importStateFilePick importState = iota
	importStateParsing
	importStateReview
	importStateResult
)

type ImportModel struct {
	CommonModel
	tracker         *tracker.Service
	importService   *importer.Service
	matchingService *matching.Service

	state      importState
	filePicker filepicker.Model

	drafts    []importer.Draft
	draftList list.Model
	// skipped marks the drafts left out of the import.
	skipped map[int]bool

	status string
	err    error
}

func NewImportModel(t *tracker.Service, impSvc *importer.Service, matchSvc *matching.Service) ImportModel {
	fp := filepicker.New()
	fp.CurrentDirectory, _ = os.Getwd()
	fp.AllowedTypes = []string{".csv", ".txt"}
	fp.ShowHidden = false
	fp.DirAllowed = false
	fp.FileAllowed = true
	fp.SetHeight(15)

	return ImportModel{
		tracker:         t,
		importService:   impSvc,
		matchingService: matchSvc,
		filePicker:      fp,
		skipped:         make(map[int]bool),
	}
}

func (m ImportModel) Title() string { return "Import Statement" }

func (m ImportModel) ShortHelp() string {
	if m.state == importStateReview {
		return "Space: include/skip | c: category | l: learn rule | Enter: import | Esc: cancel"
	}

	return "Esc: back | Enter: select"
}

func (m ImportModel) Init() tea.Cmd {
	return m.filePicker.Init()
}

func (m ImportModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.Type == tea.KeyEsc {
			return m.handleEsc()
		}

		if m.state == importStateReview {
			return m.updateReview(msg)
		}

	case previewResultMsg:
		if msg.err != nil {
			m.state = importStateResult
			m.err = msg.err
			m.status = fmt.Sprintf("Error: %v", msg.err)

			return m, nil
		}

		if len(msg.drafts) == 0 {
			m.state = importStateResult
			m.status = "The statement has no debit lines to import."

			return m, nil
		}

		m.drafts = msg.drafts
		m.skipped = make(map[int]bool)
		m.state = importStateReview
		m.draftList = m.newDraftList()

		return m, nil

	case learnResultMsg:
		m.status = ""
		if msg.err != nil {
			m.status = fmt.Sprintf("Error: %v", msg.err)
		} else {
			m.status = fmt.Sprintf("Learned %q as %s", msg.pattern, msg.category.Label())
		}

		return m, nil

	case commitResultMsg:
		m.state = importStateResult
		m.err = msg.err

		switch {
		case msg.err != nil:
			m.status = fmt.Sprintf("Error after %d expenses: %v", msg.created, msg.err)
		default:
			m.status = fmt.Sprintf("Imported %d expenses, skipped %d.", msg.created, msg.skipped)
		}

		return m, nil
	}

	if m.state != importStateFilePick {
		return m, nil
	}

	var cmd tea.Cmd
	m.filePicker, cmd = m.filePicker.Update(msg)

	if didSelect, path := m.filePicker.DidSelectFile(msg); didSelect {
		m.state = importStateParsing
		m.status = fmt.Sprintf("Reading %s...", path)

		return m, m.previewCmd(path)
	}

	return m, cmd
}

func (m ImportModel) handleEsc() (tea.Model, tea.Cmd) {
	switch m.state {
	case importStateReview, importStateResult:
		m.state = importStateFilePick
		m.drafts = nil
		m.err = nil
		m.status = ""

		return m, m.filePicker.Init()
	}

	return m, Back
}

func (m ImportModel) updateReview(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	idx := m.draftList.Index()

	switch msg.String() {
	case " ":
		m.skipped[idx] = !m.skipped[idx]
		return m, nil
	case "c":
		d := &m.drafts[idx]
		next := (slices.Index(expense.Categories, d.Category) + 1) % len(expense.Categories)
		d.Category = expense.Categories[next]
		m.draftList.SetItem(idx, draftItem{draft: *d, index: idx})

		return m, nil
	case "l":
		d := m.drafts[idx]
		return m, m.learnCmd(d.Description, d.Category)
	case "enter":
		return m, m.commitCmd()
	}

	var cmd tea.Cmd
	m.draftList, cmd = m.draftList.Update(msg)

	return m, cmd
}

func (m ImportModel) newDraftList() list.Model {
	items := make([]list.Item, len(m.drafts))
	for i, d := range m.drafts {
		items[i] = draftItem{draft: d, index: i}
	}

	l := list.New(items, draftDelegate{skipped: m.skipped}, 90, 20)
	l.Title = "Statement Lines"
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(false)
	l.SetShowHelp(false)

	return l
}

func (m ImportModel) View() string {
	switch m.state {
	case importStateFilePick:
		return lipgloss.NewStyle().Padding(1).Render(
			"Select a bank statement (CSV):\n\n" + m.filePicker.View(),
		)
	case importStateParsing:
		return lipgloss.NewStyle().Padding(2).Render(m.status)
	case importStateReview:
		content := m.draftList.View()
		if m.status != "" {
			content = lipgloss.NewStyle().Faint(true).Render(m.status) + "\n" + content
		}

		return lipgloss.NewStyle().Padding(1).Render(content)
	case importStateResult:
		return m.viewResult()
	}

	return ""
}

func (m ImportModel) viewResult() string {
	color := lipgloss.Color("46")
	if m.err != nil {
		color = lipgloss.Color("196")
	}

	return lipgloss.NewStyle().Padding(2).Render(
		lipgloss.NewStyle().Foreground(color).Render(m.status) + "\n\n(Esc to go back)",
	)
}

// Messages

type previewResultMsg struct {
	drafts []importer.Draft
	err    error
}

type learnResultMsg struct {
	pattern  string
	category expense.Category
	err      error
}

type commitResultMsg struct {
	created int
	skipped int
	err     error
}

func (m ImportModel) previewCmd(path string) tea.Cmd {
	return func() tea.Msg {
		f, err := os.Open(path)
		if err != nil {
			return previewResultMsg{err: err}
		}
		defer f.Close()

		ctx, cancel := context.WithTimeout(context.Background(), importTimeout)
		defer cancel()

		drafts, err := m.importService.Preview(ctx, f)

		return previewResultMsg{drafts: drafts, err: err}
	}
}

func (m ImportModel) learnCmd(description string, category expense.Category) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := StoreCtx()
		defer cancel()

		err := m.matchingService.Learn(ctx, description, category)

		return learnResultMsg{pattern: description, category: category, err: err}
	}
}

func (m ImportModel) commitCmd() tea.Cmd {
	drafts := slices.Clone(m.drafts)
	skipped := make(map[int]bool, len(m.skipped))

	for k, v := range m.skipped {
		skipped[k] = v
	}

	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), importTimeout)
		defer cancel()

		var res commitResultMsg

		for i, d := range drafts {
			if skipped[i] {
				res.skipped++
				continue
			}

			_, err := m.tracker.CreateExpense(ctx, d.Params(nil))
			if errors.Is(err, tracker.ErrPersistence) {
				res.err = err
				return res
			}

			if err != nil {
				res.skipped++
				continue
			}

			res.created++
		}

		return res
	}
}

// Draft list item

type draftItem struct {
	draft importer.Draft
	index int
}

func (i draftItem) Title() string       { return i.draft.Description }
func (i draftItem) Description() string { return "" }
func (i draftItem) FilterValue() string { return i.draft.Description }

// Draft list delegate

type draftDelegate struct {
	skipped map[int]bool
}

func (d draftDelegate) Height() int                             { return 2 }
func (d draftDelegate) Spacing() int                            { return 0 }
func (d draftDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd { return nil }

func (d draftDelegate) Render(w io.Writer, m list.Model, index int, listItem list.Item) {
	item, ok := listItem.(draftItem)
	if !ok {
		return
	}

	checkbox := "[x]"
	if d.skipped[item.index] {
		checkbox = "[ ]"
	}

	cursor := "  "
	if index == m.Index() {
		cursor = "> "
	}

	category := item.draft.Category.Label()
	if !item.draft.Matched {
		category += " (unmatched)"
	}

	line1 := fmt.Sprintf("%s%s %s  %12s  %s",
		cursor, checkbox,
		FormatDate(item.draft.Date),
		FormatAmount(item.draft.Amount),
		item.draft.Description,
	)

	line2 := "      Category: " + activeStyle(category)

	fmt.Fprintf(w, "%s\n%s\n", line1, line2)
}
