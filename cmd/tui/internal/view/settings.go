package view

import (
	"fmt"
	"strconv"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/closer/internal/settings"
)

type settingsInput struct {
	gciGoal          string
	closeRate        string
	buyerCommission  string
	sellerCommission string
	taxRate          string
	mpg              string
	gasPrice         string
}

// SettingsModel edits the KPI assumptions behind the dashboard and mileage costs.
type SettingsModel struct {
	CommonModel
	settings *settings.Service

	form   *huh.Form
	input  *settingsInput
	status string
	err    error
}

func NewSettingsModel(s *settings.Service) SettingsModel {
	return SettingsModel{
		settings: s,
		input:    &settingsInput{},
	}
}

func (m SettingsModel) Title() string { return "Settings" }

func (m SettingsModel) ShortHelp() string { return "Navigate form | Esc: back" }

func (m SettingsModel) Init() tea.Cmd {
	svc := m.settings

	return func() tea.Msg {
		ctx, cancel := StoreCtx()
		defer cancel()

		s, err := svc.Get(ctx)

		return settingsLoadedMsg{settings: s, err: err}
	}
}

func (m SettingsModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case settingsLoadedMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}

		m.form = m.newForm(msg.settings)

		return m, m.form.Init()

	case settingsSavedMsg:
		m.err = msg.err
		m.status = ""

		if msg.err == nil {
			m.status = "Saved."
		}

		return m, m.Init()

	case tea.KeyMsg:
		if msg.Type == tea.KeyEsc {
			return m, Back
		}
	}

	if m.form == nil {
		return m, nil
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State == huh.StateCompleted {
		return m, m.saveCmd()
	}

	return m, cmd
}

func (m *SettingsModel) newForm(s settings.Settings) *huh.Form {
	*m.input = settingsInput{
		gciGoal:          AmountInput(&s.AnnualGCIGoal),
		closeRate:        formatNumber(s.TargetCloseRate),
		buyerCommission:  AmountInput(&s.AvgBuyerCommission),
		sellerCommission: AmountInput(&s.AvgSellerCommission),
		taxRate:          formatNumber(s.EstimatedTaxRate),
		mpg:              formatNumber(s.DefaultMPG),
		gasPrice:         AmountInput(&s.DefaultGasPrice),
	}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Annual GCI Goal").Value(&m.input.gciGoal).Validate(validAmount),
			huh.NewInput().Title("Target Close Rate %").Value(&m.input.closeRate).Validate(validRate),
			huh.NewInput().Title("Avg Buyer Commission").Value(&m.input.buyerCommission).Validate(validAmount),
			huh.NewInput().Title("Avg Seller Commission").Value(&m.input.sellerCommission).Validate(validAmount),
			huh.NewInput().Title("Estimated Tax Rate %").Value(&m.input.taxRate).Validate(validRate),
		).Title("Goals"),
		huh.NewGroup(
			huh.NewInput().Title("Default MPG").Value(&m.input.mpg).Validate(validNumber),
			huh.NewInput().Title("Default Gas Price / Gallon").Value(&m.input.gasPrice).Validate(validAmount),
		).Title("Mileage"),
	).WithWidth(50).WithShowHelp(false)
}

func (m SettingsModel) View() string {
	var content string

	switch {
	case m.form != nil:
		content = m.form.View()
	case m.err == nil:
		content = "Loading settings..."
	}

	if m.err != nil {
		content = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Render(fmt.Sprintf("Error: %v", m.err)) +
			"\n\n" + content
	} else if m.status != "" {
		content = lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Render(m.status) + "\n\n" + content
	}

	return lipgloss.NewStyle().Padding(1).Render(content)
}

type settingsLoadedMsg struct {
	settings settings.Settings
	err      error
}

type settingsSavedMsg struct {
	err error
}

func (m SettingsModel) saveCmd() tea.Cmd {
	in := *m.input
	svc := m.settings

	return func() tea.Msg {
		s, err := in.settings()
		if err != nil {
			return settingsSavedMsg{err: err}
		}

		ctx, cancel := StoreCtx()
		defer cancel()

		return settingsSavedMsg{err: svc.Update(ctx, s)}
	}
}

// settings converts the form fields. Blank fields count as zero.
func (in settingsInput) settings() (settings.Settings, error) {
	var s settings.Settings

	amounts := []struct {
		raw string
		dst *int64
	}{
		{in.gciGoal, &s.AnnualGCIGoal},
		{in.buyerCommission, &s.AvgBuyerCommission},
		{in.sellerCommission, &s.AvgSellerCommission},
		{in.gasPrice, &s.DefaultGasPrice},
	}

	for _, a := range amounts {
		v, err := ParseAmount(a.raw)
		if err != nil {
			return settings.Settings{}, err
		}

		if v != nil {
			*a.dst = *v
		}
	}

	numbers := []struct {
		raw string
		dst *float64
	}{
		{in.closeRate, &s.TargetCloseRate},
		{in.taxRate, &s.EstimatedTaxRate},
		{in.mpg, &s.DefaultMPG},
	}

	for _, n := range numbers {
		v, err := ParseNumber(n.raw)
		if err != nil {
			return settings.Settings{}, err
		}

		if v != nil {
			*n.dst = *v
		}
	}

	return s, nil
}

func formatNumber(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
