package scenes

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/shopspring/decimal"

	"github.com/rgehrsitz/withholding/internal/domain"
	"github.com/rgehrsitz/withholding/internal/tui/components"
	"github.com/rgehrsitz/withholding/internal/tui/tuimsg"
	"github.com/rgehrsitz/withholding/internal/tui/tuistyles"
)

// Calculator input fields, in focus order.
const (
	FieldWorkState = iota
	FieldResidenceState
	FieldGrossPay
	FieldFilingStatus
	FieldAllowances
	fieldCount
)

var fieldLabels = [fieldCount]string{
	"Work state",
	"Residence state",
	"Gross pay",
	"Filing status",
	"Allowances",
}

// CalculatorModel is a single-location quick calculator.
type CalculatorModel struct {
	inputs []textinput.Model
	focus  int
	result *domain.TaxCalculationResult
	err    error
	now    func() time.Time
	width  int
	height int
}

// NewCalculatorModel creates the calculator with sensible defaults.
func NewCalculatorModel() *CalculatorModel {
	inputs := make([]textinput.Model, fieldCount)
	for i := range inputs {
		ti := textinput.New()
		ti.Prompt = ""
		ti.Width = 24
		ti.Cursor.SetMode(cursor.CursorStatic)
		inputs[i] = ti
	}
	inputs[FieldWorkState].Placeholder = "e.g. PA"
	inputs[FieldWorkState].CharLimit = 4
	inputs[FieldResidenceState].Placeholder = "e.g. NJ"
	inputs[FieldResidenceState].CharLimit = 4
	inputs[FieldGrossPay].Placeholder = "e.g. 4000"
	inputs[FieldGrossPay].CharLimit = 12
	inputs[FieldFilingStatus].SetValue(domain.DefaultFilingStatus)
	inputs[FieldAllowances].SetValue("0")
	inputs[FieldAllowances].CharLimit = 2
	inputs[FieldWorkState].Focus()

	return &CalculatorModel{inputs: inputs, now: time.Now}
}

// SetSize updates the model dimensions
func (m *CalculatorModel) SetSize(width, height int) {
	m.width = width
	m.height = height
}

// SetWorkState pre-fills the work (and, if empty, residence) state.
func (m *CalculatorModel) SetWorkState(code string) {
	m.inputs[FieldWorkState].SetValue(code)
	if m.inputs[FieldResidenceState].Value() == "" {
		m.inputs[FieldResidenceState].SetValue(code)
	}
	m.result = nil
	m.err = nil
}

// SetValue sets one field's text.
func (m *CalculatorModel) SetValue(field int, value string) {
	m.inputs[field].SetValue(value)
}

// SetResult shows a completed calculation or its error.
func (m *CalculatorModel) SetResult(result *domain.TaxCalculationResult, err error) {
	m.result = result
	m.err = err
}

// Focused returns the index of the focused field.
func (m *CalculatorModel) Focused() int {
	return m.focus
}

// BuildRequest turns the form into a request for one pay period ending
// today, with all pay in the work state.
func (m *CalculatorModel) BuildRequest() (domain.TaxCalculationRequest, error) {
	work := strings.ToUpper(strings.TrimSpace(m.inputs[FieldWorkState].Value()))
	residence := strings.ToUpper(strings.TrimSpace(m.inputs[FieldResidenceState].Value()))
	if work == "" || residence == "" {
		return domain.TaxCalculationRequest{}, errors.New("work and residence states are required")
	}

	gross, err := decimal.NewFromString(strings.TrimSpace(m.inputs[FieldGrossPay].Value()))
	if err != nil {
		return domain.TaxCalculationRequest{}, fmt.Errorf("gross pay: %w", err)
	}

	allowances := 0
	if v := strings.TrimSpace(m.inputs[FieldAllowances].Value()); v != "" {
		allowances, err = strconv.Atoi(v)
		if err != nil {
			return domain.TaxCalculationRequest{}, fmt.Errorf("allowances: %w", err)
		}
	}

	today := m.now()
	end := domain.NewDate(today.Year(), today.Month(), today.Day())
	start := domain.NewDate(today.Year(), today.Month(), today.Day()-13)

	return domain.TaxCalculationRequest{
		EmployeeID:     "quick-calc",
		GrossPay:       gross,
		PayPeriodStart: start,
		PayPeriodEnd:   end,
		WorkLocations: []domain.WorkLocationAllocation{
			{JurisdictionCode: work, Percentage: decimal.NewFromInt(100)},
		},
		ResidenceState: residence,
		FilingStatus:   strings.TrimSpace(m.inputs[FieldFilingStatus].Value()),
		Allowances:     allowances,
	}, nil
}

// Update handles focus movement, editing and submission.
func (m *CalculatorModel) Update(msg tea.Msg) (*CalculatorModel, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(keyMsg, key.NewBinding(key.WithKeys("tab", "down"))):
			m.setFocus((m.focus + 1) % fieldCount)
			return m, nil
		case key.Matches(keyMsg, key.NewBinding(key.WithKeys("shift+tab", "up"))):
			m.setFocus((m.focus + fieldCount - 1) % fieldCount)
			return m, nil
		case key.Matches(keyMsg, key.NewBinding(key.WithKeys("enter"))):
			req, err := m.BuildRequest()
			if err != nil {
				m.err = err
				return m, nil
			}
			m.err = nil
			return m, func() tea.Msg { return tuimsg.CalculationRequestedMsg{Request: req} }
		}
	}

	var cmd tea.Cmd
	m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
	return m, cmd
}

func (m *CalculatorModel) setFocus(i int) {
	m.inputs[m.focus].Blur()
	m.focus = i
	m.inputs[m.focus].Focus()
}

// View renders the form and, when present, the last result.
func (m *CalculatorModel) View() string {
	var sb strings.Builder
	sb.WriteString(tuistyles.TitleStyle.Render("Quick Calculator"))
	sb.WriteString("\n\n")
	for i, input := range m.inputs {
		label := fmt.Sprintf("%-16s", fieldLabels[i])
		if i == m.focus {
			sb.WriteString(tuistyles.SelectedItemStyle.Render("▸ " + label))
		} else {
			sb.WriteString(tuistyles.MetricLabelStyle.Render("  " + label))
		}
		sb.WriteString(" " + input.View() + "\n")
	}
	sb.WriteString("\n")
	sb.WriteString(tuistyles.HelpDescStyle.Render("tab/shift+tab: move • enter: calculate • esc: back"))

	if m.err != nil {
		sb.WriteString("\n\n" + tuistyles.ErrorStyle.Render("Error: "+m.err.Error()))
	}
	if m.result != nil {
		sb.WriteString("\n\n" + m.renderResult())
	}
	return tuistyles.BorderStyle.Render(sb.String())
}

func (m *CalculatorModel) renderResult() string {
	r := m.result
	gross := r.GrossPay
	cards := []*components.MetricCard{
		components.NewMetricCard("State", r.TotalStateTaxWithheld).WithShareOf(gross),
		components.NewMetricCard("Federal", r.FederalTax).WithShareOf(gross),
		components.NewMetricCard("Social Security", r.SocialSecurityTax).WithShareOf(gross),
		components.NewMetricCard("Medicare", r.MedicareTax).WithShareOf(gross),
		components.NewMetricCard("Net Pay", r.NetPay).WithShareOf(gross),
	}
	for _, b := range r.StateBreakdowns {
		switch {
		case b.ReciprocityApplied:
			cards[0].WithDescription("reciprocity applied")
		case b.ConfigurationGap:
			cards[0].WithDescription("no rule for " + b.JurisdictionCode)
		}
	}
	return components.MetricGrid(cards, 3)
}

func sortedStatuses(m map[string]decimal.Decimal) []string {
	statuses := make([]string, 0, len(m))
	for s := range m {
		statuses = append(statuses, s)
	}
	sort.Strings(statuses)
	return statuses
}
