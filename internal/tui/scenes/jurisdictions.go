package scenes

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/rgehrsitz/withholding/internal/domain"
	"github.com/rgehrsitz/withholding/internal/tui/components"
	"github.com/rgehrsitz/withholding/internal/tui/tuimsg"
	"github.com/rgehrsitz/withholding/internal/tui/tuistyles"
)

// JurisdictionsModel browses the jurisdictions of a rule table.
type JurisdictionsModel struct {
	rules         *domain.RuleTable
	codes         []string
	selectedIndex int
	width         int
	height        int
}

// NewJurisdictionsModel creates a new jurisdiction browser
func NewJurisdictionsModel() *JurisdictionsModel {
	return &JurisdictionsModel{}
}

// SetRules replaces the rule table being browsed.
func (m *JurisdictionsModel) SetRules(rules *domain.RuleTable) {
	m.rules = rules
	m.codes = nil
	if rules != nil {
		m.codes = rules.Codes()
	}
	if m.selectedIndex >= len(m.codes) {
		m.selectedIndex = 0
	}
}

// SetSize updates the scene dimensions
func (m *JurisdictionsModel) SetSize(width, height int) {
	m.width = width
	m.height = height
}

// Selected returns the highlighted jurisdiction code.
func (m *JurisdictionsModel) Selected() string {
	if m.selectedIndex >= 0 && m.selectedIndex < len(m.codes) {
		return m.codes[m.selectedIndex]
	}
	return ""
}

// Update handles messages for the browser
func (m *JurisdictionsModel) Update(msg tea.Msg) (*JurisdictionsModel, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok || len(m.codes) == 0 {
		return m, nil
	}

	switch {
	case key.Matches(keyMsg, key.NewBinding(key.WithKeys("up", "k"))):
		if m.selectedIndex > 0 {
			m.selectedIndex--
		}
	case key.Matches(keyMsg, key.NewBinding(key.WithKeys("down", "j"))):
		if m.selectedIndex < len(m.codes)-1 {
			m.selectedIndex++
		}
	case key.Matches(keyMsg, key.NewBinding(key.WithKeys("g"))):
		m.selectedIndex = 0
	case key.Matches(keyMsg, key.NewBinding(key.WithKeys("G"))):
		m.selectedIndex = len(m.codes) - 1
	case key.Matches(keyMsg, key.NewBinding(key.WithKeys("enter"))):
		code := m.Selected()
		return m, func() tea.Msg { return tuimsg.JurisdictionSelectedMsg{Code: code} }
	}
	return m, nil
}

// View renders the code list beside the selected jurisdiction's rules.
func (m *JurisdictionsModel) View() string {
	if m.rules == nil {
		return tuistyles.BorderStyle.Render(tuistyles.SubtitleStyle.Render("Loading rules..."))
	}
	if len(m.codes) == 0 {
		return tuistyles.BorderStyle.Render("The rule table has no jurisdictions")
	}

	var list strings.Builder
	for i, code := range m.codes {
		rule, _ := m.rules.Jurisdiction(code)
		line := fmt.Sprintf("%-4s %s", code, rule.Name)
		if i == m.selectedIndex {
			list.WriteString(tuistyles.SelectedItemStyle.Render("▸ " + line))
		} else {
			list.WriteString(tuistyles.UnselectedItemStyle.Render("  " + line))
		}
		list.WriteString("\n")
	}

	left := tuistyles.BorderStyle.Render(list.String())
	right := tuistyles.ActiveBorderStyle.Render(m.renderDetail(m.Selected()))
	return lipgloss.JoinHorizontal(lipgloss.Top, left, right)
}

func (m *JurisdictionsModel) renderDetail(code string) string {
	rule, _ := m.rules.Jurisdiction(code)

	var sb strings.Builder
	sb.WriteString(tuistyles.TitleStyle.Render(fmt.Sprintf("%s  %s", rule.Code, rule.Name)))
	sb.WriteString("\n\n")

	label := tuistyles.MetricLabelStyle.Render
	sb.WriteString(label("Standard deduction: ") + tuistyles.FormatCurrency(rule.StandardDeduction) + "\n")
	for _, status := range sortedStatuses(rule.StandardDeductionByFilingStatus) {
		sb.WriteString(label("  "+status+": ") + tuistyles.FormatCurrency(rule.StandardDeductionByFilingStatus[status]) + "\n")
	}
	sb.WriteString(label("Published rate:     ") + tuistyles.FormatRate(rule.FlatRate) + "\n")
	if rule.NexusThreshold.IsPositive() {
		sb.WriteString(label("Nexus threshold:    ") + tuistyles.FormatCurrency(rule.NexusThreshold) + "\n")
	}
	partners := "none"
	if len(rule.ReciprocityPartners) > 0 {
		partners = strings.Join(rule.ReciprocityPartners, ", ")
	}
	sb.WriteString(label("Reciprocity:        ") + partners + "\n\n")

	sb.WriteString(components.BracketTable(rule.Brackets, -1))
	sb.WriteString("\n")
	sb.WriteString(tuistyles.HelpDescStyle.Render("enter: calculate for " + rule.Code))
	return sb.String()
}
