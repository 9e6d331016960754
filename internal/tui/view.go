package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// View renders the current state of the application
func (m Model) View() string {
	if m.loading {
		return m.renderApp(BorderStyle.Render("⠋ " + m.loadingMessage))
	}
	if m.err != nil {
		return m.renderApp(ErrorStyle.Render(
			fmt.Sprintf("Error: %s\n\nPress any key to continue...", m.err.Error())))
	}

	var content string
	switch m.currentScene {
	case SceneHome:
		content = m.renderHome()
	case SceneJurisdictions:
		content = m.jurisdictionsModel.View()
	case SceneCalculator:
		content = m.calculatorModel.View()
	case SceneHelp:
		content = m.renderHelp()
	default:
		content = "Unknown scene"
	}
	return m.renderApp(content)
}

// renderApp wraps content with title bar and status bar
func (m Model) renderApp(content string) string {
	contentHeight := m.height - 4
	container := lipgloss.NewStyle().Height(max(contentHeight, 1)).Render(content)
	return lipgloss.JoinVertical(lipgloss.Left, m.renderTitleBar(), container, m.renderStatusBar())
}

func (m Model) renderTitleBar() string {
	title := TitleStyle.Render("Withholding Rules")
	return lipgloss.JoinVertical(lipgloss.Left, title, SubtitleStyle.Render(m.currentScene.String()))
}

func (m Model) renderStatusBar() string {
	shortcuts := []string{
		formatShortcut("h", "home"),
		formatShortcut("b", "browse"),
		formatShortcut("c", "calculate"),
		formatShortcut("?", "help"),
		formatShortcut("q", "quit"),
	}
	statusText := strings.Join(shortcuts, " • ")

	if m.rules != nil {
		version := SubtitleStyle.Render("rules " + m.rules.Metadata.Version)
		spacer := strings.Repeat(" ", max(0, m.width-lipgloss.Width(statusText)-lipgloss.Width(version)-4))
		statusText += spacer + version
	}
	return StatusBarStyle.Width(m.width).Render(statusText)
}

func formatShortcut(key, desc string) string {
	return StatusKeyStyle.Render(key) + " " + desc
}

func (m Model) renderHome() string {
	if m.rules == nil {
		return BorderStyle.Render("No rules loaded")
	}

	var sb strings.Builder
	sb.WriteString(TitleStyle.Render("Rule table " + m.rules.Metadata.Version))
	sb.WriteString("\n")
	if m.rules.Metadata.Description != "" {
		sb.WriteString(SubtitleStyle.Render(m.rules.Metadata.Description))
		sb.WriteString("\n")
	}
	sb.WriteString("\n")
	sb.WriteString(fmt.Sprintf("Source:          %s\n", m.rulesSource))
	if m.rules.Metadata.EffectiveDate != "" {
		sb.WriteString(fmt.Sprintf("Effective:       %s\n", m.rules.Metadata.EffectiveDate))
	}
	sb.WriteString(fmt.Sprintf("Jurisdictions:   %d\n", len(m.rules.Jurisdictions)))
	sb.WriteString(fmt.Sprintf("Federal brackets: %d\n", len(m.rules.Federal.Brackets)))
	sb.WriteString(fmt.Sprintf("Allowance unit:  %s\n", FormatCurrency(m.rules.AllowanceUnit())))

	var none []string
	for _, code := range m.rules.Codes() {
		if rule, _ := m.rules.Jurisdiction(code); !rule.LeviesIncomeTax() {
			none = append(none, code)
		}
	}
	if len(none) > 0 {
		sb.WriteString(fmt.Sprintf("No income tax:   %s\n", strings.Join(none, ", ")))
	}
	return BorderStyle.Render(sb.String())
}

func (m Model) renderHelp() string {
	rows := [][2]string{
		{"h", "Home"},
		{"b", "Browse jurisdictions"},
		{"c", "Quick calculator"},
		{"enter", "Calculate for the selected jurisdiction / run the calculator"},
		{"tab", "Next calculator field"},
		{"↑/↓ j/k", "Move selection"},
		{"esc", "Back to home"},
		{"q, ctrl+c", "Quit"},
	}
	var sb strings.Builder
	sb.WriteString(TitleStyle.Render("Keyboard shortcuts"))
	sb.WriteString("\n\n")
	for _, r := range rows {
		sb.WriteString(HelpKeyStyle.Render(fmt.Sprintf("%-12s", r[0])))
		sb.WriteString(HelpDescStyle.Render(r[1]))
		sb.WriteString("\n")
	}
	return BorderStyle.Render(sb.String())
}
