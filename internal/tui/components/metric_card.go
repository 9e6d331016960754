package components

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/rgehrsitz/withholding/internal/tui/tuistyles"
	"github.com/shopspring/decimal"
)

// MetricCard displays one amount with a label and an optional share of
// gross pay.
type MetricCard struct {
	Label       string
	Amount      decimal.Decimal
	Share       *decimal.Decimal
	Description string
	Width       int
}

// NewMetricCard creates a new metric card
func NewMetricCard(label string, amount decimal.Decimal) *MetricCard {
	return &MetricCard{
		Label:  label,
		Amount: amount,
		Width:  24,
	}
}

// WithShareOf records the amount as a fraction of total.
func (m *MetricCard) WithShareOf(total decimal.Decimal) *MetricCard {
	if total.IsPositive() {
		share := m.Amount.Div(total)
		m.Share = &share
	}
	return m
}

// WithDescription adds a description/subtitle
func (m *MetricCard) WithDescription(desc string) *MetricCard {
	m.Description = desc
	return m
}

// WithWidth sets the card width
func (m *MetricCard) WithWidth(width int) *MetricCard {
	m.Width = width
	return m
}

// Render returns the styled metric card
func (m *MetricCard) Render() string {
	label := tuistyles.MetricLabelStyle.Render(m.Label)
	value := tuistyles.MetricValueStyle.Render(tuistyles.FormatCurrency(m.Amount))

	var share string
	if m.Share != nil {
		share = "\n" + tuistyles.SubtitleStyle.Render(fmt.Sprintf("%s of gross", tuistyles.FormatRate(*m.Share)))
	}
	var desc string
	if m.Description != "" {
		desc = "\n" + tuistyles.SubtitleStyle.Render(m.Description)
	}

	cardStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(tuistyles.ColorBorder).
		Padding(0, 1).
		Width(m.Width)

	return cardStyle.Render(label + "\n" + value + share + desc)
}

// RenderCompact returns a compact inline version without border
func (m *MetricCard) RenderCompact() string {
	return tuistyles.MetricLabelStyle.Render(m.Label+":") + " " +
		tuistyles.MetricValueStyle.Render(tuistyles.FormatCurrency(m.Amount))
}

// MetricGrid renders multiple metric cards in a grid layout
func MetricGrid(cards []*MetricCard, columns int) string {
	if len(cards) == 0 {
		return ""
	}
	if columns < 1 {
		columns = 1
	}

	rows := []string{}
	currentRow := []string{}
	for i, card := range cards {
		currentRow = append(currentRow, card.Render())
		if (i+1)%columns == 0 || i == len(cards)-1 {
			rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, currentRow...))
			currentRow = []string{}
		}
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}
