package components

import (
	"fmt"
	"strings"

	"github.com/rgehrsitz/withholding/internal/domain"
	"github.com/rgehrsitz/withholding/internal/tui/tuistyles"
	"github.com/shopspring/decimal"
)

// BracketTable renders a bracket schedule as fixed-width text. Highlight,
// when non-negative, marks one row.
func BracketTable(brackets []domain.TaxBracket, highlight int) string {
	if len(brackets) == 0 {
		return tuistyles.SubtitleStyle.Render("No income tax")
	}

	var sb strings.Builder
	header := fmt.Sprintf("%14s %14s %8s %14s", "From", "To", "Rate", "Base")
	sb.WriteString(tuistyles.TableHeaderStyle.Render(header))
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("─", len(header)))
	sb.WriteString("\n")

	for i, b := range brackets {
		to := "and up"
		if !b.OpenEnded() {
			to = tuistyles.FormatCurrency(b.Max)
		}
		row := fmt.Sprintf("%14s %14s %8s %14s",
			tuistyles.FormatCurrency(b.Min),
			to,
			tuistyles.FormatRate(b.Rate),
			tuistyles.FormatCurrency(b.CumulativeBase))
		if i == highlight {
			sb.WriteString(tuistyles.TableHighlightStyle.Render(row))
		} else {
			sb.WriteString(tuistyles.TableCellStyle.Render(row))
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

// BracketIndex returns the index of the bracket containing income, or -1.
func BracketIndex(brackets []domain.TaxBracket, income decimal.Decimal) int {
	for i, b := range brackets {
		if b.Contains(income) {
			return i
		}
	}
	return -1
}
