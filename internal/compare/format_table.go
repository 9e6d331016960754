package compare

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// TableFormatter formats comparison results as a console table
type TableFormatter struct{}

// Format generates a formatted table comparing rule sets
func (tf *TableFormatter) Format(compSet *ComparisonSet) string {
	var sb strings.Builder

	sb.WriteString("WITHHOLDING RULE COMPARISON\n")
	sb.WriteString(strings.Repeat("=", 80) + "\n")
	sb.WriteString(fmt.Sprintf("Employee: %s\n", compSet.EmployeeID))
	sb.WriteString(fmt.Sprintf("Base Rules: %s\n", compSet.BaseName))
	sb.WriteString("\n")

	nameWidth := 24
	numWidth := 13

	sb.WriteString(fmt.Sprintf("%-*s %*s %*s %*s %*s\n",
		nameWidth, "Rules",
		numWidth, "State Tax",
		numWidth, "Federal Tax",
		numWidth, "FICA",
		numWidth, "Net Pay"))
	sb.WriteString(strings.Repeat("-", 80) + "\n")

	if compSet.BaseResult != nil {
		sb.WriteString(tf.formatRow(compSet.BaseResult, nameWidth, numWidth, true))
	}

	if len(compSet.AlternativeResults) > 0 {
		sb.WriteString(strings.Repeat("-", 80) + "\n")
		for i := range compSet.AlternativeResults {
			sb.WriteString(tf.formatRow(&compSet.AlternativeResults[i], nameWidth, numWidth, false))
		}
	}
	sb.WriteString(strings.Repeat("=", 80) + "\n")

	if len(compSet.AlternativeResults) > 0 {
		sb.WriteString("\nCOMPARISON TO BASE\n")
		sb.WriteString(strings.Repeat("-", 80) + "\n")
		for _, alt := range compSet.AlternativeResults {
			sb.WriteString(fmt.Sprintf("\n%s:\n", alt.Name))
			sb.WriteString(fmt.Sprintf("  Net Pay:      %s (%s%%)\n",
				tf.formatDelta(alt.NetPayDiffFromBase), alt.NetPayPctFromBase.StringFixed(2)))
			if !alt.StateTaxDiffFromBase.IsZero() {
				sb.WriteString(fmt.Sprintf("  State Tax:    %s\n", tf.formatDelta(alt.StateTaxDiffFromBase)))
			}
			if !alt.FederalTaxDiffFromBase.IsZero() {
				sb.WriteString(fmt.Sprintf("  Federal Tax:  %s\n", tf.formatDelta(alt.FederalTaxDiffFromBase)))
			}
			if !alt.FICADiffFromBase.IsZero() {
				sb.WriteString(fmt.Sprintf("  FICA:         %s\n", tf.formatDelta(alt.FICADiffFromBase)))
			}
			for _, d := range alt.StateDeltas {
				if d.Diff.IsZero() {
					continue
				}
				sb.WriteString(fmt.Sprintf("    %-4s %s -> %s (%s)\n",
					d.JurisdictionCode, "$"+d.Base.StringFixed(2), "$"+d.Alternative.StringFixed(2), tf.formatDelta(d.Diff)))
			}
		}
		sb.WriteString("\n")
	}

	if len(compSet.Recommendations) > 0 {
		sb.WriteString("\nNOTES\n")
		sb.WriteString(strings.Repeat("-", 80) + "\n")
		for _, rec := range compSet.Recommendations {
			sb.WriteString(fmt.Sprintf("• %s\n", rec))
		}
		sb.WriteString("\n")
	}

	return sb.String()
}

// formatRow formats a single rule set row
func (tf *TableFormatter) formatRow(result *ComparisonResult, nameWidth, numWidth int, isBase bool) string {
	name := result.Name
	if isBase {
		name += " (base)"
	}
	fica := result.SocialSecurityTax.Add(result.MedicareTax)
	return fmt.Sprintf("%-*s %*s %*s %*s %*s\n",
		nameWidth, tf.truncate(name, nameWidth),
		numWidth, "$"+result.TotalStateTax.StringFixed(2),
		numWidth, "$"+result.FederalTax.StringFixed(2),
		numWidth, "$"+fica.StringFixed(2),
		numWidth, "$"+result.NetPay.StringFixed(2))
}

// formatDelta renders a signed dollar change.
func (tf *TableFormatter) formatDelta(d decimal.Decimal) string {
	switch {
	case d.IsPositive():
		return "+$" + d.StringFixed(2)
	case d.IsNegative():
		return "-$" + d.Abs().StringFixed(2)
	}
	return "$0.00"
}

// truncate truncates a string to maxLen
func (tf *TableFormatter) truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}

// FormatCompact creates a single-line net pay summary
func (tf *TableFormatter) FormatCompact(compSet *ComparisonSet) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Base: %s | ", compSet.BaseName))
	for i, alt := range compSet.AlternativeResults {
		if i > 0 {
			sb.WriteString(" | ")
		}
		sb.WriteString(fmt.Sprintf("%s: %s", alt.Name, tf.formatDelta(alt.NetPayDiffFromBase)))
	}
	return sb.String()
}
