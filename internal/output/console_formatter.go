package output

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/rgehrsitz/withholding/internal/domain"
)

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#00D4FF"))
	headerStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FAFAFA"))
	mutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#6C6C6C"))
	netPayStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#04B575"))
	warningStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFA500"))
)

// ConsoleFormatter renders a human-readable pay stub style summary.
type ConsoleFormatter struct {
	// ShowAssumptions appends the list of modelling assumptions.
	ShowAssumptions bool
}

func (c ConsoleFormatter) Name() string { return "console" }

func (c ConsoleFormatter) Format(results []domain.TaxCalculationResult) ([]byte, error) {
	var buf bytes.Buffer
	for i, r := range results {
		if i > 0 {
			buf.WriteString("\n")
		}
		writeResult(&buf, r)
	}
	if c.ShowAssumptions && len(results) > 0 {
		buf.WriteString("\n")
		fmt.Fprintln(&buf, headerStyle.Render("ASSUMPTIONS"))
		for _, a := range DefaultAssumptions {
			fmt.Fprintf(&buf, "  • %s\n", a)
		}
	}
	return buf.Bytes(), nil
}

func writeResult(buf *bytes.Buffer, r domain.TaxCalculationResult) {
	fmt.Fprintln(buf, titleStyle.Render("WITHHOLDING SUMMARY: "+r.EmployeeID))
	fmt.Fprintln(buf, strings.Repeat("=", 60))
	meta := "Calculated " + r.CalculatedAt.UTC().Format("2006-01-02 15:04:05 MST")
	if r.RuleVersion != "" {
		meta += " using rules " + r.RuleVersion
	}
	fmt.Fprintln(buf, mutedStyle.Render(meta))
	fmt.Fprintln(buf)

	fmt.Fprintf(buf, "%-26s %14s\n", "Gross pay", FormatCurrency(r.GrossPay))
	fmt.Fprintln(buf)

	fmt.Fprintln(buf, headerStyle.Render("STATE WITHHOLDING"))
	fmt.Fprintf(buf, "  %-6s %14s %14s %12s  %s\n", "State", "Allocated", "Taxable", "Withheld", "Notes")
	for _, b := range r.StateBreakdowns {
		fmt.Fprintf(buf, "  %-6s %14s %14s %12s  %s\n",
			b.JurisdictionCode,
			FormatCurrency(b.AllocatedIncome),
			FormatCurrency(b.TaxableIncome),
			FormatCurrency(b.TaxWithheld),
			breakdownNotes(b))
	}
	fmt.Fprintf(buf, "  %-6s %43s\n", "Total", FormatCurrency(r.TotalStateTaxWithheld))
	fmt.Fprintln(buf)

	fmt.Fprintln(buf, headerStyle.Render("PAYROLL TAXES"))
	fmt.Fprintf(buf, "  %-24s %14s\n", "Federal income tax", FormatCurrency(r.FederalTax))
	fmt.Fprintf(buf, "  %-24s %14s\n", "Social Security", FormatCurrency(r.SocialSecurityTax))
	fmt.Fprintf(buf, "  %-24s %14s\n", "Medicare", FormatCurrency(r.MedicareTax))
	if r.AdditionalWithholding.IsPositive() {
		fmt.Fprintf(buf, "  %-24s %14s\n", "Additional withholding", FormatCurrency(r.AdditionalWithholding))
	}
	fmt.Fprintln(buf, strings.Repeat("-", 60))
	fmt.Fprintf(buf, "%-26s %14s\n", "Total deductions", FormatCurrency(r.TotalDeductions))
	fmt.Fprintln(buf, netPayStyle.Render(fmt.Sprintf("%-26s %14s", "Net pay", FormatCurrency(r.NetPay))))
	if r.NetPay.IsNegative() {
		fmt.Fprintln(buf, warningStyle.Render("Warning: deductions exceed gross pay, check the rule table"))
	}
}

func breakdownNotes(b domain.StateWithholdingBreakdown) string {
	var notes []string
	if b.ReciprocityApplied {
		notes = append(notes, "reciprocity")
	}
	if b.ConfigurationGap {
		notes = append(notes, warningStyle.Render("no rule"))
	}
	if !b.EffectiveRate.IsZero() {
		notes = append(notes, FormatRate(b.EffectiveRate)+" rate")
	}
	return strings.Join(notes, ", ")
}
