package compare

import (
	"encoding/csv"
	"strings"
)

// CSVFormatter formats comparison results as CSV
type CSVFormatter struct{}

// Format writes one row per rule set.
func (cf *CSVFormatter) Format(compSet *ComparisonSet) (string, error) {
	var sb strings.Builder
	writer := csv.NewWriter(&sb)

	header := []string{
		"RuleSet",
		"Type",
		"RuleVersion",
		"StateTax",
		"FederalTax",
		"SocialSecurity",
		"Medicare",
		"TotalDeductions",
		"NetPay",
		"NetPayDiff",
		"NetPayPct",
		"StateTaxDiff",
		"FederalTaxDiff",
	}
	if err := writer.Write(header); err != nil {
		return "", err
	}

	if compSet.BaseResult != nil {
		if err := writer.Write(cf.formatRow(compSet.BaseResult, "base")); err != nil {
			return "", err
		}
	}
	for i := range compSet.AlternativeResults {
		if err := writer.Write(cf.formatRow(&compSet.AlternativeResults[i], "alternative")); err != nil {
			return "", err
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return "", err
	}
	return sb.String(), nil
}

func (cf *CSVFormatter) formatRow(result *ComparisonResult, kind string) []string {
	return []string{
		result.Name,
		kind,
		result.RuleVersion,
		result.TotalStateTax.StringFixed(2),
		result.FederalTax.StringFixed(2),
		result.SocialSecurityTax.StringFixed(2),
		result.MedicareTax.StringFixed(2),
		result.TotalDeductions.StringFixed(2),
		result.NetPay.StringFixed(2),
		result.NetPayDiffFromBase.StringFixed(2),
		result.NetPayPctFromBase.StringFixed(2),
		result.StateTaxDiffFromBase.StringFixed(2),
		result.FederalTaxDiffFromBase.StringFixed(2),
	}
}
