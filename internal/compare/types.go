package compare

import (
	"fmt"

	"github.com/rgehrsitz/withholding/internal/domain"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// RuleSet is a named rule table to calculate against.
type RuleSet struct {
	Name  string
	Rules *domain.RuleTable
}

// JurisdictionDelta is the change in one work location's withholding
// relative to the base rule set.
type JurisdictionDelta struct {
	JurisdictionCode string          `json:"jurisdictionCode"`
	Base             decimal.Decimal `json:"base"`
	Alternative      decimal.Decimal `json:"alternative"`
	Diff             decimal.Decimal `json:"diff"`
}

// ComparisonResult is one rule set's calculation with its key figures.
type ComparisonResult struct {
	Name        string                       `json:"name"`
	RuleVersion string                       `json:"ruleVersion"`
	Result      *domain.TaxCalculationResult `json:"result"`

	// Key Metrics
	TotalStateTax     decimal.Decimal `json:"totalStateTax"`
	FederalTax        decimal.Decimal `json:"federalTax"`
	SocialSecurityTax decimal.Decimal `json:"socialSecurityTax"`
	MedicareTax       decimal.Decimal `json:"medicareTax"`
	TotalDeductions   decimal.Decimal `json:"totalDeductions"`
	NetPay            decimal.Decimal `json:"netPay"`

	// Comparison to Base
	NetPayDiffFromBase     decimal.Decimal     `json:"netPayDiffFromBase"`
	NetPayPctFromBase      decimal.Decimal     `json:"netPayPctFromBase"`
	StateTaxDiffFromBase   decimal.Decimal     `json:"stateTaxDiffFromBase"`
	FederalTaxDiffFromBase decimal.Decimal     `json:"federalTaxDiffFromBase"`
	FICADiffFromBase       decimal.Decimal     `json:"ficaDiffFromBase"`
	StateDeltas            []JurisdictionDelta `json:"stateDeltas,omitempty"`
}

// ComparisonSet is a base calculation plus its alternatives.
type ComparisonSet struct {
	EmployeeID         string             `json:"employeeId"`
	BaseName           string             `json:"baseName"`
	BaseResult         *ComparisonResult  `json:"baseResult"`
	AlternativeResults []ComparisonResult `json:"alternativeResults"`
	Recommendations    []string           `json:"recommendations"`
}

// MetricsCalculator extracts comparison metrics from calculation results
type MetricsCalculator struct{}

// NewMetricsCalculator creates a new metrics calculator
func NewMetricsCalculator() *MetricsCalculator {
	return &MetricsCalculator{}
}

// CalculateMetrics copies the headline figures out of a result.
func (mc *MetricsCalculator) CalculateMetrics(name string, result *domain.TaxCalculationResult) ComparisonResult {
	return ComparisonResult{
		Name:              name,
		RuleVersion:       result.RuleVersion,
		Result:            result,
		TotalStateTax:     result.TotalStateTaxWithheld,
		FederalTax:        result.FederalTax,
		SocialSecurityTax: result.SocialSecurityTax,
		MedicareTax:       result.MedicareTax,
		TotalDeductions:   result.TotalDeductions,
		NetPay:            result.NetPay,
	}
}

// CalculateComparison fills in the deltas of alt against base.
func (mc *MetricsCalculator) CalculateComparison(alt, base ComparisonResult) ComparisonResult {
	alt.NetPayDiffFromBase = alt.NetPay.Sub(base.NetPay)
	if !base.NetPay.IsZero() {
		alt.NetPayPctFromBase = alt.NetPayDiffFromBase.Div(base.NetPay).Mul(hundred).Round(2)
	}
	alt.StateTaxDiffFromBase = alt.TotalStateTax.Sub(base.TotalStateTax)
	alt.FederalTaxDiffFromBase = alt.FederalTax.Sub(base.FederalTax)
	alt.FICADiffFromBase = alt.SocialSecurityTax.Add(alt.MedicareTax).
		Sub(base.SocialSecurityTax.Add(base.MedicareTax))
	alt.StateDeltas = stateDeltas(base.Result, alt.Result)
	return alt
}

// stateDeltas pairs breakdowns by position; both results come from the same
// request so the work locations line up.
func stateDeltas(base, alt *domain.TaxCalculationResult) []JurisdictionDelta {
	if base == nil || alt == nil {
		return nil
	}
	n := min(len(base.StateBreakdowns), len(alt.StateBreakdowns))
	deltas := make([]JurisdictionDelta, 0, n)
	for i := 0; i < n; i++ {
		b, a := base.StateBreakdowns[i], alt.StateBreakdowns[i]
		deltas = append(deltas, JurisdictionDelta{
			JurisdictionCode: b.JurisdictionCode,
			Base:             b.TaxWithheld,
			Alternative:      a.TaxWithheld,
			Diff:             a.TaxWithheld.Sub(b.TaxWithheld),
		})
	}
	return deltas
}

// GenerateRecommendations summarises which rule set withholds least.
func GenerateRecommendations(compSet *ComparisonSet) []string {
	recommendations := []string{}
	if compSet.BaseResult == nil || len(compSet.AlternativeResults) == 0 {
		return recommendations
	}

	best := compSet.BaseResult
	for i := range compSet.AlternativeResults {
		if compSet.AlternativeResults[i].NetPay.GreaterThan(best.NetPay) {
			best = &compSet.AlternativeResults[i]
		}
	}
	if best != compSet.BaseResult {
		diff := best.NetPay.Sub(compSet.BaseResult.NetPay)
		recommendations = append(recommendations,
			fmt.Sprintf("Highest Net Pay: %s leaves $%s more per period than %s",
				best.Name, diff.StringFixed(2), compSet.BaseResult.Name))
	}

	for _, alt := range compSet.AlternativeResults {
		for _, d := range alt.StateDeltas {
			if d.Diff.IsZero() {
				continue
			}
			direction := "raises"
			if d.Diff.IsNegative() {
				direction = "lowers"
			}
			recommendations = append(recommendations,
				fmt.Sprintf("%s %s %s withholding by $%s", alt.Name, direction, d.JurisdictionCode, d.Diff.Abs().StringFixed(2)))
		}
	}
	return recommendations
}
