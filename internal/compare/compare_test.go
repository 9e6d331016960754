package compare

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/rgehrsitz/withholding/internal/config"
	"github.com/rgehrsitz/withholding/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loadRules(t *testing.T) *domain.RuleTable {
	t.Helper()
	rules, err := config.NewRulesLoader().LoadDefault()
	require.NoError(t, err)
	return rules
}

// draftRules raises the Illinois rate to 5%.
func draftRules(t *testing.T) *domain.RuleTable {
	t.Helper()
	rules := loadRules(t)
	rules.Metadata.Version = "2025.1"
	il := rules.Jurisdictions["IL"]
	il.Brackets = []domain.TaxBracket{{Min: decimal.Zero, Rate: decimal.RequireFromString("0.05")}}
	rules.Jurisdictions["IL"] = il
	return rules
}

func splitRequest() domain.TaxCalculationRequest {
	return domain.TaxCalculationRequest{
		EmployeeID:     "emp-split",
		GrossPay:       decimal.NewFromInt(5000),
		PayPeriodStart: domain.NewDate(2024, time.March, 1),
		PayPeriodEnd:   domain.NewDate(2024, time.March, 15),
		WorkLocations: []domain.WorkLocationAllocation{
			{JurisdictionCode: "NJ", Percentage: decimal.NewFromInt(60)},
			{JurisdictionCode: "IL", Percentage: decimal.NewFromInt(40)},
		},
		ResidenceState: "NJ",
		FilingStatus:   "single",
	}
}

func runComparison(t *testing.T) *ComparisonSet {
	t.Helper()
	ce := NewCompareEngine()
	set, err := ce.Compare(context.Background(), splitRequest(),
		RuleSet{Name: "current", Rules: loadRules(t)},
		[]RuleSet{{Name: "draft", Rules: draftRules(t)}})
	require.NoError(t, err)
	return set
}

func TestCompare(t *testing.T) {
	set := runComparison(t)

	assert.Equal(t, "emp-split", set.EmployeeID)
	assert.Equal(t, "current", set.BaseName)
	require.NotNil(t, set.BaseResult)
	assert.Equal(t, "4476.50", set.BaseResult.NetPay.StringFixed(2))
	assert.Equal(t, "2024.1", set.BaseResult.RuleVersion)

	require.Len(t, set.AlternativeResults, 1)
	alt := set.AlternativeResults[0]
	assert.Equal(t, "2025.1", alt.RuleVersion)
	assert.Equal(t, "4475.50", alt.NetPay.StringFixed(2))
	assert.Equal(t, "-1.00", alt.NetPayDiffFromBase.StringFixed(2))
	assert.Equal(t, "-0.02", alt.NetPayPctFromBase.StringFixed(2))
	assert.Equal(t, "1.00", alt.StateTaxDiffFromBase.StringFixed(2))
	assert.True(t, alt.FederalTaxDiffFromBase.IsZero())
	assert.True(t, alt.FICADiffFromBase.IsZero())

	require.Len(t, alt.StateDeltas, 2)
	assert.Equal(t, "NJ", alt.StateDeltas[0].JurisdictionCode)
	assert.True(t, alt.StateDeltas[0].Diff.IsZero())
	assert.Equal(t, "IL", alt.StateDeltas[1].JurisdictionCode)
	assert.Equal(t, "99.00", alt.StateDeltas[1].Base.StringFixed(2))
	assert.Equal(t, "100.00", alt.StateDeltas[1].Alternative.StringFixed(2))

	assert.Equal(t, []string{"draft raises IL withholding by $1.00"}, set.Recommendations)
}

func TestCompareHighestNetPay(t *testing.T) {
	ce := NewCompareEngine()
	set, err := ce.Compare(context.Background(), splitRequest(),
		RuleSet{Name: "draft", Rules: draftRules(t)},
		[]RuleSet{{Name: "current", Rules: loadRules(t)}})
	require.NoError(t, err)

	require.NotEmpty(t, set.Recommendations)
	assert.Equal(t, "Highest Net Pay: current leaves $1.00 more per period than draft", set.Recommendations[0])
}

func TestCompareErrors(t *testing.T) {
	ce := NewCompareEngine()

	_, err := ce.Compare(context.Background(), splitRequest(), RuleSet{Name: "empty"}, nil)
	assert.ErrorContains(t, err, `base rule set "empty" has no rules`)

	bad := splitRequest()
	bad.WorkLocations[0].Percentage = decimal.NewFromInt(10)
	_, err = ce.Compare(context.Background(), bad, RuleSet{Name: "current", Rules: loadRules(t)}, nil)
	var ve *domain.ValidationError
	assert.ErrorAs(t, err, &ve)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = ce.Compare(ctx, splitRequest(), RuleSet{Name: "current", Rules: loadRules(t)},
		[]RuleSet{{Name: "draft", Rules: draftRules(t)}})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestTableFormatter_Format(t *testing.T) {
	formatter := &TableFormatter{}
	result := formatter.Format(runComparison(t))

	for _, want := range []string{
		"WITHHOLDING RULE COMPARISON",
		"Employee: emp-split",
		"current (base)",
		"draft",
		"COMPARISON TO BASE",
		"Net Pay:      -$1.00 (-0.02%)",
		"State Tax:    +$1.00",
		"IL   $99.00 -> $100.00 (+$1.00)",
		"NOTES",
	} {
		if !strings.Contains(result, want) {
			t.Errorf("expected %q in output:\n%s", want, result)
		}
	}
	if strings.Contains(result, "NJ   $") {
		t.Error("unchanged jurisdictions should not be listed")
	}
}

func TestTableFormatter_EmptyAlternatives(t *testing.T) {
	formatter := &TableFormatter{}
	base := NewMetricsCalculator().CalculateMetrics("current", &domain.TaxCalculationResult{EmployeeID: "e"})
	result := formatter.Format(&ComparisonSet{EmployeeID: "e", BaseName: "current", BaseResult: &base})

	if !strings.Contains(result, "current (base)") {
		t.Error("expected base row")
	}
	if strings.Contains(result, "COMPARISON TO BASE") {
		t.Error("no deltas expected without alternatives")
	}
}

func TestTableFormatter_FormatCompact(t *testing.T) {
	formatter := &TableFormatter{}
	assert.Equal(t, "Base: current | draft: -$1.00", formatter.FormatCompact(runComparison(t)))
}

func TestTableFormatter_truncate(t *testing.T) {
	tf := &TableFormatter{}
	assert.Equal(t, "short", tf.truncate("short", 10))
	assert.Equal(t, "abcdefg...", tf.truncate("abcdefghijklmnop", 10))
}

func TestCSVFormatter_Format(t *testing.T) {
	out, err := (&CSVFormatter{}).Format(runComparison(t))
	require.NoError(t, err)

	rows, err := csv.NewReader(strings.NewReader(out)).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "RuleSet", rows[0][0])
	assert.Equal(t, []string{"current", "base", "2024.1"}, rows[1][:3])
	assert.Equal(t, []string{"draft", "alternative", "2025.1"}, rows[2][:3])
	assert.Equal(t, "-1.00", rows[2][9])
}

func TestJSONFormatter_Format(t *testing.T) {
	for _, pretty := range []bool{false, true} {
		out, err := (&JSONFormatter{Pretty: pretty}).Format(runComparison(t))
		require.NoError(t, err)

		var decoded map[string]any
		require.NoError(t, json.Unmarshal([]byte(out), &decoded))
		assert.Equal(t, "current", decoded["baseName"])
		assert.Len(t, decoded["alternativeResults"], 1)
		assert.Equal(t, pretty, strings.Contains(out, "\n  "))
	}
}
