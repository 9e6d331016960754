package domain

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestParseDate(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    Date
		wantErr bool
	}{
		{"calendar date", "2024-03-15", NewDate(2024, time.March, 15), false},
		{"timestamp truncated", "2024-03-15T23:30:00-05:00", NewDate(2024, time.March, 15), false},
		{"surrounding space", " 2024-01-02 ", NewDate(2024, time.January, 2), false},
		{"garbage", "15/03/2024", Date{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseDate(tt.input)
			if tt.wantErr {
				assert.ErrorContains(t, err, "expected 2006-01-02")
				return
			}
			require.NoError(t, err)
			assert.True(t, tt.want.Equal(got.Time), "got %s", got)
		})
	}
}

func TestNewDateNormalises(t *testing.T) {
	assert.Equal(t, "2024-03-01", NewDate(2024, time.February, 30).String())
	assert.Equal(t, "", Date{}.String())
}

func TestDateJSON(t *testing.T) {
	var holder struct {
		Start Date `json:"start"`
		End   Date `json:"end"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"start":"2024-03-01","end":null}`), &holder))
	assert.Equal(t, "2024-03-01", holder.Start.String())
	assert.True(t, holder.End.IsZero())

	out, err := json.Marshal(holder)
	require.NoError(t, err)
	assert.JSONEq(t, `{"start":"2024-03-01","end":null}`, string(out))

	assert.Error(t, json.Unmarshal([]byte(`{"start":"March 1"}`), &holder))
}

func TestDateYAML(t *testing.T) {
	var holder struct {
		Start Date `yaml:"start"`
	}
	require.NoError(t, yaml.Unmarshal([]byte("start: 2024-03-01\n"), &holder))
	assert.Equal(t, "2024-03-01", holder.Start.String())
}

func TestTaxBracketContains(t *testing.T) {
	closed := TaxBracket{Min: d("100"), Max: d("200"), Rate: d("0.05")}
	assert.False(t, closed.OpenEnded())
	assert.False(t, closed.Contains(d("99.99")))
	assert.True(t, closed.Contains(d("100")))
	assert.True(t, closed.Contains(d("199.99")))
	assert.False(t, closed.Contains(d("200")), "upper bound is exclusive")

	open := TaxBracket{Min: d("200"), Rate: d("0.06")}
	assert.True(t, open.OpenEnded())
	assert.True(t, open.Contains(d("1000000")))
}

func TestJurisdictionTaxRule(t *testing.T) {
	rule := JurisdictionTaxRule{
		Code:                            "CA",
		StandardDeduction:               d("5540"),
		StandardDeductionByFilingStatus: map[string]decimal.Decimal{FilingStatusMarriedFilingJointly: d("11080")},
		Brackets:                        []TaxBracket{{Min: decimal.Zero, Rate: d("0.01")}},
		ReciprocityPartners:             []string{"OR"},
	}
	assert.True(t, rule.StandardDeductionFor(FilingStatusMarriedFilingJointly).Equal(d("11080")))
	assert.True(t, rule.StandardDeductionFor(FilingStatusSingle).Equal(d("5540")))
	assert.True(t, rule.HasReciprocityWith("OR"))
	assert.False(t, rule.HasReciprocityWith("NV"))
	assert.True(t, rule.LeviesIncomeTax())
	assert.False(t, JurisdictionTaxRule{Code: "TX"}.LeviesIncomeTax())
}

func TestFederalStandardDeduction(t *testing.T) {
	f := FederalTaxRule{StandardDeductionByFilingStatus: map[string]decimal.Decimal{
		FilingStatusSingle:               d("14600"),
		FilingStatusMarriedFilingJointly: d("29200"),
	}}

	amount, ok := f.StandardDeduction(FilingStatusMarriedFilingJointly)
	assert.True(t, ok)
	assert.True(t, amount.Equal(d("29200")))

	amount, ok = f.StandardDeduction("widowed")
	assert.False(t, ok)
	assert.True(t, amount.Equal(d("14600")))
}

func TestRuleTable(t *testing.T) {
	table := &RuleTable{
		Federal: FederalTaxRule{AllowanceCreditAmount: d("4300")},
		Jurisdictions: map[string]JurisdictionTaxRule{
			"TX": {Code: "TX"},
			"CA": {Code: "CA"},
			"NJ": {Code: "NJ"},
		},
	}
	assert.Equal(t, []string{"CA", "NJ", "TX"}, table.Codes())
	assert.True(t, table.AllowanceUnit().Equal(d("4300")))

	_, ok := table.Jurisdiction("NJ")
	assert.True(t, ok)
	_, ok = table.Jurisdiction("nj")
	assert.False(t, ok, "lookups expect normalised codes")
}

func TestWorkJurisdictions(t *testing.T) {
	req := TaxCalculationRequest{WorkLocations: []WorkLocationAllocation{
		{JurisdictionCode: "NJ", Percentage: d("30")},
		{JurisdictionCode: "IL", Percentage: d("40")},
		{JurisdictionCode: "NJ", Percentage: d("30")},
	}}
	assert.Equal(t, []string{"NJ", "IL"}, req.WorkJurisdictions())
}

func TestResultReciprocityApplied(t *testing.T) {
	r := TaxCalculationResult{StateBreakdowns: []StateWithholdingBreakdown{
		{JurisdictionCode: "NJ"},
		{JurisdictionCode: "PA", ReciprocityApplied: true},
	}}
	assert.True(t, r.ReciprocityApplied())
	assert.False(t, TaxCalculationResult{}.ReciprocityApplied())
}

func TestNewAuditRecord(t *testing.T) {
	req := TaxCalculationRequest{
		EmployeeID: "emp-1",
		WorkLocations: []WorkLocationAllocation{
			{JurisdictionCode: "NJ", Percentage: d("60")},
			{JurisdictionCode: "IL", Percentage: d("40")},
		},
	}
	at := time.Date(2024, 3, 15, 8, 0, 0, 0, time.FixedZone("EST", -5*3600))

	system := NewAuditRecord(req, TaxCalculationResult{EmployeeID: "emp-1"}, nil, at)
	assert.Equal(t, ActionTypeMultiStateTaxCalculation, system.ActionType)
	assert.Equal(t, []string{"NJ", "IL"}, system.StatesInvolved)
	assert.Equal(t, time.UTC, system.Timestamp.Location())
	assert.True(t, at.Equal(system.Timestamp))
	assert.Equal(t, "system", system.PerformedByLabel())

	actor := "payroll-admin"
	manual := NewAuditRecord(req, TaxCalculationResult{}, &actor, at)
	assert.Equal(t, "payroll-admin", manual.PerformedByLabel())
	assert.NotEqual(t, system.ID, manual.ID)
}

func TestAuditRecordClone(t *testing.T) {
	actor := "payroll-admin"
	req := TaxCalculationRequest{
		EmployeeID:    "emp-1",
		WorkLocations: []WorkLocationAllocation{{JurisdictionCode: "NJ", Percentage: d("100")}},
	}
	result := TaxCalculationResult{StateBreakdowns: []StateWithholdingBreakdown{
		{JurisdictionCode: "NJ", TaxWithheld: d("42")},
	}}

	record := NewAuditRecord(req, result, &actor, time.Now())
	result.StateBreakdowns[0].TaxWithheld = decimal.Zero
	req.WorkLocations[0].JurisdictionCode = "XX"
	actor = "someone-else"

	assert.True(t, record.Result.StateBreakdowns[0].TaxWithheld.Equal(d("42")))
	assert.Equal(t, "NJ", record.Request.WorkLocations[0].JurisdictionCode)
	assert.Equal(t, "payroll-admin", record.PerformedByLabel())

	clone := record.Clone()
	clone.Result.StateBreakdowns[0].TaxWithheld = d("1")
	clone.StatesInvolved[0] = "XX"
	*clone.PerformedBy = "changed"
	assert.True(t, record.Result.StateBreakdowns[0].TaxWithheld.Equal(d("42")))
	assert.Equal(t, []string{"NJ"}, record.StatesInvolved)
	assert.Equal(t, "payroll-admin", record.PerformedByLabel())
}

func TestMoneyEncodesAsJSONNumbers(t *testing.T) {
	out, err := json.Marshal(TaxCalculationResult{GrossPay: d("2000"), NetPay: d("1847.00")})
	require.NoError(t, err)
	assert.Contains(t, string(out), `"grossPay":2000`)
	assert.Contains(t, string(out), `"netPay":1847`)
}

func TestValidationError(t *testing.T) {
	base := NewValidationError(MsgMissingRequiredFields)
	detailed := base.WithDetail("workLocations[%d].jurisdictionCode", 1)

	assert.Equal(t, "Missing required fields", base.Error())
	assert.Equal(t, "Missing required fields (workLocations[1].jurisdictionCode)", detailed.Error())
	assert.Empty(t, base.Detail, "WithDetail must not mutate the receiver")
	assert.Equal(t, MsgMissingRequiredFields, detailed.Message)
}

func TestPersistenceErrorUnwraps(t *testing.T) {
	cause := errors.New("disk full")
	var err error = &PersistenceError{Err: cause}

	assert.ErrorIs(t, err, cause)
	assert.EqualError(t, err, "audit persistence failed: disk full")

	var pe *PersistenceError
	assert.True(t, errors.As(err, &pe))
}
