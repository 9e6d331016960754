package domain

import (
	"slices"
	"time"

	"github.com/shopspring/decimal"
)

func init() {
	// Money is encoded as JSON numbers everywhere: HTTP responses, audit
	// payloads and the SQS outbox all share this encoding.
	decimal.MarshalJSONWithoutQuotes = true
}

// WorkLocationAllocation attributes a share of one pay period's gross pay to
// a work jurisdiction.
type WorkLocationAllocation struct {
	JurisdictionCode string          `yaml:"jurisdiction_code" json:"jurisdictionCode"`
	Percentage       decimal.Decimal `yaml:"percentage" json:"percentage"`
	DaysWorked       int             `yaml:"days_worked" json:"daysWorked"`
}

// TaxCalculationRequest is everything the engine needs to withhold for one
// employee and one pay period.
type TaxCalculationRequest struct {
	EmployeeID            string                   `yaml:"employee_id" json:"employeeId"`
	GrossPay              decimal.Decimal          `yaml:"gross_pay" json:"grossPay"`
	PayPeriodStart        Date                     `yaml:"pay_period_start" json:"payPeriodStart"`
	PayPeriodEnd          Date                     `yaml:"pay_period_end" json:"payPeriodEnd"`
	WorkLocations         []WorkLocationAllocation `yaml:"work_locations" json:"workLocations"`
	ResidenceState        string                   `yaml:"residence_state" json:"residenceState"`
	FilingStatus          string                   `yaml:"filing_status" json:"filingStatus"`
	Allowances            int                      `yaml:"allowances" json:"allowances"`
	AdditionalWithholding decimal.Decimal          `yaml:"additional_withholding" json:"additionalWithholding"`
}

// Clone returns a copy of r with its own WorkLocations slice.
func (r TaxCalculationRequest) Clone() TaxCalculationRequest {
	out := r
	out.WorkLocations = slices.Clone(r.WorkLocations)
	return out
}

// WorkJurisdictions returns the distinct work-location codes in request order.
func (r TaxCalculationRequest) WorkJurisdictions() []string {
	seen := make(map[string]bool, len(r.WorkLocations))
	codes := make([]string, 0, len(r.WorkLocations))
	for _, loc := range r.WorkLocations {
		if seen[loc.JurisdictionCode] {
			continue
		}
		seen[loc.JurisdictionCode] = true
		codes = append(codes, loc.JurisdictionCode)
	}
	return codes
}

// StateWithholdingBreakdown is the state withholding computed for one work
// location.
type StateWithholdingBreakdown struct {
	JurisdictionCode   string          `json:"jurisdictionCode"`
	AllocatedIncome    decimal.Decimal `json:"allocatedIncome"`
	TaxableIncome      decimal.Decimal `json:"taxableIncome"`
	TaxWithheld        decimal.Decimal `json:"taxWithheld"`
	EffectiveRate      decimal.Decimal `json:"effectiveRate"`
	ReciprocityApplied bool            `json:"reciprocityApplied"`
	// ConfigurationGap is set when the jurisdiction had no rule entry and
	// was treated as non-taxing.
	ConfigurationGap bool `json:"configurationGap"`
}

// PayrollTaxes are the federal, Social Security and Medicare amounts for a
// pay period. Medicare includes the additional surtax.
type PayrollTaxes struct {
	FederalTax        decimal.Decimal `json:"federalTax"`
	SocialSecurityTax decimal.Decimal `json:"socialSecurityTax"`
	MedicareTax       decimal.Decimal `json:"medicareTax"`
}

// TaxCalculationResult is the immutable outcome of one calculation.
type TaxCalculationResult struct {
	EmployeeID            string                      `json:"employeeId"`
	GrossPay              decimal.Decimal             `json:"grossPay"`
	TotalStateTaxWithheld decimal.Decimal             `json:"totalStateTaxWithheld"`
	StateBreakdowns       []StateWithholdingBreakdown `json:"stateBreakdowns"`
	FederalTax            decimal.Decimal             `json:"federalTax"`
	SocialSecurityTax     decimal.Decimal             `json:"socialSecurityTax"`
	MedicareTax           decimal.Decimal             `json:"medicareTax"`
	AdditionalWithholding decimal.Decimal             `json:"additionalWithholding"`
	TotalDeductions       decimal.Decimal             `json:"totalDeductions"`
	NetPay                decimal.Decimal             `json:"netPay"`
	CalculatedAt          time.Time                   `json:"calculatedAt"`
	CalculationDate       time.Time                   `json:"calculationDate"`
	RuleVersion           string                      `json:"ruleVersion,omitempty"`
}

// Clone returns a copy of r with its own StateBreakdowns slice.
func (r TaxCalculationResult) Clone() TaxCalculationResult {
	out := r
	out.StateBreakdowns = slices.Clone(r.StateBreakdowns)
	return out
}

// ReciprocityApplied reports whether any location was exempted under a
// reciprocity agreement.
func (r TaxCalculationResult) ReciprocityApplied() bool {
	for _, b := range r.StateBreakdowns {
		if b.ReciprocityApplied {
			return true
		}
	}
	return false
}
