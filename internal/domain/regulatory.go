package domain

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// Filing statuses recognised by the federal standard deduction table.
const (
	FilingStatusSingle                  = "single"
	FilingStatusMarriedFilingJointly    = "married_filing_jointly"
	FilingStatusMarriedFilingSeparately = "married_filing_separately"
	FilingStatusHeadOfHousehold         = "head_of_household"

	// DefaultFilingStatus is used for the federal standard deduction when a
	// request carries a status the rule table does not know.
	DefaultFilingStatus = FilingStatusSingle
)

// TaxBracket is one half-open [Min, Max) slice of a progressive schedule.
// A zero Max on the last bracket means the bracket is open-ended.
type TaxBracket struct {
	Min            decimal.Decimal `yaml:"min" json:"min"`
	Max            decimal.Decimal `yaml:"max" json:"max"`
	Rate           decimal.Decimal `yaml:"rate" json:"rate"`
	CumulativeBase decimal.Decimal `yaml:"cumulative_base" json:"cumulativeBase"`
}

// OpenEnded reports whether the bracket has no upper bound.
func (b TaxBracket) OpenEnded() bool {
	return b.Max.IsZero()
}

// Contains reports whether income falls within [Min, Max).
func (b TaxBracket) Contains(income decimal.Decimal) bool {
	if income.LessThan(b.Min) {
		return false
	}
	return b.OpenEnded() || income.LessThan(b.Max)
}

// JurisdictionTaxRule holds the withholding rules for one state-level
// jurisdiction. An empty bracket list means the jurisdiction levies no
// income tax.
type JurisdictionTaxRule struct {
	Code              string          `yaml:"code" json:"code"`
	Name              string          `yaml:"name" json:"name"`
	FlatRate          decimal.Decimal `yaml:"flat_rate" json:"flatRate"` // published top rate, informational
	StandardDeduction decimal.Decimal `yaml:"standard_deduction" json:"standardDeduction"`
	// StandardDeductionByFilingStatus optionally overrides StandardDeduction
	// for specific filing statuses.
	StandardDeductionByFilingStatus map[string]decimal.Decimal `yaml:"standard_deduction_by_filing_status,omitempty" json:"standardDeductionByFilingStatus,omitempty"`
	Brackets                        []TaxBracket               `yaml:"brackets" json:"brackets"`
	ReciprocityPartners             []string                   `yaml:"reciprocity_partners" json:"reciprocityPartners"`
	NexusThreshold                  decimal.Decimal            `yaml:"nexus_threshold" json:"nexusThreshold"` // recorded, not enforced
}

// StandardDeductionFor returns the state standard deduction for a filing
// status.
func (r JurisdictionTaxRule) StandardDeductionFor(status string) decimal.Decimal {
	if amount, ok := r.StandardDeductionByFilingStatus[status]; ok {
		return amount
	}
	return r.StandardDeduction
}

// HasReciprocityWith reports whether residents of code are exempt from
// withholding when working in this jurisdiction.
func (r JurisdictionTaxRule) HasReciprocityWith(code string) bool {
	for _, p := range r.ReciprocityPartners {
		if p == code {
			return true
		}
	}
	return false
}

// LeviesIncomeTax reports whether the jurisdiction has a bracket schedule.
func (r JurisdictionTaxRule) LeviesIncomeTax() bool {
	return len(r.Brackets) > 0
}

// FederalTaxRule contains the federal income tax schedule used for
// per-period withholding.
type FederalTaxRule struct {
	Brackets                        []TaxBracket               `yaml:"brackets" json:"brackets"`
	StandardDeductionByFilingStatus map[string]decimal.Decimal `yaml:"standard_deduction" json:"standardDeductionByFilingStatus"`
	AllowanceCreditAmount           decimal.Decimal            `yaml:"allowance_credit_amount" json:"allowanceCreditAmount"`
}

// StandardDeduction returns the deduction for status and whether status was
// recognised. Unrecognised statuses fall back to DefaultFilingStatus.
func (f FederalTaxRule) StandardDeduction(status string) (decimal.Decimal, bool) {
	if amount, ok := f.StandardDeductionByFilingStatus[status]; ok {
		return amount, true
	}
	return f.StandardDeductionByFilingStatus[DefaultFilingStatus], false
}

// FICARule contains Social Security and Medicare withholding constants.
type FICARule struct {
	SocialSecurityRate decimal.Decimal `yaml:"social_security_rate" json:"socialSecurityRate"`
	// SocialSecurityWageBase caps the wages subject to Social Security. Zero
	// leaves the wages uncapped.
	SocialSecurityWageBase  decimal.Decimal `yaml:"social_security_wage_base" json:"socialSecurityWageBase"`
	MedicareRate            decimal.Decimal `yaml:"medicare_rate" json:"medicareRate"`
	MedicareSurtaxRate      decimal.Decimal `yaml:"medicare_surtax_rate" json:"medicareSurtaxRate"`
	MedicareSurtaxThreshold decimal.Decimal `yaml:"medicare_surtax_threshold" json:"medicareSurtaxThreshold"`
}

// RuleMetadata describes where a rule table came from.
type RuleMetadata struct {
	Version       string `yaml:"version" json:"version"`
	EffectiveDate string `yaml:"effective_date" json:"effectiveDate"`
	Description   string `yaml:"description" json:"description"`
}

// RuleTable is the complete, immutable set of withholding rules a process
// calculates against. It is built once by the config loader and handed to
// the calculation engine; nothing mutates it afterwards.
type RuleTable struct {
	Metadata      RuleMetadata                   `yaml:"metadata" json:"metadata"`
	Federal       FederalTaxRule                 `yaml:"federal" json:"federal"`
	FICA          FICARule                       `yaml:"fica" json:"fica"`
	Jurisdictions map[string]JurisdictionTaxRule `yaml:"jurisdictions" json:"jurisdictions"`
	LoadedAt      time.Time                      `yaml:"-" json:"loadedAt"`
}

// Jurisdiction looks up a rule by code.
func (t *RuleTable) Jurisdiction(code string) (JurisdictionTaxRule, bool) {
	rule, ok := t.Jurisdictions[code]
	return rule, ok
}

// Codes returns all jurisdiction codes in sorted order.
func (t *RuleTable) Codes() []string {
	codes := make([]string, 0, len(t.Jurisdictions))
	for code := range t.Jurisdictions {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}

// AllowanceUnit is the per-allowance amount shared by the state and federal
// calculations.
func (t *RuleTable) AllowanceUnit() decimal.Decimal {
	return t.Federal.AllowanceCreditAmount
}
