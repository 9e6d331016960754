package calculation

import (
	"github.com/rgehrsitz/withholding/internal/domain"
	"github.com/shopspring/decimal"
)

// WITHHOLDING ASSUMPTIONS:
//
// 1. Federal tax is computed once on total gross pay for the period and is
//    never apportioned across work locations.
//
// 2. Brackets are applied to the period's taxable income directly; there is
//    no annualisation and no year-to-date accumulation.
//
// 3. Social Security is a flat rate on gross pay. The wage base cap only
//    applies when the rule table sets one (zero means uncapped).
//
// 4. Additional Medicare applies to gross pay above the surtax threshold
//    regardless of filing status.
//
// Every component is rounded to cents on its own; sums of rounded components
// are exact.

var hundred = decimal.NewFromInt(100)

// Round2 rounds a currency amount to cents, half away from zero.
func Round2(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// nonNegative clamps d to zero from below.
func nonNegative(d decimal.Decimal) decimal.Decimal {
	if d.IsNegative() {
		return decimal.Zero
	}
	return d
}

// EvaluateProgressive returns the tax owed on taxable income under a
// progressive schedule: the cumulative base of the containing bracket plus
// the marginal rate on the excess over its minimum. Income past the last
// bracket is taxed by the last bracket. Only the final figure is rounded.
func EvaluateProgressive(taxable decimal.Decimal, brackets []domain.TaxBracket) decimal.Decimal {
	if len(brackets) == 0 || !taxable.IsPositive() {
		return decimal.Zero
	}

	bracket := brackets[len(brackets)-1]
	for _, b := range brackets {
		if b.Contains(taxable) {
			bracket = b
			break
		}
	}

	tax := bracket.CumulativeBase.Add(taxable.Sub(bracket.Min).Mul(bracket.Rate))
	return Round2(nonNegative(tax))
}

// FederalTaxCalculator handles federal income tax withholding
type FederalTaxCalculator struct {
	Brackets                []domain.TaxBracket
	StandardDeductionByFS   map[string]decimal.Decimal
	StandardDeductionSingle decimal.Decimal
	AllowanceUnit           decimal.Decimal
}

// NewFederalTaxCalculator creates a federal calculator from the rule table
func NewFederalTaxCalculator(rule domain.FederalTaxRule) *FederalTaxCalculator {
	stdSingle, _ := rule.StandardDeduction(domain.DefaultFilingStatus)
	return &FederalTaxCalculator{
		Brackets:                rule.Brackets,
		StandardDeductionByFS:   rule.StandardDeductionByFilingStatus,
		StandardDeductionSingle: stdSingle,
		AllowanceUnit:           rule.AllowanceCreditAmount,
	}
}

// StandardDeduction returns the deduction for filingStatus. Unknown statuses
// get the single amount; ok reports whether the status was recognised.
func (ftc *FederalTaxCalculator) StandardDeduction(filingStatus string) (decimal.Decimal, bool) {
	if amount, ok := ftc.StandardDeductionByFS[filingStatus]; ok {
		return amount, true
	}
	return ftc.StandardDeductionSingle, false
}

// TaxableIncome calculates federal taxable income for the period
func (ftc *FederalTaxCalculator) TaxableIncome(grossPay decimal.Decimal, filingStatus string, allowances int) decimal.Decimal {
	standardDed, _ := ftc.StandardDeduction(filingStatus)
	allowanceAmount := ftc.AllowanceUnit.Mul(decimal.NewFromInt(int64(allowances)))
	return nonNegative(grossPay.Sub(standardDed).Sub(allowanceAmount))
}

// CalculateFederalTax calculates federal income tax withholding
func (ftc *FederalTaxCalculator) CalculateFederalTax(grossPay decimal.Decimal, filingStatus string, allowances int) decimal.Decimal {
	return EvaluateProgressive(ftc.TaxableIncome(grossPay, filingStatus, allowances), ftc.Brackets)
}

// FICACalculator handles Social Security and Medicare withholding
type FICACalculator struct {
	SSWageBase          decimal.Decimal
	SSRate              decimal.Decimal
	MedicareRate        decimal.Decimal
	AdditionalRate      decimal.Decimal
	HighIncomeThreshold decimal.Decimal
}

// NewFICACalculator creates a FICA calculator from the rule table
func NewFICACalculator(rule domain.FICARule) *FICACalculator {
	return &FICACalculator{
		SSWageBase:          rule.SocialSecurityWageBase,
		SSRate:              rule.SocialSecurityRate,
		MedicareRate:        rule.MedicareRate,
		AdditionalRate:      rule.MedicareSurtaxRate,
		HighIncomeThreshold: rule.MedicareSurtaxThreshold,
	}
}

// SocialSecurityTax calculates Social Security withholding on gross pay
func (fc *FICACalculator) SocialSecurityTax(grossPay decimal.Decimal) decimal.Decimal {
	ssWages := nonNegative(grossPay)
	if fc.SSWageBase.IsPositive() && ssWages.GreaterThan(fc.SSWageBase) {
		ssWages = fc.SSWageBase
	}
	return Round2(ssWages.Mul(fc.SSRate))
}

// AdditionalMedicare returns the unrounded surtax on gross pay above the
// high income threshold.
func (fc *FICACalculator) AdditionalMedicare(grossPay decimal.Decimal) decimal.Decimal {
	excess := nonNegative(grossPay.Sub(fc.HighIncomeThreshold))
	return excess.Mul(fc.AdditionalRate)
}

// MedicareTax calculates Medicare withholding including the additional
// surtax. Base and surtax are rounded separately.
func (fc *FICACalculator) MedicareTax(grossPay decimal.Decimal) decimal.Decimal {
	base := Round2(nonNegative(grossPay).Mul(fc.MedicareRate))
	return base.Add(Round2(fc.AdditionalMedicare(grossPay)))
}

// PayrollTaxCalculator combines the federal income tax and FICA calculators.
// It has no knowledge of work locations.
type PayrollTaxCalculator struct {
	FederalTaxCalc *FederalTaxCalculator
	FICATaxCalc    *FICACalculator
}

// NewPayrollTaxCalculator creates a payroll tax calculator from the rule table
func NewPayrollTaxCalculator(rules *domain.RuleTable) *PayrollTaxCalculator {
	return &PayrollTaxCalculator{
		FederalTaxCalc: NewFederalTaxCalculator(rules.Federal),
		FICATaxCalc:    NewFICACalculator(rules.FICA),
	}
}

// Calculate computes federal, Social Security and Medicare withholding on
// the full gross pay.
func (ptc *PayrollTaxCalculator) Calculate(grossPay decimal.Decimal, filingStatus string, allowances int) domain.PayrollTaxes {
	return domain.PayrollTaxes{
		FederalTax:        ptc.FederalTaxCalc.CalculateFederalTax(grossPay, filingStatus, allowances),
		SocialSecurityTax: ptc.FICATaxCalc.SocialSecurityTax(grossPay),
		MedicareTax:       ptc.FICATaxCalc.MedicareTax(grossPay),
	}
}
