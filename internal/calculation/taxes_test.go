package calculation

import (
	"testing"

	"github.com/rgehrsitz/withholding/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func federalBrackets() []domain.TaxBracket {
	return []domain.TaxBracket{
		{Min: dec("0"), Max: dec("11600"), Rate: dec("0.10"), CumulativeBase: dec("0")},
		{Min: dec("11600"), Max: dec("47150"), Rate: dec("0.12"), CumulativeBase: dec("1160")},
		{Min: dec("47150"), Max: dec("100525"), Rate: dec("0.22"), CumulativeBase: dec("5426")},
		{Min: dec("100525"), Max: dec("191950"), Rate: dec("0.24"), CumulativeBase: dec("17168.50")},
		{Min: dec("191950"), Max: dec("243725"), Rate: dec("0.32"), CumulativeBase: dec("39110.50")},
		{Min: dec("243725"), Max: dec("609350"), Rate: dec("0.35"), CumulativeBase: dec("55678.50")},
		{Min: dec("609350"), Rate: dec("0.37"), CumulativeBase: dec("183647.25")},
	}
}

func TestEvaluateProgressive(t *testing.T) {
	brackets := federalBrackets()

	tests := []struct {
		name     string
		taxable  string
		expected string
	}{
		{"zero income", "0", "0"},
		{"negative income", "-100", "0"},
		{"first bracket", "10000", "1000.00"},
		{"at first boundary", "11600", "1160.00"},
		{"third bracket", "50000", "6053.00"},
		{"fractional cents", "12345.67", "1249.48"},
		{"top bracket", "1000000", "328187.75"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := EvaluateProgressive(dec(tt.taxable), brackets)
			if !result.Equal(dec(tt.expected)) {
				t.Errorf("EvaluateProgressive(%s) = %s, expected %s", tt.taxable, result, tt.expected)
			}
		})
	}
}

func TestEvaluateProgressive_EmptySchedule(t *testing.T) {
	assert.True(t, EvaluateProgressive(dec("50000"), nil).IsZero())
}

func TestEvaluateProgressive_Monotonic(t *testing.T) {
	brackets := federalBrackets()
	prev := decimal.Zero
	for income := int64(0); income <= 700000; income += 2500 {
		tax := EvaluateProgressive(decimal.NewFromInt(income), brackets)
		assert.True(t, tax.GreaterThanOrEqual(prev), "tax decreased at %d", income)
		prev = tax
	}
}

func TestEvaluateProgressive_ContinuousAtBoundaries(t *testing.T) {
	brackets := federalBrackets()
	for i := 0; i < len(brackets)-1; i++ {
		b := brackets[i]
		atMax := b.CumulativeBase.Add(b.Max.Sub(b.Min).Mul(b.Rate))
		next := EvaluateProgressive(b.Max, brackets)
		assert.True(t, Round2(atMax).Equal(next), "discontinuity at %s: %s vs %s", b.Max, atMax, next)
	}
}

func TestFederalTaxCalculator(t *testing.T) {
	ftc := NewFederalTaxCalculator(domain.FederalTaxRule{
		Brackets: federalBrackets(),
		StandardDeductionByFilingStatus: map[string]decimal.Decimal{
			domain.FilingStatusSingle:               dec("14600"),
			domain.FilingStatusMarriedFilingJointly: dec("29200"),
		},
		AllowanceCreditAmount: dec("4300"),
	})

	tests := []struct {
		name         string
		gross        string
		filingStatus string
		allowances   int
		expected     string
	}{
		{"below deduction", "10000", domain.FilingStatusSingle, 0, "0"},
		{"single", "64600", domain.FilingStatusSingle, 0, "6053.00"},
		{"allowances reduce taxable", "68900", domain.FilingStatusSingle, 1, "6053.00"},
		{"joint", "79200", domain.FilingStatusMarriedFilingJointly, 0, "6053.00"},
		{"unknown status uses single", "64600", "widowed", 0, "6053.00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := ftc.CalculateFederalTax(dec(tt.gross), tt.filingStatus, tt.allowances)
			if !result.Equal(dec(tt.expected)) {
				t.Errorf("CalculateFederalTax(%s, %s, %d) = %s, expected %s", tt.gross, tt.filingStatus, tt.allowances, result, tt.expected)
			}
		})
	}

	_, ok := ftc.StandardDeduction("widowed")
	assert.False(t, ok)
}

func ficaCalculator(wageBase string) *FICACalculator {
	return NewFICACalculator(domain.FICARule{
		SocialSecurityRate:      dec("0.062"),
		SocialSecurityWageBase:  dec(wageBase),
		MedicareRate:            dec("0.0145"),
		MedicareSurtaxRate:      dec("0.009"),
		MedicareSurtaxThreshold: dec("200000"),
	})
}

func TestFICACalculator_SocialSecurity(t *testing.T) {
	uncapped := ficaCalculator("0")
	assert.True(t, uncapped.SocialSecurityTax(dec("2000")).Equal(dec("124.00")))
	assert.True(t, uncapped.SocialSecurityTax(dec("300000")).Equal(dec("18600.00")))

	capped := ficaCalculator("168600")
	assert.True(t, capped.SocialSecurityTax(dec("300000")).Equal(dec("10453.20")))
}

func TestFICACalculator_MedicareSurtaxThreshold(t *testing.T) {
	fc := ficaCalculator("0")

	assert.True(t, fc.AdditionalMedicare(dec("200000")).IsZero())
	assert.True(t, fc.MedicareTax(dec("200000")).Equal(dec("2900.00")))

	assert.True(t, fc.AdditionalMedicare(dec("200001")).Equal(dec("0.009")))
	assert.True(t, fc.MedicareTax(dec("200001")).Equal(dec("2900.02")))

	assert.True(t, fc.MedicareTax(dec("250000")).Equal(dec("4075.00")))
}

func TestPayrollTaxCalculator_Calculate(t *testing.T) {
	rules := &domain.RuleTable{
		Federal: domain.FederalTaxRule{
			Brackets:                        federalBrackets(),
			StandardDeductionByFilingStatus: map[string]decimal.Decimal{domain.FilingStatusSingle: dec("14600")},
			AllowanceCreditAmount:           dec("4300"),
		},
		FICA: domain.FICARule{
			SocialSecurityRate:      dec("0.062"),
			MedicareRate:            dec("0.0145"),
			MedicareSurtaxRate:      dec("0.009"),
			MedicareSurtaxThreshold: dec("200000"),
		},
	}

	taxes := NewPayrollTaxCalculator(rules).Calculate(dec("64600"), domain.FilingStatusSingle, 0)
	assert.True(t, taxes.FederalTax.Equal(dec("6053.00")))
	assert.True(t, taxes.SocialSecurityTax.Equal(dec("4005.20")))
	assert.True(t, taxes.MedicareTax.Equal(dec("936.70")))
}
