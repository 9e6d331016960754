package calculation

import (
	"github.com/rgehrsitz/withholding/internal/domain"
	"github.com/shopspring/decimal"
)

// PercentageTolerance is how far the sum of work-location percentages may
// drift from 100.
var PercentageTolerance = decimal.NewFromFloat(0.01)

// ValidateApportionment checks that every percentage is within [0, 100] and
// that together they total 100 within PercentageTolerance. Percentages that
// miss are rejected, never normalised.
func ValidateApportionment(locations []domain.WorkLocationAllocation) error {
	sum := decimal.Zero
	for _, loc := range locations {
		if loc.Percentage.IsNegative() || loc.Percentage.GreaterThan(hundred) {
			return domain.NewValidationError(domain.MsgPercentageOutOfRange).
				WithDetail("%s has %s%%", loc.JurisdictionCode, loc.Percentage)
		}
		sum = sum.Add(loc.Percentage)
	}

	if sum.Sub(hundred).Abs().GreaterThan(PercentageTolerance) {
		return domain.NewValidationError(domain.MsgPercentagesMustTotal100).
			WithDetail("percentages sum to %s", sum)
	}
	return nil
}

// AllocateIncome returns the share of gross pay attributed to a location,
// rounded to cents.
func AllocateIncome(grossPay, percentage decimal.Decimal) decimal.Decimal {
	return Round2(grossPay.Mul(percentage).Div(hundred))
}
