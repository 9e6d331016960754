package output

import (
	"fmt"
	"io"

	"github.com/rgehrsitz/withholding/internal/domain"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// GenerateReport writes results to w in the named format.
func GenerateReport(w io.Writer, results []domain.TaxCalculationResult, format string) error {
	f := GetFormatterByName(format)
	if f == nil {
		return fmt.Errorf("unsupported format: %s", format)
	}
	data, err := f.Format(results)
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}

// FormatCurrency formats a decimal as currency
func FormatCurrency(amount decimal.Decimal) string {
	if amount.IsNegative() {
		return "-$" + amount.Abs().StringFixed(2)
	}
	return "$" + amount.StringFixed(2)
}

// FormatRate formats a fractional rate (0.0307) as a percentage (3.07%).
func FormatRate(rate decimal.Decimal) string {
	return FormatPercentage(rate.Mul(hundred))
}

// FormatPercentage formats a decimal as percentage
func FormatPercentage(amount decimal.Decimal) string {
	return amount.StringFixed(2) + "%"
}
