package output

import (
	"bytes"
	"encoding/csv"
	"strconv"

	"github.com/rgehrsitz/withholding/internal/domain"
)

// CSVFormatter writes one row per work location. Payroll-wide columns repeat
// on every row of the same result.
type CSVFormatter struct{}

func (c CSVFormatter) Name() string { return "csv" }

var csvHeader = []string{
	"EmployeeID", "Jurisdiction", "AllocatedIncome", "TaxableIncome", "StateTaxWithheld",
	"ReciprocityApplied", "ConfigurationGap", "GrossPay", "FederalTax", "SocialSecurityTax",
	"MedicareTax", "AdditionalWithholding", "TotalDeductions", "NetPay", "CalculatedAt",
}

func (c CSVFormatter) Format(results []domain.TaxCalculationResult) ([]byte, error) {
	buf := &bytes.Buffer{}
	w := csv.NewWriter(buf)
	if err := w.Write(csvHeader); err != nil {
		return nil, err
	}
	for _, r := range results {
		for _, b := range r.StateBreakdowns {
			row := []string{
				r.EmployeeID,
				b.JurisdictionCode,
				b.AllocatedIncome.StringFixed(2),
				b.TaxableIncome.StringFixed(2),
				b.TaxWithheld.StringFixed(2),
				strconv.FormatBool(b.ReciprocityApplied),
				strconv.FormatBool(b.ConfigurationGap),
				r.GrossPay.StringFixed(2),
				r.FederalTax.StringFixed(2),
				r.SocialSecurityTax.StringFixed(2),
				r.MedicareTax.StringFixed(2),
				r.AdditionalWithholding.StringFixed(2),
				r.TotalDeductions.StringFixed(2),
				r.NetPay.StringFixed(2),
				r.CalculatedAt.UTC().Format("2006-01-02T15:04:05Z"),
			}
			if err := w.Write(row); err != nil {
				return nil, err
			}
		}
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}
