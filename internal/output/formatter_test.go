package output

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"os"
	"testing"
	"time"

	"github.com/rgehrsitz/withholding/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func sampleResult() domain.TaxCalculationResult {
	at := time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)
	return domain.TaxCalculationResult{
		EmployeeID:            "emp-1",
		GrossPay:              d("5000"),
		TotalStateTaxWithheld: d("141.00"),
		StateBreakdowns: []domain.StateWithholdingBreakdown{
			{JurisdictionCode: "NJ", AllocatedIncome: d("3000.00"), TaxableIncome: d("3000.00"), TaxWithheld: d("42.00"), EffectiveRate: d("0.1075")},
			{JurisdictionCode: "IL", AllocatedIncome: d("2000.00"), TaxableIncome: d("2000.00"), TaxWithheld: d("99.00"), EffectiveRate: d("0.0495")},
		},
		FederalTax:            d("0.00"),
		SocialSecurityTax:     d("310.00"),
		MedicareTax:           d("72.50"),
		AdditionalWithholding: decimal.Zero,
		TotalDeductions:       d("523.50"),
		NetPay:                d("4476.50"),
		CalculatedAt:          at,
		CalculationDate:       at,
		RuleVersion:           "2024.1",
	}
}

func TestGetFormatterByName(t *testing.T) {
	for _, name := range []string{"console", "json", "csv"} {
		f := GetFormatterByName(name)
		require.NotNil(t, f, name)
		assert.Equal(t, name, f.Name())
	}
	assert.Nil(t, GetFormatterByName("html"))
	assert.Equal(t, []string{"console", "csv", "json"}, AvailableFormats())
}

func TestFormatterFunc(t *testing.T) {
	f := FormatterFunc{ID: "count", F: func(results []domain.TaxCalculationResult) ([]byte, error) {
		return []byte{byte('0' + len(results))}, nil
	}}
	assert.Equal(t, "count", f.Name())
	out, err := f.Format([]domain.TaxCalculationResult{sampleResult(), sampleResult()})
	require.NoError(t, err)
	assert.Equal(t, "2", string(out))
}

func TestWriteFormatted(t *testing.T) {
	chdirForTest(t, t.TempDir())
	f := FormatterFunc{ID: "x", F: func([]domain.TaxCalculationResult) ([]byte, error) { return []byte("hello"), nil }}

	name, err := WriteFormatted(f, nil, "txt")
	require.NoError(t, err)
	assert.Regexp(t, `^withholding_report_\d{8}_\d{6}\.txt$`, name)
	data, err := os.ReadFile(name)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(data))
}

func TestConsoleFormatter(t *testing.T) {
	out, err := ConsoleFormatter{ShowAssumptions: true}.Format([]domain.TaxCalculationResult{sampleResult()})
	require.NoError(t, err)
	text := string(out)

	assert.Contains(t, text, "WITHHOLDING SUMMARY: emp-1")
	assert.Contains(t, text, "rules 2024.1")
	assert.Contains(t, text, "$42.00")
	assert.Contains(t, text, "$99.00")
	assert.Contains(t, text, "$141.00")
	assert.Contains(t, text, "$4476.50")
	assert.Contains(t, text, "4.95% rate")
	assert.Contains(t, text, "ASSUMPTIONS")
	assert.NotContains(t, text, "Additional withholding")
}

func TestConsoleFormatterFlags(t *testing.T) {
	r := sampleResult()
	r.StateBreakdowns[0].ReciprocityApplied = true
	r.StateBreakdowns[1].ConfigurationGap = true
	r.NetPay = d("-1.00")

	out, err := ConsoleFormatter{}.Format([]domain.TaxCalculationResult{r})
	require.NoError(t, err)
	text := string(out)
	assert.Contains(t, text, "reciprocity")
	assert.Contains(t, text, "no rule")
	assert.Contains(t, text, "-$1.00")
	assert.Contains(t, text, "deductions exceed gross pay")
	assert.NotContains(t, text, "ASSUMPTIONS")
}

func TestJSONFormatter(t *testing.T) {
	out, err := JSONFormatter{}.Format([]domain.TaxCalculationResult{sampleResult()})
	require.NoError(t, err)

	var decoded []map[string]any
	require.NoError(t, json.Unmarshal(out, &decoded))
	require.Len(t, decoded, 1)
	assert.Equal(t, "emp-1", decoded[0]["employeeId"])
	assert.Len(t, decoded[0]["stateBreakdowns"], 2)

	empty, err := JSONFormatter{Indent: true}.Format(nil)
	require.NoError(t, err)
	assert.Equal(t, "[]\n", string(empty))
}

func TestCSVFormatter(t *testing.T) {
	out, err := CSVFormatter{}.Format([]domain.TaxCalculationResult{sampleResult()})
	require.NoError(t, err)

	rows, err := csv.NewReader(bytes.NewReader(out)).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, csvHeader, rows[0])
	assert.Equal(t, []string{"emp-1", "NJ", "3000.00", "3000.00", "42.00", "false", "false",
		"5000.00", "0.00", "310.00", "72.50", "0.00", "523.50", "4476.50", "2024-03-15T12:00:00Z"}, rows[1])
	assert.Equal(t, "IL", rows[2][1])
}

func TestGenerateReport(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, GenerateReport(&buf, []domain.TaxCalculationResult{sampleResult()}, "csv"))
	assert.Contains(t, buf.String(), "EmployeeID")

	err := GenerateReport(&buf, nil, "pdf")
	assert.EqualError(t, err, "unsupported format: pdf")
}

func TestFormatHelpers(t *testing.T) {
	assert.Equal(t, "$1234.50", FormatCurrency(d("1234.5")))
	assert.Equal(t, "-$3.00", FormatCurrency(d("-3")))
	assert.Equal(t, "3.07%", FormatRate(d("0.0307")))
	assert.Equal(t, "12.50%", FormatPercentage(d("12.5")))
}
