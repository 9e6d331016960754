package output

import (
	"encoding/json"

	"github.com/rgehrsitz/withholding/internal/domain"
)

// JSONFormatter emits the results as a JSON array using the HTTP field names.
type JSONFormatter struct {
	Indent bool
}

func (j JSONFormatter) Name() string { return "json" }

func (j JSONFormatter) Format(results []domain.TaxCalculationResult) ([]byte, error) {
	if results == nil {
		results = []domain.TaxCalculationResult{}
	}
	if j.Indent {
		data, err := json.MarshalIndent(results, "", "  ")
		if err != nil {
			return nil, err
		}
		return append(data, '\n'), nil
	}
	return json.Marshal(results)
}
