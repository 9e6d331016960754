package output

import (
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/rgehrsitz/withholding/internal/domain"
)

// Formatter renders calculation results in one output format.
type Formatter interface {
	Name() string
	Format(results []domain.TaxCalculationResult) ([]byte, error)
}

// FormatterFunc adapts a function to the Formatter interface.
type FormatterFunc struct {
	ID string
	F  func(results []domain.TaxCalculationResult) ([]byte, error)
}

func (f FormatterFunc) Name() string { return f.ID }

func (f FormatterFunc) Format(results []domain.TaxCalculationResult) ([]byte, error) {
	return f.F(results)
}

var formatters = map[string]Formatter{
	"console": ConsoleFormatter{},
	"json":    JSONFormatter{Indent: true},
	"csv":     CSVFormatter{},
}

// GetFormatterByName returns the formatter registered under name, or nil.
func GetFormatterByName(name string) Formatter {
	return formatters[name]
}

// AvailableFormats lists the registered format names.
func AvailableFormats() []string {
	names := make([]string, 0, len(formatters))
	for name := range formatters {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// WriteFormatted formats results and writes them to a timestamped file in
// the working directory, returning the file name.
func WriteFormatted(f Formatter, results []domain.TaxCalculationResult, ext string) (string, error) {
	data, err := f.Format(results)
	if err != nil {
		return "", err
	}
	filename := fmt.Sprintf("withholding_report_%s.%s", time.Now().Format("20060102_150405"), ext)
	if err := os.WriteFile(filename, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", filename, err)
	}
	return filename, nil
}
