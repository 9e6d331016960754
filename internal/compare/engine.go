package compare

import (
	"context"
	"fmt"

	"github.com/rgehrsitz/withholding/internal/calculation"
	"github.com/rgehrsitz/withholding/internal/domain"
)

// CompareEngine runs one request against several rule tables. Calculations
// are computed only; nothing is audited.
type CompareEngine struct {
	MetricsCalculator *MetricsCalculator
	engineOptions     []calculation.Option
}

// NewCompareEngine creates a new comparison engine. The options are applied
// to every calculation engine it builds.
func NewCompareEngine(opts ...calculation.Option) *CompareEngine {
	return &CompareEngine{
		MetricsCalculator: NewMetricsCalculator(),
		engineOptions:     opts,
	}
}

// Compare calculates req against base and each alternative.
func (ce *CompareEngine) Compare(
	ctx context.Context,
	req domain.TaxCalculationRequest,
	base RuleSet,
	alternatives []RuleSet,
) (*ComparisonSet, error) {
	if base.Rules == nil {
		return nil, fmt.Errorf("base rule set %q has no rules", base.Name)
	}

	baseCalc, err := ce.run(req, base)
	if err != nil {
		return nil, fmt.Errorf("failed to calculate base %s: %w", base.Name, err)
	}
	baseResult := ce.MetricsCalculator.CalculateMetrics(base.Name, baseCalc)

	results := make([]ComparisonResult, 0, len(alternatives))
	for _, alt := range alternatives {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if alt.Rules == nil {
			return nil, fmt.Errorf("rule set %q has no rules", alt.Name)
		}
		altCalc, err := ce.run(req, alt)
		if err != nil {
			return nil, fmt.Errorf("failed to calculate %s: %w", alt.Name, err)
		}
		altResult := ce.MetricsCalculator.CalculateMetrics(alt.Name, altCalc)
		results = append(results, ce.MetricsCalculator.CalculateComparison(altResult, baseResult))
	}

	compSet := &ComparisonSet{
		EmployeeID:         baseCalc.EmployeeID,
		BaseName:           base.Name,
		BaseResult:         &baseResult,
		AlternativeResults: results,
	}
	compSet.Recommendations = GenerateRecommendations(compSet)
	return compSet, nil
}

func (ce *CompareEngine) run(req domain.TaxCalculationRequest, rs RuleSet) (*domain.TaxCalculationResult, error) {
	engine := calculation.NewCalculationEngine(rs.Rules, nil, ce.engineOptions...)
	return engine.Compute(req)
}
