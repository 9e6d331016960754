package calculation

import (
	"github.com/rgehrsitz/withholding/internal/domain"
	"github.com/shopspring/decimal"
)

// StateWithholdingCalculator computes withholding for one work location.
//
// It never fails: a jurisdiction missing from the rule table is treated as
// non-taxing and flagged as a configuration gap, so one bad entry cannot
// block payroll for the other locations on the same request.
type StateWithholdingCalculator struct {
	rules  *domain.RuleTable
	codes  []string
	logger Logger
}

// NewStateWithholdingCalculator creates a state calculator over rules
func NewStateWithholdingCalculator(rules *domain.RuleTable, logger Logger) *StateWithholdingCalculator {
	if logger == nil {
		logger = NopLogger{}
	}
	return &StateWithholdingCalculator{
		rules:  rules,
		codes:  rules.Codes(),
		logger: logger,
	}
}

// Calculate returns the withholding breakdown for income allocated to
// jurisdictionCode by an employee resident in residence.
func (s *StateWithholdingCalculator) Calculate(allocatedIncome decimal.Decimal, jurisdictionCode, residence, filingStatus string, allowances int) domain.StateWithholdingBreakdown {
	breakdown := domain.StateWithholdingBreakdown{
		JurisdictionCode: jurisdictionCode,
		AllocatedIncome:  allocatedIncome,
		TaxableIncome:    decimal.Zero,
		TaxWithheld:      decimal.Zero,
		EffectiveRate:    decimal.Zero,
	}

	rule, ok := s.rules.Jurisdiction(jurisdictionCode)
	if !ok {
		breakdown.ConfigurationGap = true
		if suggestion, found := SuggestJurisdiction(jurisdictionCode, s.codes); found {
			s.logger.Warnf("jurisdiction %q has no rule entry, withholding nothing (did you mean %q?)", jurisdictionCode, suggestion)
		} else {
			s.logger.Warnf("jurisdiction %q has no rule entry, withholding nothing", jurisdictionCode)
		}
		return breakdown
	}

	breakdown.EffectiveRate = rule.FlatRate

	// Under reciprocity the residence state withholds instead.
	if jurisdictionCode != residence && rule.HasReciprocityWith(residence) {
		breakdown.ReciprocityApplied = true
		s.logger.Debugf("reciprocity: %s residents exempt from %s withholding", residence, jurisdictionCode)
		return breakdown
	}

	allowanceAmount := s.rules.AllowanceUnit().Mul(decimal.NewFromInt(int64(allowances)))
	taxable := nonNegative(allocatedIncome.Sub(rule.StandardDeductionFor(filingStatus)).Sub(allowanceAmount))

	breakdown.TaxableIncome = taxable
	breakdown.TaxWithheld = EvaluateProgressive(taxable, rule.Brackets)
	return breakdown
}
