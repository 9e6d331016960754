package tuimsg

import (
	"github.com/rgehrsitz/withholding/internal/domain"
)

// RulesLoadedMsg signals the rule table has been loaded
type RulesLoadedMsg struct {
	Rules  *domain.RuleTable
	Source string
}

// ErrorMsg displays an error to the user
type ErrorMsg struct {
	Err error
}

// JurisdictionSelectedMsg signals a jurisdiction has been picked in the
// browser.
type JurisdictionSelectedMsg struct {
	Code string
}

// CalculationRequestedMsg asks the root model to run a calculation.
type CalculationRequestedMsg struct {
	Request domain.TaxCalculationRequest
}

// CalculationCompleteMsg signals a calculation has finished
type CalculationCompleteMsg struct {
	Result *domain.TaxCalculationResult
	Err    error
}
