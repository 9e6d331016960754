package calculation

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rgehrsitz/withholding/internal/audit"
	"github.com/rgehrsitz/withholding/internal/domain"
	"github.com/shopspring/decimal"
)

// CalculationEngine orchestrates one withholding calculation: validate,
// apportion, compute state and payroll taxes, aggregate, then append the
// audit record. It holds no per-request state and is safe for concurrent
// use.
type CalculationEngine struct {
	Rules       *domain.RuleTable
	StateCalc   *StateWithholdingCalculator
	PayrollCalc *PayrollTaxCalculator
	Sink        audit.Sink
	Logger      Logger

	// StrictJurisdictions rejects requests naming a work jurisdiction that
	// has no rule entry instead of withholding nothing for it.
	StrictJurisdictions bool

	now func() time.Time
}

// Option configures a CalculationEngine.
type Option func(*CalculationEngine)

// WithLogger sets the engine logger.
func WithLogger(logger Logger) Option {
	return func(ce *CalculationEngine) { ce.SetLogger(logger) }
}

// WithStrictJurisdictions toggles strict jurisdiction checking.
func WithStrictJurisdictions(strict bool) Option {
	return func(ce *CalculationEngine) { ce.StrictJurisdictions = strict }
}

// WithClock overrides the time source used for calculatedAt.
func WithClock(now func() time.Time) Option {
	return func(ce *CalculationEngine) { ce.now = now }
}

// NewCalculationEngine creates an engine over an immutable rule table. A nil
// sink discards audit records.
func NewCalculationEngine(rules *domain.RuleTable, sink audit.Sink, opts ...Option) *CalculationEngine {
	if sink == nil {
		sink = audit.Discard{}
	}
	ce := &CalculationEngine{
		Rules:       rules,
		PayrollCalc: NewPayrollTaxCalculator(rules),
		Sink:        sink,
		Logger:      NopLogger{},
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(ce)
	}
	ce.StateCalc = NewStateWithholdingCalculator(rules, ce.Logger)
	return ce
}

// SetLogger sets the logger; nil installs a no-op logger.
func (ce *CalculationEngine) SetLogger(logger Logger) {
	if logger == nil {
		logger = NopLogger{}
	}
	ce.Logger = logger
	if ce.StateCalc != nil {
		ce.StateCalc.logger = logger
	}
}

// Validate checks the request invariants without computing anything.
func (ce *CalculationEngine) Validate(req domain.TaxCalculationRequest) error {
	_, err := ce.prepare(req)
	return err
}

// Compute runs the calculation without touching the audit sink. It is pure
// apart from reading the clock.
func (ce *CalculationEngine) Compute(req domain.TaxCalculationRequest) (*domain.TaxCalculationResult, error) {
	normalized, err := ce.prepare(req)
	if err != nil {
		return nil, err
	}
	return ce.compute(normalized), nil
}

// Calculate computes the result and appends its audit record. The result is
// only returned once the record is persisted; if the write fails the caller
// gets a *domain.PersistenceError even though the arithmetic succeeded.
func (ce *CalculationEngine) Calculate(ctx context.Context, req domain.TaxCalculationRequest, performedBy *string) (*domain.TaxCalculationResult, error) {
	normalized, err := ce.prepare(req)
	if err != nil {
		return nil, err
	}
	result := ce.compute(normalized)

	record := domain.NewAuditRecord(normalized, *result, performedBy, result.CalculatedAt)
	if err := ce.Sink.Append(ctx, record); err != nil {
		ce.Logger.Errorf("audit append failed for employee %s: %v", normalized.EmployeeID, err)
		return nil, &domain.PersistenceError{Err: err}
	}

	ce.Logger.Infof("withholding calculated for employee %s across %d location(s), audit %s",
		normalized.EmployeeID, len(normalized.WorkLocations), record.ID)
	return result, nil
}

// prepare normalises a copy of the request and validates it.
func (ce *CalculationEngine) prepare(req domain.TaxCalculationRequest) (domain.TaxCalculationRequest, error) {
	normalized := normalizeRequest(req)

	if err := validateRequired(normalized); err != nil {
		return normalized, err
	}
	if err := ValidateApportionment(normalized.WorkLocations); err != nil {
		return normalized, err
	}
	if ce.StrictJurisdictions {
		for _, code := range normalized.WorkJurisdictions() {
			if _, ok := ce.Rules.Jurisdiction(code); !ok {
				return normalized, domain.NewValidationError(fmt.Sprintf(domain.MsgUnknownJurisdictionFormat, code))
			}
		}
	}
	return normalized, nil
}

func (ce *CalculationEngine) compute(req domain.TaxCalculationRequest) *domain.TaxCalculationResult {
	now := ce.now().UTC()

	if _, ok := ce.PayrollCalc.FederalTaxCalc.StandardDeduction(req.FilingStatus); !ok {
		ce.Logger.Warnf("filing status %q not recognised, using %s standard deduction", req.FilingStatus, domain.DefaultFilingStatus)
	}

	breakdowns := make([]domain.StateWithholdingBreakdown, 0, len(req.WorkLocations))
	totalStateTax := decimal.Zero
	for _, loc := range req.WorkLocations {
		allocated := AllocateIncome(req.GrossPay, loc.Percentage)
		b := ce.StateCalc.Calculate(allocated, loc.JurisdictionCode, req.ResidenceState, req.FilingStatus, req.Allowances)
		breakdowns = append(breakdowns, b)
		totalStateTax = totalStateTax.Add(b.TaxWithheld)
	}

	payroll := ce.PayrollCalc.Calculate(req.GrossPay, req.FilingStatus, req.Allowances)

	totalTaxWithheld := totalStateTax.Add(req.AdditionalWithholding)
	totalDeductions := payroll.FederalTax.
		Add(totalTaxWithheld).
		Add(payroll.SocialSecurityTax).
		Add(payroll.MedicareTax)
	// Net pay is not clamped; a negative value flags a misconfiguration.
	netPay := req.GrossPay.Sub(totalDeductions)

	return &domain.TaxCalculationResult{
		EmployeeID:            req.EmployeeID,
		GrossPay:              req.GrossPay,
		TotalStateTaxWithheld: totalStateTax,
		StateBreakdowns:       breakdowns,
		FederalTax:            payroll.FederalTax,
		SocialSecurityTax:     payroll.SocialSecurityTax,
		MedicareTax:           payroll.MedicareTax,
		AdditionalWithholding: req.AdditionalWithholding,
		TotalDeductions:       totalDeductions,
		NetPay:                netPay,
		CalculatedAt:          now,
		CalculationDate:       now,
		RuleVersion:           ce.Rules.Metadata.Version,
	}
}

// normalizeRequest upper-cases jurisdiction codes and lower-cases the
// filing status on a copy of req. An empty filing status becomes the
// default.
func normalizeRequest(req domain.TaxCalculationRequest) domain.TaxCalculationRequest {
	out := req
	out.EmployeeID = strings.TrimSpace(req.EmployeeID)
	out.ResidenceState = normalizeCode(req.ResidenceState)
	out.FilingStatus = strings.ToLower(strings.TrimSpace(req.FilingStatus))
	if out.FilingStatus == "" {
		out.FilingStatus = domain.DefaultFilingStatus
	}
	out.WorkLocations = make([]domain.WorkLocationAllocation, len(req.WorkLocations))
	for i, loc := range req.WorkLocations {
		loc.JurisdictionCode = normalizeCode(loc.JurisdictionCode)
		out.WorkLocations[i] = loc
	}
	return out
}

func normalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

func validateRequired(req domain.TaxCalculationRequest) error {
	missing := domain.NewValidationError(domain.MsgMissingRequiredFields)
	switch {
	case req.EmployeeID == "":
		return missing.WithDetail("employeeId")
	case !req.GrossPay.IsPositive():
		return missing.WithDetail("grossPay must be positive")
	case req.PayPeriodStart.IsZero() || req.PayPeriodEnd.IsZero():
		return missing.WithDetail("payPeriodStart/payPeriodEnd")
	case len(req.WorkLocations) == 0:
		return missing.WithDetail("workLocations")
	case req.ResidenceState == "":
		return missing.WithDetail("residenceState")
	}
	for i, loc := range req.WorkLocations {
		if loc.JurisdictionCode == "" {
			return missing.WithDetail("workLocations[%d].jurisdictionCode", i)
		}
	}

	if req.PayPeriodEnd.Before(req.PayPeriodStart.Time) {
		return domain.NewValidationError(domain.MsgPayPeriodOrder)
	}
	if req.Allowances < 0 {
		return domain.NewValidationError(domain.MsgNegativeAllowances)
	}
	if req.AdditionalWithholding.IsNegative() {
		return domain.NewValidationError(domain.MsgNegativeAdditional)
	}
	return nil
}
