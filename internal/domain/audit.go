package domain

import (
	"slices"
	"time"

	"github.com/google/uuid"
)

// ActionTypeMultiStateTaxCalculation tags audit records written by the
// withholding engine.
const ActionTypeMultiStateTaxCalculation = "multi_state_tax_calculation"

// AuditRecord is the append-only compliance record of one completed
// calculation. It carries the full request and result so the computation
// can be reproduced.
type AuditRecord struct {
	ID             uuid.UUID             `json:"id"`
	EmployeeID     string                `json:"employeeId"`
	ActionType     string                `json:"actionType"`
	Request        TaxCalculationRequest `json:"request"`
	Result         TaxCalculationResult  `json:"result"`
	StatesInvolved []string              `json:"statesInvolved"`
	PerformedBy    *string               `json:"performedBy"` // nil means the system
	Timestamp      time.Time             `json:"timestamp"`
}

// NewAuditRecord builds the record for a completed calculation.
func NewAuditRecord(req TaxCalculationRequest, result TaxCalculationResult, performedBy *string, at time.Time) AuditRecord {
	return AuditRecord{
		ID:             uuid.New(),
		EmployeeID:     req.EmployeeID,
		ActionType:     ActionTypeMultiStateTaxCalculation,
		Request:        req.Clone(),
		Result:         result.Clone(),
		StatesInvolved: req.WorkJurisdictions(),
		PerformedBy:    clonePerformedBy(performedBy),
		Timestamp:      at.UTC(),
	}
}

// Clone returns a copy of r that shares no slices or pointers with it.
func (r AuditRecord) Clone() AuditRecord {
	out := r
	out.Request = r.Request.Clone()
	out.Result = r.Result.Clone()
	out.StatesInvolved = slices.Clone(r.StatesInvolved)
	out.PerformedBy = clonePerformedBy(r.PerformedBy)
	return out
}

func clonePerformedBy(p *string) *string {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

// PerformedByLabel returns the actor for display, "system" when unset.
func (r AuditRecord) PerformedByLabel() string {
	if r.PerformedBy == nil || *r.PerformedBy == "" {
		return "system"
	}
	return *r.PerformedBy
}
