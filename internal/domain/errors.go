package domain

import "fmt"

// Caller-facing validation messages. The admin UI shows these verbatim.
const (
	MsgMissingRequiredFields     = "Missing required fields"
	MsgPercentagesMustTotal100   = "Work location percentages must total 100%"
	MsgPercentageOutOfRange      = "Work location percentage must be between 0 and 100"
	MsgNegativeAllowances        = "Allowances cannot be negative"
	MsgNegativeAdditional        = "Additional withholding cannot be negative"
	MsgPayPeriodOrder            = "Pay period end cannot precede pay period start"
	MsgUnknownJurisdictionFormat = "Unknown jurisdiction: %s"
)

// ValidationError reports a request that violates an input invariant. It is
// never retried and never audited.
type ValidationError struct {
	Message string
	// Detail carries diagnostic context for logs; it is not shown to callers.
	Detail string
}

// NewValidationError creates a ValidationError with the given caller message.
func NewValidationError(message string) *ValidationError {
	return &ValidationError{Message: message}
}

// WithDetail returns a copy of e carrying a diagnostic detail.
func (e *ValidationError) WithDetail(format string, args ...any) *ValidationError {
	return &ValidationError{Message: e.Message, Detail: fmt.Sprintf(format, args...)}
}

func (e *ValidationError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%s (%s)", e.Message, e.Detail)
	}
	return e.Message
}

// PersistenceError reports that a calculation succeeded numerically but its
// audit record could not be written. Callers must treat the result as
// unconfirmed.
type PersistenceError struct {
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("audit persistence failed: %v", e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}
