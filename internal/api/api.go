// Package api exposes the withholding engine over HTTP with gin.
package api

import (
	"context"

	"github.com/rgehrsitz/withholding/internal/domain"
	"github.com/shopspring/decimal"
)

// Calculator is the engine surface the handlers need.
type Calculator interface {
	Calculate(ctx context.Context, req domain.TaxCalculationRequest, performedBy *string) (*domain.TaxCalculationResult, error)
}

// ErrorResponse is the body of a 4xx response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// InternalErrorResponse is the body of a 5xx response.
type InternalErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// HealthResponse reports liveness and the loaded rule version.
type HealthResponse struct {
	Status      string `json:"status"`
	RuleVersion string `json:"ruleVersion"`
}

// JurisdictionSummary is the admin UI's read-only view of one rule entry.
type JurisdictionSummary struct {
	Code                string          `json:"code"`
	Name                string          `json:"name"`
	FlatRate            decimal.Decimal `json:"flatRate"`
	StandardDeduction   decimal.Decimal `json:"standardDeduction"`
	Progressive         bool            `json:"progressive"`
	LeviesIncomeTax     bool            `json:"leviesIncomeTax"`
	ReciprocityPartners []string        `json:"reciprocityPartners"`
}

// JurisdictionsResponse lists every configured jurisdiction.
type JurisdictionsResponse struct {
	RuleVersion   string                `json:"ruleVersion"`
	Jurisdictions []JurisdictionSummary `json:"jurisdictions"`
}
