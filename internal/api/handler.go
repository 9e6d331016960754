package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rgehrsitz/withholding/internal/domain"
	"go.uber.org/zap"
)

// Caller-facing messages for failures that are not validation errors.
const (
	MsgInvalidRequestBody = "Invalid request body"
	MsgInternalError      = "Internal server error"
	msgAuditUnavailable   = "Calculation could not be recorded; retry the request"
)

// WithholdingHandler serves the withholding endpoints.
type WithholdingHandler struct {
	engine Calculator
	rules  *domain.RuleTable
	logger *zap.Logger
}

// NewWithholdingHandler creates a handler. rules backs the read-only
// jurisdiction listing and health response.
func NewWithholdingHandler(engine Calculator, rules *domain.RuleTable, logger *zap.Logger) *WithholdingHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WithholdingHandler{engine: engine, rules: rules, logger: logger}
}

// CalculateMultiStateTax handles POST /calculate-multi-state-tax.
func (h *WithholdingHandler) CalculateMultiStateTax(c *gin.Context) {
	var req domain.TaxCalculationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Debug("malformed request body",
			zap.String("correlation_id", GetCorrelationID(c)),
			zap.Error(err))
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: MsgInvalidRequestBody})
		return
	}

	result, err := h.engine.Calculate(c.Request.Context(), req, performedBy(c))
	if err != nil {
		h.handleError(c, req, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

func (h *WithholdingHandler) handleError(c *gin.Context, req domain.TaxCalculationRequest, err error) {
	fields := []zap.Field{
		zap.String("correlation_id", GetCorrelationID(c)),
		zap.String("employee_id", req.EmployeeID),
		zap.Error(err),
	}

	var validationErr *domain.ValidationError
	if errors.As(err, &validationErr) {
		h.logger.Info("withholding request rejected", fields...)
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: validationErr.Message})
		return
	}

	var persistenceErr *domain.PersistenceError
	if errors.As(err, &persistenceErr) {
		h.logger.Error("withholding audit persistence failed", fields...)
		c.JSON(http.StatusInternalServerError, InternalErrorResponse{Error: MsgInternalError, Message: msgAuditUnavailable})
		return
	}

	h.logger.Error("withholding calculation failed", fields...)
	c.JSON(http.StatusInternalServerError, InternalErrorResponse{Error: MsgInternalError, Message: err.Error()})
}

// Preflight answers OPTIONS requests that carry no Origin header. CORS
// preflights are answered by the cors middleware before reaching here; this
// sends the same permissive headers so both paths look alike.
func (h *WithholdingHandler) Preflight(c *gin.Context) {
	c.Header("Access-Control-Allow-Origin", "*")
	c.Header("Access-Control-Allow-Methods", strings.Join(corsAllowMethods, ","))
	c.Header("Access-Control-Allow-Headers", strings.Join(corsAllowHeaders, ","))
	c.String(http.StatusOK, "ok")
}

// Health handles GET /health.
func (h *WithholdingHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{Status: "ok", RuleVersion: h.rules.Metadata.Version})
}

// ListJurisdictions handles GET /api/v1/jurisdictions.
func (h *WithholdingHandler) ListJurisdictions(c *gin.Context) {
	codes := h.rules.Codes()
	out := make([]JurisdictionSummary, 0, len(codes))
	for _, code := range codes {
		rule, _ := h.rules.Jurisdiction(code)
		partners := rule.ReciprocityPartners
		if partners == nil {
			partners = []string{}
		}
		out = append(out, JurisdictionSummary{
			Code:                rule.Code,
			Name:                rule.Name,
			FlatRate:            rule.FlatRate,
			StandardDeduction:   rule.StandardDeduction,
			Progressive:         len(rule.Brackets) > 1,
			LeviesIncomeTax:     rule.LeviesIncomeTax(),
			ReciprocityPartners: partners,
		})
	}
	c.JSON(http.StatusOK, JurisdictionsResponse{RuleVersion: h.rules.Metadata.Version, Jurisdictions: out})
}

func performedBy(c *gin.Context) *string {
	actor := strings.TrimSpace(c.GetHeader(PerformedByHeader))
	if actor == "" {
		return nil
	}
	return &actor
}
