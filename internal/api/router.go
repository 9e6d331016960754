package api

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Route paths.
const (
	CalculatePath     = "/calculate-multi-state-tax"
	CalculateV1Path   = "/api/v1/withholding/calculate"
	JurisdictionsPath = "/api/v1/jurisdictions"
	HealthPath        = "/health"
)

// NewRouter wires the withholding routes and middleware onto a new gin
// engine.
func NewRouter(handler *WithholdingHandler, log *zap.Logger) *gin.Engine {
	if log == nil {
		log = zap.NewNop()
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(CorrelationIDMiddleware())
	r.Use(RequestLogger(log))
	r.Use(configureCORS())

	r.GET(HealthPath, handler.Health)

	for _, path := range []string{CalculatePath, CalculateV1Path} {
		r.POST(path, handler.CalculateMultiStateTax)
		r.OPTIONS(path, handler.Preflight)
	}

	r.GET(JurisdictionsPath, handler.ListJurisdictions)

	return r
}
