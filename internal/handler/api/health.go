package api

import (
	"context"
	"net/http"
	"strings"
	"time"

	"FxPulse/internal/domain/models"
	xhttp "FxPulse/pkg/http"
	xlogger "FxPulse/pkg/logger"

	"github.com/labstack/echo/v4"
)

// SummarySource exposes the last completed cycle.
type SummarySource interface {
	Last() *models.CycleSummary
}

// Pinger reports backend reachability.
type Pinger interface {
	Health(ctx context.Context) error
}

// OpsHandler serves health and the latest scores.
type OpsHandler struct {
	logger  *xlogger.Logger
	cycles  SummarySource
	backend Pinger
}

// NewOpsHandler creates the handler. backend may be nil.
func NewOpsHandler(logger *xlogger.Logger, cycles SummarySource, backend Pinger) *OpsHandler {
	return &OpsHandler{logger: logger, cycles: cycles, backend: backend}
}

func (h *OpsHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", h.Health)
	g := e.Group("/api")
	g.GET("/strength", h.Strength)
	g.GET("/strength/:currency", h.Strength)
	g.GET("/power", h.Power)
}

type healthBody struct {
	Status    string               `json:"status"`
	Backend   string               `json:"backend,omitempty"`
	LastCycle *models.CycleSummary `json:"last_cycle,omitempty"`
}

// Health returns 503 until the first cycle completes or while the backend is unreachable.
func (h *OpsHandler) Health(c echo.Context) error {
	body := healthBody{Status: "ok", LastCycle: h.cycles.Last()}

	if h.backend != nil {
		ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
		defer cancel()
		if err := h.backend.Health(ctx); err != nil {
			h.logger.Warn("backend health check failed", xlogger.Error(err))
			body.Status = "degraded"
			body.Backend = err.Error()
			return xhttp.UnavailableResponse(c, body)
		}
	}
	if body.LastCycle == nil {
		body.Status = "starting"
		return xhttp.UnavailableResponse(c, body)
	}
	return xhttp.SuccessResponse(c, body)
}

// Strength returns the last strength results, optionally for one currency.
func (h *OpsHandler) Strength(c echo.Context) error {
	sum := h.cycles.Last()
	if sum == nil {
		return xhttp.UnavailableResponse(c, nil)
	}
	code := strings.ToUpper(c.Param("currency"))
	if code == "" {
		return xhttp.SuccessResponse(c, sum.Strength)
	}
	if !models.Currency(code).Valid() {
		return xhttp.DataResponse(c, http.StatusBadRequest, map[string]string{"currency": "unsupported currency " + code})
	}
	for _, r := range sum.Strength {
		if string(r.Currency) == code {
			return xhttp.SuccessResponse(c, r)
		}
	}
	return xhttp.DataResponse(c, http.StatusNotFound, nil)
}

// Power returns the last ranking, strongest first.
func (h *OpsHandler) Power(c echo.Context) error {
	sum := h.cycles.Last()
	if sum == nil {
		return xhttp.UnavailableResponse(c, nil)
	}
	return xhttp.SuccessResponse(c, sum.Power)
}
