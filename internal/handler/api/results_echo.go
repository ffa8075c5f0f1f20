package api

import (
	"RiskScan/internal/domain/models"
	"RiskScan/internal/services/flagging"
	"RiskScan/internal/services/scoring"
	"RiskScan/internal/usecase"
	xhttp "RiskScan/pkg/http"
	xlogger "RiskScan/pkg/logger"

	"github.com/labstack/echo/v4"
)

// ResultsEchoHandler serves a completed run snapshot over HTTP. It is
// read-only; the snapshot never changes after the run.
type ResultsEchoHandler struct {
	logger *xlogger.Logger
	result *usecase.Result
}

func NewResultsEchoHandler(logger *xlogger.Logger, result *usecase.Result) *ResultsEchoHandler {
	return &ResultsEchoHandler{logger: logger, result: result}
}

func (h *ResultsEchoHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api")
	g.GET("/risk/summary", h.RiskSummary)
	g.GET("/flags/summary", h.FlagSummary)
	g.GET("/customers", h.Customers)
	g.GET("/customers/high-risk", h.HighRisk)
	g.GET("/transactions/flagged", h.Flagged)
}

func (h *ResultsEchoHandler) RiskSummary(c echo.Context) error {
	return xhttp.SuccessResponse(c, h.result.RiskSummary)
}

func (h *ResultsEchoHandler) FlagSummary(c echo.Context) error {
	return xhttp.SuccessResponse(c, h.result.FlagSummary)
}

func (h *ResultsEchoHandler) Customers(c echo.Context) error {
	return xhttp.ListResponse(c, scoring.Projection(h.result.Customers), int64(len(h.result.Customers)))
}

func (h *ResultsEchoHandler) HighRisk(c echo.Context) error {
	req := &models.HighRiskRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	rows := scoring.HighRisk(h.result.Customers)
	total := int64(len(rows))
	if len(rows) > req.Limit {
		rows = rows[:req.Limit]
	}
	return xhttp.ListResponse(c, scoring.Projection(rows), total)
}

func (h *ResultsEchoHandler) Flagged(c echo.Context) error {
	req := &models.FlaggedTransactionsRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	rows := flagging.Flagged(h.result.Flagged, req.Limit)
	return xhttp.ListResponse(c, rows, int64(flagging.FlaggedCount(h.result.Flagged)))
}
