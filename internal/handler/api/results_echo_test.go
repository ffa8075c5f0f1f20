package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"RiskScan/internal/domain/models"
	"RiskScan/internal/usecase"
	applogger "RiskScan/pkg/logger"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) *echo.Echo {
	t.Helper()
	result := &usecase.Result{
		Customers: []models.CustomerRisk{
			{NameOrig: "C1", CompositeZScore: 1.8, RiskScore: 100, RiskBand: models.BandCritical, IsAnomaly: true},
			{NameOrig: "C2", CompositeZScore: 0.9, RiskScore: 60, RiskBand: models.BandHigh},
			{NameOrig: "C3", CompositeZScore: 0.2, RiskScore: 10, RiskBand: models.BandLow},
		},
		Flagged: []models.FlaggedTransaction{
			{FeatureRow: models.FeatureRow{TransactionRow: models.TransactionRow{NameOrig: "C1", Step: 1}}, RiskScore: 100, RiskBand: models.BandCritical, IsFlagged: true},
			{FeatureRow: models.FeatureRow{TransactionRow: models.TransactionRow{NameOrig: "C2", Step: 1}}, RiskScore: 60, RiskBand: models.BandHigh, IsFlagged: true},
			{FeatureRow: models.FeatureRow{TransactionRow: models.TransactionRow{NameOrig: "C3", Step: 1}}, RiskScore: 10, RiskBand: models.BandLow},
		},
		RiskSummary: models.RiskSummary{TotalCustomers: 3, Anomalies: 1},
		FlagSummary: models.FlagSummary{TotalTransactions: 3, FlaggedTransactions: 2, RiskThresholdUsed: 50},
	}

	e := echo.New()
	NewResultsEchoHandler(applogger.Nop(), result).RegisterRoutes(e)
	return e
}

func doGet(t *testing.T, e *echo.Echo, path string) (int, map[string]json.RawMessage) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	var body map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return rec.Code, body
}

func TestRiskSummaryEndpoint(t *testing.T) {
	e := newTestServer(t)

	code, body := doGet(t, e, "/api/risk/summary")
	require.Equal(t, http.StatusOK, code)

	var summary models.RiskSummary
	require.NoError(t, json.Unmarshal(body["data"], &summary))
	assert.Equal(t, 3, summary.TotalCustomers)
	assert.Equal(t, 1, summary.Anomalies)
}

func TestFlagSummaryEndpoint(t *testing.T) {
	e := newTestServer(t)

	code, body := doGet(t, e, "/api/flags/summary")
	require.Equal(t, http.StatusOK, code)

	var summary models.FlagSummary
	require.NoError(t, json.Unmarshal(body["data"], &summary))
	assert.Equal(t, 2, summary.FlaggedTransactions)
}

func TestCustomersEndpointReturnsProjection(t *testing.T) {
	e := newTestServer(t)

	code, body := doGet(t, e, "/api/customers")
	require.Equal(t, http.StatusOK, code)

	var list struct {
		Rows  []models.CustomerScore `json:"rows"`
		Total int64                  `json:"total"`
	}
	require.NoError(t, json.Unmarshal(body["data"], &list))
	assert.Equal(t, int64(3), list.Total)
	require.Len(t, list.Rows, 3)
	assert.Equal(t, "C1", list.Rows[0].NameOrig)
}

func TestHighRiskEndpoint(t *testing.T) {
	e := newTestServer(t)

	code, body := doGet(t, e, "/api/customers/high-risk")
	require.Equal(t, http.StatusOK, code)

	var list struct {
		Rows  []models.CustomerScore `json:"rows"`
		Total int64                  `json:"total"`
	}
	require.NoError(t, json.Unmarshal(body["data"], &list))
	assert.Equal(t, int64(2), list.Total)
	require.Len(t, list.Rows, 2)
	assert.Equal(t, "C1", list.Rows[0].NameOrig, "sorted by score desc")
	assert.Equal(t, "C2", list.Rows[1].NameOrig)
}

func TestHighRiskEndpointLimit(t *testing.T) {
	e := newTestServer(t)

	code, body := doGet(t, e, "/api/customers/high-risk?limit=1")
	require.Equal(t, http.StatusOK, code)

	var list struct {
		Rows  []models.CustomerScore `json:"rows"`
		Total int64                  `json:"total"`
	}
	require.NoError(t, json.Unmarshal(body["data"], &list))
	assert.Equal(t, int64(2), list.Total, "total reflects the full high-risk set")
	assert.Len(t, list.Rows, 1)
}

func TestFlaggedEndpoint(t *testing.T) {
	e := newTestServer(t)

	code, body := doGet(t, e, "/api/transactions/flagged")
	require.Equal(t, http.StatusOK, code)

	var list struct {
		Rows  []models.FlaggedTransaction `json:"rows"`
		Total int64                       `json:"total"`
	}
	require.NoError(t, json.Unmarshal(body["data"], &list))
	assert.Equal(t, int64(2), list.Total)
	require.Len(t, list.Rows, 2)
	for _, r := range list.Rows {
		assert.True(t, r.IsFlagged)
	}
}

func TestFlaggedEndpointRejectsBadLimit(t *testing.T) {
	e := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/transactions/flagged?limit=-1", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Status int `json:"status"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, http.StatusBadRequest, body.Status)
}
