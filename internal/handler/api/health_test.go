package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"FxPulse/internal/domain/models"
	xlogger "FxPulse/pkg/logger"

	"github.com/labstack/echo/v4"
)

type fixedSummary struct{ sum *models.CycleSummary }

func (f fixedSummary) Last() *models.CycleSummary { return f.sum }

type pinger struct{ err error }

func (p pinger) Health(context.Context) error { return p.err }

func serve(t *testing.T, h *OpsHandler, path string) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	h.RegisterRoutes(e)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func summary() *models.CycleSummary {
	return &models.CycleSummary{
		Results:  []models.CollectionResult{{Source: "fred", Success: true, EventCount: 3}},
		Strength: []models.CurrencyStrengthResult{{Currency: models.USD, StrengthScore: 61}, {Currency: models.EUR, StrengthScore: 44}},
		Power:    []models.CurrencyPowerScore{{Currency: models.USD, Rank: 1}},
	}
}

func TestHealth(t *testing.T) {
	tests := []struct {
		name       string
		sum        *models.CycleSummary
		backendErr error
		wantCode   int
		wantStatus string
	}{
		{"before first cycle", nil, nil, http.StatusServiceUnavailable, "starting"},
		{"healthy", summary(), nil, http.StatusOK, "ok"},
		{"backend down", summary(), errors.New("dial tcp: refused"), http.StatusServiceUnavailable, "degraded"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewOpsHandler(xlogger.Nop(), fixedSummary{tt.sum}, pinger{tt.backendErr})
			rec := serve(t, h, "/healthz")
			if rec.Code != tt.wantCode {
				t.Fatalf("code = %d, want %d", rec.Code, tt.wantCode)
			}
			var body struct {
				Data healthBody `json:"data"`
			}
			if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
				t.Fatal(err)
			}
			if body.Data.Status != tt.wantStatus {
				t.Fatalf("status = %q, want %q", body.Data.Status, tt.wantStatus)
			}
		})
	}
}

func TestStrength(t *testing.T) {
	h := NewOpsHandler(xlogger.Nop(), fixedSummary{summary()}, nil)

	tests := []struct {
		path     string
		wantCode int
	}{
		{"/api/strength", http.StatusOK},
		{"/api/strength/eur", http.StatusOK},
		{"/api/strength/XXX", http.StatusBadRequest},
		{"/api/strength/JPY", http.StatusNotFound},
		{"/api/power", http.StatusOK},
	}
	for _, tt := range tests {
		if rec := serve(t, h, tt.path); rec.Code != tt.wantCode {
			t.Fatalf("GET %s = %d, want %d", tt.path, rec.Code, tt.wantCode)
		}
	}

	rec := serve(t, h, "/api/strength/eur")
	var body struct {
		Data models.CurrencyStrengthResult `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if body.Data.Currency != models.EUR || body.Data.StrengthScore != 44 {
		t.Fatalf("EUR body = %+v", body.Data)
	}
}

func TestStrengthBeforeFirstCycle(t *testing.T) {
	h := NewOpsHandler(xlogger.Nop(), fixedSummary{}, nil)
	if rec := serve(t, h, "/api/power"); rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("code = %d, want 503", rec.Code)
	}
}
