package reportshandler

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"opsflow/internal/auth"
	"opsflow/internal/domain/compliance"
	"opsflow/internal/domain/reports"
	"opsflow/internal/requestctx"
)

type fakeService struct {
	report *reports.ComplianceReport
	err    error
}

func (f fakeService) Compliance(context.Context) (*reports.ComplianceReport, error) {
	return f.report, f.err
}

func sampleReport() *reports.ComplianceReport {
	now := time.Date(2026, 10, 19, 9, 0, 0, 0, time.UTC)
	return reports.BuildCompliance(nil, nil, compliance.Policy{ThresholdDays: 30}, now)
}

func get(svc Service, role, target string) *httptest.ResponseRecorder {
	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			ctx := requestctx.WithActor(req.Context(), requestctx.Actor{Subject: "u1", Role: role})
			next.ServeHTTP(w, req.WithContext(ctx))
		})
	})
	NewHandler(svc).RegisterRoutes(r)
	res := httptest.NewRecorder()
	r.ServeHTTP(res, httptest.NewRequest(http.MethodGet, target, nil))
	return res
}

func TestComplianceJSON(t *testing.T) {
	res := get(fakeService{report: sampleReport()}, auth.RoleHR, "/reports/compliance")

	require.Equal(t, http.StatusOK, res.Code)
	assert.Equal(t, "application/json", res.Header().Get("Content-Type"))
	assert.Contains(t, res.Body.String(), `"thresholdDays":30`)
}

func TestCompliancePDF(t *testing.T) {
	res := get(fakeService{report: sampleReport()}, auth.RoleAdmin, "/reports/compliance.pdf")

	require.Equal(t, http.StatusOK, res.Code)
	assert.Equal(t, "application/pdf", res.Header().Get("Content-Type"))
	assert.Contains(t, res.Header().Get("Content-Disposition"), "compliance-2026-10-19.pdf")
	assert.True(t, bytes.HasPrefix(res.Body.Bytes(), []byte("%PDF-")))
}

func TestComplianceForbiddenForStaff(t *testing.T) {
	res := get(fakeService{report: sampleReport()}, auth.RoleStaff, "/reports/compliance")
	assert.Equal(t, http.StatusForbidden, res.Code)
}

func TestComplianceFailureIsGeneric(t *testing.T) {
	res := get(fakeService{err: errors.New("pg: connection refused")}, auth.RoleHR, "/reports/compliance.pdf")

	require.Equal(t, http.StatusInternalServerError, res.Code)
	assert.NotContains(t, res.Body.String(), "connection refused")
}
