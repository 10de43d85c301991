package server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"opsflow/internal/auth"
	"opsflow/internal/platform/config"
	"opsflow/internal/platform/metrics"
	audithandler "opsflow/internal/transport/http/handlers/audit"
	contactshandler "opsflow/internal/transport/http/handlers/contacts"
	credentialshandler "opsflow/internal/transport/http/handlers/credentials"
	documentshandler "opsflow/internal/transport/http/handlers/documents"
	employeeshandler "opsflow/internal/transport/http/handlers/employees"
	foldershandler "opsflow/internal/transport/http/handlers/folders"
	inductionshandler "opsflow/internal/transport/http/handlers/inductions"
	jobshandler "opsflow/internal/transport/http/handlers/jobs"
	licenseshandler "opsflow/internal/transport/http/handlers/licenses"
	reportshandler "opsflow/internal/transport/http/handlers/reports"
	systemhandler "opsflow/internal/transport/http/handlers/system"
	taskshandler "opsflow/internal/transport/http/handlers/tasks"
)

const testSecret = "router-test-secret"

type okPinger struct{}

func (okPinger) Ping(context.Context) error { return nil }

// testRouter wires handlers without services; only middleware paths that
// reject before reaching a handler are exercised.
func testRouter(cfg config.Config) http.Handler {
	collector := metrics.New()
	return newRouter(cfg, collector, routes{
		system:      systemhandler.NewHandler(okPinger{}, collector.Handler()),
		employees:   employeeshandler.NewHandler(nil, nil),
		folders:     foldershandler.NewHandler(nil, nil, nil),
		documents:   documentshandler.NewHandler(nil, nil),
		contacts:    contactshandler.NewHandler(nil, nil),
		licenses:    licenseshandler.NewHandler(nil, nil),
		inductions:  inductionshandler.NewHandler(nil, nil),
		credentials: credentialshandler.NewHandler(nil, nil),
		tasks:       taskshandler.NewHandler(nil, nil),
		reports:     reportshandler.NewHandler(nil),
		audit:       audithandler.NewHandler(nil),
		jobs:        jobshandler.NewHandler(nil),
	})
}

func testConfig() config.Config {
	return config.Config{
		JWTSecret:          testSecret,
		MaxBodyBytes:       4096,
		MaxUploadBytes:     8192,
		RateLimitPerMinute: 100,
	}
}

func bearer(t *testing.T, role string) string {
	t.Helper()
	claims := auth.Claims{Role: role}
	claims.Subject = "user-" + role
	token, err := auth.GenerateToken(testSecret, claims, time.Hour)
	require.NoError(t, err)
	return "Bearer " + token
}

func TestProbesAreUnauthenticated(t *testing.T) {
	router := testRouter(testConfig())

	for _, path := range []string{"/healthz", "/readyz", "/metrics"} {
		res := httptest.NewRecorder()
		router.ServeHTTP(res, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusOK, res.Code, path)
		assert.NotEmpty(t, res.Header().Get("X-Request-ID"), path)
		assert.Equal(t, "nosniff", res.Header().Get("X-Content-Type-Options"), path)
	}
}

func TestAPIRequiresToken(t *testing.T) {
	router := testRouter(testConfig())

	res := httptest.NewRecorder()
	router.ServeHTTP(res, httptest.NewRequest(http.MethodGet, "/api/v1/employees", nil))

	require.Equal(t, http.StatusUnauthorized, res.Code)
	assert.Contains(t, res.Body.String(), `"code":"unauthorized"`)
	assert.Contains(t, res.Body.String(), `"requestId":"`)
}

func TestRolesAreEnforced(t *testing.T) {
	router := testRouter(testConfig())

	cases := []struct {
		method, path string
	}{
		{http.MethodGet, "/api/v1/credentials"},
		{http.MethodGet, "/api/v1/audit"},
		{http.MethodPost, "/api/v1/jobs/status-refresh"},
		{http.MethodPost, "/api/v1/documents/batch"},
		{http.MethodDelete, "/api/v1/employees/6c5b4a39-2817-4f6e-9d5c-4b3a29180f7e/emergency-contacts/6c5b4a39-2817-4f6e-9d5c-4b3a29180f7f"},
	}
	for _, tc := range cases {
		req := httptest.NewRequest(tc.method, tc.path, strings.NewReader(`{}`))
		req.Header.Set("Authorization", bearer(t, auth.RoleStaff))
		res := httptest.NewRecorder()
		router.ServeHTTP(res, req)
		assert.Equal(t, http.StatusForbidden, res.Code, tc.path)
	}
}

func TestRateLimitReturns429(t *testing.T) {
	cfg := testConfig()
	cfg.RateLimitPerMinute = 2
	router := testRouter(cfg)
	token := bearer(t, auth.RoleStaff)

	var last *httptest.ResponseRecorder
	for range 3 {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/audit", nil)
		req.Header.Set("Authorization", token)
		last = httptest.NewRecorder()
		router.ServeHTTP(last, req)
	}
	require.Equal(t, http.StatusTooManyRequests, last.Code)
	assert.NotEmpty(t, last.Header().Get("Retry-After"))
}

func TestAuthDisabledActsAsAdmin(t *testing.T) {
	cfg := testConfig()
	cfg.AuthDisabled = true
	router := testRouter(cfg)

	res := httptest.NewRecorder()
	router.ServeHTTP(res, httptest.NewRequest(http.MethodGet, "/api/v1/nowhere", nil))

	assert.Equal(t, http.StatusNotFound, res.Code)
}
