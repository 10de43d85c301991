package reportshandler

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"opsflow/internal/auth"
	"opsflow/internal/domain/reports"
	"opsflow/internal/transport/http/api"
	"opsflow/internal/transport/http/middleware"
)

type Service interface {
	Compliance(ctx context.Context) (*reports.ComplianceReport, error)
}

type Handler struct {
	Service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{Service: service}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/reports", func(r chi.Router) {
		r.Use(middleware.RequirePermission(auth.PermReportsRead))
		r.Get("/compliance", h.handleCompliance)
		r.Get("/compliance.pdf", h.handleCompliancePDF)
	})
}

func (h *Handler) handleCompliance(w http.ResponseWriter, r *http.Request) {
	report, err := h.Service.Compliance(r.Context())
	if err != nil {
		api.FailError(w, r, err)
		return
	}
	api.Success(w, report)
}

// handleCompliancePDF renders into memory first so a rendering failure can
// still be answered with a JSON error.
func (h *Handler) handleCompliancePDF(w http.ResponseWriter, r *http.Request) {
	report, err := h.Service.Compliance(r.Context())
	if err != nil {
		api.FailError(w, r, err)
		return
	}
	var buf bytes.Buffer
	if err := reports.RenderCompliancePDF(&buf, report); err != nil {
		api.FailError(w, r, fmt.Errorf("render compliance pdf: %w", err))
		return
	}
	filename := "compliance-" + report.GeneratedAt.UTC().Format("2006-01-02") + ".pdf"
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", "attachment; filename="+filename)
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	if _, err := buf.WriteTo(w); err != nil {
		slog.Warn("compliance pdf write failed", "err", err)
	}
}
