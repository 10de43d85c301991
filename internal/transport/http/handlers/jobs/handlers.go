package jobshandler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"opsflow/internal/auth"
	"opsflow/internal/platform/jobs"
	"opsflow/internal/transport/http/api"
	"opsflow/internal/transport/http/middleware"
	"opsflow/internal/transport/http/shared"
)

type Service interface {
	RefreshNow(ctx context.Context) (any, error)
	ListRuns(ctx context.Context, jobType string, limit, offset int) ([]jobs.Run, error)
}

type Handler struct {
	Service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{Service: service}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/jobs", func(r chi.Router) {
		r.Use(middleware.RequirePermission(auth.PermJobsRun))
		r.Get("/", h.handleListRuns)
		r.Post("/status-refresh", h.handleStatusRefresh)
	})
}

type refreshResponse struct {
	JobType string `json:"jobType"`
	Details any    `json:"details"`
}

func (h *Handler) handleListRuns(w http.ResponseWriter, r *http.Request) {
	page := shared.ParsePagination(r, 50, 200)
	runs, err := h.Service.ListRuns(r.Context(), r.URL.Query().Get("jobType"), page.Limit, page.Offset)
	if err != nil {
		api.FailError(w, r, err)
		return
	}
	if runs == nil {
		runs = []jobs.Run{}
	}
	api.Success(w, runs)
}

func (h *Handler) handleStatusRefresh(w http.ResponseWriter, r *http.Request) {
	details, err := h.Service.RefreshNow(r.Context())
	if err != nil {
		api.FailError(w, r, err)
		return
	}
	api.Success(w, refreshResponse{JobType: jobs.JobStatusRefresh, Details: details})
}
