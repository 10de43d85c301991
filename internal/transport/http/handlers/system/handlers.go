package systemhandler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"opsflow/internal/transport/http/api"
	"opsflow/internal/transport/http/shared"
)

const readyTimeout = 2 * time.Second

// Pinger is satisfied by *pgxpool.Pool.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Handler struct {
	DB      Pinger
	Metrics http.Handler
}

func NewHandler(db Pinger, metrics http.Handler) *Handler {
	return &Handler{DB: db, Metrics: metrics}
}

// RegisterRoutes mounts the unauthenticated probes. /metrics is only served
// when a metrics handler is configured.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/healthz", h.handleHealth)
	r.Get("/readyz", h.handleReady)
	if h.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", h.Metrics)
	}
}

type statusResponse struct {
	Status string `json:"status"`
}

func (h *Handler) handleHealth(w http.ResponseWriter, _ *http.Request) {
	api.Success(w, statusResponse{Status: "ok"})
}

func (h *Handler) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), readyTimeout)
	defer cancel()
	if h.DB == nil {
		api.Fail(w, http.StatusServiceUnavailable, "not_ready", "database unavailable", shared.RequestID(r))
		return
	}
	if err := h.DB.Ping(ctx); err != nil {
		slog.Warn("readiness ping failed", "err", err)
		api.Fail(w, http.StatusServiceUnavailable, "not_ready", "database unavailable", shared.RequestID(r))
		return
	}
	api.Success(w, statusResponse{Status: "ready"})
}
