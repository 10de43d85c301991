package inductionshandler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"opsflow/internal/auth"
	"opsflow/internal/domain/audit"
	"opsflow/internal/domain/inductions"
	"opsflow/internal/platform/optional"
	"opsflow/internal/transport/http/api"
	"opsflow/internal/transport/http/middleware"
	"opsflow/internal/transport/http/shared"
)

const (
	entityType    = "induction"
	statusMessage = "must be one of Completed, Pending, Expired, In Progress"
)

type Service interface {
	Get(ctx context.Context, id string) (*inductions.Induction, error)
	GetForEmployee(ctx context.Context, employeeID, id string) (*inductions.Induction, error)
	List(ctx context.Context, filter inductions.ListFilter) ([]inductions.Induction, error)
	Create(ctx context.Context, employeeID string, in inductions.CreateInput) (*inductions.Induction, error)
	Update(ctx context.Context, id string, in inductions.UpdateInput) (*inductions.Induction, error)
	Delete(ctx context.Context, id string) error
}

type Handler struct {
	Service Service
	Audit   audit.Recorder
}

func NewHandler(service Service, recorder audit.Recorder) *Handler {
	return &Handler{Service: service, Audit: recorder}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	h.register(r)
}

func (h *Handler) RegisterEmployeeRoutes(r chi.Router) {
	h.register(r)
}

func (h *Handler) register(r chi.Router) {
	read := middleware.RequirePermission(auth.PermRecordsRead)
	write := middleware.RequirePermission(auth.PermRecordsWrite)

	r.Route("/inductions", func(r chi.Router) {
		r.With(read).Get("/", h.handleList)
		r.With(write).Post("/", h.handleCreate)
		r.Route("/{inductionID}", func(r chi.Router) {
			r.With(read).Get("/", h.handleGet)
			r.With(write).Put("/", h.handleUpdate)
			r.With(write).Patch("/", h.handleUpdate)
			r.With(write).Delete("/", h.handleDelete)
		})
	})
}

type createRequest struct {
	EmployeeID     string           `json:"employeeId"`
	Name           string           `json:"name"`
	Provider       string           `json:"provider"`
	CompletionDate *string          `json:"completionDate"`
	ExpiryDate     *string          `json:"expiryDate"`
	Status         string           `json:"status"`
	Notes          inductions.Notes `json:"notes"`
}

type updateRequest struct {
	Name           *string                          `json:"name"`
	Provider       optional.Value[string]           `json:"provider"`
	CompletionDate optional.Value[string]           `json:"completionDate"`
	ExpiryDate     optional.Value[string]           `json:"expiryDate"`
	Status         *string                          `json:"status"`
	Notes          optional.Value[inductions.Notes] `json:"notes"`
}

func (h *Handler) get(r *http.Request) (*inductions.Induction, error) {
	inductionID := chi.URLParam(r, "inductionID")
	if employeeID := chi.URLParam(r, "employeeID"); employeeID != "" {
		return h.Service.GetForEmployee(r.Context(), employeeID, inductionID)
	}
	return h.Service.Get(r.Context(), inductionID)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	filter := inductions.ListFilter{EmployeeID: chi.URLParam(r, "employeeID")}
	if filter.EmployeeID == "" {
		filter.EmployeeID = query.Get("employeeId")
	}
	v := shared.NewValidator()
	filter.Status = v.Enum("status", query.Get("status"), inductions.FilterStatuses, "must be one of Completed, Pending, Expired, In Progress, Expiring Soon")
	if v.Reject(w, shared.RequestID(r)) {
		return
	}

	items, err := h.Service.List(r.Context(), filter)
	if err != nil {
		api.FailError(w, r, err)
		return
	}
	if items == nil {
		items = []inductions.Induction{}
	}
	api.Success(w, items)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	ind, err := h.get(r)
	if err != nil {
		api.FailError(w, r, err)
		return
	}
	api.Success(w, ind)
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var payload createRequest
	if !shared.DecodeJSON(w, r, &payload) {
		return
	}
	employeeID := chi.URLParam(r, "employeeID")
	v := shared.NewValidator()
	if employeeID == "" {
		employeeID = payload.EmployeeID
		v.Required("employeeId", employeeID, "is required")
	}
	v.Required("name", payload.Name, "is required")
	status := v.Enum("status", payload.Status, inductions.WorkflowStatuses, statusMessage)
	completion := v.OptionalDate("completionDate", payload.CompletionDate)
	expiry := v.OptionalDate("expiryDate", payload.ExpiryDate)
	v.DateOrder("completionDate", completion, "expiryDate", expiry)
	if v.Reject(w, shared.RequestID(r)) {
		return
	}

	ind, err := h.Service.Create(r.Context(), employeeID, inductions.CreateInput{
		Name:           payload.Name,
		Provider:       payload.Provider,
		CompletionDate: completion,
		ExpiryDate:     expiry,
		Status:         status,
		Notes:          payload.Notes,
	})
	if err != nil {
		api.FailError(w, r, err)
		return
	}
	shared.Audit(r, h.Audit, audit.ActionCreate, entityType, ind.ID, nil, ind)
	api.Created(w, ind)
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	var payload updateRequest
	if !shared.DecodeJSON(w, r, &payload) {
		return
	}
	v := shared.NewValidator()
	if payload.Status != nil {
		status := v.Enum("status", *payload.Status, inductions.WorkflowStatuses, statusMessage)
		if status == "" && *payload.Status == "" {
			v.Add("status", statusMessage)
		}
		payload.Status = &status
	}
	completion := v.PatchDate("completionDate", payload.CompletionDate)
	expiry := v.PatchDate("expiryDate", payload.ExpiryDate)
	if v.Reject(w, shared.RequestID(r)) {
		return
	}

	before, err := h.get(r)
	if err != nil {
		api.FailError(w, r, err)
		return
	}
	ind, err := h.Service.Update(r.Context(), before.ID, inductions.UpdateInput{
		Name:           payload.Name,
		Provider:       payload.Provider,
		CompletionDate: completion,
		ExpiryDate:     expiry,
		Status:         payload.Status,
		Notes:          payload.Notes,
	})
	if err != nil {
		api.FailError(w, r, err)
		return
	}
	shared.Audit(r, h.Audit, audit.ActionUpdate, entityType, ind.ID, before, ind)
	api.Success(w, ind)
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	before, err := h.get(r)
	if err != nil {
		api.FailError(w, r, err)
		return
	}
	if err := h.Service.Delete(r.Context(), before.ID); err != nil {
		api.FailError(w, r, err)
		return
	}
	shared.Audit(r, h.Audit, audit.ActionDelete, entityType, before.ID, before, nil)
	api.NoContent(w)
}
