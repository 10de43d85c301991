package taskshandler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"opsflow/internal/auth"
	"opsflow/internal/domain/audit"
	"opsflow/internal/domain/tasks"
	"opsflow/internal/platform/optional"
	"opsflow/internal/transport/http/api"
	"opsflow/internal/transport/http/middleware"
	"opsflow/internal/transport/http/shared"
)

const entityType = "task"

type Service interface {
	Get(ctx context.Context, id string) (*tasks.Task, error)
	List(ctx context.Context, filter tasks.ListFilter) ([]tasks.Task, error)
	Board(ctx context.Context, filter tasks.ListFilter) (*tasks.Board, error)
	Create(ctx context.Context, in tasks.CreateInput) (*tasks.Task, error)
	Update(ctx context.Context, id string, in tasks.UpdateInput) (*tasks.Task, error)
	Move(ctx context.Context, id string, in tasks.MoveInput) (*tasks.Task, error)
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
	read := middleware.RequirePermission(auth.PermRecordsRead)
	write := middleware.RequirePermission(auth.PermTasksWrite)

	r.Route("/tasks", func(r chi.Router) {
		r.With(read).Get("/", h.handleList)
		r.With(write).Post("/", h.handleCreate)
		r.Route("/{taskID}", func(r chi.Router) {
			r.With(read).Get("/", h.handleGet)
			r.With(write).Put("/", h.handleUpdate)
			r.With(write).Patch("/", h.handleUpdate)
			r.With(write).Delete("/", h.handleDelete)
			r.With(write).Post("/move", h.handleMove)
		})
	})
}

type createRequest struct {
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Status      string  `json:"status"`
	Priority    string  `json:"priority"`
	AssigneeID  string  `json:"assigneeId"`
	DueDate     *string `json:"dueDate"`
}

type updateRequest struct {
	Title       *string                `json:"title"`
	Description optional.Value[string] `json:"description"`
	Status      *string                `json:"status"`
	Priority    *string                `json:"priority"`
	AssigneeID  optional.Value[string] `json:"assigneeId"`
	DueDate     optional.Value[string] `json:"dueDate"`
}

type moveRequest struct {
	Status   string `json:"status"`
	Position *int   `json:"position"`
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	filter := tasks.ListFilter{
		Status:     query.Get("status"),
		AssigneeID: query.Get("assigneeId"),
	}
	if query.Get("view") == "board" {
		board, err := h.Service.Board(r.Context(), filter)
		if err != nil {
			api.FailError(w, r, err)
			return
		}
		api.Success(w, board)
		return
	}
	items, err := h.Service.List(r.Context(), filter)
	if err != nil {
		api.FailError(w, r, err)
		return
	}
	if items == nil {
		items = []tasks.Task{}
	}
	api.Success(w, items)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	task, err := h.Service.Get(r.Context(), chi.URLParam(r, "taskID"))
	if err != nil {
		api.FailError(w, r, err)
		return
	}
	api.Success(w, task)
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var payload createRequest
	if !shared.DecodeJSON(w, r, &payload) {
		return
	}
	v := shared.NewValidator()
	v.Required("title", payload.Title, "is required")
	v.UUID("assigneeId", payload.AssigneeID)
	due := v.OptionalDate("dueDate", payload.DueDate)
	if v.Reject(w, shared.RequestID(r)) {
		return
	}

	task, err := h.Service.Create(r.Context(), tasks.CreateInput{
		Title:       payload.Title,
		Description: payload.Description,
		Status:      payload.Status,
		Priority:    payload.Priority,
		AssigneeID:  payload.AssigneeID,
		DueDate:     due,
	})
	if err != nil {
		api.FailError(w, r, err)
		return
	}
	shared.Audit(r, h.Audit, audit.ActionCreate, entityType, task.ID, nil, task)
	api.Created(w, task)
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	taskID := chi.URLParam(r, "taskID")
	var payload updateRequest
	if !shared.DecodeJSON(w, r, &payload) {
		return
	}
	v := shared.NewValidator()
	due := v.PatchDate("dueDate", payload.DueDate)
	if payload.AssigneeID.Set && !payload.AssigneeID.Null {
		v.UUID("assigneeId", payload.AssigneeID.V)
	}
	if v.Reject(w, shared.RequestID(r)) {
		return
	}

	before, err := h.Service.Get(r.Context(), taskID)
	if err != nil {
		api.FailError(w, r, err)
		return
	}
	task, err := h.Service.Update(r.Context(), taskID, tasks.UpdateInput{
		Title:       payload.Title,
		Description: payload.Description,
		Status:      payload.Status,
		Priority:    payload.Priority,
		AssigneeID:  payload.AssigneeID,
		DueDate:     due,
	})
	if err != nil {
		api.FailError(w, r, err)
		return
	}
	shared.Audit(r, h.Audit, audit.ActionUpdate, entityType, task.ID, before, task)
	api.Success(w, task)
}

func (h *Handler) handleMove(w http.ResponseWriter, r *http.Request) {
	taskID := chi.URLParam(r, "taskID")
	var payload moveRequest
	if !shared.DecodeJSON(w, r, &payload) {
		return
	}
	v := shared.NewValidator()
	v.Required("status", payload.Status, "is required")
	if payload.Position == nil {
		v.Add("position", "is required")
	} else if *payload.Position < 0 {
		v.Add("position", "must not be negative")
	}
	if v.Reject(w, shared.RequestID(r)) {
		return
	}

	before, err := h.Service.Get(r.Context(), taskID)
	if err != nil {
		api.FailError(w, r, err)
		return
	}
	task, err := h.Service.Move(r.Context(), taskID, tasks.MoveInput{
		Status:   payload.Status,
		Position: *payload.Position,
	})
	if err != nil {
		api.FailError(w, r, err)
		return
	}
	shared.Audit(r, h.Audit, audit.ActionMove, entityType, task.ID, before, task)
	api.Success(w, task)
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	taskID := chi.URLParam(r, "taskID")
	before, err := h.Service.Get(r.Context(), taskID)
	if err != nil {
		api.FailError(w, r, err)
		return
	}
	if err := h.Service.Delete(r.Context(), taskID); err != nil {
		api.FailError(w, r, err)
		return
	}
	shared.Audit(r, h.Audit, audit.ActionDelete, entityType, taskID, before, nil)
	api.NoContent(w)
}
