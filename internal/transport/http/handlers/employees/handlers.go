package employeeshandler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"opsflow/internal/auth"
	"opsflow/internal/domain/audit"
	"opsflow/internal/domain/employees"
	"opsflow/internal/platform/optional"
	"opsflow/internal/transport/http/api"
	"opsflow/internal/transport/http/middleware"
	"opsflow/internal/transport/http/shared"
)

const entityType = "employee"

type Service interface {
	Get(ctx context.Context, id string) (*employees.Employee, error)
	List(ctx context.Context, filter employees.ListFilter) ([]employees.Employee, int, error)
	Create(ctx context.Context, in employees.CreateInput) (*employees.Employee, error)
	Update(ctx context.Context, id string, in employees.UpdateInput) (*employees.Employee, error)
	Delete(ctx context.Context, id string) error
}

type Handler struct {
	Service Service
	Audit   audit.Recorder
}

func NewHandler(service Service, recorder audit.Recorder) *Handler {
	return &Handler{Service: service, Audit: recorder}
}

// RegisterRoutes mounts /employees. nested registers child resources under
// /employees/{employeeID}.
func (h *Handler) RegisterRoutes(r chi.Router, nested ...func(chi.Router)) {
	read := middleware.RequirePermission(auth.PermRecordsRead)
	write := middleware.RequirePermission(auth.PermRecordsWrite)

	r.Route("/employees", func(r chi.Router) {
		r.With(read).Get("/", h.handleList)
		r.With(write).Post("/", h.handleCreate)
		r.Route("/{employeeID}", func(r chi.Router) {
			r.With(read).Get("/", h.handleGet)
			r.With(write).Put("/", h.handleUpdate)
			r.With(write).Patch("/", h.handleUpdate)
			r.With(write).Delete("/", h.handleDelete)
			for _, register := range nested {
				register(r)
			}
		})
	})
}

type createRequest struct {
	FirstName  string  `json:"firstName"`
	LastName   string  `json:"lastName"`
	Email      string  `json:"email"`
	Phone      string  `json:"phone"`
	Position   string  `json:"position"`
	Department string  `json:"department"`
	Status     string  `json:"status"`
	HireDate   *string `json:"hireDate"`
}

type updateRequest struct {
	FirstName  *string                `json:"firstName"`
	LastName   *string                `json:"lastName"`
	Email      *string                `json:"email"`
	Phone      optional.Value[string] `json:"phone"`
	Position   optional.Value[string] `json:"position"`
	Department optional.Value[string] `json:"department"`
	Status     *string                `json:"status"`
	HireDate   optional.Value[string] `json:"hireDate"`
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	page := shared.ParsePagination(r, 50, 200)
	filter := employees.ListFilter{
		Department: query.Get("department"),
		Query:      query.Get("q"),
		Limit:      page.Limit,
		Offset:     page.Offset,
	}
	v := shared.NewValidator()
	filter.Status = v.Enum("status", query.Get("status"), employees.Statuses, "must be a known employee status")
	if v.Reject(w, shared.RequestID(r)) {
		return
	}

	items, total, err := h.Service.List(r.Context(), filter)
	if err != nil {
		api.FailError(w, r, err)
		return
	}
	if items == nil {
		items = []employees.Employee{}
	}
	w.Header().Set("X-Total-Count", strconv.Itoa(total))
	api.Success(w, items)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	emp, err := h.Service.Get(r.Context(), chi.URLParam(r, "employeeID"))
	if err != nil {
		api.FailError(w, r, err)
		return
	}
	api.Success(w, emp)
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var payload createRequest
	if !shared.DecodeJSON(w, r, &payload) {
		return
	}
	v := shared.NewValidator()
	v.Required("firstName", payload.FirstName, "is required")
	v.Required("lastName", payload.LastName, "is required")
	v.Required("email", payload.Email, "is required")
	status := v.Enum("status", payload.Status, employees.Statuses, "must be a known employee status")
	hireDate := v.OptionalDate("hireDate", payload.HireDate)
	if v.Reject(w, shared.RequestID(r)) {
		return
	}

	emp, err := h.Service.Create(r.Context(), employees.CreateInput{
		FirstName:  payload.FirstName,
		LastName:   payload.LastName,
		Email:      payload.Email,
		Phone:      payload.Phone,
		Position:   payload.Position,
		Department: payload.Department,
		Status:     status,
		HireDate:   hireDate,
	})
	if err != nil {
		api.FailError(w, r, err)
		return
	}
	shared.Audit(r, h.Audit, audit.ActionCreate, entityType, emp.ID, nil, emp)
	api.Created(w, emp)
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	employeeID := chi.URLParam(r, "employeeID")
	var payload updateRequest
	if !shared.DecodeJSON(w, r, &payload) {
		return
	}
	v := shared.NewValidator()
	if payload.Status != nil {
		status := v.Enum("status", *payload.Status, employees.Statuses, "must be a known employee status")
		if status == "" && *payload.Status == "" {
			v.Add("status", "must be a known employee status")
		}
		payload.Status = &status
	}
	hireDate := v.PatchDate("hireDate", payload.HireDate)
	if v.Reject(w, shared.RequestID(r)) {
		return
	}

	before, err := h.Service.Get(r.Context(), employeeID)
	if err != nil {
		api.FailError(w, r, err)
		return
	}
	emp, err := h.Service.Update(r.Context(), employeeID, employees.UpdateInput{
		FirstName:  payload.FirstName,
		LastName:   payload.LastName,
		Email:      payload.Email,
		Phone:      payload.Phone,
		Position:   payload.Position,
		Department: payload.Department,
		Status:     payload.Status,
		HireDate:   hireDate,
	})
	if err != nil {
		api.FailError(w, r, err)
		return
	}
	shared.Audit(r, h.Audit, audit.ActionUpdate, entityType, emp.ID, before, emp)
	api.Success(w, emp)
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	employeeID := chi.URLParam(r, "employeeID")
	before, err := h.Service.Get(r.Context(), employeeID)
	if err != nil {
		api.FailError(w, r, err)
		return
	}
	if err := h.Service.Delete(r.Context(), employeeID); err != nil {
		api.FailError(w, r, err)
		return
	}
	shared.Audit(r, h.Audit, audit.ActionDelete, entityType, employeeID, before, nil)
	api.NoContent(w)
}
