package contactshandler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"opsflow/internal/auth"
	"opsflow/internal/domain/audit"
	"opsflow/internal/domain/contacts"
	"opsflow/internal/platform/optional"
	"opsflow/internal/transport/http/api"
	"opsflow/internal/transport/http/middleware"
	"opsflow/internal/transport/http/shared"
)

const entityType = "emergency_contact"

type Service interface {
	List(ctx context.Context, employeeID string) ([]contacts.Contact, error)
	Get(ctx context.Context, employeeID, id string) (*contacts.Contact, error)
	Create(ctx context.Context, employeeID string, in contacts.CreateInput) (*contacts.Contact, error)
	Update(ctx context.Context, employeeID, id string, in contacts.UpdateInput) (*contacts.Contact, error)
	Delete(ctx context.Context, employeeID, id string) error
}

type Handler struct {
	Service Service
	Audit   audit.Recorder
}

func NewHandler(service Service, recorder audit.Recorder) *Handler {
	return &Handler{Service: service, Audit: recorder}
}

// RegisterEmployeeRoutes mounts /emergency-contacts beneath an /employees/{employeeID} router.
func (h *Handler) RegisterEmployeeRoutes(r chi.Router) {
	read := middleware.RequirePermission(auth.PermRecordsRead)
	write := middleware.RequirePermission(auth.PermRecordsWrite)

	r.Route("/emergency-contacts", func(r chi.Router) {
		r.With(read).Get("/", h.handleList)
		r.With(write).Post("/", h.handleCreate)
		r.Route("/{contactID}", func(r chi.Router) {
			r.With(read).Get("/", h.handleGet)
			r.With(write).Put("/", h.handleUpdate)
			r.With(write).Patch("/", h.handleUpdate)
			r.With(write).Delete("/", h.handleDelete)
		})
	})
}

type createRequest struct {
	FullName     string `json:"fullName"`
	Relationship string `json:"relationship"`
	Phone        string `json:"phone"`
	Email        string `json:"email"`
	Address      string `json:"address"`
	IsPrimary    bool   `json:"isPrimary"`
}

type updateRequest struct {
	FullName     *string                `json:"fullName"`
	Relationship *string                `json:"relationship"`
	Phone        *string                `json:"phone"`
	Email        optional.Value[string] `json:"email"`
	Address      optional.Value[string] `json:"address"`
	IsPrimary    *bool                  `json:"isPrimary"`
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	items, err := h.Service.List(r.Context(), chi.URLParam(r, "employeeID"))
	if err != nil {
		api.FailError(w, r, err)
		return
	}
	if items == nil {
		items = []contacts.Contact{}
	}
	api.Success(w, items)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	contact, err := h.Service.Get(r.Context(), chi.URLParam(r, "employeeID"), chi.URLParam(r, "contactID"))
	if err != nil {
		api.FailError(w, r, err)
		return
	}
	api.Success(w, contact)
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var payload createRequest
	if !shared.DecodeJSON(w, r, &payload) {
		return
	}
	v := shared.NewValidator()
	v.Required("fullName", payload.FullName, "is required")
	v.Required("relationship", payload.Relationship, "is required")
	v.Required("phone", payload.Phone, "is required")
	if v.Reject(w, shared.RequestID(r)) {
		return
	}

	contact, err := h.Service.Create(r.Context(), chi.URLParam(r, "employeeID"), contacts.CreateInput{
		FullName:     payload.FullName,
		Relationship: payload.Relationship,
		Phone:        payload.Phone,
		Email:        payload.Email,
		Address:      payload.Address,
		IsPrimary:    payload.IsPrimary,
	})
	if err != nil {
		api.FailError(w, r, err)
		return
	}
	shared.Audit(r, h.Audit, audit.ActionCreate, entityType, contact.ID, nil, contact)
	api.Created(w, contact)
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	employeeID, contactID := chi.URLParam(r, "employeeID"), chi.URLParam(r, "contactID")
	var payload updateRequest
	if !shared.DecodeJSON(w, r, &payload) {
		return
	}
	before, err := h.Service.Get(r.Context(), employeeID, contactID)
	if err != nil {
		api.FailError(w, r, err)
		return
	}
	contact, err := h.Service.Update(r.Context(), employeeID, contactID, contacts.UpdateInput{
		FullName:     payload.FullName,
		Relationship: payload.Relationship,
		Phone:        payload.Phone,
		Email:        payload.Email,
		Address:      payload.Address,
		IsPrimary:    payload.IsPrimary,
	})
	if err != nil {
		api.FailError(w, r, err)
		return
	}
	shared.Audit(r, h.Audit, audit.ActionUpdate, entityType, contact.ID, before, contact)
	api.Success(w, contact)
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	employeeID, contactID := chi.URLParam(r, "employeeID"), chi.URLParam(r, "contactID")
	before, err := h.Service.Get(r.Context(), employeeID, contactID)
	if err != nil {
		api.FailError(w, r, err)
		return
	}
	if err := h.Service.Delete(r.Context(), employeeID, contactID); err != nil {
		api.FailError(w, r, err)
		return
	}
	shared.Audit(r, h.Audit, audit.ActionDelete, entityType, contactID, before, nil)
	api.NoContent(w)
}
