package licenseshandler

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"opsflow/internal/auth"
	"opsflow/internal/domain/audit"
	"opsflow/internal/domain/licenses"
	"opsflow/internal/platform/optional"
	"opsflow/internal/transport/http/api"
	"opsflow/internal/transport/http/middleware"
	"opsflow/internal/transport/http/shared"
)

const entityType = "license"

type Service interface {
	Get(ctx context.Context, id string) (*licenses.License, error)
	GetForEmployee(ctx context.Context, employeeID, id string) (*licenses.License, error)
	List(ctx context.Context, filter licenses.ListFilter) ([]licenses.License, error)
	Create(ctx context.Context, employeeID string, in licenses.CreateInput) (*licenses.License, error)
	Update(ctx context.Context, id string, in licenses.UpdateInput) (*licenses.License, error)
	Renew(ctx context.Context, id string, in licenses.RenewInput) (*licenses.License, error)
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
	write := middleware.RequirePermission(auth.PermRecordsWrite)

	r.Route("/licenses", func(r chi.Router) {
		r.With(read).Get("/", h.handleList)
		r.With(write).Post("/", h.handleCreate)
		r.Route("/{licenseID}", func(r chi.Router) {
			r.With(read).Get("/", h.handleGet)
			r.With(write).Put("/", h.handleUpdate)
			r.With(write).Patch("/", h.handleUpdate)
			r.With(write).Delete("/", h.handleDelete)
			r.With(write).Post("/renew", h.handleRenew)
		})
	})
}

func (h *Handler) RegisterEmployeeRoutes(r chi.Router) {
	read := middleware.RequirePermission(auth.PermRecordsRead)
	write := middleware.RequirePermission(auth.PermRecordsWrite)

	r.Route("/licenses", func(r chi.Router) {
		r.With(read).Get("/", h.handleList)
		r.With(write).Post("/", h.handleCreate)
		r.Route("/{licenseID}", func(r chi.Router) {
			r.With(read).Get("/", h.handleGet)
			r.With(write).Put("/", h.handleUpdate)
			r.With(write).Patch("/", h.handleUpdate)
			r.With(write).Delete("/", h.handleDelete)
		})
	})
}

type createRequest struct {
	EmployeeID       string  `json:"employeeId"`
	Name             string  `json:"name"`
	LicenseNumber    string  `json:"licenseNumber"`
	IssuingAuthority string  `json:"issuingAuthority"`
	IssueDate        *string `json:"issueDate"`
	ExpiryDate       *string `json:"expiryDate"`
	DocumentURL      string  `json:"documentUrl"`
	Notes            string  `json:"notes"`
	RenewalPending   bool    `json:"renewalPending"`
}

type updateRequest struct {
	Name             *string                `json:"name"`
	LicenseNumber    optional.Value[string] `json:"licenseNumber"`
	IssuingAuthority optional.Value[string] `json:"issuingAuthority"`
	IssueDate        optional.Value[string] `json:"issueDate"`
	ExpiryDate       optional.Value[string] `json:"expiryDate"`
	DocumentURL      optional.Value[string] `json:"documentUrl"`
	Notes            optional.Value[string] `json:"notes"`
	RenewalPending   *bool                  `json:"renewalPending"`
}

type renewRequest struct {
	ExpiryDate string  `json:"expiryDate"`
	IssueDate  *string `json:"issueDate"`
}

// get resolves the license in scope: any license at the top level, only the
// employee's own under /employees/{employeeID}.
func (h *Handler) get(r *http.Request) (*licenses.License, error) {
	licenseID := chi.URLParam(r, "licenseID")
	if employeeID := chi.URLParam(r, "employeeID"); employeeID != "" {
		return h.Service.GetForEmployee(r.Context(), employeeID, licenseID)
	}
	return h.Service.Get(r.Context(), licenseID)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	filter := licenses.ListFilter{EmployeeID: chi.URLParam(r, "employeeID")}
	if filter.EmployeeID == "" {
		filter.EmployeeID = query.Get("employeeId")
	}
	v := shared.NewValidator()
	filter.Status = v.Enum("status", query.Get("status"), licenses.Statuses, "must be one of Valid, Expired, Expiring Soon, Renewal Pending")
	if v.Reject(w, shared.RequestID(r)) {
		return
	}

	items, err := h.Service.List(r.Context(), filter)
	if err != nil {
		api.FailError(w, r, err)
		return
	}
	if items == nil {
		items = []licenses.License{}
	}
	api.Success(w, items)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	l, err := h.get(r)
	if err != nil {
		api.FailError(w, r, err)
		return
	}
	api.Success(w, l)
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
	issue := v.OptionalDate("issueDate", payload.IssueDate)
	expiry := v.OptionalDate("expiryDate", payload.ExpiryDate)
	v.DateOrder("issueDate", issue, "expiryDate", expiry)
	if v.Reject(w, shared.RequestID(r)) {
		return
	}

	l, err := h.Service.Create(r.Context(), employeeID, licenses.CreateInput{
		Name:             payload.Name,
		LicenseNumber:    payload.LicenseNumber,
		IssuingAuthority: payload.IssuingAuthority,
		IssueDate:        issue,
		ExpiryDate:       expiry,
		DocumentURL:      payload.DocumentURL,
		Notes:            payload.Notes,
		RenewalPending:   payload.RenewalPending,
	})
	if err != nil {
		api.FailError(w, r, err)
		return
	}
	shared.Audit(r, h.Audit, audit.ActionCreate, entityType, l.ID, nil, l)
	api.Created(w, l)
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	var payload updateRequest
	if !shared.DecodeJSON(w, r, &payload) {
		return
	}
	v := shared.NewValidator()
	issue := v.PatchDate("issueDate", payload.IssueDate)
	expiry := v.PatchDate("expiryDate", payload.ExpiryDate)
	if v.Reject(w, shared.RequestID(r)) {
		return
	}

	before, err := h.get(r)
	if err != nil {
		api.FailError(w, r, err)
		return
	}
	l, err := h.Service.Update(r.Context(), before.ID, licenses.UpdateInput{
		Name:             payload.Name,
		LicenseNumber:    payload.LicenseNumber,
		IssuingAuthority: payload.IssuingAuthority,
		IssueDate:        issue,
		ExpiryDate:       expiry,
		DocumentURL:      payload.DocumentURL,
		Notes:            payload.Notes,
		RenewalPending:   payload.RenewalPending,
	})
	if err != nil {
		api.FailError(w, r, err)
		return
	}
	shared.Audit(r, h.Audit, audit.ActionUpdate, entityType, l.ID, before, l)
	api.Success(w, l)
}

// handleRenew accepts multipart/form-data with an optional "document" file,
// or a plain JSON body carrying only the dates.
func (h *Handler) handleRenew(w http.ResponseWriter, r *http.Request) {
	var (
		payload renewRequest
		in      licenses.RenewInput
	)
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/") {
		if !shared.ParseMultipart(w, r) {
			return
		}
		payload.ExpiryDate = r.FormValue("expiryDate")
		if raw := r.FormValue("issueDate"); raw != "" {
			payload.IssueDate = &raw
		}
		file, header, err := shared.FormFile(r, "document")
		if err != nil {
			api.FailError(w, r, err)
			return
		}
		if file != nil {
			defer file.Close()
			in.Document = &licenses.File{
				Name:        header.Filename,
				ContentType: shared.FileContentType(header),
				Size:        header.Size,
				Body:        file,
			}
		}
	} else if !shared.DecodeJSON(w, r, &payload) {
		return
	}

	v := shared.NewValidator()
	var expiry time.Time
	if strings.TrimSpace(payload.ExpiryDate) == "" {
		v.Add("expiryDate", "is required")
	} else {
		expiry, _ = v.Date("expiryDate", payload.ExpiryDate)
	}
	in.IssueDate = v.OptionalDate("issueDate", payload.IssueDate)
	if !expiry.IsZero() {
		v.DateOrder("issueDate", in.IssueDate, "expiryDate", &expiry)
	}
	if v.Reject(w, shared.RequestID(r)) {
		return
	}
	in.ExpiryDate = expiry

	before, err := h.Service.Get(r.Context(), chi.URLParam(r, "licenseID"))
	if err != nil {
		api.FailError(w, r, err)
		return
	}
	l, err := h.Service.Renew(r.Context(), before.ID, in)
	if err != nil {
		api.FailError(w, r, err)
		return
	}
	shared.Audit(r, h.Audit, audit.ActionRenew, entityType, l.ID, before, l)
	api.Success(w, l)
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
