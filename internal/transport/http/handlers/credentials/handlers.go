package credentialshandler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"opsflow/internal/auth"
	"opsflow/internal/domain/audit"
	"opsflow/internal/domain/credentials"
	"opsflow/internal/platform/optional"
	"opsflow/internal/transport/http/api"
	"opsflow/internal/transport/http/middleware"
	"opsflow/internal/transport/http/shared"
)

const entityType = "credential"

type Service interface {
	Get(ctx context.Context, id string) (*credentials.Credential, error)
	List(ctx context.Context, filter credentials.ListFilter) ([]credentials.Credential, error)
	Create(ctx context.Context, in credentials.CreateInput) (*credentials.Credential, error)
	Update(ctx context.Context, id string, in credentials.UpdateInput) (*credentials.Credential, error)
	Delete(ctx context.Context, id string) error
	Categories(ctx context.Context) ([]credentials.Category, error)
}

type Handler struct {
	Service Service
	Audit   audit.Recorder
}

func NewHandler(service Service, recorder audit.Recorder) *Handler {
	return &Handler{Service: service, Audit: recorder}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	read := middleware.RequirePermission(auth.PermCredentialsRead)
	write := middleware.RequirePermission(auth.PermCredentialsWrite)

	r.Route("/credentials", func(r chi.Router) {
		r.With(read).Get("/", h.handleList)
		r.With(write).Post("/", h.handleCreate)
		r.With(read).Get("/categories", h.handleCategories)
		r.Route("/{credentialID}", func(r chi.Router) {
			r.With(read).Get("/", h.handleGet)
			r.With(write).Put("/", h.handleUpdate)
			r.With(write).Patch("/", h.handleUpdate)
			r.With(write).Delete("/", h.handleDelete)
		})
	})
}

type createRequest struct {
	Name     string `json:"name"`
	Username string `json:"username"`
	Password string `json:"password"`
	URL      string `json:"url"`
	Category string `json:"category"`
	Notes    string `json:"notes"`
}

type updateRequest struct {
	Name     *string                `json:"name"`
	Username optional.Value[string] `json:"username"`
	Password optional.Value[string] `json:"password"`
	URL      optional.Value[string] `json:"url"`
	Category *string                `json:"category"`
	Notes    optional.Value[string] `json:"notes"`
}

// masked is the audit form of a credential; secrets never reach the audit log.
func masked(c *credentials.Credential) *credentials.Credential {
	if c == nil {
		return nil
	}
	out := *c
	out.Password = ""
	return &out
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	items, err := h.Service.List(r.Context(), credentials.ListFilter{
		Category: query.Get("category"),
		Query:    query.Get("q"),
	})
	if err != nil {
		api.FailError(w, r, err)
		return
	}
	if items == nil {
		items = []credentials.Credential{}
	}
	api.Success(w, items)
}

func (h *Handler) handleCategories(w http.ResponseWriter, r *http.Request) {
	items, err := h.Service.Categories(r.Context())
	if err != nil {
		api.FailError(w, r, err)
		return
	}
	api.Success(w, items)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	cred, err := h.Service.Get(r.Context(), chi.URLParam(r, "credentialID"))
	if err != nil {
		api.FailError(w, r, err)
		return
	}
	api.Success(w, cred)
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var payload createRequest
	if !shared.DecodeJSON(w, r, &payload) {
		return
	}
	v := shared.NewValidator()
	v.Required("name", payload.Name, "is required")
	if v.Reject(w, shared.RequestID(r)) {
		return
	}

	cred, err := h.Service.Create(r.Context(), credentials.CreateInput{
		Name:     payload.Name,
		Username: payload.Username,
		Password: payload.Password,
		URL:      payload.URL,
		Category: payload.Category,
		Notes:    payload.Notes,
	})
	if err != nil {
		api.FailError(w, r, err)
		return
	}
	shared.Audit(r, h.Audit, audit.ActionCreate, entityType, cred.ID, nil, masked(cred))
	api.Created(w, cred)
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	credentialID := chi.URLParam(r, "credentialID")
	var payload updateRequest
	if !shared.DecodeJSON(w, r, &payload) {
		return
	}
	before, err := h.Service.Get(r.Context(), credentialID)
	if err != nil {
		api.FailError(w, r, err)
		return
	}
	cred, err := h.Service.Update(r.Context(), credentialID, credentials.UpdateInput{
		Name:     payload.Name,
		Username: payload.Username,
		Password: payload.Password,
		URL:      payload.URL,
		Category: payload.Category,
		Notes:    payload.Notes,
	})
	if err != nil {
		api.FailError(w, r, err)
		return
	}
	shared.Audit(r, h.Audit, audit.ActionUpdate, entityType, cred.ID, masked(before), masked(cred))
	api.Success(w, cred)
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	credentialID := chi.URLParam(r, "credentialID")
	before, err := h.Service.Get(r.Context(), credentialID)
	if err != nil {
		api.FailError(w, r, err)
		return
	}
	if err := h.Service.Delete(r.Context(), credentialID); err != nil {
		api.FailError(w, r, err)
		return
	}
	shared.Audit(r, h.Audit, audit.ActionDelete, entityType, credentialID, masked(before), nil)
	api.NoContent(w)
}
