package foldershandler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"opsflow/internal/auth"
	"opsflow/internal/domain/audit"
	"opsflow/internal/domain/documents"
	"opsflow/internal/domain/folders"
	"opsflow/internal/platform/optional"
	"opsflow/internal/transport/http/api"
	"opsflow/internal/transport/http/middleware"
	"opsflow/internal/transport/http/shared"
)

const entityType = "folder"

type Service interface {
	Get(ctx context.Context, id string) (*folders.Folder, error)
	List(ctx context.Context, parent string) ([]folders.Folder, error)
	Create(ctx context.Context, in folders.CreateInput) (*folders.Folder, error)
	Update(ctx context.Context, id string, in folders.UpdateInput) (*folders.Folder, error)
	Delete(ctx context.Context, id string) error
}

// DocumentLister supplies the files shown in a folder's contents view.
type DocumentLister interface {
	List(ctx context.Context, filter documents.ListFilter) ([]documents.Document, error)
}

type Handler struct {
	Service   Service
	Documents DocumentLister
	Audit     audit.Recorder
}

func NewHandler(service Service, docs DocumentLister, recorder audit.Recorder) *Handler {
	return &Handler{Service: service, Documents: docs, Audit: recorder}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	read := middleware.RequirePermission(auth.PermRecordsRead)
	write := middleware.RequirePermission(auth.PermRecordsWrite)

	r.Route("/folders", func(r chi.Router) {
		r.With(read).Get("/", h.handleList)
		r.With(write).Post("/", h.handleCreate)
		r.Route("/{folderID}", func(r chi.Router) {
			r.With(read).Get("/", h.handleGet)
			r.With(read).Get("/contents", h.handleContents)
			r.With(write).Put("/", h.handleUpdate)
			r.With(write).Patch("/", h.handleUpdate)
			r.With(write).Delete("/", h.handleDelete)
		})
	})
}

type createRequest struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	ParentID    *string `json:"parentId"`
}

type updateRequest struct {
	Name        *string                `json:"name"`
	Description optional.Value[string] `json:"description"`
	ParentID    optional.Value[string] `json:"parentId"`
}

type contentsResponse struct {
	Folder    *folders.Folder      `json:"folder"`
	Folders   []folders.Folder     `json:"folders"`
	Documents []documents.Document `json:"documents"`
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	items, err := h.Service.List(r.Context(), r.URL.Query().Get("parentId"))
	if err != nil {
		api.FailError(w, r, err)
		return
	}
	if items == nil {
		items = []folders.Folder{}
	}
	api.Success(w, items)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	folder, err := h.Service.Get(r.Context(), chi.URLParam(r, "folderID"))
	if err != nil {
		api.FailError(w, r, err)
		return
	}
	api.Success(w, folder)
}

func (h *Handler) handleContents(w http.ResponseWriter, r *http.Request) {
	folderID := chi.URLParam(r, "folderID")
	folder, err := h.Service.Get(r.Context(), folderID)
	if err != nil {
		api.FailError(w, r, err)
		return
	}
	children, err := h.Service.List(r.Context(), folder.ID)
	if err != nil {
		api.FailError(w, r, err)
		return
	}
	docs, err := h.Documents.List(r.Context(), documents.ListFilter{FolderID: folder.ID})
	if err != nil {
		api.FailError(w, r, err)
		return
	}
	if children == nil {
		children = []folders.Folder{}
	}
	if docs == nil {
		docs = []documents.Document{}
	}
	api.Success(w, contentsResponse{Folder: folder, Folders: children, Documents: docs})
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
	in := folders.CreateInput{Name: payload.Name, Description: payload.Description}
	if payload.ParentID != nil {
		in.ParentID = *payload.ParentID
	}

	folder, err := h.Service.Create(r.Context(), in)
	if err != nil {
		api.FailError(w, r, err)
		return
	}
	shared.Audit(r, h.Audit, audit.ActionCreate, entityType, folder.ID, nil, folder)
	api.Created(w, folder)
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	folderID := chi.URLParam(r, "folderID")
	var payload updateRequest
	if !shared.DecodeJSON(w, r, &payload) {
		return
	}
	before, err := h.Service.Get(r.Context(), folderID)
	if err != nil {
		api.FailError(w, r, err)
		return
	}
	folder, err := h.Service.Update(r.Context(), folderID, folders.UpdateInput{
		Name:        payload.Name,
		Description: payload.Description,
		ParentID:    payload.ParentID,
	})
	if err != nil {
		api.FailError(w, r, err)
		return
	}
	shared.Audit(r, h.Audit, audit.ActionUpdate, entityType, folder.ID, before, folder)
	api.Success(w, folder)
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	folderID := chi.URLParam(r, "folderID")
	before, err := h.Service.Get(r.Context(), folderID)
	if err != nil {
		api.FailError(w, r, err)
		return
	}
	if err := h.Service.Delete(r.Context(), folderID); err != nil {
		api.FailError(w, r, err)
		return
	}
	shared.Audit(r, h.Audit, audit.ActionDelete, entityType, folderID, before, nil)
	api.NoContent(w)
}
