package documentshandler

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"opsflow/internal/auth"
	"opsflow/internal/domain/audit"
	"opsflow/internal/domain/documents"
	"opsflow/internal/platform/optional"
	"opsflow/internal/transport/http/api"
	"opsflow/internal/transport/http/middleware"
	"opsflow/internal/transport/http/shared"
)

const entityType = "document"

type Service interface {
	Get(ctx context.Context, id string) (*documents.Document, error)
	GetForEmployee(ctx context.Context, employeeID, id string) (*documents.Document, error)
	List(ctx context.Context, filter documents.ListFilter) ([]documents.Document, error)
	Create(ctx context.Context, in documents.CreateInput) (*documents.Document, error)
	Upload(ctx context.Context, in documents.UploadInput) (*documents.Document, error)
	DownloadURL(ctx context.Context, doc *documents.Document) string
	Update(ctx context.Context, id string, in documents.UpdateInput) (*documents.Document, error)
	Delete(ctx context.Context, id string) error
	Batch(ctx context.Context, req documents.BatchRequest) (*documents.BatchResult, error)
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

	r.Route("/documents", func(r chi.Router) {
		r.With(read).Get("/", h.handleList)
		r.With(write).Post("/", h.handleCreate)
		r.With(write).Post("/upload", h.handleUpload)
		r.With(write).Post("/batch", h.handleBatch)
		r.Route("/{documentID}", func(r chi.Router) {
			r.With(read).Get("/", h.handleGet)
			r.With(read).Get("/download", h.handleDownload)
			r.With(write).Put("/", h.handleUpdate)
			r.With(write).Patch("/", h.handleUpdate)
			r.With(write).Delete("/", h.handleDelete)
		})
	})
}

// RegisterEmployeeRoutes mounts /documents beneath an /employees/{employeeID} router.
func (h *Handler) RegisterEmployeeRoutes(r chi.Router) {
	read := middleware.RequirePermission(auth.PermRecordsRead)
	write := middleware.RequirePermission(auth.PermRecordsWrite)

	r.Route("/documents", func(r chi.Router) {
		r.With(read).Get("/", h.handleEmployeeList)
		r.With(write).Post("/", h.handleEmployeeCreate)
		r.Route("/{documentID}", func(r chi.Router) {
			r.With(read).Get("/", h.handleEmployeeGet)
			r.With(write).Put("/", h.handleEmployeeUpdate)
			r.With(write).Patch("/", h.handleEmployeeUpdate)
			r.With(write).Delete("/", h.handleEmployeeDelete)
		})
	})
}

type createRequest struct {
	Name       string `json:"name"`
	URL        string `json:"url"`
	Size       int64  `json:"size"`
	Type       string `json:"type"`
	FolderID   string `json:"folderId"`
	EmployeeID string `json:"employeeId"`
}

type updateRequest struct {
	Name     *string                `json:"name"`
	Type     optional.Value[string] `json:"type"`
	FolderID optional.Value[string] `json:"folderId"`
}

type batchRequest struct {
	Action         string   `json:"action"`
	DocumentIDs    []string `json:"documentIds"`
	TargetFolderID string   `json:"targetFolderId"`
}

type downloadResponse struct {
	URL string `json:"url"`
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	page := shared.ParsePagination(r, 100, 500)
	h.list(w, r, documents.ListFilter{
		FolderID:   query.Get("folderId"),
		EmployeeID: query.Get("employeeId"),
		Query:      query.Get("q"),
		Limit:      page.Limit,
		Offset:     page.Offset,
	})
}

func (h *Handler) handleEmployeeList(w http.ResponseWriter, r *http.Request) {
	page := shared.ParsePagination(r, 100, 500)
	h.list(w, r, documents.ListFilter{
		EmployeeID: chi.URLParam(r, "employeeID"),
		Query:      r.URL.Query().Get("q"),
		Limit:      page.Limit,
		Offset:     page.Offset,
	})
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request, filter documents.ListFilter) {
	items, err := h.Service.List(r.Context(), filter)
	if err != nil {
		api.FailError(w, r, err)
		return
	}
	if items == nil {
		items = []documents.Document{}
	}
	api.Success(w, items)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	doc, err := h.Service.Get(r.Context(), chi.URLParam(r, "documentID"))
	if err != nil {
		api.FailError(w, r, err)
		return
	}
	api.Success(w, doc)
}

func (h *Handler) handleEmployeeGet(w http.ResponseWriter, r *http.Request) {
	doc, err := h.Service.GetForEmployee(r.Context(), chi.URLParam(r, "employeeID"), chi.URLParam(r, "documentID"))
	if err != nil {
		api.FailError(w, r, err)
		return
	}
	api.Success(w, doc)
}

// handleDownload redirects to the file. With ?redirect=false the link is
// returned as JSON instead.
func (h *Handler) handleDownload(w http.ResponseWriter, r *http.Request) {
	doc, err := h.Service.Get(r.Context(), chi.URLParam(r, "documentID"))
	if err != nil {
		api.FailError(w, r, err)
		return
	}
	url := h.Service.DownloadURL(r.Context(), doc)
	if strings.EqualFold(r.URL.Query().Get("redirect"), "false") {
		api.Success(w, downloadResponse{URL: url})
		return
	}
	http.Redirect(w, r, url, http.StatusFound)
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var payload createRequest
	if !shared.DecodeJSON(w, r, &payload) {
		return
	}
	h.create(w, r, payload)
}

func (h *Handler) handleEmployeeCreate(w http.ResponseWriter, r *http.Request) {
	var payload createRequest
	if !shared.DecodeJSON(w, r, &payload) {
		return
	}
	payload.EmployeeID = chi.URLParam(r, "employeeID")
	h.create(w, r, payload)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request, payload createRequest) {
	v := shared.NewValidator()
	v.Required("name", payload.Name, "is required")
	v.Required("url", payload.URL, "is required")
	if v.Reject(w, shared.RequestID(r)) {
		return
	}
	doc, err := h.Service.Create(r.Context(), documents.CreateInput{
		Name:       payload.Name,
		URL:        payload.URL,
		Size:       payload.Size,
		Type:       payload.Type,
		FolderID:   payload.FolderID,
		EmployeeID: payload.EmployeeID,
	})
	if err != nil {
		api.FailError(w, r, err)
		return
	}
	shared.Audit(r, h.Audit, audit.ActionCreate, entityType, doc.ID, nil, doc)
	api.Created(w, doc)
}

func (h *Handler) handleUpload(w http.ResponseWriter, r *http.Request) {
	if !shared.ParseMultipart(w, r) {
		return
	}
	file, header, err := shared.FormFile(r, "file")
	if err != nil {
		api.FailError(w, r, err)
		return
	}
	if file == nil {
		shared.FailValidation(w, shared.RequestID(r), []shared.ValidationIssue{{Field: "file", Reason: "is required"}})
		return
	}
	defer file.Close()

	name := strings.TrimSpace(r.FormValue("name"))
	if name == "" {
		name = header.Filename
	}
	doc, err := h.Service.Upload(r.Context(), documents.UploadInput{
		Name:        name,
		ContentType: shared.FileContentType(header),
		Size:        header.Size,
		Body:        file,
		FolderID:    r.FormValue("folderId"),
		EmployeeID:  r.FormValue("employeeId"),
	})
	if err != nil {
		api.FailError(w, r, err)
		return
	}
	shared.Audit(r, h.Audit, audit.ActionCreate, entityType, doc.ID, nil, doc)
	api.Created(w, doc)
}

func (h *Handler) handleBatch(w http.ResponseWriter, r *http.Request) {
	var payload batchRequest
	if !shared.DecodeJSON(w, r, &payload) {
		return
	}
	result, err := h.Service.Batch(r.Context(), documents.BatchRequest{
		Action:         payload.Action,
		DocumentIDs:    payload.DocumentIDs,
		TargetFolderID: payload.TargetFolderID,
	})
	if errors.Is(err, documents.ErrTargetFolderNotFound) {
		shared.FailValidation(w, shared.RequestID(r), []shared.ValidationIssue{
			{Field: "targetFolderId", Reason: "target folder not found"},
		})
		return
	}
	if err != nil {
		api.FailError(w, r, err)
		return
	}
	shared.Audit(r, h.Audit, audit.ActionBatch, entityType, "", nil, map[string]any{
		"action":         result.Action,
		"documentIds":    payload.DocumentIDs,
		"targetFolderId": payload.TargetFolderID,
		"count":          result.Count,
	})
	api.Success(w, result)
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	documentID := chi.URLParam(r, "documentID")
	before, err := h.Service.Get(r.Context(), documentID)
	if err != nil {
		api.FailError(w, r, err)
		return
	}
	h.update(w, r, before)
}

func (h *Handler) handleEmployeeUpdate(w http.ResponseWriter, r *http.Request) {
	before, err := h.Service.GetForEmployee(r.Context(), chi.URLParam(r, "employeeID"), chi.URLParam(r, "documentID"))
	if err != nil {
		api.FailError(w, r, err)
		return
	}
	h.update(w, r, before)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request, before *documents.Document) {
	var payload updateRequest
	if !shared.DecodeJSON(w, r, &payload) {
		return
	}
	doc, err := h.Service.Update(r.Context(), before.ID, documents.UpdateInput{
		Name:     payload.Name,
		Type:     payload.Type,
		FolderID: payload.FolderID,
	})
	if err != nil {
		api.FailError(w, r, err)
		return
	}
	shared.Audit(r, h.Audit, audit.ActionUpdate, entityType, doc.ID, before, doc)
	api.Success(w, doc)
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	before, err := h.Service.Get(r.Context(), chi.URLParam(r, "documentID"))
	if err != nil {
		api.FailError(w, r, err)
		return
	}
	h.delete(w, r, before)
}

func (h *Handler) handleEmployeeDelete(w http.ResponseWriter, r *http.Request) {
	before, err := h.Service.GetForEmployee(r.Context(), chi.URLParam(r, "employeeID"), chi.URLParam(r, "documentID"))
	if err != nil {
		api.FailError(w, r, err)
		return
	}
	h.delete(w, r, before)
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request, before *documents.Document) {
	if err := h.Service.Delete(r.Context(), before.ID); err != nil {
		api.FailError(w, r, err)
		return
	}
	shared.Audit(r, h.Audit, audit.ActionDelete, entityType, before.ID, before, nil)
	api.NoContent(w)
}
