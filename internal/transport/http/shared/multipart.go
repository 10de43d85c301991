package shared

import (
	"errors"
	"mime/multipart"
	"net/http"
	"strings"

	"opsflow/internal/transport/http/api"
)

const multipartMemory = 8 << 20

// ParseMultipart parses a multipart/form-data body. On failure the response
// has been written and false is returned.
func ParseMultipart(w http.ResponseWriter, r *http.Request) bool {
	err := r.ParseMultipartForm(multipartMemory)
	if err == nil {
		return true
	}
	var maxBytes *http.MaxBytesError
	if errors.As(err, &maxBytes) {
		api.Fail(w, http.StatusRequestEntityTooLarge, "payload_too_large", "request body too large", RequestID(r))
		return false
	}
	api.Fail(w, http.StatusBadRequest, "invalid_payload", "expected a multipart/form-data body", RequestID(r))
	return false
}

// FormFile returns the named upload, or nil when the field is absent. The
// caller closes the returned file.
func FormFile(r *http.Request, field string) (multipart.File, *multipart.FileHeader, error) {
	file, header, err := r.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) {
		return nil, nil, nil
	}
	if err != nil {
		return nil, nil, err
	}
	return file, header, nil
}

// FileContentType reads the part's declared type, defaulting to octet-stream.
func FileContentType(header *multipart.FileHeader) string {
	if ct := strings.TrimSpace(header.Header.Get("Content-Type")); ct != "" {
		return ct
	}
	return "application/octet-stream"
}
