package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"opsflow/internal/domain/apperr"
	"opsflow/internal/requestctx"
)

type FieldIssue struct {
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

// ErrorBody is the JSON shape of every non-2xx response.
type ErrorBody struct {
	Error     string       `json:"error"`
	Code      string       `json:"code"`
	RequestID string       `json:"requestId"`
	Fields    []FieldIssue `json:"fields,omitempty"`
}

func WriteJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		slog.Warn("write json failed", "err", err)
	}
}

func Success(w http.ResponseWriter, data any) {
	WriteJSON(w, http.StatusOK, data)
}

func Created(w http.ResponseWriter, data any) {
	WriteJSON(w, http.StatusCreated, data)
}

func NoContent(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}

func Fail(w http.ResponseWriter, status int, code, message, requestID string) {
	WriteJSON(w, status, ErrorBody{Error: message, Code: code, RequestID: requestID})
}

func FailWithFields(w http.ResponseWriter, status int, code, message string, fields []FieldIssue, requestID string) {
	WriteJSON(w, status, ErrorBody{Error: message, Code: code, RequestID: requestID, Fields: fields})
}

// FailError maps domain error kinds to status codes. Anything unrecognised is
// logged and answered with a generic 500.
func FailError(w http.ResponseWriter, r *http.Request, err error) {
	requestID := requestctx.GetRequestID(r.Context())

	var maxBytes *http.MaxBytesError
	if errors.As(err, &maxBytes) {
		Fail(w, http.StatusRequestEntityTooLarge, "payload_too_large", "request body too large", requestID)
		return
	}

	var appErr *apperr.Error
	message := err.Error()
	if errors.As(err, &appErr) {
		message = appErr.Error()
	}

	switch {
	case errors.Is(err, apperr.ErrValidation):
		var fields []FieldIssue
		if appErr != nil && appErr.Field() != "" {
			fields = []FieldIssue{{Field: appErr.Field(), Reason: appErr.Error()}}
		}
		FailWithFields(w, http.StatusBadRequest, "validation_error", message, fields, requestID)
	case errors.Is(err, apperr.ErrNotFound):
		Fail(w, http.StatusNotFound, "not_found", message, requestID)
	case errors.Is(err, apperr.ErrConflict):
		Fail(w, http.StatusConflict, "conflict", message, requestID)
	default:
		slog.Error("request failed",
			"method", r.Method,
			"path", r.URL.Path,
			"requestId", requestID,
			"err", err,
		)
		Fail(w, http.StatusInternalServerError, "internal_error", "internal server error", requestID)
	}
}
