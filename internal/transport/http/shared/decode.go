package shared

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"opsflow/internal/requestctx"
	"opsflow/internal/transport/http/api"
)

// DecodeJSON reads one JSON value into dst. Unknown fields are ignored, so
// read-only attributes such as id or createdAt in the body have no effect.
// On failure the response has been written and false is returned.
func DecodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	err := json.NewDecoder(r.Body).Decode(dst)
	if err == nil {
		return true
	}
	requestID := requestctx.GetRequestID(r.Context())
	var maxBytes *http.MaxBytesError
	switch {
	case errors.As(err, &maxBytes):
		api.Fail(w, http.StatusRequestEntityTooLarge, "payload_too_large", "request body too large", requestID)
	case errors.Is(err, io.EOF):
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "request body is required", requestID)
	default:
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", requestID)
	}
	return false
}

func RequestID(r *http.Request) string {
	return requestctx.GetRequestID(r.Context())
}
