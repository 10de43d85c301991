package shared

import (
	"log/slog"
	"net/http"

	"opsflow/internal/domain/audit"
)

// Audit records a write. A failure is logged and never reaches the client.
func Audit(r *http.Request, rec audit.Recorder, action, entityType, entityID string, before, after any) {
	if rec == nil {
		return
	}
	if err := rec.Record(r.Context(), action, entityType, entityID, before, after); err != nil {
		slog.Warn("audit record failed",
			"action", action,
			"entityType", entityType,
			"entityId", entityID,
			"requestId", RequestID(r),
			"err", err,
		)
	}
}
