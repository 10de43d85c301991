package shared

import (
	"net/http"
	"sort"
	"strings"
	"time"

	"opsflow/internal/platform/ids"
	"opsflow/internal/platform/optional"
	"opsflow/internal/transport/http/api"
)

type ValidationIssue = api.FieldIssue

type Validator struct {
	issues []ValidationIssue
}

func NewValidator() *Validator {
	return &Validator{issues: make([]ValidationIssue, 0, 4)}
}

func (v *Validator) Add(field, reason string) {
	if v == nil {
		return
	}
	field = strings.TrimSpace(field)
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return
	}
	v.issues = append(v.issues, ValidationIssue{
		Field:  field,
		Reason: reason,
	})
}

func (v *Validator) Required(field, value, reason string) {
	if strings.TrimSpace(value) == "" {
		v.Add(field, reason)
	}
}

// Enum matches case-insensitively and returns the canonical spelling. Empty
// input is accepted and returned as "".
func (v *Validator) Enum(field, value string, allowed []string, reason string) string {
	normalized := strings.ToLower(strings.TrimSpace(value))
	if normalized == "" {
		return ""
	}
	for _, candidate := range allowed {
		if normalized == strings.ToLower(strings.TrimSpace(candidate)) {
			return candidate
		}
	}
	v.Add(field, reason)
	return ""
}

func (v *Validator) UUID(field, value string) {
	if value != "" && !ids.Valid(value) {
		v.Add(field, "must be a UUID")
	}
}

func (v *Validator) Date(field, raw string) (time.Time, bool) {
	parsed, err := ParseDate(strings.TrimSpace(raw))
	if err != nil || parsed.IsZero() {
		v.Add(field, "must be a valid date in YYYY-MM-DD format")
		return time.Time{}, false
	}
	return parsed, true
}

// OptionalDate parses a date that may be omitted; an empty string reads as absent.
func (v *Validator) OptionalDate(field string, raw *string) *time.Time {
	if raw == nil || strings.TrimSpace(*raw) == "" {
		return nil
	}
	parsed, ok := v.Date(field, *raw)
	if !ok {
		return nil
	}
	return &parsed
}

// PatchDate converts a tri-state date field. An explicit null or empty string clears the column.
func (v *Validator) PatchDate(field string, raw optional.Value[string]) optional.Value[time.Time] {
	if !raw.Set {
		return optional.Value[time.Time]{}
	}
	if raw.Null || strings.TrimSpace(raw.V) == "" {
		return optional.Null[time.Time]()
	}
	parsed, ok := v.Date(field, raw.V)
	if !ok {
		return optional.Value[time.Time]{}
	}
	return optional.Of(parsed)
}

func (v *Validator) DateOrder(startField string, start *time.Time, endField string, end *time.Time) {
	if start == nil || end == nil {
		return
	}
	if end.Before(*start) {
		v.Add(startField, "must be on or before "+endField)
		v.Add(endField, "must be on or after "+startField)
	}
}

func (v *Validator) HasIssues() bool {
	return v != nil && len(v.issues) > 0
}

func (v *Validator) Issues() []ValidationIssue {
	if v == nil || len(v.issues) == 0 {
		return nil
	}
	out := make([]ValidationIssue, len(v.issues))
	copy(out, v.issues)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Field == out[j].Field {
			return out[i].Reason < out[j].Reason
		}
		return out[i].Field < out[j].Field
	})
	return out
}

func (v *Validator) Reject(w http.ResponseWriter, requestID string) bool {
	if !v.HasIssues() {
		return false
	}
	FailValidation(w, requestID, v.Issues())
	return true
}

func FailValidation(w http.ResponseWriter, requestID string, issues []ValidationIssue) {
	api.FailWithFields(
		w,
		http.StatusBadRequest,
		"validation_error",
		"payload validation failed",
		issues,
		requestID,
	)
}
