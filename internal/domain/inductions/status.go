package inductions

import (
	"slices"
	"time"

	"opsflow/internal/domain/compliance"
)

// FilterStatuses are the values DeriveStatus can return.
var FilterStatuses = append(slices.Clone(WorkflowStatuses), compliance.StatusExpiringSoon)

// DeriveStatus lets the expiry date override the stored workflow status. A
// stored Expired or Expiring Soon that the date no longer supports reads as Completed.
func DeriveStatus(stored string, expiry *time.Time, today time.Time, thresholdDays int) string {
	switch compliance.ExpiryStatus(expiry, today, thresholdDays) {
	case "":
		return stored
	case compliance.StatusExpired:
		return StatusExpired
	case compliance.StatusExpiringSoon:
		return compliance.StatusExpiringSoon
	default:
		if stored == StatusExpired || stored == compliance.StatusExpiringSoon {
			return StatusCompleted
		}
		return stored
	}
}

func ValidWorkflowStatus(status string) bool {
	return slices.Contains(WorkflowStatuses, status)
}

// ValidFilterStatus also accepts the derived Expiring Soon.
func ValidFilterStatus(status string) bool {
	return slices.Contains(FilterStatuses, status)
}

// persistable reports whether a derived status may be written back to the
// status column. Expiring Soon is date-dependent and never stored.
func persistable(status string) bool {
	return ValidWorkflowStatus(status)
}
