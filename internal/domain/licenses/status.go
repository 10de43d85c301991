package licenses

import (
	"slices"
	"time"

	"opsflow/internal/domain/compliance"
)

var Statuses = []string{
	compliance.StatusValid,
	compliance.StatusExpired,
	compliance.StatusExpiringSoon,
	compliance.StatusRenewalPending,
}

// DeriveStatus applies the expiry classification; a pending renewal masks
// everything except an expired license.
func DeriveStatus(expiry *time.Time, renewalPending bool, today time.Time, thresholdDays int) string {
	status := compliance.ExpiryStatus(expiry, today, thresholdDays)
	if status == "" {
		status = compliance.StatusValid
	}
	if renewalPending && status != compliance.StatusExpired {
		return compliance.StatusRenewalPending
	}
	return status
}

func ValidStatus(status string) bool {
	return slices.Contains(Statuses, status)
}
