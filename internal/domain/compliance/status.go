// Package compliance derives expiry-driven statuses for licenses and inductions.
package compliance

import (
	"math"
	"time"
)

const DefaultThresholdDays = 30

const (
	StatusValid          = "Valid"
	StatusExpired        = "Expired"
	StatusExpiringSoon   = "Expiring Soon"
	StatusRenewalPending = "Renewal Pending"
)

// Day truncates t to its UTC calendar day.
func Day(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}

// DaysUntil counts whole calendar days from today to expiry, negative once expired.
func DaysUntil(expiry, today time.Time) int {
	diff := Day(expiry).Sub(Day(today))
	return int(math.Ceil(diff.Hours() / 24))
}

func Classify(days, thresholdDays int) string {
	switch {
	case days < 0:
		return StatusExpired
	case days <= thresholdDays:
		return StatusExpiringSoon
	default:
		return StatusValid
	}
}

// ExpiryStatus classifies an optional expiry date. It returns "" when there is no date.
func ExpiryStatus(expiry *time.Time, today time.Time, thresholdDays int) string {
	if expiry == nil {
		return ""
	}
	return Classify(DaysUntil(*expiry, today), thresholdDays)
}

// DaysLeft is DaysUntil for an optional expiry date.
func DaysLeft(expiry *time.Time, today time.Time) *int {
	if expiry == nil {
		return nil
	}
	days := DaysUntil(*expiry, today)
	return &days
}

// Policy fixes the threshold and clock used for derivation.
type Policy struct {
	ThresholdDays int
	Now           func() time.Time
}

func NewPolicy(thresholdDays int) Policy {
	return Policy{ThresholdDays: thresholdDays, Now: time.Now}
}

func (p Policy) CurrentTime() time.Time {
	if p.Now != nil {
		return p.Now()
	}
	return time.Now()
}

func (p Policy) Today() time.Time {
	return Day(p.CurrentTime())
}

func (p Policy) Threshold() int {
	if p.ThresholdDays < 0 {
		return DefaultThresholdDays
	}
	return p.ThresholdDays
}
