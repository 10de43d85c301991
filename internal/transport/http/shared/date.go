package shared

import "time"

const DateLayout = "2006-01-02"

// ParseDate accepts RFC3339 or YYYY-MM-DD and returns the UTC calendar day.
func ParseDate(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, nil
	}
	if parsed, err := time.Parse(time.RFC3339, value); err == nil {
		u := parsed.UTC()
		return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC), nil
	}
	return time.Parse(DateLayout, value)
}
