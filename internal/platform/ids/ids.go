package ids

import (
	"github.com/google/uuid"
)

// Valid reports whether value is a canonical, hyphenated UUID v4.
func Valid(value string) bool {
	if len(value) != 36 {
		return false
	}
	parsed, err := uuid.Parse(value)
	if err != nil {
		return false
	}
	return parsed.Version() == 4 && parsed.Variant() == uuid.RFC4122
}

// AllValid reports whether values is non-empty and every entry is Valid.
func AllValid(values []string) bool {
	if len(values) == 0 {
		return false
	}
	for _, v := range values {
		if !Valid(v) {
			return false
		}
	}
	return true
}

func New() string {
	return uuid.NewString()
}
