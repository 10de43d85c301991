package credentials

import (
	"unicode"
	"unicode/utf8"
)

const (
	StrengthWeak   = "weak"
	StrengthMedium = "medium"
	StrengthStrong = "strong"
)

const minStrongLength = 8

// Score counts the satisfied rules: upper case, lower case, digit, symbol and length.
func Score(password string) int {
	var upper, lower, digit, special bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r):
			digit = true
		case !unicode.IsLetter(r) && !unicode.IsSpace(r):
			special = true
		}
	}
	score := 0
	for _, ok := range []bool{upper, lower, digit, special, utf8.RuneCountInString(password) >= minStrongLength} {
		if ok {
			score++
		}
	}
	return score
}

func Strength(password string) string {
	if password == "" {
		return StrengthWeak
	}
	switch score := Score(password); {
	case score <= 2:
		return StrengthWeak
	case score <= 4:
		return StrengthMedium
	default:
		return StrengthStrong
	}
}
