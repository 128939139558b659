package secure

import (
	"regexp"
	"strings"
)

// MinPasswordLength is the shortest password accepted for admin accounts.
const MinPasswordLength = 6

// Strength is a coarse rating of a password.
type Strength string

const (
	StrengthWeak   Strength = "weak"
	StrengthMedium Strength = "medium"
	StrengthStrong Strength = "strong"
)

const specialChars = `!@#$%^&*(),.?":{}|<>`

// PasswordStrength rates a password by how many character classes it uses:
// upper case, lower case, digits and specials. Fewer than MinPasswordLength
// characters is always weak.
func PasswordStrength(password string) Strength {
	if len([]rune(password)) < MinPasswordLength {
		return StrengthWeak
	}

	var upper, lower, digit, special bool
	for _, r := range password {
		switch {
		case r >= 'A' && r <= 'Z':
			upper = true
		case r >= 'a' && r <= 'z':
			lower = true
		case r >= '0' && r <= '9':
			digit = true
		case strings.ContainsRune(specialChars, r):
			special = true
		}
	}

	classes := 0
	for _, ok := range []bool{upper, lower, digit, special} {
		if ok {
			classes++
		}
	}

	switch {
	case classes <= 2:
		return StrengthWeak
	case classes == 3:
		return StrengthMedium
	default:
		return StrengthStrong
	}
}

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// ValidEmail reports whether s looks like an email address.
func ValidEmail(s string) bool {
	return emailPattern.MatchString(s)
}
