package utils

import "strings"

const (
	// MinPasswordLength is the shortest accepted password
	MinPasswordLength = 8
	// PasswordSpecialChars are the special characters a password may contain
	PasswordSpecialChars = "@$!%*?&"
)

// PasswordPolicyMessage describes the rule enforced by ValidPassword
const PasswordPolicyMessage = "password must be at least 8 characters and contain an uppercase letter, a lowercase letter, a digit and one of @$!%*?&"

// ValidPassword reports whether password satisfies the password policy.
// Only ASCII letters, digits and PasswordSpecialChars are allowed.
func ValidPassword(password string) bool {
	if len(password) < MinPasswordLength {
		return false
	}

	var lower, upper, digit, special bool
	for _, r := range password {
		switch {
		case r >= 'a' && r <= 'z':
			lower = true
		case r >= 'A' && r <= 'Z':
			upper = true
		case r >= '0' && r <= '9':
			digit = true
		case strings.ContainsRune(PasswordSpecialChars, r):
			special = true
		default:
			return false
		}
	}
	return lower && upper && digit && special
}
