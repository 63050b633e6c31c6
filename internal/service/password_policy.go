package service

import "strings"

const passwordSpecials = "@$!%*?&"

// ValidatePassword checks a password against the account policy:
// at least 8 characters, one lowercase letter, one uppercase letter,
// one digit and one special character, with no characters outside
// those classes.
func ValidatePassword(password string) bool {
	if len(password) < 8 {
		return false
	}

	hasUpper := false
	hasLower := false
	hasDigit := false
	hasSpecial := false

	for _, char := range password {
		switch {
		case 'A' <= char && char <= 'Z':
			hasUpper = true
		case 'a' <= char && char <= 'z':
			hasLower = true
		case '0' <= char && char <= '9':
			hasDigit = true
		case strings.ContainsRune(passwordSpecials, char):
			hasSpecial = true
		default:
			return false
		}
	}

	return hasUpper && hasLower && hasDigit && hasSpecial
}

// PasswordPolicyMessage describes the policy for validation errors.
const PasswordPolicyMessage = "password must be at least 8 characters long and contain an uppercase letter, a lowercase letter, a digit and one of @$!%*?&"
