package hash

import (
	"unicode"

	"golang.org/x/crypto/bcrypt"
)

const bcryptCost = 12

func Password(password string) (string, error) {
	hashBytes, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", err
	}
	return string(hashBytes), nil
}

// Check reports whether password matches hash. A malformed hash is
// treated as a mismatch, never an error.
func Check(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// IsStrong requires at least 8 characters with an upper-case letter, a
// lower-case letter, a digit and a special character.
func IsStrong(password string) bool {
	if len(password) < 8 {
		return false
	}
	var upper, lower, digit, special bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r):
			digit = true
		default:
			special = true
		}
	}
	return upper && lower && digit && special
}
