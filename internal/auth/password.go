package auth

import (
	"strings"

	"golang.org/x/crypto/bcrypt"
)

const (
	PasswordHistoryLimit = 5
	passwordMinLength    = 8
	passwordSymbols      = "@$!%*?&"
)

// ValidatePasswordStrength enforces: at least 8 characters drawn from letters, digits and @$!%*?&,
// with at least one of each of lowercase, uppercase, digit and symbol.
func ValidatePasswordStrength(password string) error {
	if len(password) < passwordMinLength {
		return ErrWeakPassword
	}

	var lower, upper, digit, symbol bool
	for _, c := range password {
		switch {
		case c >= 'a' && c <= 'z':
			lower = true
		case c >= 'A' && c <= 'Z':
			upper = true
		case c >= '0' && c <= '9':
			digit = true
		case strings.ContainsRune(passwordSymbols, c):
			symbol = true
		default:
			return ErrWeakPassword
		}
	}

	if !lower || !upper || !digit || !symbol {
		return ErrWeakPassword
	}
	return nil
}

func HashPassword(password string, cost int) (string, error) {
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func VerifyPassword(hashedPassword, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password)) == nil
}

func matchesAnyHash(hashes []string, password string) bool {
	for _, h := range hashes {
		if VerifyPassword(h, password) {
			return true
		}
	}
	return false
}
