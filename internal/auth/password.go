package auth

import (
	"fmt"
	"regexp"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

const (
	minUsernameLength = 3
	maxUsernameLength = 30
	minPasswordLength = 6
	// bcrypt ignores input past this length
	maxPasswordLength = 72
	passwordSpecials  = "@$!%*?&"
)

var usernamePattern = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// ValidateUsername checks length and alphabet of a username.
func ValidateUsername(username string) error {
	if len(username) < minUsernameLength || len(username) > maxUsernameLength {
		return fmt.Errorf("%w: must be between %d and %d characters",
			ErrInvalidUsername, minUsernameLength, maxUsernameLength)
	}

	if !usernamePattern.MatchString(username) {
		return fmt.Errorf("%w: may only contain letters, digits, '_' and '-'", ErrInvalidUsername)
	}

	return nil
}

// ValidatePassword requires an upper and lower case letter, a digit and one of @$!%*?&.
func ValidatePassword(password string) error {
	if len(password) < minPasswordLength || len(password) > maxPasswordLength {
		return fmt.Errorf("%w: must be between %d and %d characters",
			ErrWeakPassword, minPasswordLength, maxPasswordLength)
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
		case strings.ContainsRune(passwordSpecials, r):
			special = true
		}
	}

	if !upper || !lower || !digit || !special {
		return fmt.Errorf("%w: must contain an uppercase letter, a lowercase letter, a digit and one of %s",
			ErrWeakPassword, passwordSpecials)
	}

	return nil
}

// PasswordHasher hashes and verifies passwords with bcrypt.
type PasswordHasher struct {
	cost int
}

// NewPasswordHasher creates a hasher; a zero cost selects bcrypt.DefaultCost.
func NewPasswordHasher(cost int) *PasswordHasher {
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}

	return &PasswordHasher{cost: cost}
}

// Hash returns the bcrypt hash of password.
func (h *PasswordHasher) Hash(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}

	return string(hashed), nil
}

// Verify reports whether password matches hash.
func (h *PasswordHasher) Verify(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
