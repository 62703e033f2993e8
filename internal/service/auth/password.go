package auth

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// PasswordVerifier checks a plaintext password against a stored hash.
type PasswordVerifier interface {
	// Compare returns ErrPasswordMismatch when password does not match.
	Compare(hashedPassword, password string) error
}

// BcryptVerifier checks bcrypt hashes as written by the user store.
type BcryptVerifier struct{}

var _ PasswordVerifier = BcryptVerifier{}

// NewBcryptVerifier returns a bcrypt PasswordVerifier.
func NewBcryptVerifier() BcryptVerifier {
	return BcryptVerifier{}
}

// Compare implements PasswordVerifier.
func (BcryptVerifier) Compare(hashedPassword, password string) error {
	err := bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password))
	switch {
	case err == nil:
		return nil
	case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
		return ErrPasswordMismatch
	default:
		return fmt.Errorf("failed to compare password hash: %w", err)
	}
}
