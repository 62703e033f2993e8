package domain

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

// Length limits for user fields.
const (
	MinUsernameLength = 3
	MaxUsernameLength = 80
	MinPasswordLength = 12
	MaxPasswordLength = 72
)

// Common validation errors
var (
	ErrEmptyUserID         = invalid("user ID cannot be empty")
	ErrInvalidEmail        = invalid("invalid email format")
	ErrEmptyEmail          = invalid("email cannot be empty")
	ErrEmptyUsername       = invalid("username cannot be empty")
	ErrUsernameTooShort    = invalid("username must be at least 3 characters long")
	ErrUsernameTooLong     = invalid("username must be at most 80 characters long")
	ErrPasswordTooShort    = invalid("password must be at least 12 characters long")
	ErrPasswordTooLong     = invalid("password must be at most 72 characters long")
	ErrEmptyPassword       = invalid("password cannot be empty")
	ErrEmptyHashedPassword = invalid("hashed password cannot be empty")
)

// User is a registered account owning memory palaces.
type User struct {
	ID             uuid.UUID `json:"id"`
	Email          string    `json:"email"`
	Username       string    `json:"username"`
	Password       string    `json:"-"` // Plaintext, only set during registration and password changes
	HashedPassword string    `json:"-"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// NewUser creates a new User with a fresh ID and timestamps.
//
// The plaintext password is kept on the struct; the caller must hash it
// before the user is stored.
func NewUser(email, username, password string) (*User, error) {
	now := time.Now().UTC()
	user := &User{
		ID:        uuid.New(),
		Email:     strings.TrimSpace(email),
		Username:  strings.TrimSpace(username),
		Password:  password,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := user.Validate(); err != nil {
		return nil, err
	}

	return user, nil
}

// Validate checks if the User has valid data.
func (u *User) Validate() error {
	if u.ID == uuid.Nil {
		return ErrEmptyUserID
	}

	if u.Email == "" {
		return ErrEmptyEmail
	}
	if !validateEmailFormat(u.Email) {
		return ErrInvalidEmail
	}

	if err := ValidateUsername(u.Username); err != nil {
		return err
	}

	// Existing users loaded from storage carry only the hash.
	if u.Password != "" {
		return ValidatePassword(u.Password)
	}
	if u.HashedPassword == "" {
		return ErrEmptyPassword
	}

	return nil
}

// ValidateUsername checks the username length in characters.
func ValidateUsername(username string) error {
	n := utf8.RuneCountInString(username)
	switch {
	case n == 0:
		return ErrEmptyUsername
	case n < MinUsernameLength:
		return ErrUsernameTooShort
	case n > MaxUsernameLength:
		return ErrUsernameTooLong
	}
	return nil
}

// ValidatePassword checks a plaintext password. The upper bound is bcrypt's
// input limit in bytes.
func ValidatePassword(password string) error {
	switch {
	case password == "":
		return ErrEmptyPassword
	case len(password) < MinPasswordLength:
		return ErrPasswordTooShort
	case len(password) > MaxPasswordLength:
		return ErrPasswordTooLong
	}
	return nil
}

// ValidateEmail checks that email looks like local@domain.tld.
func ValidateEmail(email string) error {
	if email == "" {
		return ErrEmptyEmail
	}
	if !validateEmailFormat(email) {
		return ErrInvalidEmail
	}
	return nil
}

// validateEmailFormat requires a non-empty local part and a domain with a
// dot that is neither its first nor its last character.
func validateEmailFormat(email string) bool {
	local, domainPart, ok := strings.Cut(email, "@")
	if !ok || local == "" || strings.Contains(domainPart, "@") {
		return false
	}
	if strings.ContainsAny(email, " \t\r\n") {
		return false
	}

	dot := strings.IndexByte(domainPart, '.')
	return dot > 0 && dot < len(domainPart)-1
}
