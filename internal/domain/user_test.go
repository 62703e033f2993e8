package domain

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"
)

func TestNewUser(t *testing.T) {
	validEmail := "test@example.com"
	validPassword := "correct horse battery"

	user, err := NewUser(" "+validEmail+" ", "alice", validPassword)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if user.ID == uuid.Nil {
		t.Error("Expected non-nil UUID, got nil UUID")
	}
	if user.Email != validEmail {
		t.Errorf("Expected email %s, got %s", validEmail, user.Email)
	}
	if user.Username != "alice" {
		t.Errorf("Expected username alice, got %s", user.Username)
	}
	if user.Password != validPassword {
		t.Errorf("Expected plaintext password to be kept for hashing")
	}
	if user.CreatedAt.IsZero() || user.UpdatedAt.IsZero() {
		t.Error("Expected non-zero timestamps")
	}

	tests := []struct {
		name     string
		email    string
		username string
		password string
		want     error
	}{
		{"empty email", "", "alice", validPassword, ErrEmptyEmail},
		{"invalid email", "invalidemail", "alice", validPassword, ErrInvalidEmail},
		{"empty username", validEmail, "", validPassword, ErrEmptyUsername},
		{"short username", validEmail, "al", validPassword, ErrUsernameTooShort},
		{"long username", validEmail, strings.Repeat("a", 81), validPassword, ErrUsernameTooLong},
		{"empty password", validEmail, "alice", "", ErrEmptyPassword},
		{"short password", validEmail, "alice", "short", ErrPasswordTooShort},
		{"long password", validEmail, "alice", strings.Repeat("p", 73), ErrPasswordTooLong},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewUser(tt.email, tt.username, tt.password)
			if !errors.Is(err, tt.want) {
				t.Errorf("Expected error %v, got %v", tt.want, err)
			}
		})
	}
}

func TestUserValidate(t *testing.T) {
	stored := User{
		ID:             uuid.New(),
		Email:          "test@example.com",
		Username:       "alice",
		HashedPassword: "$2a$10$abcdefghijklmnopqrstuv",
	}
	if err := stored.Validate(); err != nil {
		t.Errorf("Expected stored user to be valid, got %v", err)
	}

	noID := stored
	noID.ID = uuid.Nil
	if err := noID.Validate(); err != ErrEmptyUserID {
		t.Errorf("Expected error %v, got %v", ErrEmptyUserID, err)
	}

	noHash := stored
	noHash.HashedPassword = ""
	if err := noHash.Validate(); err != ErrEmptyPassword {
		t.Errorf("Expected error %v, got %v", ErrEmptyPassword, err)
	}
}

func TestValidateEmail(t *testing.T) {
	valid := []string{"a@b.co", "first.last@example.com", "user+tag@sub.domain.org"}
	for _, email := range valid {
		if err := ValidateEmail(email); err != nil {
			t.Errorf("Expected %q to be valid, got %v", email, err)
		}
	}

	invalid := []string{"@example.com", "user@", "user@.com", "user@com.", "user@com", "a@b@c.com", "a b@c.com"}
	for _, email := range invalid {
		if err := ValidateEmail(email); err != ErrInvalidEmail {
			t.Errorf("Expected %q to be invalid, got %v", email, err)
		}
	}

	if err := ValidateEmail(""); err != ErrEmptyEmail {
		t.Errorf("Expected error %v, got %v", ErrEmptyEmail, err)
	}
}
