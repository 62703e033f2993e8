package store

import (
	"errors"
	"fmt"
	"testing"
)

func TestIsNotFoundError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{name: "nil error", err: nil, expected: false},
		{name: "generic error", err: errors.New("some error"), expected: false},
		{name: "ErrNotFound", err: ErrNotFound, expected: true},
		{name: "wrapped ErrNotFound", err: fmt.Errorf("lookup: %w", ErrNotFound), expected: true},
		{name: "ErrUserNotFound", err: ErrUserNotFound, expected: true},
		{name: "ErrPalaceNotFound", err: ErrPalaceNotFound, expected: true},
		{name: "wrapped ErrRoomNotFound", err: fmt.Errorf("failed to find room: %w", ErrRoomNotFound), expected: true},
		{name: "ErrItemNotFound", err: ErrItemNotFound, expected: true},
		{name: "ErrEmailExists", err: ErrEmailExists, expected: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsNotFoundError(tt.err); got != tt.expected {
				t.Errorf("IsNotFoundError() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestIsDuplicateError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{name: "nil error", err: nil, expected: false},
		{name: "generic error", err: errors.New("some error"), expected: false},
		{name: "ErrDuplicate", err: ErrDuplicate, expected: true},
		{name: "ErrEmailExists", err: ErrEmailExists, expected: true},
		{name: "wrapped ErrUsernameExists", err: fmt.Errorf("failed to create user: %w", ErrUsernameExists), expected: true},
		{name: "ErrPalaceNotFound", err: ErrPalaceNotFound, expected: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsDuplicateError(tt.err); got != tt.expected {
				t.Errorf("IsDuplicateError() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestEntityErrorMessages(t *testing.T) {
	if got := ErrPalaceNotFound.Error(); got != "entity not found: palace" {
		t.Errorf("ErrPalaceNotFound.Error() = %q", got)
	}
	if got := ErrUsernameExists.Error(); got != "entity already exists: username" {
		t.Errorf("ErrUsernameExists.Error() = %q", got)
	}
}
