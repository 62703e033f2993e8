package store

import (
	"errors"
	"fmt"
)

// Common store errors used across all store implementations.
var (
	// ErrNotFound is returned when a requested entity does not exist in the store.
	// Entity-specific variants wrap it.
	ErrNotFound = errors.New("entity not found")

	// ErrDuplicate is returned when an operation would create a duplicate
	// of a unique entity (e.g., a user with the same email).
	ErrDuplicate = errors.New("entity already exists")

	// ErrInvalidEntity is returned when an entity fails validation before
	// being stored. Check the wrapped error for specific validation details.
	ErrInvalidEntity = errors.New("invalid entity")

	// Entity-specific "not found" errors
	ErrUserNotFound   = fmt.Errorf("%w: user", ErrNotFound)
	ErrPalaceNotFound = fmt.Errorf("%w: palace", ErrNotFound)
	ErrRoomNotFound   = fmt.Errorf("%w: room", ErrNotFound)
	ErrItemNotFound   = fmt.Errorf("%w: item", ErrNotFound)

	// Entity-specific "duplicate" errors
	ErrEmailExists    = fmt.Errorf("%w: email", ErrDuplicate)
	ErrUsernameExists = fmt.Errorf("%w: username", ErrDuplicate)
)

// IsNotFoundError reports whether err is ErrNotFound or one of its
// entity-specific variants.
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsDuplicateError reports whether err is ErrDuplicate or one of its
// entity-specific variants.
func IsDuplicateError(err error) bool {
	return errors.Is(err, ErrDuplicate)
}
