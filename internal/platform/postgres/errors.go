package postgres

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/phrazzld/palace-api/internal/store"
)

// PostgreSQL error codes
const (
	uniqueViolationCode     = "23505"
	foreignKeyViolationCode = "23503"
	checkViolationCode      = "23514"
	notNullViolationCode    = "23502"
)

// Unique constraint names declared by the migrations.
const (
	usersEmailConstraint    = "users_email_key"
	usersUsernameConstraint = "users_username_key"
)

// MapError maps a database error to the store error it represents, wrapping
// the original so it stays available to errors.As.
func MapError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: %v", store.ErrNotFound, err)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case uniqueViolationCode:
			return fmt.Errorf("%w: %v", store.ErrDuplicate, err)
		case foreignKeyViolationCode:
			return fmt.Errorf("%w: foreign key violation (%s): %v",
				store.ErrInvalidEntity, pgErr.ConstraintName, err)
		case checkViolationCode:
			return fmt.Errorf("%w: check constraint violation (%s): %v",
				store.ErrInvalidEntity, pgErr.ConstraintName, err)
		case notNullViolationCode:
			return fmt.Errorf("%w: not null violation (%s): %v",
				store.ErrInvalidEntity, pgErr.ColumnName, err)
		}
	}

	return err
}

// IsUniqueViolation checks if err is a PostgreSQL unique constraint violation.
func IsUniqueViolation(err error) bool {
	return pgCode(err) == uniqueViolationCode
}

// IsForeignKeyViolation checks if err is a PostgreSQL foreign key violation.
func IsForeignKeyViolation(err error) bool {
	return pgCode(err) == foreignKeyViolationCode
}

func pgCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}

// CheckRowsAffected returns a not-found error when an UPDATE or DELETE
// touched no rows. notFound is returned as-is; pass nil for store.ErrNotFound.
func CheckRowsAffected(result sql.Result, notFound error) error {
	if result == nil {
		return fmt.Errorf("nil result provided to CheckRowsAffected")
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		if notFound == nil {
			return store.ErrNotFound
		}
		return notFound
	}

	return nil
}

// mapUserUniqueViolation turns a unique violation on the users table into
// ErrEmailExists or ErrUsernameExists depending on the violated constraint.
// Other errors are returned unchanged.
func mapUserUniqueViolation(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != uniqueViolationCode {
		return err
	}

	switch pgErr.ConstraintName {
	case usersEmailConstraint:
		return store.ErrEmailExists
	case usersUsernameConstraint:
		return store.ErrUsernameExists
	default:
		return fmt.Errorf("%w: %s", store.ErrDuplicate, pgErr.ConstraintName)
	}
}
