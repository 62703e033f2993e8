package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/phrazzld/palace-api/internal/api/shared"
	"github.com/phrazzld/palace-api/internal/domain"
	"github.com/phrazzld/palace-api/internal/service"
	"github.com/phrazzld/palace-api/internal/service/auth"
	"github.com/phrazzld/palace-api/internal/store"
	"github.com/phrazzld/palace-api/internal/task"
)

// MapErrorToStatusCode maps internal errors to appropriate HTTP status codes
// based on the error type. This prevents leaking internal error types or
// messages to clients.
func MapErrorToStatusCode(err error) int {
	var validationErrs validator.ValidationErrors

	switch {
	// Authentication errors
	case errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrExpiredToken),
		errors.Is(err, auth.ErrInvalidRefreshToken),
		errors.Is(err, auth.ErrExpiredRefreshToken),
		errors.Is(err, auth.ErrWrongTokenType),
		errors.Is(err, domain.ErrUnauthorized):
		return http.StatusUnauthorized

	// Authorization errors
	case errors.Is(err, service.ErrNotOwned):
		return http.StatusForbidden

	// Not found errors
	case store.IsNotFoundError(err),
		errors.Is(err, task.ErrJobNotFound):
		return http.StatusNotFound

	// Conflict errors
	case store.IsDuplicateError(err):
		return http.StatusConflict

	// Bad request errors
	case domain.IsValidationError(err),
		errors.As(err, &validationErrs),
		errors.Is(err, shared.ErrEmptyBody),
		errors.Is(err, store.ErrInvalidEntity),
		errors.Is(err, task.ErrUnknownTask):
		return http.StatusBadRequest

	// Queue unavailable
	case errors.Is(err, task.ErrQueueFull),
		errors.Is(err, task.ErrQueueClosed):
		return http.StatusServiceUnavailable

	default:
		return http.StatusInternalServerError
	}
}

// GetSafeErrorMessage returns a sanitized, user-friendly error message
// based on the error type. This prevents leaking sensitive internal details.
func GetSafeErrorMessage(err error) string {
	if err == nil {
		return "An unexpected error occurred"
	}

	var validationErr *domain.ValidationError
	var validationErrs validator.ValidationErrors

	switch {
	case errors.Is(err, auth.ErrExpiredToken):
		return "Token expired"

	case errors.Is(err, auth.ErrInvalidToken):
		return "Invalid token"

	case errors.Is(err, auth.ErrInvalidRefreshToken),
		errors.Is(err, auth.ErrExpiredRefreshToken),
		errors.Is(err, auth.ErrWrongTokenType):
		return "Invalid refresh token"

	case errors.Is(err, domain.ErrUnauthorized):
		return "Authentication required"

	case errors.Is(err, service.ErrNotOwned):
		return "Access denied"

	case errors.Is(err, store.ErrUserNotFound):
		return "User not found"

	case errors.Is(err, store.ErrPalaceNotFound):
		return "Memory palace not found"

	case errors.Is(err, store.ErrRoomNotFound):
		return "Room not found"

	case errors.Is(err, store.ErrItemNotFound):
		return "Item not found"

	case errors.Is(err, task.ErrJobNotFound):
		return "Job not found"

	case errors.Is(err, store.ErrEmailExists):
		return "Email already in use"

	case errors.Is(err, store.ErrUsernameExists):
		return "Username already taken"

	case errors.Is(err, shared.ErrEmptyBody):
		return "Request body is required"

	case errors.As(err, &validationErr):
		return fmt.Sprintf("Invalid %s: %s", validationErr.Field, validationErr.Message)

	case errors.As(err, &validationErrs):
		return SanitizeValidationError(validationErrs)

	case errors.Is(err, domain.ErrValidation):
		// Domain validation messages are written for clients.
		return domainValidationMessage(err)

	case errors.Is(err, store.ErrInvalidEntity):
		return "Invalid entity data"

	case errors.Is(err, task.ErrUnknownTask):
		return "Unknown task"

	case errors.Is(err, task.ErrQueueFull),
		errors.Is(err, task.ErrQueueClosed):
		return "Task queue unavailable"

	default:
		return "An unexpected error occurred"
	}
}

// domainValidationMessage returns the innermost message of a domain
// validation error, e.g. "title cannot be empty".
func domainValidationMessage(err error) string {
	for {
		next := errors.Unwrap(err)
		if next == nil || next == domain.ErrValidation {
			break
		}
		err = next
	}
	if msg, ok := strings.CutPrefix(err.Error(), domain.ErrValidation.Error()+": "); ok && msg != "" {
		return msg
	}
	return "Validation error"
}

// SanitizeValidationError turns validator errors into a short message naming
// the first failing field.
func SanitizeValidationError(err error) string {
	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) || len(validationErrs) == 0 {
		return "Validation error"
	}

	fe := validationErrs[0]
	return fmt.Sprintf("Invalid %s: %s", fe.Field(), getValidationTagMessage(fe.Tag()))
}

// getValidationTagMessage maps validation tags to user-friendly error messages
func getValidationTagMessage(tag string) string {
	switch tag {
	case "required":
		return "required field"
	case "email":
		return "invalid email format"
	case "min":
		return "too short"
	case "max":
		return "too long"
	case "oneof":
		return "invalid value"
	default:
		return "validation failed"
	}
}

// HandleAPIError writes the status and safe message for err and logs the
// full error. fallbackMsg replaces the generic message of 500 responses.
func HandleAPIError(w http.ResponseWriter, r *http.Request, err error, fallbackMsg string) {
	status := MapErrorToStatusCode(err)
	message := GetSafeErrorMessage(err)
	if status == http.StatusInternalServerError && fallbackMsg != "" {
		message = fallbackMsg
	}

	var opts []shared.ResponseOption
	if status == http.StatusUnauthorized || status == http.StatusForbidden {
		opts = append(opts, shared.WithElevatedLogLevel())
	}

	shared.RespondWithErrorAndLog(w, r, status, message, err, opts...)
}
