package auth

import "errors"

// Access token errors.
var (
	ErrInvalidToken     = errors.New("invalid authentication token")
	ErrExpiredToken     = errors.New("authentication token has expired")
	ErrTokenNotYetValid = errors.New("authentication token not yet valid")
)

// Refresh token errors.
var (
	ErrInvalidRefreshToken = errors.New("invalid refresh token")
	ErrExpiredRefreshToken = errors.New("refresh token has expired")
)

// ErrWrongTokenType is returned when an access token is presented as a
// refresh token or the other way round.
var ErrWrongTokenType = errors.New("wrong token type")

// ErrPasswordMismatch is returned by a PasswordVerifier for a wrong password.
var ErrPasswordMismatch = errors.New("password does not match")
