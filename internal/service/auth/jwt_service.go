package auth

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// TokenType is the purpose of a token, carried in its "type" claim.
type TokenType string

const (
	// TokenAccess authenticates API requests.
	TokenAccess TokenType = "access"
	// TokenRefresh can only be exchanged for a new token pair.
	TokenRefresh TokenType = "refresh"
)

// JWTService issues and validates the access and refresh tokens of the API.
// Each Validate method accepts only its own token type and returns
// ErrWrongTokenType for the other.
type JWTService interface {
	GenerateToken(ctx context.Context, userID uuid.UUID) (string, error)
	ValidateToken(ctx context.Context, tokenString string) (*Claims, error)

	GenerateRefreshToken(ctx context.Context, userID uuid.UUID) (string, error)
	ValidateRefreshToken(ctx context.Context, tokenString string) (*Claims, error)
}

// Claims is the validated content of a token.
type Claims struct {
	UserID    uuid.UUID
	Type      TokenType
	IssuedAt  time.Time
	ExpiresAt time.Time

	// ID is the unique token id (jti).
	ID string
}
