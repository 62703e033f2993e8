package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/phrazzld/palace-api/internal/api/shared"
	"github.com/phrazzld/palace-api/internal/config"
	"github.com/phrazzld/palace-api/internal/platform/logger"
	"github.com/phrazzld/palace-api/internal/service"
	"github.com/phrazzld/palace-api/internal/service/auth"
	"github.com/phrazzld/palace-api/internal/store"
)

// AuthHandler handles authentication-related API requests.
type AuthHandler struct {
	users            service.UserService
	jwtService       auth.JWTService
	passwordVerifier auth.PasswordVerifier
	tokenLifetime    time.Duration
	now              func() time.Time
}

// NewAuthHandler creates a new AuthHandler with the given dependencies.
func NewAuthHandler(
	users service.UserService,
	jwtService auth.JWTService,
	passwordVerifier auth.PasswordVerifier,
	authConfig config.AuthConfig,
) *AuthHandler {
	return &AuthHandler{
		users:            users,
		jwtService:       jwtService,
		passwordVerifier: passwordVerifier,
		tokenLifetime:    time.Duration(authConfig.TokenLifetimeMinutes) * time.Minute,
		now:              time.Now,
	}
}

// Register handles POST /api/auth/register.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	user, err := h.users.Register(r.Context(), req.Email, req.Username, req.Password)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to create user")
		return
	}

	h.respondWithTokens(w, r, http.StatusCreated, user.ID)
}

// Login handles POST /api/auth/login.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	user, err := h.users.GetUserByEmail(r.Context(), req.Email)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			shared.RespondWithError(w, r, http.StatusUnauthorized, "Invalid credentials")
			return
		}
		HandleAPIError(w, r, err, "Failed to authenticate user")
		return
	}

	if err := h.passwordVerifier.Compare(user.HashedPassword, req.Password); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusUnauthorized, "Invalid credentials", err,
			shared.WithElevatedLogLevel())
		return
	}

	h.respondWithTokens(w, r, http.StatusOK, user.ID)
}

// RefreshToken handles POST /api/auth/refresh. It exchanges a valid refresh
// token for a new token pair.
func (h *AuthHandler) RefreshToken(w http.ResponseWriter, r *http.Request) {
	var req RefreshTokenRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	claims, err := h.jwtService.ValidateRefreshToken(r.Context(), req.RefreshToken)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to refresh token")
		return
	}

	accessToken, refreshToken, expiresAt, err := h.issueTokens(r, claims.UserID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to generate authentication token")
		return
	}

	logger.FromContext(r.Context()).Debug("token pair refreshed", "user_id", claims.UserID)

	shared.RespondWithJSON(w, r, http.StatusOK, RefreshTokenResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresAt:    expiresAt,
	})
}

// Verify handles GET /api/auth/verify. The access token was already
// checked by the auth middleware; the user must still exist.
func (h *AuthHandler) Verify(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	user, err := h.users.GetUser(r.Context(), userID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to verify token")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, VerifyResponse{Valid: true, User: user})
}

func (h *AuthHandler) respondWithTokens(w http.ResponseWriter, r *http.Request, status int, userID uuid.UUID) {
	accessToken, refreshToken, expiresAt, err := h.issueTokens(r, userID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to generate authentication token")
		return
	}

	shared.RespondWithJSON(w, r, status, AuthResponse{
		UserID:       userID,
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresAt:    expiresAt,
	})
}

func (h *AuthHandler) issueTokens(r *http.Request, userID uuid.UUID) (string, string, string, error) {
	accessToken, err := h.jwtService.GenerateToken(r.Context(), userID)
	if err != nil {
		return "", "", "", err
	}

	refreshToken, err := h.jwtService.GenerateRefreshToken(r.Context(), userID)
	if err != nil {
		return "", "", "", err
	}

	expiresAt := h.now().Add(h.tokenLifetime).UTC().Format(time.RFC3339)
	return accessToken, refreshToken, expiresAt, nil
}
