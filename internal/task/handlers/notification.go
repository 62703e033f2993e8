package handlers

import (
	"context"
	"encoding/json"
	"time"

	"github.com/phrazzld/palace-api/internal/task"
)

// WelcomeEmailResult is the result of SendWelcomeEmail.
type WelcomeEmailResult struct {
	Status string          `json:"status"`
	UserID json.RawMessage `json:"user_id"`
	Email  string          `json:"email"`
	SentAt time.Time       `json:"sent_at"`
}

// PalaceNoticeResult is the result of SendPalaceCreatedNotification.
type PalaceNoticeResult struct {
	Status     string          `json:"status"`
	UserID     json.RawMessage `json:"user_id"`
	PalaceID   json.RawMessage `json:"palace_id"`
	NotifiedAt time.Time       `json:"notified_at"`
}

// CleanupResult is the result of CleanupOldSessions.
type CleanupResult struct {
	Status          string    `json:"status"`
	CleanedSessions int       `json:"cleaned_sessions"`
	CleanedAt       time.Time `json:"cleaned_at"`
}

// SendWelcomeEmail greets a newly registered user.
// Args: user_id, email, username.
func (h *Handlers) SendWelcomeEmail(ctx context.Context, args task.Args, _ task.Reporter) (any, error) {
	var userID json.RawMessage
	var email, username string
	if err := args.Bind(&userID, &email, &username); err != nil {
		return nil, err
	}

	if err := h.sleep(ctx, h.delays.WelcomeEmail); err != nil {
		return nil, err
	}

	h.logger.InfoContext(ctx, "sending welcome email",
		"user_id", string(userID),
		"email", email,
		"username", username)

	return WelcomeEmailResult{
		Status: "sent",
		UserID: userID,
		Email:  email,
		SentAt: h.now(),
	}, nil
}

// SendPalaceCreatedNotification announces a new memory palace.
// Args: user_id, palace_id, palace_title.
func (h *Handlers) SendPalaceCreatedNotification(ctx context.Context, args task.Args, _ task.Reporter) (any, error) {
	var userID, palaceID json.RawMessage
	var title string
	if err := args.Bind(&userID, &palaceID, &title); err != nil {
		return nil, err
	}

	if err := h.sleep(ctx, h.delays.PalaceNotice); err != nil {
		return nil, err
	}

	h.logger.InfoContext(ctx, "palace created",
		"user_id", string(userID),
		"palace_id", string(palaceID),
		"palace_title", title)

	return PalaceNoticeResult{
		Status:     "notified",
		UserID:     userID,
		PalaceID:   palaceID,
		NotifiedAt: h.now(),
	}, nil
}

// CleanupOldSessions is the periodic housekeeping operation. Sessions are
// stateless tokens, so there is nothing to remove yet.
func (h *Handlers) CleanupOldSessions(ctx context.Context, args task.Args, _ task.Reporter) (any, error) {
	if args.Len() != 0 {
		return nil, args.Bind()
	}

	h.logger.InfoContext(ctx, "running session cleanup")

	return CleanupResult{
		Status:          "completed",
		CleanedSessions: 0,
		CleanedAt:       h.now(),
	}, nil
}
