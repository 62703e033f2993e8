package domain

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

// MaxTitleLength bounds palace titles, room names and item titles.
const MaxTitleLength = 200

// Palace validation errors
var (
	ErrEmptyPalaceID     = invalid("palace ID cannot be empty")
	ErrEmptyPalaceUserID = invalid("palace user ID cannot be empty")
	ErrEmptyTitle        = invalid("title cannot be empty")
	ErrTitleTooLong      = invalid("title must be at most 200 characters long")
)

// Palace is a memory palace: a user's named collection of rooms.
type Palace struct {
	ID          uuid.UUID `json:"id"`
	UserID      uuid.UUID `json:"user_id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// NewPalace creates a new Palace owned by userID.
func NewPalace(userID uuid.UUID, title, description string) (*Palace, error) {
	now := time.Now().UTC()
	palace := &Palace{
		ID:          uuid.New(),
		UserID:      userID,
		Title:       strings.TrimSpace(title),
		Description: description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := palace.Validate(); err != nil {
		return nil, err
	}

	return palace, nil
}

// Validate checks if the Palace has valid data.
func (p *Palace) Validate() error {
	if p.ID == uuid.Nil {
		return ErrEmptyPalaceID
	}
	if p.UserID == uuid.Nil {
		return ErrEmptyPalaceUserID
	}
	return validateTitle(p.Title)
}

// IsOwnedBy reports whether userID owns the palace.
func (p *Palace) IsOwnedBy(userID uuid.UUID) bool {
	return p.UserID == userID
}

// Update replaces the title and description and bumps UpdatedAt.
func (p *Palace) Update(title, description string) error {
	title = strings.TrimSpace(title)
	if err := validateTitle(title); err != nil {
		return err
	}
	p.Title = title
	p.Description = description
	p.UpdatedAt = time.Now().UTC()
	return nil
}

func validateTitle(title string) error {
	if strings.TrimSpace(title) == "" {
		return ErrEmptyTitle
	}
	if utf8.RuneCountInString(title) > MaxTitleLength {
		return ErrTitleTooLong
	}
	return nil
}
