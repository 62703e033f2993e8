package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Room and item validation errors
var (
	ErrEmptyRoomID       = invalid("room ID cannot be empty")
	ErrEmptyRoomPalaceID = invalid("room palace ID cannot be empty")
	ErrEmptyItemID       = invalid("item ID cannot be empty")
	ErrEmptyItemRoomID   = invalid("item room ID cannot be empty")
	ErrNegativePosition  = invalid("position cannot be negative")
)

// Room is a location inside a palace. Rooms are walked in Position order.
type Room struct {
	ID          uuid.UUID `json:"id"`
	PalaceID    uuid.UUID `json:"palace_id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Position    int       `json:"position"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// NewRoom creates a new Room in palaceID.
func NewRoom(palaceID uuid.UUID, name, description string, position int) (*Room, error) {
	now := time.Now().UTC()
	room := &Room{
		ID:          uuid.New(),
		PalaceID:    palaceID,
		Name:        strings.TrimSpace(name),
		Description: description,
		Position:    position,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := room.Validate(); err != nil {
		return nil, err
	}

	return room, nil
}

// Validate checks if the Room has valid data.
func (r *Room) Validate() error {
	if r.ID == uuid.Nil {
		return ErrEmptyRoomID
	}
	if r.PalaceID == uuid.Nil {
		return ErrEmptyRoomPalaceID
	}
	if r.Position < 0 {
		return ErrNegativePosition
	}
	return validateTitle(r.Name)
}

// Item is something to remember, placed in a room.
type Item struct {
	ID        uuid.UUID `json:"id"`
	RoomID    uuid.UUID `json:"room_id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	Position  int       `json:"position"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewItem creates a new Item in roomID.
func NewItem(roomID uuid.UUID, title, content string, position int) (*Item, error) {
	now := time.Now().UTC()
	item := &Item{
		ID:        uuid.New(),
		RoomID:    roomID,
		Title:     strings.TrimSpace(title),
		Content:   content,
		Position:  position,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := item.Validate(); err != nil {
		return nil, err
	}

	return item, nil
}

// Validate checks if the Item has valid data.
func (i *Item) Validate() error {
	if i.ID == uuid.Nil {
		return ErrEmptyItemID
	}
	if i.RoomID == uuid.Nil {
		return ErrEmptyItemRoomID
	}
	if i.Position < 0 {
		return ErrNegativePosition
	}
	return validateTitle(i.Title)
}
