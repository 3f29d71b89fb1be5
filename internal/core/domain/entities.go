package domain

import (
	"errors"
	"time"
)

var (
	// ErrNotFound is returned by repositories when a record does not exist.
	ErrNotFound = errors.New("not found")

	// ErrRoomOverlap is returned when a new room intersects an existing room
	// of the same apartment.
	ErrRoomOverlap = errors.New("room overlaps an existing room")

	// ErrInvalidShape is returned when a room shape cannot be stored as a polygon.
	ErrInvalidShape = errors.New("invalid room shape")
)

// Apartment owns a set of rooms.
type Apartment struct {
	ID          string    `json:"id"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// Room is a labelled floor-plan unit. Type is free text ("bedroom", "living_room", ...).
type Room struct {
	ID          string       `json:"id,omitempty"`
	ApartmentID string       `json:"apartment_id,omitempty"`
	Type        string       `json:"type"`
	Shape       MultiPolygon `json:"shape"`
	CreatedAt   time.Time    `json:"created_at,omitempty"`
}

// Layout is a full set of rooms with the free-text description it was authored from.
type Layout struct {
	Description string `json:"description,omitempty"`
	Rooms       []Room `json:"rooms"`
}

// RoomEvent is published whenever rooms of an apartment change.
type RoomEvent struct {
	Kind        string    `json:"kind"` // "room.created" | "layout.imported" | "apartment.deleted"
	ApartmentID string    `json:"apartment_id"`
	RoomID      string    `json:"room_id,omitempty"`
	RoomType    string    `json:"room_type,omitempty"`
	Rooms       int       `json:"rooms,omitempty"`
	Time        time.Time `json:"time"`
}

// ImportRequest asks a worker to import a prompt as a new apartment.
type ImportRequest struct {
	RequestID string `json:"request_id"`
	Prompt    string `json:"prompt"`
}
