package workflows

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"go.temporal.io/sdk/temporal"

	"github.com/samirrijal/floorplan/internal/core/domain"
	"github.com/samirrijal/floorplan/internal/core/layout"
	"github.com/samirrijal/floorplan/internal/core/usecases"
)

// Application error types that are never retried.
const (
	ErrTypeInvalidLayout = "invalid_layout"
	ErrTypeRoomRejected  = "room_rejected"
)

// ParsedPrompt is the output of the ParsePrompt activity.
type ParsedPrompt struct {
	Description string
	Rooms       []domain.Room
}

// ImportActivities holds the activity implementations for the import workflow.
type ImportActivities struct {
	Apartments *usecases.ApartmentService
	Rooms      *usecases.RoomService
}

// ParsePrompt splits and parses a prompt. Parse errors are non-retryable.
func (a *ImportActivities) ParsePrompt(ctx context.Context, prompt string) (ParsedPrompt, error) {
	description, rooms, err := layout.ParsePrompt(prompt)
	if err != nil {
		return ParsedPrompt{}, temporal.NewNonRetryableApplicationError(err.Error(), ErrTypeInvalidLayout, err)
	}
	return ParsedPrompt{Description: description, Rooms: rooms}, nil
}

// CreateApartment stores a new apartment and returns its ID.
func (a *ImportActivities) CreateApartment(ctx context.Context, description string) (string, error) {
	apt, err := a.Apartments.Create(ctx, description)
	if err != nil {
		return "", err
	}
	return apt.ID, nil
}

// InsertRooms inserts rooms in order and returns how many were stored.
// Overlapping or unstorable rooms fail without retry.
func (a *ImportActivities) InsertRooms(ctx context.Context, apartmentID string, rooms []domain.Room) (int, error) {
	stored, err := a.Rooms.InsertAll(ctx, apartmentID, rooms)
	if err != nil {
		if errors.Is(err, domain.ErrRoomOverlap) || errors.Is(err, domain.ErrInvalidShape) {
			return len(stored), temporal.NewNonRetryableApplicationError(err.Error(), ErrTypeRoomRejected, err)
		}
		return len(stored), fmt.Errorf("insert rooms: %w", err)
	}
	return len(stored), nil
}

// DeleteApartment removes an apartment and its rooms (saga compensation).
// A missing apartment counts as deleted.
func (a *ImportActivities) DeleteApartment(ctx context.Context, apartmentID string) error {
	if err := a.Apartments.Delete(ctx, apartmentID); err != nil && !errors.Is(err, domain.ErrNotFound) {
		return fmt.Errorf("delete apartment %s: %w", apartmentID, err)
	}
	slog.InfoContext(ctx, "apartment deleted (saga compensation)", "apartment_id", apartmentID)
	return nil
}
