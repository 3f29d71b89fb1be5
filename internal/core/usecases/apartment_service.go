package usecases

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/samirrijal/floorplan/internal/core/domain"
	"github.com/samirrijal/floorplan/internal/core/layout"
	"github.com/samirrijal/floorplan/internal/core/ports"
	"github.com/samirrijal/floorplan/internal/pkg/metrics"
)

// ApartmentService handles apartment lifecycle and prompt imports.
type ApartmentService struct {
	apartments ports.ApartmentRepository
	rooms      *RoomService
	publisher  ports.EventPublisher
}

// NewApartmentService creates a new ApartmentService.
func NewApartmentService(apartments ports.ApartmentRepository, rooms *RoomService, publisher ports.EventPublisher) *ApartmentService {
	return &ApartmentService{apartments: apartments, rooms: rooms, publisher: publisher}
}

// Create stores a new, empty apartment.
func (s *ApartmentService) Create(ctx context.Context, description string) (*domain.Apartment, error) {
	apt := &domain.Apartment{Description: description}
	if err := s.apartments.Create(ctx, apt); err != nil {
		return nil, fmt.Errorf("create apartment: %w", err)
	}
	return apt, nil
}

// GetByID returns an apartment.
func (s *ApartmentService) GetByID(ctx context.Context, id string) (*domain.Apartment, error) {
	return s.apartments.GetByID(ctx, id)
}

// List returns a page of apartments and the total count.
func (s *ApartmentService) List(ctx context.Context, limit, offset int) ([]domain.Apartment, int, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	return s.apartments.List(ctx, limit, offset)
}

// Delete removes an apartment and its rooms.
func (s *ApartmentService) Delete(ctx context.Context, id string) error {
	if err := s.rooms.DeleteByApartment(ctx, id); err != nil {
		return fmt.Errorf("delete rooms: %w", err)
	}
	if err := s.apartments.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete apartment: %w", err)
	}
	if s.publisher != nil {
		_ = s.publisher.PublishRoomEvent(ctx, &domain.RoomEvent{
			Kind:        "apartment.deleted",
			ApartmentID: id,
			Time:        time.Now(),
		})
	}
	return nil
}

// ImportPrompt parses a "<description> [Layout] <layout>" prompt, creates an
// apartment holding the description, and inserts its rooms. If any room fails
// to insert, the apartment is discarded and the room error is returned. Only a
// completed import is announced.
func (s *ApartmentService) ImportPrompt(ctx context.Context, prompt string) (*domain.Apartment, []domain.Room, error) {
	ctx, span := tracer.Start(ctx, "ApartmentService.ImportPrompt")
	defer span.End()

	description, rooms, err := layout.ParsePrompt(prompt)
	if err != nil {
		metrics.LayoutsParsed.WithLabelValues("error").Inc()
		return nil, nil, err
	}
	metrics.LayoutsParsed.WithLabelValues("ok").Inc()

	apt, err := s.Create(ctx, description)
	if err != nil {
		return nil, nil, err
	}

	stored, err := s.rooms.insertAll(ctx, apt.ID, rooms, false)
	if err != nil {
		if derr := s.discard(ctx, apt.ID); derr != nil {
			slog.ErrorContext(ctx, "rollback apartment failed", "apartment_id", apt.ID, "error", derr)
		}
		return nil, nil, err
	}

	slog.InfoContext(ctx, "prompt imported", "apartment_id", apt.ID, "rooms", len(stored))
	if s.publisher != nil {
		_ = s.publisher.PublishRoomEvent(ctx, &domain.RoomEvent{
			Kind:        "layout.imported",
			ApartmentID: apt.ID,
			Rooms:       len(stored),
			Time:        time.Now(),
		})
	}
	return apt, stored, nil
}

// discard removes an apartment that was never announced.
func (s *ApartmentService) discard(ctx context.Context, id string) error {
	if err := s.rooms.DeleteByApartment(ctx, id); err != nil {
		return fmt.Errorf("delete rooms: %w", err)
	}
	return s.apartments.Delete(ctx, id)
}
