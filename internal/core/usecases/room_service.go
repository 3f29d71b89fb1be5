package usecases

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/samirrijal/floorplan/internal/core/domain"
	"github.com/samirrijal/floorplan/internal/core/layout"
	"github.com/samirrijal/floorplan/internal/core/ports"
	"github.com/samirrijal/floorplan/internal/pkg/geospatial"
	"github.com/samirrijal/floorplan/internal/pkg/metrics"
)

var tracer = otel.Tracer("github.com/samirrijal/floorplan/internal/core/usecases")

const roomsCacheTTL = 300

// RoomService handles room insertion and lookup.
type RoomService struct {
	rooms     ports.RoomRepository
	spatial   ports.SpatialPredicate
	cache     ports.CacheService
	publisher ports.EventPublisher
}

// NewRoomService creates a new RoomService. cache and publisher may be nil.
func NewRoomService(
	rooms ports.RoomRepository,
	spatial ports.SpatialPredicate,
	cache ports.CacheService,
	publisher ports.EventPublisher,
) *RoomService {
	return &RoomService{rooms: rooms, spatial: spatial, cache: cache, publisher: publisher}
}

func roomsCacheKey(apartmentID string) string { return "rooms:apartment:" + apartmentID }

// Insert stores a room unless its shape intersects a room already stored for
// the same apartment, in which case domain.ErrRoomOverlap is returned.
func (s *RoomService) Insert(ctx context.Context, apartmentID string, room *domain.Room) error {
	return s.insert(ctx, apartmentID, room, true)
}

func (s *RoomService) insert(ctx context.Context, apartmentID string, room *domain.Room, announce bool) error {
	ctx, span := tracer.Start(ctx, "RoomService.Insert")
	defer span.End()
	span.SetAttributes(
		attribute.String("apartment.id", apartmentID),
		attribute.String("room.type", room.Type),
	)

	if err := geospatial.Validate(room.Shape); err != nil {
		return fmt.Errorf("%w: %s: %v", domain.ErrInvalidShape, room.Type, err)
	}

	room.ApartmentID = apartmentID
	err := s.rooms.InsertChecked(ctx, apartmentID, room, func(ctx context.Context, existing []domain.Room) error {
		return s.disjoint(ctx, apartmentID, room, existing)
	})
	if err != nil {
		if errors.Is(err, domain.ErrRoomOverlap) {
			return err
		}
		return fmt.Errorf("insert room: %w", err)
	}
	metrics.RoomsCreated.Inc()
	s.invalidate(ctx, apartmentID)

	if announce && s.publisher != nil {
		_ = s.publisher.PublishRoomEvent(ctx, &domain.RoomEvent{
			Kind:        "room.created",
			ApartmentID: apartmentID,
			RoomID:      room.ID,
			RoomType:    room.Type,
			Time:        time.Now(),
		})
	}
	return nil
}

// disjoint fails with domain.ErrRoomOverlap on the first stored room that
// intersects room.
func (s *RoomService) disjoint(ctx context.Context, apartmentID string, room *domain.Room, existing []domain.Room) error {
	for _, other := range existing {
		hit, err := s.spatial.Intersects(ctx, other.Shape, room.Shape)
		if err != nil {
			return fmt.Errorf("intersects: %w", err)
		}
		if hit {
			metrics.RoomOverlaps.Inc()
			slog.WarnContext(ctx, "room rejected: overlap",
				"apartment_id", apartmentID, "room_type", room.Type,
				"existing_room_id", other.ID, "existing_room_type", other.Type)
			return fmt.Errorf("%w: %s intersects %s (%s)", domain.ErrRoomOverlap, room.Type, other.Type, other.ID)
		}
	}
	return nil
}

// InsertAll inserts rooms in order and stops at the first failure. Rooms
// inserted before the failure stay stored.
func (s *RoomService) InsertAll(ctx context.Context, apartmentID string, rooms []domain.Room) ([]domain.Room, error) {
	return s.insertAll(ctx, apartmentID, rooms, true)
}

func (s *RoomService) insertAll(ctx context.Context, apartmentID string, rooms []domain.Room, announce bool) ([]domain.Room, error) {
	stored := make([]domain.Room, 0, len(rooms))
	for i := range rooms {
		room := rooms[i]
		if err := s.insert(ctx, apartmentID, &room, announce); err != nil {
			return stored, err
		}
		stored = append(stored, room)
	}
	return stored, nil
}

// ImportLayout parses layout text and inserts its rooms into an apartment.
func (s *RoomService) ImportLayout(ctx context.Context, apartmentID, text string) ([]domain.Room, error) {
	rooms, err := layout.ParseLayout(text)
	if err != nil {
		metrics.LayoutsParsed.WithLabelValues("error").Inc()
		return nil, err
	}
	metrics.LayoutsParsed.WithLabelValues("ok").Inc()

	stored, err := s.InsertAll(ctx, apartmentID, rooms)
	if err != nil {
		return stored, err
	}

	if s.publisher != nil {
		_ = s.publisher.PublishRoomEvent(ctx, &domain.RoomEvent{
			Kind:        "layout.imported",
			ApartmentID: apartmentID,
			Rooms:       len(stored),
			Time:        time.Now(),
		})
	}
	return stored, nil
}

// ListByApartment returns the rooms of an apartment in insertion order.
func (s *RoomService) ListByApartment(ctx context.Context, apartmentID string) ([]domain.Room, error) {
	key := roomsCacheKey(apartmentID)
	if s.cache != nil {
		if data, err := s.cache.Get(ctx, key); err == nil {
			var rooms []domain.Room
			if err := json.Unmarshal(data, &rooms); err == nil {
				metrics.CacheHits.WithLabelValues("rooms").Inc()
				return rooms, nil
			}
		}
		metrics.CacheMisses.WithLabelValues("rooms").Inc()
	}

	rooms, err := s.rooms.ListByApartment(ctx, apartmentID)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if data, err := json.Marshal(rooms); err == nil {
			_ = s.cache.Set(ctx, key, data, roomsCacheTTL)
		}
	}
	return rooms, nil
}

// DeleteByApartment removes every room of an apartment.
func (s *RoomService) DeleteByApartment(ctx context.Context, apartmentID string) error {
	if err := s.rooms.DeleteByApartment(ctx, apartmentID); err != nil {
		return err
	}
	s.invalidate(ctx, apartmentID)
	return nil
}

func (s *RoomService) invalidate(ctx context.Context, apartmentID string) {
	if s.cache != nil {
		_ = s.cache.Delete(ctx, roomsCacheKey(apartmentID))
	}
}
