package ports

import (
	"context"
	"io"

	"github.com/samirrijal/floorplan/internal/core/domain"
)

// SpatialPredicate answers geometric questions about two shapes.
type SpatialPredicate interface {
	Intersects(ctx context.Context, a, b domain.MultiPolygon) (bool, error)
}

// EventPublisher publishes domain events to a message broker.
type EventPublisher interface {
	PublishRoomEvent(ctx context.Context, event *domain.RoomEvent) error
	PublishImportRequest(ctx context.Context, req *domain.ImportRequest) error
}

// EventSubscriber subscribes to domain events from a message broker.
type EventSubscriber interface {
	SubscribeImportRequests(ctx context.Context, handler func(ctx context.Context, req *domain.ImportRequest) error) error
}

// CacheService provides read-through caching.
type CacheService interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttlSeconds int) error
	Delete(ctx context.Context, key string) error
}

// LayoutExporter renders a described layout for external consumption.
type LayoutExporter interface {
	Write(ctx context.Context, w io.Writer, description string, rooms []domain.Room) error
}
