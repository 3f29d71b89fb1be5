package ports

import (
	"context"

	"github.com/samirrijal/floorplan/internal/core/domain"
)

// ApartmentRepository persists apartments.
type ApartmentRepository interface {
	Create(ctx context.Context, apt *domain.Apartment) error
	GetByID(ctx context.Context, id string) (*domain.Apartment, error)
	List(ctx context.Context, limit, offset int) ([]domain.Apartment, int, error)
	Delete(ctx context.Context, id string) error
}

// RoomCheck vets a new room against the rooms already stored for its
// apartment. A non-nil error aborts the insert and is returned unchanged.
type RoomCheck func(ctx context.Context, existing []domain.Room) error

// RoomRepository persists rooms under their owning apartment.
type RoomRepository interface {
	// InsertChecked stores room only if check accepts the apartment's current
	// rooms. Calls for the same apartment are serialized from the read through
	// the write, so two concurrent inserts never both pass against the same
	// snapshot.
	InsertChecked(ctx context.Context, apartmentID string, room *domain.Room, check RoomCheck) error
	ListByApartment(ctx context.Context, apartmentID string) ([]domain.Room, error)
	DeleteByApartment(ctx context.Context, apartmentID string) error
}
