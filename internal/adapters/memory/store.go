// Package memory holds apartments and rooms in process memory. It backs the
// API when no database is configured and is used by handler tests.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/samirrijal/floorplan/internal/core/domain"
	"github.com/samirrijal/floorplan/internal/core/ports"
)

// Store implements ports.ApartmentRepository and ports.RoomRepository.
type Store struct {
	mu         sync.RWMutex
	apartments map[string]domain.Apartment
	rooms      map[string][]domain.Room
	writers    map[string]*sync.Mutex // per-apartment insert locks
	now        func() time.Time
}

// New creates an empty Store.
func New() *Store {
	return &Store{
		apartments: make(map[string]domain.Apartment),
		rooms:      make(map[string][]domain.Room),
		writers:    make(map[string]*sync.Mutex),
		now:        time.Now,
	}
}

func (s *Store) Create(ctx context.Context, apt *domain.Apartment) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	apt.ID = uuid.NewString()
	apt.CreatedAt = s.now()
	s.apartments[apt.ID] = *apt
	return nil
}

func (s *Store) GetByID(ctx context.Context, id string) (*domain.Apartment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	apt, ok := s.apartments[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &apt, nil
}

// List orders apartments by creation time, then ID.
func (s *Store) List(ctx context.Context, limit, offset int) ([]domain.Apartment, int, error) {
	s.mu.RLock()
	all := make([]domain.Apartment, 0, len(s.apartments))
	for _, a := range s.apartments {
		all = append(all, a)
	}
	s.mu.RUnlock()

	sort.Slice(all, func(i, j int) bool {
		if all[i].CreatedAt.Equal(all[j].CreatedAt) {
			return all[i].ID < all[j].ID
		}
		return all[i].CreatedAt.Before(all[j].CreatedAt)
	})

	total := len(all)
	if offset >= total {
		return nil, total, nil
	}
	end := offset + limit
	if end > total {
		end = total
	}
	return all[offset:end], total, nil
}

// Delete removes an apartment together with its rooms.
func (s *Store) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.apartments[id]; !ok {
		return domain.ErrNotFound
	}
	delete(s.apartments, id)
	delete(s.rooms, id)
	delete(s.writers, id)
	return nil
}

func (s *Store) Insert(ctx context.Context, apartmentID string, room *domain.Room) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.apartments[apartmentID]; !ok {
		return domain.ErrNotFound
	}
	room.ID = uuid.NewString()
	room.ApartmentID = apartmentID
	room.CreatedAt = s.now()
	stored := *room
	stored.Shape = room.Shape.Clone()
	s.rooms[apartmentID] = append(s.rooms[apartmentID], stored)
	return nil
}

// InsertChecked holds the apartment's writer lock while check runs, so the
// store lock stays free for readers during slow checks.
func (s *Store) InsertChecked(ctx context.Context, apartmentID string, room *domain.Room, check ports.RoomCheck) error {
	w := s.writer(apartmentID)
	w.Lock()
	defer w.Unlock()

	if _, err := s.GetByID(ctx, apartmentID); err != nil {
		return err
	}
	existing, err := s.ListByApartment(ctx, apartmentID)
	if err != nil {
		return err
	}
	if err := check(ctx, existing); err != nil {
		return err
	}
	return s.Insert(ctx, apartmentID, room)
}

func (s *Store) writer(apartmentID string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()

	w, ok := s.writers[apartmentID]
	if !ok {
		w = &sync.Mutex{}
		s.writers[apartmentID] = w
	}
	return w
}

// ListByApartment returns a deep copy of the apartment's rooms in insertion order.
func (s *Store) ListByApartment(ctx context.Context, apartmentID string) ([]domain.Room, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rooms := s.rooms[apartmentID]
	out := make([]domain.Room, len(rooms))
	for i, r := range rooms {
		out[i] = r
		out[i].Shape = r.Shape.Clone()
	}
	return out, nil
}

func (s *Store) DeleteByApartment(ctx context.Context, apartmentID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.rooms, apartmentID)
	return nil
}

// Ping always succeeds.
func (s *Store) Ping(ctx context.Context) error { return nil }
