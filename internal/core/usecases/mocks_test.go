package usecases_test

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/samirrijal/floorplan/internal/core/domain"
	"github.com/samirrijal/floorplan/internal/core/ports"
)

// --- Mock ApartmentRepository ---

type mockApartmentRepo struct {
	mu      sync.Mutex
	apts    map[string]domain.Apartment
	order   []string
	nextID  int
	deleted []string

	createFn func(ctx context.Context, apt *domain.Apartment) error
}

func newMockApartmentRepo() *mockApartmentRepo {
	return &mockApartmentRepo{apts: make(map[string]domain.Apartment)}
}

func (m *mockApartmentRepo) Create(ctx context.Context, apt *domain.Apartment) error {
	if m.createFn != nil {
		return m.createFn(ctx, apt)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	apt.ID = fmt.Sprintf("apt-%d", m.nextID)
	m.apts[apt.ID] = *apt
	m.order = append(m.order, apt.ID)
	return nil
}

func (m *mockApartmentRepo) GetByID(ctx context.Context, id string) (*domain.Apartment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	apt, ok := m.apts[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &apt, nil
}

func (m *mockApartmentRepo) List(ctx context.Context, limit, offset int) ([]domain.Apartment, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Apartment
	for i := offset; i < len(m.order) && len(out) < limit; i++ {
		out = append(out, m.apts[m.order[i]])
	}
	return out, len(m.order), nil
}

func (m *mockApartmentRepo) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.apts[id]; !ok {
		return domain.ErrNotFound
	}
	delete(m.apts, id)
	for i, o := range m.order {
		if o == id {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
	m.deleted = append(m.deleted, id)
	return nil
}

// --- Mock RoomRepository ---

type mockRoomRepo struct {
	mu     sync.Mutex
	rooms  map[string][]domain.Room
	nextID int
	lists  int

	insertFn func(ctx context.Context, apartmentID string, room *domain.Room) error
}

func newMockRoomRepo() *mockRoomRepo {
	return &mockRoomRepo{rooms: make(map[string][]domain.Room)}
}

func (m *mockRoomRepo) Insert(ctx context.Context, apartmentID string, room *domain.Room) error {
	if m.insertFn != nil {
		return m.insertFn(ctx, apartmentID, room)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	room.ID = fmt.Sprintf("room-%d", m.nextID)
	m.rooms[apartmentID] = append(m.rooms[apartmentID], *room)
	return nil
}

func (m *mockRoomRepo) InsertChecked(ctx context.Context, apartmentID string, room *domain.Room, check ports.RoomCheck) error {
	existing, _ := m.ListByApartment(ctx, apartmentID)
	if err := check(ctx, existing); err != nil {
		return err
	}
	return m.Insert(ctx, apartmentID, room)
}

func (m *mockRoomRepo) ListByApartment(ctx context.Context, apartmentID string) ([]domain.Room, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lists++
	return append([]domain.Room(nil), m.rooms[apartmentID]...), nil
}

func (m *mockRoomRepo) DeleteByApartment(ctx context.Context, apartmentID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.rooms, apartmentID)
	return nil
}

// --- Mock SpatialPredicate ---

type mockSpatial struct {
	intersectsFn func(a, b domain.MultiPolygon) (bool, error)
	calls        int
}

func (m *mockSpatial) Intersects(ctx context.Context, a, b domain.MultiPolygon) (bool, error) {
	m.calls++
	if m.intersectsFn != nil {
		return m.intersectsFn(a, b)
	}
	return false, nil
}

// --- Mock CacheService ---

type mockCache struct {
	mu   sync.Mutex
	data map[string][]byte
}

func newMockCache() *mockCache { return &mockCache{data: make(map[string][]byte)} }

var errCacheMiss = errors.New("cache miss")

func (m *mockCache) Get(ctx context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	if !ok {
		return nil, errCacheMiss
	}
	return v, nil
}

func (m *mockCache) Set(ctx context.Context, key string, value []byte, ttlSeconds int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	return nil
}

func (m *mockCache) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

// --- Mock EventPublisher ---

type mockPublisher struct {
	mu     sync.Mutex
	events []domain.RoomEvent
}

func (m *mockPublisher) PublishRoomEvent(ctx context.Context, event *domain.RoomEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, *event)
	return nil
}

func (m *mockPublisher) PublishImportRequest(ctx context.Context, req *domain.ImportRequest) error {
	return nil
}

func (m *mockPublisher) kinds() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []string
	for _, e := range m.events {
		out = append(out, e.Kind)
	}
	return out
}
