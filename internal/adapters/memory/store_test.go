package memory_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/samirrijal/floorplan/internal/adapters/memory"
	"github.com/samirrijal/floorplan/internal/core/domain"
	"github.com/samirrijal/floorplan/internal/core/layout"
)

func TestStore_ApartmentLifecycle(t *testing.T) {
	s := memory.New()
	ctx := context.Background()

	apt := &domain.Apartment{Description: "two bedrooms"}
	if err := s.Create(ctx, apt); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if apt.ID == "" || apt.CreatedAt.IsZero() {
		t.Fatalf("expected ID and timestamp, got %+v", apt)
	}

	got, err := s.GetByID(ctx, apt.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Description != "two bedrooms" {
		t.Errorf("expected description, got %q", got.Description)
	}

	if err := s.Delete(ctx, apt.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := s.GetByID(ctx, apt.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	if err := s.Delete(ctx, apt.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected ErrNotFound on second delete, got %v", err)
	}
}

func TestStore_RoomsKeepInsertionOrder(t *testing.T) {
	s := memory.New()
	ctx := context.Background()

	apt := &domain.Apartment{}
	_ = s.Create(ctx, apt)

	rooms, err := layout.ParseLayout("c: (0,0)(1,0)(1,1), a: (2,2)(3,2)(3,3), b: (4,4)(5,4)(5,5)")
	if err != nil {
		t.Fatal(err)
	}
	for i := range rooms {
		if err := s.Insert(ctx, apt.ID, &rooms[i]); err != nil {
			t.Fatalf("insert: %v", err)
		}
	}

	got, _ := s.ListByApartment(ctx, apt.ID)
	if len(got) != 3 {
		t.Fatalf("expected 3 rooms, got %d", len(got))
	}
	for i, want := range []string{"c", "a", "b"} {
		if got[i].Type != want {
			t.Errorf("room %d: expected %s, got %s", i, want, got[i].Type)
		}
		if got[i].ApartmentID != apt.ID {
			t.Errorf("room %d: wrong apartment %s", i, got[i].ApartmentID)
		}
	}

	// Mutating the returned rooms does not touch the store.
	got[0].Type = "changed"
	got[0].Shape[0].Outer[0] = domain.Point{X: 99, Y: 99}
	again, _ := s.ListByApartment(ctx, apt.ID)
	if again[0].Type != "c" {
		t.Error("store was mutated through returned slice")
	}
	if p := again[0].Shape[0].Outer[0]; p != (domain.Point{X: 0, Y: 0}) {
		t.Errorf("stored ring was mutated through returned room: %v", p)
	}

	// Nor does mutating the room passed to Insert.
	rooms[1].Shape[0].Outer[0] = domain.Point{X: 42, Y: 42}
	again, _ = s.ListByApartment(ctx, apt.ID)
	if p := again[1].Shape[0].Outer[0]; p != (domain.Point{X: 2, Y: 2}) {
		t.Errorf("stored ring was mutated through inserted room: %v", p)
	}
}

func TestStore_InsertUnknownApartment(t *testing.T) {
	s := memory.New()
	room := domain.Room{Type: "x"}
	if err := s.Insert(context.Background(), "nope", &room); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestStore_ListPaging(t *testing.T) {
	s := memory.New()
	ctx := context.Background()
	for i := 0; i < 5; i++ {
		_ = s.Create(ctx, &domain.Apartment{})
	}

	page, total, err := s.List(ctx, 2, 4)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if total != 5 || len(page) != 1 {
		t.Errorf("expected 1 of 5, got %d of %d", len(page), total)
	}

	page, _, _ = s.List(ctx, 2, 10)
	if len(page) != 0 {
		t.Errorf("expected empty page past the end, got %d", len(page))
	}
}

func TestStore_ConcurrentInsert(t *testing.T) {
	s := memory.New()
	ctx := context.Background()
	apt := &domain.Apartment{}
	_ = s.Create(ctx, apt)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			r := domain.Room{Type: "r"}
			_ = s.Insert(ctx, apt.ID, &r)
		}()
	}
	wg.Wait()

	got, _ := s.ListByApartment(ctx, apt.ID)
	if len(got) != 50 {
		t.Errorf("expected 50 rooms, got %d", len(got))
	}
}

func TestStore_InsertChecked(t *testing.T) {
	s := memory.New()
	ctx := context.Background()
	apt := &domain.Apartment{}
	_ = s.Create(ctx, apt)

	veto := errors.New("vetoed")
	room := domain.Room{Type: "a"}
	err := s.InsertChecked(ctx, apt.ID, &room, func(ctx context.Context, existing []domain.Room) error {
		return veto
	})
	if !errors.Is(err, veto) {
		t.Fatalf("expected check error, got %v", err)
	}
	if got, _ := s.ListByApartment(ctx, apt.ID); len(got) != 0 {
		t.Fatalf("vetoed room was stored: %+v", got)
	}

	accept := func(ctx context.Context, existing []domain.Room) error { return nil }
	if err := s.InsertChecked(ctx, apt.ID, &room, accept); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := s.InsertChecked(ctx, "nope", &room, accept); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestStore_InsertCheckedSerializesPerApartment(t *testing.T) {
	s := memory.New()
	ctx := context.Background()
	apt := &domain.Apartment{}
	_ = s.Create(ctx, apt)

	// Admit a room only into an empty apartment; the sleep widens the window
	// between reading the rooms and storing the new one.
	onlyFirst := func(ctx context.Context, existing []domain.Room) error {
		time.Sleep(time.Millisecond)
		if len(existing) > 0 {
			return domain.ErrRoomOverlap
		}
		return nil
	}

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		accepted int
	)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			r := domain.Room{Type: "r"}
			if err := s.InsertChecked(ctx, apt.ID, &r, onlyFirst); err == nil {
				mu.Lock()
				accepted++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	got, _ := s.ListByApartment(ctx, apt.ID)
	if accepted != 1 || len(got) != 1 {
		t.Errorf("expected exactly 1 room, accepted %d, stored %d", accepted, len(got))
	}
}
