package main

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/samirrijal/floorplan/internal/adapters/memory"
	"github.com/samirrijal/floorplan/internal/core/domain"
	"github.com/samirrijal/floorplan/internal/core/layout"
	"github.com/samirrijal/floorplan/internal/core/usecases"
	"github.com/samirrijal/floorplan/internal/pkg/geospatial"
)

func TestReadPrompts(t *testing.T) {
	in := "first [Layout] a: (0,0)(1,0)(1,1)\n\n   \nsecond [Layout] b: (0,0)(2,0)(2,2)\r\n"
	lines, err := readPrompts(strings.NewReader(in))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(lines))
	}
	if lines[0].No != 1 || lines[1].No != 4 {
		t.Errorf("unexpected line numbers %d, %d", lines[0].No, lines[1].No)
	}
	if strings.HasSuffix(lines[1].Text, "\r") {
		t.Error("trailing carriage return should be trimmed")
	}
}

func TestRun_Summary(t *testing.T) {
	lines := []promptLine{{No: 1}, {No: 2}, {No: 3}, {No: 4}}

	sum := run(context.Background(), lines, 2, func(ctx context.Context, l promptLine) (int, error) {
		if l.No%2 == 0 {
			return 0, errors.New("boom")
		}
		return 3, nil
	})

	if sum.Total != 4 || sum.Imported != 2 || sum.Failed != 2 || sum.Rooms != 6 {
		t.Errorf("unexpected summary %+v", sum)
	}
}

func TestRun_BoundedConcurrency(t *testing.T) {
	lines := make([]promptLine, 20)
	for i := range lines {
		lines[i].No = i + 1
	}

	var inFlight, peak int32
	block := make(chan struct{})
	done := make(chan summary)
	go func() {
		done <- run(context.Background(), lines, 3, func(ctx context.Context, l promptLine) (int, error) {
			n := atomic.AddInt32(&inFlight, 1)
			for {
				p := atomic.LoadInt32(&peak)
				if n <= p || atomic.CompareAndSwapInt32(&peak, p, n) {
					break
				}
			}
			<-block
			atomic.AddInt32(&inFlight, -1)
			return 1, nil
		})
	}()
	close(block)
	sum := <-done

	if p := atomic.LoadInt32(&peak); p > 3 {
		t.Errorf("expected at most 3 concurrent imports, saw %d", p)
	}
	if sum.Imported != 20 {
		t.Errorf("expected 20 imported, got %d", sum.Imported)
	}
}

func TestRun_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	sum := run(ctx, []promptLine{{No: 1}, {No: 2}}, 1, func(ctx context.Context, l promptLine) (int, error) {
		t.Error("import should not start after cancellation")
		return 0, nil
	})
	if sum.Failed != 2 {
		t.Errorf("expected unstarted lines counted as failed, got %+v", sum)
	}
}

func TestCheckRooms(t *testing.T) {
	tests := []struct {
		name    string
		layout  string
		wantErr error
	}{
		{"disjoint", "a: (0,0)(10,0)(10,10)(0,10), b: (20,0)(30,0)(30,10)(20,10)", nil},
		{"overlap", "a: (0,0)(10,0)(10,10)(0,10), b: (5,5)(15,5)(15,15)(5,15)", domain.ErrRoomOverlap},
		{"touching", "a: (0,0)(10,0)(10,10)(0,10), b: (10,0)(20,0)(20,10)(10,10)", domain.ErrRoomOverlap},
		{"short ring", "a: (0,0)(10,0)", domain.ErrInvalidShape},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rooms, err := layout.ParseLayout(tt.layout)
			if err != nil {
				t.Fatal(err)
			}
			err = checkRooms(rooms)
			if tt.wantErr == nil && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestImportGeoJSON(t *testing.T) {
	store := memory.New()
	rooms := usecases.NewRoomService(store, geospatial.Planar{}, nil, nil)
	apts := usecases.NewApartmentService(store, rooms, nil)

	fc := `{"type":"FeatureCollection","features":[
		{"type":"Feature","properties":{"room_type":"kitchen"},
		 "geometry":{"type":"Polygon","coordinates":[[[0,0],[4,0],[4,3],[0,3],[0,0]]]}}]}`

	if err := importGeoJSON(context.Background(), strings.NewReader(fc), apts, rooms, "from geojson"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	list, total, _ := apts.List(context.Background(), 10, 0)
	if total != 1 || list[0].Description != "from geojson" {
		t.Fatalf("unexpected apartments %+v", list)
	}
	stored, _ := rooms.ListByApartment(context.Background(), list[0].ID)
	if len(stored) != 1 || stored[0].Type != "kitchen" {
		t.Errorf("unexpected rooms %+v", stored)
	}
}

func TestImportGeoJSON_Empty(t *testing.T) {
	store := memory.New()
	rooms := usecases.NewRoomService(store, geospatial.Planar{}, nil, nil)
	apts := usecases.NewApartmentService(store, rooms, nil)

	err := importGeoJSON(context.Background(), strings.NewReader(`{"type":"FeatureCollection","features":[]}`), apts, rooms, "")
	if !errors.Is(err, errNoRooms) {
		t.Errorf("expected errNoRooms, got %v", err)
	}
}
