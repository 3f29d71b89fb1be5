//go:build integration
// +build integration

package http_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/samirrijal/floorplan/internal/adapters/export"
	"github.com/samirrijal/floorplan/internal/adapters/http"
	"github.com/samirrijal/floorplan/internal/adapters/postgres"
	"github.com/samirrijal/floorplan/internal/core/domain"
	"github.com/samirrijal/floorplan/internal/core/layout"
	"github.com/samirrijal/floorplan/internal/core/usecases"
	"github.com/samirrijal/floorplan/internal/pkg/config"
)

// setupTestDB connects to the test database and returns a DB instance.
func setupTestDB(t *testing.T) *postgres.DB {
	cfg, err := config.Load("floorplan-test")
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.Database.InMemory() {
		t.Skip("database.host is memory; integration tests need PostgreSQL")
	}

	pool, err := pgxpool.New(context.Background(), cfg.Database.DSN())
	if err != nil {
		t.Fatalf("connect db: %v", err)
	}

	db := &postgres.DB{Pool: pool}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := pool.Ping(ctx); err != nil {
		t.Fatalf("ping db: %v", err)
	}

	return db
}

// setupTestDeps creates dependencies with real repos and the PostGIS predicate, no cache.
func setupTestDeps(t *testing.T, db *postgres.DB) *http.Dependencies {
	apts := postgres.NewApartmentRepo(db)
	rooms := usecases.NewRoomService(postgres.NewRoomRepo(db), postgres.NewSpatial(db), nil, nil)

	return &http.Dependencies{
		Apartments: usecases.NewApartmentService(apts, rooms, nil),
		Rooms:      rooms,
		Exports:    usecases.NewExportService(apts, rooms, export.NewConversations("human", "gpt")),
		DB:         db,
	}
}

func TestImportPrompt_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	db := setupTestDB(t)
	defer db.Pool.Close()

	app := setupApp(setupTestDeps(t, db))

	v := createApartment(t, app, "integration flat [Layout] "+bedroom+", "+livingRoom)
	defer doJSON(t, app, "DELETE", "/v1/apartments/"+v.Apartment.ID, "")

	req := httptest.NewRequest("GET", "/v1/apartments/"+v.Apartment.ID+"/rooms", nil)
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("test request: %v", err)
	}
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var rooms []domain.Room
	if err := json.NewDecoder(resp.Body).Decode(&rooms); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(rooms) != 2 {
		t.Fatalf("expected 2 rooms, got %d", len(rooms))
	}
	if rooms[0].Type != "bedroom" || rooms[1].Type != "living_room" {
		t.Errorf("expected insertion order, got %s, %s", rooms[0].Type, rooms[1].Type)
	}
	if !rooms[0].Shape.Equal(v.Rooms[0].Shape) {
		t.Errorf("shape did not survive the WKT/WKB round trip: %+v", rooms[0].Shape)
	}
}

// TestOverlap_Integration checks the PostGIS predicate, including touching rooms.
func TestOverlap_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	db := setupTestDB(t)
	defer db.Pool.Close()

	app := setupApp(setupTestDeps(t, db))

	v := createApartment(t, app, "overlap [Layout] a: (0,0)(10,0)(10,10)(0,10)")
	defer doJSON(t, app, "DELETE", "/v1/apartments/"+v.Apartment.ID, "")
	path := "/v1/apartments/" + v.Apartment.ID + "/rooms"

	tests := []struct {
		entry string
		want  int
	}{
		{"b: (5,5)(15,5)(15,15)(5,15)", 409},
		{"c: (10,0)(20,0)(20,10)(10,10)", 409},
		{"d: (30,30)(40,30)(40,40)(30,40)", 201},
	}
	for _, tt := range tests {
		code, b, _ := doJSON(t, app, "POST", path, `{"entry":"`+tt.entry+`"}`)
		if code != tt.want {
			t.Errorf("%s: expected %d, got %d: %s", tt.entry, tt.want, code, b)
		}
	}
}

// TestConcurrentOverlap_Integration races identical rooms into one apartment
// through the row-locked insert path.
func TestConcurrentOverlap_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	db := setupTestDB(t)
	defer db.Pool.Close()

	deps := setupTestDeps(t, db)
	ctx := context.Background()

	apt, err := deps.Apartments.Create(ctx, "race")
	if err != nil {
		t.Fatalf("create apartment: %v", err)
	}
	defer deps.Apartments.Delete(ctx, apt.ID)

	rooms, err := layout.ParseLayout("bedroom: (0,0)(10,0)(10,10)(0,10)")
	if err != nil {
		t.Fatal(err)
	}

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		overlaps int
	)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			r := rooms[0]
			err := deps.Rooms.Insert(ctx, apt.ID, &r)
			if errors.Is(err, domain.ErrRoomOverlap) {
				mu.Lock()
				overlaps++
				mu.Unlock()
			} else if err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	stored, err := deps.Rooms.ListByApartment(ctx, apt.ID)
	if err != nil {
		t.Fatalf("list rooms: %v", err)
	}
	if len(stored) != 1 || overlaps != 7 {
		t.Errorf("expected 1 stored room and 7 rejections, got %d and %d", len(stored), overlaps)
	}
}

func TestExport_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	db := setupTestDB(t)
	defer db.Pool.Close()

	app := setupApp(setupTestDeps(t, db))

	v := createApartment(t, app, "export flat [Layout] "+bedroom)
	defer doJSON(t, app, "DELETE", "/v1/apartments/"+v.Apartment.ID, "")

	code, b, _ := doJSON(t, app, "GET", "/v1/apartments/"+v.Apartment.ID+"/export", "")
	if code != 200 {
		t.Fatalf("expected 200, got %d", code)
	}
	if !strings.Contains(string(b), `"value":"`+bedroom+`"`) {
		t.Errorf("expected layout in export, got %s", b)
	}
}
