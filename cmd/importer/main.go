// Command importer loads prompts into the floor-plan store.
//
//	importer [-concurrency N] [-batch | -queue] <prompts.txt>
//	importer -description "..." <rooms.geojson>
//
// A text file holds one "<description> [Layout] <layout>" prompt per line.
// By default each prompt is imported through the overlap-checking services.
// -batch checks each layout in process and stores its rooms with a single
// PostgreSQL batch. -queue publishes the prompts to NATS for cmd/worker.
// A .geojson file is imported as one apartment.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/samirrijal/floorplan/internal/adapters/export"
	"github.com/samirrijal/floorplan/internal/adapters/memory"
	natsadapter "github.com/samirrijal/floorplan/internal/adapters/nats"
	"github.com/samirrijal/floorplan/internal/adapters/postgres"
	"github.com/samirrijal/floorplan/internal/core/domain"
	"github.com/samirrijal/floorplan/internal/core/layout"
	"github.com/samirrijal/floorplan/internal/core/usecases"
	"github.com/samirrijal/floorplan/internal/pkg/config"
	"github.com/samirrijal/floorplan/internal/pkg/geospatial"
	"github.com/samirrijal/floorplan/internal/pkg/logging"
)

func main() {
	concurrency := flag.Int("concurrency", 4, "prompts imported in parallel")
	batch := flag.Bool("batch", false, "check layouts in process and insert rooms with one batch per prompt")
	queue := flag.Bool("queue", false, "publish prompts to NATS instead of importing them")
	description := flag.String("description", "", "apartment description for GeoJSON input")
	flag.Parse()

	if flag.NArg() != 1 {
		log.Fatal("usage: importer [-concurrency N] [-batch | -queue] [-description text] <file>")
	}
	if *batch && *queue {
		log.Fatal("-batch and -queue are mutually exclusive")
	}
	path := flag.Arg(0)

	cfg, err := config.Load("floorplan-importer")
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logging.Setup(cfg.Log.Level, cfg.Log.Format)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	f, err := os.Open(path)
	if err != nil {
		log.Fatalf("open %s: %v", path, err)
	}
	defer f.Close()

	if *queue {
		lines, err := readPrompts(f)
		if err != nil {
			log.Fatalf("read %s: %v", path, err)
		}
		pub, err := natsadapter.NewPublisher(cfg.NATS.URL)
		if err != nil {
			log.Fatalf("nats: %v", err)
		}
		defer pub.Close()

		base := filepath.Base(path)
		sum := run(ctx, lines, *concurrency, func(ctx context.Context, l promptLine) (int, error) {
			return 0, pub.PublishImportRequest(ctx, &domain.ImportRequest{
				RequestID: fmt.Sprintf("%s:%d", base, l.No),
				Prompt:    l.Text,
			})
		})
		slog.Info("prompts queued", "summary", sum.String())
		exitOn(sum)
		return
	}

	// Store
	var (
		apartments *usecases.ApartmentService
		rooms      *usecases.RoomService
		roomRepo   *postgres.RoomRepo
	)
	if cfg.Database.InMemory() {
		if *batch {
			log.Fatal("-batch needs PostgreSQL")
		}
		slog.Warn("in-memory store: dry run, nothing is persisted")
		store := memory.New()
		rooms = usecases.NewRoomService(store, geospatial.Planar{}, nil, nil)
		apartments = usecases.NewApartmentService(store, rooms, nil)
	} else {
		db, err := postgres.New(ctx, cfg.Database.DSN(), cfg.Database.MaxConns)
		if err != nil {
			log.Fatalf("database: %v", err)
		}
		defer db.Close()
		roomRepo = postgres.NewRoomRepo(db)
		rooms = usecases.NewRoomService(roomRepo, postgres.NewSpatial(db), nil, nil)
		apartments = usecases.NewApartmentService(postgres.NewApartmentRepo(db), rooms, nil)
	}

	if strings.EqualFold(filepath.Ext(path), ".geojson") {
		if err := importGeoJSON(ctx, f, apartments, rooms, *description); err != nil {
			log.Fatalf("import %s: %v", path, err)
		}
		return
	}

	lines, err := readPrompts(f)
	if err != nil {
		log.Fatalf("read %s: %v", path, err)
	}
	slog.Info("importing prompts", "file", path, "lines", len(lines), "concurrency", *concurrency, "batch", *batch)

	importOne := func(ctx context.Context, l promptLine) (int, error) {
		_, stored, err := apartments.ImportPrompt(ctx, l.Text)
		return len(stored), err
	}
	if *batch {
		importOne = func(ctx context.Context, l promptLine) (int, error) {
			desc, parsed, err := layout.ParsePrompt(l.Text)
			if err != nil {
				return 0, err
			}
			if err := checkRooms(parsed); err != nil {
				return 0, err
			}
			apt, err := apartments.Create(ctx, desc)
			if err != nil {
				return 0, err
			}
			if err := roomRepo.InsertBatch(ctx, apt.ID, parsed); err != nil {
				if derr := apartments.Delete(ctx, apt.ID); derr != nil {
					slog.Error("rollback apartment failed", "apartment_id", apt.ID, "error", derr)
				}
				return 0, err
			}
			return len(parsed), nil
		}
	}

	sum := run(ctx, lines, *concurrency, importOne)
	slog.Info("import complete", "summary", sum.String())
	exitOn(sum)
}

func importGeoJSON(ctx context.Context, r io.Reader, apartments *usecases.ApartmentService, rooms *usecases.RoomService, description string) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	parsed, err := export.RoomsFromGeoJSON(data)
	if err != nil {
		return err
	}
	if len(parsed) == 0 {
		return errNoRooms
	}

	apt, err := apartments.Create(ctx, description)
	if err != nil {
		return err
	}
	stored, err := rooms.InsertAll(ctx, apt.ID, parsed)
	if err != nil {
		if derr := apartments.Delete(ctx, apt.ID); derr != nil {
			slog.Error("rollback apartment failed", "apartment_id", apt.ID, "error", derr)
		}
		return err
	}
	slog.Info("geojson imported", "apartment_id", apt.ID, "rooms", len(stored))
	return nil
}

func exitOn(sum summary) {
	fmt.Println(sum.String())
	if sum.Failed > 0 {
		os.Exit(1)
	}
}
