// Command worker runs the Temporal worker for ImportPromptWorkflow and starts
// a workflow for every import request queued on NATS.
package main

import (
	"context"
	"log"
	"log/slog"

	"go.temporal.io/sdk/client"
	"go.temporal.io/sdk/worker"

	"github.com/samirrijal/floorplan/internal/adapters/memory"
	natsadapter "github.com/samirrijal/floorplan/internal/adapters/nats"
	"github.com/samirrijal/floorplan/internal/adapters/postgres"
	"github.com/samirrijal/floorplan/internal/adapters/valkey"
	"github.com/samirrijal/floorplan/internal/core/ports"
	"github.com/samirrijal/floorplan/internal/core/usecases"
	"github.com/samirrijal/floorplan/internal/pkg/config"
	"github.com/samirrijal/floorplan/internal/pkg/geospatial"
	"github.com/samirrijal/floorplan/internal/pkg/logging"
	"github.com/samirrijal/floorplan/internal/pkg/telemetry"
	"github.com/samirrijal/floorplan/internal/workflows"
)

func main() {
	cfg, err := config.Load("floorplan-worker")
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logging.Setup(cfg.Log.Level, cfg.Log.Format)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if cfg.Telemetry.Enabled {
		shutdown, err := telemetry.InitTracer(ctx, cfg.Telemetry.ServiceName, cfg.Telemetry.TempoAddr)
		if err != nil {
			slog.Warn("telemetry init failed", "error", err)
		} else {
			defer shutdown()
		}
	}

	// Store
	var (
		apartmentRepo ports.ApartmentRepository
		roomRepo      ports.RoomRepository
		spatial       ports.SpatialPredicate
	)
	if cfg.Database.InMemory() {
		store := memory.New()
		apartmentRepo, roomRepo, spatial = store, store, geospatial.Planar{}
		slog.Warn("using in-memory store; imported apartments are lost on exit")
	} else {
		db, err := postgres.New(ctx, cfg.Database.DSN(), cfg.Database.MaxConns)
		if err != nil {
			log.Fatalf("database: %v", err)
		}
		defer db.Close()
		apartmentRepo = postgres.NewApartmentRepo(db)
		roomRepo = postgres.NewRoomRepo(db)
		spatial = postgres.NewSpatial(db)
	}

	// Room list cache is invalidated on insert, so the worker shares it with the API.
	var cache ports.CacheService
	if c, err := valkey.New(cfg.Valkey.Addr); err != nil {
		slog.Warn("valkey unavailable", "error", err)
	} else {
		defer c.Close()
		cache = c
	}

	var publisher ports.EventPublisher
	if p, err := natsadapter.NewPublisher(cfg.NATS.URL); err != nil {
		slog.Warn("nats publisher unavailable", "error", err)
	} else {
		defer p.Close()
		publisher = p
	}

	rooms := usecases.NewRoomService(roomRepo, spatial, cache, publisher)
	apartments := usecases.NewApartmentService(apartmentRepo, rooms, publisher)

	// Temporal
	c, err := client.Dial(client.Options{
		HostPort:  cfg.Temporal.HostPort,
		Namespace: cfg.Temporal.Namespace,
		Logger:    slog.Default(),
	})
	if err != nil {
		log.Fatalf("temporal client: %v", err)
	}
	defer c.Close()

	w := worker.New(c, cfg.Temporal.TaskQueue, worker.Options{})
	w.RegisterWorkflow(workflows.ImportPromptWorkflow)
	w.RegisterActivity(&workflows.ImportActivities{
		Apartments: apartments,
		Rooms:      rooms,
	})

	// NATS import requests
	sub, err := natsadapter.NewSubscriber(cfg.NATS.URL)
	if err != nil {
		slog.Warn("nats subscriber unavailable; only workflows started elsewhere run", "error", err)
	} else {
		defer sub.Close()
		d := &dispatcher{temporal: c, taskQueue: cfg.Temporal.TaskQueue}
		if err := sub.SubscribeImportRequests(ctx, d.handle); err != nil {
			log.Fatalf("subscribe import requests: %v", err)
		}
	}

	slog.Info("import worker started", "task_queue", cfg.Temporal.TaskQueue)
	if err := w.Run(worker.InterruptCh()); err != nil {
		log.Fatalf("worker: %v", err)
	}
}
