package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/samirrijal/floorplan/internal/adapters/export"
	"github.com/samirrijal/floorplan/internal/adapters/http"
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
)

func main() {
	cfg, err := config.Load("floorplan-api")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logging.Setup(cfg.Log.Level, cfg.Log.Format)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Telemetry
	if cfg.Telemetry.Enabled {
		shutdown, err := telemetry.InitTracer(ctx, cfg.Telemetry.ServiceName, cfg.Telemetry.TempoAddr)
		if err != nil {
			slog.Warn("telemetry init failed", "error", err)
		} else {
			defer shutdown()
		}
	}

	deps := &http.Dependencies{}

	// Store: PostgreSQL/PostGIS, or in-process when database.host is "memory"
	var (
		apartmentRepo ports.ApartmentRepository
		roomRepo      ports.RoomRepository
		spatial       ports.SpatialPredicate
	)
	if cfg.Database.InMemory() {
		store := memory.New()
		apartmentRepo, roomRepo, spatial = store, store, geospatial.Planar{}
		deps.DB = store
		slog.Warn("using in-memory store; data is lost on restart")
	} else {
		db, err := postgres.New(ctx, cfg.Database.DSN(), cfg.Database.MaxConns)
		if err != nil {
			log.Fatalf("database: %v", err)
		}
		defer db.Close()
		go db.ReportPoolStats(ctx, 15*time.Second)

		apartmentRepo = postgres.NewApartmentRepo(db)
		roomRepo = postgres.NewRoomRepo(db)
		spatial = postgres.NewSpatial(db)
		deps.DB = db
	}

	// Cache
	var cache ports.CacheService
	if c, err := valkey.New(cfg.Valkey.Addr); err != nil {
		slog.Warn("valkey unavailable", "error", err)
	} else {
		defer c.Close()
		cache = c
		deps.Cache = c
	}

	// NATS
	var publisher ports.EventPublisher
	if p, err := natsadapter.NewPublisher(cfg.NATS.URL); err != nil {
		slog.Warn("nats unavailable", "error", err)
	} else {
		defer p.Close()
		publisher = p
	}

	// Raw NATS connection for WebSocket relay
	if nc, err := natsadapter.RawConn(cfg.NATS.URL); err != nil {
		slog.Warn("nats ws conn unavailable", "error", err)
	} else {
		defer nc.Close()
		deps.NATS = nc
	}

	// Use cases
	roomSvc := usecases.NewRoomService(roomRepo, spatial, cache, publisher)
	deps.Rooms = roomSvc
	deps.Apartments = usecases.NewApartmentService(apartmentRepo, roomSvc, publisher)
	deps.Exports = usecases.NewExportService(apartmentRepo, roomSvc,
		export.NewConversations(cfg.Export.HumanRole, cfg.Export.GPTRole))

	// Fiber
	app := fiber.New(fiber.Config{
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		BodyLimit:    1024 * 1024, // 1 MB max request body
		AppName:      "Floorplan API",
	})
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     "http://localhost:3000, http://localhost:5173",
		AllowMethods:     "GET,POST,DELETE,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowCredentials: false,
		MaxAge:           3600,
	}))

	http.SetupRoutes(app, deps)

	// Graceful shutdown
	go func() {
		addr := fmt.Sprintf(":%d", cfg.Server.Port)
		slog.Info("API server starting", "addr", addr, "in_memory", cfg.Database.InMemory())
		if err := app.Listen(addr); err != nil {
			log.Fatalf("listen: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	slog.Info("shutdown signal received, draining connections...", "signal", sig.String())

	// Give in-flight requests up to 10s to complete
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		slog.Error("forced shutdown", "error", err)
	}

	slog.Info("server stopped")
}
