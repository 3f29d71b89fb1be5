package http

import (
	"context"

	"github.com/nats-io/nats.go"

	"github.com/samirrijal/floorplan/internal/adapters/valkey"
	"github.com/samirrijal/floorplan/internal/core/usecases"
)

// Pinger is a backing store that can report its connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Dependencies holds all services needed by HTTP handlers.
type Dependencies struct {
	Apartments *usecases.ApartmentService
	Rooms      *usecases.RoomService
	Exports    *usecases.ExportService
	NATS       *nats.Conn
	DB         Pinger
	Cache      *valkey.Cache
}
