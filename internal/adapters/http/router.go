package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/fiber/v2/middleware/timeout"
	"github.com/gofiber/websocket/v2"

	"github.com/samirrijal/floorplan/internal/pkg/metrics"
)

const requestTimeout = 15 * time.Second

// deprecatedRoutes lists aliases kept for older clients.
var deprecatedRoutes = []DeprecatedRoute{
	{
		Path:        "/v1/parse",
		SunsetDate:  time.Date(2027, 6, 30, 0, 0, 0, 0, time.UTC),
		Alternative: "/v1/layouts/parse",
	},
}

// SetupRoutes registers all REST, GraphQL, and WebSocket routes.
func SetupRoutes(app *fiber.App, deps *Dependencies) {
	// Prometheus metrics
	app.Use(metrics.Middleware())
	app.Get("/metrics", metrics.Handler())

	app.Use(compress.New(compress.Config{
		Level: compress.LevelBestSpeed,
	}))

	app.Use(requestid.New())
	app.Use(RequestIDLogMiddleware())
	app.Use(AccessLogMiddleware())

	// Rate limiting: 120 requests per minute per IP
	app.Use(limiter.New(limiter.Config{
		Max:        120,
		Expiration: 1 * time.Minute,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return newError(c, fiber.StatusTooManyRequests, "rate_limited", "too many requests, please try again later")
		},
	}))

	// Security headers + API version
	app.Use(func(c *fiber.Ctx) error {
		c.Set("X-Content-Type-Options", "nosniff")
		c.Set("X-Frame-Options", "DENY")
		c.Set("Referrer-Policy", "strict-origin-when-cross-origin")
		c.Set("X-API-Version", "1.0.0")
		return c.Next()
	})

	app.Use(ETagMiddleware())
	app.Use(CachingMiddleware())
	app.Use(DeprecationMiddleware(deprecatedRoutes))

	// Health & readiness (no timeout, fast internal checks)
	app.Get("/v1/health", HealthHandler(deps))
	app.Get("/v1/ready", ReadyHandler(deps))

	v1 := app.Group("/v1")
	with := func(h fiber.Handler) fiber.Handler { return timeout.NewWithContext(h, requestTimeout) }

	v1.Post("/layouts/parse", with(ParseLayoutHandler(deps)))
	v1.Post("/parse", with(ParseLayoutHandler(deps))) // deprecated alias

	v1.Post("/apartments", with(CreateApartmentHandler(deps)))
	v1.Get("/apartments", with(ListApartmentsHandler(deps)))
	v1.Get("/apartments/:id", with(GetApartmentHandler(deps)))
	v1.Delete("/apartments/:id", with(DeleteApartmentHandler(deps)))
	v1.Get("/apartments/:id/rooms", with(ListRoomsHandler(deps)))
	v1.Post("/apartments/:id/rooms", with(CreateRoomHandler(deps)))
	v1.Post("/apartments/:id/layout", with(ImportLayoutHandler(deps)))
	v1.Get("/apartments/:id/export", with(ExportApartmentHandler(deps)))
	v1.Get("/apartments/:id/geojson", with(GeoJSONHandler(deps)))

	app.Post("/graphql", GraphQLHandler(deps))

	SetupDocs(app, DefaultSpecPath)

	// WebSocket relay needs NATS
	if deps.NATS != nil {
		app.Use("/ws", func(c *fiber.Ctx) error {
			if websocket.IsWebSocketUpgrade(c) {
				return c.Next()
			}
			return fiber.ErrUpgradeRequired
		})
		app.Get("/ws", websocket.New(WebSocketHandler(deps.NATS)))
	}
}
