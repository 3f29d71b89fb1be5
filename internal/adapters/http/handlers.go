package http

import (
	"bytes"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/samirrijal/floorplan/internal/adapters/export"
	"github.com/samirrijal/floorplan/internal/core/domain"
	"github.com/samirrijal/floorplan/internal/core/layout"
	"github.com/samirrijal/floorplan/internal/pkg/geospatial"
	"github.com/samirrijal/floorplan/internal/pkg/metrics"
)

// ParseRequest carries either a bare layout or a full prompt.
type ParseRequest struct {
	Layout string `json:"layout"`
	Prompt string `json:"prompt"`
}

// RoomView is a room as returned by the API.
type RoomView struct {
	domain.Room
	Area   float64       `json:"area"`
	Bounds domain.Bounds `json:"bounds"`
}

// LayoutView is the result of parsing or importing a layout.
type LayoutView struct {
	Apartment   *domain.Apartment `json:"apartment,omitempty"`
	Description string            `json:"description,omitempty"`
	Rooms       []RoomView        `json:"rooms"`
}

// CreateApartmentRequest creates an empty apartment or imports a prompt.
type CreateApartmentRequest struct {
	Description string `json:"description"`
	Prompt      string `json:"prompt"`
}

// CreateRoomRequest adds one room, either as a layout entry or as a shape.
type CreateRoomRequest struct {
	Entry string              `json:"entry"`
	Type  string              `json:"type"`
	Shape domain.MultiPolygon `json:"shape"`
}

func roomViews(rooms []domain.Room) []RoomView {
	out := make([]RoomView, len(rooms))
	for i, r := range rooms {
		out[i] = RoomView{Room: r, Area: geospatial.Area(r.Shape), Bounds: geospatial.BoundsOf(r.Shape)}
	}
	return out
}

// ParseLayoutHandler parses a layout or prompt without storing anything.
func ParseLayoutHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req ParseRequest
		if err := c.BodyParser(&req); err != nil {
			return errBadRequest(c, "invalid request body")
		}
		if (req.Layout == "") == (req.Prompt == "") {
			return errBadRequest(c, "exactly one of layout or prompt is required")
		}

		var (
			view LayoutView
			err  error
			rms  []domain.Room
		)
		if req.Prompt != "" {
			view.Description, rms, err = layout.ParsePrompt(req.Prompt)
		} else {
			rms, err = layout.ParseLayout(req.Layout)
		}
		if err != nil {
			metrics.LayoutsParsed.WithLabelValues("error").Inc()
			return respondError(c, err)
		}
		metrics.LayoutsParsed.WithLabelValues("ok").Inc()

		view.Rooms = roomViews(rms)
		return c.JSON(view)
	}
}

// CreateApartmentHandler creates an apartment. With a prompt, its rooms are
// imported as well.
func CreateApartmentHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req CreateApartmentRequest
		if err := c.BodyParser(&req); err != nil {
			return errBadRequest(c, "invalid request body")
		}
		if req.Prompt != "" && req.Description != "" {
			return errBadRequest(c, "description and prompt are mutually exclusive")
		}

		ctx := c.UserContext()
		if req.Prompt == "" {
			apt, err := deps.Apartments.Create(ctx, req.Description)
			if err != nil {
				return respondError(c, err)
			}
			return c.Status(fiber.StatusCreated).JSON(LayoutView{Apartment: apt, Rooms: []RoomView{}})
		}

		apt, rooms, err := deps.Apartments.ImportPrompt(ctx, req.Prompt)
		if err != nil {
			return respondError(c, err)
		}
		LoggerFromCtx(ctx).Info("prompt imported", "apartment_id", apt.ID, "rooms", len(rooms))
		return c.Status(fiber.StatusCreated).JSON(LayoutView{
			Apartment:   apt,
			Description: apt.Description,
			Rooms:       roomViews(rooms),
		})
	}
}

// ListApartmentsHandler returns a page of apartments.
func ListApartmentsHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		offset, limit := pageParams(c)

		apts, total, err := deps.Apartments.List(c.UserContext(), limit, offset)
		if err != nil {
			return respondError(c, err)
		}
		if apts == nil {
			apts = []domain.Apartment{}
		}

		pg := Pagination{Offset: offset, Limit: limit, Total: total}
		SetLinkHeaders(c, pg)
		return c.JSON(PaginatedResponse{Data: apts, Pagination: pg})
	}
}

// GetApartmentHandler returns an apartment by ID.
func GetApartmentHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		apt, err := deps.Apartments.GetByID(c.UserContext(), c.Params("id"))
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(apt)
	}
}

// DeleteApartmentHandler removes an apartment and its rooms.
func DeleteApartmentHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := deps.Apartments.Delete(c.UserContext(), c.Params("id")); err != nil {
			return respondError(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

// ListRoomsHandler returns the rooms of an apartment in insertion order.
func ListRoomsHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx := c.UserContext()
		id := c.Params("id")
		if _, err := deps.Apartments.GetByID(ctx, id); err != nil {
			return respondError(c, err)
		}
		rooms, err := deps.Rooms.ListByApartment(ctx, id)
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(roomViews(rooms))
	}
}

// CreateRoomHandler inserts a single room, rejecting overlaps with 409.
func CreateRoomHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req CreateRoomRequest
		if err := c.BodyParser(&req); err != nil {
			return errBadRequest(c, "invalid request body")
		}

		var room domain.Room
		switch {
		case req.Entry != "" && (req.Type != "" || req.Shape != nil):
			return errBadRequest(c, "entry and type/shape are mutually exclusive")
		case req.Entry != "":
			rooms, err := layout.ParseLayout(req.Entry)
			if err != nil {
				return respondError(c, err)
			}
			if len(rooms) != 1 {
				return errBadRequest(c, "entry must describe exactly one room")
			}
			room = rooms[0]
		case strings.TrimSpace(req.Type) != "" && len(req.Shape) > 0:
			room = domain.Room{Type: req.Type, Shape: req.Shape}
		default:
			return errBadRequest(c, "entry, or type and shape, are required")
		}

		ctx := c.UserContext()
		id := c.Params("id")
		if _, err := deps.Apartments.GetByID(ctx, id); err != nil {
			return respondError(c, err)
		}
		if err := deps.Rooms.Insert(ctx, id, &room); err != nil {
			return respondError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(roomViews([]domain.Room{room})[0])
	}
}

// ImportLayoutHandler parses a layout and inserts its rooms into an existing
// apartment. Rooms before the first failure stay stored.
func ImportLayoutHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req ParseRequest
		if err := c.BodyParser(&req); err != nil {
			return errBadRequest(c, "invalid request body")
		}
		if req.Layout == "" {
			return errBadRequest(c, "layout is required")
		}

		ctx := c.UserContext()
		id := c.Params("id")
		if _, err := deps.Apartments.GetByID(ctx, id); err != nil {
			return respondError(c, err)
		}
		rooms, err := deps.Rooms.ImportLayout(ctx, id, req.Layout)
		if err != nil {
			if len(rooms) > 0 {
				c.Set("X-Rooms-Stored", strconv.Itoa(len(rooms)))
			}
			return respondError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(LayoutView{Rooms: roomViews(rooms)})
	}
}

// ExportApartmentHandler returns the apartment as one JSONL export record.
func ExportApartmentHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var buf bytes.Buffer
		if err := deps.Exports.Export(c.UserContext(), &buf, c.Params("id")); err != nil {
			return respondError(c, err)
		}
		c.Set(fiber.HeaderContentType, "application/x-ndjson")
		return c.Send(buf.Bytes())
	}
}

// GeoJSONHandler returns the rooms of an apartment as a FeatureCollection.
func GeoJSONHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx := c.UserContext()
		id := c.Params("id")
		if _, err := deps.Apartments.GetByID(ctx, id); err != nil {
			return respondError(c, err)
		}
		rooms, err := deps.Rooms.ListByApartment(ctx, id)
		if err != nil {
			return respondError(c, err)
		}
		data, err := export.Collection(rooms).MarshalJSON()
		if err != nil {
			return respondError(c, err)
		}
		c.Set(fiber.HeaderContentType, "application/geo+json")
		return c.Send(data)
	}
}
