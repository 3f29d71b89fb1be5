package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/samirrijal/floorplan/internal/core/domain"
	"github.com/samirrijal/floorplan/internal/core/layout"
)

// APIError is a structured error response.
type APIError struct {
	Status    int    `json:"status"`
	Code      string `json:"code"`    // Error code: bad_request, not_found, invalid_layout, etc.
	Message   string `json:"message"` // Human-readable message
	RequestID string `json:"request_id,omitempty"`

	// Set for invalid_layout only.
	Kind  string `json:"kind,omitempty"`
	Entry *int   `json:"entry,omitempty"`
	Input string `json:"input,omitempty"`
}

// newError builds a JSON error response with a request ID.
func newError(c *fiber.Ctx, status int, code string, message string) error {
	reqID, _ := c.Locals("requestid").(string)
	return c.Status(status).JSON(APIError{
		Status:    status,
		Code:      code,
		Message:   message,
		RequestID: reqID,
	})
}

// errBadRequest returns a 400 error.
func errBadRequest(c *fiber.Ctx, msg string) error {
	return newError(c, 400, "bad_request", msg)
}

// errNotFound returns a 404 error.
func errNotFound(c *fiber.Ctx, msg string) error {
	return newError(c, 404, "not_found", msg)
}

// errInternal returns a 500 error.
func errInternal(c *fiber.Ctx, msg string) error {
	return newError(c, 500, "internal_error", msg)
}

// errConflict returns a 409 error.
func errConflict(c *fiber.Ctx, msg string) error {
	return newError(c, 409, "conflict", msg)
}

// errInvalidLayout returns a 422 error describing a parse failure.
func errInvalidLayout(c *fiber.Ctx, pe *layout.ParseError) error {
	reqID, _ := c.Locals("requestid").(string)
	body := APIError{
		Status:    422,
		Code:      "invalid_layout",
		Message:   pe.Error(),
		RequestID: reqID,
		Kind:      pe.Kind.Code(),
		Input:     pe.Input,
	}
	if pe.Entry >= 0 {
		entry := pe.Entry
		body.Entry = &entry
	}
	return c.Status(422).JSON(body)
}

// respondError maps service errors to HTTP responses.
func respondError(c *fiber.Ctx, err error) error {
	var pe *layout.ParseError
	switch {
	case errors.As(err, &pe):
		return errInvalidLayout(c, pe)
	case errors.Is(err, domain.ErrNotFound):
		return errNotFound(c, err.Error())
	case errors.Is(err, domain.ErrRoomOverlap):
		return errConflict(c, err.Error())
	case errors.Is(err, domain.ErrInvalidShape):
		return newError(c, 422, "invalid_shape", err.Error())
	default:
		LoggerFromCtx(c.UserContext()).Error("request failed", "path", c.Path(), "error", err)
		return errInternal(c, "internal error")
	}
}
