package handlers

import (
	"errors"

	assignmentController "turnover/internal/controllers/assignment"
	roomsController "turnover/internal/controllers/rooms"

	"github.com/gofiber/fiber/v2"
)

// respondError maps the controller error taxonomy onto HTTP statuses.
// Invalid transitions and concurrent conflicts are 409s the caller can react
// to by refreshing and retrying; nothing in this domain is fatal.
func respondError(c *fiber.Ctx, err error, fallback string) error {
	switch {
	case errors.Is(err, roomsController.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Not found",
		})
	case errors.Is(err, roomsController.ErrValidation):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Validation failed",
		})
	case errors.Is(err, assignmentController.ErrPendingNegotiation):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error": "Room already has a pending negotiation",
		})
	case errors.Is(err, roomsController.ErrInvalidTransition):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error": "Invalid transition",
		})
	case errors.Is(err, roomsController.ErrConflict):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error": "Concurrent conflict, retry",
		})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": fallback,
		})
	}
}
