package handlers

import (
	"turnover/internal/app"
	"turnover/internal/logger"
	"turnover/internal/models"

	roomsController "turnover/internal/controllers/rooms"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type RoomHandler struct {
	Handler
	roomController roomsController.RoomControllerInterface
}

func NewRoomHandler(app app.App, router fiber.Router) *RoomHandler {
	log := logger.New("handlers").File("room_handler")
	return &RoomHandler{
		roomController: app.Controllers.Room,
		Handler: Handler{
			log:        log,
			router:     router,
			middleware: app.Middleware,
		},
	}
}

func (h *RoomHandler) Register() {
	rooms := h.router.Group("/rooms")
	rooms.Get("", h.roomsByStatus)
	rooms.Get("/:id", h.getRoom)
}

func (h *RoomHandler) roomsByStatus(c *fiber.Ctx) error {
	status := models.RoomStatus(c.Query("status"))
	if status == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "status query parameter is required",
		})
	}

	rooms, err := h.roomController.RoomsByStatus(c.UserContext(), status)
	if err != nil {
		return respondError(c, err, "Failed to list rooms")
	}

	return c.JSON(fiber.Map{
		"rooms": rooms,
	})
}

func (h *RoomHandler) getRoom(c *fiber.Ctx) error {
	roomID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid room ID",
		})
	}

	room, err := h.roomController.GetRoom(c.UserContext(), roomID)
	if err != nil {
		return respondError(c, err, "Failed to get room")
	}

	return c.JSON(fiber.Map{
		"room": room,
	})
}
