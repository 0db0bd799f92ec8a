package handlers

import (
	"strconv"

	"turnover/internal/app"
	"turnover/internal/logger"

	historyController "turnover/internal/controllers/history"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type HistoryHandler struct {
	Handler
	historyController historyController.HistoryControllerInterface
}

func NewHistoryHandler(app app.App, router fiber.Router) *HistoryHandler {
	log := logger.New("handlers").File("history_handler")
	return &HistoryHandler{
		historyController: app.Controllers.History,
		Handler: Handler{
			log:        log,
			router:     router,
			middleware: app.Middleware,
		},
	}
}

func (h *HistoryHandler) Register() {
	history := h.router.Group("/history")

	history.Get("", h.getHistory)
	history.Get("/rooms/:roomId", h.getRoomHistory)
}

func (h *HistoryHandler) getHistory(c *fiber.Ctx) error {
	log := logger.New("handlers").TraceFromContext(c.UserContext()).File("history_handler").Function("getHistory")

	request := historyController.HistoryRequest{
		From: c.Query("from"),
		To:   c.Query("to"),
	}

	if raw := c.Query("workerId"); raw != "" {
		workerID, err := uuid.Parse(raw)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Invalid worker ID",
			})
		}
		request.WorkerID = &workerID
	}

	if raw := c.Query("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 0 {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Invalid limit",
			})
		}
		request.Limit = limit
	}

	records, err := h.historyController.History(c.UserContext(), &request)
	if err != nil {
		_ = log.Err("Failed to query cleaning history", err)
		return respondError(c, err, "Failed to query cleaning history")
	}

	return c.JSON(fiber.Map{
		"records": records,
	})
}

func (h *HistoryHandler) getRoomHistory(c *fiber.Ctx) error {
	roomID, err := uuid.Parse(c.Params("roomId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid room ID",
		})
	}

	records, err := h.historyController.RoomHistory(c.UserContext(), roomID)
	if err != nil {
		return respondError(c, err, "Failed to query room history")
	}

	return c.JSON(fiber.Map{
		"records": records,
	})
}
