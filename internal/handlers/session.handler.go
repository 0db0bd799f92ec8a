package handlers

import (
	"turnover/internal/app"
	"turnover/internal/handlers/middleware"
	"turnover/internal/logger"

	sessionController "turnover/internal/controllers/session"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type SessionHandler struct {
	Handler
	sessionController sessionController.SessionControllerInterface
}

func NewSessionHandler(app app.App, router fiber.Router) *SessionHandler {
	log := logger.New("handlers").File("session_handler")
	return &SessionHandler{
		sessionController: app.Controllers.Session,
		Handler: Handler{
			log:        log,
			router:     router,
			middleware: app.Middleware,
		},
	}
}

func (h *SessionHandler) Register() {
	batches := h.router.Group("/batches")
	batches.Get("", h.getBatch)
	batches.Post("/rooms", h.selectRooms)
	batches.Delete("/rooms/:roomId", h.cancelSelection)
	batches.Post("/proceed", h.proceed)

	rooms := h.router.Group("/rooms")
	rooms.Post("/:id/activities/:activityId/toggle", h.toggleActivity)
	rooms.Post("/:id/finish", h.finish)
	rooms.Post("/:id/abandon", h.abandon)
}

func (h *SessionHandler) getBatch(c *fiber.Ctx) error {
	workerID, ok := middleware.GetWorkerID(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Worker identity required",
		})
	}

	return c.JSON(fiber.Map{
		"batch": h.sessionController.WorkerBatch(workerID),
	})
}

func (h *SessionHandler) selectRooms(c *fiber.Ctx) error {
	log := logger.New("handlers").TraceFromContext(c.UserContext()).File("session_handler").Function("selectRooms")

	workerID, ok := middleware.GetWorkerID(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Worker identity required",
		})
	}

	var request struct {
		RoomIDs []uuid.UUID `json:"roomIds"`
	}
	if err := c.BodyParser(&request); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}
	if len(request.RoomIDs) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "roomIds is required",
		})
	}

	batch, err := h.sessionController.SelectRooms(c.UserContext(), workerID, request.RoomIDs)
	if err != nil {
		_ = log.Err("Failed to select rooms", err, "workerID", workerID)
		return respondError(c, err, "Failed to select rooms")
	}

	return c.JSON(fiber.Map{
		"batch": batch,
	})
}

func (h *SessionHandler) cancelSelection(c *fiber.Ctx) error {
	workerID, ok := middleware.GetWorkerID(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Worker identity required",
		})
	}

	roomID, err := uuid.Parse(c.Params("roomId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid room ID",
		})
	}

	return c.JSON(fiber.Map{
		"batch": h.sessionController.CancelSelection(workerID, roomID),
	})
}

func (h *SessionHandler) proceed(c *fiber.Ctx) error {
	log := logger.New("handlers").TraceFromContext(c.UserContext()).File("session_handler").Function("proceed")

	workerID, ok := middleware.GetWorkerID(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Worker identity required",
		})
	}

	batch, err := h.sessionController.Proceed(c.UserContext(), workerID)
	if err != nil {
		_ = log.Err("Failed to proceed with batch", err, "workerID", workerID)
		return respondError(c, err, "Failed to proceed with batch")
	}

	return c.JSON(fiber.Map{
		"batch": batch,
	})
}

func (h *SessionHandler) toggleActivity(c *fiber.Ctx) error {
	log := logger.New("handlers").TraceFromContext(c.UserContext()).File("session_handler").Function("toggleActivity")

	roomID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid room ID",
		})
	}

	activityID, err := uuid.Parse(c.Params("activityId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid activity ID",
		})
	}

	response, err := h.sessionController.ToggleActivity(c.UserContext(), roomID, activityID)
	if err != nil {
		_ = log.Err("Failed to toggle activity", err, "roomID", roomID, "activityID", activityID)
		return respondError(c, err, "Failed to toggle activity")
	}

	return c.JSON(response)
}

func (h *SessionHandler) finish(c *fiber.Ctx) error {
	log := logger.New("handlers").TraceFromContext(c.UserContext()).File("session_handler").Function("finish")

	roomID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid room ID",
		})
	}

	record, err := h.sessionController.Finish(c.UserContext(), roomID)
	if err != nil {
		_ = log.Err("Failed to finish room", err, "roomID", roomID)
		return respondError(c, err, "Failed to finish room")
	}

	return c.JSON(fiber.Map{
		"record": record,
	})
}

func (h *SessionHandler) abandon(c *fiber.Ctx) error {
	log := logger.New("handlers").TraceFromContext(c.UserContext()).File("session_handler").Function("abandon")

	roomID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid room ID",
		})
	}

	var request struct {
		Note string `json:"note"`
	}
	if err := c.BodyParser(&request); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	message, err := h.sessionController.Abandon(c.UserContext(), roomID, request.Note)
	if err != nil {
		_ = log.Err("Failed to abandon room", err, "roomID", roomID)
		return respondError(c, err, "Failed to abandon room")
	}

	return c.JSON(fiber.Map{
		"message": message,
	})
}
