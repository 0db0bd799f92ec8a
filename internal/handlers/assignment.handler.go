package handlers

import (
	"turnover/internal/app"
	"turnover/internal/handlers/middleware"
	"turnover/internal/logger"

	assignmentController "turnover/internal/controllers/assignment"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type AssignmentHandler struct {
	Handler
	assignmentController assignmentController.AssignmentControllerInterface
}

func NewAssignmentHandler(app app.App, router fiber.Router) *AssignmentHandler {
	log := logger.New("handlers").File("assignment_handler")
	return &AssignmentHandler{
		assignmentController: app.Controllers.Assignment,
		Handler: Handler{
			log:        log,
			router:     router,
			middleware: app.Middleware,
		},
	}
}

func (h *AssignmentHandler) Register() {
	assignments := h.router.Group("/assignments")

	assignments.Post("/proposals", h.middleware.RequireRole(middleware.RoleManager), h.propose)
	assignments.Post("/proposals/:id/resolve", h.resolve)
	assignments.Get("/rooms/:roomId/pending", h.pendingNegotiation)
}

func (h *AssignmentHandler) propose(c *fiber.Ctx) error {
	log := logger.New("handlers").TraceFromContext(c.UserContext()).File("assignment_handler").Function("propose")

	var request assignmentController.ProposeRequest
	if err := c.BodyParser(&request); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	if request.RoomID == uuid.Nil || request.WorkerID == uuid.Nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "roomId and workerId are required",
		})
	}

	negotiation, err := h.assignmentController.Propose(c.UserContext(), &request)
	if err != nil {
		_ = log.Err("Failed to propose assignment", err, "roomID", request.RoomID, "workerID", request.WorkerID)
		return respondError(c, err, "Failed to propose assignment")
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"negotiation": negotiation,
	})
}

func (h *AssignmentHandler) resolve(c *fiber.Ctx) error {
	log := logger.New("handlers").TraceFromContext(c.UserContext()).File("assignment_handler").Function("resolve")

	negotiationID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid negotiation ID",
		})
	}

	var request struct {
		Accepted bool `json:"accepted"`
	}
	if err := c.BodyParser(&request); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	response, err := h.assignmentController.Resolve(c.UserContext(), negotiationID, request.Accepted)
	if err != nil {
		_ = log.Err("Failed to resolve negotiation", err, "negotiationID", negotiationID)
		return respondError(c, err, "Failed to resolve negotiation")
	}

	return c.JSON(response)
}

func (h *AssignmentHandler) pendingNegotiation(c *fiber.Ctx) error {
	roomID, err := uuid.Parse(c.Params("roomId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid room ID",
		})
	}

	negotiation, ok := h.assignmentController.PendingNegotiation(roomID)
	if !ok {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "No pending negotiation for room",
		})
	}

	return c.JSON(fiber.Map{
		"negotiation": negotiation,
	})
}
