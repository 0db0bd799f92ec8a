package handlers

import (
	"turnover/internal/app"
	"turnover/internal/logger"

	workersController "turnover/internal/controllers/workers"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type WorkerHandler struct {
	Handler
	workerController workersController.WorkerControllerInterface
}

func NewWorkerHandler(app app.App, router fiber.Router) *WorkerHandler {
	log := logger.New("handlers").File("worker_handler")
	return &WorkerHandler{
		workerController: app.Controllers.Worker,
		Handler: Handler{
			log:        log,
			router:     router,
			middleware: app.Middleware,
		},
	}
}

func (h *WorkerHandler) Register() {
	workers := h.router.Group("/workers")

	workers.Get("", h.getWorkers)
	workers.Get("/:id", h.getWorker)
	workers.Get("/:id/rooms", h.getActiveRooms)
	workers.Get("/:id/metrics", h.getMetrics)
}

func (h *WorkerHandler) getWorkers(c *fiber.Ctx) error {
	workers, err := h.workerController.GetWorkers(c.UserContext())
	if err != nil {
		return respondError(c, err, "Failed to list workers")
	}

	return c.JSON(fiber.Map{
		"workers": workers,
	})
}

func (h *WorkerHandler) getWorker(c *fiber.Ctx) error {
	workerID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid worker ID",
		})
	}

	worker, err := h.workerController.GetWorker(c.UserContext(), workerID)
	if err != nil {
		return respondError(c, err, "Failed to get worker")
	}

	return c.JSON(fiber.Map{
		"worker": worker,
	})
}

func (h *WorkerHandler) getActiveRooms(c *fiber.Ctx) error {
	workerID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid worker ID",
		})
	}

	rooms, err := h.workerController.ActiveRooms(c.UserContext(), workerID)
	if err != nil {
		return respondError(c, err, "Failed to get worker rooms")
	}

	return c.JSON(fiber.Map{
		"rooms": rooms,
	})
}

func (h *WorkerHandler) getMetrics(c *fiber.Ctx) error {
	log := logger.New("handlers").TraceFromContext(c.UserContext()).File("worker_handler").Function("getMetrics")

	workerID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid worker ID",
		})
	}

	metrics, err := h.workerController.Metrics(c.UserContext(), workerID)
	if err != nil {
		_ = log.Err("Failed to compute worker metrics", err, "workerID", workerID)
		return respondError(c, err, "Failed to compute worker metrics")
	}

	return c.JSON(fiber.Map{
		"metrics": metrics,
	})
}
