package handlers

import (
	"strconv"

	"turnover/internal/app"
	"turnover/internal/handlers/middleware"
	"turnover/internal/logger"

	messagesController "turnover/internal/controllers/messages"

	"github.com/gofiber/fiber/v2"
)

type MessageHandler struct {
	Handler
	messageController messagesController.MessageControllerInterface
}

func NewMessageHandler(app app.App, router fiber.Router) *MessageHandler {
	log := logger.New("handlers").File("message_handler")
	return &MessageHandler{
		messageController: app.Controllers.Message,
		Handler: Handler{
			log:        log,
			router:     router,
			middleware: app.Middleware,
		},
	}
}

func (h *MessageHandler) Register() {
	messages := h.router.Group("/messages", h.middleware.RequireRole(middleware.RoleManager))

	messages.Get("", h.getMessages)
}

func (h *MessageHandler) getMessages(c *fiber.Ctx) error {
	log := logger.New("handlers").TraceFromContext(c.UserContext()).File("message_handler").Function("getMessages")

	limit := 0
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Invalid limit",
			})
		}
		limit = parsed
	}

	messages, err := h.messageController.Messages(c.UserContext(), limit)
	if err != nil {
		_ = log.Err("Failed to list messages", err)
		return respondError(c, err, "Failed to list messages")
	}

	return c.JSON(fiber.Map{
		"messages": messages,
	})
}
