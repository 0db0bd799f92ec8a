package handlers

import (
	"turnover/internal/app"
	"turnover/internal/handlers/middleware"
	"turnover/internal/logger"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

type Handler struct {
	middleware middleware.Middleware
	log        logger.Logger
	router     fiber.Router
}

func Router(router fiber.Router, app *app.App) (err error) {
	setupWebSocketRoute(router, app)

	api := router.Group("/api")
	api.Use(app.Middleware.TraceID())

	HealthHandler(api, app.Config)

	authed := api.Group("", app.Middleware.RequireAuth())
	NewRoomHandler(*app, authed).Register()
	NewAssignmentHandler(*app, authed).Register()
	NewSessionHandler(*app, authed).Register()
	NewWorkerHandler(*app, authed).Register()
	NewHistoryHandler(*app, authed).Register()
	NewMessageHandler(*app, authed).Register()

	return nil
}

func setupWebSocketRoute(router fiber.Router, app *app.App) {
	router.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			c.Locals("allowed", true)
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	router.Get("/ws", websocket.New(func(c *websocket.Conn) {
		app.Websocket.HandleWebSocket(c)
	}))
}
