package routes

import (
	"github.com/gofiber/fiber/v2"
	"github.com/grandesports/training_platform/handlers"
)

func PublicRoutes(app *fiber.App) {
	api := app.Group("/api/v1")

	api.Get("/sessions", handlers.ListSessions)

	// processor callbacks are verified by signature, not JWT
	api.Post("/payments/webhook", handlers.HandlePaymentWebhook)
}
