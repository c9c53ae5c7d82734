package routes

import (
	"github.com/gofiber/fiber/v2"
	"github.com/grandesports/training_platform/handlers"
	"github.com/grandesports/training_platform/middleware"
)

func PaymentRoutes(app *fiber.App) {
	api := app.Group("/api/v1")

	methods := api.Group("/payment-methods", middleware.Protected())
	methods.Get("", handlers.GetPaymentMethods)
	methods.Post("/setup", handlers.CreateSetupIntent)
	methods.Delete("/:paymentMethodId", handlers.DeletePaymentMethod)
}
