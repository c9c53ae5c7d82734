package routes

import (
	"github.com/gofiber/fiber/v2"
	"github.com/grandesports/training_platform/handlers"
	"github.com/grandesports/training_platform/middleware"
)

func CheckoutRoutes(app *fiber.App) {
	api := app.Group("/api/v1")

	checkout := api.Group("/checkout", middleware.Protected())
	checkout.Post("", handlers.Checkout)
	checkout.Post("/saved-method", handlers.CheckoutSavedMethod)

	api.Post("/discount/validate", middleware.Protected(), handlers.ValidateDiscount)
}
