package routes

import (
	"github.com/gofiber/fiber/v2"
	"github.com/grandesports/training_platform/handlers"
	"github.com/grandesports/training_platform/middleware"
)

func ProfileRoutes(app *fiber.App) {
	api := app.Group("/api/v1")

	profile := api.Group("/profile", middleware.Protected())
	profile.Get("/me", handlers.GetMe)
	profile.Put("/me", handlers.UpdateProfile)

	api.Get("/credits/me", middleware.Protected(), handlers.GetMyCredits)
	api.Get("/tests/me", middleware.Protected(), handlers.GetMyTests)
}
