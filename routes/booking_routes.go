package routes

import (
	"github.com/gofiber/fiber/v2"
	"github.com/grandesports/training_platform/handlers"
	"github.com/grandesports/training_platform/middleware"
)

func BookingRoutes(app *fiber.App) {
	api := app.Group("/api/v1")

	bookings := api.Group("/bookings", middleware.Protected())
	bookings.Get("/me", handlers.GetMyBookings)
	bookings.Post("/:bookingId/cancel", handlers.CancelBooking)
}
