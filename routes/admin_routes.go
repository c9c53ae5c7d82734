package routes

import (
	"github.com/gofiber/fiber/v2"
	"github.com/grandesports/training_platform/handlers"
	"github.com/grandesports/training_platform/middleware"
)

func AdminRoutes(app *fiber.App) {
	api := app.Group("/api/v1")

	admin := api.Group("/admin", middleware.Protected(), middleware.AdminRequired())

	sessions := admin.Group("/sessions")
	sessions.Get("", handlers.ListAdminSessions)
	sessions.Post("", handlers.CreateSession)
	sessions.Put("/:sessionId", handlers.UpdateSession)
	sessions.Delete("/:sessionId", handlers.DeleteSession)

	athletes := admin.Group("/athletes")
	athletes.Get("", handlers.ListAthletes)
	athletes.Post("", handlers.AddAthlete)
	athletes.Put("/:athleteId", handlers.UpdateAthlete)
	athletes.Get("/:athleteId/tests", handlers.ListAthleteTests)

	discounts := admin.Group("/discounts")
	discounts.Get("", handlers.ListDiscounts)
	discounts.Post("", handlers.CreateDiscount)
	discounts.Delete("/:discountId", handlers.DeactivateDiscount)

	admin.Post("/assign-session", handlers.AssignSession)
	admin.Post("/bookings/:bookingId/refund", handlers.RefundBooking)

	credits := admin.Group("/credits")
	credits.Get("", handlers.ListCredits)
	credits.Post("", handlers.IssueCredit)

	tests := admin.Group("/tests")
	tests.Post("", handlers.CreateTechnicalTest)

	admin.Get("/bookings", handlers.ListBookings)
	admin.Get("/payments", handlers.ListPayments)
}
