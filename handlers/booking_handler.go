package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/grandesports/training_platform/database"
	"github.com/grandesports/training_platform/models"
)

// GetMyBookings returns the athlete's bookings, newest session first.
func GetMyBookings(c *fiber.Ctx) error {
	userID := authUserID(c)

	var bookings []models.Booking
	err := database.DB.Preload("Session").
		Where("user_id = ?", userID).
		Order("created_at desc").
		Find(&bookings).Error
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch bookings"})
	}

	return c.JSON(fiber.Map{"bookings": bookings})
}

// CancelBooking cancels the athlete's own booking and issues a session
// credit. The 24-hour cutoff and ownership checks live in the reconciler.
func CancelBooking(c *fiber.Ctx) error {
	userID := authUserID(c)

	bookingID, err := uuid.Parse(c.Params("bookingId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid booking id"})
	}

	booking, err := bookingService.Cancel(userID, bookingID, time.Now())
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(fiber.Map{
		"message": "Booking cancelled. A session credit has been added to your account.",
		"booking": booking,
	})
}
