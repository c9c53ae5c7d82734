package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/grandesports/training_platform/database"
	"github.com/grandesports/training_platform/models"
)

type AssignSessionRequest struct {
	SessionID string `json:"session_id" validate:"required,uuid"`
	AthleteID string `json:"athlete_id" validate:"required,uuid"`
}

// AssignSession books a seat on an athlete's behalf at the session's current
// price, with the same capacity and duplicate guards as a self-checkout.
func AssignSession(c *fiber.Ctx) error {
	var req AssignSessionRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	sessionID, _ := uuid.Parse(req.SessionID)
	athleteID, _ := uuid.Parse(req.AthleteID)

	booking, err := bookingService.Assign(sessionID, athleteID)
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"booking": booking})
}

// RefundBooking refunds the charge at the processor and marks the booking
// refunded and cancelled.
func RefundBooking(c *fiber.Ctx) error {
	bookingID, err := uuid.Parse(c.Params("bookingId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid booking id"})
	}

	outcome, err := bookingService.Refund(bookingID, time.Now())
	if err != nil {
		return respondServiceError(c, err)
	}

	if outcome.StateMismatch {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error":     "Refund was processed but the booking could not be updated. Please contact support.",
			"refund_id": outcome.RefundID,
		})
	}

	return c.JSON(fiber.Map{
		"message":   "Refund processed",
		"refund_id": outcome.RefundID,
		"status":    outcome.Status,
	})
}

// ListBookings returns all bookings, optionally filtered by session or
// athlete.
func ListBookings(c *fiber.Ctx) error {
	query := database.DB.Preload("User").Preload("Session").Order("created_at desc")

	if sessionID := c.Query("session_id"); sessionID != "" {
		id, err := uuid.Parse(sessionID)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid session_id"})
		}
		query = query.Where("session_id = ?", id)
	}
	if athleteID := c.Query("athlete_id"); athleteID != "" {
		id, err := uuid.Parse(athleteID)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid athlete_id"})
		}
		query = query.Where("user_id = ?", id)
	}

	var bookings []models.Booking
	if err := query.Find(&bookings).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch bookings"})
	}
	return c.JSON(fiber.Map{"bookings": bookings})
}

// ListPayments returns paid and refunded bookings as the payment ledger.
func ListPayments(c *fiber.Ctx) error {
	var bookings []models.Booking
	err := database.DB.Preload("User").Preload("Session").
		Where("payment_status IN ?", []string{models.PaymentStatusPaid, models.PaymentStatusRefunded}).
		Order("created_at desc").
		Find(&bookings).Error
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch payments"})
	}
	return c.JSON(fiber.Map{"payments": bookings})
}
