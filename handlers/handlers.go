package handlers

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"github.com/grandesports/training_platform/services"
)

var validate = validator.New()

var bookingService *services.BookingService

// Init wires the reconciler into the handler package.
func Init(svc *services.BookingService) {
	bookingService = svc
}

func authUserID(c *fiber.Ctx) uuid.UUID {
	token := c.Locals("user").(*jwt.Token)
	claims := token.Claims.(jwt.MapClaims)
	id, _ := uuid.Parse(claims["user_id"].(string))
	return id
}

// respondServiceError maps reconciler errors onto HTTP statuses. Validation
// rejections carry their reason string; processor and reconciliation errors
// keep their own shapes.
func respondServiceError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, services.ErrSessionNotFound),
		errors.Is(err, services.ErrBookingNotFound),
		errors.Is(err, services.ErrAthleteNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})

	case errors.Is(err, services.ErrInvalidDiscount):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})

	case errors.Is(err, services.ErrSessionFull),
		errors.Is(err, services.ErrAlreadyBooked),
		errors.Is(err, services.ErrDiscountNotYetValid),
		errors.Is(err, services.ErrDiscountExpired),
		errors.Is(err, services.ErrDiscountNotForAccount),
		errors.Is(err, services.ErrNoCreditAvailable),
		errors.Is(err, services.ErrNotCancellable),
		errors.Is(err, services.ErrTooLateToCancel),
		errors.Is(err, services.ErrAlreadyRefunded),
		errors.Is(err, services.ErrNoPaymentOnRecord),
		errors.Is(err, services.ErrNoPaymentMethods),
		errors.Is(err, services.ErrPaymentDeclined):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})

	case errors.Is(err, services.ErrNotYourBooking):
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": err.Error()})

	case errors.Is(err, services.ErrSupportRequired):
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Something went wrong, please try again."})
}
