package handlers

import (
	"github.com/gofiber/fiber/v2"
)

func GetPaymentMethods(c *fiber.Ctx) error {
	userID := authUserID(c)

	cards, err := bookingService.ListSavedCards(userID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch payment methods"})
	}
	return c.JSON(fiber.Map{"payment_methods": cards})
}

func DeletePaymentMethod(c *fiber.Ctx) error {
	paymentMethodID := c.Params("paymentMethodId")
	if paymentMethodID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Payment method id is required"})
	}

	if err := bookingService.DetachCard(paymentMethodID); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to remove payment method"})
	}
	return c.JSON(fiber.Map{"message": "Payment method removed"})
}

// CreateSetupIntent opens a card-saving flow and returns the client secret
// the frontend needs to collect the card.
func CreateSetupIntent(c *fiber.Ctx) error {
	userID := authUserID(c)

	clientSecret, err := bookingService.CreateSetupIntent(userID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to start card setup"})
	}
	return c.JSON(fiber.Map{"client_secret": clientSecret})
}
