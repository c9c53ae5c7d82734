package handlers

import (
	"errors"
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/grandesports/training_platform/services"
)

// HandlePaymentWebhook receives processor callbacks. The signature is
// verified before anything is trusted, and finalization is idempotent per
// event id. A failed booking write returns 500 so the processor's retry
// policy re-delivers.
func HandlePaymentWebhook(c *fiber.Ctx) error {
	signature := c.Get("Stripe-Signature")

	event, err := bookingService.ParseWebhook(c.Body(), signature)
	if err != nil {
		log.Printf("Webhook rejected: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid webhook payload"})
	}

	if event.Completed != nil {
		if _, err := bookingService.FinalizeCheckout(event.Completed); err != nil {
			if errors.Is(err, services.ErrEventReplayed) {
				return c.Status(fiber.StatusOK).JSON(fiber.Map{"message": "Webhook already processed"})
			}
			if errors.Is(err, services.ErrAlreadyBooked) ||
				errors.Is(err, services.ErrSessionFull) ||
				errors.Is(err, services.ErrSessionNotFound) {
				// paid but permanently unbookable: the charge exists with no
				// booking row, and a retry can never succeed
				log.Printf("🔥 CRITICAL: paid checkout %s could not be booked: %v. Manual reconciliation required", event.ID, err)
				return c.Status(fiber.StatusOK).JSON(fiber.Map{"message": "Acknowledged, flagged for reconciliation"})
			}
			log.Printf("🔥 CRITICAL: error processing webhook %s: %v", event.ID, err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to process webhook"})
		}
		log.Printf("Booking created from checkout event %s", event.ID)
	}

	if event.FailedPaymentIntentID != "" {
		log.Printf("Payment failed for intent %s", event.FailedPaymentIntentID)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{"received": true})
}
