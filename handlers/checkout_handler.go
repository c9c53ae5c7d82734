package handlers

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/grandesports/training_platform/services"
)

type CheckoutRequest struct {
	SessionID      string  `json:"session_id" validate:"required,uuid"`
	DiscountCodeID *string `json:"discount_code_id,omitempty" validate:"omitempty,uuid"`
	UseCredit      bool    `json:"use_credit,omitempty"`
}

// Checkout starts the new-instrument path. Free (or credit-paid) attempts
// confirm immediately; everything else returns a hosted checkout URL.
func Checkout(c *fiber.Ctx) error {
	userID := authUserID(c)

	var req CheckoutRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	sessionID, _ := uuid.Parse(req.SessionID)
	svcReq := services.CheckoutRequest{SessionID: sessionID, UseCredit: req.UseCredit}
	if req.DiscountCodeID != nil {
		id, _ := uuid.Parse(*req.DiscountCodeID)
		svcReq.DiscountCodeID = &id
	}

	outcome, err := bookingService.Checkout(userID, svcReq, time.Now())
	if err != nil {
		return respondServiceError(c, err)
	}

	if outcome.Free {
		return c.JSON(fiber.Map{"url": outcome.RedirectURL, "free": true})
	}
	return c.JSON(fiber.Map{"url": outcome.RedirectURL})
}

type SavedMethodCheckoutRequest struct {
	SessionID       string  `json:"session_id" validate:"required,uuid"`
	DiscountCodeID  *string `json:"discount_code_id,omitempty" validate:"omitempty,uuid"`
	PaymentMethodID string  `json:"payment_method_id" validate:"required"`
}

// CheckoutSavedMethod charges a stored card synchronously.
func CheckoutSavedMethod(c *fiber.Ctx) error {
	userID := authUserID(c)

	var req SavedMethodCheckoutRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	sessionID, _ := uuid.Parse(req.SessionID)
	svcReq := services.SavedMethodRequest{SessionID: sessionID, PaymentMethodID: req.PaymentMethodID}
	if req.DiscountCodeID != nil {
		id, _ := uuid.Parse(*req.DiscountCodeID)
		svcReq.DiscountCodeID = &id
	}

	outcome, err := bookingService.ChargeSaved(userID, svcReq, time.Now())
	if err != nil {
		if errors.Is(err, services.ErrAuthenticationRequired) {
			resp := fiber.Map{"error": err.Error(), "requires_action": true}
			if outcome != nil && outcome.ClientSecret != "" {
				resp["client_secret"] = outcome.ClientSecret
			}
			return c.Status(fiber.StatusBadRequest).JSON(resp)
		}
		return respondServiceError(c, err)
	}

	return c.JSON(fiber.Map{"success": true, "booking": outcome.Booking})
}

type ValidateDiscountRequest struct {
	Code string `json:"code" validate:"required"`
}

// ValidateDiscount resolves a code for the requesting user without mutating
// anything.
func ValidateDiscount(c *fiber.Ctx) error {
	userID := authUserID(c)

	var req ValidateDiscountRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	discount, err := bookingService.ValidateCode(req.Code, &userID, time.Now())
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"discount": fiber.Map{
			"id":    discount.ID,
			"code":  discount.Code,
			"type":  discount.Type,
			"value": discount.Value,
		},
	})
}
