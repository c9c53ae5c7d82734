package handlers

import (
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/grandesports/training_platform/database"
	"github.com/grandesports/training_platform/models"
	"github.com/grandesports/training_platform/utils"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type CreateDiscountRequest struct {
	Code       string  `json:"code,omitempty"`
	Type       string  `json:"type" validate:"required,oneof=percentage fixed free_session"`
	Value      string  `json:"value,omitempty"`
	ValidFrom  *string `json:"valid_from,omitempty"`
	ValidUntil *string `json:"valid_until,omitempty"`
	AthleteID  *string `json:"athlete_id,omitempty" validate:"omitempty,uuid"`
}

// CreateDiscount creates a code. An omitted code is generated; an omitted
// value is only valid for free_session.
func CreateDiscount(c *fiber.Ctx) error {
	var req CreateDiscountRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	value := decimal.Zero
	if req.Value != "" {
		parsed, err := decimal.NewFromString(req.Value)
		if err != nil || parsed.IsNegative() {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid value"})
		}
		value = parsed
	}
	if req.Type == models.DiscountTypePercentage && value.GreaterThan(decimal.NewFromInt(100)) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Percentage value cannot exceed 100"})
	}
	if req.Type != models.DiscountTypeFreeSession && value.IsZero() {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Value is required for this discount type"})
	}

	code := strings.ToUpper(strings.TrimSpace(req.Code))
	if code == "" {
		generated, err := utils.GenerateUniqueDiscountCode(database.DB)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to generate code"})
		}
		code = generated
	}

	discount := models.DiscountCode{
		Code:     code,
		Type:     req.Type,
		Value:    value,
		IsActive: true,
	}
	if req.ValidFrom != nil {
		from, err := time.Parse(time.RFC3339, *req.ValidFrom)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid valid_from, expected RFC3339"})
		}
		discount.ValidFrom = &from
	}
	if req.ValidUntil != nil {
		until, err := time.Parse(time.RFC3339, *req.ValidUntil)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid valid_until, expected RFC3339"})
		}
		discount.ValidUntil = &until
	}
	if req.AthleteID != nil {
		athleteID, _ := uuid.Parse(*req.AthleteID)
		var athlete models.User
		if err := database.DB.First(&athlete, "id = ?", athleteID).Error; err != nil {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Athlete not found"})
		}
		discount.AthleteID = &athleteID
	}

	if err := database.DB.Create(&discount).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "A discount with this code already exists"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create discount"})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"discount": discount})
}

func ListDiscounts(c *fiber.Ctx) error {
	var discounts []models.DiscountCode
	if err := database.DB.Order("created_at desc").Find(&discounts).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch discounts"})
	}
	return c.JSON(fiber.Map{"discounts": discounts})
}

// DeactivateDiscount turns a code off without deleting it, so past bookings
// keep their discount reference.
func DeactivateDiscount(c *fiber.Ctx) error {
	discountID, err := uuid.Parse(c.Params("discountId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid discount id"})
	}

	result := database.DB.Model(&models.DiscountCode{}).
		Where("id = ?", discountID).
		Update("is_active", false)
	if result.Error != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to deactivate discount"})
	}
	if result.RowsAffected == 0 {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Discount not found"})
	}
	return c.JSON(fiber.Map{"message": "Discount deactivated"})
}
