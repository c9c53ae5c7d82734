package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/grandesports/training_platform/database"
	"github.com/grandesports/training_platform/models"
)

// GetMyCredits returns the athlete's session credits and how many are still
// available to redeem.
func GetMyCredits(c *fiber.Ctx) error {
	userID := authUserID(c)

	var credits []models.SessionCredit
	err := database.DB.Where("user_id = ?", userID).
		Order("created_at desc").
		Find(&credits).Error
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch credits"})
	}

	available := 0
	for _, credit := range credits {
		if credit.IsActive && credit.UsedAt == nil {
			available += credit.Credits
		}
	}

	return c.JSON(fiber.Map{"credits": credits, "available": available})
}
