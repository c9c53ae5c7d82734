package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/grandesports/training_platform/database"
	"github.com/grandesports/training_platform/models"
)

// GetMyTests returns the athlete's technical test history, newest first, so
// the dashboard can chart progress over time.
func GetMyTests(c *fiber.Ctx) error {
	userID := authUserID(c)

	var tests []models.TechnicalTest
	err := database.DB.Where("user_id = ?", userID).
		Order("test_date desc").
		Find(&tests).Error
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch test results"})
	}

	return c.JSON(fiber.Map{"tests": tests})
}
