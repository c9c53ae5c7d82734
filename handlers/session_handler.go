package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/grandesports/training_platform/database"
	"github.com/grandesports/training_platform/models"
)

// ListSessions returns active sessions for the booking page, either for one
// date or all upcoming.
func ListSessions(c *fiber.Ctx) error {
	query := database.DB.Where("is_active = true").Order("start_time asc")

	if date := c.Query("date"); date != "" {
		day, err := time.Parse("2006-01-02", date)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid date, expected YYYY-MM-DD"})
		}
		query = query.Where("date = ?", day)
	} else {
		today := time.Now().Truncate(24 * time.Hour)
		query = query.Where("date >= ?", today).Order("date asc")
	}

	var sessions []models.Session
	if err := query.Find(&sessions).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch sessions"})
	}

	return c.JSON(fiber.Map{"sessions": sessions})
}
