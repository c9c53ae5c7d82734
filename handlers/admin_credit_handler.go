package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/grandesports/training_platform/database"
	"github.com/grandesports/training_platform/models"
)

type IssueCreditRequest struct {
	AthleteID string  `json:"athlete_id" validate:"required,uuid"`
	Credits   int     `json:"credits,omitempty" validate:"omitempty,min=1"`
	Reason    *string `json:"reason,omitempty"`
}

// IssueCredit grants an athlete free-session credits.
func IssueCredit(c *fiber.Ctx) error {
	adminID := authUserID(c)

	var req IssueCreditRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	athleteID, _ := uuid.Parse(req.AthleteID)
	var athlete models.User
	if err := database.DB.First(&athlete, "id = ?", athleteID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Athlete not found"})
	}

	credits := req.Credits
	if credits == 0 {
		credits = 1
	}

	credit := models.SessionCredit{
		UserID:     athleteID,
		Credits:    credits,
		Reason:     req.Reason,
		IssuedByID: &adminID,
		IsActive:   true,
	}
	if err := database.DB.Create(&credit).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to issue credit"})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"credit": credit})
}

// ListCredits returns issued credits, optionally for one athlete.
func ListCredits(c *fiber.Ctx) error {
	query := database.DB.Order("created_at desc")

	if athleteID := c.Query("athlete_id"); athleteID != "" {
		id, err := uuid.Parse(athleteID)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid athlete_id"})
		}
		query = query.Where("user_id = ?", id)
	}

	var credits []models.SessionCredit
	if err := query.Find(&credits).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch credits"})
	}
	return c.JSON(fiber.Map{"credits": credits})
}
