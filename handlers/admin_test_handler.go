package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/grandesports/training_platform/database"
	"github.com/grandesports/training_platform/models"
)

type CreateTechnicalTestRequest struct {
	AthleteID string `json:"athlete_id" validate:"required,uuid"`
	TestDate  string `json:"test_date" validate:"required"`

	Drill180    *float64 `json:"drill_180,omitempty"`
	DrillOpen90 *float64 `json:"drill_open_90,omitempty"`
	DrillV      *float64 `json:"drill_v,omitempty"`

	Dribble20Yard *float64 `json:"dribble_20_yard,omitempty"`
	DribbleV      *float64 `json:"dribble_v,omitempty"`
	DribbleT      *float64 `json:"dribble_t,omitempty"`

	JugglingBoth      *float64 `json:"juggling_both,omitempty"`
	JugglingLeft      *float64 `json:"juggling_left,omitempty"`
	JugglingRight     *float64 `json:"juggling_right,omitempty"`
	StraightLineBoth  *float64 `json:"straight_line_both,omitempty"`
	StraightLineLeft  *float64 `json:"straight_line_left,omitempty"`
	StraightLineRight *float64 `json:"straight_line_right,omitempty"`

	Notes *string `json:"notes,omitempty"`
}

// CreateTechnicalTest records a dated set of drill measurements for an
// athlete.
func CreateTechnicalTest(c *fiber.Ctx) error {
	var req CreateTechnicalTestRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	testDate, err := time.Parse("2006-01-02", req.TestDate)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid test_date, expected YYYY-MM-DD"})
	}

	athleteID, _ := uuid.Parse(req.AthleteID)
	var athlete models.User
	if err := database.DB.First(&athlete, "id = ?", athleteID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Athlete not found"})
	}

	test := models.TechnicalTest{
		UserID:   athleteID,
		TestDate: testDate,

		Drill180:    req.Drill180,
		DrillOpen90: req.DrillOpen90,
		DrillV:      req.DrillV,

		Dribble20Yard: req.Dribble20Yard,
		DribbleV:      req.DribbleV,
		DribbleT:      req.DribbleT,

		JugglingBoth:      req.JugglingBoth,
		JugglingLeft:      req.JugglingLeft,
		JugglingRight:     req.JugglingRight,
		StraightLineBoth:  req.StraightLineBoth,
		StraightLineLeft:  req.StraightLineLeft,
		StraightLineRight: req.StraightLineRight,

		Notes: req.Notes,
	}
	if err := database.DB.Create(&test).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to record test"})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"test": test})
}

// ListAthleteTests returns one athlete's technical test history.
func ListAthleteTests(c *fiber.Ctx) error {
	athleteID, err := uuid.Parse(c.Params("athleteId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid athlete id"})
	}

	var tests []models.TechnicalTest
	err = database.DB.Where("user_id = ?", athleteID).
		Order("test_date desc").
		Find(&tests).Error
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch test results"})
	}
	return c.JSON(fiber.Map{"tests": tests})
}
