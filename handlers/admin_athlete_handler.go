package handlers

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/grandesports/training_platform/database"
	"github.com/grandesports/training_platform/models"
	"github.com/grandesports/training_platform/utils"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type AthleteSummary struct {
	models.User
	BookingCount int64 `json:"booking_count"`
}

// ListAthletes returns all non-admin accounts with how many active bookings
// each one holds.
func ListAthletes(c *fiber.Ctx) error {
	var athletes []models.User
	err := database.DB.Where("is_admin = false").Order("full_name asc").Find(&athletes).Error
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch athletes"})
	}

	summaries := make([]AthleteSummary, 0, len(athletes))
	for _, athlete := range athletes {
		var count int64
		database.DB.Model(&models.Booking{}).
			Where("user_id = ? AND status <> ?", athlete.ID, models.BookingStatusCancelled).
			Count(&count)
		summaries = append(summaries, AthleteSummary{User: athlete, BookingCount: count})
	}

	return c.JSON(fiber.Map{"athletes": summaries})
}

type AddAthleteRequest struct {
	FullName string  `json:"full_name" validate:"required,min=2"`
	Email    string  `json:"email" validate:"required,email"`
	Phone    *string `json:"phone,omitempty"`
	Position *string `json:"position,omitempty"`
}

// AddAthlete creates an account on an athlete's behalf with a generated
// temporary password, which is emailed to them.
func AddAthlete(c *fiber.Ctx) error {
	var req AddAthleteRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	tempPassword := utils.GenerateTempPassword()
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(tempPassword), bcrypt.DefaultCost)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to hash password"})
	}

	athlete := models.User{
		FullName: req.FullName,
		Email:    strings.ToLower(req.Email),
		Password: string(hashedPassword),
		Phone:    req.Phone,
		Position: req.Position,
	}
	if err := database.DB.Create(&athlete).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "An account with this email already exists"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create athlete"})
	}

	bookingService.Mailer().SendWelcome(athlete.Email, athlete.FullName, tempPassword)

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"athlete": athlete})
}

type UpdateAthleteRequest struct {
	FullName   *string `json:"full_name,omitempty" validate:"omitempty,min=2"`
	Phone      *string `json:"phone,omitempty"`
	Position   *string `json:"position,omitempty"`
	AdminNotes *string `json:"admin_notes,omitempty"`
	IsActive   *bool   `json:"is_active,omitempty"`
}

func UpdateAthlete(c *fiber.Ctx) error {
	athleteID, err := uuid.Parse(c.Params("athleteId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid athlete id"})
	}

	var req UpdateAthleteRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	var athlete models.User
	if err := database.DB.First(&athlete, "id = ? AND is_admin = false", athleteID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Athlete not found"})
	}

	if req.FullName != nil {
		athlete.FullName = *req.FullName
	}
	if req.Phone != nil {
		athlete.Phone = req.Phone
	}
	if req.Position != nil {
		athlete.Position = req.Position
	}
	if req.AdminNotes != nil {
		athlete.AdminNotes = req.AdminNotes
	}
	if req.IsActive != nil {
		athlete.IsActive = *req.IsActive
	}

	if err := database.DB.Save(&athlete).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to update athlete"})
	}
	return c.JSON(fiber.Map{"athlete": athlete})
}
