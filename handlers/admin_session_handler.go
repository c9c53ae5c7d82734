package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/grandesports/training_platform/database"
	"github.com/grandesports/training_platform/models"
	"github.com/grandesports/training_platform/services"
	"github.com/shopspring/decimal"
)

type CreateSessionRequest struct {
	Title       string  `json:"title" validate:"required,min=2"`
	SessionType string  `json:"session_type" validate:"required,oneof=private semi_private group"`
	Date        string  `json:"date" validate:"required"`
	StartTime   string  `json:"start_time" validate:"required"`
	EndTime     string  `json:"end_time" validate:"required"`
	Price       *string `json:"price,omitempty"`
	MaxCapacity *int    `json:"max_capacity,omitempty" validate:"omitempty,min=1"`
	Location    string  `json:"location,omitempty"`
	Notes       *string `json:"notes,omitempty"`
	CoachName   *string `json:"coach_name,omitempty"`

	IsRecurring       bool    `json:"is_recurring,omitempty"`
	RecurrenceDay     *int    `json:"recurrence_day,omitempty" validate:"omitempty,min=0,max=6"`
	RecurrenceEndDate *string `json:"recurrence_end_date,omitempty"`
}

// CreateSession creates one session, or a whole weekly series when
// is_recurring is set. Price and capacity fall back to the session type's
// defaults when omitted.
func CreateSession(c *fiber.Ctx) error {
	var req CreateSessionRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid date, expected YYYY-MM-DD"})
	}
	if _, err := time.Parse("15:04", req.StartTime); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid start_time, expected HH:MM"})
	}
	if _, err := time.Parse("15:04", req.EndTime); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid end_time, expected HH:MM"})
	}

	price := models.DefaultPrice(req.SessionType)
	if req.Price != nil {
		parsed, err := decimal.NewFromString(*req.Price)
		if err != nil || parsed.IsNegative() {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid price"})
		}
		price = parsed
	}

	capacity := models.DefaultCapacity(req.SessionType)
	if req.MaxCapacity != nil {
		capacity = *req.MaxCapacity
	}

	session := models.Session{
		Title:       req.Title,
		SessionType: req.SessionType,
		Date:        date,
		StartTime:   req.StartTime,
		EndTime:     req.EndTime,
		Price:       price,
		MaxCapacity: capacity,
		Location:    req.Location,
		Notes:       req.Notes,
		CoachName:   req.CoachName,
		IsActive:    true,
	}

	if !req.IsRecurring {
		if err := database.DB.Create(&session).Error; err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create session"})
		}
		return c.Status(fiber.StatusCreated).JSON(fiber.Map{"session": session})
	}

	if req.RecurrenceDay == nil || req.RecurrenceEndDate == nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Recurring sessions need recurrence_day and recurrence_end_date"})
	}
	endDate, err := time.Parse("2006-01-02", *req.RecurrenceEndDate)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid recurrence_end_date, expected YYYY-MM-DD"})
	}
	if endDate.Before(date) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "recurrence_end_date must be on or after date"})
	}

	session.IsRecurring = true
	session.RecurrenceDay = req.RecurrenceDay
	session.RecurrenceEndDate = &endDate
	if err := database.DB.Create(&session).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create session"})
	}

	// the parent row covers its own date, children start the day after
	childTemplate := session
	childTemplate.Date = date.AddDate(0, 0, 1)
	children := services.ExpandRecurrence(childTemplate, time.Weekday(*req.RecurrenceDay), endDate)
	if len(children) > 0 {
		if err := database.DB.Create(&children).Error; err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create recurring sessions"})
		}
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"session": session,
		"created": len(children) + 1,
	})
}

// ListAdminSessions returns all sessions including inactive ones.
func ListAdminSessions(c *fiber.Ctx) error {
	var sessions []models.Session
	if err := database.DB.Order("date desc, start_time asc").Find(&sessions).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch sessions"})
	}
	return c.JSON(fiber.Map{"sessions": sessions})
}

type UpdateSessionRequest struct {
	Title       *string `json:"title,omitempty" validate:"omitempty,min=2"`
	Date        *string `json:"date,omitempty"`
	StartTime   *string `json:"start_time,omitempty"`
	EndTime     *string `json:"end_time,omitempty"`
	Price       *string `json:"price,omitempty"`
	MaxCapacity *int    `json:"max_capacity,omitempty" validate:"omitempty,min=1"`
	Location    *string `json:"location,omitempty"`
	Notes       *string `json:"notes,omitempty"`
	CoachName   *string `json:"coach_name,omitempty"`
	IsActive    *bool   `json:"is_active,omitempty"`
}

func UpdateSession(c *fiber.Ctx) error {
	sessionID, err := uuid.Parse(c.Params("sessionId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid session id"})
	}

	var req UpdateSessionRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	var session models.Session
	if err := database.DB.First(&session, "id = ?", sessionID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Session not found"})
	}

	if req.Title != nil {
		session.Title = *req.Title
	}
	if req.Date != nil {
		date, err := time.Parse("2006-01-02", *req.Date)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid date, expected YYYY-MM-DD"})
		}
		session.Date = date
	}
	if req.StartTime != nil {
		if _, err := time.Parse("15:04", *req.StartTime); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid start_time, expected HH:MM"})
		}
		session.StartTime = *req.StartTime
	}
	if req.EndTime != nil {
		if _, err := time.Parse("15:04", *req.EndTime); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid end_time, expected HH:MM"})
		}
		session.EndTime = *req.EndTime
	}
	if req.Price != nil {
		price, err := decimal.NewFromString(*req.Price)
		if err != nil || price.IsNegative() {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid price"})
		}
		session.Price = price
	}
	if req.MaxCapacity != nil {
		if *req.MaxCapacity < session.CurrentCapacity {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "max_capacity cannot be below the current booking count"})
		}
		session.MaxCapacity = *req.MaxCapacity
	}
	if req.Location != nil {
		session.Location = *req.Location
	}
	if req.Notes != nil {
		session.Notes = req.Notes
	}
	if req.CoachName != nil {
		session.CoachName = req.CoachName
	}
	if req.IsActive != nil {
		session.IsActive = *req.IsActive
	}

	if err := database.DB.Save(&session).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to update session"})
	}
	return c.JSON(fiber.Map{"session": session})
}

// DeleteSession soft-deletes a session so existing bookings keep their
// reference.
func DeleteSession(c *fiber.Ctx) error {
	sessionID, err := uuid.Parse(c.Params("sessionId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid session id"})
	}

	result := database.DB.Model(&models.Session{}).
		Where("id = ?", sessionID).
		Update("is_active", false)
	if result.Error != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to delete session"})
	}
	if result.RowsAffected == 0 {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Session not found"})
	}
	return c.JSON(fiber.Map{"message": "Session deactivated"})
}
