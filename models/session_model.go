package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	SessionTypePrivate     = "private"
	SessionTypeSemiPrivate = "semi_private"
	SessionTypeGroup       = "group"
)

type Session struct {
	ID          uuid.UUID       `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	Title       string          `gorm:"size:255;not null" json:"title"`
	SessionType string          `gorm:"size:20;not null" json:"session_type"`
	Date        time.Time       `gorm:"type:date;not null" json:"date"`
	StartTime   string          `gorm:"size:5;not null" json:"start_time"`
	EndTime     string          `gorm:"size:5;not null" json:"end_time"`
	Price       decimal.Decimal `gorm:"type:numeric(10,2);not null" json:"price"`

	MaxCapacity     int `gorm:"not null;default:1" json:"max_capacity"`
	CurrentCapacity int `gorm:"not null;default:0" json:"current_capacity"`

	Location  string  `gorm:"size:255" json:"location"`
	Notes     *string `gorm:"type:text" json:"notes"`
	CoachName *string `gorm:"size:255" json:"coach_name"`
	IsActive  bool    `gorm:"default:true" json:"is_active"`

	IsRecurring       bool       `gorm:"default:false" json:"is_recurring"`
	RecurrenceDay     *int       `json:"recurrence_day"`
	RecurrenceEndDate *time.Time `gorm:"type:date" json:"recurrence_end_date"`
	ParentSessionID   *uuid.UUID `json:"parent_session_id"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// DefaultPrice returns the list price for a session type.
func DefaultPrice(sessionType string) decimal.Decimal {
	switch sessionType {
	case SessionTypePrivate:
		return decimal.NewFromInt(95)
	case SessionTypeSemiPrivate:
		return decimal.NewFromInt(70)
	case SessionTypeGroup:
		return decimal.NewFromInt(40)
	}
	return decimal.Zero
}

// DefaultCapacity returns the seat count for a session type.
func DefaultCapacity(sessionType string) int {
	switch sessionType {
	case SessionTypePrivate:
		return 1
	case SessionTypeSemiPrivate:
		return 2
	case SessionTypeGroup:
		return 8
	}
	return 1
}

// StartsAt combines the session date with its wall-clock start time.
func (s *Session) StartsAt() time.Time {
	return atClock(s.Date, s.StartTime)
}

// EndsAt combines the session date with its wall-clock end time.
func (s *Session) EndsAt() time.Time {
	return atClock(s.Date, s.EndTime)
}

func atClock(date time.Time, clock string) time.Time {
	t, err := time.Parse("15:04", clock)
	if err != nil {
		return date
	}
	return time.Date(date.Year(), date.Month(), date.Day(), t.Hour(), t.Minute(), 0, 0, date.Location())
}

func (s *Session) Describe() string {
	return fmt.Sprintf("%s on %s at %s", s.Title, s.Date.Format("Monday, January 2, 2006"), s.StartTime)
}
