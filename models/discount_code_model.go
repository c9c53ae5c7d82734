package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	DiscountTypePercentage  = "percentage"
	DiscountTypeFixed       = "fixed"
	DiscountTypeFreeSession = "free_session"
)

// DiscountCode is a reusable checkout token. Codes are stored upper-case and
// matched case-insensitively. Uses are counted but not capped.
type DiscountCode struct {
	ID          uuid.UUID       `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	Code        string          `gorm:"size:50;not null;unique" json:"code"`
	Type        string          `gorm:"size:20;not null" json:"type"`
	Value       decimal.Decimal `gorm:"type:numeric(10,2);not null;default:0" json:"value"`
	CurrentUses int             `gorm:"not null;default:0" json:"current_uses"`

	ValidFrom  *time.Time `json:"valid_from"`
	ValidUntil *time.Time `json:"valid_until"`
	AthleteID  *uuid.UUID `json:"athlete_id"`
	IsActive   bool       `gorm:"default:true" json:"is_active"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
