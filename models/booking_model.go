package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	BookingStatusPending   = "pending"
	BookingStatusConfirmed = "confirmed"
	BookingStatusCancelled = "cancelled"
	BookingStatusCompleted = "completed"

	PaymentStatusPending  = "pending"
	PaymentStatusPaid     = "paid"
	PaymentStatusRefunded = "refunded"
	PaymentStatusCredited = "credited"
)

type Booking struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	UserID    uuid.UUID `gorm:"not null;index:ux_bookings_user_session_active,unique,where:status <> 'cancelled'" json:"user_id"`
	SessionID uuid.UUID `gorm:"not null;index:ux_bookings_user_session_active,unique,where:status <> 'cancelled'" json:"session_id"`

	Status        string `gorm:"size:20;not null;default:'pending'" json:"status"`
	PaymentStatus string `gorm:"size:20;not null;default:'pending'" json:"payment_status"`

	AmountPaid      decimal.Decimal `gorm:"type:numeric(10,2);not null" json:"amount_paid"`
	DiscountCodeID  *uuid.UUID      `json:"discount_code_id"`
	DiscountAmount  decimal.Decimal `gorm:"type:numeric(10,2);not null;default:0" json:"discount_amount"`
	PaymentIntentID *string         `gorm:"size:255" json:"payment_intent_id"`

	CancelledAt *time.Time `json:"cancelled_at"`

	User    User    `gorm:"foreignkey:UserID" json:"user,omitempty"`
	Session Session `gorm:"foreignkey:SessionID" json:"session,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
