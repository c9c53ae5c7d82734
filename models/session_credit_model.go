package models

import (
	"time"

	"github.com/google/uuid"
)

// SessionCredit is an admin-issued (or cancellation-issued) entitlement.
// Credits counts the remaining free-session redemptions on the grant; each
// checkout redemption decrements it, and UsedAt is stamped once the grant is
// exhausted. BookingID points at the most recent redeeming booking.
type SessionCredit struct {
	ID      uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	UserID  uuid.UUID `gorm:"not null;index" json:"user_id"`
	Credits int       `gorm:"not null;default:1" json:"credits"`
	Reason  *string   `gorm:"size:255" json:"reason"`

	IssuedByID *uuid.UUID `json:"issued_by"`
	UsedAt     *time.Time `json:"used_at"`
	BookingID  *uuid.UUID `json:"booking_id"`
	IsActive   bool       `gorm:"default:true" json:"is_active"`

	CreatedAt time.Time `json:"created_at"`
}
