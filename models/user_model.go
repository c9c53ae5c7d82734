package models

import (
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID       uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	FullName string    `gorm:"size:255;not null" json:"full_name"`
	Email    string    `gorm:"size:255;not null;unique" json:"email"`
	Password string    `gorm:"not null" json:"-"`
	IsAdmin  bool      `gorm:"default:false" json:"is_admin"`

	Phone            *string `gorm:"size:30" json:"phone"`
	Position         *string `gorm:"size:50" json:"position"`
	EmergencyContact *string `gorm:"size:255" json:"emergency_contact"`
	EmergencyPhone   *string `gorm:"size:30" json:"emergency_phone"`

	StripeCustomerID *string `gorm:"size:255;unique" json:"-"`
	AdminNotes       *string `gorm:"type:text" json:"-"`
	IsActive         bool    `gorm:"default:true" json:"is_active"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
