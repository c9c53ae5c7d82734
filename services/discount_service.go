package services

import (
	"time"

	"github.com/google/uuid"
	"github.com/grandesports/training_platform/models"
)

// CheckDiscountUsable applies the applicability rules for a checkout: the code
// must be active, inside its validity window, and either unrestricted or
// restricted to the requesting athlete. userID is nil for anonymous requests,
// which fail any athlete-restricted code.
func CheckDiscountUsable(d *models.DiscountCode, userID *uuid.UUID, now time.Time) error {
	if d == nil || !d.IsActive {
		return ErrInvalidDiscount
	}
	if d.ValidFrom != nil && now.Before(*d.ValidFrom) {
		return ErrDiscountNotYetValid
	}
	if d.ValidUntil != nil && now.After(*d.ValidUntil) {
		return ErrDiscountExpired
	}
	if d.AthleteID != nil {
		if userID == nil || *d.AthleteID != *userID {
			return ErrDiscountNotForAccount
		}
	}
	return nil
}
