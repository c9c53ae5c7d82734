package database

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/grandesports/training_platform/models"
	"github.com/grandesports/training_platform/services"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormStore implements the reconciler's store port on Postgres. All
// capacity-touching writes take a row lock on the session so the quote-time
// guards are re-checked with store-level consistency before commit.
type GormStore struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) ActiveSession(sessionID uuid.UUID) (*models.Session, error) {
	var session models.Session
	if err := s.db.First(&session, "id = ? AND is_active = true", sessionID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, services.ErrSessionNotFound
		}
		return nil, err
	}
	return &session, nil
}

// SessionByID fetches a session whether or not it is still active, for flows
// that act on existing bookings after a session is soft-deleted.
func (s *GormStore) SessionByID(sessionID uuid.UUID) (*models.Session, error) {
	var session models.Session
	if err := s.db.First(&session, "id = ?", sessionID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, services.ErrSessionNotFound
		}
		return nil, err
	}
	return &session, nil
}

func (s *GormStore) HasActiveBooking(userID, sessionID uuid.UUID) (bool, error) {
	var count int64
	err := s.db.Model(&models.Booking{}).
		Where("user_id = ? AND session_id = ? AND status <> ?", userID, sessionID, models.BookingStatusCancelled).
		Count(&count).Error
	return count > 0, err
}

func (s *GormStore) BookingByID(bookingID uuid.UUID) (*models.Booking, error) {
	var booking models.Booking
	if err := s.db.First(&booking, "id = ?", bookingID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, services.ErrBookingNotFound
		}
		return nil, err
	}
	return &booking, nil
}

func (s *GormStore) UserByID(userID uuid.UUID) (*models.User, error) {
	var user models.User
	if err := s.db.First(&user, "id = ?", userID).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *GormStore) DiscountByID(id uuid.UUID) (*models.DiscountCode, error) {
	var discount models.DiscountCode
	if err := s.db.First(&discount, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &discount, nil
}

func (s *GormStore) DiscountByCode(code string) (*models.DiscountCode, error) {
	var discount models.DiscountCode
	if err := s.db.First(&discount, "code = ?", code).Error; err != nil {
		return nil, err
	}
	return &discount, nil
}

func (s *GormStore) UnusedCredit(userID uuid.UUID) (*models.SessionCredit, error) {
	var credit models.SessionCredit
	err := s.db.
		Where("user_id = ? AND used_at IS NULL AND is_active = true AND credits > 0", userID).
		Order("created_at asc").
		First(&credit).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, services.ErrNoCreditAvailable
		}
		return nil, err
	}
	return &credit, nil
}

func (s *GormStore) SetStripeCustomerID(userID uuid.UUID, customerID string) error {
	return s.db.Model(&models.User{}).Where("id = ?", userID).
		Update("stripe_customer_id", customerID).Error
}

// ConfirmBooking finalizes a paid (or free) booking. The processed-event
// ledger insert, the capacity increment, and the booking insert share one
// transaction: a replayed webhook short-circuits, and any failure rolls the
// whole attempt back.
func (s *GormStore) ConfirmBooking(p services.ConfirmParams) (*models.Booking, error) {
	var booking models.Booking

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if p.EventID != "" {
			res := tx.Clauses(clause.OnConflict{DoNothing: true}).
				Create(&models.WebhookEvent{ID: p.EventID, Type: p.EventType})
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return services.ErrEventReplayed
			}
		}

		var session models.Session
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&session, "id = ? AND is_active = true", p.SessionID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return services.ErrSessionNotFound
			}
			return err
		}
		if session.CurrentCapacity >= session.MaxCapacity {
			return services.ErrSessionFull
		}

		var count int64
		if err := tx.Model(&models.Booking{}).
			Where("user_id = ? AND session_id = ? AND status <> ?", p.UserID, p.SessionID, models.BookingStatusCancelled).
			Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return services.ErrAlreadyBooked
		}

		session.CurrentCapacity++
		if err := tx.Save(&session).Error; err != nil {
			return err
		}

		booking = models.Booking{
			UserID:          p.UserID,
			SessionID:       p.SessionID,
			Status:          models.BookingStatusConfirmed,
			PaymentStatus:   models.PaymentStatusPaid,
			AmountPaid:      p.AmountPaid,
			DiscountCodeID:  p.DiscountCodeID,
			DiscountAmount:  p.DiscountAmount,
			PaymentIntentID: p.PaymentIntentID,
		}
		if err := tx.Create(&booking).Error; err != nil {
			return err
		}

		if p.DiscountCodeID != nil {
			if err := tx.Model(&models.DiscountCode{}).Where("id = ?", *p.DiscountCodeID).
				UpdateColumn("current_uses", gorm.Expr("current_uses + 1")).Error; err != nil {
				return err
			}
		}

		if p.CreditID != nil {
			// a multi-credit grant is drawn down one redemption at a time;
			// used_at marks exhaustion, not first use
			res := tx.Model(&models.SessionCredit{}).
				Where("id = ? AND used_at IS NULL AND credits > 0", *p.CreditID).
				Updates(map[string]interface{}{
					"credits":    gorm.Expr("credits - 1"),
					"booking_id": booking.ID,
				})
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return services.ErrNoCreditAvailable
			}
			if err := tx.Model(&models.SessionCredit{}).
				Where("id = ? AND credits = 0 AND used_at IS NULL", *p.CreditID).
				Update("used_at", time.Now()).Error; err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		return nil, err
	}
	return &booking, nil
}

// CancelBooking marks a booking cancelled, optionally releases its seat, and
// optionally issues a compensating credit, all in one transaction.
func (s *GormStore) CancelBooking(p services.CancelParams) (*models.Booking, error) {
	var booking models.Booking

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&booking, "id = ?", p.BookingID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return services.ErrBookingNotFound
			}
			return err
		}

		booking.Status = models.BookingStatusCancelled
		booking.PaymentStatus = p.PaymentStatus
		cancelledAt := p.CancelledAt
		booking.CancelledAt = &cancelledAt
		if err := tx.Save(&booking).Error; err != nil {
			return err
		}

		if p.ReleaseSeat {
			if err := tx.Model(&models.Session{}).
				Where("id = ? AND current_capacity > 0", booking.SessionID).
				UpdateColumn("current_capacity", gorm.Expr("current_capacity - 1")).Error; err != nil {
				return err
			}
		}

		if p.IssueCredit != nil {
			credit := *p.IssueCredit
			if err := tx.Create(&credit).Error; err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		return nil, err
	}
	return &booking, nil
}
