package services

import (
	"time"

	"github.com/google/uuid"
	"github.com/grandesports/training_platform/models"
	"github.com/shopspring/decimal"
)

// ConfirmParams describes a booking finalization. The store must apply it
// atomically: re-check the duplicate guard, increment capacity only if below
// max under a row lock, insert the booking, bump discount uses, consume the
// credit, and record the processor event, all in one transaction.
type ConfirmParams struct {
	UserID          uuid.UUID
	SessionID       uuid.UUID
	AmountPaid      decimal.Decimal
	DiscountCodeID  *uuid.UUID
	DiscountAmount  decimal.Decimal
	PaymentIntentID *string

	// CreditID, when set, marks this session credit used by the new booking.
	CreditID *uuid.UUID

	// EventID/EventType, when set, are written to the processed-event ledger;
	// a replay returns ErrEventReplayed with no other writes.
	EventID   string
	EventType string
}

// CancelParams marks a booking cancelled. ReleaseSeat decrements the
// session's capacity through the same guarded path as the increment.
type CancelParams struct {
	BookingID     uuid.UUID
	PaymentStatus string
	CancelledAt   time.Time
	ReleaseSeat   bool

	// IssueCredit, when set, inserts a compensating session credit in the
	// same transaction.
	IssueCredit *models.SessionCredit
}

// Store is the reconciler's view of the data store. SessionByID ignores the
// is_active filter; cancellations and refunds must keep working after a
// session is soft-deleted.
type Store interface {
	ActiveSession(sessionID uuid.UUID) (*models.Session, error)
	SessionByID(sessionID uuid.UUID) (*models.Session, error)
	HasActiveBooking(userID, sessionID uuid.UUID) (bool, error)
	BookingByID(bookingID uuid.UUID) (*models.Booking, error)
	UserByID(userID uuid.UUID) (*models.User, error)
	DiscountByID(id uuid.UUID) (*models.DiscountCode, error)
	DiscountByCode(code string) (*models.DiscountCode, error)
	UnusedCredit(userID uuid.UUID) (*models.SessionCredit, error)
	SetStripeCustomerID(userID uuid.UUID, customerID string) error

	ConfirmBooking(p ConfirmParams) (*models.Booking, error)
	CancelBooking(p CancelParams) (*models.Booking, error)
}

// SavedCard is a stored payment instrument summary.
type SavedCard struct {
	ID       string `json:"id"`
	Brand    string `json:"brand"`
	Last4    string `json:"last4"`
	ExpMonth int64  `json:"exp_month"`
	ExpYear  int64  `json:"exp_year"`
}

// CheckoutSessionParams carries everything the processor needs to open a
// hosted checkout. Metadata round-trips through the completion webhook.
type CheckoutSessionParams struct {
	CustomerID     string
	Title          string
	Description    string
	AmountCents    int64
	SuccessURL     string
	CancelURL      string
	UserID         uuid.UUID
	SessionID      uuid.UUID
	DiscountCodeID string
	DiscountAmount string
}

type ChargeParams struct {
	CustomerID      string
	PaymentMethodID string
	AmountCents     int64
	Description     string
	UserID          uuid.UUID
	SessionID       uuid.UUID
}

type ChargeResult struct {
	PaymentIntentID string
	Succeeded       bool
	RequiresAction  bool
	ClientSecret    string
	FailureMessage  string
}

type RefundResult struct {
	RefundID string
	Status   string
}

// CompletedCheckout is the provider-agnostic shape of a finished hosted
// checkout, parsed out of a verified webhook delivery.
type CompletedCheckout struct {
	EventID          string
	EventType        string
	UserID           uuid.UUID
	SessionID        uuid.UUID
	DiscountCodeID   *uuid.UUID
	DiscountAmount   decimal.Decimal
	AmountTotalCents int64
	PaymentIntentID  string
}

// WebhookEvent is a verified processor callback. Exactly one of the payload
// fields is set depending on Type.
type WebhookEvent struct {
	ID        string
	Type      string
	Completed *CompletedCheckout

	// FailedPaymentIntentID is set for payment-failure events, which are
	// logged but mutate nothing.
	FailedPaymentIntentID string
}

// PaymentProvider is the reconciler's view of the payment processor.
type PaymentProvider interface {
	CreateCustomer(email, fullName string, userID uuid.UUID) (string, error)
	CreateCheckoutSession(p CheckoutSessionParams) (url string, err error)
	ChargeSavedMethod(p ChargeParams) (*ChargeResult, error)
	Refund(paymentIntentID string) (*RefundResult, error)

	ListSavedCards(customerID string) ([]SavedCard, error)
	DetachCard(paymentMethodID string) error
	CreateSetupIntent(customerID string) (clientSecret string, err error)

	ParseWebhook(payload []byte, signature string) (*WebhookEvent, error)
}

// Mailer sends transactional notifications. Implementations are expected to
// be fire-and-forget; delivery failures must not fail the booking flow.
type Mailer interface {
	SendBookingConfirmation(email, name string, session *models.Session, amountPaid decimal.Decimal)
	SendSessionAssigned(email, name string, session *models.Session)
	SendBookingCancelled(email, name string, session *models.Session)
	SendWelcome(email, name, tempPassword string)
}
