package services

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/grandesports/training_platform/models"
	"github.com/shopspring/decimal"
)

// BookingService is the booking-payment reconciler. It computes final prices,
// drives the payment processor, and keeps booking and session-capacity state
// consistent with the processor's state. It holds no state of its own beyond
// its collaborators.
type BookingService struct {
	store               Store
	payments            PaymentProvider
	mailer              Mailer
	baseURL             string
	releaseSeatOnCancel bool
}

func NewBookingService(store Store, payments PaymentProvider, mailer Mailer, baseURL string, releaseSeatOnCancel bool) *BookingService {
	return &BookingService{
		store:               store,
		payments:            payments,
		mailer:              mailer,
		baseURL:             baseURL,
		releaseSeatOnCancel: releaseSeatOnCancel,
	}
}

// Mailer exposes the notification sender for flows that email outside a
// booking, like admin-created accounts.
func (s *BookingService) Mailer() Mailer {
	return s.mailer
}

// Quote is the priced result of the checkout guards.
type Quote struct {
	Session        *models.Session
	Discount       *models.DiscountCode
	FinalPrice     decimal.Decimal
	DiscountAmount decimal.Decimal
}

// CheckoutRequest starts a checkout attempt for one seat.
type CheckoutRequest struct {
	SessionID      uuid.UUID
	DiscountCodeID *uuid.UUID
	UseCredit      bool
}

// CheckoutOutcome is either a hosted-checkout redirect or an immediately
// confirmed free booking.
type CheckoutOutcome struct {
	RedirectURL string
	Free        bool
	Booking     *models.Booking
}

// ValidateCode resolves a discount code for the requesting user. The code is
// matched case-insensitively.
func (s *BookingService) ValidateCode(code string, userID *uuid.UUID, now time.Time) (*models.DiscountCode, error) {
	discount, err := s.store.DiscountByCode(strings.ToUpper(strings.TrimSpace(code)))
	if err != nil {
		return nil, ErrInvalidDiscount
	}
	if err := CheckDiscountUsable(discount, userID, now); err != nil {
		return nil, err
	}
	return discount, nil
}

// quote runs the checkout guards and prices the attempt. Guards are re-checked
// with store-level consistency at confirm time; this pass exists to reject
// obviously doomed attempts before any processor call.
func (s *BookingService) quote(userID uuid.UUID, req CheckoutRequest, now time.Time) (*Quote, error) {
	session, err := s.store.ActiveSession(req.SessionID)
	if err != nil {
		return nil, ErrSessionNotFound
	}
	if session.CurrentCapacity >= session.MaxCapacity {
		return nil, ErrSessionFull
	}

	booked, err := s.store.HasActiveBooking(userID, req.SessionID)
	if err != nil {
		return nil, err
	}
	if booked {
		return nil, ErrAlreadyBooked
	}

	var discount *models.DiscountCode
	if req.DiscountCodeID != nil {
		discount, err = s.store.DiscountByID(*req.DiscountCodeID)
		if err != nil {
			return nil, ErrInvalidDiscount
		}
		if err := CheckDiscountUsable(discount, &userID, now); err != nil {
			return nil, err
		}
	}

	final, discountAmount := FinalPrice(session.Price, discount)
	return &Quote{Session: session, Discount: discount, FinalPrice: final, DiscountAmount: discountAmount}, nil
}

// Checkout starts the new-instrument path: zero-price (or credit-redeeming)
// attempts confirm immediately, everything else gets a hosted checkout URL and
// is finalized later by the processor webhook. No booking row is written
// before the payment is confirmed.
func (s *BookingService) Checkout(userID uuid.UUID, req CheckoutRequest, now time.Time) (*CheckoutOutcome, error) {
	var creditID *uuid.UUID
	if req.UseCredit {
		credit, err := s.store.UnusedCredit(userID)
		if err != nil {
			return nil, ErrNoCreditAvailable
		}
		creditID = &credit.ID
		// a redeemed credit forces free_session-equivalent pricing, so the
		// discount code (if any) is ignored for this attempt
		req.DiscountCodeID = nil
	}

	q, err := s.quote(userID, req, now)
	if err != nil {
		return nil, err
	}

	if req.UseCredit {
		q.DiscountAmount = q.Session.Price
		q.FinalPrice = decimal.Zero
	}

	if q.FinalPrice.IsZero() {
		booking, err := s.confirmFree(userID, q, creditID)
		if err != nil {
			return nil, err
		}
		return &CheckoutOutcome{RedirectURL: s.baseURL + "/dashboard?booking=success", Free: true, Booking: booking}, nil
	}

	user, err := s.store.UserByID(userID)
	if err != nil {
		return nil, err
	}
	customerID, err := s.ensureCustomer(user)
	if err != nil {
		return nil, err
	}

	params := CheckoutSessionParams{
		CustomerID:  customerID,
		Title:       q.Session.Title,
		Description: fmt.Sprintf("%s at %s", q.Session.Date.Format("2006-01-02"), q.Session.StartTime),
		AmountCents: Cents(q.FinalPrice),
		SuccessURL:  s.baseURL + "/dashboard?booking=success",
		CancelURL:   s.baseURL + "/book?cancelled=true",
		UserID:      userID,
		SessionID:   q.Session.ID,
	}
	if q.Discount != nil {
		params.DiscountCodeID = q.Discount.ID.String()
		params.DiscountAmount = q.DiscountAmount.StringFixed(2)
	}

	url, err := s.payments.CreateCheckoutSession(params)
	if err != nil {
		return nil, fmt.Errorf("create checkout session: %w", err)
	}
	return &CheckoutOutcome{RedirectURL: url}, nil
}

func (s *BookingService) confirmFree(userID uuid.UUID, q *Quote, creditID *uuid.UUID) (*models.Booking, error) {
	params := ConfirmParams{
		UserID:         userID,
		SessionID:      q.Session.ID,
		AmountPaid:     decimal.Zero,
		DiscountAmount: q.DiscountAmount,
		CreditID:       creditID,
	}
	if q.Discount != nil {
		id := q.Discount.ID
		params.DiscountCodeID = &id
	}

	booking, err := s.store.ConfirmBooking(params)
	if err != nil {
		return nil, err
	}
	s.notifyConfirmed(userID, q.Session, decimal.Zero)
	return booking, nil
}

// SavedMethodRequest charges a stored instrument synchronously.
type SavedMethodRequest struct {
	SessionID       uuid.UUID
	DiscountCodeID  *uuid.UUID
	PaymentMethodID string
}

// ChargeOutcome reports a saved-method attempt. RequiresAction surfaces the
// processor's authentication challenge without creating any booking.
type ChargeOutcome struct {
	Booking        *models.Booking
	RequiresAction bool
	ClientSecret   string
}

// ChargeSaved runs the saved-instrument path: guard, charge off-session, and
// on synchronous success write booking and capacity in one transaction. A
// post-charge write failure is the one state we cannot roll back, so it is
// logged for manual reconciliation and surfaced as a support-contact error.
func (s *BookingService) ChargeSaved(userID uuid.UUID, req SavedMethodRequest, now time.Time) (*ChargeOutcome, error) {
	q, err := s.quote(userID, CheckoutRequest{SessionID: req.SessionID, DiscountCodeID: req.DiscountCodeID}, now)
	if err != nil {
		return nil, err
	}

	if q.FinalPrice.IsZero() {
		booking, err := s.confirmFree(userID, q, nil)
		if err != nil {
			return nil, err
		}
		return &ChargeOutcome{Booking: booking}, nil
	}

	user, err := s.store.UserByID(userID)
	if err != nil {
		return nil, err
	}
	if user.StripeCustomerID == nil {
		return nil, ErrNoPaymentMethods
	}

	result, err := s.payments.ChargeSavedMethod(ChargeParams{
		CustomerID:      *user.StripeCustomerID,
		PaymentMethodID: req.PaymentMethodID,
		AmountCents:     Cents(q.FinalPrice),
		Description:     q.Session.Describe(),
		UserID:          userID,
		SessionID:       q.Session.ID,
	})
	if err != nil {
		return nil, fmt.Errorf("charge saved method: %w", err)
	}
	if result.RequiresAction {
		return &ChargeOutcome{RequiresAction: true, ClientSecret: result.ClientSecret}, ErrAuthenticationRequired
	}
	if !result.Succeeded {
		if result.FailureMessage != "" {
			return nil, fmt.Errorf("%w: %s", ErrPaymentDeclined, result.FailureMessage)
		}
		return nil, ErrPaymentDeclined
	}

	params := ConfirmParams{
		UserID:          userID,
		SessionID:       q.Session.ID,
		AmountPaid:      q.FinalPrice,
		DiscountAmount:  q.DiscountAmount,
		PaymentIntentID: &result.PaymentIntentID,
	}
	if q.Discount != nil {
		id := q.Discount.ID
		params.DiscountCodeID = &id
	}

	booking, err := s.store.ConfirmBooking(params)
	if err != nil {
		log.Printf("🔥 CRITICAL: payment %s succeeded but booking write failed (user=%s session=%s): %v. Manual reconciliation required",
			result.PaymentIntentID, userID, q.Session.ID, err)
		return nil, ErrSupportRequired
	}

	s.notifyConfirmed(userID, q.Session, q.FinalPrice)
	return &ChargeOutcome{Booking: booking}, nil
}

// ParseWebhook verifies and decodes a processor callback.
func (s *BookingService) ParseWebhook(payload []byte, signature string) (*WebhookEvent, error) {
	return s.payments.ParseWebhook(payload, signature)
}

// FinalizeCheckout handles a completed hosted checkout delivered by the
// processor webhook. The processed-event ledger insert shares the booking
// transaction, so a replay is a no-op and a failed write rolls everything
// back for the processor's retry to re-deliver.
func (s *BookingService) FinalizeCheckout(ev *CompletedCheckout) (*models.Booking, error) {
	pi := ev.PaymentIntentID
	params := ConfirmParams{
		UserID:          ev.UserID,
		SessionID:       ev.SessionID,
		AmountPaid:      FromCents(ev.AmountTotalCents),
		DiscountCodeID:  ev.DiscountCodeID,
		DiscountAmount:  ev.DiscountAmount,
		PaymentIntentID: &pi,
		EventID:         ev.EventID,
		EventType:       ev.EventType,
	}

	booking, err := s.store.ConfirmBooking(params)
	if err != nil {
		return nil, err
	}

	session, serr := s.store.ActiveSession(ev.SessionID)
	if serr == nil {
		s.notifyConfirmed(ev.UserID, session, params.AmountPaid)
	}
	return booking, nil
}

// Cancel lets a booking's owner cancel it at least 24 hours before the
// session starts. No card refund is issued: the athlete is compensated with a
// session credit, and the seat release is an explicit deployment choice.
func (s *BookingService) Cancel(userID, bookingID uuid.UUID, now time.Time) (*models.Booking, error) {
	booking, err := s.store.BookingByID(bookingID)
	if err != nil {
		return nil, ErrBookingNotFound
	}
	if booking.UserID != userID {
		return nil, ErrNotYourBooking
	}
	if booking.Status != models.BookingStatusConfirmed {
		return nil, ErrNotCancellable
	}

	// soft-deleting a session must not strand its booked athletes
	session, err := s.store.SessionByID(booking.SessionID)
	if err != nil {
		return nil, ErrSessionNotFound
	}
	if session.StartsAt().Sub(now) < 24*time.Hour {
		return nil, ErrTooLateToCancel
	}

	reason := "cancelled booking " + bookingID.String()
	cancelled, err := s.store.CancelBooking(CancelParams{
		BookingID:     bookingID,
		PaymentStatus: models.PaymentStatusCredited,
		CancelledAt:   now,
		ReleaseSeat:   s.releaseSeatOnCancel,
		IssueCredit: &models.SessionCredit{
			UserID:   userID,
			Credits:  1,
			Reason:   &reason,
			IsActive: true,
		},
	})
	if err != nil {
		return nil, err
	}

	if user, uerr := s.store.UserByID(userID); uerr == nil {
		s.mailer.SendBookingCancelled(user.Email, user.FullName, session)
	}
	return cancelled, nil
}

// RefundOutcome reports an admin refund. StateMismatch is set when the
// processor refund succeeded but the local update failed; the refund stands
// and the booking needs manual reconciliation.
type RefundOutcome struct {
	RefundID      string
	Status        string
	StateMismatch bool
}

// Refund is admin-only: refund the charge at the processor, then mark the
// booking refunded and cancelled.
func (s *BookingService) Refund(bookingID uuid.UUID, now time.Time) (*RefundOutcome, error) {
	booking, err := s.store.BookingByID(bookingID)
	if err != nil {
		return nil, ErrBookingNotFound
	}
	if booking.PaymentStatus == models.PaymentStatusRefunded {
		return nil, ErrAlreadyRefunded
	}
	if booking.PaymentIntentID == nil {
		return nil, ErrNoPaymentOnRecord
	}

	result, err := s.payments.Refund(*booking.PaymentIntentID)
	if err != nil {
		return nil, fmt.Errorf("process refund: %w", err)
	}

	outcome := &RefundOutcome{RefundID: result.RefundID, Status: result.Status}

	_, err = s.store.CancelBooking(CancelParams{
		BookingID:     bookingID,
		PaymentStatus: models.PaymentStatusRefunded,
		CancelledAt:   now,
		ReleaseSeat:   s.releaseSeatOnCancel,
	})
	if err != nil {
		log.Printf("🔥 CRITICAL: refund %s processed but booking %s was not updated: %v. Manual reconciliation required",
			result.RefundID, bookingID, err)
		outcome.StateMismatch = true
	}
	return outcome, nil
}

// Assign books a session on behalf of an athlete at the session's current
// price, with the same capacity and duplicate guards as a self-checkout.
func (s *BookingService) Assign(sessionID, athleteID uuid.UUID) (*models.Booking, error) {
	session, err := s.store.ActiveSession(sessionID)
	if err != nil {
		return nil, ErrSessionNotFound
	}

	athlete, err := s.store.UserByID(athleteID)
	if err != nil {
		return nil, ErrAthleteNotFound
	}

	booking, err := s.store.ConfirmBooking(ConfirmParams{
		UserID:     athleteID,
		SessionID:  sessionID,
		AmountPaid: session.Price,
	})
	if err != nil {
		return nil, err
	}

	s.mailer.SendSessionAssigned(athlete.Email, athlete.FullName, session)
	return booking, nil
}

// EnsureCustomer returns the athlete's processor customer id, creating one on
// first use.
func (s *BookingService) EnsureCustomer(userID uuid.UUID) (string, error) {
	user, err := s.store.UserByID(userID)
	if err != nil {
		return "", err
	}
	return s.ensureCustomer(user)
}

func (s *BookingService) ensureCustomer(user *models.User) (string, error) {
	if user.StripeCustomerID != nil && *user.StripeCustomerID != "" {
		return *user.StripeCustomerID, nil
	}
	customerID, err := s.payments.CreateCustomer(user.Email, user.FullName, user.ID)
	if err != nil {
		return "", fmt.Errorf("create customer: %w", err)
	}
	if err := s.store.SetStripeCustomerID(user.ID, customerID); err != nil {
		return "", err
	}
	return customerID, nil
}

// ListSavedCards lists the athlete's stored instruments. An athlete with no
// processor customer simply has none yet.
func (s *BookingService) ListSavedCards(userID uuid.UUID) ([]SavedCard, error) {
	user, err := s.store.UserByID(userID)
	if err != nil {
		return nil, err
	}
	if user.StripeCustomerID == nil || *user.StripeCustomerID == "" {
		return []SavedCard{}, nil
	}
	return s.payments.ListSavedCards(*user.StripeCustomerID)
}

func (s *BookingService) DetachCard(paymentMethodID string) error {
	return s.payments.DetachCard(paymentMethodID)
}

// CreateSetupIntent opens a card-saving flow for the athlete.
func (s *BookingService) CreateSetupIntent(userID uuid.UUID) (string, error) {
	customerID, err := s.EnsureCustomer(userID)
	if err != nil {
		return "", err
	}
	return s.payments.CreateSetupIntent(customerID)
}

func (s *BookingService) notifyConfirmed(userID uuid.UUID, session *models.Session, amount decimal.Decimal) {
	user, err := s.store.UserByID(userID)
	if err != nil {
		log.Printf("skipping confirmation email, user %s not found: %v", userID, err)
		return
	}
	s.mailer.SendBookingConfirmation(user.Email, user.FullName, session, amount)
}
