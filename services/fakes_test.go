package services

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/grandesports/training_platform/models"
	"github.com/shopspring/decimal"
)

// memStore is an in-memory Store with the same guard semantics as the
// Postgres implementation, locked as a whole so concurrent confirmations
// serialize the way row locks do.
type memStore struct {
	mu        sync.Mutex
	sessions  map[uuid.UUID]*models.Session
	users     map[uuid.UUID]*models.User
	bookings  map[uuid.UUID]*models.Booking
	discounts map[uuid.UUID]*models.DiscountCode
	credits   map[uuid.UUID]*models.SessionCredit
	events    map[string]bool

	confirmErr error
	cancelErr  error
}

func newMemStore() *memStore {
	return &memStore{
		sessions:  make(map[uuid.UUID]*models.Session),
		users:     make(map[uuid.UUID]*models.User),
		bookings:  make(map[uuid.UUID]*models.Booking),
		discounts: make(map[uuid.UUID]*models.DiscountCode),
		credits:   make(map[uuid.UUID]*models.SessionCredit),
		events:    make(map[string]bool),
	}
}

func (m *memStore) addSession(s models.Session) *models.Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	m.sessions[s.ID] = &s
	return &s
}

func (m *memStore) addUser(u models.User) *models.User {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	m.users[u.ID] = &u
	return &u
}

func (m *memStore) addDiscount(d models.DiscountCode) *models.DiscountCode {
	m.mu.Lock()
	defer m.mu.Unlock()
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	m.discounts[d.ID] = &d
	return &d
}

func (m *memStore) addCredit(c models.SessionCredit) *models.SessionCredit {
	m.mu.Lock()
	defer m.mu.Unlock()
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	m.credits[c.ID] = &c
	return &c
}

func (m *memStore) bookingCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.bookings)
}

func (m *memStore) ActiveSession(sessionID uuid.UUID) (*models.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[sessionID]
	if !ok || !s.IsActive {
		return nil, ErrSessionNotFound
	}
	copied := *s
	return &copied, nil
}

func (m *memStore) SessionByID(sessionID uuid.UUID) (*models.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[sessionID]
	if !ok {
		return nil, ErrSessionNotFound
	}
	copied := *s
	return &copied, nil
}

func (m *memStore) HasActiveBooking(userID, sessionID uuid.UUID) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.hasActiveBookingLocked(userID, sessionID), nil
}

func (m *memStore) hasActiveBookingLocked(userID, sessionID uuid.UUID) bool {
	for _, b := range m.bookings {
		if b.UserID == userID && b.SessionID == sessionID && b.Status != models.BookingStatusCancelled {
			return true
		}
	}
	return false
}

func (m *memStore) BookingByID(bookingID uuid.UUID) (*models.Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.bookings[bookingID]
	if !ok {
		return nil, ErrBookingNotFound
	}
	copied := *b
	return &copied, nil
}

func (m *memStore) UserByID(userID uuid.UUID) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[userID]
	if !ok {
		return nil, ErrAthleteNotFound
	}
	copied := *u
	return &copied, nil
}

func (m *memStore) DiscountByID(id uuid.UUID) (*models.DiscountCode, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.discounts[id]
	if !ok {
		return nil, ErrInvalidDiscount
	}
	copied := *d
	return &copied, nil
}

func (m *memStore) DiscountByCode(code string) (*models.DiscountCode, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, d := range m.discounts {
		if d.Code == code {
			copied := *d
			return &copied, nil
		}
	}
	return nil, ErrInvalidDiscount
}

func (m *memStore) UnusedCredit(userID uuid.UUID) (*models.SessionCredit, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range m.credits {
		if c.UserID == userID && c.UsedAt == nil && c.IsActive && c.Credits > 0 {
			copied := *c
			return &copied, nil
		}
	}
	return nil, ErrNoCreditAvailable
}

func (m *memStore) SetStripeCustomerID(userID uuid.UUID, customerID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[userID]
	if !ok {
		return ErrAthleteNotFound
	}
	u.StripeCustomerID = &customerID
	return nil
}

func (m *memStore) ConfirmBooking(p ConfirmParams) (*models.Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if p.EventID != "" && m.events[p.EventID] {
		return nil, ErrEventReplayed
	}

	session, ok := m.sessions[p.SessionID]
	if !ok || !session.IsActive {
		return nil, ErrSessionNotFound
	}
	if session.CurrentCapacity >= session.MaxCapacity {
		return nil, ErrSessionFull
	}
	if m.hasActiveBookingLocked(p.UserID, p.SessionID) {
		return nil, ErrAlreadyBooked
	}

	if m.confirmErr != nil {
		return nil, m.confirmErr
	}

	if p.CreditID != nil {
		credit, ok := m.credits[*p.CreditID]
		if !ok || credit.UsedAt != nil || credit.Credits <= 0 {
			return nil, ErrNoCreditAvailable
		}
	}

	if p.EventID != "" {
		m.events[p.EventID] = true
	}
	session.CurrentCapacity++

	booking := &models.Booking{
		ID:              uuid.New(),
		UserID:          p.UserID,
		SessionID:       p.SessionID,
		Status:          models.BookingStatusConfirmed,
		PaymentStatus:   models.PaymentStatusPaid,
		AmountPaid:      p.AmountPaid,
		DiscountCodeID:  p.DiscountCodeID,
		DiscountAmount:  p.DiscountAmount,
		PaymentIntentID: p.PaymentIntentID,
	}
	m.bookings[booking.ID] = booking

	if p.DiscountCodeID != nil {
		if d, ok := m.discounts[*p.DiscountCodeID]; ok {
			d.CurrentUses++
		}
	}
	if p.CreditID != nil {
		credit := m.credits[*p.CreditID]
		credit.Credits--
		credit.BookingID = &booking.ID
		if credit.Credits == 0 {
			now := time.Now()
			credit.UsedAt = &now
		}
	}

	copied := *booking
	return &copied, nil
}

func (m *memStore) CancelBooking(p CancelParams) (*models.Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.cancelErr != nil {
		return nil, m.cancelErr
	}

	booking, ok := m.bookings[p.BookingID]
	if !ok {
		return nil, ErrBookingNotFound
	}

	booking.Status = models.BookingStatusCancelled
	booking.PaymentStatus = p.PaymentStatus
	cancelledAt := p.CancelledAt
	booking.CancelledAt = &cancelledAt

	if p.ReleaseSeat {
		if session, ok := m.sessions[booking.SessionID]; ok && session.CurrentCapacity > 0 {
			session.CurrentCapacity--
		}
	}
	if p.IssueCredit != nil {
		credit := *p.IssueCredit
		credit.ID = uuid.New()
		m.credits[credit.ID] = &credit
	}

	copied := *booking
	return &copied, nil
}

// fakePayments records processor calls and returns scripted results.
type fakePayments struct {
	mu sync.Mutex

	checkoutCalls int
	chargeCalls   int
	refundCalls   int

	chargeResult *ChargeResult
	chargeErr    error
	refundErr    error
}

func (f *fakePayments) CreateCustomer(email, fullName string, userID uuid.UUID) (string, error) {
	return "cus_" + userID.String()[:8], nil
}

func (f *fakePayments) CreateCheckoutSession(p CheckoutSessionParams) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.checkoutCalls++
	return "https://checkout.test/c/session_123", nil
}

func (f *fakePayments) ChargeSavedMethod(p ChargeParams) (*ChargeResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.chargeCalls++
	if f.chargeErr != nil {
		return nil, f.chargeErr
	}
	if f.chargeResult != nil {
		return f.chargeResult, nil
	}
	return &ChargeResult{PaymentIntentID: "pi_test_123", Succeeded: true}, nil
}

func (f *fakePayments) Refund(paymentIntentID string) (*RefundResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.refundCalls++
	if f.refundErr != nil {
		return nil, f.refundErr
	}
	return &RefundResult{RefundID: "re_test_123", Status: "succeeded"}, nil
}

func (f *fakePayments) ListSavedCards(customerID string) ([]SavedCard, error) {
	return []SavedCard{}, nil
}

func (f *fakePayments) DetachCard(paymentMethodID string) error {
	return nil
}

func (f *fakePayments) CreateSetupIntent(customerID string) (string, error) {
	return "seti_secret_123", nil
}

func (f *fakePayments) ParseWebhook(payload []byte, signature string) (*WebhookEvent, error) {
	return nil, nil
}

// fakeMailer counts notifications.
type fakeMailer struct {
	mu           sync.Mutex
	confirmation int
	assigned     int
	cancelled    int
	welcome      int
}

func (f *fakeMailer) SendBookingConfirmation(email, name string, session *models.Session, amountPaid decimal.Decimal) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.confirmation++
}

func (f *fakeMailer) SendSessionAssigned(email, name string, session *models.Session) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.assigned++
}

func (f *fakeMailer) SendBookingCancelled(email, name string, session *models.Session) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cancelled++
}

func (f *fakeMailer) SendWelcome(email, name, tempPassword string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.welcome++
}
