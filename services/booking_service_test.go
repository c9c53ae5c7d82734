package services

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/grandesports/training_platform/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService(store *memStore, payments *fakePayments, mailer *fakeMailer) *BookingService {
	return NewBookingService(store, payments, mailer, "https://app.test", true)
}

func testSession(maxCapacity int, price string, startsIn time.Duration) models.Session {
	startsAt := time.Now().Add(startsIn)
	return models.Session{
		Title:       "Group Training",
		SessionType: models.SessionTypeGroup,
		Date:        time.Date(startsAt.Year(), startsAt.Month(), startsAt.Day(), 0, 0, 0, 0, startsAt.Location()),
		StartTime:   startsAt.Format("15:04"),
		EndTime:     startsAt.Add(time.Hour).Format("15:04"),
		Price:       decimal.RequireFromString(price),
		MaxCapacity: maxCapacity,
		IsActive:    true,
	}
}

func testUser() models.User {
	return models.User{
		FullName: "Alex Morgan",
		Email:    "alex@example.com",
		IsActive: true,
	}
}

func TestCheckout_PaidPathReturnsRedirect(t *testing.T) {
	store := newMemStore()
	payments := &fakePayments{}
	mailer := &fakeMailer{}
	svc := newTestService(store, payments, mailer)

	session := store.addSession(testSession(8, "40.00", 48*time.Hour))
	user := store.addUser(testUser())

	outcome, err := svc.Checkout(user.ID, CheckoutRequest{SessionID: session.ID}, time.Now())

	require.NoError(t, err)
	assert.False(t, outcome.Free)
	assert.Equal(t, "https://checkout.test/c/session_123", outcome.RedirectURL)
	assert.Equal(t, 1, payments.checkoutCalls)

	// nothing is written until the processor confirms the payment
	assert.Equal(t, 0, store.bookingCount())
	current, _ := store.ActiveSession(session.ID)
	assert.Equal(t, 0, current.CurrentCapacity)
}

func TestCheckout_FreeSessionConfirmsImmediately(t *testing.T) {
	store := newMemStore()
	payments := &fakePayments{}
	mailer := &fakeMailer{}
	svc := newTestService(store, payments, mailer)

	session := store.addSession(testSession(8, "40.00", 48*time.Hour))
	user := store.addUser(testUser())
	discount := store.addDiscount(models.DiscountCode{
		Code: "FREEBIE", Type: models.DiscountTypeFreeSession, IsActive: true,
	})

	outcome, err := svc.Checkout(user.ID, CheckoutRequest{
		SessionID:      session.ID,
		DiscountCodeID: &discount.ID,
	}, time.Now())

	require.NoError(t, err)
	assert.True(t, outcome.Free)
	require.NotNil(t, outcome.Booking)
	assert.Equal(t, models.BookingStatusConfirmed, outcome.Booking.Status)
	assert.True(t, outcome.Booking.AmountPaid.IsZero())
	assert.True(t, outcome.Booking.DiscountAmount.Equal(decimal.RequireFromString("40.00")))

	// the processor is never involved in a zero-price booking
	assert.Equal(t, 0, payments.checkoutCalls)
	assert.Equal(t, 0, payments.chargeCalls)

	current, _ := store.ActiveSession(session.ID)
	assert.Equal(t, 1, current.CurrentCapacity)

	used, _ := store.DiscountByID(discount.ID)
	assert.Equal(t, 1, used.CurrentUses)
	assert.Equal(t, 1, mailer.confirmation)
}

func TestCheckout_FixedDiscountToZeroIsFree(t *testing.T) {
	store := newMemStore()
	payments := &fakePayments{}
	svc := newTestService(store, payments, &fakeMailer{})

	session := store.addSession(testSession(8, "40.00", 48*time.Hour))
	user := store.addUser(testUser())
	discount := store.addDiscount(models.DiscountCode{
		Code: "BIGFIXED", Type: models.DiscountTypeFixed,
		Value: decimal.RequireFromString("50"), IsActive: true,
	})

	outcome, err := svc.Checkout(user.ID, CheckoutRequest{
		SessionID:      session.ID,
		DiscountCodeID: &discount.ID,
	}, time.Now())

	require.NoError(t, err)
	assert.True(t, outcome.Free)
	assert.Equal(t, 0, payments.checkoutCalls)
}

func TestCheckout_CreditRedemption(t *testing.T) {
	store := newMemStore()
	payments := &fakePayments{}
	svc := newTestService(store, payments, &fakeMailer{})

	session := store.addSession(testSession(8, "40.00", 48*time.Hour))
	user := store.addUser(testUser())
	credit := store.addCredit(models.SessionCredit{UserID: user.ID, Credits: 1, IsActive: true})

	// a redeemed credit overrides any discount code sent alongside it
	discount := store.addDiscount(models.DiscountCode{
		Code: "SAVE20", Type: models.DiscountTypePercentage,
		Value: decimal.RequireFromString("20"), IsActive: true,
	})

	outcome, err := svc.Checkout(user.ID, CheckoutRequest{
		SessionID:      session.ID,
		DiscountCodeID: &discount.ID,
		UseCredit:      true,
	}, time.Now())

	require.NoError(t, err)
	assert.True(t, outcome.Free)
	assert.True(t, outcome.Booking.AmountPaid.IsZero())
	assert.Nil(t, outcome.Booking.DiscountCodeID)

	redeemedRow := store.credits[credit.ID]
	assert.Equal(t, 0, redeemedRow.Credits)
	require.NotNil(t, redeemedRow.UsedAt)
	require.NotNil(t, redeemedRow.BookingID)
	assert.Equal(t, outcome.Booking.ID, *redeemedRow.BookingID)

	redeemed, err := store.UnusedCredit(user.ID)
	assert.ErrorIs(t, err, ErrNoCreditAvailable)
	assert.Nil(t, redeemed)

	untouched, _ := store.DiscountByID(discount.ID)
	assert.Equal(t, 0, untouched.CurrentUses)
}

func TestCheckout_MultiCreditGrantDrawsDown(t *testing.T) {
	store := newMemStore()
	svc := newTestService(store, &fakePayments{}, &fakeMailer{})

	user := store.addUser(testUser())
	credit := store.addCredit(models.SessionCredit{UserID: user.ID, Credits: 3, IsActive: true})

	for i := 0; i < 3; i++ {
		session := store.addSession(testSession(8, "40.00", 48*time.Hour))
		outcome, err := svc.Checkout(user.ID, CheckoutRequest{SessionID: session.ID, UseCredit: true}, time.Now())
		require.NoError(t, err)
		assert.True(t, outcome.Free)

		row := store.credits[credit.ID]
		assert.Equal(t, 2-i, row.Credits)
		if i < 2 {
			// the grant stays redeemable until its last credit is drawn
			assert.Nil(t, row.UsedAt)
		}
	}

	exhausted := store.credits[credit.ID]
	assert.Equal(t, 0, exhausted.Credits)
	require.NotNil(t, exhausted.UsedAt)

	session := store.addSession(testSession(8, "40.00", 48*time.Hour))
	_, err := svc.Checkout(user.ID, CheckoutRequest{SessionID: session.ID, UseCredit: true}, time.Now())
	assert.ErrorIs(t, err, ErrNoCreditAvailable)
}

func TestCheckout_NoCreditAvailable(t *testing.T) {
	store := newMemStore()
	svc := newTestService(store, &fakePayments{}, &fakeMailer{})

	session := store.addSession(testSession(8, "40.00", 48*time.Hour))
	user := store.addUser(testUser())

	_, err := svc.Checkout(user.ID, CheckoutRequest{SessionID: session.ID, UseCredit: true}, time.Now())

	assert.ErrorIs(t, err, ErrNoCreditAvailable)
}

func TestCheckout_GuardsRejectBeforeProcessor(t *testing.T) {
	store := newMemStore()
	payments := &fakePayments{}
	svc := newTestService(store, payments, &fakeMailer{})

	user := store.addUser(testUser())

	_, err := svc.Checkout(user.ID, CheckoutRequest{SessionID: uuid.New()}, time.Now())
	assert.ErrorIs(t, err, ErrSessionNotFound)

	full := testSession(1, "40.00", 48*time.Hour)
	full.CurrentCapacity = 1
	fullSession := store.addSession(full)
	_, err = svc.Checkout(user.ID, CheckoutRequest{SessionID: fullSession.ID}, time.Now())
	assert.ErrorIs(t, err, ErrSessionFull)

	inactive := testSession(8, "40.00", 48*time.Hour)
	inactive.IsActive = false
	inactiveSession := store.addSession(inactive)
	_, err = svc.Checkout(user.ID, CheckoutRequest{SessionID: inactiveSession.ID}, time.Now())
	assert.ErrorIs(t, err, ErrSessionNotFound)

	assert.Equal(t, 0, payments.checkoutCalls)
}

func TestCheckout_ParallelDuplicatesOneWins(t *testing.T) {
	store := newMemStore()
	svc := newTestService(store, &fakePayments{}, &fakeMailer{})

	session := store.addSession(testSession(8, "40.00", 48*time.Hour))
	user := store.addUser(testUser())
	discount := store.addDiscount(models.DiscountCode{
		Code: "FREEBIE", Type: models.DiscountTypeFreeSession, IsActive: true,
	})

	const attempts = 10
	var wg sync.WaitGroup
	errs := make([]error, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.Checkout(user.ID, CheckoutRequest{
				SessionID:      session.ID,
				DiscountCodeID: &discount.ID,
			}, time.Now())
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
		} else {
			assert.ErrorIs(t, err, ErrAlreadyBooked)
		}
	}
	assert.Equal(t, 1, succeeded)
	assert.Equal(t, 1, store.bookingCount())

	current, _ := store.ActiveSession(session.ID)
	assert.Equal(t, 1, current.CurrentCapacity)
}

func TestCheckout_ParallelLastSeatOneWins(t *testing.T) {
	store := newMemStore()
	svc := newTestService(store, &fakePayments{}, &fakeMailer{})

	session := store.addSession(testSession(1, "95.00", 48*time.Hour))
	discount := store.addDiscount(models.DiscountCode{
		Code: "FREEBIE", Type: models.DiscountTypeFreeSession, IsActive: true,
	})

	const athletes = 5
	users := make([]*models.User, athletes)
	for i := range users {
		users[i] = store.addUser(testUser())
	}

	var wg sync.WaitGroup
	errs := make([]error, athletes)
	for i := 0; i < athletes; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.Checkout(users[i].ID, CheckoutRequest{
				SessionID:      session.ID,
				DiscountCodeID: &discount.ID,
			}, time.Now())
		}(i)
	}
	wg.Wait()

	succeeded, rejected := 0, 0
	for _, err := range errs {
		switch {
		case err == nil:
			succeeded++
		case errors.Is(err, ErrSessionFull):
			rejected++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, succeeded)
	assert.Equal(t, athletes-1, rejected)

	current, _ := store.ActiveSession(session.ID)
	assert.Equal(t, 1, current.CurrentCapacity)
}

func TestChargeSaved_Success(t *testing.T) {
	store := newMemStore()
	payments := &fakePayments{}
	mailer := &fakeMailer{}
	svc := newTestService(store, payments, mailer)

	session := store.addSession(testSession(8, "70.00", 48*time.Hour))
	customerID := "cus_existing"
	u := testUser()
	u.StripeCustomerID = &customerID
	user := store.addUser(u)

	outcome, err := svc.ChargeSaved(user.ID, SavedMethodRequest{
		SessionID:       session.ID,
		PaymentMethodID: "pm_123",
	}, time.Now())

	require.NoError(t, err)
	require.NotNil(t, outcome.Booking)
	assert.Equal(t, models.BookingStatusConfirmed, outcome.Booking.Status)
	assert.True(t, outcome.Booking.AmountPaid.Equal(decimal.RequireFromString("70.00")))
	require.NotNil(t, outcome.Booking.PaymentIntentID)
	assert.Equal(t, "pi_test_123", *outcome.Booking.PaymentIntentID)
	assert.Equal(t, 1, payments.chargeCalls)
	assert.Equal(t, 1, mailer.confirmation)
}

func TestChargeSaved_NoCustomerOnFile(t *testing.T) {
	store := newMemStore()
	payments := &fakePayments{}
	svc := newTestService(store, payments, &fakeMailer{})

	session := store.addSession(testSession(8, "70.00", 48*time.Hour))
	user := store.addUser(testUser())

	_, err := svc.ChargeSaved(user.ID, SavedMethodRequest{
		SessionID:       session.ID,
		PaymentMethodID: "pm_123",
	}, time.Now())

	assert.ErrorIs(t, err, ErrNoPaymentMethods)
	assert.Equal(t, 0, payments.chargeCalls)
}

func TestChargeSaved_Declined(t *testing.T) {
	store := newMemStore()
	payments := &fakePayments{
		chargeResult: &ChargeResult{Succeeded: false, FailureMessage: "card_declined"},
	}
	svc := newTestService(store, payments, &fakeMailer{})

	session := store.addSession(testSession(8, "70.00", 48*time.Hour))
	customerID := "cus_existing"
	u := testUser()
	u.StripeCustomerID = &customerID
	user := store.addUser(u)

	_, err := svc.ChargeSaved(user.ID, SavedMethodRequest{
		SessionID:       session.ID,
		PaymentMethodID: "pm_123",
	}, time.Now())

	assert.ErrorIs(t, err, ErrPaymentDeclined)
	assert.Equal(t, 0, store.bookingCount())

	current, _ := store.ActiveSession(session.ID)
	assert.Equal(t, 0, current.CurrentCapacity)
}

func TestChargeSaved_RequiresAction(t *testing.T) {
	store := newMemStore()
	payments := &fakePayments{
		chargeResult: &ChargeResult{RequiresAction: true, ClientSecret: "pi_secret_456"},
	}
	svc := newTestService(store, payments, &fakeMailer{})

	session := store.addSession(testSession(8, "70.00", 48*time.Hour))
	customerID := "cus_existing"
	u := testUser()
	u.StripeCustomerID = &customerID
	user := store.addUser(u)

	outcome, err := svc.ChargeSaved(user.ID, SavedMethodRequest{
		SessionID:       session.ID,
		PaymentMethodID: "pm_123",
	}, time.Now())

	assert.ErrorIs(t, err, ErrAuthenticationRequired)
	require.NotNil(t, outcome)
	assert.True(t, outcome.RequiresAction)
	assert.Equal(t, "pi_secret_456", outcome.ClientSecret)
	assert.Equal(t, 0, store.bookingCount())
}

func TestChargeSaved_PostChargeWriteFailure(t *testing.T) {
	store := newMemStore()
	store.confirmErr = errors.New("connection reset")
	payments := &fakePayments{}
	svc := newTestService(store, payments, &fakeMailer{})

	session := store.addSession(testSession(8, "70.00", 48*time.Hour))
	customerID := "cus_existing"
	u := testUser()
	u.StripeCustomerID = &customerID
	user := store.addUser(u)

	_, err := svc.ChargeSaved(user.ID, SavedMethodRequest{
		SessionID:       session.ID,
		PaymentMethodID: "pm_123",
	}, time.Now())

	// the charge went through, so the caller must be told to contact support
	// rather than retry the payment
	assert.ErrorIs(t, err, ErrSupportRequired)
	assert.Equal(t, 1, payments.chargeCalls)
}

func TestFinalizeCheckout_CreatesBooking(t *testing.T) {
	store := newMemStore()
	mailer := &fakeMailer{}
	svc := newTestService(store, &fakePayments{}, mailer)

	session := store.addSession(testSession(8, "40.00", 48*time.Hour))
	user := store.addUser(testUser())

	booking, err := svc.FinalizeCheckout(&CompletedCheckout{
		EventID:          "evt_1",
		EventType:        "checkout.session.completed",
		UserID:           user.ID,
		SessionID:        session.ID,
		AmountTotalCents: 4000,
		PaymentIntentID:  "pi_hosted_1",
	})

	require.NoError(t, err)
	assert.Equal(t, models.BookingStatusConfirmed, booking.Status)
	assert.True(t, booking.AmountPaid.Equal(decimal.RequireFromString("40.00")))

	current, _ := store.ActiveSession(session.ID)
	assert.Equal(t, 1, current.CurrentCapacity)
	assert.Equal(t, 1, mailer.confirmation)
}

func TestFinalizeCheckout_ReplayIsNoOp(t *testing.T) {
	store := newMemStore()
	svc := newTestService(store, &fakePayments{}, &fakeMailer{})

	session := store.addSession(testSession(8, "40.00", 48*time.Hour))
	user := store.addUser(testUser())

	event := &CompletedCheckout{
		EventID:          "evt_dup",
		EventType:        "checkout.session.completed",
		UserID:           user.ID,
		SessionID:        session.ID,
		AmountTotalCents: 4000,
		PaymentIntentID:  "pi_hosted_2",
	}

	_, err := svc.FinalizeCheckout(event)
	require.NoError(t, err)

	_, err = svc.FinalizeCheckout(event)
	assert.ErrorIs(t, err, ErrEventReplayed)

	assert.Equal(t, 1, store.bookingCount())
	current, _ := store.ActiveSession(session.ID)
	assert.Equal(t, 1, current.CurrentCapacity)
}

func TestCancel_IssuesCreditAndReleasesSeat(t *testing.T) {
	store := newMemStore()
	mailer := &fakeMailer{}
	svc := newTestService(store, &fakePayments{}, mailer)

	session := store.addSession(testSession(8, "40.00", 48*time.Hour))
	user := store.addUser(testUser())

	booking, err := svc.FinalizeCheckout(&CompletedCheckout{
		EventID: "evt_c1", UserID: user.ID, SessionID: session.ID,
		AmountTotalCents: 4000, PaymentIntentID: "pi_c1",
	})
	require.NoError(t, err)

	cancelled, err := svc.Cancel(user.ID, booking.ID, time.Now())

	require.NoError(t, err)
	assert.Equal(t, models.BookingStatusCancelled, cancelled.Status)
	assert.Equal(t, models.PaymentStatusCredited, cancelled.PaymentStatus)
	require.NotNil(t, cancelled.CancelledAt)

	credit, err := store.UnusedCredit(user.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, credit.Credits)

	current, _ := store.ActiveSession(session.ID)
	assert.Equal(t, 0, current.CurrentCapacity)
	assert.Equal(t, 1, mailer.cancelled)
}

func TestCancel_KeepsSeatWhenConfigured(t *testing.T) {
	store := newMemStore()
	svc := NewBookingService(store, &fakePayments{}, &fakeMailer{}, "https://app.test", false)

	session := store.addSession(testSession(8, "40.00", 48*time.Hour))
	user := store.addUser(testUser())

	booking, err := svc.FinalizeCheckout(&CompletedCheckout{
		EventID: "evt_c2", UserID: user.ID, SessionID: session.ID,
		AmountTotalCents: 4000, PaymentIntentID: "pi_c2",
	})
	require.NoError(t, err)

	_, err = svc.Cancel(user.ID, booking.ID, time.Now())
	require.NoError(t, err)

	current, _ := store.ActiveSession(session.ID)
	assert.Equal(t, 1, current.CurrentCapacity)
}

func TestCancel_TooLate(t *testing.T) {
	store := newMemStore()
	svc := newTestService(store, &fakePayments{}, &fakeMailer{})

	session := store.addSession(testSession(8, "40.00", 12*time.Hour))
	user := store.addUser(testUser())

	booking, err := svc.FinalizeCheckout(&CompletedCheckout{
		EventID: "evt_c3", UserID: user.ID, SessionID: session.ID,
		AmountTotalCents: 4000, PaymentIntentID: "pi_c3",
	})
	require.NoError(t, err)

	_, err = svc.Cancel(user.ID, booking.ID, time.Now())

	assert.ErrorIs(t, err, ErrTooLateToCancel)

	unchanged, _ := store.BookingByID(booking.ID)
	assert.Equal(t, models.BookingStatusConfirmed, unchanged.Status)
	_, err = store.UnusedCredit(user.ID)
	assert.ErrorIs(t, err, ErrNoCreditAvailable)
}

func TestCancel_NotOwner(t *testing.T) {
	store := newMemStore()
	svc := newTestService(store, &fakePayments{}, &fakeMailer{})

	session := store.addSession(testSession(8, "40.00", 48*time.Hour))
	owner := store.addUser(testUser())
	stranger := store.addUser(testUser())

	booking, err := svc.FinalizeCheckout(&CompletedCheckout{
		EventID: "evt_c4", UserID: owner.ID, SessionID: session.ID,
		AmountTotalCents: 4000, PaymentIntentID: "pi_c4",
	})
	require.NoError(t, err)

	_, err = svc.Cancel(stranger.ID, booking.ID, time.Now())

	assert.ErrorIs(t, err, ErrNotYourBooking)
}

func TestCancel_OnlyConfirmed(t *testing.T) {
	store := newMemStore()
	svc := newTestService(store, &fakePayments{}, &fakeMailer{})

	session := store.addSession(testSession(8, "40.00", 48*time.Hour))
	user := store.addUser(testUser())

	booking, err := svc.FinalizeCheckout(&CompletedCheckout{
		EventID: "evt_c5", UserID: user.ID, SessionID: session.ID,
		AmountTotalCents: 4000, PaymentIntentID: "pi_c5",
	})
	require.NoError(t, err)

	_, err = svc.Cancel(user.ID, booking.ID, time.Now())
	require.NoError(t, err)

	// a second cancel hits a booking that is no longer confirmed
	_, err = svc.Cancel(user.ID, booking.ID, time.Now())
	assert.ErrorIs(t, err, ErrNotCancellable)
}

func TestCancel_DeactivatedSessionStillCancellable(t *testing.T) {
	store := newMemStore()
	svc := newTestService(store, &fakePayments{}, &fakeMailer{})

	session := store.addSession(testSession(8, "40.00", 48*time.Hour))
	user := store.addUser(testUser())

	booking, err := svc.FinalizeCheckout(&CompletedCheckout{
		EventID: "evt_c6", UserID: user.ID, SessionID: session.ID,
		AmountTotalCents: 4000, PaymentIntentID: "pi_c6",
	})
	require.NoError(t, err)

	// admin soft-deletes the session after the athlete booked it
	store.mu.Lock()
	store.sessions[session.ID].IsActive = false
	store.mu.Unlock()

	cancelled, err := svc.Cancel(user.ID, booking.ID, time.Now())

	require.NoError(t, err)
	assert.Equal(t, models.BookingStatusCancelled, cancelled.Status)
	assert.Equal(t, models.PaymentStatusCredited, cancelled.PaymentStatus)

	credit, err := store.UnusedCredit(user.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, credit.Credits)
}

func TestRefund_Success(t *testing.T) {
	store := newMemStore()
	payments := &fakePayments{}
	svc := newTestService(store, payments, &fakeMailer{})

	session := store.addSession(testSession(8, "40.00", 48*time.Hour))
	user := store.addUser(testUser())

	booking, err := svc.FinalizeCheckout(&CompletedCheckout{
		EventID: "evt_r1", UserID: user.ID, SessionID: session.ID,
		AmountTotalCents: 4000, PaymentIntentID: "pi_r1",
	})
	require.NoError(t, err)

	outcome, err := svc.Refund(booking.ID, time.Now())

	require.NoError(t, err)
	assert.Equal(t, "re_test_123", outcome.RefundID)
	assert.False(t, outcome.StateMismatch)
	assert.Equal(t, 1, payments.refundCalls)

	refunded, _ := store.BookingByID(booking.ID)
	assert.Equal(t, models.BookingStatusCancelled, refunded.Status)
	assert.Equal(t, models.PaymentStatusRefunded, refunded.PaymentStatus)

	current, _ := store.ActiveSession(session.ID)
	assert.Equal(t, 0, current.CurrentCapacity)
}

func TestRefund_Guards(t *testing.T) {
	store := newMemStore()
	payments := &fakePayments{}
	svc := newTestService(store, payments, &fakeMailer{})

	session := store.addSession(testSession(8, "40.00", 48*time.Hour))
	user := store.addUser(testUser())

	_, err := svc.Refund(uuid.New(), time.Now())
	assert.ErrorIs(t, err, ErrBookingNotFound)

	// free booking, no payment intent
	discount := store.addDiscount(models.DiscountCode{
		Code: "FREEBIE", Type: models.DiscountTypeFreeSession, IsActive: true,
	})
	outcome, err := svc.Checkout(user.ID, CheckoutRequest{
		SessionID:      session.ID,
		DiscountCodeID: &discount.ID,
	}, time.Now())
	require.NoError(t, err)

	_, err = svc.Refund(outcome.Booking.ID, time.Now())
	assert.ErrorIs(t, err, ErrNoPaymentOnRecord)
	assert.Equal(t, 0, payments.refundCalls)
}

func TestRefund_NeverTwice(t *testing.T) {
	store := newMemStore()
	payments := &fakePayments{}
	svc := newTestService(store, payments, &fakeMailer{})

	session := store.addSession(testSession(8, "40.00", 48*time.Hour))
	user := store.addUser(testUser())

	booking, err := svc.FinalizeCheckout(&CompletedCheckout{
		EventID: "evt_r2", UserID: user.ID, SessionID: session.ID,
		AmountTotalCents: 4000, PaymentIntentID: "pi_r2",
	})
	require.NoError(t, err)

	_, err = svc.Refund(booking.ID, time.Now())
	require.NoError(t, err)

	_, err = svc.Refund(booking.ID, time.Now())
	assert.ErrorIs(t, err, ErrAlreadyRefunded)
	assert.Equal(t, 1, payments.refundCalls)
}

func TestRefund_LocalUpdateFailureReported(t *testing.T) {
	store := newMemStore()
	payments := &fakePayments{}
	svc := newTestService(store, payments, &fakeMailer{})

	session := store.addSession(testSession(8, "40.00", 48*time.Hour))
	user := store.addUser(testUser())

	booking, err := svc.FinalizeCheckout(&CompletedCheckout{
		EventID: "evt_r3", UserID: user.ID, SessionID: session.ID,
		AmountTotalCents: 4000, PaymentIntentID: "pi_r3",
	})
	require.NoError(t, err)

	store.cancelErr = errors.New("connection reset")

	outcome, err := svc.Refund(booking.ID, time.Now())

	// the processor refund stands either way
	require.NoError(t, err)
	assert.True(t, outcome.StateMismatch)
	assert.Equal(t, "re_test_123", outcome.RefundID)
}

func TestAssign_BooksAtSessionPrice(t *testing.T) {
	store := newMemStore()
	mailer := &fakeMailer{}
	svc := newTestService(store, &fakePayments{}, mailer)

	session := store.addSession(testSession(2, "95.00", 48*time.Hour))
	athlete := store.addUser(testUser())

	booking, err := svc.Assign(session.ID, athlete.ID)

	require.NoError(t, err)
	assert.Equal(t, models.BookingStatusConfirmed, booking.Status)
	assert.True(t, booking.AmountPaid.Equal(decimal.RequireFromString("95.00")))
	assert.Equal(t, 1, mailer.assigned)

	current, _ := store.ActiveSession(session.ID)
	assert.Equal(t, 1, current.CurrentCapacity)

	// same guards as a self-checkout
	_, err = svc.Assign(session.ID, athlete.ID)
	assert.ErrorIs(t, err, ErrAlreadyBooked)
}

func TestAssign_UnknownAthlete(t *testing.T) {
	store := newMemStore()
	svc := newTestService(store, &fakePayments{}, &fakeMailer{})

	session := store.addSession(testSession(2, "95.00", 48*time.Hour))

	_, err := svc.Assign(session.ID, uuid.New())

	assert.ErrorIs(t, err, ErrAthleteNotFound)
}

func TestValidateCode_CaseInsensitive(t *testing.T) {
	store := newMemStore()
	svc := newTestService(store, &fakePayments{}, &fakeMailer{})

	user := store.addUser(testUser())
	store.addDiscount(models.DiscountCode{
		Code: "SAVE20", Type: models.DiscountTypePercentage,
		Value: decimal.RequireFromString("20"), IsActive: true,
	})

	discount, err := svc.ValidateCode("  save20 ", &user.ID, time.Now())

	require.NoError(t, err)
	assert.Equal(t, "SAVE20", discount.Code)

	_, err = svc.ValidateCode("NOPE", &user.ID, time.Now())
	assert.ErrorIs(t, err, ErrInvalidDiscount)
}

func TestEnsureCustomer_CreatedOnce(t *testing.T) {
	store := newMemStore()
	svc := newTestService(store, &fakePayments{}, &fakeMailer{})

	user := store.addUser(testUser())

	first, err := svc.EnsureCustomer(user.ID)
	require.NoError(t, err)
	assert.NotEmpty(t, first)

	second, err := svc.EnsureCustomer(user.ID)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}
