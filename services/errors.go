package services

import "errors"

// Validation-class errors: rejected synchronously, no state mutated.
var (
	ErrSessionNotFound       = errors.New("session not found")
	ErrSessionFull           = errors.New("session is full")
	ErrAlreadyBooked         = errors.New("you have already booked this session")
	ErrInvalidDiscount       = errors.New("invalid discount code")
	ErrDiscountNotYetValid   = errors.New("this discount code is not yet valid")
	ErrDiscountExpired       = errors.New("this discount code has expired")
	ErrDiscountNotForAccount = errors.New("this discount code is not available for your account")
	ErrNoCreditAvailable     = errors.New("no unused session credit available")
	ErrBookingNotFound       = errors.New("booking not found")
	ErrNotYourBooking        = errors.New("this is not your booking")
	ErrNotCancellable        = errors.New("only confirmed bookings can be cancelled")
	ErrTooLateToCancel       = errors.New("bookings can only be cancelled at least 24 hours before the session starts")
	ErrAlreadyRefunded       = errors.New("this booking has already been refunded")
	ErrNoPaymentOnRecord     = errors.New("no payment found for this booking")
	ErrAthleteNotFound       = errors.New("athlete not found")
	ErrNoPaymentMethods      = errors.New("no payment methods on file")
)

// Processor-class errors: the charge did not complete; the caller may retry
// with another instrument.
var (
	ErrPaymentDeclined        = errors.New("payment was declined")
	ErrAuthenticationRequired = errors.New("payment requires additional authentication, please use a different card")
)

// ErrEventReplayed signals an already-processed webhook delivery; the caller
// acknowledges without touching any state.
var ErrEventReplayed = errors.New("webhook event already processed")

// ErrSupportRequired is the post-payment write failure: a charge succeeded but
// the booking write did not. The user must never be invited to pay again.
var ErrSupportRequired = errors.New("your payment went through but the booking could not be recorded, please contact support")
