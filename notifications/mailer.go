package notifications

import (
	"fmt"

	"github.com/grandesports/training_platform/models"
	"github.com/shopspring/decimal"
)

// EmailMailer implements the reconciler's Mailer port on the Resend client.
// Every send runs in its own goroutine; a delivery failure never fails the
// booking flow.
type EmailMailer struct{}

func NewEmailMailer() *EmailMailer {
	return &EmailMailer{}
}

func (m *EmailMailer) SendBookingConfirmation(email, name string, session *models.Session, amountPaid decimal.Decimal) {
	body := fmt.Sprintf(
		"<h1>Booking Confirmed!</h1>"+
			"<p>Hi %s, your training session is booked.</p>"+
			"%s"+
			"<p><b>Amount paid:</b> $%s</p>"+
			"<p>See you on the field!</p>",
		name, sessionDetailsHTML(session), amountPaid.StringFixed(2),
	)
	go SendEmail(email, "Your Booking is Confirmed!", body)
}

func (m *EmailMailer) SendSessionAssigned(email, name string, session *models.Session) {
	body := fmt.Sprintf(
		"<h1>You've Been Added to a Session</h1>"+
			"<p>Hi %s, your coach has added you to a training session.</p>"+
			"%s"+
			"<p>If you can't make it, please reach out to your coach.</p>",
		name, sessionDetailsHTML(session),
	)
	go SendEmail(email, "A Training Session Has Been Assigned to You", body)
}

func (m *EmailMailer) SendBookingCancelled(email, name string, session *models.Session) {
	body := fmt.Sprintf(
		"<h1>Booking Cancelled</h1>"+
			"<p>Hi %s, your booking below has been cancelled and a session credit has been added to your account.</p>"+
			"%s",
		name, sessionDetailsHTML(session),
	)
	go SendEmail(email, "Your Booking Has Been Cancelled", body)
}

func (m *EmailMailer) SendWelcome(email, name, tempPassword string) {
	body := fmt.Sprintf(
		"<h1>Welcome to Grande Sports Training!</h1>"+
			"<p>Hi %s, an account has been created for you.</p>"+
			"<p>Your temporary password is <b>%s</b>. Please log in and change it.</p>",
		name, tempPassword,
	)
	go SendEmail(email, "Welcome to Grande Sports Training", body)
}

func sessionDetailsHTML(s *models.Session) string {
	location := s.Location
	if location == "" {
		location = "Main Training Field"
	}
	coach := ""
	if s.CoachName != nil && *s.CoachName != "" {
		coach = fmt.Sprintf("<li><b>Coach:</b> %s</li>", *s.CoachName)
	}
	return fmt.Sprintf(
		"<ul>"+
			"<li><b>Session:</b> %s</li>"+
			"%s"+
			"<li><b>Date:</b> %s</li>"+
			"<li><b>Time:</b> %s - %s</li>"+
			"<li><b>Location:</b> %s</li>"+
			"</ul>",
		s.Title, coach, s.Date.Format("Monday, January 2, 2006"), s.StartTime, s.EndTime, location,
	)
}
