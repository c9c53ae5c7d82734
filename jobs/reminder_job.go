package jobs

import (
	"fmt"
	"log"
	"time"

	"github.com/grandesports/training_platform/database"
	"github.com/grandesports/training_platform/models"
	"github.com/grandesports/training_platform/notifications"
)

// SendSessionReminders emails every confirmed booking whose session starts in
// roughly 24 hours. Runs hourly, so the window is one hour wide.
func SendSessionReminders() {
	log.Println("Running job: SendSessionReminders...")

	now := time.Now()
	lowerBound := now.Add(24 * time.Hour)
	upperBound := now.Add(25 * time.Hour)

	var sessions []models.Session
	err := database.DB.
		Where("is_active = true AND date BETWEEN ? AND ?",
			lowerBound.Truncate(24*time.Hour), upperBound.Add(24*time.Hour)).
		Find(&sessions).Error
	if err != nil {
		log.Printf("Error checking for upcoming sessions: %v", err)
		return
	}

	reminded := 0
	for _, session := range sessions {
		startsAt := session.StartsAt()
		if startsAt.Before(lowerBound) || startsAt.After(upperBound) {
			continue
		}

		var bookings []models.Booking
		err := database.DB.Preload("User").
			Where("session_id = ? AND status = ?", session.ID, models.BookingStatusConfirmed).
			Find(&bookings).Error
		if err != nil {
			log.Printf("Error fetching bookings for session %s: %v", session.ID, err)
			continue
		}

		for _, booking := range bookings {
			emailSubject := "Reminder: Training Session Tomorrow"
			emailBody := fmt.Sprintf(
				"<h1>Session Reminder</h1><p>Hi %s,</p><p>This is a reminder that you are booked for <b>%s</b> tomorrow at %s.</p><p>See you on the field!</p>",
				booking.User.FullName, session.Title, session.StartTime,
			)
			go notifications.SendEmail(booking.User.Email, emailSubject, emailBody)
			reminded++
		}
	}

	if reminded > 0 {
		log.Printf("Sent %d session reminder(s).", reminded)
	}
}
