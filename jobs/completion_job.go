package jobs

import (
	"log"
	"time"

	"github.com/grandesports/training_platform/database"
	"github.com/grandesports/training_platform/models"
)

// MarkCompletedSessions sweeps confirmed bookings whose session has ended and
// marks them completed.
func MarkCompletedSessions() {
	log.Println("Running job: MarkCompletedSessions...")

	now := time.Now()

	var sessions []models.Session
	err := database.DB.
		Where("date <= ?", now.Truncate(24*time.Hour)).
		Find(&sessions).Error
	if err != nil {
		log.Printf("Error checking for finished sessions: %v", err)
		return
	}

	completed := 0
	for _, session := range sessions {
		if session.EndsAt().After(now) {
			continue
		}

		result := database.DB.Model(&models.Booking{}).
			Where("session_id = ? AND status = ?", session.ID, models.BookingStatusConfirmed).
			Update("status", models.BookingStatusCompleted)
		if result.Error != nil {
			log.Printf("Error completing bookings for session %s: %v", session.ID, result.Error)
			continue
		}
		completed += int(result.RowsAffected)
	}

	if completed > 0 {
		log.Printf("Marked %d booking(s) as completed.", completed)
	}
}
