package services

import (
	"time"

	"github.com/google/uuid"
	"github.com/grandesports/training_platform/models"
)

// ExpandRecurrence generates one independent session per matching weekday
// between the template's date and endDate, inclusive. The generated rows share
// the template's time, price, and capacity and point back to it through
// ParentSessionID, but there is no live relationship afterward.
func ExpandRecurrence(template models.Session, weekday time.Weekday, endDate time.Time) []models.Session {
	var out []models.Session

	parent := template.ID
	day := template.Date
	for !day.After(endDate) {
		if day.Weekday() == weekday {
			s := template
			s.ID = uuid.Nil
			s.Date = day
			s.CurrentCapacity = 0
			s.IsActive = true
			s.IsRecurring = false
			s.RecurrenceDay = nil
			s.RecurrenceEndDate = nil
			if parent != uuid.Nil {
				p := parent
				s.ParentSessionID = &p
			}
			out = append(out, s)
		}
		day = day.AddDate(0, 0, 1)
	}
	return out
}
