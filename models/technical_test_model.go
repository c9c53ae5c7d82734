package models

import (
	"time"

	"github.com/google/uuid"
)

// TechnicalTest records one dated set of drill measurements for an athlete.
// Dribbling drills are timed in seconds, juggling and ball-control drills are
// repetition counts.
type TechnicalTest struct {
	ID       uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	UserID   uuid.UUID `gorm:"not null;index" json:"user_id"`
	TestDate time.Time `gorm:"type:date;not null" json:"test_date"`

	Drill180    *float64 `json:"drill_180"`
	DrillOpen90 *float64 `json:"drill_open_90"`
	DrillV      *float64 `json:"drill_v"`

	Dribble20Yard *float64 `json:"dribble_20_yard"`
	DribbleV      *float64 `json:"dribble_v"`
	DribbleT      *float64 `json:"dribble_t"`

	JugglingBoth      *float64 `json:"juggling_both"`
	JugglingLeft      *float64 `json:"juggling_left"`
	JugglingRight     *float64 `json:"juggling_right"`
	StraightLineBoth  *float64 `json:"straight_line_both"`
	StraightLineLeft  *float64 `json:"straight_line_left"`
	StraightLineRight *float64 `json:"straight_line_right"`

	Notes *string `gorm:"type:text" json:"notes"`

	CreatedAt time.Time `json:"created_at"`
}
