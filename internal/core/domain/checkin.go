package domain

import (
	"errors"
	"time"
)

var (
	ErrCheckInNotFound = errors.New("check-in not found")
)

// CheckIn records whether a habit was performed on one calendar day.
// CompletedAt is set exactly when Completed is true on every record this
// service writes; rows written elsewhere may violate that and are still read.
type CheckIn struct {
	ID          int64      `json:"id" db:"id"`
	HabitID     int64      `json:"habit_id" db:"habit_id"`
	Date        Date       `json:"date" db:"date"`
	Completed   bool       `json:"completed" db:"completed"`
	CompletedAt *time.Time `json:"completed_at" db:"completed_at"`
	Note        *string    `json:"note,omitempty" db:"note"`
}

// NewPlaceholderCheckIn is the open record stored alongside a new habit.
func NewPlaceholderCheckIn(habitID int64, date Date) CheckIn {
	return CheckIn{
		HabitID: habitID,
		Date:    date,
	}
}
