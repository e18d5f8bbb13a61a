package domain

import "time"

type Status string

const (
	StatusCompleted Status = "Completed"
	StatusPending   Status = "Pending"
	StatusNotDue    Status = "NotDue"
)

// CheckInView is the audit shape of a check-in inside a StatusRecord.
type CheckInView struct {
	Date        Date       `json:"date"`
	Completed   bool       `json:"completed"`
	CompletedAt *time.Time `json:"completed_at"`
	Note        *string    `json:"note"`
}

type StatusRecord struct {
	HabitID       int64         `json:"habit_id"`
	HabitName     string        `json:"habit_name"`
	Category      string        `json:"category"`
	Frequency     string        `json:"frequency"`
	TargetDay     *string       `json:"target_day"`
	Status        Status        `json:"status"`
	Streak        int           `json:"streak"`
	LastCompleted *Date         `json:"last_completed"`
	IsDueToday    bool          `json:"is_due_today"`
	AllCheckIns   []CheckInView `json:"all_checkins"`
}

type StreakResult struct {
	HabitID int64 `json:"habit_id"`
	Streak  int   `json:"streak"`
}

// TodayEntry is one row of the "what's on today" overview.
type TodayEntry struct {
	HabitID     int64      `json:"id"`
	Name        string     `json:"name"`
	Category    string     `json:"category"`
	Frequency   string     `json:"frequency"`
	Completed   bool       `json:"completed"`
	CompletedAt *time.Time `json:"completed_at"`
}
