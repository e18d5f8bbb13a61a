package domain

import "errors"

// MaxStatsRangeDays bounds a completion stats request.
const MaxStatsRangeDays = 366

var (
	ErrInvalidDateRange = errors.New("invalid date range (start must not be after end, max 366 days)")
)

type CompletionStats struct {
	StartDate   string      `json:"start_date"`
	EndDate     string      `json:"end_date"`
	TotalHabits int         `json:"total_habits"`
	OverallRate float64     `json:"overall_completion_rate"`
	HabitStats  []HabitStat `json:"habits"`
}

type HabitStat struct {
	HabitID        int64   `json:"habit_id"`
	HabitName      string  `json:"habit_name"`
	Category       string  `json:"category"`
	Frequency      string  `json:"frequency"`
	CurrentStreak  int     `json:"current_streak"`
	CompletionRate float64 `json:"completion_rate"`
	DaysCompleted  int     `json:"days_completed"`
	DailyProgress  []int   `json:"daily_progress"`
}

type StatsInput struct {
	UserID    int64
	StartDate Date
	EndDate   Date
}
