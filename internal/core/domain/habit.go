package domain

import (
	"errors"
	"strings"
	"time"
)

var (
	ErrHabitNameEmpty     = errors.New("habit name cannot be empty")
	ErrHabitNameTooLong   = errors.New("habit name is too long (max 100 chars)")
	ErrHabitCategoryEmpty = errors.New("habit category cannot be empty")
	ErrHabitInvalidUserID = errors.New("invalid user id")
	ErrInvalidFrequency   = errors.New("invalid frequency (must be daily, weekly, or hourly)")
	ErrInvalidTargetDay   = errors.New("invalid target day (must be a weekday name, e.g. Monday)")
	ErrInvalidInterval    = errors.New("interval hours must be a positive number")
)

const (
	HabitFreqDaily  = "daily"
	HabitFreqWeekly = "weekly"
	HabitFreqHourly = "hourly"
	MaxNameLen      = 100
)

// Frequency is the closed set of schedules the streak engine understands.
// Stored values it does not recognise map to FrequencyUnknown, which the
// engine evaluates with the daily rules.
type Frequency int

const (
	FrequencyUnknown Frequency = iota
	FrequencyDaily
	FrequencyWeekly
	FrequencyHourly
)

func ParseFrequency(s string) Frequency {
	switch s {
	case HabitFreqDaily:
		return FrequencyDaily
	case HabitFreqWeekly:
		return FrequencyWeekly
	case HabitFreqHourly:
		return FrequencyHourly
	default:
		return FrequencyUnknown
	}
}

func (f Frequency) String() string {
	switch f {
	case FrequencyDaily:
		return HabitFreqDaily
	case FrequencyWeekly:
		return HabitFreqWeekly
	case FrequencyHourly:
		return HabitFreqHourly
	default:
		return "unknown"
	}
}

type Habit struct {
	ID            int64     `json:"id" db:"id"`
	UserID        int64     `json:"user_id" db:"user_id"`
	Name          string    `json:"name" db:"name"`
	Category      string    `json:"category" db:"category"`
	Frequency     string    `json:"frequency" db:"frequency"`
	TargetDay     *string   `json:"target_day" db:"target_day"`
	IntervalHours *int      `json:"interval_hours" db:"interval_hours"`
	StartDate     Date      `json:"start_date" db:"start_date"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
}

// Schedule returns the parsed frequency. Frequency stays a plain string on
// the struct so whatever storage holds is echoed back untouched.
func (h *Habit) Schedule() Frequency {
	return ParseFrequency(h.Frequency)
}

func IsWeekdayName(s string) bool {
	for d := time.Sunday; d <= time.Saturday; d++ {
		if d.String() == s {
			return true
		}
	}
	return false
}

func NewHabit(userID int64, name, category, frequency string, targetDay *string, intervalHours *int, startDate Date, now time.Time) (*Habit, error) {
	if userID <= 0 {
		return nil, ErrHabitInvalidUserID
	}

	trimmedName := strings.TrimSpace(name)
	if trimmedName == "" {
		return nil, ErrHabitNameEmpty
	}
	if len(trimmedName) > MaxNameLen {
		return nil, ErrHabitNameTooLong
	}

	trimmedCategory := strings.TrimSpace(category)
	if trimmedCategory == "" {
		return nil, ErrHabitCategoryEmpty
	}

	freq := strings.ToLower(strings.TrimSpace(frequency))
	if freq == "" {
		freq = HabitFreqDaily
	}

	switch ParseFrequency(freq) {
	case FrequencyWeekly:
		if targetDay == nil {
			return nil, ErrInvalidTargetDay
		}
	case FrequencyHourly:
		if intervalHours == nil {
			return nil, ErrInvalidInterval
		}
	case FrequencyUnknown:
		return nil, ErrInvalidFrequency
	}

	if targetDay != nil && !IsWeekdayName(*targetDay) {
		return nil, ErrInvalidTargetDay
	}
	if intervalHours != nil && *intervalHours <= 0 {
		return nil, ErrInvalidInterval
	}

	if startDate.IsZero() {
		startDate = DateOf(now)
	}

	return &Habit{
		UserID:        userID,
		Name:          trimmedName,
		Category:      trimmedCategory,
		Frequency:     freq,
		TargetDay:     targetDay,
		IntervalHours: intervalHours,
		StartDate:     startDate,
		CreatedAt:     now.UTC(),
	}, nil
}
