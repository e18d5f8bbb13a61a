// Package engine holds the pure streak and status rules. Nothing in here
// touches storage or the wall clock: callers pass the habit, its check-ins
// and the current instant, and get values back.
package engine

import "github.com/comitanigiacomo/habit-hero/internal/core/domain"

// IsDueToday reports whether the schedule asks for a check-in on today.
// Weekly habits compare the English weekday name exactly. Hourly and
// unrecognised schedules are never due here; their cadence only shows up in
// the streak window.
func IsDueToday(freq domain.Frequency, targetDay *string, today domain.Date) bool {
	switch freq {
	case domain.FrequencyDaily:
		return true
	case domain.FrequencyWeekly:
		return targetDay != nil && *targetDay == today.Weekday().String()
	default:
		return false
	}
}
