package engine

import (
	"slices"
	"time"

	"github.com/comitanigiacomo/habit-hero/internal/core/domain"
)

// hourlyTolerance is added to the interval when comparing two past
// completions. The gap between now and the latest completion uses a 2x
// window instead.
const hourlyTolerance = 0.1

// ComputeStreak returns the current streak for a habit given its completed
// check-ins, newest date first. Only the first record of each date counts.
func ComputeStreak(freq domain.Frequency, intervalHours *int, completed []domain.CheckIn, now time.Time) int {
	completed = FirstPerDate(completed)
	if len(completed) == 0 {
		return 0
	}

	switch {
	case freq == domain.FrequencyWeekly:
		return weeklyStreak(completed, now)
	case freq == domain.FrequencyHourly && intervalHours != nil && *intervalHours > 0:
		return hourlyStreak(float64(*intervalHours), completed, now)
	default:
		return dailyStreak(completed, now)
	}
}

func dailyStreak(completed []domain.CheckIn, now time.Time) int {
	today := domain.DateOf(now)
	if today.DaysSince(completed[0].Date) > 1 {
		return 0
	}

	streak := 1
	for i := 1; i < len(completed); i++ {
		if completed[i-1].Date.DaysSince(completed[i].Date) != 1 {
			break
		}
		streak++
	}
	return streak
}

// weeklyStreak compares bare ISO week numbers, ignoring the ISO year. A run
// that crosses new year therefore stops at the boundary, and two completions
// in the same week end the run.
func weeklyStreak(completed []domain.CheckIn, now time.Time) int {
	_, currentWeek := domain.DateOf(now).ISOWeek()
	_, mostRecentWeek := completed[0].Date.ISOWeek()
	if currentWeek-mostRecentWeek > 1 {
		return 0
	}

	streak := 1
	for i := 1; i < len(completed); i++ {
		_, newer := completed[i-1].Date.ISOWeek()
		_, older := completed[i].Date.ISOWeek()
		if newer-older != 1 {
			break
		}
		streak++
	}
	return streak
}

func hourlyStreak(interval float64, completed []domain.CheckIn, now time.Time) int {
	last := completed[0].CompletedAt
	if last == nil {
		return 0
	}
	if now.Sub(*last).Hours() > interval*2 {
		return 0
	}

	streak := 1
	for i := 1; i < len(completed); i++ {
		newer, older := completed[i-1].CompletedAt, completed[i].CompletedAt
		if newer == nil || older == nil {
			break
		}
		if newer.Sub(*older).Hours() > interval+hourlyTolerance {
			break
		}
		streak++
	}
	return streak
}

// SortNewestFirst returns a copy of checkins ordered by date descending.
// Records sharing a date keep their relative order.
func SortNewestFirst(checkins []domain.CheckIn) []domain.CheckIn {
	sorted := slices.Clone(checkins)
	slices.SortStableFunc(sorted, func(a, b domain.CheckIn) int {
		return b.Date.Compare(a.Date.Time)
	})
	return sorted
}

// FirstPerDate drops every record whose date was already seen earlier in the
// slice.
func FirstPerDate(checkins []domain.CheckIn) []domain.CheckIn {
	seen := make(map[string]struct{}, len(checkins))
	unique := make([]domain.CheckIn, 0, len(checkins))
	for _, c := range checkins {
		key := c.Date.String()
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		unique = append(unique, c)
	}
	return unique
}

func completedOnly(checkins []domain.CheckIn) []domain.CheckIn {
	done := make([]domain.CheckIn, 0, len(checkins))
	for _, c := range checkins {
		if c.Completed {
			done = append(done, c)
		}
	}
	return done
}
