package engine

import (
	"time"

	"github.com/comitanigiacomo/habit-hero/internal/core/domain"
)

// EvaluateHabit builds the status record of one habit from all of its
// check-ins (completed or not) at the instant now.
func EvaluateHabit(habit *domain.Habit, checkins []domain.CheckIn, now time.Time) domain.StatusRecord {
	freq := habit.Schedule()
	today := domain.DateOf(now)

	all := SortNewestFirst(checkins)
	authoritative := FirstPerDate(all)

	isDue := IsDueToday(freq, habit.TargetDay, today)

	var todayCheckIn *domain.CheckIn
	for i := range authoritative {
		if authoritative[i].Date.SameDay(today) {
			todayCheckIn = &authoritative[i]
			break
		}
	}

	status := domain.StatusNotDue
	switch {
	case todayCheckIn != nil && todayCheckIn.Completed:
		status = domain.StatusCompleted
	case isDue:
		status = domain.StatusPending
	}

	completed := completedOnly(authoritative)

	var lastCompleted *domain.Date
	if len(completed) > 0 {
		d := completed[0].Date
		lastCompleted = &d
	}

	views := make([]domain.CheckInView, 0, len(all))
	for _, c := range all {
		views = append(views, domain.CheckInView{
			Date:        c.Date,
			Completed:   c.Completed,
			CompletedAt: c.CompletedAt,
			Note:        c.Note,
		})
	}

	return domain.StatusRecord{
		HabitID:       habit.ID,
		HabitName:     habit.Name,
		Category:      habit.Category,
		Frequency:     habit.Frequency,
		TargetDay:     habit.TargetDay,
		Status:        status,
		Streak:        ComputeStreak(freq, habit.IntervalHours, completed, now),
		LastCompleted: lastCompleted,
		IsDueToday:    isDue,
		AllCheckIns:   views,
	}
}

// EvaluateAll evaluates every habit in the given order. Habits without an
// entry in checkinsByHabit are evaluated with an empty history.
func EvaluateAll(habits []*domain.Habit, checkinsByHabit map[int64][]domain.CheckIn, now time.Time) []domain.StatusRecord {
	records := make([]domain.StatusRecord, 0, len(habits))
	for _, h := range habits {
		records = append(records, EvaluateHabit(h, checkinsByHabit[h.ID], now))
	}
	return records
}

// TodayEntries summarises today's check-in of every habit.
func TodayEntries(habits []*domain.Habit, checkinsByHabit map[int64][]domain.CheckIn, today domain.Date) []domain.TodayEntry {
	entries := make([]domain.TodayEntry, 0, len(habits))
	for _, h := range habits {
		entry := domain.TodayEntry{
			HabitID:   h.ID,
			Name:      h.Name,
			Category:  h.Category,
			Frequency: h.Frequency,
		}
		for _, c := range SortNewestFirst(checkinsByHabit[h.ID]) {
			if c.Date.SameDay(today) {
				entry.Completed = c.Completed
				entry.CompletedAt = c.CompletedAt
				break
			}
		}
		entries = append(entries, entry)
	}
	return entries
}
