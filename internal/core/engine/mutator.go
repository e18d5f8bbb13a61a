package engine

import (
	"fmt"
	"time"

	"github.com/comitanigiacomo/habit-hero/internal/core/domain"
)

// MarkCompleted returns the record for (habitID, date) after a completion at
// now. A missing record is created; an existing one keeps its id and note and
// gets a fresh completion instant.
func MarkCompleted(habitID int64, existing *domain.CheckIn, date domain.Date, now time.Time) domain.CheckIn {
	completedAt := now

	if existing == nil {
		return domain.CheckIn{
			HabitID:     habitID,
			Date:        date,
			Completed:   true,
			CompletedAt: &completedAt,
		}
	}

	updated := *existing
	updated.Completed = true
	updated.CompletedAt = &completedAt
	return updated
}

// MarkIncomplete reopens an existing record. Unlike MarkCompleted it never
// creates one.
func MarkIncomplete(habitID int64, existing *domain.CheckIn, date domain.Date) (domain.CheckIn, error) {
	if existing == nil {
		return domain.CheckIn{}, fmt.Errorf("%w: habit %d on %s", domain.ErrCheckInNotFound, habitID, date)
	}

	updated := *existing
	updated.Completed = false
	updated.CompletedAt = nil
	return updated, nil
}
