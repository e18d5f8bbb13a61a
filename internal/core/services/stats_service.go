package services

import (
	"context"

	"github.com/comitanigiacomo/habit-hero/internal/core/domain"
	"github.com/comitanigiacomo/habit-hero/internal/core/engine"
)

type StatsService struct {
	habitRepo   domain.HabitRepository
	checkinRepo domain.CheckInRepository
	clock       domain.Clock
}

func NewStatsService(habitRepo domain.HabitRepository, checkinRepo domain.CheckInRepository, clock domain.Clock) *StatsService {
	return &StatsService{
		habitRepo:   habitRepo,
		checkinRepo: checkinRepo,
		clock:       clock,
	}
}

func (s *StatsService) GetCompletionStats(ctx context.Context, input domain.StatsInput) (*domain.CompletionStats, error) {
	startDate := input.StartDate
	endDate := input.EndDate

	if endDate.Before(startDate.Time) || endDate.DaysSince(startDate) >= domain.MaxStatsRangeDays {
		return nil, domain.ErrInvalidDateRange
	}

	habits, err := s.habitRepo.ListByUserID(ctx, input.UserID)
	if err != nil {
		return nil, err
	}

	stats := &domain.CompletionStats{
		StartDate:   startDate.String(),
		EndDate:     endDate.String(),
		TotalHabits: len(habits),
		HabitStats:  make([]domain.HabitStat, 0, len(habits)),
	}
	if len(habits) == 0 {
		return stats, nil
	}

	inRange, err := s.checkinRepo.ListByUserIDAndDateRange(ctx, input.UserID, startDate, endDate)
	if err != nil {
		return nil, err
	}

	ids := make([]int64, 0, len(habits))
	for _, h := range habits {
		ids = append(ids, h.ID)
	}
	history, err := s.checkinRepo.ListByHabitIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	rangeByHabit := make(map[int64][]domain.CheckIn)
	for _, c := range inRange {
		rangeByHabit[c.HabitID] = append(rangeByHabit[c.HabitID], c)
	}

	now := s.clock.Now()
	totalDaysPossible := 0
	totalDaysCompleted := 0

	for _, h := range habits {
		doneOn := make(map[string]bool)
		for _, c := range engine.FirstPerDate(engine.SortNewestFirst(rangeByHabit[h.ID])) {
			if c.Completed {
				doneOn[c.Date.String()] = true
			}
		}

		hStat := domain.HabitStat{
			HabitID:       h.ID,
			HabitName:     h.Name,
			Category:      h.Category,
			Frequency:     h.Frequency,
			CurrentStreak: engine.EvaluateHabit(h, history[h.ID], now).Streak,
			DailyProgress: make([]int, 0, endDate.DaysSince(startDate)+1),
		}

		daysInPeriod := 0
		for d := startDate; !d.After(endDate.Time); d = d.AddDays(1) {
			if doneOn[d.String()] {
				hStat.DailyProgress = append(hStat.DailyProgress, 1)
				hStat.DaysCompleted++
			} else {
				hStat.DailyProgress = append(hStat.DailyProgress, 0)
			}
			daysInPeriod++
		}

		totalDaysPossible += daysInPeriod
		totalDaysCompleted += hStat.DaysCompleted

		if daysInPeriod > 0 {
			hStat.CompletionRate = float64(hStat.DaysCompleted) / float64(daysInPeriod) * 100
		}

		stats.HabitStats = append(stats.HabitStats, hStat)
	}

	if totalDaysPossible > 0 {
		stats.OverallRate = float64(totalDaysCompleted) / float64(totalDaysPossible) * 100
	}

	return stats, nil
}
