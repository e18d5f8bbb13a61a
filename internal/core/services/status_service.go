package services

import (
	"context"

	"github.com/comitanigiacomo/habit-hero/internal/core/domain"
	"github.com/comitanigiacomo/habit-hero/internal/core/engine"
)

// StatusService loads habits and their check-ins and hands them to the
// engine. It adds storage and ownership concerns, nothing else.
type StatusService struct {
	habitRepo   domain.HabitRepository
	checkinRepo domain.CheckInRepository
	clock       domain.Clock
}

func NewStatusService(habitRepo domain.HabitRepository, checkinRepo domain.CheckInRepository, clock domain.Clock) *StatusService {
	return &StatusService{
		habitRepo:   habitRepo,
		checkinRepo: checkinRepo,
		clock:       clock,
	}
}

func (s *StatusService) EvaluateHabit(ctx context.Context, habitID, userID int64) (*domain.StatusRecord, error) {
	habit, err := s.ownedHabit(ctx, habitID, userID)
	if err != nil {
		return nil, err
	}

	checkins, err := s.checkinRepo.ListByHabitID(ctx, habit.ID)
	if err != nil {
		return nil, err
	}

	record := engine.EvaluateHabit(habit, checkins, s.clock.Now())
	return &record, nil
}

// EvaluateAllForUser returns one record per habit in repository order.
func (s *StatusService) EvaluateAllForUser(ctx context.Context, userID int64) ([]domain.StatusRecord, error) {
	habits, byHabit, err := s.loadUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	return engine.EvaluateAll(habits, byHabit, s.clock.Now()), nil
}

func (s *StatusService) GetStreak(ctx context.Context, habitID, userID int64) (*domain.StreakResult, error) {
	record, err := s.EvaluateHabit(ctx, habitID, userID)
	if err != nil {
		return nil, err
	}

	return &domain.StreakResult{HabitID: record.HabitID, Streak: record.Streak}, nil
}

func (s *StatusService) TodayOverview(ctx context.Context, userID int64) ([]domain.TodayEntry, error) {
	habits, byHabit, err := s.loadUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	return engine.TodayEntries(habits, byHabit, s.clock.Today()), nil
}

func (s *StatusService) IncompleteToday(ctx context.Context, userID int64) ([]domain.TodayEntry, error) {
	entries, err := s.TodayOverview(ctx, userID)
	if err != nil {
		return nil, err
	}

	open := make([]domain.TodayEntry, 0, len(entries))
	for _, e := range entries {
		if !e.Completed {
			open = append(open, e)
		}
	}
	return open, nil
}

func (s *StatusService) ownedHabit(ctx context.Context, habitID, userID int64) (*domain.Habit, error) {
	habit, err := s.habitRepo.GetByID(ctx, habitID)
	if err != nil {
		return nil, err
	}
	if habit.UserID != userID {
		return nil, domain.ErrHabitNotFound
	}
	return habit, nil
}

func (s *StatusService) loadUser(ctx context.Context, userID int64) ([]*domain.Habit, map[int64][]domain.CheckIn, error) {
	habits, err := s.habitRepo.ListByUserID(ctx, userID)
	if err != nil {
		return nil, nil, err
	}
	if len(habits) == 0 {
		return habits, map[int64][]domain.CheckIn{}, nil
	}

	ids := make([]int64, 0, len(habits))
	for _, h := range habits {
		ids = append(ids, h.ID)
	}

	byHabit, err := s.checkinRepo.ListByHabitIDs(ctx, ids)
	if err != nil {
		return nil, nil, err
	}

	return habits, byHabit, nil
}
