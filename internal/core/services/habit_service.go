package services

import (
	"context"
	"fmt"

	"github.com/comitanigiacomo/habit-hero/internal/core/domain"
)

type HabitService struct {
	repo  domain.HabitRepository
	clock domain.Clock
}

func NewHabitService(repo domain.HabitRepository, clock domain.Clock) *HabitService {
	return &HabitService{
		repo:  repo,
		clock: clock,
	}
}

type CreateHabitInput struct {
	UserID        int64
	Name          string
	Category      string
	Frequency     string
	TargetDay     *string
	IntervalHours *int
	StartDate     domain.Date
}

// Create validates and stores a new habit. The repository stores it together
// with an open check-in for today so the habit shows up as pending at once.
func (s *HabitService) Create(ctx context.Context, input CreateHabitInput) (*domain.Habit, error) {
	now := s.clock.Now()

	habit, err := domain.NewHabit(
		input.UserID,
		input.Name,
		input.Category,
		input.Frequency,
		input.TargetDay,
		input.IntervalHours,
		input.StartDate,
		now,
	)
	if err != nil {
		return nil, err
	}

	placeholder := domain.NewPlaceholderCheckIn(0, s.clock.Today())

	if err := s.repo.Create(ctx, habit, &placeholder); err != nil {
		return nil, fmt.Errorf("habit service: failed to create habit: %w", err)
	}

	return habit, nil
}

func (s *HabitService) ListByUserID(ctx context.Context, userID int64) ([]*domain.Habit, error) {
	return s.repo.ListByUserID(ctx, userID)
}

// GetByID hides habits of other users behind ErrHabitNotFound.
func (s *HabitService) GetByID(ctx context.Context, id, userID int64) (*domain.Habit, error) {
	habit, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if habit.UserID != userID {
		return nil, domain.ErrHabitNotFound
	}

	return habit, nil
}

func (s *HabitService) Delete(ctx context.Context, id, userID int64) error {
	if _, err := s.GetByID(ctx, id, userID); err != nil {
		return err
	}

	return s.repo.Delete(ctx, id)
}
