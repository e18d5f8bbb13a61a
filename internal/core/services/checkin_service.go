package services

import (
	"context"

	"github.com/comitanigiacomo/habit-hero/internal/core/domain"
	"github.com/comitanigiacomo/habit-hero/internal/core/engine"
	"github.com/comitanigiacomo/habit-hero/internal/metrics"
)

// StreakEnqueuer schedules an asynchronous re-evaluation of a habit.
type StreakEnqueuer interface {
	Enqueue(habitID int64)
}

type CheckInService struct {
	repo      domain.CheckInRepository
	habitRepo domain.HabitRepository
	clock     domain.Clock
	worker    StreakEnqueuer
}

func NewCheckInService(repo domain.CheckInRepository, habitRepo domain.HabitRepository, clock domain.Clock, worker StreakEnqueuer) *CheckInService {
	return &CheckInService{
		repo:      repo,
		habitRepo: habitRepo,
		clock:     clock,
		worker:    worker,
	}
}

type CompleteInput struct {
	HabitID int64
	UserID  int64
	Date    *domain.Date
	Note    *string
}

type UndoInput struct {
	HabitID int64
	UserID  int64
	Date    *domain.Date
}

func (s *CheckInService) MarkCompleted(ctx context.Context, input CompleteInput) (*domain.CheckIn, error) {
	if err := s.authorize(ctx, input.HabitID, input.UserID); err != nil {
		return nil, err
	}

	date := s.dateOrToday(input.Date)
	now := s.clock.Now()

	saved, err := s.repo.Mutate(ctx, input.HabitID, date, func(existing *domain.CheckIn) (domain.CheckIn, error) {
		next := engine.MarkCompleted(input.HabitID, existing, date, now)
		if input.Note != nil {
			next.Note = input.Note
		}
		return next, nil
	})
	metrics.RecordCheckInMutation("complete", err)
	if err != nil {
		return nil, err
	}

	s.enqueue(input.HabitID)

	return saved, nil
}

// MarkIncomplete reopens an existing check-in. It never creates one, so
// undoing a day that was never recorded yields ErrCheckInNotFound.
func (s *CheckInService) MarkIncomplete(ctx context.Context, input UndoInput) (*domain.CheckIn, error) {
	if err := s.authorize(ctx, input.HabitID, input.UserID); err != nil {
		return nil, err
	}

	date := s.dateOrToday(input.Date)

	saved, err := s.repo.Mutate(ctx, input.HabitID, date, func(existing *domain.CheckIn) (domain.CheckIn, error) {
		return engine.MarkIncomplete(input.HabitID, existing, date)
	})
	metrics.RecordCheckInMutation("undo", err)
	if err != nil {
		return nil, err
	}

	s.enqueue(input.HabitID)

	return saved, nil
}

func (s *CheckInService) ListByHabitID(ctx context.Context, habitID, userID int64) ([]domain.CheckIn, error) {
	if err := s.authorize(ctx, habitID, userID); err != nil {
		return nil, err
	}

	return s.repo.ListByHabitID(ctx, habitID)
}

func (s *CheckInService) authorize(ctx context.Context, habitID, userID int64) error {
	habit, err := s.habitRepo.GetByID(ctx, habitID)
	if err != nil {
		return err
	}
	if habit.UserID != userID {
		return domain.ErrUnauthorized
	}
	return nil
}

func (s *CheckInService) dateOrToday(d *domain.Date) domain.Date {
	if d == nil || d.IsZero() {
		return s.clock.Today()
	}
	return *d
}

func (s *CheckInService) enqueue(habitID int64) {
	if s.worker != nil {
		s.worker.Enqueue(habitID)
	}
}
