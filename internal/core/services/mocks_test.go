package services_test

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/comitanigiacomo/habit-hero/internal/core/domain"
)

func ptr[T any](v T) *T {
	return &v
}

var testNow = time.Date(2024, 3, 14, 18, 30, 0, 0, time.UTC)

type MockHabitRepo struct {
	mock.Mock
}

func (m *MockHabitRepo) Create(ctx context.Context, habit *domain.Habit, placeholder *domain.CheckIn) error {
	args := m.Called(ctx, habit, placeholder)
	if args.Error(0) == nil {
		habit.ID = 1
		placeholder.ID = 1
		placeholder.HabitID = habit.ID
	}
	return args.Error(0)
}

func (m *MockHabitRepo) GetByID(ctx context.Context, id int64) (*domain.Habit, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Habit), args.Error(1)
}

func (m *MockHabitRepo) ListByUserID(ctx context.Context, userID int64) ([]*domain.Habit, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Habit), args.Error(1)
}

func (m *MockHabitRepo) ListIDs(ctx context.Context) ([]int64, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]int64), args.Error(1)
}

func (m *MockHabitRepo) Delete(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

type MockCheckInRepo struct {
	mock.Mock
}

func (m *MockCheckInRepo) ListByHabitID(ctx context.Context, habitID int64) ([]domain.CheckIn, error) {
	args := m.Called(ctx, habitID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.CheckIn), args.Error(1)
}

func (m *MockCheckInRepo) ListByHabitIDs(ctx context.Context, habitIDs []int64) (map[int64][]domain.CheckIn, error) {
	args := m.Called(ctx, habitIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[int64][]domain.CheckIn), args.Error(1)
}

func (m *MockCheckInRepo) ListByUserIDAndDateRange(ctx context.Context, userID int64, from, to domain.Date) ([]domain.CheckIn, error) {
	args := m.Called(ctx, userID, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.CheckIn), args.Error(1)
}

// Mutate hands the record configured as the first return value to fn, the
// way a real repository would after reading the row under its lock.
func (m *MockCheckInRepo) Mutate(ctx context.Context, habitID int64, date domain.Date, fn domain.CheckInMutation) (*domain.CheckIn, error) {
	args := m.Called(ctx, habitID, date)
	if err := args.Error(1); err != nil {
		return nil, err
	}

	var existing *domain.CheckIn
	if e, ok := args.Get(0).(*domain.CheckIn); ok && e != nil {
		clone := *e
		existing = &clone
	}

	next, err := fn(existing)
	if err != nil {
		return nil, err
	}
	return &next, nil
}

type MockEnqueuer struct {
	mock.Mock
}

func (m *MockEnqueuer) Enqueue(habitID int64) {
	m.Called(habitID)
}
