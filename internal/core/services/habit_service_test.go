package services_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/comitanigiacomo/habit-hero/internal/core/domain"
	"github.com/comitanigiacomo/habit-hero/internal/core/services"
)

func newHabitService(repo domain.HabitRepository) *services.HabitService {
	return services.NewHabitService(repo, domain.NewFixedClock(testNow))
}

func TestHabitService_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("Success: Stores habit with an open check-in for today", func(t *testing.T) {
		repo := new(MockHabitRepo)
		svc := newHabitService(repo)

		var placeholder *domain.CheckIn
		repo.On("Create", ctx, mock.AnythingOfType("*domain.Habit"), mock.AnythingOfType("*domain.CheckIn")).
			Run(func(args mock.Arguments) {
				placeholder = args.Get(2).(*domain.CheckIn)
			}).
			Return(nil)

		habit, err := svc.Create(ctx, services.CreateHabitInput{
			UserID:   7,
			Name:     "  Read  ",
			Category: "learning",
		})

		require.NoError(t, err)
		assert.Equal(t, int64(1), habit.ID)
		assert.Equal(t, "Read", habit.Name)
		assert.Equal(t, domain.HabitFreqDaily, habit.Frequency)
		assert.Equal(t, "2024-03-14", habit.StartDate.String())

		require.NotNil(t, placeholder)
		assert.Equal(t, habit.ID, placeholder.HabitID)
		assert.Equal(t, "2024-03-14", placeholder.Date.String())
		assert.False(t, placeholder.Completed)
		assert.Nil(t, placeholder.CompletedAt)

		repo.AssertExpectations(t)
	})

	t.Run("Success: Weekly habit keeps its target day", func(t *testing.T) {
		repo := new(MockHabitRepo)
		svc := newHabitService(repo)
		repo.On("Create", ctx, mock.Anything, mock.Anything).Return(nil)

		habit, err := svc.Create(ctx, services.CreateHabitInput{
			UserID:    7,
			Name:      "Long run",
			Category:  "fitness",
			Frequency: "Weekly",
			TargetDay: ptr("Sunday"),
		})

		require.NoError(t, err)
		assert.Equal(t, domain.HabitFreqWeekly, habit.Frequency)
		assert.Equal(t, "Sunday", *habit.TargetDay)
	})

	t.Run("Fail: Validation error never reaches the repository", func(t *testing.T) {
		repo := new(MockHabitRepo)
		svc := newHabitService(repo)

		_, err := svc.Create(ctx, services.CreateHabitInput{
			UserID:        7,
			Name:          "Stretch",
			Category:      "health",
			Frequency:     "hourly",
			IntervalHours: ptr(0),
		})

		assert.ErrorIs(t, err, domain.ErrInvalidInterval)
		repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Fail: Repository error is wrapped", func(t *testing.T) {
		repo := new(MockHabitRepo)
		svc := newHabitService(repo)
		dbErr := errors.New("connection reset")
		repo.On("Create", ctx, mock.Anything, mock.Anything).Return(dbErr)

		_, err := svc.Create(ctx, services.CreateHabitInput{UserID: 7, Name: "Read", Category: "learning"})

		assert.ErrorIs(t, err, dbErr)
		assert.Contains(t, err.Error(), "habit service")
	})
}

func TestHabitService_GetAndDelete(t *testing.T) {
	ctx := context.Background()
	owned := &domain.Habit{ID: 3, UserID: 7, Name: "Read", Frequency: domain.HabitFreqDaily}

	t.Run("Get: Owner sees the habit", func(t *testing.T) {
		repo := new(MockHabitRepo)
		repo.On("GetByID", ctx, int64(3)).Return(owned, nil)

		got, err := newHabitService(repo).GetByID(ctx, 3, 7)

		require.NoError(t, err)
		assert.Equal(t, owned, got)
	})

	t.Run("Get: Other users get not found", func(t *testing.T) {
		repo := new(MockHabitRepo)
		repo.On("GetByID", ctx, int64(3)).Return(owned, nil)

		_, err := newHabitService(repo).GetByID(ctx, 3, 99)

		assert.ErrorIs(t, err, domain.ErrHabitNotFound)
	})

	t.Run("Delete: Owner deletes", func(t *testing.T) {
		repo := new(MockHabitRepo)
		repo.On("GetByID", ctx, int64(3)).Return(owned, nil)
		repo.On("Delete", ctx, int64(3)).Return(nil)

		err := newHabitService(repo).Delete(ctx, 3, 7)

		assert.NoError(t, err)
		repo.AssertExpectations(t)
	})

	t.Run("Delete: Foreign habit is left alone", func(t *testing.T) {
		repo := new(MockHabitRepo)
		repo.On("GetByID", ctx, int64(3)).Return(owned, nil)

		err := newHabitService(repo).Delete(ctx, 3, 99)

		assert.ErrorIs(t, err, domain.ErrHabitNotFound)
		repo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
	})

	t.Run("Delete: Missing habit", func(t *testing.T) {
		repo := new(MockHabitRepo)
		repo.On("GetByID", ctx, int64(404)).Return(nil, domain.ErrHabitNotFound)

		err := newHabitService(repo).Delete(ctx, 404, 7)

		assert.ErrorIs(t, err, domain.ErrHabitNotFound)
	})
}

func TestHabitService_ListByUserID(t *testing.T) {
	ctx := context.Background()
	repo := new(MockHabitRepo)
	habits := []*domain.Habit{{ID: 2, UserID: 7}, {ID: 1, UserID: 7}}
	repo.On("ListByUserID", ctx, int64(7)).Return(habits, nil)

	got, err := newHabitService(repo).ListByUserID(ctx, 7)

	require.NoError(t, err)
	assert.Equal(t, habits, got)
}
