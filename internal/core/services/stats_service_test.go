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

func TestStatsService_GetCompletionStats(t *testing.T) {
	ctx := context.Background()
	userID := int64(7)

	startDate := domain.NewDate(2024, 3, 12)
	endDate := domain.NewDate(2024, 3, 14)

	newSvc := func() (*services.StatsService, *MockHabitRepo, *MockCheckInRepo) {
		habitRepo := new(MockHabitRepo)
		checkinRepo := new(MockCheckInRepo)
		return services.NewStatsService(habitRepo, checkinRepo, domain.NewFixedClock(testNow)), habitRepo, checkinRepo
	}

	t.Run("Success: Calculates rates and fills missing days correctly", func(t *testing.T) {
		svc, habitRepo, checkinRepo := newSvc()

		habits := []*domain.Habit{
			{ID: 1, UserID: userID, Name: "Drink Water", Category: "health", Frequency: domain.HabitFreqDaily},
			{ID: 2, UserID: userID, Name: "Read", Category: "learning", Frequency: domain.HabitFreqDaily},
		}
		habitRepo.On("ListByUserID", ctx, userID).Return(habits, nil)

		h1First := completedOn(startDate)
		h1First.HabitID = 1
		h1Last := completedOn(endDate)
		h1Last.HabitID = 1
		h2Open := domain.CheckIn{HabitID: 2, Date: endDate}
		inRange := []domain.CheckIn{h1First, h1Last, h2Open}

		checkinRepo.On("ListByUserIDAndDateRange", ctx, userID, startDate, endDate).Return(inRange, nil)
		checkinRepo.On("ListByHabitIDs", ctx, []int64{1, 2}).Return(map[int64][]domain.CheckIn{
			1: {h1First, h1Last},
			2: {h2Open},
		}, nil)

		stats, err := svc.GetCompletionStats(ctx, domain.StatsInput{UserID: userID, StartDate: startDate, EndDate: endDate})

		require.NoError(t, err)
		require.NotNil(t, stats)

		assert.Equal(t, 2, stats.TotalHabits)
		assert.Equal(t, "2024-03-12", stats.StartDate)
		assert.Equal(t, "2024-03-14", stats.EndDate)

		h1 := findHabitStat(stats.HabitStats, 1)
		require.NotNil(t, h1)
		assert.Equal(t, []int{1, 0, 1}, h1.DailyProgress)
		assert.Equal(t, 2, h1.DaysCompleted)
		assert.InDelta(t, 66.67, h1.CompletionRate, 0.1)
		assert.Equal(t, 1, h1.CurrentStreak)

		h2 := findHabitStat(stats.HabitStats, 2)
		require.NotNil(t, h2)
		assert.Equal(t, []int{0, 0, 0}, h2.DailyProgress)
		assert.Equal(t, 0, h2.CurrentStreak)

		assert.InDelta(t, 33.33, stats.OverallRate, 0.1)
	})

	t.Run("Edge Case: No Habits returns zero stats", func(t *testing.T) {
		svc, habitRepo, checkinRepo := newSvc()
		habitRepo.On("ListByUserID", ctx, userID).Return([]*domain.Habit{}, nil)

		stats, err := svc.GetCompletionStats(ctx, domain.StatsInput{UserID: userID, StartDate: startDate, EndDate: endDate})

		require.NoError(t, err)
		assert.Equal(t, 0, stats.TotalHabits)
		assert.Equal(t, 0.0, stats.OverallRate)
		assert.Empty(t, stats.HabitStats)
		checkinRepo.AssertNotCalled(t, "ListByUserIDAndDateRange", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Fail: Inverted or oversized range", func(t *testing.T) {
		svc, habitRepo, _ := newSvc()

		_, err := svc.GetCompletionStats(ctx, domain.StatsInput{UserID: userID, StartDate: endDate, EndDate: startDate})
		assert.ErrorIs(t, err, domain.ErrInvalidDateRange)

		_, err = svc.GetCompletionStats(ctx, domain.StatsInput{
			UserID:    userID,
			StartDate: domain.NewDate(2023, 1, 1),
			EndDate:   domain.NewDate(2024, 1, 2),
		})
		assert.ErrorIs(t, err, domain.ErrInvalidDateRange)

		habitRepo.AssertNotCalled(t, "ListByUserID", mock.Anything, mock.Anything)
	})

	t.Run("Fail: Habit Repo Error propagates", func(t *testing.T) {
		svc, habitRepo, _ := newSvc()
		dbErr := errors.New("db connection lost")
		habitRepo.On("ListByUserID", ctx, userID).Return(nil, dbErr)

		stats, err := svc.GetCompletionStats(ctx, domain.StatsInput{UserID: userID, StartDate: startDate, EndDate: endDate})

		assert.ErrorIs(t, err, dbErr)
		assert.Nil(t, stats)
	})

	t.Run("Fail: Check-in Repo Error propagates", func(t *testing.T) {
		svc, habitRepo, checkinRepo := newSvc()
		habitRepo.On("ListByUserID", ctx, userID).Return([]*domain.Habit{{ID: 1}}, nil)
		dbErr := errors.New("query timeout")
		checkinRepo.On("ListByUserIDAndDateRange", ctx, userID, mock.Anything, mock.Anything).Return(nil, dbErr)

		stats, err := svc.GetCompletionStats(ctx, domain.StatsInput{UserID: userID, StartDate: startDate, EndDate: endDate})

		assert.ErrorIs(t, err, dbErr)
		assert.Nil(t, stats)
	})
}

func findHabitStat(stats []domain.HabitStat, habitID int64) *domain.HabitStat {
	for _, s := range stats {
		if s.HabitID == habitID {
			return &s
		}
	}
	return nil
}
