package repository

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/comitanigiacomo/habit-hero/internal/core/domain"
	"github.com/comitanigiacomo/habit-hero/internal/core/engine"
)

var memNow = time.Date(2024, 3, 14, 12, 0, 0, 0, time.UTC)

func seedUserAndHabit(t *testing.T, store *MemoryStore) (*domain.User, *domain.Habit) {
	t.Helper()
	ctx := context.Background()

	user, err := domain.NewUser("alice", "alice@example.com", memNow)
	require.NoError(t, err)
	require.NoError(t, store.Users().Create(ctx, user))

	habit, err := domain.NewHabit(user.ID, "Read", "learning", "daily", nil, nil, domain.Date{}, memNow)
	require.NoError(t, err)
	placeholder := domain.NewPlaceholderCheckIn(0, domain.DateOf(memNow))
	require.NoError(t, store.Habits().Create(ctx, habit, &placeholder))

	return user, habit
}

func TestMemoryStore_Users(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	users := store.Users()

	u, err := domain.NewUser("bob", "bob@example.com", memNow)
	require.NoError(t, err)
	require.NoError(t, users.Create(ctx, u))
	assert.Equal(t, int64(1), u.ID)

	dup, _ := domain.NewUser("bobby", "BOB@example.com", memNow)
	assert.ErrorIs(t, users.Create(ctx, dup), domain.ErrEmailAlreadyExists)

	got, err := users.GetByEmail(ctx, "bob@example.com")
	require.NoError(t, err)
	assert.Equal(t, "bob", got.Username)

	_, err = users.GetByID(ctx, 99)
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}

func TestMemoryStore_HabitLifecycle(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	user, habit := seedUserAndHabit(t, store)

	assert.Equal(t, int64(1), habit.ID)

	checkins, err := store.CheckIns().ListByHabitID(ctx, habit.ID)
	require.NoError(t, err)
	require.Len(t, checkins, 1, "placeholder stored with the habit")
	assert.False(t, checkins[0].Completed)
	assert.Equal(t, domain.DateOf(memNow), checkins[0].Date)

	second, _ := domain.NewHabit(user.ID, "Walk", "health", "daily", nil, nil, domain.Date{}, memNow)
	require.NoError(t, store.Habits().Create(ctx, second, nil))

	list, err := store.Habits().ListByUserID(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, []int64{1, 2}, []int64{list[0].ID, list[1].ID})

	ids, err := store.Habits().ListIDs(ctx)
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 2}, ids)

	require.NoError(t, store.Habits().Delete(ctx, habit.ID))
	_, err = store.Habits().GetByID(ctx, habit.ID)
	assert.ErrorIs(t, err, domain.ErrHabitNotFound)

	checkins, err = store.CheckIns().ListByHabitID(ctx, habit.ID)
	require.NoError(t, err)
	assert.Empty(t, checkins, "check-ins go with the habit")

	assert.ErrorIs(t, store.Habits().Delete(ctx, habit.ID), domain.ErrHabitNotFound)
}

func TestMemoryStore_HabitRequiresUser(t *testing.T) {
	store := NewMemoryStore()
	habit, _ := domain.NewHabit(42, "Read", "learning", "daily", nil, nil, domain.Date{}, memNow)

	err := store.Habits().Create(context.Background(), habit, nil)

	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}

func TestMemoryStore_Mutate(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	_, habit := seedUserAndHabit(t, store)
	repo := store.CheckIns()
	today := domain.DateOf(memNow)
	yesterday := today.AddDays(-1)

	t.Run("Completes the placeholder in place", func(t *testing.T) {
		saved, err := repo.Mutate(ctx, habit.ID, today, func(existing *domain.CheckIn) (domain.CheckIn, error) {
			require.NotNil(t, existing)
			return engine.MarkCompleted(habit.ID, existing, today, memNow), nil
		})
		require.NoError(t, err)
		assert.Equal(t, int64(1), saved.ID)

		all, _ := repo.ListByHabitID(ctx, habit.ID)
		require.Len(t, all, 1)
		assert.True(t, all[0].Completed)
	})

	t.Run("Creates a record for a new day", func(t *testing.T) {
		saved, err := repo.Mutate(ctx, habit.ID, yesterday, func(existing *domain.CheckIn) (domain.CheckIn, error) {
			assert.Nil(t, existing)
			return engine.MarkCompleted(habit.ID, existing, yesterday, memNow), nil
		})
		require.NoError(t, err)
		assert.NotZero(t, saved.ID)

		all, _ := repo.ListByHabitID(ctx, habit.ID)
		require.Len(t, all, 2)
		assert.Equal(t, today, all[0].Date, "newest first")
	})

	t.Run("Mutation error leaves storage alone", func(t *testing.T) {
		missing := today.AddDays(-10)
		_, err := repo.Mutate(ctx, habit.ID, missing, func(existing *domain.CheckIn) (domain.CheckIn, error) {
			return engine.MarkIncomplete(habit.ID, existing, missing)
		})
		assert.ErrorIs(t, err, domain.ErrCheckInNotFound)

		all, _ := repo.ListByHabitID(ctx, habit.ID)
		assert.Len(t, all, 2)
	})

	t.Run("Unknown habit", func(t *testing.T) {
		_, err := repo.Mutate(ctx, 999, today, func(existing *domain.CheckIn) (domain.CheckIn, error) {
			return engine.MarkCompleted(999, existing, today, memNow), nil
		})
		assert.ErrorIs(t, err, domain.ErrHabitNotFound)
	})
}

func TestMemoryStore_MutateIsSerialized(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	_, habit := seedUserAndHabit(t, store)
	repo := store.CheckIns()
	day := domain.DateOf(memNow).AddDays(-3)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, _ = repo.Mutate(ctx, habit.ID, day, func(existing *domain.CheckIn) (domain.CheckIn, error) {
				if i%2 == 0 {
					return engine.MarkCompleted(habit.ID, existing, day, memNow), nil
				}
				return engine.MarkIncomplete(habit.ID, existing, day)
			})
		}(i)
	}
	wg.Wait()

	all, err := repo.ListByHabitID(ctx, habit.ID)
	require.NoError(t, err)

	var onDay []domain.CheckIn
	for _, c := range all {
		if c.Date.SameDay(day) {
			onDay = append(onDay, c)
		}
	}
	require.Len(t, onDay, 1, "never more than one record per day")
	assert.Equal(t, onDay[0].Completed, onDay[0].CompletedAt != nil)
}

func TestMemoryStore_Lists(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	user, habit := seedUserAndHabit(t, store)
	repo := store.CheckIns()
	today := domain.DateOf(memNow)

	for _, d := range []domain.Date{today.AddDays(-1), today.AddDays(-5)} {
		_, err := repo.Mutate(ctx, habit.ID, d, func(existing *domain.CheckIn) (domain.CheckIn, error) {
			return engine.MarkCompleted(habit.ID, existing, d, memNow), nil
		})
		require.NoError(t, err)
	}

	byHabit, err := repo.ListByHabitIDs(ctx, []int64{habit.ID, 77})
	require.NoError(t, err)
	assert.Len(t, byHabit[habit.ID], 3)
	assert.Empty(t, byHabit[77])

	inRange, err := repo.ListByUserIDAndDateRange(ctx, user.ID, today.AddDays(-2), today)
	require.NoError(t, err)
	assert.Len(t, inRange, 2)

	other, err := repo.ListByUserIDAndDateRange(ctx, user.ID+1, today.AddDays(-30), today)
	require.NoError(t, err)
	assert.Empty(t, other)
}
