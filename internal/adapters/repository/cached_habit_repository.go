package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/comitanigiacomo/habit-hero/internal/core/domain"
	"github.com/comitanigiacomo/habit-hero/internal/logger"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

var _ domain.HabitRepository = (*CachedHabitRepository)(nil)

const habitListTTL = 30 * time.Minute

// CachedHabitRepository keeps each user's habit list in Redis. Habits never
// change after creation, so only Create and Delete invalidate.
type CachedHabitRepository struct {
	next  domain.HabitRepository
	cache *redis.Client
	log   *zap.Logger
}

func NewCachedHabitRepository(next domain.HabitRepository, cache *redis.Client, log *zap.Logger) *CachedHabitRepository {
	return &CachedHabitRepository{
		next:  next,
		cache: cache,
		log:   logger.OrNop(log).Named("habit_cache"),
	}
}

func (r *CachedHabitRepository) cacheKey(userID int64) string {
	return fmt.Sprintf("habits:%d", userID)
}

func (r *CachedHabitRepository) invalidate(ctx context.Context, userID int64) {
	if err := r.cache.Del(ctx, r.cacheKey(userID)).Err(); err != nil {
		r.log.Warn("failed to invalidate", zap.Int64("user_id", userID), zap.Error(err))
	}
}

func (r *CachedHabitRepository) ListByUserID(ctx context.Context, userID int64) ([]*domain.Habit, error) {
	key := r.cacheKey(userID)

	val, err := r.cache.Get(ctx, key).Result()
	if err == nil {
		var habits []*domain.Habit
		if err := json.Unmarshal([]byte(val), &habits); err == nil {
			return habits, nil
		}

		r.log.Warn("corrupted cache entry, cleaning up", zap.String("key", key))
		r.cache.Del(ctx, key)
	} else if !errors.Is(err, redis.Nil) {
		r.log.Warn("redis read error", zap.Error(err))
	}

	habits, err := r.next.ListByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(habits); err == nil {
		if setErr := r.cache.Set(ctx, key, data, habitListTTL).Err(); setErr != nil {
			r.log.Warn("redis set error", zap.Error(setErr))
		}
	}

	return habits, nil
}

func (r *CachedHabitRepository) GetByID(ctx context.Context, id int64) (*domain.Habit, error) {
	return r.next.GetByID(ctx, id)
}

func (r *CachedHabitRepository) ListIDs(ctx context.Context) ([]int64, error) {
	return r.next.ListIDs(ctx)
}

func (r *CachedHabitRepository) Create(ctx context.Context, habit *domain.Habit, placeholder *domain.CheckIn) error {
	if err := r.next.Create(ctx, habit, placeholder); err != nil {
		return err
	}
	r.invalidate(ctx, habit.UserID)
	return nil
}

func (r *CachedHabitRepository) Delete(ctx context.Context, id int64) error {
	habit, err := r.next.GetByID(ctx, id)
	if err == nil && habit != nil {
		defer r.invalidate(ctx, habit.UserID)
	}

	return r.next.Delete(ctx, id)
}
