package workers

import (
	"context"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/comitanigiacomo/habit-hero/internal/core/domain"
	"github.com/comitanigiacomo/habit-hero/internal/core/engine"
	"github.com/comitanigiacomo/habit-hero/internal/logger"
	"github.com/comitanigiacomo/habit-hero/internal/metrics"
)

type HabitRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Habit, error)
}

type CheckInRepository interface {
	ListByHabitID(ctx context.Context, habitID int64) ([]domain.CheckIn, error)
}

type StreakJob struct {
	HabitID int64
}

const defaultQueueSize = 100

// StreakWorker re-evaluates habits off the request path. It remembers the
// last streak it saw per habit and publishes an event when that changes.
type StreakWorker struct {
	habitRepo   HabitRepository
	checkinRepo CheckInRepository
	publisher   domain.EventPublisher
	clock       domain.Clock
	log         *zap.Logger
	jobs        chan StreakJob
	started     atomic.Bool
	done        chan struct{}

	mu       sync.Mutex
	lastSeen map[int64]int
}

func NewStreakWorker(hRepo HabitRepository, cRepo CheckInRepository, publisher domain.EventPublisher, clock domain.Clock, log *zap.Logger, queueSize int) *StreakWorker {
	if queueSize <= 0 {
		queueSize = defaultQueueSize
	}
	return &StreakWorker{
		habitRepo:   hRepo,
		checkinRepo: cRepo,
		publisher:   publisher,
		clock:       clock,
		log:         logger.OrNop(log).Named("streak_worker"),
		jobs:        make(chan StreakJob, queueSize),
		done:        make(chan struct{}),
		lastSeen:    make(map[int64]int),
	}
}

// Start runs the worker until ctx is canceled. Only the first call starts a
// goroutine.
func (w *StreakWorker) Start(ctx context.Context) {
	if !w.started.CompareAndSwap(false, true) {
		return
	}
	go func() {
		defer close(w.done)
		w.log.Info("streak worker started")
		for {
			select {
			case job := <-w.jobs:
				w.processJob(ctx, job)
			case <-ctx.Done():
				w.log.Info("streak worker shutting down")
				return
			}
		}
	}()
}

// Wait blocks until the goroutine launched by Start has returned, including
// any job it was processing, or until ctx is done. A worker that was never
// started has nothing to wait for.
func (w *StreakWorker) Wait(ctx context.Context) error {
	if w == nil || !w.started.Load() {
		return nil
	}
	select {
	case <-w.done:
		return nil
	default:
	}
	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Enqueue never blocks. A full queue drops the job; the next scheduled pass
// picks the habit up again.
func (w *StreakWorker) Enqueue(habitID int64) {
	if w == nil {
		return
	}
	select {
	case w.jobs <- StreakJob{HabitID: habitID}:
	default:
		metrics.IncWorkerDropped()
		w.log.Warn("streak worker queue full, dropping job", zap.Int64("habit_id", habitID))
	}
}

// EnqueueWait blocks until the job is queued or ctx is done.
func (w *StreakWorker) EnqueueWait(ctx context.Context, habitID int64) error {
	if w == nil {
		return nil
	}
	select {
	case w.jobs <- StreakJob{HabitID: habitID}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (w *StreakWorker) processJob(ctx context.Context, job StreakJob) {
	log := w.log.With(zap.Int64("habit_id", job.HabitID))

	habit, err := w.habitRepo.GetByID(ctx, job.HabitID)
	if err != nil {
		w.forget(job.HabitID)
		log.Debug("habit not evaluated", zap.Error(err))
		return
	}

	checkins, err := w.checkinRepo.ListByHabitID(ctx, job.HabitID)
	if err != nil {
		log.Error("failed to load check-ins", zap.Error(err))
		return
	}

	now := w.clock.Now()
	record := engine.EvaluateHabit(habit, checkins, now)
	metrics.ObserveStreak(habit.Schedule().String(), record.Streak)

	previous, seen := w.swap(habit.ID, record.Streak)
	if seen && previous == record.Streak {
		return
	}

	event := domain.StreakChangedEvent{
		HabitID:    habit.ID,
		UserID:     habit.UserID,
		Frequency:  habit.Frequency,
		Previous:   previous,
		Current:    record.Streak,
		Status:     record.Status,
		OccurredAt: now,
	}
	if err := w.publisher.Publish(ctx, domain.RoutingKeyStreakChanged, event); err != nil {
		log.Error("failed to publish streak change", zap.Error(err))
		return
	}

	log.Debug("streak changed", zap.Int("previous", previous), zap.Int("current", record.Streak))
}

func (w *StreakWorker) swap(habitID int64, streak int) (int, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	previous, ok := w.lastSeen[habitID]
	w.lastSeen[habitID] = streak
	return previous, ok
}

func (w *StreakWorker) forget(habitID int64) {
	w.mu.Lock()
	defer w.mu.Unlock()
	delete(w.lastSeen, habitID)
}
