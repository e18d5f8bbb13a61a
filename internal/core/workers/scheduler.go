package workers

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/comitanigiacomo/habit-hero/internal/logger"
)

type HabitLister interface {
	ListIDs(ctx context.Context) ([]int64, error)
}

// Enqueuer queues a habit for evaluation, waiting for room rather than
// dropping it.
type Enqueuer interface {
	EnqueueWait(ctx context.Context, habitID int64) error
}

// StreakScheduler feeds every habit to the worker on a cron schedule so that
// streaks which decay with time alone are observed without a new check-in.
type StreakScheduler struct {
	cron    *cron.Cron
	ctx     context.Context
	cancel  context.CancelFunc
	habits  HabitLister
	worker  Enqueuer
	log     *zap.Logger
	timeout time.Duration
}

func NewStreakScheduler(habits HabitLister, worker Enqueuer, log *zap.Logger) *StreakScheduler {
	ctx, cancel := context.WithCancel(context.Background())
	return &StreakScheduler{
		cron:    cron.New(),
		ctx:     ctx,
		cancel:  cancel,
		habits:  habits,
		worker:  worker,
		log:     logger.OrNop(log).Named("streak_scheduler"),
		timeout: 30 * time.Second,
	}
}

// Start registers the sweep under spec (standard cron syntax or descriptors
// such as "@hourly") and starts the cron runner.
func (s *StreakScheduler) Start(spec string) error {
	if _, err := s.cron.AddFunc(spec, s.runOnce); err != nil {
		return fmt.Errorf("streak scheduler: invalid schedule %q: %w", spec, err)
	}
	s.cron.Start()
	s.log.Info("streak scheduler started", zap.String("schedule", spec))
	return nil
}

// Stop aborts a running sweep and waits for it to return or ctx to expire.
func (s *StreakScheduler) Stop(ctx context.Context) {
	stopped := s.cron.Stop()
	s.cancel()
	select {
	case <-stopped.Done():
	case <-ctx.Done():
	}
}

func (s *StreakScheduler) runOnce() {
	ctx, cancel := context.WithTimeout(s.ctx, s.timeout)
	defer cancel()

	n, err := s.Sweep(ctx)
	if err != nil {
		s.log.Error("streak sweep failed", zap.Int("queued", n), zap.Error(err))
		return
	}
	s.log.Debug("streak sweep queued habits", zap.Int("count", n))
}

// Sweep enqueues every habit once, waiting for queue space as the worker
// drains it, and reports how many were actually queued. When ctx ends first
// the sweep stops early and returns the partial count with the error.
func (s *StreakScheduler) Sweep(ctx context.Context) (int, error) {
	ids, err := s.habits.ListIDs(ctx)
	if err != nil {
		return 0, err
	}
	queued := 0
	for _, id := range ids {
		if err := s.worker.EnqueueWait(ctx, id); err != nil {
			return queued, fmt.Errorf("streak sweep stopped after %d of %d habits: %w", queued, len(ids), err)
		}
		queued++
	}
	return queued, nil
}
