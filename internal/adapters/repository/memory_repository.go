package repository

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/comitanigiacomo/habit-hero/internal/core/domain"
)

// MemoryStore backs the in-memory repositories. The three repositories share
// one lock so that deleting a habit and its check-ins is atomic, and so that
// Mutate is serialized for every key.
type MemoryStore struct {
	mu sync.RWMutex

	users    map[int64]*domain.User
	habits   map[int64]*domain.Habit
	checkins map[int64]*domain.CheckIn

	nextUserID    int64
	nextHabitID   int64
	nextCheckInID int64
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:    make(map[int64]*domain.User),
		habits:   make(map[int64]*domain.Habit),
		checkins: make(map[int64]*domain.CheckIn),
	}
}

func (s *MemoryStore) Users() *InMemoryUserRepository       { return &InMemoryUserRepository{s} }
func (s *MemoryStore) Habits() *InMemoryHabitRepository     { return &InMemoryHabitRepository{s} }
func (s *MemoryStore) CheckIns() *InMemoryCheckInRepository { return &InMemoryCheckInRepository{s} }

var (
	_ domain.UserRepository    = (*InMemoryUserRepository)(nil)
	_ domain.HabitRepository   = (*InMemoryHabitRepository)(nil)
	_ domain.CheckInRepository = (*InMemoryCheckInRepository)(nil)
)

type InMemoryUserRepository struct {
	s *MemoryStore
}

func (r *InMemoryUserRepository) Create(ctx context.Context, user *domain.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, u := range r.s.users {
		if strings.EqualFold(u.Email, user.Email) || u.Username == user.Username {
			return domain.ErrEmailAlreadyExists
		}
	}

	r.s.nextUserID++
	user.ID = r.s.nextUserID
	clone := *user
	r.s.users[user.ID] = &clone
	return nil
}

func (r *InMemoryUserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, u := range r.s.users {
		if strings.EqualFold(u.Email, email) {
			clone := *u
			return &clone, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *InMemoryUserRepository) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	u, ok := r.s.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	clone := *u
	return &clone, nil
}

type InMemoryHabitRepository struct {
	s *MemoryStore
}

func (r *InMemoryHabitRepository) Create(ctx context.Context, habit *domain.Habit, placeholder *domain.CheckIn) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.users[habit.UserID]; !ok {
		return domain.ErrUserNotFound
	}

	r.s.nextHabitID++
	habit.ID = r.s.nextHabitID
	clone := *habit
	r.s.habits[habit.ID] = &clone

	if placeholder != nil {
		placeholder.HabitID = habit.ID
		r.s.insertCheckIn(placeholder)
	}
	return nil
}

func (r *InMemoryHabitRepository) GetByID(ctx context.Context, id int64) (*domain.Habit, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	habit, ok := r.s.habits[id]
	if !ok {
		return nil, domain.ErrHabitNotFound
	}
	clone := *habit
	return &clone, nil
}

func (r *InMemoryHabitRepository) ListByUserID(ctx context.Context, userID int64) ([]*domain.Habit, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	habits := []*domain.Habit{}
	for _, h := range r.s.habits {
		if h.UserID == userID {
			clone := *h
			habits = append(habits, &clone)
		}
	}

	slices.SortFunc(habits, func(a, b *domain.Habit) int {
		return cmp.Compare(a.ID, b.ID)
	})

	return habits, nil
}

func (r *InMemoryHabitRepository) ListIDs(ctx context.Context) ([]int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	ids := make([]int64, 0, len(r.s.habits))
	for id := range r.s.habits {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids, nil
}

func (r *InMemoryHabitRepository) Delete(ctx context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.habits[id]; !ok {
		return domain.ErrHabitNotFound
	}

	delete(r.s.habits, id)
	for cid, c := range r.s.checkins {
		if c.HabitID == id {
			delete(r.s.checkins, cid)
		}
	}
	return nil
}

type InMemoryCheckInRepository struct {
	s *MemoryStore
}

func (r *InMemoryCheckInRepository) ListByHabitID(ctx context.Context, habitID int64) ([]domain.CheckIn, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	return r.s.checkinsWhere(func(c *domain.CheckIn) bool { return c.HabitID == habitID }), nil
}

func (r *InMemoryCheckInRepository) ListByHabitIDs(ctx context.Context, habitIDs []int64) (map[int64][]domain.CheckIn, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make(map[int64][]domain.CheckIn, len(habitIDs))
	for _, c := range r.s.checkinsWhere(func(c *domain.CheckIn) bool { return slices.Contains(habitIDs, c.HabitID) }) {
		out[c.HabitID] = append(out[c.HabitID], c)
	}
	return out, nil
}

func (r *InMemoryCheckInRepository) ListByUserIDAndDateRange(ctx context.Context, userID int64, from, to domain.Date) ([]domain.CheckIn, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	return r.s.checkinsWhere(func(c *domain.CheckIn) bool {
		h, ok := r.s.habits[c.HabitID]
		return ok && h.UserID == userID && !c.Date.Before(from.Time) && !c.Date.After(to.Time)
	}), nil
}

func (r *InMemoryCheckInRepository) Mutate(ctx context.Context, habitID int64, date domain.Date, fn domain.CheckInMutation) (*domain.CheckIn, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.habits[habitID]; !ok {
		return nil, domain.ErrHabitNotFound
	}

	var existing *domain.CheckIn
	found := r.s.checkinsWhere(func(c *domain.CheckIn) bool {
		return c.HabitID == habitID && c.Date.SameDay(date)
	})
	if len(found) > 0 {
		existing = &found[0]
	}

	next, err := fn(existing)
	if err != nil {
		return nil, err
	}

	if next.ID == 0 {
		r.s.insertCheckIn(&next)
	} else {
		if _, ok := r.s.checkins[next.ID]; !ok {
			return nil, fmt.Errorf("%w: id %d", domain.ErrCheckInNotFound, next.ID)
		}
		clone := next
		r.s.checkins[next.ID] = &clone
	}

	return &next, nil
}

// insertCheckIn expects the write lock to be held.
func (s *MemoryStore) insertCheckIn(c *domain.CheckIn) {
	s.nextCheckInID++
	c.ID = s.nextCheckInID
	clone := *c
	s.checkins[c.ID] = &clone
}

// checkinsWhere returns copies sorted newest date first, then by id. It
// expects a lock to be held.
func (s *MemoryStore) checkinsWhere(keep func(*domain.CheckIn) bool) []domain.CheckIn {
	out := []domain.CheckIn{}
	for _, c := range s.checkins {
		if keep(c) {
			out = append(out, *c)
		}
	}
	slices.SortFunc(out, func(a, b domain.CheckIn) int {
		if c := b.Date.Compare(a.Date.Time); c != 0 {
			return c
		}
		if c := cmp.Compare(a.HabitID, b.HabitID); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
	return out
}
