package domain

import (
	"context"
	"errors"
)

var (
	ErrHabitNotFound = errors.New("habit not found")
)

type HabitRepository interface {
	// Create persists a new habit together with its first check-in in a
	// single transaction. Both IDs are assigned by the storage.
	Create(ctx context.Context, habit *Habit, placeholder *CheckIn) error

	// GetByID retrieves a habit by its unique identifier.
	GetByID(ctx context.Context, id int64) (*Habit, error)

	// ListByUserID retrieves all habits owned by a user, in storage order.
	ListByUserID(ctx context.Context, userID int64) ([]*Habit, error)

	// ListIDs returns the id of every habit. Used by the periodic re-evaluation.
	ListIDs(ctx context.Context) ([]int64, error)

	// Delete permanently removes a habit and its check-ins.
	Delete(ctx context.Context, id int64) error
}

// CheckInMutation receives the current record for a (habit, date), or nil when
// none exists, and returns the record to store.
type CheckInMutation func(existing *CheckIn) (CheckIn, error)

type CheckInRepository interface {
	// ListByHabitID returns every check-in of a habit, newest date first.
	ListByHabitID(ctx context.Context, habitID int64) ([]CheckIn, error)

	// ListByHabitIDs is the batch form of ListByHabitID.
	ListByHabitIDs(ctx context.Context, habitIDs []int64) (map[int64][]CheckIn, error)

	// ListByUserIDAndDateRange returns the check-ins of all habits of a user
	// with from <= date <= to.
	ListByUserIDAndDateRange(ctx context.Context, userID int64, from, to Date) ([]CheckIn, error)

	// Mutate runs a read-modify-write on the (habitID, date) record.
	// Implementations must serialize concurrent calls for the same key so a
	// reader never sees completed and completed_at out of step.
	Mutate(ctx context.Context, habitID int64, date Date, fn CheckInMutation) (*CheckIn, error)
}

type UserRepository interface {
	Create(ctx context.Context, user *User) error
	GetByEmail(ctx context.Context, email string) (*User, error)
	GetByID(ctx context.Context, id int64) (*User, error)
}
