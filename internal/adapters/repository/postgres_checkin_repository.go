package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/comitanigiacomo/habit-hero/internal/core/domain"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

var _ domain.CheckInRepository = (*PostgresCheckInRepository)(nil)

const checkinColumns = `id, habit_id, date, completed, completed_at, note`

type PostgresCheckInRepository struct {
	db *sqlx.DB
}

func NewPostgresCheckInRepository(db *sqlx.DB) *PostgresCheckInRepository {
	return &PostgresCheckInRepository{db: db}
}

func (r *PostgresCheckInRepository) ListByHabitID(ctx context.Context, habitID int64) ([]domain.CheckIn, error) {
	checkins := []domain.CheckIn{}

	query := `SELECT ` + checkinColumns + ` FROM checkins WHERE habit_id = $1 ORDER BY date DESC, id ASC`
	if err := r.db.SelectContext(ctx, &checkins, query, habitID); err != nil {
		return nil, fmt.Errorf("query error: %w", err)
	}

	return checkins, nil
}

func (r *PostgresCheckInRepository) ListByHabitIDs(ctx context.Context, habitIDs []int64) (map[int64][]domain.CheckIn, error) {
	out := make(map[int64][]domain.CheckIn, len(habitIDs))
	if len(habitIDs) == 0 {
		return out, nil
	}

	var rows []domain.CheckIn
	query := `
        SELECT ` + checkinColumns + `
        FROM checkins
        WHERE habit_id = ANY($1)
        ORDER BY habit_id, date DESC, id ASC`

	if err := r.db.SelectContext(ctx, &rows, query, pq.Array(habitIDs)); err != nil {
		return nil, fmt.Errorf("batch query error: %w", err)
	}

	for _, c := range rows {
		out[c.HabitID] = append(out[c.HabitID], c)
	}
	return out, nil
}

func (r *PostgresCheckInRepository) ListByUserIDAndDateRange(ctx context.Context, userID int64, from, to domain.Date) ([]domain.CheckIn, error) {
	checkins := []domain.CheckIn{}

	query := `
        SELECT c.id, c.habit_id, c.date, c.completed, c.completed_at, c.note
        FROM checkins c
        JOIN habits h ON h.id = c.habit_id
        WHERE h.user_id = $1 AND c.date BETWEEN $2 AND $3
        ORDER BY c.habit_id, c.date DESC, c.id ASC`

	if err := r.db.SelectContext(ctx, &checkins, query, userID, from, to); err != nil {
		return nil, fmt.Errorf("range query error: %w", err)
	}

	return checkins, nil
}

// Mutate takes a transaction-scoped advisory lock on (habit, date) so that
// two requests for the same day queue up even when no row exists yet.
func (r *PostgresCheckInRepository) Mutate(ctx context.Context, habitID int64, date domain.Date, fn domain.CheckInMutation) (*domain.CheckIn, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	lockKey := fmt.Sprintf("checkin:%d:%s", habitID, date)
	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock(hashtextextended($1, 0))`, lockKey); err != nil {
		return nil, fmt.Errorf("failed to lock check-in: %w", err)
	}

	existing, err := r.current(ctx, tx, habitID, date)
	if err != nil {
		return nil, err
	}

	next, err := fn(existing)
	if err != nil {
		return nil, err
	}

	if next.ID == 0 {
		err = tx.QueryRowxContext(ctx, `
            INSERT INTO checkins (habit_id, date, completed, completed_at, note)
            VALUES ($1, $2, $3, $4, $5)
            ON CONFLICT (habit_id, date) DO UPDATE
               SET completed = EXCLUDED.completed,
                   completed_at = EXCLUDED.completed_at,
                   note = EXCLUDED.note
            RETURNING id`,
			next.HabitID, next.Date, next.Completed, next.CompletedAt, next.Note,
		).Scan(&next.ID)
	} else {
		_, err = tx.ExecContext(ctx, `
            UPDATE checkins
               SET completed = $1, completed_at = $2, note = $3
             WHERE id = $4`,
			next.Completed, next.CompletedAt, next.Note, next.ID,
		)
	}
	if err != nil {
		if pgErrorCode(err) == pgForeignKeyViolation {
			return nil, domain.ErrHabitNotFound
		}
		return nil, fmt.Errorf("failed to write check-in: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit check-in: %w", err)
	}

	return &next, nil
}

// current returns the first row for the key, matching the read path when a
// legacy table holds duplicates.
func (r *PostgresCheckInRepository) current(ctx context.Context, tx *sqlx.Tx, habitID int64, date domain.Date) (*domain.CheckIn, error) {
	var c domain.CheckIn

	query := `SELECT ` + checkinColumns + ` FROM checkins WHERE habit_id = $1 AND date = $2 ORDER BY id ASC LIMIT 1 FOR UPDATE`
	err := tx.GetContext(ctx, &c, query, habitID, date)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read check-in: %w", err)
	}
	return &c, nil
}
