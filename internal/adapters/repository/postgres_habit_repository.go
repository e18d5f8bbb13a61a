package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/comitanigiacomo/habit-hero/internal/core/domain"
	"github.com/jmoiron/sqlx"
)

var _ domain.HabitRepository = (*PostgresHabitRepository)(nil)

const habitColumns = `id, user_id, name, category, frequency, target_day, interval_hours, start_date, created_at`

type PostgresHabitRepository struct {
	db *sqlx.DB
}

func NewPostgresHabitRepository(db *sqlx.DB) *PostgresHabitRepository {
	return &PostgresHabitRepository{db: db}
}

func (r *PostgresHabitRepository) Create(ctx context.Context, h *domain.Habit, placeholder *domain.CheckIn) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
        INSERT INTO habits (
            user_id, name, category, frequency, target_day, interval_hours, start_date, created_at
        ) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
        RETURNING id`

	err = tx.QueryRowxContext(ctx, query,
		h.UserID, h.Name, h.Category, h.Frequency, h.TargetDay, h.IntervalHours,
		h.StartDate, h.CreatedAt,
	).Scan(&h.ID)
	if err != nil {
		if pgErrorCode(err) == pgForeignKeyViolation {
			return domain.ErrUserNotFound
		}
		return fmt.Errorf("failed to insert habit: %w", err)
	}

	if placeholder != nil {
		placeholder.HabitID = h.ID
		err = tx.QueryRowxContext(ctx, `
            INSERT INTO checkins (habit_id, date, completed, completed_at, note)
            VALUES ($1, $2, $3, $4, $5)
            RETURNING id`,
			placeholder.HabitID, placeholder.Date, placeholder.Completed, placeholder.CompletedAt, placeholder.Note,
		).Scan(&placeholder.ID)
		if err != nil {
			return fmt.Errorf("failed to insert first check-in: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit habit: %w", err)
	}

	return nil
}

func (r *PostgresHabitRepository) GetByID(ctx context.Context, id int64) (*domain.Habit, error) {
	var h domain.Habit

	err := r.db.GetContext(ctx, &h, `SELECT `+habitColumns+` FROM habits WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrHabitNotFound
		}
		return nil, fmt.Errorf("database scan error: %w", err)
	}

	return &h, nil
}

func (r *PostgresHabitRepository) ListByUserID(ctx context.Context, userID int64) ([]*domain.Habit, error) {
	habits := []*domain.Habit{}

	query := `SELECT ` + habitColumns + ` FROM habits WHERE user_id = $1 ORDER BY id ASC`
	if err := r.db.SelectContext(ctx, &habits, query, userID); err != nil {
		return nil, fmt.Errorf("query error: %w", err)
	}

	return habits, nil
}

func (r *PostgresHabitRepository) ListIDs(ctx context.Context) ([]int64, error) {
	var ids []int64
	if err := r.db.SelectContext(ctx, &ids, `SELECT id FROM habits ORDER BY id ASC`); err != nil {
		return nil, fmt.Errorf("query error: %w", err)
	}
	return ids, nil
}

// Delete relies on ON DELETE CASCADE to drop the habit's check-ins.
func (r *PostgresHabitRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM habits WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete query failed: %w", err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return domain.ErrHabitNotFound
	}

	return nil
}
