package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/example/bookingd/internal/persistence"
)

// ScheduleRepository implements persistence.ScheduleRepository using SQLite.
type ScheduleRepository struct {
	pool *ConnectionPool
}

// NewScheduleRepository creates a SQLite schedule repository.
func NewScheduleRepository(pool *ConnectionPool) *ScheduleRepository {
	return &ScheduleRepository{pool: pool}
}

// ListWeeklyDefaults returns the recurring template ordered by day and start.
func (r *ScheduleRepository) ListWeeklyDefaults(ctx context.Context, organizerID string) ([]persistence.WeeklyDefault, error) {
	query := `
		SELECT id, organizer_id, day_of_week, start_minutes, end_minutes
		FROM weekly_defaults
		WHERE organizer_id = ?
		ORDER BY day_of_week ASC, start_minutes ASC
	`

	rows, err := r.pool.db.QueryContext(ctx, query, organizerID)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var defaults []persistence.WeeklyDefault
	for rows.Next() {
		var entry persistence.WeeklyDefault
		var day int
		if err := rows.Scan(&entry.ID, &entry.OrganizerID, &day, &entry.StartMinutes, &entry.EndMinutes); err != nil {
			return nil, mapError(err)
		}
		entry.DayOfWeek = time.Weekday(day)
		defaults = append(defaults, entry)
	}
	return defaults, rows.Err()
}

// ReplaceWeeklyDefaults swaps the entire weekly template in one transaction,
// matching the replace-all contract of the settings surface.
func (r *ScheduleRepository) ReplaceWeeklyDefaults(ctx context.Context, organizerID string, defaults []persistence.WeeklyDefault) error {
	return r.pool.WithTransaction(ctx, func(tx *sql.Tx) error {
		if _, err := tx.Exec(`DELETE FROM weekly_defaults WHERE organizer_id = ?`, organizerID); err != nil {
			return mapError(err)
		}
		for _, entry := range defaults {
			_, err := tx.Exec(
				`INSERT INTO weekly_defaults (id, organizer_id, day_of_week, start_minutes, end_minutes) VALUES (?, ?, ?, ?, ?)`,
				entry.ID, organizerID, int(entry.DayOfWeek), entry.StartMinutes, entry.EndMinutes,
			)
			if err != nil {
				return mapError(err)
			}
		}
		return nil
	})
}

// DeleteWeeklyDefault removes one template window.
func (r *ScheduleRepository) DeleteWeeklyDefault(ctx context.Context, organizerID, id string) error {
	result, err := r.pool.db.ExecContext(ctx,
		`DELETE FROM weekly_defaults WHERE id = ? AND organizer_id = ?`, id, organizerID)
	if err != nil {
		return mapError(err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return persistence.ErrNotFound
	}
	return nil
}

// ListOverrides returns all overrides ordered by date and start.
func (r *ScheduleRepository) ListOverrides(ctx context.Context, organizerID string) ([]persistence.DateOverride, error) {
	return r.listOverrides(ctx, organizerID, "")
}

// ListOverridesForDate returns the overrides for one calendar date.
func (r *ScheduleRepository) ListOverridesForDate(ctx context.Context, organizerID, date string) ([]persistence.DateOverride, error) {
	return r.listOverrides(ctx, organizerID, date)
}

func (r *ScheduleRepository) listOverrides(ctx context.Context, organizerID, date string) ([]persistence.DateOverride, error) {
	query := `
		SELECT id, organizer_id, specific_date, start_minutes, end_minutes
		FROM date_overrides
		WHERE organizer_id = ?
	`
	args := []any{organizerID}
	if date != "" {
		query += ` AND specific_date = ?`
		args = append(args, date)
	}
	query += ` ORDER BY specific_date ASC, start_minutes ASC`

	rows, err := r.pool.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var overrides []persistence.DateOverride
	for rows.Next() {
		var entry persistence.DateOverride
		if err := rows.Scan(&entry.ID, &entry.OrganizerID, &entry.SpecificDate, &entry.StartMinutes, &entry.EndMinutes); err != nil {
			return nil, mapError(err)
		}
		overrides = append(overrides, entry)
	}
	return overrides, rows.Err()
}

// UpsertOverride inserts the override or updates it in place when the id
// already exists.
func (r *ScheduleRepository) UpsertOverride(ctx context.Context, override persistence.DateOverride) error {
	query := `
		INSERT INTO date_overrides (id, organizer_id, specific_date, start_minutes, end_minutes)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			specific_date = excluded.specific_date,
			start_minutes = excluded.start_minutes,
			end_minutes = excluded.end_minutes
		WHERE organizer_id = excluded.organizer_id
	`
	_, err := r.pool.db.ExecContext(ctx, query,
		override.ID, override.OrganizerID, override.SpecificDate, override.StartMinutes, override.EndMinutes)
	return mapError(err)
}

// DeleteOverride removes one override.
func (r *ScheduleRepository) DeleteOverride(ctx context.Context, organizerID, id string) error {
	result, err := r.pool.db.ExecContext(ctx,
		`DELETE FROM date_overrides WHERE id = ? AND organizer_id = ?`, id, organizerID)
	if err != nil {
		return mapError(err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return persistence.ErrNotFound
	}
	return nil
}
