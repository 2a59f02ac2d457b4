package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/example/bookingd/internal/persistence"
)

// BlackoutRepository implements persistence.BlackoutRepository using SQLite.
type BlackoutRepository struct {
	pool *ConnectionPool
}

// NewBlackoutRepository creates a SQLite blackout repository.
func NewBlackoutRepository(pool *ConnectionPool) *BlackoutRepository {
	return &BlackoutRepository{pool: pool}
}

// ListBlackouts returns all blackouts ordered by start.
func (r *BlackoutRepository) ListBlackouts(ctx context.Context, organizerID string) ([]persistence.Blackout, error) {
	query := `
		SELECT id, organizer_id, start_time, end_time
		FROM blackouts
		WHERE organizer_id = ?
		ORDER BY start_time ASC, id ASC
	`
	return r.queryBlackouts(ctx, query, organizerID)
}

// ListOverlapping returns blackouts intersecting [start, end).
func (r *BlackoutRepository) ListOverlapping(ctx context.Context, organizerID string, start, end time.Time) ([]persistence.Blackout, error) {
	query := `
		SELECT id, organizer_id, start_time, end_time
		FROM blackouts
		WHERE organizer_id = ?
		  AND start_time < ?
		  AND end_time > ?
		ORDER BY start_time ASC, id ASC
	`
	return r.queryBlackouts(ctx, query, organizerID, formatTime(end), formatTime(start))
}

// CreateBlackout inserts a blackout period.
func (r *BlackoutRepository) CreateBlackout(ctx context.Context, blackout persistence.Blackout) error {
	if blackout.ID == "" || blackout.OrganizerID == "" {
		return persistence.ErrConstraintViolation
	}
	_, err := r.pool.db.ExecContext(ctx,
		`INSERT INTO blackouts (id, organizer_id, start_time, end_time) VALUES (?, ?, ?, ?)`,
		blackout.ID, blackout.OrganizerID, formatTime(blackout.Start), formatTime(blackout.End))
	return mapError(err)
}

// DeleteBlackout removes one blackout.
func (r *BlackoutRepository) DeleteBlackout(ctx context.Context, organizerID, id string) error {
	result, err := r.pool.db.ExecContext(ctx,
		`DELETE FROM blackouts WHERE id = ? AND organizer_id = ?`, id, organizerID)
	if err != nil {
		return mapError(err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return persistence.ErrNotFound
	}
	return nil
}

// DeleteEndedBefore purges blackouts that ended before reference. Used by the
// retention job; bookings are never purged.
func (r *BlackoutRepository) DeleteEndedBefore(ctx context.Context, reference time.Time) (int64, error) {
	result, err := r.pool.db.ExecContext(ctx,
		`DELETE FROM blackouts WHERE end_time < ?`, formatTime(reference))
	if err != nil {
		return 0, mapError(err)
	}
	return result.RowsAffected()
}

func (r *BlackoutRepository) queryBlackouts(ctx context.Context, query string, args ...any) ([]persistence.Blackout, error) {
	rows, err := r.pool.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var blackouts []persistence.Blackout
	for rows.Next() {
		var blackout persistence.Blackout
		var start, end string
		if err := rows.Scan(&blackout.ID, &blackout.OrganizerID, &start, &end); err != nil {
			return nil, mapError(err)
		}
		if blackout.Start, err = parseTime("start_time", start); err != nil {
			return nil, err
		}
		if blackout.End, err = parseTime("end_time", end); err != nil {
			return nil, err
		}
		blackouts = append(blackouts, blackout)
	}
	return blackouts, rows.Err()
}
