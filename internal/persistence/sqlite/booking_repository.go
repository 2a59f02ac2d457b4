package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/example/bookingd/internal/persistence"
)

// BookingRepository implements persistence.BookingRepository using SQLite.
//
// The exclusion invariant (no two confirmed bookings with overlapping
// buffered intervals) is enforced here: every mutating operation re-checks
// the candidate interval and commits inside a single transaction. SQLite
// allows one writer at a time across all connections and processes, so the
// check and the mutation are indivisible and concurrent conflicting writers
// are totally ordered.
type BookingRepository struct {
	pool *ConnectionPool
}

// NewBookingRepository creates a SQLite booking repository.
func NewBookingRepository(pool *ConnectionPool) *BookingRepository {
	return &BookingRepository{pool: pool}
}

const bookingColumns = `id, organizer_id, guest_name, guest_email, start_time, end_time, buffered_start_time, buffered_end_time, status, created_at, updated_at`

// GetBooking loads a booking by id regardless of status.
func (r *BookingRepository) GetBooking(ctx context.Context, organizerID, id string) (persistence.Booking, error) {
	row := r.pool.db.QueryRowContext(ctx,
		`SELECT `+bookingColumns+` FROM bookings WHERE id = ? AND organizer_id = ?`, id, organizerID)
	booking, err := scanBooking(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return persistence.Booking{}, persistence.ErrNotFound
		}
		return persistence.Booking{}, err
	}
	return booking, nil
}

// ListConfirmedOverlapping returns confirmed bookings whose persisted
// buffered interval intersects [start, end), ascending by start.
func (r *BookingRepository) ListConfirmedOverlapping(ctx context.Context, organizerID string, start, end time.Time) ([]persistence.Booking, error) {
	query := `
		SELECT ` + bookingColumns + `
		FROM bookings
		WHERE organizer_id = ?
		  AND status = 'confirmed'
		  AND buffered_start_time < ?
		  AND buffered_end_time > ?
		ORDER BY start_time ASC, id ASC
	`
	return r.queryBookings(ctx, query, organizerID, formatTime(end), formatTime(start))
}

// ListUpcoming returns confirmed bookings that have not yet ended, ascending
// by start.
func (r *BookingRepository) ListUpcoming(ctx context.Context, organizerID string, reference time.Time) ([]persistence.Booking, error) {
	query := `
		SELECT ` + bookingColumns + `
		FROM bookings
		WHERE organizer_id = ?
		  AND status = 'confirmed'
		  AND end_time >= ?
		ORDER BY start_time ASC, id ASC
	`
	return r.queryBookings(ctx, query, organizerID, formatTime(reference))
}

// InsertConfirmedIfNoConflict atomically validates the candidate's buffered
// interval against the current confirmed set and inserts it. On overlap the
// transaction aborts with persistence.ErrConflict and nothing is written.
func (r *BookingRepository) InsertConfirmedIfNoConflict(ctx context.Context, booking persistence.Booking) error {
	if booking.ID == "" || booking.OrganizerID == "" {
		return persistence.ErrConstraintViolation
	}

	return r.pool.WithTransaction(ctx, func(tx *sql.Tx) error {
		taken, err := overlapExists(tx, booking.OrganizerID, booking.BufferedStart, booking.BufferedEnd, "")
		if err != nil {
			return err
		}
		if taken {
			return persistence.ErrConflict
		}

		_, err = tx.Exec(`
			INSERT INTO bookings (`+bookingColumns+`)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			booking.ID,
			booking.OrganizerID,
			booking.GuestName,
			booking.GuestEmail,
			formatTime(booking.Start),
			formatTime(booking.End),
			formatTime(booking.BufferedStart),
			formatTime(booking.BufferedEnd),
			string(persistence.BookingStatusConfirmed),
			formatTime(booking.CreatedAt),
			formatTime(booking.UpdatedAt),
		)
		return mapError(err)
	})
}

// UpdateIfNoConflict atomically swaps the booking's slot and guest fields in
// place. The conflict check excludes the booking itself; identity, status and
// created_at survive. On any failure the row is left exactly as it was.
func (r *BookingRepository) UpdateIfNoConflict(ctx context.Context, booking persistence.Booking) error {
	if booking.ID == "" || booking.OrganizerID == "" {
		return persistence.ErrConstraintViolation
	}

	return r.pool.WithTransaction(ctx, func(tx *sql.Tx) error {
		var status string
		err := tx.QueryRow(
			`SELECT status FROM bookings WHERE id = ? AND organizer_id = ?`,
			booking.ID, booking.OrganizerID,
		).Scan(&status)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return persistence.ErrNotFound
			}
			return mapError(err)
		}
		if persistence.BookingStatus(status) != persistence.BookingStatusConfirmed {
			return persistence.ErrNotFound
		}

		taken, err := overlapExists(tx, booking.OrganizerID, booking.BufferedStart, booking.BufferedEnd, booking.ID)
		if err != nil {
			return err
		}
		if taken {
			return persistence.ErrConflict
		}

		result, err := tx.Exec(`
			UPDATE bookings
			SET guest_name = ?, guest_email = ?, start_time = ?, end_time = ?,
			    buffered_start_time = ?, buffered_end_time = ?, updated_at = ?
			WHERE id = ? AND organizer_id = ?`,
			booking.GuestName,
			booking.GuestEmail,
			formatTime(booking.Start),
			formatTime(booking.End),
			formatTime(booking.BufferedStart),
			formatTime(booking.BufferedEnd),
			formatTime(booking.UpdatedAt),
			booking.ID,
			booking.OrganizerID,
		)
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
	})
}

// SetStatus updates the lifecycle status of a booking.
func (r *BookingRepository) SetStatus(ctx context.Context, organizerID, id string, status persistence.BookingStatus, updatedAt time.Time) error {
	result, err := r.pool.db.ExecContext(ctx,
		`UPDATE bookings SET status = ?, updated_at = ? WHERE id = ? AND organizer_id = ?`,
		string(status), formatTime(updatedAt), id, organizerID)
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

// overlapExists runs the half-open intersection test against confirmed
// bookings inside the caller's transaction. excludeID skips the booking being
// rescheduled.
func overlapExists(tx *sql.Tx, organizerID string, bufferedStart, bufferedEnd time.Time, excludeID string) (bool, error) {
	query := `
		SELECT COUNT(1)
		FROM bookings
		WHERE organizer_id = ?
		  AND status = 'confirmed'
		  AND buffered_start_time < ?
		  AND buffered_end_time > ?
	`
	args := []any{organizerID, formatTime(bufferedEnd), formatTime(bufferedStart)}
	if excludeID != "" {
		query += ` AND id != ?`
		args = append(args, excludeID)
	}

	var count int
	if err := tx.QueryRow(query, args...).Scan(&count); err != nil {
		return false, mapError(err)
	}
	return count > 0, nil
}

func (r *BookingRepository) queryBookings(ctx context.Context, query string, args ...any) ([]persistence.Booking, error) {
	rows, err := r.pool.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var bookings []persistence.Booking
	for rows.Next() {
		booking, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		bookings = append(bookings, booking)
	}
	return bookings, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanBooking(row rowScanner) (persistence.Booking, error) {
	var booking persistence.Booking
	var start, end, bufferedStart, bufferedEnd, status, createdAt, updatedAt string

	err := row.Scan(
		&booking.ID,
		&booking.OrganizerID,
		&booking.GuestName,
		&booking.GuestEmail,
		&start,
		&end,
		&bufferedStart,
		&bufferedEnd,
		&status,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return persistence.Booking{}, err
	}

	booking.Status = persistence.BookingStatus(status)
	if booking.Start, err = parseTime("start_time", start); err != nil {
		return persistence.Booking{}, err
	}
	if booking.End, err = parseTime("end_time", end); err != nil {
		return persistence.Booking{}, err
	}
	if booking.BufferedStart, err = parseTime("buffered_start_time", bufferedStart); err != nil {
		return persistence.Booking{}, err
	}
	if booking.BufferedEnd, err = parseTime("buffered_end_time", bufferedEnd); err != nil {
		return persistence.Booking{}, err
	}
	if booking.CreatedAt, err = parseTime("created_at", createdAt); err != nil {
		return persistence.Booking{}, err
	}
	if booking.UpdatedAt, err = parseTime("updated_at", updatedAt); err != nil {
		return persistence.Booking{}, err
	}
	return booking, nil
}
