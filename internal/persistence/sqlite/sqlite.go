package sqlite

import (
	"context"
	"fmt"
)

// schema holds the embedded DDL. Timestamps are RFC3339 UTC text; the
// buffered booking bounds are persisted, not derived on read. The composite
// index backs both the availability overlap query and the conflict check
// executed inside booking transactions.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS organizer_settings (
		organizer_id TEXT PRIMARY KEY,
		timezone TEXT NOT NULL,
		meeting_duration_minutes INTEGER NOT NULL CHECK (meeting_duration_minutes > 0),
		buffer_minutes INTEGER NOT NULL CHECK (buffer_minutes >= 0),
		min_notice_minutes INTEGER NOT NULL CHECK (min_notice_minutes >= 0),
		updated_at TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS weekly_defaults (
		id TEXT PRIMARY KEY,
		organizer_id TEXT NOT NULL,
		day_of_week INTEGER NOT NULL CHECK (day_of_week BETWEEN 0 AND 6),
		start_minutes INTEGER NOT NULL,
		end_minutes INTEGER NOT NULL,
		CHECK (start_minutes < end_minutes)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_weekly_defaults_organizer_day
		ON weekly_defaults (organizer_id, day_of_week)`,
	`CREATE TABLE IF NOT EXISTS date_overrides (
		id TEXT PRIMARY KEY,
		organizer_id TEXT NOT NULL,
		specific_date TEXT NOT NULL,
		start_minutes INTEGER NOT NULL,
		end_minutes INTEGER NOT NULL,
		CHECK (start_minutes < end_minutes)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_date_overrides_organizer_date
		ON date_overrides (organizer_id, specific_date)`,
	`CREATE TABLE IF NOT EXISTS bookings (
		id TEXT PRIMARY KEY,
		organizer_id TEXT NOT NULL,
		guest_name TEXT NOT NULL,
		guest_email TEXT NOT NULL,
		start_time TEXT NOT NULL,
		end_time TEXT NOT NULL,
		buffered_start_time TEXT NOT NULL,
		buffered_end_time TEXT NOT NULL,
		status TEXT NOT NULL CHECK (status IN ('confirmed', 'cancelled')),
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL,
		CHECK (start_time < end_time)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_bookings_organizer_status_buffered
		ON bookings (organizer_id, status, buffered_start_time, buffered_end_time)`,
	`CREATE TABLE IF NOT EXISTS blackouts (
		id TEXT PRIMARY KEY,
		organizer_id TEXT NOT NULL,
		start_time TEXT NOT NULL,
		end_time TEXT NOT NULL,
		CHECK (start_time < end_time)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_blackouts_organizer_range
		ON blackouts (organizer_id, start_time, end_time)`,
}

// Migrate applies the schema. Statements are idempotent, so Migrate is safe
// to run on every startup.
func (cp *ConnectionPool) Migrate(ctx context.Context) error {
	for _, stmt := range schema {
		if _, err := cp.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("apply schema: %w", err)
		}
	}
	return nil
}
