package sqlite

import (
	"context"
	"database/sql"
	"errors"

	"github.com/example/bookingd/internal/persistence"
)

// SettingsRepository implements persistence.SettingsRepository using SQLite.
type SettingsRepository struct {
	pool *ConnectionPool
}

// NewSettingsRepository creates a SQLite settings repository.
func NewSettingsRepository(pool *ConnectionPool) *SettingsRepository {
	return &SettingsRepository{pool: pool}
}

// GetSettings loads the organizer's rule set.
func (r *SettingsRepository) GetSettings(ctx context.Context, organizerID string) (persistence.OrganizerSettings, error) {
	query := `
		SELECT organizer_id, timezone, meeting_duration_minutes, buffer_minutes, min_notice_minutes, updated_at
		FROM organizer_settings
		WHERE organizer_id = ?
	`

	var settings persistence.OrganizerSettings
	var updatedAt string
	err := r.pool.db.QueryRowContext(ctx, query, organizerID).Scan(
		&settings.OrganizerID,
		&settings.Timezone,
		&settings.MeetingDuration,
		&settings.BufferMinutes,
		&settings.MinNoticeMinutes,
		&updatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return persistence.OrganizerSettings{}, persistence.ErrNotFound
		}
		return persistence.OrganizerSettings{}, mapError(err)
	}

	if settings.UpdatedAt, err = parseTime("updated_at", updatedAt); err != nil {
		return persistence.OrganizerSettings{}, err
	}
	return settings, nil
}

// UpsertSettings creates or replaces the organizer's rule set.
func (r *SettingsRepository) UpsertSettings(ctx context.Context, settings persistence.OrganizerSettings) error {
	query := `
		INSERT INTO organizer_settings (organizer_id, timezone, meeting_duration_minutes, buffer_minutes, min_notice_minutes, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (organizer_id) DO UPDATE SET
			timezone = excluded.timezone,
			meeting_duration_minutes = excluded.meeting_duration_minutes,
			buffer_minutes = excluded.buffer_minutes,
			min_notice_minutes = excluded.min_notice_minutes,
			updated_at = excluded.updated_at
	`

	_, err := r.pool.db.ExecContext(ctx, query,
		settings.OrganizerID,
		settings.Timezone,
		settings.MeetingDuration,
		settings.BufferMinutes,
		settings.MinNoticeMinutes,
		formatTime(settings.UpdatedAt),
	)
	return mapError(err)
}
