package persistence

import (
	"context"
	"time"
)

// SettingsRepository stores the per-organizer rule set.
type SettingsRepository interface {
	GetSettings(ctx context.Context, organizerID string) (OrganizerSettings, error)
	UpsertSettings(ctx context.Context, settings OrganizerSettings) error
}

// ScheduleRepository stores the recurring weekly template and per-date
// overrides that feed window resolution.
type ScheduleRepository interface {
	ListWeeklyDefaults(ctx context.Context, organizerID string) ([]WeeklyDefault, error)
	// ReplaceWeeklyDefaults swaps the full weekly template in one transaction.
	ReplaceWeeklyDefaults(ctx context.Context, organizerID string, defaults []WeeklyDefault) error
	DeleteWeeklyDefault(ctx context.Context, organizerID, id string) error

	ListOverrides(ctx context.Context, organizerID string) ([]DateOverride, error)
	ListOverridesForDate(ctx context.Context, organizerID, date string) ([]DateOverride, error)
	UpsertOverride(ctx context.Context, override DateOverride) error
	DeleteOverride(ctx context.Context, organizerID, id string) error
}

// BookingRepository stores bookings and enforces the buffered-interval
// exclusion invariant: the conflict checks and the mutations below execute as
// single atomic units against the store.
type BookingRepository interface {
	GetBooking(ctx context.Context, organizerID, id string) (Booking, error)
	// ListConfirmedOverlapping returns confirmed bookings whose buffered
	// interval intersects [start, end).
	ListConfirmedOverlapping(ctx context.Context, organizerID string, start, end time.Time) ([]Booking, error)
	// ListUpcoming returns confirmed bookings ending at or after reference,
	// ascending by start.
	ListUpcoming(ctx context.Context, organizerID string, reference time.Time) ([]Booking, error)
	// InsertConfirmedIfNoConflict atomically re-checks the candidate's
	// buffered interval against all confirmed bookings and inserts it, or
	// returns ErrConflict with no mutation.
	InsertConfirmedIfNoConflict(ctx context.Context, booking Booking) error
	// UpdateIfNoConflict atomically re-checks the new interval against all
	// confirmed bookings except the booking itself and swaps the row's time
	// and guest fields in place. Returns ErrNotFound when the booking is
	// missing or cancelled, ErrConflict when the new interval is taken; the
	// row is untouched on either failure.
	UpdateIfNoConflict(ctx context.Context, booking Booking) error
	SetStatus(ctx context.Context, organizerID, id string, status BookingStatus, updatedAt time.Time) error
}

// BlackoutRepository stores hard-unavailable intervals.
type BlackoutRepository interface {
	ListBlackouts(ctx context.Context, organizerID string) ([]Blackout, error)
	// ListOverlapping returns blackouts intersecting [start, end).
	ListOverlapping(ctx context.Context, organizerID string, start, end time.Time) ([]Blackout, error)
	CreateBlackout(ctx context.Context, blackout Blackout) error
	DeleteBlackout(ctx context.Context, organizerID, id string) error
	// DeleteEndedBefore removes blackouts that ended before reference and
	// reports how many rows were purged.
	DeleteEndedBefore(ctx context.Context, reference time.Time) (int64, error)
}
