package testfixtures

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/example/bookingd/internal/persistence"
)

var (
	bookingCounter  uint64
	blackoutCounter uint64
	defaultCounter  uint64
)

var referenceTime = time.Date(2025, time.November, 24, 8, 0, 0, 0, time.UTC)

// ReferenceTime returns the canonical baseline timestamp used by fixtures.
// It falls on a Monday so weekday dependent tests read naturally.
func ReferenceTime() time.Time {
	return referenceTime
}

// SettingsOption configures the generated settings fixture.
type SettingsOption func(*persistence.OrganizerSettings)

// NewSettingsFixture returns a deterministic organizer rule set with optional
// overrides: UTC, 30 minute meetings, 10 minute buffer, no notice floor.
func NewSettingsFixture(opts ...SettingsOption) persistence.OrganizerSettings {
	settings := persistence.OrganizerSettings{
		OrganizerID:      "org-1",
		Timezone:         "UTC",
		MeetingDuration:  30,
		BufferMinutes:    10,
		MinNoticeMinutes: 0,
		UpdatedAt:        referenceTime,
	}
	for _, opt := range opts {
		opt(&settings)
	}
	return settings
}

// WithTimezone overrides the organizer timezone.
func WithTimezone(tz string) SettingsOption {
	return func(s *persistence.OrganizerSettings) {
		s.Timezone = tz
	}
}

// WithRules overrides duration, buffer and notice in one call.
func WithRules(duration, buffer, notice int) SettingsOption {
	return func(s *persistence.OrganizerSettings) {
		s.MeetingDuration = duration
		s.BufferMinutes = buffer
		s.MinNoticeMinutes = notice
	}
}

// BookingOption configures the generated booking fixture.
type BookingOption func(*persistence.Booking)

// NewBookingFixture returns a deterministic confirmed booking. Successive
// fixtures occupy consecutive hours so they never collide by accident.
func NewBookingFixture(opts ...BookingOption) persistence.Booking {
	idx := atomic.AddUint64(&bookingCounter, 1)
	start := referenceTime.Add(time.Duration(idx) * time.Hour)
	booking := persistence.Booking{
		ID:            fmt.Sprintf("booking-%03d", idx),
		OrganizerID:   "org-1",
		GuestName:     fmt.Sprintf("Guest %03d", idx),
		GuestEmail:    fmt.Sprintf("guest-%03d@example.com", idx),
		Start:         start,
		End:           start.Add(30 * time.Minute),
		BufferedStart: start.Add(-10 * time.Minute),
		BufferedEnd:   start.Add(40 * time.Minute),
		Status:        persistence.BookingStatusConfirmed,
		CreatedAt:     referenceTime,
		UpdatedAt:     referenceTime,
	}
	for _, opt := range opts {
		opt(&booking)
	}
	return booking
}

// WithBookingID overrides the generated booking ID.
func WithBookingID(id string) BookingOption {
	return func(b *persistence.Booking) {
		b.ID = id
	}
}

// WithBookingInterval sets the slot and recomputes the buffered bounds with
// the supplied buffer.
func WithBookingInterval(start, end time.Time, buffer time.Duration) BookingOption {
	return func(b *persistence.Booking) {
		b.Start = start
		b.End = end
		b.BufferedStart = start.Add(-buffer)
		b.BufferedEnd = end.Add(buffer)
	}
}

// WithBookingStatus overrides the booking status.
func WithBookingStatus(status persistence.BookingStatus) BookingOption {
	return func(b *persistence.Booking) {
		b.Status = status
	}
}

// BlackoutOption configures the generated blackout fixture.
type BlackoutOption func(*persistence.Blackout)

// NewBlackoutFixture returns a deterministic one-day blackout.
func NewBlackoutFixture(opts ...BlackoutOption) persistence.Blackout {
	idx := atomic.AddUint64(&blackoutCounter, 1)
	start := referenceTime.Add(time.Duration(idx) * 24 * time.Hour)
	blackout := persistence.Blackout{
		ID:          fmt.Sprintf("blackout-%03d", idx),
		OrganizerID: "org-1",
		Start:       start,
		End:         start.Add(24 * time.Hour),
	}
	for _, opt := range opts {
		opt(&blackout)
	}
	return blackout
}

// WithBlackoutInterval overrides the blackout bounds.
func WithBlackoutInterval(start, end time.Time) BlackoutOption {
	return func(b *persistence.Blackout) {
		b.Start = start
		b.End = end
	}
}

// WeeklyDefaultOption configures the generated weekly default fixture.
type WeeklyDefaultOption func(*persistence.WeeklyDefault)

// NewWeeklyDefaultFixture returns a deterministic 09:00-17:00 Monday window.
func NewWeeklyDefaultFixture(opts ...WeeklyDefaultOption) persistence.WeeklyDefault {
	idx := atomic.AddUint64(&defaultCounter, 1)
	window := persistence.WeeklyDefault{
		ID:           fmt.Sprintf("default-%03d", idx),
		OrganizerID:  "org-1",
		DayOfWeek:    time.Monday,
		StartMinutes: 9 * 60,
		EndMinutes:   17 * 60,
	}
	for _, opt := range opts {
		opt(&window)
	}
	return window
}

// WithWeeklyWindow overrides the day and minute span of the window.
func WithWeeklyWindow(day time.Weekday, startMinutes, endMinutes int) WeeklyDefaultOption {
	return func(w *persistence.WeeklyDefault) {
		w.DayOfWeek = day
		w.StartMinutes = startMinutes
		w.EndMinutes = endMinutes
	}
}
