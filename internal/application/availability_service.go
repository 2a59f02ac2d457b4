package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/example/bookingd/internal/availability"
	"github.com/example/bookingd/internal/persistence"
)

// BookingReader exposes the read operations availability resolution needs.
type BookingReader interface {
	ListConfirmedOverlapping(ctx context.Context, organizerID string, start, end time.Time) ([]persistence.Booking, error)
}

// BlackoutReader exposes blackout lookup for a day range.
type BlackoutReader interface {
	ListOverlapping(ctx context.Context, organizerID string, start, end time.Time) ([]persistence.Blackout, error)
}

// AvailabilityService resolves the published slot list for a calendar date.
// Every request fetches fresh state; nothing is cached between calls, so the
// result reflects storage at read time and nothing more.
type AvailabilityService struct {
	organizerID string
	settings    SettingsStore
	schedule    ScheduleStore
	bookings    BookingReader
	blackouts   BlackoutReader
	now         func() time.Time
	logger      *slog.Logger
}

// NewAvailabilityService wires dependencies for availability resolution.
func NewAvailabilityService(organizerID string, settings SettingsStore, schedule ScheduleStore, bookings BookingReader, blackouts BlackoutReader, now func() time.Time, logger *slog.Logger) *AvailabilityService {
	if now == nil {
		now = time.Now
	}
	return &AvailabilityService{
		organizerID: organizerID,
		settings:    settings,
		schedule:    schedule,
		bookings:    bookings,
		blackouts:   blackouts,
		now:         now,
		logger:      defaultLogger(logger),
	}
}

// Resolve produces the bookable slots for one date: resolve the open windows
// (overrides take precedence over the weekly template), expand them into
// candidates, and filter against notice, confirmed bookings and blackouts.
func (s *AvailabilityService) Resolve(ctx context.Context, date availability.Date) (AvailabilityResult, error) {
	if s == nil || s.settings == nil || s.schedule == nil {
		return AvailabilityResult{}, fmt.Errorf("AvailabilityService is not configured")
	}
	if date.IsZero() {
		vErr := &ValidationError{}
		vErr.add("date", "date is required")
		return AvailabilityResult{}, vErr
	}

	settings, err := s.loadSettings(ctx)
	if err != nil {
		return AvailabilityResult{}, err
	}
	loc, err := time.LoadLocation(settings.Timezone)
	if err != nil {
		vErr := &ValidationError{}
		vErr.add("timezone", "organizer timezone is not a valid IANA zone id")
		return AvailabilityResult{}, vErr
	}

	windows, err := s.resolveWindows(ctx, date, loc)
	if err != nil {
		return AvailabilityResult{}, err
	}

	result := AvailabilityResult{
		Date:            date,
		Slots:           []time.Time{},
		DurationMinutes: settings.MeetingDuration,
		BufferMinutes:   settings.BufferMinutes,
	}
	if len(windows) == 0 {
		return result, nil
	}

	duration, buffer, notice := rulesOf(settings)

	// Fetch everything whose interval could touch the day's windows. The
	// booking range is widened by the buffer so adjacent-day bookings with
	// buffered tails reaching into this day are seen.
	rangeStart := windows[0].Start.Add(-buffer)
	rangeEnd := windows[len(windows)-1].End.Add(buffer)

	busy, blocked, err := s.loadDayState(ctx, rangeStart, rangeEnd)
	if err != nil {
		return AvailabilityResult{}, err
	}

	filter := availability.Filter{
		Rules:     availability.Rules{Duration: duration, Buffer: buffer, MinNotice: notice},
		Now:       s.now().UTC(),
		Busy:      busy,
		Blackouts: blocked,
	}
	result.Slots = availability.ResolveSlots(windows, filter)

	serviceLogger(ctx, s.logger, "availability", "resolve").DebugContext(ctx, "availability resolved",
		"date", date.String(),
		"windows", len(windows),
		"slots", len(result.Slots),
	)
	return result, nil
}

func (s *AvailabilityService) loadSettings(ctx context.Context) (persistence.OrganizerSettings, error) {
	settings, err := s.settings.GetSettings(ctx, s.organizerID)
	if err != nil {
		if errors.Is(err, persistence.ErrNotFound) {
			return persistence.OrganizerSettings{}, ErrNotFound
		}
		return persistence.OrganizerSettings{}, err
	}
	if err := validateStoredSettings(settings); err != nil {
		return persistence.OrganizerSettings{}, err
	}
	return settings, nil
}

func (s *AvailabilityService) resolveWindows(ctx context.Context, date availability.Date, loc *time.Location) ([]availability.Window, error) {
	overrideRows, err := s.schedule.ListOverridesForDate(ctx, s.organizerID, date.String())
	if err != nil {
		return nil, err
	}
	overrides := make([]availability.Span, 0, len(overrideRows))
	for _, row := range overrideRows {
		overrides = append(overrides, availability.Span{StartMinutes: row.StartMinutes, EndMinutes: row.EndMinutes})
	}

	var weekly []availability.WeeklySpan
	if len(overrides) == 0 {
		defaultRows, err := s.schedule.ListWeeklyDefaults(ctx, s.organizerID)
		if err != nil {
			return nil, err
		}
		weekly = make([]availability.WeeklySpan, 0, len(defaultRows))
		for _, row := range defaultRows {
			weekly = append(weekly, availability.WeeklySpan{
				Day:  row.DayOfWeek,
				Span: availability.Span{StartMinutes: row.StartMinutes, EndMinutes: row.EndMinutes},
			})
		}
	}

	windows, err := availability.ResolveWindows(date, loc, overrides, weekly)
	if err != nil {
		vErr := &ValidationError{}
		vErr.add("window", err.Error())
		return nil, vErr
	}
	return windows, nil
}

func (s *AvailabilityService) loadDayState(ctx context.Context, rangeStart, rangeEnd time.Time) ([]availability.Interval, []availability.Interval, error) {
	var busy []availability.Interval
	if s.bookings != nil {
		bookings, err := s.bookings.ListConfirmedOverlapping(ctx, s.organizerID, rangeStart, rangeEnd)
		if err != nil {
			return nil, nil, err
		}
		busy = make([]availability.Interval, 0, len(bookings))
		for _, booking := range bookings {
			busy = append(busy, availability.Interval{Start: booking.BufferedStart, End: booking.BufferedEnd})
		}
	}

	var blocked []availability.Interval
	if s.blackouts != nil {
		blackouts, err := s.blackouts.ListOverlapping(ctx, s.organizerID, rangeStart, rangeEnd)
		if err != nil {
			return nil, nil, err
		}
		blocked = make([]availability.Interval, 0, len(blackouts))
		for _, blackout := range blackouts {
			blocked = append(blocked, availability.Interval{Start: blackout.Start, End: blackout.End})
		}
	}
	return busy, blocked, nil
}
