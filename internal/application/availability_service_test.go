package application

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/example/bookingd/internal/availability"
	"github.com/example/bookingd/internal/persistence"
	"github.com/example/bookingd/internal/testfixtures"
)

type settingsStoreStub struct {
	settings persistence.OrganizerSettings
	err      error
	upserted persistence.OrganizerSettings
}

func (s *settingsStoreStub) GetSettings(ctx context.Context, organizerID string) (persistence.OrganizerSettings, error) {
	if s.err != nil {
		return persistence.OrganizerSettings{}, s.err
	}
	return s.settings, nil
}

func (s *settingsStoreStub) UpsertSettings(ctx context.Context, settings persistence.OrganizerSettings) error {
	if s.err != nil {
		return s.err
	}
	s.upserted = settings
	return nil
}

type scheduleStoreStub struct {
	defaults  []persistence.WeeklyDefault
	overrides []persistence.DateOverride
	replaced  []persistence.WeeklyDefault
	upserted  persistence.DateOverride
	err       error
}

func (s *scheduleStoreStub) ListWeeklyDefaults(ctx context.Context, organizerID string) ([]persistence.WeeklyDefault, error) {
	return s.defaults, s.err
}

func (s *scheduleStoreStub) ReplaceWeeklyDefaults(ctx context.Context, organizerID string, defaults []persistence.WeeklyDefault) error {
	if s.err != nil {
		return s.err
	}
	s.replaced = defaults
	return nil
}

func (s *scheduleStoreStub) DeleteWeeklyDefault(ctx context.Context, organizerID, id string) error {
	return s.err
}

func (s *scheduleStoreStub) ListOverrides(ctx context.Context, organizerID string) ([]persistence.DateOverride, error) {
	return s.overrides, s.err
}

func (s *scheduleStoreStub) ListOverridesForDate(ctx context.Context, organizerID, date string) ([]persistence.DateOverride, error) {
	if s.err != nil {
		return nil, s.err
	}
	var matched []persistence.DateOverride
	for _, override := range s.overrides {
		if override.SpecificDate == date {
			matched = append(matched, override)
		}
	}
	return matched, nil
}

func (s *scheduleStoreStub) UpsertOverride(ctx context.Context, override persistence.DateOverride) error {
	if s.err != nil {
		return s.err
	}
	s.upserted = override
	return nil
}

func (s *scheduleStoreStub) DeleteOverride(ctx context.Context, organizerID, id string) error {
	return s.err
}

type bookingReaderStub struct {
	bookings []persistence.Booking
	err      error
}

func (b *bookingReaderStub) ListConfirmedOverlapping(ctx context.Context, organizerID string, start, end time.Time) ([]persistence.Booking, error) {
	return b.bookings, b.err
}

type blackoutReaderStub struct {
	blackouts []persistence.Blackout
	err       error
}

func (b *blackoutReaderStub) ListOverlapping(ctx context.Context, organizerID string, start, end time.Time) ([]persistence.Blackout, error) {
	return b.blackouts, b.err
}

func testSettings() persistence.OrganizerSettings {
	return testfixtures.NewSettingsFixture()
}

func mondayDefaults() []persistence.WeeklyDefault {
	return []persistence.WeeklyDefault{
		{ID: "wd-1", OrganizerID: "org-1", DayOfWeek: time.Monday, StartMinutes: 9 * 60, EndMinutes: 10 * 60},
	}
}

func fixedNow(t time.Time) func() time.Time {
	return testfixtures.NewClock(t).NowFunc()
}

func newAvailabilityService(settings *settingsStoreStub, schedule *scheduleStoreStub, bookings *bookingReaderStub, blackouts *blackoutReaderStub, now time.Time) *AvailabilityService {
	return NewAvailabilityService("org-1", settings, schedule, bookings, blackouts, fixedNow(now), nil)
}

func TestAvailabilityService_OpenDay(t *testing.T) {
	t.Parallel()

	// 2025-11-24 is a Monday; window 09:00-10:00 UTC, now 08:00.
	now := time.Date(2025, time.November, 24, 8, 0, 0, 0, time.UTC)
	svc := newAvailabilityService(
		&settingsStoreStub{settings: testSettings()},
		&scheduleStoreStub{defaults: mondayDefaults()},
		&bookingReaderStub{},
		&blackoutReaderStub{},
		now,
	)

	result, err := svc.Resolve(context.Background(), availability.Date{Year: 2025, Month: time.November, Day: 24})
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	if len(result.Slots) != 2 {
		t.Fatalf("expected slots 09:00 and 09:30, got %v", result.Slots)
	}
	if result.DurationMinutes != 30 || result.BufferMinutes != 10 {
		t.Fatalf("expected rules echoed back, got %+v", result)
	}
}

func TestAvailabilityService_BookedDayFiltersEverything(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, time.November, 24, 0, 0, 0, 0, time.UTC)
	booked := persistence.Booking{
		ID:            "booking-1",
		OrganizerID:   "org-1",
		Status:        persistence.BookingStatusConfirmed,
		Start:         time.Date(2025, time.November, 24, 9, 30, 0, 0, time.UTC),
		End:           time.Date(2025, time.November, 24, 10, 0, 0, 0, time.UTC),
		BufferedStart: time.Date(2025, time.November, 24, 9, 20, 0, 0, time.UTC),
		BufferedEnd:   time.Date(2025, time.November, 24, 10, 10, 0, 0, time.UTC),
	}

	svc := newAvailabilityService(
		&settingsStoreStub{settings: testSettings()},
		&scheduleStoreStub{defaults: mondayDefaults()},
		&bookingReaderStub{bookings: []persistence.Booking{booked}},
		&blackoutReaderStub{},
		now,
	)

	result, err := svc.Resolve(context.Background(), availability.Date{Year: 2025, Month: time.November, Day: 24})
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	if len(result.Slots) != 0 {
		t.Fatalf("expected empty availability, got %v", result.Slots)
	}
}

func TestAvailabilityService_OverridePrecedence(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, time.November, 24, 0, 0, 0, 0, time.UTC)
	schedule := &scheduleStoreStub{
		defaults: []persistence.WeeklyDefault{
			{ID: "wd-1", OrganizerID: "org-1", DayOfWeek: time.Monday, StartMinutes: 9 * 60, EndMinutes: 17 * 60},
		},
		overrides: []persistence.DateOverride{
			{ID: "ov-1", OrganizerID: "org-1", SpecificDate: "2025-11-24", StartMinutes: 13 * 60, EndMinutes: 14 * 60},
		},
	}

	svc := newAvailabilityService(&settingsStoreStub{settings: testSettings()}, schedule, &bookingReaderStub{}, &blackoutReaderStub{}, now)

	result, err := svc.Resolve(context.Background(), availability.Date{Year: 2025, Month: time.November, Day: 24})
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}

	windowStart := time.Date(2025, time.November, 24, 13, 0, 0, 0, time.UTC)
	windowEnd := time.Date(2025, time.November, 24, 14, 0, 0, 0, time.UTC)
	if len(result.Slots) == 0 {
		t.Fatal("expected slots inside the override window")
	}
	for _, slot := range result.Slots {
		if slot.Before(windowStart) || slot.Add(30*time.Minute).After(windowEnd) {
			t.Fatalf("slot %v escapes the override window", slot)
		}
	}
}

func TestAvailabilityService_NoticeFloor(t *testing.T) {
	t.Parallel()

	settings := testSettings()
	settings.MinNoticeMinutes = 45
	// Now 09:00: 09:00 violates the floor, 09:45 is the first legal instant,
	// so only the 09:30 candidate... 09:30 < 09:45 too. Nothing survives.
	now := time.Date(2025, time.November, 24, 9, 0, 0, 0, time.UTC)

	svc := newAvailabilityService(&settingsStoreStub{settings: settings}, &scheduleStoreStub{defaults: mondayDefaults()}, &bookingReaderStub{}, &blackoutReaderStub{}, now)

	result, err := svc.Resolve(context.Background(), availability.Date{Year: 2025, Month: time.November, Day: 24})
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	for _, slot := range result.Slots {
		if slot.Before(now.Add(45 * time.Minute)) {
			t.Fatalf("slot %v violates the notice floor", slot)
		}
	}
	if len(result.Slots) != 0 {
		t.Fatalf("expected no slots, got %v", result.Slots)
	}
}

func TestAvailabilityService_BlackoutAppliesUnderOverride(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, time.November, 24, 0, 0, 0, 0, time.UTC)
	schedule := &scheduleStoreStub{
		overrides: []persistence.DateOverride{
			{ID: "ov-1", OrganizerID: "org-1", SpecificDate: "2025-11-24", StartMinutes: 13 * 60, EndMinutes: 14 * 60},
		},
	}
	blackouts := &blackoutReaderStub{blackouts: []persistence.Blackout{{
		ID:          "bl-1",
		OrganizerID: "org-1",
		Start:       time.Date(2025, time.November, 24, 13, 0, 0, 0, time.UTC),
		End:         time.Date(2025, time.November, 24, 13, 30, 0, 0, time.UTC),
	}}}

	svc := newAvailabilityService(&settingsStoreStub{settings: testSettings()}, schedule, &bookingReaderStub{}, blackouts, now)

	result, err := svc.Resolve(context.Background(), availability.Date{Year: 2025, Month: time.November, Day: 24})
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	if len(result.Slots) != 1 {
		t.Fatalf("expected only 13:30 to survive the blackout, got %v", result.Slots)
	}
	if !result.Slots[0].Equal(time.Date(2025, time.November, 24, 13, 30, 0, 0, time.UTC)) {
		t.Fatalf("expected 13:30, got %v", result.Slots[0])
	}
}

func TestAvailabilityService_IdempotentRead(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, time.November, 24, 8, 0, 0, 0, time.UTC)
	svc := newAvailabilityService(&settingsStoreStub{settings: testSettings()}, &scheduleStoreStub{defaults: mondayDefaults()}, &bookingReaderStub{}, &blackoutReaderStub{}, now)

	date := availability.Date{Year: 2025, Month: time.November, Day: 24}
	first, err := svc.Resolve(context.Background(), date)
	if err != nil {
		t.Fatalf("first Resolve returned error: %v", err)
	}
	second, err := svc.Resolve(context.Background(), date)
	if err != nil {
		t.Fatalf("second Resolve returned error: %v", err)
	}

	if len(first.Slots) != len(second.Slots) {
		t.Fatalf("reads diverged: %v vs %v", first.Slots, second.Slots)
	}
	for i := range first.Slots {
		if !first.Slots[i].Equal(second.Slots[i]) {
			t.Fatalf("reads diverged at %d: %v vs %v", i, first.Slots[i], second.Slots[i])
		}
	}
}

func TestAvailabilityService_EmptyDayIsNotAnError(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, time.November, 24, 0, 0, 0, 0, time.UTC)
	svc := newAvailabilityService(&settingsStoreStub{settings: testSettings()}, &scheduleStoreStub{}, &bookingReaderStub{}, &blackoutReaderStub{}, now)

	result, err := svc.Resolve(context.Background(), availability.Date{Year: 2025, Month: time.November, Day: 24})
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	if result.Slots == nil || len(result.Slots) != 0 {
		t.Fatalf("expected empty, non-nil slot list, got %v", result.Slots)
	}
}

func TestAvailabilityService_MissingSettings(t *testing.T) {
	t.Parallel()

	svc := newAvailabilityService(&settingsStoreStub{err: persistence.ErrNotFound}, &scheduleStoreStub{}, &bookingReaderStub{}, &blackoutReaderStub{}, time.Now())

	_, err := svc.Resolve(context.Background(), availability.Date{Year: 2025, Month: time.November, Day: 24})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestAvailabilityService_MalformedStoredSettings(t *testing.T) {
	t.Parallel()

	settings := testSettings()
	settings.MeetingDuration = 0
	svc := newAvailabilityService(&settingsStoreStub{settings: settings}, &scheduleStoreStub{defaults: mondayDefaults()}, &bookingReaderStub{}, &blackoutReaderStub{}, time.Now())

	_, err := svc.Resolve(context.Background(), availability.Date{Year: 2025, Month: time.November, Day: 24})
	var vErr *ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("expected ValidationError for malformed settings, got %v", err)
	}
}
