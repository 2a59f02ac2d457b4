package application

import (
	"time"

	"github.com/example/bookingd/internal/availability"
)

// SettingsInput captures caller provided organizer settings.
type SettingsInput struct {
	Timezone         string
	MeetingDuration  int
	BufferMinutes    int
	MinNoticeMinutes int
}

// WeeklyDefaultInput is one recurring window submitted by the settings
// surface.
type WeeklyDefaultInput struct {
	DayOfWeek    time.Weekday
	StartMinutes int
	EndMinutes   int
}

// OverrideInput is a date-specific replacement window. ID is empty for
// creation and set for in-place updates.
type OverrideInput struct {
	ID           string
	Date         availability.Date
	StartMinutes int
	EndMinutes   int
}

// BlackoutInput is a hard-unavailable interval submitted by the organizer.
type BlackoutInput struct {
	Start time.Time
	End   time.Time
}

// BookingInput captures a guest's commitment to a slot.
type BookingInput struct {
	SlotStart  time.Time
	GuestName  string
	GuestEmail string
}

// AvailabilityResult is the published slot list for one date, together with
// the rules in force at resolution time so callers can construct a booking
// request consistent with them. It is advisory: the booking transaction
// revalidates against live state.
type AvailabilityResult struct {
	Date            availability.Date
	Slots           []time.Time
	DurationMinutes int
	BufferMinutes   int
}
