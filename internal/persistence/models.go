package persistence

import "time"

// BookingStatus enumerates the lifecycle states of a booking row.
type BookingStatus string

const (
	// BookingStatusConfirmed marks a booking that occupies its buffered interval.
	BookingStatusConfirmed BookingStatus = "confirmed"
	// BookingStatusCancelled marks a booking released by the guest or organizer.
	BookingStatusCancelled BookingStatus = "cancelled"
)

// OrganizerSettings is the singleton rule set governing slot generation for
// one organizer.
type OrganizerSettings struct {
	OrganizerID      string
	Timezone         string
	MeetingDuration  int
	BufferMinutes    int
	MinNoticeMinutes int
	UpdatedAt        time.Time
}

// WeeklyDefault is one recurring open window, keyed by day of week and
// expressed as minutes from local midnight.
type WeeklyDefault struct {
	ID           string
	OrganizerID  string
	DayOfWeek    time.Weekday
	StartMinutes int
	EndMinutes   int
}

// DateOverride replaces the weekly template for a specific calendar date.
// SpecificDate is stored as YYYY-MM-DD.
type DateOverride struct {
	ID           string
	OrganizerID  string
	SpecificDate string
	StartMinutes int
	EndMinutes   int
}

// Booking is a confirmed or cancelled reservation. The buffered bounds are
// derived at write time and persisted, so later settings changes never
// retroactively move existing bookings.
type Booking struct {
	ID            string
	OrganizerID   string
	GuestName     string
	GuestEmail    string
	Start         time.Time
	End           time.Time
	BufferedStart time.Time
	BufferedEnd   time.Time
	Status        BookingStatus
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Blackout is a hard-unavailable interval independent of bookings and
// buffers.
type Blackout struct {
	ID          string
	OrganizerID string
	Start       time.Time
	End         time.Time
}
