package availability

import "time"

// Interval is a half-open [Start, End) range of absolute instants.
type Interval struct {
	Start time.Time
	End   time.Time
}

// Overlaps applies the half-open intersection test between two intervals.
func (i Interval) Overlaps(other Interval) bool {
	return i.Start.Before(other.End) && other.Start.Before(i.End)
}

// Rules captures the organizer constraints a candidate slot is checked
// against.
type Rules struct {
	Duration  time.Duration
	Buffer    time.Duration
	MinNotice time.Duration
}

// Filter rejects candidate slots that violate minimum notice, overlap a
// confirmed booking's buffered interval, or fall inside a blackout period.
type Filter struct {
	Rules Rules
	Now   time.Time

	// Busy holds the persisted buffered intervals of confirmed bookings
	// overlapping the day under resolution.
	Busy []Interval
	// Blackouts holds hard-unavailable intervals; they are compared against
	// the unbuffered slot.
	Blackouts []Interval
}

// Permits evaluates the rejection rules in order: notice, booking conflict,
// blackout. The first violated rule rejects the candidate.
func (f Filter) Permits(slotStart time.Time) bool {
	if slotStart.Before(f.Now.Add(f.Rules.MinNotice)) {
		return false
	}

	slot := Interval{Start: slotStart, End: slotStart.Add(f.Rules.Duration)}
	buffered := Interval{Start: slot.Start.Add(-f.Rules.Buffer), End: slot.End.Add(f.Rules.Buffer)}

	for _, busy := range f.Busy {
		if buffered.Overlaps(busy) {
			return false
		}
	}
	for _, blackout := range f.Blackouts {
		if slot.Overlaps(blackout) {
			return false
		}
	}
	return true
}

// ResolveSlots expands every window into candidates and returns the permitted
// slot starts, concatenated in window order. Windows are assumed ordered and
// non-overlapping, so the result is ascending with no duplicates.
func ResolveSlots(windows []Window, filter Filter) []time.Time {
	slots := make([]time.Time, 0)
	for _, window := range windows {
		for candidate := range Slots(window, filter.Rules.Duration) {
			if filter.Permits(candidate) {
				slots = append(slots, candidate)
			}
		}
	}
	return slots
}
