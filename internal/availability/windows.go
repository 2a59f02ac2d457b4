package availability

import (
	"fmt"
	"sort"
	"time"
)

// Span is a contiguous range expressed as minutes from local midnight.
type Span struct {
	StartMinutes int
	EndMinutes   int
}

// Validate reports whether the span describes a non-empty forward range
// within a single day.
func (s Span) Validate() error {
	if s.StartMinutes < 0 || s.EndMinutes > 24*60 {
		return fmt.Errorf("span %d-%d outside day bounds", s.StartMinutes, s.EndMinutes)
	}
	if s.StartMinutes >= s.EndMinutes {
		return fmt.Errorf("span start %d must precede end %d", s.StartMinutes, s.EndMinutes)
	}
	return nil
}

// Overlaps reports whether two spans share any minute.
func (s Span) Overlaps(other Span) bool {
	return s.StartMinutes < other.EndMinutes && other.StartMinutes < s.EndMinutes
}

// WeeklySpan attaches a span to a recurring day of week.
type WeeklySpan struct {
	Day time.Weekday
	Span
}

// Window is a bookable range expressed as absolute UTC instants.
type Window struct {
	Start time.Time
	End   time.Time
}

// ResolveWindows computes the ordered open windows for a calendar date in the
// organizer's zone. When any override spans exist for the date they fully
// replace the weekly template; otherwise the weekly spans matching the date's
// local weekday apply. An empty result means the day is not bookable.
func ResolveWindows(date Date, loc *time.Location, overrides []Span, weekly []WeeklySpan) ([]Window, error) {
	midnight := date.Midnight(loc)

	spans := overrides
	if len(spans) == 0 {
		weekday := midnight.Weekday()
		for _, entry := range weekly {
			if entry.Day == weekday {
				spans = append(spans, entry.Span)
			}
		}
	}
	if len(spans) == 0 {
		return nil, nil
	}

	ordered := make([]Span, len(spans))
	copy(ordered, spans)
	sort.Slice(ordered, func(i, j int) bool {
		return ordered[i].StartMinutes < ordered[j].StartMinutes
	})

	windows := make([]Window, 0, len(ordered))
	for _, span := range ordered {
		if err := span.Validate(); err != nil {
			return nil, err
		}
		windows = append(windows, Window{
			Start: midnight.Add(time.Duration(span.StartMinutes) * time.Minute).UTC(),
			End:   midnight.Add(time.Duration(span.EndMinutes) * time.Minute).UTC(),
		})
	}
	return windows, nil
}
