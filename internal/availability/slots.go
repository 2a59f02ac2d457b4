package availability

import (
	"iter"
	"time"
)

// Slots yields the candidate slot starts contained in a single window,
// stepping by duration from the window start. A slot is yielded only when it
// fits entirely inside the window, so a slot may end exactly at the window
// end but never run past it. Each window is walked independently; slots never
// straddle two windows.
//
// The sequence is finite and restartable: ranging over it twice yields the
// same candidates.
func Slots(window Window, duration time.Duration) iter.Seq[time.Time] {
	return func(yield func(time.Time) bool) {
		if duration <= 0 {
			return
		}
		for start := window.Start; !start.Add(duration).After(window.End); start = start.Add(duration) {
			if !yield(start) {
				return
			}
		}
	}
}
