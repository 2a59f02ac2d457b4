package sqlite

import (
	"fmt"
	"time"
)

// Timestamps are stored as second-precision RFC3339 UTC text so that
// lexicographic comparison in SQL matches chronological order.
func formatTime(t time.Time) string {
	return t.UTC().Truncate(time.Second).Format(time.RFC3339)
}

func parseTime(column, value string) (time.Time, error) {
	parsed, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse %s: %w", column, err)
	}
	return parsed, nil
}
