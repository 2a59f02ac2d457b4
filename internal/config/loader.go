package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/robfig/cron/v3"
)

// Config captures environment driven configuration values for the booking service.
type Config struct {
	HTTPPort          int
	SQLiteDSN         string
	OrganizerID       string
	BlackoutRetention string
}

// Load parses configuration values from the current process environment.
//
// The loader applies sensible defaults for optional fields while validating
// provided values and reporting which entries are malformed.
func Load() (Config, error) {
	cfg := Config{
		HTTPPort:          8080,
		SQLiteDSN:         "file:bookingd.db?_txlock=immediate&_pragma=busy_timeout(5000)",
		OrganizerID:       "primary",
		BlackoutRetention: "0 3 * * *",
	}

	invalid := make([]string, 0, 2)

	if portValue := strings.TrimSpace(os.Getenv("BOOKINGD_HTTP_PORT")); portValue != "" {
		port, err := strconv.Atoi(portValue)
		if err != nil || port <= 0 {
			invalid = append(invalid, "BOOKINGD_HTTP_PORT")
		} else {
			cfg.HTTPPort = port
		}
	}

	if dsn := strings.TrimSpace(os.Getenv("BOOKINGD_SQLITE_DSN")); dsn != "" {
		cfg.SQLiteDSN = dsn
	}

	if organizer := strings.TrimSpace(os.Getenv("BOOKINGD_ORGANIZER_ID")); organizer != "" {
		cfg.OrganizerID = organizer
	}

	// An explicitly empty value disables the retention job, so only validate
	// when the variable is set and non-empty.
	if retention, ok := os.LookupEnv("BOOKINGD_BLACKOUT_RETENTION"); ok {
		retention = strings.TrimSpace(retention)
		if retention == "" {
			cfg.BlackoutRetention = ""
		} else if _, err := cron.ParseStandard(retention); err != nil {
			invalid = append(invalid, "BOOKINGD_BLACKOUT_RETENTION")
		} else {
			cfg.BlackoutRetention = retention
		}
	}

	if len(invalid) > 0 {
		return Config{}, fmt.Errorf("invalid environment variables: %s", strings.Join(invalid, ", "))
	}

	return cfg, nil
}
