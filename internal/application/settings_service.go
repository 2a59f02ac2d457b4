package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/example/bookingd/internal/persistence"
)

// SettingsStore captures the persistence interactions needed by the service.
type SettingsStore interface {
	GetSettings(ctx context.Context, organizerID string) (persistence.OrganizerSettings, error)
	UpsertSettings(ctx context.Context, settings persistence.OrganizerSettings) error
}

// SettingsService manages the organizer's rule set.
type SettingsService struct {
	organizerID string
	store       SettingsStore
	now         func() time.Time
	logger      *slog.Logger
}

// NewSettingsService wires dependencies for settings operations.
func NewSettingsService(organizerID string, store SettingsStore, now func() time.Time, logger *slog.Logger) *SettingsService {
	if now == nil {
		now = time.Now
	}
	return &SettingsService{
		organizerID: organizerID,
		store:       store,
		now:         now,
		logger:      defaultLogger(logger),
	}
}

// Get loads the organizer's settings.
func (s *SettingsService) Get(ctx context.Context) (persistence.OrganizerSettings, error) {
	if s == nil || s.store == nil {
		return persistence.OrganizerSettings{}, fmt.Errorf("SettingsService is not configured")
	}
	settings, err := s.store.GetSettings(ctx, s.organizerID)
	if err != nil {
		if errors.Is(err, persistence.ErrNotFound) {
			return persistence.OrganizerSettings{}, ErrNotFound
		}
		return persistence.OrganizerSettings{}, err
	}
	return settings, nil
}

// Update validates and persists the organizer's settings.
func (s *SettingsService) Update(ctx context.Context, input SettingsInput) (persistence.OrganizerSettings, error) {
	if s == nil || s.store == nil {
		return persistence.OrganizerSettings{}, fmt.Errorf("SettingsService is not configured")
	}

	if vErr := validateSettings(input); vErr.HasErrors() {
		return persistence.OrganizerSettings{}, vErr
	}

	settings := persistence.OrganizerSettings{
		OrganizerID:      s.organizerID,
		Timezone:         input.Timezone,
		MeetingDuration:  input.MeetingDuration,
		BufferMinutes:    input.BufferMinutes,
		MinNoticeMinutes: input.MinNoticeMinutes,
		UpdatedAt:        s.now().UTC(),
	}
	if err := s.store.UpsertSettings(ctx, settings); err != nil {
		return persistence.OrganizerSettings{}, err
	}

	serviceLogger(ctx, s.logger, "settings", "update").InfoContext(ctx, "organizer settings updated",
		"timezone", settings.Timezone,
		"duration_minutes", settings.MeetingDuration,
	)
	return settings, nil
}

func validateSettings(input SettingsInput) *ValidationError {
	vErr := &ValidationError{}
	if input.Timezone == "" {
		vErr.add("timezone", "timezone is required")
	} else if _, err := time.LoadLocation(input.Timezone); err != nil {
		vErr.add("timezone", "must be a valid IANA zone id")
	}
	if input.MeetingDuration <= 0 {
		vErr.add("meeting_duration", "must be a positive number of minutes")
	}
	if input.BufferMinutes < 0 {
		vErr.add("buffer_minutes", "must not be negative")
	}
	if input.MinNoticeMinutes < 0 {
		vErr.add("min_notice_minutes", "must not be negative")
	}
	return vErr
}

// rulesOf converts persisted settings into the engine's rule set.
func rulesOf(settings persistence.OrganizerSettings) (time.Duration, time.Duration, time.Duration) {
	return time.Duration(settings.MeetingDuration) * time.Minute,
		time.Duration(settings.BufferMinutes) * time.Minute,
		time.Duration(settings.MinNoticeMinutes) * time.Minute
}

// validateStoredSettings guards the read path against malformed rows; a
// non-positive duration is a configuration fault surfaced to the caller, not
// silently defaulted.
func validateStoredSettings(settings persistence.OrganizerSettings) error {
	vErr := validateSettings(SettingsInput{
		Timezone:         settings.Timezone,
		MeetingDuration:  settings.MeetingDuration,
		BufferMinutes:    settings.BufferMinutes,
		MinNoticeMinutes: settings.MinNoticeMinutes,
	})
	if vErr.HasErrors() {
		return vErr
	}
	return nil
}
