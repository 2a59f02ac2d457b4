package application

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/example/bookingd/internal/persistence"
)

func TestSettingsService_UpdatePersists(t *testing.T) {
	t.Parallel()

	store := &settingsStoreStub{}
	now := time.Date(2025, time.November, 24, 8, 0, 0, 0, time.UTC)
	svc := NewSettingsService("org-1", store, fixedNow(now), nil)

	settings, err := svc.Update(context.Background(), SettingsInput{
		Timezone:         "America/New_York",
		MeetingDuration:  45,
		BufferMinutes:    15,
		MinNoticeMinutes: 120,
	})
	if err != nil {
		t.Fatalf("Update returned error: %v", err)
	}
	if settings.OrganizerID != "org-1" {
		t.Fatalf("expected organizer id stamped, got %q", settings.OrganizerID)
	}
	if !settings.UpdatedAt.Equal(now) {
		t.Fatalf("expected updated_at %v, got %v", now, settings.UpdatedAt)
	}
	if store.upserted.MeetingDuration != 45 {
		t.Fatalf("expected persisted duration 45, got %d", store.upserted.MeetingDuration)
	}
}

func TestSettingsService_UpdateValidation(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name  string
		input SettingsInput
		field string
	}{
		{
			name:  "missing timezone",
			input: SettingsInput{MeetingDuration: 30},
			field: "timezone",
		},
		{
			name:  "unknown timezone",
			input: SettingsInput{Timezone: "Mars/Olympus_Mons", MeetingDuration: 30},
			field: "timezone",
		},
		{
			name:  "zero duration",
			input: SettingsInput{Timezone: "UTC", MeetingDuration: 0},
			field: "meeting_duration",
		},
		{
			name:  "negative buffer",
			input: SettingsInput{Timezone: "UTC", MeetingDuration: 30, BufferMinutes: -5},
			field: "buffer_minutes",
		},
		{
			name:  "negative notice",
			input: SettingsInput{Timezone: "UTC", MeetingDuration: 30, MinNoticeMinutes: -1},
			field: "min_notice_minutes",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			store := &settingsStoreStub{}
			svc := NewSettingsService("org-1", store, nil, nil)

			_, err := svc.Update(context.Background(), tc.input)
			var vErr *ValidationError
			if !errors.As(err, &vErr) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			if _, ok := vErr.FieldErrors[tc.field]; !ok {
				t.Fatalf("expected an error on %q, got %v", tc.field, vErr.FieldErrors)
			}
			if store.upserted.OrganizerID != "" {
				t.Fatal("invalid settings must not reach storage")
			}
		})
	}
}

func TestSettingsService_GetMapsNotFound(t *testing.T) {
	t.Parallel()

	svc := NewSettingsService("org-1", &settingsStoreStub{err: persistence.ErrNotFound}, nil, nil)

	if _, err := svc.Get(context.Background()); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
