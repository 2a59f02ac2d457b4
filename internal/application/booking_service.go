package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"
	"time"

	"github.com/example/bookingd/internal/persistence"
)

// BookingStore captures the persistence interactions needed by the service.
// The conditional insert and update are atomic at the storage boundary.
type BookingStore interface {
	GetBooking(ctx context.Context, organizerID, id string) (persistence.Booking, error)
	ListUpcoming(ctx context.Context, organizerID string, reference time.Time) ([]persistence.Booking, error)
	InsertConfirmedIfNoConflict(ctx context.Context, booking persistence.Booking) error
	UpdateIfNoConflict(ctx context.Context, booking persistence.Booking) error
	SetStatus(ctx context.Context, organizerID, id string, status persistence.BookingStatus, updatedAt time.Time) error
}

// BookingService commits guests to slots. Availability results are advisory;
// both Book and Reschedule revalidate the targeted interval against live
// storage state inside the store's atomic operations, never against the slot
// list the guest saw.
type BookingService struct {
	organizerID string
	settings    SettingsStore
	store       BookingStore
	idGenerator func() string
	now         func() time.Time
	logger      *slog.Logger
}

// NewBookingService wires dependencies for booking operations.
func NewBookingService(organizerID string, settings SettingsStore, store BookingStore, idGenerator func() string, now func() time.Time, logger *slog.Logger) *BookingService {
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	if now == nil {
		now = time.Now
	}
	return &BookingService{
		organizerID: organizerID,
		settings:    settings,
		store:       store,
		idGenerator: idGenerator,
		now:         now,
		logger:      defaultLogger(logger),
	}
}

// Book confirms a new booking for the requested slot, or fails with
// ErrSlotConflict when the buffered interval is no longer free.
func (s *BookingService) Book(ctx context.Context, input BookingInput) (persistence.Booking, error) {
	if s == nil || s.store == nil || s.settings == nil {
		return persistence.Booking{}, fmt.Errorf("BookingService is not configured")
	}

	settings, err := s.loadSettings(ctx)
	if err != nil {
		return persistence.Booking{}, err
	}
	if vErr := validateBookingInput(input); vErr.HasErrors() {
		return persistence.Booking{}, vErr
	}

	now := s.now().UTC()
	booking := s.buildBooking(s.idGenerator(), input, settings, now)
	booking.CreatedAt = now

	if err := s.store.InsertConfirmedIfNoConflict(ctx, booking); err != nil {
		if errors.Is(err, persistence.ErrConflict) {
			serviceLogger(ctx, s.logger, "booking", "book").InfoContext(ctx, "slot taken at commit time",
				"slot_start", booking.Start)
			return persistence.Booking{}, ErrSlotConflict
		}
		return persistence.Booking{}, err
	}

	serviceLogger(ctx, s.logger, "booking", "book").InfoContext(ctx, "booking confirmed",
		"booking_id", booking.ID,
		"slot_start", booking.Start,
	)
	return booking, nil
}

// Reschedule atomically swaps an existing booking to a new slot, keeping its
// identity and history. On ErrSlotConflict the original booking is untouched.
func (s *BookingService) Reschedule(ctx context.Context, bookingID string, input BookingInput) (persistence.Booking, error) {
	if s == nil || s.store == nil || s.settings == nil {
		return persistence.Booking{}, fmt.Errorf("BookingService is not configured")
	}
	if strings.TrimSpace(bookingID) == "" {
		return persistence.Booking{}, ErrNotFound
	}

	settings, err := s.loadSettings(ctx)
	if err != nil {
		return persistence.Booking{}, err
	}
	if vErr := validateBookingInput(input); vErr.HasErrors() {
		return persistence.Booking{}, vErr
	}

	booking := s.buildBooking(bookingID, input, settings, s.now().UTC())

	if err := s.store.UpdateIfNoConflict(ctx, booking); err != nil {
		switch {
		case errors.Is(err, persistence.ErrNotFound):
			err = ErrNotFound
		case errors.Is(err, persistence.ErrConflict):
			err = ErrSlotConflict
		}
		if kind := ErrorKind(err); kind == "not_found" || kind == "slot_conflict" {
			serviceLogger(ctx, s.logger, "booking", "reschedule").InfoContext(ctx, "reschedule rejected",
				"booking_id", bookingID,
				"error_kind", kind,
			)
		}
		return persistence.Booking{}, err
	}

	stored, err := s.store.GetBooking(ctx, s.organizerID, bookingID)
	if err != nil {
		if errors.Is(err, persistence.ErrNotFound) {
			return persistence.Booking{}, ErrNotFound
		}
		return persistence.Booking{}, err
	}

	serviceLogger(ctx, s.logger, "booking", "reschedule").InfoContext(ctx, "booking rescheduled",
		"booking_id", stored.ID,
		"slot_start", stored.Start,
	)
	return stored, nil
}

// Cancel releases a booking's interval. Cancelling an already cancelled
// booking succeeds without effect.
func (s *BookingService) Cancel(ctx context.Context, bookingID string) error {
	if s == nil || s.store == nil {
		return fmt.Errorf("BookingService is not configured")
	}
	err := s.store.SetStatus(ctx, s.organizerID, bookingID, persistence.BookingStatusCancelled, s.now().UTC())
	if err != nil {
		if errors.Is(err, persistence.ErrNotFound) {
			return ErrNotFound
		}
		return err
	}

	serviceLogger(ctx, s.logger, "booking", "cancel").InfoContext(ctx, "booking cancelled", "booking_id", bookingID)
	return nil
}

// ListUpcoming returns confirmed bookings that have not yet ended.
func (s *BookingService) ListUpcoming(ctx context.Context) ([]persistence.Booking, error) {
	if s == nil || s.store == nil {
		return nil, fmt.Errorf("BookingService is not configured")
	}
	return s.store.ListUpcoming(ctx, s.organizerID, s.now().UTC())
}

func (s *BookingService) loadSettings(ctx context.Context) (persistence.OrganizerSettings, error) {
	settings, err := s.settings.GetSettings(ctx, s.organizerID)
	if err != nil {
		if errors.Is(err, persistence.ErrNotFound) {
			return persistence.OrganizerSettings{}, ErrNotFound
		}
		return persistence.OrganizerSettings{}, err
	}
	if err := validateStoredSettings(settings); err != nil {
		return persistence.OrganizerSettings{}, err
	}
	return settings, nil
}

// buildBooking derives the slot end and buffered bounds from the rules in
// force at commit time.
func (s *BookingService) buildBooking(id string, input BookingInput, settings persistence.OrganizerSettings, now time.Time) persistence.Booking {
	duration, buffer, _ := rulesOf(settings)
	start := input.SlotStart.UTC()
	end := start.Add(duration)
	return persistence.Booking{
		ID:            id,
		OrganizerID:   s.organizerID,
		GuestName:     strings.TrimSpace(input.GuestName),
		GuestEmail:    strings.TrimSpace(input.GuestEmail),
		Start:         start,
		End:           end,
		BufferedStart: start.Add(-buffer),
		BufferedEnd:   end.Add(buffer),
		Status:        persistence.BookingStatusConfirmed,
		UpdatedAt:     now,
	}
}

func validateBookingInput(input BookingInput) *ValidationError {
	vErr := &ValidationError{}
	if input.SlotStart.IsZero() {
		vErr.add("slot_start", "slot_start is required")
	}
	if strings.TrimSpace(input.GuestName) == "" {
		vErr.add("guest_name", "guest_name is required")
	}
	email := strings.TrimSpace(input.GuestEmail)
	if email == "" {
		vErr.add("guest_email", "guest_email is required")
	} else if _, err := mail.ParseAddress(email); err != nil {
		vErr.add("guest_email", "must be a valid email address")
	}
	return vErr
}
