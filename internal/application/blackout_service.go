package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/example/bookingd/internal/persistence"
)

// BlackoutStore captures the persistence interactions needed by the service.
type BlackoutStore interface {
	ListBlackouts(ctx context.Context, organizerID string) ([]persistence.Blackout, error)
	CreateBlackout(ctx context.Context, blackout persistence.Blackout) error
	DeleteBlackout(ctx context.Context, organizerID, id string) error
	DeleteEndedBefore(ctx context.Context, reference time.Time) (int64, error)
}

// BlackoutService manages hard-unavailable intervals.
type BlackoutService struct {
	organizerID string
	store       BlackoutStore
	idGenerator func() string
	now         func() time.Time
	logger      *slog.Logger
}

// NewBlackoutService wires dependencies for blackout operations.
func NewBlackoutService(organizerID string, store BlackoutStore, idGenerator func() string, now func() time.Time, logger *slog.Logger) *BlackoutService {
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	if now == nil {
		now = time.Now
	}
	return &BlackoutService{
		organizerID: organizerID,
		store:       store,
		idGenerator: idGenerator,
		now:         now,
		logger:      defaultLogger(logger),
	}
}

// List returns all blackout periods.
func (s *BlackoutService) List(ctx context.Context) ([]persistence.Blackout, error) {
	if s == nil || s.store == nil {
		return nil, fmt.Errorf("BlackoutService is not configured")
	}
	return s.store.ListBlackouts(ctx, s.organizerID)
}

// Create validates and persists a blackout period.
func (s *BlackoutService) Create(ctx context.Context, input BlackoutInput) (persistence.Blackout, error) {
	if s == nil || s.store == nil {
		return persistence.Blackout{}, fmt.Errorf("BlackoutService is not configured")
	}

	vErr := &ValidationError{}
	if input.Start.IsZero() {
		vErr.add("start_time", "start_time is required")
	}
	if input.End.IsZero() {
		vErr.add("end_time", "end_time is required")
	}
	if !input.Start.IsZero() && !input.End.IsZero() && !input.Start.Before(input.End) {
		vErr.add("time", "start_time must precede end_time")
	}
	if vErr.HasErrors() {
		return persistence.Blackout{}, vErr
	}

	blackout := persistence.Blackout{
		ID:          s.idGenerator(),
		OrganizerID: s.organizerID,
		Start:       input.Start.UTC(),
		End:         input.End.UTC(),
	}
	if err := s.store.CreateBlackout(ctx, blackout); err != nil {
		return persistence.Blackout{}, err
	}
	return blackout, nil
}

// Delete removes a blackout period.
func (s *BlackoutService) Delete(ctx context.Context, id string) error {
	if s == nil || s.store == nil {
		return fmt.Errorf("BlackoutService is not configured")
	}
	if err := s.store.DeleteBlackout(ctx, s.organizerID, id); err != nil {
		if errors.Is(err, persistence.ErrNotFound) {
			return ErrNotFound
		}
		return err
	}
	return nil
}

// PurgeExpired removes blackouts that ended before now. Invoked by the
// retention job.
func (s *BlackoutService) PurgeExpired(ctx context.Context) (int64, error) {
	if s == nil || s.store == nil {
		return 0, fmt.Errorf("BlackoutService is not configured")
	}
	purged, err := s.store.DeleteEndedBefore(ctx, s.now().UTC())
	if err != nil {
		return 0, err
	}
	if purged > 0 {
		serviceLogger(ctx, s.logger, "blackout", "purge_expired").InfoContext(ctx, "expired blackouts purged", "count", purged)
	}
	return purged, nil
}
