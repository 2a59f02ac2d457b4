package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"github.com/example/bookingd/internal/availability"
	"github.com/example/bookingd/internal/persistence"
)

// ScheduleStore captures the persistence interactions needed by the service.
type ScheduleStore interface {
	ListWeeklyDefaults(ctx context.Context, organizerID string) ([]persistence.WeeklyDefault, error)
	ReplaceWeeklyDefaults(ctx context.Context, organizerID string, defaults []persistence.WeeklyDefault) error
	DeleteWeeklyDefault(ctx context.Context, organizerID, id string) error
	ListOverrides(ctx context.Context, organizerID string) ([]persistence.DateOverride, error)
	ListOverridesForDate(ctx context.Context, organizerID, date string) ([]persistence.DateOverride, error)
	UpsertOverride(ctx context.Context, override persistence.DateOverride) error
	DeleteOverride(ctx context.Context, organizerID, id string) error
}

// ScheduleService manages the weekly template and per-date overrides. The
// non-overlap invariant for same-day windows is enforced here, before
// persistence, so the read path can trust stored rows.
type ScheduleService struct {
	organizerID string
	store       ScheduleStore
	idGenerator func() string
	logger      *slog.Logger
}

// NewScheduleService wires dependencies for schedule operations.
func NewScheduleService(organizerID string, store ScheduleStore, idGenerator func() string, logger *slog.Logger) *ScheduleService {
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	return &ScheduleService{
		organizerID: organizerID,
		store:       store,
		idGenerator: idGenerator,
		logger:      defaultLogger(logger),
	}
}

// ListWeeklyDefaults returns the recurring template.
func (s *ScheduleService) ListWeeklyDefaults(ctx context.Context) ([]persistence.WeeklyDefault, error) {
	if s == nil || s.store == nil {
		return nil, fmt.Errorf("ScheduleService is not configured")
	}
	return s.store.ListWeeklyDefaults(ctx, s.organizerID)
}

// ReplaceWeeklyDefaults validates and swaps the entire weekly template.
func (s *ScheduleService) ReplaceWeeklyDefaults(ctx context.Context, inputs []WeeklyDefaultInput) ([]persistence.WeeklyDefault, error) {
	if s == nil || s.store == nil {
		return nil, fmt.Errorf("ScheduleService is not configured")
	}

	if vErr := validateWeeklyDefaults(inputs); vErr.HasErrors() {
		return nil, vErr
	}

	defaults := make([]persistence.WeeklyDefault, 0, len(inputs))
	for _, input := range inputs {
		defaults = append(defaults, persistence.WeeklyDefault{
			ID:           s.idGenerator(),
			OrganizerID:  s.organizerID,
			DayOfWeek:    input.DayOfWeek,
			StartMinutes: input.StartMinutes,
			EndMinutes:   input.EndMinutes,
		})
	}

	if err := s.store.ReplaceWeeklyDefaults(ctx, s.organizerID, defaults); err != nil {
		return nil, err
	}

	serviceLogger(ctx, s.logger, "schedule", "replace_weekly_defaults").InfoContext(ctx, "weekly template replaced",
		"windows", len(defaults))
	return defaults, nil
}

// DeleteWeeklyDefault removes one template window.
func (s *ScheduleService) DeleteWeeklyDefault(ctx context.Context, id string) error {
	if s == nil || s.store == nil {
		return fmt.Errorf("ScheduleService is not configured")
	}
	if err := s.store.DeleteWeeklyDefault(ctx, s.organizerID, id); err != nil {
		if errors.Is(err, persistence.ErrNotFound) {
			return ErrNotFound
		}
		return err
	}
	return nil
}

// ListOverrides returns all overrides, optionally narrowed to one date.
func (s *ScheduleService) ListOverrides(ctx context.Context, date availability.Date) ([]persistence.DateOverride, error) {
	if s == nil || s.store == nil {
		return nil, fmt.Errorf("ScheduleService is not configured")
	}
	if date.IsZero() {
		return s.store.ListOverrides(ctx, s.organizerID)
	}
	return s.store.ListOverridesForDate(ctx, s.organizerID, date.String())
}

// UpsertOverride creates an override or updates it in place by id.
func (s *ScheduleService) UpsertOverride(ctx context.Context, input OverrideInput) (persistence.DateOverride, error) {
	if s == nil || s.store == nil {
		return persistence.DateOverride{}, fmt.Errorf("ScheduleService is not configured")
	}

	vErr := &ValidationError{}
	if input.Date.IsZero() {
		vErr.add("specific_date", "specific_date is required")
	}
	validateSpan(vErr, "", availability.Span{StartMinutes: input.StartMinutes, EndMinutes: input.EndMinutes})
	if vErr.HasErrors() {
		return persistence.DateOverride{}, vErr
	}

	existing, err := s.store.ListOverridesForDate(ctx, s.organizerID, input.Date.String())
	if err != nil {
		return persistence.DateOverride{}, err
	}
	candidate := availability.Span{StartMinutes: input.StartMinutes, EndMinutes: input.EndMinutes}
	for _, other := range existing {
		if other.ID == input.ID {
			continue
		}
		if candidate.Overlaps(availability.Span{StartMinutes: other.StartMinutes, EndMinutes: other.EndMinutes}) {
			vErr.add("window", "overlaps another override window on the same date")
			return persistence.DateOverride{}, vErr
		}
	}

	override := persistence.DateOverride{
		ID:           input.ID,
		OrganizerID:  s.organizerID,
		SpecificDate: input.Date.String(),
		StartMinutes: input.StartMinutes,
		EndMinutes:   input.EndMinutes,
	}
	if override.ID == "" {
		override.ID = s.idGenerator()
	}

	if err := s.store.UpsertOverride(ctx, override); err != nil {
		return persistence.DateOverride{}, err
	}
	return override, nil
}

// DeleteOverride removes one override.
func (s *ScheduleService) DeleteOverride(ctx context.Context, id string) error {
	if s == nil || s.store == nil {
		return fmt.Errorf("ScheduleService is not configured")
	}
	if err := s.store.DeleteOverride(ctx, s.organizerID, id); err != nil {
		if errors.Is(err, persistence.ErrNotFound) {
			return ErrNotFound
		}
		return err
	}
	return nil
}

func validateWeeklyDefaults(inputs []WeeklyDefaultInput) *ValidationError {
	vErr := &ValidationError{}

	perDay := make(map[int][]availability.Span)
	for i, input := range inputs {
		field := fmt.Sprintf("schedules[%d]", i)
		if input.DayOfWeek < 0 || input.DayOfWeek > 6 {
			vErr.add(field+".day_of_week", "must be between 0 and 6")
			continue
		}
		span := availability.Span{StartMinutes: input.StartMinutes, EndMinutes: input.EndMinutes}
		validateSpan(vErr, field, span)
		perDay[int(input.DayOfWeek)] = append(perDay[int(input.DayOfWeek)], span)
	}
	if vErr.HasErrors() {
		return vErr
	}

	for day, spans := range perDay {
		sort.Slice(spans, func(i, j int) bool { return spans[i].StartMinutes < spans[j].StartMinutes })
		for i := 1; i < len(spans); i++ {
			if spans[i-1].Overlaps(spans[i]) {
				vErr.add("schedules", fmt.Sprintf("windows overlap on day %d", day))
				return vErr
			}
		}
	}
	return vErr
}

func validateSpan(vErr *ValidationError, field string, span availability.Span) {
	prefix := "window"
	if field != "" {
		prefix = field
	}
	if err := span.Validate(); err != nil {
		vErr.add(prefix, "start_minutes must be inside the day and precede end_minutes")
	}
}
