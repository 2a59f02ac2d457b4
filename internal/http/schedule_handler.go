package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/example/bookingd/internal/application"
	"github.com/example/bookingd/internal/availability"
	"github.com/example/bookingd/internal/persistence"
)

type scheduleService interface {
	ListWeeklyDefaults(ctx context.Context) ([]persistence.WeeklyDefault, error)
	ReplaceWeeklyDefaults(ctx context.Context, inputs []application.WeeklyDefaultInput) ([]persistence.WeeklyDefault, error)
	DeleteWeeklyDefault(ctx context.Context, id string) error
	ListOverrides(ctx context.Context, date availability.Date) ([]persistence.DateOverride, error)
	UpsertOverride(ctx context.Context, input application.OverrideInput) (persistence.DateOverride, error)
	DeleteOverride(ctx context.Context, id string) error
}

type ScheduleHandler struct {
	service   scheduleService
	responder responder
}

func NewScheduleHandler(service scheduleService, logger *slog.Logger) *ScheduleHandler {
	return &ScheduleHandler{service: service, responder: newResponder(logger)}
}

func (h *ScheduleHandler) ListDefaults(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	defaults, err := h.service.ListWeeklyDefaults(r.Context())
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, weeklyDefaultsResponse{Defaults: toWeeklyDefaultDTOs(defaults)})
}

func (h *ScheduleHandler) ReplaceDefaults(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	var req weeklyDefaultsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	inputs := make([]application.WeeklyDefaultInput, 0, len(req.Defaults))
	for _, entry := range req.Defaults {
		inputs = append(inputs, application.WeeklyDefaultInput{
			DayOfWeek:    time.Weekday(entry.DayOfWeek),
			StartMinutes: entry.StartMinutes,
			EndMinutes:   entry.EndMinutes,
		})
	}

	defaults, err := h.service.ReplaceWeeklyDefaults(r.Context(), inputs)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, weeklyDefaultsResponse{Defaults: toWeeklyDefaultDTOs(defaults)})
}

func (h *ScheduleHandler) DeleteDefault(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	id, ok := DefaultIDFromContext(r.Context())
	if !ok || strings.TrimSpace(id) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidDefaultID)
		return
	}

	if err := h.service.DeleteWeeklyDefault(r.Context(), id); err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusNoContent, nil)
}

func (h *ScheduleHandler) ListOverrides(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	var date availability.Date
	if raw := strings.TrimSpace(r.URL.Query().Get("date")); raw != "" {
		parsed, err := availability.ParseDate(raw)
		if err != nil {
			h.responder.writeError(r.Context(), w, http.StatusBadRequest, errors.New("date must be in YYYY-MM-DD form"))
			return
		}
		date = parsed
	}

	overrides, err := h.service.ListOverrides(r.Context(), date)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, overridesResponse{Overrides: toOverrideDTOs(overrides)})
}

func (h *ScheduleHandler) UpsertOverride(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	var req overrideRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	input := application.OverrideInput{
		ID:           strings.TrimSpace(req.ID),
		StartMinutes: req.StartMinutes,
		EndMinutes:   req.EndMinutes,
	}
	if raw := strings.TrimSpace(req.SpecificDate); raw != "" {
		parsed, err := availability.ParseDate(raw)
		if err != nil {
			h.responder.writeError(r.Context(), w, http.StatusBadRequest, errors.New("specific_date must be in YYYY-MM-DD form"))
			return
		}
		input.Date = parsed
	}

	override, err := h.service.UpsertOverride(r.Context(), input)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	status := http.StatusCreated
	if input.ID != "" {
		status = http.StatusOK
	}
	h.responder.writeJSON(r.Context(), w, status, overrideResponse{Override: toOverrideDTO(override)})
}

func (h *ScheduleHandler) DeleteOverride(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	id, ok := OverrideIDFromContext(r.Context())
	if !ok || strings.TrimSpace(id) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidOverrideID)
		return
	}

	if err := h.service.DeleteOverride(r.Context(), id); err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusNoContent, nil)
}

type weeklyDefaultsRequest struct {
	Defaults []weeklyDefaultEntry `json:"defaults"`
}

type weeklyDefaultEntry struct {
	DayOfWeek    int `json:"day_of_week"`
	StartMinutes int `json:"start_minutes"`
	EndMinutes   int `json:"end_minutes"`
}

type weeklyDefaultsResponse struct {
	Defaults []weeklyDefaultDTO `json:"defaults"`
}

type weeklyDefaultDTO struct {
	ID           string `json:"id"`
	DayOfWeek    int    `json:"day_of_week"`
	StartMinutes int    `json:"start_minutes"`
	EndMinutes   int    `json:"end_minutes"`
}

func toWeeklyDefaultDTOs(defaults []persistence.WeeklyDefault) []weeklyDefaultDTO {
	out := make([]weeklyDefaultDTO, 0, len(defaults))
	for _, window := range defaults {
		out = append(out, weeklyDefaultDTO{
			ID:           window.ID,
			DayOfWeek:    int(window.DayOfWeek),
			StartMinutes: window.StartMinutes,
			EndMinutes:   window.EndMinutes,
		})
	}
	return out
}

type overrideRequest struct {
	ID           string `json:"id"`
	SpecificDate string `json:"specific_date"`
	StartMinutes int    `json:"start_minutes"`
	EndMinutes   int    `json:"end_minutes"`
}

type overrideResponse struct {
	Override overrideDTO `json:"override"`
}

type overridesResponse struct {
	Overrides []overrideDTO `json:"overrides"`
}

type overrideDTO struct {
	ID           string `json:"id"`
	SpecificDate string `json:"specific_date"`
	StartMinutes int    `json:"start_minutes"`
	EndMinutes   int    `json:"end_minutes"`
}

func toOverrideDTO(override persistence.DateOverride) overrideDTO {
	return overrideDTO{
		ID:           override.ID,
		SpecificDate: override.SpecificDate,
		StartMinutes: override.StartMinutes,
		EndMinutes:   override.EndMinutes,
	}
}

func toOverrideDTOs(overrides []persistence.DateOverride) []overrideDTO {
	out := make([]overrideDTO, 0, len(overrides))
	for _, override := range overrides {
		out = append(out, toOverrideDTO(override))
	}
	return out
}
