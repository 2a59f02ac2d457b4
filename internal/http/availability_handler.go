package http

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/example/bookingd/internal/application"
	"github.com/example/bookingd/internal/availability"
)

type availabilityService interface {
	Resolve(ctx context.Context, date availability.Date) (application.AvailabilityResult, error)
}

type AvailabilityHandler struct {
	service   availabilityService
	responder responder
}

func NewAvailabilityHandler(service availabilityService, logger *slog.Logger) *AvailabilityHandler {
	return &AvailabilityHandler{service: service, responder: newResponder(logger)}
}

func (h *AvailabilityHandler) Get(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	raw := strings.TrimSpace(r.URL.Query().Get("date"))
	if raw == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errMissingDate)
		return
	}
	date, err := availability.ParseDate(raw)
	if err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errors.New("date must be in YYYY-MM-DD form"))
		return
	}

	result, err := h.service.Resolve(r.Context(), date)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, toAvailabilityDTO(result))
}

type availabilityDTO struct {
	Date            string   `json:"date"`
	Slots           []string `json:"slots"`
	DurationMinutes int      `json:"duration_minutes"`
	BufferMinutes   int      `json:"buffer_minutes"`
}

func toAvailabilityDTO(result application.AvailabilityResult) availabilityDTO {
	slots := make([]string, 0, len(result.Slots))
	for _, slot := range result.Slots {
		slots = append(slots, slot.UTC().Format(time.RFC3339))
	}
	return availabilityDTO{
		Date:            result.Date.String(),
		Slots:           slots,
		DurationMinutes: result.DurationMinutes,
		BufferMinutes:   result.BufferMinutes,
	}
}
