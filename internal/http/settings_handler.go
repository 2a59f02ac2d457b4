package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/example/bookingd/internal/application"
	"github.com/example/bookingd/internal/persistence"
)

type settingsService interface {
	Get(ctx context.Context) (persistence.OrganizerSettings, error)
	Update(ctx context.Context, input application.SettingsInput) (persistence.OrganizerSettings, error)
}

type SettingsHandler struct {
	service   settingsService
	responder responder
}

func NewSettingsHandler(service settingsService, logger *slog.Logger) *SettingsHandler {
	return &SettingsHandler{service: service, responder: newResponder(logger)}
}

func (h *SettingsHandler) Get(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	settings, err := h.service.Get(r.Context())
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, settingsResponse{Settings: toSettingsDTO(settings)})
}

func (h *SettingsHandler) Update(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	var req settingsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	settings, err := h.service.Update(r.Context(), application.SettingsInput{
		Timezone:         strings.TrimSpace(req.Timezone),
		MeetingDuration:  req.MeetingDuration,
		BufferMinutes:    req.BufferMinutes,
		MinNoticeMinutes: req.MinNoticeMinutes,
	})
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, settingsResponse{Settings: toSettingsDTO(settings)})
}

type settingsRequest struct {
	Timezone         string `json:"timezone"`
	MeetingDuration  int    `json:"meeting_duration"`
	BufferMinutes    int    `json:"buffer_minutes"`
	MinNoticeMinutes int    `json:"min_notice_minutes"`
}

type settingsResponse struct {
	Settings settingsDTO `json:"settings"`
}

type settingsDTO struct {
	Timezone         string `json:"timezone"`
	MeetingDuration  int    `json:"meeting_duration"`
	BufferMinutes    int    `json:"buffer_minutes"`
	MinNoticeMinutes int    `json:"min_notice_minutes"`
	UpdatedAt        string `json:"updated_at"`
}

func toSettingsDTO(settings persistence.OrganizerSettings) settingsDTO {
	return settingsDTO{
		Timezone:         settings.Timezone,
		MeetingDuration:  settings.MeetingDuration,
		BufferMinutes:    settings.BufferMinutes,
		MinNoticeMinutes: settings.MinNoticeMinutes,
		UpdatedAt:        settings.UpdatedAt.UTC().Format(time.RFC3339),
	}
}
