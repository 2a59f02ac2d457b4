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

type blackoutService interface {
	List(ctx context.Context) ([]persistence.Blackout, error)
	Create(ctx context.Context, input application.BlackoutInput) (persistence.Blackout, error)
	Delete(ctx context.Context, id string) error
}

type BlackoutHandler struct {
	service   blackoutService
	responder responder
}

func NewBlackoutHandler(service blackoutService, logger *slog.Logger) *BlackoutHandler {
	return &BlackoutHandler{service: service, responder: newResponder(logger)}
}

func (h *BlackoutHandler) List(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	blackouts, err := h.service.List(r.Context())
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, blackoutsResponse{Blackouts: toBlackoutDTOs(blackouts)})
}

func (h *BlackoutHandler) Create(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	var req blackoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	input, err := req.toInput()
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	blackout, err := h.service.Create(r.Context(), input)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusCreated, blackoutResponse{Blackout: toBlackoutDTO(blackout)})
}

func (h *BlackoutHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	id, ok := BlackoutIDFromContext(r.Context())
	if !ok || strings.TrimSpace(id) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidBlackoutID)
		return
	}

	if err := h.service.Delete(r.Context(), id); err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusNoContent, nil)
}

type blackoutRequest struct {
	Start string `json:"start_time"`
	End   string `json:"end_time"`
}

func (r blackoutRequest) toInput() (application.BlackoutInput, error) {
	fields := make(map[string]string)
	start, err := parseTimestamp(r.Start)
	if err != nil {
		fields["start_time"] = "must be an RFC3339 timestamp"
	}
	end, err := parseTimestamp(r.End)
	if err != nil {
		fields["end_time"] = "must be an RFC3339 timestamp"
	}
	if len(fields) > 0 {
		return application.BlackoutInput{}, &application.ValidationError{FieldErrors: fields}
	}
	return application.BlackoutInput{Start: start, End: end}, nil
}

type blackoutResponse struct {
	Blackout blackoutDTO `json:"blackout"`
}

type blackoutsResponse struct {
	Blackouts []blackoutDTO `json:"blackouts"`
}

type blackoutDTO struct {
	ID    string `json:"id"`
	Start string `json:"start_time"`
	End   string `json:"end_time"`
}

func toBlackoutDTO(blackout persistence.Blackout) blackoutDTO {
	return blackoutDTO{
		ID:    blackout.ID,
		Start: blackout.Start.UTC().Format(time.RFC3339),
		End:   blackout.End.UTC().Format(time.RFC3339),
	}
}

func toBlackoutDTOs(blackouts []persistence.Blackout) []blackoutDTO {
	out := make([]blackoutDTO, 0, len(blackouts))
	for _, blackout := range blackouts {
		out = append(out, toBlackoutDTO(blackout))
	}
	return out
}
