// Package handler contains chi HTTP handlers that translate HTTP
// requests/responses to and from the service layer.
package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/Shivanand-hulikatti/webinar-seats/internal/model"
	"github.com/Shivanand-hulikatti/webinar-seats/internal/service"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// SeatBooker books seats. Implemented by *service.BookingService.
type SeatBooker interface {
	BookSeat(ctx context.Context, req model.BookSeatRequest) error
}

// WebinarHandler holds all HTTP handlers for the webinar booking API.
type WebinarHandler struct {
	booking  SeatBooker
	webinars *service.WebinarService
	logger   *zap.Logger
}

// NewWebinarHandler constructs a WebinarHandler.
func NewWebinarHandler(booking SeatBooker, webinars *service.WebinarService, logger *zap.Logger) *WebinarHandler {
	return &WebinarHandler{booking: booking, webinars: webinars, logger: logger}
}

// Routes mounts the webinar routes on r.
func (h *WebinarHandler) Routes(r chi.Router) {
	r.Route("/webinars/{id}", func(r chi.Router) {
		r.Get("/", h.GetWebinar)
		r.Get("/participations", h.ListParticipations)
		r.Post("/participations", h.BookSeat)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, model.ErrorResponse{Error: msg})
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}

// writeServiceError maps domain errors to HTTP statuses.
func (h *WebinarHandler) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, model.ErrNotificationFailed):
		writeError(w, http.StatusBadGateway, "seat booked but the organizer could not be notified")
	case errors.Is(err, model.ErrInvalidInput):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, model.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, model.ErrConflict):
		writeError(w, http.StatusConflict, err.Error())
	default:
		h.logger.Error("request failed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Error(err),
		)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

// GetWebinar handles GET /webinars/{id}
func (h *WebinarHandler) GetWebinar(w http.ResponseWriter, r *http.Request) {
	webinar, err := h.webinars.GetWebinarDetails(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, webinar)
}

// ListParticipations handles GET /webinars/{id}/participations
func (h *WebinarHandler) ListParticipations(w http.ResponseWriter, r *http.Request) {
	ps, err := h.webinars.ListParticipations(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	// Return an empty array rather than null for better client compatibility.
	if ps == nil {
		ps = []model.Participation{}
	}
	writeJSON(w, http.StatusOK, ps)
}

// BookSeat handles POST /webinars/{id}/participations
// The requesting user is resolved from the body; authentication happens
// upstream of this service.
func (h *WebinarHandler) BookSeat(w http.ResponseWriter, r *http.Request) {
	webinarID := strings.TrimSpace(chi.URLParam(r, "id"))
	if webinarID == "" {
		h.writeServiceError(w, r, model.ErrWebinarIDRequired)
		return
	}

	var req model.ParticipateRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	req.UserID = strings.TrimSpace(req.UserID)
	if req.UserID == "" {
		writeError(w, http.StatusBadRequest, "user_id is required")
		return
	}

	user, err := h.webinars.GetUser(r.Context(), req.UserID)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	err = h.booking.BookSeat(r.Context(), model.BookSeatRequest{WebinarID: webinarID, User: *user})
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, model.ParticipateResponse{WebinarID: webinarID, UserID: user.ID})
}

// HealthCheck handles GET /health
func HealthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
