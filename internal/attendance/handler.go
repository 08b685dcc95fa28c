package attendance

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi"

	"github.com/rbcalderon/attendance-management/internal"
	"github.com/rbcalderon/attendance-management/internal/transport"
)

type ServiceAPI interface {
	CheckIn(ctx context.Context, dto CheckDTO, userID string) (*Attendance, error)
	CheckOut(ctx context.Context, dto CheckDTO, userID string) (*Attendance, error)
	GetByEventAndUser(ctx context.Context, eventID, userID string) (*Attendance, error)
	ListByEvent(ctx context.Context, eventID string) ([]*Attendance, error)
	ListByUser(ctx context.Context, userID string) ([]*Attendance, error)
}

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
}

func NewHandler(baseHandler *transport.BaseHandler, service ServiceAPI) *Handler {
	return &Handler{
		BaseHandler: baseHandler,
		Service:     service,
	}
}

func (h *Handler) CheckIn(w http.ResponseWriter, r *http.Request) {
	userID, ok := internal.UserIDFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	var dto CheckDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.Logger.Error("CheckIn: invalid request body", "error", err)
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	att, err := h.Service.CheckIn(r.Context(), dto, userID)
	if err != nil {
		h.Logger.Error("CheckIn: service error", "error", err, "event_id", dto.EventID, "user_id", userID)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusCreated, map[string]interface{}{
		"attendance": att,
	})
}

func (h *Handler) CheckOut(w http.ResponseWriter, r *http.Request) {
	userID, ok := internal.UserIDFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	var dto CheckDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.Logger.Error("CheckOut: invalid request body", "error", err)
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	att, err := h.Service.CheckOut(r.Context(), dto, userID)
	if err != nil {
		h.Logger.Error("CheckOut: service error", "error", err, "event_id", dto.EventID, "user_id", userID)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"attendance": att,
	})
}

func (h *Handler) GetEventAttendance(w http.ResponseWriter, r *http.Request) {
	eventID := chi.URLParam(r, "eventId")

	records, err := h.Service.ListByEvent(r.Context(), eventID)
	if err != nil {
		h.Logger.Error("GetEventAttendance: service error", "error", err, "event_id", eventID)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"attendance": records,
		"count":      len(records),
	})
}

func (h *Handler) GetUserAttendance(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userId")

	records, err := h.Service.ListByUser(r.Context(), userID)
	if err != nil {
		h.Logger.Error("GetUserAttendance: service error", "error", err, "user_id", userID)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"attendance": records,
		"count":      len(records),
	})
}

// GetMyAttendance lists the calling user's attendance history.
func (h *Handler) GetMyAttendance(w http.ResponseWriter, r *http.Request) {
	userID, ok := internal.UserIDFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	records, err := h.Service.ListByUser(r.Context(), userID)
	if err != nil {
		h.Logger.Error("GetMyAttendance: service error", "error", err, "user_id", userID)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"attendance": records,
		"count":      len(records),
	})
}
