package event

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi"

	"github.com/rbcalderon/attendance-management/internal"
	"github.com/rbcalderon/attendance-management/internal/transport"
)

type ServiceAPI interface {
	Create(ctx context.Context, dto CreateEventDTO, createdBy string) (*Event, error)
	GetByID(ctx context.Context, eventID string) (*Event, error)
	List(ctx context.Context) ([]*Event, error)
	Update(ctx context.Context, eventID string, dto UpdateEventDTO) (*Event, error)
	Delete(ctx context.Context, eventID string) error
	QRCodePNG(ctx context.Context, eventID string, size int) ([]byte, error)
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

func (h *Handler) CreateEvent(w http.ResponseWriter, r *http.Request) {
	var dto CreateEventDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.Logger.Error("CreateEvent: invalid request body", "error", err)
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	createdBy, _ := internal.UserIDFromContext(r.Context())

	event, err := h.Service.Create(r.Context(), dto, createdBy)
	if err != nil {
		h.Logger.Error("CreateEvent: service error", "error", err, "title", dto.Title)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusCreated, map[string]interface{}{
		"event": event,
	})
}

func (h *Handler) GetEvents(w http.ResponseWriter, r *http.Request) {
	events, err := h.Service.List(r.Context())
	if err != nil {
		h.Logger.Error("GetEvents: service error", "error", err)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"events": events,
		"count":  len(events),
	})
}

func (h *Handler) GetEvent(w http.ResponseWriter, r *http.Request) {
	eventID := chi.URLParam(r, "eventId")

	event, err := h.Service.GetByID(r.Context(), eventID)
	if err != nil {
		h.Logger.Error("GetEvent: service error", "error", err, "event_id", eventID)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"event": event,
	})
}

func (h *Handler) UpdateEvent(w http.ResponseWriter, r *http.Request) {
	eventID := chi.URLParam(r, "eventId")

	var dto UpdateEventDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.Logger.Error("UpdateEvent: invalid request body", "error", err)
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	event, err := h.Service.Update(r.Context(), eventID, dto)
	if err != nil {
		h.Logger.Error("UpdateEvent: service error", "error", err, "event_id", eventID)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"event": event,
	})
}

func (h *Handler) DeleteEvent(w http.ResponseWriter, r *http.Request) {
	eventID := chi.URLParam(r, "eventId")

	if err := h.Service.Delete(r.Context(), eventID); err != nil {
		h.Logger.Error("DeleteEvent: service error", "error", err, "event_id", eventID)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteMessage(w, http.StatusOK, "event deleted")
}

// GetEventQRCode writes the check-in QR PNG directly, bypassing the JSON
// envelope.
func (h *Handler) GetEventQRCode(w http.ResponseWriter, r *http.Request) {
	eventID := chi.URLParam(r, "eventId")

	size := 0
	if raw := r.URL.Query().Get("size"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 64 || parsed > 1024 {
			h.WriteError(w, http.StatusBadRequest, "size must be an integer between 64 and 1024")
			return
		}
		size = parsed
	}

	png, err := h.Service.QRCodePNG(r.Context(), eventID, size)
	if err != nil {
		h.Logger.Error("GetEventQRCode: service error", "error", err, "event_id", eventID)
		h.HandleServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.WriteHeader(http.StatusOK)
	w.Write(png)
}
