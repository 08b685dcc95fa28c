package accountrequest

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi"

	"github.com/rbcalderon/attendance-management/internal/transport"
)

type ServiceAPI interface {
	Create(dto CreateAccountRequestDTO) (*AccountRequest, error)
	ListAll() ([]*AccountRequest, error)
	ListPending() ([]*AccountRequest, error)
	GetByID(requestID string) (*AccountRequest, error)
	Review(ctx context.Context, dto ReviewDTO) (*ReviewResult, error)
	SendPendingReminder(requestID string) error
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

func (h *Handler) CreateRequest(w http.ResponseWriter, r *http.Request) {
	var dto CreateAccountRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.Logger.Error("CreateRequest: invalid request body", "error", err)
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	req, err := h.Service.Create(dto)
	if err != nil {
		h.Logger.Error("CreateRequest: service error", "error", err, "school_id", dto.SchoolID)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusCreated, map[string]string{
		"request_id": req.RequestID,
	})
}

func (h *Handler) GetAllRequests(w http.ResponseWriter, r *http.Request) {
	requests, err := h.Service.ListAll()
	if err != nil {
		h.Logger.Error("GetAllRequests: service error", "error", err)
		h.WriteError(w, http.StatusInternalServerError, "failed to get account requests")
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"requests": requests,
		"count":    len(requests),
	})
}

func (h *Handler) GetPendingRequests(w http.ResponseWriter, r *http.Request) {
	requests, err := h.Service.ListPending()
	if err != nil {
		h.Logger.Error("GetPendingRequests: service error", "error", err)
		h.WriteError(w, http.StatusInternalServerError, "failed to get pending requests")
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"requests": requests,
		"count":    len(requests),
	})
}

func (h *Handler) GetRequest(w http.ResponseWriter, r *http.Request) {
	requestID := chi.URLParam(r, "requestId")

	req, err := h.Service.GetByID(requestID)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"request": req,
	})
}

func (h *Handler) ReviewRequest(w http.ResponseWriter, r *http.Request) {
	var dto ReviewDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.Logger.Error("ReviewRequest: invalid request body", "error", err)
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := h.Service.Review(r.Context(), dto)
	if err != nil {
		h.Logger.Error("ReviewRequest: service error", "error", err, "request_id", dto.RequestID)
		h.HandleServiceError(w, err)
		return
	}

	message := "account request " + strings.ToLower(result.Outcome)
	h.Logger.Info("ReviewRequest: review completed",
		"request_id", dto.RequestID,
		"outcome", result.Outcome,
		"notification_sent", result.NotificationSent)

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"message": message,
		"result":  result,
	})
}

func (h *Handler) SendPendingReminder(w http.ResponseWriter, r *http.Request) {
	requestID := r.URL.Query().Get("requestId")
	if requestID == "" {
		h.WriteError(w, http.StatusBadRequest, "requestId query parameter is required")
		return
	}

	if err := h.Service.SendPendingReminder(requestID); err != nil {
		h.Logger.Error("SendPendingReminder: service error", "error", err, "request_id", requestID)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteMessage(w, http.StatusOK, "reminder sent")
}
