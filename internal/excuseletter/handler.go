package excuseletter

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
	Submit(ctx context.Context, dto SubmitExcuseLetterDTO, userID string) (*ExcuseLetter, error)
	GetByID(ctx context.Context, letterID string) (*ExcuseLetter, error)
	Review(ctx context.Context, dto ReviewExcuseLetterDTO) (*ExcuseLetter, error)
	List(ctx context.Context, filter ListFilter) (*Page, error)
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

func (h *Handler) SubmitLetter(w http.ResponseWriter, r *http.Request) {
	userID, ok := internal.UserIDFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	var dto SubmitExcuseLetterDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.Logger.Error("SubmitLetter: invalid request body", "error", err)
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	letter, err := h.Service.Submit(r.Context(), dto, userID)
	if err != nil {
		h.Logger.Error("SubmitLetter: service error", "error", err, "event_id", dto.EventID, "user_id", userID)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusCreated, map[string]interface{}{
		"letter": letter,
	})
}

func (h *Handler) GetLetter(w http.ResponseWriter, r *http.Request) {
	letterID := chi.URLParam(r, "letterId")

	letter, err := h.Service.GetByID(r.Context(), letterID)
	if err != nil {
		h.Logger.Error("GetLetter: service error", "error", err, "letter_id", letterID)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"letter": letter,
	})
}

func (h *Handler) ReviewLetter(w http.ResponseWriter, r *http.Request) {
	reviewerID, ok := internal.UserIDFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	var dto ReviewExcuseLetterDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.Logger.Error("ReviewLetter: invalid request body", "error", err)
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	dto.LetterID = chi.URLParam(r, "letterId")
	dto.ReviewedBy = reviewerID

	letter, err := h.Service.Review(r.Context(), dto)
	if err != nil {
		h.Logger.Error("ReviewLetter: service error", "error", err, "letter_id", dto.LetterID)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"letter": letter,
	})
}

func (h *Handler) ListLetters(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := ListFilter{
		Status:  q.Get("status"),
		EventID: q.Get("eventId"),
		UserID:  q.Get("userId"),
	}
	if raw := q.Get("page"); raw != "" {
		filter.Page, _ = strconv.Atoi(raw)
	}
	if raw := q.Get("pageSize"); raw != "" {
		filter.PageSize, _ = strconv.Atoi(raw)
	}

	page, err := h.Service.List(r.Context(), filter)
	if err != nil {
		h.Logger.Error("ListLetters: service error", "error", err)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, page)
}

// ListMyLetters restricts the listing to the calling user.
func (h *Handler) ListMyLetters(w http.ResponseWriter, r *http.Request) {
	userID, ok := internal.UserIDFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	q := r.URL.Query()
	filter := ListFilter{
		Status:  q.Get("status"),
		EventID: q.Get("eventId"),
		UserID:  userID,
	}
	if raw := q.Get("page"); raw != "" {
		filter.Page, _ = strconv.Atoi(raw)
	}
	if raw := q.Get("pageSize"); raw != "" {
		filter.PageSize, _ = strconv.Atoi(raw)
	}

	page, err := h.Service.List(r.Context(), filter)
	if err != nil {
		h.Logger.Error("ListMyLetters: service error", "error", err, "user_id", userID)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, page)
}
