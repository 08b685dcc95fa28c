package certificate

import (
	"context"
	"fmt"
	"net/http"

	"github.com/go-chi/chi"

	"github.com/rbcalderon/attendance-management/internal"
	"github.com/rbcalderon/attendance-management/internal/transport"
)

type ServiceAPI interface {
	IssueAndSend(ctx context.Context, eventID, userID string) (*Certificate, error)
	RenderPDF(ctx context.Context, certificateID string) ([]byte, error)
	GetByID(ctx context.Context, certificateID string) (*Certificate, error)
	ListByEvent(ctx context.Context, eventID string) ([]*Certificate, error)
	ListByUser(ctx context.Context, userID string) ([]*Certificate, error)
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

func (h *Handler) GetCertificate(w http.ResponseWriter, r *http.Request) {
	certificateID := chi.URLParam(r, "certificateId")

	cert, err := h.Service.GetByID(r.Context(), certificateID)
	if err != nil {
		h.Logger.Error("GetCertificate: service error", "error", err, "certificate_id", certificateID)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"certificate": cert,
	})
}

// DownloadCertificate streams the rendered PDF.
func (h *Handler) DownloadCertificate(w http.ResponseWriter, r *http.Request) {
	certificateID := chi.URLParam(r, "certificateId")

	cert, err := h.Service.GetByID(r.Context(), certificateID)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	pdfBytes, err := h.Service.RenderPDF(r.Context(), certificateID)
	if err != nil {
		h.Logger.Error("DownloadCertificate: render error", "error", err, "certificate_id", certificateID)
		h.HandleServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=%q", fmt.Sprintf("certificate-%s.pdf", cert.SerialNo)))
	w.WriteHeader(http.StatusOK)
	w.Write(pdfBytes)
}

func (h *Handler) GetEventCertificates(w http.ResponseWriter, r *http.Request) {
	eventID := chi.URLParam(r, "eventId")

	certs, err := h.Service.ListByEvent(r.Context(), eventID)
	if err != nil {
		h.Logger.Error("GetEventCertificates: service error", "error", err, "event_id", eventID)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"certificates": certs,
		"count":        len(certs),
	})
}

func (h *Handler) GetMyCertificates(w http.ResponseWriter, r *http.Request) {
	userID, ok := internal.UserIDFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	certs, err := h.Service.ListByUser(r.Context(), userID)
	if err != nil {
		h.Logger.Error("GetMyCertificates: service error", "error", err, "user_id", userID)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"certificates": certs,
		"count":        len(certs),
	})
}

// ResendCertificate regenerates the PDF and emails it again. Issuance is
// idempotent, so the serial stays stable across resends.
func (h *Handler) ResendCertificate(w http.ResponseWriter, r *http.Request) {
	eventID := chi.URLParam(r, "eventId")
	userID := chi.URLParam(r, "userId")

	cert, err := h.Service.IssueAndSend(r.Context(), eventID, userID)
	if err != nil {
		h.Logger.Error("ResendCertificate: service error", "error", err, "event_id", eventID, "user_id", userID)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"certificate": cert,
	})
}
