package certificate

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/rbcalderon/attendance-management/internal/core/events"
)

type EventHandler struct {
	service *Service
	logger  *slog.Logger
}

func NewEventHandler(service *Service, logger *slog.Logger) *EventHandler {
	return &EventHandler{
		service: service,
		logger:  logger,
	}
}

// HandleAttendanceCheckedIn issues and emails the attendance certificate when
// a user first checks in. Failures are logged and returned to the bus; the
// check-in itself has already succeeded.
func (h *EventHandler) HandleAttendanceCheckedIn(ctx context.Context, event events.Event) error {
	checkedIn, ok := event.(*events.AttendanceCheckedInEvent)
	if !ok {
		h.logger.Error("invalid event type for attendance check-in handler", "event_type", event.EventType())
		return fmt.Errorf("expected AttendanceCheckedInEvent, got %T", event)
	}

	h.logger.Info("handling check-in event for certificate issuance",
		"event_ref_id", checkedIn.EventRefID,
		"user_id", checkedIn.UserID,
		"event_id", checkedIn.EventID())

	cert, err := h.service.IssueAndSend(ctx, checkedIn.EventRefID, checkedIn.UserID)
	if err != nil {
		h.logger.Error("failed to issue or send certificate",
			"error", err,
			"event_ref_id", checkedIn.EventRefID,
			"user_id", checkedIn.UserID,
			"event_id", checkedIn.EventID())
		return fmt.Errorf("certificate issuance failed for user %s: %w", checkedIn.UserID, err)
	}

	h.logger.Info("certificate issued and sent",
		"certificate_id", cert.ID,
		"serial_no", cert.SerialNo,
		"user_id", checkedIn.UserID)

	return nil
}

func (h *EventHandler) RegisterEventHandlers(eventBus *events.EventBus) {
	eventBus.Subscribe(events.EventTypeAttendanceCheckedIn, h.HandleAttendanceCheckedIn)

	h.logger.Info("certificate event handlers registered",
		"handlers", []string{events.EventTypeAttendanceCheckedIn})
}
