package attendance

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/rbcalderon/attendance-management/internal"
	"github.com/rbcalderon/attendance-management/internal/core/events"
	"github.com/rbcalderon/attendance-management/internal/event"
)

type RepositoryAPI interface {
	// CreateIfAbsent inserts the record unless one already exists for the
	// same (event, user) pair. It reports whether the insert happened.
	CreateIfAbsent(att *Attendance) (bool, error)
	GetByEventAndUser(eventID, userID string) (*Attendance, error)
	SetTimeOut(eventID, userID string, timeOut time.Time) (bool, error)
	ListByEvent(eventID string) ([]*Attendance, error)
	ListByUser(userID string) ([]*Attendance, error)
}

type EventGetterAPI interface {
	GetByID(ctx context.Context, eventID string) (*event.Event, error)
}

type EventPublisherAPI interface {
	Publish(ctx context.Context, event events.Event) error
}

type Service struct {
	repo     RepositoryAPI
	events   EventGetterAPI
	eventBus EventPublisherAPI
	logger   *slog.Logger
}

func NewService(repo RepositoryAPI, eventGetter EventGetterAPI, eventBus EventPublisherAPI, logger *slog.Logger) *Service {
	return &Service{
		repo:     repo,
		events:   eventGetter,
		eventBus: eventBus,
		logger:   logger,
	}
}

// CheckIn records the attendee's first entry to the event. A second check-in
// for the same (event, user) pair is a conflict, not an update. A successful
// first check-in publishes attendance.checked_in on the event bus.
func (s *Service) CheckIn(ctx context.Context, dto CheckDTO, userID string) (*Attendance, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	if _, err := s.events.GetByID(ctx, dto.EventID); err != nil {
		return nil, err
	}

	att := &Attendance{
		ID:      uuid.New().String(),
		EventID: dto.EventID,
		UserID:  userID,
		TimeIn:  time.Now().UTC(),
	}

	created, err := s.repo.CreateIfAbsent(att)
	if err != nil {
		s.logger.Error("failed to record check-in", "error", err, "event_id", dto.EventID, "user_id", userID)
		return nil, internal.NewInternalError("failed to record check-in", err)
	}
	if !created {
		return nil, internal.NewConflictError("already checked in to this event", internal.ErrCodeAlreadyCheckedIn)
	}

	s.logger.Info("attendance check-in recorded", "event_id", dto.EventID, "user_id", userID)
	if err := s.eventBus.Publish(ctx, events.NewAttendanceCheckedInEvent(att.EventID, att.UserID, att.TimeIn)); err != nil {
		s.logger.Error("failed to publish check-in event", "error", err, "event_id", att.EventID)
	}

	return att, nil
}

// CheckOut stamps the time-out on an open check-in. It fails when the
// attendee never checked in or already checked out.
func (s *Service) CheckOut(ctx context.Context, dto CheckDTO, userID string) (*Attendance, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	updated, err := s.repo.SetTimeOut(dto.EventID, userID, time.Now().UTC())
	if err != nil {
		s.logger.Error("failed to record check-out", "error", err, "event_id", dto.EventID, "user_id", userID)
		return nil, internal.NewInternalError("failed to record check-out", err)
	}
	if !updated {
		return nil, internal.NewInvalidStateError("no open check-in for this event", internal.ErrCodeNotCheckedIn)
	}

	att, err := s.repo.GetByEventAndUser(dto.EventID, userID)
	if err != nil {
		return nil, internal.NewInternalError("failed to load attendance record", err)
	}

	s.logger.Info("attendance check-out recorded", "event_id", dto.EventID, "user_id", userID)
	return att, nil
}

func (s *Service) GetByEventAndUser(ctx context.Context, eventID, userID string) (*Attendance, error) {
	att, err := s.repo.GetByEventAndUser(eventID, userID)
	if err != nil {
		return nil, internal.NewInternalError("failed to load attendance record", err)
	}
	if att == nil {
		return nil, internal.NewNotFoundError("attendance record not found", internal.ErrCodeNotCheckedIn)
	}
	return att, nil
}

func (s *Service) ListByEvent(ctx context.Context, eventID string) ([]*Attendance, error) {
	if _, err := s.events.GetByID(ctx, eventID); err != nil {
		return nil, err
	}
	records, err := s.repo.ListByEvent(eventID)
	if err != nil {
		s.logger.Error("failed to list attendance by event", "error", err, "event_id", eventID)
		return nil, internal.NewInternalError("failed to list attendance", err)
	}
	return records, nil
}

func (s *Service) ListByUser(ctx context.Context, userID string) ([]*Attendance, error) {
	records, err := s.repo.ListByUser(userID)
	if err != nil {
		s.logger.Error("failed to list attendance by user", "error", err, "user_id", userID)
		return nil, internal.NewInternalError("failed to list attendance", err)
	}
	return records, nil
}
