package event

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/google/uuid"
	"github.com/skip2/go-qrcode"

	"github.com/rbcalderon/attendance-management/internal"
)

type RepositoryAPI interface {
	Create(event *Event) error
	GetByID(eventID string) (*Event, error)
	ListOrdered() ([]*Event, error)
	Update(event *Event) error
	Delete(eventID string) error
}

type Service struct {
	repo   RepositoryAPI
	logger *slog.Logger
}

func NewService(repo RepositoryAPI, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		logger: logger,
	}
}

func (s *Service) Create(ctx context.Context, dto CreateEventDTO, createdBy string) (*Event, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	event := &Event{
		EventID:     uuid.New().String(),
		Title:       dto.Title,
		Description: dto.Description,
		Venue:       dto.Venue,
		StartTime:   dto.StartTime,
		EndTime:     dto.EndTime,
		CreatedBy:   createdBy,
	}

	if err := s.repo.Create(event); err != nil {
		s.logger.Error("failed to create event", "error", err, "title", dto.Title)
		return nil, internal.NewInternalError("failed to create event", err)
	}

	s.logger.Info("event created", "event_id", event.EventID, "title", event.Title)
	return event, nil
}

func (s *Service) GetByID(ctx context.Context, eventID string) (*Event, error) {
	event, err := s.repo.GetByID(eventID)
	if err != nil {
		s.logger.Error("failed to get event", "error", err, "event_id", eventID)
		return nil, internal.NewInternalError("failed to get event", err)
	}
	if event == nil {
		return nil, internal.ErrEventNotFound
	}
	return event, nil
}

// List returns all events, most recently starting first.
func (s *Service) List(ctx context.Context) ([]*Event, error) {
	events, err := s.repo.ListOrdered()
	if err != nil {
		s.logger.Error("failed to list events", "error", err)
		return nil, internal.NewInternalError("failed to list events", err)
	}
	return events, nil
}

func (s *Service) Update(ctx context.Context, eventID string, dto UpdateEventDTO) (*Event, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	event, err := s.GetByID(ctx, eventID)
	if err != nil {
		return nil, err
	}

	if dto.Title != nil {
		event.Title = *dto.Title
	}
	if dto.Description != nil {
		event.Description = *dto.Description
	}
	if dto.Venue != nil {
		event.Venue = *dto.Venue
	}
	if dto.StartTime != nil {
		event.StartTime = *dto.StartTime
	}
	if dto.EndTime != nil {
		event.EndTime = dto.EndTime
	}

	if err := s.repo.Update(event); err != nil {
		s.logger.Error("failed to update event", "error", err, "event_id", eventID)
		return nil, internal.NewInternalError("failed to update event", err)
	}
	return event, nil
}

func (s *Service) Delete(ctx context.Context, eventID string) error {
	if _, err := s.GetByID(ctx, eventID); err != nil {
		return err
	}
	if err := s.repo.Delete(eventID); err != nil {
		s.logger.Error("failed to delete event", "error", err, "event_id", eventID)
		return internal.NewInternalError("failed to delete event", err)
	}
	return nil
}

// checkInPayload is what the QR code encodes. The nonce distinguishes
// reissued codes for the same event.
type checkInPayload struct {
	EventID string `json:"event_id"`
	Nonce   string `json:"nonce"`
}

// QRCodePNG renders a check-in QR code for the event as a PNG.
func (s *Service) QRCodePNG(ctx context.Context, eventID string, size int) ([]byte, error) {
	event, err := s.GetByID(ctx, eventID)
	if err != nil {
		return nil, err
	}

	if size <= 0 {
		size = 256
	}

	payload, err := json.Marshal(checkInPayload{
		EventID: event.EventID,
		Nonce:   uuid.New().String(),
	})
	if err != nil {
		return nil, internal.NewInternalError("failed to encode check-in payload", err)
	}

	png, err := qrcode.Encode(string(payload), qrcode.Medium, size)
	if err != nil {
		s.logger.Error("failed to render qr code", "error", err, "event_id", eventID)
		return nil, internal.NewInternalError("failed to render qr code", err)
	}
	return png, nil
}
