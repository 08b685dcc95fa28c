package excuseletter

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/rbcalderon/attendance-management/internal"
	"github.com/rbcalderon/attendance-management/internal/event"
)

type RepositoryAPI interface {
	Create(letter *ExcuseLetter) error
	GetByID(letterID string) (*ExcuseLetter, error)
	// ListAll returns every letter; filtering and ordering happen in the
	// service because the store offers no compound queries over these
	// fields.
	ListAll() ([]*ExcuseLetter, error)
	// ClaimDecision flips a PENDING letter to the decided status. It
	// reports false when the letter was already decided.
	ClaimDecision(letterID, toStatus, reviewedBy, remarks string, reviewedAt time.Time) (bool, error)
}

type EventGetterAPI interface {
	GetByID(ctx context.Context, eventID string) (*event.Event, error)
}

type Service struct {
	repo   RepositoryAPI
	events EventGetterAPI
	logger *slog.Logger
}

func NewService(repo RepositoryAPI, eventGetter EventGetterAPI, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		events: eventGetter,
		logger: logger,
	}
}

func (s *Service) Submit(ctx context.Context, dto SubmitExcuseLetterDTO, userID string) (*ExcuseLetter, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	if _, err := s.events.GetByID(ctx, dto.EventID); err != nil {
		return nil, err
	}

	letter := &ExcuseLetter{
		ID:          uuid.New().String(),
		EventID:     dto.EventID,
		UserID:      userID,
		Reason:      dto.Reason,
		Status:      StatusPending,
		SubmittedAt: time.Now().UTC(),
	}

	if err := s.repo.Create(letter); err != nil {
		s.logger.Error("failed to submit excuse letter", "error", err, "event_id", dto.EventID, "user_id", userID)
		return nil, internal.NewInternalError("failed to submit excuse letter", err)
	}

	s.logger.Info("excuse letter submitted", "letter_id", letter.ID, "event_id", dto.EventID, "user_id", userID)
	return letter, nil
}

func (s *Service) GetByID(ctx context.Context, letterID string) (*ExcuseLetter, error) {
	letter, err := s.repo.GetByID(letterID)
	if err != nil {
		s.logger.Error("failed to get excuse letter", "error", err, "letter_id", letterID)
		return nil, internal.NewInternalError("failed to get excuse letter", err)
	}
	if letter == nil {
		return nil, internal.ErrLetterNotFound
	}
	return letter, nil
}

// Review decides a pending letter. The decision claim is a conditional write
// keyed on the PENDING status, so concurrent reviewers cannot both win.
func (s *Service) Review(ctx context.Context, dto ReviewExcuseLetterDTO) (*ExcuseLetter, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	letter, err := s.GetByID(ctx, dto.LetterID)
	if err != nil {
		return nil, err
	}
	if !letter.IsPending() {
		return nil, internal.NewInvalidStateError(
			"excuse letter has already been reviewed", internal.ErrCodeLetterReviewed)
	}

	toStatus := StatusApproved
	if dto.Action == ActionReject {
		toStatus = StatusRejected
	}

	claimed, err := s.repo.ClaimDecision(dto.LetterID, toStatus, dto.ReviewedBy, dto.Remarks, time.Now().UTC())
	if err != nil {
		s.logger.Error("failed to review excuse letter", "error", err, "letter_id", dto.LetterID)
		return nil, internal.NewInternalError("failed to review excuse letter", err)
	}
	if !claimed {
		return nil, internal.NewInvalidStateError(
			"excuse letter has already been reviewed", internal.ErrCodeLetterReviewed)
	}

	s.logger.Info("excuse letter reviewed",
		"letter_id", dto.LetterID, "decision", toStatus, "reviewed_by", dto.ReviewedBy)

	return s.GetByID(ctx, dto.LetterID)
}

// List scans all letters, applies the filter in memory, sorts newest first
// and pages the result.
func (s *Service) List(ctx context.Context, filter ListFilter) (*Page, error) {
	filter.Normalize()

	letters, err := s.repo.ListAll()
	if err != nil {
		s.logger.Error("failed to list excuse letters", "error", err)
		return nil, internal.NewInternalError("failed to list excuse letters", err)
	}

	filtered := make([]*ExcuseLetter, 0, len(letters))
	for _, l := range letters {
		if filter.Status != "" && l.Status != filter.Status {
			continue
		}
		if filter.EventID != "" && l.EventID != filter.EventID {
			continue
		}
		if filter.UserID != "" && l.UserID != filter.UserID {
			continue
		}
		filtered = append(filtered, l)
	}

	SortBySubmittedAtDesc(filtered)

	total := len(filtered)
	start := (filter.Page - 1) * filter.PageSize
	if start > total {
		start = total
	}
	end := start + filter.PageSize
	if end > total {
		end = total
	}

	return &Page{
		Letters:  filtered[start:end],
		Total:    total,
		Page:     filter.Page,
		PageSize: filter.PageSize,
	}, nil
}
