package department

import (
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/rbcalderon/attendance-management/internal"
)

type RepositoryAPI interface {
	GetAll() ([]*Department, error)
	GetByID(id string) (*Department, error)
	GetByName(name string) (*Department, error)
	Create(department *Department) error
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

func (s *Service) GetAll() ([]*Department, error) {
	departments, err := s.repo.GetAll()
	if err != nil {
		s.logger.Error("failed to get departments", "error", err)
		return nil, err
	}
	return departments, nil
}

func (s *Service) GetByID(id string) (*Department, error) {
	dept, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if dept == nil {
		return nil, internal.ErrDepartmentNotFound
	}
	return dept, nil
}

// ResolveByName matches case-insensitively on the trimmed name. A nil result
// with nil error means the name is unknown; approval decides what to do then.
func (s *Service) ResolveByName(name string) (*Department, error) {
	dept, err := s.repo.GetByName(strings.TrimSpace(name))
	if err != nil {
		s.logger.Error("department lookup failed", "name", name, "error", err)
		return nil, err
	}
	if dept == nil || !dept.IsActive {
		return nil, nil
	}
	return dept, nil
}

func (s *Service) Create(dto CreateDepartmentDTO) (*Department, error) {
	if err := dto.Validate(); err != nil {
		return nil, internal.NewValidationError(err.Error(), internal.ErrCodeValidationFailed)
	}

	now := time.Now()
	dept := &Department{
		ID:        uuid.New().String(),
		Name:      strings.TrimSpace(dto.Name),
		ShortCode: strings.TrimSpace(dto.ShortCode),
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.repo.Create(dept); err != nil {
		if err == ErrDuplicateName {
			return nil, internal.NewConflictError("department name already exists", internal.ErrCodeValidationFailed)
		}
		s.logger.Error("failed to create department", "error", err, "name", dept.Name)
		return nil, err
	}

	s.logger.Info("department created", "department_id", dept.ID, "name", dept.Name)
	return dept, nil
}
