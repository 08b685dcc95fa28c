package user

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/rbcalderon/attendance-management/internal"
	"github.com/rbcalderon/attendance-management/internal/department"
)

type RepositoryAPI interface {
	Create(user *User) error
	GetByID(userID string) (*User, error)
	GetByEmail(email string) (*User, error)
	GetBySchoolID(schoolID string) (*User, error)
	GetAll(limit, offset int) ([]*User, error)
	Update(user *User) error
	Delete(userID string) error
}

// IdentityAPI is the slice of the identity provider the user workflow needs.
type IdentityAPI interface {
	SetCustomClaims(uid, role string) error
	DeleteAccount(uid string) error
}

type DepartmentResolver interface {
	GetByID(id string) (*department.Department, error)
}

type Service struct {
	repo        RepositoryAPI
	identity    IdentityAPI
	departments DepartmentResolver
	logger      *slog.Logger
}

func NewService(repo RepositoryAPI, identity IdentityAPI, departments DepartmentResolver, logger *slog.Logger) *Service {
	return &Service{
		repo:        repo,
		identity:    identity,
		departments: departments,
		logger:      logger,
	}
}

// Create persists an already-provisioned user document. The identity account
// must exist first; UserID is the provider's subject.
func (s *Service) Create(u *User) error {
	now := time.Now()
	u.CreatedAt = now
	u.UpdatedAt = now

	if err := s.repo.Create(u); err != nil {
		s.logger.Error("failed to create user", "error", err, "user_id", u.UserID)
		return err
	}

	s.logger.Info("user created", "user_id", u.UserID, "school_id", u.SchoolID, "role", u.Role)
	return nil
}

func (s *Service) GetByID(userID string) (*User, error) {
	u, err := s.repo.GetByID(userID)
	if err != nil {
		return nil, s.lookupError(userID, err)
	}
	return u, nil
}

func (s *Service) GetBySchoolID(schoolID string) (*User, error) {
	u, err := s.repo.GetBySchoolID(schoolID)
	if err != nil {
		return nil, s.lookupError(schoolID, err)
	}
	return u, nil
}

// lookupError keeps store failures distinct from missing users so an outage
// never surfaces as a 404.
func (s *Service) lookupError(key string, err error) error {
	if errors.Is(err, ErrNotFound) {
		return internal.ErrUserNotFound
	}
	s.logger.Error("user lookup failed", "error", err, "key", key)
	return internal.NewInternalError("user lookup failed", err)
}

func (s *Service) GetAll(limit, offset int) ([]*User, error) {
	users, err := s.repo.GetAll(limit, offset)
	if err != nil {
		s.logger.Error("failed to list users", "error", err)
		return nil, err
	}
	return users, nil
}

func (s *Service) UpdateProfile(userID string, dto UpdateProfileDTO) (*User, error) {
	if err := dto.Validate(); err != nil {
		return nil, internal.NewValidationError(err.Error(), internal.ErrCodeValidationFailed)
	}

	u, err := s.repo.GetByID(userID)
	if err != nil {
		return nil, s.lookupError(userID, err)
	}

	if dto.FirstName != "" {
		u.FirstName = dto.FirstName
	}
	if dto.LastName != "" {
		u.LastName = dto.LastName
	}
	if dto.ProfilePictureURL != "" {
		u.ProfilePictureURL = dto.ProfilePictureURL
	}
	u.UpdatedAt = time.Now()

	if err := s.repo.Update(u); err != nil {
		s.logger.Error("failed to update user profile", "error", err, "user_id", userID)
		return nil, err
	}

	return u, nil
}

// UpdateRole changes the stored role and re-syncs the identity provider's
// custom claim so newly issued tokens carry the new role.
func (s *Service) UpdateRole(userID string, dto UpdateRoleDTO) (*User, error) {
	if err := dto.Validate(); err != nil {
		return nil, internal.NewValidationError(err.Error(), internal.ErrCodeValidationFailed)
	}

	u, err := s.repo.GetByID(userID)
	if err != nil {
		return nil, s.lookupError(userID, err)
	}

	u.Role = dto.Role
	u.UpdatedAt = time.Now()

	if err := s.repo.Update(u); err != nil {
		s.logger.Error("failed to update user role", "error", err, "user_id", userID)
		return nil, err
	}

	if err := s.identity.SetCustomClaims(userID, dto.Role); err != nil {
		s.logger.Error("failed to sync role claim to identity provider", "error", err, "user_id", userID)
		return nil, internal.NewDependencyError("role updated but identity claim sync failed", internal.ErrCodeIdentityProvider, err)
	}

	s.logger.Info("user role updated", "user_id", userID, "role", dto.Role)
	return u, nil
}

func (s *Service) UpdateDepartment(userID string, dto UpdateDepartmentDTO) (*User, error) {
	if err := dto.Validate(); err != nil {
		return nil, internal.NewValidationError(err.Error(), internal.ErrCodeValidationFailed)
	}

	dept, err := s.departments.GetByID(dto.DepartmentID)
	if err != nil {
		return nil, err
	}

	u, err := s.repo.GetByID(userID)
	if err != nil {
		return nil, s.lookupError(userID, err)
	}

	u.DepartmentID = dept.ID
	u.DepartmentName = dept.Name
	u.UpdatedAt = time.Now()

	if err := s.repo.Update(u); err != nil {
		s.logger.Error("failed to update user department", "error", err, "user_id", userID)
		return nil, err
	}

	return u, nil
}

// Delete removes both halves of an account: the store document and the
// identity-provider principal. A failure in either half surfaces as an error
// so the caller never believes a half-deleted account is gone.
func (s *Service) Delete(userID string) error {
	if _, err := s.repo.GetByID(userID); err != nil {
		return s.lookupError(userID, err)
	}

	if err := s.repo.Delete(userID); err != nil {
		s.logger.Error("failed to delete user document", "error", err, "user_id", userID)
		return internal.NewDependencyError("failed to delete user record", internal.ErrCodeUserNotFound, err)
	}

	if err := s.identity.DeleteAccount(userID); err != nil {
		s.logger.Error("user document deleted but identity account removal failed",
			"error", err, "user_id", userID)
		return internal.NewDependencyError(
			fmt.Sprintf("user record deleted but identity account removal failed for %s", userID),
			internal.ErrCodeIdentityProvider, err)
	}

	s.logger.Info("user deleted", "user_id", userID)
	return nil
}
