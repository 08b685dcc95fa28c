package accountrequest

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/rbcalderon/attendance-management/internal"
	"github.com/rbcalderon/attendance-management/internal/core/events"
	"github.com/rbcalderon/attendance-management/internal/department"
	"github.com/rbcalderon/attendance-management/internal/mail"
	"github.com/rbcalderon/attendance-management/internal/user"
)

// ErrOrderingUnsupported is returned by repositories that cannot execute an
// ordered query; the service then sorts in memory.
var ErrOrderingUnsupported = errors.New("store cannot order by request_date")

type RepositoryAPI interface {
	// CreateIfNoConflict inserts the request inside one transaction that also
	// checks for an existing user or pending request with the same school ID.
	CreateIfNoConflict(req *AccountRequest) error
	GetByID(requestID string) (*AccountRequest, error)
	ListAllOrdered() ([]*AccountRequest, error)
	ListByStatusOrdered(status string) ([]*AccountRequest, error)
	ListAll() ([]*AccountRequest, error)
	ListByStatus(status string) ([]*AccountRequest, error)
	// ClaimStatus atomically moves the request from one of fromStatuses to
	// toStatus, recording review metadata. It reports whether this caller won.
	ClaimStatus(requestID string, fromStatuses []string, toStatus, reviewedBy, rejectionReason string, reviewDate time.Time) (bool, error)
	// SetStatus force-writes a status; used to record APPROVAL_FAILED.
	SetStatus(requestID, status string) error
}

// IdentityAPI is the identity-provider slice approval needs.
type IdentityAPI interface {
	CreateAccount(email, passwordHash, role string) (string, error)
	DeleteAccount(uid string) error
}

type UserProvisionerAPI interface {
	Create(u *user.User) error
}

type DepartmentResolverAPI interface {
	ResolveByName(name string) (*department.Department, error)
}

type Service struct {
	repo        RepositoryAPI
	identity    IdentityAPI
	users       UserProvisionerAPI
	departments DepartmentResolverAPI
	mailer      mail.SenderAPI
	bus         *events.EventBus
	bcryptCost  int
	strictDept  bool
	logger      *slog.Logger
}

type ServiceConfig struct {
	BCryptCost int
	// StrictDepartmentResolution fails an approval whose department name
	// cannot be resolved instead of provisioning without one.
	StrictDepartmentResolution bool
}

func NewService(
	repo RepositoryAPI,
	identity IdentityAPI,
	users UserProvisionerAPI,
	departments DepartmentResolverAPI,
	mailer mail.SenderAPI,
	bus *events.EventBus,
	cfg ServiceConfig,
	logger *slog.Logger,
) *Service {
	cost := cfg.BCryptCost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	return &Service{
		repo:        repo,
		identity:    identity,
		users:       users,
		departments: departments,
		mailer:      mailer,
		bus:         bus,
		bcryptCost:  cost,
		strictDept:  cfg.StrictDepartmentResolution,
		logger:      logger,
	}
}

// Create validates applicant data, hashes the password and persists a PENDING
// request. Duplicate detection runs inside the repository's transaction, so
// two concurrent submissions for the same school ID cannot both land.
func (s *Service) Create(dto CreateAccountRequestDTO) (*AccountRequest, error) {
	if err := dto.Validate(); err != nil {
		s.logger.Error("account request validation failed", "error", err, "school_id", dto.SchoolID)
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(dto.Password), s.bcryptCost)
	if err != nil {
		return nil, internal.NewInternalError("failed to hash password", err)
	}

	now := time.Now()
	req := &AccountRequest{
		RequestID:    uuid.New().String(),
		FirstName:    dto.FirstName,
		LastName:     dto.LastName,
		Email:        dto.Email,
		SchoolID:     dto.SchoolID,
		Department:   dto.Department,
		PasswordHash: string(hash),
		Status:       StatusPending,
		RequestDate:  &now,
	}

	if err := s.repo.CreateIfNoConflict(req); err != nil {
		if appErr, ok := internal.IsAppError(err); ok {
			s.logger.Warn("account request rejected as duplicate",
				"school_id", dto.SchoolID, "code", appErr.Code)
			return nil, err
		}
		s.logger.Error("failed to persist account request", "error", err, "school_id", dto.SchoolID)
		return nil, internal.NewDependencyError("failed to save account request", internal.ErrCodeIdentityProvider, err)
	}

	s.logger.Info("account request created",
		"request_id", req.RequestID,
		"school_id", req.SchoolID,
		"department", req.Department)

	return req, nil
}

func (s *Service) ListAll() ([]*AccountRequest, error) {
	requests, err := s.repo.ListAllOrdered()
	if errors.Is(err, ErrOrderingUnsupported) {
		s.logger.Warn("ordered query unavailable, sorting account requests in memory")
		requests, err = s.repo.ListAll()
		if err == nil {
			SortByRequestDateDesc(requests)
		}
	}
	if err != nil {
		s.logger.Error("failed to list account requests", "error", err)
		return nil, err
	}
	return requests, nil
}

func (s *Service) ListPending() ([]*AccountRequest, error) {
	requests, err := s.repo.ListByStatusOrdered(StatusPending)
	if errors.Is(err, ErrOrderingUnsupported) {
		s.logger.Warn("ordered query unavailable, sorting pending requests in memory")
		requests, err = s.repo.ListByStatus(StatusPending)
		if err == nil {
			SortByRequestDateDesc(requests)
		}
	}
	if err != nil {
		s.logger.Error("failed to list pending account requests", "error", err)
		return nil, err
	}
	return requests, nil
}

func (s *Service) GetByID(requestID string) (*AccountRequest, error) {
	req, err := s.repo.GetByID(requestID)
	if err != nil {
		return nil, err
	}
	if req == nil {
		return nil, internal.ErrRequestNotFound
	}
	return req, nil
}

// Review decides a pending request. The status transition is claimed with an
// atomic compare-and-swap before any side effect, so concurrent reviews of
// the same request resolve to exactly one winner. On approval the user is
// provisioned immediately after the claim; if provisioning fails the request
// is moved to APPROVAL_FAILED so its recorded status reflects reality, and a
// later APPROVE retries from there.
func (s *Service) Review(ctx context.Context, dto ReviewDTO) (*ReviewResult, error) {
	if err := dto.Validate(); err != nil {
		s.logger.Error("review validation failed", "error", err, "request_id", dto.RequestID)
		return nil, err
	}

	req, err := s.GetByID(dto.RequestID)
	if err != nil {
		return nil, err
	}

	now := time.Now()

	if dto.Action == ActionReject {
		return s.reject(req, dto, now)
	}
	return s.approve(ctx, req, dto, now)
}

func (s *Service) reject(req *AccountRequest, dto ReviewDTO, now time.Time) (*ReviewResult, error) {
	claimed, err := s.repo.ClaimStatus(req.RequestID,
		[]string{StatusPending}, StatusRejected,
		dto.ReviewedBy, dto.RejectionReason, now)
	if err != nil {
		return nil, internal.NewDependencyError("failed to update request status", internal.ErrCodeIdentityProvider, err)
	}
	if !claimed {
		return nil, internal.ErrAlreadyReviewed
	}

	s.logger.Info("account request rejected",
		"request_id", req.RequestID,
		"reviewed_by", dto.ReviewedBy,
		"reason", dto.RejectionReason)

	result := &ReviewResult{
		RequestID: req.RequestID,
		Outcome:   StatusRejected,
		Message:   "account request rejected",
	}

	s.notify(result, rejectionEmail(req, dto.RejectionReason))
	return result, nil
}

func (s *Service) approve(ctx context.Context, req *AccountRequest, dto ReviewDTO, now time.Time) (*ReviewResult, error) {
	// Department resolution is read-only, so it runs before the claim: in
	// strict mode a bad department name must not burn the PENDING status.
	dept, err := s.departments.ResolveByName(req.Department)
	if err != nil || dept == nil {
		if s.strictDept {
			return nil, internal.NewValidationError(
				"department could not be resolved: "+req.Department, internal.ErrCodeDepartmentNotFound)
		}
		s.logger.Warn("department resolution failed, provisioning without department",
			"request_id", req.RequestID,
			"department", req.Department,
			"error", err)
		dept = nil
	}

	claimed, err := s.repo.ClaimStatus(req.RequestID,
		[]string{StatusPending, StatusApprovalFailed}, StatusApproved,
		dto.ReviewedBy, "", now)
	if err != nil {
		return nil, internal.NewDependencyError("failed to update request status", internal.ErrCodeIdentityProvider, err)
	}
	if !claimed {
		return nil, internal.ErrAlreadyReviewed
	}

	uid, provErr := s.identity.CreateAccount(req.Email, req.PasswordHash, user.RoleUser)
	if provErr != nil {
		s.markApprovalFailed(req.RequestID)
		s.logger.Error("identity account creation failed during approval",
			"request_id", req.RequestID, "error", provErr)
		return nil, internal.NewDependencyError("identity provider rejected account creation", internal.ErrCodeIdentityProvider, provErr)
	}

	newUser := &user.User{
		UserID:       uid,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Email:        req.Email,
		SchoolID:     req.SchoolID,
		PasswordHash: req.PasswordHash,
		Role:         user.RoleUser,
		Verified:     true,
	}
	if dept != nil {
		newUser.DepartmentID = dept.ID
		newUser.DepartmentName = dept.Name
	}

	if err := s.users.Create(newUser); err != nil {
		// roll the half-created principal back so the identity provider and
		// the user store do not drift apart
		if delErr := s.identity.DeleteAccount(uid); delErr != nil {
			s.logger.Error("failed to roll back identity account after user create failure",
				"request_id", req.RequestID, "uid", uid, "error", delErr)
		}
		s.markApprovalFailed(req.RequestID)
		s.logger.Error("user provisioning failed during approval",
			"request_id", req.RequestID, "error", err)
		return nil, internal.NewDependencyError("failed to provision user record", internal.ErrCodeIdentityProvider, err)
	}

	s.logger.Info("account request approved",
		"request_id", req.RequestID,
		"reviewed_by", dto.ReviewedBy,
		"user_id", uid)

	if s.bus != nil {
		_ = s.bus.Publish(ctx, events.NewAccountProvisionedEvent(req.RequestID, uid, req.Email))
	}

	result := &ReviewResult{
		RequestID: req.RequestID,
		Outcome:   StatusApproved,
		Message:   "account request approved",
		UserID:    uid,
	}

	s.notify(result, approvalEmail(req))
	return result, nil
}

func (s *Service) markApprovalFailed(requestID string) {
	if err := s.repo.SetStatus(requestID, StatusApprovalFailed); err != nil {
		s.logger.Error("failed to record APPROVAL_FAILED status", "request_id", requestID, "error", err)
	}
}

// notify sends a decision email and records the outcome on the result; a
// failed notification never fails the review.
func (s *Service) notify(result *ReviewResult, msg mail.Message) {
	if err := s.mailer.Send(msg); err != nil {
		s.logger.Warn("decision notification failed",
			"request_id", result.RequestID, "error", err)
		result.NotificationSent = false
		result.NotificationError = err.Error()
		return
	}
	result.NotificationSent = true
}

// SendPendingReminder emails the applicant that their request is still in
// queue. Unlike decision notifications, the email here IS the operation, so a
// send failure surfaces to the caller.
func (s *Service) SendPendingReminder(requestID string) error {
	req, err := s.GetByID(requestID)
	if err != nil {
		return err
	}

	if !req.IsPending() {
		return internal.NewInvalidStateError(
			"reminder can only be sent for pending requests", internal.ErrCodeAlreadyReviewed)
	}

	if err := s.mailer.Send(reminderEmail(req)); err != nil {
		s.logger.Error("pending reminder send failed", "request_id", requestID, "error", err)
		return internal.NewEmailError("failed to send pending reminder", err)
	}

	s.logger.Info("pending reminder sent", "request_id", requestID)
	return nil
}
