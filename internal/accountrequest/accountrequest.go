package accountrequest

import (
	"sort"
	"strings"
	"time"

	"github.com/rbcalderon/attendance-management/internal"
	"github.com/rbcalderon/attendance-management/internal/core/common/validation"
)

// AccountRequest is an applicant's pending request for a system account. The
// password is stored bcrypt-hashed from the moment of intake; plaintext never
// reaches the store.
type AccountRequest struct {
	RequestID       string     `json:"request_id" gorm:"primaryKey;column:request_id"`
	FirstName       string     `json:"first_name" gorm:"column:first_name;not null"`
	LastName        string     `json:"last_name" gorm:"column:last_name;not null"`
	Email           string     `json:"email" gorm:"column:email;not null"`
	SchoolID        string     `json:"school_id" gorm:"column:school_id;not null;index;uniqueIndex:idx_account_requests_pending_school_id,where:status = 'PENDING'"`
	Department      string     `json:"department" gorm:"column:department"`
	PasswordHash    string     `json:"-" gorm:"column:password_hash;not null"`
	Status          string     `json:"status" gorm:"column:status;default:PENDING;index"`
	RequestDate     *time.Time `json:"request_date" gorm:"column:request_date"`
	ReviewDate      *time.Time `json:"review_date,omitempty" gorm:"column:review_date"`
	ReviewedBy      string     `json:"reviewed_by,omitempty" gorm:"column:reviewed_by"`
	RejectionReason string     `json:"rejection_reason,omitempty" gorm:"column:rejection_reason"`
}

func (AccountRequest) TableName() string {
	return "account_requests"
}

// Status transitions move strictly forward: PENDING is the only state a
// review may leave from, and APPROVAL_FAILED exists so the record never
// claims an approval whose provisioning did not happen.
const (
	StatusPending        = "PENDING"
	StatusApproved       = "APPROVED"
	StatusRejected       = "REJECTED"
	StatusApprovalFailed = "APPROVAL_FAILED"
)

const (
	ActionApprove = "APPROVE"
	ActionReject  = "REJECT"
)

func (r *AccountRequest) IsPending() bool {
	return r.Status == StatusPending
}

// CanBeApproved also admits APPROVAL_FAILED: approval retries pick up where a
// failed provisioning left off.
func (r *AccountRequest) CanBeApproved() bool {
	return r.Status == StatusPending || r.Status == StatusApprovalFailed
}

func (r *AccountRequest) CanBeRejected() bool {
	return r.Status == StatusPending
}

type CreateAccountRequestDTO struct {
	FirstName  string `json:"first_name"`
	LastName   string `json:"last_name"`
	Email      string `json:"email"`
	SchoolID   string `json:"school_id"`
	Department string `json:"department"`
	Password   string `json:"password"`
}

// Trim normalizes all free-text fields in place before validation.
func (dto *CreateAccountRequestDTO) Trim() {
	dto.FirstName = strings.TrimSpace(dto.FirstName)
	dto.LastName = strings.TrimSpace(dto.LastName)
	dto.Email = strings.TrimSpace(dto.Email)
	dto.SchoolID = strings.TrimSpace(dto.SchoolID)
	dto.Department = strings.TrimSpace(dto.Department)
}

func (dto *CreateAccountRequestDTO) Validate() *internal.AppError {
	dto.Trim()

	v := validation.NewValidator()
	v.Field("first_name", dto.FirstName).Required().MaxLength(100)
	v.Field("last_name", dto.LastName).Required().MaxLength(100)
	v.Field("email", dto.Email).Required().Email()
	v.Field("school_id", dto.SchoolID).Required().MaxLength(50)
	v.Field("department", dto.Department).Required().MaxLength(100)
	v.Field("password", dto.Password).Required().MinLength(6)
	return v.Validate()
}

type ReviewDTO struct {
	RequestID       string `json:"request_id"`
	Action          string `json:"action"`
	ReviewedBy      string `json:"reviewed_by"`
	RejectionReason string `json:"rejection_reason,omitempty"`
}

func (dto *ReviewDTO) Validate() *internal.AppError {
	dto.RejectionReason = strings.TrimSpace(dto.RejectionReason)

	v := validation.NewValidator()
	v.Field("request_id", dto.RequestID).Required()
	v.Field("action", dto.Action).Required().OneOf(ActionApprove, ActionReject)
	v.Field("reviewed_by", dto.ReviewedBy).Required()
	if err := v.Validate(); err != nil {
		return err
	}

	if dto.Action == ActionReject && dto.RejectionReason == "" {
		return internal.NewValidationFieldError("rejection_reason",
			"rejection_reason is required when rejecting a request", internal.ErrCodeReasonRequired)
	}

	return nil
}

// ReviewResult reports the core decision and the advisory notification
// outcome separately instead of discarding email failures into a log line.
type ReviewResult struct {
	RequestID         string `json:"request_id"`
	Outcome           string `json:"outcome"`
	Message           string `json:"message"`
	UserID            string `json:"user_id,omitempty"`
	NotificationSent  bool   `json:"notification_sent"`
	NotificationError string `json:"notification_error,omitempty"`
}

// SortByRequestDateDesc is the in-memory fallback when the store cannot run an
// ordered query; a nil request date sorts after every non-nil one.
func SortByRequestDateDesc(requests []*AccountRequest) {
	sort.SliceStable(requests, func(i, j int) bool {
		a, b := requests[i].RequestDate, requests[j].RequestDate
		if a == nil {
			return false
		}
		if b == nil {
			return true
		}
		return a.After(*b)
	})
}
