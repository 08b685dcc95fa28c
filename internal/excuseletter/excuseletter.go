package excuseletter

import (
	"sort"
	"strings"
	"time"

	"github.com/rbcalderon/attendance-management/internal"
	"github.com/rbcalderon/attendance-management/internal/core/common/validation"
)

const (
	StatusPending  = "PENDING"
	StatusApproved = "APPROVED"
	StatusRejected = "REJECTED"
)

const (
	ActionApprove = "APPROVE"
	ActionReject  = "REJECT"
)

const maxReasonLength = 2000

// ExcuseLetter is a user's explanation for missing an event, reviewed by an
// admin. Review is one-shot: once decided, the letter never returns to
// PENDING.
type ExcuseLetter struct {
	ID          string     `json:"id" gorm:"column:id;primaryKey"`
	EventID     string     `json:"event_id" gorm:"column:event_id;not null;index"`
	UserID      string     `json:"user_id" gorm:"column:user_id;not null;index"`
	Reason      string     `json:"reason" gorm:"column:reason;not null"`
	Status      string     `json:"status" gorm:"column:status;not null;default:PENDING;index"`
	SubmittedAt time.Time  `json:"submitted_at" gorm:"column:submitted_at;not null"`
	ReviewedAt  *time.Time `json:"reviewed_at,omitempty" gorm:"column:reviewed_at"`
	ReviewedBy  *string    `json:"reviewed_by,omitempty" gorm:"column:reviewed_by"`
	Remarks     *string    `json:"remarks,omitempty" gorm:"column:remarks"`
}

func (ExcuseLetter) TableName() string {
	return "excuse_letters"
}

func (l *ExcuseLetter) IsPending() bool {
	return l.Status == StatusPending
}

type SubmitExcuseLetterDTO struct {
	EventID string `json:"event_id"`
	Reason  string `json:"reason"`
}

func (dto *SubmitExcuseLetterDTO) Validate() *internal.AppError {
	dto.Reason = strings.TrimSpace(dto.Reason)

	v := validation.NewValidator()
	v.Field("event_id", dto.EventID).Required()
	v.Field("reason", dto.Reason).Required().MaxLength(maxReasonLength)
	return v.Validate()
}

type ReviewExcuseLetterDTO struct {
	LetterID   string `json:"letter_id"`
	Action     string `json:"action"`
	ReviewedBy string `json:"reviewed_by"`
	Remarks    string `json:"remarks,omitempty"`
}

func (dto *ReviewExcuseLetterDTO) Validate() *internal.AppError {
	dto.Remarks = strings.TrimSpace(dto.Remarks)

	v := validation.NewValidator()
	v.Field("letter_id", dto.LetterID).Required()
	v.Field("action", dto.Action).Required().OneOf(ActionApprove, ActionReject)
	if err := v.Validate(); err != nil {
		return err
	}

	if dto.Action == ActionReject && dto.Remarks == "" {
		return internal.NewValidationFieldError("remarks",
			"remarks are required when rejecting an excuse letter", internal.ErrCodeReasonRequired)
	}
	return nil
}

// ListFilter narrows and pages the letter listing. Zero values mean
// "no filter"; page numbering starts at 1.
type ListFilter struct {
	Status   string
	EventID  string
	UserID   string
	Page     int
	PageSize int
}

func (f *ListFilter) Normalize() {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.PageSize < 1 || f.PageSize > 100 {
		f.PageSize = 20
	}
}

// Page is one page of letters plus the total match count before paging.
type Page struct {
	Letters  []*ExcuseLetter `json:"letters"`
	Total    int             `json:"total"`
	Page     int             `json:"page"`
	PageSize int             `json:"page_size"`
}

// SortBySubmittedAtDesc orders letters newest first.
func SortBySubmittedAtDesc(letters []*ExcuseLetter) {
	sort.SliceStable(letters, func(i, j int) bool {
		return letters[i].SubmittedAt.After(letters[j].SubmittedAt)
	})
}
