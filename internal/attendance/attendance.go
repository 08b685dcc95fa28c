package attendance

import (
	"time"

	"github.com/rbcalderon/attendance-management/internal"
	"github.com/rbcalderon/attendance-management/internal/core/common/validation"
)

// Attendance records one attendee's presence at one event. A row exists from
// first check-in; TimeOut stays nil until the attendee checks out.
type Attendance struct {
	ID        string     `json:"id" gorm:"column:id;primaryKey"`
	EventID   string     `json:"event_id" gorm:"column:event_id;not null;uniqueIndex:idx_attendance_event_user"`
	UserID    string     `json:"user_id" gorm:"column:user_id;not null;uniqueIndex:idx_attendance_event_user"`
	TimeIn    time.Time  `json:"time_in" gorm:"column:time_in;not null"`
	TimeOut   *time.Time `json:"time_out,omitempty" gorm:"column:time_out"`
	CreatedAt time.Time  `json:"created_at" gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time  `json:"updated_at" gorm:"column:updated_at;autoUpdateTime"`
}

func (Attendance) TableName() string {
	return "attendance"
}

type CheckDTO struct {
	EventID string `json:"event_id"`
}

func (dto *CheckDTO) Validate() *internal.AppError {
	v := validation.NewValidator()
	v.Field("event_id", dto.EventID).Required()
	return v.Validate()
}
