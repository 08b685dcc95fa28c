package event

import (
	"strings"
	"time"

	"github.com/rbcalderon/attendance-management/internal"
	"github.com/rbcalderon/attendance-management/internal/core/common/validation"
)

// Event is a scheduled occasion attendees check in and out of.
type Event struct {
	EventID     string     `json:"event_id" gorm:"column:event_id;primaryKey"`
	Title       string     `json:"title" gorm:"column:title;not null"`
	Description string     `json:"description" gorm:"column:description"`
	Venue       string     `json:"venue" gorm:"column:venue"`
	StartTime   time.Time  `json:"start_time" gorm:"column:start_time;not null;index"`
	EndTime     *time.Time `json:"end_time,omitempty" gorm:"column:end_time"`
	CreatedBy   string     `json:"created_by" gorm:"column:created_by"`
	CreatedAt   time.Time  `json:"created_at" gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time  `json:"updated_at" gorm:"column:updated_at;autoUpdateTime"`
}

func (Event) TableName() string {
	return "events"
}

type CreateEventDTO struct {
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Venue       string     `json:"venue"`
	StartTime   time.Time  `json:"start_time"`
	EndTime     *time.Time `json:"end_time,omitempty"`
}

func (dto *CreateEventDTO) Validate() *internal.AppError {
	dto.Title = strings.TrimSpace(dto.Title)
	dto.Venue = strings.TrimSpace(dto.Venue)

	v := validation.NewValidator()
	v.Field("title", dto.Title).Required().MaxLength(200)
	v.Field("description", dto.Description).MaxLength(2000)
	v.Field("venue", dto.Venue).MaxLength(200)
	v.Field("start_time", dto.StartTime).Required()
	if err := v.Validate(); err != nil {
		return err
	}

	if dto.EndTime != nil && !dto.EndTime.After(dto.StartTime) {
		return internal.NewValidationFieldError("end_time",
			"end_time must be after start_time", internal.ErrCodeValidationFailed)
	}
	return nil
}

type UpdateEventDTO struct {
	Title       *string    `json:"title,omitempty"`
	Description *string    `json:"description,omitempty"`
	Venue       *string    `json:"venue,omitempty"`
	StartTime   *time.Time `json:"start_time,omitempty"`
	EndTime     *time.Time `json:"end_time,omitempty"`
}

func (dto *UpdateEventDTO) Validate() *internal.AppError {
	v := validation.NewValidator()
	if dto.Title != nil {
		v.Field("title", *dto.Title).Required().MaxLength(200)
	}
	if dto.Description != nil {
		v.Field("description", *dto.Description).MaxLength(2000)
	}
	if dto.Venue != nil {
		v.Field("venue", *dto.Venue).MaxLength(200)
	}
	if err := v.Validate(); err != nil {
		return err
	}

	if dto.StartTime != nil && dto.EndTime != nil && !dto.EndTime.After(*dto.StartTime) {
		return internal.NewValidationFieldError("end_time",
			"end_time must be after start_time", internal.ErrCodeValidationFailed)
	}
	return nil
}
