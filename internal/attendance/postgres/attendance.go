package postgres

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/rbcalderon/attendance-management/internal/attendance"
)

// AttendanceRepository implements attendance.RepositoryAPI using GORM
type AttendanceRepository struct {
	db *gorm.DB
}

func NewAttendanceRepository(db *gorm.DB) attendance.RepositoryAPI {
	return &AttendanceRepository{db: db}
}

// CreateIfAbsent relies on the unique (event_id, user_id) index: a duplicate
// key error means someone already checked in, which is reported as
// created == false rather than an error.
func (r *AttendanceRepository) CreateIfAbsent(att *attendance.Attendance) (bool, error) {
	err := r.db.Create(att).Error
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (r *AttendanceRepository) GetByEventAndUser(eventID, userID string) (*attendance.Attendance, error) {
	var att attendance.Attendance
	err := r.db.Where("event_id = ? AND user_id = ?", eventID, userID).First(&att).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &att, nil
}

// SetTimeOut only touches rows that are checked in and not yet checked out,
// so a repeated check-out reports updated == false.
func (r *AttendanceRepository) SetTimeOut(eventID, userID string, timeOut time.Time) (bool, error) {
	result := r.db.Model(&attendance.Attendance{}).
		Where("event_id = ? AND user_id = ? AND time_out IS NULL", eventID, userID).
		Update("time_out", timeOut)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

func (r *AttendanceRepository) ListByEvent(eventID string) ([]*attendance.Attendance, error) {
	var records []*attendance.Attendance
	err := r.db.Where("event_id = ?", eventID).Order("time_in ASC").Find(&records).Error
	return records, err
}

func (r *AttendanceRepository) ListByUser(userID string) ([]*attendance.Attendance, error) {
	var records []*attendance.Attendance
	err := r.db.Where("user_id = ?", userID).Order("time_in DESC").Find(&records).Error
	return records, err
}
