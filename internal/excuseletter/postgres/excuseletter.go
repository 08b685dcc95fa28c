package postgres

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/rbcalderon/attendance-management/internal/excuseletter"
)

// ExcuseLetterRepository implements excuseletter.RepositoryAPI using GORM
type ExcuseLetterRepository struct {
	db *gorm.DB
}

func NewExcuseLetterRepository(db *gorm.DB) excuseletter.RepositoryAPI {
	return &ExcuseLetterRepository{db: db}
}

func (r *ExcuseLetterRepository) Create(letter *excuseletter.ExcuseLetter) error {
	return r.db.Create(letter).Error
}

func (r *ExcuseLetterRepository) GetByID(letterID string) (*excuseletter.ExcuseLetter, error) {
	var letter excuseletter.ExcuseLetter
	err := r.db.Where("id = ?", letterID).First(&letter).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &letter, nil
}

func (r *ExcuseLetterRepository) ListAll() ([]*excuseletter.ExcuseLetter, error) {
	var letters []*excuseletter.ExcuseLetter
	err := r.db.Find(&letters).Error
	return letters, err
}

// ClaimDecision guards the status flip with the expected PENDING status in
// the WHERE clause, so only one of two concurrent reviews takes effect.
func (r *ExcuseLetterRepository) ClaimDecision(letterID, toStatus, reviewedBy, remarks string, reviewedAt time.Time) (bool, error) {
	updates := map[string]interface{}{
		"status":      toStatus,
		"reviewed_at": reviewedAt,
		"reviewed_by": reviewedBy,
	}
	if remarks != "" {
		updates["remarks"] = remarks
	}

	result := r.db.Model(&excuseletter.ExcuseLetter{}).
		Where("id = ? AND status = ?", letterID, excuseletter.StatusPending).
		Updates(updates)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}
