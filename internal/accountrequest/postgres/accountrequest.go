package postgres

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/rbcalderon/attendance-management/internal"
	"github.com/rbcalderon/attendance-management/internal/accountrequest"
	"github.com/rbcalderon/attendance-management/internal/user"
)

// AccountRequestRepository implements accountrequest.RepositoryAPI using GORM
type AccountRequestRepository struct {
	db *gorm.DB
}

func NewAccountRequestRepository(db *gorm.DB) accountrequest.RepositoryAPI {
	return &AccountRequestRepository{db: db}
}

// CreateIfNoConflict inserts a request unless the school ID already belongs
// to a user or has another PENDING request. The at-most-one-pending rule is
// the partial unique index on (school_id) WHERE status = 'PENDING': two
// concurrent submissions both reach the insert and the index admits one, so
// no read-then-write window exists at READ COMMITTED. The in-transaction
// user check covers the cross-table half only.
func (r *AccountRequestRepository) CreateIfNoConflict(req *accountrequest.AccountRequest) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var userCount int64
		if err := tx.Model(&user.User{}).
			Where("school_id = ?", req.SchoolID).
			Count(&userCount).Error; err != nil {
			return err
		}
		if userCount > 0 {
			return internal.ErrDuplicateSchoolID
		}

		if err := tx.Create(req).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return internal.ErrDuplicatePending
			}
			return err
		}
		return nil
	})
}

func (r *AccountRequestRepository) GetByID(requestID string) (*accountrequest.AccountRequest, error) {
	var req accountrequest.AccountRequest
	err := r.db.Where("request_id = ?", requestID).First(&req).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &req, nil
}

func (r *AccountRequestRepository) ListAllOrdered() ([]*accountrequest.AccountRequest, error) {
	var requests []*accountrequest.AccountRequest
	err := r.db.Order("request_date DESC NULLS LAST").Find(&requests).Error
	return requests, err
}

func (r *AccountRequestRepository) ListByStatusOrdered(status string) ([]*accountrequest.AccountRequest, error) {
	var requests []*accountrequest.AccountRequest
	err := r.db.Where("status = ?", status).
		Order("request_date DESC NULLS LAST").
		Find(&requests).Error
	return requests, err
}

func (r *AccountRequestRepository) ListAll() ([]*accountrequest.AccountRequest, error) {
	var requests []*accountrequest.AccountRequest
	err := r.db.Find(&requests).Error
	return requests, err
}

func (r *AccountRequestRepository) ListByStatus(status string) ([]*accountrequest.AccountRequest, error) {
	var requests []*accountrequest.AccountRequest
	err := r.db.Where("status = ?", status).Find(&requests).Error
	return requests, err
}

// ClaimStatus is the compare-and-swap that guards review: the UPDATE's WHERE
// clause encodes the expected previous status, so of two concurrent reviewers
// exactly one sees RowsAffected == 1.
func (r *AccountRequestRepository) ClaimStatus(requestID string, fromStatuses []string, toStatus, reviewedBy, rejectionReason string, reviewDate time.Time) (bool, error) {
	updates := map[string]interface{}{
		"status":      toStatus,
		"review_date": reviewDate,
		"reviewed_by": reviewedBy,
	}
	if rejectionReason != "" {
		updates["rejection_reason"] = rejectionReason
	}

	result := r.db.Model(&accountrequest.AccountRequest{}).
		Where("request_id = ? AND status IN ?", requestID, fromStatuses).
		Updates(updates)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

func (r *AccountRequestRepository) SetStatus(requestID, status string) error {
	return r.db.Model(&accountrequest.AccountRequest{}).
		Where("request_id = ?", requestID).
		Update("status", status).Error
}
