package postgres

import (
	"errors"
	"time"

	"github.com/rbcalderon/attendance-management/internal/identity"
	"gorm.io/gorm"
)

// AccountRepository implements identity.RepositoryAPI using GORM
type AccountRepository struct {
	db *gorm.DB
}

func NewAccountRepository(db *gorm.DB) identity.RepositoryAPI {
	return &AccountRepository{db: db}
}

func (r *AccountRepository) Create(account *identity.Account) error {
	err := r.db.Create(account).Error
	if err != nil && errors.Is(err, gorm.ErrDuplicatedKey) {
		return identity.ErrDuplicateEmail
	}
	return err
}

func (r *AccountRepository) GetByUID(uid string) (*identity.Account, error) {
	var account identity.Account
	err := r.db.Where("uid = ?", uid).First(&account).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, identity.ErrAccountNotFound
		}
		return nil, err
	}
	return &account, nil
}

func (r *AccountRepository) GetByEmail(email string) (*identity.Account, error) {
	var account identity.Account
	err := r.db.Where("email = ?", email).First(&account).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, identity.ErrAccountNotFound
		}
		return nil, err
	}
	return &account, nil
}

func (r *AccountRepository) UpdateRole(uid, role string) error {
	result := r.db.Model(&identity.Account{}).
		Where("uid = ?", uid).
		Updates(map[string]interface{}{
			"role":       role,
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return identity.ErrAccountNotFound
	}
	return nil
}

func (r *AccountRepository) Delete(uid string) error {
	result := r.db.Where("uid = ?", uid).Delete(&identity.Account{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return identity.ErrAccountNotFound
	}
	return nil
}
