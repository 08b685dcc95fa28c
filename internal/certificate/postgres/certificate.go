package postgres

import (
	"errors"

	"gorm.io/gorm"

	"github.com/rbcalderon/attendance-management/internal/certificate"
)

// CertificateRepository implements certificate.RepositoryAPI using GORM
type CertificateRepository struct {
	db *gorm.DB
}

func NewCertificateRepository(db *gorm.DB) certificate.RepositoryAPI {
	return &CertificateRepository{db: db}
}

// CreateIfAbsent relies on the unique (event_id, user_id) index to make
// issuance idempotent under concurrent check-in events.
func (r *CertificateRepository) CreateIfAbsent(cert *certificate.Certificate) (bool, error) {
	err := r.db.Create(cert).Error
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (r *CertificateRepository) GetByID(id string) (*certificate.Certificate, error) {
	var cert certificate.Certificate
	err := r.db.Where("id = ?", id).First(&cert).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &cert, nil
}

func (r *CertificateRepository) GetByEventAndUser(eventID, userID string) (*certificate.Certificate, error) {
	var cert certificate.Certificate
	err := r.db.Where("event_id = ? AND user_id = ?", eventID, userID).First(&cert).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &cert, nil
}

func (r *CertificateRepository) ListByEvent(eventID string) ([]*certificate.Certificate, error) {
	var certs []*certificate.Certificate
	err := r.db.Where("event_id = ?", eventID).Order("issued_at ASC").Find(&certs).Error
	return certs, err
}

func (r *CertificateRepository) ListByUser(userID string) ([]*certificate.Certificate, error) {
	var certs []*certificate.Certificate
	err := r.db.Where("user_id = ?", userID).Order("issued_at DESC").Find(&certs).Error
	return certs, err
}
