package department

import (
	"errors"
	"time"
)

// Department is a lookup collaborator: account requests carry a free-text
// department name that gets resolved here during approval.
type Department struct {
	ID        string    `json:"id" gorm:"primaryKey;column:id"`
	Name      string    `json:"name" gorm:"column:name;uniqueIndex;not null"`
	ShortCode string    `json:"short_code" gorm:"column:short_code"`
	IsActive  bool      `json:"is_active" gorm:"column:is_active;default:true"`
	CreatedAt time.Time `json:"created_at" gorm:"column:created_at"`
	UpdatedAt time.Time `json:"updated_at" gorm:"column:updated_at"`
}

func (Department) TableName() string {
	return "departments"
}

// Snapshot is the embedded copy stored on a User at provisioning time.
type Snapshot struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

func (d *Department) Snapshot() Snapshot {
	return Snapshot{ID: d.ID, Name: d.Name}
}

type CreateDepartmentDTO struct {
	Name      string `json:"name"`
	ShortCode string `json:"short_code"`
}

func (dto CreateDepartmentDTO) Validate() error {
	if dto.Name == "" {
		return errors.New("name is required")
	}
	return nil
}

var ErrDuplicateName = errors.New("department name already exists")
