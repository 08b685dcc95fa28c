package user

import (
	"errors"
	"time"
)

// User is a provisioned account. UserID is the identity provider's subject and
// must never be reassigned; the department fields are a snapshot taken at
// provisioning time, not a live join.
type User struct {
	UserID            string    `json:"user_id" gorm:"primaryKey;column:user_id"`
	FirstName         string    `json:"first_name" gorm:"column:first_name;not null"`
	LastName          string    `json:"last_name" gorm:"column:last_name;not null"`
	Email             string    `json:"email" gorm:"column:email;uniqueIndex;not null"`
	SchoolID          string    `json:"school_id" gorm:"column:school_id;uniqueIndex;not null"`
	PasswordHash      string    `json:"-" gorm:"column:password_hash;not null"`
	Role              string    `json:"role" gorm:"column:role;default:USER"`
	DepartmentID      string    `json:"department_id,omitempty" gorm:"column:department_id"`
	DepartmentName    string    `json:"department_name,omitempty" gorm:"column:department_name"`
	ProfilePictureURL string    `json:"profile_picture_url,omitempty" gorm:"column:profile_picture_url"`
	Verified          bool      `json:"verified" gorm:"column:verified;default:false"`
	CreatedAt         time.Time `json:"created_at" gorm:"column:created_at"`
	UpdatedAt         time.Time `json:"updated_at" gorm:"column:updated_at"`
}

func (User) TableName() string {
	return "users"
}

const (
	RoleUser  = "USER"
	RoleAdmin = "ADMIN"
)

func (u *User) FullName() string {
	return u.FirstName + " " + u.LastName
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

type UpdateProfileDTO struct {
	FirstName         string `json:"first_name"`
	LastName          string `json:"last_name"`
	ProfilePictureURL string `json:"profile_picture_url"`
}

func (dto UpdateProfileDTO) Validate() error {
	if dto.FirstName == "" && dto.LastName == "" && dto.ProfilePictureURL == "" {
		return errors.New("nothing to update")
	}
	return nil
}

type UpdateRoleDTO struct {
	Role string `json:"role"`
}

func (dto UpdateRoleDTO) Validate() error {
	if dto.Role != RoleUser && dto.Role != RoleAdmin {
		return errors.New("role must be USER or ADMIN")
	}
	return nil
}

type UpdateDepartmentDTO struct {
	DepartmentID string `json:"department_id"`
}

func (dto UpdateDepartmentDTO) Validate() error {
	if dto.DepartmentID == "" {
		return errors.New("department_id is required")
	}
	return nil
}

var (
	ErrDuplicateEmail    = errors.New("email already registered")
	ErrDuplicateSchoolID = errors.New("school ID already registered")
	ErrNotFound          = errors.New("user record not found")
)
