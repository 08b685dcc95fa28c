package identity

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Account is the identity provider's own record of a principal. The UID it
// generates is the authoritative user key everywhere else in the system.
type Account struct {
	UID          string    `json:"uid" gorm:"primaryKey;column:uid"`
	Email        string    `json:"email" gorm:"column:email;uniqueIndex;not null"`
	PasswordHash string    `json:"-" gorm:"column:password_hash;not null"`
	Role         string    `json:"role" gorm:"column:role;default:USER"`
	Disabled     bool      `json:"disabled" gorm:"column:disabled;default:false"`
	CreatedAt    time.Time `json:"created_at" gorm:"column:created_at"`
	UpdatedAt    time.Time `json:"updated_at" gorm:"column:updated_at"`
}

func (Account) TableName() string {
	return "identity_accounts"
}

const (
	RoleUser  = "USER"
	RoleAdmin = "ADMIN"
)

// ProviderError is the provider-specific error type callers can unwrap to
// distinguish identity failures from store failures.
type ProviderError struct {
	Op   string
	Code string
	Err  error
}

func (e *ProviderError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("identity %s: %s: %v", e.Op, e.Code, e.Err)
	}
	return fmt.Sprintf("identity %s: %s", e.Op, e.Code)
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

const (
	CodeEmailTaken      = "EMAIL_ALREADY_EXISTS"
	CodeAccountNotFound = "ACCOUNT_NOT_FOUND"
	CodeUnavailable     = "PROVIDER_UNAVAILABLE"
)

type RepositoryAPI interface {
	Create(account *Account) error
	GetByUID(uid string) (*Account, error)
	GetByEmail(email string) (*Account, error)
	UpdateRole(uid, role string) error
	Delete(uid string) error
}

type TokenGeneratorAPI interface {
	GenerateAccessToken(uid, email, role string) (string, error)
	GenerateRefreshToken(uid, email, role string) (string, error)
	ValidateAccessToken(tokenString string) (*Claims, error)
	ValidateRefreshToken(tokenString string) (*Claims, error)
}

// Token type claim values. Access and refresh tokens are signed with
// different secrets and each validator only accepts its own type, so a
// refresh token can never pass as a bearer credential.
const (
	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"
)

// Claims carry the provider's custom claims.
type Claims struct {
	UserID    string `json:"user_id"`
	Email     string `json:"email"`
	Role      string `json:"role"`
	TokenType string `json:"token_type"`
	jwt.RegisteredClaims
}
