package auth

import (
	"errors"
	"log/slog"

	"github.com/golang-jwt/jwt/v5"

	"github.com/rbcalderon/attendance-management/internal"
	"github.com/rbcalderon/attendance-management/internal/identity"
)

type IdentityAPI interface {
	Authenticate(email, password string) (*identity.Account, error)
	GetAccount(uid string) (*identity.Account, error)
	IssueTokens(account *identity.Account) (access, refresh string, err error)
	ValidateAccessToken(tokenString string) (*identity.Claims, error)
	ValidateRefreshToken(tokenString string) (*identity.Claims, error)
}

type Service struct {
	identity IdentityAPI
	logger   *slog.Logger
}

func NewService(identitySvc IdentityAPI, logger *slog.Logger) *Service {
	return &Service{
		identity: identitySvc,
		logger:   logger,
	}
}

// Login verifies credentials and mints a token pair. Credential failures are
// reported uniformly so callers cannot probe which emails exist.
func (s *Service) Login(dto LoginDTO) (*TokenPair, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	account, err := s.identity.Authenticate(dto.Email, dto.Password)
	if err != nil {
		s.logger.Warn("login failed", "email", dto.Email)
		return nil, internal.ErrInvalidCredentials
	}

	access, refresh, err := s.identity.IssueTokens(account)
	if err != nil {
		s.logger.Error("failed to issue tokens", "error", err, "uid", account.UID)
		return nil, internal.NewInternalError("failed to issue tokens", err)
	}

	s.logger.Info("user logged in", "uid", account.UID, "role", account.Role)
	return &TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		TokenType:    "Bearer",
		UserID:       account.UID,
		Role:         account.Role,
	}, nil
}

// Refresh exchanges a valid refresh token for a fresh pair. The account is
// reloaded so role changes and disablement take effect on rotation.
func (s *Service) Refresh(dto RefreshTokenDTO) (*TokenPair, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	claims, err := s.identity.ValidateRefreshToken(dto.RefreshToken)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, internal.ErrTokenExpired
		}
		return nil, internal.ErrInvalidToken
	}

	account, err := s.identity.GetAccount(claims.UserID)
	if err != nil {
		s.logger.Warn("refresh for unknown account", "uid", claims.UserID)
		return nil, internal.ErrInvalidToken
	}
	if account.Disabled {
		return nil, internal.ErrInvalidToken
	}

	access, refresh, err := s.identity.IssueTokens(account)
	if err != nil {
		s.logger.Error("failed to rotate tokens", "error", err, "uid", account.UID)
		return nil, internal.NewInternalError("failed to rotate tokens", err)
	}

	return &TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		TokenType:    "Bearer",
		UserID:       account.UID,
		Role:         account.Role,
	}, nil
}

// ValidateAccessToken parses and verifies a bearer token for the middleware.
// Refresh tokens are rejected here; only the access secret and type pass.
func (s *Service) ValidateAccessToken(tokenString string) (*identity.Claims, error) {
	claims, err := s.identity.ValidateAccessToken(tokenString)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, internal.ErrTokenExpired
		}
		return nil, internal.ErrInvalidToken
	}
	return claims, nil
}
