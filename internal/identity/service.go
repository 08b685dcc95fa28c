package identity

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// Service plays the identity-provider role: it owns account UIDs, custom role
// claims, and bearer token issue/verify.
type Service struct {
	repo     RepositoryAPI
	tokenGen TokenGeneratorAPI
	logger   *slog.Logger
}

func NewService(repo RepositoryAPI, tokenGen TokenGeneratorAPI, logger *slog.Logger) *Service {
	return &Service{
		repo:     repo,
		tokenGen: tokenGen,
		logger:   logger,
	}
}

// CreateAccount registers a new principal keyed by email and returns the
// generated subject UID. The password arrives already bcrypt-hashed; the
// provider never sees plaintext for accounts provisioned through approval.
func (s *Service) CreateAccount(email, passwordHash, role string) (string, error) {
	existing, err := s.repo.GetByEmail(email)
	if err == nil && existing != nil {
		return "", &ProviderError{Op: "create", Code: CodeEmailTaken}
	}

	account := &Account{
		UID:          uuid.New().String(),
		Email:        email,
		PasswordHash: passwordHash,
		Role:         role,
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}

	if err := s.repo.Create(account); err != nil {
		if errors.Is(err, ErrDuplicateEmail) {
			return "", &ProviderError{Op: "create", Code: CodeEmailTaken, Err: err}
		}
		return "", &ProviderError{Op: "create", Code: CodeUnavailable, Err: err}
	}

	s.logger.Info("identity account created", "uid", account.UID, "role", role)
	return account.UID, nil
}

// SetCustomClaims updates the role claim embedded in future tokens.
func (s *Service) SetCustomClaims(uid, role string) error {
	if err := s.repo.UpdateRole(uid, role); err != nil {
		if errors.Is(err, ErrAccountNotFound) {
			return &ProviderError{Op: "set_claims", Code: CodeAccountNotFound, Err: err}
		}
		return &ProviderError{Op: "set_claims", Code: CodeUnavailable, Err: err}
	}
	return nil
}

// DeleteAccount removes the principal. Callers own the coupling between this
// and the user document; the provider only reports its own outcome.
func (s *Service) DeleteAccount(uid string) error {
	if err := s.repo.Delete(uid); err != nil {
		if errors.Is(err, ErrAccountNotFound) {
			return &ProviderError{Op: "delete", Code: CodeAccountNotFound, Err: err}
		}
		return &ProviderError{Op: "delete", Code: CodeUnavailable, Err: err}
	}
	s.logger.Info("identity account deleted", "uid", uid)
	return nil
}

// GetAccount loads the principal by UID.
func (s *Service) GetAccount(uid string) (*Account, error) {
	account, err := s.repo.GetByUID(uid)
	if err != nil {
		if errors.Is(err, ErrAccountNotFound) {
			return nil, &ProviderError{Op: "get", Code: CodeAccountNotFound, Err: err}
		}
		return nil, &ProviderError{Op: "get", Code: CodeUnavailable, Err: err}
	}
	return account, nil
}

// Authenticate verifies email/password and returns the account on success.
func (s *Service) Authenticate(email, password string) (*Account, error) {
	account, err := s.repo.GetByEmail(email)
	if err != nil {
		return nil, &ProviderError{Op: "authenticate", Code: CodeAccountNotFound, Err: err}
	}
	if account.Disabled {
		return nil, &ProviderError{Op: "authenticate", Code: CodeAccountNotFound}
	}
	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(password)); err != nil {
		return nil, &ProviderError{Op: "authenticate", Code: CodeAccountNotFound}
	}
	return account, nil
}

// IssueTokens mints an access/refresh pair carrying the role claim.
func (s *Service) IssueTokens(account *Account) (access, refresh string, err error) {
	access, err = s.tokenGen.GenerateAccessToken(account.UID, account.Email, account.Role)
	if err != nil {
		return "", "", err
	}
	refresh, err = s.tokenGen.GenerateRefreshToken(account.UID, account.Email, account.Role)
	if err != nil {
		return "", "", err
	}
	return access, refresh, nil
}

func (s *Service) ValidateAccessToken(tokenString string) (*Claims, error) {
	return s.tokenGen.ValidateAccessToken(tokenString)
}

func (s *Service) ValidateRefreshToken(tokenString string) (*Claims, error) {
	return s.tokenGen.ValidateRefreshToken(tokenString)
}

// Sentinel errors the repository layer translates store errors into.
var (
	ErrDuplicateEmail  = errors.New("identity: email already registered")
	ErrAccountNotFound = errors.New("identity: account not found")
)

type JWTTokenGenerator struct {
	AccessTokenSecret  []byte
	RefreshTokenSecret []byte
	AccessTokenTTL     time.Duration
	RefreshTokenTTL    time.Duration
}

func NewJWTTokenGenerator(accessSecret, refreshSecret string, accessTTL, refreshTTL time.Duration) *JWTTokenGenerator {
	return &JWTTokenGenerator{
		AccessTokenSecret:  []byte(accessSecret),
		RefreshTokenSecret: []byte(refreshSecret),
		AccessTokenTTL:     accessTTL,
		RefreshTokenTTL:    refreshTTL,
	}
}

func (j *JWTTokenGenerator) GenerateAccessToken(uid, email, role string) (string, error) {
	return j.generate(uid, email, role, TokenTypeAccess, j.AccessTokenTTL, j.AccessTokenSecret)
}

func (j *JWTTokenGenerator) GenerateRefreshToken(uid, email, role string) (string, error) {
	return j.generate(uid, email, role, TokenTypeRefresh, j.RefreshTokenTTL, j.RefreshTokenSecret)
}

func (j *JWTTokenGenerator) generate(uid, email, role, tokenType string, ttl time.Duration, secret []byte) (string, error) {
	claims := &Claims{
		UserID:    uid,
		Email:     email,
		Role:      role,
		TokenType: tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			Subject:   uid,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(secret)
}

// ValidateAccessToken verifies against the access secret only. A refresh
// token presented here fails signature verification regardless of its
// remaining lifetime.
func (j *JWTTokenGenerator) ValidateAccessToken(tokenString string) (*Claims, error) {
	return j.validate(tokenString, j.AccessTokenSecret, TokenTypeAccess)
}

func (j *JWTTokenGenerator) ValidateRefreshToken(tokenString string) (*Claims, error) {
	return j.validate(tokenString, j.RefreshTokenSecret, TokenTypeRefresh)
}

func (j *JWTTokenGenerator) validate(tokenString string, secret []byte, wantType string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return secret, nil
	})

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, jwt.ErrTokenExpired
		}
		return nil, err
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, jwt.ErrTokenMalformed
	}
	if claims.TokenType != wantType {
		return nil, jwt.ErrTokenInvalidClaims
	}

	return claims, nil
}
