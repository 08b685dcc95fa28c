package auth_test

import (
	"errors"
	"log/slog"
	"os"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/rbcalderon/attendance-management/internal"
	"github.com/rbcalderon/attendance-management/internal/auth"
	"github.com/rbcalderon/attendance-management/internal/identity"
)

func TestAuthService(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Auth Service Suite")
}

// MockIdentity implements auth.IdentityAPI for testing
type MockIdentity struct {
	accounts      map[string]*identity.Account
	passwords     map[string]string
	accessClaims  map[string]*identity.Claims
	refreshClaims map[string]*identity.Claims
	validateErr   error
	issueFail     bool
	issuedForUIDs []string
}

func NewMockIdentity() *MockIdentity {
	return &MockIdentity{
		accounts:      make(map[string]*identity.Account),
		passwords:     make(map[string]string),
		accessClaims:  make(map[string]*identity.Claims),
		refreshClaims: make(map[string]*identity.Claims),
	}
}

func (m *MockIdentity) Authenticate(email, password string) (*identity.Account, error) {
	for _, account := range m.accounts {
		if account.Email == email && m.passwords[account.UID] == password && !account.Disabled {
			return account, nil
		}
	}
	return nil, errors.New("authentication failed")
}

func (m *MockIdentity) GetAccount(uid string) (*identity.Account, error) {
	account, ok := m.accounts[uid]
	if !ok {
		return nil, errors.New("account not found")
	}
	return account, nil
}

func (m *MockIdentity) IssueTokens(account *identity.Account) (string, string, error) {
	if m.issueFail {
		return "", "", errors.New("signing failed")
	}
	m.issuedForUIDs = append(m.issuedForUIDs, account.UID)
	access := "access-" + account.UID
	refresh := "refresh-" + account.UID
	m.accessClaims[access] = &identity.Claims{
		UserID:    account.UID,
		Email:     account.Email,
		Role:      account.Role,
		TokenType: identity.TokenTypeAccess,
	}
	m.refreshClaims[refresh] = &identity.Claims{
		UserID:    account.UID,
		Email:     account.Email,
		Role:      account.Role,
		TokenType: identity.TokenTypeRefresh,
	}
	return access, refresh, nil
}

func (m *MockIdentity) ValidateAccessToken(tokenString string) (*identity.Claims, error) {
	if m.validateErr != nil {
		return nil, m.validateErr
	}
	claims, ok := m.accessClaims[tokenString]
	if !ok {
		return nil, jwt.ErrTokenInvalidClaims
	}
	return claims, nil
}

func (m *MockIdentity) ValidateRefreshToken(tokenString string) (*identity.Claims, error) {
	if m.validateErr != nil {
		return nil, m.validateErr
	}
	claims, ok := m.refreshClaims[tokenString]
	if !ok {
		return nil, jwt.ErrTokenInvalidClaims
	}
	return claims, nil
}

var _ = Describe("Auth Service", func() {
	var (
		mockIdent *MockIdentity
		service   *auth.Service
	)

	BeforeEach(func() {
		mockIdent = NewMockIdentity()
		testLogger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		service = auth.NewService(mockIdent, testLogger)

		mockIdent.accounts["uid-1"] = &identity.Account{
			UID:   "uid-1",
			Email: "ana.cruz@university.edu",
			Role:  "USER",
		}
		mockIdent.passwords["uid-1"] = "s3cretpass"
	})

	Describe("Login", func() {
		It("returns a bearer token pair for valid credentials", func() {
			pair, err := service.Login(auth.LoginDTO{
				Email:    "ana.cruz@university.edu",
				Password: "s3cretpass",
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(pair.AccessToken).NotTo(BeEmpty())
			Expect(pair.RefreshToken).NotTo(BeEmpty())
			Expect(pair.TokenType).To(Equal("Bearer"))
			Expect(pair.UserID).To(Equal("uid-1"))
			Expect(pair.Role).To(Equal("USER"))
		})

		It("reports wrong passwords and unknown emails identically", func() {
			_, wrongPass := service.Login(auth.LoginDTO{
				Email:    "ana.cruz@university.edu",
				Password: "wrong",
			})
			_, unknownEmail := service.Login(auth.LoginDTO{
				Email:    "nobody@university.edu",
				Password: "s3cretpass",
			})
			Expect(wrongPass).To(MatchError(internal.ErrInvalidCredentials))
			Expect(unknownEmail).To(MatchError(internal.ErrInvalidCredentials))
		})

		It("rejects a disabled account", func() {
			mockIdent.accounts["uid-1"].Disabled = true

			_, err := service.Login(auth.LoginDTO{
				Email:    "ana.cruz@university.edu",
				Password: "s3cretpass",
			})
			Expect(err).To(MatchError(internal.ErrInvalidCredentials))
		})

		It("validates the request body", func() {
			_, err := service.Login(auth.LoginDTO{Email: "not-an-email", Password: "s3cretpass"})
			Expect(err).To(HaveOccurred())

			_, err = service.Login(auth.LoginDTO{Email: "ana.cruz@university.edu"})
			Expect(err).To(HaveOccurred())
		})
	})

	Describe("Refresh", func() {
		var refreshToken string

		BeforeEach(func() {
			pair, err := service.Login(auth.LoginDTO{
				Email:    "ana.cruz@university.edu",
				Password: "s3cretpass",
			})
			Expect(err).NotTo(HaveOccurred())
			refreshToken = pair.RefreshToken
		})

		It("rotates the token pair", func() {
			pair, err := service.Refresh(auth.RefreshTokenDTO{RefreshToken: refreshToken})
			Expect(err).NotTo(HaveOccurred())
			Expect(pair.UserID).To(Equal("uid-1"))
			Expect(mockIdent.issuedForUIDs).To(HaveLen(2))
		})

		It("picks up a role change on rotation", func() {
			mockIdent.accounts["uid-1"].Role = "ADMIN"

			pair, err := service.Refresh(auth.RefreshTokenDTO{RefreshToken: refreshToken})
			Expect(err).NotTo(HaveOccurred())
			Expect(pair.Role).To(Equal("ADMIN"))
		})

		It("rejects a refresh for a disabled account", func() {
			mockIdent.accounts["uid-1"].Disabled = true

			_, err := service.Refresh(auth.RefreshTokenDTO{RefreshToken: refreshToken})
			Expect(err).To(MatchError(internal.ErrInvalidToken))
		})

		It("rejects a refresh for a deleted account", func() {
			delete(mockIdent.accounts, "uid-1")

			_, err := service.Refresh(auth.RefreshTokenDTO{RefreshToken: refreshToken})
			Expect(err).To(MatchError(internal.ErrInvalidToken))
		})

		It("maps expiry to the expired-token error", func() {
			mockIdent.validateErr = jwt.ErrTokenExpired

			_, err := service.Refresh(auth.RefreshTokenDTO{RefreshToken: refreshToken})
			Expect(err).To(MatchError(internal.ErrTokenExpired))
		})

		It("rejects garbage tokens", func() {
			_, err := service.Refresh(auth.RefreshTokenDTO{RefreshToken: "not-a-token"})
			Expect(err).To(MatchError(internal.ErrInvalidToken))
		})

		It("rejects an access token presented as a refresh token", func() {
			pair, err := service.Login(auth.LoginDTO{
				Email:    "ana.cruz@university.edu",
				Password: "s3cretpass",
			})
			Expect(err).NotTo(HaveOccurred())

			_, err = service.Refresh(auth.RefreshTokenDTO{RefreshToken: pair.AccessToken})
			Expect(err).To(MatchError(internal.ErrInvalidToken))
		})
	})

	Describe("ValidateAccessToken", func() {
		It("returns claims for a known token", func() {
			mockIdent.accessClaims["token-x"] = &identity.Claims{UserID: "uid-1", Role: "USER"}

			claims, err := service.ValidateAccessToken("token-x")
			Expect(err).NotTo(HaveOccurred())
			Expect(claims.UserID).To(Equal("uid-1"))
		})

		It("rejects a refresh token presented as a bearer credential", func() {
			pair, err := service.Login(auth.LoginDTO{
				Email:    "ana.cruz@university.edu",
				Password: "s3cretpass",
			})
			Expect(err).NotTo(HaveOccurred())

			_, err = service.ValidateAccessToken(pair.RefreshToken)
			Expect(err).To(MatchError(internal.ErrInvalidToken))
		})

		It("maps expiry to the expired-token error", func() {
			mockIdent.validateErr = jwt.ErrTokenExpired

			_, err := service.ValidateAccessToken("token-x")
			Expect(err).To(MatchError(internal.ErrTokenExpired))
		})
	})
})
