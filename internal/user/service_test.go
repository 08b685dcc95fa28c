package user_test

import (
	"errors"
	"log/slog"
	"os"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/rbcalderon/attendance-management/internal"
	"github.com/rbcalderon/attendance-management/internal/department"
	"github.com/rbcalderon/attendance-management/internal/user"
)

func TestUserService(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "User Service Suite")
}

// MockRepository implements user.RepositoryAPI for testing
type MockRepository struct {
	users      map[string]*user.User
	getFail    error
	deleteFail error
}

func NewMockRepository() *MockRepository {
	return &MockRepository{users: make(map[string]*user.User)}
}

func (m *MockRepository) Create(u *user.User) error {
	for _, existing := range m.users {
		if existing.Email == u.Email {
			return user.ErrDuplicateEmail
		}
		if existing.SchoolID == u.SchoolID {
			return user.ErrDuplicateSchoolID
		}
	}
	copied := *u
	m.users[u.UserID] = &copied
	return nil
}

func (m *MockRepository) GetByID(userID string) (*user.User, error) {
	if m.getFail != nil {
		return nil, m.getFail
	}
	u, ok := m.users[userID]
	if !ok {
		return nil, user.ErrNotFound
	}
	copied := *u
	return &copied, nil
}

func (m *MockRepository) GetByEmail(email string) (*user.User, error) {
	for _, u := range m.users {
		if u.Email == email {
			copied := *u
			return &copied, nil
		}
	}
	return nil, user.ErrNotFound
}

func (m *MockRepository) GetBySchoolID(schoolID string) (*user.User, error) {
	if m.getFail != nil {
		return nil, m.getFail
	}
	for _, u := range m.users {
		if u.SchoolID == schoolID {
			copied := *u
			return &copied, nil
		}
	}
	return nil, user.ErrNotFound
}

func (m *MockRepository) GetAll(limit, offset int) ([]*user.User, error) {
	var result []*user.User
	for _, u := range m.users {
		copied := *u
		result = append(result, &copied)
	}
	return result, nil
}

func (m *MockRepository) Update(u *user.User) error {
	copied := *u
	m.users[u.UserID] = &copied
	return nil
}

func (m *MockRepository) Delete(userID string) error {
	if m.deleteFail != nil {
		return m.deleteFail
	}
	delete(m.users, userID)
	return nil
}

// MockIdentity implements user.IdentityAPI
type MockIdentity struct {
	claims        map[string]string
	deletedUIDs   []string
	claimSyncFail error
	deleteFail    error
}

func NewMockIdentity() *MockIdentity {
	return &MockIdentity{claims: make(map[string]string)}
}

func (m *MockIdentity) SetCustomClaims(uid, role string) error {
	if m.claimSyncFail != nil {
		return m.claimSyncFail
	}
	m.claims[uid] = role
	return nil
}

func (m *MockIdentity) DeleteAccount(uid string) error {
	if m.deleteFail != nil {
		return m.deleteFail
	}
	m.deletedUIDs = append(m.deletedUIDs, uid)
	return nil
}

// MockDepartmentResolver implements user.DepartmentResolver
type MockDepartmentResolver struct {
	departments map[string]*department.Department
}

func (m *MockDepartmentResolver) GetByID(id string) (*department.Department, error) {
	dept, ok := m.departments[id]
	if !ok {
		return nil, internal.ErrDepartmentNotFound
	}
	return dept, nil
}

var _ = Describe("User Service", func() {
	var (
		mockRepo  *MockRepository
		mockIdent *MockIdentity
		mockDepts *MockDepartmentResolver
		service   *user.Service
	)

	BeforeEach(func() {
		mockRepo = NewMockRepository()
		mockIdent = NewMockIdentity()
		mockDepts = &MockDepartmentResolver{departments: map[string]*department.Department{
			"dept-coe": {ID: "dept-coe", Name: "College of Engineering"},
		}}
		testLogger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		service = user.NewService(mockRepo, mockIdent, mockDepts, testLogger)

		Expect(service.Create(&user.User{
			UserID:    "uid-1",
			FirstName: "Ana",
			LastName:  "Cruz",
			Email:     "ana.cruz@university.edu",
			SchoolID:  "2021-00123",
			Role:      user.RoleUser,
			Verified:  true,
		})).To(Succeed())
	})

	Describe("Create", func() {
		It("stamps creation timestamps", func() {
			stored, err := service.GetByID("uid-1")
			Expect(err).NotTo(HaveOccurred())
			Expect(stored.CreatedAt).NotTo(BeZero())
			Expect(stored.UpdatedAt).NotTo(BeZero())
		})

		It("surfaces duplicate emails", func() {
			err := service.Create(&user.User{
				UserID:   "uid-2",
				Email:    "ana.cruz@university.edu",
				SchoolID: "2021-00999",
			})
			Expect(err).To(MatchError(user.ErrDuplicateEmail))
		})
	})

	Describe("lookups", func() {
		It("finds a user by school ID", func() {
			u, err := service.GetBySchoolID("2021-00123")
			Expect(err).NotTo(HaveOccurred())
			Expect(u.UserID).To(Equal("uid-1"))
		})

		It("maps missing users to the not-found sentinel", func() {
			_, err := service.GetByID("uid-9")
			Expect(err).To(MatchError(internal.ErrUserNotFound))
		})

		It("does not report a store failure as not-found", func() {
			mockRepo.getFail = errors.New("connection refused")

			_, err := service.GetByID("uid-1")
			Expect(err).NotTo(MatchError(internal.ErrUserNotFound))
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Type).To(Equal(internal.ErrorTypeInternal))

			_, err = service.GetBySchoolID("2021-00123")
			Expect(err).NotTo(MatchError(internal.ErrUserNotFound))
		})
	})

	Describe("UpdateProfile", func() {
		It("changes only the provided fields", func() {
			updated, err := service.UpdateProfile("uid-1", user.UpdateProfileDTO{
				FirstName: "Anna",
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(updated.FirstName).To(Equal("Anna"))
			Expect(updated.LastName).To(Equal("Cruz"))
		})

		It("rejects an empty update", func() {
			_, err := service.UpdateProfile("uid-1", user.UpdateProfileDTO{})
			Expect(err).To(HaveOccurred())
		})
	})

	Describe("UpdateRole", func() {
		It("updates the stored role and syncs the identity claim", func() {
			updated, err := service.UpdateRole("uid-1", user.UpdateRoleDTO{Role: user.RoleAdmin})
			Expect(err).NotTo(HaveOccurred())
			Expect(updated.Role).To(Equal(user.RoleAdmin))
			Expect(updated.IsAdmin()).To(BeTrue())
			Expect(mockIdent.claims["uid-1"]).To(Equal(user.RoleAdmin))
		})

		It("rejects unknown roles", func() {
			_, err := service.UpdateRole("uid-1", user.UpdateRoleDTO{Role: "SUPERUSER"})
			Expect(err).To(HaveOccurred())
		})

		It("reports a dependency error when the claim sync fails", func() {
			mockIdent.claimSyncFail = errors.New("provider unreachable")

			_, err := service.UpdateRole("uid-1", user.UpdateRoleDTO{Role: user.RoleAdmin})
			Expect(err).To(HaveOccurred())
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Type).To(Equal(internal.ErrorTypeDependency))
		})
	})

	Describe("UpdateDepartment", func() {
		It("snapshots the department name onto the user", func() {
			updated, err := service.UpdateDepartment("uid-1", user.UpdateDepartmentDTO{
				DepartmentID: "dept-coe",
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(updated.DepartmentID).To(Equal("dept-coe"))
			Expect(updated.DepartmentName).To(Equal("College of Engineering"))
		})

		It("fails for an unknown department", func() {
			_, err := service.UpdateDepartment("uid-1", user.UpdateDepartmentDTO{
				DepartmentID: "dept-none",
			})
			Expect(err).To(MatchError(internal.ErrDepartmentNotFound))
		})
	})

	Describe("Delete", func() {
		It("removes both the user record and the identity account", func() {
			Expect(service.Delete("uid-1")).To(Succeed())
			Expect(mockIdent.deletedUIDs).To(ContainElement("uid-1"))

			_, err := service.GetByID("uid-1")
			Expect(err).To(MatchError(internal.ErrUserNotFound))
		})

		It("fails when the identity account cannot be removed", func() {
			mockIdent.deleteFail = errors.New("provider unreachable")

			err := service.Delete("uid-1")
			Expect(err).To(HaveOccurred())
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Type).To(Equal(internal.ErrorTypeDependency))
		})

		It("fails for an unknown user", func() {
			Expect(service.Delete("uid-9")).To(MatchError(internal.ErrUserNotFound))
		})
	})
})
