package excuseletter_test

import (
	"context"
	"log/slog"
	"os"
	"strings"
	"testing"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/rbcalderon/attendance-management/internal"
	"github.com/rbcalderon/attendance-management/internal/event"
	"github.com/rbcalderon/attendance-management/internal/excuseletter"
)

func TestExcuseLetterService(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "ExcuseLetter Service Suite")
}

// MockRepository implements excuseletter.RepositoryAPI for testing
type MockRepository struct {
	letters    map[string]*excuseletter.ExcuseLetter
	shouldFail bool
	failError  error
}

func NewMockRepository() *MockRepository {
	return &MockRepository{letters: make(map[string]*excuseletter.ExcuseLetter)}
}

func (m *MockRepository) Create(letter *excuseletter.ExcuseLetter) error {
	if m.shouldFail {
		return m.failError
	}
	copied := *letter
	m.letters[letter.ID] = &copied
	return nil
}

func (m *MockRepository) GetByID(letterID string) (*excuseletter.ExcuseLetter, error) {
	if m.shouldFail {
		return nil, m.failError
	}
	letter, ok := m.letters[letterID]
	if !ok {
		return nil, nil
	}
	copied := *letter
	return &copied, nil
}

func (m *MockRepository) ListAll() ([]*excuseletter.ExcuseLetter, error) {
	if m.shouldFail {
		return nil, m.failError
	}
	var result []*excuseletter.ExcuseLetter
	for _, letter := range m.letters {
		copied := *letter
		result = append(result, &copied)
	}
	return result, nil
}

func (m *MockRepository) ClaimDecision(letterID, toStatus, reviewedBy, remarks string, reviewedAt time.Time) (bool, error) {
	if m.shouldFail {
		return false, m.failError
	}
	letter, ok := m.letters[letterID]
	if !ok || letter.Status != excuseletter.StatusPending {
		return false, nil
	}
	letter.Status = toStatus
	letter.ReviewedBy = &reviewedBy
	letter.ReviewedAt = &reviewedAt
	if remarks != "" {
		letter.Remarks = &remarks
	}
	return true, nil
}

// MockEventGetter implements excuseletter.EventGetterAPI
type MockEventGetter struct {
	events map[string]*event.Event
}

func (m *MockEventGetter) GetByID(ctx context.Context, eventID string) (*event.Event, error) {
	ev, ok := m.events[eventID]
	if !ok {
		return nil, internal.ErrEventNotFound
	}
	return ev, nil
}

var _ = Describe("ExcuseLetter Service", func() {
	var (
		mockRepo   *MockRepository
		mockEvents *MockEventGetter
		service    *excuseletter.Service
		ctx        context.Context
	)

	BeforeEach(func() {
		mockRepo = NewMockRepository()
		mockEvents = &MockEventGetter{events: map[string]*event.Event{
			"event-1": {EventID: "event-1", Title: "Research Colloquium", StartTime: time.Now()},
		}}
		testLogger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		service = excuseletter.NewService(mockRepo, mockEvents, testLogger)
		ctx = context.Background()
	})

	submit := func(eventID, userID, reason string) *excuseletter.ExcuseLetter {
		letter, err := service.Submit(ctx, excuseletter.SubmitExcuseLetterDTO{
			EventID: eventID,
			Reason:  reason,
		}, userID)
		Expect(err).NotTo(HaveOccurred())
		return letter
	}

	Describe("Submit", func() {
		It("stores a pending letter", func() {
			letter := submit("event-1", "user-1", "medical appointment")
			Expect(letter.ID).NotTo(BeEmpty())
			Expect(letter.Status).To(Equal(excuseletter.StatusPending))
			Expect(letter.SubmittedAt).NotTo(BeZero())
			Expect(letter.ReviewedAt).To(BeNil())
		})

		It("requires a reason", func() {
			_, err := service.Submit(ctx, excuseletter.SubmitExcuseLetterDTO{
				EventID: "event-1",
			}, "user-1")
			Expect(err).To(HaveOccurred())
		})

		It("caps the reason length", func() {
			_, err := service.Submit(ctx, excuseletter.SubmitExcuseLetterDTO{
				EventID: "event-1",
				Reason:  strings.Repeat("x", 2001),
			}, "user-1")
			Expect(err).To(HaveOccurred())
		})

		It("fails for an unknown event", func() {
			_, err := service.Submit(ctx, excuseletter.SubmitExcuseLetterDTO{
				EventID: "no-such-event",
				Reason:  "sick leave",
			}, "user-1")
			Expect(err).To(MatchError(internal.ErrEventNotFound))
		})
	})

	Describe("Review", func() {
		var pending *excuseletter.ExcuseLetter

		BeforeEach(func() {
			pending = submit("event-1", "user-1", "family emergency")
		})

		It("approves a pending letter and records the reviewer", func() {
			letter, err := service.Review(ctx, excuseletter.ReviewExcuseLetterDTO{
				LetterID:   pending.ID,
				Action:     excuseletter.ActionApprove,
				ReviewedBy: "admin-1",
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(letter.Status).To(Equal(excuseletter.StatusApproved))
			Expect(letter.ReviewedBy).NotTo(BeNil())
			Expect(*letter.ReviewedBy).To(Equal("admin-1"))
			Expect(letter.ReviewedAt).NotTo(BeNil())
		})

		It("rejects with remarks", func() {
			letter, err := service.Review(ctx, excuseletter.ReviewExcuseLetterDTO{
				LetterID:   pending.ID,
				Action:     excuseletter.ActionReject,
				ReviewedBy: "admin-1",
				Remarks:    "no supporting document",
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(letter.Status).To(Equal(excuseletter.StatusRejected))
			Expect(letter.Remarks).NotTo(BeNil())
			Expect(*letter.Remarks).To(Equal("no supporting document"))
		})

		It("requires remarks when rejecting", func() {
			_, err := service.Review(ctx, excuseletter.ReviewExcuseLetterDTO{
				LetterID:   pending.ID,
				Action:     excuseletter.ActionReject,
				ReviewedBy: "admin-1",
				Remarks:    "   ",
			})
			Expect(err).To(HaveOccurred())

			stored, _ := mockRepo.GetByID(pending.ID)
			Expect(stored.Status).To(Equal(excuseletter.StatusPending))
		})

		It("refuses a second review", func() {
			_, err := service.Review(ctx, excuseletter.ReviewExcuseLetterDTO{
				LetterID:   pending.ID,
				Action:     excuseletter.ActionApprove,
				ReviewedBy: "admin-1",
			})
			Expect(err).NotTo(HaveOccurred())

			_, err = service.Review(ctx, excuseletter.ReviewExcuseLetterDTO{
				LetterID:   pending.ID,
				Action:     excuseletter.ActionReject,
				ReviewedBy: "admin-2",
				Remarks:    "overruled",
			})
			Expect(err).To(HaveOccurred())
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Code).To(Equal(internal.ErrCodeLetterReviewed))
		})

		It("returns not found for an unknown letter", func() {
			_, err := service.Review(ctx, excuseletter.ReviewExcuseLetterDTO{
				LetterID:   "no-such-letter",
				Action:     excuseletter.ActionApprove,
				ReviewedBy: "admin-1",
			})
			Expect(err).To(MatchError(internal.ErrLetterNotFound))
		})
	})

	Describe("List", func() {
		BeforeEach(func() {
			mockEvents.events["event-2"] = &event.Event{EventID: "event-2", Title: "Sportsfest", StartTime: time.Now()}

			// Stagger submission times so ordering is observable.
			base := time.Now().Add(-time.Hour)
			for i, spec := range []struct {
				eventID, userID string
			}{
				{"event-1", "user-1"},
				{"event-1", "user-2"},
				{"event-2", "user-1"},
			} {
				letter := submit(spec.eventID, spec.userID, "reason")
				stored := mockRepo.letters[letter.ID]
				stored.SubmittedAt = base.Add(time.Duration(i) * time.Minute)
			}
		})

		It("returns all letters newest first", func() {
			page, err := service.List(ctx, excuseletter.ListFilter{})
			Expect(err).NotTo(HaveOccurred())
			Expect(page.Total).To(Equal(3))
			Expect(page.Letters).To(HaveLen(3))
			for i := 1; i < len(page.Letters); i++ {
				Expect(page.Letters[i].SubmittedAt.After(page.Letters[i-1].SubmittedAt)).To(BeFalse())
			}
		})

		It("filters by event", func() {
			page, err := service.List(ctx, excuseletter.ListFilter{EventID: "event-2"})
			Expect(err).NotTo(HaveOccurred())
			Expect(page.Total).To(Equal(1))
			Expect(page.Letters[0].EventID).To(Equal("event-2"))
		})

		It("filters by user", func() {
			page, err := service.List(ctx, excuseletter.ListFilter{UserID: "user-1"})
			Expect(err).NotTo(HaveOccurred())
			Expect(page.Total).To(Equal(2))
		})

		It("filters by status", func() {
			var any *excuseletter.ExcuseLetter
			for _, l := range mockRepo.letters {
				any = l
				break
			}
			_, err := service.Review(ctx, excuseletter.ReviewExcuseLetterDTO{
				LetterID:   any.ID,
				Action:     excuseletter.ActionApprove,
				ReviewedBy: "admin-1",
			})
			Expect(err).NotTo(HaveOccurred())

			page, err := service.List(ctx, excuseletter.ListFilter{Status: excuseletter.StatusApproved})
			Expect(err).NotTo(HaveOccurred())
			Expect(page.Total).To(Equal(1))

			page, err = service.List(ctx, excuseletter.ListFilter{Status: excuseletter.StatusPending})
			Expect(err).NotTo(HaveOccurred())
			Expect(page.Total).To(Equal(2))
		})

		It("pages the result", func() {
			page, err := service.List(ctx, excuseletter.ListFilter{Page: 1, PageSize: 2})
			Expect(err).NotTo(HaveOccurred())
			Expect(page.Letters).To(HaveLen(2))
			Expect(page.Total).To(Equal(3))

			page, err = service.List(ctx, excuseletter.ListFilter{Page: 2, PageSize: 2})
			Expect(err).NotTo(HaveOccurred())
			Expect(page.Letters).To(HaveLen(1))
		})

		It("returns an empty page past the end", func() {
			page, err := service.List(ctx, excuseletter.ListFilter{Page: 5, PageSize: 10})
			Expect(err).NotTo(HaveOccurred())
			Expect(page.Letters).To(BeEmpty())
			Expect(page.Total).To(Equal(3))
		})
	})
})
