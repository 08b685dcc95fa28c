package attendance_test

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/rbcalderon/attendance-management/internal"
	"github.com/rbcalderon/attendance-management/internal/attendance"
	"github.com/rbcalderon/attendance-management/internal/core/events"
	"github.com/rbcalderon/attendance-management/internal/event"
)

func TestAttendanceService(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Attendance Service Suite")
}

type attendanceKey struct {
	eventID string
	userID  string
}

// MockRepository implements attendance.RepositoryAPI for testing
type MockRepository struct {
	records    map[attendanceKey]*attendance.Attendance
	shouldFail bool
	failError  error
}

func NewMockRepository() *MockRepository {
	return &MockRepository{records: make(map[attendanceKey]*attendance.Attendance)}
}

func (m *MockRepository) CreateIfAbsent(att *attendance.Attendance) (bool, error) {
	if m.shouldFail {
		return false, m.failError
	}
	key := attendanceKey{att.EventID, att.UserID}
	if _, exists := m.records[key]; exists {
		return false, nil
	}
	copied := *att
	m.records[key] = &copied
	return true, nil
}

func (m *MockRepository) GetByEventAndUser(eventID, userID string) (*attendance.Attendance, error) {
	if m.shouldFail {
		return nil, m.failError
	}
	att, ok := m.records[attendanceKey{eventID, userID}]
	if !ok {
		return nil, nil
	}
	copied := *att
	return &copied, nil
}

func (m *MockRepository) SetTimeOut(eventID, userID string, timeOut time.Time) (bool, error) {
	if m.shouldFail {
		return false, m.failError
	}
	att, ok := m.records[attendanceKey{eventID, userID}]
	if !ok || att.TimeOut != nil {
		return false, nil
	}
	att.TimeOut = &timeOut
	return true, nil
}

func (m *MockRepository) ListByEvent(eventID string) ([]*attendance.Attendance, error) {
	if m.shouldFail {
		return nil, m.failError
	}
	var result []*attendance.Attendance
	for key, att := range m.records {
		if key.eventID == eventID {
			copied := *att
			result = append(result, &copied)
		}
	}
	return result, nil
}

func (m *MockRepository) ListByUser(userID string) ([]*attendance.Attendance, error) {
	if m.shouldFail {
		return nil, m.failError
	}
	var result []*attendance.Attendance
	for key, att := range m.records {
		if key.userID == userID {
			copied := *att
			result = append(result, &copied)
		}
	}
	return result, nil
}

// MockEventGetter implements attendance.EventGetterAPI
type MockEventGetter struct {
	events map[string]*event.Event
}

func NewMockEventGetter() *MockEventGetter {
	return &MockEventGetter{events: make(map[string]*event.Event)}
}

func (m *MockEventGetter) GetByID(ctx context.Context, eventID string) (*event.Event, error) {
	ev, ok := m.events[eventID]
	if !ok {
		return nil, internal.ErrEventNotFound
	}
	return ev, nil
}

// MockPublisher implements attendance.EventPublisherAPI
type MockPublisher struct {
	published   []events.Event
	publishFail error
}

func (m *MockPublisher) Publish(ctx context.Context, ev events.Event) error {
	if m.publishFail != nil {
		return m.publishFail
	}
	m.published = append(m.published, ev)
	return nil
}

var _ = Describe("Attendance Service", func() {
	var (
		mockRepo      *MockRepository
		mockEvents    *MockEventGetter
		mockPublisher *MockPublisher
		service       *attendance.Service
		ctx           context.Context
	)

	BeforeEach(func() {
		mockRepo = NewMockRepository()
		mockEvents = NewMockEventGetter()
		mockPublisher = &MockPublisher{}
		testLogger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		service = attendance.NewService(mockRepo, mockEvents, mockPublisher, testLogger)
		ctx = context.Background()

		mockEvents.events["event-1"] = &event.Event{
			EventID:   "event-1",
			Title:     "Orientation Seminar",
			StartTime: time.Now(),
		}
	})

	Describe("CheckIn", func() {
		It("records the first check-in and publishes an event", func() {
			att, err := service.CheckIn(ctx, attendance.CheckDTO{EventID: "event-1"}, "user-1")
			Expect(err).NotTo(HaveOccurred())
			Expect(att.ID).NotTo(BeEmpty())
			Expect(att.EventID).To(Equal("event-1"))
			Expect(att.UserID).To(Equal("user-1"))
			Expect(att.TimeIn).NotTo(BeZero())
			Expect(att.TimeOut).To(BeNil())

			Expect(mockPublisher.published).To(HaveLen(1))
			checkedIn, ok := mockPublisher.published[0].(*events.AttendanceCheckedInEvent)
			Expect(ok).To(BeTrue())
			Expect(checkedIn.EventRefID).To(Equal("event-1"))
			Expect(checkedIn.UserID).To(Equal("user-1"))
		})

		It("rejects a second check-in for the same event", func() {
			_, err := service.CheckIn(ctx, attendance.CheckDTO{EventID: "event-1"}, "user-1")
			Expect(err).NotTo(HaveOccurred())

			_, err = service.CheckIn(ctx, attendance.CheckDTO{EventID: "event-1"}, "user-1")
			Expect(err).To(HaveOccurred())
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Code).To(Equal(internal.ErrCodeAlreadyCheckedIn))

			Expect(mockPublisher.published).To(HaveLen(1))
		})

		It("allows distinct users to check in to the same event", func() {
			_, err := service.CheckIn(ctx, attendance.CheckDTO{EventID: "event-1"}, "user-1")
			Expect(err).NotTo(HaveOccurred())
			_, err = service.CheckIn(ctx, attendance.CheckDTO{EventID: "event-1"}, "user-2")
			Expect(err).NotTo(HaveOccurred())
		})

		It("fails when the event does not exist", func() {
			_, err := service.CheckIn(ctx, attendance.CheckDTO{EventID: "no-such-event"}, "user-1")
			Expect(err).To(MatchError(internal.ErrEventNotFound))
			Expect(mockPublisher.published).To(BeEmpty())
		})

		It("requires an event ID", func() {
			_, err := service.CheckIn(ctx, attendance.CheckDTO{}, "user-1")
			Expect(err).To(HaveOccurred())
		})

		It("still succeeds when publishing the event fails", func() {
			mockPublisher.publishFail = errors.New("bus closed")

			att, err := service.CheckIn(ctx, attendance.CheckDTO{EventID: "event-1"}, "user-1")
			Expect(err).NotTo(HaveOccurred())
			Expect(att).NotTo(BeNil())
		})
	})

	Describe("CheckOut", func() {
		It("stamps the time-out on an open check-in", func() {
			_, err := service.CheckIn(ctx, attendance.CheckDTO{EventID: "event-1"}, "user-1")
			Expect(err).NotTo(HaveOccurred())

			att, err := service.CheckOut(ctx, attendance.CheckDTO{EventID: "event-1"}, "user-1")
			Expect(err).NotTo(HaveOccurred())
			Expect(att.TimeOut).NotTo(BeNil())
			Expect(att.TimeOut.Before(att.TimeIn)).To(BeFalse())
		})

		It("fails when the attendee never checked in", func() {
			_, err := service.CheckOut(ctx, attendance.CheckDTO{EventID: "event-1"}, "user-1")
			Expect(err).To(HaveOccurred())
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Code).To(Equal(internal.ErrCodeNotCheckedIn))
		})

		It("fails on a second check-out", func() {
			_, err := service.CheckIn(ctx, attendance.CheckDTO{EventID: "event-1"}, "user-1")
			Expect(err).NotTo(HaveOccurred())
			_, err = service.CheckOut(ctx, attendance.CheckDTO{EventID: "event-1"}, "user-1")
			Expect(err).NotTo(HaveOccurred())

			_, err = service.CheckOut(ctx, attendance.CheckDTO{EventID: "event-1"}, "user-1")
			Expect(err).To(HaveOccurred())
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Code).To(Equal(internal.ErrCodeNotCheckedIn))
		})
	})

	Describe("queries", func() {
		BeforeEach(func() {
			_, err := service.CheckIn(ctx, attendance.CheckDTO{EventID: "event-1"}, "user-1")
			Expect(err).NotTo(HaveOccurred())
			_, err = service.CheckIn(ctx, attendance.CheckDTO{EventID: "event-1"}, "user-2")
			Expect(err).NotTo(HaveOccurred())
		})

		It("lists attendance for an event", func() {
			records, err := service.ListByEvent(ctx, "event-1")
			Expect(err).NotTo(HaveOccurred())
			Expect(records).To(HaveLen(2))
		})

		It("refuses to list attendance for an unknown event", func() {
			_, err := service.ListByEvent(ctx, "no-such-event")
			Expect(err).To(MatchError(internal.ErrEventNotFound))
		})

		It("lists a user's attendance history", func() {
			records, err := service.ListByUser(ctx, "user-1")
			Expect(err).NotTo(HaveOccurred())
			Expect(records).To(HaveLen(1))
			Expect(records[0].EventID).To(Equal("event-1"))
		})

		It("fetches a single attendance record", func() {
			att, err := service.GetByEventAndUser(ctx, "event-1", "user-1")
			Expect(err).NotTo(HaveOccurred())
			Expect(att.UserID).To(Equal("user-1"))
		})

		It("returns not found for a user who never attended", func() {
			_, err := service.GetByEventAndUser(ctx, "event-1", "user-9")
			Expect(err).To(HaveOccurred())
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Type).To(Equal(internal.ErrorTypeNotFound))
		})
	})
})
