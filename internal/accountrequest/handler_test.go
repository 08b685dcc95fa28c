package accountrequest_test

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"

	"github.com/go-chi/chi"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/rbcalderon/attendance-management/internal"
	"github.com/rbcalderon/attendance-management/internal/accountrequest"
	"github.com/rbcalderon/attendance-management/internal/transport"
)

type mockService struct {
	createResult   *accountrequest.AccountRequest
	createErr      error
	listAllResult  []*accountrequest.AccountRequest
	pendingResult  []*accountrequest.AccountRequest
	getResult      *accountrequest.AccountRequest
	getErr         error
	reviewResult   *accountrequest.ReviewResult
	reviewErr      error
	reminderErr    error
	reviewedDTO    *accountrequest.ReviewDTO
	reminderCalled string
}

func (m *mockService) Create(dto accountrequest.CreateAccountRequestDTO) (*accountrequest.AccountRequest, error) {
	if m.createErr != nil {
		return nil, m.createErr
	}
	return m.createResult, nil
}

func (m *mockService) ListAll() ([]*accountrequest.AccountRequest, error) {
	return m.listAllResult, nil
}

func (m *mockService) ListPending() ([]*accountrequest.AccountRequest, error) {
	return m.pendingResult, nil
}

func (m *mockService) GetByID(requestID string) (*accountrequest.AccountRequest, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	return m.getResult, nil
}

func (m *mockService) Review(ctx context.Context, dto accountrequest.ReviewDTO) (*accountrequest.ReviewResult, error) {
	m.reviewedDTO = &dto
	if m.reviewErr != nil {
		return nil, m.reviewErr
	}
	return m.reviewResult, nil
}

func (m *mockService) SendPendingReminder(requestID string) error {
	m.reminderCalled = requestID
	return m.reminderErr
}

var _ = Describe("AccountRequest Handler", func() {
	var (
		service  *mockService
		handler  *accountrequest.Handler
		recorder *httptest.ResponseRecorder
	)

	BeforeEach(func() {
		service = &mockService{}
		testLogger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		handler = accountrequest.NewHandler(&transport.BaseHandler{Logger: testLogger}, service)
		recorder = httptest.NewRecorder()
	})

	decodeEnvelope := func() transport.Envelope {
		var env transport.Envelope
		Expect(json.NewDecoder(recorder.Body).Decode(&env)).To(Succeed())
		return env
	}

	Describe("CreateRequest", func() {
		It("returns 201 with the request ID", func() {
			service.createResult = &accountrequest.AccountRequest{RequestID: "req-1"}

			body := []byte(`{"first_name":"Ana","last_name":"Cruz","email":"ana@university.edu","school_id":"2021-00123","department":"CCS","password":"s3cretpass"}`)
			req := httptest.NewRequest(http.MethodPost, "/account-requests/create", bytes.NewBuffer(body))

			handler.CreateRequest(recorder, req)

			Expect(recorder.Code).To(Equal(http.StatusCreated))
			env := decodeEnvelope()
			Expect(env.Success).To(BeTrue())
			data, ok := env.Data.(map[string]interface{})
			Expect(ok).To(BeTrue())
			Expect(data["request_id"]).To(Equal("req-1"))
		})

		It("rejects malformed JSON", func() {
			req := httptest.NewRequest(http.MethodPost, "/account-requests/create", bytes.NewBufferString("{not json"))

			handler.CreateRequest(recorder, req)

			Expect(recorder.Code).To(Equal(http.StatusBadRequest))
			Expect(decodeEnvelope().Success).To(BeFalse())
		})

		It("maps duplicate school IDs to the conflict error code", func() {
			service.createErr = internal.ErrDuplicateSchoolID

			body := []byte(`{"first_name":"Ana","last_name":"Cruz","email":"ana@university.edu","school_id":"2021-00123","department":"CCS","password":"s3cretpass"}`)
			req := httptest.NewRequest(http.MethodPost, "/account-requests/create", bytes.NewBuffer(body))

			handler.CreateRequest(recorder, req)

			Expect(recorder.Code).To(Equal(internal.ErrDuplicateSchoolID.StatusCode))
			Expect(decodeEnvelope().Success).To(BeFalse())
		})
	})

	Describe("GetPendingRequests", func() {
		It("returns the pending list with a count", func() {
			service.pendingResult = []*accountrequest.AccountRequest{
				{RequestID: "req-1", Status: accountrequest.StatusPending},
				{RequestID: "req-2", Status: accountrequest.StatusPending},
			}

			req := httptest.NewRequest(http.MethodGet, "/account-requests/pending", nil)
			handler.GetPendingRequests(recorder, req)

			Expect(recorder.Code).To(Equal(http.StatusOK))
			env := decodeEnvelope()
			data, ok := env.Data.(map[string]interface{})
			Expect(ok).To(BeTrue())
			Expect(data["count"]).To(BeEquivalentTo(2))
		})
	})

	Describe("GetRequest", func() {
		It("returns 404 for an unknown request", func() {
			service.getErr = internal.ErrRequestNotFound

			req := httptest.NewRequest(http.MethodGet, "/account-requests/no-such-request", nil)
			rctx := chi.NewRouteContext()
			rctx.URLParams.Add("requestId", "no-such-request")
			req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))

			handler.GetRequest(recorder, req)

			Expect(recorder.Code).To(Equal(http.StatusNotFound))
		})
	})

	Describe("ReviewRequest", func() {
		It("returns the review result with the notification outcome", func() {
			service.reviewResult = &accountrequest.ReviewResult{
				RequestID:        "req-1",
				Outcome:          accountrequest.StatusApproved,
				UserID:           "uid-1",
				NotificationSent: true,
			}

			body := []byte(`{"request_id":"req-1","action":"APPROVE","reviewed_by":"admin-1"}`)
			req := httptest.NewRequest(http.MethodPut, "/account-requests/review", bytes.NewBuffer(body))

			handler.ReviewRequest(recorder, req)

			Expect(recorder.Code).To(Equal(http.StatusOK))
			env := decodeEnvelope()
			Expect(env.Success).To(BeTrue())
			data, ok := env.Data.(map[string]interface{})
			Expect(ok).To(BeTrue())
			Expect(data["message"]).To(Equal("account request approved"))

			Expect(service.reviewedDTO.Action).To(Equal(accountrequest.ActionApprove))
		})

		It("maps a double review to the already-reviewed status", func() {
			service.reviewErr = internal.ErrAlreadyReviewed

			body := []byte(`{"request_id":"req-1","action":"REJECT","reviewed_by":"admin-1","rejection_reason":"late"}`)
			req := httptest.NewRequest(http.MethodPut, "/account-requests/review", bytes.NewBuffer(body))

			handler.ReviewRequest(recorder, req)

			Expect(recorder.Code).To(Equal(internal.ErrAlreadyReviewed.StatusCode))
		})
	})

	Describe("SendPendingReminder", func() {
		It("requires the requestId query parameter", func() {
			req := httptest.NewRequest(http.MethodPost, "/account-requests/send-pending-reminder", nil)
			handler.SendPendingReminder(recorder, req)

			Expect(recorder.Code).To(Equal(http.StatusBadRequest))
			Expect(service.reminderCalled).To(BeEmpty())
		})

		It("forwards the request ID to the service", func() {
			req := httptest.NewRequest(http.MethodPost, "/account-requests/send-pending-reminder?requestId=req-1", nil)
			handler.SendPendingReminder(recorder, req)

			Expect(recorder.Code).To(Equal(http.StatusOK))
			Expect(service.reminderCalled).To(Equal("req-1"))
		})
	})
})
