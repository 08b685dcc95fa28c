package event_test

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"time"

	"github.com/go-chi/chi"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/rbcalderon/attendance-management/internal"
	"github.com/rbcalderon/attendance-management/internal/event"
	eventPostgres "github.com/rbcalderon/attendance-management/internal/event/postgres"
	"github.com/rbcalderon/attendance-management/internal/transport"
)

var _ = Describe("Event Handler Integration", func() {
	var (
		db      *gorm.DB
		repo    event.RepositoryAPI
		service *event.Service
		handler *event.Handler
	)

	BeforeEach(func() {
		var err error
		testLogger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))

		db, err = gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
			Logger: gormlogger.Default.LogMode(gormlogger.Silent),
		})
		Expect(err).NotTo(HaveOccurred())

		err = db.AutoMigrate(&event.Event{})
		Expect(err).NotTo(HaveOccurred())

		repo = eventPostgres.NewEventRepository(db)
		service = event.NewService(repo, testLogger)
		handler = event.NewHandler(&transport.BaseHandler{Logger: testLogger}, service)
	})

	withEventParam := func(req *http.Request, eventID string) *http.Request {
		rctx := chi.NewRouteContext()
		rctx.URLParams.Add("eventId", eventID)
		return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
	}

	createEvent := func(title string) *event.Event {
		ev, err := service.Create(context.Background(), event.CreateEventDTO{
			Title:     title,
			Venue:     "Main Hall",
			StartTime: time.Now().Add(24 * time.Hour),
		}, "admin-1")
		Expect(err).NotTo(HaveOccurred())
		return ev
	}

	It("creates an event over HTTP with the caller as creator", func() {
		body := map[string]interface{}{
			"title":      "Foundation Day",
			"venue":      "Quadrangle",
			"start_time": time.Now().Add(48 * time.Hour).Format(time.RFC3339),
		}
		raw, err := json.Marshal(body)
		Expect(err).NotTo(HaveOccurred())

		req := httptest.NewRequest(http.MethodPost, "/events", bytes.NewBuffer(raw))
		req = req.WithContext(internal.ContextWithUserID(req.Context(), "admin-7"))
		w := httptest.NewRecorder()

		handler.CreateEvent(w, req)

		Expect(w.Code).To(Equal(http.StatusCreated))

		var env transport.Envelope
		Expect(json.NewDecoder(w.Body).Decode(&env)).To(Succeed())
		data, ok := env.Data.(map[string]interface{})
		Expect(ok).To(BeTrue())
		created, ok := data["event"].(map[string]interface{})
		Expect(ok).To(BeTrue())
		Expect(created["title"]).To(Equal("Foundation Day"))
		Expect(created["created_by"]).To(Equal("admin-7"))
	})

	It("lists stored events with a count", func() {
		createEvent("Seminar A")
		createEvent("Seminar B")

		req := httptest.NewRequest(http.MethodGet, "/events", nil)
		w := httptest.NewRecorder()

		handler.GetEvents(w, req)

		Expect(w.Code).To(Equal(http.StatusOK))
		var env transport.Envelope
		Expect(json.NewDecoder(w.Body).Decode(&env)).To(Succeed())
		data, ok := env.Data.(map[string]interface{})
		Expect(ok).To(BeTrue())
		Expect(data["count"]).To(BeEquivalentTo(2))
	})

	It("returns 404 for an unknown event", func() {
		req := withEventParam(httptest.NewRequest(http.MethodGet, "/events/no-such-event", nil), "no-such-event")
		w := httptest.NewRecorder()

		handler.GetEvent(w, req)

		Expect(w.Code).To(Equal(http.StatusNotFound))
	})

	It("updates an event's venue", func() {
		ev := createEvent("Seminar A")

		raw := []byte(`{"venue":"Covered Court"}`)
		req := withEventParam(httptest.NewRequest(http.MethodPut, "/events/"+ev.EventID, bytes.NewBuffer(raw)), ev.EventID)
		w := httptest.NewRecorder()

		handler.UpdateEvent(w, req)

		Expect(w.Code).To(Equal(http.StatusOK))
		stored, err := service.GetByID(context.Background(), ev.EventID)
		Expect(err).NotTo(HaveOccurred())
		Expect(stored.Venue).To(Equal("Covered Court"))
	})

	It("deletes an event", func() {
		ev := createEvent("Seminar A")

		req := withEventParam(httptest.NewRequest(http.MethodDelete, "/events/"+ev.EventID, nil), ev.EventID)
		w := httptest.NewRecorder()

		handler.DeleteEvent(w, req)

		Expect(w.Code).To(Equal(http.StatusOK))
		_, err := service.GetByID(context.Background(), ev.EventID)
		Expect(err).To(MatchError(internal.ErrEventNotFound))
	})

	Describe("GetEventQRCode", func() {
		It("serves a PNG image", func() {
			ev := createEvent("Seminar A")

			req := withEventParam(httptest.NewRequest(http.MethodGet, "/events/"+ev.EventID+"/qrcode", nil), ev.EventID)
			w := httptest.NewRecorder()

			handler.GetEventQRCode(w, req)

			Expect(w.Code).To(Equal(http.StatusOK))
			Expect(w.Header().Get("Content-Type")).To(Equal("image/png"))
			Expect(bytes.HasPrefix(w.Body.Bytes(), []byte("\x89PNG"))).To(BeTrue())
		})

		It("validates the size parameter", func() {
			ev := createEvent("Seminar A")

			req := withEventParam(httptest.NewRequest(http.MethodGet, "/events/"+ev.EventID+"/qrcode?size=20000", nil), ev.EventID)
			w := httptest.NewRecorder()

			handler.GetEventQRCode(w, req)

			Expect(w.Code).To(Equal(http.StatusBadRequest))
		})
	})
})
