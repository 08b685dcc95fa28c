package rest

import (
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"

	"github.com/rbcalderon/attendance-management/internal/accountrequest"
	"github.com/rbcalderon/attendance-management/internal/attendance"
	"github.com/rbcalderon/attendance-management/internal/auth"
	"github.com/rbcalderon/attendance-management/internal/certificate"
	"github.com/rbcalderon/attendance-management/internal/department"
	"github.com/rbcalderon/attendance-management/internal/event"
	"github.com/rbcalderon/attendance-management/internal/excuseletter"
	"github.com/rbcalderon/attendance-management/internal/identity"
	"github.com/rbcalderon/attendance-management/internal/transport/middleware"
	"github.com/rbcalderon/attendance-management/internal/transport/swagger"
	"github.com/rbcalderon/attendance-management/internal/user"
)

// Handlers bundles every HTTP handler the router mounts.
type Handlers struct {
	Auth           *auth.Handler
	AccountRequest *accountrequest.Handler
	User           *user.Handler
	Department     *department.Handler
	Event          *event.Handler
	Attendance     *attendance.Handler
	Certificate    *certificate.Handler
	ExcuseLetter   *excuseletter.Handler
}

// RegisterAllRoutes mounts the full API under /api/v1. Account request
// submission, login and health are public; everything else requires a bearer
// token, with review and management routes gated to admins.
func RegisterAllRoutes(router *chi.Mux, db *sql.DB, handlers Handlers, authService *auth.Service, allowedOrigins string, logger *slog.Logger) {
	healthHandler := NewHealthHandler(db)

	router.Use(middleware.CORS(allowedOrigins))
	router.Use(middleware.RequestID)
	router.Use(middleware.RecoveryMiddleware(logger))
	router.Use(middleware.LoggingMiddleware(logger))

	router.Get("/openapi.yml", func(w http.ResponseWriter, r *http.Request) {
		http.ServeFile(w, r, "./api/openapi.yml")
	})
	router.Handle("/swagger/*", swagger.Handler())

	authenticate := middleware.Authenticate(authService)
	adminOnly := middleware.RequireRole(identity.RoleAdmin)

	router.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", healthHandler.healthCheckHandler)
		r.Get("/ping", healthHandler.pingHandler)

		r.Route("/auth", func(sr chi.Router) {
			sr.Post("/login", handlers.Auth.Login)
			sr.Post("/refresh", handlers.Auth.RefreshToken)
			sr.Get("/me", handlers.Auth.Me)
		})

		r.Route("/account-requests", func(ar chi.Router) {
			// Submission is public: applicants have no account yet.
			ar.Post("/create", handlers.AccountRequest.CreateRequest)

			ar.Group(func(pr chi.Router) {
				pr.Use(authenticate)
				pr.Use(adminOnly)
				pr.Get("/all", handlers.AccountRequest.GetAllRequests)
				pr.Get("/pending", handlers.AccountRequest.GetPendingRequests)
				pr.Put("/review", handlers.AccountRequest.ReviewRequest)
				pr.Post("/send-pending-reminder", handlers.AccountRequest.SendPendingReminder)
				pr.Get("/{requestId}", handlers.AccountRequest.GetRequest)
			})
		})

		r.Group(func(pr chi.Router) {
			pr.Use(authenticate)

			pr.Get("/users/me", handlers.User.GetCurrentUser)
			pr.Get("/departments", handlers.Department.GetDepartments)
			pr.Get("/departments/{id}", handlers.Department.GetDepartment)

			pr.Route("/events", func(er chi.Router) {
				er.Get("/", handlers.Event.GetEvents)
				er.Get("/{eventId}", handlers.Event.GetEvent)
				er.Get("/{eventId}/qrcode", handlers.Event.GetEventQRCode)

				er.Group(func(mr chi.Router) {
					mr.Use(adminOnly)
					mr.Post("/", handlers.Event.CreateEvent)
					mr.Put("/{eventId}", handlers.Event.UpdateEvent)
					mr.Delete("/{eventId}", handlers.Event.DeleteEvent)
					mr.Get("/{eventId}/attendance", handlers.Attendance.GetEventAttendance)
					mr.Get("/{eventId}/certificates", handlers.Certificate.GetEventCertificates)
					mr.Post("/{eventId}/certificates/{userId}/resend", handlers.Certificate.ResendCertificate)
				})
			})

			pr.Route("/attendance", func(ar chi.Router) {
				ar.Post("/check-in", handlers.Attendance.CheckIn)
				ar.Post("/check-out", handlers.Attendance.CheckOut)
				ar.Get("/me", handlers.Attendance.GetMyAttendance)

				ar.Group(func(mr chi.Router) {
					mr.Use(adminOnly)
					mr.Get("/users/{userId}", handlers.Attendance.GetUserAttendance)
				})
			})

			pr.Route("/certificates", func(cr chi.Router) {
				cr.Get("/me", handlers.Certificate.GetMyCertificates)
				cr.Get("/{certificateId}", handlers.Certificate.GetCertificate)
				cr.Get("/{certificateId}/download", handlers.Certificate.DownloadCertificate)
			})

			pr.Route("/excuse-letters", func(lr chi.Router) {
				lr.Post("/", handlers.ExcuseLetter.SubmitLetter)
				lr.Get("/me", handlers.ExcuseLetter.ListMyLetters)

				lr.Group(func(mr chi.Router) {
					mr.Use(adminOnly)
					mr.Get("/", handlers.ExcuseLetter.ListLetters)
					mr.Put("/{letterId}/review", handlers.ExcuseLetter.ReviewLetter)
				})

				lr.Get("/{letterId}", handlers.ExcuseLetter.GetLetter)
			})

			pr.Group(func(mr chi.Router) {
				mr.Use(adminOnly)

				mr.Route("/users", func(ur chi.Router) {
					ur.Get("/", handlers.User.GetUsers)
					ur.Get("/{userId}", handlers.User.GetUser)
					ur.Get("/school/{schoolId}", handlers.User.GetUserBySchoolID)
					ur.Put("/{userId}/profile", handlers.User.UpdateProfile)
					ur.Put("/{userId}/role", handlers.User.UpdateRole)
					ur.Put("/{userId}/department", handlers.User.UpdateDepartment)
					ur.Delete("/{userId}", handlers.User.DeleteUser)
				})

				mr.Post("/departments", handlers.Department.CreateDepartment)
			})
		})
	})
}
