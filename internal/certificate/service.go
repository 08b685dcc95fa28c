package certificate

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/rbcalderon/attendance-management/internal"
	"github.com/rbcalderon/attendance-management/internal/core/events"
	"github.com/rbcalderon/attendance-management/internal/event"
	"github.com/rbcalderon/attendance-management/internal/mail"
	"github.com/rbcalderon/attendance-management/internal/user"
)

type RepositoryAPI interface {
	// CreateIfAbsent inserts the certificate unless one already exists for
	// the same (event, user) pair, and reports whether the insert happened.
	CreateIfAbsent(cert *Certificate) (bool, error)
	GetByID(id string) (*Certificate, error)
	GetByEventAndUser(eventID, userID string) (*Certificate, error)
	ListByEvent(eventID string) ([]*Certificate, error)
	ListByUser(userID string) ([]*Certificate, error)
}

type UserGetterAPI interface {
	GetByID(userID string) (*user.User, error)
}

type EventGetterAPI interface {
	GetByID(ctx context.Context, eventID string) (*event.Event, error)
}

type EventPublisherAPI interface {
	Publish(ctx context.Context, event events.Event) error
}

type ServiceConfig struct {
	IssuerName    string
	SignatoryName string
	SignatoryRole string
}

type Service struct {
	repo     RepositoryAPI
	users    UserGetterAPI
	events   EventGetterAPI
	mailer   mail.SenderAPI
	eventBus EventPublisherAPI
	config   ServiceConfig
	logger   *slog.Logger
}

func NewService(
	repo RepositoryAPI,
	users UserGetterAPI,
	eventGetter EventGetterAPI,
	mailer mail.SenderAPI,
	eventBus EventPublisherAPI,
	config ServiceConfig,
	logger *slog.Logger,
) *Service {
	return &Service{
		repo:     repo,
		users:    users,
		events:   eventGetter,
		mailer:   mailer,
		eventBus: eventBus,
		config:   config,
		logger:   logger,
	}
}

// EnsureIssued returns the certificate for (event, user), creating the record
// on first call. Reissuing is idempotent: the stored serial never changes.
func (s *Service) EnsureIssued(ctx context.Context, eventID, userID string) (*Certificate, error) {
	cert := &Certificate{
		ID:       uuid.New().String(),
		EventID:  eventID,
		UserID:   userID,
		SerialNo: newSerial(),
		IssuedAt: time.Now().UTC(),
	}

	created, err := s.repo.CreateIfAbsent(cert)
	if err != nil {
		s.logger.Error("failed to store certificate", "error", err, "event_id", eventID, "user_id", userID)
		return nil, internal.NewInternalError("failed to store certificate", err)
	}
	if !created {
		existing, err := s.repo.GetByEventAndUser(eventID, userID)
		if err != nil || existing == nil {
			return nil, internal.NewInternalError("failed to load existing certificate", err)
		}
		return existing, nil
	}

	s.logger.Info("certificate issued", "certificate_id", cert.ID, "serial_no", cert.SerialNo)
	if err := s.eventBus.Publish(ctx, events.NewCertificateIssuedEvent(cert.ID, eventID, userID)); err != nil {
		s.logger.Error("failed to publish certificate event", "error", err, "certificate_id", cert.ID)
	}
	return cert, nil
}

// IssueAndSend issues (or re-fetches) the certificate, renders the PDF and
// emails it to the attendee. The caller decides whether a send failure is
// fatal; the certificate record is durable either way.
func (s *Service) IssueAndSend(ctx context.Context, eventID, userID string) (*Certificate, error) {
	cert, err := s.EnsureIssued(ctx, eventID, userID)
	if err != nil {
		return nil, err
	}

	u, ev, pdfBytes, err := s.render(ctx, cert)
	if err != nil {
		return cert, err
	}

	msg := certificateEmail(u, ev, cert, pdfBytes)
	if err := s.mailer.Send(msg); err != nil {
		s.logger.Error("failed to email certificate", "error", err, "certificate_id", cert.ID, "to", u.Email)
		return cert, internal.NewEmailError("failed to email certificate", err)
	}

	s.logger.Info("certificate emailed", "certificate_id", cert.ID, "to", u.Email)
	return cert, nil
}

// RenderPDF renders the PDF bytes for an already issued certificate.
func (s *Service) RenderPDF(ctx context.Context, certificateID string) ([]byte, error) {
	cert, err := s.GetByID(ctx, certificateID)
	if err != nil {
		return nil, err
	}
	_, _, pdfBytes, err := s.render(ctx, cert)
	return pdfBytes, err
}

func (s *Service) GetByID(ctx context.Context, certificateID string) (*Certificate, error) {
	cert, err := s.repo.GetByID(certificateID)
	if err != nil {
		return nil, internal.NewInternalError("failed to get certificate", err)
	}
	if cert == nil {
		return nil, internal.NewNotFoundError("certificate not found", internal.ErrCodeCertificateNotFound)
	}
	return cert, nil
}

func (s *Service) ListByEvent(ctx context.Context, eventID string) ([]*Certificate, error) {
	certs, err := s.repo.ListByEvent(eventID)
	if err != nil {
		return nil, internal.NewInternalError("failed to list certificates", err)
	}
	return certs, nil
}

func (s *Service) ListByUser(ctx context.Context, userID string) ([]*Certificate, error) {
	certs, err := s.repo.ListByUser(userID)
	if err != nil {
		return nil, internal.NewInternalError("failed to list certificates", err)
	}
	return certs, nil
}

func (s *Service) render(ctx context.Context, cert *Certificate) (*user.User, *event.Event, []byte, error) {
	u, err := s.users.GetByID(cert.UserID)
	if err != nil {
		return nil, nil, nil, err
	}
	ev, err := s.events.GetByID(ctx, cert.EventID)
	if err != nil {
		return nil, nil, nil, err
	}

	pdfBytes, err := GeneratePDF(PDFData{
		AttendeeName:  u.FullName(),
		EventTitle:    ev.Title,
		EventVenue:    ev.Venue,
		EventDate:     ev.StartTime,
		SerialNo:      cert.SerialNo,
		IssuedAt:      cert.IssuedAt,
		IssuerName:    s.config.IssuerName,
		SignatoryName: s.config.SignatoryName,
		SignatoryRole: s.config.SignatoryRole,
	})
	if err != nil {
		s.logger.Error("failed to render certificate pdf", "error", err, "certificate_id", cert.ID)
		return nil, nil, nil, internal.NewInternalError("failed to render certificate pdf", err)
	}
	return u, ev, pdfBytes, nil
}

func newSerial() string {
	raw := strings.ToUpper(strings.ReplaceAll(uuid.New().String(), "-", ""))
	return fmt.Sprintf("AC-%d-%s", time.Now().UTC().Year(), raw[:10])
}

func certificateEmail(u *user.User, ev *event.Event, cert *Certificate, pdfBytes []byte) mail.Message {
	return mail.Message{
		To:      u.Email,
		ToName:  u.FullName(),
		Subject: fmt.Sprintf("Your certificate of attendance: %s", ev.Title),
		HTMLBody: fmt.Sprintf(
			"<p>Hi %s,</p><p>Thank you for attending <strong>%s</strong>. Your certificate of attendance is attached.</p><p>Serial number: %s</p>",
			u.FirstName, ev.Title, cert.SerialNo),
		TextBody: fmt.Sprintf(
			"Hi %s,\n\nThank you for attending %s. Your certificate of attendance is attached.\n\nSerial number: %s\n",
			u.FirstName, ev.Title, cert.SerialNo),
		Attachments: []mail.Attachment{
			{
				Filename:    fmt.Sprintf("certificate-%s.pdf", cert.SerialNo),
				ContentType: "application/pdf",
				Content:     pdfBytes,
			},
		},
	}
}
