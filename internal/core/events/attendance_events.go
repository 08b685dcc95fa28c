package events

import (
	"time"

	"github.com/google/uuid"
)

const (
	EventTypeAttendanceCheckedIn = "attendance.checked_in"
	EventTypeAccountProvisioned  = "account_request.provisioned"
	EventTypeCertificateIssued   = "certificate.issued"
)

// AttendanceCheckedInEvent fires on the first time-in of a user for an event.
// Subscribers generate and email the attendance certificate.
type AttendanceCheckedInEvent struct {
	BaseEvent
	EventRefID string    `json:"event_ref_id"`
	UserID     string    `json:"user_id"`
	TimeIn     time.Time `json:"time_in"`
}

func NewAttendanceCheckedInEvent(eventRefID, userID string, timeIn time.Time) *AttendanceCheckedInEvent {
	return &AttendanceCheckedInEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      EventTypeAttendanceCheckedIn,
			Timestamp: time.Now(),
			Data: map[string]interface{}{
				"event_ref_id": eventRefID,
				"user_id":      userID,
				"time_in":      timeIn,
			},
		},
		EventRefID: eventRefID,
		UserID:     userID,
		TimeIn:     timeIn,
	}
}

// AccountProvisionedEvent fires after an approved account request has been
// turned into a live user account.
type AccountProvisionedEvent struct {
	BaseEvent
	RequestID string `json:"request_id"`
	UserID    string `json:"user_id"`
	Email     string `json:"email"`
}

func NewAccountProvisionedEvent(requestID, userID, email string) *AccountProvisionedEvent {
	return &AccountProvisionedEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      EventTypeAccountProvisioned,
			Timestamp: time.Now(),
			Data: map[string]interface{}{
				"request_id": requestID,
				"user_id":    userID,
				"email":      email,
			},
		},
		RequestID: requestID,
		UserID:    userID,
		Email:     email,
	}
}

type CertificateIssuedEvent struct {
	BaseEvent
	CertificateID string `json:"certificate_id"`
	EventRefID    string `json:"event_ref_id"`
	UserID        string `json:"user_id"`
}

func NewCertificateIssuedEvent(certificateID, eventRefID, userID string) *CertificateIssuedEvent {
	return &CertificateIssuedEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      EventTypeCertificateIssued,
			Timestamp: time.Now(),
			Data: map[string]interface{}{
				"certificate_id": certificateID,
				"event_ref_id":   eventRefID,
				"user_id":        userID,
			},
		},
		CertificateID: certificateID,
		EventRefID:    eventRefID,
		UserID:        userID,
	}
}
