package certificate

import (
	"time"
)

// Certificate is the record of an attendance certificate issued to one user
// for one event. The PDF itself is generated on demand from this record.
type Certificate struct {
	ID        string    `json:"id" gorm:"column:id;primaryKey"`
	EventID   string    `json:"event_id" gorm:"column:event_id;not null;uniqueIndex:idx_certificates_event_user"`
	UserID    string    `json:"user_id" gorm:"column:user_id;not null;uniqueIndex:idx_certificates_event_user"`
	SerialNo  string    `json:"serial_no" gorm:"column:serial_no;uniqueIndex"`
	IssuedAt  time.Time `json:"issued_at" gorm:"column:issued_at;not null"`
	CreatedAt time.Time `json:"created_at" gorm:"column:created_at;autoCreateTime"`
}

func (Certificate) TableName() string {
	return "certificates"
}
