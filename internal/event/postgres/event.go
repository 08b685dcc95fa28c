package postgres

import (
	"errors"

	"gorm.io/gorm"

	"github.com/rbcalderon/attendance-management/internal/event"
)

// EventRepository implements event.RepositoryAPI using GORM
type EventRepository struct {
	db *gorm.DB
}

func NewEventRepository(db *gorm.DB) event.RepositoryAPI {
	return &EventRepository{db: db}
}

func (r *EventRepository) Create(e *event.Event) error {
	return r.db.Create(e).Error
}

func (r *EventRepository) GetByID(eventID string) (*event.Event, error) {
	var e event.Event
	err := r.db.Where("event_id = ?", eventID).First(&e).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &e, nil
}

func (r *EventRepository) ListOrdered() ([]*event.Event, error) {
	var events []*event.Event
	err := r.db.Order("start_time DESC").Find(&events).Error
	return events, err
}

func (r *EventRepository) Update(e *event.Event) error {
	return r.db.Save(e).Error
}

func (r *EventRepository) Delete(eventID string) error {
	return r.db.Where("event_id = ?", eventID).Delete(&event.Event{}).Error
}
