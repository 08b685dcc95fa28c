package events

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Event is the contract for everything published on the bus: check-ins,
// provisioned accounts, issued certificates.
type Event interface {
	EventType() string
	EventID() string
	OccurredAt() time.Time
	Payload() interface{}
}

// BaseEvent carries the common envelope; domain events embed it and add
// their typed fields on top.
type BaseEvent struct {
	ID        string                 `json:"id"`
	Type      string                 `json:"type"`
	Timestamp time.Time              `json:"timestamp"`
	Data      map[string]interface{} `json:"data"`
}

func (e BaseEvent) EventType() string     { return e.Type }
func (e BaseEvent) EventID() string       { return e.ID }
func (e BaseEvent) OccurredAt() time.Time { return e.Timestamp }
func (e BaseEvent) Payload() interface{}  { return e.Data }

type Handler func(ctx context.Context, event Event) error

// EventBus is the in-process pub/sub that decouples attendance writes from
// their side effects. Subscribers for one event run sequentially in
// registration order; a failing subscriber is logged and does not block the
// ones after it, and never the publisher.
type EventBus struct {
	mu          sync.RWMutex
	subscribers map[string][]Handler
	logger      *slog.Logger
}

func NewEventBus(logger *slog.Logger) *EventBus {
	return &EventBus{
		subscribers: make(map[string][]Handler),
		logger:      logger,
	}
}

func (eb *EventBus) Subscribe(eventType string, handler Handler) {
	eb.mu.Lock()
	defer eb.mu.Unlock()

	eb.subscribers[eventType] = append(eb.subscribers[eventType], handler)
	eb.logger.Info("event subscriber registered",
		"event_type", eventType,
		"subscribers", len(eb.subscribers[eventType]))
}

// Publish hands the event to its subscribers and returns immediately. The
// error return exists for publisher-side failures only; subscriber errors
// surface in the log, not to the caller, so a check-in never fails because
// a certificate email did.
func (eb *EventBus) Publish(ctx context.Context, event Event) error {
	eb.mu.RLock()
	subscribers := eb.subscribers[event.EventType()]
	eb.mu.RUnlock()

	if len(subscribers) == 0 {
		eb.logger.Debug("event has no subscribers", "event_type", event.EventType())
		return nil
	}

	go eb.dispatch(ctx, event, subscribers)
	return nil
}

func (eb *EventBus) dispatch(ctx context.Context, event Event, subscribers []Handler) {
	eb.logger.Info("dispatching event",
		"event_type", event.EventType(),
		"event_id", event.EventID(),
		"subscribers", len(subscribers))

	for _, handler := range subscribers {
		if err := handler(ctx, event); err != nil {
			eb.logger.Error("event subscriber failed",
				"event_type", event.EventType(),
				"event_id", event.EventID(),
				"error", err)
		}
	}
}
