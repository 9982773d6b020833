package notify

import (
	"time"

	"github.com/unilab/lab-reservation-api/internal/models"
)

// EventType enumerates reservation lifecycle events.
type EventType string

const (
	EventCreated   EventType = "CREATED"
	EventUpdated   EventType = "UPDATED"
	EventCancelled EventType = "CANCELLED"
	EventApproved  EventType = "APPROVED"
)

// Event carries a lifecycle change for a single reservation.
type Event struct {
	Type        EventType
	Reservation *models.Reservation
	OccurredAt  time.Time
}

// Observer receives reservation events. Implementations must tolerate
// being called for event types they do not care about.
type Observer interface {
	Notify(event Event)
}
