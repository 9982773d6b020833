package notify

import (
	"time"

	"go.uber.org/zap"

	"github.com/unilab/lab-reservation-api/internal/models"
)

// Publisher fans reservation events out to registered observers
// synchronously, in registration order. A failing observer never
// interrupts the others and never fails the triggering operation.
type Publisher struct {
	observers []Observer
	logger    *zap.Logger
}

// NewPublisher constructs a publisher with no observers registered.
func NewPublisher(logger *zap.Logger) *Publisher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Publisher{logger: logger}
}

// Subscribe registers an observer. Not safe for concurrent use with
// Publish; register everything during startup.
func (p *Publisher) Subscribe(observer Observer) {
	if observer == nil {
		return
	}
	p.observers = append(p.observers, observer)
}

// Publish delivers the event to every observer in registration order.
func (p *Publisher) Publish(eventType EventType, reservation *models.Reservation) {
	event := Event{
		Type:        eventType,
		Reservation: reservation,
		OccurredAt:  time.Now().UTC(),
	}
	for _, observer := range p.observers {
		p.deliver(observer, event)
	}
}

func (p *Publisher) deliver(observer Observer, event Event) {
	defer func() {
		if r := recover(); r != nil {
			p.logger.Error("reservation observer panicked",
				zap.String("event_type", string(event.Type)),
				zap.Any("panic", r))
		}
	}()
	observer.Notify(event)
}
