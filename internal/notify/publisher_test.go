package notify

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/unilab/lab-reservation-api/internal/models"
)

type recordingObserver struct {
	events []Event
}

func (o *recordingObserver) Notify(event Event) {
	o.events = append(o.events, event)
}

type panickingObserver struct{}

func (o *panickingObserver) Notify(Event) {
	panic("observer exploded")
}

func TestPublisherDeliversInRegistrationOrder(t *testing.T) {
	publisher := NewPublisher(nil)
	first := &recordingObserver{}
	second := &recordingObserver{}
	publisher.Subscribe(first)
	publisher.Subscribe(second)

	reservation := &models.Reservation{ID: "res-1", Username: "alice"}
	publisher.Publish(EventCreated, reservation)

	require.Len(t, first.events, 1)
	require.Len(t, second.events, 1)
	require.Equal(t, EventCreated, first.events[0].Type)
	require.Same(t, reservation, first.events[0].Reservation)
	require.False(t, first.events[0].OccurredAt.IsZero())
}

func TestPublisherSurvivesPanickingObserver(t *testing.T) {
	publisher := NewPublisher(nil)
	last := &recordingObserver{}
	publisher.Subscribe(&panickingObserver{})
	publisher.Subscribe(last)

	require.NotPanics(t, func() {
		publisher.Publish(EventApproved, &models.Reservation{ID: "res-1"})
	})
	require.Len(t, last.events, 1)
	require.Equal(t, EventApproved, last.events[0].Type)
}

func TestPublisherIgnoresNilObserver(t *testing.T) {
	publisher := NewPublisher(nil)
	publisher.Subscribe(nil)
	require.NotPanics(t, func() {
		publisher.Publish(EventUpdated, &models.Reservation{ID: "res-1"})
	})
}
