package notify

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/unilab/lab-reservation-api/internal/models"
)

func TestSenderFactoryResolvesCaseInsensitive(t *testing.T) {
	factory := NewSenderFactory(NewEmailSender(zap.NewNop()), NewSMSSender(zap.NewNop()))

	for _, channel := range []string{"EMAIL", "email", "Email", " email "} {
		sender, err := factory.Resolve(channel)
		require.NoError(t, err, channel)
		require.Equal(t, "EMAIL", sender.Channel())
	}

	sender, err := factory.Resolve("sms")
	require.NoError(t, err)
	require.Equal(t, "SMS", sender.Channel())
}

func TestSenderFactoryUnknownChannel(t *testing.T) {
	factory := NewSenderFactory(NewEmailSender(zap.NewNop()))

	_, err := factory.Resolve("pigeon")
	require.Error(t, err)
	require.Contains(t, err.Error(), "pigeon")
}

type failingSender struct{}

func (failingSender) Send(string, string) error { return errors.New("smtp down") }
func (failingSender) Channel() string           { return "EMAIL" }

type capturingSender struct {
	recipient string
	message   string
	calls     int
}

func (s *capturingSender) Send(recipient, message string) error {
	s.recipient = recipient
	s.message = message
	s.calls++
	return nil
}

func (s *capturingSender) Channel() string { return "EMAIL" }

func TestNotificationObserverMessages(t *testing.T) {
	cases := []struct {
		eventType EventType
		message   string
	}{
		{EventCreated, "Your reservation has been created successfully"},
		{EventUpdated, "Your reservation has been updated"},
		{EventCancelled, "Your reservation has been cancelled"},
		{EventApproved, "Your reservation has been approved"},
	}
	for _, tc := range cases {
		sender := &capturingSender{}
		observer := NewNotificationObserver(sender, zap.NewNop())
		observer.Notify(Event{
			Type:        tc.eventType,
			Reservation: &models.Reservation{ID: "res-1", Username: "alice"},
		})
		require.Equal(t, 1, sender.calls, string(tc.eventType))
		require.Equal(t, "alice", sender.recipient)
		require.Equal(t, tc.message, sender.message)
	}
}

func TestNotificationObserverDropsUnknownEvent(t *testing.T) {
	sender := &capturingSender{}
	observer := NewNotificationObserver(sender, zap.NewNop())
	observer.Notify(Event{Type: EventType("SOMETHING_ELSE"), Reservation: &models.Reservation{ID: "res-1"}})
	require.Zero(t, sender.calls)
}

func TestNotificationObserverSwallowsSendFailure(t *testing.T) {
	observer := NewNotificationObserver(failingSender{}, zap.NewNop())
	require.NotPanics(t, func() {
		observer.Notify(Event{Type: EventCreated, Reservation: &models.Reservation{ID: "res-1", Username: "bob"}})
	})
}

type channelRecorder struct {
	channels []string
}

func (r *channelRecorder) RecordNotification(channel string) {
	r.channels = append(r.channels, channel)
}

func TestNotificationObserverCountsDispatches(t *testing.T) {
	recorder := &channelRecorder{}
	observer := NewNotificationObserver(&capturingSender{}, zap.NewNop(), WithDeliveryRecorder(recorder))

	observer.Notify(Event{Type: EventCreated, Reservation: &models.Reservation{ID: "res-1", Username: "alice"}})
	require.Equal(t, []string{"EMAIL"}, recorder.channels)

	// Unknown events are dropped before dispatch and are not counted.
	observer.Notify(Event{Type: EventType("SOMETHING_ELSE"), Reservation: &models.Reservation{ID: "res-1"}})
	require.Len(t, recorder.channels, 1)
}

func TestNotificationObserverCountsFailedDispatches(t *testing.T) {
	recorder := &channelRecorder{}
	observer := NewNotificationObserver(failingSender{}, zap.NewNop(), WithDeliveryRecorder(recorder))

	observer.Notify(Event{Type: EventApproved, Reservation: &models.Reservation{ID: "res-1", Username: "bob"}})
	require.Equal(t, []string{"EMAIL"}, recorder.channels)
}
