package notify

import (
	"go.uber.org/zap"
)

var eventMessages = map[EventType]string{
	EventCreated:   "Your reservation has been created successfully",
	EventUpdated:   "Your reservation has been updated",
	EventCancelled: "Your reservation has been cancelled",
	EventApproved:  "Your reservation has been approved",
}

type deliveryRecorder interface {
	RecordNotification(channel string)
}

// NotificationObserver turns reservation events into user notifications
// over a single configured channel.
type NotificationObserver struct {
	sender  Sender
	metrics deliveryRecorder
	logger  *zap.Logger
}

// NotificationObserverOption configures the observer.
type NotificationObserverOption func(*NotificationObserver)

// WithDeliveryRecorder wires a metrics recorder counting dispatched
// notifications per channel.
func WithDeliveryRecorder(recorder deliveryRecorder) NotificationObserverOption {
	return func(o *NotificationObserver) {
		if recorder != nil {
			o.metrics = recorder
		}
	}
}

// NewNotificationObserver constructs the observer.
func NewNotificationObserver(sender Sender, logger *zap.Logger, opts ...NotificationObserverOption) *NotificationObserver {
	if logger == nil {
		logger = zap.NewNop()
	}
	observer := &NotificationObserver{sender: sender, logger: logger}
	for _, opt := range opts {
		if opt != nil {
			opt(observer)
		}
	}
	return observer
}

// Notify sends the message matching the event type to the reservation
// owner. Unknown event types are dropped.
func (o *NotificationObserver) Notify(event Event) {
	message, ok := eventMessages[event.Type]
	if !ok {
		o.logger.Warn("no notification message for event type",
			zap.String("event_type", string(event.Type)))
		return
	}
	if event.Reservation == nil {
		return
	}
	if o.metrics != nil {
		o.metrics.RecordNotification(o.sender.Channel())
	}
	if err := o.sender.Send(event.Reservation.Username, message); err != nil {
		o.logger.Error("failed to send reservation notification",
			zap.String("event_type", string(event.Type)),
			zap.String("reservation_id", event.Reservation.ID),
			zap.Error(err))
	}
}
