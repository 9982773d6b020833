package notify

import (
	"strings"

	"go.uber.org/zap"

	appErrors "github.com/unilab/lab-reservation-api/pkg/errors"
)

// Sender delivers a notification message to a single recipient.
type Sender interface {
	Send(recipient, message string) error
	Channel() string
}

// EmailSender records outgoing email notifications in the log. A real
// SMTP integration would slot in behind the same interface.
type EmailSender struct {
	logger *zap.Logger
}

// NewEmailSender constructs an email sender.
func NewEmailSender(logger *zap.Logger) *EmailSender {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EmailSender{logger: logger}
}

// Send logs the email notification.
func (s *EmailSender) Send(recipient, message string) error {
	s.logger.Info("sending email notification",
		zap.String("recipient", recipient),
		zap.String("message", message))
	return nil
}

// Channel returns the canonical channel name.
func (s *EmailSender) Channel() string { return "EMAIL" }

// SMSSender records outgoing SMS notifications in the log.
type SMSSender struct {
	logger *zap.Logger
}

// NewSMSSender constructs an SMS sender.
func NewSMSSender(logger *zap.Logger) *SMSSender {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SMSSender{logger: logger}
}

// Send logs the SMS notification.
func (s *SMSSender) Send(recipient, message string) error {
	s.logger.Info("sending sms notification",
		zap.String("recipient", recipient),
		zap.String("message", message))
	return nil
}

// Channel returns the canonical channel name.
func (s *SMSSender) Channel() string { return "SMS" }

// SenderFactory resolves channel names to senders. Lookup is
// case-insensitive, so "email", "Email" and "EMAIL" are equivalent.
type SenderFactory struct {
	senders map[string]Sender
}

// NewSenderFactory constructs a factory with the given senders registered
// under their canonical channel names.
func NewSenderFactory(senders ...Sender) *SenderFactory {
	factory := &SenderFactory{senders: make(map[string]Sender, len(senders))}
	for _, sender := range senders {
		factory.senders[strings.ToUpper(sender.Channel())] = sender
	}
	return factory
}

// Resolve returns the sender for a channel name.
func (f *SenderFactory) Resolve(channel string) (Sender, error) {
	sender, ok := f.senders[strings.ToUpper(strings.TrimSpace(channel))]
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown notification channel: "+channel)
	}
	return sender, nil
}
