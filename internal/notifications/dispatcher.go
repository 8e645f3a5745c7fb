package notifications

import (
	"context"
	"errors"
	"log/slog"

	"heaterwatch/internal/external"
	"heaterwatch/internal/types"
)

// Message bundles the rendered content of one alert. Either channel may be
// nil, in which case it is not attempted.
type Message struct {
	Kind  types.AlertKind
	Email *Email
	SMS   *SMS
}

// Delivery is the outcome of one channel of one alert.
type Delivery struct {
	Kind      types.AlertKind `json:"kind"`
	Channel   types.Channel   `json:"channel"`
	MessageID string          `json:"message_id,omitempty"`
	Skipped   bool            `json:"skipped,omitempty"`
	Error     string          `json:"error,omitempty"`
}

// Failed reports whether the channel was attempted and failed.
func (d Delivery) Failed() bool {
	return d.Error != ""
}

// DispatcherConfig holds the addressing for both channels.
type DispatcherConfig struct {
	Sender     string
	Recipients []string
	// TopicARN is the SMS destination. Empty disables SMS.
	TopicARN string
	Logger   *slog.Logger
}

// Dispatcher sends rendered alerts over the mail channel and the optional
// SMS channel.
type Dispatcher struct {
	email      external.EmailProvider
	sms        external.SMSProvider
	sender     string
	recipients []string
	topicARN   string
	logger     *slog.Logger
}

// NewDispatcher creates a Dispatcher. sms may be nil when no SMS destination
// exists.
func NewDispatcher(email external.EmailProvider, sms external.SMSProvider, cfg DispatcherConfig) *Dispatcher {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Dispatcher{
		email:      email,
		sms:        sms,
		sender:     cfg.Sender,
		recipients: append([]string(nil), cfg.Recipients...),
		topicARN:   cfg.TopicARN,
		logger:     logger,
	}
}

// Recipients returns the configured mail recipients.
func (d *Dispatcher) Recipients() []string {
	return append([]string(nil), d.recipients...)
}

// SMSEnabled reports whether an SMS destination is configured.
func (d *Dispatcher) SMSEnabled() bool {
	return d.sms != nil && d.topicARN != ""
}

// SendMail delivers one plain-text email. Failures are returned as
// NotificationError wrapping the provider error.
func (d *Dispatcher) SendMail(ctx context.Context, subject, body string, recipients []string) (string, error) {
	if len(recipients) == 0 {
		return "", types.NewNotificationError("email has no recipients",
			types.NewAppError(types.ErrCodeValidationInvalidRecipients, "recipient list is empty", nil))
	}

	id, err := d.email.Send(ctx, external.EmailMessage{
		From:        d.sender,
		To:          recipients,
		Subject:     subject,
		BodyText:    body,
		ReferenceID: types.GetRequestID(ctx),
	})
	if err != nil {
		d.logger.ErrorContext(ctx, "email delivery failed",
			"subject", subject,
			"recipients", RedactAll(recipients),
			"error", err,
		)
		return "", types.NewNotificationError("email delivery failed", err)
	}

	d.logger.InfoContext(ctx, "email delivered",
		"subject", subject,
		"recipients", RedactAll(recipients),
		"message_id", id,
	)
	return id, nil
}

// SendSMS publishes one text message. When no SMS destination is configured
// it logs and returns an empty ID with no error.
func (d *Dispatcher) SendSMS(ctx context.Context, subject, message string) (string, error) {
	if !d.SMSEnabled() {
		d.logger.InfoContext(ctx, "sms destination not configured; skipping sms", "subject", subject)
		return "", nil
	}

	id, err := d.sms.Publish(ctx, external.SMSMessage{
		TopicARN: d.topicARN,
		Subject:  subject,
		Message:  message,
	})
	if err != nil {
		d.logger.ErrorContext(ctx, "sms delivery failed", "subject", subject, "error", err)
		return "", types.NewNotificationError("sms delivery failed", err)
	}

	d.logger.InfoContext(ctx, "sms delivered", "subject", subject, "message_id", id)
	return id, nil
}

// Deliver sends every channel present in m, email first. A failed email does
// not prevent the SMS attempt. The returned error joins every channel failure.
func (d *Dispatcher) Deliver(ctx context.Context, m Message) ([]Delivery, error) {
	var deliveries []Delivery
	var errs []error

	if m.Email != nil {
		dl := Delivery{Kind: m.Kind, Channel: types.ChannelEmail}
		id, err := d.SendMail(ctx, m.Email.Subject, m.Email.Body, d.recipients)
		if err != nil {
			dl.Error = err.Error()
			errs = append(errs, err)
		}
		dl.MessageID = id
		deliveries = append(deliveries, dl)
	}

	if m.SMS != nil {
		dl := Delivery{Kind: m.Kind, Channel: types.ChannelSMS}
		if !d.SMSEnabled() {
			dl.Skipped = true
		}
		id, err := d.SendSMS(ctx, m.SMS.Subject, m.SMS.Message)
		if err != nil {
			dl.Error = err.Error()
			errs = append(errs, err)
		}
		dl.MessageID = id
		deliveries = append(deliveries, dl)
	}

	return deliveries, errors.Join(errs...)
}
