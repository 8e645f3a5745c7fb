package external

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
)

// StubEmailProvider implements EmailProvider by logging the message instead
// of sending it. Used when IS_TEST_MODE is set or APP_ENV=local.
type StubEmailProvider struct {
	logger *slog.Logger

	mu   sync.Mutex
	sent []EmailMessage
}

// NewStubEmailProvider creates a new StubEmailProvider.
func NewStubEmailProvider(logger *slog.Logger) *StubEmailProvider {
	return &StubEmailProvider{logger: logger}
}

func (s *StubEmailProvider) Send(ctx context.Context, msg EmailMessage) (string, error) {
	s.mu.Lock()
	s.sent = append(s.sent, msg)
	n := len(s.sent)
	s.mu.Unlock()

	s.logger.InfoContext(ctx, "stub: Send email called",
		"recipient_count", len(msg.To),
		"subject", msg.Subject,
		"body", msg.BodyText,
	)
	return fmt.Sprintf("msg_stub_%d", n), nil
}

// Sent returns a copy of every message passed to Send.
func (s *StubEmailProvider) Sent() []EmailMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]EmailMessage(nil), s.sent...)
}

// StubSMSProvider implements SMSProvider by logging the message.
type StubSMSProvider struct {
	logger *slog.Logger

	mu   sync.Mutex
	sent []SMSMessage
}

// NewStubSMSProvider creates a new StubSMSProvider.
func NewStubSMSProvider(logger *slog.Logger) *StubSMSProvider {
	return &StubSMSProvider{logger: logger}
}

func (s *StubSMSProvider) Publish(ctx context.Context, msg SMSMessage) (string, error) {
	s.mu.Lock()
	s.sent = append(s.sent, msg)
	n := len(s.sent)
	s.mu.Unlock()

	s.logger.InfoContext(ctx, "stub: Publish sms called",
		"topic_arn", msg.TopicARN,
		"subject", msg.Subject,
		"message", msg.Message,
	)
	return fmt.Sprintf("sms_stub_%d", n), nil
}

// Sent returns a copy of every message passed to Publish.
func (s *StubSMSProvider) Sent() []SMSMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]SMSMessage(nil), s.sent...)
}

var _ EmailProvider = (*StubEmailProvider)(nil)
var _ SMSProvider = (*StubSMSProvider)(nil)
