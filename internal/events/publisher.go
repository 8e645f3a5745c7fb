// Package events publishes committed mode transitions for downstream
// consumers.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	sqstypes "github.com/aws/aws-sdk-go-v2/service/sqs/types"

	"heaterwatch/internal/types"
)

// EventTypeTransition is the event_type attribute of transition messages.
const EventTypeTransition = "heater_mode_transition"

// TransitionEvent describes one committed mode change. From is the previous
// mode or UNINITIALIZED.
type TransitionEvent struct {
	EventID      string     `json:"event_id"`
	InvocationID string     `json:"invocation_id,omitempty"`
	From         string     `json:"from"`
	To           types.Mode `json:"to"`
	OccurredAt   time.Time  `json:"occurred_at"`
	Site         string     `json:"site,omitempty"`
}

// Publisher sends transition events. Callers treat a publish error as
// non-fatal.
type Publisher interface {
	PublishTransition(ctx context.Context, ev TransitionEvent) error
}

// SQSSender abstracts the SQS SendMessage operation for testability.
// Production code uses the *sqs.Client from aws-sdk-go-v2.
type SQSSender interface {
	SendMessage(ctx context.Context, params *sqs.SendMessageInput, optFns ...func(*sqs.Options)) (*sqs.SendMessageOutput, error)
}

// SQSPublisher publishes TransitionEvents as JSON messages on an SQS queue.
type SQSPublisher struct {
	client   SQSSender
	queueURL string
	logger   *slog.Logger
}

// NewSQSPublisher creates a publisher targeting queueURL.
func NewSQSPublisher(client SQSSender, queueURL string, logger *slog.Logger) *SQSPublisher {
	if logger == nil {
		logger = slog.Default()
	}
	return &SQSPublisher{
		client:   client,
		queueURL: queueURL,
		logger:   logger,
	}
}

// PublishTransition serializes ev and sends it with an event_type message
// attribute.
func (p *SQSPublisher) PublishTransition(ctx context.Context, ev TransitionEvent) error {
	body, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("transition publisher: failed to marshal event: %w", err)
	}

	input := &sqs.SendMessageInput{
		QueueUrl:    aws.String(p.queueURL),
		MessageBody: aws.String(string(body)),
		MessageAttributes: map[string]sqstypes.MessageAttributeValue{
			"event_type": {
				DataType:    aws.String("String"),
				StringValue: aws.String(EventTypeTransition),
			},
		},
	}

	out, err := p.client.SendMessage(ctx, input)
	if err != nil {
		return fmt.Errorf("transition publisher: failed to send message to %s: %w", p.queueURL, err)
	}

	p.logger.InfoContext(ctx, "transition event published",
		"event_id", ev.EventID,
		"from", ev.From,
		"to", string(ev.To),
		"sqs_message_id", aws.ToString(out.MessageId),
	)
	return nil
}

// NopPublisher drops every event. Used when no queue is configured.
type NopPublisher struct{}

func (NopPublisher) PublishTransition(context.Context, TransitionEvent) error { return nil }

var (
	_ Publisher = (*SQSPublisher)(nil)
	_ Publisher = NopPublisher{}
)
