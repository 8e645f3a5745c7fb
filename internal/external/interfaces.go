package external

import "context"

// EmailMessage is a fully rendered plain-text email.
type EmailMessage struct {
	From     string
	To       []string
	Subject  string
	BodyText string
	// ReferenceID tags the message for correlation with the invocation log.
	ReferenceID string
}

// EmailProvider delivers rendered email (AWS SES in production).
type EmailProvider interface {
	// Send returns the provider's message ID.
	Send(ctx context.Context, msg EmailMessage) (providerMsgID string, err error)
}

// SMSMessage is a rendered text message published to a topic.
type SMSMessage struct {
	TopicARN string
	Subject  string
	Message  string
}

// SMSProvider delivers SMS through a pub/sub topic (AWS SNS in production).
type SMSProvider interface {
	Publish(ctx context.Context, msg SMSMessage) (providerMsgID string, err error)
}
