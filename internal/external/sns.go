package external

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	snstypes "github.com/aws/aws-sdk-go-v2/service/sns/types"

	"heaterwatch/internal/types"
)

// SNSAPI is the subset of the SNS client used by SNSClient.
type SNSAPI interface {
	Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

// SNSClient implements SMSProvider by publishing to an SNS topic whose
// subscriptions are phone numbers.
type SNSClient struct {
	api    SNSAPI
	logger *slog.Logger
}

// NewSNSClient creates an SNSClient from an AWS config.
func NewSNSClient(awsCfg aws.Config, logger *slog.Logger) *SNSClient {
	return NewSNSClientWithAPI(sns.NewFromConfig(awsCfg), logger)
}

// NewSNSClientWithAPI creates an SNSClient over an existing SNSAPI.
func NewSNSClientWithAPI(api SNSAPI, logger *slog.Logger) *SNSClient {
	if logger == nil {
		logger = slog.Default()
	}
	return &SNSClient{api: api, logger: logger}
}

// Publish sends msg to its topic.
func (c *SNSClient) Publish(ctx context.Context, msg SMSMessage) (string, error) {
	if msg.TopicARN == "" {
		return "", types.NewAppError(types.ErrCodeValidationMissingField, "SNS topic ARN is required", nil)
	}

	input := &sns.PublishInput{
		TopicArn: aws.String(msg.TopicARN),
		Message:  aws.String(msg.Message),
	}
	if msg.Subject != "" {
		input.Subject = aws.String(msg.Subject)
	}

	out, err := c.api.Publish(ctx, input)
	if err != nil {
		return "", mapSNSError(err)
	}

	msgID := aws.ToString(out.MessageId)
	c.logger.InfoContext(ctx, "sms published",
		"provider", "sns",
		"message_id", msgID,
	)
	return msgID, nil
}

func mapSNSError(err error) error {
	var throttled *snstypes.ThrottledException
	if errors.As(err, &throttled) {
		return types.NewAppError(types.ErrCodeUpstreamRateLimited, fmt.Sprintf("SNS throttled: %v", err), err)
	}

	var notFound *snstypes.NotFoundException
	if errors.As(err, &notFound) {
		return types.NewAppError(types.ErrCodeUpstreamSMSProvider, fmt.Sprintf("SNS topic not found: %v", err), err)
	}

	return types.NewAppError(types.ErrCodeUpstreamSMSProvider, fmt.Sprintf("SNS error: %v", err), err)
}

var _ SMSProvider = (*SNSClient)(nil)
