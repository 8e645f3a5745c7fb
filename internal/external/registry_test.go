package external

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"heaterwatch/internal/config"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func registryConfig(env string, testMode bool) *config.Config {
	return &config.Config{
		Environment: env,
		IsTestMode:  testMode,
		Weather: config.WeatherConfig{
			Timeout:    5 * time.Second,
			MaxRetries: 1,
			UserAgent:  "HeaterWatch/1.0",
		},
		Email: config.EmailConfig{ConfigSet: "heaterwatch"},
	}
}

func TestNewClientRegistry_Stubs(t *testing.T) {
	for _, tc := range []struct {
		env      string
		testMode bool
	}{
		{"local", false},
		{"prod", true},
	} {
		reg := NewClientRegistry(registryConfig(tc.env, tc.testMode), aws.Config{}, testLogger())

		assert.IsType(t, &StubEmailProvider{}, reg.Email)
		assert.IsType(t, &StubSMSProvider{}, reg.SMS)
		assert.NotNil(t, reg.Weather)
	}
}

func TestNewClientRegistry_Production(t *testing.T) {
	reg := NewClientRegistry(registryConfig("prod", false), aws.Config{Region: "us-east-1"}, nil)

	ses, ok := reg.Email.(*SESClient)
	require.True(t, ok, "Email = %T, want *SESClient", reg.Email)
	assert.Equal(t, "heaterwatch", ses.configSetName)
	assert.IsType(t, &SNSClient{}, reg.SMS)
	assert.Equal(t, 1, reg.Weather.retryPolicy.MaxRetries)
}

func TestStubProviders_RecordMessages(t *testing.T) {
	email := NewStubEmailProvider(testLogger())
	sms := NewStubSMSProvider(testLogger())

	id, err := email.Send(context.Background(), EmailMessage{To: []string{"a@example.com"}, Subject: "s"})
	require.NoError(t, err)
	assert.Equal(t, "msg_stub_1", id)

	id, err = sms.Publish(context.Background(), SMSMessage{TopicARN: "arn", Message: "m"})
	require.NoError(t, err)
	assert.Equal(t, "sms_stub_1", id)

	assert.Len(t, email.Sent(), 1)
	assert.Equal(t, "m", sms.Sent()[0].Message)
}
