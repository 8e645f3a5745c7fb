// Package config defines the process configuration for heaterwatch.
// Configuration is loaded once at start (Lambda cold start or local runner
// boot) and treated as immutable afterwards.
//
// Values are resolved via a priority chain:
//
//	OS Environment (Highest) -> Dotenv File -> AWS SSM Parameter Store (Lowest)
//
// A missing required value or an invalid format fails startup.
package config

import (
	"time"
	_ "time/tzdata" // DISPLAY_TIMEZONE must resolve on minimal Lambda images

	"heaterwatch/internal/types"
)

// SecretString is an alias for types.SecretString so config callers do not
// need to import types for credential fields.
type SecretString = types.SecretString

// Config is the top-level configuration struct. Components receive only the
// section they need.
type Config struct {
	// System Metadata
	Environment string `envconfig:"APP_ENV" default:"prod" validate:"required,oneof=local dev staging prod"`
	Service     string `envconfig:"SERVICE_NAME" default:"heaterwatch"`
	LogLevel    string `envconfig:"LOG_LEVEL" default:"info" validate:"oneof=debug info warn error"`
	IsTestMode  bool   `envconfig:"IS_TEST_MODE" default:"false"`

	// CallTimeout bounds each collaborator call (state read/write, email, SMS).
	CallTimeout time.Duration `envconfig:"CALL_TIMEOUT" default:"10s" validate:"min=1s"`

	Server        ServerConfig
	Weather       WeatherConfig
	Thresholds    ThresholdConfig
	State         StateConfig
	Email         EmailConfig
	SMS           SMSConfig
	AWS           AWSConfig
	Display       DisplayConfig
	Observability ObservabilityConfig

	// Build Metadata (Injected via ldflags, not Env)
	Build BuildInfo
}

// ServerConfig holds the local runner's HTTP settings.
type ServerConfig struct {
	Port string `envconfig:"PORT" default:"8080"`
}

// WeatherConfig holds the forecast source location and credentials.
type WeatherConfig struct {
	APIKey     SecretString  `envconfig:"WEATHER_API_KEY" validate:"required"`
	Lat        float64       `envconfig:"LAT" default:"38.3736" validate:"latitude"`
	Lon        float64       `envconfig:"LON" default:"-96.6447" validate:"longitude"`
	BaseURL    string        `envconfig:"WEATHER_BASE_URL" default:"https://api.openweathermap.org/data/3.0/onecall" validate:"required,url"`
	Timeout    time.Duration `envconfig:"WEATHER_TIMEOUT" default:"10s"`
	MaxRetries int           `envconfig:"WEATHER_MAX_RETRIES" default:"1" validate:"min=0,max=5"`
	UserAgent  string        `envconfig:"WEATHER_USER_AGENT" default:"HeaterWatch/1.0"`
}

// ThresholdConfig holds the default evaluation parameters. Invocations may
// override them per request.
type ThresholdConfig struct {
	HoursAhead       int     `envconfig:"HOURS_AHEAD" default:"12" validate:"min=1,max=48"`
	FreezeThresholdF float64 `envconfig:"FREEZE_THRESHOLD_F" default:"32"`
	WarmClearDays    int     `envconfig:"WARM_CLEAR_DAYS" default:"2" validate:"min=1,max=8"`
	WarmThresholdF   float64 `envconfig:"WARM_THRESHOLD_F" default:"35"`
}

// Thresholds converts the configured values into the evaluation type.
func (c ThresholdConfig) Thresholds() types.Thresholds {
	return types.Thresholds{
		HoursAhead:       c.HoursAhead,
		FreezeThresholdF: c.FreezeThresholdF,
		WarmClearDays:    c.WarmClearDays,
		WarmThresholdF:   c.WarmThresholdF,
	}
}

// StateConfig selects and configures the mode record backend.
type StateConfig struct {
	Backend     string       `envconfig:"STATE_BACKEND" default:"dynamodb" validate:"oneof=dynamodb postgres memory"`
	TableName   string       `envconfig:"STATE_TABLE_NAME" validate:"required_if=Backend dynamodb"`
	RecordID    string       `envconfig:"STATE_RECORD_ID" default:"main" validate:"required"`
	DatabaseURL SecretString `envconfig:"DATABASE_URL" validate:"required_if=Backend postgres"`
}

// EmailConfig holds SES sender settings and the alert recipients.
type EmailConfig struct {
	Sender     string   `envconfig:"SES_SENDER" validate:"required"`
	Recipients []string `envconfig:"RECIPIENTS" validate:"required,min=1,dive,email"`
	ConfigSet  string   `envconfig:"SES_CONFIGURATION_SET"`
}

// SMSConfig holds the SNS destination. An empty topic disables SMS.
type SMSConfig struct {
	TopicARN string `envconfig:"SNS_TOPIC_ARN"`
}

// AWSConfig holds regional settings and optional resource identifiers.
type AWSConfig struct {
	Region string `envconfig:"AWS_REGION" default:"us-east-1"`

	// TransitionQueueURL receives a message after every committed mode change.
	// Optional.
	TransitionQueueURL string `envconfig:"TRANSITION_QUEUE_URL" validate:"omitempty,url"`

	// LocalStack Support (Empty in Prod)
	EndpointURL string `envconfig:"AWS_ENDPOINT_URL"`
}

// DisplayConfig controls how times and the site are presented in messages.
type DisplayConfig struct {
	Timezone string `envconfig:"DISPLAY_TIMEZONE" default:"America/Chicago" validate:"timezone"`
	SiteName string `envconfig:"SITE_NAME" default:"Elmdale"`
}

// ObservabilityConfig holds telemetry settings.
type ObservabilityConfig struct {
	MetricNamespace string `envconfig:"METRIC_NAMESPACE" default:"HeaterWatch"`
	EnableMetrics   bool   `envconfig:"ENABLE_METRICS" default:"true"`
}

// BuildInfo holds build-time metadata injected via ldflags.
type BuildInfo struct {
	Version   string
	Commit    string
	BuildTime string
}

// ConfigErrorType categorizes configuration loading failures.
type ConfigErrorType string

const (
	// ErrSSMResolution indicates a failure when fetching secrets from AWS SSM.
	ErrSSMResolution ConfigErrorType = "SSM_FAILURE"
	// ErrValidation indicates the configuration failed struct validation rules.
	ErrValidation ConfigErrorType = "VALIDATION_FAILED"
	// ErrParsing indicates an environment value could not be parsed into its
	// target type.
	ErrParsing ConfigErrorType = "PARSING_FAILED"
)

// UseStubs reports whether outbound email and SMS should be replaced by
// logging stubs.
func (c *Config) UseStubs() bool {
	return c.IsTestMode || c.Environment == localEnv
}
