// Package main is the entrypoint for the heater monitor Lambda function.
//
// The function is triggered on a schedule (EventBridge) with an empty event,
// or manually with {"mode": "...", "overrides": {...}} for diagnostics.
//
// Cold Start (main):
//  1. Load configuration (SSM-backed secrets outside APP_ENV=local).
//  2. Initialize structured logger.
//  3. Load AWS SDK configuration (LocalStack endpoint when configured).
//  4. Assemble the Runner with the CloudWatch recorder.
//  5. Register handler and call lambda.Start.
//
// With APP_ENV=local the event is read from stdin instead:
//
//	echo '{"mode":"STATUS"}' | go run ./cmd/monitor
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"

	"heaterwatch/internal/app"
	"heaterwatch/internal/config"
	"heaterwatch/internal/monitor"
	"heaterwatch/internal/observability"
)

// Invoker runs one invocation. *monitor.Runner satisfies it.
type Invoker interface {
	Run(ctx context.Context, req monitor.Request) monitor.Result
}

// Handler adapts the Runner to the Lambda runtime.
type Handler struct {
	runner Invoker
	logger *slog.Logger
}

// Handle runs one invocation. Failures are reported in the Result, never as
// a Lambda error, so a scheduled run is not retried into duplicate alerts.
func (h *Handler) Handle(ctx context.Context, req monitor.Request) (monitor.Result, error) {
	res := h.runner.Run(ctx, req)
	if !res.OK() {
		h.logger.WarnContext(ctx, "invocation failed",
			"invocation_id", res.InvocationID,
			"status_code", res.StatusCode,
			"error_code", string(res.ErrorCode),
		)
	}
	return res, nil
}

func main() {
	if err := run(); err != nil {
		slog.Error("monitor failed", "error", err)
		os.Exit(1)
	}
}

func run() error {
	ctx := context.Background()

	region := os.Getenv("AWS_REGION")
	cfg, err := config.LoadConfig(config.NewSSMProvider(region))
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}

	logger := newLogger(cfg.LogLevel)
	logger.Info("heater monitor initializing (cold start)",
		"environment", cfg.Environment,
		"version", cfg.Build.Version,
		"commit", cfg.Build.Commit,
	)

	awsCfg, err := loadAWSConfig(ctx, cfg)
	if err != nil {
		return fmt.Errorf("loading AWS config: %w", err)
	}

	var recorder observability.Recorder = observability.NopRecorder{}
	if cfg.Observability.EnableMetrics {
		recorder = observability.NewCloudWatchRecorder(
			cloudwatch.NewFromConfig(awsCfg),
			cfg.Observability.MetricNamespace,
			logger.With("component", "metrics"),
		)
	}

	a, err := app.New(ctx, cfg, awsCfg, logger, app.Options{Recorder: recorder})
	if err != nil {
		return fmt.Errorf("assembling monitor: %w", err)
	}
	defer a.Close()

	h := &Handler{runner: a.Runner, logger: logger}

	if cfg.Environment == "local" {
		return runOnce(ctx, h, os.Stdin, os.Stdout)
	}

	lambda.Start(h.Handle)
	return nil
}

// runOnce reads a single event from in and writes the Result to out. An
// empty input runs a NORMAL invocation.
func runOnce(ctx context.Context, h *Handler, in io.Reader, out io.Writer) error {
	payload, err := io.ReadAll(in)
	if err != nil {
		return fmt.Errorf("reading event: %w", err)
	}

	var req monitor.Request
	if len(payload) > 0 {
		if err := json.Unmarshal(payload, &req); err != nil {
			return fmt.Errorf("decoding event: %w", err)
		}
	}

	res, _ := h.Handle(ctx, req)
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(res)
}

// loadAWSConfig loads the default AWS config for the configured region and
// points every client at AWS_ENDPOINT_URL when set (LocalStack).
func loadAWSConfig(ctx context.Context, cfg *config.Config) (aws.Config, error) {
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.AWS.Region),
	}
	if cfg.AWS.EndpointURL != "" {
		opts = append(opts, awsconfig.WithBaseEndpoint(cfg.AWS.EndpointURL))
	}
	return awsconfig.LoadDefaultConfig(ctx, opts...)
}

// newLogger creates a JSON slog.Logger for the given level.
func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl}))
}
