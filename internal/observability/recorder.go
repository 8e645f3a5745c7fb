// Package observability records run-level metrics. Lambda deployments emit
// CloudWatch metrics; the local runner exposes Prometheus series.
package observability

import (
	"context"
	"time"

	"heaterwatch/internal/types"
)

// Recorder receives the metrics a single invocation produces. Implementations
// must never fail the caller; emission errors are logged and dropped.
type Recorder interface {
	RecordClassification(ctx context.Context, mode types.Mode)
	// RecordTransition records a committed mode change. from is the previous
	// mode or types.StateUninitialized.
	RecordTransition(ctx context.Context, from string, to types.Mode)
	RecordInvocation(ctx context.Context, mode types.InvocationMode, result string)
	RecordForecastLatency(ctx context.Context, d time.Duration)
	RecordDeliveryFailure(ctx context.Context, channel types.Channel)
}

// NopRecorder discards every metric.
type NopRecorder struct{}

func (NopRecorder) RecordClassification(context.Context, types.Mode) {}
func (NopRecorder) RecordTransition(context.Context, string, types.Mode) {}
func (NopRecorder) RecordInvocation(context.Context, types.InvocationMode, string) {}
func (NopRecorder) RecordForecastLatency(context.Context, time.Duration) {}
func (NopRecorder) RecordDeliveryFailure(context.Context, types.Channel) {}

var _ Recorder = NopRecorder{}
