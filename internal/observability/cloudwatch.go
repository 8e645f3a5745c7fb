package observability

import (
	"context"
	"log/slog"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	cwtypes "github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"

	"heaterwatch/internal/types"
)

// CloudWatchAPI abstracts the CloudWatch PutMetricData operation for testability.
type CloudWatchAPI interface {
	PutMetricData(ctx context.Context, params *cloudwatch.PutMetricDataInput, optFns ...func(*cloudwatch.Options)) (*cloudwatch.PutMetricDataOutput, error)
}

// CloudWatchRecorder implements Recorder by emitting one datum per call to
// AWS CloudWatch.
//
// Metrics emitted:
//   - Classification: Dims {Mode}
//   - Transition: Dims {From, To}
//   - InvocationResult: Dims {InvocationMode, Result}
//   - ForecastLatency: no dims, milliseconds
//   - DeliveryFailed: Dims {Channel}
type CloudWatchRecorder struct {
	client    CloudWatchAPI
	namespace string
	logger    *slog.Logger
}

// NewCloudWatchRecorder creates a recorder publishing to namespace. An empty
// namespace falls back to types.MetricNamespace.
func NewCloudWatchRecorder(client CloudWatchAPI, namespace string, logger *slog.Logger) *CloudWatchRecorder {
	if namespace == "" {
		namespace = types.MetricNamespace
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &CloudWatchRecorder{
		client:    client,
		namespace: namespace,
		logger:    logger,
	}
}

func (r *CloudWatchRecorder) RecordClassification(ctx context.Context, mode types.Mode) {
	r.put(ctx, types.MetricClassification, 1, cwtypes.StandardUnitCount,
		dim(types.DimMode, string(mode)))
}

func (r *CloudWatchRecorder) RecordTransition(ctx context.Context, from string, to types.Mode) {
	r.put(ctx, types.MetricTransition, 1, cwtypes.StandardUnitCount,
		dim(types.DimFrom, from),
		dim(types.DimTo, string(to)))
}

func (r *CloudWatchRecorder) RecordInvocation(ctx context.Context, mode types.InvocationMode, result string) {
	r.put(ctx, types.MetricInvocationResult, 1, cwtypes.StandardUnitCount,
		dim(types.DimInvocationMode, string(mode)),
		dim(types.DimResult, result))
}

func (r *CloudWatchRecorder) RecordForecastLatency(ctx context.Context, d time.Duration) {
	r.put(ctx, types.MetricForecastLatency, float64(d.Milliseconds()), cwtypes.StandardUnitMilliseconds)
}

func (r *CloudWatchRecorder) RecordDeliveryFailure(ctx context.Context, channel types.Channel) {
	r.put(ctx, types.MetricDeliveryFailed, 1, cwtypes.StandardUnitCount,
		dim(types.DimChannel, string(channel)))
}

func (r *CloudWatchRecorder) put(ctx context.Context, name string, value float64, unit cwtypes.StandardUnit, dims ...cwtypes.Dimension) {
	input := &cloudwatch.PutMetricDataInput{
		Namespace: aws.String(r.namespace),
		MetricData: []cwtypes.MetricDatum{
			{
				MetricName: aws.String(name),
				Value:      aws.Float64(value),
				Unit:       unit,
				Dimensions: dims,
			},
		},
	}

	if _, err := r.client.PutMetricData(ctx, input); err != nil {
		r.logger.ErrorContext(ctx, "failed to record metric",
			"metric", name,
			"error", err.Error(),
		)
	}
}

func dim(name, value string) cwtypes.Dimension {
	return cwtypes.Dimension{Name: aws.String(name), Value: aws.String(value)}
}

var _ Recorder = (*CloudWatchRecorder)(nil)
