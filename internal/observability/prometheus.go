package observability

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"heaterwatch/internal/types"
)

const promNamespace = "heaterwatch"

// PrometheusRecorder implements Recorder with Prometheus collectors. It backs
// the /metrics endpoint of the local runner.
type PrometheusRecorder struct {
	Classifications *prometheus.CounterVec // labels: mode
	Transitions     *prometheus.CounterVec // labels: from, to
	Invocations     *prometheus.CounterVec // labels: invocation_mode, result
	DeliveryFailed  *prometheus.CounterVec // labels: channel
	ForecastLatency prometheus.Histogram
}

// NewPrometheusRecorder creates the collectors and registers them with reg.
// Pass prometheus.NewRegistry() in tests to avoid duplicate registration.
func NewPrometheusRecorder(reg prometheus.Registerer) *PrometheusRecorder {
	r := &PrometheusRecorder{
		Classifications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: promNamespace,
			Name:      "classifications_total",
			Help:      "Forecast classifications by resulting mode.",
		}, []string{"mode"}),
		Transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: promNamespace,
			Name:      "transitions_total",
			Help:      "Committed mode transitions.",
		}, []string{"from", "to"}),
		Invocations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: promNamespace,
			Name:      "invocations_total",
			Help:      "Invocations by mode and result.",
		}, []string{"invocation_mode", "result"}),
		DeliveryFailed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: promNamespace,
			Name:      "delivery_failures_total",
			Help:      "Failed notification deliveries by channel.",
		}, []string{"channel"}),
		ForecastLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: promNamespace,
			Name:      "forecast_fetch_duration_seconds",
			Help:      "Duration of the forecast fetch.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}),
	}

	reg.MustRegister(
		r.Classifications,
		r.Transitions,
		r.Invocations,
		r.DeliveryFailed,
		r.ForecastLatency,
	)
	return r
}

func (r *PrometheusRecorder) RecordClassification(_ context.Context, mode types.Mode) {
	r.Classifications.WithLabelValues(string(mode)).Inc()
}

func (r *PrometheusRecorder) RecordTransition(_ context.Context, from string, to types.Mode) {
	r.Transitions.WithLabelValues(from, string(to)).Inc()
}

func (r *PrometheusRecorder) RecordInvocation(_ context.Context, mode types.InvocationMode, result string) {
	r.Invocations.WithLabelValues(string(mode), result).Inc()
}

func (r *PrometheusRecorder) RecordForecastLatency(_ context.Context, d time.Duration) {
	r.ForecastLatency.Observe(d.Seconds())
}

func (r *PrometheusRecorder) RecordDeliveryFailure(_ context.Context, channel types.Channel) {
	r.DeliveryFailed.WithLabelValues(string(channel)).Inc()
}

var _ Recorder = (*PrometheusRecorder)(nil)
