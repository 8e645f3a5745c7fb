package types

// Telemetry metric names. Recorders MUST use these constants so CloudWatch and
// Prometheus series line up.
const (
	// Metric Names
	MetricClassification   = "Classification"
	MetricTransition       = "Transition"
	MetricInvocationResult = "InvocationResult"
	MetricForecastLatency  = "ForecastLatency"
	MetricDeliveryFailed   = "DeliveryFailed"

	// Dimension Keys
	DimMode           = "Mode"
	DimFrom           = "From"
	DimTo             = "To"
	DimInvocationMode = "InvocationMode"
	DimResult         = "Result"
	DimChannel        = "Channel"

	// Metric Namespace
	MetricNamespace = "HeaterWatch"
)

// Result dimension values.
const (
	ResultOK      = "ok"
	ResultNoData  = "no_data"
	ResultFailure = "failure"
)

// StateUninitialized is the dimension value used for a transition out of the
// never-written state.
const StateUninitialized = "UNINITIALIZED"
