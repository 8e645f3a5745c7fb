package types

import (
	"fmt"
	"net/http"
	"strings"
)

// ErrorCode is a typed string for categorizing monitor errors.
type ErrorCode string

// Error code constants. Callers MUST use these instead of raw strings so the
// invocation result and the logs stay greppable.
const (
	// Validation (400)
	ErrCodeValidationInvalidMode       ErrorCode = "validation_invalid_mode"
	ErrCodeValidationThresholdRange    ErrorCode = "validation_threshold_out_of_range"
	ErrCodeValidationMissingField      ErrorCode = "validation_missing_required_field"
	ErrCodeValidationInvalidRecipients ErrorCode = "validation_invalid_recipients"

	// Forecast
	ErrCodeUpstreamForecast  ErrorCode = "upstream_forecast_unavailable"
	ErrCodeForecastMalformed ErrorCode = "internal_forecast_malformed"

	// State store
	ErrCodeStateStore   ErrorCode = "internal_state_store"
	ErrCodeStateCorrupt ErrorCode = "internal_state_corrupt"

	// Notification delivery
	ErrCodeNotificationFailed    ErrorCode = "upstream_notification_failed"
	ErrCodeUpstreamEmailProvider ErrorCode = "upstream_email_provider_unavailable"
	ErrCodeUpstreamSMSProvider   ErrorCode = "upstream_sms_provider_unavailable"
	ErrCodeUpstreamUnavailable   ErrorCode = "upstream_unavailable"
	ErrCodeUpstreamRateLimited   ErrorCode = "upstream_rate_limited"
	ErrCodeEmailBlocked          ErrorCode = "email_blocked"

	// Internal (500)
	ErrCodeInternalUnexpected ErrorCode = "internal_unexpected_error"
)

// HTTPStatus maps an ErrorCode to the status code reported in an invocation
// Result (and by the local runner's HTTP surface). Unknown codes map to 500.
func (c ErrorCode) HTTPStatus() int {
	s := string(c)
	switch {
	case strings.HasPrefix(s, "validation_"):
		return http.StatusBadRequest
	case s == string(ErrCodeUpstreamRateLimited):
		return http.StatusTooManyRequests
	case s == string(ErrCodeEmailBlocked):
		return http.StatusForbidden
	case strings.HasPrefix(s, "upstream_"):
		return http.StatusBadGateway
	case strings.HasPrefix(s, "internal_"):
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}

// AppError is the standard error type for the monitor. Collaborators return
// AppErrors so the runner can translate any failure into a structured Result
// without inspecting vendor error types.
type AppError struct {
	Code    ErrorCode      `json:"code"`
	Message string         `json:"message"`
	Err     error          `json:"-"`
	Details map[string]any `json:"details,omitempty"`
}

// Error implements the error interface.
func (e *AppError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying error for errors.Is/errors.As support.
func (e *AppError) Unwrap() error {
	return e.Err
}

// HTTPStatus returns the status code corresponding to this error's code.
func (e *AppError) HTTPStatus() int {
	return e.Code.HTTPStatus()
}

// WithDetails returns a copy of the error with the provided details merged in.
func (e *AppError) WithDetails(details map[string]any) *AppError {
	merged := make(map[string]any, len(e.Details)+len(details))
	for k, v := range e.Details {
		merged[k] = v
	}
	for k, v := range details {
		merged[k] = v
	}
	return &AppError{
		Code:    e.Code,
		Message: e.Message,
		Err:     e.Err,
		Details: merged,
	}
}

// NewAppError creates a new AppError with the given code, message, and optional
// underlying error.
func NewAppError(code ErrorCode, message string, err error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// NewFetchError reports that the forecast source was unreachable or answered
// with a non-success status.
func NewFetchError(message string, err error) *AppError {
	return NewAppError(ErrCodeUpstreamForecast, message, err)
}

// NewMalformedForecastError reports a forecast response that is missing the
// structure the evaluator needs.
func NewMalformedForecastError(message string, err error) *AppError {
	return NewAppError(ErrCodeForecastMalformed, message, err)
}

// NewStateStoreError reports a failed read or write of the persisted mode.
func NewStateStoreError(message string, err error) *AppError {
	return NewAppError(ErrCodeStateStore, message, err)
}

// NewNotificationError reports a failed email or SMS delivery.
func NewNotificationError(message string, err error) *AppError {
	return NewAppError(ErrCodeNotificationFailed, message, err)
}
