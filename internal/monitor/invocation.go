package monitor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	"heaterwatch/internal/evaluator"
	"heaterwatch/internal/forecasts"
	"heaterwatch/internal/notifications"
	"heaterwatch/internal/observability"
	"heaterwatch/internal/state"
	"heaterwatch/internal/types"
)

// Request is the invocation input. Mode is parsed with
// types.ParseInvocationMode; empty means NORMAL.
type Request struct {
	Mode      string                    `json:"mode,omitempty"`
	Overrides *types.ThresholdOverrides `json:"overrides,omitempty"`
}

// Result is the structured outcome of one invocation. StatusCode follows HTTP
// semantics so the Lambda response and the local runner agree.
type Result struct {
	StatusCode     int                      `json:"statusCode"`
	Body           string                   `json:"body"`
	InvocationID   string                   `json:"invocation_id,omitempty"`
	Mode           types.InvocationMode     `json:"mode,omitempty"`
	Classification types.Mode               `json:"classification,omitempty"`
	PreviousMode   string                   `json:"previous_mode,omitempty"`
	Transitioned   bool                     `json:"transitioned"`
	Deliveries     []notifications.Delivery `json:"deliveries,omitempty"`
	ErrorCode      types.ErrorCode          `json:"error_code,omitempty"`
}

// OK reports whether the invocation succeeded.
func (r Result) OK() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// RunnerConfig wires the Runner's collaborators.
type RunnerConfig struct {
	Source     forecasts.Source
	Store      state.Store
	Controller *Controller
	Renderer   *notifications.Renderer
	Notifier   Notifier
	Recorder   observability.Recorder
	Clock      clockwork.Clock
	Thresholds types.Thresholds
	// CallTimeout bounds each collaborator call.
	CallTimeout time.Duration
	Logger      *slog.Logger
}

// Runner executes invocations. It is safe to reuse across invocations but
// runs each one on the caller's goroutine.
type Runner struct {
	source      forecasts.Source
	store       state.Store
	controller  *Controller
	renderer    *notifications.Renderer
	notifier    Notifier
	recorder    observability.Recorder
	clock       clockwork.Clock
	thresholds  types.Thresholds
	callTimeout time.Duration
	validate    *validator.Validate
	newID       func() string
	logger      *slog.Logger
}

// NewRunner creates a Runner.
func NewRunner(cfg RunnerConfig) *Runner {
	r := &Runner{
		source:      cfg.Source,
		store:       cfg.Store,
		controller:  cfg.Controller,
		renderer:    cfg.Renderer,
		notifier:    cfg.Notifier,
		recorder:    cfg.Recorder,
		clock:       cfg.Clock,
		thresholds:  cfg.Thresholds,
		callTimeout: cfg.CallTimeout,
		validate:    validator.New(),
		newID:       uuid.NewString,
		logger:      cfg.Logger,
	}
	if r.recorder == nil {
		r.recorder = observability.NopRecorder{}
	}
	if r.clock == nil {
		r.clock = clockwork.NewRealClock()
	}
	if r.logger == nil {
		r.logger = slog.Default()
	}
	return r
}

// Run executes one invocation. It never returns an error or panics; every
// failure is folded into the Result.
func (r *Runner) Run(ctx context.Context, req Request) (res Result) {
	id := r.newID()
	ctx = types.WithRequestID(ctx, id)
	logger := r.logger.With("invocation_id", id)

	defer func() {
		if p := recover(); p != nil {
			logger.ErrorContext(ctx, "invocation panicked",
				"panic", fmt.Sprint(p),
				"stack", string(debug.Stack()),
			)
			res = failure(res.Mode, types.NewAppError(types.ErrCodeInternalUnexpected, "unexpected internal error", nil))
		}
		res.InvocationID = id
		r.recorder.RecordInvocation(ctx, res.Mode, resultLabel(res))
		logger.InfoContext(ctx, "invocation finished",
			"mode", string(res.Mode),
			"status_code", res.StatusCode,
			"body", res.Body,
		)
	}()

	mode, err := types.ParseInvocationMode(req.Mode)
	if err != nil {
		return failure("", err)
	}
	ctx = types.WithInvocationMode(ctx, mode)
	res.Mode = mode

	th, err := r.resolveThresholds(req.Overrides)
	if err != nil {
		return failure(mode, err)
	}

	logger.InfoContext(ctx, "invocation started",
		"mode", string(mode),
		"diagnostic", mode.IsDiagnostic(),
		"hours_ahead", th.HoursAhead,
		"freeze_threshold_f", th.FreezeThresholdF,
		"warm_clear_days", th.WarmClearDays,
		"warm_threshold_f", th.WarmThresholdF,
	)

	if !mode.IsDiagnostic() {
		return r.runNormal(ctx, th)
	}
	switch mode {
	case types.InvocationStatus:
		return r.runStatus(ctx, th)
	case types.InvocationTestSMSOnly:
		return r.runTestSMS(ctx)
	default:
		return r.runSimulated(ctx, mode, th)
	}
}

func (r *Runner) resolveThresholds(o *types.ThresholdOverrides) (types.Thresholds, error) {
	th := o.Apply(r.thresholds)
	if err := r.validate.Struct(th); err != nil {
		return th, types.NewAppError(types.ErrCodeValidationThresholdRange,
			fmt.Sprintf("invalid thresholds: %v", err), err)
	}
	return th, nil
}

func (r *Runner) runNormal(ctx context.Context, th types.Thresholds) Result {
	f, err := r.fetch(ctx)
	if err != nil {
		return failure(types.InvocationNormal, err)
	}

	if len(f.Hourly) == 0 {
		r.logger.WarnContext(ctx, "no hourly data in forecast")
		return Result{StatusCode: http.StatusOK, Body: "No hourly data.", Mode: types.InvocationNormal}
	}

	ev := evaluator.Evaluate(f, th)
	r.recorder.RecordClassification(ctx, ev.Mode)
	r.logger.InfoContext(ctx, "forecast classified",
		"mode", string(ev.Mode),
		"freeze_hours", len(ev.FreezeHours),
		"warm_clear", ev.WarmClearOK,
	)

	out, err := r.controller.Apply(ctx, ev, f.Hourly)
	if err != nil {
		res := failure(types.InvocationNormal, err)
		res.Classification = ev.Mode
		return res
	}

	res := Result{
		StatusCode:     http.StatusOK,
		Mode:           types.InvocationNormal,
		Classification: ev.Mode,
		PreviousMode:   out.Decision.From,
		Transitioned:   out.Decision.Persist,
		Deliveries:     out.Deliveries,
		Body:           normalBody(out.Decision),
	}
	if out.NotifyErr != nil {
		res.Body += " Alert delivery failed: " + out.NotifyErr.Error()
	}
	return res
}

func normalBody(d Decision) string {
	switch {
	case !d.Persist:
		return fmt.Sprintf("State unchanged (%s); no alert.", d.To)
	case d.Initial() && d.To == types.ModeCold:
		return "Initial state set to COLD and freeze-type alert sent."
	case d.Initial():
		return "Initial state set to WARM and warm-type alert sent."
	case d.To == types.ModeCold:
		return "Transition to COLD; freeze alert sent."
	default:
		return "Transition to WARM; warm-ok alert sent."
	}
}

func (r *Runner) runTestSMS(ctx context.Context) Result {
	sms := r.renderer.TestSMS()
	deliveries, err := r.deliver(ctx, notifications.Message{Kind: types.AlertTestSMS, SMS: &sms})
	if err != nil {
		res := failure(types.InvocationTestSMSOnly, err)
		res.Deliveries = deliveries
		return res
	}

	body := "TEST_SMS_ONLY: test SMS sent."
	if len(deliveries) > 0 && deliveries[0].Skipped {
		body = "TEST_SMS_ONLY: no SMS destination configured; nothing sent."
	}
	return Result{
		StatusCode: http.StatusOK,
		Body:       body,
		Mode:       types.InvocationTestSMSOnly,
		Deliveries: deliveries,
	}
}

func (r *Runner) runSimulated(ctx context.Context, mode types.InvocationMode, th types.Thresholds) Result {
	now := r.clock.Now().UTC()

	f, want := simulatedForecast(mode, now, th)
	ev := evaluator.Evaluate(f, th)
	if ev.Mode != want {
		return failure(mode, types.NewAppError(types.ErrCodeInternalUnexpected,
			fmt.Sprintf("simulated forecast classified %s, want %s", ev.Mode, want), nil))
	}

	var (
		email notifications.Email
		kind  types.AlertKind
		body  string
		err   error
	)
	if want == types.ModeCold {
		kind = types.AlertFreeze
		email, err = r.renderer.FreezeEmail(BuildFreezeAlert(ev, f.Hourly))
		body = "SIMULATED_COLD: cold alert email sent with simulated freeze conditions; state unchanged."
	} else {
		kind = types.AlertWarmClear
		email, err = r.renderer.WarmClearEmail(BuildWarmClearAlert(ev.Thresholds))
		body = "SIMULATED_WARM: warm alert email sent with simulated warm conditions; state unchanged."
	}
	if err != nil {
		return failure(mode, types.NewNotificationError("failed to render alert", err))
	}

	deliveries, err := r.deliver(ctx, notifications.Message{Kind: kind, Email: &email})
	if err != nil {
		res := failure(mode, err)
		res.Classification = ev.Mode
		res.Deliveries = deliveries
		return res
	}
	return Result{
		StatusCode:     http.StatusOK,
		Body:           body,
		Mode:           mode,
		Classification: ev.Mode,
		Deliveries:     deliveries,
	}
}

// simulatedForecast synthesizes a forecast for a SIMULATED_* mode and returns
// the mode it must classify as.
func simulatedForecast(mode types.InvocationMode, now time.Time, th types.Thresholds) (types.Forecast, types.Mode) {
	if mode == types.InvocationSimulatedCold {
		return forecasts.SimulateCold(now, th), types.ModeCold
	}
	return forecasts.SimulateWarm(now, th), types.ModeWarm
}

func (r *Runner) fetch(ctx context.Context) (types.Forecast, error) {
	cctx, cancel := withTimeout(ctx, r.callTimeout)
	defer cancel()

	start := r.clock.Now()
	f, err := r.source.Fetch(cctx)
	r.recorder.RecordForecastLatency(ctx, r.clock.Since(start))
	if err != nil {
		var appErr *types.AppError
		if !errors.As(err, &appErr) {
			err = types.NewFetchError("forecast fetch failed", err)
		}
		r.logger.ErrorContext(ctx, "forecast fetch failed", "error", err)
		return types.Forecast{}, err
	}
	return f, nil
}

// deliver sends a diagnostic message. Any failed channel fails the run.
func (r *Runner) deliver(ctx context.Context, m notifications.Message) ([]notifications.Delivery, error) {
	cctx, cancel := withTimeout(ctx, r.callTimeout)
	defer cancel()

	deliveries, err := r.notifier.Deliver(cctx, m)
	for _, dl := range deliveries {
		if dl.Failed() {
			r.recorder.RecordDeliveryFailure(ctx, dl.Channel)
		}
	}
	return deliveries, err
}

// failure converts err into a Result. Errors that are not AppErrors become
// internal_unexpected_error.
func failure(mode types.InvocationMode, err error) Result {
	code := types.ErrCodeInternalUnexpected
	var appErr *types.AppError
	if errors.As(err, &appErr) {
		code = appErr.Code
	}
	return Result{
		StatusCode: code.HTTPStatus(),
		Body:       err.Error(),
		Mode:       mode,
		ErrorCode:  code,
	}
}

func resultLabel(res Result) string {
	switch {
	case !res.OK():
		return types.ResultFailure
	case res.Mode == types.InvocationNormal && res.Classification == "":
		return types.ResultNoData
	default:
		return types.ResultOK
	}
}
