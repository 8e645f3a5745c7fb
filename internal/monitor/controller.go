package monitor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	"heaterwatch/internal/evaluator"
	"heaterwatch/internal/events"
	"heaterwatch/internal/notifications"
	"heaterwatch/internal/observability"
	"heaterwatch/internal/state"
	"heaterwatch/internal/types"
)

// Notifier delivers a rendered alert. *notifications.Dispatcher satisfies it.
type Notifier interface {
	Deliver(ctx context.Context, m notifications.Message) ([]notifications.Delivery, error)
}

// ControllerConfig wires the transition controller's collaborators.
type ControllerConfig struct {
	Store     state.Store
	Renderer  *notifications.Renderer
	Notifier  Notifier
	Publisher events.Publisher
	Recorder  observability.Recorder
	Clock     clockwork.Clock
	// CallTimeout bounds each store and delivery call. Zero means no bound
	// beyond the caller's context.
	CallTimeout time.Duration
	SiteName    string
	Logger      *slog.Logger
}

// Controller owns every write of the mode record. It persists a changed mode
// before it notifies, so an alert is only ever sent for a committed state.
type Controller struct {
	store       state.Store
	renderer    *notifications.Renderer
	notifier    Notifier
	publisher   events.Publisher
	recorder    observability.Recorder
	clock       clockwork.Clock
	callTimeout time.Duration
	site        string
	logger      *slog.Logger
}

// NewController creates a Controller. Publisher, Recorder, Clock and Logger
// default to no-op, no-op, the real clock and slog.Default.
func NewController(cfg ControllerConfig) *Controller {
	c := &Controller{
		store:       cfg.Store,
		renderer:    cfg.Renderer,
		notifier:    cfg.Notifier,
		publisher:   cfg.Publisher,
		recorder:    cfg.Recorder,
		clock:       cfg.Clock,
		callTimeout: cfg.CallTimeout,
		site:        cfg.SiteName,
		logger:      cfg.Logger,
	}
	if c.publisher == nil {
		c.publisher = events.NopPublisher{}
	}
	if c.recorder == nil {
		c.recorder = observability.NopRecorder{}
	}
	if c.clock == nil {
		c.clock = clockwork.NewRealClock()
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}
	return c
}

// Outcome reports what Apply did.
type Outcome struct {
	Decision   Decision
	Deliveries []notifications.Delivery
	// NotifyErr is set when the record committed but the alert was not fully
	// delivered. The write is not rolled back.
	NotifyErr error
}

// Notified reports whether at least one channel delivered the alert.
func (o Outcome) Notified() bool {
	for _, d := range o.Deliveries {
		if !d.Failed() && !d.Skipped {
			return true
		}
	}
	return false
}

// Apply reads the persisted mode, decides the transition for ev.Mode and, on
// a change, persists and then notifies. A read or write failure is returned
// as an error and nothing is sent. hourly is the full hourly forecast, used
// for the synthetic freeze window.
func (c *Controller) Apply(ctx context.Context, ev evaluator.Evaluation, hourly []types.HourlyPoint) (Outcome, error) {
	rec, err := c.readState(ctx)
	if err != nil {
		return Outcome{}, err
	}

	var last *types.Mode
	if rec != nil {
		last = &rec.Mode
	}
	d := Decide(last, ev.Mode)
	out := Outcome{Decision: d}

	if !d.Persist {
		c.logger.InfoContext(ctx, "state unchanged; no alert sent", "mode", string(d.To))
		return out, nil
	}

	now := c.clock.Now().UTC()
	if err := c.writeState(ctx, d.To, now); err != nil {
		return out, err
	}
	c.recorder.RecordTransition(ctx, d.From, d.To)
	c.logger.InfoContext(ctx, "state transition committed",
		"from", d.From,
		"to", string(d.To),
	)

	msg, err := c.message(d, ev, hourly)
	if err != nil {
		out.NotifyErr = types.NewNotificationError("failed to render alert", err)
	} else {
		dctx, cancel := withTimeout(ctx, c.callTimeout)
		out.Deliveries, out.NotifyErr = c.notifier.Deliver(dctx, msg)
		cancel()
	}
	if out.NotifyErr != nil {
		c.logger.ErrorContext(ctx, "alert delivery failed after state commit",
			"alert", string(d.Alert),
			"error", out.NotifyErr,
		)
	}
	for _, dl := range out.Deliveries {
		if dl.Failed() {
			c.recorder.RecordDeliveryFailure(ctx, dl.Channel)
		}
	}

	c.publish(ctx, d, now)
	return out, nil
}

func (c *Controller) readState(ctx context.Context) (*state.Record, error) {
	cctx, cancel := withTimeout(ctx, c.callTimeout)
	defer cancel()

	rec, err := c.store.Get(cctx)
	if err != nil {
		return nil, asStateError("failed to read state", err)
	}
	return rec, nil
}

func (c *Controller) writeState(ctx context.Context, mode types.Mode, at time.Time) error {
	cctx, cancel := withTimeout(ctx, c.callTimeout)
	defer cancel()

	if err := c.store.Put(cctx, mode, at); err != nil {
		return asStateError("failed to write state", err)
	}
	return nil
}

func (c *Controller) message(d Decision, ev evaluator.Evaluation, hourly []types.HourlyPoint) (notifications.Message, error) {
	msg := notifications.Message{Kind: d.Alert}
	switch d.Alert {
	case types.AlertFreeze:
		alert := BuildFreezeAlert(ev, hourly)
		email, err := c.renderer.FreezeEmail(alert)
		if err != nil {
			return msg, err
		}
		sms := c.renderer.FreezeSMS(alert)
		msg.Email, msg.SMS = &email, &sms
	case types.AlertWarmClear:
		alert := BuildWarmClearAlert(ev.Thresholds)
		email, err := c.renderer.WarmClearEmail(alert)
		if err != nil {
			return msg, err
		}
		sms := c.renderer.WarmClearSMS(alert)
		msg.Email, msg.SMS = &email, &sms
	default:
		return msg, fmt.Errorf("no alert for transition to %s", d.To)
	}
	return msg, nil
}

// publish emits the transition event. Failures are logged only.
func (c *Controller) publish(ctx context.Context, d Decision, at time.Time) {
	ev := events.TransitionEvent{
		EventID:      uuid.NewString(),
		InvocationID: types.GetRequestID(ctx),
		From:         d.From,
		To:           d.To,
		OccurredAt:   at,
		Site:         c.site,
	}

	pctx, cancel := withTimeout(ctx, c.callTimeout)
	defer cancel()
	if err := c.publisher.PublishTransition(pctx, ev); err != nil {
		c.logger.WarnContext(ctx, "failed to publish transition event", "error", err)
	}
}

// asStateError keeps a store's AppError and wraps anything else as a
// StateStoreError.
func asStateError(msg string, err error) error {
	var appErr *types.AppError
	if errors.As(err, &appErr) {
		return err
	}
	return types.NewStateStoreError(msg, err)
}

func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}
