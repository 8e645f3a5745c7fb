package monitor

import (
	"context"
	"errors"
	"net/http"

	"heaterwatch/internal/evaluator"
	"heaterwatch/internal/notifications"
	"heaterwatch/internal/state"
	"heaterwatch/internal/types"
)

const noHourlyState = "UNKNOWN (no hourly data)"

// runStatus reads the forecast and the stored mode and reports both without
// writing. The status email and the test SMS are both attempted; either
// failing fails the run.
func (r *Runner) runStatus(ctx context.Context, th types.Thresholds) Result {
	f, err := r.fetch(ctx)
	if err != nil {
		return failure(types.InvocationStatus, err)
	}

	rec, err := r.readState(ctx)
	if err != nil {
		return failure(types.InvocationStatus, err)
	}

	report := BuildStatusReport(rec, f, th)
	res := Result{StatusCode: http.StatusOK, Mode: types.InvocationStatus}
	if rec != nil {
		res.PreviousMode = string(rec.Mode)
	}
	if len(f.Hourly) > 0 {
		res.Classification = types.Mode(report.DerivedState)
		r.recorder.RecordClassification(ctx, res.Classification)
	}

	email, err := r.renderer.StatusEmail(report)
	if err != nil {
		return failure(types.InvocationStatus, types.NewNotificationError("failed to render status email", err))
	}
	sms := r.renderer.TestSMS()

	mailed, mailErr := r.deliver(ctx, notifications.Message{Kind: types.AlertStatus, Email: &email})
	texted, smsErr := r.deliver(ctx, notifications.Message{Kind: types.AlertTestSMS, SMS: &sms})
	res.Deliveries = append(mailed, texted...)

	if err := errors.Join(mailErr, smsErr); err != nil {
		failed := failure(types.InvocationStatus, err)
		failed.Classification = res.Classification
		failed.PreviousMode = res.PreviousMode
		failed.Deliveries = res.Deliveries
		return failed
	}

	if len(f.Hourly) == 0 {
		res.Body = "STATUS: sent status email + test SMS with limited data."
	} else {
		res.Body = "STATUS: status email + test SMS sent; state unchanged."
	}
	return res
}

// BuildStatusReport assembles the status email content. The derived state is
// the classified mode, or an explanation when the forecast has no hourly data.
func BuildStatusReport(rec *state.Record, f types.Forecast, th types.Thresholds) notifications.StatusReport {
	report := notifications.StatusReport{
		DerivedState: noHourlyState,
		Thresholds:   th,
		Window:       evaluator.SummarizeWindow(f.Hourly, th),
		Days:         evaluator.SummarizeDays(f.Daily, th),
	}
	if rec != nil {
		report.LastState = string(rec.Mode)
	}
	if len(f.Hourly) > 0 {
		report.DerivedState = string(evaluator.Evaluate(f, th).Mode)
	}
	return report
}

func (r *Runner) readState(ctx context.Context) (*state.Record, error) {
	cctx, cancel := withTimeout(ctx, r.callTimeout)
	defer cancel()

	rec, err := r.store.Get(cctx)
	if err != nil {
		return nil, asStateError("failed to read state", err)
	}
	return rec, nil
}
