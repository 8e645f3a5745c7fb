// Package monitor runs one heater-watch invocation: it classifies the
// forecast, drives the two-state mode machine against the persisted record,
// and dispatches the resulting alert.
package monitor

import "heaterwatch/internal/types"

// Decision is the outcome of comparing the persisted mode with the mode
// classified from the current forecast.
type Decision struct {
	// From is the persisted mode, or types.StateUninitialized.
	From string
	To   types.Mode
	// Persist is true when the record must be written. Every persisted change
	// carries exactly one alert.
	Persist bool
	Alert   types.AlertKind
}

// Initial reports whether the decision creates the record.
func (d Decision) Initial() bool {
	return d.From == types.StateUninitialized
}

// Decide applies the transition table. last is nil when no record exists.
//
//	UNINITIALIZED -> COLD   persist, freeze alert
//	UNINITIALIZED -> WARM   persist, warm-clear alert
//	COLD -> COLD            no-op
//	WARM -> WARM            no-op
//	COLD -> WARM            persist, warm-clear alert
//	WARM -> COLD            persist, freeze alert
func Decide(last *types.Mode, current types.Mode) Decision {
	d := Decision{From: types.StateUninitialized, To: current}
	if last != nil {
		d.From = string(*last)
		if *last == current {
			return d
		}
	}
	d.Persist = true
	d.Alert = alertFor(current)
	return d
}

func alertFor(m types.Mode) types.AlertKind {
	if m == types.ModeWarm {
		return types.AlertWarmClear
	}
	return types.AlertFreeze
}
