package monitor

import (
	"heaterwatch/internal/evaluator"
	"heaterwatch/internal/types"
)

// BuildFreezeAlert assembles the freeze payload. With freeze hours present the
// window spans them; otherwise the classification fell back to COLD and the
// window is the first forecast hour alone, flagged Synthetic. hourly must be
// non-empty for the synthetic case to carry a time.
func BuildFreezeAlert(ev evaluator.Evaluation, hourly []types.HourlyPoint) types.FreezeAlert {
	window := ev.FreezeHours
	synthetic := false
	if len(window) == 0 {
		synthetic = true
		if len(hourly) > 0 {
			window = hourly[:1]
		}
	}

	a := types.FreezeAlert{
		MinTempF:   evaluator.MinTemp(window),
		HourCount:  len(window),
		Synthetic:  synthetic,
		Thresholds: ev.Thresholds,
	}
	if len(window) > 0 {
		a.FirstAlert = window[0].Time
		a.LastAlert = window[len(window)-1].Time
	}
	return a
}

// BuildWarmClearAlert assembles the warm-clear payload.
func BuildWarmClearAlert(th types.Thresholds) types.WarmClearAlert {
	return types.WarmClearAlert{
		WarmClearDays:  th.WarmClearDays,
		WarmThresholdF: th.WarmThresholdF,
		Thresholds:     th,
	}
}
