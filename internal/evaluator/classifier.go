package evaluator

import "heaterwatch/internal/types"

// Classify folds the two threshold checks into a single mode. The rules are
// evaluated in order:
//
//  1. any freeze hour in the window means COLD
//  2. otherwise a confirmed warm-clear window means WARM
//  3. otherwise COLD
func Classify(freezeHours []types.HourlyPoint, warmClearOK bool) types.Mode {
	if len(freezeHours) > 0 {
		return types.ModeCold
	}
	if warmClearOK {
		return types.ModeWarm
	}
	return conservativeDefault()
}

// conservativeDefault is the mode chosen when the forecast neither shows a
// freeze nor confirms a warm stretch.
func conservativeDefault() types.Mode {
	return types.ModeCold
}

// Evaluation bundles everything a run derives from one forecast.
type Evaluation struct {
	Thresholds  types.Thresholds
	FreezeHours []types.HourlyPoint
	WarmClearOK bool
	Mode        types.Mode
	// HasHourly is false when the forecast carried no hourly data at all.
	HasHourly bool
}

// Evaluate runs both checks and the classifier over a forecast.
func Evaluate(f types.Forecast, th types.Thresholds) Evaluation {
	freeze := EvaluateFreeze(f.Hourly, th.HoursAhead, th.FreezeThresholdF)
	warm := EvaluateWarmClear(f.Daily, th.WarmClearDays, th.WarmThresholdF)
	return Evaluation{
		Thresholds:  th,
		FreezeHours: freeze,
		WarmClearOK: warm,
		Mode:        Classify(freeze, warm),
		HasHourly:   len(f.Hourly) > 0,
	}
}
