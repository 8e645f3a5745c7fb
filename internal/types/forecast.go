package types

import "time"

// HourlyPoint is one entry of the hourly forecast. TempF is nil when the
// upstream omitted the reading.
type HourlyPoint struct {
	Time  time.Time `json:"time"`
	TempF *float64  `json:"temp_f,omitempty"`
}

// DailyPoint is one entry of the daily forecast.
type DailyPoint struct {
	Time     time.Time `json:"time"`
	TempMinF *float64  `json:"temp_min_f,omitempty"`
	TempMaxF *float64  `json:"temp_max_f,omitempty"`
}

// Forecast is the read-only snapshot evaluated by a single invocation.
// Both sequences are ordered earliest-first and either may be empty.
type Forecast struct {
	Hourly []HourlyPoint `json:"hourly"`
	Daily  []DailyPoint  `json:"daily"`
}

// Thresholds are the evaluation parameters for one invocation.
type Thresholds struct {
	HoursAhead       int     `json:"hours_ahead" validate:"min=1,max=48"`
	FreezeThresholdF float64 `json:"freeze_threshold_f" validate:"min=-60,max=80"`
	WarmClearDays    int     `json:"warm_clear_days" validate:"min=1,max=8"`
	WarmThresholdF   float64 `json:"warm_threshold_f" validate:"min=-60,max=90"`
}

// DefaultThresholds returns the stock evaluation parameters.
func DefaultThresholds() Thresholds {
	return Thresholds{
		HoursAhead:       12,
		FreezeThresholdF: 32,
		WarmClearDays:    2,
		WarmThresholdF:   35,
	}
}

// ThresholdOverrides carries optional per-invocation replacements. Nil fields
// keep the configured value.
type ThresholdOverrides struct {
	HoursAhead       *int     `json:"hours_ahead,omitempty"`
	FreezeThresholdF *float64 `json:"freeze_threshold_f,omitempty"`
	WarmClearDays    *int     `json:"warm_clear_days,omitempty"`
	WarmThresholdF   *float64 `json:"warm_threshold_f,omitempty"`
}

// Apply returns base with any non-nil override applied.
func (o *ThresholdOverrides) Apply(base Thresholds) Thresholds {
	if o == nil {
		return base
	}
	if o.HoursAhead != nil {
		base.HoursAhead = *o.HoursAhead
	}
	if o.FreezeThresholdF != nil {
		base.FreezeThresholdF = *o.FreezeThresholdF
	}
	if o.WarmClearDays != nil {
		base.WarmClearDays = *o.WarmClearDays
	}
	if o.WarmThresholdF != nil {
		base.WarmThresholdF = *o.WarmThresholdF
	}
	return base
}

// FreezeAlert is the structured payload for a "turn heaters on" notification.
type FreezeAlert struct {
	MinTempF   *float64
	FirstAlert time.Time
	LastAlert  time.Time
	HourCount  int
	// Synthetic is set when the window was built from the first forecast hour
	// because classification fell back to COLD without a freeze hour.
	Synthetic  bool
	Thresholds Thresholds
}

// WarmClearAlert is the structured payload for a "turn heaters off" notification.
type WarmClearAlert struct {
	WarmClearDays  int
	WarmThresholdF float64
	Thresholds     Thresholds
}

// Float returns a pointer to v. Handy for building forecasts in code.
func Float(v float64) *float64 {
	return &v
}
