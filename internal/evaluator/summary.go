package evaluator

import (
	"time"

	"heaterwatch/internal/types"
)

// maxStatusDays caps the daily table in the status report.
const maxStatusDays = 10

// WindowSummary describes the short-term hourly window.
type WindowSummary struct {
	// Points counts the window entries that carried a temperature.
	Points      int
	MinTempF    *float64
	MaxTempF    *float64
	FreezeCount int
}

// DaySummary is one row of the status report's daily table.
type DaySummary struct {
	Date          time.Time
	MinF          *float64
	MaxF          *float64
	BelowFreeze   bool
	BelowWarmLine bool
}

// SummarizeWindow computes min/max over the present temperatures of the first
// hoursAhead entries together with the freeze count for the same window.
func SummarizeWindow(hourly []types.HourlyPoint, th types.Thresholds) WindowSummary {
	window := leadingHours(hourly, th.HoursAhead)
	var s WindowSummary
	for _, h := range window {
		if h.TempF == nil {
			continue
		}
		s.Points++
		t := *h.TempF
		if s.MinTempF == nil || t < *s.MinTempF {
			s.MinTempF = types.Float(t)
		}
		if s.MaxTempF == nil || t > *s.MaxTempF {
			s.MaxTempF = types.Float(t)
		}
		if t <= th.FreezeThresholdF {
			s.FreezeCount++
		}
	}
	return s
}

// SummarizeDays returns at most ten daily rows tagged against both thresholds.
// A missing low is never tagged.
func SummarizeDays(daily []types.DailyPoint, th types.Thresholds) []DaySummary {
	days := leadingDays(daily, maxStatusDays)
	out := make([]DaySummary, 0, len(days))
	for _, d := range days {
		row := DaySummary{Date: d.Time, MinF: d.TempMinF, MaxF: d.TempMaxF}
		if d.TempMinF != nil {
			row.BelowFreeze = *d.TempMinF <= th.FreezeThresholdF
			row.BelowWarmLine = !row.BelowFreeze && *d.TempMinF < th.WarmThresholdF
		}
		out = append(out, row)
	}
	return out
}

// MinTemp returns the arithmetic minimum of the present temperatures in hours,
// or nil when none are present.
func MinTemp(hours []types.HourlyPoint) *float64 {
	var min *float64
	for _, h := range hours {
		if h.TempF == nil {
			continue
		}
		if min == nil || *h.TempF < *min {
			min = types.Float(*h.TempF)
		}
	}
	return min
}
