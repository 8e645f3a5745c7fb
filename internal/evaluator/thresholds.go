// Package evaluator holds the pure forecast checks that feed the heater
// state machine. Nothing here performs I/O or returns errors; structural
// problems are caught by the forecast decoder before data reaches this package.
package evaluator

import "heaterwatch/internal/types"

// EvaluateFreeze returns the hours within the first hoursAhead entries whose
// temperature is present and at or below freezeF. Order is preserved. A short
// sequence is evaluated as-is and hoursAhead <= 0 yields an empty window.
func EvaluateFreeze(hourly []types.HourlyPoint, hoursAhead int, freezeF float64) []types.HourlyPoint {
	window := leadingHours(hourly, hoursAhead)

	var freeze []types.HourlyPoint
	for _, h := range window {
		if h.TempF == nil {
			continue
		}
		if *h.TempF <= freezeF {
			freeze = append(freeze, h)
		}
	}
	return freeze
}

// EvaluateWarmClear reports whether every one of the first days entries has a
// present low at or above warmF. An empty sequence is never warm-clear, and a
// single missing low fails the whole window.
func EvaluateWarmClear(daily []types.DailyPoint, days int, warmF float64) bool {
	if len(daily) == 0 {
		return false
	}
	window := leadingDays(daily, days)
	if len(window) == 0 {
		return false
	}
	for _, d := range window {
		if d.TempMinF == nil || *d.TempMinF < warmF {
			return false
		}
	}
	return true
}

func leadingHours(hourly []types.HourlyPoint, n int) []types.HourlyPoint {
	if n <= 0 {
		return nil
	}
	if n > len(hourly) {
		n = len(hourly)
	}
	return hourly[:n]
}

func leadingDays(daily []types.DailyPoint, n int) []types.DailyPoint {
	if n <= 0 {
		return nil
	}
	if n > len(daily) {
		n = len(daily)
	}
	return daily[:n]
}
