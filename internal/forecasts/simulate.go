package forecasts

import (
	"time"

	"heaterwatch/internal/types"
)

// SimulateCold builds a forecast that freezes in every hour of the window:
// temperatures start 2°F below the freeze line and fall by half a degree per
// hour. Daily lows sit 5°F below the warm line.
func SimulateCold(now time.Time, th types.Thresholds) types.Forecast {
	hours := max(th.HoursAhead, 1)
	fc := types.Forecast{
		Hourly: make([]types.HourlyPoint, hours),
		Daily:  make([]types.DailyPoint, th.WarmClearDays+1),
	}
	for i := range fc.Hourly {
		fc.Hourly[i] = types.HourlyPoint{
			Time:  now.Add(time.Duration(i) * time.Hour),
			TempF: types.Float(th.FreezeThresholdF - 2 - 0.5*float64(i)),
		}
	}
	for i := range fc.Daily {
		fc.Daily[i] = types.DailyPoint{
			Time:     now.AddDate(0, 0, i),
			TempMinF: types.Float(th.WarmThresholdF - 5),
			TempMaxF: types.Float(th.WarmThresholdF + 10),
		}
	}
	return fc
}

// SimulateWarm builds a forecast with no freeze risk and a confirmed
// warm-clear window: hours start 10°F above the freeze line and rise, daily
// lows sit 5°F above the warm line.
func SimulateWarm(now time.Time, th types.Thresholds) types.Forecast {
	hours := max(th.HoursAhead, 1)
	fc := types.Forecast{
		Hourly: make([]types.HourlyPoint, hours),
		Daily:  make([]types.DailyPoint, max(th.WarmClearDays, 1)),
	}
	for i := range fc.Hourly {
		fc.Hourly[i] = types.HourlyPoint{
			Time:  now.Add(time.Duration(i) * time.Hour),
			TempF: types.Float(th.FreezeThresholdF + 10 + 0.5*float64(i)),
		}
	}
	for i := range fc.Daily {
		fc.Daily[i] = types.DailyPoint{
			Time:     now.AddDate(0, 0, i),
			TempMinF: types.Float(th.WarmThresholdF + 5),
			TempMaxF: types.Float(th.WarmThresholdF + 25),
		}
	}
	return fc
}
