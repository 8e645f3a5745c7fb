// Package forecasts fetches and decodes the weather forecast evaluated by the
// monitor, and builds the synthetic forecasts used by the simulated modes.
package forecasts

import (
	"context"

	"heaterwatch/internal/types"
)

// Source returns the current forecast for the configured location.
// Implementations report transport and status failures with
// types.ErrCodeUpstreamForecast and undecodable payloads with
// types.ErrCodeForecastMalformed.
type Source interface {
	Fetch(ctx context.Context) (types.Forecast, error)
}

// SourceFunc adapts a function to Source.
type SourceFunc func(ctx context.Context) (types.Forecast, error)

// Fetch calls f.
func (f SourceFunc) Fetch(ctx context.Context) (types.Forecast, error) {
	return f(ctx)
}
