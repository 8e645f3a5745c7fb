package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"heaterwatch/internal/monitor"
	"heaterwatch/internal/types"
)

type fakeInvoker struct {
	got []monitor.Request
	res monitor.Result
}

func (f *fakeInvoker) Run(_ context.Context, req monitor.Request) monitor.Result {
	f.got = append(f.got, req)
	return f.res
}

func newTestHandler(res monitor.Result) (*Handler, *fakeInvoker) {
	inv := &fakeInvoker{res: res}
	return &Handler{runner: inv, logger: slog.New(slog.NewTextHandler(io.Discard, nil))}, inv
}

func TestHandle_FailureIsNotALambdaError(t *testing.T) {
	h, _ := newTestHandler(monitor.Result{
		StatusCode: http.StatusBadGateway,
		Body:       "upstream_forecast_unavailable: forecast fetch failed",
		ErrorCode:  types.ErrCodeUpstreamForecast,
	})

	res, err := h.Handle(context.Background(), monitor.Request{})

	require.NoError(t, err)
	assert.Equal(t, http.StatusBadGateway, res.StatusCode)
	assert.Equal(t, types.ErrCodeUpstreamForecast, res.ErrorCode)
}

func TestHandle_PassesRequestThrough(t *testing.T) {
	h, inv := newTestHandler(monitor.Result{StatusCode: http.StatusOK})
	hours := 6

	_, err := h.Handle(context.Background(), monitor.Request{
		Mode:      "STATUS",
		Overrides: &types.ThresholdOverrides{HoursAhead: &hours},
	})

	require.NoError(t, err)
	require.Len(t, inv.got, 1)
	assert.Equal(t, "STATUS", inv.got[0].Mode)
	assert.Equal(t, 6, *inv.got[0].Overrides.HoursAhead)
}

func TestRunOnce_EmptyInputRunsNormal(t *testing.T) {
	h, inv := newTestHandler(monitor.Result{StatusCode: http.StatusOK, Body: "No hourly data."})
	var out bytes.Buffer

	require.NoError(t, runOnce(context.Background(), h, strings.NewReader(""), &out))

	require.Len(t, inv.got, 1)
	assert.Empty(t, inv.got[0].Mode)

	var res monitor.Result
	require.NoError(t, json.Unmarshal(out.Bytes(), &res))
	assert.Equal(t, "No hourly data.", res.Body)
}

func TestRunOnce_DecodesEvent(t *testing.T) {
	h, inv := newTestHandler(monitor.Result{StatusCode: http.StatusOK})

	err := runOnce(context.Background(), h, strings.NewReader(`{"mode":"SIMULATED_COLD"}`), io.Discard)

	require.NoError(t, err)
	require.Len(t, inv.got, 1)
	assert.Equal(t, "SIMULATED_COLD", inv.got[0].Mode)
}

func TestRunOnce_MalformedEvent(t *testing.T) {
	h, inv := newTestHandler(monitor.Result{StatusCode: http.StatusOK})

	err := runOnce(context.Background(), h, strings.NewReader(`{"mode":`), io.Discard)

	assert.ErrorContains(t, err, "decoding event")
	assert.Empty(t, inv.got)
}

func TestNewLogger_Levels(t *testing.T) {
	ctx := context.Background()
	assert.True(t, newLogger("debug").Enabled(ctx, slog.LevelDebug))
	assert.False(t, newLogger("info").Enabled(ctx, slog.LevelDebug))
	assert.False(t, newLogger("error").Enabled(ctx, slog.LevelWarn))
	assert.True(t, newLogger("bogus").Enabled(ctx, slog.LevelInfo))
}
