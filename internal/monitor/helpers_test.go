package monitor

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/require"

	"heaterwatch/internal/events"
	"heaterwatch/internal/forecasts"
	"heaterwatch/internal/notifications"
	"heaterwatch/internal/state"
	"heaterwatch/internal/types"
)

var testNow = time.Date(2026, 1, 10, 12, 0, 0, 0, time.UTC)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// --- forecasts ---

func hourlyAt(temps ...float64) []types.HourlyPoint {
	out := make([]types.HourlyPoint, len(temps))
	for i, v := range temps {
		out[i] = types.HourlyPoint{Time: testNow.Add(time.Duration(i) * time.Hour), TempF: types.Float(v)}
	}
	return out
}

func dailyAt(mins ...float64) []types.DailyPoint {
	out := make([]types.DailyPoint, len(mins))
	for i, v := range mins {
		out[i] = types.DailyPoint{Time: testNow.AddDate(0, 0, i), TempMinF: types.Float(v), TempMaxF: types.Float(v + 15)}
	}
	return out
}

// coldForecast has two freeze hours (31 and 30) inside the default window.
func coldForecast() types.Forecast {
	return types.Forecast{
		Hourly: hourlyAt(40, 35, 31, 30, 33, 36, 38, 40, 41, 42, 43, 44, 20),
		Daily:  dailyAt(28, 30, 40),
	}
}

// warmForecast has no freeze hours and a confirmed warm-clear window.
func warmForecast() types.Forecast {
	return types.Forecast{
		Hourly: hourlyAt(50, 51, 52, 53, 54, 55, 56, 57, 58, 59, 60, 61),
		Daily:  dailyAt(40, 42, 20),
	}
}

// fallbackForecast has no freeze hours but no warm-clear window either.
func fallbackForecast() types.Forecast {
	return types.Forecast{
		Hourly: hourlyAt(38, 39, 40, 41, 42, 43, 44, 45, 46, 47, 48, 49),
		Daily:  dailyAt(33, 40),
	}
}

func staticSource(f types.Forecast) forecasts.Source {
	return forecasts.SourceFunc(func(context.Context) (types.Forecast, error) { return f, nil })
}

// sequenceSource returns the forecasts in order, one per Fetch.
func sequenceSource(fs ...types.Forecast) forecasts.Source {
	var mu sync.Mutex
	i := 0
	return forecasts.SourceFunc(func(context.Context) (types.Forecast, error) {
		mu.Lock()
		defer mu.Unlock()
		f := fs[i]
		i++
		return f, nil
	})
}

func failingSource(err error) forecasts.Source {
	return forecasts.SourceFunc(func(context.Context) (types.Forecast, error) {
		return types.Forecast{}, err
	})
}

// --- store ---

// spyStore wraps a MemoryStore, counts accesses, and can inject failures.
type spyStore struct {
	inner  *state.MemoryStore
	getErr error
	putErr error
	gets   int
	puts   int
}

func newSpyStore(initial *state.Record) *spyStore {
	return &spyStore{inner: state.NewMemoryStore(initial)}
}

func (s *spyStore) Get(ctx context.Context) (*state.Record, error) {
	s.gets++
	if s.getErr != nil {
		return nil, s.getErr
	}
	return s.inner.Get(ctx)
}

func (s *spyStore) Put(ctx context.Context, mode types.Mode, at time.Time) error {
	s.puts++
	if s.putErr != nil {
		return s.putErr
	}
	return s.inner.Put(ctx, mode, at)
}

func (s *spyStore) mode(t *testing.T) types.Mode {
	t.Helper()
	rec, err := s.inner.Get(context.Background())
	require.NoError(t, err)
	if rec == nil {
		return ""
	}
	return rec.Mode
}

// --- notifier ---

type fakeNotifier struct {
	mu          sync.Mutex
	messages    []notifications.Message
	failChannel map[types.Channel]error
	smsDisabled bool
}

func (f *fakeNotifier) Deliver(_ context.Context, m notifications.Message) ([]notifications.Delivery, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.messages = append(f.messages, m)

	var out []notifications.Delivery
	var firstErr error
	add := func(ch types.Channel) {
		dl := notifications.Delivery{Kind: m.Kind, Channel: ch, MessageID: string(ch) + "-id"}
		if ch == types.ChannelSMS && f.smsDisabled {
			dl = notifications.Delivery{Kind: m.Kind, Channel: ch, Skipped: true}
		} else if err := f.failChannel[ch]; err != nil {
			dl.MessageID = ""
			dl.Error = err.Error()
			if firstErr == nil {
				firstErr = err
			}
		}
		out = append(out, dl)
	}
	if m.Email != nil {
		add(types.ChannelEmail)
	}
	if m.SMS != nil {
		add(types.ChannelSMS)
	}
	return out, firstErr
}

func (f *fakeNotifier) sent() []notifications.Message {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]notifications.Message(nil), f.messages...)
}

// --- publisher ---

type fakePublisher struct {
	err    error
	events []events.TransitionEvent
}

func (p *fakePublisher) PublishTransition(_ context.Context, ev events.TransitionEvent) error {
	p.events = append(p.events, ev)
	return p.err
}

// --- recorder ---

type fakeRecorder struct {
	mu               sync.Mutex
	classifications  []types.Mode
	transitions      []string
	invocations      []string
	deliveryFailures []types.Channel
	latencies        int
}

func (r *fakeRecorder) RecordClassification(_ context.Context, mode types.Mode) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.classifications = append(r.classifications, mode)
}

func (r *fakeRecorder) RecordTransition(_ context.Context, from string, to types.Mode) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.transitions = append(r.transitions, from+"->"+string(to))
}

func (r *fakeRecorder) RecordInvocation(_ context.Context, mode types.InvocationMode, result string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.invocations = append(r.invocations, string(mode)+":"+result)
}

func (r *fakeRecorder) RecordForecastLatency(context.Context, time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.latencies++
}

func (r *fakeRecorder) RecordDeliveryFailure(_ context.Context, channel types.Channel) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.deliveryFailures = append(r.deliveryFailures, channel)
}

// --- wiring ---

type harness struct {
	runner    *Runner
	store     *spyStore
	notifier  *fakeNotifier
	publisher *fakePublisher
	recorder  *fakeRecorder
	clock     *clockwork.FakeClock
}

func newTestRenderer(t *testing.T) *notifications.Renderer {
	t.Helper()
	loc, err := time.LoadLocation("America/Chicago")
	require.NoError(t, err)
	r, err := notifications.NewRenderer(notifications.RendererConfig{Location: loc, SiteName: "Elmdale"})
	require.NoError(t, err)
	return r
}

func newHarness(t *testing.T, src forecasts.Source, store *spyStore) *harness {
	t.Helper()
	h := &harness{
		store:     store,
		notifier:  &fakeNotifier{},
		publisher: &fakePublisher{},
		recorder:  &fakeRecorder{},
		clock:     clockwork.NewFakeClockAt(testNow),
	}
	renderer := newTestRenderer(t)

	controller := NewController(ControllerConfig{
		Store:       store,
		Renderer:    renderer,
		Notifier:    h.notifier,
		Publisher:   h.publisher,
		Recorder:    h.recorder,
		Clock:       h.clock,
		CallTimeout: time.Second,
		SiteName:    "Elmdale",
		Logger:      testLogger(),
	})
	h.runner = NewRunner(RunnerConfig{
		Source:      src,
		Store:       store,
		Controller:  controller,
		Renderer:    renderer,
		Notifier:    h.notifier,
		Recorder:    h.recorder,
		Clock:       h.clock,
		Thresholds:  types.DefaultThresholds(),
		CallTimeout: time.Second,
		Logger:      testLogger(),
	})
	h.runner.newID = func() string { return "inv-test" }
	return h
}
