// Package app assembles the monitor from configuration. Both entrypoints
// (the Lambda handler and the local HTTP runner) build their Runner here so
// the two stay wired identically; each supplies its own metrics Recorder.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jonboulle/clockwork"

	"heaterwatch/internal/config"
	"heaterwatch/internal/core"
	"heaterwatch/internal/events"
	"heaterwatch/internal/external"
	"heaterwatch/internal/forecasts"
	"heaterwatch/internal/monitor"
	"heaterwatch/internal/notifications"
	"heaterwatch/internal/observability"
	"heaterwatch/internal/state"
)

// Options are the per-entrypoint choices that do not come from Config.
type Options struct {
	Recorder observability.Recorder
	Clock    clockwork.Clock
	// Store replaces the configured backend when set.
	Store state.Store
	// Source replaces the OpenWeather client when set.
	Source forecasts.Source
}

// App is a fully wired monitor.
type App struct {
	Runner *monitor.Runner
	Probes []core.HealthProbe

	closers []func()
}

// Close releases backend connections. It is safe to call more than once.
func (a *App) Close() {
	for _, c := range a.closers {
		c()
	}
	a.closers = nil
}

type prober interface {
	Probe(ctx context.Context) error
}

// New builds the Runner and its collaborators from cfg.
func New(ctx context.Context, cfg *config.Config, awsCfg aws.Config, logger *slog.Logger, opts Options) (*App, error) {
	if logger == nil {
		logger = slog.Default()
	}
	a := &App{}

	loc, err := time.LoadLocation(cfg.Display.Timezone)
	if err != nil {
		return nil, fmt.Errorf("loading display timezone %q: %w", cfg.Display.Timezone, err)
	}

	store := opts.Store
	if store == nil {
		store, err = a.newStore(ctx, cfg, awsCfg, logger)
		if err != nil {
			a.Close()
			return nil, err
		}
	}
	if p, ok := store.(prober); ok {
		a.Probes = append(a.Probes, core.ProbeFunc{ProbeName: "state", Fn: p.Probe})
	}

	clients := external.NewClientRegistry(cfg, awsCfg, logger)

	source := opts.Source
	if source == nil {
		source = forecasts.NewOpenWeatherClient(clients.Weather, forecasts.OpenWeatherConfig{
			BaseURL: cfg.Weather.BaseURL,
			APIKey:  cfg.Weather.APIKey,
			Lat:     cfg.Weather.Lat,
			Lon:     cfg.Weather.Lon,
			Logger:  logger.With("component", "forecast"),
		})
	}

	renderer, err := notifications.NewRenderer(notifications.RendererConfig{
		Location: loc,
		SiteName: cfg.Display.SiteName,
	})
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("building renderer: %w", err)
	}

	dispatcher := notifications.NewDispatcher(clients.Email, clients.SMS, notifications.DispatcherConfig{
		Sender:     cfg.Email.Sender,
		Recipients: cfg.Email.Recipients,
		TopicARN:   cfg.SMS.TopicARN,
		Logger:     logger.With("component", "dispatcher"),
	})

	var publisher events.Publisher = events.NopPublisher{}
	if cfg.AWS.TransitionQueueURL != "" {
		publisher = events.NewSQSPublisher(
			sqs.NewFromConfig(awsCfg),
			cfg.AWS.TransitionQueueURL,
			logger.With("component", "events"),
		)
	}

	recorder := opts.Recorder
	if recorder == nil {
		recorder = observability.NopRecorder{}
	}

	clock := opts.Clock
	if clock == nil {
		clock = clockwork.NewRealClock()
	}

	controller := monitor.NewController(monitor.ControllerConfig{
		Store:       store,
		Renderer:    renderer,
		Notifier:    dispatcher,
		Publisher:   publisher,
		Recorder:    recorder,
		Clock:       clock,
		CallTimeout: cfg.CallTimeout,
		SiteName:    cfg.Display.SiteName,
		Logger:      logger.With("component", "controller"),
	})

	a.Runner = monitor.NewRunner(monitor.RunnerConfig{
		Source:      source,
		Store:       store,
		Controller:  controller,
		Renderer:    renderer,
		Notifier:    dispatcher,
		Recorder:    recorder,
		Clock:       clock,
		Thresholds:  cfg.Thresholds.Thresholds(),
		CallTimeout: cfg.CallTimeout,
		Logger:      logger,
	})

	logger.Info("monitor assembled",
		"state_backend", cfg.State.Backend,
		"sms_enabled", dispatcher.SMSEnabled(),
		"recipients", notifications.RedactAll(dispatcher.Recipients()),
		"transition_events", cfg.AWS.TransitionQueueURL != "",
		"site", cfg.Display.SiteName,
	)
	return a, nil
}

func (a *App) newStore(ctx context.Context, cfg *config.Config, awsCfg aws.Config, logger *slog.Logger) (state.Store, error) {
	storeLogger := logger.With("component", "state", "backend", cfg.State.Backend)

	switch cfg.State.Backend {
	case "memory":
		return state.NewMemoryStore(nil), nil

	case "postgres":
		pool, err := pgxpool.New(ctx, cfg.State.DatabaseURL.Unmask())
		if err != nil {
			return nil, fmt.Errorf("connecting to postgres: %w", err)
		}
		a.closers = append(a.closers, pool.Close)

		store := state.NewPostgresStore(pool, cfg.State.RecordID, storeLogger)
		if err := store.EnsureSchema(ctx); err != nil {
			return nil, err
		}
		return store, nil

	default:
		return state.NewDynamoStore(dynamodb.NewFromConfig(awsCfg), state.DynamoStoreConfig{
			TableName: cfg.State.TableName,
			RecordID:  cfg.State.RecordID,
			Logger:    storeLogger,
		}), nil
	}
}
