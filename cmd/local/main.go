// Package main runs the heater monitor as a local HTTP service.
//
//	POST /v1/invoke   {"mode": "STATUS"}   run one invocation
//	GET  /health                           state store probe
//	GET  /metrics                          Prometheus scrape
//
// APP_ENV=local (or IS_TEST_MODE=true) replaces SES and SNS with logging
// stubs. STATE_BACKEND=memory keeps the mode record in process.
//
// Graceful shutdown is handled via OS signal interception (SIGINT, SIGTERM).
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"heaterwatch/internal/app"
	"heaterwatch/internal/config"
	"heaterwatch/internal/core"
	"heaterwatch/internal/observability"
)

func main() {
	if err := run(); err != nil {
		slog.Error("local runner failed", "error", err)
		os.Exit(1)
	}
}

func run() error {
	ctx := context.Background()

	// SSM resolution is bypassed when APP_ENV=local.
	cfg, err := config.LoadConfig(config.NewSSMProvider(os.Getenv("AWS_REGION")))
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}

	logger := newLogger(cfg.LogLevel)
	logger.Info("heaterwatch local runner starting",
		"environment", cfg.Environment,
		"version", cfg.Build.Version,
		"port", cfg.Server.Port,
		"state_backend", cfg.State.Backend,
	)

	opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(cfg.AWS.Region)}
	if cfg.AWS.EndpointURL != "" {
		opts = append(opts, awsconfig.WithBaseEndpoint(cfg.AWS.EndpointURL))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return fmt.Errorf("loading AWS config: %w", err)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	srv, closeApp, err := buildServer(ctx, cfg, awsCfg, logger, reg)
	if err != nil {
		return err
	}
	defer closeApp()

	return serve(srv, cfg.Server.Port, logger)
}

// buildServer assembles the monitor with a Prometheus recorder on reg and
// mounts it behind the chi router.
func buildServer(ctx context.Context, cfg *config.Config, awsCfg aws.Config, logger *slog.Logger, reg *prometheus.Registry) (*core.Server, func(), error) {
	a, err := app.New(ctx, cfg, awsCfg, logger, app.Options{
		Recorder: observability.NewPrometheusRecorder(reg),
	})
	if err != nil {
		return nil, nil, fmt.Errorf("assembling monitor: %w", err)
	}

	srv, err := core.NewServer(a.Runner, logger)
	if err != nil {
		a.Close()
		return nil, nil, fmt.Errorf("creating server: %w", err)
	}
	srv.HealthProbes = a.Probes
	srv.MetricsHandler = promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg})
	srv.RequestTimeout = cfg.CallTimeout * 4
	srv.MountRoutes()

	return srv, a.Close, nil
}

func serve(srv *core.Server, port string, logger *slog.Logger) error {
	addr := ":" + port
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      2 * time.Minute,
		IdleTimeout:       120 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("HTTP server listening", "addr", addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-shutdown:
		logger.Info("shutdown signal received", "signal", sig.String())
	case err := <-serverErr:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		logger.Error("HTTP server shutdown error", "error", err)
		return fmt.Errorf("server shutdown: %w", err)
	}

	logger.Info("server stopped cleanly")
	return nil
}

func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: lvl}))
}
