// Package main is the entry point for the Firebay API server.
//
// It loads configuration, wires the data providers (live weather upstream or
// simulated, PostgreSQL event store or in-memory), builds the HTTP server on
// the core chassis, and serves until SIGINT/SIGTERM with graceful shutdown.
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

	"firebay/internal/api/handlers"
	"firebay/internal/config"
	"firebay/internal/core"
	"firebay/internal/db"
	"firebay/internal/external"
	"firebay/internal/history"
	"firebay/internal/risk"
	"firebay/internal/satellite"
	"firebay/internal/types"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

// run encapsulates the startup lifecycle so main() can cleanly exit on error.
func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}

	logger := newLogger(cfg.LogLevel)
	logger.Info("firebay API starting",
		"environment", cfg.Environment,
		"version", cfg.Build.Version,
		"commit", cfg.Build.Commit,
		"port", cfg.Server.Port,
	)

	clock := types.RealClock{}
	region := types.Region{
		Name: cfg.Region.Name,
		Zone: cfg.Region.Zone,
		Lat:  cfg.Region.Lat,
		Lon:  cfg.Region.Lon,
	}

	srv, err := core.NewServer(cfg, logger)
	if err != nil {
		return fmt.Errorf("creating server: %w", err)
	}

	// Conditions provider: live weather upstream with simulated fallback, or
	// fully simulated when no upstream is configured.
	simulated := external.NewSimulatedProvider(clock)
	var conditions external.ConditionsProvider = simulated
	if cfg.Weather.UpstreamURL != "" {
		weatherClient := external.NewWeatherClient(
			external.NewClient(
				&http.Client{Timeout: cfg.Weather.Timeout},
				"weather",
				external.DefaultRetryPolicy(),
				cfg.Weather.UserAgent,
			),
			cfg.Weather.UpstreamURL,
			cfg.Region.Lat,
			cfg.Region.Lon,
			clock,
		)
		conditions = external.NewFallbackProvider(weatherClient, simulated)
		srv.HealthProbes = append(srv.HealthProbes, core.ProbeFunc{
			ProbeName: "weather_upstream",
			Fn:        weatherClient.CheckUpstream,
		})
		logger.Info("using weather upstream", "url", cfg.Weather.UpstreamURL)
	} else {
		logger.Info("no weather upstream configured; using simulated conditions")
	}

	// Event store: PostgreSQL when DATABASE_URL is set, in-memory otherwise.
	var events db.EventStore
	if cfg.Database.URL.Unmask() != "" {
		pool, err := db.NewPool(context.Background(), cfg.Database)
		if err != nil {
			return fmt.Errorf("connecting event store: %w", err)
		}
		events = db.NewEventRepository(pool)
		srv.Closers = append(srv.Closers, func() error {
			pool.Close()
			return nil
		})
		srv.HealthProbes = append(srv.HealthProbes, core.ProbeFunc{
			ProbeName: "event_store",
			Fn:        pool.Ping,
		})
		logger.Info("using postgres event store")
	} else {
		memory := db.NewMemoryEventStore()
		memory.Seed(seedEvents())
		events = memory
		logger.Info("no DATABASE_URL configured; using in-memory event store")
	}

	// Threshold profiles: built-in default plus an optional YAML file.
	profiles := map[string]risk.Profile{
		risk.DefaultProfileName: risk.DefaultProfile(),
	}
	if cfg.Risk.ProfilesPath != "" {
		profiles, err = risk.LoadProfiles(cfg.Risk.ProfilesPath)
		if err != nil {
			return fmt.Errorf("loading threshold profiles: %w", err)
		}
		logger.Info("loaded threshold profiles", "count", len(profiles), "path", cfg.Risk.ProfilesPath)
	}

	catalog := satellite.NewDirCatalog(cfg.Satellite.ScenesDir)
	srv.HealthProbes = append(srv.HealthProbes, core.ProbeFunc{
		ProbeName: "scene_catalog",
		Fn:        catalog.CheckRoot,
	})

	validator := core.NewValidator()
	metrics := core.NewPrometheusCollector()
	srv.Metrics = metrics
	srv.MetricsHandler = metrics.Handler()

	riskHandler := handlers.NewRiskHandler(conditions, profiles, logger)
	conditionsHandler := handlers.NewConditionsHandler(conditions, region, logger)
	historyHandler := handlers.NewHistoryHandler(history.NewSimulatedProvider(), clock, logger)
	satelliteHandler := handlers.NewSatelliteHandler(catalog, logger)
	windMapHandler := handlers.NewWindMapHandler(region, cfg.Region.Zoom)
	eventsHandler := handlers.NewEventsHandler(events, validator, clock, logger)
	reportHandler := handlers.NewReportHandler(conditions, profiles, region, clock, logger)

	srv.V1RouteRegistrars = append(srv.V1RouteRegistrars,
		riskHandler.RegisterRoutes,
		conditionsHandler.RegisterRoutes,
		historyHandler.RegisterRoutes,
		satelliteHandler.RegisterRoutes,
		windMapHandler.RegisterRoutes,
		eventsHandler.RegisterRoutes,
		reportHandler.RegisterRoutes,
	)

	srv.MountRoutes()
	startRetentionLoop(srv, events, cfg.Events.RetentionDays, clock, logger)

	return runHTTPServer(srv, cfg, logger)
}

// seedEvents is the initial registry for in-memory runs.
func seedEvents() []types.DetectedEvent {
	return []types.DetectedEvent{
		{
			ID:         "evt_seed_1",
			OccurredAt: time.Date(2024, 11, 25, 0, 0, 0, 0, time.UTC),
			Kind:       types.EventThermalAnomaly,
			Severity:   types.RiskHigh,
			Sector:     "Sector Norte",
			Status:     types.EventStatusResolved,
		},
		{
			ID:         "evt_seed_2",
			OccurredAt: time.Date(2024, 11, 20, 0, 0, 0, 0, time.UTC),
			Kind:       types.EventIndexAlert,
			Severity:   types.RiskMedium,
			Sector:     "Sector Este",
			Status:     types.EventStatusResolved,
		},
		{
			ID:         "evt_seed_3",
			OccurredAt: time.Date(2024, 11, 15, 0, 0, 0, 0, time.UTC),
			Kind:       types.EventHotspot,
			Severity:   types.RiskCritical,
			Sector:     "Sector Oeste",
			Status:     types.EventStatusMonitoring,
		},
		{
			ID:         "evt_seed_4",
			OccurredAt: time.Date(2024, 11, 10, 0, 0, 0, 0, time.UTC),
			Kind:       types.EventIndexAlert,
			Severity:   types.RiskMedium,
			Sector:     "Sector Sur",
			Status:     types.EventStatusResolved,
		},
	}
}

// startRetentionLoop prunes events past the retention window once a day. The
// goroutine stops when the server shuts down.
func startRetentionLoop(srv *core.Server, events db.EventStore, retentionDays int, clock types.Clock, logger *slog.Logger) {
	ctx, cancel := context.WithCancel(context.Background())
	srv.Closers = append(srv.Closers, func() error {
		cancel()
		return nil
	})

	go func() {
		ticker := time.NewTicker(24 * time.Hour)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				cutoff := clock.Now().AddDate(0, 0, -retentionDays)
				removed, err := events.Prune(ctx, cutoff)
				if err != nil {
					logger.Error("event retention prune failed", "error", err)
					continue
				}
				logger.Info("event retention prune complete",
					"removed", removed, "cutoff", cutoff.Format("2006-01-02"))
			}
		}
	}()
}

// runHTTPServer serves until a shutdown signal or server error, then drains
// with a 10-second deadline.
func runHTTPServer(srv *core.Server, cfg *config.Config, logger *slog.Logger) error {
	addr := ":" + cfg.Server.Port

	httpServer := &http.Server{
		Addr:              addr,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
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
		return fmt.Errorf("http server shutdown: %w", err)
	}
	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("server resource shutdown: %w", err)
	}

	logger.Info("shutdown complete")
	return nil
}

func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "info":
		lvl = slog.LevelInfo
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}

	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl}))
}
