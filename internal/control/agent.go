// Package control wires the observability components together and manages
// their lifecycle. All instances are explicitly constructed and dependency
// injected; there are no module-level singletons.
package control

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/pressly/goose/v3"

	"github.com/pulseobs/pulse/internal/faults"
	"github.com/pulseobs/pulse/internal/health"
	"github.com/pulseobs/pulse/internal/infra/analytics"
	"github.com/pulseobs/pulse/internal/infra/kvstore"
	"github.com/pulseobs/pulse/internal/infra/remote"
	"github.com/pulseobs/pulse/internal/logging"
	"github.com/pulseobs/pulse/internal/perf"
	"github.com/pulseobs/pulse/internal/recovery"
	"github.com/pulseobs/pulse/internal/session"
)

// Config holds the agent configuration.
type Config struct {
	Port            int
	PersistDebugLog bool

	Remote    remote.Config
	Redis     kvstore.RedisConfig
	Database  analytics.PostgresConfig
	Analytics analytics.HTTPConfig

	HealthInterval   time.Duration
	HealthThresholds health.Thresholds
	RequiredEnv      []string

	SampleInterval time.Duration
	InitialPage    string

	RecoveryMaxAttempts int
	RecoveryCooldown    time.Duration

	// PerfSource is the runtime telemetry registration API; nil when the
	// runtime exposes no performance signals.
	PerfSource perf.Source
}

// Agent is the process-wide context object holding every observability
// component.
type Agent struct {
	cfg Config

	store   kvstore.Store
	archive *analytics.PostgresArchive

	log      *logging.Logger
	faults   *faults.Handler
	monitor  *health.Monitor
	server   *health.Server
	perfMon  *perf.Monitor
	tracker  *session.Tracker
	recovery *recovery.Coordinator
}

// NewAgent creates an agent with all dependencies initialized.
func NewAgent(cfg Config) (*Agent, error) {
	// 1. Local store
	var store kvstore.Store
	if cfg.Redis.URL != "" {
		redisStore, err := kvstore.NewRedis(cfg.Redis)
		if err != nil {
			return nil, fmt.Errorf("failed to init redis store: %w", err)
		}
		store = redisStore
		slog.Info("Using Redis local store")
	} else {
		store = kvstore.NewMemory()
		slog.Info("Using memory local store")
	}

	// 2. Logger and fault handler
	log := logging.New(store, cfg.PersistDebugLog)
	faultHandler := faults.NewHandler(log)

	// 3. Health checker, monitor, server
	remoteClient := remote.NewClient(cfg.Remote)
	checker := health.NewChecker(log, store, remoteClient, cfg.RequiredEnv)
	monitor := health.NewMonitor(
		checker,
		log,
		perf.RuntimeMemory{},
		cfg.HealthInterval,
		cfg.HealthThresholds,
	)
	server := health.NewServer(monitor, cfg.Port)

	// 4. Analytics sink: durable archive when a database is configured,
	// HTTP collector otherwise, none when neither is set.
	var sink analytics.Sink
	var archive *analytics.PostgresArchive
	if cfg.Database.URL != "" {
		var err error
		archive, err = analytics.NewPostgresArchive(context.Background(), cfg.Database)
		if err != nil {
			return nil, fmt.Errorf("failed to init session archive: %w", err)
		}

		// Run migrations
		if err := goose.SetDialect("postgres"); err != nil {
			return nil, err
		}
		if err := goose.Up(archive.DB().DB, "migrations"); err != nil {
			return nil, fmt.Errorf("failed to migrate session archive: %w", err)
		}

		sink = archive
		slog.Info("Using PostgreSQL session archive")
	} else if cfg.Analytics.URL != "" {
		sink = analytics.NewHTTPSink(cfg.Analytics)
		slog.Info("Using HTTP analytics sink", "url", cfg.Analytics.URL)
	}

	// 5. Performance and session tracking
	perfMon := perf.NewMonitor(log, cfg.PerfSource, perf.RuntimeMemory{}, cfg.SampleInterval)
	tracker := session.NewTracker(log, sink, cfg.InitialPage)
	coordinator := recovery.NewCoordinator(log, cfg.RecoveryMaxAttempts, cfg.RecoveryCooldown)

	return &Agent{
		cfg:      cfg,
		store:    store,
		archive:  archive,
		log:      log,
		faults:   faultHandler,
		monitor:  monitor,
		server:   server,
		perfMon:  perfMon,
		tracker:  tracker,
		recovery: coordinator,
	}, nil
}

// Start launches the monitors, the health server, and the initial session.
func (a *Agent) Start(ctx context.Context) error {
	a.perfMon.Initialize()

	go func() {
		defer a.faults.Recover("control")
		a.monitor.Run(ctx)
	}()

	go func() {
		defer a.faults.Recover("control")
		if err := a.server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.log.Error("health server stopped", "control", map[string]any{
				"error": err.Error(),
			})
		}
	}()

	if err := a.tracker.StartSession("", false); err != nil {
		return fmt.Errorf("failed to start session: %w", err)
	}

	a.log.Info("agent started", "control", map[string]any{"port": a.cfg.Port})
	return nil
}

// Stop is the teardown lifecycle hook: it seals the active session,
// disconnects performance observers, and shuts down the server and stores.
func (a *Agent) Stop(ctx context.Context) error {
	a.tracker.EndSession()
	a.perfMon.Destroy()

	if err := a.server.Stop(ctx); err != nil {
		return fmt.Errorf("failed to stop health server: %w", err)
	}

	if a.archive != nil {
		if err := a.archive.Close(); err != nil {
			a.log.Warn("failed to close session archive", "control", map[string]any{
				"error": err.Error(),
			})
		}
	}
	if err := a.store.Close(); err != nil {
		a.log.Warn("failed to close local store", "control", map[string]any{
			"error": err.Error(),
		})
	}

	a.log.Info("agent stopped", "control", nil)
	return nil
}

// Logger returns the shared structured logger.
func (a *Agent) Logger() *logging.Logger { return a.log }

// Faults returns the process-root fault handler.
func (a *Agent) Faults() *faults.Handler { return a.faults }

// Health returns the health monitor read model owner.
func (a *Agent) Health() *health.Monitor { return a.monitor }

// Sessions returns the session tracker for UI event handlers.
func (a *Agent) Sessions() *session.Tracker { return a.tracker }

// Recovery returns the recovery coordinator.
func (a *Agent) Recovery() *recovery.Coordinator { return a.recovery }
