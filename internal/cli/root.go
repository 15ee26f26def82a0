package cli

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/lmittmann/tint"
	"github.com/spf13/cobra"
	"github.com/vietddude/stylelog"

	"github.com/pulseobs/pulse/internal/control"
	"github.com/pulseobs/pulse/internal/core/config"
	"github.com/pulseobs/pulse/internal/infra/analytics"
	"github.com/pulseobs/pulse/internal/infra/remote"
)

var (
	cfgPath string
	isDebug bool
)

var rootCmd = &cobra.Command{
	Use:   "pulse",
	Short: "Pulse client observability agent",
	Long:  `Pulse runs the client-side observability and resilience layer: structured logging, health monitoring with alerting, performance sampling, and session tracking.`,
	Run:   runAgent,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", "config.yaml", "config file (default is config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&isDebug, "debug", false, "enable debug logging")
}

func runAgent(cmd *cobra.Command, args []string) {
	_ = godotenv.Load()

	// Load Configuration
	cfg, err := config.Load(cfgPath)
	if err != nil {
		stylelog.InitDefault()
		slog.Error("Failed to load config", "error", err)
		os.Exit(1)
	}

	// Setup logging
	slogLevel := slog.LevelInfo
	if isDebug || cfg.Logging.Level == "debug" {
		slogLevel = slog.LevelDebug
	}

	stylelog.InitDefault(&tint.Options{
		Level:      slogLevel,
		TimeFormat: time.RFC3339,
	})

	// Transform config
	agentCfg := control.Config{
		Port:            cfg.Server.Port,
		PersistDebugLog: cfg.Logging.PersistDebugLog || isDebug,
		Remote: remote.Config{
			URL:     cfg.Remote.URL,
			Timeout: cfg.Remote.Timeout.Std(),
		},
		Redis:    cfg.Redis,
		Database: cfg.Database,
		Analytics: analytics.HTTPConfig{
			URL:     cfg.Analytics.URL,
			Timeout: cfg.Analytics.Timeout.Std(),
		},
		HealthInterval:      cfg.Health.Interval.Std(),
		HealthThresholds:    cfg.Health.Thresholds,
		RequiredEnv:         cfg.Health.RequiredEnv,
		SampleInterval:      cfg.Performance.SampleInterval.Std(),
		InitialPage:         cfg.Session.InitialPage,
		RecoveryMaxAttempts: cfg.Recovery.MaxAttempts,
		RecoveryCooldown:    cfg.Recovery.Cooldown.Std(),
	}

	// Initialize Agent
	app, err := control.NewAgent(agentCfg)
	if err != nil {
		slog.Error("Failed to initialize agent", "error", err)
		os.Exit(1)
	}

	// Setup Context with Cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle OS Signals
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	// Start Agent
	if err := app.Start(ctx); err != nil {
		slog.Error("Failed to start agent", "error", err)
		os.Exit(1)
	}

	// Wait for Signal
	sig := <-sigChan
	slog.Info("Received signal, shutting down...", "signal", sig)

	// Graceful Shutdown with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := app.Stop(shutdownCtx); err != nil {
		slog.Error("Error during shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("Agent stopped gracefully")
}
