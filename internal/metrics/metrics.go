package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// LogRecords tracks structured log records by level
	LogRecords = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pulse_log_records_total",
			Help: "Total number of structured log records",
		},
		[]string{"level"},
	)

	// AppErrors tracks constructed application errors by kind
	AppErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pulse_app_errors_total",
			Help: "Total number of classified application errors",
		},
		[]string{"kind"},
	)

	// RetryAttempts tracks retry engine attempts by outcome
	RetryAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pulse_retry_attempts_total",
			Help: "Total number of retry engine attempts",
		},
		[]string{"outcome"},
	)

	// RetriesExhausted tracks operations that failed all retry attempts
	RetriesExhausted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "pulse_retries_exhausted_total",
			Help: "Total number of operations that exhausted all retry attempts",
		},
	)

	// HealthChecks tracks composite health check runs by resulting status
	HealthChecks = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pulse_health_checks_total",
			Help: "Total number of composite health checks",
		},
		[]string{"status"},
	)

	// HealthAlerts tracks triggered health alerts by condition
	HealthAlerts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pulse_health_alerts_total",
			Help: "Total number of triggered health alerts",
		},
		[]string{"condition"},
	)

	// SessionsStarted tracks started user sessions
	SessionsStarted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "pulse_sessions_started_total",
			Help: "Total number of started user sessions",
		},
	)

	// SessionsEnded tracks ended user sessions
	SessionsEnded = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "pulse_sessions_ended_total",
			Help: "Total number of ended user sessions",
		},
	)

	// Interactions tracks tracked user interactions by type
	Interactions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pulse_session_interactions_total",
			Help: "Total number of tracked user interactions",
		},
		[]string{"type"},
	)

	// RecoveryAttempts tracks recovery coordinator attempts by outcome
	RecoveryAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pulse_recovery_attempts_total",
			Help: "Total number of recovery attempts",
		},
		[]string{"outcome"},
	)

	// PerfEntries tracks observed performance telemetry entries by signal
	PerfEntries = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pulse_perf_entries_total",
			Help: "Total number of observed performance entries",
		},
		[]string{"signal"},
	)

	// MemoryUsageRatio exposes the most recent sampled memory used/limit ratio
	MemoryUsageRatio = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "pulse_memory_usage_ratio",
			Help: "Most recent sampled memory used/limit ratio",
		},
	)
)
