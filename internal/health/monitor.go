package health

import (
	"context"
	"sync"
	"time"

	"github.com/pulseobs/pulse/internal/core/domain"
	"github.com/pulseobs/pulse/internal/logging"
	"github.com/pulseobs/pulse/internal/metrics"
)

const (
	// HistoryCap bounds the retained check history; oldest evicted first.
	HistoryCap = 100

	// alertWindow is how many recent checks alert conditions consider.
	alertWindow = 10
)

// CompositeChecker runs one composite health check.
type CompositeChecker interface {
	Check(ctx context.Context) domain.HealthCheck
}

// MemoryReader exposes optional runtime memory telemetry. ok is false when
// the runtime has no memory accessor.
type MemoryReader interface {
	Read() (snapshot domain.MemorySnapshot, ok bool)
}

// Thresholds holds the alert thresholds.
type Thresholds struct {
	// ErrorRate is the maximum tolerated unhealthy fraction over the
	// alert window.
	ErrorRate float64 `yaml:"error_rate"`
	// MemoryUsage is the maximum tolerated used/limit ratio.
	MemoryUsage float64 `yaml:"memory_usage"`
}

// DefaultThresholds per the alerting contract: 5% error rate, 80% memory.
var DefaultThresholds = Thresholds{
	ErrorRate:   0.05,
	MemoryUsage: 0.80,
}

// ThresholdOverrides carries partial threshold updates; nil fields keep the
// current value.
type ThresholdOverrides struct {
	ErrorRate   *float64
	MemoryUsage *float64
}

// Monitor runs the checker on a fixed cadence, retains bounded history, and
// evaluates alert conditions over the most recent checks.
type Monitor struct {
	checker  CompositeChecker
	log      *logging.Logger
	mem      MemoryReader
	interval time.Duration

	mu         sync.Mutex
	thresholds Thresholds
	history    []domain.HealthCheck
}

// NewMonitor creates a health monitor. mem may be nil when the runtime
// exposes no memory telemetry. interval <= 0 falls back to 60s.
func NewMonitor(
	checker CompositeChecker,
	log *logging.Logger,
	mem MemoryReader,
	interval time.Duration,
	thresholds Thresholds,
) *Monitor {
	if interval <= 0 {
		interval = 60 * time.Second
	}
	if thresholds.ErrorRate <= 0 {
		thresholds.ErrorRate = DefaultThresholds.ErrorRate
	}
	if thresholds.MemoryUsage <= 0 {
		thresholds.MemoryUsage = DefaultThresholds.MemoryUsage
	}
	return &Monitor{
		checker:    checker,
		log:        log,
		mem:        mem,
		interval:   interval,
		thresholds: thresholds,
		history:    make([]domain.HealthCheck, 0, HistoryCap),
	}
}

// CheckHealth runs one composite check, appends it to history, and evaluates
// alert conditions.
func (m *Monitor) CheckHealth(ctx context.Context) domain.HealthCheck {
	check := m.checker.Check(ctx)
	metrics.HealthChecks.WithLabelValues(string(check.Status)).Inc()

	m.mu.Lock()
	m.history = append(m.history, check)
	if len(m.history) > HistoryCap {
		m.history = m.history[len(m.history)-HistoryCap:]
	}
	alerts := m.evaluateAlertsLocked()
	m.mu.Unlock()

	if len(alerts) > 0 {
		for _, condition := range alerts {
			metrics.HealthAlerts.WithLabelValues(condition).Inc()
		}
		m.log.Error("health alert triggered", "health", map[string]any{
			"conditions": alerts,
			"status":     string(check.Status),
			"errors":     check.Errors,
		})
	}

	return check
}

// Run invokes CheckHealth on the configured cadence until ctx is canceled.
func (m *Monitor) Run(ctx context.Context) {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.CheckHealth(ctx)
		}
	}
}

// SetThresholds merges partial overrides into the current thresholds.
func (m *Monitor) SetThresholds(overrides ThresholdOverrides) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if overrides.ErrorRate != nil {
		m.thresholds.ErrorRate = *overrides.ErrorRate
	}
	if overrides.MemoryUsage != nil {
		m.thresholds.MemoryUsage = *overrides.MemoryUsage
	}
}

// Thresholds returns the current alert thresholds.
func (m *Monitor) Thresholds() Thresholds {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.thresholds
}

// History returns copies of the retained checks in call order.
func (m *Monitor) History() []domain.HealthCheck {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]domain.HealthCheck, len(m.history))
	copy(out, m.history)
	return out
}

// Latest returns the most recent check, if any.
func (m *Monitor) Latest() (domain.HealthCheck, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.history) == 0 {
		return domain.HealthCheck{}, false
	}
	return m.history[len(m.history)-1], true
}

// ConnectionStatus derives the UI connectivity read model from the latest
// check's remote probe.
func (m *Monitor) ConnectionStatus() domain.ConnectionStatus {
	check, ok := m.Latest()
	if !ok {
		return domain.ConnectionStatus{}
	}
	return domain.ConnectionStatus{
		Connected: check.Checks.Remote,
		CheckedAt: check.Timestamp,
	}
}

// evaluateAlertsLocked checks alert conditions over the most recent window.
// Caller must hold m.mu.
func (m *Monitor) evaluateAlertsLocked() []string {
	var alerts []string

	recent := m.history
	if len(recent) > alertWindow {
		recent = recent[len(recent)-alertWindow:]
	}
	if len(recent) > 0 {
		unhealthy := 0
		for _, c := range recent {
			if c.Status == domain.StatusUnhealthy {
				unhealthy++
			}
		}
		rate := float64(unhealthy) / float64(len(recent))
		if rate > m.thresholds.ErrorRate {
			alerts = append(alerts, "error-rate")
		}
	}

	if m.mem != nil {
		if snapshot, ok := m.mem.Read(); ok {
			ratio := snapshot.UsageRatio()
			metrics.MemoryUsageRatio.Set(ratio)
			if ratio > m.thresholds.MemoryUsage {
				alerts = append(alerts, "memory-pressure")
			}
		}
	}

	return alerts
}
