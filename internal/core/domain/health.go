package domain

import "time"

// HealthStatus represents the aggregated health state of the client runtime.
type HealthStatus string

const (
	StatusHealthy   HealthStatus = "healthy"
	StatusDegraded  HealthStatus = "degraded"
	StatusUnhealthy HealthStatus = "unhealthy"
)

// ProbeResults holds the outcome of each individual health probe.
type ProbeResults struct {
	Environment bool `json:"environment"`
	Remote      bool `json:"remote"`
	Storage     bool `json:"storage"`
}

// HealthCheck is the derived result of one composite health check run.
type HealthCheck struct {
	Status    HealthStatus `json:"status"`
	Timestamp time.Time    `json:"timestamp"`
	Checks    ProbeResults `json:"checks"`
	Errors    []string     `json:"errors,omitempty"`
}

// AggregateStatus derives the overall status from probe results:
// healthy iff all probes pass, unhealthy iff all fail, degraded otherwise.
func AggregateStatus(checks ProbeResults) HealthStatus {
	passed := 0
	if checks.Environment {
		passed++
	}
	if checks.Remote {
		passed++
	}
	if checks.Storage {
		passed++
	}
	switch passed {
	case 3:
		return StatusHealthy
	case 0:
		return StatusUnhealthy
	default:
		return StatusDegraded
	}
}

// ConnectionStatus is the read model exposed to the UI for connectivity display.
type ConnectionStatus struct {
	Connected bool      `json:"connected"`
	CheckedAt time.Time `json:"checked_at"`
}
