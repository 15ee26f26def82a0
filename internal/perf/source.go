// Package perf subscribes to runtime performance signals and samples memory
// telemetry on a fixed cadence.
package perf

import (
	"runtime"

	"github.com/pulseobs/pulse/internal/core/domain"
)

// Unsubscribe detaches one signal observer.
type Unsubscribe func()

// Source is the runtime telemetry registration API. Observe attaches a
// callback to a named signal stream; unsupported signals return an error.
type Source interface {
	Observe(signal domain.PerfSignal, fn func(domain.PerfEntry)) (Unsubscribe, error)
}

// RuntimeMemory reads memory telemetry from the Go runtime.
type RuntimeMemory struct{}

// Read reports heap usage against the memory obtained from the OS.
func (RuntimeMemory) Read() (domain.MemorySnapshot, bool) {
	var stats runtime.MemStats
	runtime.ReadMemStats(&stats)
	return domain.MemorySnapshot{
		Used:  stats.HeapAlloc,
		Total: stats.HeapSys,
		Limit: stats.Sys,
	}, true
}
