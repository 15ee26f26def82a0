package domain

import "time"

// PerfSignal names a runtime performance signal stream.
type PerfSignal string

const (
	SignalFirstContentfulPaint   PerfSignal = "first-contentful-paint"
	SignalLargestContentfulPaint PerfSignal = "largest-contentful-paint"
	SignalFirstInput             PerfSignal = "first-input"
	SignalLayoutShift            PerfSignal = "layout-shift"
)

// PerfEntry is one timestamped measurement delivered by a signal stream.
type PerfEntry struct {
	Signal    PerfSignal `json:"signal"`
	Value     float64    `json:"value"`
	Timestamp time.Time  `json:"timestamp"`
}

// MemorySnapshot is a point-in-time view of runtime memory telemetry.
// Runtimes that expose no memory accessor simply never produce one.
type MemorySnapshot struct {
	Used  uint64 `json:"used"`
	Total uint64 `json:"total"`
	Limit uint64 `json:"limit"`
}

// UsageRatio returns used/limit, or 0 when no limit is known.
func (s MemorySnapshot) UsageRatio() float64 {
	if s.Limit == 0 {
		return 0
	}
	return float64(s.Used) / float64(s.Limit)
}
