package perf

import (
	"sync"
	"time"

	"github.com/pulseobs/pulse/internal/core/domain"
	"github.com/pulseobs/pulse/internal/logging"
	"github.com/pulseobs/pulse/internal/metrics"
)

// observedSignals are subscribed independently; one unsupported signal must
// not prevent the others from being observed.
var observedSignals = []domain.PerfSignal{
	domain.SignalFirstContentfulPaint,
	domain.SignalLargestContentfulPaint,
	domain.SignalFirstInput,
	domain.SignalLayoutShift,
}

// Monitor observes performance signal streams and runs a periodic memory
// sampler. Entries are logged immediately on emission, without batching.
type Monitor struct {
	log            *logging.Logger
	source         Source
	mem            MemoryReader
	sampleInterval time.Duration

	mu      sync.Mutex
	unsubs  []Unsubscribe
	stop    chan struct{}
	running bool
}

// MemoryReader exposes optional memory telemetry; see health.MemoryReader.
type MemoryReader interface {
	Read() (domain.MemorySnapshot, bool)
}

// NewMonitor creates a performance monitor. source and mem may be nil when
// the runtime exposes no telemetry; the monitor degrades silently.
func NewMonitor(
	log *logging.Logger,
	source Source,
	mem MemoryReader,
	sampleInterval time.Duration,
) *Monitor {
	if sampleInterval <= 0 {
		sampleInterval = 30 * time.Second
	}
	return &Monitor{
		log:            log,
		source:         source,
		mem:            mem,
		sampleInterval: sampleInterval,
	}
}

// Initialize subscribes to every supported signal and starts the memory
// sampler. Per-signal subscription failures degrade silently.
func (m *Monitor) Initialize() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.running {
		return
	}
	m.running = true
	m.stop = make(chan struct{})

	if m.source != nil {
		for _, signal := range observedSignals {
			un, err := m.source.Observe(signal, m.handleEntry)
			if err != nil {
				m.log.Debug("performance signal unavailable", "performance", map[string]any{
					"signal": string(signal),
					"error":  err.Error(),
				})
				continue
			}
			m.unsubs = append(m.unsubs, un)
		}
	}

	if m.mem != nil {
		go m.sampleMemory(m.stop)
	}
}

// Destroy unsubscribes all observers and stops the sampler. Safe to call
// multiple times.
func (m *Monitor) Destroy() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.running {
		return
	}
	m.running = false

	for _, un := range m.unsubs {
		un()
	}
	m.unsubs = nil
	close(m.stop)
}

func (m *Monitor) handleEntry(entry domain.PerfEntry) {
	metrics.PerfEntries.WithLabelValues(string(entry.Signal)).Inc()
	m.log.Info("performance entry", "performance", map[string]any{
		"signal": string(entry.Signal),
		"value":  entry.Value,
	})
}

func (m *Monitor) sampleMemory(stop <-chan struct{}) {
	ticker := time.NewTicker(m.sampleInterval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			snapshot, ok := m.mem.Read()
			if !ok {
				continue
			}
			metrics.MemoryUsageRatio.Set(snapshot.UsageRatio())
			m.log.Debug("memory sample", "performance", map[string]any{
				"used":  snapshot.Used,
				"total": snapshot.Total,
				"limit": snapshot.Limit,
			})
		}
	}
}
