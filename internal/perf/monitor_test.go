package perf

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/pulseobs/pulse/internal/core/domain"
	"github.com/pulseobs/pulse/internal/logging"
)

// =============================================================================
// Fake Source
// =============================================================================

type fakeSource struct {
	mu          sync.Mutex
	callbacks   map[domain.PerfSignal]func(domain.PerfEntry)
	unsupported map[domain.PerfSignal]bool
	unsubscribe map[domain.PerfSignal]int
}

func newFakeSource() *fakeSource {
	return &fakeSource{
		callbacks:   make(map[domain.PerfSignal]func(domain.PerfEntry)),
		unsupported: make(map[domain.PerfSignal]bool),
		unsubscribe: make(map[domain.PerfSignal]int),
	}
}

func (s *fakeSource) Observe(
	signal domain.PerfSignal,
	fn func(domain.PerfEntry),
) (Unsubscribe, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.unsupported[signal] {
		return nil, errors.New("signal not supported")
	}
	s.callbacks[signal] = fn
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.unsubscribe[signal]++
		delete(s.callbacks, signal)
	}, nil
}

func (s *fakeSource) emit(signal domain.PerfSignal, value float64) {
	s.mu.Lock()
	fn := s.callbacks[signal]
	s.mu.Unlock()
	if fn != nil {
		fn(domain.PerfEntry{Signal: signal, Value: value, Timestamp: time.Now()})
	}
}

func (s *fakeSource) subscribed() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.callbacks)
}

// =============================================================================
// Tests
// =============================================================================

func TestMonitor_ObservesAllSignals(t *testing.T) {
	log := logging.New(nil, false)
	source := newFakeSource()
	monitor := NewMonitor(log, source, nil, time.Minute)

	monitor.Initialize()
	defer monitor.Destroy()

	if source.subscribed() != len(observedSignals) {
		t.Fatalf("expected %d subscriptions, got %d", len(observedSignals), source.subscribed())
	}

	source.emit(domain.SignalLargestContentfulPaint, 1234)

	found := false
	for _, r := range log.Recent(0) {
		if r.Message == "performance entry" && r.Data["signal"] == string(domain.SignalLargestContentfulPaint) {
			found = true
		}
	}
	if !found {
		t.Error("expected the emitted entry logged immediately")
	}
}

func TestMonitor_UnsupportedSignalDegradesSilently(t *testing.T) {
	log := logging.New(nil, false)
	source := newFakeSource()
	source.unsupported[domain.SignalFirstInput] = true
	monitor := NewMonitor(log, source, nil, time.Minute)

	monitor.Initialize()
	defer monitor.Destroy()

	// One unsupported signal must not prevent the others
	if source.subscribed() != len(observedSignals)-1 {
		t.Errorf("expected %d subscriptions, got %d", len(observedSignals)-1, source.subscribed())
	}
}

func TestMonitor_DestroyUnsubscribesOnce(t *testing.T) {
	log := logging.New(nil, false)
	source := newFakeSource()
	monitor := NewMonitor(log, source, nil, time.Minute)

	monitor.Initialize()
	monitor.Destroy()
	monitor.Destroy() // idempotent

	for _, signal := range observedSignals {
		if n := source.unsubscribe[signal]; n != 1 {
			t.Errorf("signal %s: expected 1 unsubscribe, got %d", signal, n)
		}
	}
}

func TestMonitor_NilSourceTolerated(t *testing.T) {
	log := logging.New(nil, false)
	monitor := NewMonitor(log, nil, nil, time.Minute)

	monitor.Initialize()
	monitor.Destroy()
}

func TestMonitor_MemorySampler(t *testing.T) {
	log := logging.New(nil, false)
	monitor := NewMonitor(log, nil, RuntimeMemory{}, 10*time.Millisecond)

	monitor.Initialize()
	defer monitor.Destroy()

	deadline := time.After(2 * time.Second)
	for {
		found := false
		for _, r := range log.Recent(0) {
			if r.Message == "memory sample" {
				found = true
			}
		}
		if found {
			return
		}
		select {
		case <-deadline:
			t.Fatal("expected a memory sample logged")
		case <-time.After(10 * time.Millisecond):
		}
	}
}

func TestMonitor_ReinitializeAfterDestroy(t *testing.T) {
	log := logging.New(nil, false)
	source := newFakeSource()
	monitor := NewMonitor(log, source, nil, time.Minute)

	monitor.Initialize()
	monitor.Destroy()
	monitor.Initialize()
	defer monitor.Destroy()

	if source.subscribed() != len(observedSignals) {
		t.Errorf("expected fresh subscriptions, got %d", source.subscribed())
	}
}
