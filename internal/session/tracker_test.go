package session

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/pulseobs/pulse/internal/core/domain"
	"github.com/pulseobs/pulse/internal/logging"
)

// =============================================================================
// Mock Sink
// =============================================================================

type mockSink struct {
	delivered chan *domain.UserSession
	err       error
}

func newMockSink() *mockSink {
	return &mockSink{delivered: make(chan *domain.UserSession, 4)}
}

func (s *mockSink) Deliver(ctx context.Context, session *domain.UserSession) error {
	s.delivered <- session
	return s.err
}

func (s *mockSink) wait(t *testing.T) *domain.UserSession {
	t.Helper()
	select {
	case sealed := <-s.delivered:
		return sealed
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for sink delivery")
		return nil
	}
}

// =============================================================================
// Tests
// =============================================================================

func TestTracker_Lifecycle(t *testing.T) {
	log := logging.New(nil, false)
	tracker := NewTracker(log, nil, "/")

	if err := tracker.StartSession("user-1", false); err != nil {
		t.Fatalf("failed to start session: %v", err)
	}

	for i := 0; i < 3; i++ {
		tracker.TrackInteraction(domain.InteractionClick, fmt.Sprintf("btn-%d", i), nil)
	}
	tracker.TrackPageView("/exam/1")

	sealed := tracker.EndSession()
	if sealed == nil {
		t.Fatal("expected a sealed session")
	}

	if len(sealed.Interactions) != 3 {
		t.Errorf("expected 3 interactions, got %d", len(sealed.Interactions))
	}
	if len(sealed.PageViews) != 2 || sealed.PageViews[0] != "/" || sealed.PageViews[1] != "/exam/1" {
		t.Errorf("unexpected page views: %v", sealed.PageViews)
	}
	if sealed.EndTime == nil {
		t.Fatal("expected a non-nil end time")
	}
	if sealed.EndTime.Before(sealed.StartTime) {
		t.Error("end time precedes start time")
	}
	if sealed.UserID != "user-1" {
		t.Errorf("expected user-1, got %s", sealed.UserID)
	}

	if _, active := tracker.Current(); active {
		t.Error("expected state cleared after end")
	}
}

func TestTracker_StartWhileActive(t *testing.T) {
	log := logging.New(nil, false)
	tracker := NewTracker(log, nil, "/")

	if err := tracker.StartSession("user-1", false); err != nil {
		t.Fatalf("failed to start session: %v", err)
	}

	err := tracker.StartSession("user-2", false)
	if err == nil {
		t.Fatal("expected an error starting over an active session")
	}
	if !errors.Is(err, ErrSessionActive) {
		t.Errorf("expected ErrSessionActive, got %v", err)
	}

	// The original session is untouched
	current, active := tracker.Current()
	if !active || current.UserID != "user-1" {
		t.Errorf("expected the original session intact, got %+v", current)
	}
}

func TestTracker_StartWithReplace(t *testing.T) {
	log := logging.New(nil, false)
	sink := newMockSink()
	tracker := NewTracker(log, sink, "/")

	_ = tracker.StartSession("user-1", false)
	first, _ := tracker.Current()

	if err := tracker.StartSession("user-2", true); err != nil {
		t.Fatalf("replace start failed: %v", err)
	}

	// The prior session is sealed and emitted, not discarded
	sealed := sink.wait(t)
	if sealed.SessionID != first.SessionID {
		t.Errorf("expected the replaced session emitted, got %s", sealed.SessionID)
	}
	if sealed.EndTime == nil {
		t.Error("expected the replaced session sealed")
	}

	current, active := tracker.Current()
	if !active || current.UserID != "user-2" {
		t.Errorf("expected the new session active, got %+v", current)
	}
	if current.SessionID == first.SessionID {
		t.Error("expected a fresh session id")
	}
}

func TestTracker_InteractionCap(t *testing.T) {
	log := logging.New(nil, false)
	tracker := NewTracker(log, nil, "/")
	_ = tracker.StartSession("", false)

	for i := 0; i < 150; i++ {
		tracker.TrackInteraction(domain.InteractionScroll, fmt.Sprintf("el-%d", i), nil)
	}

	sealed := tracker.EndSession()
	if len(sealed.Interactions) != InteractionCap {
		t.Fatalf("expected %d interactions, got %d", InteractionCap, len(sealed.Interactions))
	}
	if sealed.Interactions[0].Element != "el-50" {
		t.Errorf("expected oldest surviving interaction el-50, got %s", sealed.Interactions[0].Element)
	}
	if sealed.Interactions[InteractionCap-1].Element != "el-149" {
		t.Errorf("expected newest interaction el-149, got %s",
			sealed.Interactions[InteractionCap-1].Element)
	}
}

func TestTracker_ErrorCap(t *testing.T) {
	log := logging.New(nil, false)
	tracker := NewTracker(log, nil, "/")
	_ = tracker.StartSession("", false)

	for i := 0; i < 60; i++ {
		tracker.TrackError(fmt.Errorf("failure %d", i), "test")
	}

	sealed := tracker.EndSession()
	if len(sealed.Errors) != ErrorCap {
		t.Fatalf("expected %d errors, got %d", ErrorCap, len(sealed.Errors))
	}
	if sealed.Errors[0].Message != "failure 10" {
		t.Errorf("expected oldest surviving error 'failure 10', got %q", sealed.Errors[0].Message)
	}
	if sealed.Errors[0].SessionID != sealed.SessionID {
		t.Error("expected error events associated with the session id")
	}
}

func TestTracker_NoopWithoutSession(t *testing.T) {
	log := logging.New(nil, false)
	tracker := NewTracker(log, nil, "/")

	tracker.TrackInteraction(domain.InteractionClick, "btn", nil)
	tracker.TrackPageView("/nowhere")
	tracker.TrackError(errors.New("stray"), "test")

	if sealed := tracker.EndSession(); sealed != nil {
		t.Errorf("expected nil sealed session, got %+v", sealed)
	}
}

func TestTracker_SinkFailureIsLoggedNotRaised(t *testing.T) {
	log := logging.New(nil, false)
	sink := newMockSink()
	sink.err = errors.New("collector down")
	tracker := NewTracker(log, sink, "/")

	_ = tracker.StartSession("", false)
	sealed := tracker.EndSession()
	if sealed == nil {
		t.Fatal("expected a sealed session despite sink failure")
	}
	sink.wait(t)

	// Delivery failure surfaces in the log only
	deadline := time.After(2 * time.Second)
	for {
		found := false
		for _, r := range log.Recent(0) {
			if r.Message == "failed to deliver session to analytics sink" {
				found = true
			}
		}
		if found {
			break
		}
		select {
		case <-deadline:
			t.Fatal("expected the delivery failure logged")
		case <-time.After(10 * time.Millisecond):
		}
	}
}
