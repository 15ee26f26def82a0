// Package session owns the lifecycle of one user session: start, bounded
// interaction and error logs, and end with summary emission.
package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/pulseobs/pulse/internal/core/domain"
	"github.com/pulseobs/pulse/internal/errs"
	"github.com/pulseobs/pulse/internal/infra/analytics"
	"github.com/pulseobs/pulse/internal/logging"
	"github.com/pulseobs/pulse/internal/metrics"
)

const (
	// InteractionCap bounds the per-session interaction log.
	InteractionCap = 100
	// ErrorCap bounds the per-session error log.
	ErrorCap = 50

	deliveryWindow = 5 * time.Second
)

// ErrSessionActive is returned when a session is started while another is
// still open and replace was not requested.
var ErrSessionActive = errors.New("session already active")

// Tracker tracks at most one active session at a time. All methods are safe
// for concurrent use; appends are ordered by call order.
type Tracker struct {
	log         *logging.Logger
	sink        analytics.Sink
	initialPage string

	mu      sync.Mutex
	current *domain.UserSession
}

// NewTracker creates a session tracker. sink may be nil, in which case sealed
// sessions are only logged. initialPage seeds the page-view log on start.
func NewTracker(log *logging.Logger, sink analytics.Sink, initialPage string) *Tracker {
	if initialPage == "" {
		initialPage = "/"
	}
	return &Tracker{
		log:         log,
		sink:        sink,
		initialPage: initialPage,
	}
}

// StartSession opens a new session. Starting while a session is active is an
// error unless replace is set, in which case the prior session is sealed and
// emitted first.
func (t *Tracker) StartSession(userID string, replace bool) error {
	t.mu.Lock()
	if t.current != nil {
		if !replace {
			t.mu.Unlock()
			return errs.Classify(t.log, ErrSessionActive, "session")
		}
		t.endLocked()
	}

	session := &domain.UserSession{
		SessionID: uuid.New().String(),
		UserID:    userID,
		StartTime: time.Now(),
		PageViews: []string{t.initialPage},
	}
	t.current = session
	t.mu.Unlock()

	metrics.SessionsStarted.Inc()
	t.log.Info("session started", "session", map[string]any{
		"session_id": session.SessionID,
		"user_id":    userID,
	})
	return nil
}

// TrackInteraction appends to the bounded interaction log. No-op without an
// active session.
func (t *Tracker) TrackInteraction(
	typ domain.InteractionType,
	element string,
	data map[string]any,
) {
	t.mu.Lock()
	if t.current == nil {
		t.mu.Unlock()
		return
	}
	interaction := domain.UserInteraction{
		Type:      typ,
		Element:   element,
		Data:      logging.Sanitize(data),
		Timestamp: time.Now(),
	}
	t.current.Interactions = append(t.current.Interactions, interaction)
	if len(t.current.Interactions) > InteractionCap {
		t.current.Interactions = t.current.Interactions[len(t.current.Interactions)-InteractionCap:]
	}
	t.mu.Unlock()

	metrics.Interactions.WithLabelValues(string(typ)).Inc()
	t.log.Debug("interaction tracked", "session", map[string]any{
		"type":    string(typ),
		"element": element,
	})
}

// TrackError appends to the bounded error log, associating the current
// session id.
func (t *Tracker) TrackError(err error, logContext string) {
	appErr := errs.Classify(t.log, err, logContext)

	t.mu.Lock()
	if t.current == nil {
		t.mu.Unlock()
		return
	}
	event := domain.ErrorEvent{
		Message:   appErr.Message,
		Code:      appErr.Code,
		Context:   logContext,
		SessionID: t.current.SessionID,
		Timestamp: time.Now(),
	}
	t.current.Errors = append(t.current.Errors, event)
	if len(t.current.Errors) > ErrorCap {
		t.current.Errors = t.current.Errors[len(t.current.Errors)-ErrorCap:]
	}
	sessionID := t.current.SessionID
	t.mu.Unlock()

	t.log.Error("session error tracked", "session", map[string]any{
		"session_id": sessionID,
		"code":       appErr.Code,
		"error":      appErr.Message,
	})
}

// TrackPageView appends to the page-view log. No-op without an active session.
func (t *Tracker) TrackPageView(page string) {
	t.mu.Lock()
	if t.current == nil {
		t.mu.Unlock()
		return
	}
	t.current.PageViews = append(t.current.PageViews, page)
	t.mu.Unlock()

	t.log.Info("page view tracked", "session", map[string]any{"page": page})
}

// EndSession seals the active session, emits a summary, forwards it to the
// analytics sink fire-and-forget, and clears in-memory state. Returns the
// sealed session, or nil if none was active.
func (t *Tracker) EndSession() *domain.UserSession {
	t.mu.Lock()
	sealed := t.endLocked()
	t.mu.Unlock()
	return sealed
}

// Current returns a copy of the active session, if any. External readers
// never receive the live session.
func (t *Tracker) Current() (domain.UserSession, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.current == nil {
		return domain.UserSession{}, false
	}
	return copySession(t.current), true
}

// endLocked seals and emits the current session. Caller must hold t.mu.
func (t *Tracker) endLocked() *domain.UserSession {
	if t.current == nil {
		return nil
	}

	now := time.Now()
	t.current.EndTime = &now
	sealed := t.current
	t.current = nil

	metrics.SessionsEnded.Inc()
	t.log.Info("session ended", "session", map[string]any{
		"session_id":   sealed.SessionID,
		"duration_ms":  sealed.Duration().Milliseconds(),
		"interactions": len(sealed.Interactions),
		"errors":       len(sealed.Errors),
		"page_views":   len(sealed.PageViews),
	})

	if t.sink != nil {
		// Fire-and-forget: delivery failure is logged, never raised.
		go t.deliver(sealed)
	}
	return sealed
}

func (t *Tracker) deliver(sealed *domain.UserSession) {
	ctx, cancel := context.WithTimeout(context.Background(), deliveryWindow)
	defer cancel()

	if err := t.sink.Deliver(ctx, sealed); err != nil {
		t.log.Warn("failed to deliver session to analytics sink", "session", map[string]any{
			"session_id": sealed.SessionID,
			"error":      err.Error(),
		})
	}
}

func copySession(s *domain.UserSession) domain.UserSession {
	out := *s
	out.PageViews = append([]string(nil), s.PageViews...)
	out.Interactions = append([]domain.UserInteraction(nil), s.Interactions...)
	out.Errors = append([]domain.ErrorEvent(nil), s.Errors...)
	return out
}
