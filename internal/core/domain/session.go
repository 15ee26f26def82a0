package domain

import "time"

// InteractionType classifies a tracked user interaction.
type InteractionType string

const (
	InteractionClick      InteractionType = "click"
	InteractionScroll     InteractionType = "scroll"
	InteractionInput      InteractionType = "input"
	InteractionNavigation InteractionType = "navigation"
)

// UserInteraction is a single tracked interaction within a session.
type UserInteraction struct {
	Type      InteractionType `json:"type"`
	Element   string          `json:"element,omitempty"`
	Data      map[string]any  `json:"data,omitempty"`
	Timestamp time.Time       `json:"timestamp"`
}

// ErrorEvent is an error observed during a session, kept in the session's
// bounded error log.
type ErrorEvent struct {
	Message   string    `json:"message"`
	Code      string    `json:"code,omitempty"`
	Context   string    `json:"context,omitempty"`
	SessionID string    `json:"session_id"`
	Timestamp time.Time `json:"timestamp"`
}

// UserSession covers one continuous span of user activity from start signal
// to end signal. Interactions and errors are bounded FIFO logs owned by the
// session tracker.
type UserSession struct {
	SessionID    string            `json:"session_id"`
	UserID       string            `json:"user_id,omitempty"`
	StartTime    time.Time         `json:"start_time"`
	EndTime      *time.Time        `json:"end_time,omitempty"`
	PageViews    []string          `json:"page_views"`
	Interactions []UserInteraction `json:"interactions"`
	Errors       []ErrorEvent      `json:"errors"`
}

// Duration returns the session length, or the elapsed time so far for a
// session that has not ended.
func (s *UserSession) Duration() time.Duration {
	if s.EndTime != nil {
		return s.EndTime.Sub(s.StartTime)
	}
	return time.Since(s.StartTime)
}
