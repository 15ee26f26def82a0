package domain

import "time"

// LogLevel classifies the severity of a log record.
type LogLevel string

const (
	LevelDebug LogLevel = "debug"
	LevelInfo  LogLevel = "info"
	LevelWarn  LogLevel = "warn"
	LevelError LogLevel = "error"
)

// LogRecord is a single structured log entry. Records are immutable once
// created; the owning buffer hands out copies only.
type LogRecord struct {
	Timestamp time.Time      `json:"timestamp"`
	Level     LogLevel       `json:"level"`
	Message   string         `json:"message"`
	Context   string         `json:"context,omitempty"`
	Data      map[string]any `json:"data,omitempty"`
	UserID    string         `json:"user_id,omitempty"`
	SessionID string         `json:"session_id"`
}
