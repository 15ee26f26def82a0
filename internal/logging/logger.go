// Package logging provides the structured logging facility: a bounded
// in-memory record buffer mirrored to the process slog sink, with optional
// best-effort persistence to the device-local store.
package logging

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/pulseobs/pulse/internal/core/domain"
	"github.com/pulseobs/pulse/internal/infra/kvstore"
	"github.com/pulseobs/pulse/internal/metrics"
)

const (
	// BufferCap bounds the in-memory record buffer; oldest records are
	// evicted first.
	BufferCap = 100

	deviceIDKey   = "pulse:device_id"
	debugLogKey   = "pulse:debug_log"
	persistWindow = 2 * time.Second
)

// Logger appends structured records to a bounded in-memory buffer and mirrors
// them to the process slog sink. Logging never fails outward: persistence and
// sink errors are swallowed.
type Logger struct {
	mu      sync.Mutex
	records []domain.LogRecord

	slog         *slog.Logger
	store        kvstore.Store
	persistDebug bool

	userID    string
	sessionID string
}

// New creates a Logger. The store may be nil, in which case device identity is
// ephemeral and no persistence is attempted. persistDebug enables the capped
// debug log snapshot in the store (non-production contexts only).
func New(store kvstore.Store, persistDebug bool) *Logger {
	return &Logger{
		records:      make([]domain.LogRecord, 0, BufferCap),
		slog:         slog.Default(),
		store:        store,
		persistDebug: persistDebug,
		userID:       deviceIdentity(store),
		sessionID:    uuid.New().String(),
	}
}

// SessionID returns the logger-lifetime session identifier.
func (l *Logger) SessionID() string {
	return l.sessionID
}

// UserID returns the stable per-device identity.
func (l *Logger) UserID() string {
	return l.userID
}

// Record appends a structured record and mirrors it to the slog sink. It
// always succeeds; the returned record is the stored copy.
func (l *Logger) Record(
	level domain.LogLevel,
	message string,
	logContext string,
	data map[string]any,
) domain.LogRecord {
	record := domain.LogRecord{
		Timestamp: time.Now(),
		Level:     level,
		Message:   message,
		Context:   logContext,
		Data:      Sanitize(data),
		UserID:    l.userID,
		SessionID: l.sessionID,
	}

	l.mu.Lock()
	l.records = append(l.records, record)
	if len(l.records) > BufferCap {
		l.records = l.records[len(l.records)-BufferCap:]
	}
	snapshot := l.snapshotLocked()
	l.mu.Unlock()

	metrics.LogRecords.WithLabelValues(string(level)).Inc()
	l.mirror(record)
	l.persist(snapshot)

	return record
}

// Debug records a debug-level message.
func (l *Logger) Debug(message, logContext string, data map[string]any) {
	l.Record(domain.LevelDebug, message, logContext, data)
}

// Info records an info-level message.
func (l *Logger) Info(message, logContext string, data map[string]any) {
	l.Record(domain.LevelInfo, message, logContext, data)
}

// Warn records a warn-level message.
func (l *Logger) Warn(message, logContext string, data map[string]any) {
	l.Record(domain.LevelWarn, message, logContext, data)
}

// Error records an error-level message.
func (l *Logger) Error(message, logContext string, data map[string]any) {
	l.Record(domain.LevelError, message, logContext, data)
}

// Recent returns copies of the most recent n records in call order. n <= 0
// returns the whole buffer.
func (l *Logger) Recent(n int) []domain.LogRecord {
	l.mu.Lock()
	defer l.mu.Unlock()
	if n <= 0 || n > len(l.records) {
		n = len(l.records)
	}
	out := make([]domain.LogRecord, n)
	copy(out, l.records[len(l.records)-n:])
	return out
}

// mirror forwards a record to the slog sink.
func (l *Logger) mirror(record domain.LogRecord) {
	attrs := []any{
		"context", record.Context,
		"session_id", record.SessionID,
	}
	if record.UserID != "" {
		attrs = append(attrs, "user_id", record.UserID)
	}
	if len(record.Data) > 0 {
		attrs = append(attrs, "data", record.Data)
	}

	switch record.Level {
	case domain.LevelDebug:
		l.slog.Debug(record.Message, attrs...)
	case domain.LevelInfo:
		l.slog.Info(record.Message, attrs...)
	case domain.LevelWarn:
		l.slog.Warn(record.Message, attrs...)
	default:
		l.slog.Error(record.Message, attrs...)
	}
}

// snapshotLocked copies the current buffer. Caller must hold l.mu.
func (l *Logger) snapshotLocked() []domain.LogRecord {
	out := make([]domain.LogRecord, len(l.records))
	copy(out, l.records)
	return out
}

// persist writes the capped record snapshot to the device store. All failures
// are swallowed; logging must be fail-safe.
func (l *Logger) persist(snapshot []domain.LogRecord) {
	if !l.persistDebug || l.store == nil {
		return
	}

	payload, err := json.Marshal(snapshot)
	if err != nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), persistWindow)
	defer cancel()
	_ = l.store.Set(ctx, debugLogKey, string(payload))
}

// deviceIdentity loads the stable per-device identifier, generating and
// storing one on first use. Store failures fall back to an ephemeral identity.
func deviceIdentity(store kvstore.Store) string {
	if store == nil {
		return "guest-" + uuid.New().String()
	}

	ctx, cancel := context.WithTimeout(context.Background(), persistWindow)
	defer cancel()

	if v, ok, err := store.Get(ctx, deviceIDKey); err == nil && ok && v != "" {
		return v
	}

	id := "guest-" + uuid.New().String()
	_ = store.Set(ctx, deviceIDKey, id)
	return id
}
