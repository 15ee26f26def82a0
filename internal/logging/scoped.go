package logging

import "github.com/pulseobs/pulse/internal/core/domain"

// Scoped is a convenience wrapper fixing the context of every record.
type Scoped struct {
	logger     *Logger
	logContext string
}

// Scope returns a logger facade with a fixed context string.
func (l *Logger) Scope(logContext string) *Scoped {
	return &Scoped{logger: l, logContext: logContext}
}

// Auth returns the authentication-scoped facade.
func (l *Logger) Auth() *Scoped { return l.Scope("auth") }

// API returns the remote-call-scoped facade.
func (l *Logger) API() *Scoped { return l.Scope("api") }

// UI returns the interface-scoped facade.
func (l *Logger) UI() *Scoped { return l.Scope("ui") }

func (s *Scoped) Debug(message string, data map[string]any) {
	s.logger.Record(domain.LevelDebug, message, s.logContext, data)
}

func (s *Scoped) Info(message string, data map[string]any) {
	s.logger.Record(domain.LevelInfo, message, s.logContext, data)
}

func (s *Scoped) Warn(message string, data map[string]any) {
	s.logger.Record(domain.LevelWarn, message, s.logContext, data)
}

func (s *Scoped) Error(message string, data map[string]any) {
	s.logger.Record(domain.LevelError, message, s.logContext, data)
}
