// Package errs defines the closed error taxonomy. Every constructed AppError
// is reported to the logger exactly once at construction time.
package errs

import (
	"errors"
	"fmt"

	"github.com/pulseobs/pulse/internal/core/domain"
	"github.com/pulseobs/pulse/internal/metrics"
)

// Kind identifies a taxonomy variant.
type Kind string

const (
	KindApplication    Kind = "application"
	KindValidation     Kind = "validation"
	KindNetwork        Kind = "network"
	KindDatabase       Kind = "database"
	KindAuthentication Kind = "authentication"
	KindPermission     Kind = "permission"
	KindNotFound       Kind = "not_found"
)

// Stable machine codes and status codes per variant.
const (
	CodeValidation     = "VALIDATION_ERROR"
	CodeNetwork        = "NETWORK_ERROR"
	CodeDatabase       = "DATABASE_ERROR"
	CodeAuthentication = "AUTH_ERROR"
	CodePermission     = "PERMISSION_ERROR"
	CodeNotFound       = "NOT_FOUND"
)

// Reporter receives the construction-time report of every AppError. A nil
// Reporter skips reporting (used where the logger itself is unavailable).
type Reporter interface {
	Record(
		level domain.LogLevel,
		message string,
		logContext string,
		data map[string]any,
	) domain.LogRecord
}

// AppError is a tagged error with a stable machine code. IsOperational=false
// denotes a programming defect rather than an expected failure.
type AppError struct {
	Kind          Kind
	Message       string
	Code          string
	StatusCode    int
	Context       string
	IsOperational bool
	Cause         error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// NewApplication creates a base application error with a caller-chosen code.
func NewApplication(r Reporter, message, code string, statusCode int, logContext string) *AppError {
	return construct(r, &AppError{
		Kind:          KindApplication,
		Message:       message,
		Code:          code,
		StatusCode:    statusCode,
		Context:       logContext,
		IsOperational: true,
	})
}

// NewValidation creates a malformed/missing-input error (400).
func NewValidation(r Reporter, message, logContext string) *AppError {
	return construct(r, &AppError{
		Kind:          KindValidation,
		Message:       message,
		Code:          CodeValidation,
		StatusCode:    400,
		Context:       logContext,
		IsOperational: true,
	})
}

// NewNetwork creates a remote-unreachable/timeout error. Network failures
// carry status code 0: no HTTP exchange completed.
func NewNetwork(r Reporter, message, logContext string) *AppError {
	return construct(r, &AppError{
		Kind:          KindNetwork,
		Message:       message,
		Code:          CodeNetwork,
		StatusCode:    0,
		Context:       logContext,
		IsOperational: true,
	})
}

// NewDatabase creates a remote-persistence-failure error (500).
func NewDatabase(r Reporter, message, logContext string) *AppError {
	return construct(r, &AppError{
		Kind:          KindDatabase,
		Message:       message,
		Code:          CodeDatabase,
		StatusCode:    500,
		Context:       logContext,
		IsOperational: true,
	})
}

// NewAuthentication creates an identity-rejected error (401).
func NewAuthentication(r Reporter, message, logContext string) *AppError {
	return construct(r, &AppError{
		Kind:          KindAuthentication,
		Message:       message,
		Code:          CodeAuthentication,
		StatusCode:    401,
		Context:       logContext,
		IsOperational: true,
	})
}

// NewPermission creates an authorization-denied error (403).
func NewPermission(r Reporter, message, logContext string) *AppError {
	return construct(r, &AppError{
		Kind:          KindPermission,
		Message:       message,
		Code:          CodePermission,
		StatusCode:    403,
		Context:       logContext,
		IsOperational: true,
	})
}

// NewNotFound creates a referenced-entity-absent error (404).
func NewNotFound(r Reporter, message, logContext string) *AppError {
	return construct(r, &AppError{
		Kind:          KindNotFound,
		Message:       message,
		Code:          CodeNotFound,
		StatusCode:    404,
		Context:       logContext,
		IsOperational: true,
	})
}

// NewDefect marks an unclassified programming defect (IsOperational=false).
func NewDefect(r Reporter, message, logContext string) *AppError {
	return construct(r, &AppError{
		Kind:          KindApplication,
		Message:       message,
		StatusCode:    500,
		Context:       logContext,
		IsOperational: false,
	})
}

// Classify normalizes an arbitrary value into an AppError. Existing AppErrors
// pass through unreported (they were reported at construction); other errors
// are wrapped preserving the cause; anything else is stringified.
func Classify(r Reporter, v any, logContext string) *AppError {
	switch t := v.(type) {
	case *AppError:
		return t
	case error:
		var appErr *AppError
		if errors.As(t, &appErr) {
			return appErr
		}
		wrapped := &AppError{
			Kind:          KindApplication,
			Message:       t.Error(),
			StatusCode:    500,
			Context:       logContext,
			IsOperational: true,
			Cause:         t,
		}
		return construct(r, wrapped)
	default:
		return construct(r, &AppError{
			Kind:          KindApplication,
			Message:       fmt.Sprintf("%v", v),
			StatusCode:    500,
			Context:       logContext,
			IsOperational: true,
		})
	}
}

// construct reports the freshly built error and returns it. The report happens
// here and nowhere else, so construction implies exactly one report.
func construct(r Reporter, e *AppError) *AppError {
	metrics.AppErrors.WithLabelValues(string(e.Kind)).Inc()
	if r != nil {
		r.Record(domain.LevelError, e.Message, e.Context, map[string]any{
			"kind":        string(e.Kind),
			"code":        e.Code,
			"status_code": e.StatusCode,
			"operational": e.IsOperational,
		})
	}
	return e
}
