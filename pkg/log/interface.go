// Package log provides the structured logging interface used by the search
// driver, its workers and the CLI.
//
// The interface is slog-compatible so call sites stay backend-agnostic; the
// default backend is zerolog (see logger.go). Keys for common fields live in
// attributes.go.
//
// Example usage:
//
//	logger := log.GetLoggerWithName("search").With(
//	    log.NKey, 10,
//	    log.KKey, 3,
//	)
//	logger.Info("Pipeline iteration finished",
//	    log.DurationSecondsKey, 12.5,
//	    log.WorkersKey, 4,
//	)
package log

import (
	"context"
)

// Logger defines a structured logging interface compatible with Go's log/slog.
//
// Fields are passed as alternating key/value pairs. When the number of fields is
// odd and the first one is an error, it is logged under ErrAttrKey together with
// its stack trace.
type Logger interface {
	// Debug logs a debug-level message with optional structured fields.
	Debug(msg string, fields ...any)

	// Info logs an info-level message with optional structured fields.
	Info(msg string, fields ...any)

	// Warn logs a warning-level message with optional structured fields.
	Warn(msg string, fields ...any)

	// Error logs an error-level message with optional structured fields.
	//
	// Example:
	//   logger.Error("Pipeline iteration failed",
	//       err,
	//       log.NKey, 10,
	//       log.KKey, 3,
	//   )
	Error(msg string, fields ...any)

	// With returns a new Logger with the given fields pre-populated.
	With(fields ...any) Logger

	// Enabled reports whether the logger emits records at the given level.
	Enabled(ctx context.Context, level Level) bool
}

// Level represents a logging level, compatible with slog.Level.
type Level int

// Standard logging levels, values are compatible with slog.Level.
const (
	LevelDebug Level = -4
	LevelInfo  Level = 0
	LevelWarn  Level = 4
	LevelError Level = 8
)

// String returns the string representation of the log level.
func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// LoggerProvider creates and configures loggers. The driver and the CLI take a
// provider so tests can swap in a TestLoggerProvider.
type LoggerProvider interface {
	// GetLogger returns the default logger instance.
	GetLogger() Logger

	// GetLoggerWithName returns a logger tagged with a component name.
	GetLoggerWithName(name string) Logger

	// SetLevel sets the minimum level for loggers created afterwards.
	SetLevel(level Level)
}
