// Package logging wraps zerolog with the launcher's own conventions:
// a small set of named constructors, and scoping helpers for the
// task/version vocabulary used across the codebase.
package logging

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// Logger wraps zerolog.Logger with launcher-specific helpers.
type Logger struct {
	z zerolog.Logger
}

// Config configures a Logger.
type Config struct {
	Level  zerolog.Level
	Pretty bool
	Output io.Writer
}

// DefaultConfig returns info-level, pretty-printed logging to stderr.
func DefaultConfig() Config {
	return Config{Level: zerolog.InfoLevel, Pretty: true, Output: os.Stderr}
}

// New builds a Logger from the given Config.
func New(cfg Config) *Logger {
	zerolog.SetGlobalLevel(cfg.Level)

	var out io.Writer = cfg.Output
	if cfg.Pretty {
		out = zerolog.ConsoleWriter{Out: cfg.Output, TimeFormat: time.Kitchen}
	}

	return &Logger{z: zerolog.New(out).With().Timestamp().Logger()}
}

// NewDefault builds a Logger with DefaultConfig.
func NewDefault() *Logger { return New(DefaultConfig()) }

// NewQuiet builds a Logger that only surfaces warnings and errors.
func NewQuiet() *Logger {
	cfg := DefaultConfig()
	cfg.Level = zerolog.WarnLevel
	cfg.Pretty = false
	return New(cfg)
}

// NewVerbose builds a debug-level Logger.
func NewVerbose() *Logger {
	cfg := DefaultConfig()
	cfg.Level = zerolog.DebugLevel
	return New(cfg)
}

// Debugf logs a formatted debug message.
func (l *Logger) Debugf(format string, args ...interface{}) { l.z.Debug().Msgf(format, args...) }

// Infof logs a formatted info message.
func (l *Logger) Infof(format string, args ...interface{}) { l.z.Info().Msgf(format, args...) }

// Warnf logs a formatted warning message.
func (l *Logger) Warnf(format string, args ...interface{}) { l.z.Warn().Msgf(format, args...) }

// Errorf logs a formatted error message.
func (l *Logger) Errorf(format string, args ...interface{}) { l.z.Error().Msgf(format, args...) }

// WithError attaches an error field and returns a new scoped Logger.
func (l *Logger) WithError(err error) *Logger { return &Logger{z: l.z.With().Err(err).Logger()} }

// Operation scopes this Logger to a named operation.
func (l *Logger) Operation(op string) *Logger {
	return &Logger{z: l.z.With().Str("operation", op).Logger()}
}

// Task scopes this Logger to a named task id.
func (l *Logger) Task(taskID string) *Logger {
	return &Logger{z: l.z.With().Str("task", taskID).Logger()}
}

// Version scopes this Logger to a version name.
func (l *Logger) Version(name string) *Logger {
	return &Logger{z: l.z.With().Str("version", name).Logger()}
}

var global = NewDefault()

// SetGlobal replaces the package-level logger used by the top-level
// Debugf/Infof/Warnf/Errorf functions.
func SetGlobal(l *Logger) { global = l }

// Global returns the current package-level logger.
func Global() *Logger { return global }

// Debugf logs via the global logger.
func Debugf(format string, args ...interface{}) { global.Debugf(format, args...) }

// Infof logs via the global logger.
func Infof(format string, args ...interface{}) { global.Infof(format, args...) }

// Warnf logs via the global logger.
func Warnf(format string, args ...interface{}) { global.Warnf(format, args...) }

// Errorf logs via the global logger.
func Errorf(format string, args ...interface{}) { global.Errorf(format, args...) }
