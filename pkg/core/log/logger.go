// Package log implements the structured leveled logger used across the
// engine. Loggers are immutable: the With* methods return clones, so a
// component can carry its own field context without affecting others.
package log

import (
	"io"
	"os"
	"sync"

	"github.com/bates64/vscode-star-rod/pkg/core/srerror"
)

// Logger represents a structured logger with contextual information
type Logger struct {
	level     Level
	formatter Formatter
	output    io.Writer
	name      string

	// Context fields added to all entries from this logger
	contextFields Fields

	mutex sync.RWMutex
}

// Config represents logger configuration
type Config struct {
	Level  Level
	Format Format
	Output io.Writer
	Name   string
}

// New creates a new logger with default configuration
func New() *Logger {
	return &Logger{
		level:         DefaultLevel(),
		formatter:     NewTextFormatter(),
		output:        os.Stderr,
		contextFields: make(Fields),
	}
}

// NewWithConfig creates a new logger with the specified configuration
func NewWithConfig(config Config) *Logger {
	logger := &Logger{
		level:         config.Level,
		formatter:     GetFormatter(config.Format),
		output:        config.Output,
		name:          config.Name,
		contextFields: make(Fields),
	}
	if config.Output == nil {
		logger.output = os.Stderr
	}
	return logger
}

// WithName returns a clone with the given logger name
func (l *Logger) WithName(name string) *Logger {
	l.mutex.Lock()
	defer l.mutex.Unlock()

	clone := l.clone()
	clone.name = name
	return clone
}

// WithLevel returns a clone with the given minimum level
func (l *Logger) WithLevel(level Level) *Logger {
	l.mutex.Lock()
	defer l.mutex.Unlock()

	clone := l.clone()
	clone.level = level
	return clone
}

// WithOutput returns a clone writing to the given destination
func (l *Logger) WithOutput(output io.Writer) *Logger {
	l.mutex.Lock()
	defer l.mutex.Unlock()

	clone := l.clone()
	clone.output = output
	return clone
}

// WithFormat returns a clone using the given output format
func (l *Logger) WithFormat(format Format) *Logger {
	l.mutex.Lock()
	defer l.mutex.Unlock()

	clone := l.clone()
	clone.formatter = GetFormatter(format)
	return clone
}

// WithField returns a clone with a persistent field on all entries
func (l *Logger) WithField(key string, value interface{}) *Logger {
	l.mutex.Lock()
	defer l.mutex.Unlock()

	clone := l.clone()
	clone.contextFields[key] = value
	return clone
}

// WithFields returns a clone with persistent fields on all entries
func (l *Logger) WithFields(fields Fields) *Logger {
	l.mutex.Lock()
	defer l.mutex.Unlock()

	clone := l.clone()
	for k, v := range fields {
		clone.contextFields[k] = v
	}
	return clone
}

// GetLevel returns the current log level
func (l *Logger) GetLevel() Level {
	l.mutex.RLock()
	defer l.mutex.RUnlock()
	return l.level
}

// SetLevel sets the log level in place
func (l *Logger) SetLevel(level Level) {
	l.mutex.Lock()
	defer l.mutex.Unlock()
	l.level = level
}

// IsLevelEnabled returns true if the given level would be written
func (l *Logger) IsLevelEnabled(level Level) bool {
	l.mutex.RLock()
	defer l.mutex.RUnlock()
	return level.ShouldLog(l.level)
}

// Trace logs a trace level message
func (l *Logger) Trace(message string, fields ...Fields) {
	l.log(LevelTrace, message, nil, fields...)
}

// Debug logs a debug level message
func (l *Logger) Debug(message string, fields ...Fields) {
	l.log(LevelDebug, message, nil, fields...)
}

// Info logs an info level message
func (l *Logger) Info(message string, fields ...Fields) {
	l.log(LevelInfo, message, nil, fields...)
}

// Warn logs a warning level message
func (l *Logger) Warn(message string, fields ...Fields) {
	l.log(LevelWarn, message, nil, fields...)
}

// Error logs an error level message
func (l *Logger) Error(message string, fields ...Fields) {
	l.log(LevelError, message, nil, fields...)
}

// Fatal logs a fatal level message and exits the program
func (l *Logger) Fatal(message string, fields ...Fields) {
	l.log(LevelFatal, message, nil, fields...)
	os.Exit(1)
}

// WarnWithErr logs a warning with an error object
func (l *Logger) WarnWithErr(message string, err error, fields ...Fields) {
	l.log(LevelWarn, message, err, fields...)
}

// ErrorWithErr logs an error with an error object
func (l *Logger) ErrorWithErr(message string, err error, fields ...Fields) {
	l.log(LevelError, message, err, fields...)
}

// LogError logs an engine error with its code and details, picking the
// level from the error's severity.
func (l *Logger) LogError(err error) {
	if err == nil {
		return
	}

	srErr, ok := err.(*srerror.Error)
	if !ok {
		l.log(LevelError, err.Error(), err)
		return
	}

	fields := Fields{
		"error_code":     srErr.Code().String(),
		"error_severity": srErr.Severity().String(),
	}
	if op := srErr.Operation(); op != "" {
		fields["error_operation"] = op
	}
	for k, v := range srErr.Details() {
		fields["error_"+k] = v
	}

	switch srErr.Severity() {
	case srerror.SeverityLow:
		l.log(LevelInfo, srErr.Error(), err, fields)
	case srerror.SeverityMedium:
		l.log(LevelWarn, srErr.Error(), err, fields)
	default:
		l.log(LevelError, srErr.Error(), err, fields)
	}
}

// log is the internal logging method
func (l *Logger) log(level Level, message string, err error, fields ...Fields) {
	l.mutex.RLock()

	if !level.ShouldLog(l.level) {
		l.mutex.RUnlock()
		return
	}

	entry := NewEntry(level, message)
	entry.Logger = l.name
	entry.Error = err

	for k, v := range l.contextFields {
		entry.Fields[k] = v
	}
	for _, fieldSet := range fields {
		for k, v := range fieldSet {
			entry.Fields[k] = v
		}
	}

	formatter := l.formatter
	output := l.output
	l.mutex.RUnlock()

	if formatted, formatErr := formatter.Format(entry); formatErr == nil {
		output.Write(formatted)
	}
}

// clone creates a copy of the logger for immutable operations
func (l *Logger) clone() *Logger {
	clone := &Logger{
		level:         l.level,
		formatter:     l.formatter,
		output:        l.output,
		name:          l.name,
		contextFields: make(Fields, len(l.contextFields)),
	}
	for k, v := range l.contextFields {
		clone.contextFields[k] = v
	}
	return clone
}

// Default logger instance
var defaultLogger = New()

// GetDefault returns the default logger instance
func GetDefault() *Logger {
	return defaultLogger
}

// SetDefault sets the default logger instance
func SetDefault(logger *Logger) {
	defaultLogger = logger
}

// Trace logs a trace message using the default logger
func Trace(message string, fields ...Fields) {
	defaultLogger.Trace(message, fields...)
}

// Debug logs a debug message using the default logger
func Debug(message string, fields ...Fields) {
	defaultLogger.Debug(message, fields...)
}

// Info logs an info message using the default logger
func Info(message string, fields ...Fields) {
	defaultLogger.Info(message, fields...)
}

// Warn logs a warning message using the default logger
func Warn(message string, fields ...Fields) {
	defaultLogger.Warn(message, fields...)
}

// Error logs an error message using the default logger
func Error(message string, fields ...Fields) {
	defaultLogger.Error(message, fields...)
}
