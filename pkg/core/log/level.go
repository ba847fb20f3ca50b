package log

import (
	"fmt"
	"strings"
)

// Level represents the severity of a log entry
type Level int

const (
	// LevelTrace is the most verbose level, used for very detailed debugging
	LevelTrace Level = iota

	// LevelDebug provides detailed information for debugging purposes
	LevelDebug

	// LevelInfo represents general informational messages
	LevelInfo

	// LevelWarn indicates potentially harmful situations
	LevelWarn

	// LevelError represents error conditions that need attention
	LevelError

	// LevelFatal represents critical errors that cause program termination
	LevelFatal
)

// String returns the string representation of the level
func (l Level) String() string {
	switch l {
	case LevelTrace:
		return "TRACE"
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	case LevelFatal:
		return "FATAL"
	default:
		return "UNKNOWN"
	}
}

// ShortString returns a fixed-width representation for text output
func (l Level) ShortString() string {
	switch l {
	case LevelTrace:
		return "TRC"
	case LevelDebug:
		return "DBG"
	case LevelInfo:
		return "INF"
	case LevelWarn:
		return "WRN"
	case LevelError:
		return "ERR"
	case LevelFatal:
		return "FTL"
	default:
		return "UNK"
	}
}

// ShouldLog returns true if a message at this level passes the threshold
func (l Level) ShouldLog(threshold Level) bool {
	return l >= threshold
}

// DefaultLevel returns the level used when nothing is configured
func DefaultLevel() Level {
	return LevelInfo
}

// ParseLevel converts a string into a Level
func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "trace":
		return LevelTrace, nil
	case "debug":
		return LevelDebug, nil
	case "info", "":
		return LevelInfo, nil
	case "warn", "warning":
		return LevelWarn, nil
	case "error":
		return LevelError, nil
	case "fatal":
		return LevelFatal, nil
	default:
		return LevelInfo, fmt.Errorf("unknown log level %q", s)
	}
}
