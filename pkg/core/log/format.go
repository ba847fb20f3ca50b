package log

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"
)

// Format selects the output encoding of log entries
type Format int

const (
	// FormatText outputs human-readable text logs
	FormatText Format = iota

	// FormatJSON outputs structured JSON logs
	FormatJSON
)

// ParseFormat converts a string into a Format
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "text", "":
		return FormatText, nil
	case "json":
		return FormatJSON, nil
	default:
		return FormatText, fmt.Errorf("unknown log format %q", s)
	}
}

// Formatter defines the interface for log formatters
type Formatter interface {
	Format(entry *Entry) ([]byte, error)
}

// GetFormatter returns the formatter for a format
func GetFormatter(format Format) Formatter {
	switch format {
	case FormatJSON:
		return NewJSONFormatter()
	default:
		return NewTextFormatter()
	}
}

// JSONFormatter formats log entries as JSON
type JSONFormatter struct {
	// TimestampFormat specifies the timestamp format
	TimestampFormat string
}

// NewJSONFormatter creates a new JSON formatter
func NewJSONFormatter() *JSONFormatter {
	return &JSONFormatter{
		TimestampFormat: time.RFC3339,
	}
}

// Format formats a log entry as JSON
func (f *JSONFormatter) Format(entry *Entry) ([]byte, error) {
	data := make(map[string]interface{})

	data["timestamp"] = entry.Timestamp.Format(f.TimestampFormat)
	data["level"] = entry.Level.String()
	data["message"] = entry.Message

	if entry.Logger != "" {
		data["logger"] = entry.Logger
	}

	for k, v := range entry.Fields {
		data[k] = v
	}

	if entry.Error != nil {
		data["error"] = entry.Error.Error()
	}

	line, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	return append(line, '\n'), nil
}

// TextFormatter formats log entries as human-readable text
type TextFormatter struct {
	// TimestampFormat specifies the timestamp format
	TimestampFormat string

	// DisableTimestamp disables timestamp output
	DisableTimestamp bool
}

// NewTextFormatter creates a new text formatter
func NewTextFormatter() *TextFormatter {
	return &TextFormatter{
		TimestampFormat: "15:04:05",
	}
}

// Format formats a log entry as text
func (f *TextFormatter) Format(entry *Entry) ([]byte, error) {
	var parts []string

	if !f.DisableTimestamp {
		parts = append(parts, entry.Timestamp.Format(f.TimestampFormat))
	}

	parts = append(parts, fmt.Sprintf("[%s]", entry.Level.ShortString()))

	if entry.Logger != "" {
		parts = append(parts, fmt.Sprintf("{%s}", entry.Logger))
	}

	parts = append(parts, entry.Message)

	// Deterministic field order keeps text output diffable.
	if len(entry.Fields) > 0 {
		keys := make([]string, 0, len(entry.Fields))
		for k := range entry.Fields {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			parts = append(parts, fmt.Sprintf("%s=%v", k, entry.Fields[k]))
		}
	}

	if entry.Error != nil {
		parts = append(parts, fmt.Sprintf("error=%q", entry.Error.Error()))
	}

	return []byte(strings.Join(parts, " ") + "\n"), nil
}
