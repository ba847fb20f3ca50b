package srerror

// Severity indicates how badly an error impacts the engine.
type Severity int

const (
	// SeverityLow indicates a minor error that doesn't affect core functionality
	SeverityLow Severity = iota

	// SeverityMedium indicates an error that affects functionality but has workarounds
	SeverityMedium

	// SeverityHigh indicates a serious error that significantly impacts functionality
	SeverityHigh

	// SeverityCritical indicates a critical error that makes the engine unusable
	SeverityCritical
)

// String returns the string representation of the severity
func (s Severity) String() string {
	switch s {
	case SeverityLow:
		return "LOW"
	case SeverityMedium:
		return "MEDIUM"
	case SeverityHigh:
		return "HIGH"
	case SeverityCritical:
		return "CRITICAL"
	default:
		return "UNKNOWN"
	}
}

// GetSeverityFromCode returns the default severity for an error code
func GetSeverityFromCode(code Code) Severity {
	switch code {
	case CodeParseLexical, CodeParseStructural, CodeUnknownScope,
		CodeNotFound, CodeNoWorkspace, CodeStaleRevision, CodeUnknownRequest:
		// Per-file and per-request failures never take the engine down.
		return SeverityLow
	case CodeInvalidInput, CodeIO, CodeDatabaseError, CodeIndexError:
		return SeverityMedium
	case CodeConfigError, CodeMissingConfig, CodeInvalidConfig, CodeServerError:
		return SeverityHigh
	case CodeInternal:
		return SeverityCritical
	default:
		return SeverityMedium
	}
}
