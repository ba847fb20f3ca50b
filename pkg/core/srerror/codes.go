package srerror

// Code classifies an engine error for structured handling and for the
// websocket error envelope.
type Code string

const (
	// Generic codes
	CodeUnknown      Code = "UNKNOWN"
	CodeInternal     Code = "INTERNAL"
	CodeNotFound     Code = "NOT_FOUND"
	CodeInvalidInput Code = "INVALID_INPUT"
	CodeIO           Code = "IO_ERROR"

	// Language front end
	CodeParseLexical    Code = "PARSE_LEXICAL"
	CodeParseStructural Code = "PARSE_STRUCTURAL"

	// Database and index
	CodeDatabaseError Code = "DATABASE_ERROR"
	CodeUnknownScope  Code = "UNKNOWN_SCOPE"
	CodeIndexError    Code = "INDEX_ERROR"

	// Workspace and documents
	CodeNoWorkspace   Code = "NO_WORKSPACE"
	CodeStaleRevision Code = "STALE_REVISION"

	// Configuration
	CodeConfigError   Code = "CONFIG_ERROR"
	CodeMissingConfig Code = "MISSING_CONFIG"
	CodeInvalidConfig Code = "INVALID_CONFIG"

	// Service
	CodeServerError    Code = "SERVER_ERROR"
	CodeUnknownRequest Code = "UNKNOWN_REQUEST"
)

// String returns the string representation of the error code
func (c Code) String() string {
	return string(c)
}

// IsValid checks if the error code is a known valid code
func (c Code) IsValid() bool {
	switch c {
	case CodeUnknown, CodeInternal, CodeNotFound, CodeInvalidInput, CodeIO,
		CodeParseLexical, CodeParseStructural,
		CodeDatabaseError, CodeUnknownScope, CodeIndexError,
		CodeNoWorkspace, CodeStaleRevision,
		CodeConfigError, CodeMissingConfig, CodeInvalidConfig,
		CodeServerError, CodeUnknownRequest:
		return true
	default:
		return false
	}
}

// Category returns the high-level category of the error code
func (c Code) Category() string {
	switch c {
	case CodeParseLexical, CodeParseStructural:
		return "parse"
	case CodeDatabaseError, CodeUnknownScope, CodeIndexError:
		return "database"
	case CodeNoWorkspace, CodeStaleRevision:
		return "workspace"
	case CodeConfigError, CodeMissingConfig, CodeInvalidConfig:
		return "configuration"
	case CodeServerError, CodeUnknownRequest:
		return "service"
	default:
		return "generic"
	}
}
