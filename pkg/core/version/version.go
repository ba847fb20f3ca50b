// Package version holds the version constants reported by the CLI and
// the service status endpoint.
package version

// Version constants for the engine and its surfaces.
const (
	// Engine version
	Engine = "1.0.0"

	// Component versions
	Tokenizer = "1.0.0"
	Directive = "1.0.0"
	Library   = "1.0.0"
	Resolver  = "1.0.0"
	Database  = "1.0.0"
	Server    = "1.0.0"
)

// ComponentVersion returns the version for a given component name.
func ComponentVersion(name string) string {
	switch name {
	case "tokenizer":
		return Tokenizer
	case "directive":
		return Directive
	case "library":
		return Library
	case "resolver":
		return Resolver
	case "database":
		return Database
	case "server":
		return Server
	default:
		return Engine
	}
}
