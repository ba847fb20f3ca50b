package version

import (
	"regexp"
	"testing"
)

// semverRegex validates semantic versioning format
var semverRegex = regexp.MustCompile(`^\d+\.\d+\.\d+$`)

func TestVersionConstants(t *testing.T) {
	tests := []struct {
		name    string
		version string
	}{
		{"Engine", Engine},
		{"Tokenizer", Tokenizer},
		{"Directive", Directive},
		{"Library", Library},
		{"Resolver", Resolver},
		{"Database", Database},
		{"Server", Server},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.version == "" {
				t.Errorf("%s version is empty", tt.name)
			}
			if !semverRegex.MatchString(tt.version) {
				t.Errorf("%s version %q does not match semver format (x.y.z)", tt.name, tt.version)
			}
		})
	}
}

func TestComponentVersion(t *testing.T) {
	tests := []struct {
		name      string
		component string
		expected  string
	}{
		{"tokenizer component", "tokenizer", Tokenizer},
		{"directive component", "directive", Directive},
		{"library component", "library", Library},
		{"resolver component", "resolver", Resolver},
		{"database component", "database", Database},
		{"server component", "server", Server},
		{"unknown component", "unknown", Engine},
		{"empty component", "", Engine},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := ComponentVersion(tt.component)
			if result != tt.expected {
				t.Errorf("ComponentVersion(%q) = %q, want %q", tt.component, result, tt.expected)
			}
		})
	}
}
