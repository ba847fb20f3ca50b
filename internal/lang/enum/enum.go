// Package enum parses the two auxiliary database formats: enum
// definition files (three labeled headers, then `key = value` member
// rows) and flag-name lists.
package enum

import (
	"path/filepath"
	"strings"

	"github.com/bates64/vscode-star-rod/internal/stringx"
	"github.com/bates64/vscode-star-rod/pkg/core/srerror"
)

// Enum is one parsed enum definition: an ordered member list under a
// namespace, tagged with the identifier it originates from.
type Enum struct {
	Namespace string
	Origin    string
	Members   []string
}

// Flags is the ordered flag-name list of one flags file. The namespace
// is the file stem.
type Flags struct {
	Namespace string
	Names     []string
}

const (
	headerNamespace = "namespace"
	headerOrigin    = "origin"
	headerDirection = "direction"

	directionNormal   = "normal"
	directionReversed = "reversed"
)

// Parse reads an enum definition. The three headers may appear in any
// order but must all precede the first member row; a missing header or
// an unrecognized direction is fatal for the file.
func Parse(input, source string) (*Enum, error) {
	e := &Enum{Members: make([]string, 0)}

	direction := ""
	inHeader := true

	for _, line := range stringx.SplitLines(input) {
		key, value, ok := splitRow(line)
		if !ok {
			continue
		}

		if inHeader {
			switch key {
			case headerNamespace:
				e.Namespace = value
				continue
			case headerOrigin:
				e.Origin = value
				continue
			case headerDirection:
				direction = value
				continue
			}

			// First non-header row: the header section is over.
			if err := checkHeaders(e, direction, source); err != nil {
				return nil, err
			}
			inHeader = false
		}

		if direction == directionReversed {
			e.Members = append(e.Members, value)
		} else {
			e.Members = append(e.Members, key)
		}
	}

	if inHeader {
		// No member rows; the headers alone still have to be complete.
		if err := checkHeaders(e, direction, source); err != nil {
			return nil, err
		}
	}
	return e, nil
}

// checkHeaders validates the three required headers
func checkHeaders(e *Enum, direction, source string) error {
	missing := ""
	switch {
	case e.Namespace == "":
		missing = headerNamespace
	case e.Origin == "":
		missing = headerOrigin
	case direction == "":
		missing = headerDirection
	}
	if missing != "" {
		return srerror.Newf("enum file missing %q header", missing).
			WithCode(srerror.CodeParseStructural).
			WithOperation("enum.Parse").
			WithDetail("file", source)
	}
	if direction != directionNormal && direction != directionReversed {
		return srerror.Newf("unrecognized direction %q", direction).
			WithCode(srerror.CodeParseStructural).
			WithOperation("enum.Parse").
			WithDetail("file", source)
	}
	return nil
}

// ParseFlags reads a flag-name list. The format has no failure mode:
// every data line contributes its first field, with any `= value`
// suffix dropped.
func ParseFlags(input, source string) *Flags {
	f := &Flags{
		Namespace: Stem(source),
		Names:     make([]string, 0),
	}

	for _, line := range stringx.SplitLines(input) {
		line = stripComment(line)
		name := stringx.FirstField(line)
		if name == "" {
			continue
		}
		if eq := strings.IndexByte(name, '='); eq >= 0 {
			name = name[:eq]
		}
		if name != "" {
			f.Names = append(f.Names, name)
		}
	}
	return f
}

// Stem returns the file name without directory or extension, used as
// the namespace of flag files.
func Stem(path string) string {
	base := filepath.Base(path)
	if base == "." {
		return ""
	}
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// splitRow turns one line into a `key = value` pair. Comment-only and
// blank lines report ok=false.
func splitRow(line string) (key, value string, ok bool) {
	line = stripComment(line)
	if stringx.IsBlank(line) {
		return "", "", false
	}

	eq := strings.IndexByte(line, '=')
	if eq < 0 {
		return "", "", false
	}
	return strings.TrimSpace(line[:eq]), strings.TrimSpace(line[eq+1:]), true
}

// stripComment drops a % comment from the line
func stripComment(line string) string {
	if i := strings.IndexByte(line, '%'); i >= 0 {
		return line[:i]
	}
	return line
}
