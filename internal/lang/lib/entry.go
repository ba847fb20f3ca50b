// Package lib parses the documentation-library format: colon-delimited
// entry lines describing the functions, scripts, and routines a scope
// exposes, plus a header attribute block naming that scope.
package lib

import (
	"fmt"
	"strings"
)

// Usage classifies what kind of symbol an entry documents.
type Usage string

const (
	UsageAPI Usage = "api" // named API-style function
	UsageASM Usage = "asm" // raw assembly routine
	UsageSCR Usage = "scr" // script
	UsageAny Usage = "any" // unknown or unclassified
)

// ParseUsage maps an entry line's classification field to a Usage. The
// second return is false for unrecognized values.
func ParseUsage(s string) (Usage, bool) {
	switch Usage(strings.ToLower(s)) {
	case UsageAPI:
		return UsageAPI, true
	case UsageASM:
		return UsageASM, true
	case UsageSCR:
		return UsageSCR, true
	case UsageAny:
		return UsageAny, true
	default:
		return UsageAny, false
	}
}

// Scope names a library file may declare in its header block. Documents
// from every category see common; the rest are family-specific.
const (
	ScopeCommon   = "common"
	ScopeWorld    = "world"
	ScopeBattle   = "battle"
	ScopePause    = "pause"
	ScopeMainMenu = "mainmenu"
)

// Scopes returns the fixed partition names in canonical order.
func Scopes() []string {
	return []string{ScopeCommon, ScopeWorld, ScopeBattle, ScopePause, ScopeMainMenu}
}

// ValidScope reports whether name is one of the fixed partitions.
func ValidScope(name string) bool {
	switch name {
	case ScopeCommon, ScopeWorld, ScopeBattle, ScopePause, ScopeMainMenu:
		return true
	}
	return false
}

// Attribute keys with defined meaning. Boolean flags are stored with an
// empty value; presence is what matters.
const (
	AttrScope  = "scope"  // header: partition the file belongs to
	AttrOut    = "out"    // arg: output parameter, value overrides the type
	AttrRaw    = "raw"    // arg: accepts constants only
	AttrIgnore = "ignore" // arg: skip when equal to the value
)

// Location points at the defining line of an entry.
type Location struct {
	File string
	Line int
}

// Arg is one parameter or return value of a documented symbol.
type Arg struct {
	Name       string
	Type       string
	Container  string // enclosing collection/pointer qualifier
	Note       string
	Attributes map[string]string
}

// String renders the arg roughly as it was written.
func (a Arg) String() string {
	var b strings.Builder
	if a.Container != "" {
		b.WriteString(a.Container)
		b.WriteByte(' ')
	}
	b.WriteString(a.Type)
	if a.Name != "" {
		b.WriteByte(' ')
		b.WriteString(a.Name)
	}
	return b.String()
}

// LibraryEntry documents one symbol. Args and Returns distinguish nil
// ("unknown, not written down") from an empty slice ("takes none").
type LibraryEntry struct {
	Usage      Usage
	StructType string
	RAM        string
	ROM        string
	Name       string
	Note       string
	Args       []Arg
	Returns    []Arg
	Attributes map[string]string
	Location   *Location
}

// HasAttribute reports whether the entry carries the given flag or key.
func (e *LibraryEntry) HasAttribute(key string) bool {
	_, ok := e.Attributes[key]
	return ok
}

// Signature renders a compact call signature for listings and hovers.
func (e *LibraryEntry) Signature() string {
	var b strings.Builder
	b.WriteString(e.Name)
	b.WriteByte('(')
	if e.Args == nil {
		b.WriteString("???")
	} else {
		for i, a := range e.Args {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(a.String())
		}
	}
	b.WriteByte(')')
	if len(e.Returns) > 0 {
		parts := make([]string, len(e.Returns))
		for i, r := range e.Returns {
			parts[i] = r.String()
		}
		b.WriteString(" -> ")
		b.WriteString(strings.Join(parts, ", "))
	}
	return b.String()
}

// String identifies the entry in logs.
func (e *LibraryEntry) String() string {
	if e.RAM != "" {
		return fmt.Sprintf("%s %s @ %s", e.Usage, e.Name, e.RAM)
	}
	return fmt.Sprintf("%s %s", e.Usage, e.Name)
}

// Warning is a non-fatal diagnostic from parsing one line.
type Warning struct {
	Line    int
	Message string
}

func (w Warning) String() string {
	return fmt.Sprintf("line %d: %s", w.Line, w.Message)
}

// File is the parsed form of one library file.
type File struct {
	Scope      string            // declared partition, always valid
	Attributes map[string]string // header keys other than scope
	Entries    []*LibraryEntry
	Warnings   []Warning
}
