// Package token implements lexical analysis for the two text formats the
// engine consumes: the patch/script language (#/@ directives, braced
// blocks, %! documentation comments) and the library documentation format
// (colon/comma-delimited entry lines). Both share one state machine;
// the dialect decides which punctuation is structural.
package token

import (
	"fmt"
)

// Type represents the type of a lexical token
type Type int

const (
	// Special tokens
	EOF Type = iota
	Illegal

	// Layout
	Whitespace
	Newline

	// Comments
	LineComment  // % to end of line
	DocComment   // %! to end of line (patch dialect only)
	BlockComment // /% ... %/

	// Literals
	String // "string literal"
	Atom   // any contiguous run of non-structural characters

	// Structure
	Marker       // #keyword:arg or @keyword:arg (patch dialect only)
	BlockOpen    // {
	BlockContent // verbatim text between braces
	BlockClose   // }
	Colon        // : (library dialect only)
	Comma        // , (library dialect only)
)

// String returns a string representation of the token type
func (t Type) String() string {
	switch t {
	case EOF:
		return "EOF"
	case Illegal:
		return "ILLEGAL"
	case Whitespace:
		return "WHITESPACE"
	case Newline:
		return "NEWLINE"
	case LineComment:
		return "LINE_COMMENT"
	case DocComment:
		return "DOC_COMMENT"
	case BlockComment:
		return "BLOCK_COMMENT"
	case String:
		return "STRING"
	case Atom:
		return "ATOM"
	case Marker:
		return "MARKER"
	case BlockOpen:
		return "BLOCK_OPEN"
	case BlockContent:
		return "BLOCK_CONTENT"
	case BlockClose:
		return "BLOCK_CLOSE"
	case Colon:
		return "COLON"
	case Comma:
		return "COMMA"
	default:
		return "UNKNOWN"
	}
}

// Token represents a lexical token with position information
type Token struct {
	Type   Type     // Token type
	Value  string   // Token text, delimiters stripped for comments and strings
	Offset int      // Byte position in input
	Line   int      // Line number (1-based)
	Column int      // Column number (1-based)
	End    Position // Exclusive end of the token's source text
}

// String returns a string representation of the token
func (t Token) String() string {
	switch t.Type {
	case EOF:
		return "EOF"
	case Illegal:
		return fmt.Sprintf("ILLEGAL(%s)", t.Value)
	default:
		return fmt.Sprintf("%s(%s)", t.Type.String(), t.Value)
	}
}

// Pos returns the token's start position
func (t Token) Pos() Position {
	return Position{Line: t.Line, Column: t.Column, Offset: t.Offset}
}

// Span returns the token's source range
func (t Token) Span() Range {
	return Range{Start: t.Pos(), End: t.End}
}

// Position is a point in the source text
type Position struct {
	Line   int // 1-based
	Column int // 1-based
	Offset int // byte offset, 0-based
}

// String returns "line:column"
func (p Position) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

// Before reports whether p precedes other in the source
func (p Position) Before(other Position) bool {
	return p.Offset < other.Offset
}

// Range is a span of source text
type Range struct {
	Start Position
	End   Position
}

// Contains reports whether pos lies within the range
func (r Range) Contains(pos Position) bool {
	return pos.Offset >= r.Start.Offset && pos.Offset < r.End.Offset
}

// ErrorKind separates failures the taxonomy treats differently
type ErrorKind int

const (
	// KindLexical is an unrecognized character in the active state
	KindLexical ErrorKind = iota

	// KindStructural is an unexpected token where another was required
	KindStructural
)

// String returns the kind name
func (k ErrorKind) String() string {
	if k == KindStructural {
		return "structural"
	}
	return "lexical"
}

// ParseError is a positional parse failure. It is fatal for the file being
// parsed; multi-file loads catch it, report it, and continue.
type ParseError struct {
	Kind    ErrorKind
	Message string
	Line    int
	Column  int
	Offset  int
}

// Error implements the error interface
func (e *ParseError) Error() string {
	return fmt.Sprintf("%s error at line %d, column %d: %s", e.Kind, e.Line, e.Column, e.Message)
}

// NewLexicalError creates a lexical ParseError at the given position
func NewLexicalError(message string, line, column, offset int) *ParseError {
	return &ParseError{Kind: KindLexical, Message: message, Line: line, Column: column, Offset: offset}
}

// NewStructuralError creates a structural ParseError at the given position
func NewStructuralError(message string, line, column, offset int) *ParseError {
	return &ParseError{Kind: KindStructural, Message: message, Line: line, Column: column, Offset: offset}
}
