package token

import (
	"fmt"
)

// Dialect selects which punctuation the tokenizer treats as structure.
type Dialect int

const (
	// DialectPatch is the patch/script language: #/@ markers, %! doc
	// comments, colons and commas are ordinary atom characters.
	DialectPatch Dialect = iota

	// DialectLibrary is the documentation-library format: colons and
	// commas delimit structure, there are no markers or doc comments.
	DialectLibrary
)

// state is one entry of the tokenizer's lexical state stack
type state int

const (
	stateMain state = iota
	stateBlockComment
	stateBlock
)

// Tokenizer converts raw text into a flat token stream. It keeps no state
// between calls to New; every parse starts from scratch.
type Tokenizer struct {
	input   string
	dialect Dialect

	position int  // current position in input (points to current char)
	readPos  int  // current reading position (after current char)
	ch       byte // current char under examination
	line     int  // current line number (1-based)
	column   int  // current column number (1-based)

	states []state // lexical state stack; empty means main
}

// New creates a tokenizer for the given input and dialect
func New(input string, dialect Dialect) *Tokenizer {
	t := &Tokenizer{
		input:   input,
		dialect: dialect,
		line:    1,
		column:  0,
	}
	t.readChar() // initialize first character
	return t
}

// Tokenize returns all tokens from the input as a slice. The first Illegal
// token aborts with a lexical error carrying its position.
func Tokenize(input string, dialect Dialect) ([]Token, error) {
	t := New(input, dialect)
	var tokens []Token

	for {
		tok := t.NextToken()
		tokens = append(tokens, tok)

		if tok.Type == EOF {
			break
		}

		if tok.Type == Illegal {
			return tokens, NewLexicalError(
				fmt.Sprintf("illegal character %q", tok.Value),
				tok.Line, tok.Column, tok.Offset)
		}
	}

	return tokens, nil
}

// NextToken returns the next token, dispatching on the active state
func (t *Tokenizer) NextToken() Token {
	switch t.currentState() {
	case stateBlockComment:
		return t.lexBlockComment()
	case stateBlock:
		return t.lexBlock()
	default:
		return t.lexMain()
	}
}

// lexMain scans one token in the top-level state
func (t *Tokenizer) lexMain() Token {
	pos := t.position
	line := t.line
	column := t.column

	switch {
	case t.ch == 0:
		return Token{Type: EOF, Offset: pos, Line: line, Column: column, End: t.endPos()}

	case t.ch == '\n':
		t.readChar()
		return Token{Type: Newline, Value: "\n", Offset: pos, Line: line, Column: column, End: t.endPos()}

	case isSpace(t.ch) || (t.ch == '\\' && t.peekChar() == '\n'):
		return t.readWhitespace(pos, line, column)

	case t.ch == '%':
		return t.readLineComment(pos, line, column)

	case t.ch == '/' && t.peekChar() == '%':
		t.readChar() // consume '/'
		t.readChar() // consume '%'
		t.pushState(stateBlockComment)
		return t.NextToken()

	case t.ch == '"':
		return t.readString(pos, line, column)

	case t.ch == '{':
		t.readChar()
		t.pushState(stateBlock)
		return Token{Type: BlockOpen, Value: "{", Offset: pos, Line: line, Column: column, End: t.endPos()}

	case t.dialect == DialectPatch && (t.ch == '#' || t.ch == '@'):
		return t.readMarker(pos, line, column)

	case t.dialect == DialectLibrary && t.ch == ':':
		t.readChar()
		return Token{Type: Colon, Value: ":", Offset: pos, Line: line, Column: column, End: t.endPos()}

	case t.dialect == DialectLibrary && t.ch == ',':
		t.readChar()
		return Token{Type: Comma, Value: ",", Offset: pos, Line: line, Column: column, End: t.endPos()}

	case t.isAtomChar(t.ch):
		return t.readAtom(pos, line, column)

	default:
		tok := Token{Type: Illegal, Value: string(t.ch), Offset: pos, Line: line, Column: column}
		t.readChar()
		tok.End = t.endPos()
		return tok
	}
}

// lexBlockComment consumes verbatim content until %/ and pops the state.
// An unterminated comment ends at EOF; editors hold half-typed files.
func (t *Tokenizer) lexBlockComment() Token {
	pos := t.position
	line := t.line
	column := t.column
	start := t.position

	for t.ch != 0 {
		if t.ch == '%' && t.peekChar() == '/' {
			value := t.input[start:t.position]
			t.readChar() // consume '%'
			t.readChar() // consume '/'
			t.popState()
			return Token{Type: BlockComment, Value: value, Offset: pos, Line: line, Column: column, End: t.endPos()}
		}
		t.readChar()
	}

	t.popState()
	return Token{Type: BlockComment, Value: t.input[start:t.position], Offset: pos, Line: line, Column: column, End: t.endPos()}
}

// lexBlock scans the raw region between braces. Content runs to the first
// unescaped closing brace; \} keeps the brace verbatim. An unclosed block
// ends at EOF.
func (t *Tokenizer) lexBlock() Token {
	pos := t.position
	line := t.line
	column := t.column

	if t.ch == 0 {
		t.popState()
		return Token{Type: EOF, Offset: pos, Line: line, Column: column, End: t.endPos()}
	}

	if t.ch == '}' {
		t.readChar()
		t.popState()
		return Token{Type: BlockClose, Value: "}", Offset: pos, Line: line, Column: column, End: t.endPos()}
	}

	start := t.position
	for t.ch != 0 && t.ch != '}' {
		if t.ch == '\\' && t.peekChar() == '}' {
			t.readChar() // consume '\'
		}
		t.readChar()
	}

	return Token{Type: BlockContent, Value: t.input[start:t.position], Offset: pos, Line: line, Column: column, End: t.endPos()}
}

// readWhitespace coalesces spaces, tabs, carriage returns, and
// backslash-newline line continuations into one token
func (t *Tokenizer) readWhitespace(pos, line, column int) Token {
	start := t.position
	for {
		if isSpace(t.ch) {
			t.readChar()
			continue
		}
		if t.ch == '\\' && t.peekChar() == '\n' {
			t.readChar() // consume '\'
			t.readChar() // consume the continued newline
			continue
		}
		break
	}
	return Token{Type: Whitespace, Value: t.input[start:t.position], Offset: pos, Line: line, Column: column, End: t.endPos()}
}

// readLineComment scans % or %! to end of line. The delimiter is stripped
// from the value; the newline stays in the input for the next token.
func (t *Tokenizer) readLineComment(pos, line, column int) Token {
	t.readChar() // consume '%'

	tokType := LineComment
	if t.dialect == DialectPatch && t.ch == '!' {
		tokType = DocComment
		t.readChar() // consume '!'
	}

	start := t.position
	for t.ch != 0 && t.ch != '\n' {
		t.readChar()
	}
	return Token{Type: tokType, Value: t.input[start:t.position], Offset: pos, Line: line, Column: column, End: t.endPos()}
}

// readString scans a double-quoted literal. Only \" and \\ escape; a raw
// newline or EOF before the closing quote is a lexical error.
func (t *Tokenizer) readString(pos, line, column int) Token {
	t.readChar() // consume opening quote
	start := t.position

	for {
		if t.ch == 0 || t.ch == '\n' {
			return Token{Type: Illegal, Value: "unterminated string", Offset: pos, Line: line, Column: column, End: t.endPos()}
		}
		if t.ch == '"' {
			value := t.input[start:t.position]
			t.readChar() // consume closing quote
			return Token{Type: String, Value: unescapeString(value), Offset: pos, Line: line, Column: column, End: t.endPos()}
		}
		if t.ch == '\\' && (t.peekChar() == '"' || t.peekChar() == '\\') {
			t.readChar()
		}
		t.readChar()
	}
}

// readMarker scans a directive marker: a sigil followed by a permissive
// identifier-and-colon run. A bare sigil is a valid marker.
func (t *Tokenizer) readMarker(pos, line, column int) Token {
	start := t.position
	t.readChar() // consume sigil
	for isMarkerChar(t.ch) {
		t.readChar()
	}
	return Token{Type: Marker, Value: t.input[start:t.position], Offset: pos, Line: line, Column: column, End: t.endPos()}
}

// readAtom scans a contiguous run of non-structural characters
func (t *Tokenizer) readAtom(pos, line, column int) Token {
	start := t.position
	for t.isAtomChar(t.ch) {
		t.readChar()
	}
	return Token{Type: Atom, Value: t.input[start:t.position], Offset: pos, Line: line, Column: column, End: t.endPos()}
}

// isAtomChar reports whether ch can appear inside an atom in the active
// dialect
func (t *Tokenizer) isAtomChar(ch byte) bool {
	if ch == 0 || ch == '\n' || isSpace(ch) {
		return false
	}
	switch ch {
	case '{', '}', '"', '%', '\\':
		return false
	}
	if t.dialect == DialectPatch && (ch == '#' || ch == '@') {
		return false
	}
	if t.dialect == DialectLibrary && (ch == ':' || ch == ',') {
		return false
	}
	return true
}

// readChar reads the next character and advances position. Leaving a
// newline is what moves the line counter, so the newline itself is
// reported at the end of its own line.
func (t *Tokenizer) readChar() {
	if t.ch == '\n' {
		t.line++
		t.column = 0
	}

	if t.readPos >= len(t.input) {
		t.ch = 0 // NUL represents EOF
	} else {
		t.ch = t.input[t.readPos]
	}

	t.position = t.readPos
	t.readPos++
	t.column++
}

// peekChar returns the next character without advancing position
func (t *Tokenizer) peekChar() byte {
	if t.readPos >= len(t.input) {
		return 0
	}
	return t.input[t.readPos]
}

// endPos returns the position of the first unconsumed character, which is
// the exclusive end of whatever was just read
func (t *Tokenizer) endPos() Position {
	return Position{Line: t.line, Column: t.column, Offset: t.position}
}

func (t *Tokenizer) currentState() state {
	if len(t.states) == 0 {
		return stateMain
	}
	return t.states[len(t.states)-1]
}

func (t *Tokenizer) pushState(s state) {
	t.states = append(t.states, s)
}

func (t *Tokenizer) popState() {
	if len(t.states) > 0 {
		t.states = t.states[:len(t.states)-1]
	}
}

// isSpace matches intra-line whitespace; newlines are their own token
func isSpace(ch byte) bool {
	return ch == ' ' || ch == '\t' || ch == '\r'
}

// isMarkerChar matches the permissive identifier-and-colon marker body
func isMarkerChar(ch byte) bool {
	return 'a' <= ch && ch <= 'z' || 'A' <= ch && ch <= 'Z' ||
		'0' <= ch && ch <= '9' || ch == '_' || ch == ':'
}

// unescapeString resolves the two supported string escapes
func unescapeString(s string) string {
	// Fast path: no escapes present.
	hasEscape := false
	for i := 0; i < len(s); i++ {
		if s[i] == '\\' {
			hasEscape = true
			break
		}
	}
	if !hasEscape {
		return s
	}

	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		if s[i] == '\\' && i+1 < len(s) && (s[i+1] == '"' || s[i+1] == '\\') {
			i++
		}
		out = append(out, s[i])
	}
	return string(out)
}
