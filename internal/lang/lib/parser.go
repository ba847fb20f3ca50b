package lib

import (
	"fmt"
	"strings"

	"github.com/bates64/vscode-star-rod/internal/lang/token"
	"github.com/bates64/vscode-star-rod/pkg/core/log"
	"github.com/bates64/vscode-star-rod/pkg/core/srerror"
)

// Parser turns library-format text into a File. A Parser holds no
// per-document state.
type Parser struct {
	logger *log.Logger
	strict bool
}

// Options configures parser behavior
type Options struct {
	Logger *log.Logger

	// Strict also records silently-discarded short lines as warnings.
	// Entry output is unchanged either way.
	Strict bool
}

// New creates a library parser with the given options
func New(opts Options) *Parser {
	if opts.Logger == nil {
		opts.Logger = log.GetDefault()
	}
	return &Parser{
		logger: opts.Logger.WithField("component", "lib-parser"),
		strict: opts.Strict,
	}
}

// Parse is a convenience for one-shot parsing with the default logger
func Parse(input, source string) (*File, error) {
	return New(Options{}).Parse(input, source)
}

// Parse reads one library file. source names the file for entry
// locations and diagnostics; it may be empty. The error is fatal for
// this file only: a lexical failure, or a header that never names a
// recognized scope.
func (p *Parser) Parse(input, source string) (*File, error) {
	tokens, err := token.Tokenize(input, token.DialectLibrary)
	if err != nil {
		p.logger.Warn("library tokenization failed", log.Fields{
			"file":  source,
			"error": err.Error(),
		})
		return nil, err
	}

	f := &File{
		Attributes: make(map[string]string),
		Entries:    make([]*LibraryEntry, 0),
	}

	var line logicalLine
	for _, tok := range tokens {
		switch tok.Type {
		case token.Whitespace, token.LineComment, token.BlockComment:
			// layout and comments sit between fields

		case token.Atom:
			line.field(tok)

		case token.String:
			line.quote(tok)

		case token.Colon:
			line.colon(tok)

		case token.Comma:
			line.comma(tok)

		case token.BlockOpen, token.BlockContent:
			// the attribute block is handled whole at its closing brace
			line.blockToken(tok)

		case token.BlockClose:
			line.closeBlock(f)

		case token.Newline, token.EOF:
			p.endLine(&line, f, source)
		}
	}

	if f.Scope == "" {
		return nil, srerror.New("library file declares no scope").
			WithCode(srerror.CodeUnknownScope).
			WithOperation("lib.Parse").
			WithDetail("file", source)
	}
	if !ValidScope(f.Scope) {
		return nil, srerror.Newf("unrecognized scope %q", f.Scope).
			WithCode(srerror.CodeUnknownScope).
			WithOperation("lib.Parse").
			WithDetail("file", source)
	}

	p.logger.Debug("parsed library file", log.Fields{
		"file":     source,
		"scope":    f.Scope,
		"entries":  len(f.Entries),
		"warnings": len(f.Warnings),
	})
	return f, nil
}

// endLine completes the pending logical line and folds it into the file
func (p *Parser) endLine(line *logicalLine, f *File, source string) {
	parts, doc, at := line.finish()
	if parts == nil {
		return
	}

	if len(parts) < 4 {
		// Tolerated: half-typed lines are common while a file is edited.
		if p.strict {
			f.Warnings = append(f.Warnings, Warning{
				Line:    at,
				Message: fmt.Sprintf("incomplete entry line (%d of 4 parts)", len(parts)),
			})
		}
		return
	}

	usageField := firstField(parts[0])
	usage, ok := ParseUsage(usageField)
	if !ok {
		f.Warnings = append(f.Warnings, Warning{
			Line:    at,
			Message: fmt.Sprintf("unrecognized usage %q", usageField),
		})
		return
	}

	entry := &LibraryEntry{
		Usage: usage,
		RAM:   firstField(parts[1]),
		ROM:   firstField(parts[2]),
	}
	if fields := partFields(parts[0]); len(fields) > 1 {
		entry.StructType = fields[1]
	}
	if source != "" {
		entry.Location = &Location{File: source, Line: at}
	}

	if name := parts[3]; len(name) > 0 {
		entry.Name = firstField(parts[3])
		entry.Note = name[0].note
		if len(name[0].attrs) > 0 {
			entry.Attributes = name[0].attrs
		}
	}

	// Signatures only mean something for the three concrete kinds; an
	// `any` entry keeps args and returns unknown.
	if usage != UsageAny {
		switch {
		case len(parts) == 5:
			entry.Args = argList(parts[4])
		case len(parts) >= 6:
			entry.Returns = argList(parts[4])
			entry.Args = argList(parts[5])
		}
	}

	if doc != nil {
		if doc.note != "" {
			entry.Note = doc.note
		}
		for i, name := range doc.argNames {
			if i >= len(entry.Args) {
				break
			}
			entry.Args[i].Name = name
		}
	}

	f.Entries = append(f.Entries, entry)
}

// subpart is one comma-delimited piece of a colon part
type subpart struct {
	fields []string
	attrs  map[string]string
	note   string
}

// docBlock is an attribute block reinterpreted as line documentation
type docBlock struct {
	note     string
	argNames []string
}

// logicalLine accumulates tokens until a newline outside a block
type logicalLine struct {
	parts   [][]*subpart
	current []*subpart
	sp      *subpart
	doc     *docBlock

	block   strings.Builder
	inBlock bool

	at      int // line number of the first token
	hasData bool
}

// touch marks the line as holding data, remembering where it started
func (l *logicalLine) touch(tok token.Token) {
	if !l.hasData {
		l.hasData = true
		l.at = tok.Line
	}
}

func (l *logicalLine) ensure(tok token.Token) *subpart {
	l.touch(tok)
	if l.sp == nil {
		l.sp = &subpart{}
	}
	return l.sp
}

func (l *logicalLine) field(tok token.Token) {
	sp := l.ensure(tok)
	sp.fields = append(sp.fields, tok.Value)
}

func (l *logicalLine) quote(tok token.Token) {
	sp := l.ensure(tok)
	sp.note = tok.Value
}

func (l *logicalLine) colon(tok token.Token) {
	l.touch(tok)
	l.closeSubpart()
	l.parts = append(l.parts, l.current)
	l.current = nil
}

func (l *logicalLine) comma(tok token.Token) {
	l.touch(tok)
	l.closeSubpart()
}

func (l *logicalLine) closeSubpart() {
	if l.sp == nil {
		l.sp = &subpart{}
	}
	l.current = append(l.current, l.sp)
	l.sp = nil
}

func (l *logicalLine) blockToken(tok token.Token) {
	if tok.Type == token.BlockOpen {
		l.inBlock = true
		l.block.Reset()
		return
	}
	if l.inBlock {
		l.block.WriteString(tok.Value)
	}
}

// closeBlock classifies the finished {...} block: line documentation
// when it contains the " -- " separator, the file header when the line
// holds no data yet, otherwise attributes of the current subpart.
func (l *logicalLine) closeBlock(f *File) {
	if !l.inBlock {
		return
	}
	l.inBlock = false
	raw := l.block.String()

	if note, names, ok := splitDoc(raw); ok {
		l.doc = &docBlock{note: note, argNames: names}
		return
	}

	attrs := parseAttributes(raw)
	if !l.hasData {
		// Document header: scope picks the partition, the rest are
		// file-level attributes.
		for key, value := range attrs {
			if key == AttrScope {
				f.Scope = value
			} else {
				f.Attributes[key] = value
			}
		}
		return
	}

	sp := l.sp
	if sp == nil {
		sp = &subpart{}
		l.sp = sp
	}
	if sp.attrs == nil {
		sp.attrs = make(map[string]string, len(attrs))
	}
	for key, value := range attrs {
		sp.attrs[key] = value
	}
}

// finish returns the completed parts, or nil for a line with no data,
// and resets for the next line
func (l *logicalLine) finish() ([][]*subpart, *docBlock, int) {
	if !l.hasData {
		*l = logicalLine{}
		return nil, nil, 0
	}

	l.closeSubpart()
	parts := append(l.parts, l.current)
	doc, at := l.doc, l.at
	*l = logicalLine{}
	return parts, doc, at
}

// firstField returns the first whitespace field of a part, or ""
func firstField(part []*subpart) string {
	fields := partFields(part)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}

// partFields returns the fields of a part's first subpart
func partFields(part []*subpart) []string {
	if len(part) == 0 {
		return nil
	}
	return part[0].fields
}

// argList maps one colon part onto an arg list. nil means unknown: the
// part was empty, or led with an unknown/variadic sentinel.
func argList(part []*subpart) []Arg {
	if len(part) == 0 {
		return nil
	}
	if fields := part[0].fields; len(fields) > 0 {
		switch strings.ToLower(fields[0]) {
		case "none":
			return []Arg{}
		case "???", "unknown":
			return nil
		case "...", "varargs":
			return nil
		}
	}

	args := make([]Arg, 0, len(part))
	for _, sp := range part {
		if len(sp.fields) == 0 && sp.note == "" && len(sp.attrs) == 0 {
			continue // stray comma
		}
		args = append(args, makeArg(sp))
	}
	if len(args) == 0 {
		return nil
	}
	return args
}

// makeArg interprets a subpart's fields as `type`, `type name`, or
// `container type name`
func makeArg(sp *subpart) Arg {
	arg := Arg{Note: sp.note, Attributes: sp.attrs}
	switch len(sp.fields) {
	case 0:
	case 1:
		arg.Type = sp.fields[0]
	case 2:
		arg.Type = sp.fields[0]
		arg.Name = sp.fields[1]
	default:
		arg.Container = sp.fields[0]
		arg.Type = sp.fields[1]
		arg.Name = sp.fields[2]
	}
	return arg
}

// parseAttributes reads `key=value, flag, ...` block content. Flags map
// to empty values; presence carries the meaning.
func parseAttributes(raw string) map[string]string {
	attrs := make(map[string]string)
	for _, piece := range strings.Split(raw, ",") {
		piece = strings.TrimSpace(piece)
		if piece == "" {
			continue
		}
		if eq := strings.Index(piece, "="); eq >= 0 {
			attrs[strings.TrimSpace(piece[:eq])] = strings.TrimSpace(piece[eq+1:])
		} else {
			attrs[piece] = ""
		}
	}
	return attrs
}

// splitDoc detects the documentation form of a block: `... -- note`,
// optionally led by `args: n1, n2` naming the entry's args positionally
func splitDoc(raw string) (note string, argNames []string, ok bool) {
	before, after, found := strings.Cut(raw, " -- ")
	if !found {
		return "", nil, false
	}

	note = strings.TrimSpace(after)
	before = strings.TrimSpace(before)
	if strings.HasPrefix(strings.ToLower(before), "args:") {
		for _, name := range strings.Split(before[len("args:"):], ",") {
			if name = strings.TrimSpace(name); name != "" {
				argNames = append(argNames, name)
			}
		}
	}
	return note, argNames, true
}
