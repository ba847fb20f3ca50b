package directive

import (
	"strings"

	"github.com/bates64/vscode-star-rod/internal/lang/token"
	"github.com/bates64/vscode-star-rod/pkg/core/log"
)

// Parser groups patch-dialect tokens into directives. A Parser holds no
// per-document state; one instance may parse any number of documents.
type Parser struct {
	logger *log.Logger
}

// Options configures parser behavior
type Options struct {
	Logger *log.Logger
}

// New creates a directive parser with the given options
func New(opts Options) *Parser {
	if opts.Logger == nil {
		opts.Logger = log.GetDefault()
	}
	return &Parser{
		logger: opts.Logger.WithField("component", "directive-parser"),
	}
}

// Parse is a convenience for one-shot parsing with the default logger
func Parse(input string) ([]*Directive, error) {
	return New(Options{}).Parse(input)
}

// Parse tokenizes input as a patch document and returns its directives in
// source order. The only error is a lexical one from tokenization;
// structural oddities degrade to skipped content instead.
func (p *Parser) Parse(input string) ([]*Directive, error) {
	tokens, err := token.Tokenize(input, token.DialectPatch)
	if err != nil {
		p.logger.Warn("patch tokenization failed", log.Fields{
			"error": err.Error(),
		})
		return nil, err
	}

	directives := make([]*Directive, 0)
	var acc accumulator

	emit := func() {
		if d := acc.finish(); d != nil {
			directives = append(directives, d)
		}
	}

	// Consecutive newline tokens signal a true empty line; a line holding
	// only spaces or a % comment does not count.
	newlines := 0

	for _, tok := range tokens {
		if tok.Type == token.Newline {
			newlines++
			if newlines == 2 {
				// The empty line ends the open directive and orphans any
				// comment that never reached a header.
				emit()
				acc.dropComment()
			}
			continue
		}
		newlines = 0

		switch tok.Type {
		case token.Whitespace, token.LineComment, token.BlockComment:
			// layout never affects grouping

		case token.DocComment:
			acc.addComment(tok)

		case token.Marker:
			emit()
			acc.begin(tok)

		case token.Atom, token.String:
			if acc.active {
				acc.addAtom(tok)
			}

		case token.BlockOpen:
			if acc.active && acc.block == nil {
				acc.openBlock(tok)
			}

		case token.BlockContent:
			if acc.active && acc.blockOpen {
				acc.fillBlock(tok)
			}

		case token.BlockClose:
			if acc.active && acc.blockOpen {
				acc.sealBlock(tok)
				// A finished block always ends its directive; nothing
				// after the closing brace can join it.
				emit()
			}

		case token.EOF:
			emit()
		}
	}

	p.logger.Debug("parsed patch document", log.Fields{
		"bytes":      len(input),
		"directives": len(directives),
	})
	return directives, nil
}

// accumulator carries the directive under construction plus the pending
// documentation comment that has not reached a header yet
type accumulator struct {
	active    bool
	keyword   string
	args      []string
	atoms     []string
	block     *Block
	blockOpen bool

	comment      string
	hasComment   bool
	commentStart token.Position

	start token.Position
	end   token.Position

	pending      []string
	pendingStart token.Position
}

// addComment appends one %! line to the pending comment
func (a *accumulator) addComment(tok token.Token) {
	if len(a.pending) == 0 {
		a.pendingStart = tok.Pos()
	}
	a.pending = append(a.pending, strings.TrimSpace(tok.Value))
}

// dropComment discards a pending comment that will never attach
func (a *accumulator) dropComment() {
	a.pending = nil
}

// begin starts a directive at a marker token, splitting its text into
// keyword and args and claiming the pending comment
func (a *accumulator) begin(tok token.Token) {
	a.active = true
	a.start = tok.Pos()
	a.end = tok.End

	// The sigil is always the first byte; a bare @ leaves an empty body.
	segments := strings.Split(tok.Value[1:], ":")
	a.keyword = segments[0]
	if len(segments) > 1 {
		a.args = segments[1:]
	}

	if len(a.pending) > 0 {
		a.comment = strings.Join(a.pending, "\n")
		a.hasComment = true
		a.commentStart = a.pendingStart
		a.pending = nil
	}
}

func (a *accumulator) addAtom(tok token.Token) {
	a.atoms = append(a.atoms, tok.Value)
	a.end = tok.End
}

func (a *accumulator) openBlock(tok token.Token) {
	a.block = &Block{Range: tok.Span()}
	a.blockOpen = true
	a.end = tok.End
}

func (a *accumulator) fillBlock(tok token.Token) {
	a.block.Content = tok.Value
	a.block.Range.End = tok.End
	a.end = tok.End
}

func (a *accumulator) sealBlock(tok token.Token) {
	a.block.Range.End = tok.End
	a.blockOpen = false
	a.end = tok.End
}

// finish closes the current directive and resets the accumulator. It
// returns nil when there is nothing to emit: no directive was open, or
// the open one had neither keyword nor block (a bare @ that never got a
// body declares nothing). The pending comment survives for the next
// header.
func (a *accumulator) finish() *Directive {
	var d *Directive
	if a.active && (a.keyword != "" || a.block != nil) {
		d = &Directive{
			Comment: a.comment,
			Keyword: a.keyword,
			Args:    a.args,
			Atoms:   a.atoms,
			Block:   a.block,
			Range:   token.Range{Start: a.start, End: a.end},
		}
		d.CommentRange = d.Range
		if a.hasComment {
			d.CommentRange.Start = a.commentStart
		}
	}

	a.active = false
	a.keyword = ""
	a.args = nil
	a.atoms = nil
	a.block = nil
	a.blockOpen = false
	a.comment = ""
	a.hasComment = false
	return d
}
