// Package directive assembles the token stream of a patch document into
// its ordered structural declarations. The parser is deliberately
// tolerant: stray text between declarations is skipped, half-typed
// headers survive, and only tokenization itself can fail.
package directive

import (
	"strings"

	"github.com/bates64/vscode-star-rod/internal/lang/token"
)

// Keywords the symbol resolver gives meaning to. The parser itself
// accepts any keyword and passes unknown ones through untouched.
const (
	KeywordNew    = "new"
	KeywordImport = "import"
	KeywordExport = "export"
	KeywordAlias  = "alias"
	KeywordString = "string"
)

// Block is the verbatim braced body of a directive.
type Block struct {
	Content string      // text between the braces, escapes preserved
	Range   token.Range // opening brace through closing brace
}

// Directive is one structural declaration in a patch document: a new
// struct, a patch to existing data, an import/export, an alias, or a
// string block.
type Directive struct {
	Comment string   // leading %! documentation, newline-joined
	Keyword string   // first marker segment; empty for the bare @ form
	Args    []string // remaining colon segments of the marker
	Atoms   []string // whitespace-delimited tokens after the marker
	Block   *Block   // braced body, nil when none was written

	Range        token.Range // marker through the last owned token
	CommentRange token.Range // Range widened to the leading comment
}

// Name returns the first atom, conventionally the declared $-identifier.
// Empty when the directive carries no atoms.
func (d *Directive) Name() string {
	if len(d.Atoms) == 0 {
		return ""
	}
	return d.Atoms[0]
}

// StructType returns the first marker argument, which for #new holds the
// declared struct type (Script, Function, ...). Empty when absent.
func (d *Directive) StructType() string {
	if len(d.Args) == 0 {
		return ""
	}
	return d.Args[0]
}

// String renders a compact single-line form for logs and listings.
func (d *Directive) String() string {
	var b strings.Builder
	if d.Keyword == "" {
		b.WriteByte('@')
	} else {
		b.WriteByte('#')
		b.WriteString(d.Keyword)
	}
	for _, arg := range d.Args {
		b.WriteByte(':')
		b.WriteString(arg)
	}
	for _, atom := range d.Atoms {
		b.WriteByte(' ')
		b.WriteString(atom)
	}
	if d.Block != nil {
		b.WriteString(" {...}")
	}
	return b.String()
}
