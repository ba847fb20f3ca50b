package directive

import (
	"reflect"
	"testing"

	"github.com/bates64/vscode-star-rod/internal/lang/token"
)

func parseOne(t *testing.T, input string) *Directive {
	t.Helper()
	directives, err := Parse(input)
	if err != nil {
		t.Fatalf("Parse(%q) failed: %v", input, err)
	}
	if len(directives) != 1 {
		t.Fatalf("Parse(%q) = %d directives, expected 1", input, len(directives))
	}
	return directives[0]
}

func TestParseDirectiveShape(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		keyword string
		args    []string
		atoms   []string
		block   string
		noBlock bool
	}{
		{
			name:    "new with type and modifier",
			input:   "#new:Script:overwrite $X $End {content}",
			keyword: "new",
			args:    []string{"Script", "overwrite"},
			atoms:   []string{"$X", "$End"},
			block:   "content",
		},
		{
			name:    "import without block",
			input:   "#import lib.mpat",
			keyword: "import",
			atoms:   []string{"lib.mpat"},
			noBlock: true,
		},
		{
			name:    "export without block",
			input:   "#export $Func",
			keyword: "export",
			atoms:   []string{"$Func"},
			noBlock: true,
		},
		{
			name:    "string block with numeric args",
			input:   "#string:1F:0A {text}",
			keyword: "string",
			args:    []string{"1F", "0A"},
			block:   "text",
		},
		{
			name:    "bare patch marker",
			input:   "@ $Target { 00 11 }",
			keyword: "",
			atoms:   []string{"$Target"},
			block:   " 00 11 ",
		},
		{
			name:    "alias pair",
			input:   "#alias $A $B",
			keyword: "alias",
			atoms:   []string{"$A", "$B"},
			noBlock: true,
		},
		{
			name:    "quoted atom",
			input:   `#import "sub dir/lib.mpat"`,
			keyword: "import",
			atoms:   []string{"sub dir/lib.mpat"},
			noBlock: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := parseOne(t, tt.input)
			if d.Keyword != tt.keyword {
				t.Errorf("Keyword = %q, expected %q", d.Keyword, tt.keyword)
			}
			if !reflect.DeepEqual(d.Args, tt.args) {
				t.Errorf("Args = %v, expected %v", d.Args, tt.args)
			}
			if !reflect.DeepEqual(d.Atoms, tt.atoms) {
				t.Errorf("Atoms = %v, expected %v", d.Atoms, tt.atoms)
			}
			if tt.noBlock {
				if d.Block != nil {
					t.Errorf("Block = %q, expected none", d.Block.Content)
				}
			} else {
				if d.Block == nil {
					t.Fatal("Block = nil, expected content")
				}
				if d.Block.Content != tt.block {
					t.Errorf("Block.Content = %q, expected %q", d.Block.Content, tt.block)
				}
			}
		})
	}
}

func TestLeadingComments(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		comment string
	}{
		{
			name:    "adjacent comment attaches",
			input:   "%! does a thing\n#new:Script $X",
			comment: "does a thing",
		},
		{
			name:    "multiple lines join with newlines",
			input:   "%! one\n%! two\n#new:Script $X",
			comment: "one\ntwo",
		},
		{
			name:    "empty line orphans the comment",
			input:   "%! orphan\n\n#new:Script $X",
			comment: "",
		},
		{
			name:    "plain comment does not break attachment",
			input:   "%! doc\n% plain\n#new:Script $X",
			comment: "doc",
		},
		{
			name:    "whitespace-only line does not break attachment",
			input:   "%! doc\n   \n#new:Script $X",
			comment: "doc",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := parseOne(t, tt.input)
			if d.Comment != tt.comment {
				t.Errorf("Comment = %q, expected %q", d.Comment, tt.comment)
			}
		})
	}
}

func TestCommentAttachesToNextHeader(t *testing.T) {
	input := "#export $A\n%! for b\n#export $B"
	directives, err := Parse(input)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if len(directives) != 2 {
		t.Fatalf("directive count = %d, expected 2", len(directives))
	}
	if directives[0].Comment != "" {
		t.Errorf("first Comment = %q, expected empty", directives[0].Comment)
	}
	if directives[1].Comment != "for b" {
		t.Errorf("second Comment = %q, expected %q", directives[1].Comment, "for b")
	}
}

func TestBlockClosesDirective(t *testing.T) {
	input := "#new:Script $X {a} $stray\n#export $Y"
	directives, err := Parse(input)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if len(directives) != 2 {
		t.Fatalf("directive count = %d, expected 2", len(directives))
	}

	first := directives[0]
	if !reflect.DeepEqual(first.Atoms, []string{"$X"}) {
		t.Errorf("Atoms = %v, expected only $X before the block", first.Atoms)
	}
	if first.Block == nil || first.Block.Content != "a" {
		t.Errorf("Block = %v, expected content %q", first.Block, "a")
	}

	second := directives[1]
	if second.Keyword != "export" || second.Name() != "$Y" {
		t.Errorf("second directive = %s, expected #export $Y", second)
	}
}

func TestBareMarkerWithoutBlockIsDropped(t *testing.T) {
	input := "@ $Orphan\n\n#export $X"
	directives, err := Parse(input)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if len(directives) != 1 {
		t.Fatalf("directive count = %d, expected 1 (%v)", len(directives), directives)
	}
	if directives[0].Keyword != "export" {
		t.Errorf("Keyword = %q, expected export", directives[0].Keyword)
	}
}

func TestDirectiveSpansSingleNewlines(t *testing.T) {
	t.Run("block on the next line", func(t *testing.T) {
		d := parseOne(t, "#new:Script $X\n{\nSetAnim\n}")
		if d.Block == nil {
			t.Fatal("Block = nil, expected the next-line block to attach")
		}
		if d.Block.Content != "\nSetAnim\n" {
			t.Errorf("Block.Content = %q", d.Block.Content)
		}
	})

	t.Run("atoms continue past one newline", func(t *testing.T) {
		d := parseOne(t, "#alias $A\n$B")
		if !reflect.DeepEqual(d.Atoms, []string{"$A", "$B"}) {
			t.Errorf("Atoms = %v, expected [$A $B]", d.Atoms)
		}
	})
}

func TestEmptyLineClosesDirective(t *testing.T) {
	input := "#export $A\n\n$stray"
	directives, err := Parse(input)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if len(directives) != 1 {
		t.Fatalf("directive count = %d, expected 1", len(directives))
	}
	if !reflect.DeepEqual(directives[0].Atoms, []string{"$A"}) {
		t.Errorf("Atoms = %v, stray content after the gap must not join", directives[0].Atoms)
	}
}

func TestStrayContentIgnored(t *testing.T) {
	input := "random junk ~~~ here\n#export $X"
	directives, err := Parse(input)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if len(directives) != 1 {
		t.Fatalf("directive count = %d, expected 1", len(directives))
	}
	if directives[0].Name() != "$X" {
		t.Errorf("Name = %q, expected $X", directives[0].Name())
	}
}

func TestDirectiveRanges(t *testing.T) {
	t.Run("comment widens only the comment range", func(t *testing.T) {
		d := parseOne(t, "%! doc\n#export $X")

		wantStart := token.Position{Line: 2, Column: 1, Offset: 7}
		if d.Range.Start != wantStart {
			t.Errorf("Range.Start = %+v, expected %+v", d.Range.Start, wantStart)
		}
		wantEnd := token.Position{Line: 2, Column: 11, Offset: 17}
		if d.Range.End != wantEnd {
			t.Errorf("Range.End = %+v, expected %+v", d.Range.End, wantEnd)
		}

		wantCommentStart := token.Position{Line: 1, Column: 1, Offset: 0}
		if d.CommentRange.Start != wantCommentStart {
			t.Errorf("CommentRange.Start = %+v, expected %+v", d.CommentRange.Start, wantCommentStart)
		}
		if d.CommentRange.End != d.Range.End {
			t.Errorf("CommentRange.End = %+v, expected %+v", d.CommentRange.End, d.Range.End)
		}
	})

	t.Run("no comment means equal ranges", func(t *testing.T) {
		d := parseOne(t, "#export $X")
		if d.CommentRange != d.Range {
			t.Errorf("CommentRange = %+v, Range = %+v, expected equal", d.CommentRange, d.Range)
		}
	})

	t.Run("block extends the range to its closing brace", func(t *testing.T) {
		d := parseOne(t, "#new:Script $X {abc}")
		if d.Block == nil {
			t.Fatal("Block = nil")
		}

		wantBlockStart := token.Position{Line: 1, Column: 16, Offset: 15}
		if d.Block.Range.Start != wantBlockStart {
			t.Errorf("Block.Range.Start = %+v, expected %+v", d.Block.Range.Start, wantBlockStart)
		}
		wantEnd := token.Position{Line: 1, Column: 21, Offset: 20}
		if d.Block.Range.End != wantEnd {
			t.Errorf("Block.Range.End = %+v, expected %+v", d.Block.Range.End, wantEnd)
		}
		if d.Range.End != wantEnd {
			t.Errorf("Range.End = %+v, expected the block close %+v", d.Range.End, wantEnd)
		}
	})
}

func TestParseEmptyDocument(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"empty input", ""},
		{"comments only", "% a\n% b\n"},
		{"orphan doc comment", "%! never attached"},
		{"blank lines", "\n\n\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			directives, err := Parse(tt.input)
			if err != nil {
				t.Fatalf("Parse(%q) failed: %v", tt.input, err)
			}
			if len(directives) != 0 {
				t.Errorf("directives = %v, expected none", directives)
			}
		})
	}
}

func TestParseLexicalError(t *testing.T) {
	directives, err := Parse("#export $X }")
	if err == nil {
		t.Fatal("expected a lexical error for the stray brace")
	}
	perr, ok := err.(*token.ParseError)
	if !ok {
		t.Fatalf("error type = %T, expected *token.ParseError", err)
	}
	if perr.Kind != token.KindLexical {
		t.Errorf("Kind = %v, expected lexical", perr.Kind)
	}
	if directives != nil {
		t.Errorf("directives = %v, expected nil on error", directives)
	}
}

func TestDirectiveString(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"#new:Script $X {a}", "#new:Script $X {...}"},
		{"@ $T {a}", "@ $T {...}"},
		{"#export $Func", "#export $Func"},
	}

	for _, tt := range tests {
		d := parseOne(t, tt.input)
		if got := d.String(); got != tt.expected {
			t.Errorf("String() = %q, expected %q", got, tt.expected)
		}
	}
}
