// Package resolver assembles the symbol list applicable to one
// document: the scope partitions it can see, exported symbols of the
// global patch files, its source or generated counterpart, and its own
// declarations with imports folded in recursively.
//
// Resolution is best-effort advisory data. A missing import target or
// counterpart contributes nothing; only the target document's own
// parse failure surfaces as an error, and even then the partition
// symbols still come back.
package resolver

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/bates64/vscode-star-rod/internal/database"
	"github.com/bates64/vscode-star-rod/internal/lang/directive"
	"github.com/bates64/vscode-star-rod/internal/lang/lib"
	"github.com/bates64/vscode-star-rod/internal/stringx"
	"github.com/bates64/vscode-star-rod/internal/workspace"
	"github.com/bates64/vscode-star-rod/pkg/core/log"
)

// Overlay supplies in-memory text for open documents. Overlay text
// always wins over the file on disk.
type Overlay interface {
	Lookup(path string) (string, bool)
}

// Resolver computes per-document symbol lists. It holds no mutable
// state; concurrent resolutions are independent.
type Resolver struct {
	logger  *log.Logger
	parser  *directive.Parser
	ws      *workspace.Workspace
	overlay Overlay
}

// Options configures a Resolver. Workspace and Overlay are optional;
// without a workspace the global-patch fold contributes nothing.
type Options struct {
	Logger    *log.Logger
	Workspace *workspace.Workspace
	Overlay   Overlay
}

// New creates a Resolver.
func New(opts Options) *Resolver {
	logger := opts.Logger
	if logger == nil {
		logger = log.GetDefault()
	}
	logger = logger.WithField("component", "resolver")

	return &Resolver{
		logger:  logger,
		parser:  directive.New(directive.Options{Logger: logger}),
		ws:      opts.Workspace,
		overlay: opts.Overlay,
	}
}

// Resolve assembles the symbol list for a document given its text.
// The returned error reports a parse failure of the document itself;
// the partition symbols are still returned alongside it.
func (r *Resolver) Resolve(db *database.Database, path, text string) ([]*lib.LibraryEntry, error) {
	entries := db.EntriesForScopes(ScopesFor(path)...)

	if r.ws != nil && !r.inPatchTree(path) {
		for _, global := range r.ws.GlobalPatchFiles() {
			entries = append(entries, r.exportedSymbols(global)...)
		}
	}

	visited := map[string]bool{filepath.Clean(path): true}

	if workspace.IsPatchFile(path) {
		if counterpart, ok := r.findCounterpart(path); ok {
			entries = append(entries, r.localSymbols(counterpart, visited)...)
		}
	}

	own, err := r.foldDocument(path, text, visited, false)
	entries = append(entries, own...)
	return entries, err
}

// ResolveFile is Resolve for a document identified only by path; the
// text comes from the overlay or from disk.
func (r *Resolver) ResolveFile(db *database.Database, path string) ([]*lib.LibraryEntry, error) {
	text, ok := r.readDocument(path)
	if !ok {
		return db.EntriesForScopes(ScopesFor(path)...), nil
	}
	return r.Resolve(db, path, text)
}

// inPatchTree tests the document path relative to the workspace root
// so directories above the mod cannot spuriously match.
func (r *Resolver) inPatchTree(path string) bool {
	rel, err := filepath.Rel(r.ws.Root, path)
	if err != nil {
		rel = path
	}
	return workspace.InPatchTree(rel)
}

// findCounterpart picks the script twin of a patch file: the source
// variant when it exists, else the generated one, never both.
func (r *Resolver) findCounterpart(path string) (string, bool) {
	if src, ok := workspace.SourceCounterpart(path); ok && r.documentExists(src) {
		return src, true
	}
	if gen, ok := workspace.GeneratedCounterpart(path); ok && r.documentExists(gen) {
		return gen, true
	}
	return "", false
}

// exportedSymbols parses one global patch file under export gating.
// Each global file folds independently with its own visited set.
func (r *Resolver) exportedSymbols(path string) []*lib.LibraryEntry {
	text, ok := r.readDocument(path)
	if !ok {
		return nil
	}

	f := &fold{r: r, gated: true, visited: map[string]bool{filepath.Clean(path): true}}
	if err := f.run(path, text, ""); err != nil {
		r.logger.Debug("global patch file skipped", log.Fields{"file": path, "error": err.Error()})
		return nil
	}
	return f.released
}

// localSymbols folds a document's own declarations without gating,
// sharing the caller's visited set.
func (r *Resolver) localSymbols(path string, visited map[string]bool) []*lib.LibraryEntry {
	visited[filepath.Clean(path)] = true

	text, ok := r.readDocument(path)
	if !ok {
		return nil
	}
	entries, err := r.foldDocument(path, text, visited, false)
	if err != nil {
		r.logger.Debug("counterpart skipped", log.Fields{"file": path, "error": err.Error()})
		return nil
	}
	return entries
}

func (r *Resolver) foldDocument(path, text string, visited map[string]bool, gated bool) ([]*lib.LibraryEntry, error) {
	f := &fold{r: r, gated: gated, visited: visited}
	if err := f.run(path, text, ""); err != nil {
		return nil, err
	}
	return f.released, nil
}

// readDocument returns a document's text, overlay first, disk second.
func (r *Resolver) readDocument(path string) (string, bool) {
	if r.overlay != nil {
		if text, ok := r.overlay.Lookup(path); ok {
			return text, true
		}
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", false
	}
	return string(data), true
}

// documentExists mirrors readDocument's sources without reading.
func (r *Resolver) documentExists(path string) bool {
	if r.overlay != nil {
		if _, ok := r.overlay.Lookup(path); ok {
			return true
		}
	}
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// fold walks one document's directives depth-first. Ungated folds emit
// declarations directly; gated folds stage them until an export
// directive releases them by name.
type fold struct {
	r       *Resolver
	gated   bool
	visited map[string]bool

	staged   []*lib.LibraryEntry
	released []*lib.LibraryEntry
}

func (f *fold) run(path, text, prefix string) error {
	directives, err := f.r.parser.Parse(text)
	if err != nil {
		return err
	}

	for _, d := range directives {
		switch d.Keyword {
		case directive.KeywordNew:
			entry := synthesizeEntry(d, path)
			if entry == nil {
				continue
			}
			entry.Name = applyPrefix(entry.Name, prefix)
			if f.gated {
				f.staged = append(f.staged, entry)
			} else {
				f.released = append(f.released, entry)
			}

		case directive.KeywordImport:
			f.importFile(d, path, prefix)

		case directive.KeywordExport:
			if f.gated {
				f.release(d.Name())
			}
		}
	}
	return nil
}

// importFile recursively folds an imported document. Cycles and
// unreadable targets contribute nothing.
func (f *fold) importFile(d *directive.Directive, from, prefix string) {
	if len(d.Atoms) == 0 {
		return
	}

	target := d.Atoms[0]
	if !filepath.IsAbs(target) {
		target = filepath.Join(filepath.Dir(from), target)
	}
	target = filepath.Clean(target)

	if f.visited[target] {
		return
	}
	f.visited[target] = true

	text, ok := f.r.readDocument(target)
	if !ok {
		f.r.logger.Debug("import target not found", log.Fields{"file": target, "from": from})
		return
	}

	childPrefix := prefix
	if len(d.Atoms) > 1 {
		childPrefix += d.Atoms[1]
	}

	if err := f.run(target, text, childPrefix); err != nil {
		f.r.logger.Debug("import target skipped", log.Fields{"file": target, "error": err.Error()})
	}
}

// release moves the first staged declaration matching an exported name
// into the released list, preserving export order.
func (f *fold) release(name string) {
	if name == "" {
		return
	}
	for i, entry := range f.staged {
		if matchName(entry.Name, name) {
			f.released = append(f.released, entry)
			f.staged = append(f.staged[:i], f.staged[i+1:]...)
			return
		}
	}
}

// synthesizeEntry builds a LibraryEntry from a new directive. The
// struct-type argument picks the usage: Script declarations are
// scripts, Function declarations are api when the name carries an
// uppercase letter and asm otherwise, anything else stays unknown.
func synthesizeEntry(d *directive.Directive, path string) *lib.LibraryEntry {
	name := d.Name()
	if name == "" {
		return nil
	}

	structType := d.StructType()
	usage := lib.UsageAny
	switch structType {
	case "Script":
		usage = lib.UsageSCR
	case "Function":
		if stringx.ContainsUpper(name) {
			usage = lib.UsageAPI
		} else {
			usage = lib.UsageASM
		}
	}

	return &lib.LibraryEntry{
		Usage:      usage,
		StructType: structType,
		Name:       name,
		Note:       d.Comment,
		Location: &lib.Location{
			File: path,
			Line: d.Range.Start.Line,
		},
	}
}

// applyPrefix inserts a namespace immediately after the leading sigil,
// or at the front when the name has none.
func applyPrefix(name, prefix string) string {
	if prefix == "" {
		return name
	}
	if strings.HasPrefix(name, "$") {
		return "$" + prefix + name[1:]
	}
	return prefix + name
}

// matchName compares a declaration name against an exported one,
// tolerating a missing sigil on either side.
func matchName(declared, exported string) bool {
	return strings.TrimPrefix(declared, "$") == strings.TrimPrefix(exported, "$")
}

// LookupName scans a resolved list for a symbol by name, most local
// match first. The comparison ignores the leading sigil.
func LookupName(entries []*lib.LibraryEntry, name string) (*lib.LibraryEntry, bool) {
	for i := len(entries) - 1; i >= 0; i-- {
		if matchName(entries[i].Name, name) {
			return entries[i], true
		}
	}
	return nil, false
}

// LookupAddress scans a resolved list for a symbol by RAM address,
// most local match first. Hex case and an optional 0x prefix are
// ignored; entries without an address never match.
func LookupAddress(entries []*lib.LibraryEntry, ram string) (*lib.LibraryEntry, bool) {
	want := normalizeRAM(ram)
	if want == "" {
		return nil, false
	}
	for i := len(entries) - 1; i >= 0; i-- {
		if normalizeRAM(entries[i].RAM) == want {
			return entries[i], true
		}
	}
	return nil, false
}

func normalizeRAM(ram string) string {
	return strings.TrimPrefix(strings.ToUpper(strings.TrimSpace(ram)), "0X")
}
