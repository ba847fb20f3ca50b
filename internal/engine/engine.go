// Package engine is the facade tying the language parsers, the symbol
// database, the resolver, and the optional sqlite index together
// behind document-oriented operations. All reads are pure; shared
// state is limited to the open-document store and the database handle,
// both guarded and swapped whole.
package engine

import (
	"context"
	"os"
	"sync"

	"github.com/bates64/vscode-star-rod/internal/database"
	"github.com/bates64/vscode-star-rod/internal/index"
	"github.com/bates64/vscode-star-rod/internal/lang/directive"
	"github.com/bates64/vscode-star-rod/internal/lang/enum"
	"github.com/bates64/vscode-star-rod/internal/lang/lib"
	"github.com/bates64/vscode-star-rod/internal/resolver"
	"github.com/bates64/vscode-star-rod/internal/workspace"
	"github.com/bates64/vscode-star-rod/pkg/core/cache"
	"github.com/bates64/vscode-star-rod/pkg/core/log"
	"github.com/bates64/vscode-star-rod/pkg/core/srerror"
)

// Config holds engine configuration.
type Config struct {
	// DatabaseDir is the Star Rod database directory. A missing or
	// unreadable directory degrades to an empty database; the engine
	// still serves documents.
	DatabaseDir string

	// WorkspaceDir seeds the workspace search; empty means no
	// workspace and therefore no global-patch folding.
	WorkspaceDir string

	// Index is optional. When set it is rebuilt on every database
	// swap.
	Index *index.Index

	Logger *log.Logger
	Strict bool
}

// Engine owns the engine-wide collaborators and the mutable handles.
type Engine struct {
	logger     *log.Logger
	loader     *database.Loader
	parser     *directive.Parser
	resolver   *resolver.Resolver
	docs       *documentStore
	directives *cache.Cache
	idx        *index.Index
	ws         *workspace.Workspace

	mu sync.RWMutex
	db *database.Database
}

// Stats is an engine-wide snapshot for status surfaces.
type Stats struct {
	Database      database.Stats `json:"database"`
	OpenDocuments int            `json:"open_documents"`
	CacheHits     int64          `json:"cache_hits"`
	CacheMisses   int64          `json:"cache_misses"`
	Workspace     string         `json:"workspace,omitempty"`
	IndexEnabled  bool           `json:"index_enabled"`
}

// New creates an engine, loading the database once up front.
func New(cfg Config) *Engine {
	logger := cfg.Logger
	if logger == nil {
		logger = log.GetDefault()
	}
	logger = logger.WithField("component", "engine")

	var ws *workspace.Workspace
	if cfg.WorkspaceDir != "" {
		found, err := workspace.Find(cfg.WorkspaceDir)
		if err != nil {
			logger.Warn("no workspace found", log.Fields{"start": cfg.WorkspaceDir})
		} else {
			ws = found
			logger.Info("workspace found", log.Fields{"root": ws.Root})
		}
	}

	docs := newDocumentStore()
	loader := database.NewLoader(cfg.DatabaseDir, database.Options{Logger: logger, Strict: cfg.Strict})

	db, err := loader.Load()
	if err != nil {
		logger.WarnWithErr("database unavailable, starting empty", err)
		db = database.New()
	}

	e := &Engine{
		logger: logger,
		loader: loader,
		parser: directive.New(directive.Options{Logger: logger}),
		resolver: resolver.New(resolver.Options{
			Logger:    logger,
			Workspace: ws,
			Overlay:   docs,
		}),
		docs:       docs,
		directives: cache.New(),
		idx:        cfg.Index,
		ws:         ws,
		db:         db,
	}

	if e.idx != nil {
		if err := e.idx.Rebuild(context.Background(), db); err != nil {
			logger.WarnWithErr("initial index rebuild failed", err)
		}
	}
	return e
}

// Workspace returns the located workspace, or nil.
func (e *Engine) Workspace() *workspace.Workspace {
	return e.ws
}

// Loader returns the database loader, for wiring a watcher.
func (e *Engine) Loader() *database.Loader {
	return e.loader
}

// OpenDocument registers or replaces an open document.
func (e *Engine) OpenDocument(path, text string, revision int64) {
	e.docs.open(path, text, revision)
	e.logger.Debug("document opened", log.Fields{"path": path, "revision": revision})
}

// UpdateDocument replaces an open document's text. Updates must carry
// a strictly newer revision; anything else is rejected.
func (e *Engine) UpdateDocument(path, text string, revision int64) error {
	open, fresh := e.docs.update(path, text, revision)
	if !open {
		return srerror.Newf("document %q is not open", path).
			WithCode(srerror.CodeNotFound).
			WithOperation("engine.UpdateDocument")
	}
	if !fresh {
		return srerror.Newf("stale revision %d for %q", revision, path).
			WithCode(srerror.CodeStaleRevision).
			WithOperation("engine.UpdateDocument").
			WithDetail("revision", revision)
	}
	return nil
}

// CloseDocument forgets a document and its cached parses.
func (e *Engine) CloseDocument(path string) {
	if e.docs.close(path) {
		e.directives.Invalidate(path)
		e.logger.Debug("document closed", log.Fields{"path": path})
	}
}

// Directives parses a document into its directive list. Open documents
// are served from the revision-keyed cache; disk files parse fresh.
func (e *Engine) Directives(path string) ([]*directive.Directive, error) {
	if doc, ok := e.docs.get(path); ok {
		v, err := e.directives.GetOrCompute(path, doc.Revision, func() (interface{}, error) {
			return e.parser.Parse(doc.Text)
		})
		if err != nil {
			return nil, err
		}
		return v.([]*directive.Directive), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, srerror.Wrapf(err, "cannot read document %q", path).
			WithCode(srerror.CodeIO).
			WithOperation("engine.Directives")
	}
	return e.parser.Parse(string(data))
}

// Symbols resolves the full symbol list applicable to a document.
func (e *Engine) Symbols(path string) ([]*lib.LibraryEntry, error) {
	db := e.database()
	if doc, ok := e.docs.get(path); ok {
		return e.resolver.Resolve(db, path, doc.Text)
	}
	return e.resolver.ResolveFile(db, path)
}

// LookupSymbol finds one symbol by name in a document's resolved list.
func (e *Engine) LookupSymbol(path, name string) (*lib.LibraryEntry, error) {
	entries, err := e.Symbols(path)
	if entry, ok := resolver.LookupName(entries, name); ok {
		return entry, nil
	}
	if err != nil {
		return nil, err
	}
	return nil, srerror.Newf("symbol %q not found", name).
		WithCode(srerror.CodeNotFound).
		WithOperation("engine.LookupSymbol").
		WithDetail("document", path)
}

// LookupAddress finds one symbol by RAM address in a document's
// resolved list.
func (e *Engine) LookupAddress(path, ram string) (*lib.LibraryEntry, error) {
	entries, err := e.Symbols(path)
	if entry, ok := resolver.LookupAddress(entries, ram); ok {
		return entry, nil
	}
	if err != nil {
		return nil, err
	}
	return nil, srerror.Newf("no symbol at address %q", ram).
		WithCode(srerror.CodeNotFound).
		WithOperation("engine.LookupAddress").
		WithDetail("document", path)
}

// Enums lists the loaded enum definitions.
func (e *Engine) Enums() []*enum.Enum {
	return e.database().Enums()
}

// Flags lists the loaded flag sets.
func (e *Engine) Flags() []*enum.Flags {
	return e.database().FlagSets()
}

// ReloadDatabase loads a fresh snapshot from disk and swaps it in.
func (e *Engine) ReloadDatabase(ctx context.Context) (database.Stats, error) {
	db, err := e.loader.Load()
	if err != nil {
		return database.Stats{}, err
	}
	e.SetDatabase(ctx, db)
	return db.Stats(), nil
}

// SetDatabase swaps the database handle, rebuilding the index when one
// is attached. Used directly by the filesystem watcher.
func (e *Engine) SetDatabase(ctx context.Context, db *database.Database) {
	e.mu.Lock()
	e.db = db
	e.mu.Unlock()

	if e.idx != nil {
		if err := e.idx.Rebuild(ctx, db); err != nil {
			e.logger.WarnWithErr("index rebuild failed", err)
		}
	}
	e.logger.Info("database swapped", log.Fields{"entries": db.Stats().Entries})
}

// Stats reports a snapshot of the engine's state.
func (e *Engine) Stats() Stats {
	hits, misses, _ := e.directives.Stats()
	s := Stats{
		Database:      e.database().Stats(),
		OpenDocuments: e.docs.size(),
		CacheHits:     hits,
		CacheMisses:   misses,
		IndexEnabled:  e.idx != nil,
	}
	if e.ws != nil {
		s.Workspace = e.ws.Root
	}
	return s
}

func (e *Engine) database() *database.Database {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.db
}
