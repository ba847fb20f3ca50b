package database

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/bates64/vscode-star-rod/internal/lang/enum"
	"github.com/bates64/vscode-star-rod/internal/lang/lib"
	"github.com/bates64/vscode-star-rod/pkg/core/log"
	"github.com/bates64/vscode-star-rod/pkg/core/srerror"
)

// Stage names the load phase a file failed in.
type Stage string

const (
	StageRead    Stage = "read"
	StageLibrary Stage = "library"
	StageEnum    Stage = "enum"
)

// LoadError records one skipped file. A load never aborts on a bad
// file; it collects these instead.
type LoadError struct {
	File  string
	Stage Stage
	Err   error
}

func (e LoadError) Error() string {
	return fmt.Sprintf("%s (%s): %v", e.File, e.Stage, e.Err)
}

func (e LoadError) Unwrap() error {
	return e.Err
}

// Loader reads a Star Rod database directory into Database snapshots.
// Layout: `*.lib` at the top level, `types/*.enum`, `flags/*.flags`.
type Loader struct {
	root   string
	logger *log.Logger
	lib    *lib.Parser
}

// Options configures a Loader.
type Options struct {
	Logger *log.Logger

	// Strict is passed through to the library parser so half-typed
	// lines surface as warnings.
	Strict bool
}

// NewLoader creates a loader rooted at a database directory.
func NewLoader(root string, opts Options) *Loader {
	logger := opts.Logger
	if logger == nil {
		logger = log.GetDefault()
	}
	logger = logger.WithField("component", "database-loader")

	return &Loader{
		root:   root,
		logger: logger,
		lib:    lib.New(lib.Options{Logger: logger, Strict: opts.Strict}),
	}
}

// Root returns the database directory this loader reads.
func (l *Loader) Root() string {
	return l.root
}

// Load reads the whole directory tree into a fresh snapshot. Files are
// visited in sorted order so repeated loads are deterministic; each
// file parses independently and failures land in Database.Errors.
func (l *Loader) Load() (*Database, error) {
	info, err := os.Stat(l.root)
	if err != nil || !info.IsDir() {
		return nil, srerror.Newf("database directory %q does not exist", l.root).
			WithCode(srerror.CodeDatabaseError).
			WithOperation("database.Load")
	}

	db := New()
	l.loadLibraries(db)
	l.loadEnums(db)
	l.loadFlags(db)

	stats := db.Stats()
	l.logger.Info("database loaded", log.Fields{
		"dir":     l.root,
		"files":   stats.Files,
		"entries": stats.Entries,
		"enums":   stats.Enums,
		"flags":   stats.FlagSets,
		"errors":  stats.Errors,
	})
	return db, nil
}

func (l *Loader) loadLibraries(db *Database) {
	for _, path := range l.glob("*.lib") {
		input, ok := l.read(db, path)
		if !ok {
			continue
		}

		f, err := l.lib.Parse(input, path)
		if err != nil {
			l.skip(db, path, StageLibrary, err)
			continue
		}
		for _, w := range f.Warnings {
			l.logger.Warn("library warning", log.Fields{
				"file": path,
				"line": w.Line,
				"text": w.Message,
			})
		}
		db.addLibrary(f)
	}
}

func (l *Loader) loadEnums(db *Database) {
	for _, path := range l.glob(filepath.Join("types", "*.enum")) {
		input, ok := l.read(db, path)
		if !ok {
			continue
		}

		e, err := enum.Parse(input, path)
		if err != nil {
			l.skip(db, path, StageEnum, err)
			continue
		}
		db.addEnum(e)
	}
}

func (l *Loader) loadFlags(db *Database) {
	for _, path := range l.glob(filepath.Join("flags", "*.flags")) {
		input, ok := l.read(db, path)
		if !ok {
			continue
		}
		db.addFlags(enum.ParseFlags(input, path))
	}
}

// glob lists matching files under the root. filepath.Glob returns
// sorted paths, which is what keeps loads deterministic.
func (l *Loader) glob(pattern string) []string {
	paths, err := filepath.Glob(filepath.Join(l.root, pattern))
	if err != nil {
		// Only possible with a malformed pattern; ours are fixed.
		l.logger.WarnWithErr("database glob failed", err, log.Fields{"pattern": pattern})
		return nil
	}
	return paths
}

func (l *Loader) read(db *Database, path string) (string, bool) {
	data, err := os.ReadFile(path)
	if err != nil {
		l.skip(db, path, StageRead, err)
		return "", false
	}
	return string(data), true
}

func (l *Loader) skip(db *Database, path string, stage Stage, err error) {
	db.errors = append(db.errors, LoadError{File: path, Stage: stage, Err: err})
	l.logger.WarnWithErr("skipping database file", err, log.Fields{
		"file":  path,
		"stage": string(stage),
	})
}
