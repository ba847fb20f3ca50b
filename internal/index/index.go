// Package index persists the merged symbol database in sqlite so the
// CLI can answer repeated name and address lookups without reparsing
// the library files. The index is a cache of one database snapshot;
// Rebuild replaces its contents wholesale.
package index

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	_ "github.com/mattn/go-sqlite3"

	"github.com/bates64/vscode-star-rod/internal/database"
	"github.com/bates64/vscode-star-rod/internal/lang/lib"
	"github.com/bates64/vscode-star-rod/pkg/core/srerror"
)

// Index is a sqlite-backed symbol lookup table.
type Index struct {
	db *sql.DB
	mu sync.RWMutex
}

// Open creates or opens the index file, preparing the schema.
func Open(path string) (*Index, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, srerror.Wrapf(err, "cannot create index directory %q", dir).
			WithCode(srerror.CodeIndexError).
			WithOperation("index.Open")
	}

	// WAL mode keeps reads cheap while a rebuild transaction runs.
	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_synchronous=NORMAL")
	if err != nil {
		return nil, srerror.Wrapf(err, "cannot open index %q", path).
			WithCode(srerror.CodeIndexError).
			WithOperation("index.Open")
	}

	idx := &Index{db: db}
	if err := idx.initSchema(); err != nil {
		db.Close()
		return nil, srerror.Wrap(err, "cannot initialize index schema").
			WithCode(srerror.CodeIndexError).
			WithOperation("index.Open")
	}
	return idx, nil
}

func (i *Index) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS symbols (
		scope       TEXT NOT NULL,
		usage       TEXT NOT NULL,
		name        TEXT NOT NULL,
		ram         TEXT,
		rom         TEXT,
		note        TEXT,
		source_file TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_symbols_name ON symbols(name);
	CREATE INDEX IF NOT EXISTS idx_symbols_ram ON symbols(ram);
	`
	_, err := i.db.Exec(schema)
	return err
}

// Row is one indexed symbol.
type Row struct {
	Scope      string `json:"scope"`
	Usage      string `json:"usage"`
	Name       string `json:"name"`
	RAM        string `json:"ram,omitempty"`
	ROM        string `json:"rom,omitempty"`
	Note       string `json:"note,omitempty"`
	SourceFile string `json:"source_file,omitempty"`
}

// Rebuild replaces every row with the entries of one database
// snapshot, in a single transaction so readers never see a partial
// index.
func (i *Index) Rebuild(ctx context.Context, db *database.Database) error {
	i.mu.Lock()
	defer i.mu.Unlock()

	tx, err := i.db.BeginTx(ctx, nil)
	if err != nil {
		return srerror.Wrap(err, "cannot begin index transaction").
			WithCode(srerror.CodeIndexError).
			WithOperation("index.Rebuild")
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM symbols`); err != nil {
		return srerror.Wrap(err, "cannot clear index").
			WithCode(srerror.CodeIndexError).
			WithOperation("index.Rebuild")
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO symbols (scope, usage, name, ram, rom, note, source_file)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return srerror.Wrap(err, "cannot prepare index insert").
			WithCode(srerror.CodeIndexError).
			WithOperation("index.Rebuild")
	}
	defer stmt.Close()

	for _, scope := range lib.Scopes() {
		for _, entry := range db.Entries(scope) {
			sourceFile := ""
			if entry.Location != nil {
				sourceFile = entry.Location.File
			}
			_, err := stmt.ExecContext(ctx, scope, string(entry.Usage), entry.Name,
				entry.RAM, entry.ROM, entry.Note, sourceFile)
			if err != nil {
				return srerror.Wrapf(err, "cannot index symbol %q", entry.Name).
					WithCode(srerror.CodeIndexError).
					WithOperation("index.Rebuild")
			}
		}
	}

	return tx.Commit()
}

// LookupName returns every indexed symbol with the given name. The
// leading sigil is optional in the query.
func (i *Index) LookupName(ctx context.Context, name string) ([]Row, error) {
	return i.query(ctx, `
		SELECT scope, usage, name, ram, rom, note, source_file
		FROM symbols WHERE name = ? OR name = ?
		ORDER BY scope, name
	`, name, "$"+name)
}

// LookupAddress returns every indexed symbol at the given RAM address.
func (i *Index) LookupAddress(ctx context.Context, ram string) ([]Row, error) {
	return i.query(ctx, `
		SELECT scope, usage, name, ram, rom, note, source_file
		FROM symbols WHERE ram = ?
		ORDER BY scope, name
	`, ram)
}

func (i *Index) query(ctx context.Context, q string, args ...interface{}) ([]Row, error) {
	i.mu.RLock()
	defer i.mu.RUnlock()

	rows, err := i.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, srerror.Wrap(err, "index query failed").
			WithCode(srerror.CodeIndexError).
			WithOperation("index.query")
	}
	defer rows.Close()

	var out []Row
	for rows.Next() {
		var r Row
		var ram, rom, note, sourceFile sql.NullString
		if err := rows.Scan(&r.Scope, &r.Usage, &r.Name, &ram, &rom, &note, &sourceFile); err != nil {
			return nil, srerror.Wrap(err, "index scan failed").
				WithCode(srerror.CodeIndexError).
				WithOperation("index.query")
		}
		r.RAM = ram.String
		r.ROM = rom.String
		r.Note = note.String
		r.SourceFile = sourceFile.String
		out = append(out, r)
	}
	return out, rows.Err()
}

// Count returns the number of indexed symbols.
func (i *Index) Count(ctx context.Context) (int64, error) {
	i.mu.RLock()
	defer i.mu.RUnlock()

	var count int64
	err := i.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM symbols`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count symbols: %w", err)
	}
	return count, nil
}

// Close closes the underlying database file.
func (i *Index) Close() error {
	return i.db.Close()
}
