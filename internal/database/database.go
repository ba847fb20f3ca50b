// Package database assembles the symbol database: library entries
// partitioned by scope, plus enum definitions and flag lists. A
// Database is immutable once loaded; consumers swap whole handles
// instead of mutating one in place.
package database

import (
	"sort"

	"github.com/bates64/vscode-star-rod/internal/lang/enum"
	"github.com/bates64/vscode-star-rod/internal/lang/lib"
)

// Database holds one fully loaded snapshot.
type Database struct {
	partitions map[string][]*lib.LibraryEntry
	enums      map[string]*enum.Enum
	flags      map[string]*enum.Flags

	files  int
	errors []LoadError
}

// New returns an empty database with all partitions present.
func New() *Database {
	db := &Database{
		partitions: make(map[string][]*lib.LibraryEntry),
		enums:      make(map[string]*enum.Enum),
		flags:      make(map[string]*enum.Flags),
	}
	for _, scope := range lib.Scopes() {
		db.partitions[scope] = make([]*lib.LibraryEntry, 0)
	}
	return db
}

// Entries returns the partition for one scope in load order. Unknown
// scopes yield nil.
func (db *Database) Entries(scope string) []*lib.LibraryEntry {
	return db.partitions[scope]
}

// EntriesForScopes concatenates the named partitions in the order
// given. Callers pass scopes most-general first, so earlier entries
// are shadowed by later ones under last-wins lookup.
func (db *Database) EntriesForScopes(scopes ...string) []*lib.LibraryEntry {
	total := 0
	for _, scope := range scopes {
		total += len(db.partitions[scope])
	}

	entries := make([]*lib.LibraryEntry, 0, total)
	for _, scope := range scopes {
		entries = append(entries, db.partitions[scope]...)
	}
	return entries
}

// AllEntries returns every entry across the fixed partitions in
// canonical scope order.
func (db *Database) AllEntries() []*lib.LibraryEntry {
	return db.EntriesForScopes(lib.Scopes()...)
}

// Enum returns the enum registered under a namespace.
func (db *Database) Enum(namespace string) (*enum.Enum, bool) {
	e, ok := db.enums[namespace]
	return e, ok
}

// Enums returns all enums in namespace-sorted order.
func (db *Database) Enums() []*enum.Enum {
	names := make([]string, 0, len(db.enums))
	for ns := range db.enums {
		names = append(names, ns)
	}
	sort.Strings(names)

	out := make([]*enum.Enum, 0, len(names))
	for _, ns := range names {
		out = append(out, db.enums[ns])
	}
	return out
}

// FlagSet returns the flag list registered under a namespace.
func (db *Database) FlagSet(namespace string) (*enum.Flags, bool) {
	f, ok := db.flags[namespace]
	return f, ok
}

// FlagSets returns all flag lists in namespace-sorted order.
func (db *Database) FlagSets() []*enum.Flags {
	names := make([]string, 0, len(db.flags))
	for ns := range db.flags {
		names = append(names, ns)
	}
	sort.Strings(names)

	out := make([]*enum.Flags, 0, len(names))
	for _, ns := range names {
		out = append(out, db.flags[ns])
	}
	return out
}

// Errors returns the per-file failures collected during the load.
func (db *Database) Errors() []LoadError {
	return db.errors
}

// Stats summarizes one loaded snapshot.
type Stats struct {
	Files           int            `json:"files"`
	Entries         int            `json:"entries"`
	EntriesPerScope map[string]int `json:"entries_per_scope"`
	Enums           int            `json:"enums"`
	EnumMembers     int            `json:"enum_members"`
	FlagSets        int            `json:"flag_sets"`
	FlagNames       int            `json:"flag_names"`
	Errors          int            `json:"errors"`
}

// Stats counts files, entries per scope, enum members and flag names.
func (db *Database) Stats() Stats {
	s := Stats{
		Files:           db.files,
		EntriesPerScope: make(map[string]int, len(db.partitions)),
		Enums:           len(db.enums),
		FlagSets:        len(db.flags),
		Errors:          len(db.errors),
	}
	for scope, entries := range db.partitions {
		s.EntriesPerScope[scope] = len(entries)
		s.Entries += len(entries)
	}
	for _, e := range db.enums {
		s.EnumMembers += len(e.Members)
	}
	for _, f := range db.flags {
		s.FlagNames += len(f.Names)
	}
	return s
}

// addLibrary merges one parsed library file into its partition.
func (db *Database) addLibrary(f *lib.File) {
	db.partitions[f.Scope] = append(db.partitions[f.Scope], f.Entries...)
	db.files++
}

// addEnum registers an enum under its namespace, last one wins.
func (db *Database) addEnum(e *enum.Enum) {
	db.enums[e.Namespace] = e
	db.files++
}

// addFlags registers a flag list under its namespace, last one wins.
func (db *Database) addFlags(f *enum.Flags) {
	db.flags[f.Namespace] = f
	db.files++
}
