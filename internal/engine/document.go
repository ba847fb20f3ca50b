package engine

import (
	"sort"
	"sync"
	"time"
)

// Document is one open text buffer with its revision counter.
// Revisions only move forward; the store rejects anything else.
type Document struct {
	Path     string
	Text     string
	Revision int64
	OpenedAt time.Time
}

// documentStore holds the open documents. It has its own lock so
// overlay lookups during a resolution never touch the engine's
// database handle lock.
type documentStore struct {
	mu   sync.RWMutex
	docs map[string]*Document
}

func newDocumentStore() *documentStore {
	return &documentStore{docs: make(map[string]*Document)}
}

// open registers or replaces a document at a revision.
func (s *documentStore) open(path, text string, revision int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.docs[path] = &Document{
		Path:     path,
		Text:     text,
		Revision: revision,
		OpenedAt: time.Now(),
	}
}

// update replaces a document's text. It reports whether the document
// is open and whether the revision advances; the caller turns those
// into errors.
func (s *documentStore) update(path, text string, revision int64) (open, fresh bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, ok := s.docs[path]
	if !ok {
		return false, false
	}
	if revision <= doc.Revision {
		return true, false
	}
	doc.Text = text
	doc.Revision = revision
	return true, true
}

// close removes a document. Reports whether it was open.
func (s *documentStore) close(path string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.docs[path]; !ok {
		return false
	}
	delete(s.docs, path)
	return true
}

// get returns a snapshot copy so callers never share the live record.
func (s *documentStore) get(path string) (Document, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	doc, ok := s.docs[path]
	if !ok {
		return Document{}, false
	}
	return *doc, true
}

// Lookup implements resolver.Overlay.
func (s *documentStore) Lookup(path string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	doc, ok := s.docs[path]
	if !ok {
		return "", false
	}
	return doc.Text, true
}

func (s *documentStore) size() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.docs)
}

func (s *documentStore) paths() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]string, 0, len(s.docs))
	for path := range s.docs {
		out = append(out, path)
	}
	sort.Strings(out)
	return out
}
