// Package store holds the in-memory content store, the query-time
// ranker, and the snapshot persistence that survives restarts.
package store

import (
	"strings"
	"sync"

	"github.com/scourhq/scour/internal/types"
)

// Store is the insertion-ordered collection of admitted documents plus
// the content-hash set that guards it against near-duplicate bodies.
// All writes happen on the scheduler goroutine; the mutex exists for
// concurrent readers (ranker, API snapshots).
type Store struct {
	mu     sync.RWMutex
	docs   []types.Document
	hashes map[string]struct{}
}

// New creates an empty store.
func New() *Store {
	return &Store{hashes: make(map[string]struct{})}
}

// Admit appends a document unless its body is empty or a body with the
// same hash was admitted before. The document's ContentHash is filled in
// if missing. The hash is recorded before the document is appended, so a
// partially observed store never admits the same body twice.
func (s *Store) Admit(doc *types.Document) error {
	if strings.TrimSpace(doc.Body) == "" {
		return types.ErrEmptyContent
	}
	if doc.ContentHash == "" {
		doc.ContentHash = types.HashBody(doc.Body)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, dup := s.hashes[doc.ContentHash]; dup {
		return types.ErrDuplicate
	}
	s.hashes[doc.ContentHash] = struct{}{}
	s.docs = append(s.docs, *doc)
	return nil
}

// HasHash reports whether a content hash is already recorded.
func (s *Store) HasHash(hash string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.hashes[hash]
	return ok
}

// Len returns the number of admitted documents.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.docs)
}

// Documents returns a snapshot copy of the store in insertion order.
func (s *Store) Documents() []types.Document {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]types.Document, len(s.docs))
	copy(out, s.docs)
	return out
}

// Hashes returns the recorded content hashes in unspecified order.
func (s *Store) Hashes() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, 0, len(s.hashes))
	for h := range s.hashes {
		out = append(out, h)
	}
	return out
}

// Import replaces the store contents from a loaded snapshot. Hashes not
// derivable from the documents (admitted bodies whose documents were
// trimmed) are preserved.
func (s *Store) Import(docs []types.Document, hashes []string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.docs = append([]types.Document(nil), docs...)
	s.hashes = make(map[string]struct{}, len(hashes)+len(docs))
	for _, h := range hashes {
		s.hashes[h] = struct{}{}
	}
	for i := range s.docs {
		if s.docs[i].ContentHash == "" {
			s.docs[i].ContentHash = types.HashBody(s.docs[i].Body)
		}
		s.hashes[s.docs[i].ContentHash] = struct{}{}
	}
}
