// Package corpus models the fixed document collection the assistant answers
// questions about. The storage format is deliberately pluggable behind the
// Store interface; DirStore reads one JSON document per file from a
// directory, and MapStore backs tests.
package corpus

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
)

// Document is one corpus entry. Fields carries the structured numeric values
// (totals, quantities) the statistics tool exposes; Metadata carries string
// attributes such as client or date.
type Document struct {
	ID       string             `json:"id"`
	Title    string             `json:"title"`
	Type     string             `json:"type,omitempty"` // "invoice", "report", ...
	Content  string             `json:"content"`
	Fields   map[string]float64 `json:"fields,omitempty"`
	Metadata map[string]string  `json:"metadata,omitempty"`
}

// Store provides read access to the corpus.
type Store interface {
	// Get returns the document with the given identifier.
	Get(id string) (Document, error)

	// All returns every document, ordered by identifier.
	All() []Document
}

// NotFoundError reports an unknown document identifier.
type NotFoundError struct {
	ID string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("document %q not found", e.ID)
}

// MapStore is an in-memory Store for tests and examples.
type MapStore struct {
	mu   sync.RWMutex
	docs map[string]Document
}

// NewMapStore constructs a MapStore holding the given documents.
func NewMapStore(docs ...Document) *MapStore {
	s := &MapStore{docs: make(map[string]Document, len(docs))}
	for _, d := range docs {
		s.docs[d.ID] = d
	}
	return s
}

// Add inserts or replaces a document.
func (s *MapStore) Add(doc Document) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.docs[doc.ID] = doc
}

// Get implements Store.
func (s *MapStore) Get(id string) (Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	doc, ok := s.docs[id]
	if !ok {
		return Document{}, &NotFoundError{ID: id}
	}
	return doc, nil
}

// All implements Store.
func (s *MapStore) All() []Document {
	s.mu.RLock()
	defer s.mu.RUnlock()
	docs := make([]Document, 0, len(s.docs))
	for _, d := range s.docs {
		docs = append(docs, d)
	}
	sort.Slice(docs, func(i, j int) bool { return docs[i].ID < docs[j].ID })
	return docs
}

// DirStore loads a directory of *.json documents into memory at construction
// and serves them read-only afterwards. The document identifier is taken from
// the file contents, falling back to the file name without extension.
type DirStore struct {
	*MapStore
}

// NewDirStore reads every *.json file under dir.
func NewDirStore(dir string) (*DirStore, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read corpus dir %s: %w", dir, err)
	}
	store := &DirStore{MapStore: NewMapStore()}
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read document %s: %w", path, err)
		}
		var doc Document
		if err := json.Unmarshal(raw, &doc); err != nil {
			return nil, fmt.Errorf("parse document %s: %w", path, err)
		}
		if doc.ID == "" {
			doc.ID = strings.TrimSuffix(entry.Name(), ".json")
		}
		store.Add(doc)
	}
	return store, nil
}
