package session

import (
	"sync"

	"github.com/karsten42/docpilot/core"
)

// InMemoryStore is a volatile SessionStore for tests and ephemeral runs.
// Records are copied on load and save so callers cannot mutate stored state.
type InMemoryStore struct {
	mu      sync.RWMutex
	records map[string]core.SessionRecord
	failing bool
}

var _ core.SessionStore = (*InMemoryStore)(nil)

// NewInMemoryStore constructs an empty in-memory session store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{records: make(map[string]core.SessionRecord)}
}

// FailWrites makes every subsequent Save return a persistence error. Test
// hook for the atomic-commit contract.
func (s *InMemoryStore) FailWrites(fail bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failing = fail
}

// Start implements core.SessionStore.
func (s *InMemoryStore) Start(sessionID string) (string, error) {
	if sessionID != "" {
		return sessionID, nil
	}
	return core.NewID(), nil
}

// Load implements core.SessionStore.
func (s *InMemoryStore) Load(sessionID string) (core.SessionRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if rec, ok := s.records[sessionID]; ok {
		return copyRecord(rec), nil
	}
	return core.SessionRecord{SessionID: sessionID}, nil
}

// Save implements core.SessionStore.
func (s *InMemoryStore) Save(rec core.SessionRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failing {
		return core.ErrPersistence
	}
	s.records[rec.SessionID] = copyRecord(rec)
	return nil
}

func copyRecord(rec core.SessionRecord) core.SessionRecord {
	rec.ActiveDocuments = append([]string(nil), rec.ActiveDocuments...)
	return rec
}
