package workflow

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/karsten42/docpilot/core"
)

// InMemoryCheckpointStore keeps checkpoints in a process-local map. States
// are cloned on save and load so callers cannot mutate stored checkpoints.
type InMemoryCheckpointStore struct {
	mu     sync.RWMutex
	states map[string]*core.AgentState
}

var _ core.CheckpointStore = (*InMemoryCheckpointStore)(nil)

// NewInMemoryCheckpointStore constructs an empty store.
func NewInMemoryCheckpointStore() *InMemoryCheckpointStore {
	return &InMemoryCheckpointStore{states: make(map[string]*core.AgentState)}
}

// SaveCheckpoint implements core.CheckpointStore.
func (s *InMemoryCheckpointStore) SaveCheckpoint(key string, state *core.AgentState) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.states[key] = state.Clone()
	return nil
}

// LoadCheckpoint implements core.CheckpointStore.
func (s *InMemoryCheckpointStore) LoadCheckpoint(key string) (*core.AgentState, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	state, ok := s.states[key]
	if !ok {
		return nil, false, nil
	}
	return state.Clone(), true, nil
}

// FileCheckpointStore persists one JSON checkpoint per key under a
// directory, written atomically like the session store so a crash mid-write
// never corrupts the previous checkpoint.
type FileCheckpointStore struct {
	dir string
}

var _ core.CheckpointStore = (*FileCheckpointStore)(nil)

// NewFileCheckpointStore creates the checkpoint directory if needed.
func NewFileCheckpointStore(dir string) (*FileCheckpointStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create checkpoint dir %s: %w", dir, err)
	}
	return &FileCheckpointStore{dir: dir}, nil
}

// SaveCheckpoint implements core.CheckpointStore.
func (s *FileCheckpointStore) SaveCheckpoint(key string, state *core.AgentState) error {
	if !core.ValidID(key) {
		return fmt.Errorf("invalid checkpoint key %q", key)
	}
	raw, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal checkpoint %s: %w", key, err)
	}
	path := s.path(key)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o644); err != nil {
		return fmt.Errorf("write checkpoint %s: %w", key, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("commit checkpoint %s: %w", key, err)
	}
	return nil
}

// LoadCheckpoint implements core.CheckpointStore.
func (s *FileCheckpointStore) LoadCheckpoint(key string) (*core.AgentState, bool, error) {
	if !core.ValidID(key) {
		return nil, false, fmt.Errorf("invalid checkpoint key %q", key)
	}
	raw, err := os.ReadFile(s.path(key))
	if os.IsNotExist(err) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("read checkpoint %s: %w", key, err)
	}
	var state core.AgentState
	if err := json.Unmarshal(raw, &state); err != nil {
		return nil, false, fmt.Errorf("parse checkpoint %s: %w", key, err)
	}
	return &state, true, nil
}

func (s *FileCheckpointStore) path(key string) string {
	return filepath.Join(s.dir, key+".checkpoint.json")
}
