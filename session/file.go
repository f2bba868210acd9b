// Package session provides core.SessionStore implementations: a durable
// file-backed store (one JSON record per session, atomic overwrite) and a
// volatile in-memory store for tests. The session identifier also serves as
// the workflow checkpoint key, keeping conversational memory and graph
// checkpoint in lockstep.
package session

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/karsten42/docpilot/core"
)

// FileStore persists one JSON record per session under a directory. Saves
// are atomic: the record is written to a temp file and renamed over the
// previous version, so a failure mid-write leaves the committed record
// intact.
type FileStore struct {
	dir string
}

var _ core.SessionStore = (*FileStore)(nil)

// NewFileStore creates the session directory if needed.
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("%w: create session dir %s: %v", core.ErrPersistence, dir, err)
	}
	return &FileStore{dir: dir}, nil
}

// Start implements core.SessionStore.
func (s *FileStore) Start(sessionID string) (string, error) {
	if sessionID == "" {
		return core.NewID(), nil
	}
	if !core.ValidID(sessionID) {
		return "", fmt.Errorf("%w: invalid session id %q", core.ErrPersistence, sessionID)
	}
	return sessionID, nil
}

// Load implements core.SessionStore. A missing record yields an empty record
// carrying the requested id.
func (s *FileStore) Load(sessionID string) (core.SessionRecord, error) {
	if !core.ValidID(sessionID) {
		return core.SessionRecord{}, fmt.Errorf("%w: invalid session id %q", core.ErrPersistence, sessionID)
	}
	raw, err := os.ReadFile(s.path(sessionID))
	if os.IsNotExist(err) {
		return core.SessionRecord{SessionID: sessionID}, nil
	}
	if err != nil {
		return core.SessionRecord{}, fmt.Errorf("%w: read session %s: %v", core.ErrPersistence, sessionID, err)
	}
	var rec core.SessionRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		return core.SessionRecord{}, fmt.Errorf("%w: parse session %s: %v", core.ErrPersistence, sessionID, err)
	}
	return rec, nil
}

// Save implements core.SessionStore.
func (s *FileStore) Save(rec core.SessionRecord) error {
	if !core.ValidID(rec.SessionID) {
		return fmt.Errorf("%w: invalid session id %q", core.ErrPersistence, rec.SessionID)
	}
	raw, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: marshal session %s: %v", core.ErrPersistence, rec.SessionID, err)
	}
	path := s.path(rec.SessionID)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o644); err != nil {
		return fmt.Errorf("%w: write session %s: %v", core.ErrPersistence, rec.SessionID, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("%w: commit session %s: %v", core.ErrPersistence, rec.SessionID, err)
	}
	return nil
}

// List returns the identifiers of every persisted session, sorted.
func (s *FileStore) List() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("%w: list sessions: %v", core.ErrPersistence, err)
	}
	var ids []string
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".json") {
			continue
		}
		ids = append(ids, strings.TrimSuffix(name, ".json"))
	}
	sort.Strings(ids)
	return ids, nil
}

func (s *FileStore) path(sessionID string) string {
	return filepath.Join(s.dir, sessionID+".json")
}
