// Package audit persists the append-only record of tool invocations. The
// durable implementation writes one JSON line per entry to a per-session
// file; InMemoryLog backs tests.
package audit

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/karsten42/docpilot/core"
)

// FileLog appends entries to <dir>/<session_id>.jsonl. Entries are never
// mutated or deleted.
type FileLog struct {
	dir string
	mu  sync.Mutex
}

var _ core.AuditLog = (*FileLog)(nil)

// NewFileLog creates the audit directory if needed.
func NewFileLog(dir string) (*FileLog, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create audit dir %s: %w", dir, err)
	}
	return &FileLog{dir: dir}, nil
}

// Record implements core.AuditLog.
func (l *FileLog) Record(entry core.AuditEntry) error {
	if !core.ValidID(entry.SessionID) {
		return fmt.Errorf("invalid session id %q in audit entry", entry.SessionID)
	}
	line, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("marshal audit entry: %w", err)
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	path := filepath.Join(l.dir, entry.SessionID+".jsonl")
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open audit log %s: %w", path, err)
	}
	defer f.Close()
	if _, err := f.Write(append(line, '\n')); err != nil {
		return fmt.Errorf("append audit entry: %w", err)
	}
	return nil
}

// Read returns every entry recorded for a session, oldest first. A missing
// log file yields an empty slice.
func (l *FileLog) Read(sessionID string) ([]core.AuditEntry, error) {
	if !core.ValidID(sessionID) {
		return nil, fmt.Errorf("invalid session id %q", sessionID)
	}
	raw, err := os.ReadFile(filepath.Join(l.dir, sessionID+".jsonl"))
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read audit log: %w", err)
	}
	var entries []core.AuditEntry
	dec := json.NewDecoder(bytes.NewReader(raw))
	for dec.More() {
		var entry core.AuditEntry
		if err := dec.Decode(&entry); err != nil {
			return nil, fmt.Errorf("decode audit entry: %w", err)
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

// InMemoryLog collects entries in memory for tests.
type InMemoryLog struct {
	mu      sync.Mutex
	entries []core.AuditEntry
}

var _ core.AuditLog = (*InMemoryLog)(nil)

// NewInMemoryLog constructs an empty InMemoryLog.
func NewInMemoryLog() *InMemoryLog { return &InMemoryLog{} }

// Record implements core.AuditLog.
func (l *InMemoryLog) Record(entry core.AuditEntry) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, entry)
	return nil
}

// Entries returns a copy of the recorded entries.
func (l *InMemoryLog) Entries() []core.AuditEntry {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]core.AuditEntry, len(l.entries))
	copy(out, l.entries)
	return out
}
