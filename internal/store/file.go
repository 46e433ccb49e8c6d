// Package store provides persistence backends for the audit log and the
// alert cooldown history: JSON files (the default), Postgres, and an
// in-memory variant for tests. All backends are best-effort collaborators;
// the in-memory state held by the services stays authoritative.
package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/stockpilotai/stockpilot/internal/domain"
	"github.com/stockpilotai/stockpilot/internal/models"
)

// Default file names inside the data directory.
const (
	AuditFileName   = "agent_audit_log.json"
	HistoryFileName = "alert_history.json"
)

// writeFileAtomic writes data via a temp file and rename so readers never
// observe a partial document.
func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating data dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("writing temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("closing temp file: %w", err)
	}

	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replacing %s: %w", path, err)
	}
	return nil
}

// AuditFile persists the audit log as one JSON document. Append is a
// read-modify-write of the whole file, acceptable at this scale.
type AuditFile struct {
	mu   sync.Mutex
	path string
}

var _ domain.AuditStore = (*AuditFile)(nil)

// NewAuditFile creates an AuditFile at the given path.
func NewAuditFile(path string) *AuditFile {
	return &AuditFile{path: path}
}

// Load implements domain.AuditStore.
func (s *AuditFile) Load(_ context.Context) ([]models.AuditEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadLocked()
}

func (s *AuditFile) loadLocked() ([]models.AuditEntry, error) {
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading audit file: %w", err)
	}

	var entries []models.AuditEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("parsing audit file: %w", err)
	}
	return entries, nil
}

// Append implements domain.AuditStore.
func (s *AuditFile) Append(_ context.Context, entry models.AuditEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := s.loadLocked()
	if err != nil {
		// Do not lose new entries to a corrupt file; start over.
		entries = nil
	}
	entries = append(entries, entry)

	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding audit log: %w", err)
	}
	return writeFileAtomic(s.path, data)
}

// Clear implements domain.AuditStore.
func (s *AuditFile) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := os.Remove(s.path)
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("removing audit file: %w", err)
	}
	return nil
}

// HistoryFile persists the alert cooldown history as one JSON document.
type HistoryFile struct {
	mu   sync.Mutex
	path string
}

var _ domain.HistoryStore = (*HistoryFile)(nil)

// NewHistoryFile creates a HistoryFile at the given path.
func NewHistoryFile(path string) *HistoryFile {
	return &HistoryFile{path: path}
}

// Load implements domain.HistoryStore.
func (s *HistoryFile) Load(_ context.Context) (map[string]models.AlertRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading alert history: %w", err)
	}

	var history map[string]models.AlertRecord
	if err := json.Unmarshal(data, &history); err != nil {
		return nil, fmt.Errorf("parsing alert history: %w", err)
	}
	return history, nil
}

// Save implements domain.HistoryStore.
func (s *HistoryFile) Save(_ context.Context, history map[string]models.AlertRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := json.MarshalIndent(history, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding alert history: %w", err)
	}
	return writeFileAtomic(s.path, data)
}

// Clear implements domain.HistoryStore.
func (s *HistoryFile) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := os.Remove(s.path)
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("removing alert history: %w", err)
	}
	return nil
}
