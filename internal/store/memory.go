package store

import (
	"context"
	"sync"

	"github.com/stockpilotai/stockpilot/internal/domain"
	"github.com/stockpilotai/stockpilot/internal/models"
)

// AuditMemory is an in-memory AuditStore for tests.
type AuditMemory struct {
	mu      sync.Mutex
	entries []models.AuditEntry
}

var _ domain.AuditStore = (*AuditMemory)(nil)

// NewAuditMemory creates an empty AuditMemory.
func NewAuditMemory() *AuditMemory { return &AuditMemory{} }

// Load implements domain.AuditStore.
func (s *AuditMemory) Load(_ context.Context) ([]models.AuditEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]models.AuditEntry, len(s.entries))
	copy(out, s.entries)
	return out, nil
}

// Append implements domain.AuditStore.
func (s *AuditMemory) Append(_ context.Context, entry models.AuditEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = append(s.entries, entry)
	return nil
}

// Clear implements domain.AuditStore.
func (s *AuditMemory) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = nil
	return nil
}

// HistoryMemory is an in-memory HistoryStore for tests.
type HistoryMemory struct {
	mu      sync.Mutex
	history map[string]models.AlertRecord
}

var _ domain.HistoryStore = (*HistoryMemory)(nil)

// NewHistoryMemory creates an empty HistoryMemory.
func NewHistoryMemory() *HistoryMemory {
	return &HistoryMemory{history: make(map[string]models.AlertRecord)}
}

// Load implements domain.HistoryStore.
func (s *HistoryMemory) Load(_ context.Context) (map[string]models.AlertRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make(map[string]models.AlertRecord, len(s.history))
	for k, v := range s.history {
		out[k] = v
	}
	return out, nil
}

// Save implements domain.HistoryStore.
func (s *HistoryMemory) Save(_ context.Context, history map[string]models.AlertRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.history = make(map[string]models.AlertRecord, len(history))
	for k, v := range history {
		s.history[k] = v
	}
	return nil
}

// Clear implements domain.HistoryStore.
func (s *HistoryMemory) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.history = make(map[string]models.AlertRecord)
	return nil
}
