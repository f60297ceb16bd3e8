package audit

import (
	"context"
	"fmt"
	"sync"
	"time"

	"lv-brokerage/internal/model"
)

// MemStore keeps the audit trail in memory, for dev mode and tests.
type MemStore struct {
	mu      sync.Mutex
	seq     int
	entries []model.AuditEntry
}

func NewMemStore() *MemStore {
	return &MemStore{}
}

func (s *MemStore) Append(ctx context.Context, e model.AuditEntry) (model.AuditEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	e.ID = fmt.Sprintf("aud_%06d", s.seq)
	if e.EventTime.IsZero() {
		e.EventTime = time.Now()
	}
	s.entries = append(s.entries, e)
	return e, nil
}

func (s *MemStore) ListByEntity(ctx context.Context, entityType, entityID string) ([]model.AuditEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.AuditEntry
	for _, e := range s.entries {
		if e.EntityType == entityType && e.EntityID == entityID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (s *MemStore) ListRecent(ctx context.Context, limit int) ([]model.AuditEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.AuditEntry
	for i := len(s.entries) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, s.entries[i])
	}
	return out, nil
}
