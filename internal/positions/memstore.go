package positions

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"lv-brokerage/internal/model"
)

type MemStore struct {
	mu   sync.RWMutex
	seq  int
	rows map[string]map[string]model.Position // clientID -> symbol -> position
}

func NewMemStore() *MemStore {
	return &MemStore{rows: make(map[string]map[string]model.Position)}
}

func (s *MemStore) GetByClientAndSymbol(_ context.Context, clientID, symbol string) (model.Position, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.rows[clientID][symbol]
	return p, ok, nil
}

func (s *MemStore) ListByClient(_ context.Context, clientID string) ([]model.Position, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []model.Position
	for _, p := range s.rows[clientID] {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Symbol < out[j].Symbol })
	return out, nil
}

func (s *MemStore) Upsert(_ context.Context, p model.Position) (model.Position, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.rows[p.ClientID] == nil {
		s.rows[p.ClientID] = make(map[string]model.Position)
	}
	if existing, ok := s.rows[p.ClientID][p.Symbol]; ok {
		p.ID = existing.ID
	} else {
		s.seq++
		p.ID = fmt.Sprintf("pos_%06d", s.seq)
	}
	p.UpdatedAt = time.Now().UTC()
	s.rows[p.ClientID][p.Symbol] = p
	return p, nil
}

func (s *MemStore) Delete(_ context.Context, clientID, symbol string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.rows[clientID], symbol)
	return nil
}

func (s *MemStore) ReplaceAll(_ context.Context, clientID string, ps []model.Position) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	fresh := make(map[string]model.Position, len(ps))
	for _, p := range ps {
		s.seq++
		p.ID = fmt.Sprintf("pos_%06d", s.seq)
		p.ClientID = clientID
		p.UpdatedAt = time.Now().UTC()
		fresh[p.Symbol] = p
	}
	s.rows[clientID] = fresh
	return nil
}
