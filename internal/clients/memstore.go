package clients

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"lv-brokerage/internal/model"
	"lv-brokerage/internal/types"
)

type MemStore struct {
	mu   sync.Mutex
	seq  int
	rows map[string]model.Client
}

func NewMemStore() *MemStore {
	return &MemStore{rows: make(map[string]model.Client)}
}

func (s *MemStore) Create(ctx context.Context, c model.Client) (model.Client, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	c.ID = fmt.Sprintf("cli_%06d", s.seq)
	now := time.Now()
	c.CreatedAt = now
	c.UpdatedAt = now
	s.rows[c.ID] = c
	return c, nil
}

func (s *MemStore) GetByID(ctx context.Context, id string) (model.Client, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.rows[id]
	if !ok {
		return model.Client{}, model.ErrClientNotFound
	}
	return c, nil
}

func (s *MemStore) List(ctx context.Context) ([]model.Client, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.Client, 0, len(s.rows))
	for _, c := range s.rows {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *MemStore) UpdateStatus(ctx context.Context, id string, status types.ClientStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.rows[id]
	if !ok {
		return model.ErrClientNotFound
	}
	c.Status = status
	c.UpdatedAt = time.Now()
	s.rows[id] = c
	return nil
}
