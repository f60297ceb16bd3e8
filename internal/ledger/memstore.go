package ledger

import (
	"context"
	"fmt"
	"sync"
	"time"

	"lv-brokerage/internal/model"

	"github.com/shopspring/decimal"
)

// MemStore keeps accounts in memory. Used by tests and STORAGE_MODE=memory.
type MemStore struct {
	mu       sync.RWMutex
	seq      int
	byClient map[string]model.Account
}

func NewMemStore() *MemStore {
	return &MemStore{byClient: make(map[string]model.Account)}
}

func (s *MemStore) Create(_ context.Context, a model.Account) (model.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	a.ID = fmt.Sprintf("acc_%06d", s.seq)
	a.UpdatedAt = time.Now().UTC()
	s.byClient[a.ClientID] = a
	return a, nil
}

func (s *MemStore) GetByClient(_ context.Context, clientID string) (model.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.byClient[clientID]
	if !ok {
		return model.Account{}, model.ErrAccountNotFound
	}
	return a, nil
}

func (s *MemStore) UpdateBalances(_ context.Context, clientID string, cash, reserved decimal.Decimal) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.byClient[clientID]
	if !ok {
		return model.ErrAccountNotFound
	}
	a.CashBalance = cash
	a.ReservedBalance = reserved
	a.UpdatedAt = time.Now().UTC()
	s.byClient[clientID] = a
	return nil
}
