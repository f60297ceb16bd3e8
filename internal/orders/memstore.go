package orders

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
	rows map[string]model.Order
}

func NewMemStore() *MemStore {
	return &MemStore{rows: make(map[string]model.Order)}
}

func (s *MemStore) Create(ctx context.Context, o model.Order) (model.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	o.ID = fmt.Sprintf("ord_%06d", s.seq)
	now := time.Now()
	o.CreatedAt = now
	o.UpdatedAt = now
	s.rows[o.ID] = o
	return o, nil
}

func (s *MemStore) Get(ctx context.Context, id string) (model.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.rows[id]
	if !ok {
		return model.Order{}, model.ErrOrderNotFound
	}
	return o, nil
}

func (s *MemStore) ListByClient(ctx context.Context, clientID string) ([]model.Order, error) {
	out := s.filter(func(o model.Order) bool { return o.ClientID == clientID })
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *MemStore) ListByClientSince(ctx context.Context, clientID string, since time.Time) ([]model.Order, error) {
	out := s.filter(func(o model.Order) bool {
		return o.ClientID == clientID && !o.CreatedAt.Before(since)
	})
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (s *MemStore) ListByClientAndStatus(ctx context.Context, clientID string, status types.OrderStatus) ([]model.Order, error) {
	out := s.filter(func(o model.Order) bool {
		return o.ClientID == clientID && o.Status == status
	})
	sort.Slice(out, func(i, j int) bool { return out[i].TradeTime.Before(out[j].TradeTime) })
	return out, nil
}

func (s *MemStore) ListPendingLimit(ctx context.Context) ([]model.Order, error) {
	out := s.filter(func(o model.Order) bool {
		return o.Status == types.OrderStatusPending && o.Kind == types.OrderKindLimit
	})
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (s *MemStore) UpdateStatusIf(ctx context.Context, id string, from []types.OrderStatus, to types.OrderStatus, tradeTime *time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.rows[id]
	if !ok {
		return false, nil
	}
	matched := false
	for _, st := range from {
		if o.Status == st {
			matched = true
			break
		}
	}
	if !matched {
		return false, nil
	}
	o.Status = to
	if tradeTime != nil {
		o.TradeTime = *tradeTime
	}
	o.UpdatedAt = time.Now()
	s.rows[id] = o
	return true, nil
}

func (s *MemStore) filter(keep func(model.Order) bool) []model.Order {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.Order
	for _, o := range s.rows {
		if keep(o) {
			out = append(out, o)
		}
	}
	return out
}
