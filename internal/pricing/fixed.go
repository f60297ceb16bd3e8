package pricing

import (
	"context"
	"sync"

	"github.com/shopspring/decimal"
)

// FixedOracle serves prices from an in-memory table. Used in development mode
// and by tests; symbols without an entry quote as unknown (zero).
type FixedOracle struct {
	mu     sync.RWMutex
	prices map[string]decimal.Decimal
}

func NewFixedOracle() *FixedOracle {
	return &FixedOracle{prices: make(map[string]decimal.Decimal)}
}

func (o *FixedOracle) SetPrice(symbol string, price decimal.Decimal) {
	o.mu.Lock()
	o.prices[symbol] = price
	o.mu.Unlock()
}

func (o *FixedOracle) Unset(symbol string) {
	o.mu.Lock()
	delete(o.prices, symbol)
	o.mu.Unlock()
}

func (o *FixedOracle) CurrentPrice(_ context.Context, symbol string) decimal.Decimal {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.prices[symbol]
}
