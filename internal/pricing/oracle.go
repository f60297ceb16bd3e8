// Package pricing supplies current market prices for symbols. The oracle
// never returns an error for an unknown symbol: callers get zero and decide
// whether that is fatal.
package pricing

import (
	"context"

	"github.com/shopspring/decimal"
)

type Oracle interface {
	// CurrentPrice returns the latest market price for symbol, or zero when
	// no price can be obtained.
	CurrentPrice(ctx context.Context, symbol string) decimal.Decimal
}
