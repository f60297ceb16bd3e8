// Package positions maintains per-client, per-symbol lots with a
// quantity-weighted average cost.
package positions

import (
	"context"

	"lv-brokerage/internal/ledger"
	"lv-brokerage/internal/model"

	"github.com/shopspring/decimal"
)

// Cost basis is kept at two decimal places, matching account balances.
const costScale = 2

type Book struct {
	store PositionStore
	locks *ledger.AccountLocks
}

func NewBook(store PositionStore, locks *ledger.AccountLocks) *Book {
	return &Book{store: store, locks: locks}
}

// Apply records an acquisition (deltaQty > 0) or disposal (deltaQty < 0) at
// fillPrice and returns the resulting position, or nil when the position was
// closed out or the request was a disposal of an unheld symbol. Disposals are
// not validated against holdings here; the position is simply reduced and
// removed once the quantity reaches zero. The average cost of the remaining
// lot is unchanged by a partial disposal.
func (b *Book) Apply(ctx context.Context, clientID, symbol string, deltaQty int64, fillPrice decimal.Decimal) (*model.Position, error) {
	var out *model.Position
	err := b.locks.Do(clientID, func() error {
		existing, ok, err := b.store.GetByClientAndSymbol(ctx, clientID, symbol)
		if err != nil {
			return err
		}
		if !ok {
			if deltaQty <= 0 {
				return nil
			}
			p, err := b.store.Upsert(ctx, model.Position{
				ClientID:    clientID,
				Symbol:      symbol,
				Quantity:    deltaQty,
				AverageCost: fillPrice.Round(costScale),
			})
			if err != nil {
				return err
			}
			out = &p
			return nil
		}

		newQty := existing.Quantity + deltaQty
		if newQty <= 0 {
			return b.store.Delete(ctx, clientID, symbol)
		}
		if deltaQty > 0 {
			oldCost := existing.AverageCost.Mul(decimal.NewFromInt(existing.Quantity))
			addCost := fillPrice.Mul(decimal.NewFromInt(deltaQty))
			existing.AverageCost = oldCost.Add(addCost).DivRound(decimal.NewFromInt(newQty), costScale)
		}
		existing.Quantity = newQty
		p, err := b.store.Upsert(ctx, existing)
		if err != nil {
			return err
		}
		out = &p
		return nil
	})
	return out, err
}

func (b *Book) List(ctx context.Context, clientID string) ([]model.Position, error) {
	return b.store.ListByClient(ctx, clientID)
}

// ReplaceAll swaps the client's entire position set for the given one.
// Delete-then-insert, so repeated calls with the same input are idempotent.
func (b *Book) ReplaceAll(ctx context.Context, clientID string, ps []model.Position) error {
	return b.locks.Do(clientID, func() error {
		return b.store.ReplaceAll(ctx, clientID, ps)
	})
}
