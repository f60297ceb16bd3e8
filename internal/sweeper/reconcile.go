package sweeper

import (
	"context"
	"fmt"
	"log"
	"sort"
	"time"

	"lv-brokerage/internal/ledger"
	"lv-brokerage/internal/model"
	"lv-brokerage/internal/orders"
	"lv-brokerage/internal/positions"
	"lv-brokerage/internal/types"

	"github.com/shopspring/decimal"
)

// ClientLister is the slice of the client store the reconciler needs.
type ClientLister interface {
	List(ctx context.Context) ([]model.Client, error)
}

// Reconciler treats the executed-order log as the source of truth and
// periodically re-derives each client's positions and balances from it,
// overwriting any drift the concurrent mutation paths have left behind.
type Reconciler struct {
	clients  ClientLister
	orders   orders.OrderStore
	ledger   *ledger.Service
	book     *positions.Book
	interval time.Duration
}

func NewReconciler(clients ClientLister, store orders.OrderStore, ledger *ledger.Service, book *positions.Book, interval time.Duration) *Reconciler {
	return &Reconciler{
		clients:  clients,
		orders:   store,
		ledger:   ledger,
		book:     book,
		interval: interval,
	}
}

func (r *Reconciler) Run(ctx context.Context) {
	r.Sweep(ctx)
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.Sweep(ctx)
		}
	}
}

// Sweep reconciles one client at a time. A failure for one client is logged
// and does not block the rest.
func (r *Reconciler) Sweep(ctx context.Context) {
	cs, err := r.clients.List(ctx)
	if err != nil {
		log.Printf("[reconcile] list clients: %v", err)
		return
	}
	for _, c := range cs {
		if err := r.ReconcileClient(ctx, c); err != nil {
			log.Printf("[reconcile] client %s: %v", c.ID, err)
		}
	}
}

func (r *Reconciler) ReconcileClient(ctx context.Context, c model.Client) error {
	executed, err := r.orders.ListByClientAndStatus(ctx, c.ID, types.OrderStatusExecuted)
	if err != nil {
		return fmt.Errorf("load executed orders: %w", err)
	}
	sort.SliceStable(executed, func(i, j int) bool {
		return executed[i].TradeTime.Before(executed[j].TradeTime)
	})

	replayed, cashDelta := replay(c.ID, executed)
	if err := r.book.ReplaceAll(ctx, c.ID, replayed); err != nil {
		return fmt.Errorf("replace positions: %w", err)
	}

	expectedCash := c.OpeningBalance.Add(cashDelta)
	expectedReserved, err := r.expectedReserved(ctx, c.ID)
	if err != nil {
		return fmt.Errorf("compute reserved: %w", err)
	}

	acc, err := r.ledger.Get(ctx, c.ID)
	if err != nil {
		return fmt.Errorf("load account: %w", err)
	}
	if acc.CashBalance.Equal(expectedCash) && acc.ReservedBalance.Equal(expectedReserved) {
		return nil
	}
	log.Printf("[reconcile] drift client=%s cash=%s->%s reserved=%s->%s",
		c.ID, acc.CashBalance, expectedCash, acc.ReservedBalance, expectedReserved)
	return r.ledger.Overwrite(ctx, c.ID, expectedCash, expectedReserved)
}

// replay rebuilds positions from executed orders in trade-time order and
// reports the net cash movement: sells add, buys subtract. Disposals keep the
// remaining lot's cost basis flat, matching the position book.
func replay(clientID string, executed []model.Order) ([]model.Position, decimal.Decimal) {
	lots := make(map[string]model.Position)
	cash := decimal.Zero
	for _, o := range executed {
		amount := o.Amount()
		switch o.Side {
		case types.OrderSideBuy:
			cash = cash.Sub(amount)
			p, ok := lots[o.Symbol]
			if !ok {
				lots[o.Symbol] = model.Position{
					ClientID:    clientID,
					Symbol:      o.Symbol,
					Quantity:    o.Quantity,
					AverageCost: o.Price.Round(2),
				}
				continue
			}
			newQty := p.Quantity + o.Quantity
			oldCost := p.AverageCost.Mul(decimal.NewFromInt(p.Quantity))
			p.AverageCost = oldCost.Add(amount).DivRound(decimal.NewFromInt(newQty), 2)
			p.Quantity = newQty
			lots[o.Symbol] = p
		case types.OrderSideSell:
			cash = cash.Add(amount)
			p, ok := lots[o.Symbol]
			if !ok {
				continue
			}
			p.Quantity -= o.Quantity
			if p.Quantity <= 0 {
				delete(lots, o.Symbol)
				continue
			}
			lots[o.Symbol] = p
		}
	}
	out := make([]model.Position, 0, len(lots))
	for _, p := range lots {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Symbol < out[j].Symbol })
	return out, cash
}

// expectedReserved sums the value of resting limit buys; those are the only
// orders holding a reservation.
func (r *Reconciler) expectedReserved(ctx context.Context, clientID string) (decimal.Decimal, error) {
	pending, err := r.orders.ListByClientAndStatus(ctx, clientID, types.OrderStatusPending)
	if err != nil {
		return decimal.Zero, err
	}
	total := decimal.Zero
	for _, o := range pending {
		if o.Kind == types.OrderKindLimit && o.Side == types.OrderSideBuy {
			total = total.Add(o.Amount())
		}
	}
	return total, nil
}
