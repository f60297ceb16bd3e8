// Package sweeper holds the two background sweeps: limit-order settlement
// and ledger/position reconciliation. Each runs on its own ticker and never
// overlaps its own next run.
package sweeper

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"lv-brokerage/internal/audit"
	"lv-brokerage/internal/events"
	"lv-brokerage/internal/ledger"
	"lv-brokerage/internal/model"
	"lv-brokerage/internal/orders"
	"lv-brokerage/internal/positions"
	"lv-brokerage/internal/pricing"
	"lv-brokerage/internal/types"
)

// LimitSweeper promotes resting limit orders to executed or expired.
type LimitSweeper struct {
	orders   orders.OrderStore
	book     *positions.Book
	ledger   *ledger.Service
	oracle   pricing.Oracle
	audit    *audit.Service
	bus      *events.Bus
	interval time.Duration

	now func() time.Time
}

func NewLimitSweeper(store orders.OrderStore, book *positions.Book, ledger *ledger.Service, oracle pricing.Oracle, audit *audit.Service, bus *events.Bus, interval time.Duration) *LimitSweeper {
	return &LimitSweeper{
		orders:   store,
		book:     book,
		ledger:   ledger,
		oracle:   oracle,
		audit:    audit,
		bus:      bus,
		interval: interval,
		now:      time.Now,
	}
}

func (s *LimitSweeper) Run(ctx context.Context) {
	s.Sweep(ctx)
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Sweep(ctx)
		}
	}
}

// Sweep walks all resting limit orders oldest first. A failure on one order
// is logged and does not stop the rest of the batch.
func (s *LimitSweeper) Sweep(ctx context.Context) {
	pending, err := s.orders.ListPendingLimit(ctx)
	if err != nil {
		log.Printf("[limit-sweep] list pending orders: %v", err)
		return
	}
	for _, o := range pending {
		err := s.sweepOne(ctx, o)
		if errors.Is(err, model.ErrPriceUnavailable) {
			log.Printf("[limit-sweep] order %s: %v, skipping this cycle", o.ID, err)
			continue
		}
		if err != nil {
			log.Printf("[limit-sweep] order %s: %v", o.ID, err)
		}
	}
}

func (s *LimitSweeper) sweepOne(ctx context.Context, o model.Order) error {
	now := s.now()

	if o.ExpiryTime != nil && o.ExpiryTime.Before(now) {
		ok, err := s.orders.UpdateStatusIf(ctx, o.ID,
			[]types.OrderStatus{types.OrderStatusPending}, types.OrderStatusExpired, nil)
		if err != nil {
			return err
		}
		if ok {
			s.audit.Record(ctx, types.EntityTypeOrder, o.ID, types.AuditActionExpire, "SYSTEM", "limit order expired unfilled")
			s.publish(o.ID)
		}
		return nil
	}

	current := s.oracle.CurrentPrice(ctx, o.Symbol)
	if current.IsZero() {
		return fmt.Errorf("%s: %w", o.Symbol, model.ErrPriceUnavailable)
	}

	fills := (o.Side == types.OrderSideBuy && current.LessThanOrEqual(o.Price)) ||
		(o.Side == types.OrderSideSell && current.GreaterThanOrEqual(o.Price))
	if !fills {
		return nil
	}

	// Claim the order before touching funds so a concurrent cancel or a
	// second sweep cannot settle it twice.
	ok, err := s.orders.UpdateStatusIf(ctx, o.ID,
		[]types.OrderStatus{types.OrderStatusPending}, types.OrderStatusExecuted, &now)
	if err != nil {
		return err
	}
	if !ok {
		return nil
	}

	// Fills are accounted at the limit price, not the observed price.
	amount := o.Amount()
	switch o.Side {
	case types.OrderSideBuy:
		if _, err := s.book.Apply(ctx, o.ClientID, o.Symbol, o.Quantity, o.Price); err != nil {
			return err
		}
		if err := s.ledger.Settle(ctx, o.ClientID, amount); err != nil {
			return err
		}
	case types.OrderSideSell:
		if _, err := s.book.Apply(ctx, o.ClientID, o.Symbol, -o.Quantity, o.Price); err != nil {
			return err
		}
		if err := s.ledger.Credit(ctx, o.ClientID, amount); err != nil {
			return err
		}
	}
	s.audit.Record(ctx, types.EntityTypeOrder, o.ID, types.AuditActionExecute, "SYSTEM",
		"limit order filled at "+o.Price.StringFixed(2))
	s.publish(o.ID)
	return nil
}

func (s *LimitSweeper) publish(orderID string) {
	if s.bus == nil {
		return
	}
	s.bus.Publish(events.TypeOrder, map[string]string{"order_id": orderID})
}
