package sweeper

import (
	"context"
	"testing"
	"time"

	"lv-brokerage/internal/clients"
	"lv-brokerage/internal/ledger"
	"lv-brokerage/internal/model"
	"lv-brokerage/internal/orders"
	"lv-brokerage/internal/positions"
	"lv-brokerage/internal/types"

	"github.com/shopspring/decimal"
)

type reconcileEnv struct {
	rec     *Reconciler
	clients *clients.MemStore
	orders  *orders.MemStore
	ledger  *ledger.Service
	book    *positions.Book
}

func newReconcileEnv(t *testing.T) *reconcileEnv {
	t.Helper()
	locks := ledger.NewAccountLocks()
	ledgerSvc := ledger.NewService(ledger.NewMemStore(), locks)
	book := positions.NewBook(positions.NewMemStore(), locks)
	orderStore := orders.NewMemStore()
	clientStore := clients.NewMemStore()
	rec := NewReconciler(clientStore, orderStore, ledgerSvc, book, time.Minute)
	return &reconcileEnv{rec: rec, clients: clientStore, orders: orderStore, ledger: ledgerSvc, book: book}
}

func (e *reconcileEnv) addClient(t *testing.T, opening int64) model.Client {
	t.Helper()
	ctx := context.Background()
	c, err := e.clients.Create(ctx, model.Client{
		Code:           "CL001",
		Name:           "Test",
		Email:          "t@example.com",
		OpeningBalance: decimal.NewFromInt(opening),
		Status:         types.ClientStatusActive,
		RiskTier:       types.RiskTierLow,
	})
	if err != nil {
		t.Fatalf("create client: %v", err)
	}
	if _, err := e.ledger.Open(ctx, c.ID, decimal.NewFromInt(opening)); err != nil {
		t.Fatalf("open account: %v", err)
	}
	return c
}

func (e *reconcileEnv) addOrder(t *testing.T, clientID string, side types.OrderSide, kind types.OrderKind, status types.OrderStatus, qty, price int64, tradeTime time.Time) {
	t.Helper()
	if _, err := e.orders.Create(context.Background(), model.Order{
		ClientID:  clientID,
		Symbol:    "AAPL",
		Quantity:  qty,
		Price:     decimal.NewFromInt(price),
		Side:      side,
		Kind:      kind,
		Status:    status,
		TradeTime: tradeTime,
	}); err != nil {
		t.Fatalf("create order: %v", err)
	}
}

func TestReconcileRebuildsFromExecutedOrders(t *testing.T) {
	ctx := context.Background()
	env := newReconcileEnv(t)
	c := env.addClient(t, 10000)
	base := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)

	// Buy 10 @ 100, buy 10 @ 200, sell 5 @ 300.
	env.addOrder(t, c.ID, types.OrderSideBuy, types.OrderKindMarket, types.OrderStatusExecuted, 10, 100, base)
	env.addOrder(t, c.ID, types.OrderSideBuy, types.OrderKindMarket, types.OrderStatusExecuted, 10, 200, base.Add(time.Minute))
	env.addOrder(t, c.ID, types.OrderSideSell, types.OrderKindMarket, types.OrderStatusExecuted, 5, 300, base.Add(2*time.Minute))

	// The stored state is stale; the ledger still shows the opening balance.
	env.rec.Sweep(ctx)

	a, err := env.ledger.Get(ctx, c.ID)
	if err != nil {
		t.Fatalf("get account: %v", err)
	}
	// 10000 - 1000 - 2000 + 1500 = 8500
	if a.CashBalance.String() != "8500" {
		t.Errorf("cash = %s, want 8500", a.CashBalance)
	}
	if !a.ReservedBalance.IsZero() {
		t.Errorf("reserved = %s, want 0", a.ReservedBalance)
	}
	ps, _ := env.book.List(ctx, c.ID)
	// Weighted average of the buys is 150; the sell leaves 15 and holds it.
	if len(ps) != 1 || ps[0].Quantity != 15 || ps[0].AverageCost.String() != "150" {
		t.Errorf("positions = %+v, want one 15 @ 150", ps)
	}
}

func TestReconcileIsIdempotent(t *testing.T) {
	ctx := context.Background()
	env := newReconcileEnv(t)
	c := env.addClient(t, 5000)
	env.addOrder(t, c.ID, types.OrderSideBuy, types.OrderKindMarket, types.OrderStatusExecuted, 10, 100,
		time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC))

	env.rec.Sweep(ctx)
	first, _ := env.ledger.Get(ctx, c.ID)
	firstPs, _ := env.book.List(ctx, c.ID)

	env.rec.Sweep(ctx)
	second, _ := env.ledger.Get(ctx, c.ID)
	secondPs, _ := env.book.List(ctx, c.ID)

	if !first.CashBalance.Equal(second.CashBalance) || !first.ReservedBalance.Equal(second.ReservedBalance) {
		t.Errorf("balances changed between runs: %+v vs %+v", first, second)
	}
	if len(firstPs) != len(secondPs) || firstPs[0].Quantity != secondPs[0].Quantity {
		t.Errorf("positions changed between runs: %+v vs %+v", firstPs, secondPs)
	}
}

func TestReconcileReturnsOrphanedReservation(t *testing.T) {
	ctx := context.Background()
	env := newReconcileEnv(t)
	c := env.addClient(t, 10000)

	// A limit buy reserved 950 and was then cancelled; cancellation does not
	// release funds, so the reservation is orphaned until this sweep.
	if err := env.ledger.Reserve(ctx, c.ID, decimal.NewFromInt(950)); err != nil {
		t.Fatalf("reserve: %v", err)
	}
	env.addOrder(t, c.ID, types.OrderSideBuy, types.OrderKindLimit, types.OrderStatusCancelled, 10, 95, time.Now())

	env.rec.Sweep(ctx)

	a, _ := env.ledger.Get(ctx, c.ID)
	if a.CashBalance.String() != "10000" || !a.ReservedBalance.IsZero() {
		t.Errorf("cash=%s reserved=%s, want 10000/0 after healing", a.CashBalance, a.ReservedBalance)
	}
}

func TestReconcileKeepsLiveReservation(t *testing.T) {
	ctx := context.Background()
	env := newReconcileEnv(t)
	c := env.addClient(t, 10000)

	if err := env.ledger.Reserve(ctx, c.ID, decimal.NewFromInt(950)); err != nil {
		t.Fatalf("reserve: %v", err)
	}
	env.addOrder(t, c.ID, types.OrderSideBuy, types.OrderKindLimit, types.OrderStatusPending, 10, 95, time.Now())

	env.rec.Sweep(ctx)

	a, _ := env.ledger.Get(ctx, c.ID)
	if a.ReservedBalance.String() != "950" {
		t.Errorf("reserved = %s, want 950 (resting limit buy still backs it)", a.ReservedBalance)
	}
}

func TestReconcileOneClientFailureDoesNotBlockOthers(t *testing.T) {
	ctx := context.Background()
	env := newReconcileEnv(t)

	// First client exists in the registry but has no account; reconciling it
	// fails at the ledger read.
	broken, err := env.clients.Create(ctx, model.Client{
		Code: "CL000", Name: "Broken", Email: "b@example.com",
		OpeningBalance: decimal.NewFromInt(100),
		Status:         types.ClientStatusActive, RiskTier: types.RiskTierLow,
	})
	if err != nil {
		t.Fatalf("create client: %v", err)
	}
	healthy := env.addClient(t, 5000)
	env.addOrder(t, healthy.ID, types.OrderSideBuy, types.OrderKindMarket, types.OrderStatusExecuted, 10, 100,
		time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC))

	env.rec.Sweep(ctx)

	a, err := env.ledger.Get(ctx, healthy.ID)
	if err != nil {
		t.Fatalf("get healthy account: %v", err)
	}
	if a.CashBalance.String() != "4000" {
		t.Errorf("healthy client cash = %s, want 4000", a.CashBalance)
	}
	_ = broken
}
