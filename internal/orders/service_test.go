package orders

import (
	"context"
	"errors"
	"testing"
	"time"

	"lv-brokerage/internal/audit"
	"lv-brokerage/internal/clients"
	"lv-brokerage/internal/ledger"
	"lv-brokerage/internal/model"
	"lv-brokerage/internal/positions"
	"lv-brokerage/internal/types"
	"lv-brokerage/internal/validator"

	"github.com/shopspring/decimal"
)

type rejectAll struct{ reason string }

func (r rejectAll) Evaluate(ctx context.Context, o model.Order) validator.Outcome {
	return validator.Outcome{Approved: false, Reason: r.reason}
}

type testEnv struct {
	svc      *Service
	ledger   *ledger.Service
	book     *positions.Book
	audits   *audit.MemStore
	clientID string
}

func newTestEnv(t *testing.T, check validator.Validator, openingBalance int64) *testEnv {
	t.Helper()
	ctx := context.Background()
	locks := ledger.NewAccountLocks()
	ledgerSvc := ledger.NewService(ledger.NewMemStore(), locks)
	book := positions.NewBook(positions.NewMemStore(), locks)
	auditStore := audit.NewMemStore()
	auditSvc := audit.NewService(auditStore, nil)
	clientStore := clients.NewMemStore()

	c, err := clientStore.Create(ctx, model.Client{
		Code:     "CL001",
		Name:     "Test Client",
		Email:    "client@example.com",
		Status:   types.ClientStatusActive,
		RiskTier: types.RiskTierHigh,
	})
	if err != nil {
		t.Fatalf("create client: %v", err)
	}
	if _, err := ledgerSvc.Open(ctx, c.ID, decimal.NewFromInt(openingBalance)); err != nil {
		t.Fatalf("open account: %v", err)
	}

	svc := NewService(NewMemStore(), clientStore, ledgerSvc, book, check, auditSvc, nil)
	return &testEnv{svc: svc, ledger: ledgerSvc, book: book, audits: auditStore, clientID: c.ID}
}

func (e *testEnv) account(t *testing.T) model.Account {
	t.Helper()
	a, err := e.ledger.Get(context.Background(), e.clientID)
	if err != nil {
		t.Fatalf("get account: %v", err)
	}
	return a
}

func TestMarketBuyExecutesImmediately(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, validator.Approve{}, 10000)

	o, err := env.svc.Submit(ctx, SubmitParams{
		ClientID: env.clientID,
		Symbol:   "AAPL",
		Quantity: 10,
		Price:    decimal.NewFromInt(100),
		Side:     types.OrderSideBuy,
		Kind:     types.OrderKindMarket,
	})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if o.Status != types.OrderStatusExecuted {
		t.Fatalf("status = %s, want EXECUTED", o.Status)
	}
	if a := env.account(t); a.CashBalance.String() != "9000" {
		t.Errorf("cash = %s, want 9000", a.CashBalance)
	}
	ps, _ := env.book.List(ctx, env.clientID)
	if len(ps) != 1 || ps[0].Quantity != 10 || ps[0].AverageCost.String() != "100" {
		t.Errorf("positions = %+v, want one 10 @ 100", ps)
	}
}

func TestMarketSellCreditsCash(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, validator.Approve{}, 1000)

	if _, err := env.book.Apply(ctx, env.clientID, "AAPL", 10, decimal.NewFromInt(100)); err != nil {
		t.Fatalf("seed position: %v", err)
	}
	o, err := env.svc.Submit(ctx, SubmitParams{
		ClientID: env.clientID,
		Symbol:   "AAPL",
		Quantity: 10,
		Price:    decimal.NewFromInt(120),
		Side:     types.OrderSideSell,
		Kind:     types.OrderKindMarket,
	})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if o.Status != types.OrderStatusExecuted {
		t.Fatalf("status = %s, want EXECUTED", o.Status)
	}
	if a := env.account(t); a.CashBalance.String() != "2200" {
		t.Errorf("cash = %s, want 2200", a.CashBalance)
	}
	ps, _ := env.book.List(ctx, env.clientID)
	if len(ps) != 0 {
		t.Errorf("expected empty book after full disposal, got %+v", ps)
	}
}

func TestRejectionHasNoSideEffects(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, rejectAll{reason: "client is not active"}, 10000)

	o, err := env.svc.Submit(ctx, SubmitParams{
		ClientID: env.clientID,
		Symbol:   "AAPL",
		Quantity: 10,
		Price:    decimal.NewFromInt(100),
		Side:     types.OrderSideBuy,
	})
	if err != nil {
		t.Fatalf("rejection must not be an error: %v", err)
	}
	if o.Status != types.OrderStatusRejected {
		t.Fatalf("status = %s, want REJECTED", o.Status)
	}
	if o.CheckReason != "client is not active" {
		t.Errorf("reason = %q", o.CheckReason)
	}
	a := env.account(t)
	if a.CashBalance.String() != "10000" || !a.ReservedBalance.IsZero() {
		t.Errorf("balances moved on rejection: %+v", a)
	}
	ps, _ := env.book.List(ctx, env.clientID)
	if len(ps) != 0 {
		t.Errorf("positions created on rejection: %+v", ps)
	}
	trail, _ := env.audits.ListByEntity(ctx, types.EntityTypeOrder, o.ID)
	if len(trail) != 1 || trail[0].Action != string(types.AuditActionReject) {
		t.Errorf("audit trail = %+v, want one REJECT entry", trail)
	}
}

func TestLimitBuyReservesFunds(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, validator.Approve{}, 10000)

	o, err := env.svc.Submit(ctx, SubmitParams{
		ClientID: env.clientID,
		Symbol:   "AAPL",
		Quantity: 10,
		Price:    decimal.NewFromInt(95),
		Side:     types.OrderSideBuy,
		Kind:     types.OrderKindLimit,
	})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if o.Status != types.OrderStatusPending {
		t.Fatalf("status = %s, want PENDING", o.Status)
	}
	if o.ExpiryTime == nil {
		t.Fatal("limit order must carry an expiry")
	}
	if h, m, s := o.ExpiryTime.Clock(); h != 23 || m != 59 || s != 59 {
		t.Errorf("expiry = %v, want end of day", o.ExpiryTime)
	}
	a := env.account(t)
	if a.CashBalance.String() != "10000" || a.ReservedBalance.String() != "950" {
		t.Errorf("cash=%s reserved=%s, want 10000/950", a.CashBalance, a.ReservedBalance)
	}
}

func TestLimitSellQueuesWithoutReservation(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, validator.Approve{}, 1000)

	o, err := env.svc.Submit(ctx, SubmitParams{
		ClientID: env.clientID,
		Symbol:   "AAPL",
		Quantity: 5,
		Price:    decimal.NewFromInt(200),
		Side:     types.OrderSideSell,
		Kind:     types.OrderKindLimit,
	})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if o.Status != types.OrderStatusPending {
		t.Fatalf("status = %s, want PENDING", o.Status)
	}
	if a := env.account(t); !a.ReservedBalance.IsZero() {
		t.Errorf("sell must not reserve, got %s", a.ReservedBalance)
	}
}

func TestUnderfundedLimitBuyFailsOutright(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, validator.Approve{}, 100)

	_, err := env.svc.Submit(ctx, SubmitParams{
		ClientID: env.clientID,
		Symbol:   "AAPL",
		Quantity: 10,
		Price:    decimal.NewFromInt(100),
		Side:     types.OrderSideBuy,
		Kind:     types.OrderKindLimit,
	})
	if !errors.Is(err, model.ErrInsufficientFunds) {
		t.Fatalf("got %v, want ErrInsufficientFunds", err)
	}
	// The failed submission must not leave an order behind.
	os, _ := env.svc.ListByClient(ctx, env.clientID)
	if len(os) != 0 {
		t.Errorf("orders persisted on hard failure: %+v", os)
	}
}

func TestKindDefaultsToMarket(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, validator.Approve{}, 10000)

	o, err := env.svc.Submit(ctx, SubmitParams{
		ClientID: env.clientID,
		Symbol:   "AAPL",
		Quantity: 1,
		Price:    decimal.NewFromInt(100),
		Side:     types.OrderSideBuy,
	})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if o.Kind != types.OrderKindMarket {
		t.Errorf("kind = %s, want MARKET", o.Kind)
	}
	if o.Status != types.OrderStatusExecuted {
		t.Errorf("status = %s, want EXECUTED", o.Status)
	}
}

func TestUnknownClientFailsSubmit(t *testing.T) {
	env := newTestEnv(t, validator.Approve{}, 1000)

	_, err := env.svc.Submit(context.Background(), SubmitParams{
		ClientID: "ghost",
		Symbol:   "AAPL",
		Quantity: 1,
		Price:    decimal.NewFromInt(10),
		Side:     types.OrderSideBuy,
	})
	if !errors.Is(err, model.ErrClientNotFound) {
		t.Fatalf("got %v, want ErrClientNotFound", err)
	}
}

func TestCancelPendingOrder(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, validator.Approve{}, 10000)

	o, err := env.svc.Submit(ctx, SubmitParams{
		ClientID: env.clientID,
		Symbol:   "AAPL",
		Quantity: 10,
		Price:    decimal.NewFromInt(90),
		Side:     types.OrderSideBuy,
		Kind:     types.OrderKindLimit,
	})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	cancelled, err := env.svc.Cancel(ctx, o.ID, "ops@example.com")
	if err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if cancelled.Status != types.OrderStatusCancelled {
		t.Fatalf("status = %s, want CANCELLED", cancelled.Status)
	}
	// The reservation survives cancellation; reconciliation returns it.
	if a := env.account(t); a.ReservedBalance.String() != "900" {
		t.Errorf("reserved = %s, want 900 (held until reconciliation)", a.ReservedBalance)
	}
}

func TestCancelExecutedOrderFails(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, validator.Approve{}, 10000)

	o, err := env.svc.Submit(ctx, SubmitParams{
		ClientID: env.clientID,
		Symbol:   "AAPL",
		Quantity: 1,
		Price:    decimal.NewFromInt(100),
		Side:     types.OrderSideBuy,
		Kind:     types.OrderKindMarket,
	})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if _, err := env.svc.Cancel(ctx, o.ID, "ops"); !errors.Is(err, model.ErrInvalidTransition) {
		t.Fatalf("got %v, want ErrInvalidTransition", err)
	}
}

func TestCancelUnknownOrder(t *testing.T) {
	env := newTestEnv(t, validator.Approve{}, 1000)
	if _, err := env.svc.Cancel(context.Background(), "ghost", "ops"); !errors.Is(err, model.ErrOrderNotFound) {
		t.Fatalf("got %v, want ErrOrderNotFound", err)
	}
}

func TestDraftValidation(t *testing.T) {
	env := newTestEnv(t, validator.Approve{}, 1000)
	ctx := context.Background()

	cases := []struct {
		name string
		p    SubmitParams
	}{
		{"missing symbol", SubmitParams{ClientID: env.clientID, Quantity: 1, Price: decimal.NewFromInt(1), Side: types.OrderSideBuy}},
		{"zero quantity", SubmitParams{ClientID: env.clientID, Symbol: "AAPL", Price: decimal.NewFromInt(1), Side: types.OrderSideBuy}},
		{"zero price", SubmitParams{ClientID: env.clientID, Symbol: "AAPL", Quantity: 1, Side: types.OrderSideBuy}},
		{"bad side", SubmitParams{ClientID: env.clientID, Symbol: "AAPL", Quantity: 1, Price: decimal.NewFromInt(1), Side: "HOLD"}},
		{"bad kind", SubmitParams{ClientID: env.clientID, Symbol: "AAPL", Quantity: 1, Price: decimal.NewFromInt(1), Side: types.OrderSideBuy, Kind: "STOP"}},
	}
	for _, tc := range cases {
		if _, err := env.svc.Submit(ctx, tc.p); err == nil {
			t.Errorf("%s: expected error", tc.name)
		}
	}
}

func TestMarketBuyTradeTimeIsSet(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, validator.Approve{}, 10000)
	fixed := time.Date(2026, 3, 2, 12, 30, 0, 0, time.UTC)
	env.svc.now = func() time.Time { return fixed }

	o, err := env.svc.Submit(ctx, SubmitParams{
		ClientID: env.clientID,
		Symbol:   "AAPL",
		Quantity: 1,
		Price:    decimal.NewFromInt(100),
		Side:     types.OrderSideBuy,
	})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if !o.TradeTime.Equal(fixed) {
		t.Errorf("trade time = %v, want %v", o.TradeTime, fixed)
	}
}
