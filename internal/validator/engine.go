package validator

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"lv-brokerage/internal/model"
	"lv-brokerage/internal/types"
)

// Orders above this size pass but are flagged for manual review.
const unusualQuantity = 10000

// Narrow read-only views of the stores the engine consults.
type ClientSource interface {
	GetByID(ctx context.Context, id string) (model.Client, error)
}

type OrderSource interface {
	ListByClientSince(ctx context.Context, clientID string, since time.Time) ([]model.Order, error)
}

type AccountSource interface {
	Get(ctx context.Context, clientID string) (model.Account, error)
}

// Engine runs the fraud checks followed by the static business rules and
// collects every failure reason into one outcome. Lookup errors fail closed:
// an order we cannot screen is rejected.
type Engine struct {
	clients  ClientSource
	orders   OrderSource
	accounts AccountSource

	open  time.Duration // offset from midnight, local time
	close time.Duration
	rules []Rule

	now func() time.Time
}

func NewEngine(clients ClientSource, orders OrderSource, accounts AccountSource, marketOpen, marketClose string) (*Engine, error) {
	open, err := parseClock(marketOpen)
	if err != nil {
		return nil, fmt.Errorf("market open: %w", err)
	}
	cls, err := parseClock(marketClose)
	if err != nil {
		return nil, fmt.Errorf("market close: %w", err)
	}
	return &Engine{
		clients:  clients,
		orders:   orders,
		accounts: accounts,
		open:     open,
		close:    cls,
		rules:    defaultRules(),
		now:      time.Now,
	}, nil
}

func (e *Engine) Evaluate(ctx context.Context, order model.Order) Outcome {
	var reasons []string

	client, err := e.clients.GetByID(ctx, order.ClientID)
	if err != nil {
		log.Printf("[validator] client lookup failed client=%s: %v", order.ClientID, err)
		return Outcome{Approved: false, Reason: "fraud check failed: client lookup error"}
	}

	if client.Status != types.ClientStatusActive {
		reasons = append(reasons, "client is not active")
	}

	now := e.now()
	if !e.withinTradingHours(now) {
		reasons = append(reasons, "trade outside trading hours")
	}

	amount := order.Amount()

	if client.DailyTradeLimit != nil {
		startOfDay := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
		today, err := e.orders.ListByClientSince(ctx, order.ClientID, startOfDay)
		if err != nil {
			log.Printf("[validator] order history lookup failed client=%s: %v", order.ClientID, err)
			return Outcome{Approved: false, Reason: "fraud check failed: order history error"}
		}
		total := amount
		for _, o := range today {
			total = total.Add(o.Amount())
		}
		if total.GreaterThan(*client.DailyTradeLimit) {
			reasons = append(reasons, "daily trade limit exceeded")
		}
	}

	if order.Quantity > unusualQuantity {
		log.Printf("[validator] unusually large order client=%s symbol=%s qty=%d, flagged for review",
			order.ClientID, order.Symbol, order.Quantity)
	}

	if order.Side == types.OrderSideBuy {
		acc, err := e.accounts.Get(ctx, order.ClientID)
		if err != nil {
			log.Printf("[validator] account lookup failed client=%s: %v", order.ClientID, err)
			return Outcome{Approved: false, Reason: "fraud check failed: account lookup error"}
		}
		if acc.Available().LessThan(amount) {
			reasons = append(reasons, "insufficient account balance")
		}
	}

	for _, r := range e.rules {
		if ok, reason := r.Check(client, order); !ok {
			reasons = append(reasons, reason)
		}
	}

	if len(reasons) > 0 {
		return Outcome{Approved: false, Reason: strings.Join(reasons, "; ")}
	}
	return Outcome{Approved: true}
}

func (e *Engine) withinTradingHours(t time.Time) bool {
	midnight := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	offset := t.Sub(midnight)
	return offset >= e.open && offset <= e.close
}

// parseClock turns "HH:MM" into an offset from midnight.
func parseClock(s string) (time.Duration, error) {
	t, err := time.Parse("15:04", strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("invalid clock time %q: %w", s, err)
	}
	return time.Duration(t.Hour())*time.Hour + time.Duration(t.Minute())*time.Minute, nil
}
