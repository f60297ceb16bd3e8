// Package orders drives the order lifecycle: submission through the
// validator, immediate execution of market orders, funding of resting limit
// orders, and cancellation.
package orders

import (
	"context"
	"fmt"
	"strings"
	"time"

	"lv-brokerage/internal/audit"
	"lv-brokerage/internal/events"
	"lv-brokerage/internal/ledger"
	"lv-brokerage/internal/model"
	"lv-brokerage/internal/positions"
	"lv-brokerage/internal/types"
	"lv-brokerage/internal/validator"

	"github.com/shopspring/decimal"
)

type ClientSource interface {
	GetByID(ctx context.Context, id string) (model.Client, error)
}

type Service struct {
	store   OrderStore
	clients ClientSource
	ledger  *ledger.Service
	book    *positions.Book
	check   validator.Validator
	audit   *audit.Service
	bus     *events.Bus

	now func() time.Time
}

func NewService(store OrderStore, clients ClientSource, ledger *ledger.Service, book *positions.Book, check validator.Validator, audit *audit.Service, bus *events.Bus) *Service {
	return &Service{
		store:   store,
		clients: clients,
		ledger:  ledger,
		book:    book,
		check:   check,
		audit:   audit,
		bus:     bus,
		now:     time.Now,
	}
}

type SubmitParams struct {
	ClientID string
	Symbol   string
	Quantity int64
	Price    decimal.Decimal
	Side     types.OrderSide
	Kind     types.OrderKind // empty defaults to MARKET
}

// Submit runs a draft order through validation and, on approval, executes it
// (market) or funds and parks it (limit). The returned order carries its
// terminal or resting status; a validator rejection is a normal result, not
// an error. The only hard failures are unknown clients, bad parameters, a
// limit buy the account cannot cover, and storage errors.
func (s *Service) Submit(ctx context.Context, p SubmitParams) (model.Order, error) {
	if _, err := s.clients.GetByID(ctx, p.ClientID); err != nil {
		return model.Order{}, err
	}
	draft, err := s.draft(p)
	if err != nil {
		return model.Order{}, err
	}

	outcome := s.check.Evaluate(ctx, draft)
	passed := outcome.Approved
	draft.CheckPassed = &passed
	draft.CheckReason = outcome.Reason

	if !outcome.Approved {
		draft.Status = types.OrderStatusRejected
		rejected, err := s.store.Create(ctx, draft)
		if err != nil {
			return model.Order{}, err
		}
		s.record(ctx, rejected, types.AuditActionReject, "rejected: "+outcome.Reason)
		return rejected, nil
	}

	amount := draft.Amount()
	switch draft.Kind {
	case types.OrderKindMarket:
		if err := s.executeMarket(ctx, &draft, amount); err != nil {
			return model.Order{}, err
		}
	case types.OrderKindLimit:
		// Only buys reserve; a resting sell holds no funds.
		if draft.Side == types.OrderSideBuy {
			if err := s.ledger.Reserve(ctx, draft.ClientID, amount); err != nil {
				return model.Order{}, err
			}
		}
	}

	created, err := s.store.Create(ctx, draft)
	if err != nil {
		return model.Order{}, err
	}
	action := types.AuditActionCreate
	detail := fmt.Sprintf("%s %s %d %s @ %s", created.Kind, created.Side, created.Quantity, created.Symbol, created.Price.StringFixed(2))
	if created.Status == types.OrderStatusExecuted {
		action = types.AuditActionExecute
		detail = "executed " + detail
	}
	s.record(ctx, created, action, detail)
	return created, nil
}

func (s *Service) draft(p SubmitParams) (model.Order, error) {
	if strings.TrimSpace(p.Symbol) == "" {
		return model.Order{}, fmt.Errorf("symbol is required")
	}
	if p.Quantity < 1 {
		return model.Order{}, fmt.Errorf("quantity must be at least 1")
	}
	if !p.Price.IsPositive() {
		return model.Order{}, fmt.Errorf("price must be positive")
	}
	switch p.Side {
	case types.OrderSideBuy, types.OrderSideSell:
	default:
		return model.Order{}, fmt.Errorf("side must be BUY or SELL")
	}
	kind := p.Kind
	if kind == "" {
		kind = types.OrderKindMarket
	}
	if kind != types.OrderKindMarket && kind != types.OrderKindLimit {
		return model.Order{}, fmt.Errorf("kind must be MARKET or LIMIT")
	}

	now := s.now()
	o := model.Order{
		ClientID:  p.ClientID,
		Symbol:    strings.ToUpper(strings.TrimSpace(p.Symbol)),
		Quantity:  p.Quantity,
		Price:     p.Price,
		Side:      p.Side,
		Kind:      kind,
		Status:    types.OrderStatusPending,
		TradeTime: now,
	}
	if kind == types.OrderKindLimit {
		// Resting orders live until the end of the trading day they were
		// placed on.
		expiry := time.Date(now.Year(), now.Month(), now.Day(), 23, 59, 59, 0, now.Location())
		o.ExpiryTime = &expiry
	}
	return o, nil
}

// executeMarket fills immediately at the requested price. Cash moves first on
// a buy so a funds failure leaves the position set untouched; the
// reconciliation sweep heals the narrow window where only one of the two
// mutations has landed.
func (s *Service) executeMarket(ctx context.Context, draft *model.Order, amount decimal.Decimal) error {
	switch draft.Side {
	case types.OrderSideBuy:
		if err := s.ledger.Debit(ctx, draft.ClientID, amount); err != nil {
			return err
		}
		if _, err := s.book.Apply(ctx, draft.ClientID, draft.Symbol, draft.Quantity, draft.Price); err != nil {
			return err
		}
	case types.OrderSideSell:
		if _, err := s.book.Apply(ctx, draft.ClientID, draft.Symbol, -draft.Quantity, draft.Price); err != nil {
			return err
		}
		if err := s.ledger.Credit(ctx, draft.ClientID, amount); err != nil {
			return err
		}
	}
	draft.Status = types.OrderStatusExecuted
	draft.TradeTime = s.now()
	return nil
}

// Cancel moves a non-executed order to CANCELLED. A funded limit buy keeps
// its reservation; the reconciliation sweep returns those funds once it sees
// no resting order backing them.
func (s *Service) Cancel(ctx context.Context, orderID, actor string) (model.Order, error) {
	o, err := s.store.Get(ctx, orderID)
	if err != nil {
		return model.Order{}, err
	}
	if o.Status == types.OrderStatusExecuted {
		return model.Order{}, model.ErrInvalidTransition
	}
	ok, err := s.store.UpdateStatusIf(ctx, orderID,
		[]types.OrderStatus{types.OrderStatusPending, types.OrderStatusRejected, types.OrderStatusExpired},
		types.OrderStatusCancelled, nil)
	if err != nil {
		return model.Order{}, err
	}
	if !ok {
		// Lost a race with a fill or another cancel.
		current, err := s.store.Get(ctx, orderID)
		if err != nil {
			return model.Order{}, err
		}
		if current.Status == types.OrderStatusCancelled {
			return current, nil
		}
		return model.Order{}, model.ErrInvalidTransition
	}
	cancelled, err := s.store.Get(ctx, orderID)
	if err != nil {
		return model.Order{}, err
	}
	s.audit.Record(ctx, types.EntityTypeOrder, cancelled.ID, types.AuditActionCancel, actor, "order cancelled")
	if s.bus != nil {
		s.bus.Publish(events.TypeOrder, cancelled)
	}
	return cancelled, nil
}

func (s *Service) Get(ctx context.Context, orderID string) (model.Order, error) {
	return s.store.Get(ctx, orderID)
}

func (s *Service) ListByClient(ctx context.Context, clientID string) ([]model.Order, error) {
	return s.store.ListByClient(ctx, clientID)
}

func (s *Service) record(ctx context.Context, o model.Order, action types.AuditAction, details string) {
	s.audit.Record(ctx, types.EntityTypeOrder, o.ID, action, "SYSTEM", details)
	if s.bus != nil {
		s.bus.Publish(events.TypeOrder, o)
	}
}
