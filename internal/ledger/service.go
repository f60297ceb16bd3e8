// Package ledger owns per-client cash and reserved balances. Every mutation
// is a read-modify-write performed under the client's account lock, so the
// invariant reserved <= cash holds after any completed operation.
package ledger

import (
	"context"
	"errors"
	"fmt"

	"lv-brokerage/internal/model"

	"github.com/shopspring/decimal"
)

type Service struct {
	store AccountStore
	locks *AccountLocks
}

func NewService(store AccountStore, locks *AccountLocks) *Service {
	return &Service{store: store, locks: locks}
}

// Open creates the client's account with its opening balance and no
// reservation. One account per client.
func (s *Service) Open(ctx context.Context, clientID string, openingBalance decimal.Decimal) (model.Account, error) {
	if openingBalance.IsNegative() {
		return model.Account{}, errors.New("opening balance must not be negative")
	}
	return s.store.Create(ctx, model.Account{
		ClientID:        clientID,
		CashBalance:     openingBalance,
		ReservedBalance: decimal.Zero,
	})
}

func (s *Service) Get(ctx context.Context, clientID string) (model.Account, error) {
	return s.store.GetByClient(ctx, clientID)
}

// Credit adds amount to the cash balance.
func (s *Service) Credit(ctx context.Context, clientID string, amount decimal.Decimal) error {
	return s.apply(ctx, clientID, amount, func(a *model.Account) error {
		a.CashBalance = a.CashBalance.Add(amount)
		return nil
	})
}

// Reserve earmarks amount for a pending limit buy. Fails with
// ErrInsufficientFunds when the available balance cannot cover it.
func (s *Service) Reserve(ctx context.Context, clientID string, amount decimal.Decimal) error {
	return s.apply(ctx, clientID, amount, func(a *model.Account) error {
		if a.Available().LessThan(amount) {
			return model.ErrInsufficientFunds
		}
		a.ReservedBalance = a.ReservedBalance.Add(amount)
		return nil
	})
}

// Release returns a reservation to availability. Over-releasing is a caller
// defect, surfaced as ErrInvariantViolation and applied not at all.
func (s *Service) Release(ctx context.Context, clientID string, amount decimal.Decimal) error {
	return s.apply(ctx, clientID, amount, func(a *model.Account) error {
		if a.ReservedBalance.LessThan(amount) {
			return fmt.Errorf("release %s exceeds reservation %s: %w", amount, a.ReservedBalance, model.ErrInvariantViolation)
		}
		a.ReservedBalance = a.ReservedBalance.Sub(amount)
		return nil
	})
}

// Settle consumes a held reservation: cash and reserved both drop by amount
// in one step. Only limit fills, which actually reserved, settle; market
// fills use Debit.
func (s *Service) Settle(ctx context.Context, clientID string, amount decimal.Decimal) error {
	return s.apply(ctx, clientID, amount, func(a *model.Account) error {
		if a.ReservedBalance.LessThan(amount) {
			return fmt.Errorf("settle %s exceeds reservation %s: %w", amount, a.ReservedBalance, model.ErrInvariantViolation)
		}
		a.CashBalance = a.CashBalance.Sub(amount)
		a.ReservedBalance = a.ReservedBalance.Sub(amount)
		return nil
	})
}

// Debit pays for a market fill from cash only. Fails with
// ErrInsufficientFunds when the available balance cannot cover it.
func (s *Service) Debit(ctx context.Context, clientID string, amount decimal.Decimal) error {
	return s.apply(ctx, clientID, amount, func(a *model.Account) error {
		if a.Available().LessThan(amount) {
			return model.ErrInsufficientFunds
		}
		a.CashBalance = a.CashBalance.Sub(amount)
		return nil
	})
}

// Withdraw removes cash from the account, capped at the available balance.
func (s *Service) Withdraw(ctx context.Context, clientID string, amount decimal.Decimal) error {
	return s.apply(ctx, clientID, amount, func(a *model.Account) error {
		if a.Available().LessThan(amount) {
			return model.ErrInsufficientFunds
		}
		a.CashBalance = a.CashBalance.Sub(amount)
		return nil
	})
}

// Overwrite replaces both balances unconditionally. Reserved for the
// reconciliation sweep, which re-derives them from the executed trade log.
func (s *Service) Overwrite(ctx context.Context, clientID string, cash, reserved decimal.Decimal) error {
	return s.locks.Do(clientID, func() error {
		return s.store.UpdateBalances(ctx, clientID, cash, reserved)
	})
}

func (s *Service) apply(ctx context.Context, clientID string, amount decimal.Decimal, mutate func(*model.Account) error) error {
	if !amount.IsPositive() {
		return errors.New("amount must be positive")
	}
	return s.locks.Do(clientID, func() error {
		a, err := s.store.GetByClient(ctx, clientID)
		if err != nil {
			return err
		}
		if err := mutate(&a); err != nil {
			return err
		}
		if a.ReservedBalance.GreaterThan(a.CashBalance) || a.ReservedBalance.IsNegative() {
			return fmt.Errorf("client %s: reserved %s, cash %s: %w", clientID, a.ReservedBalance, a.CashBalance, model.ErrInvariantViolation)
		}
		return s.store.UpdateBalances(ctx, clientID, a.CashBalance, a.ReservedBalance)
	})
}
