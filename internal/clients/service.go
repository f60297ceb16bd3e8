// Package clients manages brokerage client records. Creating a client also
// provisions its cash account with the opening balance.
package clients

import (
	"context"
	"errors"

	"lv-brokerage/internal/audit"
	"lv-brokerage/internal/ledger"
	"lv-brokerage/internal/model"
	"lv-brokerage/internal/types"

	"github.com/shopspring/decimal"
)

type Service struct {
	store  ClientStore
	ledger *ledger.Service
	audit  *audit.Service
}

func NewService(store ClientStore, ledger *ledger.Service, audit *audit.Service) *Service {
	return &Service{store: store, ledger: ledger, audit: audit}
}

type CreateParams struct {
	Code            string
	Name            string
	Email           string
	Phone           string
	OpeningBalance  string
	RiskTier        types.RiskTier
	DailyTradeLimit string // empty = unlimited
}

func (p CreateParams) toClient() (model.Client, error) {
	if p.Code == "" || p.Name == "" || p.Email == "" {
		return model.Client{}, errors.New("code, name and email are required")
	}
	opening, err := parseAmount(p.OpeningBalance, true)
	if err != nil {
		return model.Client{}, errors.New("invalid opening balance")
	}
	c := model.Client{
		Code:           p.Code,
		Name:           p.Name,
		Email:          p.Email,
		Phone:          p.Phone,
		OpeningBalance: opening,
		Status:         types.ClientStatusActive,
		RiskTier:       p.RiskTier,
	}
	if c.RiskTier == "" {
		c.RiskTier = types.RiskTierLow
	}
	if p.DailyTradeLimit != "" {
		limit, err := parseAmount(p.DailyTradeLimit, false)
		if err != nil {
			return model.Client{}, errors.New("invalid daily trade limit")
		}
		c.DailyTradeLimit = &limit
	}
	return c, nil
}

func (s *Service) Create(ctx context.Context, p CreateParams) (model.Client, error) {
	c, err := p.toClient()
	if err != nil {
		return model.Client{}, err
	}
	created, err := s.store.Create(ctx, c)
	if err != nil {
		return model.Client{}, err
	}
	if _, err := s.ledger.Open(ctx, created.ID, created.OpeningBalance); err != nil {
		return model.Client{}, err
	}
	s.audit.Record(ctx, types.EntityTypeClient, created.ID, types.AuditActionCreate, "SYSTEM",
		"client "+created.Code+" registered with opening balance "+created.OpeningBalance.StringFixed(2))
	return created, nil
}

func (s *Service) Get(ctx context.Context, id string) (model.Client, error) {
	return s.store.GetByID(ctx, id)
}

func (s *Service) List(ctx context.Context) ([]model.Client, error) {
	return s.store.List(ctx)
}

// SetStatus gates future order submissions for the client. Already-resting
// limit orders are untouched and still sweep.
func (s *Service) SetStatus(ctx context.Context, id string, status types.ClientStatus, actor string) error {
	switch status {
	case types.ClientStatusActive, types.ClientStatusInactive, types.ClientStatusSuspended, types.ClientStatusBlocked:
	default:
		return errors.New("unknown client status")
	}
	if err := s.store.UpdateStatus(ctx, id, status); err != nil {
		return err
	}
	s.audit.Record(ctx, types.EntityTypeClient, id, types.AuditActionCorrect, actor, "status set to "+string(status))
	return nil
}

func parseAmount(s string, allowEmpty bool) (decimal.Decimal, error) {
	if s == "" {
		if allowEmpty {
			return decimal.Zero, nil
		}
		return decimal.Zero, errors.New("amount required")
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, err
	}
	if d.IsNegative() {
		return decimal.Zero, errors.New("amount must not be negative")
	}
	return d.Round(2), nil
}
