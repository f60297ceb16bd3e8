// Package portfolio is a read model over positions and the ledger: holdings
// marked to the oracle price, with per-holding and aggregate profit/loss.
package portfolio

import (
	"context"

	"lv-brokerage/internal/ledger"
	"lv-brokerage/internal/positions"
	"lv-brokerage/internal/pricing"

	"github.com/shopspring/decimal"
)

type Holding struct {
	Symbol            string          `json:"symbol"`
	Quantity          int64           `json:"quantity"`
	AverageCost       decimal.Decimal `json:"average_cost"`
	CurrentPrice      decimal.Decimal `json:"current_price"`
	MarketValue       decimal.Decimal `json:"market_value"`
	ProfitLoss        decimal.Decimal `json:"profit_loss"`
	ProfitLossPercent decimal.Decimal `json:"profit_loss_percent"`
}

type Summary struct {
	CashBalance       decimal.Decimal `json:"cash_balance"`
	ReservedBalance   decimal.Decimal `json:"reserved_balance"`
	AvailableBalance  decimal.Decimal `json:"available_balance"`
	Holdings          []Holding       `json:"holdings"`
	MarketValue       decimal.Decimal `json:"market_value"`
	InvestedValue     decimal.Decimal `json:"invested_value"`
	ProfitLoss        decimal.Decimal `json:"profit_loss"`
	ProfitLossPercent decimal.Decimal `json:"profit_loss_percent"`
}

type Service struct {
	book   *positions.Book
	ledger *ledger.Service
	oracle pricing.Oracle
}

func NewService(book *positions.Book, ledger *ledger.Service, oracle pricing.Oracle) *Service {
	return &Service{book: book, ledger: ledger, oracle: oracle}
}

// Holdings marks each position to the oracle price. When the oracle has no
// price the average cost stands in, so the holding shows flat rather than a
// total loss.
func (s *Service) Holdings(ctx context.Context, clientID string) ([]Holding, error) {
	ps, err := s.book.List(ctx, clientID)
	if err != nil {
		return nil, err
	}
	holdings := make([]Holding, 0, len(ps))
	for _, p := range ps {
		price := s.oracle.CurrentPrice(ctx, p.Symbol)
		if price.IsZero() {
			price = p.AverageCost
		}
		qty := decimal.NewFromInt(p.Quantity)
		market := price.Mul(qty)
		invested := p.AverageCost.Mul(qty)
		pl := market.Sub(invested)
		plPct := decimal.Zero
		if invested.IsPositive() {
			plPct = pl.DivRound(invested, 4).Mul(decimal.NewFromInt(100))
		}
		holdings = append(holdings, Holding{
			Symbol:            p.Symbol,
			Quantity:          p.Quantity,
			AverageCost:       p.AverageCost,
			CurrentPrice:      price,
			MarketValue:       market,
			ProfitLoss:        pl,
			ProfitLossPercent: plPct,
		})
	}
	return holdings, nil
}

func (s *Service) Summarize(ctx context.Context, clientID string) (Summary, error) {
	holdings, err := s.Holdings(ctx, clientID)
	if err != nil {
		return Summary{}, err
	}
	acc, err := s.ledger.Get(ctx, clientID)
	if err != nil {
		return Summary{}, err
	}
	market, invested := decimal.Zero, decimal.Zero
	for _, h := range holdings {
		market = market.Add(h.MarketValue)
		invested = invested.Add(h.AverageCost.Mul(decimal.NewFromInt(h.Quantity)))
	}
	pl := market.Sub(invested)
	plPct := decimal.Zero
	if invested.IsPositive() {
		plPct = pl.DivRound(invested, 4).Mul(decimal.NewFromInt(100))
	}
	return Summary{
		CashBalance:       acc.CashBalance,
		ReservedBalance:   acc.ReservedBalance,
		AvailableBalance:  acc.Available(),
		Holdings:          holdings,
		MarketValue:       market,
		InvestedValue:     invested,
		ProfitLoss:        pl,
		ProfitLossPercent: plPct,
	}, nil
}
