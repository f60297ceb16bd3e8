package model

import (
	"time"

	"lv-brokerage/internal/types"

	"github.com/shopspring/decimal"
)

type Client struct {
	ID              string             `json:"id"`
	Code            string             `json:"code"`
	Name            string             `json:"name"`
	Email           string             `json:"email"`
	Phone           string             `json:"phone"`
	OpeningBalance  decimal.Decimal    `json:"opening_balance"`
	Status          types.ClientStatus `json:"status"`
	RiskTier        types.RiskTier     `json:"risk_tier"`
	DailyTradeLimit *decimal.Decimal   `json:"daily_trade_limit"`
	CreatedAt       time.Time          `json:"created_at"`
	UpdatedAt       time.Time          `json:"updated_at"`
}

type Account struct {
	ID              string          `json:"id"`
	ClientID        string          `json:"client_id"`
	CashBalance     decimal.Decimal `json:"cash_balance"`
	ReservedBalance decimal.Decimal `json:"reserved_balance"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// Available is cash minus reserved, the spendable amount. Derived, never stored.
func (a Account) Available() decimal.Decimal {
	return a.CashBalance.Sub(a.ReservedBalance)
}

type Position struct {
	ID          string          `json:"id"`
	ClientID    string          `json:"client_id"`
	Symbol      string          `json:"symbol"`
	Quantity    int64           `json:"quantity"`
	AverageCost decimal.Decimal `json:"average_cost"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

type Order struct {
	ID          string            `json:"id"`
	ClientID    string            `json:"client_id"`
	Symbol      string            `json:"symbol"`
	Quantity    int64             `json:"quantity"`
	Price       decimal.Decimal   `json:"price"`
	Side        types.OrderSide   `json:"side"`
	Kind        types.OrderKind   `json:"kind"`
	Status      types.OrderStatus `json:"status"`
	TradeTime   time.Time         `json:"trade_time"`
	ExpiryTime  *time.Time        `json:"expiry_time,omitempty"`
	CheckPassed *bool             `json:"check_passed,omitempty"`
	CheckReason string            `json:"check_reason,omitempty"`
	CreatedAt   time.Time         `json:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at"`
}

// Amount is the order's accounting value: price times quantity.
func (o Order) Amount() decimal.Decimal {
	return o.Price.Mul(decimal.NewFromInt(o.Quantity))
}

type AuditEntry struct {
	ID         string    `json:"id"`
	EventTime  time.Time `json:"event_time"`
	EntityType string    `json:"entity_type"`
	EntityID   string    `json:"entity_id"`
	Action     string    `json:"action"`
	Actor      string    `json:"actor"`
	Details    string    `json:"details"`
}
