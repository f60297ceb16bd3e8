package validator

import (
	"fmt"

	"lv-brokerage/internal/model"
	"lv-brokerage/internal/types"

	"github.com/shopspring/decimal"
)

// Rule is one business predicate evaluated against a draft order. Rules run
// in order and every failure contributes a reason; the first failure does not
// short-circuit the rest.
type Rule interface {
	Check(client model.Client, order model.Order) (ok bool, reason string)
}

// notionalCapRule caps the order value by the client's risk tier.
type notionalCapRule struct {
	caps map[types.RiskTier]decimal.Decimal
}

func (r notionalCapRule) Check(client model.Client, order model.Order) (bool, string) {
	limit, ok := r.caps[client.RiskTier]
	if !ok {
		return false, fmt.Sprintf("unknown risk tier %q", client.RiskTier)
	}
	if order.Amount().GreaterThan(limit) {
		return false, fmt.Sprintf("order value exceeds %s tier cap of %s", client.RiskTier, limit.StringFixed(2))
	}
	return true, ""
}

// maxQuantityRule is a hard per-order share cap regardless of tier.
type maxQuantityRule struct {
	max int64
}

func (r maxQuantityRule) Check(client model.Client, order model.Order) (bool, string) {
	if order.Quantity > r.max {
		return false, fmt.Sprintf("order quantity exceeds hard cap of %d shares", r.max)
	}
	return true, ""
}

func defaultRules() []Rule {
	return []Rule{
		notionalCapRule{caps: map[types.RiskTier]decimal.Decimal{
			types.RiskTierLow:    decimal.NewFromInt(10000),
			types.RiskTierMedium: decimal.NewFromInt(50000),
			types.RiskTierHigh:   decimal.NewFromInt(250000),
		}},
		maxQuantityRule{max: 50000},
	}
}
