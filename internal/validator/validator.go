// Package validator screens draft orders before the lifecycle manager
// commits any funds. It never touches ledger or position state.
package validator

import (
	"context"

	"lv-brokerage/internal/model"
)

// Outcome is the validator's verdict on a draft order. A rejection is a
// normal business result, not an error.
type Outcome struct {
	Approved bool
	Reason   string
}

type Validator interface {
	Evaluate(ctx context.Context, order model.Order) Outcome
}

// Approve is a Validator that passes everything. Used in tests and as a
// stand-in when screening is disabled.
type Approve struct{}

func (Approve) Evaluate(ctx context.Context, order model.Order) Outcome {
	return Outcome{Approved: true}
}
