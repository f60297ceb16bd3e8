package model

import "errors"

var (
	ErrClientNotFound  = errors.New("client not found")
	ErrAccountNotFound = errors.New("account not found")
	ErrOrderNotFound   = errors.New("order not found")

	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrInvalidTransition = errors.New("invalid order status transition")

	// ErrPriceUnavailable is non-fatal: sweepers skip the order this cycle.
	ErrPriceUnavailable = errors.New("price unavailable")

	// ErrInvariantViolation means reserved balance would exceed cash or go
	// negative. A defect in the caller, not a business outcome.
	ErrInvariantViolation = errors.New("account invariant violated")
)
