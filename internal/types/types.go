package types

type OrderSide string

type OrderKind string

type OrderStatus string

type ClientStatus string

type RiskTier string

type AuditAction string

const (
	OrderSideBuy  OrderSide = "BUY"
	OrderSideSell OrderSide = "SELL"
)

const (
	OrderKindMarket OrderKind = "MARKET"
	OrderKindLimit  OrderKind = "LIMIT"
)

const (
	OrderStatusPending   OrderStatus = "PENDING"
	OrderStatusExecuted  OrderStatus = "EXECUTED"
	OrderStatusRejected  OrderStatus = "REJECTED"
	OrderStatusCancelled OrderStatus = "CANCELLED"
	OrderStatusExpired   OrderStatus = "EXPIRED"
)

// Terminal reports whether an order in this status can never transition again.
func (s OrderStatus) Terminal() bool {
	switch s {
	case OrderStatusExecuted, OrderStatusRejected, OrderStatusCancelled, OrderStatusExpired:
		return true
	}
	return false
}

const (
	ClientStatusActive    ClientStatus = "ACTIVE"
	ClientStatusInactive  ClientStatus = "INACTIVE"
	ClientStatusSuspended ClientStatus = "SUSPENDED"
	ClientStatusBlocked   ClientStatus = "BLOCKED"
)

const (
	RiskTierLow    RiskTier = "LOW"
	RiskTierMedium RiskTier = "MEDIUM"
	RiskTierHigh   RiskTier = "HIGH"
)

const (
	AuditActionCreate  AuditAction = "CREATE"
	AuditActionExecute AuditAction = "EXECUTE"
	AuditActionReject  AuditAction = "REJECT"
	AuditActionCancel  AuditAction = "CANCEL"
	AuditActionExpire  AuditAction = "EXPIRE"
	AuditActionCorrect AuditAction = "CORRECT"
)

const (
	EntityTypeOrder  = "ORDER"
	EntityTypeClient = "CLIENT"
)
