package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Order states. Transitions are monotonic along the graph below; an order
// never moves backward.
const (
	OrderPending   = "PENDING"
	OrderCreated   = "CREATED"
	OrderPaid      = "PAID"
	OrderCompleted = "COMPLETED"
	OrderFailed    = "FAILED"
	OrderCancelled = "CANCELLED"
)

var orderTransitions = map[string][]string{
	OrderPending: {OrderCreated, OrderPaid},
	OrderCreated: {OrderPaid, OrderFailed, OrderCancelled},
	OrderPaid:    {OrderCompleted},
}

// CanTransition reports whether from -> to is a legal order state move.
func CanTransition(from, to string) bool {
	for _, next := range orderTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Order is the checkout aggregate. It is owned exclusively by the cart
// service until COMPLETED, after which it is immutable history.
type Order struct {
	ID              uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	UserID          string          `gorm:"type:varchar(80);not null;index" json:"user_id"`
	TotalAmount     decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"total_amount"`
	State           string          `gorm:"type:varchar(20);not null" json:"state"`
	PaymentProvider string          `gorm:"type:varchar(40)" json:"payment_provider,omitempty"`
	ExternalRef     *string         `gorm:"type:varchar(255);uniqueIndex" json:"external_ref,omitempty"`
	ShippingAddress string          `gorm:"type:varchar(512)" json:"shipping_address"`
	Phone           string          `gorm:"type:varchar(32)" json:"phone"`
	CreatedAt       time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
	LineItems       []OrderLineItem `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"line_items"`
}

// OrderLineItem snapshots a cart line at checkout time. UnitPrice is the
// basis of the total invariant and is never recomputed.
type OrderLineItem struct {
	ID        uint64          `gorm:"primaryKey;autoIncrement" json:"id"`
	OrderID   uuid.UUID       `gorm:"type:uuid;not null;index" json:"order_id"`
	ProductID uint64          `gorm:"not null" json:"product_id"`
	Quantity  int             `gorm:"not null" json:"quantity"`
	UnitPrice decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"unit_price"`
}
