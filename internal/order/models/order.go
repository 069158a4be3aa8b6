package models

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	OrderCompleted = "COMPLETED"
)

// Order is the query-side projection of a settled checkout: one row per line
// item, denormalized for cheap listing and review validation.
type Order struct {
	ID        uint64          `gorm:"primaryKey;autoIncrement" json:"id"`
	OrderID   string          `gorm:"type:varchar(36);not null;index" json:"order_id"`
	UserID    string          `gorm:"type:varchar(80);not null;index" json:"user_id"`
	ProductID uint64          `gorm:"not null;index" json:"product_id"`
	Quantity  int             `gorm:"not null" json:"quantity"`
	UnitPrice decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"unit_price"`
	LineTotal decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"line_total"`
	Status    string          `gorm:"type:varchar(20);not null;index" json:"status"`
	Address   string          `gorm:"type:varchar(500)" json:"address"`
	Phone     string          `gorm:"type:varchar(30)" json:"phone"`
	CreatedAt time.Time       `gorm:"autoCreateTime" json:"created_at"`
}

func (Order) TableName() string { return "projected_orders" }

// ProcessedEvent records consumed event ids so replays insert nothing twice.
type ProcessedEvent struct {
	EventID     string    `gorm:"type:varchar(36);primaryKey" json:"event_id"`
	ProcessedAt time.Time `gorm:"autoCreateTime" json:"processed_at"`
}

func (ProcessedEvent) TableName() string { return "processed_events" }
