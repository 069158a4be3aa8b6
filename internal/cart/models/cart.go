package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// CartLine is one product in a user's cart. Unique per (user, product);
// concurrent adds merge into a single row with summed quantity.
type CartLine struct {
	ID          uint64          `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID      string          `gorm:"type:varchar(80);not null;uniqueIndex:idx_cart_user_product" json:"user_id"`
	ProductID   uint64          `gorm:"not null;uniqueIndex:idx_cart_user_product" json:"product_id"`
	ProductName string          `gorm:"type:varchar(255)" json:"product_name"`
	Price       decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"price"`
	Quantity    int             `gorm:"not null" json:"quantity"`
	CreatedAt   time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

func (CartLine) TableName() string { return "cart_lines" }
