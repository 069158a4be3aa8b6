package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type Product struct {
	ID          uint64          `gorm:"primaryKey;autoIncrement" json:"id"`
	Name        string          `gorm:"type:varchar(255);not null;index" json:"name"`
	Description string          `gorm:"type:text" json:"description"`
	Price       decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"price"`
	Stock       int             `gorm:"not null;default:0" json:"stock"`
	Reserved    int             `gorm:"not null;default:0" json:"reserved"`
	Category    string          `gorm:"type:varchar(100);index" json:"category"`
	ImageURL    string          `gorm:"type:varchar(1024)" json:"image_url"`
	Rating      float64         `gorm:"not null;default:0" json:"rating"`
	RatingCount int             `gorm:"not null;default:0" json:"rating_count"`
	CreatedAt   time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

// Available is the stock a new reservation can still claim.
func (p *Product) Available() int {
	return p.Stock - p.Reserved
}

type Review struct {
	ID        uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	ProductID uint64    `gorm:"not null;index" json:"product_id"`
	UserID    string    `gorm:"type:varchar(80);not null" json:"user_id"`
	Rating    int       `gorm:"not null" json:"rating"`
	Comment   string    `gorm:"type:text" json:"comment"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

// ProcessedEvent records consumed event ids so a redelivered stock event
// does not adjust counters twice.
type ProcessedEvent struct {
	EventID     string    `gorm:"type:varchar(36);primaryKey" json:"event_id"`
	ProcessedAt time.Time `gorm:"autoCreateTime" json:"processed_at"`
}

func (ProcessedEvent) TableName() string { return "processed_events" }

// ProductEvent notifies other services that a product changed or was removed.
type ProductEvent struct {
	ProductID uint64   `json:"product_id"`
	Action    string   `json:"action"` // UPDATED or DELETED
	Product   *Product `json:"product,omitempty"`
}

const (
	ProductUpdated = "UPDATED"
	ProductDeleted = "DELETED"
)
