package outbox

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Aggregate types routed by the publisher.
const (
	AggregateCart    = "Cart"
	AggregateCatalog = "Catalog"
	AggregateOrder   = "Order"
)

// Event types. The payload column is opaque at the storage boundary; these
// tags tell consumers which typed payload to decode.
const (
	EventCheckoutCompleted = "Cart.CheckoutCompleted"
	EventStockChange       = "Catalog.StockChange"
	EventReviewCreated     = "Order.ReviewCreated"
)

// Stock event kinds.
const (
	StockRelease = "RELEASE_STOCK"
	StockConfirm = "CONFIRM_PURCHASE"
)

// LineItem is a price snapshot taken at checkout. UnitPrice is never
// recomputed after the order is created.
type LineItem struct {
	ProductID uint64          `json:"product_id"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

// CheckoutCompleted is published on the checkout-completed topic once an
// order settles. CorrelationID doubles as the downstream dedup key.
type CheckoutCompleted struct {
	UserID        string     `json:"user_id"`
	OrderID       string     `json:"order_id"`
	Items         []LineItem `json:"items"`
	Address       string     `json:"address"`
	Phone         string     `json:"phone"`
	CorrelationID string     `json:"correlation_id"`
}

// StockEvent is published on the stock-events topic. The catalog service
// adjusts reserved/available stock according to Kind.
type StockEvent struct {
	Kind              string         `json:"kind"`
	ProductQuantities map[uint64]int `json:"product_quantities"`
	OrderID           string         `json:"order_id"`
	Timestamp         time.Time      `json:"timestamp"`
	CorrelationID     string         `json:"correlation_id"`
}

// ReviewCreated is published on the review-events topic when a user reviews
// a completed order.
type ReviewCreated struct {
	UserID    string `json:"user_id"`
	ProductID uint64 `json:"product_id"`
	Rating    int    `json:"rating"`
	Comment   string `json:"comment"`
}

// NewEvent marshals a typed payload into an outbox row.
func NewEvent(aggregateType, aggregateID, eventType string, payload interface{}) (*Event, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal outbox payload: %w", err)
	}
	return &Event{
		AggregateType: aggregateType,
		AggregateID:   aggregateID,
		EventType:     eventType,
		Payload:       data,
	}, nil
}

// Decode unmarshals the opaque payload into the typed event for the row's
// EventType. The in-memory model is a tagged union keyed by that type.
func Decode(e *Event) (interface{}, error) {
	switch e.EventType {
	case EventCheckoutCompleted:
		var out CheckoutCompleted
		if err := json.Unmarshal(e.Payload, &out); err != nil {
			return nil, fmt.Errorf("decode %s: %w", e.EventType, err)
		}
		return out, nil
	case EventStockChange:
		var out StockEvent
		if err := json.Unmarshal(e.Payload, &out); err != nil {
			return nil, fmt.Errorf("decode %s: %w", e.EventType, err)
		}
		return out, nil
	case EventReviewCreated:
		var out ReviewCreated
		if err := json.Unmarshal(e.Payload, &out); err != nil {
			return nil, fmt.Errorf("decode %s: %w", e.EventType, err)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("unknown event type %q", e.EventType)
	}
}
