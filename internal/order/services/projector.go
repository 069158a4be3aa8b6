package services

import (
	"context"
	"encoding/json"
	stderrors "errors"

	"github.com/google/uuid"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/idl00005/microservices-ecommerce-sub000/internal/order/models"
	"github.com/idl00005/microservices-ecommerce-sub000/internal/order/repository"
	"github.com/idl00005/microservices-ecommerce-sub000/internal/outbox"
)

// Projector materializes checkout-completed events into per-item order rows.
type Projector struct {
	repo   repository.OrderRepository
	logger *zap.Logger
}

func NewProjector(repo repository.OrderRepository, logger *zap.Logger) *Projector {
	return &Projector{repo: repo, logger: logger}
}

// Apply projects one event. The event id deduplicates redeliveries; when the
// publisher sent no id header, the order's correlation id stands in for it.
func (p *Projector) Apply(ctx context.Context, eventID string, event outbox.CheckoutCompleted) error {
	if eventID == "" {
		eventID = event.CorrelationID
	}
	if eventID == "" {
		eventID = uuid.NewString()
	}

	orders := make([]models.Order, 0, len(event.Items))
	for _, item := range event.Items {
		orders = append(orders, models.Order{
			OrderID:   event.OrderID,
			UserID:    event.UserID,
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
			LineTotal: item.UnitPrice.Mul(decimal.NewFromInt(int64(item.Quantity))),
			Status:    models.OrderCompleted,
			Address:   event.Address,
			Phone:     event.Phone,
		})
	}
	if len(orders) == 0 {
		p.logger.Warn("Checkout event without items, skipping",
			zap.String("order_id", event.OrderID),
		)
		return nil
	}

	err := p.repo.ProjectOrder(ctx, eventID, orders)
	if stderrors.Is(err, repository.ErrDuplicateEvent) {
		p.logger.Info("Replayed checkout event, skipping",
			zap.String("event_id", eventID),
			zap.String("order_id", event.OrderID),
		)
		return nil
	}
	if err != nil {
		return err
	}

	p.logger.Info("Order projected",
		zap.String("order_id", event.OrderID),
		zap.String("user_id", event.UserID),
		zap.Int("line_items", len(orders)),
	)
	return nil
}

// StartCheckoutConsumer runs the projector against the checkout-completed
// topic until ctx is cancelled. Poison messages are logged and skipped.
func StartCheckoutConsumer(ctx context.Context, brokers []string, topic, groupID string, projector *Projector, logger *zap.Logger) {
	r := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:  brokers,
		Topic:    topic,
		GroupID:  groupID,
		MinBytes: 1e3,
		MaxBytes: 10e6,
	})
	defer r.Close()

	logger.Info("Checkout consumer listening",
		zap.String("topic", topic),
		zap.String("group", groupID),
		zap.Strings("brokers", brokers),
	)

	for {
		m, err := r.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			logger.Error("Checkout event read error", zap.Error(err))
			continue
		}

		var event outbox.CheckoutCompleted
		if err := json.Unmarshal(m.Value, &event); err != nil {
			logger.Error("Invalid checkout event JSON, discarding",
				zap.ByteString("payload", m.Value),
				zap.Error(err),
			)
			continue
		}

		var eventID string
		for _, h := range m.Headers {
			if h.Key == "event_id" {
				eventID = string(h.Value)
				break
			}
		}

		if err := projector.Apply(ctx, eventID, event); err != nil {
			logger.Error("Failed to project checkout event",
				zap.String("order_id", event.OrderID),
				zap.Error(err),
			)
		}
	}
}
