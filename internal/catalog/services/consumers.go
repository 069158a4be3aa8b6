package services

import (
	"context"
	"encoding/json"

	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/idl00005/microservices-ecommerce-sub000/internal/outbox"
)

// StartStockEventConsumer consumes RELEASE_STOCK / CONFIRM_PURCHASE events
// from the stock-events topic. Poison messages are logged and skipped so the
// loop never dies.
func StartStockEventConsumer(ctx context.Context, brokers []string, topic, groupID string, svc *CatalogService, logger *zap.Logger) {
	r := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:  brokers,
		Topic:    topic,
		GroupID:  groupID,
		MinBytes: 1e3,
		MaxBytes: 10e6,
	})
	defer r.Close()

	logger.Info("Stock event consumer listening",
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
			logger.Error("Stock event read error", zap.Error(err))
			continue
		}

		var event outbox.StockEvent
		if err := json.Unmarshal(m.Value, &event); err != nil {
			logger.Error("Invalid stock event JSON, discarding",
				zap.ByteString("payload", m.Value),
				zap.Error(err),
			)
			continue
		}

		if err := svc.ApplyStockEvent(ctx, eventIDHeader(m), event); err != nil {
			logger.Error("Failed to apply stock event",
				zap.String("kind", event.Kind),
				zap.String("order_id", event.OrderID),
				zap.Error(err),
			)
			continue
		}

		logger.Info("Stock event applied",
			zap.String("kind", event.Kind),
			zap.String("order_id", event.OrderID),
			zap.Int("products", len(event.ProductQuantities)),
		)
	}
}

// StartReviewConsumer consumes ReviewCreated events emitted by the order
// service's outbox.
func StartReviewConsumer(ctx context.Context, brokers []string, topic, groupID string, svc *CatalogService, logger *zap.Logger) {
	r := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:  brokers,
		Topic:    topic,
		GroupID:  groupID,
		MinBytes: 1e3,
		MaxBytes: 10e6,
	})
	defer r.Close()

	logger.Info("Review consumer listening", zap.String("topic", topic), zap.String("group", groupID))

	for {
		m, err := r.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			logger.Error("Review event read error", zap.Error(err))
			continue
		}

		var event outbox.ReviewCreated
		if err := json.Unmarshal(m.Value, &event); err != nil {
			logger.Error("Invalid review event JSON, discarding", zap.Error(err))
			continue
		}

		if err := svc.ApplyReview(ctx, event); err != nil {
			logger.Error("Failed to apply review",
				zap.Uint64("product_id", event.ProductID),
				zap.Error(err),
			)
		}
	}
}

func eventIDHeader(m kafkago.Message) string {
	for _, h := range m.Headers {
		if h.Key == "event_id" {
			return string(h.Value)
		}
	}
	return ""
}
