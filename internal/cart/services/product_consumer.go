package services

import (
	"context"
	"encoding/json"

	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// StartProductChangeConsumer keeps cart lines in sync with the catalog's
// product-events topic. Malformed messages are logged and skipped.
func StartProductChangeConsumer(ctx context.Context, brokers []string, topic, groupID string, svc *CartService, logger *zap.Logger) {
	r := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:  brokers,
		Topic:    topic,
		GroupID:  groupID,
		MinBytes: 1e3,
		MaxBytes: 10e6,
	})
	defer r.Close()

	logger.Info("Product change consumer listening",
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
			logger.Error("Product change read error", zap.Error(err))
			continue
		}

		var change ProductChange
		if err := json.Unmarshal(m.Value, &change); err != nil {
			logger.Error("Invalid product change JSON, discarding",
				zap.ByteString("payload", m.Value),
				zap.Error(err),
			)
			continue
		}

		if err := svc.ApplyProductChange(ctx, change); err != nil {
			logger.Error("Failed to apply product change",
				zap.Uint64("product_id", change.ProductID),
				zap.String("action", change.Action),
				zap.Error(err),
			)
		}
	}
}
