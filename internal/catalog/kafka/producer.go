package kafka

import (
	"context"
	"encoding/json"
	"strconv"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/idl00005/microservices-ecommerce-sub000/internal/catalog/models"
)

// ProductEventPublisher abstracts the product-events producer for tests.
type ProductEventPublisher interface {
	SendProductEvent(ctx context.Context, event models.ProductEvent) error
}

type ProductEventProducer struct {
	writer *kafka.Writer
	logger *zap.Logger
}

func NewProductEventProducer(brokers []string, topic string, logger *zap.Logger) *ProductEventProducer {
	w := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.LeastBytes{},
		AllowAutoTopicCreation: true,
	}
	logger.Info("Product event producer initialized", zap.String("topic", topic), zap.Strings("brokers", brokers))
	return &ProductEventProducer{writer: w, logger: logger}
}

func (p *ProductEventProducer) SendProductEvent(ctx context.Context, event models.ProductEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}

	msg := kafka.Message{
		Key:   []byte(strconv.FormatUint(event.ProductID, 10)),
		Value: data,
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		p.logger.Error("Failed to send product event",
			zap.Uint64("product_id", event.ProductID),
			zap.String("action", event.Action),
			zap.Error(err),
		)
		return err
	}
	return nil
}

func (p *ProductEventProducer) Close() {
	_ = p.writer.Close()
}
