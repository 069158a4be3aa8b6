package outbox

import (
	"context"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/idl00005/microservices-ecommerce-sub000/internal/common/awsutil"
)

// MessageWriter is the subset of kafka.Writer the publisher needs.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
}

// NewTopicWriter builds a kafka writer for one topic in the shape used
// across the services.
func NewTopicWriter(brokers []string, topic string) *kafka.Writer {
	return &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.LeastBytes{},
		AllowAutoTopicCreation: true,
	}
}

// Publisher drains the outbox on a fixed interval, dispatching each PENDING
// event to the writer registered for its aggregate type. Delivery is
// at-least-once: a crash between WriteMessages and MarkPublished replays the
// event, so consumers must be idempotent.
type Publisher struct {
	store    Store
	writers  map[string]MessageWriter
	interval time.Duration
	logger   *zap.Logger

	// optional best-effort SNS mirror for checkout-completed events
	sns         awsutil.SNSPublisher
	snsTopicArn string
}

func NewPublisher(store Store, writers map[string]MessageWriter, interval time.Duration, logger *zap.Logger) *Publisher {
	if interval <= 0 {
		interval = 5 * time.Second
	}
	return &Publisher{
		store:    store,
		writers:  writers,
		interval: interval,
		logger:   logger,
	}
}

// WithSNSMirror mirrors successfully published checkout-completed events to
// an SNS topic. Mirror failures are logged, never retried.
func (p *Publisher) WithSNSMirror(sns awsutil.SNSPublisher, topicArn string) *Publisher {
	p.sns = sns
	p.snsTopicArn = topicArn
	return p
}

// Run polls until ctx is cancelled. Ticks never overlap; a failed tick is
// logged and the next one starts fresh.
func (p *Publisher) Run(ctx context.Context) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			p.Tick(ctx)
		case <-ctx.Done():
			return
		}
	}
}

// Tick processes one polling pass.
func (p *Publisher) Tick(ctx context.Context) {
	events, err := p.store.FindPending(ctx)
	if err != nil {
		p.logger.Error("Failed to fetch pending outbox events", zap.Error(err))
		return
	}

	for i := range events {
		evt := &events[i]

		writer, ok := p.writers[evt.AggregateType]
		if !ok {
			p.logger.Warn("No writer for aggregate type, leaving event pending",
				zap.String("aggregate_type", evt.AggregateType),
				zap.String("event_id", evt.ID.String()),
			)
			continue
		}

		// Validate the payload decodes before shipping it; a corrupt row
		// stays PENDING rather than poisoning the topic.
		if _, err := Decode(evt); err != nil {
			p.logger.Error("Undecodable outbox payload, leaving event pending",
				zap.String("event_id", evt.ID.String()),
				zap.Error(err),
			)
			continue
		}

		msg := kafka.Message{
			Key:   []byte(evt.AggregateID),
			Value: evt.Payload,
			Headers: []kafka.Header{
				{Key: "event_type", Value: []byte(evt.EventType)},
				{Key: "event_id", Value: []byte(evt.ID.String())},
			},
		}

		if err := writer.WriteMessages(ctx, msg); err != nil {
			p.logger.Error("Failed to publish outbox event, will retry next tick",
				zap.String("event_id", evt.ID.String()),
				zap.String("event_type", evt.EventType),
				zap.Error(err),
			)
			continue
		}

		if err := p.store.MarkPublished(ctx, evt.ID); err != nil {
			// The event was delivered but stays PENDING; the next tick
			// re-sends it and the idempotent consumer absorbs the duplicate.
			p.logger.Error("Failed to mark outbox event published",
				zap.String("event_id", evt.ID.String()),
				zap.Error(err),
			)
			continue
		}

		p.logger.Info("Outbox event published",
			zap.String("event_id", evt.ID.String()),
			zap.String("event_type", evt.EventType),
			zap.String("aggregate_id", evt.AggregateID),
		)

		if p.sns != nil && p.snsTopicArn != "" && evt.EventType == EventCheckoutCompleted {
			if err := p.sns.Publish(ctx, p.snsTopicArn, evt.Payload); err != nil {
				p.logger.Warn("SNS mirror publish failed",
					zap.String("event_id", evt.ID.String()),
					zap.Error(err),
				)
			}
		}
	}
}
