package services

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stripe/stripe-go/v80"
	"github.com/stripe/stripe-go/v80/paymentintent"
	"github.com/stripe/stripe-go/v80/webhook"
	"go.uber.org/zap"

	"github.com/idl00005/microservices-ecommerce-sub000/internal/common/errors"
	"github.com/idl00005/microservices-ecommerce-sub000/internal/outbox"
)

// Provider event types after normalization.
const (
	PaymentSucceeded = "succeeded"
	PaymentFailed    = "failed"
	PaymentCanceled  = "canceled"
	PaymentIgnored   = "ignored"
)

// ProviderEvent is a provider webhook callback reduced to what the
// orchestrator needs. Metadata carries the line items stored at intent
// creation.
type ProviderEvent struct {
	Type        string
	ExternalRef string
	Metadata    map[string]string
}

// PaymentProvider abstracts the external payment API so the checkout
// orchestrator can be exercised without network calls.
type PaymentProvider interface {
	Name() string
	CreateIntent(ctx context.Context, orderID uuid.UUID, total decimal.Decimal, items []outbox.LineItem) (string, error)
	ParseWebhook(payload []byte, signature string) (*ProviderEvent, error)
}

const lineItemsMetadataKey = "line_items"

// LineItemsFromMetadata decodes the line item snapshot stored with the
// payment intent. Settlement trusts this snapshot over a fresh catalog read.
func LineItemsFromMetadata(metadata map[string]string) ([]outbox.LineItem, error) {
	raw, ok := metadata[lineItemsMetadataKey]
	if !ok || raw == "" {
		return nil, errors.Serialization("Payment metadata missing line items", nil)
	}
	var items []outbox.LineItem
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		return nil, errors.Serialization("Failed to decode line items from payment metadata", err)
	}
	return items, nil
}

// StripeProvider implements PaymentProvider against Stripe payment intents.
type StripeProvider struct {
	webhookSecret string
	currency      string
	logger        *zap.Logger
}

func NewStripeProvider(secretKey, webhookSecret, currency string, logger *zap.Logger) *StripeProvider {
	stripe.Key = secretKey
	if currency == "" {
		currency = "eur"
	}
	return &StripeProvider{
		webhookSecret: webhookSecret,
		currency:      currency,
		logger:        logger,
	}
}

func (s *StripeProvider) Name() string { return "stripe" }

func (s *StripeProvider) CreateIntent(ctx context.Context, orderID uuid.UUID, total decimal.Decimal, items []outbox.LineItem) (string, error) {
	itemsJSON, err := json.Marshal(items)
	if err != nil {
		return "", errors.Serialization("Failed to encode line items for payment metadata", err)
	}

	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(total.Mul(decimal.NewFromInt(100)).IntPart()), // minor units
		Currency: stripe.String(s.currency),
	}
	params.Context = ctx
	params.AddMetadata("order_id", orderID.String())
	params.AddMetadata(lineItemsMetadataKey, string(itemsJSON))

	pi, err := paymentintent.New(params)
	if err != nil {
		return "", errors.PaymentProvider("Failed to create payment intent", err)
	}

	s.logger.Info("Payment intent created",
		zap.String("order_id", orderID.String()),
		zap.String("payment_intent_id", pi.ID),
	)
	return pi.ID, nil
}

func (s *StripeProvider) ParseWebhook(payload []byte, signature string) (*ProviderEvent, error) {
	event, err := webhook.ConstructEvent(payload, signature, s.webhookSecret)
	if err != nil {
		return nil, errors.InvalidSignature(err)
	}

	switch event.Type {
	case "payment_intent.succeeded", "payment_intent.payment_failed", "payment_intent.canceled":
		var pi stripe.PaymentIntent
		if err := json.Unmarshal(event.Data.Raw, &pi); err != nil {
			return nil, errors.Serialization("Failed to decode payment intent from webhook", err)
		}

		eventType := PaymentIgnored
		switch event.Type {
		case "payment_intent.succeeded":
			eventType = PaymentSucceeded
		case "payment_intent.payment_failed":
			eventType = PaymentFailed
		case "payment_intent.canceled":
			eventType = PaymentCanceled
		}

		return &ProviderEvent{
			Type:        eventType,
			ExternalRef: pi.ID,
			Metadata:    pi.Metadata,
		}, nil
	default:
		return &ProviderEvent{Type: PaymentIgnored}, nil
	}
}
