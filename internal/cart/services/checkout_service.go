package services

import (
	"context"
	stderrors "errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/idl00005/microservices-ecommerce-sub000/internal/cart/clients"
	"github.com/idl00005/microservices-ecommerce-sub000/internal/cart/models"
	"github.com/idl00005/microservices-ecommerce-sub000/internal/cart/repository"
	"github.com/idl00005/microservices-ecommerce-sub000/internal/common/errors"
	"github.com/idl00005/microservices-ecommerce-sub000/internal/outbox"
)

// CheckoutService owns the order lifecycle: cart validation, stock
// reservation, payment intent creation and webhook-driven settlement. Cross-
// service effects leave the service only through the outbox.
type CheckoutService struct {
	carts    repository.CartRepository
	orders   repository.OrderRepository
	catalog  clients.ProductFetcher
	stock    clients.StockReserver
	provider PaymentProvider
	logger   *zap.Logger
}

func NewCheckoutService(
	carts repository.CartRepository,
	orders repository.OrderRepository,
	catalog clients.ProductFetcher,
	stock clients.StockReserver,
	provider PaymentProvider,
	logger *zap.Logger,
) *CheckoutService {
	return &CheckoutService{
		carts:    carts,
		orders:   orders,
		catalog:  catalog,
		stock:    stock,
		provider: provider,
		logger:   logger,
	}
}

// InitiateCheckout turns the user's cart into an order. Unit prices are
// fetched from the catalog at checkout time, not taken from the cart rows:
// prices can drift between add-to-cart and checkout.
func (s *CheckoutService) InitiateCheckout(ctx context.Context, userID, address, phone string) (*models.Order, error) {
	lines, err := s.carts.FindByUser(ctx, userID)
	if err != nil {
		return nil, errors.Internal("Failed to load cart", err)
	}
	if len(lines) == 0 {
		return nil, errors.Validation("Cart is empty")
	}

	items := make([]outbox.LineItem, 0, len(lines))
	reservations := make(map[uint64]int, len(lines))
	total := decimal.Zero
	for _, line := range lines {
		product, err := s.catalog.GetProduct(ctx, line.ProductID)
		if err != nil {
			return nil, err
		}
		items = append(items, outbox.LineItem{
			ProductID: line.ProductID,
			Quantity:  line.Quantity,
			UnitPrice: product.Price,
		})
		reservations[line.ProductID] = line.Quantity
		total = total.Add(product.Price.Mul(decimal.NewFromInt(int64(line.Quantity))))
	}

	// A failure partway through leaves earlier reservations in place; only a
	// later cancellation releases them.
	if err := s.stock.Reserve(ctx, reservations); err != nil {
		s.logger.Warn("Stock reservation failed, aborting checkout",
			zap.String("user_id", userID),
			zap.Error(err),
		)
		return nil, err
	}

	order := &models.Order{
		ID:              uuid.New(),
		UserID:          userID,
		TotalAmount:     total,
		State:           models.OrderPending,
		ShippingAddress: address,
		Phone:           phone,
	}
	for _, item := range items {
		order.LineItems = append(order.LineItems, models.OrderLineItem{
			OrderID:   order.ID,
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
		})
	}

	if total.IsZero() {
		// Fast path: nothing to charge, settle immediately from the live cart.
		order.State = models.OrderPaid
		if err := s.orders.Create(ctx, order); err != nil {
			return nil, errors.Internal("Failed to persist order", err)
		}
		if err := s.settle(ctx, order, nil); err != nil {
			return nil, err
		}
		return order, nil
	}

	// The intent is created before the order row so a provider failure
	// leaves no record behind.
	externalRef, err := s.provider.CreateIntent(ctx, order.ID, total, items)
	if err != nil {
		return nil, err
	}

	order.State = models.OrderCreated
	order.PaymentProvider = s.provider.Name()
	order.ExternalRef = &externalRef
	if err := s.orders.Create(ctx, order); err != nil {
		return nil, errors.Internal("Failed to persist order", err)
	}

	s.logger.Info("Checkout initiated",
		zap.String("order_id", order.ID.String()),
		zap.String("user_id", userID),
		zap.String("total", total.String()),
		zap.String("external_ref", externalRef),
	)
	return order, nil
}

// HandleWebhook reacts to a provider callback. Unknown references and
// repeated deliveries succeed without effect; the provider retries on
// anything else.
func (s *CheckoutService) HandleWebhook(ctx context.Context, payload []byte, signature string) error {
	event, err := s.provider.ParseWebhook(payload, signature)
	if err != nil {
		return err
	}
	if event.Type == PaymentIgnored {
		return nil
	}

	order, err := s.orders.FindByExternalRef(ctx, event.ExternalRef)
	if err != nil {
		if stderrors.Is(err, repository.ErrNotFound) {
			s.logger.Info("Webhook for unknown payment reference, ignoring",
				zap.String("external_ref", event.ExternalRef),
			)
			return nil
		}
		return errors.Internal("Failed to look up order", err)
	}

	switch event.Type {
	case PaymentSucceeded:
		if order.State == models.OrderCompleted {
			s.logger.Info("Duplicate payment webhook for settled order, ignoring",
				zap.String("order_id", order.ID.String()),
			)
			return nil
		}
		if order.State == models.OrderPaid {
			// The state flip landed on an earlier delivery but settlement did
			// not. Resume it so the provider's retry can finish the order.
			return s.settle(ctx, order, event.Metadata)
		}
		if !models.CanTransition(order.State, models.OrderPaid) {
			s.logger.Warn("Ignoring payment success in unexpected state",
				zap.String("order_id", order.ID.String()),
				zap.String("state", order.State),
			)
			return nil
		}
		if err := s.orders.UpdateState(ctx, order.ID, models.OrderPaid); err != nil {
			return errors.Internal("Failed to update order state", err)
		}
		order.State = models.OrderPaid
		return s.settle(ctx, order, event.Metadata)

	case PaymentFailed:
		// Reserved stock is not released here: only an explicit cancellation
		// compensates.
		if !models.CanTransition(order.State, models.OrderFailed) {
			return nil
		}
		if err := s.orders.UpdateState(ctx, order.ID, models.OrderFailed); err != nil {
			return errors.Internal("Failed to update order state", err)
		}
		s.logger.Info("Order marked failed", zap.String("order_id", order.ID.String()))
		return nil

	case PaymentCanceled:
		if !models.CanTransition(order.State, models.OrderCancelled) {
			return nil
		}
		if err := s.orders.UpdateState(ctx, order.ID, models.OrderCancelled); err != nil {
			return errors.Internal("Failed to update order state", err)
		}
		release, err := s.stockEvent(order, outbox.StockRelease, quantitiesFromOrder(order))
		if err != nil {
			return err
		}
		if err := s.orders.AppendEvents(ctx, []*outbox.Event{release}); err != nil {
			return errors.Internal("Failed to append stock release event", err)
		}
		s.logger.Info("Order cancelled, stock release queued", zap.String("order_id", order.ID.String()))
		return nil
	}

	return nil
}

// settle finalizes a paid order: it outboxes the checkout-completed and
// stock-confirm events, clears the cart and flips the order to COMPLETED,
// all in one local transaction. Re-settling a COMPLETED order is a no-op.
func (s *CheckoutService) settle(ctx context.Context, order *models.Order, metadata map[string]string) error {
	if order.State == models.OrderCompleted {
		return nil
	}

	var items []outbox.LineItem
	if metadata != nil {
		// Paid path: the provider metadata holds the authoritative snapshot
		// taken at intent creation, immune to price changes since checkout.
		decoded, err := LineItemsFromMetadata(metadata)
		if err != nil {
			s.logger.Warn("Falling back to order line items for settlement",
				zap.String("order_id", order.ID.String()),
				zap.Error(err),
			)
			items = itemsFromOrder(order)
		} else {
			items = decoded
		}
	} else {
		// Zero-total path: the cart is still live, read it directly.
		lines, err := s.carts.FindByUser(ctx, order.UserID)
		if err != nil {
			return errors.Internal("Failed to load cart for settlement", err)
		}
		for _, line := range lines {
			items = append(items, outbox.LineItem{
				ProductID: line.ProductID,
				Quantity:  line.Quantity,
				UnitPrice: line.Price,
			})
		}
	}

	quantities := make(map[uint64]int, len(items))
	for _, item := range items {
		quantities[item.ProductID] += item.Quantity
	}

	completed, err := outbox.NewEvent(outbox.AggregateCart, order.UserID, outbox.EventCheckoutCompleted, outbox.CheckoutCompleted{
		UserID:        order.UserID,
		OrderID:       order.ID.String(),
		Items:         items,
		Address:       order.ShippingAddress,
		Phone:         order.Phone,
		CorrelationID: order.ID.String(),
	})
	if err != nil {
		return errors.Serialization("Failed to encode checkout event", err)
	}

	confirm, err := s.stockEvent(order, outbox.StockConfirm, quantities)
	if err != nil {
		return err
	}

	if err := s.orders.Settle(ctx, order, []*outbox.Event{completed, confirm}); err != nil {
		return errors.Internal("Failed to settle order", err)
	}
	order.State = models.OrderCompleted

	s.logger.Info("Order settled",
		zap.String("order_id", order.ID.String()),
		zap.String("user_id", order.UserID),
		zap.Int("line_items", len(items)),
	)
	return nil
}

func (s *CheckoutService) stockEvent(order *models.Order, kind string, quantities map[uint64]int) (*outbox.Event, error) {
	event, err := outbox.NewEvent(outbox.AggregateCatalog, order.ID.String(), outbox.EventStockChange, outbox.StockEvent{
		Kind:              kind,
		ProductQuantities: quantities,
		OrderID:           order.ID.String(),
		Timestamp:         time.Now().UTC(),
		CorrelationID:     order.ID.String(),
	})
	if err != nil {
		return nil, errors.Serialization("Failed to encode stock event", err)
	}
	return event, nil
}

func itemsFromOrder(order *models.Order) []outbox.LineItem {
	items := make([]outbox.LineItem, 0, len(order.LineItems))
	for _, li := range order.LineItems {
		items = append(items, outbox.LineItem{
			ProductID: li.ProductID,
			Quantity:  li.Quantity,
			UnitPrice: li.UnitPrice,
		})
	}
	return items
}

func quantitiesFromOrder(order *models.Order) map[uint64]int {
	quantities := make(map[uint64]int, len(order.LineItems))
	for _, li := range order.LineItems {
		quantities[li.ProductID] += li.Quantity
	}
	return quantities
}
