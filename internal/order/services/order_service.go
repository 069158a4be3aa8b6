package services

import (
	"context"

	"go.uber.org/zap"

	"github.com/idl00005/microservices-ecommerce-sub000/internal/common/errors"
	"github.com/idl00005/microservices-ecommerce-sub000/internal/order/models"
	"github.com/idl00005/microservices-ecommerce-sub000/internal/order/repository"
	"github.com/idl00005/microservices-ecommerce-sub000/internal/outbox"
)

type OrderService struct {
	repo   repository.OrderRepository
	logger *zap.Logger
}

func NewOrderService(repo repository.OrderRepository, logger *zap.Logger) *OrderService {
	return &OrderService{repo: repo, logger: logger}
}

func (s *OrderService) ListUserOrders(ctx context.Context, userID, status string, page, limit int) ([]models.Order, int64, error) {
	orders, total, err := s.repo.FindByUser(ctx, userID, status, page, limit)
	if err != nil {
		return nil, 0, errors.Internal("Failed to list orders", err)
	}
	return orders, total, nil
}

func (s *OrderService) ListAllOrders(ctx context.Context, status string, page, limit int) ([]models.Order, int64, error) {
	orders, total, err := s.repo.FindAll(ctx, status, page, limit)
	if err != nil {
		return nil, 0, errors.Internal("Failed to list orders", err)
	}
	return orders, total, nil
}

// CreateReview accepts a review only for products the user has actually
// received. The review itself lives in the catalog; this service emits the
// fact through its outbox.
func (s *OrderService) CreateReview(ctx context.Context, userID string, productID uint64, rating int, comment string) error {
	if rating < 1 || rating > 5 {
		return errors.Validation("Rating must be between 1 and 5")
	}

	purchased, err := s.repo.HasCompletedPurchase(ctx, userID, productID)
	if err != nil {
		return errors.Internal("Failed to verify purchase", err)
	}
	if !purchased {
		return errors.Validation("Product was not purchased in a completed order")
	}

	event, err := outbox.NewEvent(outbox.AggregateOrder, userID, outbox.EventReviewCreated, outbox.ReviewCreated{
		UserID:    userID,
		ProductID: productID,
		Rating:    rating,
		Comment:   comment,
	})
	if err != nil {
		return errors.Serialization("Failed to encode review event", err)
	}
	if err := s.repo.AppendEvent(ctx, event); err != nil {
		return errors.Internal("Failed to queue review event", err)
	}

	s.logger.Info("Review queued",
		zap.String("user_id", userID),
		zap.Uint64("product_id", productID),
		zap.Int("rating", rating),
	)
	return nil
}
