package services

import (
	"context"
	stderrors "errors"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/idl00005/microservices-ecommerce-sub000/internal/catalog/cache"
	"github.com/idl00005/microservices-ecommerce-sub000/internal/catalog/kafka"
	"github.com/idl00005/microservices-ecommerce-sub000/internal/catalog/models"
	"github.com/idl00005/microservices-ecommerce-sub000/internal/catalog/repository"
	"github.com/idl00005/microservices-ecommerce-sub000/internal/common/errors"
	"github.com/idl00005/microservices-ecommerce-sub000/internal/outbox"
)

// CatalogService owns products, reviews and the stock reservation protocol.
type CatalogService struct {
	repo   repository.ProductRepository
	cache  cache.ProductCache
	events kafka.ProductEventPublisher
	logger *zap.Logger
}

func NewCatalogService(repo repository.ProductRepository, productCache cache.ProductCache, events kafka.ProductEventPublisher, logger *zap.Logger) *CatalogService {
	return &CatalogService{
		repo:   repo,
		cache:  productCache,
		events: events,
		logger: logger,
	}
}

// GetProduct reads through the cache.
func (s *CatalogService) GetProduct(ctx context.Context, id uint64) (*models.Product, error) {
	if s.cache != nil {
		if cached, err := s.cache.Get(ctx, id); err == nil && cached != nil {
			return cached, nil
		}
	}

	product, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if stderrors.Is(err, repository.ErrNotFound) {
			return nil, errors.NotFound("Product not found")
		}
		return nil, errors.Internal("Failed to fetch product", err)
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, product); err != nil {
			s.logger.Warn("Failed to cache product", zap.Uint64("product_id", id), zap.Error(err))
		}
	}
	return product, nil
}

func (s *CatalogService) ListProducts(ctx context.Context, page, limit int, name, category string) ([]models.Product, int64, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}
	products, total, err := s.repo.Search(ctx, page, limit, name, category)
	if err != nil {
		return nil, 0, errors.Internal("Failed to list products", err)
	}
	return products, total, nil
}

func (s *CatalogService) CreateProduct(ctx context.Context, product *models.Product) error {
	if product.Name == "" {
		return errors.Validation("Product name is required")
	}
	if product.Price.IsNegative() {
		return errors.Validation("Product price must not be negative")
	}
	if product.Stock < 0 {
		return errors.Validation("Product stock must not be negative")
	}
	if err := s.repo.Create(ctx, product); err != nil {
		return errors.Internal("Failed to create product", err)
	}
	return nil
}

func (s *CatalogService) UpdateProduct(ctx context.Context, product *models.Product) error {
	existing, err := s.repo.FindByID(ctx, product.ID)
	if err != nil {
		if stderrors.Is(err, repository.ErrNotFound) {
			return errors.NotFound("Product not found")
		}
		return errors.Internal("Failed to fetch product", err)
	}
	// reserved stock is owned by the reservation protocol, never by CRUD
	product.Reserved = existing.Reserved
	product.Rating = existing.Rating
	product.RatingCount = existing.RatingCount

	if err := s.repo.Update(ctx, product); err != nil {
		return errors.Internal("Failed to update product", err)
	}

	s.invalidate(ctx, product.ID)
	s.emit(ctx, models.ProductEvent{ProductID: product.ID, Action: models.ProductUpdated, Product: product})
	return nil
}

func (s *CatalogService) DeleteProduct(ctx context.Context, id uint64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if stderrors.Is(err, repository.ErrNotFound) {
			return errors.NotFound("Product not found")
		}
		return errors.Internal("Failed to delete product", err)
	}

	s.invalidate(ctx, id)
	s.emit(ctx, models.ProductEvent{ProductID: id, Action: models.ProductDeleted})
	return nil
}

// Reserve claims quantity units of a product for an in-flight checkout.
// Reserved stock is released or confirmed later by stock events.
func (s *CatalogService) Reserve(ctx context.Context, productID uint64, quantity int) error {
	if quantity <= 0 {
		return errors.Validation("Quantity must be greater than zero")
	}

	if _, err := s.repo.FindByID(ctx, productID); err != nil {
		if stderrors.Is(err, repository.ErrNotFound) {
			return errors.NotFound("Product not found")
		}
		return errors.Internal("Failed to fetch product", err)
	}

	if err := s.repo.Reserve(ctx, productID, quantity); err != nil {
		if stderrors.Is(err, repository.ErrNotFound) {
			return errors.Conflict("Insufficient stock")
		}
		return errors.Internal("Failed to reserve stock", err)
	}

	s.invalidate(ctx, productID)
	return nil
}

// ApplyStockEvent adjusts counters for an asynchronous stock event exactly
// once per event id: a replayed id is dropped before any counter moves. When
// the publisher sent no id header a fresh one is minted, so that delivery is
// applied without dedup.
func (s *CatalogService) ApplyStockEvent(ctx context.Context, eventID string, event outbox.StockEvent) error {
	if eventID == "" {
		eventID = uuid.NewString()
	}
	if err := s.repo.MarkEventProcessed(ctx, eventID); err != nil {
		if stderrors.Is(err, repository.ErrDuplicateEvent) {
			s.logger.Info("Stock event already applied, skipping",
				zap.String("event_id", eventID),
				zap.String("kind", event.Kind),
			)
			return nil
		}
		return errors.Internal("Failed to record stock event", err)
	}

	switch event.Kind {
	case outbox.StockRelease:
		for productID, quantity := range event.ProductQuantities {
			if err := s.repo.AdjustStock(ctx, productID, 0, -quantity); err != nil {
				s.logger.Warn("Failed to release reserved stock",
					zap.Uint64("product_id", productID),
					zap.Int("quantity", quantity),
					zap.Error(err),
				)
				continue
			}
			s.invalidate(ctx, productID)
		}
	case outbox.StockConfirm:
		for productID, quantity := range event.ProductQuantities {
			if err := s.repo.AdjustStock(ctx, productID, -quantity, -quantity); err != nil {
				s.logger.Warn("Failed to confirm purchased stock",
					zap.Uint64("product_id", productID),
					zap.Int("quantity", quantity),
					zap.Error(err),
				)
				continue
			}
			s.invalidate(ctx, productID)
		}
	default:
		return errors.Validation("Unknown stock event kind: " + event.Kind)
	}
	return nil
}

// ApplyReview persists a review received from the order service and updates
// the product's running average rating.
func (s *CatalogService) ApplyReview(ctx context.Context, event outbox.ReviewCreated) error {
	product, err := s.repo.FindByID(ctx, event.ProductID)
	if err != nil {
		if stderrors.Is(err, repository.ErrNotFound) {
			return errors.NotFound("Product not found")
		}
		return errors.Internal("Failed to fetch product", err)
	}

	newCount := product.RatingCount + 1
	newRating := (product.Rating*float64(product.RatingCount) + float64(event.Rating)) / float64(newCount)

	review := &models.Review{
		ProductID: event.ProductID,
		UserID:    event.UserID,
		Rating:    event.Rating,
		Comment:   event.Comment,
	}
	if err := s.repo.CreateReview(ctx, review, newRating, newCount); err != nil {
		return errors.Internal("Failed to persist review", err)
	}

	s.invalidate(ctx, event.ProductID)
	return nil
}

func (s *CatalogService) GetReviews(ctx context.Context, productID uint64, page, limit int) ([]models.Review, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}
	reviews, err := s.repo.FindReviews(ctx, productID, page, limit)
	if err != nil {
		return nil, errors.Internal("Failed to list reviews", err)
	}
	return reviews, nil
}

func (s *CatalogService) invalidate(ctx context.Context, productID uint64) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, productID); err != nil {
		s.logger.Warn("Cache invalidation failed", zap.Uint64("product_id", productID), zap.Error(err))
	}
}

func (s *CatalogService) emit(ctx context.Context, event models.ProductEvent) {
	if s.events == nil {
		return
	}
	if err := s.events.SendProductEvent(ctx, event); err != nil {
		s.logger.Error("Failed to emit product event",
			zap.Uint64("product_id", event.ProductID),
			zap.String("action", event.Action),
			zap.Error(err),
		)
	}
}
