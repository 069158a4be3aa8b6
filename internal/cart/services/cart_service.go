package services

import (
	"context"
	stderrors "errors"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/idl00005/microservices-ecommerce-sub000/internal/cart/clients"
	"github.com/idl00005/microservices-ecommerce-sub000/internal/cart/models"
	"github.com/idl00005/microservices-ecommerce-sub000/internal/cart/repository"
	"github.com/idl00005/microservices-ecommerce-sub000/internal/common/errors"
)

// ProductChange mirrors the catalog's product event for cart-side consumption.
type ProductChange struct {
	ProductID uint64         `json:"product_id"`
	Action    string         `json:"action"`
	Product   *ProductDetail `json:"product,omitempty"`
}

type ProductDetail struct {
	ID    uint64          `json:"id"`
	Name  string          `json:"name"`
	Price decimal.Decimal `json:"price"`
	Stock int             `json:"stock"`
}

const (
	ProductChangeUpdated = "UPDATED"
	ProductChangeDeleted = "DELETED"
)

type CartService struct {
	carts   repository.CartRepository
	catalog clients.ProductFetcher
	logger  *zap.Logger
}

func NewCartService(carts repository.CartRepository, catalog clients.ProductFetcher, logger *zap.Logger) *CartService {
	return &CartService{carts: carts, catalog: catalog, logger: logger}
}

func (s *CartService) GetCart(ctx context.Context, userID string) ([]models.CartLine, decimal.Decimal, error) {
	lines, err := s.carts.FindByUser(ctx, userID)
	if err != nil {
		return nil, decimal.Zero, errors.Internal("Failed to load cart", err)
	}
	total := decimal.Zero
	for _, line := range lines {
		total = total.Add(line.Price.Mul(decimal.NewFromInt(int64(line.Quantity))))
	}
	return lines, total, nil
}

// AddItem validates the product against the catalog before writing the line.
// The stored name and price are a snapshot; checkout re-reads current prices.
func (s *CartService) AddItem(ctx context.Context, userID string, productID uint64, quantity int) (*models.CartLine, error) {
	if quantity <= 0 {
		return nil, errors.Validation("Quantity must be positive")
	}

	product, err := s.catalog.GetProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	if product.Stock < quantity {
		return nil, errors.Conflict("Not enough stock available")
	}

	line := &models.CartLine{
		UserID:      userID,
		ProductID:   productID,
		ProductName: product.Name,
		Price:       product.Price,
		Quantity:    quantity,
	}
	if err := s.carts.AddOrIncrement(ctx, line); err != nil {
		return nil, errors.Internal("Failed to add cart line", err)
	}
	return line, nil
}

func (s *CartService) UpdateQuantity(ctx context.Context, userID string, productID uint64, quantity int) (*models.CartLine, error) {
	if quantity <= 0 {
		return nil, errors.Validation("Quantity must be positive")
	}

	line, err := s.carts.FindByUserAndProduct(ctx, userID, productID)
	if err != nil {
		if stderrors.Is(err, repository.ErrNotFound) {
			return nil, errors.NotFound("Cart line not found")
		}
		return nil, errors.Internal("Failed to load cart line", err)
	}

	product, err := s.catalog.GetProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	if product.Stock < quantity {
		return nil, errors.Conflict("Not enough stock available")
	}

	line.Quantity = quantity
	line.Price = product.Price
	line.ProductName = product.Name
	if err := s.carts.Update(ctx, line); err != nil {
		return nil, errors.Internal("Failed to update cart line", err)
	}
	return line, nil
}

func (s *CartService) RemoveItem(ctx context.Context, userID string, productID uint64) error {
	err := s.carts.Delete(ctx, userID, productID)
	if stderrors.Is(err, repository.ErrNotFound) {
		return errors.NotFound("Cart line not found")
	}
	if err != nil {
		return errors.Internal("Failed to remove cart line", err)
	}
	return nil
}

func (s *CartService) ClearCart(ctx context.Context, userID string) error {
	if err := s.carts.DeleteByUser(ctx, userID); err != nil {
		return errors.Internal("Failed to clear cart", err)
	}
	return nil
}

// ApplyProductChange keeps cart lines in sync with catalog changes: updates
// refresh the snapshot on every affected line, deletions drop the lines.
func (s *CartService) ApplyProductChange(ctx context.Context, change ProductChange) error {
	switch change.Action {
	case ProductChangeDeleted:
		if err := s.carts.DeleteByProduct(ctx, change.ProductID); err != nil {
			return errors.Internal("Failed to drop cart lines for deleted product", err)
		}
		s.logger.Info("Removed deleted product from carts", zap.Uint64("product_id", change.ProductID))
		return nil

	case ProductChangeUpdated:
		if change.Product == nil {
			s.logger.Warn("Product update event without payload, skipping",
				zap.Uint64("product_id", change.ProductID),
			)
			return nil
		}
		lines, err := s.carts.FindByProduct(ctx, change.ProductID)
		if err != nil {
			return errors.Internal("Failed to load cart lines for product", err)
		}
		for i := range lines {
			line := &lines[i]
			line.ProductName = change.Product.Name
			line.Price = change.Product.Price
			if change.Product.Stock < line.Quantity {
				line.Quantity = change.Product.Stock
			}
			if line.Quantity <= 0 {
				if err := s.carts.Delete(ctx, line.UserID, line.ProductID); err != nil && !stderrors.Is(err, repository.ErrNotFound) {
					s.logger.Error("Failed to drop out-of-stock cart line",
						zap.String("user_id", line.UserID),
						zap.Uint64("product_id", line.ProductID),
						zap.Error(err),
					)
				}
				continue
			}
			if err := s.carts.Update(ctx, line); err != nil {
				s.logger.Error("Failed to refresh cart line",
					zap.String("user_id", line.UserID),
					zap.Uint64("product_id", line.ProductID),
					zap.Error(err),
				)
			}
		}
		return nil
	}

	s.logger.Warn("Unknown product change action, skipping", zap.String("action", change.Action))
	return nil
}
