package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/idl00005/microservices-ecommerce-sub000/internal/cart/models"
)

var ErrNotFound = errors.New("record not found")

// CartRepository defines the interface for cart line data access
type CartRepository interface {
	FindByUser(ctx context.Context, userID string) ([]models.CartLine, error)
	FindByUserAndProduct(ctx context.Context, userID string, productID uint64) (*models.CartLine, error)
	FindByProduct(ctx context.Context, productID uint64) ([]models.CartLine, error)
	AddOrIncrement(ctx context.Context, line *models.CartLine) error
	Update(ctx context.Context, line *models.CartLine) error
	Delete(ctx context.Context, userID string, productID uint64) error
	DeleteByUser(ctx context.Context, userID string) error
	DeleteByProduct(ctx context.Context, productID uint64) error
}

type GormCartRepository struct {
	db *gorm.DB
}

func NewGormCartRepository(db *gorm.DB) CartRepository {
	return &GormCartRepository{db: db}
}

func (r *GormCartRepository) FindByUser(ctx context.Context, userID string) ([]models.CartLine, error) {
	var lines []models.CartLine
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at").
		Find(&lines).Error
	return lines, err
}

func (r *GormCartRepository) FindByUserAndProduct(ctx context.Context, userID string, productID uint64) (*models.CartLine, error) {
	var line models.CartLine
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND product_id = ?", userID, productID).
		First(&line).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &line, nil
}

func (r *GormCartRepository) FindByProduct(ctx context.Context, productID uint64) ([]models.CartLine, error) {
	var lines []models.CartLine
	err := r.db.WithContext(ctx).
		Where("product_id = ?", productID).
		Find(&lines).Error
	return lines, err
}

// AddOrIncrement upserts on the (user, product) unique index so concurrent
// adds for the same product merge into one row with a summed quantity.
func (r *GormCartRepository) AddOrIncrement(ctx context.Context, line *models.CartLine) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "user_id"}, {Name: "product_id"}},
			DoUpdates: clause.Assignments(map[string]interface{}{
				"quantity":     gorm.Expr("cart_lines.quantity + ?", line.Quantity),
				"product_name": line.ProductName,
				"price":        line.Price,
			}),
		}).
		Create(line).Error
}

func (r *GormCartRepository) Update(ctx context.Context, line *models.CartLine) error {
	return r.db.WithContext(ctx).Save(line).Error
}

func (r *GormCartRepository) Delete(ctx context.Context, userID string, productID uint64) error {
	res := r.db.WithContext(ctx).
		Where("user_id = ? AND product_id = ?", userID, productID).
		Delete(&models.CartLine{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *GormCartRepository) DeleteByUser(ctx context.Context, userID string) error {
	return r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Delete(&models.CartLine{}).Error
}

func (r *GormCartRepository) DeleteByProduct(ctx context.Context, productID uint64) error {
	return r.db.WithContext(ctx).
		Where("product_id = ?", productID).
		Delete(&models.CartLine{}).Error
}
