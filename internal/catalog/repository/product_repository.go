package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/idl00005/microservices-ecommerce-sub000/internal/catalog/models"
)

var (
	ErrNotFound       = errors.New("product not found")
	ErrDuplicateEvent = errors.New("event already processed")
)

// ProductRepository defines the interface for catalog data access
type ProductRepository interface {
	FindByID(ctx context.Context, id uint64) (*models.Product, error)
	Search(ctx context.Context, page, limit int, name, category string) ([]models.Product, int64, error)
	Create(ctx context.Context, product *models.Product) error
	Update(ctx context.Context, product *models.Product) error
	Delete(ctx context.Context, id uint64) error
	AdjustStock(ctx context.Context, id uint64, stockDelta, reservedDelta int) error
	Reserve(ctx context.Context, id uint64, quantity int) error
	CreateReview(ctx context.Context, review *models.Review, newRating float64, newCount int) error
	FindReviews(ctx context.Context, productID uint64, page, limit int) ([]models.Review, error)
	MarkEventProcessed(ctx context.Context, eventID string) error
}

// GormProductRepository implements ProductRepository using GORM
type GormProductRepository struct {
	db *gorm.DB
}

func NewGormProductRepository(db *gorm.DB) ProductRepository {
	return &GormProductRepository{db: db}
}

func (r *GormProductRepository) FindByID(ctx context.Context, id uint64) (*models.Product, error) {
	var product models.Product
	if err := r.db.WithContext(ctx).First(&product, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &product, nil
}

func (r *GormProductRepository) Search(ctx context.Context, page, limit int, name, category string) ([]models.Product, int64, error) {
	var products []models.Product
	var total int64

	query := r.db.WithContext(ctx).Model(&models.Product{})
	if name != "" {
		query = query.Where("name ILIKE ?", "%"+name+"%")
	}
	if category != "" {
		query = query.Where("category = ?", category)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	if err := query.
		Offset(offset).
		Limit(limit).
		Order("id").
		Find(&products).Error; err != nil {
		return nil, 0, err
	}

	return products, total, nil
}

func (r *GormProductRepository) Create(ctx context.Context, product *models.Product) error {
	return r.db.WithContext(ctx).Create(product).Error
}

func (r *GormProductRepository) Update(ctx context.Context, product *models.Product) error {
	return r.db.WithContext(ctx).Save(product).Error
}

func (r *GormProductRepository) Delete(ctx context.Context, id uint64) error {
	res := r.db.WithContext(ctx).Delete(&models.Product{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// AdjustStock applies deltas to stock and reserved counters in one statement.
func (r *GormProductRepository) AdjustStock(ctx context.Context, id uint64, stockDelta, reservedDelta int) error {
	res := r.db.WithContext(ctx).
		Model(&models.Product{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"stock":    gorm.Expr("stock + ?", stockDelta),
			"reserved": gorm.Expr("reserved + ?", reservedDelta),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Reserve atomically claims quantity units if stock - reserved covers it.
// Returns gorm.ErrRecordNotFound semantics through RowsAffected == 0, which
// the service layer turns into a conflict.
func (r *GormProductRepository) Reserve(ctx context.Context, id uint64, quantity int) error {
	res := r.db.WithContext(ctx).
		Model(&models.Product{}).
		Where("id = ? AND stock - reserved >= ?", id, quantity).
		Update("reserved", gorm.Expr("reserved + ?", quantity))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// CreateReview persists the review and the product's new running average in
// one transaction.
func (r *GormProductRepository) CreateReview(ctx context.Context, review *models.Review, newRating float64, newCount int) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(review).Error; err != nil {
			return err
		}
		return tx.Model(&models.Product{}).
			Where("id = ?", review.ProductID).
			Updates(map[string]interface{}{
				"rating":       newRating,
				"rating_count": newCount,
			}).Error
	})
}

// MarkEventProcessed claims an event id. A replayed id inserts no row and
// comes back as ErrDuplicateEvent.
func (r *GormProductRepository) MarkEventProcessed(ctx context.Context, eventID string) error {
	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&models.ProcessedEvent{EventID: eventID})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrDuplicateEvent
	}
	return nil
}

func (r *GormProductRepository) FindReviews(ctx context.Context, productID uint64, page, limit int) ([]models.Review, error) {
	var reviews []models.Review
	offset := (page - 1) * limit
	err := r.db.WithContext(ctx).
		Where("product_id = ?", productID).
		Offset(offset).
		Limit(limit).
		Order("created_at DESC").
		Find(&reviews).Error
	return reviews, err
}
