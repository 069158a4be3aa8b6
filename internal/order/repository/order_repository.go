package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/idl00005/microservices-ecommerce-sub000/internal/order/models"
	"github.com/idl00005/microservices-ecommerce-sub000/internal/outbox"
)

// ErrDuplicateEvent marks a replayed event id; the caller skips the message.
var ErrDuplicateEvent = errors.New("event already processed")

type OrderRepository interface {
	// ProjectOrder inserts the dedup record and the order rows in one
	// transaction. A replayed event id returns ErrDuplicateEvent with no rows
	// written.
	ProjectOrder(ctx context.Context, eventID string, orders []models.Order) error
	FindByUser(ctx context.Context, userID, status string, page, limit int) ([]models.Order, int64, error)
	FindAll(ctx context.Context, status string, page, limit int) ([]models.Order, int64, error)
	HasCompletedPurchase(ctx context.Context, userID string, productID uint64) (bool, error)
	AppendEvent(ctx context.Context, event *outbox.Event) error
}

type GormOrderRepository struct {
	db     *gorm.DB
	outbox outbox.Store
}

func NewGormOrderRepository(db *gorm.DB, store outbox.Store) *GormOrderRepository {
	return &GormOrderRepository{db: db, outbox: store}
}

func (r *GormOrderRepository) ProjectOrder(ctx context.Context, eventID string, orders []models.Order) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Clauses(clause.OnConflict{DoNothing: true}).
			Create(&models.ProcessedEvent{EventID: eventID})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrDuplicateEvent
		}
		return tx.Create(&orders).Error
	})
}

func (r *GormOrderRepository) FindByUser(ctx context.Context, userID, status string, page, limit int) ([]models.Order, int64, error) {
	return r.find(ctx, r.db.WithContext(ctx).Where("user_id = ?", userID), status, page, limit)
}

func (r *GormOrderRepository) FindAll(ctx context.Context, status string, page, limit int) ([]models.Order, int64, error) {
	return r.find(ctx, r.db.WithContext(ctx), status, page, limit)
}

func (r *GormOrderRepository) find(ctx context.Context, q *gorm.DB, status string, page, limit int) ([]models.Order, int64, error) {
	q = q.Model(&models.Order{})
	if status != "" {
		q = q.Where("status = ?", status)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var orders []models.Order
	err := q.Order("created_at DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&orders).Error
	return orders, total, err
}

func (r *GormOrderRepository) HasCompletedPurchase(ctx context.Context, userID string, productID uint64) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("user_id = ? AND product_id = ? AND status = ?", userID, productID, models.OrderCompleted).
		Count(&count).Error
	return count > 0, err
}

func (r *GormOrderRepository) AppendEvent(ctx context.Context, event *outbox.Event) error {
	return r.outbox.Append(r.db.WithContext(ctx), event)
}
