package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/idl00005/microservices-ecommerce-sub000/internal/cart/models"
	"github.com/idl00005/microservices-ecommerce-sub000/internal/outbox"
)

// OrderRepository persists checkout orders. Settle bundles every write of the
// settlement step into one transaction: the state flip, the cart clear and the
// outbox appends commit or roll back together.
type OrderRepository interface {
	Create(ctx context.Context, order *models.Order) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error)
	FindByExternalRef(ctx context.Context, ref string) (*models.Order, error)
	UpdateState(ctx context.Context, orderID uuid.UUID, state string) error
	SetPaymentRef(ctx context.Context, orderID uuid.UUID, provider, externalRef string) error
	Settle(ctx context.Context, order *models.Order, events []*outbox.Event) error
	AppendEvents(ctx context.Context, events []*outbox.Event) error
}

type GormOrderRepository struct {
	db     *gorm.DB
	outbox outbox.Store
}

func NewGormOrderRepository(db *gorm.DB, outboxStore outbox.Store) OrderRepository {
	return &GormOrderRepository{db: db, outbox: outboxStore}
}

func (r *GormOrderRepository) Create(ctx context.Context, order *models.Order) error {
	return r.db.WithContext(ctx).Create(order).Error
}

func (r *GormOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).
		Preload("LineItems").
		First(&order, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *GormOrderRepository) FindByExternalRef(ctx context.Context, ref string) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).
		Preload("LineItems").
		Where("external_ref = ?", ref).
		First(&order).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *GormOrderRepository) UpdateState(ctx context.Context, orderID uuid.UUID, state string) error {
	return r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ?", orderID).
		Update("state", state).Error
}

func (r *GormOrderRepository) SetPaymentRef(ctx context.Context, orderID uuid.UUID, provider, externalRef string) error {
	return r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ?", orderID).
		Updates(map[string]interface{}{
			"state":            models.OrderCreated,
			"payment_provider": provider,
			"external_ref":     externalRef,
		}).Error
}

// Settle marks the order COMPLETED, deletes the user's cart lines and appends
// the settlement events in a single local transaction.
func (r *GormOrderRepository) Settle(ctx context.Context, order *models.Order, events []*outbox.Event) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Order{}).
			Where("id = ?", order.ID).
			Update("state", models.OrderCompleted).Error; err != nil {
			return err
		}

		if err := tx.Where("user_id = ?", order.UserID).
			Delete(&models.CartLine{}).Error; err != nil {
			return err
		}

		for _, evt := range events {
			if err := r.outbox.Append(tx, evt); err != nil {
				return err
			}
		}
		return nil
	})
}

// AppendEvents appends outbox events outside a settlement, e.g. the stock
// release compensation on cancellation.
func (r *GormOrderRepository) AppendEvents(ctx context.Context, events []*outbox.Event) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, evt := range events {
			if err := r.outbox.Append(tx, evt); err != nil {
				return err
			}
		}
		return nil
	})
}
