package services_test

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/idl00005/microservices-ecommerce-sub000/internal/common/errors"
	"github.com/idl00005/microservices-ecommerce-sub000/internal/order/models"
	"github.com/idl00005/microservices-ecommerce-sub000/internal/order/services"
	"github.com/idl00005/microservices-ecommerce-sub000/internal/outbox"
)

// ---- mock repository ----

type projection struct {
	eventID string
	orders  []models.Order
}

type mockOrderRepo struct {
	projections []projection
	projectErr  error

	userOrders []models.Order
	allOrders  []models.Order
	findErr    error

	purchased    bool
	purchasedErr error

	appended  []*outbox.Event
	appendErr error
}

func (m *mockOrderRepo) ProjectOrder(_ context.Context, eventID string, orders []models.Order) error {
	if m.projectErr != nil {
		return m.projectErr
	}
	m.projections = append(m.projections, projection{eventID: eventID, orders: orders})
	return nil
}
func (m *mockOrderRepo) FindByUser(_ context.Context, _, _ string, _, _ int) ([]models.Order, int64, error) {
	return m.userOrders, int64(len(m.userOrders)), m.findErr
}
func (m *mockOrderRepo) FindAll(_ context.Context, _ string, _, _ int) ([]models.Order, int64, error) {
	return m.allOrders, int64(len(m.allOrders)), m.findErr
}
func (m *mockOrderRepo) HasCompletedPurchase(_ context.Context, _ string, _ uint64) (bool, error) {
	return m.purchased, m.purchasedErr
}
func (m *mockOrderRepo) AppendEvent(_ context.Context, event *outbox.Event) error {
	if m.appendErr != nil {
		return m.appendErr
	}
	m.appended = append(m.appended, event)
	return nil
}

func price(s string) decimal.Decimal {
	d, _ := decimal.NewFromString(s)
	return d
}

// ---- reviews ----

func TestCreateReviewQueuesEvent(t *testing.T) {
	repo := &mockOrderRepo{purchased: true}
	svc := services.NewOrderService(repo, zap.NewNop())

	err := svc.CreateReview(context.Background(), "u1", 42, 5, "great keyboard")
	require.NoError(t, err)
	require.Len(t, repo.appended, 1)

	evt := repo.appended[0]
	assert.Equal(t, outbox.AggregateOrder, evt.AggregateType)
	assert.Equal(t, outbox.EventReviewCreated, evt.EventType)

	var review outbox.ReviewCreated
	require.NoError(t, json.Unmarshal(evt.Payload, &review))
	assert.Equal(t, "u1", review.UserID)
	assert.Equal(t, uint64(42), review.ProductID)
	assert.Equal(t, 5, review.Rating)
}

func TestCreateReviewRejectsUnpurchasedProduct(t *testing.T) {
	repo := &mockOrderRepo{purchased: false}
	svc := services.NewOrderService(repo, zap.NewNop())

	err := svc.CreateReview(context.Background(), "u1", 42, 4, "never bought this")
	assert.True(t, errors.Is(err, errors.KindValidation))
	assert.Empty(t, repo.appended)
}

func TestCreateReviewValidatesRating(t *testing.T) {
	repo := &mockOrderRepo{purchased: true}
	svc := services.NewOrderService(repo, zap.NewNop())

	for _, rating := range []int{0, 6, -1} {
		err := svc.CreateReview(context.Background(), "u1", 42, rating, "")
		assert.True(t, errors.Is(err, errors.KindValidation), "rating %d must be rejected", rating)
	}
	assert.Empty(t, repo.appended)
}

// ---- listings ----

func TestListUserOrders(t *testing.T) {
	repo := &mockOrderRepo{userOrders: []models.Order{
		{OrderID: "ord-1", UserID: "u1", ProductID: 1, Quantity: 1, Status: models.OrderCompleted},
	}}
	svc := services.NewOrderService(repo, zap.NewNop())

	orders, total, err := svc.ListUserOrders(context.Background(), "u1", "", 1, 10)
	require.NoError(t, err)
	assert.Len(t, orders, 1)
	assert.Equal(t, int64(1), total)
}
