package services_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/idl00005/microservices-ecommerce-sub000/internal/catalog/models"
	"github.com/idl00005/microservices-ecommerce-sub000/internal/catalog/repository"
	"github.com/idl00005/microservices-ecommerce-sub000/internal/catalog/services"
	"github.com/idl00005/microservices-ecommerce-sub000/internal/common/errors"
	"github.com/idl00005/microservices-ecommerce-sub000/internal/outbox"
)

// ---- mock repository ----

type stockChange struct {
	productID     uint64
	stockDelta    int
	reservedDelta int
}

type mockProductRepo struct {
	products map[uint64]*models.Product

	reserveErr   error
	reserved     []stockChange
	adjustments  []stockChange
	adjustErr    error
	reviews      []*models.Review
	reviewRating float64
	reviewCount  int
	processed    map[string]bool
}

func (m *mockProductRepo) FindByID(_ context.Context, id uint64) (*models.Product, error) {
	p, ok := m.products[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return p, nil
}
func (m *mockProductRepo) Search(_ context.Context, _, _ int, _, _ string) ([]models.Product, int64, error) {
	return nil, 0, nil
}
func (m *mockProductRepo) Create(_ context.Context, _ *models.Product) error { return nil }
func (m *mockProductRepo) Update(_ context.Context, _ *models.Product) error { return nil }
func (m *mockProductRepo) Delete(_ context.Context, id uint64) error {
	if _, ok := m.products[id]; !ok {
		return repository.ErrNotFound
	}
	delete(m.products, id)
	return nil
}
func (m *mockProductRepo) AdjustStock(_ context.Context, id uint64, stockDelta, reservedDelta int) error {
	if m.adjustErr != nil {
		return m.adjustErr
	}
	m.adjustments = append(m.adjustments, stockChange{id, stockDelta, reservedDelta})
	return nil
}
func (m *mockProductRepo) Reserve(_ context.Context, id uint64, quantity int) error {
	if m.reserveErr != nil {
		return m.reserveErr
	}
	m.reserved = append(m.reserved, stockChange{productID: id, reservedDelta: quantity})
	return nil
}
func (m *mockProductRepo) CreateReview(_ context.Context, review *models.Review, newRating float64, newCount int) error {
	m.reviews = append(m.reviews, review)
	m.reviewRating = newRating
	m.reviewCount = newCount
	return nil
}
func (m *mockProductRepo) FindReviews(_ context.Context, _ uint64, _, _ int) ([]models.Review, error) {
	return nil, nil
}
func (m *mockProductRepo) MarkEventProcessed(_ context.Context, eventID string) error {
	if m.processed == nil {
		m.processed = map[string]bool{}
	}
	if m.processed[eventID] {
		return repository.ErrDuplicateEvent
	}
	m.processed[eventID] = true
	return nil
}

// ---- mock cache ----

type mockCache struct {
	entries     map[uint64]*models.Product
	invalidated []uint64
}

func (m *mockCache) Get(_ context.Context, id uint64) (*models.Product, error) {
	if m.entries == nil {
		return nil, nil
	}
	return m.entries[id], nil
}
func (m *mockCache) Set(_ context.Context, product *models.Product) error {
	if m.entries == nil {
		m.entries = make(map[uint64]*models.Product)
	}
	m.entries[product.ID] = product
	return nil
}
func (m *mockCache) Invalidate(_ context.Context, id uint64) error {
	m.invalidated = append(m.invalidated, id)
	delete(m.entries, id)
	return nil
}

// ---- mock event publisher ----

type mockEvents struct {
	events []models.ProductEvent
	err    error
}

func (m *mockEvents) SendProductEvent(_ context.Context, event models.ProductEvent) error {
	if m.err != nil {
		return m.err
	}
	m.events = append(m.events, event)
	return nil
}

func price(s string) decimal.Decimal {
	d, _ := decimal.NewFromString(s)
	return d
}

func newService(repo *mockProductRepo, cache *mockCache, events *mockEvents) *services.CatalogService {
	return services.NewCatalogService(repo, cache, events, zap.NewNop())
}

func product(id uint64, stock, reserved int) *models.Product {
	return &models.Product{
		ID:       id,
		Name:     "Keyboard",
		Price:    price("25.00"),
		Stock:    stock,
		Reserved: reserved,
		Category: "peripherals",
	}
}

// ---- reservation ----

func TestReserveClaimsStock(t *testing.T) {
	repo := &mockProductRepo{products: map[uint64]*models.Product{1: product(1, 10, 0)}}
	cache := &mockCache{}
	svc := newService(repo, cache, &mockEvents{})

	err := svc.Reserve(context.Background(), 1, 3)
	require.NoError(t, err)
	require.Len(t, repo.reserved, 1)
	assert.Equal(t, 3, repo.reserved[0].reservedDelta)
	assert.Contains(t, cache.invalidated, uint64(1))
}

func TestReserveInsufficientStockConflicts(t *testing.T) {
	repo := &mockProductRepo{
		products:   map[uint64]*models.Product{1: product(1, 2, 2)},
		reserveErr: repository.ErrNotFound,
	}
	svc := newService(repo, &mockCache{}, &mockEvents{})

	err := svc.Reserve(context.Background(), 1, 1)
	assert.True(t, errors.Is(err, errors.KindConflict))
}

func TestReserveUnknownProduct(t *testing.T) {
	repo := &mockProductRepo{products: map[uint64]*models.Product{}}
	svc := newService(repo, &mockCache{}, &mockEvents{})

	err := svc.Reserve(context.Background(), 99, 1)
	assert.True(t, errors.Is(err, errors.KindNotFound))
}

func TestReserveRejectsNonPositiveQuantity(t *testing.T) {
	repo := &mockProductRepo{products: map[uint64]*models.Product{1: product(1, 10, 0)}}
	svc := newService(repo, &mockCache{}, &mockEvents{})

	err := svc.Reserve(context.Background(), 1, 0)
	assert.True(t, errors.Is(err, errors.KindValidation))
	assert.Empty(t, repo.reserved)
}

// ---- stock events ----

func TestStockReleaseDecrementsReserved(t *testing.T) {
	repo := &mockProductRepo{products: map[uint64]*models.Product{1: product(1, 10, 5)}}
	cache := &mockCache{}
	svc := newService(repo, cache, &mockEvents{})

	err := svc.ApplyStockEvent(context.Background(), "evt-1", outbox.StockEvent{
		Kind:              outbox.StockRelease,
		ProductQuantities: map[uint64]int{1: 2},
	})

	require.NoError(t, err)
	require.Len(t, repo.adjustments, 1)
	assert.Equal(t, stockChange{1, 0, -2}, repo.adjustments[0])
	assert.Contains(t, cache.invalidated, uint64(1))
}

func TestStockConfirmDecrementsBoth(t *testing.T) {
	repo := &mockProductRepo{products: map[uint64]*models.Product{1: product(1, 10, 5)}}
	svc := newService(repo, &mockCache{}, &mockEvents{})

	err := svc.ApplyStockEvent(context.Background(), "evt-1", outbox.StockEvent{
		Kind:              outbox.StockConfirm,
		ProductQuantities: map[uint64]int{1: 2},
	})

	require.NoError(t, err)
	require.Len(t, repo.adjustments, 1)
	assert.Equal(t, stockChange{1, -2, -2}, repo.adjustments[0])
}

func TestStockEventUnknownKind(t *testing.T) {
	svc := newService(&mockProductRepo{}, &mockCache{}, &mockEvents{})

	err := svc.ApplyStockEvent(context.Background(), "evt-1", outbox.StockEvent{Kind: "EXPLODE"})
	assert.True(t, errors.Is(err, errors.KindValidation))
}

func TestStockEventPartialFailureContinues(t *testing.T) {
	repo := &mockProductRepo{
		products:  map[uint64]*models.Product{1: product(1, 10, 5)},
		adjustErr: repository.ErrNotFound,
	}
	svc := newService(repo, &mockCache{}, &mockEvents{})

	// both products fail to adjust, the event still completes
	err := svc.ApplyStockEvent(context.Background(), "evt-1", outbox.StockEvent{
		Kind:              outbox.StockRelease,
		ProductQuantities: map[uint64]int{1: 1, 2: 1},
	})
	assert.NoError(t, err)
}

func TestStockEventRedeliveryIsSkipped(t *testing.T) {
	repo := &mockProductRepo{products: map[uint64]*models.Product{1: product(1, 10, 5)}}
	svc := newService(repo, &mockCache{}, &mockEvents{})

	event := outbox.StockEvent{
		Kind:              outbox.StockConfirm,
		ProductQuantities: map[uint64]int{1: 2},
	}
	require.NoError(t, svc.ApplyStockEvent(context.Background(), "evt-1", event))
	require.NoError(t, svc.ApplyStockEvent(context.Background(), "evt-1", event))

	// the redelivery must not decrement counters a second time
	assert.Len(t, repo.adjustments, 1)
}

// ---- product CRUD events ----

func TestUpdateProductPreservesReservedAndEmits(t *testing.T) {
	existing := product(1, 10, 4)
	existing.Rating = 4.5
	existing.RatingCount = 2
	repo := &mockProductRepo{products: map[uint64]*models.Product{1: existing}}
	cache := &mockCache{}
	events := &mockEvents{}
	svc := newService(repo, cache, events)

	updated := product(1, 20, 0)
	updated.Name = "Mechanical Keyboard"
	err := svc.UpdateProduct(context.Background(), updated)

	require.NoError(t, err)
	assert.Equal(t, 4, updated.Reserved, "CRUD must not touch reserved stock")
	assert.Equal(t, 4.5, updated.Rating)
	assert.Contains(t, cache.invalidated, uint64(1))

	require.Len(t, events.events, 1)
	assert.Equal(t, models.ProductUpdated, events.events[0].Action)
}

func TestDeleteProductEmitsDeletedEvent(t *testing.T) {
	repo := &mockProductRepo{products: map[uint64]*models.Product{1: product(1, 10, 0)}}
	events := &mockEvents{}
	svc := newService(repo, &mockCache{}, events)

	err := svc.DeleteProduct(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, events.events, 1)
	assert.Equal(t, models.ProductDeleted, events.events[0].Action)
	assert.Nil(t, events.events[0].Product)
}

func TestCreateProductValidation(t *testing.T) {
	svc := newService(&mockProductRepo{}, &mockCache{}, &mockEvents{})

	err := svc.CreateProduct(context.Background(), &models.Product{Price: price("1.00")})
	assert.True(t, errors.Is(err, errors.KindValidation))

	err = svc.CreateProduct(context.Background(), &models.Product{Name: "X", Price: price("-1.00")})
	assert.True(t, errors.Is(err, errors.KindValidation))
}

// ---- reviews ----

func TestApplyReviewUpdatesRunningAverage(t *testing.T) {
	existing := product(1, 10, 0)
	existing.Rating = 4.0
	existing.RatingCount = 1
	repo := &mockProductRepo{products: map[uint64]*models.Product{1: existing}}
	svc := newService(repo, &mockCache{}, &mockEvents{})

	err := svc.ApplyReview(context.Background(), outbox.ReviewCreated{
		UserID:    "u1",
		ProductID: 1,
		Rating:    2,
		Comment:   "keys stick",
	})

	require.NoError(t, err)
	require.Len(t, repo.reviews, 1)
	assert.Equal(t, 2, repo.reviewCount)
	assert.InDelta(t, 3.0, repo.reviewRating, 0.001)
}

func TestGetProductReadsThroughCache(t *testing.T) {
	repo := &mockProductRepo{products: map[uint64]*models.Product{1: product(1, 10, 0)}}
	cache := &mockCache{}
	svc := newService(repo, cache, &mockEvents{})

	first, err := svc.GetProduct(context.Background(), 1)
	require.NoError(t, err)

	// drop the product from the repo; the cache still serves it
	delete(repo.products, 1)
	second, err := svc.GetProduct(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
}
