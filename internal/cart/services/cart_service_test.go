package services_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/idl00005/microservices-ecommerce-sub000/internal/cart/clients"
	"github.com/idl00005/microservices-ecommerce-sub000/internal/cart/models"
	"github.com/idl00005/microservices-ecommerce-sub000/internal/cart/services"
	"github.com/idl00005/microservices-ecommerce-sub000/internal/common/errors"
)

// syncCartRepo tracks mutations for the product-change tests.
type syncCartRepo struct {
	mockCartRepo
	byProduct       []models.CartLine
	updated         []models.CartLine
	deletedProducts []uint64
	deletedLines    [][2]interface{}
	added           []models.CartLine
}

func (m *syncCartRepo) FindByProduct(_ context.Context, _ uint64) ([]models.CartLine, error) {
	return m.byProduct, nil
}
func (m *syncCartRepo) AddOrIncrement(_ context.Context, line *models.CartLine) error {
	m.added = append(m.added, *line)
	return nil
}
func (m *syncCartRepo) Update(_ context.Context, line *models.CartLine) error {
	m.updated = append(m.updated, *line)
	return nil
}
func (m *syncCartRepo) Delete(_ context.Context, userID string, productID uint64) error {
	m.deletedLines = append(m.deletedLines, [2]interface{}{userID, productID})
	return nil
}
func (m *syncCartRepo) DeleteByProduct(_ context.Context, productID uint64) error {
	m.deletedProducts = append(m.deletedProducts, productID)
	return nil
}

func newCartService(repo *syncCartRepo, catalog *mockCatalog) *services.CartService {
	return services.NewCartService(repo, catalog, zap.NewNop())
}

func TestAddItemValidatesStock(t *testing.T) {
	repo := &syncCartRepo{}
	catalog := &mockCatalog{products: map[uint64]*clients.ProductInfo{
		1: {ID: 1, Name: "Keyboard", Price: price("25.00"), Stock: 1},
	}}

	svc := newCartService(repo, catalog)
	_, err := svc.AddItem(context.Background(), "u1", 1, 5)

	assert.True(t, errors.Is(err, errors.KindConflict))
	assert.Empty(t, repo.added)
}

func TestAddItemSnapshotsCatalogData(t *testing.T) {
	repo := &syncCartRepo{}
	catalog := &mockCatalog{products: map[uint64]*clients.ProductInfo{
		1: {ID: 1, Name: "Keyboard", Price: price("25.00"), Stock: 10},
	}}

	svc := newCartService(repo, catalog)
	line, err := svc.AddItem(context.Background(), "u1", 1, 2)

	require.NoError(t, err)
	assert.Equal(t, "Keyboard", line.ProductName)
	assert.True(t, line.Price.Equal(price("25.00")))
	require.Len(t, repo.added, 1)
}

func TestAddItemUnknownProduct(t *testing.T) {
	repo := &syncCartRepo{}
	catalog := &mockCatalog{products: map[uint64]*clients.ProductInfo{}}

	svc := newCartService(repo, catalog)
	_, err := svc.AddItem(context.Background(), "u1", 99, 1)

	assert.True(t, errors.Is(err, errors.KindNotFound))
}

func TestGetCartTotalsLines(t *testing.T) {
	repo := &syncCartRepo{}
	repo.lines = twoLineCart()

	svc := newCartService(repo, &mockCatalog{})
	lines, total, err := svc.GetCart(context.Background(), "u1")

	require.NoError(t, err)
	assert.Len(t, lines, 2)
	assert.True(t, total.Equal(price("60.00")))
}

func TestProductDeletedRemovesLines(t *testing.T) {
	repo := &syncCartRepo{}

	svc := newCartService(repo, &mockCatalog{})
	err := svc.ApplyProductChange(context.Background(), services.ProductChange{
		ProductID: 42,
		Action:    services.ProductChangeDeleted,
	})

	require.NoError(t, err)
	assert.Equal(t, []uint64{42}, repo.deletedProducts)
}

func TestProductUpdatedRefreshesAndClamps(t *testing.T) {
	repo := &syncCartRepo{
		byProduct: []models.CartLine{
			{UserID: "u1", ProductID: 42, ProductName: "Old", Price: price("9.99"), Quantity: 5},
			{UserID: "u2", ProductID: 42, ProductName: "Old", Price: price("9.99"), Quantity: 1},
		},
	}

	svc := newCartService(repo, &mockCatalog{})
	err := svc.ApplyProductChange(context.Background(), services.ProductChange{
		ProductID: 42,
		Action:    services.ProductChangeUpdated,
		Product: &services.ProductDetail{
			ID:    42,
			Name:  "New",
			Price: price("12.50"),
			Stock: 3,
		},
	})

	require.NoError(t, err)
	require.Len(t, repo.updated, 2)

	// quantity 5 clamped to the new stock of 3
	assert.Equal(t, 3, repo.updated[0].Quantity)
	assert.Equal(t, "New", repo.updated[0].ProductName)
	assert.True(t, repo.updated[0].Price.Equal(price("12.50")))

	// quantity 1 untouched
	assert.Equal(t, 1, repo.updated[1].Quantity)
}

func TestProductUpdatedDropsOutOfStockLines(t *testing.T) {
	repo := &syncCartRepo{
		byProduct: []models.CartLine{
			{UserID: "u1", ProductID: 42, Quantity: 2},
		},
	}

	svc := newCartService(repo, &mockCatalog{})
	err := svc.ApplyProductChange(context.Background(), services.ProductChange{
		ProductID: 42,
		Action:    services.ProductChangeUpdated,
		Product:   &services.ProductDetail{ID: 42, Name: "New", Price: price("1.00"), Stock: 0},
	})

	require.NoError(t, err)
	assert.Empty(t, repo.updated)
	require.Len(t, repo.deletedLines, 1)
	assert.Equal(t, uint64(42), repo.deletedLines[0][1])
}
