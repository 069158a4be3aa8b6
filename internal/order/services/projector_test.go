package services_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/idl00005/microservices-ecommerce-sub000/internal/order/models"
	"github.com/idl00005/microservices-ecommerce-sub000/internal/order/repository"
	"github.com/idl00005/microservices-ecommerce-sub000/internal/order/services"
	"github.com/idl00005/microservices-ecommerce-sub000/internal/outbox"
)

func TestProjectorBuildsPerItemRows(t *testing.T) {
	repo := &mockOrderRepo{}
	projector := services.NewProjector(repo, zap.NewNop())

	event := outbox.CheckoutCompleted{
		UserID:  "u1",
		OrderID: "ord-1",
		Items: []outbox.LineItem{
			{ProductID: 1, Quantity: 2, UnitPrice: price("25.00")},
			{ProductID: 2, Quantity: 1, UnitPrice: price("10.00")},
		},
		Address: "Main St 1",
		Phone:   "600123456",
	}

	err := projector.Apply(context.Background(), "evt-1", event)
	require.NoError(t, err)
	require.Len(t, repo.projections, 1)

	proj := repo.projections[0]
	assert.Equal(t, "evt-1", proj.eventID)
	require.Len(t, proj.orders, 2)

	first := proj.orders[0]
	assert.Equal(t, "ord-1", first.OrderID)
	assert.Equal(t, "u1", first.UserID)
	assert.Equal(t, uint64(1), first.ProductID)
	assert.Equal(t, 2, first.Quantity)
	assert.True(t, first.LineTotal.Equal(price("50.00")))
	assert.Equal(t, models.OrderCompleted, first.Status)
	assert.Equal(t, "Main St 1", first.Address)
}

func TestProjectorSkipsReplayedEvent(t *testing.T) {
	repo := &mockOrderRepo{projectErr: repository.ErrDuplicateEvent}
	projector := services.NewProjector(repo, zap.NewNop())

	event := outbox.CheckoutCompleted{
		UserID:  "u1",
		OrderID: "ord-1",
		Items:   []outbox.LineItem{{ProductID: 1, Quantity: 1, UnitPrice: price("5.00")}},
	}

	err := projector.Apply(context.Background(), "evt-1", event)
	assert.NoError(t, err, "a replayed event id is a clean skip")
}

func TestProjectorFallsBackToCorrelationID(t *testing.T) {
	repo := &mockOrderRepo{}
	projector := services.NewProjector(repo, zap.NewNop())

	event := outbox.CheckoutCompleted{
		UserID:        "u1",
		OrderID:       "ord-1",
		CorrelationID: "corr-9",
		Items:         []outbox.LineItem{{ProductID: 1, Quantity: 1, UnitPrice: price("5.00")}},
	}

	err := projector.Apply(context.Background(), "", event)
	require.NoError(t, err)
	require.Len(t, repo.projections, 1)
	assert.Equal(t, "corr-9", repo.projections[0].eventID)
}

func TestProjectorIgnoresEmptyEvents(t *testing.T) {
	repo := &mockOrderRepo{}
	projector := services.NewProjector(repo, zap.NewNop())

	err := projector.Apply(context.Background(), "evt-1", outbox.CheckoutCompleted{OrderID: "ord-1"})
	require.NoError(t, err)
	assert.Empty(t, repo.projections)
}
