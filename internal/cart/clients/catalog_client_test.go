package clients_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/idl00005/microservices-ecommerce-sub000/internal/cart/clients"
	"github.com/idl00005/microservices-ecommerce-sub000/internal/common/errors"
)

func newClient(t *testing.T, handler http.Handler) (*clients.CatalogClient, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	client := clients.NewCatalogClient(srv.URL, clients.StaticTokenProvider("service-token"), nil, zap.NewNop())
	return client, srv
}

func TestGetProduct(t *testing.T) {
	client, _ := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/products/7", r.URL.Path)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"id": 7, "name": "Keyboard", "price": "25.00", "stock": 10,
		})
	}))

	info, err := client.GetProduct(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, uint64(7), info.ID)
	assert.Equal(t, "Keyboard", info.Name)
	assert.Equal(t, 10, info.Stock)
}

func TestGetProductNotFound(t *testing.T) {
	client, _ := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))

	_, err := client.GetProduct(context.Background(), 7)
	assert.True(t, errors.Is(err, errors.KindNotFound))
}

func TestReserveSequentialOrder(t *testing.T) {
	var calls []string
	client, _ := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls = append(calls, r.URL.Path)
		assert.Equal(t, "Bearer service-token", r.Header.Get("Authorization"))
		w.WriteHeader(http.StatusOK)
	}))

	err := client.Reserve(context.Background(), map[uint64]int{3: 1, 1: 2, 2: 1})
	require.NoError(t, err)
	assert.Equal(t, []string{
		"/products/1/reserve",
		"/products/2/reserve",
		"/products/3/reserve",
	}, calls, "reservations run sequentially in product id order")
}

func TestReserveStopsOnFirstConflict(t *testing.T) {
	var calls []string
	client, _ := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls = append(calls, r.URL.Path)
		if strings.HasPrefix(r.URL.Path, "/products/2/") {
			w.WriteHeader(http.StatusConflict)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))

	err := client.Reserve(context.Background(), map[uint64]int{1: 1, 2: 1, 3: 1})
	assert.True(t, errors.Is(err, errors.KindConflict))
	// product 3 is never attempted; product 1 stays reserved
	assert.Equal(t, []string{"/products/1/reserve", "/products/2/reserve"}, calls)
}

func TestReserveRetriesTransientErrors(t *testing.T) {
	attempts := 0
	client, _ := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))

	err := client.Reserve(context.Background(), map[uint64]int{1: 1})
	require.NoError(t, err)
	assert.Equal(t, 2, attempts)
}

func TestReserveUnauthorized(t *testing.T) {
	client, _ := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))

	err := client.Reserve(context.Background(), map[uint64]int{1: 1})
	assert.True(t, errors.Is(err, errors.KindUnauthorized))
}
