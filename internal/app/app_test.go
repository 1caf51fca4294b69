package app

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bmaxtar/storefront/internal/storage/memory"
)

func newMemoryDependencies(t *testing.T) *Dependencies {
	t.Helper()

	cfg := DefaultConfig()
	cfg.StorageDriver = StorageDriverMemory

	deps, err := NewDependencies(context.Background(), cfg)
	require.NoError(t, err)
	t.Cleanup(deps.Close)

	return deps
}

func TestNewRouterHelloPage(t *testing.T) {
	router, err := NewRouter(newMemoryDependencies(t))
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/?name=Max", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Hello Max")
}

func TestNewRouterHelloPageDefaultName(t *testing.T) {
	router, err := NewRouter(newMemoryDependencies(t))
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Hello guest")
}

func TestNewRouterProbes(t *testing.T) {
	router, err := NewRouter(newMemoryDependencies(t))
	require.NoError(t, err)

	for _, path := range []string{"/healthz", "/readyz", "/livez"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code, "probe %s", path)
	}
}

func TestNewRouterMetrics(t *testing.T) {
	router, err := NewRouter(newMemoryDependencies(t))
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "storefront_")
}

func TestSeedDemoData(t *testing.T) {
	store := memory.NewStore()
	SeedDemoData(store)

	products, err := memory.NewProductRepository(store).All()
	require.NoError(t, err)
	assert.Len(t, products, 5)

	orders, err := memory.NewOrderRepository(store).Recent(10)
	require.NoError(t, err)
	assert.Len(t, orders, 2)
}
